// Package dialogue classifies inbound chat events, drives the survey and
// homework flows, and answers with presentation-neutral response blocks.
package dialogue

// Event is a normalized inbound event. Implementations are Message,
// Postback and Follow.
type Event interface {
	User() string
	isEvent()
}

// Message is a free-text message from a user.
type Message struct {
	UserID string
	Text   string
}

// Postback carries the opaque action data of a pressed button.
type Postback struct {
	UserID string
	Data   string
}

// Follow is sent when a user adds the bot.
type Follow struct {
	UserID string
}

func (m Message) User() string  { return m.UserID }
func (p Postback) User() string { return p.UserID }
func (f Follow) User() string   { return f.UserID }

func (Message) isEvent()  {}
func (Postback) isEvent() {}
func (Follow) isEvent()   {}
