package line

import (
	"errors"

	"github.com/tidwall/gjson"

	"github.com/nhle/mood-assistant/internal/dialogue"
)

// ErrInvalidPayload is returned when a webhook body is not valid JSON.
var ErrInvalidPayload = errors.New("invalid webhook payload")

// Inbound is one webhook event together with the token its reply must use.
type Inbound struct {
	ReplyToken string
	Event      dialogue.Event
}

// ParseEvents extracts the events the assistant understands from a webhook
// body: text messages, postbacks and follows. Everything else (stickers,
// unfollows, events without a user source) is skipped.
func ParseEvents(body []byte) ([]Inbound, error) {
	if !gjson.ValidBytes(body) {
		return nil, ErrInvalidPayload
	}

	var out []Inbound
	gjson.GetBytes(body, "events").ForEach(func(_, e gjson.Result) bool {
		userID := e.Get("source.userId").String()
		if userID == "" {
			return true
		}

		var ev dialogue.Event
		switch e.Get("type").String() {
		case "message":
			if e.Get("message.type").String() != "text" {
				return true
			}
			ev = dialogue.Message{UserID: userID, Text: e.Get("message.text").String()}
		case "postback":
			ev = dialogue.Postback{UserID: userID, Data: e.Get("postback.data").String()}
		case "follow":
			ev = dialogue.Follow{UserID: userID}
		default:
			return true
		}

		out = append(out, Inbound{
			ReplyToken: e.Get("replyToken").String(),
			Event:      ev,
		})
		return true
	})
	return out, nil
}
