package dialogue

import "github.com/nhle/mood-assistant/internal/model"

// Block is one abstract response element. The presentation layer decides
// how each kind looks on its platform.
type Block interface {
	isBlock()
}

// Option is a selectable choice that echoes Data back as a Postback.
type Option struct {
	Label string
	Data  string
}

// Field is one labeled value of a card.
type Field struct {
	Icon  string
	Label string
	Value string
}

// Text is a plain text reply.
type Text struct {
	Text string
}

// ChoiceMenu is a titled list of options.
type ChoiceMenu struct {
	AltText string
	Title   string
	Body    string
	Options []Option
}

// ProgressCard presents one survey question.
type ProgressCard struct {
	Title         string
	ProgressLabel string
	Prompt        string
	Options       []Option
}

// ConfirmationCard asks the user to confirm an extracted draft.
type ConfirmationCard struct {
	Title    string
	Subtitle string
	Fields   []Field

	ConfirmData string
	ModifyData  string
	CancelData  string
}

// RecognitionCard proposes which task the user just finished.
type RecognitionCard struct {
	Task       model.TaskDraft
	Confidence string
	Rationale  string

	ConfirmData string
	RejectData  string
}

// SummaryCard recaps the user's tasks after a completion.
type SummaryCard struct {
	Headline  string
	Latest    string
	Total     int
	Pending   int
	Completed int

	// PendingTasks holds at most five pending tasks, RecentCompleted the
	// last three completed ones, both in insertion order.
	PendingTasks    []model.Task
	RecentCompleted []model.Task

	Actions       []Option
	FooterActions []Option
}

func (Text) isBlock()             {}
func (ChoiceMenu) isBlock()       {}
func (ProgressCard) isBlock()     {}
func (ConfirmationCard) isBlock() {}
func (RecognitionCard) isBlock()  {}
func (SummaryCard) isBlock()      {}

// Choices returns the card's buttons in display order.
func (c ConfirmationCard) Choices() []Option {
	return []Option{
		{Label: "✅ 確認新增", Data: c.ConfirmData},
		{Label: "✏️ 修改", Data: c.ModifyData},
		{Label: "❌ 取消", Data: c.CancelData},
	}
}

// Choices returns the card's buttons in display order.
func (r RecognitionCard) Choices() []Option {
	return []Option{
		{Label: "確認完成", Data: r.ConfirmData},
		{Label: "× 不是這個", Data: r.RejectData},
	}
}
