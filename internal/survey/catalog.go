// Package survey runs the four-question emotional self-assessment: the
// fixed question catalog, per-user progress and scoring.
package survey

import "github.com/nhle/mood-assistant/internal/model"

const (
	// MinValue and MaxValue bound every answer value.
	MinValue = 0
	MaxValue = 3
)

// optionLabels is the single label→value table. Index is the value.
var optionLabels = [...]string{"完全不會", "幾天", "一半以上的天數", "幾乎每天"}

var prompts = [...]string{
	"在過去14天內，做事時提不起勁或沒有樂趣",
	"在過去14天內，感到心情低落、沮喪或絕望",
	"在過去14天內，感到緊張、焦慮或煩躁",
	"在過去14天內，無法停止或控制擔憂",
}

// QuestionCount is the number of questions in the catalog.
const QuestionCount = len(prompts)

var catalog = buildCatalog()

func buildCatalog() []model.Question {
	qs := make([]model.Question, 0, len(prompts))
	for i, p := range prompts {
		qs = append(qs, model.Question{
			ID:      i + 1,
			Prompt:  p,
			Options: options(),
		})
	}
	return qs
}

func options() []model.Option {
	opts := make([]model.Option, 0, len(optionLabels))
	for v, l := range optionLabels {
		opts = append(opts, model.Option{Label: l, Value: v})
	}
	return opts
}

// Question returns the catalog entry at index. The returned value does
// not share memory with the catalog.
func Question(index int) (model.Question, bool) {
	if index < 0 || index >= len(catalog) {
		return model.Question{}, false
	}
	q := catalog[index]
	q.Options = append([]model.Option(nil), q.Options...)
	return q, true
}

// LabelValue maps an option label to its value. Free-text answers and
// button payloads both resolve through this table.
func LabelValue(label string) (int, bool) {
	for v, l := range optionLabels {
		if l == label {
			return v, true
		}
	}
	return 0, false
}

// IsLabel reports whether text is exactly one of the option labels.
func IsLabel(text string) bool {
	_, ok := LabelValue(text)
	return ok
}

// ValidValue reports whether v is an allowed answer value.
func ValidValue(v int) bool {
	return v >= MinValue && v <= MaxValue
}
