package console

import (
	"fmt"
	"strings"

	"github.com/nhle/mood-assistant/internal/dialogue"
	"github.com/nhle/mood-assistant/internal/model"
	"github.com/nhle/mood-assistant/internal/theme"
)

// Describe renders a block as terminal text and returns the options it
// offers. Options are numbered from 1 in the text, matching "/n".
func Describe(b dialogue.Block) (string, []dialogue.Option) {
	switch b := b.(type) {
	case dialogue.Text:
		return b.Text, nil
	case dialogue.ChoiceMenu:
		return card(b.Title, []string{b.Body}, b.Options), b.Options
	case dialogue.ProgressCard:
		return card(b.Title, []string{b.Prompt}, b.Options), b.Options
	case dialogue.ConfirmationCard:
		lines := []string{b.Subtitle}
		for _, f := range b.Fields {
			lines = append(lines, fieldLine(f))
		}
		opts := b.Choices()
		return card(b.Title, lines, opts), opts
	case dialogue.RecognitionCard:
		return describeRecognition(b)
	case dialogue.SummaryCard:
		return describeSummary(b)
	default:
		return "", nil
	}
}

func describeRecognition(r dialogue.RecognitionCard) (string, []dialogue.Option) {
	strong := strings.Contains(r.Confidence, "90%")
	lines := []string{
		theme.ConfidenceStyle(strong).Render(r.Confidence),
		"找到符合的作業: " + r.Task.Name,
		fieldLine(dialogue.Field{Icon: "📊", Label: "作業類型", Value: r.Task.Type}),
		fieldLine(dialogue.Field{Icon: "🕒", Label: "預估時間", Value: r.Task.EstimatedTime}),
		fieldLine(dialogue.Field{Icon: "📅", Label: "截止日期", Value: r.Task.DueDate}),
		"AI判斷理由：" + r.Rationale,
	}
	opts := r.Choices()
	return card("🍎 AI智慧辨識", lines, opts), opts
}

func describeSummary(s dialogue.SummaryCard) (string, []dialogue.Option) {
	lines := []string{
		"已完成: " + s.Latest,
		fmt.Sprintf("剩餘 %d 項作業待完成", s.Pending),
		"",
		fmt.Sprintf("📄 總計: %d  待完成: %d  已完成: %d", s.Total, s.Pending, s.Completed),
	}
	for _, t := range s.PendingTasks {
		lines = append(lines, taskLine("⏳", t))
	}
	for _, t := range s.RecentCompleted {
		lines = append(lines, taskLine("✅", t))
	}

	opts := make([]dialogue.Option, 0, len(s.Actions)+len(s.FooterActions))
	opts = append(opts, s.Actions...)
	opts = append(opts, s.FooterActions...)
	return card(s.Headline, lines, opts), opts
}

func taskLine(icon string, t model.Task) string {
	line := fmt.Sprintf("%s %s - %s", icon, t.Name, t.DueDate)
	return theme.TaskStatusStyle(string(t.Status)).Render(line)
}

func fieldLine(f dialogue.Field) string {
	return fmt.Sprintf("%s %s：%s", f.Icon, f.Label, f.Value)
}

func card(title string, lines []string, opts []dialogue.Option) string {
	parts := []string{theme.CardTitleStyle.Render(title)}
	for _, l := range lines {
		if l != "" || len(parts) > 1 {
			parts = append(parts, l)
		}
	}
	if len(opts) > 0 {
		parts = append(parts, "")
		for i, o := range opts {
			parts = append(parts, theme.OptionStyle.Render(fmt.Sprintf("/%d %s", i+1, o.Label)))
		}
	}
	return theme.CardStyle.Render(strings.Join(parts, "\n"))
}
