package line

import (
	"fmt"

	"github.com/nhle/mood-assistant/internal/dialogue"
)

// LINE Messaging API limits.
const (
	maxReplyMessages   = 5
	maxTextMessage     = 5000
	maxAltText         = 400
	maxTemplateTitle   = 40
	maxTemplateText    = 60
	maxTemplateActions = 4
	maxActionLabel     = 20
)

const (
	colorHeader  = "#6A5ACD"
	colorSuccess = "#4CAF50"
	colorDanger  = "#F44336"
	colorSurvey  = "#27AE60"
	colorOption  = "#90EE90"
	colorMuted   = "#666666"
	colorBody    = "#333333"
	colorWhite   = "#FFFFFF"
)

// Message is one LINE message object, ready to be JSON encoded.
type Message map[string]any

type component = map[string]any

// Render converts response blocks to LINE messages. Unknown blocks are
// dropped and at most five messages are returned, the reply API maximum.
func Render(blocks []dialogue.Block) []Message {
	out := make([]Message, 0, len(blocks))
	for _, b := range blocks {
		if len(out) == maxReplyMessages {
			break
		}
		if m := renderBlock(b); m != nil {
			out = append(out, m)
		}
	}
	return out
}

func renderBlock(b dialogue.Block) Message {
	switch b := b.(type) {
	case dialogue.Text:
		if b.Text == "" {
			return nil
		}
		return Message{"type": "text", "text": truncate(b.Text, maxTextMessage)}
	case dialogue.ChoiceMenu:
		return renderChoiceMenu(b)
	case dialogue.ProgressCard:
		return renderProgressCard(b)
	case dialogue.ConfirmationCard:
		return renderConfirmationCard(b)
	case dialogue.RecognitionCard:
		return renderRecognitionCard(b)
	case dialogue.SummaryCard:
		return renderSummaryCard(b)
	default:
		return nil
	}
}

// renderChoiceMenu uses a buttons template, falling back to a flex bubble
// when there are more options than a template can hold.
func renderChoiceMenu(m dialogue.ChoiceMenu) Message {
	if len(m.Options) > maxTemplateActions {
		buttons := make([]any, 0, len(m.Options))
		for _, o := range m.Options {
			buttons = append(buttons, button(o, "secondary", ""))
		}
		return flex(m.AltText, bubble(
			vbox("none", text(m.Title, "md", "", true)),
			vbox("md", text(m.Body, "sm", colorBody, false)),
			vbox("sm", buttons...),
		))
	}

	actions := make([]any, 0, len(m.Options))
	for _, o := range m.Options {
		actions = append(actions, postback(o))
	}
	return Message{
		"type":    "template",
		"altText": truncate(m.AltText, maxAltText),
		"template": component{
			"type":    "buttons",
			"title":   truncate(m.Title, maxTemplateTitle),
			"text":    truncate(nonEmpty(m.Body), maxTemplateText),
			"actions": actions,
		},
	}
}

func renderProgressCard(p dialogue.ProgressCard) Message {
	buttons := make([]any, 0, len(p.Options))
	for _, o := range p.Options {
		buttons = append(buttons, button(o, "primary", colorOption))
	}
	return flex("情緒自我檢測", bubble(
		vbox("none", text(p.Title, "sm", colorSurvey, true)),
		vbox("md", text(p.Prompt, "sm", "", false), separator()),
		vbox("sm", buttons...),
	))
}

func renderConfirmationCard(c dialogue.ConfirmationCard) Message {
	rows := make([]any, 0, len(c.Fields))
	for _, f := range c.Fields {
		rows = append(rows, fieldRow(f, colorBody))
	}

	header := vbox("none",
		text(c.Title, "sm", colorWhite, true),
		text(c.Subtitle, "xs", colorWhite, false),
	)
	header["backgroundColor"] = colorHeader

	choices := c.Choices()
	return flex("作業確認", bubble(
		header,
		vbox("md", rows...),
		vbox("sm",
			button(choices[0], "primary", colorSuccess),
			hbox("sm",
				button(choices[1], "secondary", ""),
				button(choices[2], "secondary", ""),
			),
		),
	))
}

func renderRecognitionCard(r dialogue.RecognitionCard) Message {
	header := vbox("none",
		text("🍎 AI智慧辨識", "sm", colorWhite, true),
		text(r.Confidence, "xs", colorWhite, false),
	)
	header["backgroundColor"] = colorHeader

	choices := r.Choices()
	return flex("作業完成辨識", bubble(
		header,
		vbox("md",
			text("找到符合的作業:", "xs", colorMuted, false),
			text(r.Task.Name, "md", colorBody, true),
			fieldRow(dialogue.Field{Icon: "📊", Label: "作業類型", Value: r.Task.Type}, colorBody),
			fieldRow(dialogue.Field{Icon: "🕒", Label: "預估時間", Value: r.Task.EstimatedTime}, colorBody),
			fieldRow(dialogue.Field{Icon: "📅", Label: "截止日期", Value: r.Task.DueDate}, colorSuccess),
			separator(),
			text("AI判斷理由", "xs", colorMuted, false),
			text(r.Rationale, "xs", colorBody, false),
		),
		vbox("sm",
			button(choices[0], "primary", colorSuccess),
			button(choices[1], "primary", colorDanger),
		),
	))
}

func renderSummaryCard(s dialogue.SummaryCard) Message {
	header := vbox("none",
		text(s.Headline, "lg", colorWhite, true),
		text("已完成: "+s.Latest, "sm", colorWhite, false),
		text(fmt.Sprintf("剩餘 %d 項作業待完成", s.Pending), "xs", colorWhite, false),
	)
	header["backgroundColor"] = colorSuccess

	body := []any{}
	for i, o := range s.Actions {
		style, color := "secondary", ""
		if i == 0 {
			style, color = "primary", colorSuccess
		}
		body = append(body, button(o, style, color))
	}
	body = append(body,
		separator(),
		text("📄 作業列表", "sm", colorBody, true),
		hbox("sm",
			text(fmt.Sprintf("總計: %d", s.Total), "xs", colorMuted, false),
			text(fmt.Sprintf("待完成: %d", s.Pending), "xs", colorDanger, false),
			text(fmt.Sprintf("已完成: %d", s.Completed), "xs", colorSuccess, false),
		),
	)
	for _, t := range s.PendingTasks {
		body = append(body, text(fmt.Sprintf("⏳ %s - %s", t.Name, t.DueDate), "xs", colorBody, false))
	}
	for _, t := range s.RecentCompleted {
		body = append(body, text("✅ "+t.Name, "xs", colorMuted, false))
	}

	footer := make([]any, 0, len(s.FooterActions))
	for i, o := range s.FooterActions {
		style, color := "secondary", ""
		if i == 0 {
			style, color = "primary", colorSuccess
		}
		footer = append(footer, button(o, style, color))
	}

	return flex("作業完成摘要", bubble(header, vbox("md", body...), hbox("sm", footer...)))
}

func flex(altText string, contents component) Message {
	return Message{
		"type":     "flex",
		"altText":  truncate(altText, maxAltText),
		"contents": contents,
	}
}

func bubble(header, body, footer component) component {
	b := component{"type": "bubble", "size": "kilo", "body": body}
	if header != nil {
		b["header"] = header
	}
	if footer != nil && len(footer["contents"].([]any)) > 0 {
		b["footer"] = footer
	}
	return b
}

func vbox(spacing string, contents ...any) component {
	return box("vertical", spacing, contents)
}

func hbox(spacing string, contents ...any) component {
	return box("horizontal", spacing, contents)
}

func box(layout, spacing string, contents []any) component {
	if contents == nil {
		contents = []any{}
	}
	return component{
		"type":     "box",
		"layout":   layout,
		"spacing":  spacing,
		"contents": contents,
	}
}

func text(s, size, color string, bold bool) component {
	c := component{"type": "text", "text": nonEmpty(s), "size": size, "wrap": true}
	if color != "" {
		c["color"] = color
	}
	if bold {
		c["weight"] = "bold"
	}
	return c
}

func separator() component {
	return component{"type": "separator"}
}

func fieldRow(f dialogue.Field, valueColor string) component {
	label := text(f.Icon+" "+f.Label, "sm", colorMuted, false)
	label["flex"] = 2
	value := text(f.Value, "sm", valueColor, false)
	value["flex"] = 3
	return hbox("sm", label, value)
}

func button(o dialogue.Option, style, color string) component {
	c := component{"type": "button", "style": style, "height": "sm", "action": postback(o)}
	if color != "" {
		c["color"] = color
	}
	return c
}

func postback(o dialogue.Option) component {
	return component{
		"type":  "postback",
		"label": truncate(nonEmpty(o.Label), maxActionLabel),
		"data":  o.Data,
	}
}

// nonEmpty substitutes a placeholder, LINE rejects empty text fields.
func nonEmpty(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

// truncate shortens s to at most n runes.
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	if n <= 1 {
		return string(r[:n])
	}
	return string(r[:n-1]) + "…"
}
