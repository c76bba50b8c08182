package line

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"

	"github.com/nhle/mood-assistant/internal/dialogue"
	"github.com/nhle/mood-assistant/internal/model"
)

func renderJSON(t *testing.T, blocks ...dialogue.Block) string {
	t.Helper()
	data, err := json.Marshal(Render(blocks))
	require.NoError(t, err)
	return string(data)
}

func TestRenderTextAndMainMenu(t *testing.T) {
	out := renderJSON(t, dialogue.Text{Text: "你好"}, dialogue.MainMenu())

	assert.Equal(t, int64(2), gjson.Get(out, "#").Int())
	assert.Equal(t, "text", gjson.Get(out, "0.type").String())
	assert.Equal(t, "你好", gjson.Get(out, "0.text").String())

	assert.Equal(t, "template", gjson.Get(out, "1.type").String())
	assert.Equal(t, "主選單", gjson.Get(out, "1.altText").String())
	assert.Equal(t, "buttons", gjson.Get(out, "1.template.type").String())
	assert.Equal(t, "🧠 情緒小助手", gjson.Get(out, "1.template.title").String())

	actions := gjson.Get(out, "1.template.actions").Array()
	require.Len(t, actions, 3)
	assert.Equal(t, "postback", actions[0].Get("type").String())
	assert.Equal(t, dialogue.ActStartSurvey, actions[0].Get("data").String())
	assert.Equal(t, dialogue.ActWeatherMenu, actions[2].Get("data").String())
}

func TestRenderDropsEmptyAndCapsMessages(t *testing.T) {
	blocks := []dialogue.Block{dialogue.Text{}}
	for i := 0; i < 7; i++ {
		blocks = append(blocks, dialogue.Text{Text: "x"})
	}
	assert.Len(t, Render(blocks), maxReplyMessages)
	assert.Empty(t, Render(nil))
}

func TestRenderTruncatesTemplateFields(t *testing.T) {
	menu := dialogue.ChoiceMenu{
		AltText: "menu",
		Title:   strings.Repeat("標", 50),
		Body:    strings.Repeat("文", 80),
		Options: []dialogue.Option{{Label: strings.Repeat("選", 30), Data: "d"}},
	}
	out := renderJSON(t, menu)

	assert.Len(t, []rune(gjson.Get(out, "0.template.title").String()), maxTemplateTitle)
	assert.Len(t, []rune(gjson.Get(out, "0.template.text").String()), maxTemplateText)
	label := gjson.Get(out, "0.template.actions.0.label").String()
	assert.Len(t, []rune(label), maxActionLabel)
	assert.True(t, strings.HasSuffix(label, "…"))
}

func TestRenderLargeChoiceMenuAsFlex(t *testing.T) {
	var opts []dialogue.Option
	for _, c := range []string{"a", "b", "c", "d", "e"} {
		opts = append(opts, dialogue.Option{Label: c, Data: "pick_" + c})
	}
	out := renderJSON(t, dialogue.ChoiceMenu{AltText: "alt", Title: "t", Body: "b", Options: opts})

	assert.Equal(t, "flex", gjson.Get(out, "0.type").String())
	assert.Equal(t, "bubble", gjson.Get(out, "0.contents.type").String())
	assert.Equal(t, int64(5), gjson.Get(out, "0.contents.footer.contents.#").Int())
	assert.Equal(t, "pick_e", gjson.Get(out, "0.contents.footer.contents.4.action.data").String())
}

func TestRenderProgressCard(t *testing.T) {
	card := dialogue.ProgressCard{
		Title:         "📋 情緒自我檢測 - 25% (1/4)",
		ProgressLabel: "25% (1/4)",
		Prompt:        "💭 question",
		Options: []dialogue.Option{
			{Label: "完全不會", Data: dialogue.SurveyAnswerData(0, 0)},
			{Label: "幾乎每天", Data: dialogue.SurveyAnswerData(0, 3)},
		},
	}
	out := renderJSON(t, card)

	assert.Equal(t, "情緒自我檢測", gjson.Get(out, "0.altText").String())
	assert.Equal(t, card.Title, gjson.Get(out, "0.contents.header.contents.0.text").String())
	assert.Equal(t, card.Prompt, gjson.Get(out, "0.contents.body.contents.0.text").String())
	assert.Equal(t, "survey_0_3", gjson.Get(out, "0.contents.footer.contents.1.action.data").String())
	assert.Equal(t, colorOption, gjson.Get(out, "0.contents.footer.contents.0.color").String())
}

func TestRenderConfirmationCard(t *testing.T) {
	draft := model.TaskDraft{Name: "AI agent 報告", EstimatedTime: "3 小時", Type: "報告", DueDate: "2026年10月16日(明天)"}
	card := dialogue.ConfirmationCard{
		Title:       "🍎 AI 智慧解析",
		Subtitle:    "請確認以下資訊是否正確",
		Fields:      []dialogue.Field{{Icon: "✏️", Label: "作業名稱", Value: draft.Name}},
		ConfirmData: dialogue.ConfirmHomeworkData(draft),
		ModifyData:  dialogue.ActModifyHomework,
		CancelData:  dialogue.ActCancelHomework,
	}
	out := renderJSON(t, card)

	assert.Equal(t, "作業確認", gjson.Get(out, "0.altText").String())
	assert.Equal(t, colorHeader, gjson.Get(out, "0.contents.header.backgroundColor").String())
	assert.Equal(t, draft.Name, gjson.Get(out, "0.contents.body.contents.0.contents.1.text").String())
	assert.Equal(t, card.ConfirmData, gjson.Get(out, "0.contents.footer.contents.0.action.data").String())
	assert.Equal(t, dialogue.ActModifyHomework, gjson.Get(out, "0.contents.footer.contents.1.contents.0.action.data").String())
	assert.Equal(t, dialogue.ActCancelHomework, gjson.Get(out, "0.contents.footer.contents.1.contents.1.action.data").String())
}

func TestRenderRecognitionCard(t *testing.T) {
	card := dialogue.RecognitionCard{
		Task:        model.TaskDraft{Name: "作業系統", Type: "作業", EstimatedTime: "2 小時", DueDate: "未設定"},
		Confidence:  "信心度: 60%",
		Rationale:   "reason",
		ConfirmData: dialogue.ConfirmCompletionData("作業系統"),
		RejectData:  dialogue.ActNotThisTask,
	}
	out := renderJSON(t, card)

	assert.Equal(t, "作業完成辨識", gjson.Get(out, "0.altText").String())
	assert.Equal(t, "信心度: 60%", gjson.Get(out, "0.contents.header.contents.1.text").String())
	assert.Equal(t, "作業系統", gjson.Get(out, "0.contents.body.contents.1.text").String())
	assert.Equal(t, card.ConfirmData, gjson.Get(out, "0.contents.footer.contents.0.action.data").String())
	assert.Equal(t, dialogue.ActNotThisTask, gjson.Get(out, "0.contents.footer.contents.1.action.data").String())
}

func TestRenderSummaryCard(t *testing.T) {
	card := dialogue.SummaryCard{
		Headline:  "🎉 太棒了!",
		Latest:    "國文作業",
		Total:     3,
		Pending:   1,
		Completed: 2,
		PendingTasks: []model.Task{
			{Name: "數學作業", DueDate: "2026年10月16日(明天)"},
		},
		RecentCompleted: []model.Task{{Name: "英文作業"}, {Name: "國文作業"}},
		Actions:         []dialogue.Option{{Label: "a", Data: dialogue.ActContinueTasks}},
		FooterActions:   []dialogue.Option{{Label: "f", Data: dialogue.ActAddNewTask}},
	}
	out := renderJSON(t, card)

	assert.Equal(t, "作業完成摘要", gjson.Get(out, "0.altText").String())
	assert.Equal(t, "已完成: 國文作業", gjson.Get(out, "0.contents.header.contents.1.text").String())
	assert.Equal(t, "剩餘 1 項作業待完成", gjson.Get(out, "0.contents.header.contents.2.text").String())
	assert.Contains(t, out, "⏳ 數學作業 - 2026年10月16日(明天)")
	assert.Contains(t, out, "✅ 英文作業")
	assert.Contains(t, out, "總計: 3")
	assert.Equal(t, dialogue.ActAddNewTask, gjson.Get(out, "0.contents.footer.contents.0.action.data").String())
}

func TestRenderNeverEmitsEmptyText(t *testing.T) {
	out := renderJSON(t, dialogue.RecognitionCard{})
	gjson.Get(out, "0.contents.body.contents").ForEach(func(_, c gjson.Result) bool {
		if c.Get("type").String() == "text" {
			assert.NotEmpty(t, c.Get("text").String())
		}
		return true
	})
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "abc", truncate("abc", 3))
	assert.Equal(t, "ab…", truncate("abcd", 3))
	assert.Equal(t, "情…", truncate("情緒檢測", 2))
	assert.Equal(t, "a", truncate("abc", 1))
}
