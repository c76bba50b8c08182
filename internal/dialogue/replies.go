package dialogue

import (
	"fmt"
	"strings"

	"github.com/nhle/mood-assistant/internal/model"
	"github.com/nhle/mood-assistant/internal/survey"
)

const (
	greetingText = "你好！我是你的情緒小助手 😊\n\n請選擇以下功能："

	modifyText = "請重新輸入您的作業資訊，例如：\n\n" +
		"• 我明天要交AI報告，大概3小時\n" +
		"• 後天要完成作業系統，預計2小時\n" +
		"• 我需要做一份報告，明天截止"

	cancelText = "已取消新增作業。您可以重新輸入作業資訊，或選擇其他功能。"

	notThisTaskText = "抱歉，我可能辨識錯誤了。請重新輸入您完成的作業名稱，例如：\n\n" +
		"• 我完成了 AI agent 報告\n" +
		"• 作業系統做完了\n" +
		"• 我交完了報告"

	continueTasksText = "請選擇您要完成的作業，或直接輸入作業名稱，例如：\n\n" +
		"• 我完成了專題\n" +
		"• 作業系統做完了\n" +
		"• 國文作業完成了"

	completeTaskText = "請輸入您要完成的作業名稱，例如：\n\n" +
		"• 我完成了專題\n" +
		"• 作業系統做完了\n" +
		"• 國文作業完成了"

	addNewTaskText = "請輸入您要新增的作業資訊，例如：\n\n" +
		"• 我明天要交專題報告，大概5小時\n" +
		"• 後天要完成程式作業，預計3小時\n" +
		"• 我需要做一份簡報，下週截止"

	noTasksText = "📄 您目前沒有任何作業。\n\n請使用「新增作業」功能來添加您的第一個作業！"

	storageErrorText = "⚠️ 系統暫時無法處理您的請求，請稍後再試。"

	weatherUnavailableText = "天氣查詢服務目前無法使用，請稍後再試。"
)

var emotionReplies = map[string]string{
	"better":    "很開心能為你帶來心情上的平靜，維持每日舒心的習慣，有助於長期情緒的舒緩和穩定 😌",
	"no_change": "沒關係，情緒的變化需要時間。持續的關懷和陪伴會慢慢產生效果 💪",
	"worse":     "我理解你的感受。如果情緒持續低落，建議尋求專業的心理諮商協助 🤗",
	"no_issue":  "很好！保持正向的心態，繼續享受生活的美好 ✨",
}

// WeatherCities are offered by the weather menu.
var WeatherCities = []string{"台北", "高雄", "台中", "花蓮"}

// MainMenu is the top-level service menu.
func MainMenu() ChoiceMenu {
	return ChoiceMenu{
		AltText: "主選單",
		Title:   "🧠 情緒小助手",
		Body:    "請選擇您需要的服務：",
		Options: []Option{
			{Label: "📋 填寫情緒自我檢測", Data: ActStartSurvey},
			{Label: "📝 紀錄我的情緒", Data: ActEmotionRecord},
			{Label: "🌤️ 天氣查詢", Data: ActWeatherMenu},
		},
	}
}

func emotionMenu() ChoiceMenu {
	return ChoiceMenu{
		AltText: "紀錄我的情緒",
		Title:   "📝 紀錄我的情緒",
		Body:    "經過剛才的舒心，你有感受到情緒的變化嗎？",
		Options: []Option{
			{Label: "🌱 感覺有變好", Data: EmotionData("better")},
			{Label: "🌱 沒有感覺到變化", Data: EmotionData("no_change")},
			{Label: "🌱 感覺變差", Data: EmotionData("worse")},
			{Label: "🌱 原本沒有情緒困擾", Data: EmotionData("no_issue")},
		},
	}
}

func weatherMenu() ChoiceMenu {
	opts := make([]Option, 0, len(WeatherCities))
	for _, c := range WeatherCities {
		opts = append(opts, Option{Label: "🌱 " + c + "天氣", Data: WeatherData(c)})
	}
	return ChoiceMenu{
		AltText: "天氣查詢",
		Title:   "🌤️ 天氣查詢",
		Body:    "請選擇要查詢的城市：",
		Options: opts,
	}
}

func greeting() []Block {
	return []Block{Text{Text: greetingText}, MainMenu()}
}

func withMenu(text string) []Block {
	return []Block{Text{Text: text}, MainMenu()}
}

func echoText(msg string) string {
	return fmt.Sprintf("您說的是：%s\n\n試試輸入「你好」來開始互動！", msg)
}

func progressCard(p survey.Prompt) ProgressCard {
	opts := make([]Option, 0, len(p.Question.Options))
	for _, o := range p.Question.Options {
		opts = append(opts, Option{Label: o.Label, Data: SurveyAnswerData(p.Index, o.Value)})
	}
	return ProgressCard{
		Title:         "📋 情緒自我檢測 - " + p.ProgressLabel(),
		ProgressLabel: p.ProgressLabel(),
		Prompt:        "💭 " + p.Question.Prompt,
		Options:       opts,
	}
}

func confirmationCard(d model.TaskDraft) ConfirmationCard {
	return ConfirmationCard{
		Title:    "🍎 AI 智慧解析",
		Subtitle: "請確認以下資訊是否正確",
		Fields: []Field{
			{Icon: "✏️", Label: "作業名稱", Value: d.Name},
			{Icon: "🕒", Label: "預估時間", Value: d.EstimatedTime},
			{Icon: "📊", Label: "作業類型", Value: d.Type},
			{Icon: "📅", Label: "截止日期", Value: d.DueDate},
		},
		ConfirmData: ConfirmHomeworkData(d),
		ModifyData:  ActModifyHomework,
		CancelData:  ActCancelHomework,
	}
}

func addedText(d model.TaskDraft) string {
	return fmt.Sprintf("✅ 作業已成功新增！\n\n📋 作業名稱：%s\n⏰ 預估時間：%s\n📊 作業類型：%s\n📅 截止日期：%s\n\n您的作業已加入行程管理系統！",
		d.Name, d.EstimatedTime, d.Type, d.DueDate)
}

func alreadyAddedText(d model.TaskDraft) string {
	return fmt.Sprintf("ℹ️ 作業「%s」已經新增過了，不會重複加入。", d.Name)
}

func notFoundText(name string) string {
	return fmt.Sprintf("❌ 找不到作業「%s」，請確認作業名稱是否正確。", name)
}

func summaryCard(s *model.TaskSummary) SummaryCard {
	latest := "作業"
	if t := s.LatestCompleted(); t != nil {
		latest = t.Name
	}

	pending := s.PendingTasks()
	if len(pending) > 5 {
		pending = pending[:5]
	}
	completed := s.CompletedTasks()
	if len(completed) > 3 {
		completed = completed[len(completed)-3:]
	}

	return SummaryCard{
		Headline:        "🎉 太棒了!",
		Latest:          latest,
		Total:           s.Total,
		Pending:         s.Pending,
		Completed:       s.Completed,
		PendingTasks:    pending,
		RecentCompleted: completed,
		Actions: []Option{
			{Label: "✅ 繼續完成其他作業", Data: ActContinueTasks},
			{Label: "📄 查看所有作業", Data: ActViewAllTasks},
		},
		FooterActions: []Option{
			{Label: "✅ 完成作業", Data: ActCompleteTask},
			{Label: "➕ 新增作業", Data: ActAddNewTask},
		},
	}
}

func taskLine(t model.Task) string {
	return fmt.Sprintf("• %s (%s) - %s - %s\n", t.Name, t.Type, t.EstimatedTime, t.DueDate)
}

// listingText renders every task of the summary grouped by status.
func listingText(s *model.TaskSummary) string {
	if s.Total == 0 {
		return noTasksText
	}

	var b strings.Builder
	b.WriteString("📄 您的所有作業：\n\n")

	if pending := s.PendingTasks(); len(pending) > 0 {
		fmt.Fprintf(&b, "⏳ 待完成 (%d項)：\n", len(pending))
		for _, t := range pending {
			b.WriteString(taskLine(t))
		}
		b.WriteString("\n")
	}

	if completed := s.CompletedTasks(); len(completed) > 0 {
		fmt.Fprintf(&b, "✅ 已完成 (%d項)：\n", len(completed))
		for _, t := range completed {
			b.WriteString(taskLine(t))
		}
	}

	return strings.TrimRight(b.String(), "\n")
}
