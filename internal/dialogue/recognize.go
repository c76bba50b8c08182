package dialogue

import (
	"fmt"
	"strings"

	"github.com/nhle/mood-assistant/internal/model"
)

const (
	confidenceMatched = "信心度: 90%"
	confidenceGuess   = "信心度: 60%"

	unknownDue = "未設定"
)

// recognition is the completion recognizer's best candidate.
type recognition struct {
	task       model.TaskDraft
	keyword    string
	confidence string
}

func (r recognition) card() RecognitionCard {
	return RecognitionCard{
		Task:        r.task,
		Confidence:  r.confidence,
		Rationale:   fmt.Sprintf("使用者輸入包含關鍵字「%s」，與作業名稱「%s」高度匹配。", r.keyword, r.task.Name),
		ConfirmData: ConfirmCompletionData(r.task.Name),
		RejectData:  ActNotThisTask,
	}
}

// matchPending looks for one of the user's pending tasks in text. A full
// name match anywhere wins over a match on the name without its 報告/作業
// suffix.
func matchPending(text string, pending []model.Task) (recognition, bool) {
	for _, t := range pending {
		if t.Name != "" && strings.Contains(text, t.Name) {
			return recognition{task: t.Draft(), keyword: t.Name, confidence: confidenceMatched}, true
		}
	}
	for _, t := range pending {
		stem := taskStem(t.Name)
		if stem != "" && strings.Contains(text, stem) {
			return recognition{task: t.Draft(), keyword: stem, confidence: confidenceMatched}, true
		}
	}
	return recognition{}, false
}

func taskStem(name string) string {
	stem := name
	for _, suffix := range []string{"報告", "作業"} {
		stem = strings.TrimSuffix(stem, suffix)
	}
	return strings.TrimSpace(stem)
}

// guessCompletion proposes a canned task from keywords alone. It is used
// when nothing the user has pending appears in the text.
func guessCompletion(text string) recognition {
	lower := strings.ToLower(text)
	switch {
	case strings.Contains(lower, "agent") || strings.Contains(lower, "ai"):
		return recognition{
			task: model.TaskDraft{
				Name: "AI agent 報告", Type: "報告",
				EstimatedTime: "3 小時", DueDate: unknownDue,
			},
			keyword:    "AI agent",
			confidence: confidenceGuess,
		}
	case strings.Contains(text, "作業"):
		return recognition{
			task: model.TaskDraft{
				Name: "作業系統", Type: "作業",
				EstimatedTime: "2 小時", DueDate: unknownDue,
			},
			keyword:    "作業",
			confidence: confidenceGuess,
		}
	default:
		return recognition{
			task: model.TaskDraft{
				Name: "新作業", Type: "其他",
				EstimatedTime: "2 小時", DueDate: unknownDue,
			},
			keyword:    "完成",
			confidence: confidenceGuess,
		}
	}
}
