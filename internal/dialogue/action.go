package dialogue

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/nhle/mood-assistant/internal/model"
)

// Fixed action data.
const (
	ActStartSurvey    = "start_survey"
	ActEmotionRecord  = "emotion_record"
	ActWeatherMenu    = "weather_menu"
	ActModifyHomework = "modify_homework"
	ActCancelHomework = "cancel_homework"
	ActNotThisTask    = "not_this_task"
	ActContinueTasks  = "continue_tasks"
	ActViewAllTasks   = "view_all_tasks"
	ActCompleteTask   = "complete_task"
	ActAddNewTask     = "add_new_task"
)

const (
	prefixSurvey            = "survey_"
	prefixConfirmHomework   = "confirm_homework_"
	prefixConfirmCompletion = "confirm_completion_"
	prefixEmotion           = "emotion_"
	prefixWeather           = "weather_"
)

// ActionKind discriminates parsed action data.
type ActionKind int

const (
	ActionUnknown ActionKind = iota
	ActionStatic
	ActionSurveyAnswer
	ActionConfirmHomework
	ActionConfirmCompletion
	ActionEmotion
	ActionWeather
)

// Action is decoded postback data.
type Action struct {
	Kind ActionKind

	// Static holds the constant for ActionStatic.
	Static string

	Question int
	Value    int

	Draft    model.TaskDraft
	TaskName string
	Emotion  string
	City     string
}

var staticActions = map[string]bool{
	ActStartSurvey:    true,
	ActEmotionRecord:  true,
	ActWeatherMenu:    true,
	ActModifyHomework: true,
	ActCancelHomework: true,
	ActNotThisTask:    true,
	ActContinueTasks:  true,
	ActViewAllTasks:   true,
	ActCompleteTask:   true,
	ActAddNewTask:     true,
}

var emotionKinds = map[string]bool{
	"better":    true,
	"no_change": true,
	"worse":     true,
	"no_issue":  true,
}

// Field values are escaped so "_" can appear inside them. Values without
// "_" or "%" encode to themselves.
var (
	fieldEscaper   = strings.NewReplacer("%", "%25", "_", "%5F")
	fieldUnescaper = strings.NewReplacer("%5F", "_", "%25", "%")
)

func escapeField(s string) string   { return fieldEscaper.Replace(s) }
func unescapeField(s string) string { return fieldUnescaper.Replace(s) }

// SurveyAnswerData encodes an answer button.
func SurveyAnswerData(question, value int) string {
	return fmt.Sprintf("%s%d_%d", prefixSurvey, question, value)
}

// MaxActionData is the longest postback data LINE accepts, in characters.
const MaxActionData = 300

// ConfirmHomeworkData encodes a draft into its confirmation payload. A name
// too long for MaxActionData is shortened from the end.
func ConfirmHomeworkData(d model.TaskDraft) string {
	return fitName(d.Name, func(name string) string {
		return prefixConfirmHomework + strings.Join([]string{
			escapeField(name),
			escapeField(d.EstimatedTime),
			escapeField(d.Type),
			escapeField(d.DueDate),
		}, "_")
	})
}

// ConfirmCompletionData encodes a completion confirmation for name,
// shortened like ConfirmHomeworkData.
func ConfirmCompletionData(name string) string {
	return fitName(name, func(name string) string {
		return prefixConfirmCompletion + escapeField(name)
	})
}

// fitName drops runes from the end of name until encode(name) is at most
// MaxActionData characters or name is empty.
func fitName(name string, encode func(string) string) string {
	runes := []rune(name)
	data := encode(name)
	for n := utf8.RuneCountInString(data); n > MaxActionData && len(runes) > 0; n = utf8.RuneCountInString(data) {
		// An escaped rune takes at most three characters.
		cut := max(1, (n-MaxActionData)/3)
		runes = runes[:max(0, len(runes)-cut)]
		data = encode(string(runes))
	}
	return data
}

// EmotionData encodes an emotion record choice.
func EmotionData(kind string) string {
	return prefixEmotion + kind
}

// WeatherData encodes a weather city choice.
func WeatherData(city string) string {
	return prefixWeather + escapeField(city)
}

// ParseAction decodes postback data. ok is false for anything the router
// does not understand.
func ParseAction(data string) (Action, bool) {
	if staticActions[data] {
		return Action{Kind: ActionStatic, Static: data}, true
	}

	switch {
	case strings.HasPrefix(data, prefixSurvey):
		parts := strings.Split(strings.TrimPrefix(data, prefixSurvey), "_")
		if len(parts) != 2 {
			return Action{}, false
		}
		q, err := strconv.Atoi(parts[0])
		if err != nil {
			return Action{}, false
		}
		v, err := strconv.Atoi(parts[1])
		if err != nil {
			return Action{}, false
		}
		return Action{Kind: ActionSurveyAnswer, Question: q, Value: v}, true

	case strings.HasPrefix(data, prefixConfirmHomework):
		parts := strings.Split(strings.TrimPrefix(data, prefixConfirmHomework), "_")
		if len(parts) != 4 {
			return Action{}, false
		}
		return Action{
			Kind: ActionConfirmHomework,
			Draft: model.TaskDraft{
				Name:          unescapeField(parts[0]),
				EstimatedTime: unescapeField(parts[1]),
				Type:          unescapeField(parts[2]),
				DueDate:       unescapeField(parts[3]),
			},
		}, true

	case strings.HasPrefix(data, prefixConfirmCompletion):
		name := unescapeField(strings.TrimPrefix(data, prefixConfirmCompletion))
		if name == "" {
			return Action{}, false
		}
		return Action{Kind: ActionConfirmCompletion, TaskName: name}, true

	case strings.HasPrefix(data, prefixEmotion):
		kind := strings.TrimPrefix(data, prefixEmotion)
		if !emotionKinds[kind] {
			return Action{}, false
		}
		return Action{Kind: ActionEmotion, Emotion: kind}, true

	case strings.HasPrefix(data, prefixWeather):
		city := unescapeField(strings.TrimPrefix(data, prefixWeather))
		if city == "" {
			return Action{}, false
		}
		return Action{Kind: ActionWeather, City: city}, true
	}

	return Action{}, false
}
