package model

// Option is one answer choice of a survey question.
type Option struct {
	Label string `json:"label"`
	Value int    `json:"value"`
}

// Question is an immutable survey catalog entry.
type Question struct {
	ID      int      `json:"id"`
	Prompt  string   `json:"prompt"`
	Options []Option `json:"options"`
}

// SurveySession is a user's in-progress self-assessment.
// While a session exists len(Answers) == CurrentQuestion.
type SurveySession struct {
	UserID          string
	Answers         []int
	CurrentQuestion int
}

// Clone returns a copy that does not share the answers slice.
func (s SurveySession) Clone() SurveySession {
	answers := make([]int, len(s.Answers))
	copy(answers, s.Answers)
	s.Answers = answers
	return s
}

// SurveyPhase enumerates the survey lifecycle from a user's point of view.
type SurveyPhase int

const (
	SurveyNotStarted SurveyPhase = iota
	SurveyInProgress
	SurveyCompleted
)

func (p SurveyPhase) String() string {
	switch p {
	case SurveyInProgress:
		return "in_progress"
	case SurveyCompleted:
		return "completed"
	default:
		return "not_started"
	}
}

// SurveyState is the explicit survey state of one user. Index is only
// meaningful while Phase is SurveyInProgress.
type SurveyState struct {
	Phase SurveyPhase
	Index int
}
