package survey

import (
	"errors"
	"fmt"

	"github.com/nhle/mood-assistant/internal/keyed"
	"github.com/nhle/mood-assistant/internal/model"
)

var (
	// ErrNoSession is returned when an answer arrives for a user with no
	// survey in progress. Callers treat it as a silent no-op.
	ErrNoSession = errors.New("no survey in progress")

	// ErrInvalidAnswer is returned for answer values or question indexes
	// outside the catalog.
	ErrInvalidAnswer = errors.New("invalid survey answer")
)

// Prompt is a question ready to be shown, with its position.
type Prompt struct {
	Index    int
	Total    int
	Question model.Question
}

// ProgressLabel renders the position as "<pct>% (<i+1>/<N>)".
func (p Prompt) ProgressLabel() string {
	n := p.Index + 1
	return fmt.Sprintf("%d%% (%d/%d)", n*100/p.Total, n, p.Total)
}

// Outcome is the result of an accepted or re-presented answer. Exactly one
// of Next and Report is set, except for a stale answer after completion
// where both are nil.
type Outcome struct {
	Next   *Prompt
	Report *Report

	// Stale is set when the answer was not applied because it targeted a
	// question other than the current one.
	Stale bool
}

// Engine tracks survey sessions per user.
type Engine struct {
	sessions keyed.Store[model.SurveySession]
	finished keyed.Store[bool]
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithSessionStore replaces the in-memory session store.
func WithSessionStore(s keyed.Store[model.SurveySession]) EngineOption {
	return func(e *Engine) {
		e.sessions = s
	}
}

// NewEngine creates an Engine with in-memory session storage.
func NewEngine(opts ...EngineOption) *Engine {
	e := &Engine{
		sessions: keyed.NewMap[model.SurveySession](),
		finished: keyed.NewMap[bool](),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Start begins a new session for userID, discarding any existing one,
// and returns the first question.
func (e *Engine) Start(userID string) Prompt {
	e.sessions.Put(userID, model.SurveySession{UserID: userID, Answers: []int{}})
	e.finished.Delete(userID)
	return prompt(0)
}

// Answer applies value to the user's current question. It returns
// ErrNoSession when no survey is in progress.
func (e *Engine) Answer(userID string, value int) (Outcome, error) {
	if !ValidValue(value) {
		return Outcome{}, fmt.Errorf("answer %d: %w", value, ErrInvalidAnswer)
	}

	var (
		out Outcome
		err error
	)
	e.sessions.Update(userID, func(cur model.SurveySession, ok bool) (model.SurveySession, bool) {
		if !ok {
			err = ErrNoSession
			return cur, false
		}
		var keep bool
		cur, out, keep, err = e.apply(cur.Clone(), value)
		return cur, keep
	})
	return out, err
}

// AnswerQuestion applies value as the answer to question index, the form
// carried by answer buttons. A missing session is created on demand. An
// answer for any question other than the current one is not applied and
// the current question is presented again, so a stale or repeated button
// press never corrupts the session.
func (e *Engine) AnswerQuestion(userID string, index, value int) (Outcome, error) {
	if !ValidValue(value) {
		return Outcome{}, fmt.Errorf("answer %d: %w", value, ErrInvalidAnswer)
	}
	if index < 0 || index >= QuestionCount {
		return Outcome{}, fmt.Errorf("question %d: %w", index, ErrInvalidAnswer)
	}

	var (
		out Outcome
		err error
	)
	e.sessions.Update(userID, func(cur model.SurveySession, ok bool) (model.SurveySession, bool) {
		if !ok {
			if index != 0 && e.isFinished(userID) {
				// Late press on a survey that already produced its report.
				out = Outcome{Stale: true}
				return cur, false
			}
			cur = model.SurveySession{UserID: userID, Answers: []int{}}
			e.finished.Delete(userID)
		}

		if index != cur.CurrentQuestion {
			p := prompt(cur.CurrentQuestion)
			out = Outcome{Next: &p, Stale: true}
			return cur, true
		}

		var keep bool
		cur, out, keep, err = e.apply(cur.Clone(), value)
		return cur, keep
	})
	return out, err
}

// apply appends value and advances. It reports whether the session should
// be kept; a completed session is dropped.
func (e *Engine) apply(s model.SurveySession, value int) (model.SurveySession, Outcome, bool, error) {
	s.Answers = append(s.Answers, value)
	s.CurrentQuestion++

	if s.CurrentQuestion < QuestionCount {
		p := prompt(s.CurrentQuestion)
		return s, Outcome{Next: &p}, true, nil
	}

	report, err := Score(s.Answers)
	if err != nil {
		return s, Outcome{}, false, fmt.Errorf("scoring survey for %s: %w", s.UserID, err)
	}
	e.finished.Put(s.UserID, true)
	return s, Outcome{Report: report}, false, nil
}

// Active reports whether userID has a survey in progress.
func (e *Engine) Active(userID string) bool {
	_, ok := e.sessions.Get(userID)
	return ok
}

// Session returns a copy of the user's in-progress session.
func (e *Engine) Session(userID string) (model.SurveySession, bool) {
	s, ok := e.sessions.Get(userID)
	if !ok {
		return model.SurveySession{}, false
	}
	return s.Clone(), true
}

// State reports the explicit survey state of userID.
func (e *Engine) State(userID string) model.SurveyState {
	if s, ok := e.sessions.Get(userID); ok {
		return model.SurveyState{Phase: model.SurveyInProgress, Index: s.CurrentQuestion}
	}
	if e.isFinished(userID) {
		return model.SurveyState{Phase: model.SurveyCompleted}
	}
	return model.SurveyState{Phase: model.SurveyNotStarted}
}

func (e *Engine) isFinished(userID string) bool {
	done, ok := e.finished.Get(userID)
	return ok && done
}

func prompt(index int) Prompt {
	q, _ := Question(index)
	return Prompt{Index: index, Total: QuestionCount, Question: q}
}
