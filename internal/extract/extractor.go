// Package extract turns a free-text homework utterance into a task draft
// using ordered keyword and pattern rules. The first matching rule of each
// ladder wins, and every utterance yields a complete draft.
package extract

import (
	"time"

	"github.com/nhle/mood-assistant/internal/model"
)

// Extractor parses utterances relative to its clock.
type Extractor struct {
	now func() time.Time
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithClock sets the clock used to resolve relative due dates.
func WithClock(now func() time.Time) Option {
	return func(x *Extractor) {
		x.now = now
	}
}

// New creates an Extractor using the wall clock unless overridden.
func New(opts ...Option) *Extractor {
	x := &Extractor{now: time.Now}
	for _, opt := range opts {
		opt(x)
	}
	return x
}

// Extract builds a draft from utterance. The same utterance at the same
// instant always yields the same draft.
func (x *Extractor) Extract(utterance string) model.TaskDraft {
	name, typ := NameAndType(utterance)
	return model.TaskDraft{
		Name:          name,
		Type:          typ,
		EstimatedTime: Effort(utterance),
		DueDate:       Due(utterance, x.now()),
	}
}
