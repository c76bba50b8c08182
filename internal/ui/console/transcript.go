package console

import (
	"sync"

	"github.com/nhle/mood-assistant/internal/dialogue"
)

// Speaker identifies who wrote a transcript entry.
type Speaker string

const (
	SpeakerUser      Speaker = "user"
	SpeakerAssistant Speaker = "assistant"
)

const defaultTranscriptLimit = 200

// Entry is one rendered turn of the conversation.
type Entry struct {
	Speaker Speaker
	Content string

	// Options are the choices this entry offered, in display order.
	Options []dialogue.Option
}

// Transcript keeps the ordered conversation, trimming the oldest entries
// once the limit is reached. The first entry is always kept.
type Transcript struct {
	mu      sync.Mutex
	entries []Entry
	limit   int
}

// NewTranscript creates a transcript holding at most limit entries. A
// limit below two uses the default.
func NewTranscript(limit int) *Transcript {
	if limit < 2 {
		limit = defaultTranscriptLimit
	}
	return &Transcript{limit: limit}
}

// Add appends an entry.
func (t *Transcript) Add(e Entry) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.entries = append(t.entries, e)
	if len(t.entries) > t.limit {
		excess := len(t.entries) - t.limit
		trimmed := make([]Entry, 0, t.limit)
		trimmed = append(trimmed, t.entries[0])
		trimmed = append(trimmed, t.entries[1+excess:]...)
		t.entries = trimmed
	}
}

// Entries returns a copy of the transcript.
func (t *Transcript) Entries() []Entry {
	t.mu.Lock()
	defer t.mu.Unlock()

	out := make([]Entry, len(t.entries))
	copy(out, t.entries)
	return out
}

// LastOptions returns the options offered by the latest reply, which is
// what "/n" selects from. Options from before the user's last input do
// not count.
func (t *Transcript) LastOptions() []dialogue.Option {
	t.mu.Lock()
	defer t.mu.Unlock()

	for i := len(t.entries) - 1; i >= 0; i-- {
		if t.entries[i].Speaker == SpeakerUser {
			break
		}
		if len(t.entries[i].Options) > 0 {
			return t.entries[i].Options
		}
	}
	return nil
}

// Reset clears the transcript.
func (t *Transcript) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.entries = t.entries[:0]
}

// Len returns the number of entries.
func (t *Transcript) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.entries)
}
