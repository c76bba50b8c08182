package store

import (
	"context"
	"errors"

	"github.com/nhle/mood-assistant/internal/model"
)

// ErrNotFound is returned when no task matches a lookup.
var ErrNotFound = errors.New("task not found")

// Store defines the per-user task repository.
type Store interface {
	// AddTask appends a pending task built from draft with the user's next
	// sequence id.
	AddTask(ctx context.Context, userID string, draft model.TaskDraft) (*model.Task, error)

	// CompleteTask marks the earliest pending task named name as completed.
	// It returns ErrNotFound when the user has no such pending task.
	CompleteTask(ctx context.Context, userID, name string) (*model.Task, error)

	// Summarize returns all of the user's tasks in insertion order.
	Summarize(ctx context.Context, userID string) (*model.TaskSummary, error)
}
