package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/nhle/mood-assistant/internal/model"
)

const taskColumns = `id, user_id, seq, name, type, estimated_time, due_date,
	status, created_at, completed_at`

// AddTask inserts a new pending task for userID. The sequence id is
// MAX(seq)+1 for that user, computed inside the insert transaction while
// the user's lock is held.
func (s *SQLiteStore) AddTask(
	ctx context.Context,
	userID string,
	draft model.TaskDraft,
) (*model.Task, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, fmt.Errorf("task user id must not be empty")
	}

	unlock := s.locks.Lock(userID)
	defer unlock()

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	var maxSeq int
	err = tx.GetContext(ctx, &maxSeq,
		"SELECT COALESCE(MAX(seq), 0) FROM tasks WHERE user_id = ?", userID)
	if err != nil {
		return nil, fmt.Errorf("getting max seq for %s: %w", userID, err)
	}

	task := model.Task{
		Key:           uuid.New().String(),
		UserID:        userID,
		ID:            maxSeq + 1,
		Name:          draft.Name,
		Type:          draft.Type,
		EstimatedTime: draft.EstimatedTime,
		DueDate:       draft.DueDate,
		Status:        model.TaskStatusPending,
		CreatedAt:     s.now().UTC(),
	}

	_, err = tx.NamedExecContext(ctx, `
		INSERT INTO tasks (
			id, user_id, seq, name, type, estimated_time, due_date,
			status, created_at, completed_at
		) VALUES (
			:id, :user_id, :seq, :name, :type, :estimated_time, :due_date,
			:status, :created_at, :completed_at
		)`, task)
	if err != nil {
		return nil, fmt.Errorf("creating task for %s: %w", userID, err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing task for %s: %w", userID, err)
	}

	return &task, nil
}

// CompleteTask transitions the earliest pending task with an exactly
// matching name to completed. At most one task changes per call.
func (s *SQLiteStore) CompleteTask(
	ctx context.Context,
	userID, name string,
) (*model.Task, error) {
	unlock := s.locks.Lock(userID)
	defer unlock()

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	var task model.Task
	err = tx.GetContext(ctx, &task,
		"SELECT "+taskColumns+` FROM tasks
		WHERE user_id = ? AND name = ? AND status = ?
		ORDER BY seq ASC LIMIT 1`,
		userID, name, model.TaskStatusPending)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("completing %q for %s: %w", name, userID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("finding task %q for %s: %w", name, userID, err)
	}

	now := s.now().UTC()
	_, err = tx.ExecContext(ctx,
		"UPDATE tasks SET status = ?, completed_at = ? WHERE id = ?",
		model.TaskStatusCompleted, now, task.Key)
	if err != nil {
		return nil, fmt.Errorf("completing task %s: %w", task.Key, err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing completion of %s: %w", task.Key, err)
	}

	task.Status = model.TaskStatusCompleted
	task.CompletedAt = &now
	return &task, nil
}

// Summarize returns the user's tasks in insertion order with counters.
func (s *SQLiteStore) Summarize(
	ctx context.Context,
	userID string,
) (*model.TaskSummary, error) {
	var tasks []model.Task
	err := s.db.SelectContext(ctx, &tasks,
		"SELECT "+taskColumns+" FROM tasks WHERE user_id = ? ORDER BY seq ASC",
		userID)
	if err != nil {
		return nil, fmt.Errorf("listing tasks for %s: %w", userID, err)
	}

	return model.NewTaskSummary(tasks), nil
}
