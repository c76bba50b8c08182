package model

import "time"

// TaskStatus is the lifecycle state of a tracked task.
type TaskStatus string

// Task status constants.
const (
	TaskStatusPending   TaskStatus = "pending"
	TaskStatusCompleted TaskStatus = "completed"
)

// Task is a homework/work item a user confirmed from an extracted draft.
type Task struct {
	// Key is the storage-wide unique identifier (UUID).
	Key string `json:"key" db:"id"`

	// UserID is the chat user owning this task.
	UserID string `json:"user_id" db:"user_id"`

	// ID is the per-user sequence number, starting at 1 and never reused.
	ID int `json:"id" db:"seq"`

	Name          string `json:"name" db:"name"`
	Type          string `json:"type" db:"type"`
	EstimatedTime string `json:"estimated_time" db:"estimated_time"`

	// DueDate is the formatted due date including its relative-day
	// annotation, e.g. "2026年10月16日(明天)".
	DueDate string `json:"due_date" db:"due_date"`

	Status      TaskStatus `json:"status" db:"status"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty" db:"completed_at"`
}

// IsPending reports whether the task still awaits completion.
func (t Task) IsPending() bool { return t.Status == TaskStatusPending }

// TaskDraft is an extracted but unconfirmed task descriptor. It is never
// stored until the user confirms it.
type TaskDraft struct {
	Name          string `json:"name"`
	Type          string `json:"type"`
	EstimatedTime string `json:"estimated_time"`
	DueDate       string `json:"due_date"`
}

// Draft returns the descriptor fields of a stored task.
func (t Task) Draft() TaskDraft {
	return TaskDraft{
		Name:          t.Name,
		Type:          t.Type,
		EstimatedTime: t.EstimatedTime,
		DueDate:       t.DueDate,
	}
}

// TaskSummary is a read-only snapshot of one user's task collection.
type TaskSummary struct {
	Total     int
	Pending   int
	Completed int

	// Tasks is ordered by insertion (sequence id).
	Tasks []Task
}

// NewTaskSummary computes the counters for tasks, which must already be
// in insertion order.
func NewTaskSummary(tasks []Task) *TaskSummary {
	s := &TaskSummary{Total: len(tasks), Tasks: tasks}
	for _, t := range tasks {
		if t.IsPending() {
			s.Pending++
		} else {
			s.Completed++
		}
	}
	return s
}

// PendingTasks returns the pending tasks in insertion order.
func (s *TaskSummary) PendingTasks() []Task {
	return s.filter(TaskStatusPending)
}

// CompletedTasks returns the completed tasks in insertion order.
func (s *TaskSummary) CompletedTasks() []Task {
	return s.filter(TaskStatusCompleted)
}

// LatestCompleted returns the task completed most recently, or nil when
// nothing has been completed yet. Ties go to the later insertion.
func (s *TaskSummary) LatestCompleted() *Task {
	var latest *Task
	for i := range s.Tasks {
		t := &s.Tasks[i]
		if t.Status != TaskStatusCompleted {
			continue
		}
		if latest == nil || !completedBefore(t, latest) {
			latest = t
		}
	}
	if latest == nil {
		return nil
	}
	out := *latest
	return &out
}

func completedBefore(a, b *Task) bool {
	if a.CompletedAt == nil || b.CompletedAt == nil {
		return false
	}
	return a.CompletedAt.Before(*b.CompletedAt)
}

func (s *TaskSummary) filter(status TaskStatus) []Task {
	var out []Task
	for _, t := range s.Tasks {
		if t.Status == status {
			out = append(out, t)
		}
	}
	return out
}
