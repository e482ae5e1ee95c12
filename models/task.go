package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// TaskStatus is the lifecycle state of a task.
type TaskStatus string

const (
	TaskStatusTodo       TaskStatus = "todo"
	TaskStatusInProgress TaskStatus = "in_progress"
	TaskStatusDone       TaskStatus = "done"
)

func (s TaskStatus) Valid() bool {
	switch s {
	case TaskStatusTodo, TaskStatusInProgress, TaskStatusDone:
		return true
	}
	return false
}

// TaskPriority ranks how urgent a task is.
type TaskPriority string

const (
	TaskPriorityLow    TaskPriority = "low"
	TaskPriorityMedium TaskPriority = "medium"
	TaskPriorityHigh   TaskPriority = "high"
)

func (p TaskPriority) Valid() bool {
	switch p {
	case TaskPriorityLow, TaskPriorityMedium, TaskPriorityHigh:
		return true
	}
	return false
}

// Task is a household to-do item.
type Task struct {
	ID          string       `gorm:"type:uuid;primaryKey" json:"id"`
	Title       string       `gorm:"size:100;not null" json:"title"`
	Description string       `gorm:"size:1024" json:"description,omitempty"`
	Status      TaskStatus   `gorm:"size:16;not null;default:todo;index" json:"status"`
	Priority    TaskPriority `gorm:"size:16;not null;default:medium" json:"priority"`
	AssigneeID  string       `gorm:"size:64" json:"assigneeId,omitempty"`
	CreatedAt   time.Time    `json:"createdAt"`
	UpdatedAt   time.Time    `json:"updatedAt"`
}

func (t *Task) BeforeCreate(_ *gorm.DB) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	return nil
}

// TaskInput carries the mutable fields of a task through validation.
type TaskInput struct {
	Title       string       `json:"title"`
	Description string       `json:"description"`
	Status      TaskStatus   `json:"status"`
	Priority    TaskPriority `json:"priority"`
	AssigneeID  string       `json:"assigneeId"`
}

func (in TaskInput) Validate() FieldErrors {
	errs := FieldErrors{}
	if in.Title == "" {
		errs.Add("title", "title is required")
	}
	if len(in.Title) > 100 {
		errs.Add("title", "title must be at most 100 characters")
	}
	if !in.Status.Valid() {
		errs.Add("status", "status must be one of todo, in_progress, done")
	}
	if !in.Priority.Valid() {
		errs.Add("priority", "priority must be one of low, medium, high")
	}
	return errs
}
