package model

import (
	"time"

	"github.com/google/uuid"
)

type TaskStatus string

const (
	TaskStatusOpen      TaskStatus = "open"
	TaskStatusCompleted TaskStatus = "completed"
)

type TaskKind string

const (
	TaskKindCall    TaskKind = "call"
	TaskKindEmail   TaskKind = "email"
	TaskKindMeeting TaskKind = "meeting"
	TaskKindTodo    TaskKind = "todo"
)

type Task struct {
	ID             uuid.UUID  `json:"id" db:"id"`
	OrganizationID uuid.UUID  `json:"organization_id" db:"organization_id"`
	Title          string     `json:"title" db:"title"`
	Kind           TaskKind   `json:"kind" db:"kind"`
	Status         TaskStatus `json:"status" db:"status"`
	CreatorID      uuid.UUID  `json:"creator_id" db:"creator_id"`
	AssigneeID     uuid.UUID  `json:"assignee_id" db:"assignee_id"`
	DueAt          *time.Time `json:"due_at,omitempty" db:"due_at"`
	CreatedAt      time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at" db:"updated_at"`
}

type CreateTaskRequest struct {
	Title      string     `json:"title" binding:"required"`
	Kind       string     `json:"kind" binding:"omitempty,oneof=call email meeting todo"`
	AssigneeID string     `json:"assignee_id" binding:"required,uuid"`
	DueAt      *time.Time `json:"due_at"`
}
