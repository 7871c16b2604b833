package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/jwalitptl/crm-api/internal/model"
	"github.com/jwalitptl/crm-api/internal/repository"
)

type taskRepository struct {
	*BaseRepository
}

func NewTaskRepository(base *BaseRepository) repository.TaskRepository {
	return &taskRepository{BaseRepository: base}
}

func (r *taskRepository) Create(ctx context.Context, task *model.Task) error {
	query := `
        INSERT INTO tasks (
            id, organization_id, title, kind, status, creator_id,
            assignee_id, due_at, created_at, updated_at
        ) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
    `

	_, err := r.GetDB().ExecContext(ctx, query,
		task.ID,
		task.OrganizationID,
		task.Title,
		task.Kind,
		task.Status,
		task.CreatorID,
		task.AssigneeID,
		task.DueAt,
		task.CreatedAt,
		task.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create task: %w", err)
	}
	return nil
}

func (r *taskRepository) Get(ctx context.Context, id uuid.UUID) (*model.Task, error) {
	var task model.Task
	query := `SELECT * FROM tasks WHERE id = $1`
	if err := r.GetDB().GetContext(ctx, &task, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get task: %w", err)
	}
	return &task, nil
}

func (r *taskRepository) ListOpenByAssignee(ctx context.Context, assigneeID uuid.UUID) ([]*model.Task, error) {
	query := `
        SELECT * FROM tasks
        WHERE assignee_id = $1 AND status = $2
        ORDER BY due_at ASC NULLS LAST
    `
	var tasks []*model.Task
	if err := r.GetDB().SelectContext(ctx, &tasks, query, assigneeID, model.TaskStatusOpen); err != nil {
		return nil, fmt.Errorf("failed to list open tasks: %w", err)
	}
	return tasks, nil
}
