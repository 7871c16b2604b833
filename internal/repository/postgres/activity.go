package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jwalitptl/crm-api/internal/model"
	"github.com/jwalitptl/crm-api/internal/repository"
)

type activityRepository struct {
	*BaseRepository
}

func NewActivityRepository(base *BaseRepository) repository.ActivityRepository {
	return &activityRepository{BaseRepository: base}
}

func (r *activityRepository) Create(ctx context.Context, entry *model.ActivityLogEntry) error {
	query := `
        INSERT INTO activity_log (
            id, actor_id, organization_id, action_type, entity_kind,
            entity_id, entity_title, description, metadata, created_at
        ) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
    `

	_, err := r.GetDB().ExecContext(ctx, query,
		entry.ID,
		entry.ActorID,
		entry.OrganizationID,
		entry.ActionType,
		entry.EntityKind,
		entry.EntityID,
		entry.EntityTitle,
		entry.Description,
		entry.Metadata,
		entry.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create activity entry: %w", err)
	}
	return nil
}

func (r *activityRepository) List(ctx context.Context, filters *model.ActivityFilters) ([]*model.ActivityLogEntry, error) {
	query := `SELECT * FROM activity_log WHERE organization_id = $1`
	args := []interface{}{filters.OrganizationID}

	if filters.ActorID != nil {
		args = append(args, *filters.ActorID)
		query += fmt.Sprintf(" AND actor_id = $%d", len(args))
	}

	if filters.EntityKind != "" {
		args = append(args, filters.EntityKind)
		query += fmt.Sprintf(" AND entity_kind = $%d", len(args))
	}

	if filters.EntityID != nil {
		args = append(args, *filters.EntityID)
		query += fmt.Sprintf(" AND entity_id = $%d", len(args))
	}

	limit := filters.Limit
	if limit <= 0 {
		limit = 50
	}
	args = append(args, limit)
	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d", len(args))

	var entries []*model.ActivityLogEntry
	if err := r.GetDB().SelectContext(ctx, &entries, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list activity entries: %w", err)
	}
	return entries, nil
}

func (r *activityRepository) FindRecentDuplicate(ctx context.Context, actorID uuid.UUID, entityKind model.EntityKind, entityID uuid.UUID, description string, since time.Time) (*model.ActivityLogEntry, error) {
	query := `
        SELECT * FROM activity_log
        WHERE actor_id = $1 AND entity_kind = $2 AND entity_id = $3 AND description = $4 AND created_at >= $5
        ORDER BY created_at DESC
        LIMIT 1
    `
	var entry model.ActivityLogEntry
	if err := r.GetDB().GetContext(ctx, &entry, query, actorID, entityKind, entityID, description, since); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find duplicate activity entry: %w", err)
	}
	return &entry, nil
}
