package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/jwalitptl/crm-api/internal/model"
	"github.com/jwalitptl/crm-api/internal/repository"
)

type noticeRepository struct {
	*BaseRepository
}

func NewNoticeRepository(base *BaseRepository) repository.NoticeRepository {
	return &noticeRepository{BaseRepository: base}
}

func (r *noticeRepository) Create(ctx context.Context, notice *model.Notice) error {
	query := `
        INSERT INTO notices (
            id, recipient_id, organization_id, type, title, message,
            entity_kind, entity_id, priority, is_read, action_ref, metadata, created_at
        ) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
    `

	_, err := r.GetDB().ExecContext(ctx, query,
		notice.ID,
		notice.RecipientID,
		notice.OrganizationID,
		notice.Type,
		notice.Title,
		notice.Message,
		notice.EntityKind,
		notice.EntityID,
		notice.Priority,
		notice.IsRead,
		notice.ActionRef,
		notice.Metadata,
		notice.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create notice: %w", err)
	}
	return nil
}

func (r *noticeRepository) Get(ctx context.Context, id uuid.UUID) (*model.Notice, error) {
	var notice model.Notice
	query := `SELECT * FROM notices WHERE id = $1`
	if err := r.GetDB().GetContext(ctx, &notice, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get notice: %w", err)
	}
	return &notice, nil
}

func (r *noticeRepository) ListForUser(ctx context.Context, userID uuid.UUID, limit int) ([]*model.Notice, error) {
	query := `
        SELECT * FROM notices
        WHERE recipient_id = $1
        ORDER BY created_at DESC
        LIMIT $2
    `
	var notices []*model.Notice
	if err := r.GetDB().SelectContext(ctx, &notices, query, userID, limit); err != nil {
		return nil, fmt.Errorf("failed to list notices: %w", err)
	}
	return notices, nil
}

func (r *noticeRepository) ListAllForUser(ctx context.Context, userID uuid.UUID) ([]*model.Notice, error) {
	query := `SELECT * FROM notices WHERE recipient_id = $1 ORDER BY created_at DESC`
	var notices []*model.Notice
	if err := r.GetDB().SelectContext(ctx, &notices, query, userID); err != nil {
		return nil, fmt.Errorf("failed to list notices: %w", err)
	}
	return notices, nil
}

func (r *noticeRepository) UnreadCount(ctx context.Context, userID uuid.UUID) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM notices WHERE recipient_id = $1 AND is_read = false`
	if err := r.GetDB().GetContext(ctx, &count, query, userID); err != nil {
		return 0, fmt.Errorf("failed to count unread notices: %w", err)
	}
	return count, nil
}

func (r *noticeRepository) MarkRead(ctx context.Context, id uuid.UUID) error {
	query := `UPDATE notices SET is_read = true WHERE id = $1`
	result, err := r.GetDB().ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to mark notice read: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (r *noticeRepository) MarkAllRead(ctx context.Context, userID uuid.UUID) error {
	query := `UPDATE notices SET is_read = true WHERE recipient_id = $1 AND is_read = false`
	if _, err := r.GetDB().ExecContext(ctx, query, userID); err != nil {
		return fmt.Errorf("failed to mark all notices read: %w", err)
	}
	return nil
}

func (r *noticeRepository) MarkResolved(ctx context.Context, id uuid.UUID) error {
	query := `UPDATE notices SET is_read = true, resolved_at = $2 WHERE id = $1`
	if _, err := r.GetDB().ExecContext(ctx, query, id, time.Now()); err != nil {
		return fmt.Errorf("failed to resolve notice: %w", err)
	}
	return nil
}

func (r *noticeRepository) ClearAll(ctx context.Context, userID uuid.UUID) error {
	query := `DELETE FROM notices WHERE recipient_id = $1`
	if _, err := r.GetDB().ExecContext(ctx, query, userID); err != nil {
		return fmt.Errorf("failed to clear notices: %w", err)
	}
	return nil
}

func (r *noticeRepository) DeleteByIDs(ctx context.Context, ids []uuid.UUID) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	query := `DELETE FROM notices WHERE id = ANY($1)`
	result, err := r.GetDB().ExecContext(ctx, query, pq.Array(ids))
	if err != nil {
		return 0, fmt.Errorf("failed to delete notices: %w", err)
	}
	return result.RowsAffected()
}

func (r *noticeRepository) DeleteByTypeAndEntity(ctx context.Context, userID uuid.UUID, noticeType model.NoticeType, entityID uuid.UUID) error {
	query := `DELETE FROM notices WHERE recipient_id = $1 AND type = $2 AND entity_id = $3`
	if _, err := r.GetDB().ExecContext(ctx, query, userID, noticeType, entityID); err != nil {
		return fmt.Errorf("failed to delete notices by type and entity: %w", err)
	}
	return nil
}

func (r *noticeRepository) DeleteReadOlderThan(ctx context.Context, before time.Time) (int64, error) {
	query := `DELETE FROM notices WHERE is_read = TRUE AND resolved_at IS NULL AND created_at < $1`
	result, err := r.GetDB().ExecContext(ctx, query, before)
	if err != nil {
		return 0, fmt.Errorf("failed to delete old read notices: %w", err)
	}
	return result.RowsAffected()
}

func (r *noticeRepository) ListRecipients(ctx context.Context) ([]uuid.UUID, error) {
	query := `SELECT DISTINCT recipient_id FROM notices`
	var ids []uuid.UUID
	if err := r.GetDB().SelectContext(ctx, &ids, query); err != nil {
		return nil, fmt.Errorf("failed to list notice recipients: %w", err)
	}
	return ids, nil
}

func (r *noticeRepository) FindRecentByEntity(ctx context.Context, userID uuid.UUID, noticeType model.NoticeType, entityKind model.EntityKind, entityID uuid.UUID, since time.Time) (*model.Notice, error) {
	query := `
        SELECT * FROM notices
        WHERE recipient_id = $1 AND type = $2 AND entity_kind = $3 AND entity_id = $4 AND created_at >= $5
        ORDER BY created_at DESC
        LIMIT 1
    `
	var notice model.Notice
	if err := r.GetDB().GetContext(ctx, &notice, query, userID, noticeType, entityKind, entityID, since); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find notice by entity: %w", err)
	}
	return &notice, nil
}

func (r *noticeRepository) FindRecentByContent(ctx context.Context, userID uuid.UUID, noticeType model.NoticeType, title, message string, since time.Time) (*model.Notice, error) {
	query := `
        SELECT * FROM notices
        WHERE recipient_id = $1 AND type = $2 AND title = $3 AND message = $4 AND created_at >= $5
        ORDER BY created_at DESC
        LIMIT 1
    `
	var notice model.Notice
	if err := r.GetDB().GetContext(ctx, &notice, query, userID, noticeType, title, message, since); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find notice by content: %w", err)
	}
	return &notice, nil
}
