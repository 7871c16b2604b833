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

type dealRepository struct {
	*BaseRepository
}

func NewDealRepository(base *BaseRepository) repository.DealRepository {
	return &dealRepository{BaseRepository: base}
}

func (r *dealRepository) Create(ctx context.Context, deal *model.Deal) error {
	query := `
        INSERT INTO deals (
            id, organization_id, name, value, stage, owner_id,
            expected_close_date, created_at, updated_at
        ) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
    `

	_, err := r.GetDB().ExecContext(ctx, query,
		deal.ID,
		deal.OrganizationID,
		deal.Name,
		deal.Value,
		deal.Stage,
		deal.OwnerID,
		deal.ExpectedCloseDate,
		deal.CreatedAt,
		deal.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create deal: %w", err)
	}
	return nil
}

func (r *dealRepository) Get(ctx context.Context, id uuid.UUID) (*model.Deal, error) {
	var deal model.Deal
	query := `SELECT * FROM deals WHERE id = $1`
	if err := r.GetDB().GetContext(ctx, &deal, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get deal: %w", err)
	}
	return &deal, nil
}

func (r *dealRepository) UpdateStage(ctx context.Context, id uuid.UUID, stage model.DealStage) error {
	query := `UPDATE deals SET stage = $2, updated_at = $3 WHERE id = $1`
	result, err := r.GetDB().ExecContext(ctx, query, id, stage, time.Now())
	if err != nil {
		return fmt.Errorf("failed to update deal stage: %w", err)
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

func (r *dealRepository) ListClosingSoon(ctx context.Context, ownerID uuid.UUID, within time.Duration) ([]*model.Deal, error) {
	query := `
        SELECT * FROM deals
        WHERE owner_id = $1
          AND stage NOT IN ($2, $3)
          AND expected_close_date IS NOT NULL
          AND expected_close_date BETWEEN $4 AND $5
        ORDER BY expected_close_date ASC
    `
	now := time.Now()
	var deals []*model.Deal
	err := r.GetDB().SelectContext(ctx, &deals, query,
		ownerID, model.DealStageWon, model.DealStageLost, now, now.Add(within))
	if err != nil {
		return nil, fmt.Errorf("failed to list closing deals: %w", err)
	}
	return deals, nil
}
