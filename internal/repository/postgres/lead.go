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

type leadRepository struct {
	*BaseRepository
}

func NewLeadRepository(base *BaseRepository) repository.LeadRepository {
	return &leadRepository{BaseRepository: base}
}

func (r *leadRepository) Create(ctx context.Context, lead *model.Lead) error {
	query := `
        INSERT INTO leads (
            id, organization_id, name, email, phone, company, status,
            owner_id, pending_reassignment, requested_assignee_id, created_at, updated_at
        ) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
    `

	_, err := r.GetDB().ExecContext(ctx, query,
		lead.ID,
		lead.OrganizationID,
		lead.Name,
		lead.Email,
		lead.Phone,
		lead.Company,
		lead.Status,
		lead.OwnerID,
		lead.PendingReassignment,
		lead.RequestedAssigneeID,
		lead.CreatedAt,
		lead.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create lead: %w", err)
	}
	return nil
}

func (r *leadRepository) Get(ctx context.Context, id uuid.UUID) (*model.Lead, error) {
	var lead model.Lead
	query := `SELECT * FROM leads WHERE id = $1`
	if err := r.GetDB().GetContext(ctx, &lead, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get lead: %w", err)
	}
	return &lead, nil
}

func (r *leadRepository) UpdateOwner(ctx context.Context, id, ownerID uuid.UUID) error {
	query := `UPDATE leads SET owner_id = $2, updated_at = $3 WHERE id = $1`
	result, err := r.GetDB().ExecContext(ctx, query, id, ownerID, time.Now())
	if err != nil {
		return fmt.Errorf("failed to update lead owner: %w", err)
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

func (r *leadRepository) SetPendingReassignment(ctx context.Context, id, requestedAssigneeID uuid.UUID) error {
	query := `
        UPDATE leads
        SET pending_reassignment = true, requested_assignee_id = $2, updated_at = $3
        WHERE id = $1
    `
	if _, err := r.GetDB().ExecContext(ctx, query, id, requestedAssigneeID, time.Now()); err != nil {
		return fmt.Errorf("failed to set pending reassignment: %w", err)
	}
	return nil
}

func (r *leadRepository) ClearPendingReassignment(ctx context.Context, id uuid.UUID) error {
	query := `
        UPDATE leads
        SET pending_reassignment = false, requested_assignee_id = NULL, updated_at = $2
        WHERE id = $1
    `
	if _, err := r.GetDB().ExecContext(ctx, query, id, time.Now()); err != nil {
		return fmt.Errorf("failed to clear pending reassignment: %w", err)
	}
	return nil
}
