package model

import (
	"time"

	"github.com/google/uuid"
)

type LeadStatus string

const (
	LeadStatusNew       LeadStatus = "new"
	LeadStatusContacted LeadStatus = "contacted"
	LeadStatusQualified LeadStatus = "qualified"
	LeadStatusConverted LeadStatus = "converted"
	LeadStatusDead      LeadStatus = "dead"
)

type Lead struct {
	ID                  uuid.UUID  `json:"id" db:"id"`
	OrganizationID      uuid.UUID  `json:"organization_id" db:"organization_id"`
	Name                string     `json:"name" db:"name"`
	Email               string     `json:"email" db:"email"`
	Phone               string     `json:"phone" db:"phone"`
	Company             string     `json:"company" db:"company"`
	Status              LeadStatus `json:"status" db:"status"`
	OwnerID             uuid.UUID  `json:"owner_id" db:"owner_id"`
	PendingReassignment bool       `json:"pending_reassignment" db:"pending_reassignment"`
	RequestedAssigneeID *uuid.UUID `json:"requested_assignee_id,omitempty" db:"requested_assignee_id"`
	CreatedAt           time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt           time.Time  `json:"updated_at" db:"updated_at"`
}

type CreateLeadRequest struct {
	Name    string `json:"name" binding:"required"`
	Email   string `json:"email" binding:"omitempty,email"`
	Phone   string `json:"phone"`
	Company string `json:"company"`
	OwnerID string `json:"owner_id" binding:"required,uuid"`
}

type ReassignLeadRequest struct {
	AssigneeID string `json:"assignee_id" binding:"required,uuid"`
}
