package model

import (
	"time"

	"github.com/google/uuid"
)

type ActionType string

const (
	ActionTypeLeadCreated       ActionType = "lead_created"
	ActionTypeLeadUpdated       ActionType = "lead_updated"
	ActionTypeLeadDeleted       ActionType = "lead_deleted"
	ActionTypeLeadReassigned    ActionType = "lead_reassigned"
	ActionTypeDealCreated       ActionType = "deal_created"
	ActionTypeDealUpdated       ActionType = "deal_updated"
	ActionTypeDealDeleted       ActionType = "deal_deleted"
	ActionTypeDealStageChanged  ActionType = "deal_stage_changed"
	ActionTypeTaskCreated       ActionType = "task_created"
	ActionTypeTaskUpdated       ActionType = "task_updated"
	ActionTypeTaskDeleted       ActionType = "task_deleted"
	ActionTypeTaskStatusChanged ActionType = "task_status_changed"
	ActionTypeContactCreated    ActionType = "contact_created"
	ActionTypeContactUpdated    ActionType = "contact_updated"
	ActionTypeContactDeleted    ActionType = "contact_deleted"
	ActionTypeCompanyCreated    ActionType = "company_created"
	ActionTypeCompanyUpdated    ActionType = "company_updated"
	ActionTypeCompanyDeleted    ActionType = "company_deleted"
)

// ActivityLogEntry is an immutable fact record of a domain mutation.
// There is deliberately no update or delete path for it anywhere in the
// repository layer; retention is an operational concern outside this core.
type ActivityLogEntry struct {
	ID             uuid.UUID  `json:"id" db:"id"`
	ActorID        uuid.UUID  `json:"actor_id" db:"actor_id"`
	OrganizationID uuid.UUID  `json:"organization_id" db:"organization_id"`
	ActionType     ActionType `json:"action_type" db:"action_type"`
	EntityKind     EntityKind `json:"entity_kind" db:"entity_kind"`
	EntityID       uuid.UUID  `json:"entity_id" db:"entity_id"`
	EntityTitle    string     `json:"entity_title" db:"entity_title"`
	Description    string     `json:"description" db:"description"`
	Metadata       JSONMap    `json:"metadata,omitempty" db:"metadata"`
	CreatedAt      time.Time  `json:"created_at" db:"created_at"`
}

// ActivityFilters narrows activity listings per tenant and actor.
type ActivityFilters struct {
	OrganizationID uuid.UUID
	ActorID        *uuid.UUID
	EntityKind     EntityKind
	EntityID       *uuid.UUID
	Limit          int
}
