package model

import (
	"time"

	"github.com/google/uuid"
)

type DealStage string

const (
	DealStageProspecting DealStage = "prospecting"
	DealStageQualified   DealStage = "qualified"
	DealStageProposal    DealStage = "proposal"
	DealStageNegotiation DealStage = "negotiation"
	DealStageWon         DealStage = "won"
	DealStageLost        DealStage = "lost"
)

// HighValueDealThreshold marks a deal worth flagging to its owner on creation.
const HighValueDealThreshold = 100000

type Deal struct {
	ID                uuid.UUID  `json:"id" db:"id"`
	OrganizationID    uuid.UUID  `json:"organization_id" db:"organization_id"`
	Name              string     `json:"name" db:"name"`
	Value             float64    `json:"value" db:"value"`
	Stage             DealStage  `json:"stage" db:"stage"`
	OwnerID           uuid.UUID  `json:"owner_id" db:"owner_id"`
	ExpectedCloseDate *time.Time `json:"expected_close_date,omitempty" db:"expected_close_date"`
	CreatedAt         time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at" db:"updated_at"`
}

type CreateDealRequest struct {
	Name              string     `json:"name" binding:"required"`
	Value             float64    `json:"value"`
	OwnerID           string     `json:"owner_id" binding:"required,uuid"`
	ExpectedCloseDate *time.Time `json:"expected_close_date"`
}

type UpdateDealStageRequest struct {
	Stage string `json:"stage" binding:"required,dealstage"`
}
