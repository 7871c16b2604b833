package lead

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jwalitptl/crm-api/internal/model"
	"github.com/jwalitptl/crm-api/internal/repository"
	"github.com/jwalitptl/crm-api/internal/service/activity"
	"github.com/jwalitptl/crm-api/internal/service/notice"
	apperrors "github.com/jwalitptl/crm-api/pkg/errors"
)

type Service struct {
	repo        repository.LeadRepository
	userRepo    repository.UserRepository
	noticeSvc   *notice.Service
	activitySvc *activity.Service
}

func NewService(repo repository.LeadRepository, userRepo repository.UserRepository, noticeSvc *notice.Service, activitySvc *activity.Service) *Service {
	return &Service{
		repo:        repo,
		userRepo:    userRepo,
		noticeSvc:   noticeSvc,
		activitySvc: activitySvc,
	}
}

func (s *Service) CreateLead(ctx context.Context, orgID, actorID uuid.UUID, req *model.CreateLeadRequest) (*model.Lead, error) {
	ownerID, err := uuid.Parse(req.OwnerID)
	if err != nil {
		return nil, apperrors.BadRequest("invalid owner id", err)
	}

	lead := &model.Lead{
		ID:             uuid.New(),
		OrganizationID: orgID,
		Name:           req.Name,
		Email:          req.Email,
		Phone:          req.Phone,
		Company:        req.Company,
		Status:         model.LeadStatusNew,
		OwnerID:        ownerID,
		CreatedAt:      time.Now(),
		UpdatedAt:      time.Now(),
	}

	if err := s.repo.Create(ctx, lead); err != nil {
		return nil, fmt.Errorf("failed to create lead: %w", err)
	}

	s.activitySvc.Record(ctx, actorID, model.ActionTypeLeadCreated, model.EntityKindLead, lead.ID, lead.Name, nil)

	return lead, nil
}

func (s *Service) GetLead(ctx context.Context, id uuid.UUID) (*model.Lead, error) {
	lead, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get lead: %w", err)
	}
	if lead == nil {
		return nil, apperrors.NotFound("lead", nil)
	}
	return lead, nil
}

// RequestReassignment marks the lead as contested and sends the approval
// token — a reassignment_requested notice — to the proposed new owner.
// The notice metadata carries everything the approval workflow needs to
// execute the transfer later.
func (s *Service) RequestReassignment(ctx context.Context, leadID, requesterID, assigneeID uuid.UUID) error {
	lead, err := s.repo.Get(ctx, leadID)
	if err != nil {
		return fmt.Errorf("failed to get lead: %w", err)
	}
	if lead == nil {
		return apperrors.NotFound("lead", nil)
	}
	if lead.PendingReassignment {
		return apperrors.Conflict("lead already has a pending reassignment request", nil)
	}
	if lead.OwnerID == assigneeID {
		return apperrors.BadRequest("lead is already owned by the requested assignee", nil)
	}

	if err := s.repo.SetPendingReassignment(ctx, leadID, assigneeID); err != nil {
		return fmt.Errorf("failed to mark lead for reassignment: %w", err)
	}

	s.activitySvc.Record(ctx, requesterID, model.ActionTypeLeadReassigned, model.EntityKindLead, lead.ID, lead.Name, model.JSONMap{
		model.MetaKeyRequestedUserID: assigneeID.String(),
	})

	details := &model.ReassignmentDetails{
		LeadID:           lead.ID,
		LeadName:         lead.Name,
		RequestedUserID:  assigneeID,
		RequestingUserID: requesterID,
	}
	s.noticeSvc.Dispatch(ctx, notice.NewReassignmentRequestedNotice(details, s.userName(ctx, requesterID)))

	return nil
}

func (s *Service) userName(ctx context.Context, id uuid.UUID) string {
	user, err := s.userRepo.Get(ctx, id)
	if err != nil || user == nil {
		return "A teammate"
	}
	return user.Name
}
