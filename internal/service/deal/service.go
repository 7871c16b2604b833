package deal

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

// closeApproachingHorizon is how far ahead the closing-deal reminder
// sweep looks.
const closeApproachingHorizon = 72 * time.Hour

type Service struct {
	repo        repository.DealRepository
	userRepo    repository.UserRepository
	noticeSvc   *notice.Service
	activitySvc *activity.Service
}

func NewService(repo repository.DealRepository, userRepo repository.UserRepository, noticeSvc *notice.Service, activitySvc *activity.Service) *Service {
	return &Service{
		repo:        repo,
		userRepo:    userRepo,
		noticeSvc:   noticeSvc,
		activitySvc: activitySvc,
	}
}

func (s *Service) CreateDeal(ctx context.Context, orgID, actorID uuid.UUID, req *model.CreateDealRequest) (*model.Deal, error) {
	ownerID, err := uuid.Parse(req.OwnerID)
	if err != nil {
		return nil, apperrors.BadRequest("invalid owner id", err)
	}

	deal := &model.Deal{
		ID:                uuid.New(),
		OrganizationID:    orgID,
		Name:              req.Name,
		Value:             req.Value,
		Stage:             model.DealStageProspecting,
		OwnerID:           ownerID,
		ExpectedCloseDate: req.ExpectedCloseDate,
		CreatedAt:         time.Now(),
		UpdatedAt:         time.Now(),
	}

	if err := s.repo.Create(ctx, deal); err != nil {
		return nil, fmt.Errorf("failed to create deal: %w", err)
	}

	s.activitySvc.Record(ctx, actorID, model.ActionTypeDealCreated, model.EntityKindDeal, deal.ID, deal.Name, nil)

	if deal.OwnerID != actorID {
		s.noticeSvc.Dispatch(ctx, notice.NewDealAssignedNotice(deal.OwnerID, deal.ID, deal.Name, s.userName(ctx, actorID)))
	}
	if deal.Value >= model.HighValueDealThreshold {
		s.noticeSvc.Dispatch(ctx, notice.NewDealHighValueNotice(deal.OwnerID, deal.ID, deal.Name, deal.Value))
	}

	return deal, nil
}

func (s *Service) GetDeal(ctx context.Context, id uuid.UUID) (*model.Deal, error) {
	deal, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get deal: %w", err)
	}
	if deal == nil {
		return nil, apperrors.NotFound("deal", nil)
	}
	return deal, nil
}

// UpdateStage moves the deal and records the mutation; the activity
// recorder's allow-list turns a move to "lost" into a deal_lost notice
// for the owner as a secondary effect.
func (s *Service) UpdateStage(ctx context.Context, actorID, dealID uuid.UUID, stage model.DealStage) (*model.Deal, error) {
	deal, err := s.GetDeal(ctx, dealID)
	if err != nil {
		return nil, err
	}
	if deal.Stage == stage {
		return deal, nil
	}

	if err := s.repo.UpdateStage(ctx, dealID, stage); err != nil {
		return nil, fmt.Errorf("failed to update deal stage: %w", err)
	}

	oldStage := deal.Stage
	deal.Stage = stage

	s.activitySvc.Record(ctx, actorID, model.ActionTypeDealStageChanged, model.EntityKindDeal, deal.ID, deal.Name, model.JSONMap{
		model.MetaKeyOldValue: string(oldStage),
		model.MetaKeyNewValue: string(stage),
	})

	return deal, nil
}

// CheckClosingDeals scans the caller's open deals closing inside the
// horizon and dispatches a close-approaching reminder per deal. The
// notice type is under the replace policy, so a repeat sweep swaps the
// stale day count for the fresh one instead of stacking copies.
func (s *Service) CheckClosingDeals(ctx context.Context, ownerID uuid.UUID) int {
	deals, err := s.repo.ListClosingSoon(ctx, ownerID, closeApproachingHorizon)
	if err != nil {
		// Reminders are best-effort; a failed scan surfaces nothing.
		return 0
	}

	dispatched := 0
	now := time.Now()
	for _, deal := range deals {
		if deal.ExpectedCloseDate == nil {
			continue
		}
		days := int(deal.ExpectedCloseDate.Sub(now).Hours() / 24)
		if days < 0 {
			continue
		}
		if n := s.noticeSvc.Dispatch(ctx, notice.NewDealCloseApproachingNotice(ownerID, deal.ID, deal.Name, days)); n != nil {
			dispatched++
		}
	}
	return dispatched
}

func (s *Service) userName(ctx context.Context, id uuid.UUID) string {
	user, err := s.userRepo.Get(ctx, id)
	if err != nil || user == nil {
		return "A teammate"
	}
	return user.Name
}
