package activity

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
	"github.com/rs/zerolog"

	"github.com/jwalitptl/crm-api/internal/model"
	"github.com/jwalitptl/crm-api/internal/repository"
	"github.com/jwalitptl/crm-api/internal/service/notice"
	"github.com/jwalitptl/crm-api/pkg/metrics"
)

// duplicateWindow is the flat guard window for the activity record
// itself, independent of the per-type notice dedup windows.
const duplicateWindow = 5 * time.Minute

type Service struct {
	repo      repository.ActivityRepository
	userRepo  repository.UserRepository
	dealRepo  repository.DealRepository
	taskRepo  repository.TaskRepository
	noticeSvc *notice.Service
	guard     *cache.Cache
	metrics   *metrics.Metrics
	logger    zerolog.Logger
}

func NewService(repo repository.ActivityRepository, userRepo repository.UserRepository, dealRepo repository.DealRepository, taskRepo repository.TaskRepository, noticeSvc *notice.Service, m *metrics.Metrics, logger zerolog.Logger) *Service {
	return &Service{
		repo:      repo,
		userRepo:  userRepo,
		dealRepo:  dealRepo,
		taskRepo:  taskRepo,
		noticeSvc: noticeSvc,
		guard:     cache.New(duplicateWindow, 10*time.Minute),
		metrics:   m,
		logger:    logger,
	}
}

// Record appends an immutable activity entry for a domain mutation that
// has already committed. It is best-effort end to end: persistence
// failures and secondary notice effects are logged and counted but never
// surfaced, so a failed log line cannot unwind the mutation it describes.
// A nil return means the entry was skipped or could not be stored.
func (s *Service) Record(ctx context.Context, actorID uuid.UUID, actionType model.ActionType, entityKind model.EntityKind, entityID uuid.UUID, entityTitle string, metadata model.JSONMap) *model.ActivityLogEntry {
	orgID := s.resolveTenant(ctx, actorID)

	entry := &model.ActivityLogEntry{
		ID:             uuid.New(),
		ActorID:        actorID,
		OrganizationID: orgID,
		ActionType:     actionType,
		EntityKind:     entityKind,
		EntityID:       entityID,
		EntityTitle:    entityTitle,
		Description:    describe(actionType, entityTitle, metadata),
		Metadata:       metadata,
		CreatedAt:      time.Now(),
	}

	if s.isDuplicate(ctx, entry) {
		s.metrics.ActivityEntriesSkipped.Inc()
		return nil
	}

	if err := s.repo.Create(ctx, entry); err != nil {
		s.swallow("activity_store", err)
		return nil
	}
	s.metrics.ActivityEntriesRecorded.Inc()
	s.guard.SetDefault(guardKey(entry), true)

	s.notify(ctx, entry)

	return entry
}

func (s *Service) List(ctx context.Context, filters *model.ActivityFilters) ([]*model.ActivityLogEntry, error) {
	return s.repo.List(ctx, filters)
}

// isDuplicate consults the in-process guard first, then the store, for
// an identical description by the same actor on the same entity inside
// the window. Guard failures fall open.
func (s *Service) isDuplicate(ctx context.Context, entry *model.ActivityLogEntry) bool {
	if _, found := s.guard.Get(guardKey(entry)); found {
		return true
	}

	existing, err := s.repo.FindRecentDuplicate(ctx, entry.ActorID, entry.EntityKind, entry.EntityID, entry.Description, time.Now().Add(-duplicateWindow))
	if err != nil {
		s.swallow("activity_dedup", err)
		return false
	}
	return existing != nil
}

func guardKey(entry *model.ActivityLogEntry) string {
	return strings.Join([]string{
		entry.ActorID.String(),
		string(entry.EntityKind),
		entry.EntityID.String(),
		entry.Description,
	}, "|")
}

func (s *Service) resolveTenant(ctx context.Context, actorID uuid.UUID) uuid.UUID {
	user, err := s.userRepo.Get(ctx, actorID)
	if err != nil {
		s.swallow("tenant_lookup", err)
		return uuid.Nil
	}
	if user == nil {
		return uuid.Nil
	}
	return user.OrganizationID
}

// notify fires the allow-listed secondary notice effects. Only two
// action types currently generate notices from activity recording; both
// are best-effort and never fail the entry.
func (s *Service) notify(ctx context.Context, entry *model.ActivityLogEntry) {
	switch entry.ActionType {
	case model.ActionTypeDealStageChanged:
		newStage, _ := entry.Metadata[model.MetaKeyNewValue].(string)
		if model.DealStage(newStage) != model.DealStageLost {
			return
		}
		deal, err := s.dealRepo.Get(ctx, entry.EntityID)
		if err != nil || deal == nil {
			if err != nil {
				s.swallow("notify_lookup", err)
			}
			return
		}
		s.noticeSvc.Dispatch(ctx, notice.NewDealLostNotice(deal.OwnerID, deal.ID, deal.Name))

	case model.ActionTypeTaskCreated:
		task, err := s.taskRepo.Get(ctx, entry.EntityID)
		if err != nil || task == nil {
			if err != nil {
				s.swallow("notify_lookup", err)
			}
			return
		}
		if task.AssigneeID == task.CreatorID {
			return
		}
		s.noticeSvc.Dispatch(ctx, notice.NewTaskAssignedNotice(task.AssigneeID, task.ID, task.Title, s.userName(ctx, task.CreatorID)))
	}
}

func (s *Service) userName(ctx context.Context, id uuid.UUID) string {
	user, err := s.userRepo.Get(ctx, id)
	if err != nil || user == nil {
		return "A teammate"
	}
	return user.Name
}

func (s *Service) swallow(component string, err error) {
	s.metrics.SwallowedErrors.WithLabelValues(component).Inc()
	s.logger.Warn().Err(err).Str("component", component).Msg("activity operation failed, continuing")
}

// describe renders a human-readable description for every action type.
// Unknown types get a generic line, never an error.
func describe(actionType model.ActionType, entityTitle string, metadata model.JSONMap) string {
	switch actionType {
	case model.ActionTypeLeadCreated:
		return fmt.Sprintf("created lead %q", entityTitle)
	case model.ActionTypeLeadUpdated:
		return fmt.Sprintf("updated lead %q", entityTitle)
	case model.ActionTypeLeadDeleted:
		return fmt.Sprintf("deleted lead %q", entityTitle)
	case model.ActionTypeLeadReassigned:
		return fmt.Sprintf("reassigned lead %q", entityTitle)
	case model.ActionTypeDealCreated:
		return fmt.Sprintf("created deal %q", entityTitle)
	case model.ActionTypeDealUpdated:
		return fmt.Sprintf("updated deal %q", entityTitle)
	case model.ActionTypeDealDeleted:
		return fmt.Sprintf("deleted deal %q", entityTitle)
	case model.ActionTypeDealStageChanged:
		oldStage, _ := metadata[model.MetaKeyOldValue].(string)
		newStage, _ := metadata[model.MetaKeyNewValue].(string)
		if oldStage != "" && newStage != "" {
			return fmt.Sprintf("moved deal %q from %s to %s", entityTitle, oldStage, newStage)
		}
		return fmt.Sprintf("changed stage of deal %q", entityTitle)
	case model.ActionTypeTaskCreated:
		return fmt.Sprintf("created task %q", entityTitle)
	case model.ActionTypeTaskUpdated:
		return fmt.Sprintf("updated task %q", entityTitle)
	case model.ActionTypeTaskDeleted:
		return fmt.Sprintf("deleted task %q", entityTitle)
	case model.ActionTypeTaskStatusChanged:
		return fmt.Sprintf("changed status of task %q", entityTitle)
	case model.ActionTypeContactCreated:
		return fmt.Sprintf("created contact %q", entityTitle)
	case model.ActionTypeContactUpdated:
		return fmt.Sprintf("updated contact %q", entityTitle)
	case model.ActionTypeContactDeleted:
		return fmt.Sprintf("deleted contact %q", entityTitle)
	case model.ActionTypeCompanyCreated:
		return fmt.Sprintf("created company %q", entityTitle)
	case model.ActionTypeCompanyUpdated:
		return fmt.Sprintf("updated company %q", entityTitle)
	case model.ActionTypeCompanyDeleted:
		return fmt.Sprintf("deleted company %q", entityTitle)
	default:
		return fmt.Sprintf("performed %s on %q", actionType, entityTitle)
	}
}
