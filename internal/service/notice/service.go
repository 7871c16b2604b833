package notice

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/jwalitptl/crm-api/internal/email"
	"github.com/jwalitptl/crm-api/internal/model"
	"github.com/jwalitptl/crm-api/internal/repository"
	"github.com/jwalitptl/crm-api/pkg/messaging"
	"github.com/jwalitptl/crm-api/pkg/metrics"
)

// ChannelNoticeCreated is the broker channel carrying freshly persisted
// notices for in-app push consumers.
const ChannelNoticeCreated = "notices.created"

type Service struct {
	repo     repository.NoticeRepository
	userRepo repository.UserRepository
	emailSvc email.Service
	broker   messaging.Broker
	metrics  *metrics.Metrics
	logger   zerolog.Logger
}

func NewService(repo repository.NoticeRepository, userRepo repository.UserRepository, emailSvc email.Service, broker messaging.Broker, m *metrics.Metrics, logger zerolog.Logger) *Service {
	return &Service{
		repo:     repo,
		userRepo: userRepo,
		emailSvc: emailSvc,
		broker:   broker,
		metrics:  m,
		logger:   logger,
	}
}

// Dispatch runs a notice through the full pipeline: priority resolution,
// deduplication, persistence, then best-effort fan-out (broker publish,
// email for urgent priorities). Notices are best-effort by contract —
// every failure is logged and counted, never returned; a nil result means
// the notice was suppressed or could not be stored.
func (s *Service) Dispatch(ctx context.Context, n *model.Notice) *model.Notice {
	if n == nil || n.RecipientID == uuid.Nil {
		return nil
	}

	n.Priority = resolvePriority(n.Type, n.Priority)

	if replacePolicy[n.Type] && n.EntityID != nil {
		// Replace, not suppress: drop every prior copy for this
		// type+entity so the fresh payload is the only one standing.
		if err := s.repo.DeleteByTypeAndEntity(ctx, n.RecipientID, n.Type, *n.EntityID); err != nil {
			s.swallow("replace", err)
		} else {
			s.metrics.NoticesReplaced.Inc()
		}
	} else if rule, dup := s.checkDuplicate(ctx, n); dup {
		s.metrics.NoticesSuppressed.WithLabelValues(string(n.Type), string(rule)).Inc()
		return nil
	}

	n.ID = uuid.New()
	n.CreatedAt = time.Now()

	if err := s.repo.Create(ctx, n); err != nil {
		s.swallow("store", err)
		return nil
	}
	s.metrics.NoticesCreated.WithLabelValues(string(n.Type)).Inc()

	s.publish(ctx, n)
	if n.Priority == model.NoticePriorityUrgent {
		s.mailUrgent(ctx, n)
	}

	return n
}

func (s *Service) publish(ctx context.Context, n *model.Notice) {
	if s.broker == nil {
		return
	}
	msg := messaging.Message{Type: "notice.created", Payload: n}
	if err := s.broker.Publish(ctx, ChannelNoticeCreated, msg); err != nil {
		s.swallow("broker", err)
	}
}

func (s *Service) mailUrgent(ctx context.Context, n *model.Notice) {
	if s.emailSvc == nil || s.userRepo == nil {
		return
	}
	user, err := s.userRepo.Get(ctx, n.RecipientID)
	if err != nil || user == nil || user.Email == "" {
		if err != nil {
			s.swallow("email", err)
		}
		return
	}
	if err := s.emailSvc.SendNotice(ctx, user.Email, n.Title, n.Message); err != nil {
		s.swallow("email", err)
	}
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*model.Notice, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) ListForUser(ctx context.Context, userID uuid.UUID, limit int) ([]*model.Notice, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	return s.repo.ListForUser(ctx, userID, limit)
}

func (s *Service) UnreadCount(ctx context.Context, userID uuid.UUID) (int, error) {
	return s.repo.UnreadCount(ctx, userID)
}

func (s *Service) MarkRead(ctx context.Context, id uuid.UUID) error {
	return s.repo.MarkRead(ctx, id)
}

func (s *Service) MarkAllRead(ctx context.Context, userID uuid.UUID) error {
	return s.repo.MarkAllRead(ctx, userID)
}

func (s *Service) ClearAll(ctx context.Context, userID uuid.UUID) error {
	return s.repo.ClearAll(ctx, userID)
}

// swallow routes a best-effort failure through the observable seam
// instead of propagating it.
func (s *Service) swallow(component string, err error) {
	s.metrics.SwallowedErrors.WithLabelValues(component).Inc()
	s.logger.Warn().Err(err).Str("component", component).Msg("notice operation failed, continuing")
}
