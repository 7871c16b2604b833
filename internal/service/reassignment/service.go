package reassignment

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/jwalitptl/crm-api/internal/model"
	"github.com/jwalitptl/crm-api/internal/repository"
	"github.com/jwalitptl/crm-api/internal/service/notice"
	apperrors "github.com/jwalitptl/crm-api/pkg/errors"
	"github.com/jwalitptl/crm-api/pkg/metrics"
)

// Service runs the two-party approval over a reassignment_requested
// notice: pending until the recipient approves or rejects, both terminal.
// Repeat calls on a resolved notice are no-op successes, so a duplicate
// client dispatch cannot double-apply the ownership change.
type Service struct {
	noticeRepo repository.NoticeRepository
	leadRepo   repository.LeadRepository
	userRepo   repository.UserRepository
	noticeSvc  *notice.Service
	metrics    *metrics.Metrics
	logger     zerolog.Logger
}

func NewService(noticeRepo repository.NoticeRepository, leadRepo repository.LeadRepository, userRepo repository.UserRepository, noticeSvc *notice.Service, m *metrics.Metrics, logger zerolog.Logger) *Service {
	return &Service{
		noticeRepo: noticeRepo,
		leadRepo:   leadRepo,
		userRepo:   userRepo,
		noticeSvc:  noticeSvc,
		metrics:    m,
		logger:     logger,
	}
}

// Approve transfers the lead to the requested assignee, resolves the
// pending notice and tells the requester. The lead mutation comes first:
// if it fails the notice stays actionable and the caller sees the error.
func (s *Service) Approve(ctx context.Context, noticeID, actorID uuid.UUID) error {
	n, details, err := s.pending(ctx, noticeID, actorID)
	if err != nil {
		return err
	}
	if n == nil {
		// Already resolved: idempotent success.
		return nil
	}

	if err := s.leadRepo.UpdateOwner(ctx, details.LeadID, details.RequestedUserID); err != nil {
		return fmt.Errorf("failed to transfer lead ownership: %w", err)
	}
	if err := s.leadRepo.ClearPendingReassignment(ctx, details.LeadID); err != nil {
		return fmt.Errorf("failed to clear pending reassignment: %w", err)
	}

	// The entity mutation succeeded; resolution must follow or the
	// notice stays re-actionable and could be approved twice. A failure
	// here is surfaced so the caller retries the (idempotent) call.
	if err := s.noticeRepo.MarkResolved(ctx, n.ID); err != nil {
		return fmt.Errorf("lead reassigned but notice unresolved, retry: %w", err)
	}

	s.metrics.ApprovalTransitions.WithLabelValues("approved").Inc()
	s.logger.Info().
		Str("notice_id", n.ID.String()).
		Str("lead_id", details.LeadID.String()).
		Str("new_owner_id", details.RequestedUserID.String()).
		Msg("lead reassignment approved")

	s.noticeSvc.Dispatch(ctx, notice.NewReassignmentApprovedNotice(
		details.RequestingUserID,
		details.LeadID,
		details.LeadName,
		s.userName(ctx, details.RequestedUserID),
	))

	return nil
}

// Reject clears the pending marker without touching ownership, resolves
// the notice and sends the stated reason back to the requester.
func (s *Service) Reject(ctx context.Context, noticeID, actorID uuid.UUID, reason string) error {
	n, details, err := s.pending(ctx, noticeID, actorID)
	if err != nil {
		return err
	}
	if n == nil {
		return nil
	}

	if err := s.leadRepo.ClearPendingReassignment(ctx, details.LeadID); err != nil {
		return fmt.Errorf("failed to clear pending reassignment: %w", err)
	}

	if err := s.noticeRepo.MarkResolved(ctx, n.ID); err != nil {
		return fmt.Errorf("reassignment rejected but notice unresolved, retry: %w", err)
	}

	s.metrics.ApprovalTransitions.WithLabelValues("rejected").Inc()
	s.logger.Info().
		Str("notice_id", n.ID.String()).
		Str("lead_id", details.LeadID.String()).
		Msg("lead reassignment rejected")

	s.noticeSvc.Dispatch(ctx, notice.NewReassignmentRejectedNotice(
		details.RequestingUserID,
		details.LeadID,
		details.LeadName,
		reason,
	))

	return nil
}

// pending loads and validates the approval token. It returns (nil, nil,
// nil) when the notice is already resolved, the idempotent no-op case.
func (s *Service) pending(ctx context.Context, noticeID, actorID uuid.UUID) (*model.Notice, *model.ReassignmentDetails, error) {
	n, err := s.noticeRepo.Get(ctx, noticeID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load notice: %w", err)
	}
	if n == nil {
		return nil, nil, apperrors.NotFound("notice", nil)
	}
	if n.Type != model.NoticeTypeReassignmentRequested {
		return nil, nil, apperrors.BadRequest("notice is not a reassignment request", nil)
	}
	if n.RecipientID != actorID {
		return nil, nil, apperrors.Forbidden("only the requested assignee can act on this request", nil)
	}
	if n.Resolved() {
		return nil, nil, nil
	}

	details, err := model.ReassignmentDetailsFromMetadata(n.Metadata)
	if err != nil {
		return nil, nil, apperrors.BadRequest(err.Error(), err)
	}

	return n, details, nil
}

func (s *Service) userName(ctx context.Context, id uuid.UUID) string {
	user, err := s.userRepo.Get(ctx, id)
	if err != nil || user == nil {
		return "a teammate"
	}
	return user.Name
}
