package worker

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/jwalitptl/crm-api/internal/repository"
	"github.com/jwalitptl/crm-api/internal/service/notice"
)

// NoticeSweepWorker periodically runs the duplicate cleanup over every
// user with notices, then drops read notices past the retention age.
// The suppression checks keep duplicates out on creation; this sweep is
// corrective, collapsing any that slipped through concurrent dispatches.
type NoticeSweepWorker struct {
	repo          repository.NoticeRepository
	noticeSvc     *notice.Service
	sweepInterval time.Duration
	retentionAge  time.Duration
	logger        zerolog.Logger
}

func NewNoticeSweepWorker(repo repository.NoticeRepository, noticeSvc *notice.Service, sweepInterval, retentionAge time.Duration, logger zerolog.Logger) *NoticeSweepWorker {
	return &NoticeSweepWorker{
		repo:          repo,
		noticeSvc:     noticeSvc,
		sweepInterval: sweepInterval,
		retentionAge:  retentionAge,
		logger:        logger,
	}
}

func (w *NoticeSweepWorker) Start(ctx context.Context) {
	ticker := time.NewTicker(w.sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := w.sweep(ctx); err != nil {
				w.logger.Error().Err(err).Msg("notice sweep failed")
			}
		}
	}
}

func (w *NoticeSweepWorker) sweep(ctx context.Context) error {
	recipients, err := w.repo.ListRecipients(ctx)
	if err != nil {
		return fmt.Errorf("failed to list recipients: %w", err)
	}

	var deleted int64
	for _, userID := range recipients {
		n, err := w.noticeSvc.CleanupDuplicates(ctx, userID, notice.CleanupFilter{})
		if err != nil {
			w.logger.Error().Err(err).Str("user_id", userID.String()).Msg("cleanup failed for user")
			continue
		}
		deleted += n
	}

	var expired int64
	if w.retentionAge > 0 {
		expired, err = w.repo.DeleteReadOlderThan(ctx, time.Now().Add(-w.retentionAge))
		if err != nil {
			w.logger.Error().Err(err).Msg("retention cleanup failed")
		}
	}

	w.logger.Info().
		Int("users", len(recipients)).
		Int64("duplicates_deleted", deleted).
		Int64("expired_deleted", expired).
		Msg("notice sweep complete")
	return nil
}
