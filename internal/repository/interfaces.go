package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/jwalitptl/crm-api/internal/model"
)

// All repository interfaces in one file
type (
	// NoticeRepository handles persistence for notices. Note the absence
	// of a generic Update: notices mutate only through the read/resolve
	// and bulk operations below.
	NoticeRepository interface {
		Create(ctx context.Context, notice *model.Notice) error
		Get(ctx context.Context, id uuid.UUID) (*model.Notice, error)
		ListForUser(ctx context.Context, userID uuid.UUID, limit int) ([]*model.Notice, error)
		ListAllForUser(ctx context.Context, userID uuid.UUID) ([]*model.Notice, error)
		UnreadCount(ctx context.Context, userID uuid.UUID) (int, error)
		MarkRead(ctx context.Context, id uuid.UUID) error
		MarkAllRead(ctx context.Context, userID uuid.UUID) error
		MarkResolved(ctx context.Context, id uuid.UUID) error
		ClearAll(ctx context.Context, userID uuid.UUID) error
		DeleteByIDs(ctx context.Context, ids []uuid.UUID) (int64, error)
		DeleteByTypeAndEntity(ctx context.Context, userID uuid.UUID, noticeType model.NoticeType, entityID uuid.UUID) error
		FindRecentByEntity(ctx context.Context, userID uuid.UUID, noticeType model.NoticeType, entityKind model.EntityKind, entityID uuid.UUID, since time.Time) (*model.Notice, error)
		FindRecentByContent(ctx context.Context, userID uuid.UUID, noticeType model.NoticeType, title, message string, since time.Time) (*model.Notice, error)
		ListRecipients(ctx context.Context) ([]uuid.UUID, error)
		DeleteReadOlderThan(ctx context.Context, before time.Time) (int64, error)
	}

	// ActivityRepository is append-only; entries are immutable facts.
	ActivityRepository interface {
		Create(ctx context.Context, entry *model.ActivityLogEntry) error
		List(ctx context.Context, filters *model.ActivityFilters) ([]*model.ActivityLogEntry, error)
		FindRecentDuplicate(ctx context.Context, actorID uuid.UUID, entityKind model.EntityKind, entityID uuid.UUID, description string, since time.Time) (*model.ActivityLogEntry, error)
	}

	LeadRepository interface {
		Create(ctx context.Context, lead *model.Lead) error
		Get(ctx context.Context, id uuid.UUID) (*model.Lead, error)
		UpdateOwner(ctx context.Context, id, ownerID uuid.UUID) error
		SetPendingReassignment(ctx context.Context, id, requestedAssigneeID uuid.UUID) error
		ClearPendingReassignment(ctx context.Context, id uuid.UUID) error
	}

	DealRepository interface {
		Create(ctx context.Context, deal *model.Deal) error
		Get(ctx context.Context, id uuid.UUID) (*model.Deal, error)
		UpdateStage(ctx context.Context, id uuid.UUID, stage model.DealStage) error
		ListClosingSoon(ctx context.Context, ownerID uuid.UUID, within time.Duration) ([]*model.Deal, error)
	}

	TaskRepository interface {
		Create(ctx context.Context, task *model.Task) error
		Get(ctx context.Context, id uuid.UUID) (*model.Task, error)
		ListOpenByAssignee(ctx context.Context, assigneeID uuid.UUID) ([]*model.Task, error)
	}

	UserRepository interface {
		Get(ctx context.Context, id uuid.UUID) (*model.User, error)
	}
)
