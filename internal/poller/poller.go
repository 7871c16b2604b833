package poller

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/jwalitptl/crm-api/internal/model"
)

// DefaultInterval is the fixed polling cadence.
const DefaultInterval = 30 * time.Second

// Store is the read/maintenance surface the poller consumes; the notice
// service satisfies it.
type Store interface {
	ListForUser(ctx context.Context, userID uuid.UUID, limit int) ([]*model.Notice, error)
	UnreadCount(ctx context.Context, userID uuid.UUID) (int, error)
	MarkRead(ctx context.Context, id uuid.UUID) error
	MarkAllRead(ctx context.Context, userID uuid.UUID) error
	ClearAll(ctx context.Context, userID uuid.UUID) error
}

// Snapshot is what an update callback receives: the authoritative list
// plus the locally adjusted unread count.
type Snapshot struct {
	Notices     []*model.Notice
	UnreadCount int
}

// Poller refreshes one user's notice view on a fixed interval. Local
// read/clear actions apply optimistically; the next poll reconciles
// against the store, so a failed confirming call heals within one cycle
// rather than being rolled back immediately.
//
// The poller holds its digest in the struct, keyed to one user's view,
// and runs only while its context is alive; there is no process-global
// interval to leak across sessions.
type Poller struct {
	store    Store
	userID   uuid.UUID
	interval time.Duration
	limit    int
	onUpdate func(Snapshot)
	logger   zerolog.Logger

	mu         sync.Mutex
	lastDigest string
	notices    []*model.Notice
	unread     int
}

type Option func(*Poller)

func WithInterval(d time.Duration) Option {
	return func(p *Poller) { p.interval = d }
}

func WithLimit(limit int) Option {
	return func(p *Poller) { p.limit = limit }
}

func New(store Store, userID uuid.UUID, onUpdate func(Snapshot), logger zerolog.Logger, opts ...Option) *Poller {
	p := &Poller{
		store:    store,
		userID:   userID,
		interval: DefaultInterval,
		limit:    50,
		onUpdate: onUpdate,
		logger:   logger,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Start polls until ctx is cancelled. The first refresh runs
// immediately so consumers are not blank for a full interval.
func (p *Poller) Start(ctx context.Context) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.Refresh(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.Refresh(ctx)
		}
	}
}

// Refresh fetches the authoritative state and fires the update callback
// only when the content digest changed since the last fetch.
func (p *Poller) Refresh(ctx context.Context) {
	notices, err := p.store.ListForUser(ctx, p.userID, p.limit)
	if err != nil {
		p.logger.Warn().Err(err).Msg("notice poll failed")
		return
	}
	unread, err := p.store.UnreadCount(ctx, p.userID)
	if err != nil {
		p.logger.Warn().Err(err).Msg("unread count poll failed")
		return
	}

	digest := contentDigest(notices)

	p.mu.Lock()
	changed := digest != p.lastDigest || unread != p.unread
	p.lastDigest = digest
	p.notices = notices
	p.unread = unread
	p.mu.Unlock()

	if changed && p.onUpdate != nil {
		p.onUpdate(Snapshot{Notices: notices, UnreadCount: unread})
	}
}

// MarkRead applies the read state locally first, then confirms against
// the store. A failed confirmation leaves the optimistic state in place;
// the next poll reconciles it.
func (p *Poller) MarkRead(ctx context.Context, id uuid.UUID) {
	p.mu.Lock()
	for _, n := range p.notices {
		if n.ID == id && !n.IsRead {
			n.IsRead = true
			if p.unread > 0 {
				p.unread--
			}
			break
		}
	}
	snapshot := p.snapshotLocked()
	p.mu.Unlock()

	if p.onUpdate != nil {
		p.onUpdate(snapshot)
	}
	if err := p.store.MarkRead(ctx, id); err != nil {
		p.logger.Warn().Err(err).Str("notice_id", id.String()).Msg("mark read failed, reconciling on next poll")
	}
}

func (p *Poller) MarkAllRead(ctx context.Context) {
	p.mu.Lock()
	for _, n := range p.notices {
		n.IsRead = true
	}
	p.unread = 0
	snapshot := p.snapshotLocked()
	p.mu.Unlock()

	if p.onUpdate != nil {
		p.onUpdate(snapshot)
	}
	if err := p.store.MarkAllRead(ctx, p.userID); err != nil {
		p.logger.Warn().Err(err).Msg("mark all read failed, reconciling on next poll")
	}
}

func (p *Poller) ClearAll(ctx context.Context) {
	p.mu.Lock()
	p.notices = nil
	p.unread = 0
	snapshot := p.snapshotLocked()
	p.mu.Unlock()

	if p.onUpdate != nil {
		p.onUpdate(snapshot)
	}
	if err := p.store.ClearAll(ctx, p.userID); err != nil {
		p.logger.Warn().Err(err).Msg("clear all failed, reconciling on next poll")
	}
}

// Snapshot returns the current local view.
func (p *Poller) Snapshot() Snapshot {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.snapshotLocked()
}

func (p *Poller) snapshotLocked() Snapshot {
	notices := make([]*model.Notice, len(p.notices))
	copy(notices, p.notices)
	return Snapshot{Notices: notices, UnreadCount: p.unread}
}

// contentDigest hashes the fields that affect rendering, so re-fetches
// of identical content skip the update callback.
func contentDigest(notices []*model.Notice) string {
	h := sha256.New()
	for _, n := range notices {
		fmt.Fprintf(h, "%s:%t;", n.ID, n.IsRead)
	}
	return hex.EncodeToString(h.Sum(nil))
}
