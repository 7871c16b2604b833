package poller

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/crm-api/internal/model"
)

// fakeStore implements Store with canned responses and call recording.
type fakeStore struct {
	mu      sync.Mutex
	notices []*model.Notice

	failMarkRead bool
	markReadIDs  []uuid.UUID
	clearCalls   int
}

func (s *fakeStore) ListForUser(_ context.Context, _ uuid.UUID, limit int) ([]*model.Notice, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*model.Notice, 0, len(s.notices))
	for _, n := range s.notices {
		cp := *n
		out = append(out, &cp)
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *fakeStore) UnreadCount(_ context.Context, _ uuid.UUID) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	count := 0
	for _, n := range s.notices {
		if !n.IsRead {
			count++
		}
	}
	return count, nil
}

func (s *fakeStore) MarkRead(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failMarkRead {
		return errors.New("store unavailable")
	}
	s.markReadIDs = append(s.markReadIDs, id)
	for _, n := range s.notices {
		if n.ID == id {
			n.IsRead = true
		}
	}
	return nil
}

func (s *fakeStore) MarkAllRead(_ context.Context, _ uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, n := range s.notices {
		n.IsRead = true
	}
	return nil
}

func (s *fakeStore) ClearAll(_ context.Context, _ uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clearCalls++
	s.notices = nil
	return nil
}

func (s *fakeStore) add(n *model.Notice) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notices = append(s.notices, n)
}

func seeded(isRead bool) *model.Notice {
	return &model.Notice{
		ID:          uuid.New(),
		RecipientID: uuid.New(),
		Type:        model.NoticeTypeSystemAlert,
		Title:       "Alert",
		Message:     "something happened",
		IsRead:      isRead,
	}
}

func newTestPoller(store *fakeStore, onUpdate func(Snapshot)) *Poller {
	return New(store, uuid.New(), onUpdate, zerolog.Nop())
}

func TestRefreshFiresOnChange(t *testing.T) {
	store := &fakeStore{}
	store.add(seeded(false))

	var updates []Snapshot
	p := newTestPoller(store, func(s Snapshot) { updates = append(updates, s) })

	p.Refresh(context.Background())
	require.Len(t, updates, 1)
	assert.Len(t, updates[0].Notices, 1)
	assert.Equal(t, 1, updates[0].UnreadCount)
}

func TestRefreshSkipsUnchangedContent(t *testing.T) {
	store := &fakeStore{}
	store.add(seeded(false))

	var updates int
	p := newTestPoller(store, func(Snapshot) { updates++ })

	p.Refresh(context.Background())
	p.Refresh(context.Background())
	p.Refresh(context.Background())
	assert.Equal(t, 1, updates)

	// New content resumes firing.
	store.add(seeded(false))
	p.Refresh(context.Background())
	assert.Equal(t, 2, updates)
}

func TestMarkReadOptimistic(t *testing.T) {
	store := &fakeStore{}
	n := seeded(false)
	store.add(n)

	var last Snapshot
	p := newTestPoller(store, func(s Snapshot) { last = s })
	p.Refresh(context.Background())
	require.Equal(t, 1, last.UnreadCount)

	p.MarkRead(context.Background(), n.ID)

	// The local view flips before the store confirms.
	assert.Equal(t, 0, last.UnreadCount)
	require.Len(t, last.Notices, 1)
	assert.True(t, last.Notices[0].IsRead)
	assert.Equal(t, []uuid.UUID{n.ID}, store.markReadIDs)
}

func TestMarkReadFailureReconcilesOnNextPoll(t *testing.T) {
	store := &fakeStore{failMarkRead: true}
	n := seeded(false)
	store.add(n)

	var last Snapshot
	p := newTestPoller(store, func(s Snapshot) { last = s })
	p.Refresh(context.Background())

	p.MarkRead(context.Background(), n.ID)
	assert.Equal(t, 0, last.UnreadCount)

	// The confirming call failed; the authoritative store still says
	// unread, and the next poll surfaces that truth again.
	p.Refresh(context.Background())
	assert.Equal(t, 1, last.UnreadCount)
	assert.False(t, last.Notices[0].IsRead)
}

func TestMarkAllRead(t *testing.T) {
	store := &fakeStore{}
	store.add(seeded(false))
	store.add(seeded(false))

	var last Snapshot
	p := newTestPoller(store, func(s Snapshot) { last = s })
	p.Refresh(context.Background())
	require.Equal(t, 2, last.UnreadCount)

	p.MarkAllRead(context.Background())
	assert.Equal(t, 0, last.UnreadCount)
	for _, n := range last.Notices {
		assert.True(t, n.IsRead)
	}
}

func TestClearAll(t *testing.T) {
	store := &fakeStore{}
	store.add(seeded(true))
	store.add(seeded(false))

	var last Snapshot
	p := newTestPoller(store, func(s Snapshot) { last = s })
	p.Refresh(context.Background())

	p.ClearAll(context.Background())
	assert.Empty(t, last.Notices)
	assert.Equal(t, 0, last.UnreadCount)
	assert.Equal(t, 1, store.clearCalls)

	// Store agrees; the next poll stays empty without re-firing.
	p.Refresh(context.Background())
	assert.Empty(t, last.Notices)
}

func TestSnapshotIsCopy(t *testing.T) {
	store := &fakeStore{}
	store.add(seeded(false))

	p := newTestPoller(store, nil)
	p.Refresh(context.Background())

	snap := p.Snapshot()
	require.Len(t, snap.Notices, 1)
	snap.Notices[0] = nil

	again := p.Snapshot()
	assert.NotNil(t, again.Notices[0])
}
