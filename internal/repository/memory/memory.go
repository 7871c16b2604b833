// Package memory holds in-memory repository implementations used by the
// service test suites. They honor the same contracts as the postgres
// implementations (nil result for missing rows, append-only activity
// log) and add failure knobs for exercising the best-effort paths.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jwalitptl/crm-api/internal/model"
)

type NoticeRepo struct {
	mu      sync.Mutex
	notices map[uuid.UUID]*model.Notice

	FailCreate error
	FailFind   error
}

func NewNoticeRepo() *NoticeRepo {
	return &NoticeRepo{notices: make(map[uuid.UUID]*model.Notice)}
}

func (r *NoticeRepo) Create(_ context.Context, n *model.Notice) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.FailCreate != nil {
		return r.FailCreate
	}
	cp := *n
	r.notices[n.ID] = &cp
	return nil
}

func (r *NoticeRepo) Get(_ context.Context, id uuid.UUID) (*model.Notice, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if n, ok := r.notices[id]; ok {
		cp := *n
		return &cp, nil
	}
	return nil, nil
}

func (r *NoticeRepo) ListForUser(ctx context.Context, userID uuid.UUID, limit int) ([]*model.Notice, error) {
	all, _ := r.ListAllForUser(ctx, userID)
	if len(all) > limit {
		all = all[:limit]
	}
	return all, nil
}

func (r *NoticeRepo) ListAllForUser(_ context.Context, userID uuid.UUID) ([]*model.Notice, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*model.Notice
	for _, n := range r.notices {
		if n.RecipientID == userID {
			cp := *n
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *NoticeRepo) UnreadCount(_ context.Context, userID uuid.UUID) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	count := 0
	for _, n := range r.notices {
		if n.RecipientID == userID && !n.IsRead {
			count++
		}
	}
	return count, nil
}

func (r *NoticeRepo) MarkRead(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if n, ok := r.notices[id]; ok {
		n.IsRead = true
	}
	return nil
}

func (r *NoticeRepo) MarkAllRead(_ context.Context, userID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, n := range r.notices {
		if n.RecipientID == userID {
			n.IsRead = true
		}
	}
	return nil
}

func (r *NoticeRepo) MarkResolved(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if n, ok := r.notices[id]; ok {
		now := time.Now()
		n.IsRead = true
		n.ResolvedAt = &now
	}
	return nil
}

func (r *NoticeRepo) ClearAll(_ context.Context, userID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, n := range r.notices {
		if n.RecipientID == userID {
			delete(r.notices, id)
		}
	}
	return nil
}

func (r *NoticeRepo) DeleteByIDs(_ context.Context, ids []uuid.UUID) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var deleted int64
	for _, id := range ids {
		if _, ok := r.notices[id]; ok {
			delete(r.notices, id)
			deleted++
		}
	}
	return deleted, nil
}

func (r *NoticeRepo) DeleteByTypeAndEntity(_ context.Context, userID uuid.UUID, noticeType model.NoticeType, entityID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, n := range r.notices {
		if n.RecipientID == userID && n.Type == noticeType && n.EntityID != nil && *n.EntityID == entityID {
			delete(r.notices, id)
		}
	}
	return nil
}

func (r *NoticeRepo) FindRecentByEntity(_ context.Context, userID uuid.UUID, noticeType model.NoticeType, entityKind model.EntityKind, entityID uuid.UUID, since time.Time) (*model.Notice, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.FailFind != nil {
		return nil, r.FailFind
	}
	for _, n := range r.notices {
		if n.RecipientID == userID && n.Type == noticeType && n.EntityKind == entityKind &&
			n.EntityID != nil && *n.EntityID == entityID && !n.CreatedAt.Before(since) {
			cp := *n
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *NoticeRepo) FindRecentByContent(_ context.Context, userID uuid.UUID, noticeType model.NoticeType, title, message string, since time.Time) (*model.Notice, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.FailFind != nil {
		return nil, r.FailFind
	}
	for _, n := range r.notices {
		if n.RecipientID == userID && n.Type == noticeType && n.Title == title &&
			n.Message == message && !n.CreatedAt.Before(since) {
			cp := *n
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *NoticeRepo) DeleteReadOlderThan(_ context.Context, before time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var deleted int64
	for id, n := range r.notices {
		if n.IsRead && n.ResolvedAt == nil && n.CreatedAt.Before(before) {
			delete(r.notices, id)
			deleted++
		}
	}
	return deleted, nil
}

func (r *NoticeRepo) ListRecipients(_ context.Context) ([]uuid.UUID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	seen := make(map[uuid.UUID]bool)
	var out []uuid.UUID
	for _, n := range r.notices {
		if !seen[n.RecipientID] {
			seen[n.RecipientID] = true
			out = append(out, n.RecipientID)
		}
	}
	return out, nil
}

// Backdate rewrites a stored notice's creation time, simulating age.
func (r *NoticeRepo) Backdate(id uuid.UUID, to time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if n, ok := r.notices[id]; ok {
		n.CreatedAt = to
	}
}

type ActivityRepo struct {
	mu      sync.Mutex
	entries []*model.ActivityLogEntry

	FailFind error
}

func NewActivityRepo() *ActivityRepo {
	return &ActivityRepo{}
}

func (r *ActivityRepo) Create(_ context.Context, entry *model.ActivityLogEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *entry
	r.entries = append(r.entries, &cp)
	return nil
}

func (r *ActivityRepo) List(_ context.Context, filters *model.ActivityFilters) ([]*model.ActivityLogEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*model.ActivityLogEntry
	for _, e := range r.entries {
		if filters.OrganizationID != uuid.Nil && e.OrganizationID != filters.OrganizationID {
			continue
		}
		if filters.ActorID != nil && e.ActorID != *filters.ActorID {
			continue
		}
		if filters.EntityKind != "" && e.EntityKind != filters.EntityKind {
			continue
		}
		if filters.EntityID != nil && e.EntityID != *filters.EntityID {
			continue
		}
		cp := *e
		out = append(out, &cp)
	}
	if filters.Limit > 0 && len(out) > filters.Limit {
		out = out[:filters.Limit]
	}
	return out, nil
}

func (r *ActivityRepo) FindRecentDuplicate(_ context.Context, actorID uuid.UUID, entityKind model.EntityKind, entityID uuid.UUID, description string, since time.Time) (*model.ActivityLogEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.FailFind != nil {
		return nil, r.FailFind
	}
	for _, e := range r.entries {
		if e.ActorID == actorID && e.EntityKind == entityKind && e.EntityID == entityID &&
			e.Description == description && !e.CreatedAt.Before(since) {
			cp := *e
			return &cp, nil
		}
	}
	return nil, nil
}

type LeadRepo struct {
	mu    sync.Mutex
	leads map[uuid.UUID]*model.Lead
}

func NewLeadRepo() *LeadRepo {
	return &LeadRepo{leads: make(map[uuid.UUID]*model.Lead)}
}

func (r *LeadRepo) Create(_ context.Context, lead *model.Lead) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *lead
	r.leads[lead.ID] = &cp
	return nil
}

func (r *LeadRepo) Get(_ context.Context, id uuid.UUID) (*model.Lead, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if l, ok := r.leads[id]; ok {
		cp := *l
		return &cp, nil
	}
	return nil, nil
}

func (r *LeadRepo) UpdateOwner(_ context.Context, id, ownerID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if l, ok := r.leads[id]; ok {
		l.OwnerID = ownerID
		l.UpdatedAt = time.Now()
	}
	return nil
}

func (r *LeadRepo) SetPendingReassignment(_ context.Context, id, requestedAssigneeID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if l, ok := r.leads[id]; ok {
		l.PendingReassignment = true
		assignee := requestedAssigneeID
		l.RequestedAssigneeID = &assignee
	}
	return nil
}

func (r *LeadRepo) ClearPendingReassignment(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if l, ok := r.leads[id]; ok {
		l.PendingReassignment = false
		l.RequestedAssigneeID = nil
	}
	return nil
}

type DealRepo struct {
	mu    sync.Mutex
	deals map[uuid.UUID]*model.Deal
}

func NewDealRepo() *DealRepo {
	return &DealRepo{deals: make(map[uuid.UUID]*model.Deal)}
}

func (r *DealRepo) Create(_ context.Context, deal *model.Deal) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *deal
	r.deals[deal.ID] = &cp
	return nil
}

func (r *DealRepo) Get(_ context.Context, id uuid.UUID) (*model.Deal, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if d, ok := r.deals[id]; ok {
		cp := *d
		return &cp, nil
	}
	return nil, nil
}

func (r *DealRepo) UpdateStage(_ context.Context, id uuid.UUID, stage model.DealStage) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if d, ok := r.deals[id]; ok {
		d.Stage = stage
		d.UpdatedAt = time.Now()
	}
	return nil
}

func (r *DealRepo) ListClosingSoon(_ context.Context, ownerID uuid.UUID, within time.Duration) ([]*model.Deal, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	horizon := time.Now().Add(within)
	var out []*model.Deal
	for _, d := range r.deals {
		if d.OwnerID != ownerID || d.ExpectedCloseDate == nil {
			continue
		}
		if d.Stage == model.DealStageWon || d.Stage == model.DealStageLost {
			continue
		}
		if d.ExpectedCloseDate.Before(horizon) && d.ExpectedCloseDate.After(time.Now()) {
			cp := *d
			out = append(out, &cp)
		}
	}
	return out, nil
}

type TaskRepo struct {
	mu    sync.Mutex
	tasks map[uuid.UUID]*model.Task
}

func NewTaskRepo() *TaskRepo {
	return &TaskRepo{tasks: make(map[uuid.UUID]*model.Task)}
}

func (r *TaskRepo) Create(_ context.Context, task *model.Task) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *task
	r.tasks[task.ID] = &cp
	return nil
}

func (r *TaskRepo) Get(_ context.Context, id uuid.UUID) (*model.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if t, ok := r.tasks[id]; ok {
		cp := *t
		return &cp, nil
	}
	return nil, nil
}

func (r *TaskRepo) ListOpenByAssignee(_ context.Context, assigneeID uuid.UUID) ([]*model.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*model.Task
	for _, t := range r.tasks {
		if t.AssigneeID == assigneeID && t.Status == model.TaskStatusOpen {
			cp := *t
			out = append(out, &cp)
		}
	}
	return out, nil
}

type UserRepo struct {
	mu    sync.Mutex
	users map[uuid.UUID]*model.User
}

func NewUserRepo() *UserRepo {
	return &UserRepo{users: make(map[uuid.UUID]*model.User)}
}

// Put seeds a user for tests.
func (r *UserRepo) Put(user *model.User) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *user
	r.users[user.ID] = &cp
}

func (r *UserRepo) Get(_ context.Context, id uuid.UUID) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.users[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, nil
}
