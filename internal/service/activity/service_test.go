package activity

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/crm-api/internal/model"
	"github.com/jwalitptl/crm-api/internal/repository/memory"
	"github.com/jwalitptl/crm-api/internal/service/notice"
	"github.com/jwalitptl/crm-api/pkg/metrics"
)

type fixture struct {
	svc        *Service
	repo       *memory.ActivityRepo
	noticeRepo *memory.NoticeRepo
	userRepo   *memory.UserRepo
	dealRepo   *memory.DealRepo
	taskRepo   *memory.TaskRepo
}

func newFixture() *fixture {
	m := metrics.NewMetricsWithRegistry("crm", "test", prometheus.NewRegistry())
	repo := memory.NewActivityRepo()
	noticeRepo := memory.NewNoticeRepo()
	userRepo := memory.NewUserRepo()
	dealRepo := memory.NewDealRepo()
	taskRepo := memory.NewTaskRepo()

	noticeSvc := notice.NewService(noticeRepo, userRepo, nil, nil, m, zerolog.Nop())
	svc := NewService(repo, userRepo, dealRepo, taskRepo, noticeSvc, m, zerolog.Nop())

	return &fixture{
		svc:        svc,
		repo:       repo,
		noticeRepo: noticeRepo,
		userRepo:   userRepo,
		dealRepo:   dealRepo,
		taskRepo:   taskRepo,
	}
}

func (f *fixture) seedUser(name string) *model.User {
	u := &model.User{ID: uuid.New(), OrganizationID: uuid.New(), Name: name, Email: name + "@example.com"}
	f.userRepo.Put(u)
	return u
}

func TestRecordCreatesEntry(t *testing.T) {
	f := newFixture()
	actor := f.seedUser("jo")
	leadID := uuid.New()

	entry := f.svc.Record(context.Background(), actor.ID, model.ActionTypeLeadCreated, model.EntityKindLead, leadID, "Acme Corp", nil)
	require.NotNil(t, entry)
	assert.Equal(t, actor.OrganizationID, entry.OrganizationID)
	assert.Equal(t, `created lead "Acme Corp"`, entry.Description)
	assert.False(t, entry.CreatedAt.IsZero())
}

func TestRecordSkipsDuplicateWithinWindow(t *testing.T) {
	f := newFixture()
	actor := f.seedUser("jo")
	leadID := uuid.New()

	first := f.svc.Record(context.Background(), actor.ID, model.ActionTypeLeadUpdated, model.EntityKindLead, leadID, "Acme Corp", nil)
	require.NotNil(t, first)

	// Identical mutation replayed inside five minutes is dropped.
	second := f.svc.Record(context.Background(), actor.ID, model.ActionTypeLeadUpdated, model.EntityKindLead, leadID, "Acme Corp", nil)
	assert.Nil(t, second)

	entries, err := f.repo.List(context.Background(), &model.ActivityFilters{OrganizationID: actor.OrganizationID})
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestRecordAllowsDifferentActors(t *testing.T) {
	f := newFixture()
	jo := f.seedUser("jo")
	sam := f.seedUser("sam")
	leadID := uuid.New()

	assert.NotNil(t, f.svc.Record(context.Background(), jo.ID, model.ActionTypeLeadUpdated, model.EntityKindLead, leadID, "Acme Corp", nil))
	assert.NotNil(t, f.svc.Record(context.Background(), sam.ID, model.ActionTypeLeadUpdated, model.EntityKindLead, leadID, "Acme Corp", nil))
}

func TestRecordDuplicateGuardFallsBackToStore(t *testing.T) {
	f := newFixture()
	actor := f.seedUser("jo")
	leadID := uuid.New()

	// Seed the store directly, bypassing the in-process cache, to prove
	// the repo check catches duplicates the cache has never seen.
	seeded := &model.ActivityLogEntry{
		ID:          uuid.New(),
		ActorID:     actor.ID,
		EntityKind:  model.EntityKindLead,
		EntityID:    leadID,
		Description: `updated lead "Acme Corp"`,
		CreatedAt:   time.Now().Add(-time.Minute),
	}
	require.NoError(t, f.repo.Create(context.Background(), seeded))

	assert.Nil(t, f.svc.Record(context.Background(), actor.ID, model.ActionTypeLeadUpdated, model.EntityKindLead, leadID, "Acme Corp", nil))
}

func TestRecordDealLostTriggersNotice(t *testing.T) {
	f := newFixture()
	actor := f.seedUser("jo")
	owner := f.seedUser("sam")

	deal := &model.Deal{ID: uuid.New(), Name: "Acme renewal", OwnerID: owner.ID, Stage: model.DealStageLost}
	require.NoError(t, f.dealRepo.Create(context.Background(), deal))

	entry := f.svc.Record(context.Background(), actor.ID, model.ActionTypeDealStageChanged, model.EntityKindDeal, deal.ID, deal.Name, model.JSONMap{
		model.MetaKeyOldValue: string(model.DealStageNegotiation),
		model.MetaKeyNewValue: string(model.DealStageLost),
	})
	require.NotNil(t, entry)

	notices, _ := f.noticeRepo.ListAllForUser(context.Background(), owner.ID)
	require.Len(t, notices, 1)
	assert.Equal(t, model.NoticeTypeDealLost, notices[0].Type)
}

func TestRecordStageChangeToOtherStageNoNotice(t *testing.T) {
	f := newFixture()
	actor := f.seedUser("jo")
	owner := f.seedUser("sam")

	deal := &model.Deal{ID: uuid.New(), Name: "Acme renewal", OwnerID: owner.ID, Stage: model.DealStageProposal}
	require.NoError(t, f.dealRepo.Create(context.Background(), deal))

	f.svc.Record(context.Background(), actor.ID, model.ActionTypeDealStageChanged, model.EntityKindDeal, deal.ID, deal.Name, model.JSONMap{
		model.MetaKeyOldValue: string(model.DealStageQualified),
		model.MetaKeyNewValue: string(model.DealStageProposal),
	})

	notices, _ := f.noticeRepo.ListAllForUser(context.Background(), owner.ID)
	assert.Empty(t, notices)
}

func TestRecordTaskCreatedNotifiesAssignee(t *testing.T) {
	f := newFixture()
	creator := f.seedUser("jo")
	assignee := f.seedUser("sam")

	task := &model.Task{ID: uuid.New(), Title: "Call Acme", CreatorID: creator.ID, AssigneeID: assignee.ID, Status: model.TaskStatusOpen}
	require.NoError(t, f.taskRepo.Create(context.Background(), task))

	f.svc.Record(context.Background(), creator.ID, model.ActionTypeTaskCreated, model.EntityKindTask, task.ID, task.Title, nil)

	notices, _ := f.noticeRepo.ListAllForUser(context.Background(), assignee.ID)
	require.Len(t, notices, 1)
	assert.Equal(t, model.NoticeTypeTaskAssigned, notices[0].Type)
	assert.Contains(t, notices[0].Message, "jo")
}

func TestRecordSelfAssignedTaskNoNotice(t *testing.T) {
	f := newFixture()
	creator := f.seedUser("jo")

	task := &model.Task{ID: uuid.New(), Title: "Call Acme", CreatorID: creator.ID, AssigneeID: creator.ID, Status: model.TaskStatusOpen}
	require.NoError(t, f.taskRepo.Create(context.Background(), task))

	f.svc.Record(context.Background(), creator.ID, model.ActionTypeTaskCreated, model.EntityKindTask, task.ID, task.Title, nil)

	notices, _ := f.noticeRepo.ListAllForUser(context.Background(), creator.ID)
	assert.Empty(t, notices)
}

func TestDescribeCoversAllActionTypes(t *testing.T) {
	types := []model.ActionType{
		model.ActionTypeLeadCreated, model.ActionTypeLeadUpdated, model.ActionTypeLeadDeleted,
		model.ActionTypeLeadReassigned, model.ActionTypeDealCreated, model.ActionTypeDealUpdated,
		model.ActionTypeDealDeleted, model.ActionTypeDealStageChanged, model.ActionTypeTaskCreated,
		model.ActionTypeTaskUpdated, model.ActionTypeTaskDeleted, model.ActionTypeTaskStatusChanged,
		model.ActionTypeContactCreated, model.ActionTypeContactUpdated, model.ActionTypeContactDeleted,
		model.ActionTypeCompanyCreated, model.ActionTypeCompanyUpdated, model.ActionTypeCompanyDeleted,
	}
	for _, typ := range types {
		desc := describe(typ, "Acme", nil)
		assert.NotEmpty(t, desc, "no description for %s", typ)
		assert.NotContains(t, desc, "performed", "generic fallback used for known type %s", typ)
	}

	// Unknown types still describe, via the fallback.
	assert.Contains(t, describe(model.ActionType("custom_thing"), "Acme", nil), "performed custom_thing")
}

func TestDescribeStageChangeUsesMetadata(t *testing.T) {
	desc := describe(model.ActionTypeDealStageChanged, "Acme renewal", model.JSONMap{
		model.MetaKeyOldValue: "proposal",
		model.MetaKeyNewValue: "negotiation",
	})
	assert.Equal(t, `moved deal "Acme renewal" from proposal to negotiation`, desc)

	bare := describe(model.ActionTypeDealStageChanged, "Acme renewal", nil)
	assert.Equal(t, `changed stage of deal "Acme renewal"`, bare)
}
