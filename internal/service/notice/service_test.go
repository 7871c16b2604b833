package notice

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/crm-api/internal/model"
	"github.com/jwalitptl/crm-api/internal/repository/memory"
	"github.com/jwalitptl/crm-api/pkg/metrics"
)

func newTestService(repo *memory.NoticeRepo) *Service {
	m := metrics.NewMetricsWithRegistry("crm", "test", prometheus.NewRegistry())
	return NewService(repo, nil, nil, nil, m, zerolog.Nop())
}

func TestDispatchCreatesNotice(t *testing.T) {
	repo := memory.NewNoticeRepo()
	svc := newTestService(repo)
	userID := uuid.New()
	taskID := uuid.New()

	n := svc.Dispatch(context.Background(), NewTaskAssignedNotice(userID, taskID, "Call Acme", "Jo"))
	require.NotNil(t, n)
	assert.NotEqual(t, uuid.Nil, n.ID)
	assert.False(t, n.CreatedAt.IsZero())
	assert.Equal(t, model.NoticePriorityMedium, n.Priority)

	stored, err := repo.Get(context.Background(), n.ID)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, model.NoticeTypeTaskAssigned, stored.Type)
}

func TestDispatchRejectsMissingRecipient(t *testing.T) {
	svc := newTestService(memory.NewNoticeRepo())

	assert.Nil(t, svc.Dispatch(context.Background(), nil))
	assert.Nil(t, svc.Dispatch(context.Background(), &model.Notice{
		Type:  model.NoticeTypeSystemAlert,
		Title: "orphan",
	}))
}

func TestDispatchSuppressesDuplicateByEntity(t *testing.T) {
	repo := memory.NewNoticeRepo()
	svc := newTestService(repo)
	userID := uuid.New()
	taskID := uuid.New()

	first := svc.Dispatch(context.Background(), NewTaskAssignedNotice(userID, taskID, "Call Acme", "Jo"))
	require.NotNil(t, first)

	// Same type+entity inside the window: suppressed even though the
	// message text differs.
	dup := NewTaskAssignedNotice(userID, taskID, "Call Acme", "Sam")
	assert.Nil(t, svc.Dispatch(context.Background(), dup))

	all, _ := repo.ListAllForUser(context.Background(), userID)
	assert.Len(t, all, 1)
}

func TestDispatchSuppressesDuplicateByContent(t *testing.T) {
	repo := memory.NewNoticeRepo()
	svc := newTestService(repo)
	userID := uuid.New()

	first := svc.Dispatch(context.Background(), NewSystemAlertNotice(userID, "Maintenance", "Scheduled downtime at noon"))
	require.NotNil(t, first)
	require.Nil(t, first.EntityID)

	assert.Nil(t, svc.Dispatch(context.Background(), NewSystemAlertNotice(userID, "Maintenance", "Scheduled downtime at noon")))

	// Different content is a distinct notice.
	assert.NotNil(t, svc.Dispatch(context.Background(), NewSystemAlertNotice(userID, "Maintenance", "Downtime moved to 2pm")))
}

func TestDispatchAllowsDuplicateAfterWindow(t *testing.T) {
	repo := memory.NewNoticeRepo()
	svc := newTestService(repo)
	userID := uuid.New()
	taskID := uuid.New()

	first := svc.Dispatch(context.Background(), NewTaskOverdueNotice(userID, taskID, "Call Acme"))
	require.NotNil(t, first)

	// Age the first past the task_overdue window.
	repo.Backdate(first.ID, time.Now().Add(-9*time.Hour))

	second := svc.Dispatch(context.Background(), NewTaskOverdueNotice(userID, taskID, "Call Acme"))
	assert.NotNil(t, second)
}

func TestDispatchDifferentRecipientsNotDuplicates(t *testing.T) {
	svc := newTestService(memory.NewNoticeRepo())
	taskID := uuid.New()

	assert.NotNil(t, svc.Dispatch(context.Background(), NewTaskOverdueNotice(uuid.New(), taskID, "Call Acme")))
	assert.NotNil(t, svc.Dispatch(context.Background(), NewTaskOverdueNotice(uuid.New(), taskID, "Call Acme")))
}

func TestDispatchReplacePolicy(t *testing.T) {
	repo := memory.NewNoticeRepo()
	svc := newTestService(repo)
	userID := uuid.New()
	dealID := uuid.New()

	first := svc.Dispatch(context.Background(), NewDealCloseApproachingNotice(userID, dealID, "Acme renewal", 3))
	require.NotNil(t, first)

	// Next day's sweep: prior copy is replaced, never accumulated,
	// even though it is still inside the 24h window.
	second := svc.Dispatch(context.Background(), NewDealCloseApproachingNotice(userID, dealID, "Acme renewal", 2))
	require.NotNil(t, second)

	all, _ := repo.ListAllForUser(context.Background(), userID)
	require.Len(t, all, 1)
	assert.Equal(t, second.ID, all[0].ID)
	assert.Contains(t, all[0].Message, "2 days")
}

func TestDispatchFailsOpenWhenDedupErrors(t *testing.T) {
	repo := memory.NewNoticeRepo()
	repo.FailFind = errors.New("store unavailable")
	svc := newTestService(repo)

	// The dedup check cannot answer; the notice is created anyway.
	n := svc.Dispatch(context.Background(), NewTaskOverdueNotice(uuid.New(), uuid.New(), "Call Acme"))
	assert.NotNil(t, n)
}

func TestDispatchReturnsNilOnStoreFailure(t *testing.T) {
	repo := memory.NewNoticeRepo()
	repo.FailCreate = errors.New("store unavailable")
	svc := newTestService(repo)

	n := svc.Dispatch(context.Background(), NewTaskOverdueNotice(uuid.New(), uuid.New(), "Call Acme"))
	assert.Nil(t, n)
}

func TestDispatchHonorsPriorityOverride(t *testing.T) {
	svc := newTestService(memory.NewNoticeRepo())

	n := NewTaskAssignedNotice(uuid.New(), uuid.New(), "Call Acme", "Jo")
	n.Priority = model.NoticePriorityLow
	created := svc.Dispatch(context.Background(), n)
	require.NotNil(t, created)
	assert.Equal(t, model.NoticePriorityLow, created.Priority)
}

func TestListForUserClampsLimit(t *testing.T) {
	repo := memory.NewNoticeRepo()
	svc := newTestService(repo)
	userID := uuid.New()

	for i := 0; i < 60; i++ {
		n := NewSystemAlertNotice(userID, "Alert", time.Now().Add(time.Duration(i)*time.Minute).String())
		require.NotNil(t, svc.Dispatch(context.Background(), n))
	}

	notices, err := svc.ListForUser(context.Background(), userID, 0)
	require.NoError(t, err)
	assert.Len(t, notices, 50)
}
