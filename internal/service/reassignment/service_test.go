package reassignment

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/crm-api/internal/model"
	"github.com/jwalitptl/crm-api/internal/repository/memory"
	"github.com/jwalitptl/crm-api/internal/service/notice"
	apperrors "github.com/jwalitptl/crm-api/pkg/errors"
	"github.com/jwalitptl/crm-api/pkg/metrics"
)

type fixture struct {
	svc        *Service
	noticeSvc  *notice.Service
	noticeRepo *memory.NoticeRepo
	leadRepo   *memory.LeadRepo
	userRepo   *memory.UserRepo

	requester *model.User
	assignee  *model.User
	lead      *model.Lead
	notice    *model.Notice
}

// newFixture stages the state after a reassignment request: user A
// requested that lead L move to user B, B holds the pending notice.
func newFixture(t *testing.T) *fixture {
	t.Helper()
	m := metrics.NewMetricsWithRegistry("crm", "test", prometheus.NewRegistry())
	noticeRepo := memory.NewNoticeRepo()
	leadRepo := memory.NewLeadRepo()
	userRepo := memory.NewUserRepo()
	noticeSvc := notice.NewService(noticeRepo, userRepo, nil, nil, m, zerolog.Nop())
	svc := NewService(noticeRepo, leadRepo, userRepo, noticeSvc, m, zerolog.Nop())

	requester := &model.User{ID: uuid.New(), OrganizationID: uuid.New(), Name: "ana"}
	assignee := &model.User{ID: uuid.New(), OrganizationID: requester.OrganizationID, Name: "ben"}
	userRepo.Put(requester)
	userRepo.Put(assignee)

	lead := &model.Lead{
		ID:                  uuid.New(),
		OrganizationID:      requester.OrganizationID,
		Name:                "Acme Corp",
		OwnerID:             requester.ID,
		PendingReassignment: true,
		RequestedAssigneeID: &assignee.ID,
	}
	require.NoError(t, leadRepo.Create(context.Background(), lead))

	details := &model.ReassignmentDetails{
		LeadID:           lead.ID,
		LeadName:         lead.Name,
		RequestedUserID:  assignee.ID,
		RequestingUserID: requester.ID,
	}
	pending := noticeSvc.Dispatch(context.Background(), notice.NewReassignmentRequestedNotice(details, requester.Name))
	require.NotNil(t, pending)

	return &fixture{
		svc:        svc,
		noticeSvc:  noticeSvc,
		noticeRepo: noticeRepo,
		leadRepo:   leadRepo,
		userRepo:   userRepo,
		requester:  requester,
		assignee:   assignee,
		lead:       lead,
		notice:     pending,
	}
}

func TestApproveTransfersOwnership(t *testing.T) {
	f := newFixture(t)

	err := f.svc.Approve(context.Background(), f.notice.ID, f.assignee.ID)
	require.NoError(t, err)

	lead, _ := f.leadRepo.Get(context.Background(), f.lead.ID)
	assert.Equal(t, f.assignee.ID, lead.OwnerID)
	assert.False(t, lead.PendingReassignment)
	assert.Nil(t, lead.RequestedAssigneeID)

	resolved, _ := f.noticeRepo.Get(context.Background(), f.notice.ID)
	assert.True(t, resolved.Resolved())
	assert.True(t, resolved.IsRead)

	// Requester learns the outcome.
	outcome, _ := f.noticeRepo.ListAllForUser(context.Background(), f.requester.ID)
	require.Len(t, outcome, 1)
	assert.Equal(t, model.NoticeTypeReassignmentApproved, outcome[0].Type)
	assert.Contains(t, outcome[0].Message, "ben")
}

func TestApproveIdempotent(t *testing.T) {
	f := newFixture(t)

	require.NoError(t, f.svc.Approve(context.Background(), f.notice.ID, f.assignee.ID))
	// Duplicate client dispatch: no error, no second mutation.
	require.NoError(t, f.svc.Approve(context.Background(), f.notice.ID, f.assignee.ID))

	outcome, _ := f.noticeRepo.ListAllForUser(context.Background(), f.requester.ID)
	assert.Len(t, outcome, 1)
}

func TestRejectPreservesOwnership(t *testing.T) {
	f := newFixture(t)

	err := f.svc.Reject(context.Background(), f.notice.ID, f.assignee.ID, "workload too high")
	require.NoError(t, err)

	lead, _ := f.leadRepo.Get(context.Background(), f.lead.ID)
	assert.Equal(t, f.requester.ID, lead.OwnerID)
	assert.False(t, lead.PendingReassignment)

	outcome, _ := f.noticeRepo.ListAllForUser(context.Background(), f.requester.ID)
	require.Len(t, outcome, 1)
	assert.Equal(t, model.NoticeTypeReassignmentRejected, outcome[0].Type)
	assert.Contains(t, outcome[0].Message, "workload too high")
}

func TestRejectAfterApproveIsNoOp(t *testing.T) {
	f := newFixture(t)

	require.NoError(t, f.svc.Approve(context.Background(), f.notice.ID, f.assignee.ID))
	require.NoError(t, f.svc.Reject(context.Background(), f.notice.ID, f.assignee.ID, "too late"))

	// The approval stands.
	lead, _ := f.leadRepo.Get(context.Background(), f.lead.ID)
	assert.Equal(t, f.assignee.ID, lead.OwnerID)

	outcome, _ := f.noticeRepo.ListAllForUser(context.Background(), f.requester.ID)
	require.Len(t, outcome, 1)
	assert.Equal(t, model.NoticeTypeReassignmentApproved, outcome[0].Type)
}

func TestApproveUnknownNotice(t *testing.T) {
	f := newFixture(t)

	err := f.svc.Approve(context.Background(), uuid.New(), f.assignee.ID)
	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperrors.ErrNotFound, appErr.Code)
}

func TestApproveWrongActor(t *testing.T) {
	f := newFixture(t)

	// Only the requested assignee may act, not the requester or anyone else.
	err := f.svc.Approve(context.Background(), f.notice.ID, f.requester.ID)
	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperrors.ErrForbidden, appErr.Code)

	lead, _ := f.leadRepo.Get(context.Background(), f.lead.ID)
	assert.Equal(t, f.requester.ID, lead.OwnerID)
}

func TestApproveWrongNoticeType(t *testing.T) {
	f := newFixture(t)

	other := f.noticeSvc.Dispatch(context.Background(), notice.NewSystemAlertNotice(f.assignee.ID, "Alert", "not actionable"))
	require.NotNil(t, other)

	err := f.svc.Approve(context.Background(), other.ID, f.assignee.ID)
	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperrors.ErrBadRequest, appErr.Code)
}

func TestApproveCorruptMetadata(t *testing.T) {
	f := newFixture(t)

	corrupt := &model.Notice{
		ID:          uuid.New(),
		RecipientID: f.assignee.ID,
		Type:        model.NoticeTypeReassignmentRequested,
		Title:       "Lead reassignment requested",
		Message:     "broken",
		EntityKind:  model.EntityKindLead,
		Metadata:    model.JSONMap{model.MetaKeyLeadID: "not-a-uuid"},
	}
	require.NoError(t, f.noticeRepo.Create(context.Background(), corrupt))

	err := f.svc.Approve(context.Background(), corrupt.ID, f.assignee.ID)
	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperrors.ErrBadRequest, appErr.Code)
}

func TestMarkReadDoesNotResolve(t *testing.T) {
	f := newFixture(t)

	// Reading the request is not acting on it.
	require.NoError(t, f.noticeSvc.MarkRead(context.Background(), f.notice.ID))

	err := f.svc.Approve(context.Background(), f.notice.ID, f.assignee.ID)
	require.NoError(t, err)

	lead, _ := f.leadRepo.Get(context.Background(), f.lead.ID)
	assert.Equal(t, f.assignee.ID, lead.OwnerID)
}
