package deal

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
	activityService "github.com/jwalitptl/crm-api/internal/service/activity"
	"github.com/jwalitptl/crm-api/internal/service/notice"
	"github.com/jwalitptl/crm-api/pkg/metrics"
)

type fixture struct {
	svc        *Service
	dealRepo   *memory.DealRepo
	noticeRepo *memory.NoticeRepo
	userRepo   *memory.UserRepo
}

func newFixture() *fixture {
	m := metrics.NewMetricsWithRegistry("crm", "test", prometheus.NewRegistry())
	dealRepo := memory.NewDealRepo()
	noticeRepo := memory.NewNoticeRepo()
	userRepo := memory.NewUserRepo()
	activityRepo := memory.NewActivityRepo()
	taskRepo := memory.NewTaskRepo()

	noticeSvc := notice.NewService(noticeRepo, userRepo, nil, nil, m, zerolog.Nop())
	activitySvc := activityService.NewService(activityRepo, userRepo, dealRepo, taskRepo, noticeSvc, m, zerolog.Nop())
	svc := NewService(dealRepo, userRepo, noticeSvc, activitySvc)

	return &fixture{svc: svc, dealRepo: dealRepo, noticeRepo: noticeRepo, userRepo: userRepo}
}

func (f *fixture) seedUser(name string) *model.User {
	u := &model.User{ID: uuid.New(), OrganizationID: uuid.New(), Name: name}
	f.userRepo.Put(u)
	return u
}

func TestCreateDealNotifiesOwner(t *testing.T) {
	f := newFixture()
	ana := f.seedUser("ana")
	ben := f.seedUser("ben")

	deal, err := f.svc.CreateDeal(context.Background(), ana.OrganizationID, ana.ID, &model.CreateDealRequest{
		Name:    "Acme renewal",
		Value:   5000,
		OwnerID: ben.ID.String(),
	})
	require.NoError(t, err)
	assert.Equal(t, model.DealStageProspecting, deal.Stage)

	notices, _ := f.noticeRepo.ListAllForUser(context.Background(), ben.ID)
	require.Len(t, notices, 1)
	assert.Equal(t, model.NoticeTypeDealAssigned, notices[0].Type)
	assert.Contains(t, notices[0].Message, "ana")
}

func TestCreateDealSelfOwnedNoAssignmentNotice(t *testing.T) {
	f := newFixture()
	ana := f.seedUser("ana")

	_, err := f.svc.CreateDeal(context.Background(), ana.OrganizationID, ana.ID, &model.CreateDealRequest{
		Name:    "Acme renewal",
		Value:   5000,
		OwnerID: ana.ID.String(),
	})
	require.NoError(t, err)

	notices, _ := f.noticeRepo.ListAllForUser(context.Background(), ana.ID)
	assert.Empty(t, notices)
}

func TestCreateHighValueDeal(t *testing.T) {
	f := newFixture()
	ana := f.seedUser("ana")

	_, err := f.svc.CreateDeal(context.Background(), ana.OrganizationID, ana.ID, &model.CreateDealRequest{
		Name:    "Acme enterprise",
		Value:   250000,
		OwnerID: ana.ID.String(),
	})
	require.NoError(t, err)

	notices, _ := f.noticeRepo.ListAllForUser(context.Background(), ana.ID)
	require.Len(t, notices, 1)
	assert.Equal(t, model.NoticeTypeDealHighValue, notices[0].Type)
	assert.Equal(t, model.NoticePriorityHigh, notices[0].Priority)
}

func TestUpdateStageToLostNotifiesOwner(t *testing.T) {
	f := newFixture()
	ana := f.seedUser("ana")
	ben := f.seedUser("ben")

	deal, err := f.svc.CreateDeal(context.Background(), ana.OrganizationID, ana.ID, &model.CreateDealRequest{
		Name:    "Acme renewal",
		Value:   5000,
		OwnerID: ben.ID.String(),
	})
	require.NoError(t, err)

	updated, err := f.svc.UpdateStage(context.Background(), ana.ID, deal.ID, model.DealStageLost)
	require.NoError(t, err)
	assert.Equal(t, model.DealStageLost, updated.Stage)

	notices, _ := f.noticeRepo.ListAllForUser(context.Background(), ben.ID)
	var lost *model.Notice
	for _, n := range notices {
		if n.Type == model.NoticeTypeDealLost {
			lost = n
		}
	}
	require.NotNil(t, lost, "owner did not receive a deal_lost notice")
	assert.Equal(t, model.NoticePriorityHigh, lost.Priority)
}

func TestUpdateStageNoOpWhenUnchanged(t *testing.T) {
	f := newFixture()
	ana := f.seedUser("ana")

	deal, err := f.svc.CreateDeal(context.Background(), ana.OrganizationID, ana.ID, &model.CreateDealRequest{
		Name:    "Acme renewal",
		OwnerID: ana.ID.String(),
	})
	require.NoError(t, err)

	_, err = f.svc.UpdateStage(context.Background(), ana.ID, deal.ID, model.DealStageProspecting)
	require.NoError(t, err)

	notices, _ := f.noticeRepo.ListAllForUser(context.Background(), ana.ID)
	assert.Empty(t, notices)
}

func TestCheckClosingDeals(t *testing.T) {
	f := newFixture()
	ana := f.seedUser("ana")

	soon := time.Now().Add(48 * time.Hour)
	far := time.Now().Add(30 * 24 * time.Hour)

	_, err := f.svc.CreateDeal(context.Background(), ana.OrganizationID, ana.ID, &model.CreateDealRequest{
		Name:              "Closing soon",
		OwnerID:           ana.ID.String(),
		ExpectedCloseDate: &soon,
	})
	require.NoError(t, err)
	_, err = f.svc.CreateDeal(context.Background(), ana.OrganizationID, ana.ID, &model.CreateDealRequest{
		Name:              "Closing later",
		OwnerID:           ana.ID.String(),
		ExpectedCloseDate: &far,
	})
	require.NoError(t, err)

	dispatched := f.svc.CheckClosingDeals(context.Background(), ana.ID)
	assert.Equal(t, 1, dispatched)

	notices, _ := f.noticeRepo.ListAllForUser(context.Background(), ana.ID)
	require.Len(t, notices, 1)
	assert.Equal(t, model.NoticeTypeDealCloseApproaching, notices[0].Type)
	assert.Contains(t, notices[0].Message, "Closing soon")
}

func TestCheckClosingDealsRepeatSweepReplaces(t *testing.T) {
	f := newFixture()
	ana := f.seedUser("ana")

	soon := time.Now().Add(48 * time.Hour)
	_, err := f.svc.CreateDeal(context.Background(), ana.OrganizationID, ana.ID, &model.CreateDealRequest{
		Name:              "Closing soon",
		OwnerID:           ana.ID.String(),
		ExpectedCloseDate: &soon,
	})
	require.NoError(t, err)

	assert.Equal(t, 1, f.svc.CheckClosingDeals(context.Background(), ana.ID))
	assert.Equal(t, 1, f.svc.CheckClosingDeals(context.Background(), ana.ID))

	// Replace policy: one standing notice, not two.
	notices, _ := f.noticeRepo.ListAllForUser(context.Background(), ana.ID)
	assert.Len(t, notices, 1)
}
