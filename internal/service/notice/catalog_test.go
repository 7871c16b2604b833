package notice

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/crm-api/internal/model"
)

func TestCatalogConstructorsDeterministic(t *testing.T) {
	userID := uuid.New()
	taskID := uuid.New()

	a := NewTaskAssignedNotice(userID, taskID, "Call Acme", "Jo")
	b := NewTaskAssignedNotice(userID, taskID, "Call Acme", "Jo")

	// Identical inputs produce identical payloads; no clock or id reads
	// happen before Dispatch.
	assert.Equal(t, a.Title, b.Title)
	assert.Equal(t, a.Message, b.Message)
	assert.Equal(t, uuid.Nil, a.ID)
	assert.True(t, a.CreatedAt.IsZero())
	assert.Empty(t, a.Priority)
}

func TestCloseApproachingPluralization(t *testing.T) {
	userID := uuid.New()
	dealID := uuid.New()

	one := NewDealCloseApproachingNotice(userID, dealID, "Acme renewal", 1)
	assert.Contains(t, one.Message, "1 day")
	assert.NotContains(t, one.Message, "1 days")

	three := NewDealCloseApproachingNotice(userID, dealID, "Acme renewal", 3)
	assert.Contains(t, three.Message, "3 days")
}

func TestReassignmentRequestedNoticeTargetsRequestedUser(t *testing.T) {
	details := &model.ReassignmentDetails{
		LeadID:           uuid.New(),
		LeadName:         "Acme Corp",
		RequestedUserID:  uuid.New(),
		RequestingUserID: uuid.New(),
	}

	n := NewReassignmentRequestedNotice(details, "Jo")
	assert.Equal(t, details.RequestedUserID, n.RecipientID)
	require.NotNil(t, n.EntityID)
	assert.Equal(t, details.LeadID, *n.EntityID)

	// Metadata round-trips into typed details for the approval flow.
	decoded, err := model.ReassignmentDetailsFromMetadata(n.Metadata)
	require.NoError(t, err)
	assert.Equal(t, details.LeadID, decoded.LeadID)
	assert.Equal(t, details.RequestingUserID, decoded.RequestingUserID)
}

func TestRejectedNoticeIncludesReason(t *testing.T) {
	n := NewReassignmentRejectedNotice(uuid.New(), uuid.New(), "Acme Corp", "workload too high")
	assert.Contains(t, n.Message, "workload too high")

	bare := NewReassignmentRejectedNotice(uuid.New(), uuid.New(), "Acme Corp", "")
	assert.NotContains(t, bare.Message, ": ")
}

func TestCatalogActionRefs(t *testing.T) {
	dealID := uuid.New()
	n := NewDealLostNotice(uuid.New(), dealID, "Acme renewal")
	assert.Equal(t, "/deals/"+dealID.String(), n.ActionRef)
	assert.Equal(t, model.EntityKindDeal, n.EntityKind)
}
