package model

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

type NoticeType string

const (
	NoticeTypeTaskAssigned          NoticeType = "task_assigned"
	NoticeTypeTaskOverdue           NoticeType = "task_overdue"
	NoticeTypeTaskDueToday          NoticeType = "task_due_today"
	NoticeTypeTaskDueTomorrow       NoticeType = "task_due_tomorrow"
	NoticeTypeDealAssigned          NoticeType = "deal_assigned"
	NoticeTypeDealStageChanged      NoticeType = "deal_stage_changed"
	NoticeTypeDealLost              NoticeType = "deal_lost"
	NoticeTypeDealHighValue         NoticeType = "deal_high_value"
	NoticeTypeDealCloseApproaching  NoticeType = "deal_close_approaching"
	NoticeTypeActivityMissed        NoticeType = "activity_missed"
	NoticeTypeMeetingToday          NoticeType = "meeting_today"
	NoticeTypeActivityAdded         NoticeType = "activity_added"
	NoticeTypeSystemAlert           NoticeType = "system_alert"
	NoticeTypeReassignmentRequested NoticeType = "reassignment_requested"
	NoticeTypeReassignmentApproved  NoticeType = "reassignment_approved"
	NoticeTypeReassignmentRejected  NoticeType = "reassignment_rejected"
	NoticeTypeMention               NoticeType = "mention"
)

// AllNoticeTypes enumerates every notice type. Dedup windows and default
// priorities are keyed off this list; tests assert both stay total.
var AllNoticeTypes = []NoticeType{
	NoticeTypeTaskAssigned,
	NoticeTypeTaskOverdue,
	NoticeTypeTaskDueToday,
	NoticeTypeTaskDueTomorrow,
	NoticeTypeDealAssigned,
	NoticeTypeDealStageChanged,
	NoticeTypeDealLost,
	NoticeTypeDealHighValue,
	NoticeTypeDealCloseApproaching,
	NoticeTypeActivityMissed,
	NoticeTypeMeetingToday,
	NoticeTypeActivityAdded,
	NoticeTypeSystemAlert,
	NoticeTypeReassignmentRequested,
	NoticeTypeReassignmentApproved,
	NoticeTypeReassignmentRejected,
	NoticeTypeMention,
}

type NoticePriority string

const (
	NoticePriorityLow    NoticePriority = "low"
	NoticePriorityMedium NoticePriority = "medium"
	NoticePriorityHigh   NoticePriority = "high"
	NoticePriorityUrgent NoticePriority = "urgent"
)

type EntityKind string

const (
	EntityKindDeal     EntityKind = "deal"
	EntityKindTask     EntityKind = "task"
	EntityKindActivity EntityKind = "activity"
	EntityKindLead     EntityKind = "lead"
	EntityKindContact  EntityKind = "contact"
	EntityKindCompany  EntityKind = "company"
	EntityKindSystem   EntityKind = "system"
)

type Notice struct {
	ID             uuid.UUID      `json:"id" db:"id"`
	RecipientID    uuid.UUID      `json:"recipient_id" db:"recipient_id"`
	OrganizationID uuid.UUID      `json:"organization_id" db:"organization_id"`
	Type           NoticeType     `json:"type" db:"type"`
	Title          string         `json:"title" db:"title"`
	Message        string         `json:"message" db:"message"`
	EntityKind     EntityKind     `json:"entity_kind" db:"entity_kind"`
	EntityID       *uuid.UUID     `json:"entity_id,omitempty" db:"entity_id"`
	Priority       NoticePriority `json:"priority" db:"priority"`
	IsRead         bool           `json:"is_read" db:"is_read"`
	ResolvedAt     *time.Time     `json:"resolved_at,omitempty" db:"resolved_at"`
	ActionRef      string         `json:"action_ref,omitempty" db:"action_ref"`
	Metadata       JSONMap        `json:"metadata,omitempty" db:"metadata"`
	CreatedAt      time.Time      `json:"created_at" db:"created_at"`
}

// Resolved reports whether an approval-type notice has already been
// actioned. Plain notices never have a resolution timestamp.
func (n *Notice) Resolved() bool {
	return n.ResolvedAt != nil
}

// Metadata keys shared between the notice catalog and the approval workflow.
const (
	MetaKeyLeadID           = "lead_id"
	MetaKeyLeadName         = "lead_name"
	MetaKeyRequestedUserID  = "requested_user_id"
	MetaKeyRequestingUserID = "requesting_user_id"
	MetaKeyReason           = "reason"
	MetaKeyOldValue         = "old_value"
	MetaKeyNewValue         = "new_value"
	MetaKeyDaysUntilClose   = "days_until_close"
	MetaKeyAssignedBy       = "assigned_by"
)

// ReassignmentDetails is the typed view of a reassignment_requested
// notice's metadata. The approval workflow refuses to act on a notice
// whose metadata cannot be decoded into a valid value.
type ReassignmentDetails struct {
	LeadID           uuid.UUID
	LeadName         string
	RequestedUserID  uuid.UUID
	RequestingUserID uuid.UUID
}

// ReassignmentDetailsFromMetadata decodes and validates the approval
// payload carried by a reassignment_requested notice.
func ReassignmentDetailsFromMetadata(meta JSONMap) (*ReassignmentDetails, error) {
	leadID, err := metaUUID(meta, MetaKeyLeadID)
	if err != nil {
		return nil, err
	}
	requestedID, err := metaUUID(meta, MetaKeyRequestedUserID)
	if err != nil {
		return nil, err
	}
	requestingID, err := metaUUID(meta, MetaKeyRequestingUserID)
	if err != nil {
		return nil, err
	}

	d := &ReassignmentDetails{
		LeadID:           leadID,
		RequestedUserID:  requestedID,
		RequestingUserID: requestingID,
	}
	if name, ok := meta[MetaKeyLeadName].(string); ok {
		d.LeadName = name
	}
	return d, nil
}

func (d *ReassignmentDetails) Metadata() JSONMap {
	return JSONMap{
		MetaKeyLeadID:           d.LeadID.String(),
		MetaKeyLeadName:         d.LeadName,
		MetaKeyRequestedUserID:  d.RequestedUserID.String(),
		MetaKeyRequestingUserID: d.RequestingUserID.String(),
	}
}

func metaUUID(meta JSONMap, key string) (uuid.UUID, error) {
	raw, ok := meta[key].(string)
	if !ok || raw == "" {
		return uuid.Nil, fmt.Errorf("metadata missing %s", key)
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, fmt.Errorf("metadata %s is not a valid id: %w", key, err)
	}
	return id, nil
}
