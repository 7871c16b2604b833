package notice

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/jwalitptl/crm-api/internal/model"
)

// The notice catalog: one deterministic constructor per notice type.
// Constructors only shape the payload (title, message, entity ref,
// action ref, metadata); id, priority and timestamp are stamped by
// Dispatch. Keeping these pure makes content-match dedup predictable.

func NewTaskAssignedNotice(recipientID uuid.UUID, taskID uuid.UUID, taskTitle, assignedBy string) *model.Notice {
	return &model.Notice{
		RecipientID: recipientID,
		Type:        model.NoticeTypeTaskAssigned,
		Title:       "New task assigned",
		Message:     fmt.Sprintf("%s assigned you the task %q", assignedBy, taskTitle),
		EntityKind:  model.EntityKindTask,
		EntityID:    &taskID,
		ActionRef:   fmt.Sprintf("/tasks/%s", taskID),
		Metadata: model.JSONMap{
			model.MetaKeyAssignedBy: assignedBy,
		},
	}
}

func NewTaskOverdueNotice(recipientID uuid.UUID, taskID uuid.UUID, taskTitle string) *model.Notice {
	return &model.Notice{
		RecipientID: recipientID,
		Type:        model.NoticeTypeTaskOverdue,
		Title:       "Task overdue",
		Message:     fmt.Sprintf("The task %q is overdue", taskTitle),
		EntityKind:  model.EntityKindTask,
		EntityID:    &taskID,
		ActionRef:   fmt.Sprintf("/tasks/%s", taskID),
	}
}

func NewTaskDueTodayNotice(recipientID uuid.UUID, taskID uuid.UUID, taskTitle string) *model.Notice {
	return &model.Notice{
		RecipientID: recipientID,
		Type:        model.NoticeTypeTaskDueToday,
		Title:       "Task due today",
		Message:     fmt.Sprintf("The task %q is due today", taskTitle),
		EntityKind:  model.EntityKindTask,
		EntityID:    &taskID,
		ActionRef:   fmt.Sprintf("/tasks/%s", taskID),
	}
}

func NewTaskDueTomorrowNotice(recipientID uuid.UUID, taskID uuid.UUID, taskTitle string) *model.Notice {
	return &model.Notice{
		RecipientID: recipientID,
		Type:        model.NoticeTypeTaskDueTomorrow,
		Title:       "Task due tomorrow",
		Message:     fmt.Sprintf("The task %q is due tomorrow", taskTitle),
		EntityKind:  model.EntityKindTask,
		EntityID:    &taskID,
		ActionRef:   fmt.Sprintf("/tasks/%s", taskID),
	}
}

func NewDealAssignedNotice(recipientID uuid.UUID, dealID uuid.UUID, dealName, assignedBy string) *model.Notice {
	return &model.Notice{
		RecipientID: recipientID,
		Type:        model.NoticeTypeDealAssigned,
		Title:       "Deal assigned to you",
		Message:     fmt.Sprintf("%s assigned you the deal %q", assignedBy, dealName),
		EntityKind:  model.EntityKindDeal,
		EntityID:    &dealID,
		ActionRef:   fmt.Sprintf("/deals/%s", dealID),
		Metadata: model.JSONMap{
			model.MetaKeyAssignedBy: assignedBy,
		},
	}
}

func NewDealStageChangedNotice(recipientID uuid.UUID, dealID uuid.UUID, dealName string, oldStage, newStage model.DealStage) *model.Notice {
	return &model.Notice{
		RecipientID: recipientID,
		Type:        model.NoticeTypeDealStageChanged,
		Title:       "Deal stage changed",
		Message:     fmt.Sprintf("The deal %q moved from %s to %s", dealName, oldStage, newStage),
		EntityKind:  model.EntityKindDeal,
		EntityID:    &dealID,
		ActionRef:   fmt.Sprintf("/deals/%s", dealID),
		Metadata: model.JSONMap{
			model.MetaKeyOldValue: string(oldStage),
			model.MetaKeyNewValue: string(newStage),
		},
	}
}

func NewDealLostNotice(recipientID uuid.UUID, dealID uuid.UUID, dealName string) *model.Notice {
	return &model.Notice{
		RecipientID: recipientID,
		Type:        model.NoticeTypeDealLost,
		Title:       "Deal lost",
		Message:     fmt.Sprintf("The deal %q was marked as lost", dealName),
		EntityKind:  model.EntityKindDeal,
		EntityID:    &dealID,
		ActionRef:   fmt.Sprintf("/deals/%s", dealID),
	}
}

func NewDealHighValueNotice(recipientID uuid.UUID, dealID uuid.UUID, dealName string, value float64) *model.Notice {
	return &model.Notice{
		RecipientID: recipientID,
		Type:        model.NoticeTypeDealHighValue,
		Title:       "High-value deal",
		Message:     fmt.Sprintf("The deal %q is valued at %.0f", dealName, value),
		EntityKind:  model.EntityKindDeal,
		EntityID:    &dealID,
		ActionRef:   fmt.Sprintf("/deals/%s", dealID),
	}
}

func NewDealCloseApproachingNotice(recipientID uuid.UUID, dealID uuid.UUID, dealName string, daysUntilClose int) *model.Notice {
	plural := "days"
	if daysUntilClose == 1 {
		plural = "day"
	}
	return &model.Notice{
		RecipientID: recipientID,
		Type:        model.NoticeTypeDealCloseApproaching,
		Title:       "Deal closing soon",
		Message:     fmt.Sprintf("The deal %q is expected to close in %d %s", dealName, daysUntilClose, plural),
		EntityKind:  model.EntityKindDeal,
		EntityID:    &dealID,
		ActionRef:   fmt.Sprintf("/deals/%s", dealID),
		Metadata: model.JSONMap{
			model.MetaKeyDaysUntilClose: daysUntilClose,
		},
	}
}

func NewActivityMissedNotice(recipientID uuid.UUID, activityID uuid.UUID, activityTitle string) *model.Notice {
	return &model.Notice{
		RecipientID: recipientID,
		Type:        model.NoticeTypeActivityMissed,
		Title:       "Activity missed",
		Message:     fmt.Sprintf("You missed the activity %q", activityTitle),
		EntityKind:  model.EntityKindActivity,
		EntityID:    &activityID,
		ActionRef:   fmt.Sprintf("/activities/%s", activityID),
	}
}

func NewMeetingTodayNotice(recipientID uuid.UUID, taskID uuid.UUID, meetingTitle string) *model.Notice {
	return &model.Notice{
		RecipientID: recipientID,
		Type:        model.NoticeTypeMeetingToday,
		Title:       "Meeting today",
		Message:     fmt.Sprintf("You have the meeting %q scheduled today", meetingTitle),
		EntityKind:  model.EntityKindTask,
		EntityID:    &taskID,
		ActionRef:   fmt.Sprintf("/tasks/%s", taskID),
	}
}

func NewActivityAddedNotice(recipientID uuid.UUID, entityKind model.EntityKind, entityID uuid.UUID, description string) *model.Notice {
	return &model.Notice{
		RecipientID: recipientID,
		Type:        model.NoticeTypeActivityAdded,
		Title:       "New activity",
		Message:     description,
		EntityKind:  entityKind,
		EntityID:    &entityID,
	}
}

func NewSystemAlertNotice(recipientID uuid.UUID, title, message string) *model.Notice {
	return &model.Notice{
		RecipientID: recipientID,
		Type:        model.NoticeTypeSystemAlert,
		Title:       title,
		Message:     message,
		EntityKind:  model.EntityKindSystem,
	}
}

func NewReassignmentRequestedNotice(details *model.ReassignmentDetails, requestedByName string) *model.Notice {
	leadID := details.LeadID
	return &model.Notice{
		RecipientID: details.RequestedUserID,
		Type:        model.NoticeTypeReassignmentRequested,
		Title:       "Lead reassignment requested",
		Message:     fmt.Sprintf("%s wants to assign you the lead %q", requestedByName, details.LeadName),
		EntityKind:  model.EntityKindLead,
		EntityID:    &leadID,
		ActionRef:   fmt.Sprintf("/leads/%s", leadID),
		Metadata:    details.Metadata(),
	}
}

func NewReassignmentApprovedNotice(recipientID uuid.UUID, leadID uuid.UUID, leadName, newOwnerName string) *model.Notice {
	return &model.Notice{
		RecipientID: recipientID,
		Type:        model.NoticeTypeReassignmentApproved,
		Title:       "Reassignment approved",
		Message:     fmt.Sprintf("The lead %q is now owned by %s", leadName, newOwnerName),
		EntityKind:  model.EntityKindLead,
		EntityID:    &leadID,
		ActionRef:   fmt.Sprintf("/leads/%s", leadID),
	}
}

func NewReassignmentRejectedNotice(recipientID uuid.UUID, leadID uuid.UUID, leadName, reason string) *model.Notice {
	message := fmt.Sprintf("The reassignment request for lead %q was rejected", leadName)
	if reason != "" {
		message = fmt.Sprintf("%s: %s", message, reason)
	}
	return &model.Notice{
		RecipientID: recipientID,
		Type:        model.NoticeTypeReassignmentRejected,
		Title:       "Reassignment rejected",
		Message:     message,
		EntityKind:  model.EntityKindLead,
		EntityID:    &leadID,
		ActionRef:   fmt.Sprintf("/leads/%s", leadID),
		Metadata: model.JSONMap{
			model.MetaKeyReason: reason,
		},
	}
}

func NewMentionNotice(recipientID uuid.UUID, entityKind model.EntityKind, entityID uuid.UUID, mentionedBy, context string) *model.Notice {
	return &model.Notice{
		RecipientID: recipientID,
		Type:        model.NoticeTypeMention,
		Title:       "You were mentioned",
		Message:     fmt.Sprintf("%s mentioned you: %s", mentionedBy, context),
		EntityKind:  entityKind,
		EntityID:    &entityID,
	}
}
