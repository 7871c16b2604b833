package notice

import "github.com/jwalitptl/crm-api/internal/model"

// defaultPriorities maps every notice type to its default urgency.
// Callers may override explicitly; an empty priority on dispatch takes
// the value from here. The table must stay total over
// model.AllNoticeTypes — the priority tests enforce that.
var defaultPriorities = map[model.NoticeType]model.NoticePriority{
	model.NoticeTypeTaskAssigned:          model.NoticePriorityMedium,
	model.NoticeTypeTaskOverdue:           model.NoticePriorityHigh,
	model.NoticeTypeTaskDueToday:          model.NoticePriorityHigh,
	model.NoticeTypeTaskDueTomorrow:       model.NoticePriorityMedium,
	model.NoticeTypeDealAssigned:          model.NoticePriorityMedium,
	model.NoticeTypeDealStageChanged:      model.NoticePriorityLow,
	model.NoticeTypeDealLost:              model.NoticePriorityHigh,
	model.NoticeTypeDealHighValue:         model.NoticePriorityHigh,
	model.NoticeTypeDealCloseApproaching:  model.NoticePriorityHigh,
	model.NoticeTypeActivityMissed:        model.NoticePriorityHigh,
	model.NoticeTypeMeetingToday:          model.NoticePriorityUrgent,
	model.NoticeTypeActivityAdded:         model.NoticePriorityLow,
	model.NoticeTypeSystemAlert:           model.NoticePriorityUrgent,
	model.NoticeTypeReassignmentRequested: model.NoticePriorityHigh,
	model.NoticeTypeReassignmentApproved:  model.NoticePriorityMedium,
	model.NoticeTypeReassignmentRejected:  model.NoticePriorityMedium,
	model.NoticeTypeMention:               model.NoticePriorityMedium,
}

// DefaultPriority returns the default urgency for a notice type.
func DefaultPriority(t model.NoticeType) (model.NoticePriority, bool) {
	p, ok := defaultPriorities[t]
	return p, ok
}

func resolvePriority(t model.NoticeType, override model.NoticePriority) model.NoticePriority {
	if override != "" {
		return override
	}
	if p, ok := defaultPriorities[t]; ok {
		return p
	}
	return model.NoticePriorityMedium
}
