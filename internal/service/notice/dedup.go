package notice

import (
	"context"
	"time"

	"github.com/jwalitptl/crm-api/internal/model"
)

// defaultDedupWindow is the conservative fallback for types without a
// tuned entry below.
const defaultDedupWindow = time.Hour

// dedupWindows tunes the suppression window per notice type. Different
// event types re-trigger at different natural frequencies; a flat window
// either over-suppresses fast-moving types or under-suppresses slow ones.
// Adding a notice type means making an explicit entry here (or accepting
// the default) — the policy lives in this one table, nowhere else.
var dedupWindows = map[model.NoticeType]time.Duration{
	model.NoticeTypeDealCloseApproaching: 24 * time.Hour,
	model.NoticeTypeTaskOverdue:          8 * time.Hour,
	model.NoticeTypeTaskDueToday:         8 * time.Hour,
	model.NoticeTypeTaskDueTomorrow:      8 * time.Hour,
	model.NoticeTypeMeetingToday:         2 * time.Hour,
}

// replacePolicy lists types whose payload changes on every re-trigger
// (e.g. days-until-close ticks down daily). For these, prior notices for
// the same entity are deleted and a fresh one inserted, instead of the
// new one being suppressed; otherwise stale copies accumulate and never
// expire under the window rule alone.
var replacePolicy = map[model.NoticeType]bool{
	model.NoticeTypeDealCloseApproaching: true,
}

func dedupWindow(t model.NoticeType) time.Duration {
	if w, ok := dedupWindows[t]; ok {
		return w
	}
	return defaultDedupWindow
}

type suppressRule string

const (
	suppressRuleEntity  suppressRule = "entity"
	suppressRuleContent suppressRule = "content"
)

// checkDuplicate evaluates the two duplicate-match rules inside the
// type-specific window. It fails open: if the store cannot answer, the
// caller proceeds to create rather than silently dropping the notice.
func (s *Service) checkDuplicate(ctx context.Context, n *model.Notice) (suppressRule, bool) {
	since := time.Now().Add(-dedupWindow(n.Type))

	if n.EntityID != nil {
		existing, err := s.repo.FindRecentByEntity(ctx, n.RecipientID, n.Type, n.EntityKind, *n.EntityID, since)
		if err != nil {
			s.swallow("dedup", err)
			return "", false
		}
		if existing != nil {
			return suppressRuleEntity, true
		}
	}

	existing, err := s.repo.FindRecentByContent(ctx, n.RecipientID, n.Type, n.Title, n.Message, since)
	if err != nil {
		s.swallow("dedup", err)
		return "", false
	}
	if existing != nil {
		return suppressRuleContent, true
	}

	return "", false
}
