package notice

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/jwalitptl/crm-api/internal/model"
)

// CleanupFilter narrows a duplicate sweep to one type and/or entity.
// Zero values mean "all".
type CleanupFilter struct {
	Type     model.NoticeType
	EntityID *uuid.UUID
}

const noEntityGroup = "no-entity"

// CleanupDuplicates restores the at-most-one-per-group invariant that
// windowed dedup only approximates: notices are grouped by (type,
// entity), the newest of each group survives, the rest are deleted.
// Running it on an already-clean set deletes nothing.
func (s *Service) CleanupDuplicates(ctx context.Context, userID uuid.UUID, filter CleanupFilter) (int64, error) {
	notices, err := s.repo.ListAllForUser(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to load notices for cleanup: %w", err)
	}

	groups := make(map[string][]*model.Notice)
	for _, n := range notices {
		if filter.Type != "" && n.Type != filter.Type {
			continue
		}
		if filter.EntityID != nil && (n.EntityID == nil || *n.EntityID != *filter.EntityID) {
			continue
		}

		entityKey := noEntityGroup
		if n.EntityID != nil {
			entityKey = n.EntityID.String()
		}
		key := string(n.Type) + ":" + entityKey
		groups[key] = append(groups[key], n)
	}

	var doomed []uuid.UUID
	for _, group := range groups {
		if len(group) <= 1 {
			continue
		}
		newest := group[0]
		for _, n := range group[1:] {
			if n.CreatedAt.After(newest.CreatedAt) {
				newest = n
			}
		}
		for _, n := range group {
			if n.ID != newest.ID {
				doomed = append(doomed, n.ID)
			}
		}
	}

	if len(doomed) == 0 {
		return 0, nil
	}

	deleted, err := s.repo.DeleteByIDs(ctx, doomed)
	if err != nil {
		return 0, fmt.Errorf("failed to delete duplicate notices: %w", err)
	}
	s.metrics.NoticesDeleted.Add(float64(deleted))

	s.logger.Info().
		Str("user_id", userID.String()).
		Int64("deleted", deleted).
		Msg("duplicate notice sweep completed")

	return deleted, nil
}
