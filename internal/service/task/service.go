package task

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jwalitptl/crm-api/internal/model"
	"github.com/jwalitptl/crm-api/internal/repository"
	"github.com/jwalitptl/crm-api/internal/service/activity"
	"github.com/jwalitptl/crm-api/internal/service/notice"
	apperrors "github.com/jwalitptl/crm-api/pkg/errors"
)

type Service struct {
	repo        repository.TaskRepository
	noticeSvc   *notice.Service
	activitySvc *activity.Service
}

func NewService(repo repository.TaskRepository, noticeSvc *notice.Service, activitySvc *activity.Service) *Service {
	return &Service{
		repo:        repo,
		noticeSvc:   noticeSvc,
		activitySvc: activitySvc,
	}
}

// CreateTask persists the task and records the mutation. When creator
// and assignee differ, the activity recorder's allow-list produces the
// task_assigned notice for the assignee.
func (s *Service) CreateTask(ctx context.Context, orgID, creatorID uuid.UUID, req *model.CreateTaskRequest) (*model.Task, error) {
	assigneeID, err := uuid.Parse(req.AssigneeID)
	if err != nil {
		return nil, apperrors.BadRequest("invalid assignee id", err)
	}

	kind := model.TaskKind(req.Kind)
	if kind == "" {
		kind = model.TaskKindTodo
	}

	task := &model.Task{
		ID:             uuid.New(),
		OrganizationID: orgID,
		Title:          req.Title,
		Kind:           kind,
		Status:         model.TaskStatusOpen,
		CreatorID:      creatorID,
		AssigneeID:     assigneeID,
		DueAt:          req.DueAt,
		CreatedAt:      time.Now(),
		UpdatedAt:      time.Now(),
	}

	if err := s.repo.Create(ctx, task); err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	s.activitySvc.Record(ctx, creatorID, model.ActionTypeTaskCreated, model.EntityKindTask, task.ID, task.Title, nil)

	return task, nil
}

// CheckDueTasks walks the caller's open tasks and dispatches due-date
// reminders: overdue, due today, due tomorrow, plus a same-day meeting
// reminder for meeting-kind tasks. Dedup windows keep repeat sweeps from
// spamming.
func (s *Service) CheckDueTasks(ctx context.Context, assigneeID uuid.UUID) int {
	tasks, err := s.repo.ListOpenByAssignee(ctx, assigneeID)
	if err != nil {
		return 0
	}

	dispatched := 0
	now := time.Now()
	startOfToday := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	for _, t := range tasks {
		if t.DueAt == nil {
			continue
		}
		due := *t.DueAt
		dueDay := time.Date(due.Year(), due.Month(), due.Day(), 0, 0, 0, 0, due.Location())

		var n *model.Notice
		switch {
		case due.Before(now) && dueDay.Before(startOfToday):
			n = notice.NewTaskOverdueNotice(assigneeID, t.ID, t.Title)
		case dueDay.Equal(startOfToday):
			if t.Kind == model.TaskKindMeeting {
				n = notice.NewMeetingTodayNotice(assigneeID, t.ID, t.Title)
			} else {
				n = notice.NewTaskDueTodayNotice(assigneeID, t.ID, t.Title)
			}
		case dueDay.Equal(startOfToday.AddDate(0, 0, 1)):
			n = notice.NewTaskDueTomorrowNotice(assigneeID, t.ID, t.Title)
		}

		if n == nil {
			continue
		}
		if created := s.noticeSvc.Dispatch(ctx, n); created != nil {
			dispatched++
		}
	}
	return dispatched
}
