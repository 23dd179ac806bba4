package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"tripmate-backend/database"
	apperrors "tripmate-backend/errors"
	"tripmate-backend/models"
	"tripmate-backend/repository"
)

type CreateTaskRequest struct {
	Title      string  `json:"title"`
	AssignedTo *string `json:"assigned_to,omitempty"`
}

type UpdateTaskRequest struct {
	Title      string  `json:"title"`
	AssignedTo *string `json:"assigned_to,omitempty"`
	IsDone     bool    `json:"is_done"`
}

type TaskService interface {
	CreateTask(ctx context.Context, userID, groupID string, req CreateTaskRequest) (*models.TripTask, error)
	ListTasks(ctx context.Context, userID, groupID string) ([]models.TripTask, error)
	UpdateTask(ctx context.Context, userID, taskID string, req UpdateTaskRequest) (*models.TripTask, error)
	MoveTask(ctx context.Context, userID, taskID string, newPosition int) error
	DeleteTask(ctx context.Context, userID, taskID string) error
}

type taskService struct {
	db        *database.DB
	taskRepo  repository.TaskRepository
	groupRepo repository.GroupRepository
	notifier  Notifier
}

func NewTaskService(
	db *database.DB,
	taskRepo repository.TaskRepository,
	groupRepo repository.GroupRepository,
	notifier Notifier,
) TaskService {
	return &taskService{db: db, taskRepo: taskRepo, groupRepo: groupRepo, notifier: notifier}
}

func (s *taskService) CreateTask(ctx context.Context, userID, groupID string, req CreateTaskRequest) (*models.TripTask, error) {
	if req.Title == "" {
		return nil, apperrors.MissingRequiredField("title")
	}
	if err := RequireGroupMembership(ctx, s.groupRepo, groupID, userID); err != nil {
		return nil, err
	}
	if req.AssignedTo != nil {
		isMember, err := s.groupRepo.IsMember(ctx, groupID, *req.AssignedTo)
		if err != nil {
			return nil, apperrors.DatabaseError("checking assignee", err)
		}
		if !isMember {
			return nil, apperrors.InvalidRequest("Tasks can only be assigned to group members.")
		}
	}

	task := &models.TripTask{
		ID:         uuid.NewString(),
		GroupID:    groupID,
		Title:      req.Title,
		AssignedTo: req.AssignedTo,
		CreatedBy:  userID,
	}

	err := s.db.WithTx(ctx, func(tx database.Querier) error {
		txRepo := s.taskRepo.WithTx(tx)
		max, err := txRepo.MaxPosition(ctx, groupID)
		if err != nil {
			return apperrors.DatabaseError("getting task position", err)
		}
		task.Position = max + 1
		if err := txRepo.Create(ctx, task); err != nil {
			return apperrors.DatabaseError("creating task", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.notifyAssignee(ctx, task, userID)
	return task, nil
}

func (s *taskService) ListTasks(ctx context.Context, userID, groupID string) ([]models.TripTask, error) {
	if err := RequireGroupMembership(ctx, s.groupRepo, groupID, userID); err != nil {
		return nil, err
	}
	tasks, err := s.taskRepo.GetByGroupID(ctx, groupID)
	if err != nil {
		return nil, apperrors.DatabaseError("listing tasks", err)
	}
	return tasks, nil
}

func (s *taskService) getTaskForMember(ctx context.Context, userID, taskID string) (*models.TripTask, error) {
	task, err := s.taskRepo.GetByID(ctx, taskID)
	if err != nil {
		if apperrors.IsNotFoundError(err) {
			return nil, apperrors.NotFound("Task")
		}
		return nil, apperrors.DatabaseError("getting task", err)
	}
	if err := RequireGroupMembership(ctx, s.groupRepo, task.GroupID, userID); err != nil {
		return nil, err
	}
	return task, nil
}

func (s *taskService) UpdateTask(ctx context.Context, userID, taskID string, req UpdateTaskRequest) (*models.TripTask, error) {
	task, err := s.getTaskForMember(ctx, userID, taskID)
	if err != nil {
		return nil, err
	}
	if req.Title == "" {
		return nil, apperrors.MissingRequiredField("title")
	}
	if req.AssignedTo != nil {
		isMember, err := s.groupRepo.IsMember(ctx, task.GroupID, *req.AssignedTo)
		if err != nil {
			return nil, apperrors.DatabaseError("checking assignee", err)
		}
		if !isMember {
			return nil, apperrors.InvalidRequest("Tasks can only be assigned to group members.")
		}
	}

	previousAssignee := task.AssignedTo
	task.Title = req.Title
	task.AssignedTo = req.AssignedTo
	task.IsDone = req.IsDone

	if err := s.taskRepo.Update(ctx, task); err != nil {
		return nil, apperrors.DatabaseError("updating task", err)
	}

	if task.AssignedTo != nil && (previousAssignee == nil || *previousAssignee != *task.AssignedTo) {
		s.notifyAssignee(ctx, task, userID)
	}
	return task, nil
}

// MoveTask reorders within the group's checklist. The shift and the final
// placement run in one transaction so positions stay dense.
func (s *taskService) MoveTask(ctx context.Context, userID, taskID string, newPosition int) error {
	task, err := s.getTaskForMember(ctx, userID, taskID)
	if err != nil {
		return err
	}
	if newPosition < 0 {
		return apperrors.InvalidRequest("position cannot be negative.")
	}
	if newPosition == task.Position {
		return nil
	}

	return s.db.WithTx(ctx, func(tx database.Querier) error {
		txRepo := s.taskRepo.WithTx(tx)
		max, err := txRepo.MaxPosition(ctx, task.GroupID)
		if err != nil {
			return apperrors.DatabaseError("getting task position", err)
		}
		target := newPosition
		if target > max {
			target = max
		}

		if target < task.Position {
			err = txRepo.ShiftPositions(ctx, task.GroupID, target, task.Position-1, 1)
		} else {
			err = txRepo.ShiftPositions(ctx, task.GroupID, task.Position+1, target, -1)
		}
		if err != nil {
			return apperrors.DatabaseError("shifting tasks", err)
		}

		if err := txRepo.SetPosition(ctx, taskID, target); err != nil {
			return apperrors.DatabaseError("moving task", err)
		}
		return nil
	})
}

func (s *taskService) DeleteTask(ctx context.Context, userID, taskID string) error {
	task, err := s.getTaskForMember(ctx, userID, taskID)
	if err != nil {
		return err
	}

	return s.db.WithTx(ctx, func(tx database.Querier) error {
		txRepo := s.taskRepo.WithTx(tx)
		if err := txRepo.Delete(ctx, taskID); err != nil {
			return apperrors.DatabaseError("deleting task", err)
		}
		max, err := txRepo.MaxPosition(ctx, task.GroupID)
		if err != nil {
			return apperrors.DatabaseError("getting task position", err)
		}
		if task.Position <= max {
			if err := txRepo.ShiftPositions(ctx, task.GroupID, task.Position+1, max, -1); err != nil {
				return apperrors.DatabaseError("compacting task positions", err)
			}
		}
		return nil
	})
}

func (s *taskService) notifyAssignee(ctx context.Context, task *models.TripTask, actorID string) {
	if s.notifier == nil || task.AssignedTo == nil || *task.AssignedTo == actorID {
		return
	}
	s.notifier.Notify(ctx, []string{*task.AssignedTo}, task.GroupID, models.NotificationTaskAssigned,
		fmt.Sprintf("You were assigned the task %q.", task.Title))
}
