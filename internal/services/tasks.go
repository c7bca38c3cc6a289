package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/gofrs/uuid"

	"todo-tracker/backend/internal/models"
)

type TaskStore interface {
	Insert(ctx context.Context, userID uuid.UUID, title, description string) (*models.Task, error)
	FindAllByOwner(ctx context.Context, userID uuid.UUID) ([]models.Task, error)
	DeleteByID(ctx context.Context, id uuid.UUID) (*models.Task, error)
	UpdateByID(ctx context.Context, id uuid.UUID, update models.TaskUpdate) (*models.Task, error)
}

type UpdateToDoInput struct {
	ID          string
	Title       string
	Description string
}

type TaskService interface {
	CreateToDo(ctx context.Context, userID, title, description string) (*models.Task, error)
	GetUserToDoList(ctx context.Context, userID string) ([]models.Task, error)
	DeleteToDo(ctx context.Context, id string) (*models.Task, error)
	UpdateToDo(ctx context.Context, in UpdateToDoInput) (*models.Task, error)
}

type TaskServiceImpl struct {
	tasks TaskStore
}

func NewTaskService(tasks TaskStore) *TaskServiceImpl {
	return &TaskServiceImpl{tasks: tasks}
}

// parseID reports a malformed identifier the way a failed cast would.
func parseID(field, raw string) (uuid.UUID, error) {
	id, err := uuid.FromString(raw)
	if err != nil {
		return uuid.Nil, models.NewValidationError(field, fmt.Sprintf("Cast to UUID failed for value %q", raw))
	}
	return id, nil
}

func (s *TaskServiceImpl) CreateToDo(ctx context.Context, userID, title, description string) (*models.Task, error) {
	owner, err := parseID("userId", userID)
	if err != nil {
		return nil, opError(OpCreate, err)
	}

	task, err := s.tasks.Insert(ctx, owner, title, description)
	if err != nil {
		return nil, opError(OpCreate, err)
	}
	return task, nil
}

// GetUserToDoList does not check that the owner exists.
func (s *TaskServiceImpl) GetUserToDoList(ctx context.Context, userID string) ([]models.Task, error) {
	owner, err := parseID("userId", userID)
	if err != nil {
		return nil, opError(OpFetch, err)
	}

	tasks, err := s.tasks.FindAllByOwner(ctx, owner)
	if err != nil {
		return nil, opError(OpFetch, err)
	}
	return tasks, nil
}

func (s *TaskServiceImpl) DeleteToDo(ctx context.Context, id string) (*models.Task, error) {
	taskID, err := parseID("id", id)
	if err != nil {
		return nil, opError(OpDelete, err)
	}

	task, err := s.tasks.DeleteByID(ctx, taskID)
	if errors.Is(err, models.ErrNotFound) {
		return nil, opError(OpDelete, &NotFoundError{Message: "ToDo not found"})
	}
	if err != nil {
		return nil, opError(OpDelete, err)
	}
	return task, nil
}

func (s *TaskServiceImpl) UpdateToDo(ctx context.Context, in UpdateToDoInput) (*models.Task, error) {
	taskID, err := parseID("id", in.ID)
	if err != nil {
		return nil, opError(OpUpdate, err)
	}

	task, err := s.tasks.UpdateByID(ctx, taskID, models.TaskUpdate{Title: in.Title, Description: in.Description})
	if errors.Is(err, models.ErrNotFound) {
		return nil, opError(OpUpdate, &NotFoundError{Message: "Todo not found"})
	}
	if err != nil {
		return nil, opError(OpUpdate, err)
	}
	return task, nil
}
