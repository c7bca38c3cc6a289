package repositories

import (
	"context"
	"time"

	"github.com/gofrs/uuid"
	"gorm.io/gorm"

	"todo-tracker/backend/internal/models"
)

type TaskRepository struct {
	db *gorm.DB
}

func NewTaskRepository(db *gorm.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

func (r *TaskRepository) Insert(ctx context.Context, userID uuid.UUID, title, description string) (*models.Task, error) {
	task := &models.Task{
		UserID:      userID,
		Title:       title,
		Description: description,
	}
	if err := task.Validate(); err != nil {
		return nil, err
	}

	if err := r.db.WithContext(ctx).Create(task).Error; err != nil {
		return nil, translate("create task", err)
	}
	return task, nil
}

// FindAllByOwner returns the owner's tasks in storage order, or an empty slice.
func (r *TaskRepository) FindAllByOwner(ctx context.Context, userID uuid.UUID) ([]models.Task, error) {
	tasks := make([]models.Task, 0)
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).Find(&tasks).Error; err != nil {
		return nil, translate("list tasks", err)
	}
	return tasks, nil
}

// DeleteByID removes the task and returns it as it was before deletion.
func (r *TaskRepository) DeleteByID(ctx context.Context, id uuid.UUID) (*models.Task, error) {
	var task models.Task
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&task, "id = ?", id).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Task{}, "id = ?", id).Error
	})
	if err != nil {
		return nil, translate("delete task", err)
	}
	return &task, nil
}

func (r *TaskRepository) UpdateByID(ctx context.Context, id uuid.UUID, update models.TaskUpdate) (*models.Task, error) {
	if err := update.Validate(); err != nil {
		return nil, err
	}

	var task models.Task
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Task{}).Where("id = ?", id).Updates(map[string]interface{}{
			"title":       update.Title,
			"description": update.Description,
			"updated_at":  time.Now(),
		})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return tx.First(&task, "id = ?", id).Error
	})
	if err != nil {
		return nil, translate("update task", err)
	}
	return &task, nil
}
