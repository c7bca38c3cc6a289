package models

import (
	"time"

	"github.com/gofrs/uuid"
	"gorm.io/gorm"
)

type Task struct {
	ID          uuid.UUID `json:"id" gorm:"primaryKey;type:uuid"`
	UserID      uuid.UUID `json:"userId" gorm:"type:uuid;not null;index"`
	Title       string    `json:"title" gorm:"not null"`
	Description string    `json:"description" gorm:"not null"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// TaskUpdate carries the replaceable fields of a task.
type TaskUpdate struct {
	Title       string
	Description string
}

func (t *Task) BeforeCreate(tx *gorm.DB) error {
	if t.ID != uuid.Nil {
		return nil
	}
	id, err := uuid.NewV4()
	if err != nil {
		return err
	}
	t.ID = id
	return nil
}

func (t *Task) Validate() error {
	if t.UserID == uuid.Nil {
		return NewValidationError("userId", "userId is required")
	}
	if t.Title == "" {
		return NewValidationError("title", "title is required")
	}
	if t.Description == "" {
		return NewValidationError("description", "description is required")
	}
	return nil
}

func (u TaskUpdate) Validate() error {
	if u.Title == "" {
		return NewValidationError("title", "title is required")
	}
	if u.Description == "" {
		return NewValidationError("description", "description is required")
	}
	return nil
}
