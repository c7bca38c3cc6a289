package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/gofrs/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"todo-tracker/backend/internal/models"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).Where("email = ?", models.NormalizeEmail(email)).First(&user).Error
	if err != nil {
		return nil, translate("find user", err)
	}
	return &user, nil
}

// Save inserts a user without an id and updates one that has it.
// The password hash is stored as-is.
func (r *UserRepository) Save(ctx context.Context, user *models.User) error {
	if err := user.Validate(); err != nil {
		return err
	}

	db := r.db.WithContext(ctx)
	if user.ID == uuid.Nil {
		if err := db.Create(user).Error; err != nil {
			return translate("create user", err)
		}
		return nil
	}

	res := db.Model(user).Updates(map[string]interface{}{
		"email":         user.Email,
		"password_hash": user.PasswordHash,
	})
	if res.Error != nil {
		return translate("update user", res.Error)
	}
	if res.RowsAffected == 0 {
		return models.ErrNotFound
	}
	return nil
}

// VerifyPassword reports whether candidate matches the stored hash.
// A mismatch is not an error.
func (r *UserRepository) VerifyPassword(user *models.User, candidate string) (bool, error) {
	err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(candidate))
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
		return false, nil
	default:
		return false, fmt.Errorf("%w: verify password: %v", models.ErrInfrastructure, err)
	}
}

// translate maps gorm failures onto the model sentinels.
func translate(op string, err error) error {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return models.ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return models.ErrDuplicateKey
	default:
		return fmt.Errorf("%w: %s: %v", models.ErrInfrastructure, op, err)
	}
}
