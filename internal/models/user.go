package models

import (
	"regexp"
	"strings"
	"time"

	"github.com/gofrs/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// DefaultPasswordCost is the bcrypt work factor used when none is configured.
const DefaultPasswordCost = 10

// user.name@sub.domain.co.uk; the empty string matches too, presence is checked separately.
var emailPattern = regexp.MustCompile(`^([\w.-]+@([\w-]+\.)+[\w-]{2,4})?$`)

type User struct {
	ID           uuid.UUID `json:"id" gorm:"primaryKey;type:uuid"`
	Email        string    `json:"email" gorm:"uniqueIndex;not null"`
	PasswordHash string    `json:"-" gorm:"column:password_hash;not null"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID != uuid.Nil {
		return nil
	}
	id, err := uuid.NewV4()
	if err != nil {
		return err
	}
	u.ID = id
	return nil
}

// NormalizeEmail trims and lowercases an address the way it is stored.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// SetPassword replaces PasswordHash with a bcrypt hash of plain.
// A cost outside bcrypt's accepted range falls back to DefaultPasswordCost.
func (u *User) SetPassword(plain string, cost int) error {
	if plain == "" {
		return NewValidationError("password", "password is required")
	}
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = DefaultPasswordCost
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(plain), cost)
	if err != nil {
		return err
	}
	u.PasswordHash = string(hash)
	return nil
}

func (u *User) Validate() error {
	u.Email = NormalizeEmail(u.Email)
	if u.Email == "" {
		return NewValidationError("email", "user name can't be empty")
	}
	if !emailPattern.MatchString(u.Email) {
		return NewValidationError("email", "userName format is not correct")
	}
	if u.PasswordHash == "" {
		return NewValidationError("password", "password is required")
	}
	return nil
}
