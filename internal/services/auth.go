package services

import (
	"context"
	"errors"
	"strings"

	"github.com/sirupsen/logrus"

	"todo-tracker/backend/internal/models"
)

type UserStore interface {
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	Save(ctx context.Context, user *models.User) error
	VerifyPassword(user *models.User, candidate string) (bool, error)
}

type AuthService interface {
	RegisterUser(ctx context.Context, email, password string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	Authenticate(ctx context.Context, email, password string) (*models.User, string, error)
	ChangePassword(ctx context.Context, email, current, next string) (*models.User, error)
}

type AuthServiceImpl struct {
	users      UserStore
	tokens     *TokenIssuer
	bcryptCost int
	log        logrus.FieldLogger
}

func NewAuthService(users UserStore, tokens *TokenIssuer, bcryptCost int, log logrus.FieldLogger) *AuthServiceImpl {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &AuthServiceImpl{
		users:      users,
		tokens:     tokens,
		bcryptCost: bcryptCost,
		log:        log.WithField("service", "auth"),
	}
}

func credentialsPresent(email, password string) bool {
	return strings.TrimSpace(email) != "" && password != ""
}

// RegisterUser relies on the unique email index to reject duplicates.
func (s *AuthServiceImpl) RegisterUser(ctx context.Context, email, password string) (*models.User, error) {
	if !credentialsPresent(email, password) {
		return nil, ErrMissingCredentials
	}

	user := &models.User{Email: email}
	if err := user.SetPassword(password, s.bcryptCost); err != nil {
		return nil, err
	}

	if err := s.users.Save(ctx, user); err != nil {
		if errors.Is(err, models.ErrDuplicateKey) {
			return nil, &DuplicateUserError{Email: strings.TrimSpace(email)}
		}
		return nil, err
	}

	s.log.WithField("user_id", user.ID.String()).Info("user registered")
	return user, nil
}

func (s *AuthServiceImpl) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.users.FindByEmail(ctx, email)
}

func (s *AuthServiceImpl) Authenticate(ctx context.Context, email, password string) (*models.User, string, error) {
	user, err := s.verify(ctx, email, password)
	if err != nil {
		return nil, "", err
	}

	token, err := s.tokens.Issue(user)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

// ChangePassword is the only path that rewrites a stored hash.
func (s *AuthServiceImpl) ChangePassword(ctx context.Context, email, current, next string) (*models.User, error) {
	if next == "" {
		return nil, models.NewValidationError("newPassword", "newPassword is required")
	}

	user, err := s.verify(ctx, email, current)
	if err != nil {
		return nil, err
	}

	if err := user.SetPassword(next, s.bcryptCost); err != nil {
		return nil, err
	}
	if err := s.users.Save(ctx, user); err != nil {
		return nil, err
	}

	s.log.WithField("user_id", user.ID.String()).Info("password changed")
	return user, nil
}

func (s *AuthServiceImpl) verify(ctx context.Context, email, password string) (*models.User, error) {
	if !credentialsPresent(email, password) {
		return nil, ErrMissingCredentials
	}

	user, err := s.users.FindByEmail(ctx, email)
	if errors.Is(err, models.ErrNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}

	ok, err := s.users.VerifyPassword(user, password)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}
