package service

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/canine-care-service/internal/domain"
	"github.com/spec-kit/canine-care-service/internal/repository"
	apperrors "github.com/spec-kit/canine-care-service/pkg/util/errorutil"
)

// AccountService exposes profile mutations for the session/account surface.
// Each mutation fully replaces the corresponding sub-object rather than
// merging field by field.
type AccountService struct {
	users repository.UserRepository
}

// NewAccountService constructs the service.
func NewAccountService(users repository.UserRepository) *AccountService {
	return &AccountService{users: users}
}

// ProfileInput is the replacement profile payload.
type ProfileInput struct {
	Name  string
	Email string
}

// Me returns the current user record.
func (s *AccountService) Me(ctx context.Context, userID string) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("user", map[string]any{"user_id": userID})
		}
		return nil, err
	}
	return user, nil
}

// UpdateProfile replaces name and email.
func (s *AccountService) UpdateProfile(ctx context.Context, userID string, input ProfileInput) (*domain.User, error) {
	user, err := s.Me(ctx, userID)
	if err != nil {
		return nil, err
	}

	email := strings.ToLower(strings.TrimSpace(input.Email))
	if email != "" && email != user.Email {
		if _, err := s.users.GetByEmail(ctx, email); err == nil {
			return nil, apperrors.NewConflict("email already in use", nil)
		} else if !errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		user.Email = email
	}
	if name := strings.TrimSpace(input.Name); name != "" {
		user.Name = name
	}
	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// UpdatePreferences replaces the whole notification-preferences block.
func (s *AccountService) UpdatePreferences(ctx context.Context, userID string, prefs domain.NotificationPreferences) (*domain.User, error) {
	user, err := s.Me(ctx, userID)
	if err != nil {
		return nil, err
	}
	user.Preferences = prefs
	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// UpdatePaymentMethod replaces the stored card summary. A nil method clears
// it.
func (s *AccountService) UpdatePaymentMethod(ctx context.Context, userID string, method *domain.PaymentMethod) (*domain.User, error) {
	user, err := s.Me(ctx, userID)
	if err != nil {
		return nil, err
	}
	user.PaymentMethod = method
	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}
