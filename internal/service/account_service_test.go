package service

import (
	"context"
	"testing"

	"github.com/spec-kit/canine-care-service/internal/domain"
	"github.com/spec-kit/canine-care-service/internal/repository"
	"github.com/spec-kit/canine-care-service/internal/repository/memory"
	apperrors "github.com/spec-kit/canine-care-service/pkg/util/errorutil"
)

func newAccountFixture(t *testing.T) (*AccountService, repository.UserRepository, *domain.User) {
	t.Helper()
	users := memory.NewUserRepository()
	user := &domain.User{
		Name:  "Dana",
		Email: "dana@example.com",
		Preferences: domain.NotificationPreferences{
			EmailUpdates:      true,
			ProtocolReminders: true,
			MessageAlerts:     true,
		},
	}
	if err := users.Create(context.Background(), user); err != nil {
		t.Fatalf("create user: %v", err)
	}
	return NewAccountService(users), users, user
}

func TestUpdateProfileNormalizesAndChecksConflicts(t *testing.T) {
	ctx := context.Background()
	svc, users, user := newAccountFixture(t)

	other := &domain.User{Name: "Sam", Email: "sam@example.com"}
	if err := users.Create(ctx, other); err != nil {
		t.Fatalf("create user: %v", err)
	}

	updated, err := svc.UpdateProfile(ctx, user.ID, ProfileInput{Name: " Dana L ", Email: " DANA.L@Example.com "})
	if err != nil {
		t.Fatalf("UpdateProfile: %v", err)
	}
	if updated.Name != "Dana L" || updated.Email != "dana.l@example.com" {
		t.Errorf("updated = %+v, want trimmed and lowercased", updated)
	}

	if _, err := svc.UpdateProfile(ctx, user.ID, ProfileInput{Email: "sam@example.com"}); apperrors.ToDomainError(err).Code != "CONFLICT" {
		t.Fatalf("taken email err = %v, want CONFLICT", err)
	}

	// Blank fields leave the stored values alone.
	updated, err = svc.UpdateProfile(ctx, user.ID, ProfileInput{})
	if err != nil {
		t.Fatalf("UpdateProfile: %v", err)
	}
	if updated.Name != "Dana L" {
		t.Errorf("name = %q, want unchanged", updated.Name)
	}
}

func TestUpdatePreferencesReplacesWholeBlock(t *testing.T) {
	ctx := context.Background()
	svc, users, user := newAccountFixture(t)

	// Sending a partial-looking payload still replaces everything: the
	// omitted flags come back as their zero values.
	updated, err := svc.UpdatePreferences(ctx, user.ID, domain.NotificationPreferences{MessageAlerts: true})
	if err != nil {
		t.Fatalf("UpdatePreferences: %v", err)
	}
	if updated.Preferences.EmailUpdates || updated.Preferences.ProtocolReminders {
		t.Errorf("preferences = %+v, want non-sent flags reset", updated.Preferences)
	}
	if !updated.Preferences.MessageAlerts {
		t.Error("message alerts should be on")
	}

	stored, _ := users.GetByID(ctx, user.ID)
	if stored.Preferences != updated.Preferences {
		t.Errorf("stored = %+v, want persisted", stored.Preferences)
	}
}

func TestUpdatePaymentMethodReplacesAndClears(t *testing.T) {
	ctx := context.Background()
	svc, _, user := newAccountFixture(t)

	updated, err := svc.UpdatePaymentMethod(ctx, user.ID, &domain.PaymentMethod{Brand: "visa", Last4: "4242", ExpMonth: 12, ExpYear: 2028})
	if err != nil {
		t.Fatalf("UpdatePaymentMethod: %v", err)
	}
	if updated.PaymentMethod == nil || updated.PaymentMethod.Last4 != "4242" {
		t.Errorf("payment method = %+v", updated.PaymentMethod)
	}

	updated, err = svc.UpdatePaymentMethod(ctx, user.ID, nil)
	if err != nil {
		t.Fatalf("UpdatePaymentMethod(nil): %v", err)
	}
	if updated.PaymentMethod != nil {
		t.Error("nil method should clear the stored card")
	}
}

func TestMeUnknownUser(t *testing.T) {
	svc, _, _ := newAccountFixture(t)
	if _, err := svc.Me(context.Background(), "missing"); apperrors.ToDomainError(err).Code != "NOT_FOUND" {
		t.Fatalf("err = %v, want NOT_FOUND", err)
	}
}
