package service

import (
	"context"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"github.com/spec-kit/canine-care-service/internal/config"
	"github.com/spec-kit/canine-care-service/internal/domain"
	"github.com/spec-kit/canine-care-service/internal/repository/memory"
	apperrors "github.com/spec-kit/canine-care-service/pkg/util/errorutil"
)

func newAuthServiceForTest() *AuthService {
	cfg := config.Config{Auth: config.AuthConfig{
		JWTSecret:             "test-secret",
		AccessTokenTTLMinutes: 15,
		BcryptCost:            bcrypt.MinCost,
	}}
	return NewAuthService(cfg, AuthDependencies{
		UserRepo:  memory.NewUserRepository(),
		StaffRepo: memory.NewStaffRepository(),
	})
}

func TestRegisterAndLoginUser(t *testing.T) {
	ctx := context.Background()
	svc := newAuthServiceForTest()

	user, token, exp, err := svc.RegisterUser(ctx, " Dana ", " DANA@Example.com ", "s3cret-pass")
	if err != nil {
		t.Fatalf("RegisterUser: %v", err)
	}
	if user.Email != "dana@example.com" || user.Name != "Dana" {
		t.Errorf("user = %+v, want normalized fields", user)
	}
	if !user.Preferences.EmailUpdates || !user.Preferences.MessageAlerts {
		t.Errorf("preferences = %+v, want all notifications on by default", user.Preferences)
	}
	if token == "" || exp.IsZero() {
		t.Error("registration should issue a token")
	}

	if _, _, _, err := svc.RegisterUser(ctx, "Other", "dana@example.com", "s3cret-pass"); apperrors.ToDomainError(err).Code != "CONFLICT" {
		t.Fatalf("duplicate email err = %v, want CONFLICT", err)
	}

	logged, token, _, err := svc.LoginUser(ctx, "dana@example.com", "s3cret-pass")
	if err != nil {
		t.Fatalf("LoginUser: %v", err)
	}
	if logged.ID != user.ID || token == "" {
		t.Errorf("login returned %+v", logged)
	}

	if _, _, _, err := svc.LoginUser(ctx, "dana@example.com", "wrong"); apperrors.ToDomainError(err).Code != "UNAUTHORIZED" {
		t.Fatalf("bad password err = %v, want UNAUTHORIZED", err)
	}
	if _, _, _, err := svc.LoginUser(ctx, "nobody@example.com", "s3cret-pass"); apperrors.ToDomainError(err).Code != "UNAUTHORIZED" {
		t.Fatalf("unknown email err = %v, want UNAUTHORIZED", err)
	}
}

func TestLoginStaffRejectsInactive(t *testing.T) {
	ctx := context.Background()
	svc := newAuthServiceForTest()

	// Provision through ChangePassword's hashing path is indirect; seed via
	// the repo with a real hash instead.
	hash, err := hashForTest("reviewer-pass")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	member := &domain.StaffMember{
		Name:         "Riley",
		Email:        "riley@example.com",
		PasswordHash: hash,
		Role:         domain.StaffRoleReviewer,
		Active:       true,
	}
	if err := svc.staff.Create(ctx, member); err != nil {
		t.Fatalf("create staff: %v", err)
	}

	logged, token, _, err := svc.LoginStaff(ctx, "riley@example.com", "reviewer-pass")
	if err != nil {
		t.Fatalf("LoginStaff: %v", err)
	}
	if logged.ID != member.ID || token == "" {
		t.Errorf("login returned %+v", logged)
	}

	member.Active = false
	if err := svc.staff.Update(ctx, member); err != nil {
		t.Fatalf("deactivate: %v", err)
	}
	if _, _, _, err := svc.LoginStaff(ctx, "riley@example.com", "reviewer-pass"); apperrors.ToDomainError(err).Code != "FORBIDDEN" {
		t.Fatalf("inactive staff err = %v, want FORBIDDEN", err)
	}
}

func TestChangePasswordVerifiesCurrent(t *testing.T) {
	ctx := context.Background()
	svc := newAuthServiceForTest()
	user, _, _, err := svc.RegisterUser(ctx, "Dana", "dana@example.com", "old-password")
	if err != nil {
		t.Fatalf("RegisterUser: %v", err)
	}
	subject := AuthSubject{Type: domain.SubjectTypeUser, ID: user.ID}

	if err := svc.ChangePassword(ctx, subject, "wrong", "new-password"); apperrors.ToDomainError(err).Code != "UNAUTHORIZED" {
		t.Fatalf("wrong current err = %v, want UNAUTHORIZED", err)
	}
	if err := svc.ChangePassword(ctx, subject, "old-password", "new-password"); err != nil {
		t.Fatalf("ChangePassword: %v", err)
	}
	if _, _, _, err := svc.LoginUser(ctx, "dana@example.com", "new-password"); err != nil {
		t.Fatalf("login with new password: %v", err)
	}
	if _, _, _, err := svc.LoginUser(ctx, "dana@example.com", "old-password"); err == nil {
		t.Fatal("old password should no longer work")
	}
}

func hashForTest(password string) (string, error) {
	raw, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}
