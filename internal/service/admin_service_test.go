package service

import (
	"context"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"github.com/spec-kit/canine-care-service/internal/config"
	"github.com/spec-kit/canine-care-service/internal/domain"
	"github.com/spec-kit/canine-care-service/internal/repository"
	"github.com/spec-kit/canine-care-service/internal/repository/memory"
	apperrors "github.com/spec-kit/canine-care-service/pkg/util/errorutil"
)

type adminFixture struct {
	svc         *AdminService
	submissions repository.SubmissionRepository
	staff       repository.StaffRepository
	audit       repository.AuditLogRepository
	admin       *domain.StaffMember
	reviewer    *domain.StaffMember
}

func newAdminFixture(t *testing.T) *adminFixture {
	t.Helper()
	ctx := context.Background()
	cfg := config.Config{Auth: config.AuthConfig{BcryptCost: bcrypt.MinCost}}

	submissions := memory.NewSubmissionRepository()
	staff := memory.NewStaffRepository()
	audit := memory.NewAuditLogRepository()
	svc := NewAdminService(cfg, AdminDependencies{
		SubmissionRepo: submissions,
		ProtocolRepo:   memory.NewProtocolRepository(),
		StaffRepo:      staff,
		AuditRepo:      audit,
	})

	admin := &domain.StaffMember{Name: "Alex Admin", Email: "alex@example.com", Role: domain.StaffRoleAdmin, Active: true}
	reviewer := &domain.StaffMember{Name: "Riley Reviewer", Email: "riley@example.com", Role: domain.StaffRoleReviewer, Active: true}
	for _, member := range []*domain.StaffMember{admin, reviewer} {
		if err := staff.Create(ctx, member); err != nil {
			t.Fatalf("create staff: %v", err)
		}
	}
	return &adminFixture{svc: svc, submissions: submissions, staff: staff, audit: audit, admin: admin, reviewer: reviewer}
}

func (f *adminFixture) seedSubmission(t *testing.T, status domain.SubmissionStatus) *domain.DiagnosisSubmission {
	t.Helper()
	submission := &domain.DiagnosisSubmission{
		DogID:    "dog-1",
		UserID:   "user-1",
		Status:   status,
		Priority: domain.PriorityMedium,
	}
	if err := f.submissions.Create(context.Background(), submission); err != nil {
		t.Fatalf("seed submission: %v", err)
	}
	return submission
}

func TestUpdateStatusFollowsLifecycle(t *testing.T) {
	ctx := context.Background()
	f := newAdminFixture(t)
	submission := f.seedSubmission(t, domain.SubmissionPending)

	updated, err := f.svc.UpdateStatus(ctx, f.reviewer, submission.ID, domain.SubmissionUnderReview, "taking a look", nil)
	if err != nil {
		t.Fatalf("UpdateStatus: %v", err)
	}
	if updated.Status != domain.SubmissionUnderReview {
		t.Errorf("status = %q", updated.Status)
	}

	finalID := "protocol-final"
	updated, err = f.svc.UpdateStatus(ctx, f.reviewer, submission.ID, domain.SubmissionApproved, "", &finalID)
	if err != nil {
		t.Fatalf("UpdateStatus approve: %v", err)
	}
	if updated.FinalProtocolID == nil || *updated.FinalProtocolID != finalID {
		t.Errorf("final protocol = %v, want %q", updated.FinalProtocolID, finalID)
	}

	// Approved is terminal.
	_, err = f.svc.UpdateStatus(ctx, f.reviewer, submission.ID, domain.SubmissionRejected, "", nil)
	de := apperrors.ToDomainError(err)
	if de == nil || de.Code != "VALIDATION_FAILED" {
		t.Fatalf("err = %v, want VALIDATION_FAILED", err)
	}
	if de.Details["from"] != domain.SubmissionApproved || de.Details["to"] != domain.SubmissionRejected {
		t.Errorf("details = %v, want from/to pair", de.Details)
	}
}

func TestUpdateStatusUnknownSubmission(t *testing.T) {
	f := newAdminFixture(t)
	_, err := f.svc.UpdateStatus(context.Background(), f.reviewer, "missing", domain.SubmissionUnderReview, "", nil)
	if apperrors.ToDomainError(err).Code != "NOT_FOUND" {
		t.Fatalf("err = %v, want NOT_FOUND", err)
	}
}

func TestAssignRequiresActiveStaff(t *testing.T) {
	ctx := context.Background()
	f := newAdminFixture(t)
	submission := f.seedSubmission(t, domain.SubmissionPending)

	updated, err := f.svc.Assign(ctx, f.admin, submission.ID, &f.reviewer.ID)
	if err != nil {
		t.Fatalf("Assign: %v", err)
	}
	if updated.AssigneeID == nil || *updated.AssigneeID != f.reviewer.ID {
		t.Errorf("assignee = %v", updated.AssigneeID)
	}

	inactive := &domain.StaffMember{Name: "Gone", Email: "gone@example.com", Role: domain.StaffRoleReviewer, Active: false}
	if err := f.staff.Create(ctx, inactive); err != nil {
		t.Fatalf("create staff: %v", err)
	}
	if _, err := f.svc.Assign(ctx, f.admin, submission.ID, &inactive.ID); apperrors.ToDomainError(err).Code != "VALIDATION_FAILED" {
		t.Fatalf("inactive assignee err = %v, want VALIDATION_FAILED", err)
	}

	// Clearing the assignment.
	updated, err = f.svc.Assign(ctx, f.admin, submission.ID, nil)
	if err != nil {
		t.Fatalf("Assign(nil): %v", err)
	}
	if updated.AssigneeID != nil {
		t.Errorf("assignee = %v, want cleared", updated.AssigneeID)
	}
}

func TestBulkApproveSkipsInvalidAndMissing(t *testing.T) {
	ctx := context.Background()
	f := newAdminFixture(t)
	pending := f.seedSubmission(t, domain.SubmissionPending)
	underReview := f.seedSubmission(t, domain.SubmissionUnderReview)
	rejected := f.seedSubmission(t, domain.SubmissionRejected)

	ids := []string{pending.ID, underReview.ID, rejected.ID, "missing"}
	approved, err := f.svc.BulkApprove(ctx, f.admin, ids)
	if err != nil {
		t.Fatalf("BulkApprove: %v", err)
	}
	if approved != 2 {
		t.Errorf("approved = %d, want 2", approved)
	}

	stored, _ := f.submissions.GetByID(ctx, rejected.ID)
	if stored.Status != domain.SubmissionRejected {
		t.Errorf("rejected submission moved to %q", stored.Status)
	}

	if _, err := f.svc.BulkApprove(ctx, f.reviewer, ids); apperrors.ToDomainError(err).Code != "FORBIDDEN" {
		t.Fatalf("reviewer bulk approve err = %v, want FORBIDDEN", err)
	}
}

func TestAuditTrailRecordsPlaceholderIP(t *testing.T) {
	ctx := context.Background()
	f := newAdminFixture(t)
	submission := f.seedSubmission(t, domain.SubmissionPending)

	if _, err := f.svc.UpdateStatus(ctx, f.reviewer, submission.ID, domain.SubmissionUnderReview, "", nil); err != nil {
		t.Fatalf("UpdateStatus: %v", err)
	}

	entries, err := f.svc.ListAuditLog(ctx, f.admin, 10, 0)
	if err != nil {
		t.Fatalf("ListAuditLog: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("entries = %d, want 1", len(entries))
	}
	entry := entries[0]
	if entry.Action != "submission_status_changed" || entry.ActorID != f.reviewer.ID {
		t.Errorf("entry = %+v", entry)
	}
	if entry.IPAddress != domain.AuditPlaceholderIP {
		t.Errorf("ip = %q, want %q", entry.IPAddress, domain.AuditPlaceholderIP)
	}

	if _, err := f.svc.ListAuditLog(ctx, f.reviewer, 10, 0); apperrors.ToDomainError(err).Code != "FORBIDDEN" {
		t.Fatalf("reviewer audit access err = %v, want FORBIDDEN", err)
	}
}

func TestStaffManagementIsAdminOnly(t *testing.T) {
	ctx := context.Background()
	f := newAdminFixture(t)

	member, err := f.svc.CreateStaffMember(ctx, f.admin, "New Reviewer", "NEW@Example.com ", "s3cret-pass", domain.StaffRoleReviewer)
	if err != nil {
		t.Fatalf("CreateStaffMember: %v", err)
	}
	if member.Email != "new@example.com" {
		t.Errorf("email = %q, want normalized", member.Email)
	}
	if !member.Active {
		t.Error("new staff should start active")
	}

	if _, err := f.svc.CreateStaffMember(ctx, f.admin, "Dup", "new@example.com", "s3cret-pass", domain.StaffRoleReviewer); apperrors.ToDomainError(err).Code != "CONFLICT" {
		t.Fatalf("duplicate email err = %v, want CONFLICT", err)
	}
	if _, err := f.svc.CreateStaffMember(ctx, f.reviewer, "Nope", "nope@example.com", "s3cret-pass", domain.StaffRoleReviewer); apperrors.ToDomainError(err).Code != "FORBIDDEN" {
		t.Fatalf("reviewer create err = %v, want FORBIDDEN", err)
	}

	updated, err := f.svc.UpdateStaffMember(ctx, f.admin, member.ID, domain.StaffRoleAdmin, false)
	if err != nil {
		t.Fatalf("UpdateStaffMember: %v", err)
	}
	if updated.Role != domain.StaffRoleAdmin || updated.Active {
		t.Errorf("updated = %+v, want admin and deactivated", updated)
	}
}

func TestListSubmissionsFilters(t *testing.T) {
	ctx := context.Background()
	f := newAdminFixture(t)
	pending := f.seedSubmission(t, domain.SubmissionPending)
	f.seedSubmission(t, domain.SubmissionApproved)

	listed, err := f.svc.ListSubmissions(ctx, f.reviewer, SubmissionListFilter{
		Statuses: []domain.SubmissionStatus{domain.SubmissionPending},
	})
	if err != nil {
		t.Fatalf("ListSubmissions: %v", err)
	}
	if len(listed) != 1 || listed[0].ID != pending.ID {
		t.Fatalf("listed = %+v, want only the pending one", listed)
	}

	if _, err := f.svc.ListSubmissions(ctx, nil, SubmissionListFilter{}); apperrors.ToDomainError(err).Code != "UNAUTHORIZED" {
		t.Fatalf("anonymous list err = %v, want UNAUTHORIZED", err)
	}
}
