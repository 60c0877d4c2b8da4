package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/canine-care-service/internal/auth"
	"github.com/spec-kit/canine-care-service/internal/config"
	"github.com/spec-kit/canine-care-service/internal/domain"
	"github.com/spec-kit/canine-care-service/internal/events"
	"github.com/spec-kit/canine-care-service/internal/repository"
	apperrors "github.com/spec-kit/canine-care-service/pkg/util/errorutil"
)

// AdminService coordinates submission review, staff management, and the
// audit trail.
type AdminService struct {
	submissions repository.SubmissionRepository
	protocols   repository.ProtocolRepository
	staff       repository.StaffRepository
	audit       repository.AuditLogRepository
	dispatcher  events.Dispatcher
	bcryptCost  int
}

// AdminDependencies bundles repositories.
type AdminDependencies struct {
	SubmissionRepo repository.SubmissionRepository
	ProtocolRepo   repository.ProtocolRepository
	StaffRepo      repository.StaffRepository
	AuditRepo      repository.AuditLogRepository
	Dispatcher     events.Dispatcher
}

// SubmissionListFilter describes staff queue filters.
type SubmissionListFilter struct {
	UserID      *string
	DogID       *string
	AssigneeID  *string
	Statuses    []domain.SubmissionStatus
	Priorities  []domain.SubmissionPriority
	CreatedFrom *time.Time
	CreatedTo   *time.Time
	Limit       int
	Offset      int
}

// NewAdminService creates the service.
func NewAdminService(cfg config.Config, deps AdminDependencies) *AdminService {
	return &AdminService{
		submissions: deps.SubmissionRepo,
		protocols:   deps.ProtocolRepo,
		staff:       deps.StaffRepo,
		audit:       deps.AuditRepo,
		dispatcher:  deps.Dispatcher,
		bcryptCost:  cfg.Auth.BcryptCost,
	}
}

func requireStaff(actor *domain.StaffMember) error {
	if actor == nil {
		return apperrors.NewUnauthorized("staff required")
	}
	return nil
}

func requireAdmin(actor *domain.StaffMember) error {
	if actor == nil || actor.Role != domain.StaffRoleAdmin {
		return apperrors.NewForbidden("admin role required")
	}
	return nil
}

// ListSubmissions returns the review queue with filters applied.
func (s *AdminService) ListSubmissions(ctx context.Context, actor *domain.StaffMember, filter SubmissionListFilter) ([]domain.DiagnosisSubmission, error) {
	if err := requireStaff(actor); err != nil {
		return nil, err
	}
	return s.submissions.ListWithFilter(ctx, repository.SubmissionFilter{
		UserID:      filter.UserID,
		DogID:       filter.DogID,
		AssigneeID:  filter.AssigneeID,
		Statuses:    filter.Statuses,
		Priorities:  filter.Priorities,
		CreatedFrom: filter.CreatedFrom,
		CreatedTo:   filter.CreatedTo,
		Limit:       filter.Limit,
		Offset:      filter.Offset,
	})
}

// GetSubmission fetches one submission with its generated protocol.
func (s *AdminService) GetSubmission(ctx context.Context, actor *domain.StaffMember, id string) (*domain.DiagnosisSubmission, *domain.Protocol, error) {
	if err := requireStaff(actor); err != nil {
		return nil, nil, err
	}
	submission, err := s.submissions.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil, apperrors.NewNotFound("submission", map[string]any{"submission_id": id})
		}
		return nil, nil, err
	}
	protocol, err := s.protocols.GetByID(ctx, submission.ProtocolID)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return nil, nil, err
	}
	return submission, protocol, nil
}

// UpdateStatus moves a submission through the review lifecycle.
func (s *AdminService) UpdateStatus(ctx context.Context, actor *domain.StaffMember, submissionID string, newStatus domain.SubmissionStatus, comment string, finalProtocolID *string) (*domain.DiagnosisSubmission, error) {
	if err := requireStaff(actor); err != nil {
		return nil, err
	}
	submission, err := s.submissions.GetByID(ctx, submissionID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("submission", map[string]any{"submission_id": submissionID})
		}
		return nil, err
	}
	if !domain.ValidSubmissionTransition(submission.Status, newStatus) {
		return nil, apperrors.NewValidationError("invalid status transition", map[string]any{
			"from": submission.Status,
			"to":   newStatus,
		})
	}

	oldStatus := submission.Status
	submission.Status = newStatus
	if finalProtocolID != nil {
		submission.FinalProtocolID = finalProtocolID
	}
	if err := s.submissions.Update(ctx, submission); err != nil {
		return nil, err
	}

	details := fmt.Sprintf("submission %s: %s -> %s", submission.ID, oldStatus, newStatus)
	if comment != "" {
		details += " (" + comment + ")"
	}
	s.appendAudit(ctx, actor, "submission_status_changed", details)

	s.publishEvent(ctx, events.Event{
		Type:      events.EventSubmissionStatusChanged,
		SubjectID: submission.ID,
		Actor:     staffActor(actor.ID),
		Payload: events.SubmissionStatusChangedPayload{
			OldStatus: oldStatus,
			NewStatus: newStatus,
			Comment:   comment,
		},
	})
	return submission, nil
}

// Assign sets or clears the reviewer on a submission.
func (s *AdminService) Assign(ctx context.Context, actor *domain.StaffMember, submissionID string, assigneeID *string) (*domain.DiagnosisSubmission, error) {
	if err := requireStaff(actor); err != nil {
		return nil, err
	}
	submission, err := s.submissions.GetByID(ctx, submissionID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("submission", map[string]any{"submission_id": submissionID})
		}
		return nil, err
	}

	if assigneeID != nil {
		assignee, err := s.staff.GetByID(ctx, *assigneeID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, apperrors.NewNotFound("staff member", map[string]any{"staff_id": *assigneeID})
			}
			return nil, err
		}
		if !assignee.Active {
			return nil, apperrors.NewValidationError("assignee inactive", nil)
		}
	}

	submission.AssigneeID = assigneeID
	if err := s.submissions.Update(ctx, submission); err != nil {
		return nil, err
	}

	detail := "unassigned"
	if assigneeID != nil {
		detail = "assigned to " + *assigneeID
	}
	s.appendAudit(ctx, actor, "submission_assigned", fmt.Sprintf("submission %s %s", submission.ID, detail))

	s.publishEvent(ctx, events.Event{
		Type:      events.EventSubmissionAssigned,
		SubjectID: submission.ID,
		Actor:     staffActor(actor.ID),
		Payload: events.SubmissionAssignedPayload{
			AssigneeStaffID: assigneeID,
		},
	})
	return submission, nil
}

// BulkApprove approves every submission whose current status permits it and
// reports how many changed.
func (s *AdminService) BulkApprove(ctx context.Context, actor *domain.StaffMember, submissionIDs []string) (int, error) {
	if err := requireAdmin(actor); err != nil {
		return 0, err
	}
	approved := 0
	for _, id := range submissionIDs {
		submission, err := s.submissions.GetByID(ctx, id)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				continue
			}
			return approved, err
		}
		if !domain.ValidSubmissionTransition(submission.Status, domain.SubmissionApproved) {
			continue
		}
		oldStatus := submission.Status
		submission.Status = domain.SubmissionApproved
		if err := s.submissions.Update(ctx, submission); err != nil {
			return approved, err
		}
		approved++
		s.publishEvent(ctx, events.Event{
			Type:      events.EventSubmissionStatusChanged,
			SubjectID: submission.ID,
			Actor:     staffActor(actor.ID),
			Payload: events.SubmissionStatusChangedPayload{
				OldStatus: oldStatus,
				NewStatus: domain.SubmissionApproved,
				Comment:   "bulk approve",
			},
		})
	}
	s.appendAudit(ctx, actor, "submissions_bulk_approved", fmt.Sprintf("approved %d of %d submissions", approved, len(submissionIDs)))
	return approved, nil
}

// ListAuditLog returns the administrative audit trail, newest first.
func (s *AdminService) ListAuditLog(ctx context.Context, actor *domain.StaffMember, limit, offset int) ([]domain.AuditLogEntry, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	return s.audit.List(ctx, limit, offset)
}

// CreateStaffMember provisions a reviewer or admin account.
func (s *AdminService) CreateStaffMember(ctx context.Context, actor *domain.StaffMember, name, email, password string, role domain.StaffRole) (*domain.StaffMember, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	email = strings.ToLower(strings.TrimSpace(email))
	if _, err := s.staff.GetByEmail(ctx, email); err == nil {
		return nil, apperrors.NewConflict("email already in use", nil)
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}

	hash, err := auth.HashPassword(password, s.bcryptCost)
	if err != nil {
		return nil, err
	}
	member := &domain.StaffMember{
		Name:         strings.TrimSpace(name),
		Email:        email,
		PasswordHash: hash,
		Role:         role,
		Active:       true,
	}
	if err := s.staff.Create(ctx, member); err != nil {
		return nil, err
	}
	s.appendAudit(ctx, actor, "staff_created", fmt.Sprintf("staff %s (%s) created with role %s", member.Name, member.Email, member.Role))
	return member, nil
}

// ListStaffMembers returns staff accounts.
func (s *AdminService) ListStaffMembers(ctx context.Context, actor *domain.StaffMember, limit, offset int) ([]domain.StaffMember, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	return s.staff.List(ctx, limit, offset)
}

// UpdateStaffMember changes role or active flag on a staff account.
func (s *AdminService) UpdateStaffMember(ctx context.Context, actor *domain.StaffMember, staffID string, role domain.StaffRole, active bool) (*domain.StaffMember, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	member, err := s.staff.GetByID(ctx, staffID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("staff member", map[string]any{"staff_id": staffID})
		}
		return nil, err
	}
	member.Role = role
	member.Active = active
	if err := s.staff.Update(ctx, member); err != nil {
		return nil, err
	}
	s.appendAudit(ctx, actor, "staff_updated", fmt.Sprintf("staff %s role=%s active=%t", member.ID, role, active))
	return member, nil
}

// appendAudit writes one audit entry. The source IP is never collected, so
// the placeholder value is recorded instead.
func (s *AdminService) appendAudit(ctx context.Context, actor *domain.StaffMember, action, details string) {
	if s.audit == nil {
		return
	}
	entry := &domain.AuditLogEntry{
		ActorID:   actor.ID,
		ActorName: actor.Name,
		Action:    action,
		Details:   details,
		IPAddress: domain.AuditPlaceholderIP,
	}
	_ = s.audit.Append(ctx, entry)
}

func (s *AdminService) publishEvent(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	_ = s.dispatcher.Publish(ctx, event)
}
