package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/canine-care-service/internal/api/dto"
	"github.com/spec-kit/canine-care-service/internal/domain"
	"github.com/spec-kit/canine-care-service/internal/service"
)

// AdminHandler exposes the staff review queue, audit log, staff management,
// and the notification inbox.
type AdminHandler struct {
	admin         *service.AdminService
	notifications *service.NotificationService
}

// NewAdminHandler constructs handler.
func NewAdminHandler(adminService *service.AdminService, notificationService *service.NotificationService) *AdminHandler {
	return &AdminHandler{admin: adminService, notifications: notificationService}
}

// ListSubmissions handles GET /admin/submissions.
func (h *AdminHandler) ListSubmissions(c *fiber.Ctx) error {
	staff, err := requireStaffPrincipal(c)
	if err != nil {
		return err
	}
	submissions, err := h.admin.ListSubmissions(c.Context(), staff, parseSubmissionFilter(c))
	if err != nil {
		return err
	}
	items := make([]dto.SubmissionResponse, 0, len(submissions))
	for i := range submissions {
		items = append(items, submissionResponse(&submissions[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// GetSubmission handles GET /admin/submissions/:id.
func (h *AdminHandler) GetSubmission(c *fiber.Ctx) error {
	staff, err := requireStaffPrincipal(c)
	if err != nil {
		return err
	}
	submission, protocol, err := h.admin.GetSubmission(c.Context(), staff, c.Params("id"))
	if err != nil {
		return err
	}
	payload := fiber.Map{"submission": submissionResponse(submission)}
	if protocol != nil {
		payload["protocol"] = protocolResponse(protocol)
	}
	return c.JSON(fiber.Map{"data": payload})
}

// UpdateSubmissionStatus handles PUT /admin/submissions/:id/status.
func (h *AdminHandler) UpdateSubmissionStatus(c *fiber.Ctx) error {
	staff, err := requireStaffPrincipal(c)
	if err != nil {
		return err
	}
	var req dto.SubmissionStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	if req.Status == "" {
		return fiber.NewError(http.StatusBadRequest, "status required")
	}
	submission, err := h.admin.UpdateStatus(c.Context(), staff, c.Params("id"), req.Status, req.Comment, req.FinalProtocolID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": submissionResponse(submission)})
}

// AssignSubmission handles PUT /admin/submissions/:id/assign.
func (h *AdminHandler) AssignSubmission(c *fiber.Ctx) error {
	staff, err := requireStaffPrincipal(c)
	if err != nil {
		return err
	}
	var req dto.AssignRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	submission, err := h.admin.Assign(c.Context(), staff, c.Params("id"), req.AssigneeID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": submissionResponse(submission)})
}

// BulkApprove handles POST /admin/submissions/bulk-approve.
func (h *AdminHandler) BulkApprove(c *fiber.Ctx) error {
	staff, err := requireStaffPrincipal(c)
	if err != nil {
		return err
	}
	var req dto.BulkApproveRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	if len(req.SubmissionIDs) == 0 {
		return fiber.NewError(http.StatusBadRequest, "submission_ids required")
	}
	approved, err := h.admin.BulkApprove(c.Context(), staff, req.SubmissionIDs)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{
		"approved":  approved,
		"requested": len(req.SubmissionIDs),
	}})
}

// AuditLog handles GET /admin/audit-log.
func (h *AdminHandler) AuditLog(c *fiber.Ctx) error {
	staff, err := requireStaffPrincipal(c)
	if err != nil {
		return err
	}
	limit, offset := pageOffsetLimit(c, 50)
	entries, err := h.admin.ListAuditLog(c.Context(), staff, limit, offset)
	if err != nil {
		return err
	}
	items := make([]dto.AuditLogEntryResponse, 0, len(entries))
	for i := range entries {
		items = append(items, auditLogResponse(&entries[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// CreateStaff handles POST /admin/staff.
func (h *AdminHandler) CreateStaff(c *fiber.Ctx) error {
	staff, err := requireStaffPrincipal(c)
	if err != nil {
		return err
	}
	var req dto.StaffCreateRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	if req.Name == "" || req.Email == "" || req.Password == "" {
		return fiber.NewError(http.StatusBadRequest, "name, email, password required")
	}
	created, err := h.admin.CreateStaffMember(c.Context(), staff, req.Name, req.Email, req.Password, req.Role)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": adminStaffResponse(created)})
}

// ListStaff handles GET /admin/staff.
func (h *AdminHandler) ListStaff(c *fiber.Ctx) error {
	staff, err := requireStaffPrincipal(c)
	if err != nil {
		return err
	}
	limit, offset := pageOffsetLimit(c, 50)
	members, err := h.admin.ListStaffMembers(c.Context(), staff, limit, offset)
	if err != nil {
		return err
	}
	items := make([]dto.StaffResponse, 0, len(members))
	for i := range members {
		items = append(items, adminStaffResponse(&members[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// UpdateStaff handles PUT /admin/staff/:id.
func (h *AdminHandler) UpdateStaff(c *fiber.Ctx) error {
	staff, err := requireStaffPrincipal(c)
	if err != nil {
		return err
	}
	var req dto.StaffUpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	updated, err := h.admin.UpdateStaffMember(c.Context(), staff, c.Params("id"), req.Role, req.Active)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": adminStaffResponse(updated)})
}

// ListNotifications handles GET /admin/notifications.
func (h *AdminHandler) ListNotifications(c *fiber.Ctx) error {
	if _, err := requireStaffPrincipal(c); err != nil {
		return err
	}
	unreadOnly := parseBoolQuery(c, "unread_only", false)
	limit, offset := pageOffsetLimit(c, 50)
	notifications, err := h.notifications.List(c.Context(), unreadOnly, limit, offset)
	if err != nil {
		return err
	}
	items := make([]dto.NotificationResponse, 0, len(notifications))
	for i := range notifications {
		items = append(items, notificationResponse(&notifications[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// MarkNotificationRead handles PUT /admin/notifications/:id/read.
func (h *AdminHandler) MarkNotificationRead(c *fiber.Ctx) error {
	if _, err := requireStaffPrincipal(c); err != nil {
		return err
	}
	if err := h.notifications.MarkRead(c.Context(), c.Params("id")); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"status": "read"}})
}

func parseSubmissionFilter(c *fiber.Ctx) service.SubmissionListFilter {
	var filter service.SubmissionListFilter
	if userID := c.Query("user_id"); userID != "" {
		filter.UserID = &userID
	}
	if dogID := c.Query("dog_id"); dogID != "" {
		filter.DogID = &dogID
	}
	if assigneeID := c.Query("assignee_id"); assigneeID != "" {
		filter.AssigneeID = &assigneeID
	}
	for _, raw := range strings.Split(c.Query("status"), ",") {
		if raw = strings.TrimSpace(raw); raw != "" {
			filter.Statuses = append(filter.Statuses, domain.SubmissionStatus(raw))
		}
	}
	for _, raw := range strings.Split(c.Query("priority"), ",") {
		if raw = strings.TrimSpace(raw); raw != "" {
			filter.Priorities = append(filter.Priorities, domain.SubmissionPriority(raw))
		}
	}
	if from := c.Query("date_from"); from != "" {
		if parsed, err := time.Parse(time.RFC3339, from); err == nil {
			filter.CreatedFrom = &parsed
		}
	}
	if to := c.Query("date_to"); to != "" {
		if parsed, err := time.Parse(time.RFC3339, to); err == nil {
			filter.CreatedTo = &parsed
		}
	}
	filter.Limit, filter.Offset = pageOffsetLimit(c, 20)
	return filter
}

func adminStaffResponse(staff *domain.StaffMember) dto.StaffResponse {
	return dto.StaffResponse{
		ID:        staff.ID,
		Name:      staff.Name,
		Email:     staff.Email,
		Role:      staff.Role,
		Active:    staff.Active,
		CreatedAt: staff.CreatedAt,
	}
}

func auditLogResponse(entry *domain.AuditLogEntry) dto.AuditLogEntryResponse {
	return dto.AuditLogEntryResponse{
		ID:        entry.ID,
		ActorID:   entry.ActorID,
		ActorName: entry.ActorName,
		Action:    entry.Action,
		Details:   entry.Details,
		IPAddress: entry.IPAddress,
		CreatedAt: entry.CreatedAt,
	}
}

func notificationResponse(notification *domain.Notification) dto.NotificationResponse {
	return dto.NotificationResponse{
		ID:           notification.ID,
		Type:         notification.Type,
		Title:        notification.Title,
		Body:         notification.Body,
		Priority:     notification.Priority,
		SubmissionID: notification.SubmissionID,
		Read:         notification.Read,
		CreatedAt:    notification.CreatedAt,
	}
}
