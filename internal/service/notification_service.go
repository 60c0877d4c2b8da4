package service

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/canine-care-service/internal/config"
	"github.com/spec-kit/canine-care-service/internal/domain"
	"github.com/spec-kit/canine-care-service/internal/events"
	"github.com/spec-kit/canine-care-service/internal/repository"
)

// NotificationService turns domain events into persisted staff notifications.
type NotificationService struct {
	notifications repository.NotificationRepository
	dispatcher    events.Dispatcher
	logger        *zap.Logger
	cfg           config.NotificationConfig
}

// NewNotificationService creates the service.
func NewNotificationService(notifications repository.NotificationRepository, dispatcher events.Dispatcher, logger *zap.Logger, cfg config.NotificationConfig) *NotificationService {
	return &NotificationService{
		notifications: notifications,
		dispatcher:    dispatcher,
		logger:        logger,
		cfg:           cfg,
	}
}

// RegisterHandlers subscribes to events.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.Subscribe(events.EventSubmissionCreated, n.handleSubmissionCreated)
	n.dispatcher.Subscribe(events.EventSubmissionStatusChanged, n.handleSubmissionStatusChanged)
	n.dispatcher.Subscribe(events.EventMessageAdded, n.handleMessageAdded)
	n.dispatcher.Subscribe(events.EventPlanChanged, n.handlePlanChanged)
}

// List returns stored notifications.
func (n *NotificationService) List(ctx context.Context, unreadOnly bool, limit, offset int) ([]domain.Notification, error) {
	return n.notifications.List(ctx, unreadOnly, limit, offset)
}

// MarkRead marks one notification as read.
func (n *NotificationService) MarkRead(ctx context.Context, id string) error {
	return n.notifications.MarkRead(ctx, id)
}

// handleSubmissionCreated stores a review-queue notification whose priority
// mirrors the submission's derived priority.
func (n *NotificationService) handleSubmissionCreated(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.SubmissionCreatedPayload)
	if !ok {
		return nil
	}
	submissionID := event.SubjectID
	notification := &domain.Notification{
		Type:         domain.NotificationSubmission,
		Title:        "New submission awaiting review",
		Body:         fmt.Sprintf("%s submitted a re-evaluation (urgency: %s)", payload.DogName, payload.Urgency),
		Priority:     payload.Priority,
		SubmissionID: &submissionID,
	}
	if err := n.notifications.Create(ctx, notification); err != nil {
		n.logger.Error("persist notification", zap.Error(err))
		return err
	}
	n.sendEmailNotificationStub(ctx, event)
	n.sendWebhookNotificationStub(ctx, event)
	return nil
}

func (n *NotificationService) handleSubmissionStatusChanged(ctx context.Context, event events.Event) error {
	n.logger.Info("SubmissionStatusChanged", zap.String("submission_id", event.SubjectID), zap.Any("payload", event.Payload))
	n.sendWebhookNotificationStub(ctx, event)
	return nil
}

func (n *NotificationService) handleMessageAdded(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.MessageAddedPayload)
	if !ok {
		return nil
	}
	// Staff replies notify the user out of band; only user messages land in
	// the staff inbox feed.
	if payload.SenderRole == domain.SubjectTypeStaff {
		return nil
	}
	notification := &domain.Notification{
		Type:     domain.NotificationMessage,
		Title:    "New message from a pet owner",
		Body:     payload.BodyPreview,
		Priority: domain.PriorityMedium,
	}
	if err := n.notifications.Create(ctx, notification); err != nil {
		n.logger.Error("persist notification", zap.Error(err))
		return err
	}
	n.sendEmailNotificationStub(ctx, event)
	return nil
}

func (n *NotificationService) handlePlanChanged(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.PlanChangedPayload)
	if !ok {
		return nil
	}
	notification := &domain.Notification{
		Type:     domain.NotificationBilling,
		Title:    "Subscription plan changed",
		Body:     fmt.Sprintf("plan is now %s (%s)", payload.NewPlan, payload.Status),
		Priority: domain.PriorityMedium,
	}
	if err := n.notifications.Create(ctx, notification); err != nil {
		n.logger.Error("persist notification", zap.Error(err))
		return err
	}
	return nil
}

func (n *NotificationService) sendEmailNotificationStub(ctx context.Context, event events.Event) {
	if strings.TrimSpace(n.cfg.EmailFrom) == "" {
		return
	}
	n.logger.Debug("sendEmailNotificationStub",
		zap.String("from", n.cfg.EmailFrom),
		zap.String("subject_id", event.SubjectID),
		zap.String("event_type", string(event.Type)))
}

func (n *NotificationService) sendWebhookNotificationStub(ctx context.Context, event events.Event) {
	if strings.TrimSpace(n.cfg.WebhookURL) == "" {
		return
	}
	n.logger.Debug("sendWebhookNotificationStub",
		zap.String("url", n.cfg.WebhookURL),
		zap.String("subject_id", event.SubjectID),
		zap.String("event_type", string(event.Type)))
}
