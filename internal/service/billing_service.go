package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/canine-care-service/internal/billing"
	"github.com/spec-kit/canine-care-service/internal/cache"
	"github.com/spec-kit/canine-care-service/internal/config"
	"github.com/spec-kit/canine-care-service/internal/domain"
	"github.com/spec-kit/canine-care-service/internal/events"
	"github.com/spec-kit/canine-care-service/internal/repository"
	apperrors "github.com/spec-kit/canine-care-service/pkg/util/errorutil"
)

// CheckoutKind tags the outcome of a checkout request.
type CheckoutKind string

const (
	// CheckoutRedirect carries a hosted page URL the caller must navigate to.
	CheckoutRedirect CheckoutKind = "redirect"
	// CheckoutDowngrade and CheckoutUpgrade signal an in-place plan change.
	// When Pending is set the provider has not confirmed yet; when
	// AppliedPlan is set the change took effect immediately.
	CheckoutDowngrade CheckoutKind = "downgrade"
	CheckoutUpgrade   CheckoutKind = "upgrade"
	// CheckoutMessage carries an id and message but no URL; the caller must
	// act on an out-of-band link.
	CheckoutMessage CheckoutKind = "message"
)

// CheckoutOutcome is the tagged result of StartCheckout.
type CheckoutOutcome struct {
	Kind        CheckoutKind
	SessionID   string
	URL         string
	Message     string
	Pending     *domain.PendingPlanChange
	AppliedPlan *domain.PlanKey
}

// BillingService drives subscription lifecycle against the payment provider
// and reconciles local plan state with provider confirmations.
type BillingService struct {
	users     repository.UserRepository
	payments  repository.PaymentEventRepository
	gateway   billing.Gateway
	resolver  *billing.PlanResolver
	snapshots *cache.SnapshotCache
	dispatch  events.Dispatcher
	cfg       config.BillingConfig
}

// BillingDependencies bundles collaborators.
type BillingDependencies struct {
	UserRepo         repository.UserRepository
	PaymentEventRepo repository.PaymentEventRepository
	Gateway          billing.Gateway
	Resolver         *billing.PlanResolver
	Snapshots        *cache.SnapshotCache
	Dispatcher       events.Dispatcher
}

// NewBillingService constructs the service.
func NewBillingService(cfg config.BillingConfig, deps BillingDependencies) *BillingService {
	return &BillingService{
		users:     deps.UserRepo,
		payments:  deps.PaymentEventRepo,
		gateway:   deps.Gateway,
		resolver:  deps.Resolver,
		snapshots: deps.Snapshots,
		dispatch:  deps.Dispatcher,
		cfg:       cfg,
	}
}

// PlanOptions returns every tier with the affordance the user's current
// state implies for it.
func (s *BillingService) PlanOptions(user *domain.User) []domain.PlanAffordance {
	plans := domain.Plans()
	affordances := make([]domain.PlanAffordance, 0, len(plans))
	for _, plan := range plans {
		affordances = append(affordances, domain.AffordanceFor(plan, user.Tier, user.SubscriptionStatus))
	}
	return affordances
}

// DowngradePreview computes the feature diff shown before a downgrade is
// confirmed.
func (s *BillingService) DowngradePreview(user *domain.User, target domain.PlanKey) ([]string, []string, error) {
	targetPlan, ok := domain.PlanByKey(target)
	if !ok {
		return nil, nil, apperrors.NewValidationError("unknown plan", map[string]any{"plan": target})
	}
	var current *domain.Plan
	if user.HasActiveSubscription() {
		if plan, ok := domain.PlanByKey(user.Tier); ok {
			current = &plan
		}
	}
	losses, gains := domain.DowngradeLosses(current, targetPlan)
	return losses, gains, nil
}

// State reports the tagged reconciliation phase for the user's plan.
func (s *BillingService) State(ctx context.Context, user *domain.User) domain.BillingState {
	if pending, err := s.snapshots.GetPendingChange(ctx, user.ID); err == nil {
		return domain.BillingState{Phase: domain.BillingPending, Pending: pending}
	}
	if user.HasActiveSubscription() {
		return domain.BillingState{Phase: domain.BillingConfirmed}
	}
	return domain.BillingState{Phase: domain.BillingIdle}
}

// StartCheckout begins or modifies a subscription for the given plan.
func (s *BillingService) StartCheckout(ctx context.Context, user *domain.User, target domain.PlanKey) (*CheckoutOutcome, error) {
	if !target.Valid() {
		return nil, apperrors.NewValidationError("unknown plan", map[string]any{"plan": target})
	}

	if user.HasActiveSubscription() && user.StripeSubscriptionID != nil {
		switch domain.ClassifyPlan(target, user.Tier, user.SubscriptionStatus) {
		case domain.PlanRelationCurrent:
			return &CheckoutOutcome{
				Kind:    CheckoutRedirect,
				URL:     s.cfg.DashboardURL,
				Message: "You are already subscribed to this plan.",
			}, nil
		case domain.PlanRelationLower:
			return s.changePlan(ctx, user, target, domain.PlanChangeDowngrade)
		default:
			return s.changePlan(ctx, user, target, domain.PlanChangeUpgrade)
		}
	}

	return s.newCheckout(ctx, user, target)
}

// newCheckout opens a hosted checkout session for a user without an active
// subscription.
func (s *BillingService) newCheckout(ctx context.Context, user *domain.User, target domain.PlanKey) (*CheckoutOutcome, error) {
	if user.StripeCustomerID == nil {
		customerID, err := s.gateway.CreateCustomer(ctx, user.Email, user.Name)
		if err != nil {
			return nil, apperrors.MapError(err)
		}
		user.StripeCustomerID = &customerID
		if err := s.users.Update(ctx, user); err != nil {
			return nil, err
		}
	}

	priceID, err := s.gateway.EnsurePrice(ctx, target)
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	session, err := s.gateway.CreateCheckoutSession(ctx, billing.CheckoutParams{
		CustomerID: *user.StripeCustomerID,
		PriceID:    priceID,
		SuccessURL: s.cfg.SuccessURL,
		CancelURL:  s.cfg.CancelURL,
	})
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	if session.URL == "" {
		return &CheckoutOutcome{
			Kind:      CheckoutMessage,
			SessionID: session.ID,
			Message:   "Checkout session created; complete payment via the link sent to your email.",
		}, nil
	}
	return &CheckoutOutcome{
		Kind:      CheckoutRedirect,
		SessionID: session.ID,
		URL:       session.URL,
	}, nil
}

// changePlan swaps the subscription price in place. The provider's response
// decides pending-vs-applied: a returned subscription object means the
// change awaits webhook confirmation, so only a pending marker is stored and
// the local plan is left untouched.
func (s *BillingService) changePlan(ctx context.Context, user *domain.User, target domain.PlanKey, changeType domain.PlanChangeType) (*CheckoutOutcome, error) {
	kind := CheckoutUpgrade
	if changeType == domain.PlanChangeDowngrade {
		kind = CheckoutDowngrade
	}

	priceID, err := s.gateway.EnsurePrice(ctx, target)
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	subscription, err := s.gateway.GetSubscription(ctx, *user.StripeSubscriptionID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	item := subscription.PrimaryItem()
	if item == nil {
		return nil, apperrors.NewInternalError(errors.New("subscription has no priced item"))
	}

	updated, err := s.gateway.ChangeSubscriptionPrice(ctx, subscription.ID, item.ID, priceID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	message := "Your plan change has been scheduled and will take effect once payment is confirmed."
	if updated != nil {
		pending := domain.PendingPlanChange{
			Plan:        target,
			Type:        changeType,
			Message:     message,
			RequestedAt: time.Now().UTC(),
		}
		if err := s.snapshots.PutPendingChange(ctx, user.ID, pending); err != nil {
			return nil, err
		}
		return &CheckoutOutcome{Kind: kind, Message: message, Pending: &pending}, nil
	}

	// No subscription object back from the provider: treat the change as
	// applied locally right away.
	oldPlan := user.Tier
	user.Tier = target
	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}
	_ = s.snapshots.ClearPendingChange(ctx, user.ID)
	s.publishPlanChanged(ctx, user, oldPlan)
	applied := target
	return &CheckoutOutcome{Kind: kind, AppliedPlan: &applied}, nil
}

// CancelSubscription requests cancellation and then reloads the user's
// billing fields wholesale from the provider rather than patching in place.
func (s *BillingService) CancelSubscription(ctx context.Context, user *domain.User, immediate bool) (*domain.User, error) {
	if user.StripeSubscriptionID == nil {
		return nil, apperrors.NewValidationError("no active subscription", nil)
	}
	if _, err := s.gateway.CancelSubscription(ctx, *user.StripeSubscriptionID, immediate); err != nil {
		return nil, apperrors.MapError(err)
	}
	_ = s.snapshots.ClearPendingChange(ctx, user.ID)
	return s.SyncFromProvider(ctx, user.ID)
}

// CreatePortalSession opens the provider's self-service billing portal.
func (s *BillingService) CreatePortalSession(ctx context.Context, user *domain.User) (string, error) {
	if user.StripeCustomerID == nil {
		return "", apperrors.NewValidationError("no billing profile", nil)
	}
	session, err := s.gateway.CreatePortalSession(ctx, *user.StripeCustomerID, s.cfg.DashboardURL)
	if err != nil {
		return "", apperrors.MapError(err)
	}
	return session.URL, nil
}

// SyncFromProvider discards local billing fields and rebuilds them from the
// provider's subscription object.
func (s *BillingService) SyncFromProvider(ctx context.Context, userID string) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user.StripeSubscriptionID == nil {
		return user, nil
	}

	subscription, err := s.gateway.GetSubscription(ctx, *user.StripeSubscriptionID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	s.applySubscription(user, subscription)
	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// HandleWebhook verifies, records, and applies a provider callback.
func (s *BillingService) HandleWebhook(ctx context.Context, payload []byte, signature string) error {
	event, err := billing.ParseWebhook(payload, signature, s.cfg.WebhookSecret)
	if err != nil {
		if errors.Is(err, billing.ErrBadSignature) {
			return apperrors.NewUnauthorized("invalid webhook signature")
		}
		return apperrors.NewValidationError("malformed webhook payload", nil)
	}

	switch event.Type {
	case billing.EventInvoicePaymentSucceeded:
		return s.onInvoicePaid(ctx, event)
	case billing.EventInvoicePaymentFailed:
		return s.onInvoiceFailed(ctx, event)
	case billing.EventSubscriptionCreated, billing.EventSubscriptionUpdated:
		return s.onSubscriptionSynced(ctx, event)
	case billing.EventSubscriptionDeleted:
		return s.onSubscriptionDeleted(ctx, event)
	default:
		// Unhandled event types are acknowledged without action.
		return nil
	}
}

func (s *BillingService) onInvoicePaid(ctx context.Context, event *billing.WebhookEvent) error {
	invoice, err := event.Invoice()
	if err != nil {
		return apperrors.NewValidationError("malformed invoice payload", nil)
	}
	user, err := s.userByCustomer(ctx, invoice.Customer)
	if err != nil || user == nil {
		return err
	}
	s.recordPaymentEvent(ctx, user, event.Type, invoice.ID, payloadMap(event))

	oldPlan := user.Tier
	if plan, ok := s.resolver.Resolve(invoice.PricedItem()); ok {
		user.Tier = plan
	}
	user.SubscriptionStatus = domain.SubscriptionActive
	if invoice.Subscription != "" {
		user.StripeSubscriptionID = &invoice.Subscription
	}
	if err := s.users.Update(ctx, user); err != nil {
		return err
	}
	// Payment confirms any pending change; reconciliation moves to
	// confirmed.
	_ = s.snapshots.ClearPendingChange(ctx, user.ID)
	if user.Tier != oldPlan {
		s.publishPlanChanged(ctx, user, oldPlan)
	}
	return nil
}

func (s *BillingService) onInvoiceFailed(ctx context.Context, event *billing.WebhookEvent) error {
	invoice, err := event.Invoice()
	if err != nil {
		return apperrors.NewValidationError("malformed invoice payload", nil)
	}
	user, err := s.userByCustomer(ctx, invoice.Customer)
	if err != nil || user == nil {
		return err
	}
	s.recordPaymentEvent(ctx, user, event.Type, invoice.ID, payloadMap(event))

	user.SubscriptionStatus = domain.SubscriptionPastDue
	return s.users.Update(ctx, user)
}

func (s *BillingService) onSubscriptionSynced(ctx context.Context, event *billing.WebhookEvent) error {
	subscription, err := event.Subscription()
	if err != nil {
		return apperrors.NewValidationError("malformed subscription payload", nil)
	}
	user, err := s.userByCustomer(ctx, subscription.CustomerID)
	if err != nil || user == nil {
		return err
	}
	s.recordPaymentEvent(ctx, user, event.Type, subscription.ID, payloadMap(event))

	oldPlan := user.Tier
	s.applySubscription(user, subscription)
	if err := s.users.Update(ctx, user); err != nil {
		return err
	}
	if user.SubscriptionStatus.IsActive() {
		_ = s.snapshots.ClearPendingChange(ctx, user.ID)
	}
	if user.Tier != oldPlan {
		s.publishPlanChanged(ctx, user, oldPlan)
	}
	return nil
}

func (s *BillingService) onSubscriptionDeleted(ctx context.Context, event *billing.WebhookEvent) error {
	subscription, err := event.Subscription()
	if err != nil {
		return apperrors.NewValidationError("malformed subscription payload", nil)
	}
	user, err := s.userByCustomer(ctx, subscription.CustomerID)
	if err != nil || user == nil {
		return err
	}
	s.recordPaymentEvent(ctx, user, event.Type, subscription.ID, payloadMap(event))

	user.StripeSubscriptionID = nil
	user.StripePriceID = nil
	user.Tier = ""
	user.SubscriptionStatus = domain.SubscriptionCanceled
	user.CurrentPeriodEnd = nil
	_ = s.snapshots.ClearPendingChange(ctx, user.ID)
	return s.users.Update(ctx, user)
}

// applySubscription copies provider subscription state onto the user row.
func (s *BillingService) applySubscription(user *domain.User, subscription *billing.Subscription) {
	user.SubscriptionStatus = subscription.Status
	if !subscription.CurrentPeriodEnd.IsZero() {
		end := subscription.CurrentPeriodEnd
		user.CurrentPeriodEnd = &end
	}
	user.OnTrial = subscription.Status == domain.SubscriptionTrialing
	if item := subscription.PrimaryItem(); item != nil {
		if item.PriceID != "" {
			priceID := item.PriceID
			user.StripePriceID = &priceID
		}
		if plan, ok := s.resolver.Resolve(item); ok {
			user.Tier = plan
		}
	}
	if subscription.ID != "" {
		subID := subscription.ID
		user.StripeSubscriptionID = &subID
	}
}

func (s *BillingService) userByCustomer(ctx context.Context, customerID string) (*domain.User, error) {
	if customerID == "" {
		return nil, nil
	}
	user, err := s.users.GetByCustomerID(ctx, customerID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// Unknown customer: acknowledge so the provider stops retrying.
			return nil, nil
		}
		return nil, err
	}
	return user, nil
}

func (s *BillingService) recordPaymentEvent(ctx context.Context, user *domain.User, eventType, objectID string, payload map[string]any) {
	if s.payments == nil {
		return
	}
	record := &domain.PaymentEvent{
		EventType:        eventType,
		ProviderObjectID: objectID,
		Payload:          payload,
	}
	if user != nil {
		record.UserID = &user.ID
	}
	_ = s.payments.Create(ctx, record)
}

func (s *BillingService) publishPlanChanged(ctx context.Context, user *domain.User, oldPlan domain.PlanKey) {
	if s.dispatch == nil {
		return
	}
	_ = s.dispatch.Publish(ctx, events.Event{
		ID:        uuid.NewString(),
		Type:      events.EventPlanChanged,
		SubjectID: user.ID,
		Actor:     userActor(user.ID),
		Timestamp: time.Now(),
		Payload: events.PlanChangedPayload{
			OldPlan: oldPlan,
			NewPlan: user.Tier,
			Status:  user.SubscriptionStatus,
		},
	})
}

func payloadMap(event *billing.WebhookEvent) map[string]any {
	return map[string]any{
		"event_id":   event.ID,
		"event_type": event.Type,
	}
}
