// Package billing fronts the payment provider. Services depend on the
// Gateway interface; the Stripe-backed client lives in stripe.go and tests
// substitute a fake.
package billing

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/spec-kit/canine-care-service/internal/domain"
)

var (
	// ErrNotConfigured is returned when no API key is present.
	ErrNotConfigured = errors.New("billing: gateway not configured")
	// ErrUpstream wraps provider transport and status failures.
	ErrUpstream = errors.New("billing: upstream error")
)

// CheckoutSession is a hosted payment page handle.
type CheckoutSession struct {
	ID  string
	URL string
}

// PortalSession is a hosted self-service billing page handle.
type PortalSession struct {
	URL string
}

// SubscriptionItem is one priced line on a subscription.
type SubscriptionItem struct {
	ID          string
	PriceID     string
	AmountCents int64
	Nickname    string
	ProductName string
}

// Subscription mirrors the provider-side subscription object.
type Subscription struct {
	ID                string
	CustomerID        string
	Status            domain.SubscriptionStatus
	CurrentPeriodEnd  time.Time
	CancelAtPeriodEnd bool
	Items             []SubscriptionItem
}

// PrimaryItem returns the first line item, which carries the plan price.
func (s *Subscription) PrimaryItem() *SubscriptionItem {
	if s == nil || len(s.Items) == 0 {
		return nil
	}
	return &s.Items[0]
}

// CheckoutParams describes a new hosted checkout.
type CheckoutParams struct {
	CustomerID    string
	CustomerEmail string
	PriceID       string
	SuccessURL    string
	CancelURL     string
}

// Gateway is the payment provider port.
type Gateway interface {
	CreateCustomer(ctx context.Context, email, name string) (string, error)
	CreateCheckoutSession(ctx context.Context, params CheckoutParams) (*CheckoutSession, error)
	GetSubscription(ctx context.Context, subscriptionID string) (*Subscription, error)
	ChangeSubscriptionPrice(ctx context.Context, subscriptionID, itemID, priceID string) (*Subscription, error)
	CancelSubscription(ctx context.Context, subscriptionID string, immediate bool) (*Subscription, error)
	CreatePortalSession(ctx context.Context, customerID, returnURL string) (*PortalSession, error)
	EnsurePrice(ctx context.Context, plan domain.PlanKey) (string, error)
}

// PlanResolver infers which plan a provider price belongs to. Resolution
// order: configured price ID, then plan amount, then keywords in the price
// nickname or product name.
type PlanResolver struct {
	priceIDs map[string]string
	amounts  map[string]int64
}

// NewPlanResolver builds a resolver from the configured plan maps.
func NewPlanResolver(priceIDs map[string]string, amounts map[string]int64) *PlanResolver {
	return &PlanResolver{priceIDs: priceIDs, amounts: amounts}
}

// Resolve maps a subscription item back to a plan key. Returns false when
// nothing matches.
func (r *PlanResolver) Resolve(item *SubscriptionItem) (domain.PlanKey, bool) {
	if item == nil {
		return "", false
	}
	if item.PriceID != "" {
		for plan, priceID := range r.priceIDs {
			if priceID != "" && priceID == item.PriceID {
				return domain.PlanKey(plan), true
			}
		}
	}
	if item.AmountCents > 0 {
		for plan, amount := range r.amounts {
			if amount == item.AmountCents {
				return domain.PlanKey(plan), true
			}
		}
	}
	haystack := strings.ToLower(item.Nickname + " " + item.ProductName)
	for _, plan := range []domain.PlanKey{domain.PlanComprehensive, domain.PlanTherapeutic, domain.PlanFoundation} {
		if strings.Contains(haystack, string(plan)) {
			return plan, true
		}
	}
	return "", false
}
