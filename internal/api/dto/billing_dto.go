package dto

import (
	"time"

	"github.com/spec-kit/canine-care-service/internal/domain"
)

// CheckoutRequest selects the target plan for checkout.
type CheckoutRequest struct {
	Plan string `json:"plan"`
}

// CheckoutOutcomeResponse is the tagged checkout result. Exactly one of the
// optional fields is meaningful for a given kind.
type CheckoutOutcomeResponse struct {
	Kind        string                    `json:"kind"`
	SessionID   string                    `json:"session_id,omitempty"`
	URL         string                    `json:"url,omitempty"`
	Message     string                    `json:"message,omitempty"`
	Pending     *domain.PendingPlanChange `json:"pending,omitempty"`
	AppliedPlan *domain.PlanKey           `json:"applied_plan,omitempty"`
}

// PlanResponse pairs a tier definition with its per-user affordance.
type PlanResponse struct {
	Key         domain.PlanKey        `json:"key"`
	Name        string                `json:"name"`
	AmountCents int64                 `json:"amount_cents"`
	Features    []string              `json:"features"`
	Affordance  domain.PlanAffordance `json:"affordance"`
}

// SubscriptionResponse summarizes the user's billing state.
type SubscriptionResponse struct {
	Tier             domain.PlanKey            `json:"tier"`
	Status           domain.SubscriptionStatus `json:"status"`
	CurrentPeriodEnd *time.Time                `json:"current_period_end"`
	OnTrial          bool                      `json:"on_trial"`
	PaymentMethod    *domain.PaymentMethod     `json:"payment_method"`
	Billing          domain.BillingState       `json:"billing"`
}

// CancelSubscriptionRequest payload.
type CancelSubscriptionRequest struct {
	Immediate bool `json:"immediate"`
}

// DowngradePreviewResponse lists the feature diff for a downgrade dialog.
type DowngradePreviewResponse struct {
	Losses []string `json:"losses"`
	Gains  []string `json:"gains"`
}
