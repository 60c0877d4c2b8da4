package domain

import "time"

// SubscriptionStatus mirrors the payment provider's subscription lifecycle.
type SubscriptionStatus string

const (
	SubscriptionIncomplete        SubscriptionStatus = "incomplete"
	SubscriptionIncompleteExpired SubscriptionStatus = "incomplete_expired"
	SubscriptionTrialing          SubscriptionStatus = "trialing"
	SubscriptionActive            SubscriptionStatus = "active"
	SubscriptionPastDue           SubscriptionStatus = "past_due"
	SubscriptionCanceled          SubscriptionStatus = "canceled"
	SubscriptionUnpaid            SubscriptionStatus = "unpaid"
)

// IsActive reports whether the status grants plan entitlements.
func (s SubscriptionStatus) IsActive() bool {
	return s == SubscriptionActive || s == SubscriptionTrialing
}

// PlanChangeType tags the direction of a requested plan change.
type PlanChangeType string

const (
	PlanChangeUpgrade   PlanChangeType = "upgrade"
	PlanChangeDowngrade PlanChangeType = "downgrade"
)

// PendingPlanChange records a plan change the provider accepted but has not
// yet confirmed via webhook.
type PendingPlanChange struct {
	Plan        PlanKey        `json:"plan"`
	Type        PlanChangeType `json:"type"`
	Message     string         `json:"message"`
	RequestedAt time.Time      `json:"requested_at"`
}

// BillingPhase is the tagged reconciliation state for a user's plan change.
// Transitions happen only on explicit gateway responses or webhook events.
type BillingPhase string

const (
	BillingIdle      BillingPhase = "idle"
	BillingPending   BillingPhase = "pending"
	BillingConfirmed BillingPhase = "confirmed"
)

// BillingState couples the phase with the pending change, if any.
type BillingState struct {
	Phase   BillingPhase       `json:"phase"`
	Pending *PendingPlanChange `json:"pending,omitempty"`
}
