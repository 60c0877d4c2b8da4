package domain

import "time"

// UserStatus represents lifecycle states for an end-user.
type UserStatus string

const (
	UserStatusActive    UserStatus = "ACTIVE"
	UserStatusSuspended UserStatus = "SUSPENDED"
)

// PaymentMethod summarizes the card on file. The full instrument lives with
// the payment provider; only display data is stored locally.
type PaymentMethod struct {
	Brand    string `json:"brand"`
	Last4    string `json:"last4"`
	ExpMonth int    `json:"exp_month"`
	ExpYear  int    `json:"exp_year"`
}

// NotificationPreferences controls which notifications a user receives.
type NotificationPreferences struct {
	EmailUpdates      bool `json:"email_updates"`
	ProtocolReminders bool `json:"protocol_reminders"`
	MessageAlerts     bool `json:"message_alerts"`
}

// User is the domain model for pet owners.
type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	Status       UserStatus

	// Billing provider references; tier flips are confirmed by webhook.
	StripeCustomerID     *string
	StripeSubscriptionID *string
	StripePriceID        *string
	Tier                 PlanKey
	SubscriptionStatus   SubscriptionStatus
	CurrentPeriodEnd     *time.Time
	OnTrial              bool

	PaymentMethod *PaymentMethod
	Preferences   NotificationPreferences

	CreatedAt time.Time
	UpdatedAt time.Time
}

// HasActiveSubscription reports whether the user currently has entitlements.
func (u *User) HasActiveSubscription() bool {
	return u.SubscriptionStatus.IsActive()
}
