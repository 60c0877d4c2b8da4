package dto

import (
	"time"

	"github.com/spec-kit/canine-care-service/internal/domain"
)

// ProfileUpdateRequest replaces the user's profile fields.
type ProfileUpdateRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// ProfileResponse is the /me view of a user.
type ProfileResponse struct {
	ID                 string                         `json:"id"`
	Name               string                         `json:"name"`
	Email              string                         `json:"email"`
	Status             domain.UserStatus              `json:"status"`
	Tier               domain.PlanKey                 `json:"tier"`
	SubscriptionStatus domain.SubscriptionStatus      `json:"subscription_status"`
	CurrentPeriodEnd   *time.Time                     `json:"current_period_end"`
	OnTrial            bool                           `json:"on_trial"`
	PaymentMethod      *domain.PaymentMethod          `json:"payment_method"`
	Preferences        domain.NotificationPreferences `json:"preferences"`
	CreatedAt          time.Time                      `json:"created_at"`
}
