package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/canine-care-service/internal/api/dto"
	"github.com/spec-kit/canine-care-service/internal/domain"
	"github.com/spec-kit/canine-care-service/internal/service"
)

// AccountHandler exposes the /me profile endpoints.
type AccountHandler struct {
	accounts *service.AccountService
}

// NewAccountHandler constructs handler.
func NewAccountHandler(accountService *service.AccountService) *AccountHandler {
	return &AccountHandler{accounts: accountService}
}

// Me handles GET /me.
func (h *AccountHandler) Me(c *fiber.Ctx) error {
	user, err := requireUserPrincipal(c)
	if err != nil {
		return err
	}
	current, err := h.accounts.Me(c.Context(), user.ID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": profileResponse(current)})
}

// UpdateProfile handles POST /me.
func (h *AccountHandler) UpdateProfile(c *fiber.Ctx) error {
	user, err := requireUserPrincipal(c)
	if err != nil {
		return err
	}
	var req dto.ProfileUpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	if req.Name == "" || req.Email == "" {
		return fiber.NewError(http.StatusBadRequest, "name and email required")
	}
	updated, err := h.accounts.UpdateProfile(c.Context(), user.ID, service.ProfileInput{
		Name:  req.Name,
		Email: req.Email,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": profileResponse(updated)})
}

// UpdatePreferences handles PUT /me/preferences. The stored preference set
// is replaced wholesale with the request body.
func (h *AccountHandler) UpdatePreferences(c *fiber.Ctx) error {
	user, err := requireUserPrincipal(c)
	if err != nil {
		return err
	}
	var prefs domain.NotificationPreferences
	if err := c.BodyParser(&prefs); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	updated, err := h.accounts.UpdatePreferences(c.Context(), user.ID, prefs)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": profileResponse(updated)})
}

// UpdatePaymentMethod handles PUT /me/payment-method.
func (h *AccountHandler) UpdatePaymentMethod(c *fiber.Ctx) error {
	user, err := requireUserPrincipal(c)
	if err != nil {
		return err
	}
	var method domain.PaymentMethod
	if err := c.BodyParser(&method); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	updated, err := h.accounts.UpdatePaymentMethod(c.Context(), user.ID, &method)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": profileResponse(updated)})
}

func profileResponse(user *domain.User) dto.ProfileResponse {
	return dto.ProfileResponse{
		ID:                 user.ID,
		Name:               user.Name,
		Email:              user.Email,
		Status:             user.Status,
		Tier:               user.Tier,
		SubscriptionStatus: user.SubscriptionStatus,
		CurrentPeriodEnd:   user.CurrentPeriodEnd,
		OnTrial:            user.OnTrial,
		PaymentMethod:      user.PaymentMethod,
		Preferences:        user.Preferences,
		CreatedAt:          user.CreatedAt,
	}
}
