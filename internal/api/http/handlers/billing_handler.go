package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/canine-care-service/internal/api/dto"
	"github.com/spec-kit/canine-care-service/internal/domain"
	"github.com/spec-kit/canine-care-service/internal/service"
)

// BillingHandler exposes the subscription and provider webhook endpoints.
type BillingHandler struct {
	billing *service.BillingService
}

// NewBillingHandler constructs handler.
func NewBillingHandler(billingService *service.BillingService) *BillingHandler {
	return &BillingHandler{billing: billingService}
}

// Subscription handles GET /stripe/subscription.
func (h *BillingHandler) Subscription(c *fiber.Ctx) error {
	user, err := requireUserPrincipal(c)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.SubscriptionResponse{
		Tier:             user.Tier,
		Status:           user.SubscriptionStatus,
		CurrentPeriodEnd: user.CurrentPeriodEnd,
		OnTrial:          user.OnTrial,
		PaymentMethod:    user.PaymentMethod,
		Billing:          h.billing.State(c.Context(), user),
	}})
}

// Plans handles GET /stripe/plans: every tier plus its affordance for the
// current user.
func (h *BillingHandler) Plans(c *fiber.Ctx) error {
	user, err := requireUserPrincipal(c)
	if err != nil {
		return err
	}
	plans := domain.Plans()
	affordances := h.billing.PlanOptions(user)
	items := make([]dto.PlanResponse, 0, len(plans))
	for i, plan := range plans {
		items = append(items, dto.PlanResponse{
			Key:         plan.Key,
			Name:        plan.Name,
			AmountCents: plan.AmountCents,
			Features:    plan.Features,
			Affordance:  affordances[i],
		})
	}
	return c.JSON(fiber.Map{"data": items})
}

// DowngradePreview handles GET /stripe/downgrade-preview?plan=.
func (h *BillingHandler) DowngradePreview(c *fiber.Ctx) error {
	user, err := requireUserPrincipal(c)
	if err != nil {
		return err
	}
	target := domain.PlanKey(c.Query("plan"))
	losses, gains, err := h.billing.DowngradePreview(user, target)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.DowngradePreviewResponse{Losses: losses, Gains: gains}})
}

// CreateCheckoutSession handles POST /stripe/create-checkout-session.
func (h *BillingHandler) CreateCheckoutSession(c *fiber.Ctx) error {
	user, err := requireUserPrincipal(c)
	if err != nil {
		return err
	}
	var req dto.CheckoutRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	if req.Plan == "" {
		req.Plan = c.Query("plan")
	}
	if req.Plan == "" {
		return fiber.NewError(http.StatusBadRequest, "plan required")
	}

	outcome, err := h.billing.StartCheckout(c.Context(), user, domain.PlanKey(req.Plan))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.CheckoutOutcomeResponse{
		Kind:        string(outcome.Kind),
		SessionID:   outcome.SessionID,
		URL:         outcome.URL,
		Message:     outcome.Message,
		Pending:     outcome.Pending,
		AppliedPlan: outcome.AppliedPlan,
	}})
}

// CreatePortalSession handles POST /stripe/create-portal-session.
func (h *BillingHandler) CreatePortalSession(c *fiber.Ctx) error {
	user, err := requireUserPrincipal(c)
	if err != nil {
		return err
	}
	url, err := h.billing.CreatePortalSession(c.Context(), user)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"url": url}})
}

// CancelSubscription handles POST /stripe/cancel-subscription.
func (h *BillingHandler) CancelSubscription(c *fiber.Ctx) error {
	user, err := requireUserPrincipal(c)
	if err != nil {
		return err
	}
	var req dto.CancelSubscriptionRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	updated, err := h.billing.CancelSubscription(c.Context(), user, req.Immediate)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.SubscriptionResponse{
		Tier:             updated.Tier,
		Status:           updated.SubscriptionStatus,
		CurrentPeriodEnd: updated.CurrentPeriodEnd,
		OnTrial:          updated.OnTrial,
		PaymentMethod:    updated.PaymentMethod,
		Billing:          h.billing.State(c.Context(), updated),
	}})
}

// Webhook handles POST /stripe/webhook. The raw body is verified against
// the Stripe-Signature header before any processing.
func (h *BillingHandler) Webhook(c *fiber.Ctx) error {
	if err := h.billing.HandleWebhook(c.Context(), c.Body(), c.Get("Stripe-Signature")); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"received": true}})
}
