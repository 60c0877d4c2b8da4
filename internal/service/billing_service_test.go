package service

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"testing"
	"time"

	"github.com/spec-kit/canine-care-service/internal/billing"
	"github.com/spec-kit/canine-care-service/internal/cache"
	"github.com/spec-kit/canine-care-service/internal/config"
	"github.com/spec-kit/canine-care-service/internal/domain"
	"github.com/spec-kit/canine-care-service/internal/repository"
	"github.com/spec-kit/canine-care-service/internal/repository/memory"
)

// fakeGateway scripts provider responses per test.
type fakeGateway struct {
	subscription   *billing.Subscription
	changeResult   *billing.Subscription
	checkout       *billing.CheckoutSession
	portal         *billing.PortalSession
	canceled       bool
	changedPriceID string
}

func (g *fakeGateway) CreateCustomer(ctx context.Context, email, name string) (string, error) {
	return "cus_test", nil
}

func (g *fakeGateway) CreateCheckoutSession(ctx context.Context, params billing.CheckoutParams) (*billing.CheckoutSession, error) {
	if g.checkout != nil {
		return g.checkout, nil
	}
	return &billing.CheckoutSession{ID: "cs_test", URL: "https://pay.example/cs_test"}, nil
}

func (g *fakeGateway) GetSubscription(ctx context.Context, subscriptionID string) (*billing.Subscription, error) {
	return g.subscription, nil
}

func (g *fakeGateway) ChangeSubscriptionPrice(ctx context.Context, subscriptionID, itemID, priceID string) (*billing.Subscription, error) {
	g.changedPriceID = priceID
	return g.changeResult, nil
}

func (g *fakeGateway) CancelSubscription(ctx context.Context, subscriptionID string, immediate bool) (*billing.Subscription, error) {
	g.canceled = true
	if g.subscription != nil {
		g.subscription.Status = domain.SubscriptionCanceled
		g.subscription.CancelAtPeriodEnd = !immediate
	}
	return g.subscription, nil
}

func (g *fakeGateway) CreatePortalSession(ctx context.Context, customerID, returnURL string) (*billing.PortalSession, error) {
	if g.portal != nil {
		return g.portal, nil
	}
	return &billing.PortalSession{URL: "https://portal.example/" + customerID}, nil
}

func (g *fakeGateway) EnsurePrice(ctx context.Context, plan domain.PlanKey) (string, error) {
	return "price_" + string(plan), nil
}

const billingTestSecret = "whsec_test"

func billingConfigForTest() config.BillingConfig {
	return config.BillingConfig{
		WebhookSecret: billingTestSecret,
		PlanPriceIDs: map[string]string{
			string(domain.PlanFoundation):    "price_foundation",
			string(domain.PlanTherapeutic):   "price_therapeutic",
			string(domain.PlanComprehensive): "price_comprehensive",
		},
		PlanAmountCents: map[string]int64{
			string(domain.PlanFoundation):    4900,
			string(domain.PlanTherapeutic):   9900,
			string(domain.PlanComprehensive): 14900,
		},
		SuccessURL:   "https://app.example/checkout/success",
		CancelURL:    "https://app.example/checkout/cancel",
		DashboardURL: "https://app.example/dashboard",
	}
}

func newBillingServiceForTest(gateway *fakeGateway) (*BillingService, repository.UserRepository, *cache.SnapshotCache) {
	cfg := billingConfigForTest()
	users := memory.NewUserRepository()
	snapshots := cache.NewMemorySnapshotCache()
	svc := NewBillingService(cfg, BillingDependencies{
		UserRepo:         users,
		PaymentEventRepo: memory.NewPaymentEventRepository(),
		Gateway:          gateway,
		Resolver:         billing.NewPlanResolver(cfg.PlanPriceIDs, cfg.PlanAmountCents),
		Snapshots:        snapshots,
	})
	return svc, users, snapshots
}

func subscribedUser(t *testing.T, users repository.UserRepository, tier domain.PlanKey) *domain.User {
	t.Helper()
	customerID := "cus_1"
	subscriptionID := "sub_1"
	user := &domain.User{
		Name:                 "Dana",
		Email:                "dana@example.com",
		StripeCustomerID:     &customerID,
		StripeSubscriptionID: &subscriptionID,
		Tier:                 tier,
		SubscriptionStatus:   domain.SubscriptionActive,
	}
	if err := users.Create(context.Background(), user); err != nil {
		t.Fatalf("create user: %v", err)
	}
	return user
}

func signWebhook(payload []byte, secret string) string {
	ts := time.Now().Unix()
	mac := hmac.New(sha256.New, []byte(secret))
	fmt.Fprintf(mac, "%d.%s", ts, payload)
	return fmt.Sprintf("t=%d,v1=%s", ts, hex.EncodeToString(mac.Sum(nil)))
}

func TestStartCheckoutOpensSessionForNewSubscriber(t *testing.T) {
	ctx := context.Background()
	gateway := &fakeGateway{}
	svc, users, _ := newBillingServiceForTest(gateway)

	user := &domain.User{Name: "Dana", Email: "dana@example.com"}
	if err := users.Create(ctx, user); err != nil {
		t.Fatalf("create user: %v", err)
	}

	outcome, err := svc.StartCheckout(ctx, user, domain.PlanTherapeutic)
	if err != nil {
		t.Fatalf("StartCheckout: %v", err)
	}
	if outcome.Kind != CheckoutRedirect || outcome.URL == "" {
		t.Fatalf("outcome = %+v, want redirect with URL", outcome)
	}
	if user.StripeCustomerID == nil {
		t.Error("customer should be provisioned on first checkout")
	}
}

func TestStartCheckoutRejectsUnknownPlan(t *testing.T) {
	svc, users, _ := newBillingServiceForTest(&fakeGateway{})
	user := subscribedUser(t, users, domain.PlanTherapeutic)
	if _, err := svc.StartCheckout(context.Background(), user, "platinum"); err == nil {
		t.Fatal("unknown plan should fail validation")
	}
}

func TestStartCheckoutCurrentPlanRedirectsToDashboard(t *testing.T) {
	svc, users, _ := newBillingServiceForTest(&fakeGateway{})
	user := subscribedUser(t, users, domain.PlanTherapeutic)

	outcome, err := svc.StartCheckout(context.Background(), user, domain.PlanTherapeutic)
	if err != nil {
		t.Fatalf("StartCheckout: %v", err)
	}
	if outcome.Kind != CheckoutRedirect {
		t.Errorf("kind = %q, want redirect", outcome.Kind)
	}
	if outcome.Message != "You are already subscribed to this plan." {
		t.Errorf("message = %q", outcome.Message)
	}
	if outcome.URL != "https://app.example/dashboard" {
		t.Errorf("url = %q, want the dashboard", outcome.URL)
	}
}

func TestDowngradeStaysPendingUntilProviderConfirms(t *testing.T) {
	ctx := context.Background()
	active := &billing.Subscription{
		ID:     "sub_1",
		Status: domain.SubscriptionActive,
		Items:  []billing.SubscriptionItem{{ID: "si_1", PriceID: "price_comprehensive"}},
	}
	gateway := &fakeGateway{subscription: active, changeResult: active}
	svc, users, snapshots := newBillingServiceForTest(gateway)
	user := subscribedUser(t, users, domain.PlanComprehensive)

	outcome, err := svc.StartCheckout(ctx, user, domain.PlanFoundation)
	if err != nil {
		t.Fatalf("StartCheckout: %v", err)
	}
	if outcome.Kind != CheckoutDowngrade {
		t.Errorf("kind = %q, want downgrade", outcome.Kind)
	}
	if outcome.Pending == nil || outcome.Pending.Plan != domain.PlanFoundation {
		t.Fatalf("pending = %+v, want the target plan", outcome.Pending)
	}
	if outcome.AppliedPlan != nil {
		t.Error("applied plan must stay unset while the provider confirms")
	}
	if gateway.changedPriceID != "price_foundation" {
		t.Errorf("changed price = %q", gateway.changedPriceID)
	}

	// The local tier does not move until the webhook lands.
	stored, _ := users.GetByID(ctx, user.ID)
	if stored.Tier != domain.PlanComprehensive {
		t.Errorf("tier = %q, want unchanged", stored.Tier)
	}
	if state := svc.State(ctx, stored); state.Phase != domain.BillingPending {
		t.Errorf("phase = %q, want pending", state.Phase)
	}
	if _, err := snapshots.GetPendingChange(ctx, user.ID); err != nil {
		t.Errorf("pending marker missing: %v", err)
	}
}

func TestUpgradeAppliesImmediatelyWhenProviderReturnsNothing(t *testing.T) {
	ctx := context.Background()
	gateway := &fakeGateway{
		subscription: &billing.Subscription{
			ID:     "sub_1",
			Status: domain.SubscriptionActive,
			Items:  []billing.SubscriptionItem{{ID: "si_1", PriceID: "price_foundation"}},
		},
		changeResult: nil,
	}
	svc, users, _ := newBillingServiceForTest(gateway)
	user := subscribedUser(t, users, domain.PlanFoundation)

	outcome, err := svc.StartCheckout(ctx, user, domain.PlanComprehensive)
	if err != nil {
		t.Fatalf("StartCheckout: %v", err)
	}
	if outcome.Kind != CheckoutUpgrade {
		t.Errorf("kind = %q, want upgrade", outcome.Kind)
	}
	if outcome.AppliedPlan == nil || *outcome.AppliedPlan != domain.PlanComprehensive {
		t.Fatalf("applied = %v, want comprehensive", outcome.AppliedPlan)
	}
	stored, _ := users.GetByID(ctx, user.ID)
	if stored.Tier != domain.PlanComprehensive {
		t.Errorf("tier = %q, want applied locally", stored.Tier)
	}
	if state := svc.State(ctx, stored); state.Phase != domain.BillingConfirmed {
		t.Errorf("phase = %q, want confirmed", state.Phase)
	}
}

func TestCancelSubscriptionReloadsFromProvider(t *testing.T) {
	ctx := context.Background()
	periodEnd := time.Now().Add(20 * 24 * time.Hour).UTC().Truncate(time.Second)
	gateway := &fakeGateway{
		subscription: &billing.Subscription{
			ID:               "sub_1",
			Status:           domain.SubscriptionActive,
			CurrentPeriodEnd: periodEnd,
			Items:            []billing.SubscriptionItem{{ID: "si_1", PriceID: "price_therapeutic"}},
		},
	}
	svc, users, snapshots := newBillingServiceForTest(gateway)
	user := subscribedUser(t, users, domain.PlanTherapeutic)
	_ = snapshots.PutPendingChange(ctx, user.ID, domain.PendingPlanChange{Plan: domain.PlanFoundation})

	updated, err := svc.CancelSubscription(ctx, user, false)
	if err != nil {
		t.Fatalf("CancelSubscription: %v", err)
	}
	if !gateway.canceled {
		t.Error("gateway cancellation was not requested")
	}
	// The whole billing block is rebuilt from the provider object.
	if updated.SubscriptionStatus != domain.SubscriptionCanceled {
		t.Errorf("status = %q, want canceled", updated.SubscriptionStatus)
	}
	if updated.CurrentPeriodEnd == nil || !updated.CurrentPeriodEnd.Equal(periodEnd) {
		t.Errorf("period end = %v, want %v", updated.CurrentPeriodEnd, periodEnd)
	}
	if _, err := snapshots.GetPendingChange(ctx, user.ID); err == nil {
		t.Error("pending change should be cleared on cancellation")
	}
}

func TestCancelSubscriptionWithoutSubscription(t *testing.T) {
	svc, users, _ := newBillingServiceForTest(&fakeGateway{})
	user := &domain.User{Name: "Dana", Email: "dana@example.com"}
	_ = users.Create(context.Background(), user)
	if _, err := svc.CancelSubscription(context.Background(), user, false); err == nil {
		t.Fatal("cancel without a subscription should fail")
	}
}

func TestHandleWebhookInvoicePaidActivatesPlan(t *testing.T) {
	ctx := context.Background()
	svc, users, snapshots := newBillingServiceForTest(&fakeGateway{})
	user := subscribedUser(t, users, domain.PlanFoundation)
	_ = snapshots.PutPendingChange(ctx, user.ID, domain.PendingPlanChange{Plan: domain.PlanTherapeutic})

	payload := []byte(`{
		"id": "evt_1",
		"type": "invoice.payment_succeeded",
		"data": {"object": {
			"id": "in_1",
			"customer": "cus_1",
			"subscription": "sub_1",
			"lines": {"data": [{"price": {"id": "price_therapeutic"}}]}
		}}
	}`)
	if err := svc.HandleWebhook(ctx, payload, signWebhook(payload, billingTestSecret)); err != nil {
		t.Fatalf("HandleWebhook: %v", err)
	}

	stored, _ := users.GetByID(ctx, user.ID)
	if stored.Tier != domain.PlanTherapeutic {
		t.Errorf("tier = %q, want resolved from the invoice price", stored.Tier)
	}
	if stored.SubscriptionStatus != domain.SubscriptionActive {
		t.Errorf("status = %q, want active", stored.SubscriptionStatus)
	}
	if _, err := snapshots.GetPendingChange(ctx, user.ID); err == nil {
		t.Error("payment confirmation should clear the pending change")
	}
}

func TestHandleWebhookRejectsBadSignature(t *testing.T) {
	svc, _, _ := newBillingServiceForTest(&fakeGateway{})
	payload := []byte(`{"id":"evt_1","type":"invoice.payment_succeeded","data":{"object":{}}}`)
	err := svc.HandleWebhook(context.Background(), payload, signWebhook(payload, "whsec_other"))
	if err == nil {
		t.Fatal("mismatched signature should be rejected")
	}
}

func TestHandleWebhookSubscriptionDeletedClearsBilling(t *testing.T) {
	ctx := context.Background()
	svc, users, _ := newBillingServiceForTest(&fakeGateway{})
	user := subscribedUser(t, users, domain.PlanComprehensive)

	payload := []byte(`{
		"id": "evt_2",
		"type": "customer.subscription.deleted",
		"data": {"object": {"id": "sub_1", "customer": "cus_1", "status": "canceled"}}
	}`)
	if err := svc.HandleWebhook(ctx, payload, signWebhook(payload, billingTestSecret)); err != nil {
		t.Fatalf("HandleWebhook: %v", err)
	}

	stored, _ := users.GetByID(ctx, user.ID)
	if stored.StripeSubscriptionID != nil || stored.Tier != "" {
		t.Errorf("billing fields should be cleared, got %+v", stored)
	}
	if stored.SubscriptionStatus != domain.SubscriptionCanceled {
		t.Errorf("status = %q, want canceled", stored.SubscriptionStatus)
	}
}

func TestHandleWebhookIgnoresUnknownCustomerAndType(t *testing.T) {
	svc, _, _ := newBillingServiceForTest(&fakeGateway{})

	unknownCustomer := []byte(`{
		"id": "evt_3",
		"type": "invoice.payment_succeeded",
		"data": {"object": {"id": "in_9", "customer": "cus_missing"}}
	}`)
	if err := svc.HandleWebhook(context.Background(), unknownCustomer, signWebhook(unknownCustomer, billingTestSecret)); err != nil {
		t.Fatalf("unknown customer should be acknowledged: %v", err)
	}

	unknownType := []byte(`{"id":"evt_4","type":"charge.refunded","data":{"object":{}}}`)
	if err := svc.HandleWebhook(context.Background(), unknownType, signWebhook(unknownType, billingTestSecret)); err != nil {
		t.Fatalf("unhandled types should be acknowledged: %v", err)
	}
}
