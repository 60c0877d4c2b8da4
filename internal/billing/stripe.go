package billing

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/spec-kit/canine-care-service/internal/config"
	"github.com/spec-kit/canine-care-service/internal/domain"
)

// StripeClient talks to the Stripe REST API with form-encoded requests.
type StripeClient struct {
	apiKey     string
	baseURL    string
	currency   string
	cfg        config.BillingConfig
	httpClient *http.Client
}

// NewStripeClient builds a gateway from billing configuration.
func NewStripeClient(cfg config.BillingConfig) *StripeClient {
	return &StripeClient{
		apiKey:   strings.TrimSpace(cfg.APIKey),
		baseURL:  strings.TrimRight(strings.TrimSpace(cfg.APIBase), "/"),
		currency: cfg.Currency,
		cfg:      cfg,
		httpClient: &http.Client{
			Timeout: cfg.RequestTimeout(),
		},
	}
}

// IsConfigured reports whether an API key is present.
func (c *StripeClient) IsConfigured() bool {
	return c != nil && c.apiKey != ""
}

func (c *StripeClient) do(ctx context.Context, method, path string, form url.Values, out any) error {
	if !c.IsConfigured() {
		return ErrNotConfigured
	}

	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var apiErr struct {
			Error struct {
				Message string `json:"message"`
				Type    string `json:"type"`
			} `json:"error"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&apiErr)
		if apiErr.Error.Message != "" {
			return fmt.Errorf("%w: status=%d %s", ErrUpstream, resp.StatusCode, apiErr.Error.Message)
		}
		return fmt.Errorf("%w: status=%d", ErrUpstream, resp.StatusCode)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: invalid json: %v", ErrUpstream, err)
	}
	return nil
}

type stripeSubscription struct {
	ID                string `json:"id"`
	Customer          string `json:"customer"`
	Status            string `json:"status"`
	CurrentPeriodEnd  int64  `json:"current_period_end"`
	CancelAtPeriodEnd bool   `json:"cancel_at_period_end"`
	Items             struct {
		Data []struct {
			ID    string `json:"id"`
			Price struct {
				ID         string `json:"id"`
				UnitAmount int64  `json:"unit_amount"`
				Nickname   string `json:"nickname"`
				Product    struct {
					Name string `json:"name"`
				} `json:"product"`
			} `json:"price"`
		} `json:"data"`
	} `json:"items"`
}

func (s stripeSubscription) toDomain() *Subscription {
	sub := &Subscription{
		ID:                s.ID,
		CustomerID:        s.Customer,
		Status:            domain.SubscriptionStatus(s.Status),
		CancelAtPeriodEnd: s.CancelAtPeriodEnd,
	}
	if s.CurrentPeriodEnd > 0 {
		sub.CurrentPeriodEnd = time.Unix(s.CurrentPeriodEnd, 0).UTC()
	}
	for _, item := range s.Items.Data {
		sub.Items = append(sub.Items, SubscriptionItem{
			ID:          item.ID,
			PriceID:     item.Price.ID,
			AmountCents: item.Price.UnitAmount,
			Nickname:    item.Price.Nickname,
			ProductName: item.Price.Product.Name,
		})
	}
	return sub
}

// CreateCustomer registers the user with the provider and returns the
// customer ID.
func (c *StripeClient) CreateCustomer(ctx context.Context, email, name string) (string, error) {
	form := url.Values{}
	form.Set("email", email)
	form.Set("name", name)

	var out struct {
		ID string `json:"id"`
	}
	if err := c.do(ctx, http.MethodPost, "/customers", form, &out); err != nil {
		return "", err
	}
	return out.ID, nil
}

// CreateCheckoutSession opens a hosted subscription checkout.
func (c *StripeClient) CreateCheckoutSession(ctx context.Context, params CheckoutParams) (*CheckoutSession, error) {
	form := url.Values{}
	form.Set("mode", "subscription")
	form.Set("line_items[0][price]", params.PriceID)
	form.Set("line_items[0][quantity]", "1")
	form.Set("success_url", params.SuccessURL)
	form.Set("cancel_url", params.CancelURL)
	if params.CustomerID != "" {
		form.Set("customer", params.CustomerID)
	} else if params.CustomerEmail != "" {
		form.Set("customer_email", params.CustomerEmail)
	}

	var out struct {
		ID  string `json:"id"`
		URL string `json:"url"`
	}
	if err := c.do(ctx, http.MethodPost, "/checkout/sessions", form, &out); err != nil {
		return nil, err
	}
	return &CheckoutSession{ID: out.ID, URL: out.URL}, nil
}

// GetSubscription fetches the subscription with its expanded price data.
func (c *StripeClient) GetSubscription(ctx context.Context, subscriptionID string) (*Subscription, error) {
	path := "/subscriptions/" + subscriptionID + "?expand[]=items.data.price.product"
	var out stripeSubscription
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out.toDomain(), nil
}

// ChangeSubscriptionPrice swaps the priced item in place, prorating the
// difference on the next invoice.
func (c *StripeClient) ChangeSubscriptionPrice(ctx context.Context, subscriptionID, itemID, priceID string) (*Subscription, error) {
	form := url.Values{}
	form.Set("items[0][id]", itemID)
	form.Set("items[0][price]", priceID)
	form.Set("proration_behavior", "create_prorations")

	var out stripeSubscription
	if err := c.do(ctx, http.MethodPost, "/subscriptions/"+subscriptionID, form, &out); err != nil {
		return nil, err
	}
	return out.toDomain(), nil
}

// CancelSubscription either deletes the subscription now or flags it to lapse
// at period end.
func (c *StripeClient) CancelSubscription(ctx context.Context, subscriptionID string, immediate bool) (*Subscription, error) {
	var out stripeSubscription
	if immediate {
		if err := c.do(ctx, http.MethodDelete, "/subscriptions/"+subscriptionID, nil, &out); err != nil {
			return nil, err
		}
		return out.toDomain(), nil
	}

	form := url.Values{}
	form.Set("cancel_at_period_end", "true")
	if err := c.do(ctx, http.MethodPost, "/subscriptions/"+subscriptionID, form, &out); err != nil {
		return nil, err
	}
	return out.toDomain(), nil
}

// CreatePortalSession opens the provider's self-service billing portal.
func (c *StripeClient) CreatePortalSession(ctx context.Context, customerID, returnURL string) (*PortalSession, error) {
	form := url.Values{}
	form.Set("customer", customerID)
	form.Set("return_url", returnURL)

	var out struct {
		URL string `json:"url"`
	}
	if err := c.do(ctx, http.MethodPost, "/billing_portal/sessions", form, &out); err != nil {
		return nil, err
	}
	return &PortalSession{URL: out.URL}, nil
}

// EnsurePrice returns the configured price ID for a plan, creating a monthly
// recurring price from the configured amount when none is set.
func (c *StripeClient) EnsurePrice(ctx context.Context, plan domain.PlanKey) (string, error) {
	if priceID := c.cfg.PlanPriceIDs[string(plan)]; priceID != "" {
		return priceID, nil
	}

	amount, ok := c.cfg.PlanAmountCents[string(plan)]
	if !ok {
		return "", fmt.Errorf("%w: no amount configured for plan %s", ErrUpstream, plan)
	}

	form := url.Values{}
	form.Set("unit_amount", strconv.FormatInt(amount, 10))
	form.Set("currency", c.currency)
	form.Set("recurring[interval]", "month")
	form.Set("product_data[name]", titleCase(string(plan))+" Plan")
	form.Set("nickname", string(plan))

	var out struct {
		ID string `json:"id"`
	}
	if err := c.do(ctx, http.MethodPost, "/prices", form, &out); err != nil {
		return "", err
	}
	return out.ID, nil
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
