package billing

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ErrBadSignature marks a webhook whose signature does not verify.
var ErrBadSignature = errors.New("billing: webhook signature mismatch")

// Webhook event types the service reacts to.
const (
	EventInvoicePaymentSucceeded = "invoice.payment_succeeded"
	EventInvoicePaymentFailed    = "invoice.payment_failed"
	EventSubscriptionCreated     = "customer.subscription.created"
	EventSubscriptionUpdated     = "customer.subscription.updated"
	EventSubscriptionDeleted     = "customer.subscription.deleted"
)

// WebhookEvent is the decoded envelope of a provider callback.
type WebhookEvent struct {
	ID   string `json:"id"`
	Type string `json:"type"`
	Data struct {
		Object json.RawMessage `json:"object"`
	} `json:"data"`
}

// Subscription decodes the event payload as a subscription object.
func (e *WebhookEvent) Subscription() (*Subscription, error) {
	var raw stripeSubscription
	if err := json.Unmarshal(e.Data.Object, &raw); err != nil {
		return nil, fmt.Errorf("decode subscription payload: %w", err)
	}
	return raw.toDomain(), nil
}

// Invoice is the subset of the invoice object the service reads.
type Invoice struct {
	ID           string `json:"id"`
	Customer     string `json:"customer"`
	Subscription string `json:"subscription"`
	Lines        struct {
		Data []struct {
			Price struct {
				ID         string `json:"id"`
				UnitAmount int64  `json:"unit_amount"`
				Nickname   string `json:"nickname"`
			} `json:"price"`
			Description string `json:"description"`
		} `json:"data"`
	} `json:"lines"`
}

// Invoice decodes the event payload as an invoice object.
func (e *WebhookEvent) Invoice() (*Invoice, error) {
	var invoice Invoice
	if err := json.Unmarshal(e.Data.Object, &invoice); err != nil {
		return nil, fmt.Errorf("decode invoice payload: %w", err)
	}
	return &invoice, nil
}

// PricedItem converts the invoice's first line into a subscription item for
// plan resolution.
func (inv *Invoice) PricedItem() *SubscriptionItem {
	if inv == nil || len(inv.Lines.Data) == 0 {
		return nil
	}
	line := inv.Lines.Data[0]
	return &SubscriptionItem{
		PriceID:     line.Price.ID,
		AmountCents: line.Price.UnitAmount,
		Nickname:    line.Price.Nickname,
		ProductName: line.Description,
	}
}

// ParseWebhook verifies the signature header and decodes the event. An empty
// secret skips verification; that path exists for local development only.
func ParseWebhook(payload []byte, signatureHeader, secret string) (*WebhookEvent, error) {
	if secret != "" {
		if err := verifySignature(payload, signatureHeader, secret, time.Now()); err != nil {
			return nil, err
		}
	}
	var event WebhookEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		return nil, fmt.Errorf("decode webhook: %w", err)
	}
	return &event, nil
}

const signatureTolerance = 5 * time.Minute

// verifySignature checks the "t=...,v1=..." scheme: HMAC-SHA256 of
// "<timestamp>.<payload>" keyed by the endpoint secret.
func verifySignature(payload []byte, header, secret string, now time.Time) error {
	var timestamp int64
	var signatures []string
	for _, part := range strings.Split(header, ",") {
		key, value, found := strings.Cut(strings.TrimSpace(part), "=")
		if !found {
			continue
		}
		switch key {
		case "t":
			parsed, err := strconv.ParseInt(value, 10, 64)
			if err != nil {
				return ErrBadSignature
			}
			timestamp = parsed
		case "v1":
			signatures = append(signatures, value)
		}
	}
	if timestamp == 0 || len(signatures) == 0 {
		return ErrBadSignature
	}
	if now.Sub(time.Unix(timestamp, 0)) > signatureTolerance {
		return ErrBadSignature
	}

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(strconv.FormatInt(timestamp, 10)))
	mac.Write([]byte("."))
	mac.Write(payload)
	expected := hex.EncodeToString(mac.Sum(nil))

	for _, signature := range signatures {
		if hmac.Equal([]byte(signature), []byte(expected)) {
			return nil
		}
	}
	return ErrBadSignature
}
