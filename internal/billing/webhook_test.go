package billing

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"testing"
	"time"
)

func signPayload(t *testing.T, payload []byte, secret string, ts time.Time) string {
	t.Helper()
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(strconv.FormatInt(ts.Unix(), 10)))
	mac.Write([]byte("."))
	mac.Write(payload)
	return fmt.Sprintf("t=%d,v1=%s", ts.Unix(), hex.EncodeToString(mac.Sum(nil)))
}

func TestParseWebhookVerifiesSignature(t *testing.T) {
	payload := []byte(`{"id":"evt_1","type":"invoice.payment_succeeded","data":{"object":{"id":"in_1"}}}`)
	const secret = "whsec_test"

	event, err := ParseWebhook(payload, signPayload(t, payload, secret, time.Now()), secret)
	if err != nil {
		t.Fatalf("ParseWebhook: %v", err)
	}
	if event.ID != "evt_1" || event.Type != EventInvoicePaymentSucceeded {
		t.Fatalf("event = %+v", event)
	}
}

func TestParseWebhookRejectsBadSignature(t *testing.T) {
	payload := []byte(`{"id":"evt_1","type":"invoice.payment_succeeded"}`)
	const secret = "whsec_test"

	tests := []struct {
		name   string
		header string
	}{
		{"wrong secret", signPayload(t, payload, "whsec_other", time.Now())},
		{"tampered payload", signPayload(t, []byte(`{"id":"evt_2"}`), secret, time.Now())},
		{"stale timestamp", signPayload(t, payload, secret, time.Now().Add(-10*time.Minute))},
		{"missing parts", "t=123"},
		{"empty header", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseWebhook(payload, tt.header, secret); !errors.Is(err, ErrBadSignature) {
				t.Fatalf("err = %v, want ErrBadSignature", err)
			}
		})
	}
}

func TestParseWebhookSkipsVerificationWithoutSecret(t *testing.T) {
	payload := []byte(`{"id":"evt_1","type":"customer.subscription.updated"}`)
	event, err := ParseWebhook(payload, "", "")
	if err != nil {
		t.Fatalf("ParseWebhook: %v", err)
	}
	if event.Type != EventSubscriptionUpdated {
		t.Fatalf("type = %q", event.Type)
	}
}

func TestInvoicePricedItem(t *testing.T) {
	payload := []byte(`{"id":"evt_1","type":"invoice.payment_succeeded","data":{"object":{
		"id":"in_1","customer":"cus_1","subscription":"sub_1",
		"lines":{"data":[{"price":{"id":"price_1","unit_amount":6900,"nickname":"therapeutic"},"description":"Therapeutic Plan"}]}
	}}}`)
	event, err := ParseWebhook(payload, "", "")
	if err != nil {
		t.Fatalf("ParseWebhook: %v", err)
	}
	invoice, err := event.Invoice()
	if err != nil {
		t.Fatalf("Invoice: %v", err)
	}
	item := invoice.PricedItem()
	if item == nil || item.PriceID != "price_1" || item.AmountCents != 6900 || item.Nickname != "therapeutic" {
		t.Fatalf("priced item = %+v", item)
	}

	var empty Invoice
	if empty.PricedItem() != nil {
		t.Fatal("empty invoice should have no priced item")
	}
}
