package paymongo

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ymadz/rallio-sub004/internal/config"
	"github.com/ymadz/rallio-sub004/internal/queue"
)

func testConfig(baseURL string) config.PayMongoConfig {
	return config.PayMongoConfig{
		BaseURL:       baseURL,
		SuccessURL:    "https://rallio.test/payments/success",
		FailedURL:     "https://rallio.test/payments/failed",
		SecretKey:     "sk_test_secret",
		WebhookSecret: "whsk_test_secret",
	}
}

func TestCreateCheckout(t *testing.T) {
	var gotAuth string
	var gotBody sourceEnvelope
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/sources" {
			t.Errorf("request = %s %s, want POST /sources", r.Method, r.URL.Path)
		}
		gotAuth = r.Header.Get("Authorization")
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("decode request: %v", err)
		}

		var reply sourceEnvelope
		reply.Data.ID = "src_123"
		reply.Data.Attributes.Redirect.CheckoutURL = "https://pm.link/checkout/abc"
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(reply)
	}))
	defer server.Close()

	client := NewClient(testConfig(server.URL))
	session, err := client.CreateCheckout(context.Background(), queue.CheckoutRequest{
		Amount:      5000,
		Description: "Court fees",
		ReferenceID: "participant-1",
	})
	if err != nil {
		t.Fatalf("create checkout: %v", err)
	}
	if session.SourceID != "src_123" {
		t.Errorf("source id = %q, want src_123", session.SourceID)
	}
	if session.CheckoutURL != "https://pm.link/checkout/abc" {
		t.Errorf("checkout url = %q", session.CheckoutURL)
	}

	wantAuth := "Basic " + base64.StdEncoding.EncodeToString([]byte("sk_test_secret:"))
	if gotAuth != wantAuth {
		t.Errorf("auth header = %q, want %q", gotAuth, wantAuth)
	}
	attrs := gotBody.Data.Attributes
	if attrs.Amount != 5000 || attrs.Type != "gcash" || attrs.Currency != "PHP" {
		t.Errorf("attributes = %+v", attrs)
	}
	if attrs.Redirect.Success != "https://rallio.test/payments/success" {
		t.Errorf("success redirect = %q", attrs.Redirect.Success)
	}
	if attrs.Metadata["reference_id"] != "participant-1" {
		t.Errorf("metadata = %v", attrs.Metadata)
	}
}

func TestCreateCheckout_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusPaymentRequired)
		fmt.Fprint(w, `{"errors":[{"code":"insufficient_funds","detail":"The account has insufficient funds."}]}`)
	}))
	defer server.Close()

	client := NewClient(testConfig(server.URL))
	_, err := client.CreateCheckout(context.Background(), queue.CheckoutRequest{Amount: 5000})
	if err == nil {
		t.Fatal("expected error")
	}
	if got := err.Error(); got != "paymongo POST /sources: The account has insufficient funds. (insufficient_funds)" {
		t.Errorf("err = %q", got)
	}
}

func TestCreateCheckout_NotConfigured(t *testing.T) {
	cfg := testConfig("https://api.paymongo.com/v1")
	cfg.SecretKey = ""
	client := NewClient(cfg)
	if _, err := client.CreateCheckout(context.Background(), queue.CheckoutRequest{Amount: 100}); !errors.Is(err, ErrNotConfigured) {
		t.Errorf("err = %v, want ErrNotConfigured", err)
	}
}

func TestGetSource(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/sources/src_123" {
			t.Errorf("path = %s, want /sources/src_123", r.URL.Path)
		}
		var reply sourceEnvelope
		reply.Data.ID = "src_123"
		reply.Data.Attributes.Status = "chargeable"
		_ = json.NewEncoder(w).Encode(reply)
	}))
	defer server.Close()

	client := NewClient(testConfig(server.URL))
	status, err := client.GetSource(context.Background(), "src_123")
	if err != nil {
		t.Fatalf("get source: %v", err)
	}
	if status != "chargeable" {
		t.Errorf("status = %q, want chargeable", status)
	}
}

func signPayload(secret, timestamp string, payload []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(timestamp))
	mac.Write([]byte("."))
	mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil))
}

func TestVerifySignature(t *testing.T) {
	client := NewClient(testConfig("https://api.paymongo.com/v1"))
	payload := []byte(`{"data":{}}`)
	sig := signPayload("whsk_test_secret", "1717243800", payload)

	cases := []struct {
		name   string
		header string
		ok     bool
	}{
		{"live signature", "t=1717243800,li=" + sig, true},
		{"test signature", "t=1717243800,te=" + sig, true},
		{"live wins over bad test", "t=1717243800,te=deadbeef,li=" + sig, true},
		{"wrong signature", "t=1717243800,li=deadbeef", false},
		{"wrong timestamp", "t=1717243801,li=" + sig, false},
		{"missing header", "", false},
		{"malformed header", "t=1717243800", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := client.VerifySignature(payload, tc.header)
			if tc.ok && err != nil {
				t.Errorf("verify: %v", err)
			}
			if !tc.ok && !errors.Is(err, ErrBadSignature) {
				t.Errorf("err = %v, want ErrBadSignature", err)
			}
		})
	}

	// Tampered payload fails even with a once-valid header.
	if err := client.VerifySignature([]byte(`{"data":{"x":1}}`), "t=1717243800,li="+sig); !errors.Is(err, ErrBadSignature) {
		t.Errorf("tampered err = %v, want ErrBadSignature", err)
	}
}

func TestParseWebhook(t *testing.T) {
	sourceEvent := []byte(`{
		"data": {
			"attributes": {
				"type": "source.chargeable",
				"data": {
					"id": "src_123",
					"attributes": {"status": "chargeable"}
				}
			}
		}
	}`)
	event, err := ParseWebhook(sourceEvent)
	if err != nil {
		t.Fatalf("parse source event: %v", err)
	}
	if event.Type != "source.chargeable" || event.SourceID != "src_123" || event.Status != "chargeable" {
		t.Errorf("event = %+v", event)
	}

	paymentEvent := []byte(`{
		"data": {
			"attributes": {
				"type": "payment.paid",
				"data": {
					"id": "pay_456",
					"attributes": {
						"status": "paid",
						"source": {"id": "src_123"}
					}
				}
			}
		}
	}`)
	event, err = ParseWebhook(paymentEvent)
	if err != nil {
		t.Fatalf("parse payment event: %v", err)
	}
	if event.Type != "payment.paid" || event.SourceID != "src_123" || event.Status != "paid" {
		t.Errorf("event = %+v", event)
	}

	if _, err := ParseWebhook([]byte(`{"data":{}}`)); err == nil {
		t.Error("empty event should fail")
	}
	if _, err := ParseWebhook([]byte(`not json`)); err == nil {
		t.Error("malformed payload should fail")
	}
}
