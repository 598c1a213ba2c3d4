// Package paymongo is a minimal PayMongo API client covering e-wallet
// source checkouts and webhook verification.
package paymongo

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/ymadz/rallio-sub004/internal/config"
	"github.com/ymadz/rallio-sub004/internal/queue"
)

// ErrNotConfigured marks calls made without a secret key.
var ErrNotConfigured = errors.New("paymongo secret key not configured")

// ErrBadSignature marks webhook payloads whose signature does not verify.
var ErrBadSignature = errors.New("paymongo webhook signature mismatch")

// Client talks to the PayMongo REST API using the secret key over basic auth.
type Client struct {
	baseURL       string
	secretKey     string
	webhookSecret string
	successURL    string
	failedURL     string
	sourceType    string
	hc            *http.Client
}

var _ queue.CheckoutGateway = (*Client)(nil)

// NewClient builds a client from configuration. The zero-value http.Client
// has no timeout, so one is always set here.
func NewClient(cfg config.PayMongoConfig) *Client {
	return &Client{
		baseURL:       strings.TrimRight(cfg.BaseURL, "/"),
		secretKey:     cfg.SecretKey,
		webhookSecret: cfg.WebhookSecret,
		successURL:    cfg.SuccessURL,
		failedURL:     cfg.FailedURL,
		sourceType:    "gcash",
		hc:            &http.Client{Timeout: 15 * time.Second},
	}
}

type sourceAttributes struct {
	Amount   int64  `json:"amount"`
	Type     string `json:"type"`
	Currency string `json:"currency"`
	Redirect struct {
		Success     string `json:"success"`
		Failed      string `json:"failed"`
		CheckoutURL string `json:"checkout_url,omitempty"`
	} `json:"redirect"`
	Status      string            `json:"status,omitempty"`
	Description string            `json:"description,omitempty"`
	Metadata    map[string]string `json:"metadata,omitempty"`
}

type sourceEnvelope struct {
	Data struct {
		ID         string           `json:"id"`
		Attributes sourceAttributes `json:"attributes"`
	} `json:"data"`
}

type apiError struct {
	Errors []struct {
		Code   string `json:"code"`
		Detail string `json:"detail"`
	} `json:"errors"`
}

// CreateCheckout creates an e-wallet source and returns its hosted checkout
// URL. The amount is in centavos, currency is always PHP.
func (c *Client) CreateCheckout(ctx context.Context, req queue.CheckoutRequest) (queue.CheckoutSession, error) {
	if c.secretKey == "" {
		return queue.CheckoutSession{}, ErrNotConfigured
	}

	var payload sourceEnvelope
	payload.Data.Attributes = sourceAttributes{
		Amount:      req.Amount,
		Type:        c.sourceType,
		Currency:    "PHP",
		Description: req.Description,
		Metadata:    map[string]string{"reference_id": req.ReferenceID},
	}
	payload.Data.Attributes.Redirect.Success = c.successURL
	payload.Data.Attributes.Redirect.Failed = c.failedURL

	var reply sourceEnvelope
	if err := c.do(ctx, http.MethodPost, "/sources", payload, &reply); err != nil {
		return queue.CheckoutSession{}, err
	}
	if reply.Data.ID == "" || reply.Data.Attributes.Redirect.CheckoutURL == "" {
		return queue.CheckoutSession{}, errors.New("paymongo source response missing id or checkout url")
	}
	return queue.CheckoutSession{
		SourceID:    reply.Data.ID,
		CheckoutURL: reply.Data.Attributes.Redirect.CheckoutURL,
	}, nil
}

// GetSource fetches the current state of a source, used to reconcile
// checkouts whose webhook never arrived.
func (c *Client) GetSource(ctx context.Context, sourceID string) (string, error) {
	if c.secretKey == "" {
		return "", ErrNotConfigured
	}
	var reply sourceEnvelope
	if err := c.do(ctx, http.MethodGet, "/sources/"+sourceID, nil, &reply); err != nil {
		return "", err
	}
	return reply.Data.Attributes.Status, nil
}

func (c *Client) do(ctx context.Context, method, endpoint string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal paymongo request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+endpoint, reader)
	if err != nil {
		return fmt.Errorf("build paymongo request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	auth := base64.StdEncoding.EncodeToString([]byte(c.secretKey + ":"))
	req.Header.Set("Authorization", "Basic "+auth)

	resp, err := c.hc.Do(req)
	if err != nil {
		return fmt.Errorf("paymongo %s %s: %w", method, endpoint, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read paymongo response: %w", err)
	}
	if resp.StatusCode >= 400 {
		var apiErr apiError
		if json.Unmarshal(data, &apiErr) == nil && len(apiErr.Errors) > 0 {
			return fmt.Errorf("paymongo %s %s: %s (%s)", method, endpoint, apiErr.Errors[0].Detail, apiErr.Errors[0].Code)
		}
		return fmt.Errorf("paymongo %s %s: status %d", method, endpoint, resp.StatusCode)
	}
	if out != nil {
		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("decode paymongo response: %w", err)
		}
	}
	return nil
}

// WebhookEvent is the subset of a PayMongo event the engine cares about.
type WebhookEvent struct {
	Type     string // e.g. source.chargeable, payment.paid, payment.failed
	SourceID string
	Status   string
}

// VerifySignature checks the Paymongo-Signature header against the payload.
// Header format: t=<unix>,te=<test hmac>,li=<live hmac>; the HMAC-SHA256 is
// computed over "<t>.<payload>" with the webhook secret. The live signature
// wins when present.
func (c *Client) VerifySignature(payload []byte, header string) error {
	if c.webhookSecret == "" {
		return errors.New("paymongo webhook secret not configured")
	}
	if header == "" {
		return fmt.Errorf("%w: missing signature header", ErrBadSignature)
	}

	var timestamp, testSig, liveSig string
	for _, part := range strings.Split(header, ",") {
		key, value, found := strings.Cut(strings.TrimSpace(part), "=")
		if !found {
			continue
		}
		switch key {
		case "t":
			timestamp = value
		case "te":
			testSig = value
		case "li":
			liveSig = value
		}
	}
	sig := liveSig
	if sig == "" {
		sig = testSig
	}
	if timestamp == "" || sig == "" {
		return fmt.Errorf("%w: malformed signature header", ErrBadSignature)
	}

	mac := hmac.New(sha256.New, []byte(c.webhookSecret))
	mac.Write([]byte(timestamp))
	mac.Write([]byte("."))
	mac.Write(payload)
	expected := hex.EncodeToString(mac.Sum(nil))
	if subtle.ConstantTimeCompare([]byte(expected), []byte(sig)) != 1 {
		return ErrBadSignature
	}
	return nil
}

// ParseWebhook extracts the event type and source from a verified payload.
func ParseWebhook(payload []byte) (WebhookEvent, error) {
	var envelope struct {
		Data struct {
			Attributes struct {
				Type string `json:"type"`
				Data struct {
					ID         string `json:"id"`
					Attributes struct {
						Status string `json:"status"`
						Source struct {
							ID string `json:"id"`
						} `json:"source"`
					} `json:"attributes"`
				} `json:"data"`
			} `json:"attributes"`
		} `json:"data"`
	}
	if err := json.Unmarshal(payload, &envelope); err != nil {
		return WebhookEvent{}, fmt.Errorf("decode paymongo webhook: %w", err)
	}

	event := WebhookEvent{
		Type:   envelope.Data.Attributes.Type,
		Status: envelope.Data.Attributes.Data.Attributes.Status,
	}
	// source.* events carry the source directly; payment.* events nest it.
	switch {
	case strings.HasPrefix(event.Type, "source."):
		event.SourceID = envelope.Data.Attributes.Data.ID
	default:
		event.SourceID = envelope.Data.Attributes.Data.Attributes.Source.ID
	}
	if event.Type == "" || event.SourceID == "" {
		return WebhookEvent{}, errors.New("paymongo webhook missing event type or source id")
	}
	return event, nil
}
