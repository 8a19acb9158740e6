package payment

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/TheVish04/ecommerce2-sub001/internal/apperr"
)

const defaultBaseURL = "https://api.razorpay.com/v1"

// MinAmountMinor is the smallest payable amount: 100 paise = ₹1.
const MinAmountMinor = 100

// RazorpayGateway talks to a Razorpay-compatible orders API using basic
// auth. When keyID/keySecret are empty the gateway is treated as not
// configured: intent creation fails with ErrGatewayUnavailable, and
// signature verification falls open for local test flows.
type RazorpayGateway struct {
	keyID     string
	keySecret string
	baseURL   string
	client    *http.Client
}

func NewRazorpayGateway(keyID, keySecret string) *RazorpayGateway {
	return &RazorpayGateway{
		keyID:     keyID,
		keySecret: keySecret,
		baseURL:   defaultBaseURL,
		client:    &http.Client{Timeout: 15 * time.Second},
	}
}

// WithBaseURL points the gateway at a different endpoint (tests).
func (g *RazorpayGateway) WithBaseURL(u string) *RazorpayGateway {
	g.baseURL = u
	return g
}

func (g *RazorpayGateway) Enabled() bool {
	return g.keyID != "" && g.keySecret != ""
}

type intentRequest struct {
	Amount   int64             `json:"amount"`
	Currency string            `json:"currency"`
	Receipt  string            `json:"receipt"`
	Notes    map[string]string `json:"notes,omitempty"`
}

type intentResponse struct {
	ID string `json:"id"`
}

func (g *RazorpayGateway) CreateIntent(ctx context.Context, amountMinor int64, currency, receipt string, notes map[string]string) (string, error) {
	if !g.Enabled() {
		return "", apperr.ErrGatewayUnavailable
	}
	if amountMinor < MinAmountMinor {
		return "", fmt.Errorf("amount %d below minimum payable: %w", amountMinor, apperr.ErrValidation)
	}

	body, err := json.Marshal(intentRequest{
		Amount:   amountMinor,
		Currency: currency,
		Receipt:  receipt,
		Notes:    notes,
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+"/orders", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.SetBasicAuth(g.keyID, g.keySecret)
	req.Header.Set("Content-Type", "application/json")

	res, err := g.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("gateway order create: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(io.LimitReader(res.Body, 4096))
		return "", fmt.Errorf("gateway order create: status %d: %s", res.StatusCode, raw)
	}

	var out intentResponse
	if err := json.NewDecoder(res.Body).Decode(&out); err != nil {
		return "", err
	}
	if out.ID == "" {
		return "", fmt.Errorf("gateway order create: empty order id")
	}
	return out.ID, nil
}

// VerifySignature checks HMAC-SHA256(orderID + "|" + paymentID) against
// the supplied hex signature. With no secret configured verification is
// trivially successful, a deliberate fallback for environments without a
// gateway; otherwise fail-closed.
func (g *RazorpayGateway) VerifySignature(externalOrderID, externalPaymentID, signature string) bool {
	if g.keySecret == "" {
		return true
	}
	return VerifyHMAC(externalOrderID, externalPaymentID, signature, g.keySecret)
}

// VerifyHMAC is the raw check, exported so tests and callers with their
// own secret handling can use it directly.
func VerifyHMAC(externalOrderID, externalPaymentID, signature, secret string) bool {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(externalOrderID + "|" + externalPaymentID))
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}

var _ Gateway = (*RazorpayGateway)(nil)
