package services

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

	"github.com/google/uuid"
)

// PaymentGateway is the one true external dependency of the payment domain.
// Amounts cross this boundary in integer minor units so the processor never
// sees a floating-point value.
type PaymentGateway interface {
	SubmitPayment(ctx context.Context, amountMinorUnits int64, currency string) (string, error)
}

type StripeGateway struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

func NewStripeGateway(baseURL, apiKey string, timeout time.Duration) *StripeGateway {
	return &StripeGateway{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: timeout},
	}
}

func (g *StripeGateway) SubmitPayment(ctx context.Context, amountMinorUnits int64, currency string) (string, error) {
	form := url.Values{}
	form.Set("amount", strconv.FormatInt(amountMinorUnits, 10))
	form.Set("currency", currency)

	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		g.baseURL+"/v1/payment_intents",
		strings.NewReader(form.Encode()),
	)
	if err != nil {
		return "", fmt.Errorf("build payment request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+g.apiKey)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Idempotency-Key", uuid.NewString())

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("submit payment: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return "", fmt.Errorf("submit payment: status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var response struct {
		ID string `json:"id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return "", fmt.Errorf("decode payment response: %w", err)
	}
	if response.ID == "" {
		return "", fmt.Errorf("payment reference missing from response")
	}

	return response.ID, nil
}
