package client

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

	"storefront-payments/internal/config"
)

type StripeClient interface {
	CreatePaymentIntent(ctx context.Context, req *StripeCreateIntentRequest) (*StripePaymentIntent, error)
	GetPaymentIntent(ctx context.Context, intentID string) (*StripePaymentIntent, error)
}

type stripeClientImpl struct {
	httpClient *http.Client
	baseApiURL string
	secretKey  string
}

type StripeCreateIntentRequest struct {
	AmountCents    int64
	Currency       string
	ReceiptEmail   string
	CartID         string
	TransactionID  string
	IdempotencyKey string
}

type StripePaymentIntent struct {
	ID           string `json:"id"`
	Status       string `json:"status"` // requires_payment_method, processing, succeeded, ...
	ClientSecret string `json:"client_secret"`
	Amount       int64  `json:"amount"`
	Currency     string `json:"currency"`
}

type stripeErrorBody struct {
	Error struct {
		Type    string `json:"type"`
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func NewStripeClient(stripeCfg *config.Stripe) StripeClient {
	return &stripeClientImpl{
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		baseApiURL: stripeCfg.BaseApiURL,
		secretKey:  stripeCfg.SecretKey,
	}
}

func (c *stripeClientImpl) CreatePaymentIntent(ctx context.Context, intentReq *StripeCreateIntentRequest) (*StripePaymentIntent, error) {
	form := url.Values{}
	form.Set("amount", strconv.FormatInt(intentReq.AmountCents, 10))
	form.Set("currency", strings.ToLower(intentReq.Currency))
	form.Set("automatic_payment_methods[enabled]", "true")
	if intentReq.ReceiptEmail != "" {
		form.Set("receipt_email", intentReq.ReceiptEmail)
	}
	form.Set("metadata[cart_id]", intentReq.CartID)
	form.Set("metadata[transaction_id]", intentReq.TransactionID)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseApiURL+"/v1/payment_intents",
		strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("http new request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.secretKey)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if intentReq.IdempotencyKey != "" {
		req.Header.Set("Idempotency-Key", intentReq.IdempotencyKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("stripe create intent request failed: %w", err)
	}
	defer resp.Body.Close()

	return decodeIntent(resp)
}

func (c *stripeClientImpl) GetPaymentIntent(ctx context.Context, intentID string) (*StripePaymentIntent, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.baseApiURL+"/v1/payment_intents/"+intentID, nil)
	if err != nil {
		return nil, fmt.Errorf("http new request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.secretKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("stripe get intent request failed: %w", err)
	}
	defer resp.Body.Close()

	return decodeIntent(resp)
}

func decodeIntent(resp *http.Response) (*StripePaymentIntent, error) {
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read stripe response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var stripeErr stripeErrorBody
		if err := json.Unmarshal(body, &stripeErr); err == nil && stripeErr.Error.Message != "" {
			return nil, fmt.Errorf("stripe error %d (%s): %s",
				resp.StatusCode, stripeErr.Error.Code, stripeErr.Error.Message)
		}
		return nil, fmt.Errorf("stripe error %d: %s", resp.StatusCode, string(body))
	}

	var intent StripePaymentIntent
	if err := json.Unmarshal(body, &intent); err != nil {
		return nil, fmt.Errorf("decode stripe response: %w", err)
	}

	return &intent, nil
}
