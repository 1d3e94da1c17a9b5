package client

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"storefront-payments/internal/config"
	"storefront-payments/internal/model"
)

type PaypalClient interface {
	CreateOrder(ctx context.Context, req *PaypalCreateOrderRequest) (*PaypalCreateOrderResult, error)
	CaptureOrder(ctx context.Context, orderID string) (*model.PayPalOrderResult, error)
	VerifyWebhookSignature(ctx context.Context, headers http.Header, body []byte) error
}

type paypalClientImpl struct {
	httpClient         *http.Client
	baseApiURL         string
	paypalClientID     string
	paypalClientSecret string
	webhookID          string
}

type PaypalOrderItem struct {
	Name      string
	SKU       string
	UnitValue string // decimal string, e.g. "20.00"
	Quantity  int32
}

type PaypalShipping struct {
	FullName   string
	Line1      string
	Line2      string
	City       string
	State      string
	PostalCode string
	Country    string
}

type PaypalCreateOrderRequest struct {
	ReferenceID string // cart id
	InvoiceID   string
	RequestID   string // PayPal-Request-Id idempotency header
	Currency    string
	TotalValue  string
	Items       []PaypalOrderItem
	Shipping    *PaypalShipping
	BrandName   string
	ReturnURL   string
	CancelURL   string
}

type PaypalCreateOrderResult struct {
	OrderID    string
	Status     string
	ApproveURL string
}

func NewPaypalClient(paypalCfg *config.Paypal) PaypalClient {
	return &paypalClientImpl{
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		baseApiURL:         paypalCfg.BaseApiURL,
		paypalClientID:     paypalCfg.ClientID,
		paypalClientSecret: paypalCfg.ClientSecret,
		webhookID:          paypalCfg.WebhookID,
	}
}

func (c *paypalClientImpl) getAccessToken(ctx context.Context) (string, error) {
	auth := base64.StdEncoding.EncodeToString(
		[]byte(c.paypalClientID + ":" + c.paypalClientSecret),
	)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseApiURL+"/v1/oauth2/token",
		bytes.NewBufferString("grant_type=client_credentials"))
	if err != nil {
		return "", fmt.Errorf("http new request: %w", err)
	}
	req.Header.Set("Authorization", "Basic "+auth)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("http client do: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("paypal oauth error %d: %s", resp.StatusCode, string(b))
	}

	var res struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&res); err != nil {
		return "", fmt.Errorf("decode oauth response: %w", err)
	}

	return res.AccessToken, nil
}

func (c *paypalClientImpl) CreateOrder(ctx context.Context, orderReq *PaypalCreateOrderRequest) (*PaypalCreateOrderResult, error) {
	accessToken, err := c.getAccessToken(ctx)
	if err != nil {
		return nil, fmt.Errorf("get paypal access token: %w", err)
	}

	items := make([]map[string]interface{}, len(orderReq.Items))
	for i, item := range orderReq.Items {
		items[i] = map[string]interface{}{
			"name":        item.Name,
			"sku":         item.SKU,
			"quantity":    fmt.Sprintf("%d", item.Quantity),
			"unit_amount": map[string]string{"currency_code": orderReq.Currency, "value": item.UnitValue},
		}
	}

	purchaseUnit := map[string]interface{}{
		"reference_id": orderReq.ReferenceID,
		"custom_id":    orderReq.ReferenceID,
		"invoice_id":   orderReq.InvoiceID,
		"amount": map[string]interface{}{
			"currency_code": orderReq.Currency,
			"value":         orderReq.TotalValue,
			"breakdown": map[string]interface{}{
				"item_total": map[string]string{"currency_code": orderReq.Currency, "value": orderReq.TotalValue},
				"shipping":   map[string]string{"currency_code": orderReq.Currency, "value": "0.00"},
				"tax_total":  map[string]string{"currency_code": orderReq.Currency, "value": "0.00"},
			},
		},
		"items": items,
	}

	// Ask PayPal to use the address we collected rather than the account one.
	shippingPreference := "GET_FROM_FILE"
	if orderReq.Shipping != nil {
		shippingPreference = "SET_PROVIDED_ADDRESS"
		purchaseUnit["shipping"] = map[string]interface{}{
			"name": map[string]string{"full_name": orderReq.Shipping.FullName},
			"address": map[string]string{
				"address_line_1": orderReq.Shipping.Line1,
				"address_line_2": orderReq.Shipping.Line2,
				"admin_area_2":   orderReq.Shipping.City,
				"admin_area_1":   orderReq.Shipping.State,
				"postal_code":    orderReq.Shipping.PostalCode,
				"country_code":   orderReq.Shipping.Country,
			},
		}
	}

	payload := map[string]interface{}{
		"intent":         "CAPTURE",
		"purchase_units": []map[string]interface{}{purchaseUnit},
		"payment_source": map[string]interface{}{
			"paypal": map[string]interface{}{
				"experience_context": map[string]string{
					"brand_name":          orderReq.BrandName,
					"landing_page":        "LOGIN",
					"shipping_preference": shippingPreference,
					"user_action":         "PAY_NOW",
					"return_url":          orderReq.ReturnURL,
					"cancel_url":          orderReq.CancelURL,
				},
			},
		},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal req payload: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseApiURL+"/v2/checkout/orders",
		bytes.NewBuffer(body))
	if err != nil {
		return nil, fmt.Errorf("http new request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Prefer", "return=representation")
	if orderReq.RequestID != "" {
		req.Header.Set("PayPal-Request-Id", orderReq.RequestID)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("paypal create order request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("paypal error %d: %s", resp.StatusCode, string(b))
	}

	var result model.PayPalOrderResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode paypal response: %w", err)
	}

	approveURL := extractApproveURL(result.Links)
	if approveURL == "" {
		return nil, fmt.Errorf("no approval url returned by paypal, order status: %s", result.Status)
	}

	return &PaypalCreateOrderResult{
		OrderID:    result.ID,
		Status:     result.Status,
		ApproveURL: approveURL,
	}, nil
}

func (c *paypalClientImpl) CaptureOrder(ctx context.Context, orderID string) (*model.PayPalOrderResult, error) {
	accessToken, err := c.getAccessToken(ctx)
	if err != nil {
		return nil, fmt.Errorf("get paypal access token: %w", err)
	}

	url := fmt.Sprintf(
		"%s/v2/checkout/orders/%s/capture",
		c.baseApiURL,
		orderID,
	)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create capture request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Prefer", "return=representation")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("paypal capture request failed: %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf(
			"paypal capture failed: status=%d body=%s",
			resp.StatusCode,
			string(body),
		)
	}

	var result model.PayPalOrderResult
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("decode capture response: %w", err)
	}

	return &result, nil
}

func (c *paypalClientImpl) VerifyWebhookSignature(ctx context.Context, headers http.Header, body []byte) error {
	accessToken, err := c.getAccessToken(ctx)
	if err != nil {
		return fmt.Errorf("get paypal access token: %w", err)
	}

	var event json.RawMessage = body
	payload := map[string]interface{}{
		"auth_algo":         headers.Get("Paypal-Auth-Algo"),
		"cert_url":          headers.Get("Paypal-Cert-Url"),
		"transmission_id":   headers.Get("Paypal-Transmission-Id"),
		"transmission_sig":  headers.Get("Paypal-Transmission-Sig"),
		"transmission_time": headers.Get("Paypal-Transmission-Time"),
		"webhook_id":        c.webhookID,
		"webhook_event":     event,
	}

	reqBody, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal verify payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseApiURL+"/v1/notifications/verify-webhook-signature",
		bytes.NewBuffer(reqBody))
	if err != nil {
		return fmt.Errorf("http new request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("verify request failed: %w", err)
	}
	defer resp.Body.Close()

	var res struct {
		VerificationStatus string `json:"verification_status"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&res); err != nil {
		return fmt.Errorf("decode verify response: %w", err)
	}

	if res.VerificationStatus != "SUCCESS" {
		return fmt.Errorf("webhook signature verification failed: %s", res.VerificationStatus)
	}
	return nil
}

func extractApproveURL(links []model.PayPalLink) string {
	for _, link := range links {
		if link.Rel == "approve" || link.Rel == "payer-action" {
			return link.Href
		}
	}
	return ""
}
