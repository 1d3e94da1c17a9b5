package model

// Wire types for the PayPal Orders v2 API and webhook payloads.

type PayPalPayer struct {
	PayerID string `json:"payer_id"`
	Email   string `json:"email_address"`
}

type PayPalLink struct {
	Rel  string `json:"rel"`
	Href string `json:"href"`
}

type PayPalAmount struct {
	Currency string `json:"currency_code"`
	Value    string `json:"value"`
}

type PayPalCapture struct {
	ID         string       `json:"id"`
	Status     string       `json:"status"`
	CreateTime string       `json:"create_time"`
	Final      bool         `json:"final_capture"`
	Amount     PayPalAmount `json:"amount"`
}

type PayPalPayments struct {
	Captures []PayPalCapture `json:"captures"`
}

type PayPalPurchaseUnit struct {
	ReferenceID string         `json:"reference_id"`
	Payments    PayPalPayments `json:"payments"`
}

type PayPalRelatedIDs struct {
	OrderID string `json:"order_id"`
}

type PayPalSupplementaryData struct {
	RelatedIDs PayPalRelatedIDs `json:"related_ids"`
}

type PayPalOrderResult struct {
	ID            string               `json:"id"`
	Intent        string               `json:"intent"`
	Status        string               `json:"status"`
	Payer         PayPalPayer          `json:"payer"`
	Links         []PayPalLink         `json:"links"`
	PurchaseUnits []PayPalPurchaseUnit `json:"purchase_units"`
	UpdateTime    string               `json:"update_time"`
}

type PayPalWebhookResource struct {
	ID                string                  `json:"id"`
	Status            string                  `json:"status"`
	SupplementaryData PayPalSupplementaryData `json:"supplementary_data"`
}

type PayPalWebhookEvent struct {
	ID         string                `json:"id"`
	EventType  string                `json:"event_type"`
	CreateTime string                `json:"create_time"`
	Resource   PayPalWebhookResource `json:"resource"`
}
