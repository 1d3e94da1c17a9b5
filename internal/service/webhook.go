package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"storefront-payments/internal/client"
	"storefront-payments/internal/model"
	"storefront-payments/internal/repository"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// WebhookService reconciles asynchronous provider notifications against the
// transaction store. It covers the case where the buyer approved on the
// provider's site but never came back through the return redirect.
type WebhookService interface {
	HandlePaypalWebhook(ctx context.Context, headers http.Header, body []byte) error
}

type webhookServiceImpl struct {
	paypalClient  client.PaypalClient
	transactions  repository.TransactionRepository
	webhookEvents repository.WebhookEventRepository
	creator       *OrderCreator
	log           *logrus.Logger
}

func NewWebhookService(
	paypalClient client.PaypalClient,
	transactions repository.TransactionRepository,
	webhookEvents repository.WebhookEventRepository,
	creator *OrderCreator,
	log *logrus.Logger,
) WebhookService {
	return &webhookServiceImpl{
		paypalClient:  paypalClient,
		transactions:  transactions,
		webhookEvents: webhookEvents,
		creator:       creator,
		log:           log,
	}
}

func (s *webhookServiceImpl) HandlePaypalWebhook(ctx context.Context, headers http.Header, body []byte) error {
	if err := s.paypalClient.VerifyWebhookSignature(ctx, headers, body); err != nil {
		return fmt.Errorf("verify webhook signature: %w", err)
	}

	var event model.PayPalWebhookEvent
	if err := json.Unmarshal(body, &event); err != nil {
		return fmt.Errorf("decode webhook payload: %w", err)
	}

	processed, err := s.webhookEvents.Exists(ctx, event.ID)
	if err != nil {
		return fmt.Errorf("check webhook event: %w", err)
	}
	if processed {
		s.log.WithField("event_id", event.ID).Debug("webhook event already processed")
		return nil
	}

	switch event.EventType {
	case "PAYMENT.CAPTURE.COMPLETED":
		if err := s.handleCaptureCompleted(ctx, &event); err != nil {
			return err
		}
	default:
		s.log.WithField("event_type", event.EventType).Debug("ignoring webhook event")
	}

	return s.webhookEvents.MarkProcessed(ctx, event.ID, event.EventType)
}

func (s *webhookServiceImpl) handleCaptureCompleted(ctx context.Context, event *model.PayPalWebhookEvent) error {
	paypalOrderID := event.Resource.SupplementaryData.RelatedIDs.OrderID
	if paypalOrderID == "" {
		return fmt.Errorf("no order_id in webhook payload")
	}

	txn, err := s.transactions.FindByPayPalOrderID(ctx, paypalOrderID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		s.log.WithField("paypal_order_id", paypalOrderID).
			Warn("webhook capture for unknown transaction")
		return nil
	}
	if err != nil {
		return fmt.Errorf("load transaction by paypal order: %w", err)
	}

	meta := &captureMeta{
		ProviderStatus:  event.Resource.Status,
		CapturedAt:      time.Now(),
		PayPalCaptureID: event.Resource.ID,
	}

	if _, err := s.creator.Finalize(ctx, txn, meta, txn.CustomerEmail, ""); err != nil {
		return fmt.Errorf("finalize from webhook: %w", err)
	}
	return nil
}
