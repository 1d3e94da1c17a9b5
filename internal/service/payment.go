package service

import (
	"context"
	"fmt"

	"storefront-payments/internal/dto"
	"storefront-payments/internal/model"
	"storefront-payments/internal/repository"

	"github.com/sirupsen/logrus"
)

// RequestEnv carries the per-request context the adapters need: the absolute
// base URL reconstructed from proto/host headers and the authenticated
// customer, when there is one.
type RequestEnv struct {
	BaseURL       string
	CustomerID    string
	CustomerEmail string
}

type PaymentService interface {
	Initiate(ctx context.Context, method string, req *dto.InitiateRequest, env *RequestEnv) (*dto.InitiateResponse, error)
	Confirm(ctx context.Context, method string, req *dto.ConfirmRequest, env *RequestEnv) (*dto.ConfirmResponse, error)
	FindTransactionByPayPalOrder(ctx context.Context, paypalOrderID string) (*model.Transaction, error)
	ListTransactions(ctx context.Context, cartID, status string, limit int) ([]*model.Transaction, error)
	DeleteTransaction(ctx context.Context, id string) error
	PaymentMethods() []string
}

type paymentServiceImpl struct {
	registry     *Registry
	carts        repository.CartRepository
	transactions repository.TransactionRepository
	log          *logrus.Logger
}

func NewPaymentService(
	registry *Registry,
	carts repository.CartRepository,
	transactions repository.TransactionRepository,
	log *logrus.Logger,
) PaymentService {
	return &paymentServiceImpl{
		registry:     registry,
		carts:        carts,
		transactions: transactions,
		log:          log,
	}
}

func (s *paymentServiceImpl) Initiate(ctx context.Context, method string, req *dto.InitiateRequest, env *RequestEnv) (*dto.InitiateResponse, error) {
	adapter, err := s.registry.Lookup(method)
	if err != nil {
		return nil, err
	}

	if req.CartID == "" {
		return nil, fmt.Errorf("%w: cartId", ErrMissingField)
	}

	cart, err := s.carts.FindByID(ctx, req.CartID)
	if err != nil {
		return nil, fmt.Errorf("load cart %s: %w", req.CartID, err)
	}
	if cart.IsPurchased() {
		return nil, repository.ErrCartPurchased
	}
	if cart.IsEmpty() {
		return nil, ErrEmptyCart
	}

	email := req.CustomerEmail
	if email == "" {
		email = cart.CustomerEmail
	}
	if email == "" {
		email = env.CustomerEmail
	}
	if email == "" {
		return nil, ErrMissingEmail
	}

	currency := cart.Currency
	if currency == "" {
		currency = "USD"
	}

	// Stale pending attempts share the provider idempotency key with the one
	// we are about to make. Cleanup is best-effort: a failure here is logged
	// and swallowed, the initiate call itself surfaces any remaining
	// collision.
	if deleted, err := s.transactions.DeletePendingByCart(ctx, cart.ID); err != nil {
		s.log.WithError(err).WithField("cart_id", cart.ID).
			Warn("stale pending transaction cleanup failed")
	} else if deleted > 0 {
		s.log.WithFields(logrus.Fields{"cart_id": cart.ID, "deleted": deleted}).
			Debug("deleted stale pending transactions")
	}

	result, err := adapter.InitiatePayment(ctx, &InitiateData{
		Cart:            cart,
		Currency:        currency,
		CustomerEmail:   email,
		CustomerID:      env.CustomerID,
		BillingAddress:  req.BillingAddress,
		ShippingAddress: req.ShippingAddress,
		BaseURL:         env.BaseURL,
	})
	if err != nil {
		return nil, err
	}

	return &dto.InitiateResponse{
		Message:       fmt.Sprintf("%s payment initiated", method),
		TransactionID: result.TransactionID,
		CartID:        result.CartID,
		ApprovalURL:   result.ApprovalURL,
		PayPalOrderID: result.ProviderOrderID,
		ClientSecret:  result.ClientSecret,
		ClientToken:   result.ClientToken,
	}, nil
}

func (s *paymentServiceImpl) Confirm(ctx context.Context, method string, req *dto.ConfirmRequest, env *RequestEnv) (*dto.ConfirmResponse, error) {
	adapter, err := s.registry.Lookup(method)
	if err != nil {
		return nil, err
	}

	result, err := adapter.ConfirmOrder(ctx, &ConfirmData{
		TransactionID:   req.TransactionID,
		CartID:          req.CartID,
		CustomerEmail:   req.CustomerEmail,
		CustomerID:      env.CustomerID,
		ProviderOrderID: req.PayPalOrderID,
		PayerID:         req.PayerID,
		PaymentIntentID: req.PaymentIntentID,
		Nonce:           req.Nonce,
	})
	if err != nil {
		return nil, err
	}

	return &dto.ConfirmResponse{
		Message:       "payment captured and order created",
		Doc:           dto.DocRef{ID: result.OrderID},
		OrderID:       result.OrderID,
		TransactionID: result.TransactionID,
	}, nil
}

func (s *paymentServiceImpl) FindTransactionByPayPalOrder(ctx context.Context, paypalOrderID string) (*model.Transaction, error) {
	return s.transactions.FindByPayPalOrderID(ctx, paypalOrderID)
}

func (s *paymentServiceImpl) ListTransactions(ctx context.Context, cartID, status string, limit int) ([]*model.Transaction, error) {
	return s.transactions.List(ctx, cartID, status, limit)
}

func (s *paymentServiceImpl) DeleteTransaction(ctx context.Context, id string) error {
	return s.transactions.Delete(ctx, id)
}

func (s *paymentServiceImpl) PaymentMethods() []string {
	return s.registry.Names()
}
