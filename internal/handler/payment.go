package handler

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"storefront-payments/internal/dto"
	"storefront-payments/internal/middleware"
	"storefront-payments/internal/model"
	"storefront-payments/internal/repository"
	"storefront-payments/internal/service"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type PaymentHandler struct {
	paymentService service.PaymentService
	webhookService service.WebhookService
	baseURL        string // optional override; otherwise derived per request
	log            *logrus.Logger
}

func NewPaymentHandler(
	paymentService service.PaymentService,
	webhookService service.WebhookService,
	baseURL string,
	log *logrus.Logger,
) *PaymentHandler {
	return &PaymentHandler{
		paymentService: paymentService,
		webhookService: webhookService,
		baseURL:        baseURL,
		log:            log,
	}
}

// appURL resolves the absolute application URL for return/cancel redirects
// from the request's proto/host headers, unless an explicit BASE_URL is set.
func (h *PaymentHandler) appURL(c echo.Context) string {
	if h.baseURL != "" {
		return h.baseURL
	}
	proto := c.Request().Header.Get("X-Forwarded-Proto")
	if proto == "" {
		proto = c.Scheme()
	}
	host := c.Request().Host
	return fmt.Sprintf("%s://%s", proto, host)
}

func (h *PaymentHandler) requestEnv(c echo.Context) *service.RequestEnv {
	return &service.RequestEnv{
		BaseURL:       h.appURL(c),
		CustomerID:    middleware.CustomerID(c),
		CustomerEmail: middleware.CustomerEmail(c),
	}
}

func (h *PaymentHandler) PaymentMethods(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string][]string{
		"paymentMethods": h.paymentService.PaymentMethods(),
	})
}

func (h *PaymentHandler) Initiate(c echo.Context) error {
	ctx := c.Request().Context()
	method := c.Param("method")

	var req dto.InitiateRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	result, err := h.paymentService.Initiate(ctx, method, &req, h.requestEnv(c))
	if err != nil {
		return h.paymentError(c, method, "initiate payment", err)
	}

	return c.JSON(http.StatusOK, result)
}

func (h *PaymentHandler) Confirm(c echo.Context) error {
	ctx := c.Request().Context()
	method := c.Param("method")

	var req dto.ConfirmRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	result, err := h.paymentService.Confirm(ctx, method, &req, h.requestEnv(c))
	if err != nil {
		return h.paymentError(c, method, "confirm order", err)
	}

	return c.JSON(http.StatusOK, result)
}

// ConfirmPaypalOrder is the fixed-path variant of Confirm the return handler
// and storefront call: POST /api/payments/paypal/confirm-order.
func (h *PaymentHandler) ConfirmPaypalOrder(c echo.Context) error {
	ctx := c.Request().Context()

	var req dto.ConfirmRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	result, err := h.paymentService.Confirm(ctx, model.PaymentMethodPayPal, &req, h.requestEnv(c))
	if err != nil {
		return h.paymentError(c, model.PaymentMethodPayPal, "confirm order", err)
	}

	return c.JSON(http.StatusOK, result)
}

// PaypalReturn is where PayPal redirects the buyer after approval:
// GET /api/payments/paypal/return?token=<ORDER_ID>&PayerID=<PAYER_ID>.
// Only a short machine-readable code ever leaks into the redirect URL.
func (h *PaymentHandler) PaypalReturn(c echo.Context) error {
	ctx := c.Request().Context()
	appURL := h.appURL(c)

	paypalOrderID := c.QueryParam("token")
	payerID := c.QueryParam("PayerID")

	if paypalOrderID == "" {
		return c.Redirect(http.StatusFound, appURL+"/checkout?error=missing_token")
	}

	txn, err := h.paymentService.FindTransactionByPayPalOrder(ctx, paypalOrderID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		h.log.WithField("paypal_order_id", paypalOrderID).
			Error("paypal return: no transaction for order")
		return c.Redirect(http.StatusFound, appURL+"/checkout?error=transaction_not_found")
	}
	if err != nil {
		h.log.WithError(err).Error("paypal return: transaction lookup failed")
		return c.Redirect(http.StatusFound, appURL+"/checkout?error=unexpected")
	}

	result, err := h.paymentService.Confirm(ctx, model.PaymentMethodPayPal, &dto.ConfirmRequest{
		PayPalOrderID: paypalOrderID,
		PayerID:       payerID,
		TransactionID: txn.ID,
		CartID:        txn.CartID,
		CustomerEmail: txn.CustomerEmail,
	}, h.requestEnv(c))
	if err != nil {
		h.log.WithError(err).WithField("paypal_order_id", paypalOrderID).
			Error("paypal return: confirm order failed")
		return c.Redirect(http.StatusFound, appURL+"/checkout?error=capture_failed")
	}

	return c.Redirect(http.StatusFound, fmt.Sprintf("%s/orders/%s", appURL, result.OrderID))
}

// PaypalCancel handles the buyer clicking "Cancel" on paypal.com. No payment
// was taken; send them back to checkout.
func (h *PaymentHandler) PaypalCancel(c echo.Context) error {
	return c.Redirect(http.StatusFound, h.appURL(c)+"/checkout?cancelled=paypal")
}

func (h *PaymentHandler) PaypalWebhook(c echo.Context) error {
	ctx := c.Request().Context()

	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return c.NoContent(http.StatusBadRequest)
	}

	if err := h.webhookService.HandlePaypalWebhook(ctx, c.Request().Header, body); err != nil {
		h.log.WithError(err).Error("paypal webhook handling failed")
		return c.NoContent(http.StatusBadRequest)
	}

	return c.NoContent(http.StatusOK)
}

// paymentError logs the full failure server-side and returns only a
// sanitized message plus a machine-readable cause code to the client.
func (h *PaymentHandler) paymentError(c echo.Context, method, op string, err error) error {
	h.log.WithError(err).WithField("payment_method", method).Errorf("%s failed", op)

	status := http.StatusInternalServerError
	message := fmt.Sprintf("failed to %s", op)

	switch {
	case errors.Is(err, service.ErrUnknownPaymentMethod):
		status = http.StatusNotFound
		message = "unknown payment method"
	case errors.Is(err, service.ErrEmptyCart),
		errors.Is(err, service.ErrMissingEmail),
		errors.Is(err, service.ErrMissingField),
		errors.Is(err, service.ErrOutOfStock),
		errors.Is(err, repository.ErrCartPurchased):
		status = http.StatusBadRequest
		message = err.Error()
	case errors.Is(err, gorm.ErrRecordNotFound):
		status = http.StatusNotFound
		message = "not found"
	case errors.Is(err, service.ErrCaptureIncomplete):
		status = http.StatusBadGateway
		message = "payment not completed"
	}

	resp := dto.ErrorResponse{Error: message}
	if code := service.CauseCode(err); code != "" {
		resp.Cause = &dto.ErrorCause{Code: code}
	}

	return c.JSON(status, resp)
}
