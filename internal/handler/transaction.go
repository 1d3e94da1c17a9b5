package handler

import (
	"net/http"
	"strconv"

	"storefront-payments/internal/service"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
)

type TransactionHandler struct {
	paymentService service.PaymentService
	log            *logrus.Logger
}

func NewTransactionHandler(paymentService service.PaymentService, log *logrus.Logger) *TransactionHandler {
	return &TransactionHandler{
		paymentService: paymentService,
		log:            log,
	}
}

// List supports the storefront's stale-transaction sweep:
// GET /api/transactions?cartId=<id>&status=pending&limit=20
func (h *TransactionHandler) List(c echo.Context) error {
	ctx := c.Request().Context()

	cartID := c.QueryParam("cartId")
	status := c.QueryParam("status")

	limit := 0
	if raw := c.QueryParam("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid limit")
		}
		limit = parsed
	}

	txns, err := h.paymentService.ListTransactions(ctx, cartID, status, limit)
	if err != nil {
		h.log.WithError(err).Error("list transactions failed")
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to list transactions")
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"docs": txns,
	})
}

func (h *TransactionHandler) Delete(c echo.Context) error {
	ctx := c.Request().Context()
	id := c.Param("id")

	if err := h.paymentService.DeleteTransaction(ctx, id); err != nil {
		h.log.WithError(err).WithField("transaction_id", id).Error("delete transaction failed")
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to delete transaction")
	}

	return c.NoContent(http.StatusNoContent)
}
