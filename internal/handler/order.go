package handler

import (
	"errors"
	"net/http"

	"storefront-payments/internal/middleware"
	"storefront-payments/internal/repository"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type OrderHandler struct {
	orders repository.OrderRepository
	log    *logrus.Logger
}

func NewOrderHandler(orders repository.OrderRepository, log *logrus.Logger) *OrderHandler {
	return &OrderHandler{
		orders: orders,
		log:    log,
	}
}

// List returns the orders belonging to an email, for the account order
// history: GET /api/orders?email=... The authenticated email wins over the
// query parameter so a guest cannot browse someone else's history by guessing.
func (h *OrderHandler) List(c echo.Context) error {
	ctx := c.Request().Context()

	email := middleware.CustomerEmail(c)
	if email == "" {
		email = c.QueryParam("email")
	}
	if email == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "email is required")
	}

	orders, err := h.orders.ListByEmail(ctx, email)
	if err != nil {
		h.log.WithError(err).Error("list orders failed")
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to list orders")
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"docs": orders,
	})
}

func (h *OrderHandler) Get(c echo.Context) error {
	ctx := c.Request().Context()
	id := c.Param("id")

	order, err := h.orders.FindByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, "order not found")
	}
	if err != nil {
		h.log.WithError(err).WithField("order_id", id).Error("get order failed")
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to load order")
	}

	return c.JSON(http.StatusOK, order)
}
