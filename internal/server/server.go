package server

import (
	"storefront-payments/internal/handler"
	custommw "storefront-payments/internal/middleware"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/sirupsen/logrus"
)

type Server struct {
	echo               *echo.Echo
	paymentHandler     *handler.PaymentHandler
	transactionHandler *handler.TransactionHandler
	orderHandler       *handler.OrderHandler
}

func NewServer(
	jwtSecret string,
	log *logrus.Logger,
	paymentHandler *handler.PaymentHandler,
	transactionHandler *handler.TransactionHandler,
	orderHandler *handler.OrderHandler,
) *Server {
	e := echo.New()
	e.HideBanner = true

	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogURI:    true,
		LogStatus: true,
		LogMethod: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			log.WithFields(logrus.Fields{
				"method": v.Method,
				"uri":    v.URI,
				"status": v.Status,
			}).Info("request")
			return nil
		},
	}))
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())
	e.Use(custommw.Auth(jwtSecret))

	s := &Server{
		echo:               e,
		paymentHandler:     paymentHandler,
		transactionHandler: transactionHandler,
		orderHandler:       orderHandler,
	}

	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	api := s.echo.Group("/api")

	api.GET("/health", func(c echo.Context) error {
		return c.JSON(200, map[string]string{"status": "ok"})
	})

	// -------- payments --------
	payments := api.Group("/payments")
	payments.GET("/methods", s.paymentHandler.PaymentMethods)
	payments.POST("/:method/initiate", s.paymentHandler.Initiate)
	payments.POST("/:method/confirm", s.paymentHandler.Confirm)

	// -------- paypal redirects / callbacks --------
	payments.POST("/paypal/confirm-order", s.paymentHandler.ConfirmPaypalOrder)
	payments.GET("/paypal/return", s.paymentHandler.PaypalReturn)
	payments.GET("/paypal/cancel", s.paymentHandler.PaypalCancel)
	api.POST("/paypal/webhook", s.paymentHandler.PaypalWebhook)

	// -------- transactions (stale-pending sweep) --------
	api.GET("/transactions", s.transactionHandler.List)
	api.DELETE("/transactions/:id", s.transactionHandler.Delete)

	// -------- orders --------
	api.GET("/orders", s.orderHandler.List)
	api.GET("/orders/:id", s.orderHandler.Get)
}

func (s *Server) Start(address string) error {
	return s.echo.Start(address)
}

func (s *Server) Shutdown() error {
	return s.echo.Close()
}
