package main

import (
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"storefront-payments/internal/client"
	"storefront-payments/internal/config"
	"storefront-payments/internal/handler"
	"storefront-payments/internal/logger"
	"storefront-payments/internal/repository"
	"storefront-payments/internal/server"
	"storefront-payments/internal/service"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

func main() {
	// load .env into os.Environ
	if err := godotenv.Load(); err != nil {
		logrus.Info("No .env file found (ok in prod)")
	}

	cfg := &config.Config{}
	if err := env.Parse(cfg); err != nil {
		logrus.WithError(err).Fatal("failed to parse config")
	}

	log := logger.New(&cfg.Log)

	db, err := client.InitMysqlClient(cfg.DatabaseURL)
	if err != nil {
		log.WithError(err).Fatal("failed to init database")
	}

	paypalClient := client.NewPaypalClient(&cfg.Paypal)
	stripeClient := client.NewStripeClient(&cfg.Stripe)
	braintreeClient := client.NewBraintreeClient(&cfg.BrainTree)

	cartRepo := repository.NewCartRepository(db)
	transactionRepo := repository.NewTransactionRepository(db)
	orderRepo := repository.NewOrderRepository(db)
	customerRepo := repository.NewCustomerRepository(db)
	webhookEventRepo := repository.NewWebhookEventRepository(db)

	orderCreator := service.NewOrderCreator(db, cartRepo, transactionRepo, orderRepo, customerRepo, log)

	registry := service.NewRegistry(
		service.NewStripeAdapter(stripeClient, transactionRepo, orderCreator, log),
		service.NewPaypalAdapter(paypalClient, transactionRepo, orderCreator, cfg.Paypal.BrandName, log),
		service.NewBraintreeAdapter(braintreeClient, transactionRepo, orderCreator, log),
	)

	paymentService := service.NewPaymentService(registry, cartRepo, transactionRepo, log)
	webhookService := service.NewWebhookService(paypalClient, transactionRepo, webhookEventRepo, orderCreator, log)

	paymentHandler := handler.NewPaymentHandler(paymentService, webhookService, cfg.BaseURL, log)
	transactionHandler := handler.NewTransactionHandler(paymentService, log)
	orderHandler := handler.NewOrderHandler(orderRepo, log)

	srv := server.NewServer(cfg.Auth.JWTSecret, log, paymentHandler, transactionHandler, orderHandler)

	serverAddr := cfg.HTTP.Host + ":" + cfg.HTTP.Port

	log.WithField("addr", serverAddr).Info("starting HTTP server")
	go func() {
		if err := srv.Start(serverAddr); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Fatal("HTTP server error")
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)

	<-sigChan
	log.Info("signal received, starting graceful shutdown")

	if err := srv.Shutdown(); err != nil {
		log.WithError(err).Fatal("HTTP server shutdown error")
	}
}
