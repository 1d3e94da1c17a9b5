package service

import (
	"context"
	"net/http"
	"testing"

	"storefront-payments/internal/client"
	"storefront-payments/internal/model"
	"storefront-payments/internal/repository"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// A fresh connection would see a fresh empty :memory: database.
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, client.Migrate(db))
	return db
}

func newTestLogger() *logrus.Logger {
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	return log
}

type testEnv struct {
	db           *gorm.DB
	carts        repository.CartRepository
	transactions repository.TransactionRepository
	orders       repository.OrderRepository
	customers    repository.CustomerRepository
	creator      *OrderCreator
	log          *logrus.Logger
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db := newTestDB(t)
	log := newTestLogger()

	carts := repository.NewCartRepository(db)
	transactions := repository.NewTransactionRepository(db)
	orders := repository.NewOrderRepository(db)
	customers := repository.NewCustomerRepository(db)

	return &testEnv{
		db:           db,
		carts:        carts,
		transactions: transactions,
		orders:       orders,
		customers:    customers,
		creator:      NewOrderCreator(db, carts, transactions, orders, customers, log),
		log:          log,
	}
}

type cartLine struct {
	priceCents   int64
	variantCents int64 // 0 means no variant
	quantity     int32
	stock        int32
}

func (e *testEnv) seedCart(t *testing.T, email string, lines ...cartLine) *model.Cart {
	t.Helper()

	cart := &model.Cart{
		ID:            uuid.NewString(),
		CustomerEmail: email,
		Currency:      "USD",
	}
	require.NoError(t, e.carts.Create(context.Background(), cart))

	for i, line := range lines {
		product := &model.Product{
			ID:         uuid.NewString(),
			Title:      "Product " + string(rune('A'+i)),
			PriceCents: line.priceCents,
			Currency:   "USD",
			Stock:      line.stock,
		}
		require.NoError(t, e.db.Create(product).Error)

		item := &model.CartItem{
			CartID:    cart.ID,
			ProductID: product.ID,
			Quantity:  line.quantity,
		}

		if line.variantCents > 0 {
			variant := &model.ProductVariant{
				ID:         uuid.NewString(),
				ProductID:  product.ID,
				Label:      "Variant",
				PriceCents: line.variantCents,
			}
			require.NoError(t, e.db.Create(variant).Error)
			item.VariantID = &variant.ID
		}

		require.NoError(t, e.db.Create(item).Error)
	}

	loaded, err := e.carts.FindByID(context.Background(), cart.ID)
	require.NoError(t, err)
	return loaded
}

func (e *testEnv) countOrders(t *testing.T) int64 {
	t.Helper()
	var count int64
	require.NoError(t, e.db.Model(&model.Order{}).Count(&count).Error)
	return count
}

func (e *testEnv) countTransactions(t *testing.T) int64 {
	t.Helper()
	var count int64
	require.NoError(t, e.db.Model(&model.Transaction{}).Count(&count).Error)
	return count
}

func (e *testEnv) reloadTransaction(t *testing.T, id string) *model.Transaction {
	t.Helper()
	txn, err := e.transactions.FindByID(context.Background(), id)
	require.NoError(t, err)
	return txn
}

// --- provider client mocks ---

type mockPaypalClient struct {
	createResult *client.PaypalCreateOrderResult
	createErr    error
	createCalls  int
	lastCreate   *client.PaypalCreateOrderRequest

	captureResult *model.PayPalOrderResult
	captureErr    error
	captureCalls  int

	verifyErr error
}

func (m *mockPaypalClient) CreateOrder(_ context.Context, req *client.PaypalCreateOrderRequest) (*client.PaypalCreateOrderResult, error) {
	m.createCalls++
	m.lastCreate = req
	return m.createResult, m.createErr
}

func (m *mockPaypalClient) CaptureOrder(_ context.Context, _ string) (*model.PayPalOrderResult, error) {
	m.captureCalls++
	return m.captureResult, m.captureErr
}

func (m *mockPaypalClient) VerifyWebhookSignature(_ context.Context, _ http.Header, _ []byte) error {
	return m.verifyErr
}

type mockStripeClient struct {
	intent      *client.StripePaymentIntent
	createErr   error
	createCalls int
	lastCreate  *client.StripeCreateIntentRequest

	getIntent *client.StripePaymentIntent
	getErr    error
}

func (m *mockStripeClient) CreatePaymentIntent(_ context.Context, req *client.StripeCreateIntentRequest) (*client.StripePaymentIntent, error) {
	m.createCalls++
	m.lastCreate = req
	return m.intent, m.createErr
}

func (m *mockStripeClient) GetPaymentIntent(_ context.Context, _ string) (*client.StripePaymentIntent, error) {
	return m.getIntent, m.getErr
}

type mockBraintreeClient struct {
	token     string
	tokenErr  error
	charge    *client.BraintreeChargeResult
	chargeErr error
}

func (m *mockBraintreeClient) GenerateClientToken(_ context.Context) (string, error) {
	return m.token, m.tokenErr
}

func (m *mockBraintreeClient) ChargeNonce(_ context.Context, _, _, _ string) (*client.BraintreeChargeResult, error) {
	return m.charge, m.chargeErr
}
