package repository

import (
	"context"
	"errors"
	"time"

	"storefront-payments/internal/model"

	"gorm.io/gorm"
)

// ErrSucceededExists guards the one-succeeded-transaction-per-cart invariant.
var ErrSucceededExists = errors.New("cart already has a succeeded transaction")

type TransactionRepository interface {
	Create(ctx context.Context, txn *model.Transaction) error
	FindByID(ctx context.Context, id string) (*model.Transaction, error)
	FindByPayPalOrderID(ctx context.Context, paypalOrderID string) (*model.Transaction, error)
	List(ctx context.Context, cartID, status string, limit int) ([]*model.Transaction, error)
	Delete(ctx context.Context, id string) error
	DeletePendingByCart(ctx context.Context, cartID string) (int64, error)
	MarkSucceeded(ctx context.Context, tx *gorm.DB, txn *model.Transaction) error
	MarkFailed(ctx context.Context, id, providerStatus string) error
}

type transactionRepoImpl struct {
	db *gorm.DB
}

func NewTransactionRepository(db *gorm.DB) TransactionRepository {
	return &transactionRepoImpl{db: db}
}

func (r *transactionRepoImpl) Create(ctx context.Context, txn *model.Transaction) error {
	return r.db.WithContext(ctx).Create(txn).Error
}

func (r *transactionRepoImpl) FindByID(ctx context.Context, id string) (*model.Transaction, error) {
	var txn model.Transaction
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&txn).Error
	if err != nil {
		return nil, err
	}
	return &txn, nil
}

func (r *transactionRepoImpl) FindByPayPalOrderID(ctx context.Context, paypalOrderID string) (*model.Transaction, error) {
	var txn model.Transaction
	err := r.db.WithContext(ctx).
		Where("pay_pal_order_id = ?", paypalOrderID).
		First(&txn).Error
	if err != nil {
		return nil, err
	}
	return &txn, nil
}

func (r *transactionRepoImpl) List(ctx context.Context, cartID, status string, limit int) ([]*model.Transaction, error) {
	q := r.db.WithContext(ctx).Model(&model.Transaction{})
	if cartID != "" {
		q = q.Where("cart_id = ?", cartID)
	}
	if status != "" {
		q = q.Where("status = ?", status)
	}
	if limit > 0 {
		q = q.Limit(limit)
	}

	var txns []*model.Transaction
	if err := q.Order("created_at").Find(&txns).Error; err != nil {
		return nil, err
	}
	return txns, nil
}

func (r *transactionRepoImpl) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).
		Where("id = ?", id).
		Delete(&model.Transaction{}).Error
}

// DeletePendingByCart removes the stale pending attempts left behind by
// abandoned checkouts. Provider idempotency keys are derived from cart+item
// ids, so a fresh initiate collides with them otherwise.
func (r *transactionRepoImpl) DeletePendingByCart(ctx context.Context, cartID string) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("cart_id = ? AND status = ?", cartID, model.TransactionPending).
		Delete(&model.Transaction{})

	return result.RowsAffected, result.Error
}

// MarkSucceeded promotes a transaction to succeeded with its provider
// metadata. It refuses when the cart already holds another succeeded
// transaction.
func (r *transactionRepoImpl) MarkSucceeded(ctx context.Context, tx *gorm.DB, txn *model.Transaction) error {
	var count int64
	err := tx.WithContext(ctx).Model(&model.Transaction{}).
		Where("cart_id = ? AND status = ? AND id <> ?", txn.CartID, model.TransactionSucceeded, txn.ID).
		Count(&count).Error
	if err != nil {
		return err
	}
	if count > 0 {
		return ErrSucceededExists
	}

	result := tx.WithContext(ctx).Model(&model.Transaction{}).
		Where("id = ? AND status <> ?", txn.ID, model.TransactionSucceeded).
		Updates(map[string]interface{}{
			"status":                   model.TransactionSucceeded,
			"order_id":                 txn.OrderID,
			"pay_pal_capture_id":       txn.PayPalCaptureID,
			"pay_pal_payer_id":         txn.PayPalPayerID,
			"pay_pal_payer_email":      txn.PayPalPayerEmail,
			"braintree_transaction_id": txn.BraintreeTransactionID,
			"provider_status":          txn.ProviderStatus,
			"captured_at":              txn.CapturedAt,
			"updated_at":               time.Now(),
		})

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *transactionRepoImpl) MarkFailed(ctx context.Context, id, providerStatus string) error {
	return r.db.WithContext(ctx).Model(&model.Transaction{}).
		Where("id = ? AND status = ?", id, model.TransactionPending).
		Updates(map[string]interface{}{
			"status":          model.TransactionFailed,
			"provider_status": providerStatus,
			"updated_at":      time.Now(),
		}).Error
}
