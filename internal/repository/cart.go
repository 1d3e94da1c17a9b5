package repository

import (
	"context"
	"errors"
	"time"

	"storefront-payments/internal/model"

	"gorm.io/gorm"
)

// ErrCartPurchased is returned by any write against a cart whose purchasedAt
// is already set. Purchased carts are immutable.
var ErrCartPurchased = errors.New("cart is already purchased")

type CartRepository interface {
	Create(ctx context.Context, cart *model.Cart) error
	FindByID(ctx context.Context, cartID string) (*model.Cart, error)
	MarkPurchased(ctx context.Context, tx *gorm.DB, cartID string, at time.Time) error
}

type cartRepoImpl struct {
	db *gorm.DB
}

func NewCartRepository(db *gorm.DB) CartRepository {
	return &cartRepoImpl{db: db}
}

func (r *cartRepoImpl) Create(ctx context.Context, cart *model.Cart) error {
	return r.db.WithContext(ctx).Create(cart).Error
}

func (r *cartRepoImpl) FindByID(ctx context.Context, cartID string) (*model.Cart, error) {
	var cart model.Cart
	err := r.db.WithContext(ctx).
		Preload("Items").
		Preload("Items.Product").
		Preload("Items.Variant").
		Where("id = ?", cartID).
		First(&cart).Error

	if err != nil {
		return nil, err
	}

	return &cart, nil
}

func (r *cartRepoImpl) MarkPurchased(ctx context.Context, tx *gorm.DB, cartID string, at time.Time) error {
	result := tx.WithContext(ctx).Model(&model.Cart{}).
		Where("id = ? AND purchased_at IS NULL", cartID).
		Update("purchased_at", at)

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrCartPurchased
	}
	return nil
}
