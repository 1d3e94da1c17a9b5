package service

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"

	"storefront-payments/internal/model"

	"github.com/shopspring/decimal"
)

// pricedLine is one cart line with its unit price resolved: the variant price
// wins over the base product price when a variant is selected.
type pricedLine struct {
	ProductID string
	VariantID *string
	Title     string
	SKU       string
	Quantity  int32
	UnitCents int64
	Currency  string
}

func priceCart(cart *model.Cart) ([]pricedLine, int64, error) {
	if cart.IsEmpty() {
		return nil, 0, ErrEmptyCart
	}

	lines := make([]pricedLine, 0, len(cart.Items))
	var totalCents int64

	for _, item := range cart.Items {
		if item.Product == nil {
			return nil, 0, fmt.Errorf("cart item %d references unknown product %s", item.ID, item.ProductID)
		}
		if item.Quantity <= 0 {
			return nil, 0, fmt.Errorf("cart item %d: quantity must be positive", item.ID)
		}
		if item.Product.Stock < item.Quantity {
			return nil, 0, fmt.Errorf("%w: %s", ErrOutOfStock, item.ProductID)
		}

		unit := item.Product.PriceCents
		if item.Variant != nil {
			unit = item.Variant.PriceCents
		}

		lines = append(lines, pricedLine{
			ProductID: item.ProductID,
			VariantID: item.VariantID,
			Title:     item.Product.Title,
			SKU:       item.ProductID,
			Quantity:  item.Quantity,
			UnitCents: unit,
			Currency:  cart.Currency,
		})
		totalCents += unit * int64(item.Quantity)
	}

	return lines, totalCents, nil
}

// formatCents renders a cent amount as the decimal string providers expect,
// e.g. 2000 -> "20.00".
func formatCents(cents int64) string {
	return decimal.NewFromInt(cents).Div(decimal.NewFromInt(100)).StringFixed(2)
}

// idempotencyKey is derived deterministically from the cart and its item ids,
// so a repeat initiate on the same cart presents the same key to the
// provider. Stale pending transactions must be cleaned up first or the
// provider rejects the collision.
func idempotencyKey(cart *model.Cart) string {
	ids := make([]string, 0, len(cart.Items))
	for _, item := range cart.Items {
		ids = append(ids, fmt.Sprintf("%s:%d", item.ProductID, item.ID))
	}
	sort.Strings(ids)

	h := sha256.New()
	h.Write([]byte(cart.ID))
	for _, id := range ids {
		h.Write([]byte(id))
	}

	return "cart-" + cart.ID + "-" + hex.EncodeToString(h.Sum(nil))[:16]
}
