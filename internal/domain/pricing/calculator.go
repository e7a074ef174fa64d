// internal/domain/pricing/calculator.go
package pricing

import (
	"encoding/json"

	"github.com/shopspring/decimal"
	"github.com/your-org/storefront-backend/internal/config"
)

// LineItem is the minimal view of a cart or order line the calculator needs.
type LineItem struct {
	UnitPrice decimal.Decimal
	Quantity  int
}

// Totals holds the four derived money fields of a cart or order.
// All values carry exactly two fractional digits.
type Totals struct {
	ItemsPrice    decimal.Decimal `json:"items_price"`
	ShippingPrice decimal.Decimal `json:"shipping_price"`
	TaxPrice      decimal.Decimal `json:"tax_price"`
	TotalPrice    decimal.Decimal `json:"total_price"`
}

// Calculator derives cart/order totals from line items
type Calculator struct {
	freeShippingThreshold decimal.Decimal
	shippingFee           decimal.Decimal
	taxRate               decimal.Decimal
}

// NewCalculator creates a calculator from the configured pricing rules
func NewCalculator(cfg *config.Config) *Calculator {
	return &Calculator{
		freeShippingThreshold: cfg.Pricing.FreeShippingThreshold,
		shippingFee:           cfg.Pricing.ShippingFee,
		taxRate:               cfg.Pricing.TaxRate,
	}
}

// Calculate derives the four money fields from line items. Pure and
// deterministic; the result does not depend on item order. An empty item
// list yields all-zero totals, cart emptiness is the caller's concern.
//
// Shipping is free only when the items total strictly exceeds the
// threshold; a total exactly at the threshold is still charged.
func (c *Calculator) Calculate(items []LineItem) Totals {
	itemsPrice := decimal.Zero
	for _, item := range items {
		itemsPrice = itemsPrice.Add(item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	itemsPrice = round2(itemsPrice)

	shippingPrice := c.shippingFee
	if len(items) == 0 || itemsPrice.GreaterThan(c.freeShippingThreshold) {
		shippingPrice = decimal.Zero
	}
	shippingPrice = round2(shippingPrice)

	taxPrice := round2(c.taxRate.Mul(itemsPrice))

	return Totals{
		ItemsPrice:    itemsPrice,
		ShippingPrice: shippingPrice,
		TaxPrice:      taxPrice,
		TotalPrice:    round2(itemsPrice.Add(shippingPrice).Add(taxPrice)),
	}
}

// MarshalJSON serializes every money field with exactly two fractional digits
func (t Totals) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		ItemsPrice    string `json:"items_price"`
		ShippingPrice string `json:"shipping_price"`
		TaxPrice      string `json:"tax_price"`
		TotalPrice    string `json:"total_price"`
	}{
		ItemsPrice:    t.ItemsPrice.StringFixed(2),
		ShippingPrice: t.ShippingPrice.StringFixed(2),
		TaxPrice:      t.TaxPrice.StringFixed(2),
		TotalPrice:    t.TotalPrice.StringFixed(2),
	})
}

// round2 rounds to two decimal places, half away from zero
func round2(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}
