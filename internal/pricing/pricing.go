// Package pricing derives cart totals. It is pure: no I/O, no clock,
// identical lines always produce identical totals.
package pricing

import (
	"fmt"
	"math"

	"shop-client/internal/domain"
)

// Config carries the pricing knobs. The tax rate is deliberately a
// parameter: the product uses different rates on different surfaces
// (5% in checkout, 18% on the display-only summary) and which one is
// authoritative is a product decision, not ours.
type Config struct {
	FreeDeliveryThreshold int64
	FlatDeliveryFee       int64
	TaxRate               float64
}

func DefaultConfig() Config {
	return Config{
		FreeDeliveryThreshold: 500,
		FlatDeliveryFee:       30,
		TaxRate:               0.05,
	}
}

type Totals struct {
	Subtotal    int64 `json:"subtotal"`
	DeliveryFee int64 `json:"deliveryFee"`
	Tax         int64 `json:"tax"`
	Total       int64 `json:"total"`
}

// ComputeTotals derives subtotal, delivery fee, tax and grand total from
// the given lines. Negative prices or quantities and a non-finite tax rate
// are caller contract violations and panic.
func ComputeTotals(lines []domain.CartLine, cfg Config) Totals {
	if math.IsNaN(cfg.TaxRate) || math.IsInf(cfg.TaxRate, 0) || cfg.TaxRate < 0 {
		panic(fmt.Sprintf("pricing: invalid tax rate %v", cfg.TaxRate))
	}

	var t Totals
	for _, l := range lines {
		if l.UnitPrice < 0 || l.Quantity < 0 {
			panic(fmt.Sprintf("pricing: negative input for product %q", l.ProductID))
		}
		t.Subtotal += l.UnitPrice * l.Quantity
	}

	if t.Subtotal > 0 && t.Subtotal < cfg.FreeDeliveryThreshold {
		t.DeliveryFee = cfg.FlatDeliveryFee
	}
	t.Tax = int64(math.Round(float64(t.Subtotal) * cfg.TaxRate))
	t.Total = t.Subtotal + t.DeliveryFee + t.Tax
	return t
}
