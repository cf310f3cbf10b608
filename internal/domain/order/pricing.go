package order

import (
	"github.com/shopspring/decimal"

	"github.com/orgalife/storefront/internal/domain/discount"
)

var hundred = decimal.NewFromInt(100)

// Quote is the server-computed pricing breakdown for a set of order items.
type Quote struct {
	Subtotal int64
	Discount int64
	Total    int64
}

// ComputeQuote calculates the subtotal, discount amount, and final total for
// the given items. The discount may be nil, meaning no code was supplied.
//
// The discount amount is round-half-up(subtotal * percent / 100), applied
// once to whole currency units rather than per item. The total is floored at
// zero.
func ComputeQuote(items []Item, d *discount.Discount) Quote {
	var subtotal int64
	for _, it := range items {
		subtotal += it.Price * int64(it.Quantity)
	}

	var amount int64
	if d != nil {
		// decimal.Round rounds half away from zero, which is round-half-up
		// for the non-negative amounts involved here.
		amount = decimal.NewFromInt(subtotal).
			Mul(decimal.NewFromInt(int64(d.Percent))).
			Div(hundred).
			Round(0).
			IntPart()
	}

	total := subtotal - amount
	if total < 0 {
		total = 0
	}

	return Quote{
		Subtotal: subtotal,
		Discount: amount,
		Total:    total,
	}
}
