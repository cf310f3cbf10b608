package order

import "github.com/orgalife/storefront/internal/domain/product"

// Submission is a raw order submission after decoding, before normalization.
// Client-supplied prices and totals are advisory only; the pipeline recomputes
// everything against the live catalog.
type Submission struct {
	CustomerName    string
	CustomerPhone   string
	CustomerAddress string
	Items           []SubmittedItem
	DiscountCode    string
}

// SubmittedItem is a single line item reference from a client submission.
// Only ID is required; the remaining fields are used as a fallback when the
// referenced product no longer exists.
type SubmittedItem struct {
	ID          string
	Name        string
	Price       int64
	Image       string
	Category    string
	Description string
	Quantity    int
}

// Normalize resolves submitted items against the catalog snapshot and emits
// denormalized order items in submission order.
//
// Items whose id is present in the catalog take the authoritative product
// name, price, image, category and description; any client-sent values are
// ignored. Items referencing a deleted or unknown product keep the
// client-supplied fields verbatim so the order remains creatable. Quantity
// defaults to 1 in both paths.
func Normalize(items []SubmittedItem, catalog map[string]product.Product) []Item {
	out := make([]Item, len(items))
	for i, it := range items {
		qty := it.Quantity
		if qty < 1 {
			qty = 1
		}

		if p, ok := catalog[it.ID]; ok {
			out[i] = Item{
				ID:          p.ID,
				Name:        p.Name,
				Price:       p.Price,
				Image:       p.Image,
				Category:    p.Category,
				Description: p.Description,
				Quantity:    qty,
			}
			continue
		}

		out[i] = Item{
			ID:          it.ID,
			Name:        it.Name,
			Price:       it.Price,
			Image:       it.Image,
			Category:    it.Category,
			Description: it.Description,
			Quantity:    qty,
		}
	}
	return out
}
