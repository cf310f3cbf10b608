package order

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/orgalife/storefront/internal/domain/product"
)

func TestNormalize(t *testing.T) {
	catalog := map[string]product.Product{
		"honey": {
			ID:          "honey",
			Name:        "Natural Honey",
			Price:       650,
			Image:       "honey.jpg",
			Category:    "Honey",
			Description: "Raw honey",
		},
	}

	t.Run("catalog item is authoritative", func(t *testing.T) {
		got := Normalize([]SubmittedItem{
			{ID: "honey", Name: "Hacked Honey", Price: 1, Quantity: 2},
		}, catalog)

		assert.Equal(t, []Item{{
			ID:          "honey",
			Name:        "Natural Honey",
			Price:       650,
			Image:       "honey.jpg",
			Category:    "Honey",
			Description: "Raw honey",
			Quantity:    2,
		}}, got)
	})

	t.Run("unknown item keeps client fields", func(t *testing.T) {
		got := Normalize([]SubmittedItem{
			{ID: "gone", Name: "Old Product", Price: 250, Quantity: 1},
		}, catalog)

		assert.Equal(t, []Item{{
			ID:       "gone",
			Name:     "Old Product",
			Price:    250,
			Quantity: 1,
		}}, got)
	})

	t.Run("quantity defaults to one", func(t *testing.T) {
		got := Normalize([]SubmittedItem{
			{ID: "honey", Quantity: 0},
			{ID: "gone", Quantity: -3},
		}, catalog)

		assert.Equal(t, 1, got[0].Quantity)
		assert.Equal(t, 1, got[1].Quantity)
	})

	t.Run("preserves submission order", func(t *testing.T) {
		got := Normalize([]SubmittedItem{
			{ID: "b", Quantity: 1},
			{ID: "honey", Quantity: 1},
			{ID: "a", Quantity: 1},
		}, catalog)

		assert.Equal(t, "b", got[0].ID)
		assert.Equal(t, "honey", got[1].ID)
		assert.Equal(t, "a", got[2].ID)
	})
}
