package cart

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

func TestSubtotal_UsesNegotiatedPriceWhenPresent(t *testing.T) {
	negotiated := dec(900_000)
	items := []Item{
		{ProductID: "laptop", Quantity: 2, ListPrice: dec(1_000_000), NegotiatedPrice: &negotiated},
		{ProductID: "mouse", Quantity: 3, ListPrice: dec(50_000)},
	}

	assert.True(t, dec(1_950_000).Equal(Subtotal(items)))
}

func TestSubtotal_Empty(t *testing.T) {
	assert.True(t, Subtotal(nil).IsZero())
}

func TestCloneItems_DoesNotAliasNegotiatedPrice(t *testing.T) {
	p := dec(10)
	items := []Item{{ProductID: "p1", Quantity: 1, ListPrice: dec(20), NegotiatedPrice: &p}}

	cp := CloneItems(items)
	*items[0].NegotiatedPrice = dec(5)
	items[0].Quantity = 9

	require.NotNil(t, cp[0].NegotiatedPrice)
	assert.True(t, dec(10).Equal(*cp[0].NegotiatedPrice))
	assert.Equal(t, 1, cp[0].Quantity)
}
