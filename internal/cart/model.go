package cart

import (
	"time"

	"github.com/shopspring/decimal"
)

type Item struct {
	LineID          string           `json:"lineId"`
	ProductID       string           `json:"productId"`
	Name            string           `json:"name"`
	Quantity        int              `json:"quantity"`
	ListPrice       decimal.Decimal  `json:"listPrice"`
	NegotiatedPrice *decimal.Decimal `json:"negotiatedPrice,omitempty"`
}

// UnitPrice is the negotiated price when one was agreed, otherwise the list price.
func (it Item) UnitPrice() decimal.Decimal {
	if it.NegotiatedPrice != nil {
		return *it.NegotiatedPrice
	}
	return it.ListPrice
}

func (it Item) LineTotal() decimal.Decimal {
	return it.UnitPrice().Mul(decimal.NewFromInt(int64(it.Quantity)))
}

type Cart struct {
	ID        string          `json:"cartId"`
	UserID    string          `json:"userId"`
	Items     []Item          `json:"items"`
	Subtotal  decimal.Decimal `json:"subtotal"`
	UpdatedAt time.Time       `json:"updatedAt"`
}

// Subtotal sums quantity × unit price over items. Checkout display and
// confirmation both go through this function.
func Subtotal(items []Item) decimal.Decimal {
	total := decimal.Zero
	for _, it := range items {
		total = total.Add(it.LineTotal())
	}
	return total
}

// CloneItems returns a deep copy so callers can't alias negotiated prices.
func CloneItems(items []Item) []Item {
	if items == nil {
		return nil
	}
	out := make([]Item, len(items))
	for i, it := range items {
		out[i] = it
		if it.NegotiatedPrice != nil {
			p := *it.NegotiatedPrice
			out[i].NegotiatedPrice = &p
		}
	}
	return out
}
