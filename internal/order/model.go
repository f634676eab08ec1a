package order

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

type Item struct {
	LineID    string          `json:"lineId"`
	ProductID string          `json:"productId"`
	Name      string          `json:"name"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
}

func (it Item) LineTotal() decimal.Decimal {
	return it.UnitPrice.Mul(decimal.NewFromInt(int64(it.Quantity)))
}

// ShippingAddress is the address frozen onto the order at confirmation.
type ShippingAddress struct {
	Recipient string `json:"recipient"`
	Phone     string `json:"phone,omitempty"`
	Line1     string `json:"line1"`
	City      string `json:"city"`
	State     string `json:"state,omitempty"`
}

func (a ShippingAddress) String() string {
	s := a.Line1 + ", " + a.City
	if a.State != "" {
		s += ", " + a.State
	}
	return s
}

type Order struct {
	ID                 string          `json:"id"`
	UserID             string          `json:"userId"`
	CreatedDate        string          `json:"createdDate"`
	CreatedTime        string          `json:"createdTime"`
	CreatedAt          time.Time       `json:"createdAt"`
	Subtotal           decimal.Decimal `json:"subtotal"`
	DeliveryMethod     string          `json:"deliveryMethod"`
	DeliveryCost       decimal.Decimal `json:"deliveryCost"`
	Extras             decimal.Decimal `json:"extras"`
	Total              decimal.Decimal `json:"total"`
	Status             Status          `json:"status"`
	PaymentMethod      string          `json:"paymentMethod"`
	PaymentMethodLabel string          `json:"paymentMethodLabel"`
	ShippingAddress    ShippingAddress `json:"shippingAddress"`
	Items              []Item          `json:"items"`
	WalletDeduction    decimal.Decimal `json:"walletDeduction"`
}

// AmountDue is what remains after the wallet deduction; never negative.
func (o Order) AmountDue() decimal.Decimal {
	due := o.Total.Sub(o.WalletDeduction)
	if due.IsNegative() {
		return decimal.Zero
	}
	return due
}

func (o Order) Clone() Order {
	cp := o
	if o.Items != nil {
		cp.Items = make([]Item, len(o.Items))
		copy(cp.Items, o.Items)
	}
	return cp
}

func ItemsSubtotal(items []Item) decimal.Decimal {
	total := decimal.Zero
	for _, it := range items {
		total = total.Add(it.LineTotal())
	}
	return total
}

// Validate checks the persisted-order invariants.
func (o Order) Validate() error {
	if o.ID == "" {
		return fmt.Errorf("%w: missing id", ErrInvalidOrder)
	}
	for _, it := range o.Items {
		if it.LineID == "" {
			return fmt.Errorf("%w: item without lineId", ErrInvalidOrder)
		}
		if it.Quantity < 1 {
			return fmt.Errorf("%w: line %s has quantity %d", ErrInvalidOrder, it.LineID, it.Quantity)
		}
	}
	if sub := ItemsSubtotal(o.Items); !sub.Equal(o.Subtotal) {
		return fmt.Errorf("%w: subtotal %s does not match items %s", ErrInvalidOrder, o.Subtotal, sub)
	}
	if want := o.Subtotal.Add(o.DeliveryCost).Add(o.Extras); !want.Equal(o.Total) {
		return fmt.Errorf("%w: total %s != subtotal+delivery+extras %s", ErrInvalidOrder, o.Total, want)
	}
	if o.WalletDeduction.IsNegative() || o.WalletDeduction.GreaterThan(o.Total) {
		return fmt.Errorf("%w: wallet deduction %s outside [0, %s]", ErrInvalidOrder, o.WalletDeduction, o.Total)
	}
	return nil
}
