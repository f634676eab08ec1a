package document

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"github.com/andreasstove999/ecommerce-system/checkout-service-go/internal/order"
)

var ErrUnknownMode = errors.New("unknown document mode")

type Mode string

const (
	ModeProformaInvoice Mode = "proforma_invoice"
	ModeSettled         Mode = "settled"
)

const (
	StatusPending       = "Pending"
	StatusPaid          = "Paid"
	StatusPartiallyPaid = "Partially Paid"
	StatusUnpaid        = "Unpaid"
)

const proformaTerm = 7 * 24 * time.Hour

// issueZone matches the zone order dates are written in.
var issueZone = time.FixedZone("WAT", 60*60)

func (m Mode) Valid() bool {
	return m == ModeProformaInvoice || m == ModeSettled
}

type Line struct {
	LineID    string          `json:"lineId"`
	Name      string          `json:"name"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
	Total     decimal.Decimal `json:"total"`
}

// Document is the invoice or receipt view of an order. It is derived on
// every request and never stored.
type Document struct {
	Number          string          `json:"number"`
	Title           string          `json:"title"`
	Mode            Mode            `json:"mode"`
	OrderID         string          `json:"orderId"`
	Status          string          `json:"status"`
	IssueDate       string          `json:"issueDate"`
	DueDate         string          `json:"dueDate"`
	BilledTo        string          `json:"billedTo"`
	ShipTo          string          `json:"shipTo"`
	DeliveryMethod  string          `json:"deliveryMethod"`
	PaymentMethod   string          `json:"paymentMethod"`
	Lines           []Line          `json:"lines"`
	Subtotal        decimal.Decimal `json:"subtotal"`
	DeliveryCost    decimal.Decimal `json:"deliveryCost"`
	Extras          decimal.Decimal `json:"extras"`
	Total           decimal.Decimal `json:"total"`
	WalletDeduction decimal.Decimal `json:"walletDeduction"`
	AmountDue       decimal.Decimal `json:"amountDue"`
	GeneratedAt     time.Time       `json:"generatedAt"`
}

// Status is a pure function of the order and the mode.
func Status(o order.Order, mode Mode) string {
	due := o.Total.Sub(o.WalletDeduction)
	switch {
	case mode == ModeProformaInvoice:
		return StatusPending
	case !due.IsPositive():
		return StatusPaid
	case o.WalletDeduction.IsPositive():
		return StatusPartiallyPaid
	default:
		return StatusUnpaid
	}
}

// Render projects an order into a document. now only stamps GeneratedAt and
// stands in for the issue date of orders written without one.
func Render(o order.Order, mode Mode, now time.Time) (Document, error) {
	if !mode.Valid() {
		return Document{}, ErrUnknownMode
	}

	issued := issueDate(o, now)
	doc := Document{
		Mode:            mode,
		OrderID:         o.ID,
		Status:          Status(o, mode),
		IssueDate:       issued.Format(time.DateOnly),
		DueDate:         issued.Format(time.DateOnly),
		BilledTo:        o.ShippingAddress.Recipient,
		ShipTo:          o.ShippingAddress.String(),
		DeliveryMethod:  o.DeliveryMethod,
		PaymentMethod:   o.PaymentMethodLabel,
		Lines:           make([]Line, 0, len(o.Items)),
		Subtotal:        o.Subtotal,
		DeliveryCost:    o.DeliveryCost,
		Extras:          o.Extras,
		Total:           o.Total,
		WalletDeduction: o.WalletDeduction,
		AmountDue:       o.AmountDue(),
		GeneratedAt:     now,
	}

	switch mode {
	case ModeProformaInvoice:
		doc.Title = "Proforma Invoice"
		doc.Number = "INV-" + o.ID
		doc.DueDate = issued.Add(proformaTerm).Format(time.DateOnly)
	case ModeSettled:
		doc.Title = "Receipt"
		doc.Number = "RCT-" + o.ID
	}

	for _, it := range o.Items {
		doc.Lines = append(doc.Lines, Line{
			LineID:    it.LineID,
			Name:      it.Name,
			Quantity:  it.Quantity,
			UnitPrice: it.UnitPrice,
			Total:     it.LineTotal(),
		})
	}
	return doc, nil
}

func issueDate(o order.Order, now time.Time) time.Time {
	if t, err := time.ParseInLocation(time.DateOnly, o.CreatedDate, issueZone); err == nil {
		return t
	}
	if !o.CreatedAt.IsZero() {
		return o.CreatedAt.In(issueZone)
	}
	return now.In(issueZone)
}
