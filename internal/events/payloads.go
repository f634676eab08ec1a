package events

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	EventTypeOrderPlaced        = "OrderPlaced"
	EventTypeWalletCompensated  = "WalletCompensated"
	EventTypeOrderStatusChanged = "OrderStatusChanged"

	orderPlacedSchema        = "ecommerce://checkout/order-placed/v1"
	walletCompensatedSchema  = "ecommerce://checkout/wallet-compensated/v1"
	orderStatusChangedSchema = "ecommerce://orders/order-status-changed/v1"
)

type OrderPlacedItem struct {
	LineID    string          `json:"lineId"`
	ProductID string          `json:"productId"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
}

type OrderPlacedPayload struct {
	OrderID         string            `json:"orderId"`
	UserID          string            `json:"userId"`
	Total           decimal.Decimal   `json:"total"`
	WalletDeduction decimal.Decimal   `json:"walletDeduction"`
	AmountDue       decimal.Decimal   `json:"amountDue"`
	PaymentMethod   string            `json:"paymentMethod"`
	DeliveryMethod  string            `json:"deliveryMethod"`
	Status          string            `json:"status"`
	Items           []OrderPlacedItem `json:"items"`
	PlacedAt        time.Time         `json:"placedAt"`
}

type WalletCompensatedPayload struct {
	OrderID string          `json:"orderId"`
	UserID  string          `json:"userId"`
	Amount  decimal.Decimal `json:"amount"`
	Reason  string          `json:"reason"`
}

// OrderStatusChangedPayload is published by fulfilment when an order moves on.
type OrderStatusChangedPayload struct {
	OrderID string    `json:"orderId"`
	UserID  string    `json:"userId"`
	Status  string    `json:"status"`
	At      time.Time `json:"at"`
}
