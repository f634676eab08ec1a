package order

type Status string

const (
	StatusProcessing      Status = "processing"
	StatusAwaitingPayment Status = "awaiting_payment"
	StatusShipped         Status = "shipped"
	StatusDelivered       Status = "delivered"
	StatusCancelled       Status = "cancelled"
)

func (s Status) Valid() bool {
	switch s {
	case StatusProcessing, StatusAwaitingPayment, StatusShipped, StatusDelivered, StatusCancelled:
		return true
	default:
		return false
	}
}
