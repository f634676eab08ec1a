package checkout

import (
	"time"

	"github.com/shopspring/decimal"
)

type DeliveryMethod string

const (
	PickupInStore   DeliveryMethod = "pickup_in_store"
	DoorDelivery    DeliveryMethod = "door_delivery"
	AirportDelivery DeliveryMethod = "airport_delivery"
)

var (
	doorDeliveryCost    = decimal.NewFromInt(2_500)
	airportDeliveryCost = decimal.NewFromInt(5_000)
)

// displayZone is used for order dates and the delivery window.
var displayZone = time.FixedZone("WAT", 60*60)

func (m DeliveryMethod) Valid() bool {
	switch m {
	case PickupInStore, DoorDelivery, AirportDelivery:
		return true
	default:
		return false
	}
}

// Cost is a flat rate per method; unknown methods cost nothing and are
// rejected by readiness checks.
func (m DeliveryMethod) Cost() decimal.Decimal {
	switch m {
	case DoorDelivery:
		return doorDeliveryCost
	case AirportDelivery:
		return airportDeliveryCost
	default:
		return decimal.Zero
	}
}

func (m DeliveryMethod) Label() string {
	switch m {
	case PickupInStore:
		return "Pickup in Store"
	case DoorDelivery:
		return "Door Delivery"
	case AirportDelivery:
		return "Airport Delivery"
	default:
		return string(m)
	}
}

type Window struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// DeliveryWindow is display-only (tomorrow through three days out) and is
// never stored on the order.
func DeliveryWindow(now time.Time) Window {
	local := now.In(displayZone)
	return Window{
		From: local.AddDate(0, 0, 1).Format(time.DateOnly),
		To:   local.AddDate(0, 0, 3).Format(time.DateOnly),
	}
}
