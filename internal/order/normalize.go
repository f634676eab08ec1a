package order

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// SchemaVersion is the order-book layout written by this service.
//
//	1: items keyed by product "id" with "price", no lineId, quantity optional,
//	   delivery folded into total
//	2: current layout
const SchemaVersion = 2

// legacyZone is the zone createdDate and createdTime were written in.
var legacyZone = time.FixedZone("WAT", 60*60)

type storedItem struct {
	LineID    string           `json:"lineId"`
	ProductID string           `json:"productId"`
	LegacyID  string           `json:"id"`
	Name      string           `json:"name"`
	Quantity  *int             `json:"quantity"`
	UnitPrice *decimal.Decimal `json:"unitPrice"`
	Price     *decimal.Decimal `json:"price"`
}

type storedOrder struct {
	Order
	Items []storedItem `json:"items"`
}

var upgrades = map[int]func(*storedOrder){
	1: upgradeFromV1,
}

// decodeOrders parses an order book stored at the given schema version and
// runs every upgrade step up to SchemaVersion.
func decodeOrders(version int, raw []byte) ([]Order, error) {
	if version < 1 || version > SchemaVersion {
		return nil, fmt.Errorf("unsupported order book schema version %d", version)
	}

	var stored []storedOrder
	if err := json.Unmarshal(raw, &stored); err != nil {
		return nil, fmt.Errorf("decode order book: %w", err)
	}

	out := make([]Order, 0, len(stored))
	for i := range stored {
		so := &stored[i]
		for v := version; v < SchemaVersion; v++ {
			upgrades[v](so)
		}
		out = append(out, so.toOrder())
	}
	return out, nil
}

func upgradeFromV1(so *storedOrder) {
	for i := range so.Items {
		it := &so.Items[i]
		if it.LineID == "" {
			it.LineID = fmt.Sprintf("%s-%d", so.ID, i+1)
		}
		if it.ProductID == "" {
			it.ProductID = it.LegacyID
		}
		if it.Quantity == nil || *it.Quantity < 1 {
			q := 1
			it.Quantity = &q
		}
		if it.UnitPrice == nil && it.Price != nil {
			p := *it.Price
			it.UnitPrice = &p
		}
	}

	items := so.toOrder().Items
	if so.Subtotal.IsZero() {
		so.Subtotal = ItemsSubtotal(items)
	}
	if so.DeliveryCost.IsZero() && so.Extras.IsZero() && so.Total.GreaterThan(so.Subtotal) {
		so.DeliveryCost = so.Total.Sub(so.Subtotal)
	}
	if so.CreatedAt.IsZero() {
		if t, err := time.ParseInLocation("2006-01-02 15:04", so.CreatedDate+" "+so.CreatedTime, legacyZone); err == nil {
			so.CreatedAt = t.UTC()
		}
	}
}

func (so storedOrder) toOrder() Order {
	o := so.Order
	o.Items = make([]Item, 0, len(so.Items))
	for _, it := range so.Items {
		item := Item{LineID: it.LineID, ProductID: it.ProductID, Name: it.Name}
		if it.Quantity != nil {
			item.Quantity = *it.Quantity
		}
		if it.UnitPrice != nil {
			item.UnitPrice = *it.UnitPrice
		}
		o.Items = append(o.Items, item)
	}
	return o
}
