package order

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeOrders_UpgradesLegacyItems(t *testing.T) {
	raw := []byte(`[{
		"id": "ORD-1",
		"createdDate": "2024-05-01",
		"createdTime": "08:15",
		"total": 97500,
		"items": [
			{"id": "p1", "name": "Speaker", "price": 45000},
			{"id": "p2", "name": "Cable", "price": 2500, "quantity": 3}
		]
	}]`)

	orders, err := decodeOrders(1, raw)
	require.NoError(t, err)
	require.Len(t, orders, 1)

	o := orders[0]
	require.Len(t, o.Items, 2)
	assert.Equal(t, "ORD-1-1", o.Items[0].LineID)
	assert.Equal(t, "ORD-1-2", o.Items[1].LineID)
	assert.Equal(t, "p1", o.Items[0].ProductID)
	assert.Equal(t, 1, o.Items[0].Quantity)
	assert.Equal(t, 3, o.Items[1].Quantity)
	assert.True(t, dec(45_000).Equal(o.Items[0].UnitPrice))
	assert.True(t, dec(52_500).Equal(o.Subtotal))
	assert.True(t, dec(45_000).Equal(o.DeliveryCost))
	want := time.Date(2024, 5, 1, 7, 15, 0, 0, time.UTC)
	assert.True(t, want.Equal(o.CreatedAt), "createdAt %s", o.CreatedAt)
	require.NoError(t, o.Validate())
}

func TestDecodeOrders_LineIDsAreStableAcrossReads(t *testing.T) {
	raw := []byte(`[{"id":"ORD-9","total":10,"items":[{"id":"p","price":10}]}]`)

	first, err := decodeOrders(1, raw)
	require.NoError(t, err)
	second, err := decodeOrders(1, raw)
	require.NoError(t, err)

	assert.Equal(t, first[0].Items[0].LineID, second[0].Items[0].LineID)
}

func TestDecodeOrders_CurrentVersionRoundTrip(t *testing.T) {
	o := sampleOrder("ORD-2")
	raw, err := json.Marshal([]Order{o})
	require.NoError(t, err)

	orders, err := decodeOrders(SchemaVersion, raw)
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, o.Items[1].LineID, orders[0].Items[1].LineID)
	assert.Equal(t, 2, orders[0].Items[1].Quantity)
	assert.True(t, o.Total.Equal(orders[0].Total))
	assert.True(t, o.WalletDeduction.Equal(orders[0].WalletDeduction))
	require.NoError(t, orders[0].Validate())
}

func TestDecodeOrders_Rejects(t *testing.T) {
	_, err := decodeOrders(SchemaVersion, []byte(`{"not":"an array"}`))
	require.Error(t, err)

	_, err = decodeOrders(SchemaVersion+1, []byte(`[]`))
	require.Error(t, err)

	_, err = decodeOrders(0, []byte(`[]`))
	require.Error(t, err)
}

func TestBootstrapFixtureIsNormalizedAndValid(t *testing.T) {
	orders, err := Bootstrap("user-7")
	require.NoError(t, err)
	require.NotEmpty(t, orders)

	seen := map[string]bool{}
	for _, o := range orders {
		assert.Equal(t, "user-7", o.UserID)
		assert.False(t, seen[o.ID], "duplicate fixture id %s", o.ID)
		seen[o.ID] = true
		require.NoError(t, o.Validate(), o.ID)
	}
}
