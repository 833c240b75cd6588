package order

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/geocoder89/storefront/internal/domain/cart"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromCart(t *testing.T) {
	p1, p2 := 10.0, 2.5
	items := []cart.Item{
		{ID: "a", Quantity: 2, Price: &p1},
		{ID: "b", Quantity: 4, Price: &p2},
	}
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	o, err := FromCart("o1", items, now)
	require.NoError(t, err)

	assert.Equal(t, "o1", o.ID)
	assert.Equal(t, now, o.CreatedAt)
	require.NotNil(t, o.Total)
	assert.Equal(t, 30.0, *o.Total)
	assert.Equal(t, 6, o.ItemCount())
	require.Len(t, o.Items, 2)

	// the order owns its copy of the cart
	*items[0].Price = 99
	assert.Equal(t, 10.0, *o.Items[0].Price)

	_, err = FromCart("o2", nil, now)
	assert.ErrorIs(t, err, ErrEmptyCart)
}

func TestOrder_FreeFormPayload(t *testing.T) {
	var o Order
	require.NoError(t, json.Unmarshal([]byte(`{"_id":"p1","title":"Shirt","price":12,"quantity":1}`), &o))

	assert.Equal(t, "p1", o.ID)
	assert.Nil(t, o.Items)
	assert.Nil(t, o.Total)
	assert.Equal(t, "Shirt", o.Fields["title"])
	assert.Equal(t, float64(12), o.Fields["price"])
}

func TestOrder_RejectsUndecodableReservedFields(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{name: "items not objects", raw: `{"title":"Phone","items":["sku-1","sku-2"]}`},
		{name: "items not a list", raw: `{"items":{"_id":"a"}}`},
		{name: "createdAt not a timestamp", raw: `{"createdAt":"yesterday"}`},
		{name: "createdAt not a string", raw: `{"createdAt":12}`},
		{name: "total not a number", raw: `{"total":"n/a"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var o Order
			err := json.Unmarshal([]byte(tt.raw), &o)
			assert.ErrorIs(t, err, ErrInvalidField)
		})
	}

	var o Order
	require.NoError(t, json.Unmarshal([]byte(`{"createdAt":"2026-01-02T03:04:05Z","total":"12.5"}`), &o))
	assert.Equal(t, time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC), o.CreatedAt)
	require.NotNil(t, o.Total)
	assert.Equal(t, 12.5, *o.Total)
	assert.Empty(t, o.Fields)
}

func TestOrder_TypedItemsAndTotal(t *testing.T) {
	var o Order
	raw := `{"items":[{"_id":"a","price":2,"quantity":3}],"total":6,"note":"gift"}`
	require.NoError(t, json.Unmarshal([]byte(raw), &o))

	require.Len(t, o.Items, 1)
	assert.Equal(t, 3, o.Items[0].Quantity)
	require.NotNil(t, o.Total)
	assert.Equal(t, 6.0, *o.Total)
	assert.Equal(t, map[string]any{"note": "gift"}, o.Fields)

	out, err := json.Marshal(o)
	require.NoError(t, err)

	var back map[string]any
	require.NoError(t, json.Unmarshal(out, &back))
	assert.Equal(t, "gift", back["note"])
	assert.Equal(t, float64(6), back["total"])
	assert.Len(t, back["items"], 1)
}

func TestOrder_RejectsNonObjects(t *testing.T) {
	var o Order
	assert.Error(t, json.Unmarshal([]byte(`[1,2]`), &o))
}
