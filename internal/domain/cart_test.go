package domain

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/currency"
)

func sampleCart() Cart {
	return Cart{
		{Product: Product{ID: 1, Title: "Sneaker", Price: decimal.RequireFromString("179.90")}, Amount: 2},
		{Product: Product{ID: 2, Title: "Running shoe", Price: decimal.RequireFromString("139.90")}, Amount: 1},
		{Product: Product{ID: 3, Title: "Boot", Price: decimal.RequireFromString("99.90")}, Amount: 3},
	}
}

func TestCart_Find(t *testing.T) {
	cart := sampleCart()

	item, ok := cart.Find(2)
	require.True(t, ok)
	assert.Equal(t, "Running shoe", item.Title)

	_, ok = cart.Find(42)
	assert.False(t, ok)
}

func TestCart_Without_KeepsOrder(t *testing.T) {
	cart := sampleCart()

	out := cart.Without(2)
	require.Len(t, out, 2)
	assert.Equal(t, int64(1), out[0].ID)
	assert.Equal(t, int64(3), out[1].ID)
	// receiver untouched
	assert.Len(t, cart, 3)
}

func TestCart_WithAmount_InPlace(t *testing.T) {
	cart := sampleCart()

	out := cart.WithAmount(2, 5)
	assert.Equal(t, 5, out[1].Amount)
	assert.Equal(t, cart[0], out[0])
	assert.Equal(t, cart[2], out[2])
	assert.Equal(t, 1, cart[1].Amount)
}

func TestCart_WithAmount_UnknownID(t *testing.T) {
	cart := sampleCart()
	assert.Equal(t, cart, cart.WithAmount(42, 5))
}

func TestCart_Append(t *testing.T) {
	var cart Cart
	out := cart.Append(CartItem{Product: Product{ID: 9}, Amount: 1})
	require.Len(t, out, 1)
	assert.Nil(t, cart)
}

func TestCart_Total(t *testing.T) {
	cart := sampleCart()
	// 2*179.90 + 139.90 + 3*99.90
	assert.True(t, decimal.RequireFromString("799.40").Equal(cart.Total()), cart.Total().String())
	assert.True(t, decimal.Zero.Equal(Cart{}.Total()))
}

func TestCart_EmptyCloneEncodesAsArray(t *testing.T) {
	var cart Cart
	data, err := json.Marshal(cart.Clone())
	require.NoError(t, err)
	assert.Equal(t, "[]", string(data))
}

func TestCartItem_JSONFlattensProduct(t *testing.T) {
	item := CartItem{Product: Product{ID: 7, Title: "Sandal", Price: decimal.RequireFromString("59.9"), Image: "sandal.png"}, Amount: 4}

	data, err := json.Marshal(item)
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.Equal(t, float64(7), raw["id"])
	assert.Equal(t, "Sandal", raw["title"])
	assert.Equal(t, "sandal.png", raw["image"])
	assert.Equal(t, float64(4), raw["amount"])
}

func TestProduct_PriceFromJSONNumber(t *testing.T) {
	var p Product
	require.NoError(t, json.Unmarshal([]byte(`{"id":1,"title":"Sneaker","price":179.9,"image":"a.png"}`), &p))
	assert.True(t, decimal.RequireFromString("179.9").Equal(p.Price))
}

func TestStock_Allows(t *testing.T) {
	s := Stock{ID: 1, Amount: 5}
	assert.True(t, s.Allows(5))
	assert.False(t, s.Allows(6))
}

func TestFormatPrice(t *testing.T) {
	out := FormatPrice(decimal.RequireFromString("179.9"), currency.USD)
	assert.Contains(t, out, "179")
}
