package cart

import (
	"testing"

	"storefront/domain/product"
	"storefront/domain/shared"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newProduct(t *testing.T, id, price string, qty int) *product.Product {
	t.Helper()
	p, err := product.NewProduct(product.NewProductOptions{
		ID:          id,
		Name:        "Product " + id,
		Price:       price,
		Category:    "unisex",
		SubCategory: "shirt",
		Quantity:    qty,
	})
	require.NoError(t, err)
	return p
}

func TestAddItemCountsQuantityAlreadyInCart(t *testing.T) {
	c, err := NewCart("c1", "u1")
	require.NoError(t, err)
	p := newProduct(t, "p1", "10.00", 5)

	require.NoError(t, c.AddItem(p, 3))

	err = c.AddItem(p, 3)
	require.Error(t, err)
	assert.ErrorIs(t, err, shared.ErrInvalidInput)
	assert.Contains(t, err.Error(), "Only 2 more items can be added")

	require.NoError(t, c.AddItem(p, 2))
	assert.Equal(t, 5, c.TotalItems())
	assert.Equal(t, "50.00", c.TotalPrice().String())
}

func TestAddItemRefreshesPrice(t *testing.T) {
	c, err := NewCart("c1", "u1")
	require.NoError(t, err)
	p := newProduct(t, "p1", "10.00", 10)
	require.NoError(t, c.AddItem(p, 1))

	newPrice := "12.50"
	require.NoError(t, p.Update(product.Patch{Price: &newPrice}))
	require.NoError(t, c.AddItem(p, 1))

	items := c.Items()
	require.Len(t, items, 1)
	assert.Equal(t, "12.50", items[0].Price.String())
	assert.Equal(t, "25.00", c.TotalPrice().String())
}

func TestAddItemRejectsOutOfStock(t *testing.T) {
	c, err := NewCart("c1", "u1")
	require.NoError(t, err)
	p := newProduct(t, "p1", "10.00", 0)

	err = c.AddItem(p, 1)
	assert.Equal(t, ReasonOutOfStock, shared.ReasonOf(err))

	err = c.AddItem(newProduct(t, "p2", "1", 3), 0)
	assert.Equal(t, ReasonInvalidQuantity, shared.ReasonOf(err))
}

func TestUpdateAndRemoveItem(t *testing.T) {
	c, err := NewCart("c1", "u1")
	require.NoError(t, err)
	a := newProduct(t, "a", "3.00", 10)
	b := newProduct(t, "b", "4.00", 10)
	require.NoError(t, c.AddItem(a, 1))
	require.NoError(t, c.AddItem(b, 1))

	require.NoError(t, c.UpdateItem(a, 4))
	assert.Equal(t, "16.00", c.TotalPrice().String())

	err = c.UpdateItem(newProduct(t, "z", "1", 1), 1)
	assert.ErrorIs(t, err, shared.ErrNotFound)

	require.NoError(t, c.RemoveItem("b"))
	assert.Equal(t, "12.00", c.TotalPrice().String())
	assert.ErrorIs(t, c.RemoveItem("b"), shared.ErrNotFound)
}

func TestClearKeepsIdentity(t *testing.T) {
	c, err := NewCart("c1", "u1")
	require.NoError(t, err)
	require.NoError(t, c.AddItem(newProduct(t, "a", "3.00", 10), 2))

	c.Clear()

	assert.Equal(t, "c1", c.ID())
	assert.True(t, c.IsEmpty())
	assert.True(t, c.TotalPrice().IsZero())
}

func TestRebuildRecomputesTotal(t *testing.T) {
	c := RebuildFromDTO(ReconstructionDTO{
		ID:     "c1",
		UserID: "u1",
		Items: []Item{
			{ProductID: "a", Quantity: 2, Price: shared.MustParseMoney("1.25")},
			{ProductID: "b", Quantity: 1, Price: shared.MustParseMoney("0.50")},
		},
	})

	assert.Equal(t, "3.00", c.TotalPrice().String())
}
