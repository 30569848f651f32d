package product

import (
	"errors"
	"testing"

	"storefront/domain/shared"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validOptions() NewProductOptions {
	return NewProductOptions{
		ID:          "p1",
		Name:        "Classic Hoodie",
		Price:       "49.99",
		Category:    "Men",
		SubCategory: "hoodie",
		Quantity:    5,
	}
}

func TestComputeOutOfStock(t *testing.T) {
	tests := []struct {
		inStock  bool
		quantity int
		want     bool
	}{
		{true, 5, false},
		{true, 0, true},
		{true, -1, true},
		{false, 5, true},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ComputeOutOfStock(tt.inStock, tt.quantity))
	}
}

func TestNewProduct(t *testing.T) {
	p, err := NewProduct(validOptions())
	require.NoError(t, err)

	assert.Equal(t, CategoryMen, p.Category())
	assert.Equal(t, "49.99", p.Price().String())
	assert.True(t, p.InStock())
	assert.False(t, p.IsOutOfStock())
	assert.Len(t, p.PullEvents(), 1)
	assert.Empty(t, p.PullEvents())
}

func TestNewProductValidation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*NewProductOptions)
		field  string
	}{
		{"missing name", func(o *NewProductOptions) { o.Name = " " }, "name"},
		{"bad price", func(o *NewProductOptions) { o.Price = "free" }, "price"},
		{"negative price", func(o *NewProductOptions) { o.Price = "-3" }, "price"},
		{"sub minor unit price", func(o *NewProductOptions) { o.Price = "19.999" }, "price"},
		{"bad category", func(o *NewProductOptions) { o.Category = "kids" }, "category"},
		{"bad sub category", func(o *NewProductOptions) { o.SubCategory = "socks" }, "subCategory"},
		{"negative quantity", func(o *NewProductOptions) { o.Quantity = -1 }, "quantity"},
		{"too many images", func(o *NewProductOptions) { o.Images = []string{"a", "b", "c", "d"} }, "images"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := validOptions()
			tt.mutate(&opts)

			_, err := NewProduct(opts)
			require.Error(t, err)
			assert.True(t, errors.Is(err, shared.ErrInvalidInput))

			var de *shared.DomainError
			require.True(t, errors.As(err, &de))
			assert.Equal(t, tt.field, de.Field)
		})
	}
}

func TestUpdateRecomputesOutOfStock(t *testing.T) {
	p, err := NewProduct(validOptions())
	require.NoError(t, err)

	zero := 0
	require.NoError(t, p.Update(Patch{Quantity: &zero}))
	assert.True(t, p.IsOutOfStock())

	ten := 10
	require.NoError(t, p.Update(Patch{Quantity: &ten}))
	assert.False(t, p.IsOutOfStock())

	off := false
	require.NoError(t, p.Update(Patch{InStock: &off}))
	assert.True(t, p.IsOutOfStock())
}

func TestPriceScale(t *testing.T) {
	opts := validOptions()
	opts.Price = "20.500"
	p, err := NewProduct(opts)
	require.NoError(t, err)
	assert.Equal(t, int64(2050), p.Price().MinorUnits())

	tooFine := "0.005"
	err = p.Update(Patch{Price: &tooFine})
	assert.True(t, errors.Is(err, shared.ErrInvalidInput))
	assert.Equal(t, int64(2050), p.Price().MinorUnits(), "rejected patch leaves the price")

	exact := "19.99"
	require.NoError(t, p.Update(Patch{Price: &exact}))
	assert.Equal(t, "19.99", p.Price().String())
}

func TestApplyStockDelta(t *testing.T) {
	p, err := NewProduct(validOptions())
	require.NoError(t, err)

	p.ApplyStockDelta(5)
	assert.Equal(t, 0, p.Quantity())
	assert.Equal(t, 5, p.Sold())
	assert.True(t, p.IsOutOfStock())

	p.ApplyStockDelta(-2)
	assert.Equal(t, 2, p.Quantity())
	assert.Equal(t, 3, p.Sold())
	assert.False(t, p.IsOutOfStock())
}

func TestReplaceImages(t *testing.T) {
	opts := validOptions()
	opts.Images = []string{"old1", "old2"}
	p, err := NewProduct(opts)
	require.NoError(t, err)

	old, err := p.ReplaceImages([]string{"new1"})
	require.NoError(t, err)
	assert.Equal(t, []string{"old1", "old2"}, old)
	assert.Equal(t, []string{"new1"}, p.Images())
}

func TestStockErrorsMatchSentinels(t *testing.T) {
	err := NewInsufficientStockError("p1", 3)
	assert.ErrorIs(t, err, ErrInsufficientStock)
	assert.ErrorIs(t, err, shared.ErrConflict)
	assert.Equal(t, ReasonInsufficientStock, shared.ReasonOf(err))

	nf := NewProductNotFoundError("p9")
	assert.ErrorIs(t, nf, ErrProductNotFound)
	assert.ErrorIs(t, nf, shared.ErrNotFound)
	assert.Equal(t, "Product with ID p9 not found", nf.Error())
}
