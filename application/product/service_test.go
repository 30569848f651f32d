package product

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"

	"storefront/domain/product"
	"storefront/domain/shared"
	"storefront/infrastructure/persistence/memory"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var admin = shared.AdminIdentity("admin-1", "admin@example.com")

type fakeMedia struct {
	mu        sync.Mutex
	stored    map[string]string
	deleted   []string
	failNames map[string]bool
}

func newFakeMedia() *fakeMedia {
	return &fakeMedia{stored: map[string]string{}, failNames: map[string]bool{}}
}

func (m *fakeMedia) Upload(ctx context.Context, filename string, r io.Reader) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failNames[filename] {
		return "", errors.New("disk full")
	}
	body, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	url := "https://cdn.test/" + filename
	m.stored[url] = string(body)
	return url, nil
}

func (m *fakeMedia) Delete(ctx context.Context, url string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.stored, url)
	m.deleted = append(m.deleted, url)
	return nil
}

func image(name string) ImageUpload {
	return ImageUpload{Filename: name, Content: strings.NewReader("bytes of " + name)}
}

func setup(t *testing.T) (*ApplicationService, *memory.ProductRepository, *fakeMedia, *memory.OutboxRepository) {
	t.Helper()
	products := memory.NewProductRepository()
	media := newFakeMedia()
	outbox := memory.NewOutboxRepository()
	return NewApplicationService(products, media, memory.NewUnitOfWorkFactory(outbox)), products, media, outbox
}

func addRequest() AddProductRequest {
	return AddProductRequest{
		Name:        "  Logo Hoodie ",
		Description: "heavyweight",
		Price:       "45.00",
		Category:    "unisex",
		SubCategory: "hoodie",
		Quantity:    4,
	}
}

func TestAddProduct(t *testing.T) {
	svc, products, media, outbox := setup(t)
	ctx := context.Background()

	req := addRequest()
	req.Images = []ImageUpload{image("front.jpg"), image("back.jpg")}
	got, err := svc.AddProduct(ctx, admin, req)
	require.NoError(t, err)

	assert.Equal(t, "Logo Hoodie", got.Name)
	assert.Equal(t, "45.00", got.Price)
	assert.True(t, got.InStock)
	assert.False(t, got.IsOutOfStock)
	assert.Equal(t, []string{"https://cdn.test/front.jpg", "https://cdn.test/back.jpg"}, got.Images)
	assert.Len(t, media.stored, 2)

	stored, err := products.FindByID(ctx, got.ID)
	require.NoError(t, err)
	assert.Equal(t, 4, stored.Quantity())

	events := outbox.Events()
	require.Len(t, events, 1)
	assert.Equal(t, "product.added", events[0].EventType)
	assert.Equal(t, got.ID, events[0].AggregateID)
}

func TestAddProductOutOfStockIsDerived(t *testing.T) {
	svc, _, _, _ := setup(t)

	req := addRequest()
	req.Quantity = 0
	got, err := svc.AddProduct(context.Background(), admin, req)
	require.NoError(t, err)
	assert.True(t, got.InStock)
	assert.True(t, got.IsOutOfStock)
	assert.Empty(t, got.Images)
	assert.NotNil(t, got.Images)
}

func TestAddProductRequiresAdmin(t *testing.T) {
	svc, _, _, _ := setup(t)

	_, err := svc.AddProduct(context.Background(), shared.UserIdentity("u-1", "u@example.com"), addRequest())
	assert.ErrorIs(t, err, shared.ErrForbidden)

	_, err = svc.AddProduct(context.Background(), shared.Guest(), addRequest())
	assert.ErrorIs(t, err, shared.ErrUnauthorized)
}

func TestAddProductRollsBackUploads(t *testing.T) {
	svc, products, media, _ := setup(t)
	ctx := context.Background()

	media.failNames["second.jpg"] = true
	req := addRequest()
	req.Images = []ImageUpload{image("first.jpg"), image("second.jpg")}
	_, err := svc.AddProduct(ctx, admin, req)
	require.Error(t, err)
	assert.Empty(t, media.stored)
	assert.Equal(t, []string{"https://cdn.test/first.jpg"}, media.deleted)

	req = addRequest()
	req.Price = "free"
	req.Images = []ImageUpload{image("third.jpg")}
	_, err = svc.AddProduct(ctx, admin, req)
	assert.ErrorIs(t, err, shared.ErrInvalidInput)
	assert.Empty(t, media.stored)

	all, err := products.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestAddProductImageLimit(t *testing.T) {
	svc, _, media, _ := setup(t)

	req := addRequest()
	req.Images = []ImageUpload{image("1.jpg"), image("2.jpg"), image("3.jpg"), image("4.jpg")}
	_, err := svc.AddProduct(context.Background(), admin, req)
	assert.ErrorIs(t, err, shared.ErrInvalidInput)
	assert.Empty(t, media.stored)
}

func TestUpdateProductPatchAndImages(t *testing.T) {
	svc, _, media, _ := setup(t)
	ctx := context.Background()

	req := addRequest()
	req.Images = []ImageUpload{image("old.jpg")}
	created, err := svc.AddProduct(ctx, admin, req)
	require.NoError(t, err)

	qty := 0
	price := "39.99"
	media.failNames["broken.jpg"] = true
	got, err := svc.UpdateProduct(ctx, admin, created.ID, UpdateProductRequest{
		Quantity: &qty,
		Price:    &price,
		Images:   []ImageUpload{image("new.jpg"), image("broken.jpg")},
	})
	require.NoError(t, err)

	assert.Equal(t, "Logo Hoodie", got.Name)
	assert.Equal(t, "39.99", got.Price)
	assert.True(t, got.IsOutOfStock)
	assert.Equal(t, []string{"https://cdn.test/new.jpg"}, got.Images)
	assert.Equal(t, []string{"https://cdn.test/old.jpg"}, media.deleted)
}

func TestUpdateProductWithoutImagesKeepsThem(t *testing.T) {
	svc, _, media, _ := setup(t)
	ctx := context.Background()

	req := addRequest()
	req.Images = []ImageUpload{image("keep.jpg")}
	created, err := svc.AddProduct(ctx, admin, req)
	require.NoError(t, err)

	inStock := false
	got, err := svc.UpdateProduct(ctx, admin, created.ID, UpdateProductRequest{InStock: &inStock})
	require.NoError(t, err)
	assert.False(t, got.InStock)
	assert.True(t, got.IsOutOfStock)
	assert.Equal(t, []string{"https://cdn.test/keep.jpg"}, got.Images)
	assert.Empty(t, media.deleted)

	bad := "kids"
	_, err = svc.UpdateProduct(ctx, admin, created.ID, UpdateProductRequest{Category: &bad})
	assert.ErrorIs(t, err, shared.ErrInvalidInput)

	_, err = svc.UpdateProduct(ctx, admin, "missing", UpdateProductRequest{InStock: &inStock})
	assert.ErrorIs(t, err, product.ErrProductNotFound)
}

func TestDeleteProduct(t *testing.T) {
	svc, products, media, _ := setup(t)
	ctx := context.Background()

	req := addRequest()
	req.Images = []ImageUpload{image("a.jpg"), image("b.jpg")}
	created, err := svc.AddProduct(ctx, admin, req)
	require.NoError(t, err)

	deleted, err := svc.DeleteProduct(ctx, admin, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, deleted.ID)
	assert.Equal(t, "Logo Hoodie", deleted.Name)
	assert.Empty(t, media.stored)

	_, err = products.FindByID(ctx, created.ID)
	assert.ErrorIs(t, err, shared.ErrNotFound)

	_, err = svc.DeleteProduct(ctx, admin, created.ID)
	assert.ErrorIs(t, err, product.ErrProductNotFound)
}

func TestCatalogReads(t *testing.T) {
	svc, products, _, _ := setup(t)
	ctx := context.Background()

	var ids []string
	for i, cat := range []string{"men", "women", "men"} {
		req := addRequest()
		req.Name = "Item " + string(rune('A'+i))
		req.Category = cat
		got, err := svc.AddProduct(ctx, admin, req)
		require.NoError(t, err)
		ids = append(ids, got.ID)
	}
	require.NoError(t, products.DecrementStockIfAvailable(ctx, ids[1], 3))
	require.NoError(t, products.DecrementStockIfAvailable(ctx, ids[0], 1))

	all, err := svc.ListProducts(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	latest, err := svc.LatestCollection(ctx)
	require.NoError(t, err)
	require.Len(t, latest, 3)
	assert.Equal(t, ids[2], latest[0].ID)

	best, err := svc.BestSellers(ctx)
	require.NoError(t, err)
	require.Len(t, best, 3)
	assert.Equal(t, ids[1], best[0].ID)
	assert.Equal(t, 3, best[0].Sold)

	related, err := svc.RelatedProducts(ctx, "MEN")
	require.NoError(t, err)
	assert.Len(t, related, 2)

	_, err = svc.RelatedProducts(ctx, "kids")
	assert.ErrorIs(t, err, shared.ErrInvalidInput)

	one, err := svc.GetProduct(ctx, ids[1])
	require.NoError(t, err)
	assert.Equal(t, 1, one.Quantity)

	_, err = svc.GetProduct(ctx, "missing")
	assert.ErrorIs(t, err, shared.ErrNotFound)
}
