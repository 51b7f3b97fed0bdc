package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/smallbiznis/kasira/internal/catalog/domain"
	"github.com/smallbiznis/kasira/internal/catalog/repository"
)

func newService(t *testing.T) domain.Service {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&domain.Product{}))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	return New(Params{
		DB:    db,
		Log:   zap.NewNop(),
		GenID: node,
		Repo:  repository.Provide(),
	})
}

func TestCreateProduct(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	product, err := svc.Create(ctx, domain.CreateProductRequest{
		SKU:   "COF-001",
		Name:  "Coffee",
		Price: "12.00",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1200), product.PriceCents)
	assert.True(t, product.Active)

	got, err := svc.GetByID(ctx, domain.GetProductRequest{ID: product.ID.String()})
	require.NoError(t, err)
	assert.Equal(t, "Coffee", got.Name)
}

func TestCreateProductValidation(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, domain.CreateProductRequest{SKU: "", Name: "Coffee", Price: "12.00"})
	assert.ErrorIs(t, err, domain.ErrInvalidSKU)

	_, err = svc.Create(ctx, domain.CreateProductRequest{SKU: "COF-001", Name: "  ", Price: "12.00"})
	assert.ErrorIs(t, err, domain.ErrInvalidName)

	_, err = svc.Create(ctx, domain.CreateProductRequest{SKU: "COF-001", Name: "Coffee", Price: "-1.00"})
	assert.ErrorIs(t, err, domain.ErrInvalidPrice)

	_, err = svc.Create(ctx, domain.CreateProductRequest{SKU: "COF-001", Name: "Coffee", Price: "abc"})
	assert.ErrorIs(t, err, domain.ErrInvalidPrice)
}

func TestCreateProductDuplicateSKU(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, domain.CreateProductRequest{SKU: "COF-001", Name: "Coffee", Price: "12.00"})
	require.NoError(t, err)

	_, err = svc.Create(ctx, domain.CreateProductRequest{SKU: "COF-001", Name: "Other Coffee", Price: "13.00"})
	assert.ErrorIs(t, err, domain.ErrInvalidSKU)
}

func TestGetProductUnknownID(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	_, err := svc.GetByID(ctx, domain.GetProductRequest{ID: "987654321"})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = svc.GetByID(ctx, domain.GetProductRequest{ID: "not-a-number"})
	assert.ErrorIs(t, err, domain.ErrInvalidID)
}

func TestListProductsPagination(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		_, err := svc.Create(ctx, domain.CreateProductRequest{
			SKU:   fmt.Sprintf("SKU-%03d", i),
			Name:  fmt.Sprintf("Product %d", i),
			Price: "10.00",
		})
		require.NoError(t, err)
	}

	first, err := svc.List(ctx, domain.ListProductRequest{PageSize: 3})
	require.NoError(t, err)
	assert.Len(t, first.Products, 3)
	assert.True(t, first.HasMore)
	require.NotEmpty(t, first.NextPageToken)

	second, err := svc.List(ctx, domain.ListProductRequest{PageSize: 3, PageToken: first.NextPageToken})
	require.NoError(t, err)
	assert.Len(t, second.Products, 2)
	assert.False(t, second.HasMore)

	seen := map[string]bool{}
	for _, p := range append(first.Products, second.Products...) {
		assert.False(t, seen[p.SKU], "sku %s returned twice", p.SKU)
		seen[p.SKU] = true
	}
}
