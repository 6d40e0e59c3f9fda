package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/Sarbjeetmaan/backend/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newProduct(sku string) *domain.Product {
	return &domain.Product{SKU: sku, Name: "Kurta " + sku, Category: "Men", Price: decimal.RequireFromString("499.00")}
}

func TestProductAdminOperations(t *testing.T) {
	uc := NewProductUseCase(newMemoryProductRepo(), testLogger())
	ctx := context.Background()

	_, err := uc.CreateProduct(ctx, asha, newProduct("K-1"))
	assert.True(t, errors.Is(err, domain.ErrUnauthorized))

	created, err := uc.CreateProduct(ctx, admin, newProduct("K-1"))
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)

	_, err = uc.CreateProduct(ctx, admin, newProduct("K-1"))
	assert.True(t, errors.Is(err, domain.ErrConflict))

	newPrice := decimal.RequireFromString("549.50")
	updated, err := uc.UpdateProduct(ctx, admin, created.ID, domain.ProductUpdate{Price: &newPrice})
	require.NoError(t, err)
	assert.True(t, updated.Price.Equal(newPrice))
	assert.Equal(t, created.Name, updated.Name)

	_, err = uc.UpdateProduct(ctx, asha, created.ID, domain.ProductUpdate{Price: &newPrice})
	assert.True(t, errors.Is(err, domain.ErrUnauthorized))

	_, err = uc.UpdateProduct(ctx, admin, created.ID, domain.ProductUpdate{})
	assert.True(t, errors.Is(err, domain.ErrValidation))

	zero := decimal.Zero
	_, err = uc.UpdateProduct(ctx, admin, created.ID, domain.ProductUpdate{Price: &zero})
	assert.True(t, errors.Is(err, domain.ErrValidation))

	got, err := uc.GetProduct(ctx, created.ID)
	require.NoError(t, err)
	assert.True(t, got.Price.Equal(newPrice))

	assert.True(t, errors.Is(uc.DeleteProduct(ctx, asha, created.ID), domain.ErrUnauthorized))
	require.NoError(t, uc.DeleteProduct(ctx, admin, created.ID))
	_, err = uc.GetProduct(ctx, created.ID)
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestCreateProductValidation(t *testing.T) {
	uc := NewProductUseCase(newMemoryProductRepo(), testLogger())

	noName := newProduct("K-2")
	noName.Name = " "
	_, err := uc.CreateProduct(context.Background(), admin, noName)
	assert.True(t, errors.Is(err, domain.ErrValidation))

	noSKU := newProduct("")
	_, err = uc.CreateProduct(context.Background(), admin, noSKU)
	assert.True(t, errors.Is(err, domain.ErrValidation))

	free := newProduct("K-3")
	free.Price = decimal.Zero
	_, err = uc.CreateProduct(context.Background(), admin, free)
	assert.True(t, errors.Is(err, domain.ErrValidation))

	fractional := newProduct("K-4")
	fractional.Price = decimal.RequireFromString("499.999")
	_, err = uc.CreateProduct(context.Background(), admin, fractional)
	assert.True(t, errors.Is(err, domain.ErrValidation))
}

func TestListProductsByCategory(t *testing.T) {
	uc := NewProductUseCase(newMemoryProductRepo(), testLogger())
	ctx := context.Background()
	_, err := uc.CreateProduct(ctx, admin, newProduct("K-1"))
	require.NoError(t, err)
	women := newProduct("S-1")
	women.Category = "Women"
	_, err = uc.CreateProduct(ctx, admin, women)
	require.NoError(t, err)

	all, err := uc.ListProducts(ctx, "", 0, 0)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	filtered, err := uc.ListProducts(ctx, " women ", 0, 0)
	require.NoError(t, err)
	require.Len(t, filtered, 1)
	assert.Equal(t, "S-1", filtered[0].SKU)
}
