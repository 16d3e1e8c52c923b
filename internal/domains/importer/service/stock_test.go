package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pos-backend/internal/domains/importer/model"
	productmodel "pos-backend/internal/domains/product/model"
)

func seedProduct(repo *fakeProductRepo, sku string, stock int) *productmodel.Product {
	product := &productmodel.Product{ID: uuid.New(), Name: sku, SKU: sku, Stock: stock}
	repo.bySKU[sku] = product
	return product
}

func TestStockProcessorSetsAbsoluteLevel(t *testing.T) {
	products := newFakeProductRepo()
	product := seedProduct(products, "CC-500", 5)
	processor := NewStockProcessor(products)

	id, err := processor.Process(context.Background(), map[string]string{
		"sku":   "CC-500",
		"stock": "42",
	}, 2)
	require.NoError(t, err)
	assert.Equal(t, product.ID.String(), id)
	assert.Equal(t, 42, products.bySKU["CC-500"].Stock)
}

func TestStockProcessorRequiresSKU(t *testing.T) {
	processor := NewStockProcessor(newFakeProductRepo())

	_, err := processor.Process(context.Background(), map[string]string{"stock": "10"}, 2)
	require.Error(t, err)
	assert.True(t, model.IsRowError(err))
	assert.Equal(t, "SKU requerido", err.Error())
}

func TestStockProcessorRejectsInvalidStock(t *testing.T) {
	products := newFakeProductRepo()
	seedProduct(products, "CC-500", 5)
	processor := NewStockProcessor(products)

	for _, stock := range []string{"", "diez", "-1", "3,5"} {
		_, err := processor.Process(context.Background(), map[string]string{
			"sku":   "CC-500",
			"stock": stock,
		}, 2)
		require.Error(t, err, "stock %q", stock)
		assert.Equal(t, "Stock inválido", err.Error())
	}
}

func TestStockProcessorUnknownSKU(t *testing.T) {
	processor := NewStockProcessor(newFakeProductRepo())

	_, err := processor.Process(context.Background(), map[string]string{
		"sku":   "NOPE-1",
		"stock": "10",
	}, 2)
	require.Error(t, err)
	assert.True(t, model.IsRowError(err))
	assert.Equal(t, "Producto no encontrado por SKU", err.Error())
}

func TestStockProcessorAcceptsSpanishHeaders(t *testing.T) {
	products := newFakeProductRepo()
	seedProduct(products, "PAN-01", 0)
	processor := NewStockProcessor(products)

	_, err := processor.Process(context.Background(), map[string]string{
		"codigo":   "PAN-01",
		"cantidad": "7",
	}, 2)
	require.NoError(t, err)
	assert.Equal(t, 7, products.bySKU["PAN-01"].Stock)
}
