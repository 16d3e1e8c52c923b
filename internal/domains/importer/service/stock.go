package service

import (
	"context"
	"fmt"

	"pos-backend/internal/domains/importer/model"
	"pos-backend/internal/domains/importer/spreadsheet"
	productrepo "pos-backend/internal/domains/product/repository"
)

// stockProcessor sets stock levels on existing products by SKU. The cell
// value is the new absolute level, not an adjustment.
type stockProcessor struct {
	products productrepo.RepositoryInterface
}

func NewStockProcessor(products productrepo.RepositoryInterface) RowProcessor {
	return &stockProcessor{products: products}
}

func (p *stockProcessor) Kind() model.ImportKind {
	return model.KindStock
}

func (p *stockProcessor) Process(ctx context.Context, row map[string]string, rowNumber int) (string, error) {
	fields := spreadsheet.StockFields

	sku := fields.Get(row, "sku")
	if sku == "" {
		return "", model.NewRowError("SKU requerido")
	}

	stock, err := spreadsheet.ParseInt(fields.Get(row, "stock"))
	if err != nil || stock < 0 {
		return "", model.NewRowError("Stock inválido")
	}

	product, err := p.products.FindBySKU(ctx, sku)
	if err != nil {
		return "", fmt.Errorf("failed to look up product: %w", err)
	}
	if product == nil {
		return "", model.NewRowError("Producto no encontrado por SKU")
	}

	if err := p.products.UpdateStock(ctx, product.ID.String(), stock); err != nil {
		return "", fmt.Errorf("failed to update stock: %w", err)
	}

	return product.ID.String(), nil
}
