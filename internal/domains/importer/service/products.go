package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	categoryrepo "pos-backend/internal/domains/category/repository"
	"pos-backend/internal/domains/importer/model"
	"pos-backend/internal/domains/importer/spreadsheet"
	productmodel "pos-backend/internal/domains/product/model"
	productrepo "pos-backend/internal/domains/product/repository"
	"pos-backend/internal/shared/utils"
)

// productProcessor creates catalog products from spreadsheet rows.
type productProcessor struct {
	products   productrepo.RepositoryInterface
	categories categoryrepo.RepositoryInterface
}

func NewProductProcessor(products productrepo.RepositoryInterface, categories categoryrepo.RepositoryInterface) RowProcessor {
	return &productProcessor{products: products, categories: categories}
}

func (p *productProcessor) Kind() model.ImportKind {
	return model.KindProducts
}

func (p *productProcessor) Process(ctx context.Context, row map[string]string, rowNumber int) (string, error) {
	fields := spreadsheet.ProductFields

	name := fields.Get(row, "name")
	if name == "" {
		return "", model.NewRowError("Nombre requerido")
	}

	sku := fields.Get(row, "sku")
	if sku == "" {
		return "", model.NewRowError("SKU requerido")
	}

	priceRaw := fields.Get(row, "price")
	price, err := spreadsheet.ParseNumber(priceRaw)
	if err != nil || price < 0 {
		return "", model.NewRowError("Precio inválido")
	}

	exists, err := p.products.ExistsBySKU(ctx, sku)
	if err != nil {
		return "", fmt.Errorf("failed to check sku: %w", err)
	}
	if exists {
		return "", model.NewRowError("SKU ya existe")
	}

	product := &productmodel.Product{
		ID:       uuid.New(),
		Name:     name,
		SKU:      sku,
		Price:    decimal.NewFromFloat(price),
		Unit:     productmodel.DefaultUnit,
		IsActive: true,
	}

	if raw := fields.Get(row, "cost_price"); raw != "" {
		cost, err := spreadsheet.ParseNumber(raw)
		if err != nil || cost < 0 {
			return "", model.NewRowError("Precio inválido")
		}
		product.CostPrice = utils.ParseFloatToDecimal(&cost)
	}

	if raw := fields.Get(row, "stock"); raw != "" {
		stock, err := spreadsheet.ParseInt(raw)
		if err != nil || stock < 0 {
			return "", model.NewRowError("Stock inválido")
		}
		product.Stock = stock
	}

	if unit := fields.Get(row, "unit"); unit != "" {
		product.Unit = unit
	}

	if categoryName := fields.Get(row, "category"); categoryName != "" {
		category, err := p.categories.FindByNameCaseInsensitive(ctx, categoryName)
		if err != nil {
			return "", fmt.Errorf("failed to look up category: %w", err)
		}
		if category == nil {
			return "", model.NewRowError("Categoría no existe: " + categoryName)
		}
		product.CategoryID = &category.ID
	}

	if description := fields.Get(row, "description"); description != "" {
		product.Description = &description
	}
	if barcode := fields.Get(row, "barcode"); barcode != "" {
		product.Barcode = &barcode
	}
	if raw := fields.Get(row, "alert_stock"); raw != "" {
		alert, err := spreadsheet.ParseInt(raw)
		if err != nil || alert < 0 {
			return "", model.NewRowError("Stock inválido")
		}
		product.AlertStock = &alert
	}
	if weightUnit := fields.Get(row, "weight_unit"); weightUnit != "" {
		product.WeightUnit = &weightUnit
	}
	if raw := fields.Get(row, "is_active"); raw != "" {
		if active, ok := spreadsheet.ParseBool(raw); ok {
			product.IsActive = active
		}
	}

	if err := p.products.Create(ctx, product); err != nil {
		return "", fmt.Errorf("failed to create product: %w", err)
	}

	return product.ID.String(), nil
}
