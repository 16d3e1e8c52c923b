package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Product is a catalog item. SKUs are unique across the catalog; the
// database enforces this on top of the import engine's own check.
type Product struct {
	ID          uuid.UUID        `json:"id" db:"id"`
	Name        string           `json:"name" db:"name"`
	SKU         string           `json:"sku" db:"sku"`
	Price       decimal.Decimal  `json:"price" db:"price"`
	CostPrice   *decimal.Decimal `json:"cost_price,omitempty" db:"cost_price"`
	Stock       int              `json:"stock" db:"stock"`
	Unit        string           `json:"unit" db:"unit"`
	CategoryID  *uuid.UUID       `json:"category_id,omitempty" db:"category_id"`
	Description *string          `json:"description,omitempty" db:"description"`
	Barcode     *string          `json:"barcode,omitempty" db:"barcode"`
	AlertStock  *int             `json:"alert_stock,omitempty" db:"alert_stock"`
	WeightUnit  *string          `json:"weight_unit,omitempty" db:"weight_unit"`
	IsActive    bool             `json:"is_active" db:"is_active"`
	CreatedAt   time.Time        `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at" db:"updated_at"`
}

// DefaultUnit is assigned to imported products without an explicit unit.
const DefaultUnit = "unit"
