package models

import "time"

// LowStockThreshold is the stock level below which a product or variant is low on stock.
const LowStockThreshold = 10

// Product represents a product in the catalog.
type Product struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	Description string      `json:"description,omitempty"`
	Price       float64     `json:"price"`
	Stock       int         `json:"stock"`
	Category    CategoryRef `json:"category"`
	Variants    []Variant   `json:"variants"`
	Discount    float64     `json:"discount"`
	CreatedAt   time.Time   `json:"createdAt"`
	UpdatedAt   time.Time   `json:"updatedAt"`
}

// CategoryRef references the category of a product. Name is filled in when the
// category is resolved and stays empty when the reference dangles.
type CategoryRef struct {
	ID   string `json:"id"`
	Name string `json:"name,omitempty"`
}

// Variant is a product configuration owned by its product. It has no identity of its own.
type Variant struct {
	Color string  `json:"color,omitempty"`
	Size  string  `json:"size,omitempty"`
	Price float64 `json:"price"`
	Stock int     `json:"stock"`
}

// IsLowStock reports whether the product or any of its variants is below LowStockThreshold.
func (p Product) IsLowStock() bool {
	if p.Stock < LowStockThreshold {
		return true
	}
	for _, v := range p.Variants {
		if v.Stock < LowStockThreshold {
			return true
		}
	}
	return false
}

// ProductUpdate carries the fields of a product update. Nil pointers and a nil
// Variants slice keep the stored values; a non-nil Variants replaces the sequence.
type ProductUpdate struct {
	Name        string
	Description *string
	Price       float64
	Stock       *int
	CategoryID  string
	Variants    []Variant
	Discount    *float64
}

// ProductFilter narrows a product search. Empty fields do not filter.
type ProductFilter struct {
	Query      string // case-insensitive substring of the name
	CategoryID string
}

// ProductInput is the request body for creating or updating a product.
type ProductInput struct {
	Name        string         `json:"name" validate:"required"`
	Description *string        `json:"description" validate:"omitnil,nonempty"`
	Price       *float64       `json:"price" validate:"required,gt=0"`
	Stock       *int           `json:"stock" validate:"omitempty,gte=0"`
	Category    string         `json:"category" validate:"required,len=24,objectid"`
	Variants    []VariantInput `json:"variants" validate:"omitempty,dive"`
	Discount    *float64       `json:"discount" validate:"omitempty,gte=0,lte=100"`
}

// VariantInput is a variant inside a ProductInput.
type VariantInput struct {
	Color *string  `json:"color" validate:"omitnil,nonempty"`
	Size  *string  `json:"size" validate:"omitnil,nonempty"`
	Price *float64 `json:"price" validate:"required,gt=0"`
	Stock *int     `json:"stock" validate:"omitempty,gte=0"`
}
