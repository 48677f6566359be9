package models

import (
	"time"
)

// Product is the model for the 'products' table.
// Names and descriptions are bilingual (English/Nepali); stock is tracked in kilograms.
type Product struct {
	ID                int64   `json:"id" db:"id"`
	CategoryID        int64   `json:"categoryId" db:"category_id"`
	Name              string  `json:"name" db:"name"`
	NameNepali        string  `json:"nameNepali" db:"name_nepali"`
	Slug              string  `json:"slug" db:"slug"`
	Description       string  `json:"description" db:"description"`
	DescriptionNepali *string `json:"descriptionNepali,omitempty" db:"description_nepali"`

	// --- Pricing & Stock ---
	PricePerKg float64 `json:"pricePerKg" db:"price_per_kg"`
	StockKg    float64 `json:"stockKg" db:"stock_kg"`
	MinOrderKg float64 `json:"minOrderKg" db:"min_order_kg"`

	// --- Classification ---
	MeatType    string `json:"meatType" db:"meat_type"` // pork, buffalo, chicken, goat, mutton, fish
	IsFeatured  bool   `json:"isFeatured" db:"is_featured"`
	IsAvailable bool   `json:"isAvailable" db:"is_available"`

	ImageURL *string `json:"imageUrl,omitempty" db:"image_url"`

	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`

	// Joins (populated manually, not stored on the products table)
	CategoryName string `json:"categoryName,omitempty" db:"-"`
}

// Stock status labels shown on product cards. Thresholds are in kilograms.
const (
	StockOut     = "out_of_stock"
	StockLow     = "low_stock"
	StockLimited = "limited_stock"
	StockIn      = "in_stock"
)

// StockStatus buckets the remaining stock into a display label.
func (p *Product) StockStatus() string {
	switch {
	case p.StockKg <= 0:
		return StockOut
	case p.StockKg <= 5:
		return StockLow
	case p.StockKg <= 20:
		return StockLimited
	default:
		return StockIn
	}
}

// Orderable reports whether the product can be placed in an order at all.
// Availability is derived from stock but an admin can force it off.
func (p *Product) Orderable() bool {
	return p.IsAvailable && p.StockKg > 0
}

// MeatTypeDisplay returns the bilingual label for a meat type code.
func MeatTypeDisplay(meatType string) string {
	labels := map[string]string{
		"pork":    "सुंगुर / Pork",
		"buffalo": "भैंसी / Buffalo",
		"chicken": "कुखुरा / Chicken",
		"goat":    "खसी / Goat",
		"mutton":  "मटन / Mutton",
		"fish":    "माछा / Fish",
	}
	if l, ok := labels[meatType]; ok {
		return l
	}
	return meatType
}
