package catalog

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Category groups products on the register screen.
type Category string

const (
	CategorySupplement Category = "supplement"
	CategorySnack      Category = "snack"
	CategoryBeverage   Category = "beverage"
	CategoryOther      Category = "other"
)

var categoryIcons = map[Category]string{
	CategorySupplement: "💊",
	CategorySnack:      "🍫",
	CategoryBeverage:   "🥤",
	CategoryOther:      "📦",
}

// Categories lists the accepted categories in display order.
func Categories() []Category {
	return []Category{CategorySupplement, CategorySnack, CategoryBeverage, CategoryOther}
}

// ParseCategory normalises s and reports whether it names a known category.
func ParseCategory(s string) (Category, bool) {
	c := Category(strings.ToLower(strings.TrimSpace(s)))
	_, ok := categoryIcons[c]
	return c, ok
}

// Icon is the emoji shown next to products of this category.
func (c Category) Icon() string {
	if icon, ok := categoryIcons[c]; ok {
		return icon
	}
	return categoryIcons[CategoryOther]
}

// Product is a sellable item with its current stock level.
type Product struct {
	ID        uuid.UUID       `json:"id"`
	Name      string          `json:"name"`
	Category  Category        `json:"category"`
	Price     decimal.Decimal `json:"price"`
	Stock     int             `json:"stock"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// Filter narrows a product listing. Zero values match everything.
type Filter struct {
	Category Category
	Search   string
}

// ProductRequest is the payload for creating or overwriting a product.
// Price and stock accept JSON numbers or numeric strings.
type ProductRequest struct {
	Name     string      `json:"name"`
	Category string      `json:"category"`
	Price    json.Number `json:"price"`
	Stock    json.Number `json:"stock"`
}
