package models

import (
	"time"

	"github.com/gocql/gocql"
)

type Product struct {
	ID                gocql.UUID `json:"id" db:"product_id"`
	Name              string     `json:"name" db:"name"`
	Description       string     `json:"description" db:"description"`
	Price             float64    `json:"price" db:"price"`
	Stock             int        `json:"stock" db:"stock"`
	LowStockThreshold int        `json:"low_stock_threshold" db:"low_stock_threshold"`
	SKU               string     `json:"sku" db:"sku"`
	Sizes             []string   `json:"sizes" db:"sizes"`   // ex: ["S", "M", "L", "XL"]
	Colors            []string   `json:"colors" db:"colors"` // ex: ["Negro", "Blanco", "Rojo"]
	CategoryID        gocql.UUID `json:"category_id" db:"category_id"`
	ImageURLs         []string   `json:"image_urls" db:"image_urls"`
	Tags              []string   `json:"tags" db:"tags"`
	IsActive          bool       `json:"is_active" db:"is_active"`
	CreatedAt         *time.Time `json:"created_at" db:"created_at"`
	UpdatedAt         *time.Time `json:"updated_at" db:"updated_at"`
}
