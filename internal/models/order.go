package models

import (
	"time"

	"github.com/gocql/gocql"
)

type Order struct {
	ID         gocql.UUID   `json:"id"`
	UserID     string       `json:"user_id"`
	Items      []OrderItem  `json:"items"`
	Subtotal   float64      `json:"subtotal"`
	Discount   float64      `json:"discount"`
	TaxAmount  float64      `json:"tax_amount"`
	Total      float64      `json:"total"`
	CouponCode string       `json:"coupon_code,omitempty"`
	Status     string       `json:"status"` // "pending", "paid", "shipped", "delivered", "cancelled"
	Shipping   ShippingInfo `json:"shipping"`
	StripeID   string       `json:"stripe_id,omitempty"`
	CreatedAt  time.Time    `json:"created_at"`
	UpdatedAt  time.Time    `json:"updated_at"`
}

type OrderItem struct {
	ProductID string  `json:"product_id"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	Quantity  int     `json:"quantity"`
	Size      string  `json:"size"`
	Color     string  `json:"color"`
}

// ShippingInfo est le formulaire de livraison saisi au checkout.
type ShippingInfo struct {
	Name    string `json:"name" binding:"required"`
	Email   string `json:"email" binding:"required,email"`
	Address string `json:"address" binding:"required"`
	City    string `json:"city" binding:"required"`
	Zip     string `json:"zip" binding:"required"`
	Phone   string `json:"phone,omitempty"`
}
