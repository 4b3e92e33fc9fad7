package models

import (
	"time"

	"github.com/gocql/gocql"
)

// Coupon est l'enregistrement administrable d'un code promo. La validation
// côté panier passe par la table en mémoire (internal/cart) ; cette table
// est la vue back-office persistée dans ks_orders.coupons.
type Coupon struct {
	ID             gocql.UUID `json:"id"`
	Code           string     `json:"code"`
	Discount       int        `json:"discount"` // pourcentage 0-100
	MinAmount      float64    `json:"min_amount"`
	MaxRedemptions int        `json:"max_redemptions"` // porté par la donnée, non décompté
	IsActive       bool       `json:"is_active"`
	CreatedBy      string     `json:"created_by"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}
