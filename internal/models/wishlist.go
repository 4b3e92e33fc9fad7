package models

// Wishlist est la réponse renvoyée au client : les produits complets,
// pas les lignes brutes de la table wishlist.
type Wishlist struct {
	UserID string    `json:"user_id"`
	Items  []Product `json:"items"`
}
