package pa

import (
	"net/http"

	"velours_back_end/internal/cart"

	"github.com/gin-gonic/gin"
)

// GetShippingOptions retourne les options de livraison. La boutique offre la
// livraison sur toutes les commandes, sans minimum d'achat.
func GetShippingOptions(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"options": []gin.H{
			{
				"id":             "standard",
				"name":           "Livraison Standard Gratuite",
				"description":    "Livraison en 3-5 jours ouvrés",
				"price":          cart.ShippingCost,
				"estimated_days": 5,
			},
		},
		"is_free": true,
	})
}
