package product

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gocql/gocql"

	"velours_back_end/internal/database"
	"velours_back_end/internal/models"
	"velours_back_end/internal/services"
)

func UpdateProduct(c *gin.Context) {
	productID, err := gocql.ParseUUID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID produit invalide"})
		return
	}

	var input struct {
		Name              *string   `json:"name"`
		Description       *string   `json:"description"`
		Price             *float64  `json:"price"`
		Stock             *int      `json:"stock"`
		LowStockThreshold *int      `json:"low_stock_threshold"`
		Sizes             *[]string `json:"sizes"`
		Colors            *[]string `json:"colors"`
		CategoryID        *string   `json:"category_id"`
		Tags              *[]string `json:"tags"`
		IsActive          *bool     `json:"is_active"`
	}

	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Données invalides"})
		return
	}

	session, err := database.GetProductsSession()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur connexion base de données"})
		return
	}

	updates := []string{}
	values := []interface{}{}

	if input.Name != nil {
		updates = append(updates, "name = ?")
		values = append(values, *input.Name)
	}
	if input.Description != nil {
		updates = append(updates, "description = ?")
		values = append(values, *input.Description)
	}
	if input.Price != nil {
		if *input.Price < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Le prix doit être positif"})
			return
		}
		updates = append(updates, "price = ?")
		values = append(values, *input.Price)
	}
	if input.Stock != nil {
		updates = append(updates, "stock = ?")
		values = append(values, *input.Stock)
	}
	if input.LowStockThreshold != nil {
		updates = append(updates, "low_stock_threshold = ?")
		values = append(values, *input.LowStockThreshold)
	}
	if input.Sizes != nil {
		updates = append(updates, "sizes = ?")
		values = append(values, *input.Sizes)
	}
	if input.Colors != nil {
		updates = append(updates, "colors = ?")
		values = append(values, *input.Colors)
	}
	if input.CategoryID != nil {
		catUUID, err := gocql.ParseUUID(*input.CategoryID)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Category ID invalide"})
			return
		}
		updates = append(updates, "category_id = ?")
		values = append(values, catUUID)
	}
	if input.Tags != nil {
		updates = append(updates, "tags = ?")
		values = append(values, *input.Tags)
	}
	if input.IsActive != nil {
		updates = append(updates, "is_active = ?")
		values = append(values, *input.IsActive)
	}

	if len(updates) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Aucune donnée à mettre à jour"})
		return
	}

	updates = append(updates, "updated_at = ?")
	values = append(values, time.Now())
	values = append(values, productID)

	query := "UPDATE products SET " + strings.Join(updates, ", ") + " WHERE product_id = ?"
	if err := session.Query(query, values...).Exec(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lors de la mise à jour"})
		return
	}

	// 🔄 Ré-indexation Elasticsearch avec l'état à jour
	var p models.Product
	iter := session.Query(`SELECT `+productColumns+` FROM products WHERE product_id = ?`, productID).Iter()
	if scanProduct(iter, &p) {
		go services.IndexProduct(p)
	}
	_ = iter.Close()

	invalidateProductsCache(c.Request.Context())

	c.JSON(http.StatusOK, gin.H{"message": "Produit mis à jour avec succès"})
}

func DeleteProduct(c *gin.Context) {
	productID, err := gocql.ParseUUID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID produit invalide"})
		return
	}

	session, err := database.GetProductsSession()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur connexion base de données"})
		return
	}

	// La ligne products_by_category part avec le produit
	var categoryID gocql.UUID
	if err := session.Query(`SELECT category_id FROM products WHERE product_id = ?`, productID).Scan(&categoryID); err == nil {
		_ = session.Query(`DELETE FROM products_by_category WHERE category_id = ? AND product_id = ?`, categoryID, productID).Exec()
	}

	if err := session.Query(`DELETE FROM products WHERE product_id = ?`, productID).Exec(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lors de la suppression"})
		return
	}

	go services.RemoveProductFromIndex(productID.String())
	invalidateProductsCache(c.Request.Context())

	c.JSON(http.StatusOK, gin.H{"message": "Produit supprimé avec succès"})
}
