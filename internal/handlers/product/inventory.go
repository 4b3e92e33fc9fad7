package product

import (
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gocql/gocql"

	"velours_back_end/internal/database"
	"velours_back_end/internal/models"
)

// UpdateStock - Mettre à jour le stock d'un produit (Admin)
func UpdateStock(c *gin.Context) {
	var req struct {
		Quantity int    `json:"quantity" binding:"required"`
		Reason   string `json:"reason" binding:"required"`
		Type     string `json:"type" binding:"required"` // "restock", "adjustment"
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Données invalides: " + err.Error()})
		return
	}

	productID, err := gocql.ParseUUID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID produit invalide"})
		return
	}

	productsSession, err := database.GetProductsSession()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur connexion base de données"})
		return
	}

	var currentStock, threshold int
	var productName string
	if err := productsSession.Query(`SELECT stock, low_stock_threshold, name FROM products WHERE product_id = ?`, productID).
		Scan(&currentStock, &threshold, &productName); err != nil {
		log.Printf("❌ Produit non trouvé: %v", err)
		c.JSON(http.StatusNotFound, gin.H{"error": "Produit non trouvé"})
		return
	}

	var newStock int
	switch req.Type {
	case "restock":
		newStock = currentStock + req.Quantity
	case "adjustment":
		newStock = req.Quantity // Quantité absolue
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "Type d'opération invalide"})
		return
	}

	if newStock < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Le stock ne peut pas être négatif"})
		return
	}

	userID, _ := c.Get("user_id")

	if err := productsSession.Query(`UPDATE products SET stock = ?, updated_at = ? WHERE product_id = ?`,
		newStock, time.Now(), productID).Exec(); err != nil {
		log.Printf("❌ Erreur mise à jour stock: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lors de la mise à jour du stock"})
		return
	}

	movement := models.StockMovement{
		ID:        gocql.TimeUUID(),
		ProductID: productID,
		Type:      req.Type,
		Quantity:  req.Quantity,
		PrevStock: currentStock,
		NewStock:  newStock,
		Reason:    req.Reason,
		UserID:    userID.(string),
		CreatedAt: time.Now(),
	}

	if err := productsSession.Query(
		`INSERT INTO stock_movements (id, product_id, type, quantity, prev_stock, new_stock, reason, order_id, user_id, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		movement.ID, movement.ProductID, movement.Type, movement.Quantity,
		movement.PrevStock, movement.NewStock, movement.Reason, nil,
		movement.UserID, movement.CreatedAt,
	).Exec(); err != nil {
		log.Printf("⚠️ Erreur enregistrement mouvement stock: %v", err)
	}

	if newStock <= threshold {
		log.Printf("⚠️ Stock bas pour %s: %d restants (seuil %d)", productName, newStock, threshold)
	}

	invalidateProductsCache(c.Request.Context())

	log.Printf("✅ Stock mis à jour pour %s: %d -> %d", productName, currentStock, newStock)
	c.JSON(http.StatusOK, gin.H{
		"message":     "Stock mis à jour avec succès",
		"prev_stock":  currentStock,
		"new_stock":   newStock,
		"movement_id": movement.ID,
	})
}

// GetStockMovements - Historique des mouvements de stock d'un produit (Admin)
func GetStockMovements(c *gin.Context) {
	productID, err := gocql.ParseUUID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID produit invalide"})
		return
	}

	limit := 50
	if l := c.Query("limit"); l != "" {
		if n, err := strconv.Atoi(l); err == nil && n > 0 && n <= 500 {
			limit = n
		}
	}

	productsSession, err := database.GetProductsSession()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur connexion base de données"})
		return
	}

	iter := productsSession.Query(
		`SELECT id, product_id, type, quantity, prev_stock, new_stock, reason, order_id, user_id, created_at
		 FROM stock_movements WHERE product_id = ? LIMIT ? ALLOW FILTERING`,
		productID, limit).Iter()

	var movements []models.StockMovement
	var m models.StockMovement
	for iter.Scan(&m.ID, &m.ProductID, &m.Type, &m.Quantity, &m.PrevStock, &m.NewStock,
		&m.Reason, &m.OrderID, &m.UserID, &m.CreatedAt) {
		movements = append(movements, m)
		m = models.StockMovement{}
	}

	if err := iter.Close(); err != nil {
		log.Printf("❌ Erreur lecture mouvements stock: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur serveur"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"movements": movements,
		"total":     len(movements),
	})
}

// GetLowStockProducts - Produits sous leur seuil d'alerte (Admin)
func GetLowStockProducts(c *gin.Context) {
	session, err := database.GetProductsSession()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur connexion base de données"})
		return
	}

	iter := session.Query(`SELECT product_id, name, stock, low_stock_threshold FROM products`).Iter()

	type alert struct {
		ProductID gocql.UUID `json:"product_id"`
		Name      string     `json:"name"`
		Stock     int        `json:"stock"`
		Threshold int        `json:"threshold"`
	}

	var alerts []alert
	var a alert
	for iter.Scan(&a.ProductID, &a.Name, &a.Stock, &a.Threshold) {
		if a.Threshold > 0 && a.Stock <= a.Threshold {
			alerts = append(alerts, a)
		}
	}

	if err := iter.Close(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lecture produits: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"alerts": alerts,
		"total":  len(alerts),
	})
}
