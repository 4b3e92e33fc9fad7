package user

import (
	"encoding/json"
	"log"
	"net/http"
	"sort"

	"velours_back_end/internal/database"
	"velours_back_end/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/gocql/gocql"
)

// scanOrder lit une ligne de commande. Articles et adresse sont stockés en
// JSON dans leur colonne.
func scanOrder(iter *gocql.Iter) (models.Order, bool) {
	var (
		order        models.Order
		itemsJSON    string
		shippingJSON string
	)
	if !iter.Scan(&order.ID, &order.UserID, &itemsJSON, &order.Subtotal,
		&order.Discount, &order.TaxAmount, &order.Total, &order.CouponCode,
		&order.Status, &shippingJSON, &order.StripeID, &order.CreatedAt,
		&order.UpdatedAt) {
		return order, false
	}
	json.Unmarshal([]byte(itemsJSON), &order.Items)
	json.Unmarshal([]byte(shippingJSON), &order.Shipping)
	return order, true
}

const orderColumns = `order_id, user_id, items, subtotal, discount, tax_amount, total,
	coupon_code, status, shipping, stripe_id, created_at, updated_at`

// ✅ GET /api/orders — les commandes de l'utilisateur connecté
func GetMyOrders(c *gin.Context) {
	userID := c.GetString("user_id")
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Utilisateur non authentifié"})
		return
	}

	session, err := database.GetOrdersSession()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur connexion base de données"})
		return
	}

	iter := session.Query(`SELECT `+orderColumns+` FROM orders_by_user WHERE user_id = ?`,
		userID).Iter()

	var orders []models.Order
	for {
		order, ok := scanOrder(iter)
		if !ok {
			break
		}
		orders = append(orders, order)
	}
	if err := iter.Close(); err != nil {
		log.Println("❌ Erreur récupération commandes:", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur récupération commandes"})
		return
	}

	// Plus récentes en premier
	sort.Slice(orders, func(i, j int) bool {
		return orders[i].CreatedAt.After(orders[j].CreatedAt)
	})

	log.Printf("✅ %d commandes trouvées pour user %s", len(orders), userID)

	c.JSON(http.StatusOK, gin.H{"orders": orders})
}

// ✅ GET /api/orders/:id — une commande spécifique
func GetOrderByID(c *gin.Context) {
	userID := c.GetString("user_id")
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Utilisateur non authentifié"})
		return
	}

	orderID, err := gocql.ParseUUID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID commande invalide"})
		return
	}

	session, err := database.GetOrdersSession()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur connexion base de données"})
		return
	}

	iter := session.Query(`SELECT `+orderColumns+` FROM orders WHERE order_id = ?`,
		orderID).Iter()
	order, ok := scanOrder(iter)
	iter.Close()

	// ✅ Sécurité : la commande doit appartenir à l'utilisateur
	if !ok || order.UserID != userID {
		c.JSON(http.StatusNotFound, gin.H{"error": "Commande introuvable"})
		return
	}

	c.JSON(http.StatusOK, order)
}
