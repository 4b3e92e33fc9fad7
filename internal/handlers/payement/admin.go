package pa

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"velours_back_end/internal/database"
	"velours_back_end/internal/models"
	"velours_back_end/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/gocql/gocql"
)

var validOrderStatuses = map[string]bool{
	"pending":   true,
	"paid":      true,
	"shipped":   true,
	"delivered": true,
	"cancelled": true,
}

// UpdateOrderStatus - Changer le statut d'une commande (Admin). Le client
// est notifié par email.
func UpdateOrderStatus(c *gin.Context) {
	orderID, err := gocql.ParseUUID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID commande invalide"})
		return
	}

	var req struct {
		Status string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Données invalides"})
		return
	}
	if !validOrderStatuses[req.Status] {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Statut invalide"})
		return
	}

	ordersSession, err := database.GetOrdersSession()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur connexion base de données"})
		return
	}

	order, ok := fetchOrder(ordersSession, orderID)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Commande introuvable"})
		return
	}

	now := time.Now()
	if err := ordersSession.Query(`UPDATE orders SET status = ?, updated_at = ? WHERE order_id = ?`,
		req.Status, now, orderID).Exec(); err != nil {
		log.Printf("❌ Erreur mise à jour statut commande: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lors de la mise à jour"})
		return
	}
	// Vue dénormalisée par utilisateur
	if err := ordersSession.Query(`UPDATE orders_by_user SET status = ?, updated_at = ? WHERE user_id = ? AND order_id = ?`,
		req.Status, now, order.UserID, orderID).Exec(); err != nil {
		log.Printf("⚠️ Échec synchronisation orders_by_user: %v", err)
	}

	order.Status = req.Status
	go func(o models.Order, status string) {
		if err := utils.SendOrderStatusEmail(o, status); err != nil {
			log.Printf("⚠️ Échec email statut commande %s: %v", o.ID, err)
		}
	}(order, req.Status)

	log.Printf("✅ Statut commande %s: %s", orderID, req.Status)
	c.JSON(http.StatusOK, gin.H{"message": "Statut mis à jour avec succès", "status": req.Status})
}

// GetAllOrders - Lister les commandes (Admin), optionnellement par statut.
func GetAllOrders(c *gin.Context) {
	ordersSession, err := database.GetOrdersSession()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur connexion base de données"})
		return
	}

	statusFilter := c.Query("status")

	iter := ordersSession.Query(`SELECT ` + adminOrderColumns + ` FROM orders`).Iter()

	var orders []models.Order
	for {
		order, ok := scanAdminOrder(iter)
		if !ok {
			break
		}
		if statusFilter != "" && order.Status != statusFilter {
			continue
		}
		orders = append(orders, order)
	}

	if err := iter.Close(); err != nil {
		log.Printf("❌ Erreur lecture commandes: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur serveur"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"orders": orders,
		"total":  len(orders),
	})
}

const adminOrderColumns = `order_id, user_id, items, subtotal, discount, tax_amount, total,
	coupon_code, status, shipping, stripe_id, created_at, updated_at`

func fetchOrder(session *gocql.Session, orderID gocql.UUID) (models.Order, bool) {
	iter := session.Query(`SELECT `+adminOrderColumns+` FROM orders WHERE order_id = ?`, orderID).Iter()
	order, ok := scanAdminOrder(iter)
	_ = iter.Close()
	return order, ok
}

func scanAdminOrder(iter *gocql.Iter) (models.Order, bool) {
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
