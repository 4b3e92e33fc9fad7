package pa

import (
	"context"
	"encoding/json"
	"log"
	"math"
	"net/http"
	"time"

	"velours_back_end/internal/cart"
	"velours_back_end/internal/database"
	"velours_back_end/internal/models"
	"velours_back_end/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/gocql/gocql"
	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v83"
	"github.com/stripe/stripe-go/v83/paymentintent"
)

// CheckoutHandler transforme le panier d'un utilisateur en commande payée.
type CheckoutHandler struct {
	Carts *cart.Manager
}

func NewCheckoutHandler(carts *cart.Manager) *CheckoutHandler {
	return &CheckoutHandler{Carts: carts}
}

// Checkout crée une commande complète : vérification stock, recalcul des prix
// côté serveur, PaymentIntent Stripe, écriture Scylla puis vidage du panier.
func (h *CheckoutHandler) Checkout(c *gin.Context) {
	var req struct {
		Shipping   models.ShippingInfo `json:"shipping" binding:"required"`
		CouponCode string              `json:"coupon_code"` // Optionnel
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Données invalides", "details": err.Error()})
		return
	}

	userID := c.GetString("user_id")
	email := c.GetString("email")
	if userID == "" || email == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Utilisateur non authentifié"})
		return
	}

	ctx := c.Request.Context()

	// ✅ 1. Récupérer le panier
	store, err := h.Carts.Store(ctx, userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lecture panier"})
		return
	}

	state := store.State()
	if len(state.Items) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Panier vide"})
		return
	}

	// ✅ 2. Vérifier le stock et rafraîchir nom/prix depuis la base
	productsSession, err := database.GetProductsSession()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur connexion base de données"})
		return
	}

	type stockUpdate struct {
		productID gocql.UUID
		prev      int
		next      int
		quantity  int
	}
	var updates []stockUpdate

	for i, item := range state.Items {
		productUUID, err := uuid.Parse(item.ProductID)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "ID produit invalide: " + item.ProductID})
			return
		}

		var stock int
		var name string
		var price float64
		err = productsSession.Query("SELECT stock, name, price FROM products WHERE product_id = ?", gocql.UUID(productUUID)).
			Scan(&stock, &name, &price)
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Produit introuvable: " + item.ProductID})
			return
		}

		if stock < item.Quantity {
			c.JSON(http.StatusBadRequest, gin.H{
				"error":     "Stock insuffisant",
				"product":   name,
				"available": stock,
				"requested": item.Quantity,
			})
			return
		}

		state.Items[i].Name = name
		state.Items[i].Price = price
		updates = append(updates, stockUpdate{
			productID: gocql.UUID(productUUID),
			prev:      stock,
			next:      stock - item.Quantity,
			quantity:  item.Quantity,
		})
	}

	// ✅ 3. Coupon : code explicite du checkout, sinon celui déjà appliqué au panier
	if req.CouponCode != "" {
		discount, err := h.Carts.Validator().Validate(ctx, req.CouponCode, subtotal(state.Items))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": couponErrorMessage(err)})
			return
		}
		state.Coupon = &cart.AppliedCoupon{Code: req.CouponCode, Discount: discount}
	}

	// ✅ 4. Calcul des montants côté serveur (jamais ceux du client)
	totals := cart.ComputeTotals(state)

	// ✅ 5. Créer le PaymentIntent Stripe
	orderID := gocql.TimeUUID()
	metadata := map[string]string{
		"user_id":  userID,
		"email":    email,
		"order_id": orderID.String(),
	}
	if state.Coupon != nil {
		metadata["coupon_code"] = state.Coupon.Code
	}

	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(amountInCents(totals.GrandTotal)),
		Currency: stripe.String("eur"),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
		Metadata: metadata,
	}

	intent, err := paymentintent.New(params)
	if err != nil {
		log.Printf("❌ Erreur Stripe: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur création paiement", "details": err.Error()})
		return
	}

	// ✅ 6. Enregistrer la commande
	order := models.Order{
		ID:        orderID,
		UserID:    userID,
		Items:     orderItems(state.Items),
		Subtotal:  totals.Subtotal,
		Discount:  totals.DiscountAmount,
		TaxAmount: totals.TaxAmount,
		Total:     totals.GrandTotal,
		Status:    "pending",
		Shipping:  req.Shipping,
		StripeID:  intent.ID,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	if state.Coupon != nil {
		order.CouponCode = state.Coupon.Code
	}

	if err := insertOrder(ctx, order); err != nil {
		log.Printf("❌ Erreur enregistrement commande: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur enregistrement commande"})
		return
	}

	// ✅ 7. Décrémenter le stock et tracer les mouvements
	for _, u := range updates {
		if err := productsSession.Query("UPDATE products SET stock = ?, updated_at = ? WHERE product_id = ?",
			u.next, time.Now(), u.productID).Exec(); err != nil {
			log.Printf("⚠️ Échec décrément stock produit %s: %v", u.productID, err)
			continue
		}
		recordStockMovement(productsSession, models.StockMovement{
			ID:        gocql.TimeUUID(),
			ProductID: u.productID,
			Type:      "sale",
			Quantity:  -u.quantity,
			PrevStock: u.prev,
			NewStock:  u.next,
			Reason:    "commande " + orderID.String(),
			OrderID:   &orderID,
			UserID:    userID,
			CreatedAt: time.Now(),
		})
	}

	// ✅ 8. Vider le panier seulement une fois la commande en base
	store.Clear(ctx)

	// ✅ 9. Email de confirmation en arrière-plan
	go func(o models.Order) {
		if err := utils.SendOrderConfirmationEmail(o); err != nil {
			log.Printf("⚠️ Échec envoi email confirmation commande %s: %v", o.ID, err)
		}
	}(order)

	log.Printf("💳 Checkout créé: %s (%.2f€ → %.2f€) pour %s", intent.ID, totals.Subtotal, totals.GrandTotal, email)

	c.JSON(http.StatusOK, gin.H{
		"client_secret": intent.ClientSecret,
		"payment_id":    intent.ID,
		"order_id":      orderID.String(),
		"subtotal":      totals.Subtotal,
		"discount":      totals.DiscountAmount,
		"tax":           totals.TaxAmount,
		"shipping":      totals.Shipping,
		"amount":        totals.GrandTotal,
		"currency":      "eur",
		"items_count":   len(order.Items),
	})
}

func insertOrder(ctx context.Context, order models.Order) error {
	ordersSession, err := database.GetOrdersSession()
	if err != nil {
		return err
	}

	itemsJSON, err := json.Marshal(order.Items)
	if err != nil {
		return err
	}
	shippingJSON, err := json.Marshal(order.Shipping)
	if err != nil {
		return err
	}

	const cols = `(order_id, user_id, items, subtotal, discount, tax_amount, total,
		coupon_code, status, shipping, stripe_id, created_at, updated_at)`

	if err := ordersSession.Query(
		"INSERT INTO orders "+cols+" VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)",
		order.ID, order.UserID, string(itemsJSON), order.Subtotal, order.Discount,
		order.TaxAmount, order.Total, order.CouponCode, order.Status,
		string(shippingJSON), order.StripeID, order.CreatedAt, order.UpdatedAt,
	).WithContext(ctx).Exec(); err != nil {
		return err
	}

	// Table dénormalisée pour l'historique par utilisateur
	return ordersSession.Query(
		"INSERT INTO orders_by_user "+cols+" VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)",
		order.ID, order.UserID, string(itemsJSON), order.Subtotal, order.Discount,
		order.TaxAmount, order.Total, order.CouponCode, order.Status,
		string(shippingJSON), order.StripeID, order.CreatedAt, order.UpdatedAt,
	).WithContext(ctx).Exec()
}

func recordStockMovement(session *gocql.Session, m models.StockMovement) {
	if err := session.Query(
		`INSERT INTO stock_movements (id, product_id, type, quantity, prev_stock, new_stock, reason, order_id, user_id, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		m.ID, m.ProductID, m.Type, m.Quantity, m.PrevStock, m.NewStock, m.Reason, m.OrderID, m.UserID, m.CreatedAt,
	).Exec(); err != nil {
		log.Printf("⚠️ Échec trace mouvement stock %s: %v", m.ProductID, err)
	}
}

func orderItems(lines []cart.Line) []models.OrderItem {
	items := make([]models.OrderItem, 0, len(lines))
	for _, l := range lines {
		items = append(items, models.OrderItem{
			ProductID: l.ProductID,
			Name:      l.Name,
			Price:     l.Price,
			Quantity:  l.Quantity,
			Size:      l.Size,
			Color:     l.Color,
		})
	}
	return items
}

func subtotal(lines []cart.Line) float64 {
	var total float64
	for _, l := range lines {
		total += l.Price * float64(l.Quantity)
	}
	return total
}

// amountInCents arrondit au centime le plus proche : le montant débité
// chez Stripe doit être celui enregistré sur la commande, pas tronqué.
func amountInCents(total float64) int64 {
	return int64(math.Round(total * 100))
}
