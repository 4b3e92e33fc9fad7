package pa

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gocql/gocql"

	"velours_back_end/internal/cart"
	"velours_back_end/internal/database"
	"velours_back_end/internal/models"
)

// CouponHandler expose la validation publique des codes promo. Les mutations
// admin passent par les fonctions CRUD plus bas.
type CouponHandler struct {
	Validator cart.Validator
}

func NewCouponHandler(v cart.Validator) *CouponHandler {
	return &CouponHandler{Validator: v}
}

// ValidateCoupon vérifie un code promo contre un montant de panier.
// Contrat : GET /validate?code=X&total=Y → 200 {"discount": n} ou un corps
// d'erreur en 400/404.
func (h *CouponHandler) ValidateCoupon(c *gin.Context) {
	code := c.Query("code")
	if code == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Code requis"})
		return
	}

	total, err := strconv.ParseFloat(c.Query("total"), 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Montant du panier invalide"})
		return
	}

	discount, err := h.Validator.Validate(c.Request.Context(), code, total)
	if err != nil {
		var minErr *cart.MinimumNotMetError
		switch {
		case errors.Is(err, cart.ErrCouponNotFound):
			c.JSON(http.StatusNotFound, gin.H{"valid": false, "error": "Code invalide ou expiré"})
		case errors.As(err, &minErr):
			c.JSON(http.StatusBadRequest, gin.H{
				"valid":   false,
				"error":   minErr.Error(),
				"minimum": minErr.Minimum,
			})
		default:
			c.JSON(http.StatusBadRequest, gin.H{"valid": false, "error": couponErrorMessage(err)})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"valid":    true,
		"code":     strings.ToUpper(code),
		"discount": discount,
	})
}

func couponErrorMessage(err error) string {
	var minErr *cart.MinimumNotMetError
	switch {
	case errors.Is(err, cart.ErrCouponNotFound):
		return "Code coupon invalide"
	case errors.As(err, &minErr):
		return minErr.Error()
	case errors.Is(err, cart.ErrInvalidSubtotal):
		return "Montant du panier invalide"
	default:
		return "Erreur validation coupon"
	}
}

// ================== CRUD ADMIN ==================

// CreateCoupon - Créer un nouveau coupon (Admin seulement)
func CreateCoupon(c *gin.Context) {
	var req struct {
		Code           string  `json:"code" binding:"required"`
		Discount       int     `json:"discount" binding:"required"` // pourcentage 1-100
		MinAmount      float64 `json:"min_amount"`
		MaxRedemptions int     `json:"max_redemptions"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Données invalides: " + err.Error()})
		return
	}

	if req.Discount <= 0 || req.Discount > 100 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Pourcentage doit être entre 1 et 100"})
		return
	}
	if req.MinAmount < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Montant minimum doit être positif"})
		return
	}

	ordersSession, err := database.GetOrdersSession()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur connexion base de données"})
		return
	}

	code := strings.ToUpper(req.Code)

	var existingCode string
	if err := ordersSession.Query(`SELECT code FROM ks_orders.coupons WHERE code = ? LIMIT 1 ALLOW FILTERING`, code).
		Scan(&existingCode); err == nil {
		c.JSON(http.StatusConflict, gin.H{"error": "Ce code coupon existe déjà"})
		return
	}

	userID, _ := c.Get("user_id")
	now := time.Now()

	coupon := models.Coupon{
		ID:             gocql.TimeUUID(),
		Code:           code,
		Discount:       req.Discount,
		MinAmount:      req.MinAmount,
		MaxRedemptions: req.MaxRedemptions,
		IsActive:       true,
		CreatedBy:      fmt.Sprintf("%v", userID),
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := ordersSession.Query(
		`INSERT INTO ks_orders.coupons (id, code, discount, min_amount, max_redemptions, is_active, created_by, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		coupon.ID, coupon.Code, coupon.Discount, coupon.MinAmount, coupon.MaxRedemptions,
		coupon.IsActive, coupon.CreatedBy, coupon.CreatedAt, coupon.UpdatedAt,
	).Exec(); err != nil {
		log.Printf("❌ Erreur création coupon: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lors de la création"})
		return
	}

	log.Printf("✅ Coupon créé: %s (-%d%%, min %.2f€)", coupon.Code, coupon.Discount, coupon.MinAmount)
	c.JSON(http.StatusCreated, gin.H{"message": "Coupon créé avec succès", "coupon": coupon})
}

// GetAllCoupons - Récupérer tous les coupons (Admin)
func GetAllCoupons(c *gin.Context) {
	ordersSession, err := database.GetOrdersSession()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur connexion base de données"})
		return
	}

	iter := ordersSession.Query(
		`SELECT id, code, discount, min_amount, max_redemptions, is_active, created_by, created_at, updated_at
		 FROM ks_orders.coupons`).Iter()

	var coupons []models.Coupon
	var coupon models.Coupon
	for iter.Scan(&coupon.ID, &coupon.Code, &coupon.Discount, &coupon.MinAmount,
		&coupon.MaxRedemptions, &coupon.IsActive, &coupon.CreatedBy,
		&coupon.CreatedAt, &coupon.UpdatedAt) {
		coupons = append(coupons, coupon)
	}

	if err := iter.Close(); err != nil {
		log.Printf("❌ Erreur récupération coupons: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur serveur"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"coupons": coupons,
		"total":   len(coupons),
	})
}

// UpdateCoupon - Mettre à jour un coupon
func UpdateCoupon(c *gin.Context) {
	var req struct {
		IsActive       *bool    `json:"is_active"`
		Discount       *int     `json:"discount"`
		MinAmount      *float64 `json:"min_amount"`
		MaxRedemptions *int     `json:"max_redemptions"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Données invalides"})
		return
	}

	id, err := gocql.ParseUUID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID coupon invalide"})
		return
	}

	updates := []string{}
	values := []interface{}{}

	if req.IsActive != nil {
		updates = append(updates, "is_active = ?")
		values = append(values, *req.IsActive)
	}
	if req.Discount != nil {
		if *req.Discount <= 0 || *req.Discount > 100 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Pourcentage doit être entre 1 et 100"})
			return
		}
		updates = append(updates, "discount = ?")
		values = append(values, *req.Discount)
	}
	if req.MinAmount != nil {
		updates = append(updates, "min_amount = ?")
		values = append(values, *req.MinAmount)
	}
	if req.MaxRedemptions != nil {
		updates = append(updates, "max_redemptions = ?")
		values = append(values, *req.MaxRedemptions)
	}

	if len(updates) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Aucune mise à jour fournie"})
		return
	}

	updates = append(updates, "updated_at = ?")
	values = append(values, time.Now())
	values = append(values, id)

	ordersSession, err := database.GetOrdersSession()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur connexion base de données"})
		return
	}

	query := fmt.Sprintf("UPDATE ks_orders.coupons SET %s WHERE id = ?", strings.Join(updates, ", "))
	if err := ordersSession.Query(query, values...).Exec(); err != nil {
		log.Printf("❌ Erreur mise à jour coupon: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lors de la mise à jour"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Coupon mis à jour avec succès"})
}

// DeleteCoupon - Supprimer un coupon
func DeleteCoupon(c *gin.Context) {
	id, err := gocql.ParseUUID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID coupon invalide"})
		return
	}

	ordersSession, err := database.GetOrdersSession()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur connexion base de données"})
		return
	}

	if err := ordersSession.Query(`DELETE FROM ks_orders.coupons WHERE id = ?`, id).Exec(); err != nil {
		log.Printf("❌ Erreur suppression coupon: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lors de la suppression"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Coupon supprimé avec succès"})
}
