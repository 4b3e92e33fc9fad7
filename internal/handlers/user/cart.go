package user

import (
	"errors"
	"fmt"
	"net/http"

	"velours_back_end/internal/cart"
	"velours_back_end/internal/database"

	"github.com/gin-gonic/gin"
	"github.com/gocql/gocql"
	"github.com/google/uuid"
)

// CartHandler expose le panier par HTTP. Le Manager est construit par la
// racine de composition (cmd/server) et injecté ici.
type CartHandler struct {
	Carts *cart.Manager
}

func NewCartHandler(carts *cart.Manager) *CartHandler {
	return &CartHandler{Carts: carts}
}

func (h *CartHandler) store(c *gin.Context) (*cart.Store, bool) {
	userID := c.GetString("user_id")
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "non authentifié"})
		return nil, false
	}

	store, err := h.Carts.Store(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur chargement panier"})
		return nil, false
	}
	return store, true
}

// cartResponse est la vue renvoyée après chaque opération : lignes dans
// l'ordre d'insertion + montants recalculés.
func cartResponse(store *cart.Store) gin.H {
	return gin.H{
		"items":      store.Lines(),
		"totals":     store.Totals(),
		"count":      store.TotalQuantity(),
		"line_count": store.LineCount(),
	}
}

//
// 🟢 GET /api/cart
//
func (h *CartHandler) GetCart(c *gin.Context) {
	store, ok := h.store(c)
	if !ok {
		return
	}

	resp := cartResponse(store)
	if coupon := store.State().Coupon; coupon != nil {
		resp["coupon"] = coupon
	}
	c.JSON(http.StatusOK, resp)
}

//
// 🟢 POST /api/cart/items
//
func (h *CartHandler) AddToCart(c *gin.Context) {
	store, ok := h.store(c)
	if !ok {
		return
	}

	var input struct {
		ProductID string `json:"productId" binding:"required"`
		Quantity  int    `json:"quantity"`
		Size      string `json:"size" binding:"required"`
		Color     string `json:"color" binding:"required"`
	}

	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Données invalides"})
		return
	}
	if input.Quantity <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Quantité invalide"})
		return
	}

	// 🧩 Récupération du produit depuis ScyllaDB — prix et stock font foi
	session, err := database.GetProductsSession()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur connexion base de données"})
		return
	}

	productID, err := uuid.Parse(input.ProductID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID produit invalide"})
		return
	}

	var (
		name      string
		price     float64
		stock     int
		sizes     []string
		colors    []string
		imageURLs []string
	)
	err = session.Query(`SELECT name, price, stock, sizes, colors, image_urls
	                     FROM products WHERE product_id = ?`, gocql.UUID(productID)).
		Scan(&name, &price, &stock, &sizes, &colors, &imageURLs)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Produit introuvable"})
		return
	}

	if !contains(sizes, input.Size) || !contains(colors, input.Color) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Taille ou couleur indisponible pour ce produit"})
		return
	}

	// 🖼️ Première image pour l'aperçu panier
	imageURL := ""
	if len(imageURLs) > 0 {
		imageURL = imageURLs[0]
	}

	result := store.AddLine(c.Request.Context(), cart.Line{
		ProductID: input.ProductID,
		Name:      name,
		Price:     price,
		Quantity:  input.Quantity,
		Size:      input.Size,
		Color:     input.Color,
		ImageURL:  imageURL,
		MaxStock:  stock,
	})

	switch result.Status {
	case cart.StatusOutOfStock:
		c.JSON(http.StatusConflict, gin.H{"error": "Produit en rupture de stock"})
		return
	case cart.StatusStockLimited:
		resp := cartResponse(store)
		resp["message"] = fmt.Sprintf("Quantité ajustée au stock disponible (%d max)", result.MaxStock)
		resp["status"] = result.Status
		c.JSON(http.StatusOK, resp)
		return
	default:
		resp := cartResponse(store)
		resp["message"] = "Produit ajouté au panier"
		resp["status"] = result.Status
		c.JSON(http.StatusOK, resp)
	}
}

//
// 🔁 PUT /api/cart/items
//
func (h *CartHandler) UpdateQuantity(c *gin.Context) {
	store, ok := h.store(c)
	if !ok {
		return
	}

	var input struct {
		ProductID string `json:"productId" binding:"required"`
		Size      string `json:"size" binding:"required"`
		Color     string `json:"color" binding:"required"`
		Quantity  int    `json:"quantity"`
	}

	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Données invalides"})
		return
	}

	store.SetQuantity(c.Request.Context(), input.ProductID, input.Size, input.Color, input.Quantity)

	resp := cartResponse(store)
	resp["message"] = "Panier mis à jour"
	c.JSON(http.StatusOK, resp)
}

//
// ❌ DELETE /api/cart/items
//
func (h *CartHandler) RemoveFromCart(c *gin.Context) {
	store, ok := h.store(c)
	if !ok {
		return
	}

	productID := c.Query("productId")
	size := c.Query("size")
	color := c.Query("color")

	result := store.RemoveLine(c.Request.Context(), productID, size, color)

	resp := cartResponse(store)
	if result.Removed {
		resp["message"] = fmt.Sprintf("%s supprimé du panier", result.Name)
	} else {
		resp["message"] = "Article absent du panier"
	}
	c.JSON(http.StatusOK, resp)
}

//
// 🧹 DELETE /api/cart
//
func (h *CartHandler) ClearCart(c *gin.Context) {
	store, ok := h.store(c)
	if !ok {
		return
	}

	store.Clear(c.Request.Context())

	c.JSON(http.StatusOK, gin.H{"message": "Panier vidé avec succès"})
}

//
// 🎟️ POST /api/cart/coupon
//
func (h *CartHandler) ApplyCoupon(c *gin.Context) {
	store, ok := h.store(c)
	if !ok {
		return
	}

	var input struct {
		Code string `json:"code" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Code coupon requis"})
		return
	}

	applied, err := store.ApplyCoupon(c.Request.Context(), input.Code)
	if err != nil {
		var minErr *cart.MinimumNotMetError
		switch {
		case errors.Is(err, cart.ErrCouponNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Code coupon invalide"})
		case errors.As(err, &minErr):
			c.JSON(http.StatusBadRequest, gin.H{
				"error":   minErr.Error(),
				"minimum": minErr.Minimum,
			})
		case errors.Is(err, cart.ErrValidationSuperseded):
			// Le panier a été vidé entre-temps : rien à appliquer
			c.JSON(http.StatusOK, cartResponse(store))
		default:
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		}
		return
	}

	resp := cartResponse(store)
	resp["message"] = fmt.Sprintf("Coupon %s appliqué (-%0.f%%)", applied.Code, applied.Discount)
	resp["coupon"] = applied
	c.JSON(http.StatusOK, resp)
}

//
// ❌ DELETE /api/cart/coupon
//
func (h *CartHandler) RemoveCoupon(c *gin.Context) {
	store, ok := h.store(c)
	if !ok {
		return
	}

	store.RemoveCoupon(c.Request.Context())

	resp := cartResponse(store)
	resp["message"] = "Coupon retiré"
	c.JSON(http.StatusOK, resp)
}

func contains(values []string, v string) bool {
	for _, value := range values {
		if value == v {
			return true
		}
	}
	return false
}
