package product

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gocql/gocql"

	"velours_back_end/internal/database"
	"velours_back_end/internal/services"
)

// =========================
// 🟢 UPLOAD IMAGE PRODUIT
// =========================
func UploadImage(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Fichier manquant"})
		return
	}

	imageURL, err := services.UploadProductImage(c.Request.Context(), file)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur upload MinIO: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":   "✅ Image uploadée avec succès",
		"image_url": imageURL,
	})
}

// =========================
// 🔵 URL SIGNÉE TEMPORAIRE
// =========================
func SignImageURL(c *gin.Context) {
	objectName := c.Query("object")
	if objectName == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "paramètre 'object' manquant"})
		return
	}

	signed, err := services.PresignedImageURL(c.Request.Context(), objectName)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur génération URL signée"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"url": signed})
}

// =========================
// 🟡 AJOUTER IMAGE À UN PRODUIT
// =========================
func AddImageToProduct(c *gin.Context) {
	var req struct {
		ProductID string `json:"product_id" binding:"required"`
		ImageURL  string `json:"image_url" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	productUUID, err := gocql.ParseUUID(req.ProductID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID produit invalide"})
		return
	}

	session, err := database.GetProductsSession()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur connexion base de données"})
		return
	}

	var existingURLs []string
	err = session.Query("SELECT image_urls FROM products WHERE product_id = ?", productUUID).Scan(&existingURLs)
	if err != nil && err != gocql.ErrNotFound {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur récupération produit"})
		return
	}

	existingURLs = append(existingURLs, req.ImageURL)

	if err := session.Query("UPDATE products SET image_urls = ? WHERE product_id = ?", existingURLs, productUUID).Exec(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur mise à jour produit"})
		return
	}

	invalidateProductsCache(c.Request.Context())

	c.JSON(http.StatusOK, gin.H{
		"message":    "✅ Image ajoutée au produit",
		"product_id": req.ProductID,
		"image_url":  req.ImageURL,
	})
}

// =========================
// 🔴 SUPPRIMER UNE IMAGE D'UN PRODUIT
// =========================
func RemoveImageFromProduct(c *gin.Context) {
	var req struct {
		ProductID string `json:"product_id" binding:"required"`
		ImageURL  string `json:"image_url" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	productUUID, err := gocql.ParseUUID(req.ProductID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID produit invalide"})
		return
	}

	session, err := database.GetProductsSession()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur connexion base de données"})
		return
	}

	var existingURLs []string
	if err := session.Query("SELECT image_urls FROM products WHERE product_id = ?", productUUID).Scan(&existingURLs); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Produit introuvable"})
		return
	}

	kept := existingURLs[:0]
	for _, u := range existingURLs {
		if u != req.ImageURL {
			kept = append(kept, u)
		}
	}

	if err := session.Query("UPDATE products SET image_urls = ? WHERE product_id = ?", kept, productUUID).Exec(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur mise à jour produit"})
		return
	}

	// Suppression de l'objet MinIO en arrière-plan, l'URL n'est plus référencée
	go func(url string) {
		_ = services.RemoveProductImage(context.Background(), url)
	}(req.ImageURL)

	invalidateProductsCache(c.Request.Context())

	c.JSON(http.StatusOK, gin.H{"message": "🗑️ Image supprimée du produit"})
}
