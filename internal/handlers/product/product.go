package product

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gocql/gocql"

	"velours_back_end/internal/database"
	"velours_back_end/internal/models"
	"velours_back_end/internal/services"
)

const productColumns = `product_id, name, description, price, stock, low_stock_threshold, sku,
	sizes, colors, category_id, image_urls, tags, is_active, created_at, updated_at`

const productsCacheKey = "products:all"

func scanProduct(iter *gocql.Iter, p *models.Product) bool {
	return iter.Scan(&p.ID, &p.Name, &p.Description, &p.Price, &p.Stock, &p.LowStockThreshold,
		&p.SKU, &p.Sizes, &p.Colors, &p.CategoryID, &p.ImageURLs, &p.Tags, &p.IsActive,
		&p.CreatedAt, &p.UpdatedAt)
}

func invalidateProductsCache(ctx context.Context) {
	if err := database.Redis.Del(ctx, productsCacheKey).Err(); err != nil {
		log.Printf("⚠️ Échec invalidation cache produits: %v", err)
	}
}

func CreateProduct(c *gin.Context) {
	var p models.Product

	if err := c.ShouldBindJSON(&p); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if p.CategoryID == (gocql.UUID{}) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Le champ 'category_id' est obligatoire"})
		return
	}
	if len(p.Sizes) == 0 || len(p.Colors) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Un vêtement doit avoir au moins une taille et une couleur"})
		return
	}
	if p.Price < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Le prix doit être positif"})
		return
	}

	session, err := database.GetProductsSession()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur connexion base de données"})
		return
	}

	// ✅ Vérifie la catégorie
	var categoryName string
	if err := session.Query(`SELECT name FROM categories WHERE category_id = ?`, p.CategoryID).Scan(&categoryName); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Catégorie introuvable"})
		return
	}

	p.ID = gocql.TimeUUID()
	p.IsActive = true
	now := time.Now()
	p.CreatedAt = &now
	p.UpdatedAt = &now

	query := `INSERT INTO products (` + productColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	if err := session.Query(query, p.ID, p.Name, p.Description, p.Price, p.Stock,
		p.LowStockThreshold, p.SKU, p.Sizes, p.Colors, p.CategoryID, p.ImageURLs,
		p.Tags, p.IsActive, p.CreatedAt, p.UpdatedAt).Exec(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur création produit: " + err.Error()})
		return
	}

	// ✅ Indexe aussi dans products_by_category pour les requêtes par catégorie
	if err := session.Query(`INSERT INTO products_by_category (category_id, product_id, name, price, stock) VALUES (?, ?, ?, ?, ?)`,
		p.CategoryID, p.ID, p.Name, p.Price, p.Stock).Exec(); err != nil {
		log.Printf("⚠️ Erreur indexation products_by_category: %v", err)
	}

	// 🔄 Indexation Elasticsearch
	go services.IndexProduct(p)

	invalidateProductsCache(c.Request.Context())

	log.Printf("✅ Produit créé: %s (%s)", p.Name, p.ID)
	c.JSON(http.StatusCreated, p)
}

func GetAllProducts(c *gin.Context) {
	ctx := c.Request.Context()

	// ✅ Vérifie le cache Redis
	if val, err := database.Redis.Get(ctx, productsCacheKey).Result(); err == nil && val != "" {
		var cached []models.Product
		if err := json.Unmarshal([]byte(val), &cached); err == nil {
			c.JSON(http.StatusOK, cached)
			return
		}
	}

	session, err := database.GetProductsSession()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur connexion base de données"})
		return
	}

	iter := session.Query(`SELECT ` + productColumns + ` FROM products`).Iter()

	var products []models.Product
	var p models.Product
	for scanProduct(iter, &p) {
		products = append(products, p)
		p = models.Product{}
	}

	if err := iter.Close(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lecture produits: " + err.Error()})
		return
	}

	// ✅ Met en cache
	if data, err := json.Marshal(products); err == nil {
		database.Redis.Set(ctx, productsCacheKey, data, time.Hour)
	}

	c.JSON(http.StatusOK, products)
}

func GetProduct(c *gin.Context) {
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

	var p models.Product
	iter := session.Query(`SELECT `+productColumns+` FROM products WHERE product_id = ?`, productID).Iter()
	found := scanProduct(iter, &p)
	if err := iter.Close(); err != nil || !found {
		c.JSON(http.StatusNotFound, gin.H{"error": "Produit introuvable"})
		return
	}

	c.JSON(http.StatusOK, p)
}

func SearchProducts(c *gin.Context) {
	query := c.Query("q")
	if query == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "paramètre 'q' manquant"})
		return
	}

	// 🔎 1️⃣ Recherche dans Elasticsearch (prioritaire)
	results, err := services.SearchProducts(query)
	if err == nil && len(results) > 0 {
		c.JSON(http.StatusOK, results)
		return
	}

	// 🔁 2️⃣ Fallback ScyllaDB si ES vide (scan complet, filtre en mémoire)
	session, err := database.GetProductsSession()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur connexion base de données"})
		return
	}

	iter := session.Query(`SELECT ` + productColumns + ` FROM products`).Iter()

	var products []models.Product
	var p models.Product
	for scanProduct(iter, &p) {
		if containsIgnoreCase(p.Name, query) || containsIgnoreCase(p.Description, query) || containsTagsIgnoreCase(p.Tags, query) {
			products = append(products, p)
		}
		p = models.Product{}
	}

	if err := iter.Close(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur recherche: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, products)
}

func containsIgnoreCase(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}

func containsTagsIgnoreCase(tags []string, query string) bool {
	for _, tag := range tags {
		if containsIgnoreCase(tag, query) {
			return true
		}
	}
	return false
}

func GetProductsByCategory(c *gin.Context) {
	catUUID, err := gocql.ParseUUID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID de catégorie invalide"})
		return
	}

	session, err := database.GetProductsSession()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur connexion base de données"})
		return
	}

	iter := session.Query(`SELECT product_id, name, price, stock FROM products_by_category WHERE category_id = ?`, catUUID).Iter()

	var products []models.Product
	var p models.Product
	for iter.Scan(&p.ID, &p.Name, &p.Price, &p.Stock) {
		products = append(products, p)
		p = models.Product{}
	}

	if err := iter.Close(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lecture produits: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, products)
}
