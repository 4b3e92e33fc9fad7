package product

import (
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gocql/gocql"

	"velours_back_end/internal/database"
	"velours_back_end/internal/models"
)

func CreateCategory(c *gin.Context) {
	var cat models.Category
	if err := c.ShouldBindJSON(&cat); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if cat.Name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Le champ 'name' est obligatoire"})
		return
	}
	if cat.Slug == "" {
		cat.Slug = strings.ToLower(strings.ReplaceAll(cat.Name, " ", "-"))
	}

	session, err := database.GetProductsSession()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur connexion base de données"})
		return
	}

	cat.ID = gocql.TimeUUID()
	now := time.Now()
	cat.CreatedAt = &now

	if err := session.Query(
		`INSERT INTO categories (category_id, name, slug, description, image_url, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		cat.ID, cat.Name, cat.Slug, cat.Description, cat.ImageURL, cat.CreatedAt,
	).Exec(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur création catégorie: " + err.Error()})
		return
	}

	log.Printf("✅ Catégorie créée: %s (%s)", cat.Name, cat.ID)
	c.JSON(http.StatusCreated, cat)
}

func GetAllCategories(c *gin.Context) {
	session, err := database.GetProductsSession()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur connexion base de données"})
		return
	}

	iter := session.Query(`SELECT category_id, name, slug, description, image_url, created_at FROM categories`).Iter()

	var categories []models.Category
	var cat models.Category
	for iter.Scan(&cat.ID, &cat.Name, &cat.Slug, &cat.Description, &cat.ImageURL, &cat.CreatedAt) {
		categories = append(categories, cat)
		cat = models.Category{}
	}

	if err := iter.Close(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lecture catégories: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, categories)
}

func UpdateCategory(c *gin.Context) {
	catID, err := gocql.ParseUUID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID de catégorie invalide"})
		return
	}

	var input struct {
		Name        *string `json:"name"`
		Slug        *string `json:"slug"`
		Description *string `json:"description"`
		ImageURL    *string `json:"image_url"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Données invalides"})
		return
	}

	updates := []string{}
	values := []interface{}{}

	if input.Name != nil {
		updates = append(updates, "name = ?")
		values = append(values, *input.Name)
	}
	if input.Slug != nil {
		updates = append(updates, "slug = ?")
		values = append(values, *input.Slug)
	}
	if input.Description != nil {
		updates = append(updates, "description = ?")
		values = append(values, *input.Description)
	}
	if input.ImageURL != nil {
		updates = append(updates, "image_url = ?")
		values = append(values, *input.ImageURL)
	}

	if len(updates) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Aucune donnée à mettre à jour"})
		return
	}

	values = append(values, catID)

	session, err := database.GetProductsSession()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur connexion base de données"})
		return
	}

	query := "UPDATE categories SET " + strings.Join(updates, ", ") + " WHERE category_id = ?"
	if err := session.Query(query, values...).Exec(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lors de la mise à jour"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Catégorie mise à jour avec succès"})
}

func DeleteCategory(c *gin.Context) {
	catID, err := gocql.ParseUUID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID de catégorie invalide"})
		return
	}

	session, err := database.GetProductsSession()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur connexion base de données"})
		return
	}

	// Refuse la suppression tant que des produits y sont rattachés
	iter := session.Query(`SELECT product_id FROM products_by_category WHERE category_id = ? LIMIT 1`, catID).Iter()
	var pid gocql.UUID
	hasProducts := iter.Scan(&pid)
	_ = iter.Close()
	if hasProducts {
		c.JSON(http.StatusConflict, gin.H{"error": "Des produits sont encore rattachés à cette catégorie"})
		return
	}

	if err := session.Query(`DELETE FROM categories WHERE category_id = ?`, catID).Exec(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lors de la suppression"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Catégorie supprimée avec succès"})
}
