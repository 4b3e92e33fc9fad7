package user

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"velours_back_end/internal/config"
	"velours_back_end/internal/database"
	"velours_back_end/internal/models"
	"velours_back_end/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/gocql/gocql"
	"github.com/markbates/goth"
	"github.com/markbates/goth/gothic"
	"github.com/markbates/goth/providers/facebook"
	"github.com/markbates/goth/providers/google"
)

// ================== AUTH LOCALE ==================

func Register(c *gin.Context) {
	var input struct {
		Name     string `json:"name" binding:"required"`
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required,min=8"`
		Locale   string `json:"locale"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	session, err := database.GetUsersSession()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur connexion base de données"})
		return
	}

	// email déjà pris pour un compte local ?
	if _, err := findUserByEmail(session, input.Email, "local"); err == nil {
		c.JSON(http.StatusConflict, gin.H{"error": "Un compte avec cet email existe déjà"})
		return
	}

	hashedPassword, err := utils.HashPassword(input.Password)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur création utilisateur"})
		return
	}

	if input.Locale == "" {
		input.Locale = "fr"
	}

	user := models.User{
		ID:       gocql.TimeUUID().String(),
		Name:     input.Name,
		Email:    strings.ToLower(input.Email),
		Password: hashedPassword,
		Role:     "customer",
		Provider: "local",
		Locale:   input.Locale,
	}

	if err := insertUser(session, user); err != nil {
		log.Printf("❌ Erreur création utilisateur: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur création utilisateur"})
		return
	}

	token, err := utils.GenerateJWT(user)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur génération token"})
		return
	}

	log.Printf("✅ Utilisateur créé: %s", user.Email)
	c.JSON(http.StatusCreated, gin.H{
		"token":  token,
		"userId": user.ID,
		"email":  user.Email,
		"name":   user.Name,
		"role":   user.Role,
	})
}

func Login(c *gin.Context) {
	var input struct {
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	session, err := database.GetUsersSession()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur connexion base de données"})
		return
	}

	user, err := findUserByEmail(session, input.Email, "local")
	if err != nil || !utils.CheckPassword(user.Password, input.Password) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Email ou mot de passe incorrect"})
		return
	}

	token, err := utils.GenerateJWT(user)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur génération token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token":  token,
		"userId": user.ID,
		"email":  user.Email,
		"name":   user.Name,
		"role":   user.Role,
	})
}

func Me(c *gin.Context) {
	userID, ok := c.Get("user_id")
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Utilisateur non authentifié"})
		return
	}

	session, err := database.GetUsersSession()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur connexion base de données"})
		return
	}

	var user models.User
	if err := session.Query(
		`SELECT user_id, name, email, role, provider, locale FROM users WHERE user_id = ?`,
		fmt.Sprintf("%v", userID),
	).Scan(&user.ID, &user.Name, &user.Email, &user.Role, &user.Provider, &user.Locale); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Utilisateur introuvable"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"userId":   user.ID,
		"name":     user.Name,
		"email":    user.Email,
		"role":     user.Role,
		"provider": user.Provider,
		"locale":   user.Locale,
	})
}

func findUserByEmail(session *gocql.Session, email, provider string) (models.User, error) {
	var user models.User
	err := session.Query(
		`SELECT user_id, name, email, password, role, provider, provider_id, locale
		 FROM users WHERE email = ? AND provider = ? LIMIT 1 ALLOW FILTERING`,
		strings.ToLower(email), provider,
	).Scan(&user.ID, &user.Name, &user.Email, &user.Password, &user.Role,
		&user.Provider, &user.ProviderID, &user.Locale)
	return user, err
}

func insertUser(session *gocql.Session, user models.User) error {
	return session.Query(
		`INSERT INTO users (user_id, name, email, password, role, provider, provider_id, locale, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		user.ID, user.Name, user.Email, user.Password, user.Role,
		user.Provider, user.ProviderID, user.Locale, time.Now(),
	).Exec()
}

// ================== AUTH SOCIALE ==================

func BeginAuth(c *gin.Context) {
	provider := c.Param("provider")
	if provider == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "aucun provider spécifié"})
		return
	}

	redirectURL := c.Query("redirect_url")
	baseURL := os.Getenv("BASE_URL")
	if baseURL == "" {
		baseURL = "http://localhost:8080"
	}
	callbackURL := baseURL + "/api/auth/" + provider + "/callback"

	switch provider {
	case "google":
		goth.UseProviders(google.New(
			os.Getenv("GOOGLE_CLIENT_ID"),
			os.Getenv("GOOGLE_CLIENT_SECRET"),
			callbackURL,
		))
	case "facebook":
		goth.UseProviders(facebook.New(
			os.Getenv("FACEBOOK_CLIENT_ID"),
			os.Getenv("FACEBOOK_CLIENT_SECRET"),
			callbackURL,
		))
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "Provider non supporté"})
		return
	}

	ctx := context.Background()
	state := generateRandomState()
	if redirectURL != "" {
		_ = database.Redis.Set(ctx, "oauth_redirect:"+state, redirectURL, 10*time.Minute).Err()
	}

	q := c.Request.URL.Query()
	q.Set("provider", provider)
	q.Set("state", state)
	c.Request.URL.RawQuery = q.Encode()
	gothic.BeginAuthHandler(c.Writer, c.Request)
}

func generateRandomState() string {
	b := make([]byte, 32)
	rand.Read(b)
	return base64.URLEncoding.EncodeToString(b)
}

func CallbackAuth(c *gin.Context) {
	provider := c.Param("provider")
	state := c.Query("state")
	code := c.Query("code")
	if provider == "" || code == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Paramètres OAuth invalides"})
		return
	}

	baseURL := os.Getenv("BASE_URL")
	if baseURL == "" {
		baseURL = "http://localhost:8080"
	}

	var userEmail, userName, userID string

	switch provider {
	case "google":
		conf := config.GoogleOAuthConfig
		conf.RedirectURL = baseURL + "/api/auth/google/callback"
		// le .env est chargé après l'init du package config
		conf.ClientID = os.Getenv("GOOGLE_CLIENT_ID")
		conf.ClientSecret = os.Getenv("GOOGLE_CLIENT_SECRET")

		oauthToken, err := conf.Exchange(c.Request.Context(), code)
		if err != nil {
			c.JSON(http.StatusBadGateway, gin.H{"error": "Échec échange code Google"})
			return
		}

		userResp, err := http.Get("https://www.googleapis.com/oauth2/v2/userinfo?access_token=" + url.QueryEscape(oauthToken.AccessToken))
		if err != nil {
			c.JSON(http.StatusBadGateway, gin.H{"error": "Échec lecture profil Google"})
			return
		}
		defer userResp.Body.Close()
		var gu struct{ ID, Email, Name string }
		json.NewDecoder(userResp.Body).Decode(&gu)
		userID, userEmail, userName = gu.ID, gu.Email, gu.Name

	case "facebook":
		tokenURL := fmt.Sprintf("https://graph.facebook.com/v12.0/oauth/access_token?client_id=%s&redirect_uri=%s&client_secret=%s&code=%s",
			os.Getenv("FACEBOOK_CLIENT_ID"),
			url.QueryEscape(baseURL+"/api/auth/facebook/callback"),
			os.Getenv("FACEBOOK_CLIENT_SECRET"), code)
		resp, err := http.Get(tokenURL)
		if err != nil {
			c.JSON(http.StatusBadGateway, gin.H{"error": "Échec échange code Facebook"})
			return
		}
		defer resp.Body.Close()
		var tokenResp struct {
			AccessToken string `json:"access_token"`
		}
		json.NewDecoder(resp.Body).Decode(&tokenResp)

		userResp, err := http.Get("https://graph.facebook.com/me?fields=id,name,email&access_token=" + tokenResp.AccessToken)
		if err != nil {
			c.JSON(http.StatusBadGateway, gin.H{"error": "Échec lecture profil Facebook"})
			return
		}
		defer userResp.Body.Close()
		var fb struct{ ID, Email, Name string }
		json.NewDecoder(userResp.Body).Decode(&fb)
		userID, userEmail, userName = fb.ID, fb.Email, fb.Name

	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "Provider non supporté"})
		return
	}

	if userEmail == "" {
		c.JSON(http.StatusBadGateway, gin.H{"error": "Profil OAuth sans email"})
		return
	}

	handleOAuthUser(c, provider, userID, userEmail, userName, state)
}

func findOrCreateOAuthUser(provider, providerID, email, name string) models.User {
	session, err := database.GetUsersSession()
	if err != nil {
		return models.User{}
	}

	var user models.User

	// 1️⃣ Recherche par provider_id
	err = session.Query(
		`SELECT user_id, name, email, role, provider, provider_id, locale
		 FROM users WHERE provider = ? AND provider_id = ? LIMIT 1 ALLOW FILTERING`,
		provider, providerID,
	).Scan(&user.ID, &user.Name, &user.Email, &user.Role, &user.Provider, &user.ProviderID, &user.Locale)
	if err == nil {
		log.Printf("✅ Utilisateur OAuth existant trouvé : %s", email)
		return user
	}

	// 2️⃣ Sinon, recherche par email (compte local fusionné)
	err = session.Query(
		`SELECT user_id, name, email, role, provider, provider_id, locale
		 FROM users WHERE email = ? LIMIT 1 ALLOW FILTERING`,
		strings.ToLower(email),
	).Scan(&user.ID, &user.Name, &user.Email, &user.Role, &user.Provider, &user.ProviderID, &user.Locale)
	if err == nil {
		_ = session.Query(
			`UPDATE users SET provider = ?, provider_id = ?, name = ? WHERE user_id = ?`,
			provider, providerID, name, user.ID,
		).Exec()
		log.Printf("🔄 Compte existant fusionné avec provider %s : %s", provider, email)
		user.Provider = provider
		user.ProviderID = providerID
		return user
	}

	// 3️⃣ Création d'un nouvel utilisateur OAuth
	user = models.User{
		ID:         gocql.TimeUUID().String(),
		Email:      strings.ToLower(email),
		Name:       name,
		Provider:   provider,
		ProviderID: providerID,
		Role:       "customer",
		Locale:     "fr",
	}
	if err := insertUser(session, user); err != nil {
		log.Printf("❌ Erreur création utilisateur OAuth: %v", err)
	} else {
		log.Printf("🆕 Utilisateur OAuth créé (%s) : %s", provider, email)
	}

	return user
}

func handleOAuthUser(c *gin.Context, provider, providerID, email, name, state string) {
	ctx := context.Background()
	user := findOrCreateOAuthUser(provider, providerID, email, name)
	if user.ID == "" {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur création utilisateur"})
		return
	}

	token, err := utils.GenerateJWT(user)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur génération token"})
		return
	}

	redirectURI, _ := database.Redis.Get(ctx, "oauth_redirect:"+state).Result()
	_, _ = database.Redis.Del(ctx, "oauth_redirect:"+state).Result()

	if redirectURI == "" {
		redirectURI = os.Getenv("FRONTEND_URL")
		if redirectURI == "" {
			redirectURI = "http://localhost:5173"
		}
	}

	allowed := []string{
		"http://localhost:5173",
		"http://localhost:3000",
		"https://velours-boutique.fr",
		"https://www.velours-boutique.fr",
		"velours://auth/callback",
	}
	valid := false
	for _, o := range allowed {
		if strings.HasPrefix(redirectURI, o) {
			valid = true
			break
		}
	}
	if !valid {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Redirect url non autorisé"})
		return
	}

	sep := "?"
	if strings.Contains(redirectURI, "?") {
		sep = "&"
	}
	c.Redirect(http.StatusTemporaryRedirect, redirectURI+sep+"token="+url.QueryEscape(token))
}
