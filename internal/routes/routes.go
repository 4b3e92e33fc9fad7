package routes

import (
	"os"
	"strings"
	"time"

	"velours_back_end/internal/cart"
	pa "velours_back_end/internal/handlers/payement"
	"velours_back_end/internal/handlers/product"
	"velours_back_end/internal/handlers/user"
	"velours_back_end/internal/middleware"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// RegisterRoutes câble toutes les routes de l'API Velours.
func RegisterRoutes(r *gin.Engine, carts *cart.Manager) {
	r.Use(cors.New(corsConfig()))
	r.Use(middleware.APIRateLimit())

	cartHandler := user.NewCartHandler(carts)
	checkoutHandler := pa.NewCheckoutHandler(carts)
	couponHandler := pa.NewCouponHandler(carts.Validator())

	api := r.Group("/api")

	// ---------- Auth ----------
	auth := api.Group("/auth")
	{
		auth.POST("/register", middleware.LoginRateLimit(), user.Register)
		auth.POST("/login", middleware.LoginRateLimit(), user.Login)
		auth.GET("/:provider", user.BeginAuth)
		auth.GET("/:provider/callback", user.CallbackAuth)
		auth.GET("/me", middleware.AuthRequired(), user.Me)
	}

	// ---------- Catalogue (public) ----------
	products := api.Group("/products")
	{
		products.GET("", product.GetAllProducts)
		products.GET("/search", product.SearchProducts)
		products.GET("/:id", product.GetProduct)
		products.GET("/category/:id", product.GetProductsByCategory)
	}
	api.GET("/categories", product.GetAllCategories)

	// ---------- Panier (authentifié) ----------
	cartRoutes := api.Group("/cart", middleware.AuthRequired())
	{
		cartRoutes.GET("", cartHandler.GetCart)
		cartRoutes.POST("/items", cartHandler.AddToCart)
		cartRoutes.PUT("/items", cartHandler.UpdateQuantity)
		cartRoutes.DELETE("/items", cartHandler.RemoveFromCart)
		cartRoutes.DELETE("", cartHandler.ClearCart)
		cartRoutes.POST("/coupon", cartHandler.ApplyCoupon)
		cartRoutes.DELETE("/coupon", cartHandler.RemoveCoupon)
		cartRoutes.GET("/ws", cartHandler.CartWebSocket)
	}

	// ---------- Coupons ----------
	api.GET("/coupons/validate", couponHandler.ValidateCoupon)

	// ---------- Checkout & commandes (authentifié) ----------
	api.GET("/shipping/options", pa.GetShippingOptions)
	checkout := api.Group("", middleware.AuthRequired())
	{
		checkout.POST("/checkout", checkoutHandler.Checkout)
		checkout.GET("/orders", user.GetMyOrders)
		checkout.GET("/orders/:id", user.GetOrderByID)
	}

	// ---------- Wishlist (authentifié) ----------
	wishlist := api.Group("/wishlist", middleware.AuthRequired())
	{
		wishlist.GET("", user.GetWishlist)
		wishlist.POST("", user.AddToWishlist)
		wishlist.DELETE("/:productId", user.RemoveFromWishlist)
	}

	// ---------- Administration ----------
	admin := api.Group("/admin", middleware.AuthRequired(), middleware.RequireAdmin)
	{
		admin.POST("/products", product.CreateProduct)
		admin.PUT("/products/:id", product.UpdateProduct)
		admin.DELETE("/products/:id", product.DeleteProduct)
		admin.POST("/products/images", product.UploadImage)
		admin.GET("/products/images/sign", product.SignImageURL)
		admin.POST("/products/images/attach", product.AddImageToProduct)
		admin.DELETE("/products/images", product.RemoveImageFromProduct)

		admin.PUT("/products/:id/stock", product.UpdateStock)
		admin.GET("/products/:id/stock-movements", product.GetStockMovements)
		admin.GET("/inventory/low-stock", product.GetLowStockProducts)

		admin.POST("/categories", product.CreateCategory)
		admin.PUT("/categories/:id", product.UpdateCategory)
		admin.DELETE("/categories/:id", product.DeleteCategory)

		admin.GET("/orders", pa.GetAllOrders)
		admin.PUT("/orders/:id/status", pa.UpdateOrderStatus)

		admin.POST("/coupons", pa.CreateCoupon)
		admin.GET("/coupons", pa.GetAllCoupons)
		admin.PUT("/coupons/:id", pa.UpdateCoupon)
		admin.DELETE("/coupons/:id", pa.DeleteCoupon)
	}
}

func corsConfig() cors.Config {
	origins := []string{"http://localhost:5173", "http://localhost:3000"}
	if env := os.Getenv("CORS_ORIGINS"); env != "" {
		origins = strings.Split(env, ",")
	}

	return cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
}
