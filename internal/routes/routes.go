package routes

import (
	"os"
	"time"

	"storefront_back_end/internal/handlers/admin"
	"storefront_back_end/internal/handlers/payement"
	"storefront_back_end/internal/handlers/product"
	"storefront_back_end/internal/handlers/user"
	"storefront_back_end/internal/middleware"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.Engine) {
	frontend := os.Getenv("FRONTEND_URL")
	if frontend == "" {
		frontend = "http://localhost:3000"
	}

	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{frontend},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// Le webhook Stripe est enregistré hors du groupe rate-limité :
	// pas de session, pas de quota, la signature fait foi.
	r.POST("/api/payment/webhook", payement.StripeWebhook)

	api := r.Group("/api")
	api.Use(middleware.APIRateLimit())

	// Auth
	auth := api.Group("/auth")
	{
		auth.POST("/register", middleware.RegisterRateLimit(), user.CreateUser)
		auth.POST("/login", middleware.LoginRateLimit(), user.Login)
		auth.GET("/me", middleware.AuthRequired(), user.Me)
	}

	// Catalogue public
	api.GET("/products", product.GetProducts)
	api.GET("/products/:id", product.GetProductByID)
	api.GET("/products/:id/image", product.GetProductImageURL)

	// Gestion catalogue (admin)
	authed := middleware.AuthRequired()
	api.POST("/products", authed, middleware.RequireAdmin, product.CreateProduct)
	api.PUT("/products/:id", authed, middleware.RequireAdmin, product.UpdateProduct)
	api.DELETE("/products/:id", authed, middleware.RequireAdmin, product.DeleteProduct)
	api.POST("/products/:id/image", authed, middleware.RequireAdmin, product.UploadProductImage)
	api.PUT("/products/:id/stock", authed, middleware.RequireAdmin, product.UpdateStock)
	api.GET("/products/:id/movements", authed, middleware.RequireAdmin, product.GetStockMovements)

	// Panier de session (cookie anonyme)
	cart := api.Group("/cart")
	cart.Use(middleware.CartSession(), middleware.CartRateLimit())
	{
		cart.GET("", user.GetCart)
		cart.POST("/add", user.AddToCart)
		cart.PUT("/update", user.UpdateCartItem)
		cart.DELETE("/:productId", user.RemoveFromCart)
		cart.DELETE("", user.ClearCart)
		cart.GET("/ws", user.CartWebSocket)
	}

	// Commandes
	orders := api.Group("/orders")
	orders.Use(middleware.AuthRequired())
	{
		orders.POST("", middleware.CartSession(), user.CreateOrder)
		orders.GET("", user.GetMyOrders)
		orders.GET("/:id", user.GetOrderByID)
		orders.PUT("/:id/status", middleware.RequireAdmin, admin.UpdateOrderStatus)
	}

	// Paiement
	api.POST("/payment/intent",
		middleware.AuthRequired(), middleware.CartSession(), payement.CreatePaymentIntent)

	// Administration
	adminGroup := api.Group("/admin")
	adminGroup.Use(middleware.AuthRequired(), middleware.RequireAdmin)
	{
		adminGroup.GET("/orders", admin.GetAllOrders)
		adminGroup.GET("/dashboard", payement.GetDashboardStats)
	}

	// Seed : route de développement, réservée aux admins
	api.POST("/seed", authed, middleware.RequireAdmin, admin.SeedDatabase)
}
