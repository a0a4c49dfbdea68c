package routes

import (
	"net/http"
	"time"

	"atelier_back_end/internal/handlers"
	"atelier_back_end/internal/handlers/checkout"
	"atelier_back_end/internal/handlers/customize"
	"atelier_back_end/internal/handlers/product"
	"atelier_back_end/internal/handlers/user"
	"atelier_back_end/internal/middleware"
	"atelier_back_end/internal/services"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// Deps regroupe les handlers et middlewares montés sur le routeur.
type Deps struct {
	AllowedOrigins []string

	Auth    *middleware.Auth
	Limiter *middleware.RateLimiter
	// Events reçoit le journal d'audit des actions admin. Nil : journal local.
	Events  services.EventPublisher

	Products  *product.Handler
	Users     *user.AuthHandler
	Cart      *user.CartHandler
	Orders    *user.OrderHandler
	Customize *customize.Handler
	Checkout  *checkout.Handler
	Contact   *handlers.ContactHandler
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"X-RateLimit-Limit", "X-RateLimit-Remaining"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(origins) == 0 {
		cfg.AllowAllOrigins = true
		cfg.AllowCredentials = false
	} else {
		cfg.AllowOrigins = origins
	}
	return cfg
}

func RegisterRoutes(r *gin.Engine, d Deps) {
	r.Use(cors.New(corsConfig(d.AllowedOrigins)))

	events := d.Events
	if events == nil {
		events = services.LogPublisher{}
	}
	required := d.Auth.Required()
	audit := middleware.Audit(events)
	admin := []gin.HandlerFunc{required, middleware.RequireAdmin, audit}

	api := r.Group("/api")
	api.Use(d.Limiter.API())

	api.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "timestamp": time.Now().Unix()})
	})

	// Catalogue
	products := api.Group("/products")
	{
		products.GET("", d.Products.List)
		products.POST("", append(admin, d.Products.Create)...)
		products.GET("/customizable/list", d.Products.Customizable)
		products.GET("/category/:category", d.Products.ByCategory)
		products.GET("/search", d.Limiter.Search(), d.Products.Search)
		products.POST("/images", append(admin, d.Products.UploadImage)...)
		products.GET("/:id", d.Products.Get)
	}

	// Comptes
	users := api.Group("/users")
	{
		users.POST("/register", d.Limiter.Register(), d.Users.Register)
		users.POST("/login", d.Limiter.Login(), d.Users.Login)
		users.POST("/logout", required, d.Users.Logout)
		users.GET("/profile", required, d.Users.Profile)
		users.PUT("/profile", required, d.Users.UpdateProfile)
		users.PUT("/password", required, d.Users.ChangePassword)
	}

	// Panier
	cart := api.Group("/cart", required)
	{
		cart.GET("", d.Cart.Get)
		cart.POST("/add", d.Limiter.Cart(), d.Cart.Add)
		cart.PUT("/:key", d.Cart.UpdateQuantity)
		cart.DELETE("/:key", d.Cart.Remove)
		cart.DELETE("", d.Cart.Clear)
		cart.GET("/ws", d.Cart.Watch)
	}
	api.GET("/shipping", checkout.GetShippingOptions)

	// Atelier de personnalisation
	custom := api.Group("/customize", required)
	{
		custom.POST("/:productId", d.Customize.Start)
		custom.GET("/session/:id", d.Customize.Get)
		custom.PATCH("/session/:id", d.Customize.Update)
		custom.POST("/session/:id/image", d.Customize.UploadImage)
		custom.POST("/session/:id/reset", d.Customize.Reset)
		custom.GET("/session/:id/preview", d.Customize.Preview)
		custom.POST("/session/:id/cart", d.Customize.AddToCart)
	}

	// Commandes
	api.POST("/checkout", d.Auth.Optional(), d.Checkout.Checkout)
	orders := api.Group("/orders", required)
	{
		orders.POST("", d.Orders.Create)
		orders.GET("", d.Orders.List)
		orders.GET("/:id", d.Orders.Get)
		orders.GET("/:id/qr", d.Orders.QRCode)
		orders.PUT("/:id/status", middleware.RequireAdmin, audit, d.Orders.UpdateStatus)
	}

	// Contact
	api.POST("/contact", d.Limiter.Contact(), d.Contact.Submit)
	api.GET("/admin/contact", append(admin, d.Contact.List)...)
}
