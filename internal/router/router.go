package router

import (
	"github.com/gin-gonic/gin"
	"github.com/roy-rc/sfstore/config"
	"github.com/roy-rc/sfstore/internal/app/controller"
	"github.com/roy-rc/sfstore/internal/middleware"
	"github.com/roy-rc/sfstore/internal/ws"
)

type Router struct {
	authController     *controller.AuthController
	productController  *controller.ProductController
	categoryController *controller.CategoryController
	cartController     *controller.CartController
	orderController    *controller.OrderController
	uploadController   *controller.UploadController
	authMiddleware     *middleware.AuthMiddleware
	hub                *ws.Hub
	config             *config.Config
}

func NewRouter(
	authController *controller.AuthController,
	productController *controller.ProductController,
	categoryController *controller.CategoryController,
	cartController *controller.CartController,
	orderController *controller.OrderController,
	uploadController *controller.UploadController,
	authMiddleware *middleware.AuthMiddleware,
	hub *ws.Hub,
	cfg *config.Config,
) *Router {
	return &Router{
		authController:     authController,
		productController:  productController,
		categoryController: categoryController,
		cartController:     cartController,
		orderController:    orderController,
		uploadController:   uploadController,
		authMiddleware:     authMiddleware,
		hub:                hub,
		config:             cfg,
	}
}

func (r *Router) Setup() *gin.Engine {
	gin.SetMode(r.config.Server.GinMode)

	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(middleware.LoggingMiddleware())
	router.Use(corsMiddleware(r.config.CORS.AllowedOrigins))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "healthy",
			"message": "SFSTORE API is running",
		})
	})

	api := router.Group("/api")
	{
		auth := api.Group("/auth")
		{
			auth.POST("/register", r.authController.Register)
			auth.POST("/login", r.authController.Login)
			auth.POST("/logout", r.authMiddleware.Authenticate(), r.authController.Logout)
			auth.GET("/me", r.authMiddleware.Authenticate(), r.authController.Me)
			auth.PUT("/me", r.authMiddleware.Authenticate(), r.authController.UpdateProfile)
		}

		products := api.Group("/products")
		{
			products.GET("", r.productController.List)
			products.GET("/search", r.productController.Search)
			products.GET("/featured", r.productController.Featured)
			products.GET("/:slug", r.productController.GetBySlug)
			products.GET("/:slug/related", r.productController.Related)
		}

		categories := api.Group("/categories")
		{
			categories.GET("", r.categoryController.Tree)
			categories.GET("/:slug", r.categoryController.GetBySlug)
		}

		// The cart serves guests and customers alike: an optional token binds
		// the customer, the session cookie binds everyone else.
		cart := api.Group("/cart")
		cart.Use(r.authMiddleware.OptionalAuthenticate())
		cart.Use(middleware.CartSession(&r.config.Cart))
		{
			cart.GET("", r.cartController.GetCart)
			cart.GET("/summary", r.cartController.Summary)
			cart.POST("/items", r.cartController.AddItem)
			cart.PUT("/items/:productID", r.cartController.UpdateItem)
			cart.DELETE("/items/:productID", r.cartController.RemoveItem)
			cart.DELETE("", r.cartController.Clear)
		}

		checkout := api.Group("/checkout")
		checkout.Use(r.authMiddleware.Authenticate())
		{
			checkout.POST("", r.orderController.Checkout)
		}

		orders := api.Group("/orders")
		orders.Use(r.authMiddleware.Authenticate())
		{
			orders.GET("", r.orderController.ListMine)
			orders.GET("/:number", r.orderController.GetByNumber)
		}

		admin := api.Group("/admin")
		admin.Use(r.authMiddleware.Authenticate())
		admin.Use(r.authMiddleware.RequireRole("admin"))
		{
			admin.GET("/products", r.productController.AdminList)
			admin.GET("/products/:id", r.productController.AdminGet)
			admin.POST("/products", r.productController.Create)
			admin.PUT("/products/:id", r.productController.Update)
			admin.DELETE("/products/:id", r.productController.Delete)

			admin.GET("/categories", r.categoryController.AdminList)
			admin.POST("/categories", r.categoryController.Create)
			admin.PUT("/categories/:id", r.categoryController.Update)
			admin.DELETE("/categories/:id", r.categoryController.Delete)

			admin.GET("/orders", r.orderController.AdminList)
			admin.GET("/orders/stats", r.orderController.Stats)
			admin.GET("/orders/export", r.orderController.Export)
			admin.GET("/orders/:id", r.orderController.AdminGet)
			admin.PUT("/orders/:id/status", r.orderController.UpdateStatus)

			admin.GET("/carts", r.orderController.Carts)

			admin.POST("/uploads/product-image", r.uploadController.PresignProductImage)

			admin.GET("/ws", ws.ServeWS(r.hub))
		}
	}

	return router
}

func corsMiddleware(allowedOrigins []string) gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")

		allowed := false
		for _, allowedOrigin := range allowedOrigins {
			if origin == allowedOrigin || allowedOrigin == "*" {
				allowed = true
				break
			}
		}

		if allowed {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
		}

		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE, PATCH")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}
