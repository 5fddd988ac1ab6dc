package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"geekdeals/internal/handlers"
)

func SetupRoutes(
	r *gin.Engine,
	authMiddleware gin.HandlerFunc,
	authHandler *handlers.AuthHandler,
	userHandler *handlers.UserHandler,
	productHandler *handlers.ProductHandler,
) *gin.Engine {

	// ---- health
	r.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, "Geek Deals Platform API funcionando!")
	})
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api")

	// ---- public
	auth := api.Group("/auth")
	{
		auth.POST("/register", userHandler.Register)
		auth.POST("/login", authHandler.Login)
		auth.POST("/2fa/verify", authHandler.VerifyCode)
		auth.POST("/2fa/resend", authHandler.ResendCode)
		auth.GET("/me", authMiddleware, authHandler.Me)
	}

	// ---- protected
	products := api.Group("/products", authMiddleware)
	{
		products.GET("", productHandler.List)
		products.POST("", productHandler.Create)
		products.GET("/:id", productHandler.GetByID)
		products.PUT("/:id", productHandler.Update)
		products.DELETE("/:id", productHandler.Delete)
	}

	return r
}
