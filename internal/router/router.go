package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ikkim/storerating-backend/config"
	"github.com/ikkim/storerating-backend/internal/app/controller"
	"github.com/ikkim/storerating-backend/internal/app/model"
	"github.com/ikkim/storerating-backend/internal/middleware"
	"github.com/ikkim/storerating-backend/pkg/metrics"
)

type Router struct {
	authController   *controller.AuthController
	adminController  *controller.AdminController
	storeController  *controller.StoreController
	ratingController *controller.RatingController
	ownerController  *controller.OwnerController
	authMiddleware   *middleware.AuthMiddleware
	authLimiter      *middleware.RateLimiter
	config           *config.Config
}

func NewRouter(
	authController *controller.AuthController,
	adminController *controller.AdminController,
	storeController *controller.StoreController,
	ratingController *controller.RatingController,
	ownerController *controller.OwnerController,
	authMiddleware *middleware.AuthMiddleware,
	authLimiter *middleware.RateLimiter,
	cfg *config.Config,
) *Router {
	return &Router{
		authController:   authController,
		adminController:  adminController,
		storeController:  storeController,
		ratingController: ratingController,
		ownerController:  ownerController,
		authMiddleware:   authMiddleware,
		authLimiter:      authLimiter,
		config:           cfg,
	}
}

func (r *Router) Setup() *gin.Engine {
	gin.SetMode(r.config.Server.GinMode)

	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(middleware.LoggingMiddleware())
	router.Use(metrics.Middleware())
	router.Use(corsMiddleware(r.config.CORS.AllowedOrigins))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"message": "Store rating API is running",
		})
	})
	router.GET("/metrics", gin.WrapH(metrics.Handler()))

	authenticate := r.authMiddleware.Authenticate()

	api := router.Group("/api")
	{
		auth := api.Group("/auth")
		{
			auth.POST("/register", r.authLimiter.Middleware(), r.authController.Register)
			auth.POST("/login", r.authLimiter.Middleware(), r.authController.Login)
			auth.PUT("/update-password", authenticate, r.authController.UpdatePassword)
			auth.GET("/me", authenticate, r.authController.GetMe)
		}

		admin := api.Group("/admin")
		admin.Use(authenticate, r.authMiddleware.RequireRole(model.RoleSystemAdmin))
		{
			admin.GET("/dashboard-stats", r.adminController.DashboardStats)
			admin.POST("/users", r.adminController.CreateUser)
			admin.GET("/users", r.adminController.ListUsers)
			admin.POST("/stores", r.adminController.CreateStore)
			admin.GET("/stores", r.adminController.ListStores)
			admin.GET("/stores/export", r.adminController.ExportStores)
			admin.GET("/ratings", r.adminController.ListRatings)
		}

		owner := api.Group("/owner")
		owner.Use(authenticate, r.authMiddleware.RequireRole(model.RoleStoreOwner))
		{
			owner.GET("/dashboard", r.ownerController.Dashboard)
			owner.GET("/feed", r.ownerController.Feed)
		}

		users := api.Group("/users")
		users.Use(authenticate, r.authMiddleware.RequireRole(model.RoleNormalUser, model.RoleSystemAdmin))
		{
			users.GET("/stores", r.storeController.ListStores)
		}

		ratings := api.Group("/ratings")
		ratings.Use(authenticate, r.authMiddleware.RequireRole(model.RoleNormalUser))
		{
			ratings.POST("", r.ratingController.Submit)
			ratings.PUT("", r.ratingController.Modify)
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
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, accept, origin, Cache-Control, X-Requested-With, X-Request-ID")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT")
		c.Writer.Header().Set("Access-Control-Expose-Headers", "Content-Disposition, X-Request-ID")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
