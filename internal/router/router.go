package router

import (
	"net/http"

	"github.com/devoriginal/account-backend/config"
	"github.com/devoriginal/account-backend/internal/app/controller"
	"github.com/devoriginal/account-backend/internal/middleware"
	"github.com/gin-gonic/gin"
)

type Router struct {
	authController  *controller.AuthController
	userController  *controller.UserController
	photoController *controller.PhotoController
	authMiddleware  *middleware.AuthMiddleware
	config          *config.Config
}

func NewRouter(
	authController *controller.AuthController,
	userController *controller.UserController,
	photoController *controller.PhotoController,
	authMiddleware *middleware.AuthMiddleware,
	cfg *config.Config,
) *Router {
	return &Router{
		authController:  authController,
		userController:  userController,
		photoController: photoController,
		authMiddleware:  authMiddleware,
		config:          cfg,
	}
}

func (r *Router) Setup() *gin.Engine {
	gin.SetMode(r.config.Server.GinMode)

	router := gin.New()
	router.MaxMultipartMemory = r.config.Photo.MaxUploadSize

	router.Use(gin.Recovery())
	router.Use(middleware.LoggingMiddleware())
	router.Use(corsMiddleware(r.config.CORS.AllowedOrigins))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"message": "Account API is running",
		})
	})

	authenticated := r.authMiddleware.Authenticate()

	v1 := router.Group("/api/v1")
	{
		auth := v1.Group("/auth")
		{
			auth.POST("", r.authController.CheckEmail)
			auth.POST("/register", r.authController.Register)
			auth.POST("/login", r.authController.Login)
			auth.POST("/forget", r.authController.Forget)
			auth.POST("/password-reset", r.authController.PasswordReset)

			auth.GET("/me", authenticated, r.authController.GetMe)
			auth.DELETE("/me", authenticated, r.authController.DeleteMe)
			auth.PUT("/profile", authenticated, r.authController.UpdateProfile)
			auth.PUT("/password", authenticated, r.authController.ChangePassword)

			auth.PUT("/profile-picture", authenticated, r.photoController.UploadPhoto)
			auth.GET("/photo", authenticated, r.photoController.GetPhoto)
			auth.DELETE("/photo", authenticated, r.photoController.DeletePhoto)
		}

		users := v1.Group("/users", authenticated)
		{
			users.GET("/:id", r.userController.GetByID)
			users.GET("/email/:email", r.userController.GetByEmail)
			users.PUT("/:id", r.authMiddleware.RequireSelf("id"), r.userController.Update)
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
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Authorization, Accept, Origin, X-Request-ID")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
