package http

import (
	"context"
	"net/http"
	"time"

	"github.com/dmitrijs2005/orgchat/internal/logging"
	"github.com/gin-gonic/gin"
)

const healthTimeout = 2 * time.Second

// Deps are the collaborators the router wires into handlers.
type Deps struct {
	Auth          AuthAPI
	Users         UserAPI
	Notifications NotificationAPI
	Storage       StorageAPI
	DB            Pinger
	Logger        logging.Logger
	// Metrics is optional; nil disables /metrics.
	Metrics MetricsAPI
}

// NewRouter builds the gin engine with every route of the API.
func NewRouter(d Deps) *gin.Engine {
	router := gin.New()
	router.Use(Recovery(d.Logger))
	router.Use(RequestLogger(d.Logger))
	router.Use(CORS())
	if d.Metrics != nil {
		router.Use(RequestMetrics(d.Metrics))
		router.GET("/metrics", gin.WrapH(d.Metrics.Handler()))
	}

	router.GET("/health", health(d.DB))

	authHandler := NewAuthHandler(d.Auth)
	userHandler := NewUserHandler(d.Users)
	notificationHandler := NewNotificationHandler(d.Notifications)
	storageHandler := NewStorageHandler(d.Storage)

	api := router.Group("/api/v1")
	api.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, messageResponse{Message: "Welcome to the OrgChat API"})
	})

	authGroup := api.Group("/auth")
	{
		authGroup.POST("/signup", authHandler.Signup)
		authGroup.POST("/login", authHandler.Login)
		authGroup.POST("/refresh-token", authHandler.RefreshToken)
		authGroup.POST("/logout", authHandler.Logout)
		authGroup.POST("/reset-password/request", authHandler.RequestPasswordReset)
		authGroup.POST("/reset-password/confirm", authHandler.ConfirmPasswordReset)
		authGroup.GET("/validate", BearerAuth(d.Auth), authHandler.Validate)
	}

	protected := api.Group("")
	protected.Use(BearerAuth(d.Auth))

	users := protected.Group("/users")
	{
		users.GET("/me", userHandler.Me)
		users.GET("", userHandler.List)
		users.GET("/:id", userHandler.Get)
		users.PATCH("/:id/status", userHandler.SetStatus)
		users.DELETE("/:id", userHandler.Delete)
	}

	notifications := protected.Group("/notifications")
	{
		notifications.POST("", notificationHandler.Create)
		notifications.GET("", notificationHandler.List)
		notifications.POST("/read-all", notificationHandler.MarkAllRead)
		notifications.GET("/:id", notificationHandler.Get)
		notifications.PATCH("/:id", notificationHandler.Update)
		notifications.POST("/:id/read", notificationHandler.MarkRead)
		notifications.DELETE("/:id", notificationHandler.Delete)
	}

	files := protected.Group("/storage/files")
	{
		files.POST("", storageHandler.Upload)
		files.GET("", storageHandler.List)
		files.GET("/:id/download", storageHandler.Download)
		files.DELETE("/:id", storageHandler.Delete)
	}

	return router
}

func health(db Pinger) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), healthTimeout)
		defer cancel()

		if err := db.PingContext(ctx); err != nil {
			_ = c.Error(err)
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}
