package http

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

type Handlers struct {
	Users         *UserHandler
	Events        *EventHandler
	Notifications *NotificationHandler
	Insights      *InsightsHandler
}

// SetupRouter wires the thin HTTP plumbing over the services.
func SetupRouter(h Handlers, allowOrigins []string, debug bool) *gin.Engine {
	if !debug {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(cors.New(cors.Config{
		AllowOrigins:     allowOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
	}))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "PlugHub API is running 🔥"})
	})

	api := r.Group("/api")

	users := api.Group("/users")
	{
		users.POST("/register", h.Users.Register)
		users.POST("/login", h.Users.Login)
		users.GET("", h.Users.Directory)
		users.GET("/:id", h.Users.Get)
		users.PUT("/:id/instagram", h.Users.UpdateInstagram)
		users.PUT("/:id/clubs", h.Users.UpdateClubs)
		users.GET("/:id/functions", h.Users.Functions)
	}

	events := api.Group("/events")
	{
		events.POST("", h.Events.Create)
		events.GET("", h.Events.List)
		events.GET("/history", h.Events.History)
		events.POST("/archive", h.Events.Archive)
		events.GET("/:id", h.Events.Get)
		events.POST("/:id/rsvp", h.Events.RSVP)
		events.DELETE("/:id/rsvp", h.Events.CancelRSVP)
		events.POST("/:id/invite", h.Events.Invite)
		events.POST("/:id/cancel", h.Events.Cancel)
		events.POST("/:id/rate", h.Events.Rate)
	}

	notifications := api.Group("/notifications")
	{
		notifications.GET("", h.Notifications.List)
		notifications.PUT("/:id/read", h.Notifications.MarkRead)
		notifications.DELETE("/:id", h.Notifications.Delete)
	}

	ai := api.Group("/ai")
	{
		ai.GET("/event-insights", h.Insights.EventInsights)
		ai.GET("/goated", h.Insights.Goated)
	}

	return r
}
