package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/yigit/clubhub/internal/app/controllers"
	"github.com/yigit/clubhub/internal/middleware"
)

// Controllers groups the HTTP handlers mounted by SetupRouter
type Controllers struct {
	Auth         *controllers.AuthController
	Health       *controllers.HealthController
	Request      *controllers.RequestController
	Club         *controllers.ClubController
	Event        *controllers.EventController
	Notification *controllers.NotificationController
	Message      *controllers.MessageController
	Venue        *controllers.VenueController
	Live         *controllers.LiveController
}

// SetupRouter configures all application routes
func SetupRouter(router *gin.Engine, c Controllers, authMiddleware *middleware.AuthMiddleware) {
	router.GET("/health", c.Health.Health)

	// API version group
	v1 := router.Group("/api/v1")
	v1.GET("/health", c.Health.Health)

	// --- Public Auth routes ---
	auth := v1.Group("/auth")
	{
		auth.POST("/login", c.Auth.Login)
	}

	// --- Authenticated Routes Group ---
	authenticated := v1.Group("")
	authenticated.Use(authMiddleware.JWTAuth())

	authenticated.GET("/auth/me", c.Auth.Me)
	authenticated.GET("/venues", c.Venue.List)
	authenticated.GET("/live", c.Live.Connect)

	requests := authenticated.Group("/requests")
	{
		requests.GET("", c.Request.List)
		requests.GET("/:id", c.Request.Get)
		requests.POST("/:submitterId", c.Request.Submit)
		requests.PUT("/:id/decision", c.Request.Decide)
	}

	clubs := authenticated.Group("/clubs")
	{
		clubs.GET("", c.Club.List)
		clubs.GET("/:id", c.Club.Get)
		clubs.DELETE("/:id", c.Club.Delete)
		clubs.PUT("/:id/image", c.Club.UpdateImage)
		clubs.GET("/:id/members", c.Club.Members)
		clubs.POST("/:id/members", c.Club.Join)
		clubs.DELETE("/:id/members", c.Club.Leave)
		clubs.POST("/:id/executives", c.Club.AddExecutive)
		clubs.DELETE("/:id/executives/:userId", c.Club.RemoveExecutive)
		clubs.GET("/:id/events", c.Event.ListByClub)
	}

	events := authenticated.Group("/events")
	{
		events.GET("/:id", c.Event.Get)
		events.DELETE("/:id", c.Event.Delete)
		events.POST("/:id/rsvp", c.Event.RSVP)
		events.DELETE("/:id/rsvp", c.Event.CancelRSVP)
	}

	notifications := authenticated.Group("/notifications")
	{
		notifications.POST("", c.Notification.NotifyUsers)
		notifications.POST("/all", c.Notification.NotifyAllStudents)
		notifications.POST("/club", c.Notification.NotifyClub)
		notifications.GET("/inbox", c.Notification.Inbox)
		notifications.PUT("/:id/read/:userId", c.Notification.MarkRead)
	}

	messages := authenticated.Group("/messages")
	{
		messages.GET("", c.Message.Threads)
		messages.GET("/:participantId", c.Message.Thread)
		messages.POST("/:participantId", c.Message.Send)
	}
}
