package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"gatherly-api/config"
	"gatherly-api/controllers"
	"gatherly-api/middleware"
	"gatherly-api/services"
)

// SetupCORS allows the browser front end to talk to the API.
func SetupCORS() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Authorization")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

func SetupRoutes(r *gin.Engine, db *gorm.DB, cfg *config.Config, emailService *services.EmailService, storageService *services.StorageService) {
	attendanceService := services.NewAttendanceService(db)

	// Controllers
	authController := controllers.NewAuthController(db, cfg.JWTSecret, emailService, storageService)
	userController := controllers.NewUserController(db)
	eventController := controllers.NewEventController(db)
	followController := controllers.NewFollowController(db)
	inviteController := controllers.NewInviteController(db, attendanceService, emailService, cfg.PropagateOnInviteReply)
	rsvpController := controllers.NewRsvpController(db, attendanceService)
	commentController := controllers.NewCommentController(db)

	r.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"message": "pong",
			"status":  "healthy",
		})
	})

	// API version 1
	v1 := r.Group("/api/v1")

	// Auth routes (public)
	auth := v1.Group("/auth")
	{
		auth.POST("/register", authController.Register)
		auth.POST("/login", authController.Login)
	}

	// Public reads, viewer-aware when a valid token is present
	public := v1.Group("/")
	public.Use(middleware.OptionalAuth(cfg.JWTSecret))
	{
		public.GET("/users", userController.GetUsers)
		public.GET("/users/:id", userController.GetUser)
		public.GET("/events", eventController.GetEvents)
		public.GET("/events/count", eventController.CountEvents)
		public.GET("/events/:id", eventController.GetEvent)
		public.GET("/events/:id/comments", commentController.GetComments)
		public.GET("/events/:id/comments/:comment_id", commentController.GetComment)
	}

	// Protected routes
	protected := v1.Group("/")
	protected.Use(middleware.AuthMiddleware(cfg.JWTSecret))
	protected.Use(middleware.RequireUser(db))
	{
		protected.GET("/profile", authController.GetProfile)
		protected.POST("/uploads", authController.GetUploadURL)

		// User routes
		users := protected.Group("/users")
		{
			users.PUT("/:id", userController.UpdateUser)
			users.DELETE("/:id", userController.DeleteUser)
			users.GET("/:id/rsvps", rsvpController.GetUserRsvps)
			users.GET("/:id/follows/sent", followController.GetSentFollows)
			users.GET("/:id/follows/received", followController.GetReceivedFollows)
			users.GET("/:id/invites/sent", inviteController.GetSentInvites)
			users.GET("/:id/invites/received", inviteController.GetReceivedInvites)
		}

		// Event routes
		events := protected.Group("/events")
		{
			events.POST("/", eventController.CreateEvent)
			events.PUT("/:id", eventController.UpdateEvent)
			events.DELETE("/:id", eventController.DeleteEvent)

			// Canonical event-id-keyed RSVP endpoints: one row per
			// (user, event), so the event identifies it.
			events.PUT("/:id/rsvp", rsvpController.UpdateRsvpForEvent)
			events.DELETE("/:id/rsvp", rsvpController.DeleteRsvpForEvent)

			events.POST("/:id/comments", commentController.CreateComment)
			events.PUT("/:id/comments/:comment_id", commentController.UpdateComment)
			events.DELETE("/:id/comments/:comment_id", commentController.DeleteComment)
		}

		// Follow routes
		follows := protected.Group("/follows")
		{
			follows.POST("/", followController.CreateFollow)
			follows.GET("/:id", followController.GetFollow)
			follows.POST("/:id/accept", followController.AcceptFollow)
			follows.POST("/:id/decline", followController.DeclineFollow)
			follows.DELETE("/:id", followController.DeleteFollow)
		}

		// Invite routes
		invites := protected.Group("/invites")
		{
			invites.POST("/", inviteController.CreateInvite)
			invites.GET("/:id", inviteController.GetInvite)
			invites.POST("/:id/accept", inviteController.AcceptInvite)
			invites.POST("/:id/decline", inviteController.DeclineInvite)
		}

		// RSVP routes
		rsvps := protected.Group("/rsvps")
		{
			rsvps.POST("/", rsvpController.CreateRsvp)
			rsvps.GET("/count", rsvpController.CountRsvps)
			rsvps.GET("/:id", rsvpController.GetRsvp)
			// Deprecated id-keyed variants; prefer /events/:id/rsvp
			rsvps.PUT("/:id", rsvpController.UpdateRsvp)
			rsvps.DELETE("/:id", rsvpController.DeleteRsvp)
		}
	}
}
