package routes

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"clinic-booking-server/internal/config"
	"clinic-booking-server/internal/handlers"
	"clinic-booking-server/internal/middleware"
	"clinic-booking-server/internal/models"
	"clinic-booking-server/internal/repository"
	"clinic-booking-server/internal/services"
)

// SetupRoutes wires the stores, services and handlers onto the router.
func SetupRoutes(router *gin.Engine, db *gorm.DB, cfg *config.Config, logger *zap.Logger) {
	store := repository.NewGormStore(db)

	// Services
	notificationService := services.NewNotificationService(store, logger)
	appointmentService := services.NewAppointmentService(store, notificationService, logger)
	doctorService := services.NewDoctorService(store, notificationService, logger)

	// Handlers
	authHandler := handlers.NewAuthHandler(store, cfg)
	appointmentHandler := handlers.NewAppointmentHandler(appointmentService, doctorService)
	doctorHandler := handlers.NewDoctorHandler(doctorService)
	notificationHandler := handlers.NewNotificationHandler(notificationService)

	// Public routes (no authentication required)
	public := router.Group("/api/v1")
	{
		authRoutes := public.Group("/auth")
		{
			authRoutes.POST("/register", authHandler.Register)
			authRoutes.POST("/login", authHandler.Login)
		}
		// Doctor applications come from unauthenticated applicants
		public.POST("/doctors/apply", doctorHandler.Apply)
	}

	// Authenticated routes
	private := router.Group("/api/v1")
	private.Use(middleware.AuthMiddleware(cfg))
	{
		authRoutesPrivate := private.Group("/auth")
		{
			authRoutesPrivate.GET("/profile", authHandler.GetProfile)
		}

		// Doctor routes
		doctorRoutes := private.Group("/doctors")
		{
			// Bookable doctors - visible to all authenticated users
			doctorRoutes.GET("", doctorHandler.GetDoctors)
			doctorRoutes.GET("/:id", doctorHandler.GetDoctorByID)
			doctorRoutes.GET("/:id/schedule", appointmentHandler.GetDoctorSchedule)

			// Availability - doctor (own profile) or admin
			doctorRoutes.PATCH("/:id/availability",
				middleware.RoleAuthMiddleware(models.RoleDoctor, models.RoleAdmin),
				doctorHandler.UpdateAvailability)

			// Approval workflow - admin only
			adminRoutes := doctorRoutes.Group("")
			adminRoutes.Use(middleware.RoleAuthMiddleware(models.RoleAdmin))
			{
				adminRoutes.GET("/pending", doctorHandler.GetPendingDoctors)
				adminRoutes.POST("/:id/approve", doctorHandler.Approve)
				adminRoutes.POST("/:id/reject", doctorHandler.Reject)
			}
		}

		// Appointment routes
		appointmentRoutes := private.Group("/appointments")
		{
			appointmentRoutes.POST("", appointmentHandler.BookAppointment)
			appointmentRoutes.GET("", appointmentHandler.GetAppointmentsForUser)
			appointmentRoutes.GET("/:id", appointmentHandler.GetAppointmentByID)
			appointmentRoutes.PATCH("/:id", appointmentHandler.UpdateAppointment)
			appointmentRoutes.POST("/:id/cancel", appointmentHandler.CancelAppointment)

			// Outcome transitions - doctor or admin
			appointmentRoutes.POST("/:id/complete",
				middleware.RoleAuthMiddleware(models.RoleDoctor, models.RoleAdmin),
				appointmentHandler.CompleteAppointment)
			appointmentRoutes.POST("/:id/no-show",
				middleware.RoleAuthMiddleware(models.RoleDoctor, models.RoleAdmin),
				appointmentHandler.MarkNoShow)
		}

		// Notification routes
		notificationRoutes := private.Group("/notifications")
		{
			notificationRoutes.GET("", notificationHandler.GetNotifications)
			notificationRoutes.GET("/unread-count", notificationHandler.GetUnreadCount)
			notificationRoutes.PATCH("/:id/read", notificationHandler.MarkNotificationAsRead)
			notificationRoutes.POST("/read-all", notificationHandler.MarkAllNotificationsAsRead)
		}
	}

	// Simple health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "UP"})
	})
}
