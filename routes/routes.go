package routes

import (
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"hotel-ops/controllers"
	"hotel-ops/middleware"
	"hotel-ops/models"
)

func parseCorsOrigins() []string {
	raw := strings.TrimSpace(os.Getenv("CORS_ORIGINS"))
	if raw == "" {
		return []string{"*"}
	}

	parts := strings.Split(raw, ",")
	origins := make([]string, 0, len(parts))
	for _, part := range parts {
		origin := strings.TrimSpace(part)
		if origin != "" {
			origins = append(origins, origin)
		}
	}
	if len(origins) == 0 {
		return []string{"*"}
	}
	return origins
}

// Handlers groups the controllers SetupRouter mounts.
type Handlers struct {
	Properties  *controllers.PropertyController
	Rooms       *controllers.RoomController
	Bookings    *controllers.BookingController
	Guests      *controllers.GuestController
	Maintenance *controllers.MaintenanceController
	Admin       *controllers.AdminController
	Auth        *controllers.AuthController
}

func SetupRouter(h Handlers, auth *middleware.Auth) *gin.Engine {
	controllers.RegisterValidators()

	r := gin.New()
	r.Use(gin.Recovery(), middleware.Logger())

	origins := parseCorsOrigins()
	allowCredentials := true
	for _, origin := range origins {
		if origin == "*" {
			allowCredentials = false
			break
		}
	}

	r.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Requested-With", middleware.PropertyHeader},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: allowCredentials,
		MaxAge:           12 * time.Hour,
	}))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	const (
		frontdesk    = models.RoleFrontdesk
		housekeeping = models.RoleHousekeeping
		maintenance  = models.RoleMaintenance
	)
	anyStaff := auth.RequireRoles(frontdesk, housekeeping, maintenance)
	desk := auth.RequireRoles(frontdesk)
	adminOnly := auth.RequireRoles()

	api := r.Group("/api")
	{
		api.POST("/auth/login", h.Auth.Login)

		// Properties are not scoped by X-Hotel-ID.
		properties := api.Group("/properties")
		{
			properties.GET("", anyStaff, h.Properties.GetProperties)
			properties.GET("/:id", anyStaff, h.Properties.GetProperty)
			properties.POST("", adminOnly, h.Properties.CreateProperty)
			properties.PUT("/:id", adminOnly, h.Properties.UpdateProperty)
		}

		scoped := api.Group("", middleware.PropertyScope())

		rooms := scoped.Group("/rooms")
		{
			rooms.GET("", anyStaff, h.Rooms.GetRooms)
			rooms.POST("", adminOnly, h.Rooms.CreateRoom)
			rooms.GET("/:id", anyStaff, h.Rooms.GetRoom)
			rooms.PUT("/:id", adminOnly, h.Rooms.UpdateRoom)
			rooms.PATCH("/:id", adminOnly, h.Rooms.UpdateRoom)
			rooms.PATCH("/:id/status", anyStaff, h.Rooms.UpdateRoomStatus)
			rooms.GET("/:id/availability", desk, h.Bookings.RoomAvailability)
		}

		scoped.GET("/availability", desk, h.Bookings.FindAvailableRooms)

		bookings := scoped.Group("/bookings", desk)
		{
			bookings.POST("/quote", h.Bookings.Quote)

			bookings.GET("", h.Bookings.GetBookings)
			bookings.POST("", h.Bookings.CreateBooking)
			bookings.GET("/:id", h.Bookings.GetBookingDetails)
			bookings.PUT("/:id", h.Bookings.UpdateBooking)
			bookings.PATCH("/:id", h.Bookings.UpdateBooking)
			bookings.DELETE("/:id", h.Bookings.DeleteBooking)
			bookings.POST("/:id/status", h.Bookings.UpdateStatus)
			bookings.GET("/:id/events", h.Bookings.GetEvents)
		}

		guests := scoped.Group("/guests", desk)
		{
			guests.GET("", h.Guests.GetGuests)
			guests.GET("/:id", h.Guests.GetGuestByID)
			guests.PUT("/:id", h.Guests.UpdateGuest)
		}

		scoped.GET("/housekeeping/tasks", anyStaff, h.Rooms.GetHousekeepingTasks)

		alerts := scoped.Group("/maintenance/alerts")
		{
			alerts.GET("", anyStaff, h.Maintenance.GetAlerts)
			alerts.POST("", anyStaff, h.Maintenance.OpenAlert)
			alerts.PATCH("/:id", auth.RequireRoles(maintenance), h.Maintenance.UpdateAlert)
		}

		api.POST("/admin/sweep", adminOnly, h.Admin.RunSweep)
	}

	return r
}
