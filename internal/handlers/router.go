package handlers

import (
	"github.com/gin-gonic/gin"

	"cricket-booking/internal/logger"
	"cricket-booking/internal/middleware"
	"cricket-booking/internal/services"
)

type RouterConfig struct {
	Log          *logger.Logger
	Tokens       middleware.TokenParser
	Store        Pinger
	Grounds      *services.GroundService
	Bookings     *services.BookingService
	Schedule     *services.ScheduleService
	RateLimitRPS int
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()

	router.Use(middleware.RequestID())
	router.Use(middleware.EnhancedLogger(cfg.Log))
	router.Use(middleware.Recovery(cfg.Log))
	router.Use(middleware.CORS())
	router.Use(middleware.SecurityHeaders(cfg.Log))
	if cfg.RateLimitRPS > 0 {
		router.Use(middleware.RateLimit(cfg.RateLimitRPS, cfg.Log))
	}

	router.GET("/health", Health(cfg.Store))

	grounds := NewGroundHandler(cfg.Grounds, cfg.Schedule)
	bookings := NewBookingHandler(cfg.Bookings, cfg.Schedule)
	requireAuth := middleware.RequireAuth(cfg.Tokens, cfg.Log)

	api := router.Group("/api")
	{
		api.GET("/grounds", grounds.ListGrounds)
		api.GET("/grounds/:id", grounds.GetGround)
		api.GET("/grounds/:id/schedule", requireAuth, grounds.GetSchedule)

		authed := api.Group("", requireAuth)
		authed.POST("/bookings", bookings.CreateBooking)
		authed.GET("/bookings/my", bookings.MyBookings)
		authed.GET("/bookings/:id", bookings.GetBooking)
		authed.PATCH("/bookings/:id/cancel", bookings.CancelBooking)
		authed.GET("/schedule", bookings.MySchedule)
	}

	cfg.Log.LogProcess("ROUTER", "All routes registered successfully")
	return router
}
