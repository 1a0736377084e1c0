package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"cricket-booking/internal/middleware"
	"cricket-booking/internal/models"
	"cricket-booking/internal/services"
	"cricket-booking/internal/utils"
)

type BookingHandler struct {
	bookings *services.BookingService
	schedule *services.ScheduleService
}

func NewBookingHandler(bookings *services.BookingService, schedule *services.ScheduleService) *BookingHandler {
	return &BookingHandler{bookings: bookings, schedule: schedule}
}

func callerID(c *gin.Context) (string, bool) {
	id, ok := middleware.IdentityFrom(c)
	if !ok || id.UserID == "" {
		c.JSON(http.StatusUnauthorized, utils.ErrorResponse("authentication required"))
		return "", false
	}
	return id.UserID, true
}

// CreateBooking handles POST /api/bookings. The cost is always computed server side.
func (h *BookingHandler) CreateBooking(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}

	var req models.CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request payload: "+err.Error())
		return
	}

	b, err := h.bookings.CreateBooking(c.Request.Context(), services.CreateBookingInput{
		GroundID:        req.GroundID,
		UserID:          userID,
		TeamName:        req.TeamName,
		ContactNumber:   req.ContactNumber,
		Date:            req.Date,
		StartTime:       req.StartTime,
		Duration:        req.Duration,
		PaymentMethod:   req.PaymentMethod,
		SpecialRequests: req.SpecialRequests,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, b)
}

// MyBookings handles GET /api/bookings/my.
func (h *BookingHandler) MyBookings(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}
	bookings, err := h.bookings.ListBookingsForUser(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, bookings)
}

func (h *BookingHandler) GetBooking(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	b, err := h.bookings.GetBooking(c.Request.Context(), id, userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, b)
}

// CancelBooking handles PATCH /api/bookings/:id/cancel.
func (h *BookingHandler) CancelBooking(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := h.bookings.CancelBooking(c.Request.Context(), id, userID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// MySchedule handles GET /api/schedule.
func (h *BookingHandler) MySchedule(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}
	entries, err := h.schedule.UserSchedule(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, entries)
}
