package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"cricket-booking/internal/services"
	"cricket-booking/internal/slot"
)

type GroundHandler struct {
	grounds  *services.GroundService
	schedule *services.ScheduleService
}

func NewGroundHandler(grounds *services.GroundService, schedule *services.ScheduleService) *GroundHandler {
	return &GroundHandler{grounds: grounds, schedule: schedule}
}

// ListGrounds handles GET /api/grounds.
func (h *GroundHandler) ListGrounds(c *gin.Context) {
	grounds, err := h.grounds.ListAvailableGrounds(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, grounds)
}

func (h *GroundHandler) GetGround(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	g, err := h.grounds.GetGround(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, g)
}

// GetSchedule handles GET /api/grounds/:id/schedule?from=&to=&include_cancelled=.
func (h *GroundHandler) GetSchedule(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	r, err := slot.ParseDateRange(c.Query("from"), c.Query("to"))
	if err != nil {
		badRequest(c, err.Error())
		return
	}
	includeCancelled := false
	if raw := c.Query("include_cancelled"); raw != "" {
		if includeCancelled, err = strconv.ParseBool(raw); err != nil {
			badRequest(c, "include_cancelled must be true or false")
			return
		}
	}

	entries, err := h.schedule.GroundSchedule(c.Request.Context(), id, r, includeCancelled)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, entries)
}
