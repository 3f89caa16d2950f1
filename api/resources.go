package api

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/venuehub/reservations/internal/domain"
	"github.com/venuehub/reservations/internal/service/availability"
	"github.com/venuehub/reservations/internal/service/reservation"
)

type ResourceHandler struct {
	availability availability.AvailabilityUseCase
	reservations reservation.ReservationUseCase
}

type availabilityResponse struct {
	ResourceID string                          `json:"resource_id"`
	From       string                          `json:"from"`
	To         string                          `json:"to"`
	Days       map[domain.Date]domain.Snapshot `json:"days"`
}

type slotsResponse struct {
	Date   domain.Date        `json:"date"`
	Start  *domain.TimeOfDay  `json:"start,omitempty"`
	Starts []domain.TimeOfDay `json:"starts,omitempty"`
	Ends   []domain.TimeOfDay `json:"ends,omitempty"`
}

func NewResourceHandler(availability availability.AvailabilityUseCase, reservations reservation.ReservationUseCase) *ResourceHandler {
	return &ResourceHandler{availability: availability, reservations: reservations}
}

func (h *ResourceHandler) Register(router *gin.RouterGroup) {
	router.GET("/:id/availability", h.availabilityRange)
	router.GET("/:id/slots", h.slots)
	router.POST("/:id/quote", h.quote)
	router.POST("/:id/reservations", h.commit)
}

func (h *ResourceHandler) availabilityRange(c *gin.Context) {
	from, err := domain.ParseMonth(c.Query("from"))
	if err != nil {
		writeError(c, err)
		return
	}
	to := from
	if raw := c.Query("to"); raw != "" {
		if to, err = domain.ParseMonth(raw); err != nil {
			writeError(c, err)
			return
		}
	}

	days, err := h.availability.GetAvailability(c.Request.Context(), c.Param("id"), from, to)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, availabilityResponse{
		ResourceID: c.Param("id"),
		From:       from.String(),
		To:         to.String(),
		Days:       days,
	})
}

// slots lists start times for a date, or end times once start is given.
func (h *ResourceHandler) slots(c *gin.Context) {
	date, err := domain.ParseDate(c.Query("date"))
	if err != nil {
		writeError(c, err)
		return
	}

	raw := c.Query("start")
	if raw == "" {
		starts, err := h.availability.StartTimes(c.Request.Context(), c.Param("id"), date)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, slotsResponse{Date: date, Starts: nonNil(starts)})
		return
	}

	start, err := domain.ParseTimeOfDay(raw)
	if err != nil {
		writeError(c, err)
		return
	}
	ends, err := h.availability.EndTimes(c.Request.Context(), c.Param("id"), date, start)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, slotsResponse{Date: date, Start: &start, Ends: nonNil(ends)})
}

func (h *ResourceHandler) quote(c *gin.Context) {
	var req reservation.QuoteInput
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindError(c, err)
		return
	}
	req.ResourceID = c.Param("id")

	price, err := h.reservations.ValidateAndPrice(c.Request.Context(), req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, price)
}

func (h *ResourceHandler) commit(c *gin.Context) {
	var req reservation.CommitInput
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindError(c, err)
		return
	}
	req.ResourceID = c.Param("id")

	created, err := h.reservations.Commit(c.Request.Context(), req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.Header("Location", fmt.Sprintf("/api/v1/reservations/%s", created.ID))
	c.JSON(http.StatusCreated, created)
}

func nonNil(ts []domain.TimeOfDay) []domain.TimeOfDay {
	if ts == nil {
		return []domain.TimeOfDay{}
	}
	return ts
}
