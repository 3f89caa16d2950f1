package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/venuehub/reservations/internal/domain"
	"github.com/venuehub/reservations/internal/service/reservation"
)

type ReservationHandler struct {
	service reservation.ReservationUseCase
}

type transitionRequest struct {
	Action string `json:"action" binding:"required"`
}

func NewReservationHandler(service reservation.ReservationUseCase) *ReservationHandler {
	return &ReservationHandler{service: service}
}

func (h *ReservationHandler) Register(router *gin.RouterGroup) {
	router.GET("/:id", h.get)
	router.POST("/:id/transitions", h.transition)
}

func (h *ReservationHandler) get(c *gin.Context) {
	r, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, r)
}

func (h *ReservationHandler) transition(c *gin.Context) {
	var req transitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindError(c, err)
		return
	}
	action, err := domain.ParseAction(req.Action)
	if err != nil {
		writeError(c, err)
		return
	}

	r, err := h.service.Transition(c.Request.Context(), c.Param("id"), action)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, r)
}
