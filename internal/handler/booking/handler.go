package booking

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/marketplace-api/internal/handler"
	"github.com/jwalitptl/marketplace-api/internal/middleware"
	"github.com/jwalitptl/marketplace-api/internal/model"
	"github.com/jwalitptl/marketplace-api/internal/service/booking"
)

type Handler struct {
	svc *booking.Service
}

func NewHandler(svc *booking.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup, mw *middleware.AuthMiddleware) {
	bookings := r.Group("/bookings", mw.Authenticate())
	{
		bookings.POST("", mw.RequireRole(model.RoleCustomer), h.CreateBooking)
		bookings.GET("", h.ListBookings)
		bookings.GET("/:id", h.GetBooking)
		bookings.PUT("/:id/status", h.UpdateStatus)
	}
}

func (h *Handler) CreateBooking(c *gin.Context) {
	actor, ok := handler.CurrentPrincipal(c)
	if !ok {
		return
	}

	var req model.CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handler.RespondBindError(c, err)
		return
	}

	b, err := h.svc.CreateBooking(c.Request.Context(), actor, &req)
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, handler.NewSuccessResponse(b))
}

func (h *Handler) ListBookings(c *gin.Context) {
	actor, ok := handler.CurrentPrincipal(c)
	if !ok {
		return
	}

	bookings, err := h.svc.ListBookings(c.Request.Context(), actor)
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(bookings))
}

func (h *Handler) GetBooking(c *gin.Context) {
	actor, ok := handler.CurrentPrincipal(c)
	if !ok {
		return
	}
	id, ok := handler.ParseID(c, "id", "booking")
	if !ok {
		return
	}

	b, err := h.svc.GetBooking(c.Request.Context(), actor, id)
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(b))
}

func (h *Handler) UpdateStatus(c *gin.Context) {
	actor, ok := handler.CurrentPrincipal(c)
	if !ok {
		return
	}
	id, ok := handler.ParseID(c, "id", "booking")
	if !ok {
		return
	}

	var req model.UpdateBookingStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handler.RespondBindError(c, err)
		return
	}

	b, err := h.svc.UpdateStatus(c.Request.Context(), actor, id, req.Status)
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(b))
}
