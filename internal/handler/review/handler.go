package review

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/jwalitptl/marketplace-api/internal/handler"
	"github.com/jwalitptl/marketplace-api/internal/middleware"
	"github.com/jwalitptl/marketplace-api/internal/model"
	"github.com/jwalitptl/marketplace-api/internal/service/review"
)

type Handler struct {
	svc *review.Service
}

func NewHandler(svc *review.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup, mw *middleware.AuthMiddleware) {
	reviews := r.Group("/reviews")
	{
		reviews.GET("", h.ListReviews)
		reviews.GET("/service/:serviceId", h.ListServiceReviews)
		reviews.POST("", mw.Authenticate(), mw.RequireRole(model.RoleCustomer), h.CreateReview)
		reviews.PUT("/:id/flag", mw.Authenticate(), mw.RequireRole(model.RoleProvider, model.RoleAdmin), h.FlagReview)
	}

	r.GET("/services/:id/rating", h.GetRating)
}

func (h *Handler) CreateReview(c *gin.Context) {
	actor, ok := handler.CurrentPrincipal(c)
	if !ok {
		return
	}

	var req model.CreateReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handler.RespondBindError(c, err)
		return
	}

	rv, err := h.svc.CreateReview(c.Request.Context(), actor, &req)
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, handler.NewSuccessResponse(rv))
}

// ListReviews filters by the serviceId and provider query parameters
func (h *Handler) ListReviews(c *gin.Context) {
	serviceID, ok := handler.OptionalQueryID(c, "serviceId")
	if !ok {
		return
	}
	providerID, ok := handler.OptionalQueryID(c, "provider")
	if !ok {
		return
	}

	h.list(c, serviceID, providerID)
}

func (h *Handler) ListServiceReviews(c *gin.Context) {
	serviceID, ok := handler.ParseID(c, "serviceId", "service")
	if !ok {
		return
	}

	h.list(c, &serviceID, nil)
}

func (h *Handler) list(c *gin.Context, serviceID, providerID *uuid.UUID) {
	reviews, err := h.svc.ListReviews(c.Request.Context(), serviceID, providerID)
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(reviews))
}

func (h *Handler) GetRating(c *gin.Context) {
	id, ok := handler.ParseID(c, "id", "service")
	if !ok {
		return
	}

	summary, err := h.svc.ComputeRatingSummary(c.Request.Context(), id)
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(summary))
}

func (h *Handler) FlagReview(c *gin.Context) {
	actor, ok := handler.CurrentPrincipal(c)
	if !ok {
		return
	}
	id, ok := handler.ParseID(c, "id", "review")
	if !ok {
		return
	}

	rv, err := h.svc.FlagReview(c.Request.Context(), actor, id)
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(rv))
}
