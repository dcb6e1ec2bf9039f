package admin

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/marketplace-api/internal/handler"
	"github.com/jwalitptl/marketplace-api/internal/middleware"
	"github.com/jwalitptl/marketplace-api/internal/model"
	"github.com/jwalitptl/marketplace-api/internal/service/admin"
)

type Handler struct {
	svc *admin.Service
}

func NewHandler(svc *admin.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup, mw *middleware.AuthMiddleware) {
	admin := r.Group("/admin", mw.Authenticate(), mw.RequireRole(model.RoleAdmin))
	{
		admin.GET("/providers", h.ListProviders)
		admin.PUT("/verify/:id", h.VerifyProvider)
		admin.DELETE("/provider/:id", h.RejectProvider)

		admin.GET("/reports", h.ListReports)
		admin.PUT("/reports/:id/ignore", h.IgnoreReport)
		admin.PUT("/reports/:id/visibility", h.SetVisibility)
		admin.DELETE("/reports/:id", h.DeleteReview)

		admin.GET("/stats", h.Stats)
	}
}

func (h *Handler) ListProviders(c *gin.Context) {
	actor, ok := handler.CurrentPrincipal(c)
	if !ok {
		return
	}

	providers, err := h.svc.ListUnverifiedProviders(c.Request.Context(), actor)
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(providers))
}

func (h *Handler) VerifyProvider(c *gin.Context) {
	actor, ok := handler.CurrentPrincipal(c)
	if !ok {
		return
	}
	id, ok := handler.ParseID(c, "id", "provider")
	if !ok {
		return
	}

	if err := h.svc.VerifyProvider(c.Request.Context(), actor, id); err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(model.MessageResponse{Message: "provider verified"}))
}

func (h *Handler) RejectProvider(c *gin.Context) {
	actor, ok := handler.CurrentPrincipal(c)
	if !ok {
		return
	}
	id, ok := handler.ParseID(c, "id", "provider")
	if !ok {
		return
	}

	if err := h.svc.RejectProvider(c.Request.Context(), actor, id); err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(model.MessageResponse{Message: "provider rejected"}))
}

func (h *Handler) ListReports(c *gin.Context) {
	actor, ok := handler.CurrentPrincipal(c)
	if !ok {
		return
	}

	reviews, err := h.svc.ListFlaggedReviews(c.Request.Context(), actor)
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(reviews))
}

func (h *Handler) IgnoreReport(c *gin.Context) {
	actor, ok := handler.CurrentPrincipal(c)
	if !ok {
		return
	}
	id, ok := handler.ParseID(c, "id", "review")
	if !ok {
		return
	}

	rv, err := h.svc.IgnoreReport(c.Request.Context(), actor, id)
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(rv))
}

func (h *Handler) SetVisibility(c *gin.Context) {
	actor, ok := handler.CurrentPrincipal(c)
	if !ok {
		return
	}
	id, ok := handler.ParseID(c, "id", "review")
	if !ok {
		return
	}

	var req model.SetVisibilityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handler.RespondBindError(c, err)
		return
	}

	rv, err := h.svc.SetReviewVisibility(c.Request.Context(), actor, id, *req.Visible)
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(rv))
}

func (h *Handler) DeleteReview(c *gin.Context) {
	actor, ok := handler.CurrentPrincipal(c)
	if !ok {
		return
	}
	id, ok := handler.ParseID(c, "id", "review")
	if !ok {
		return
	}

	if err := h.svc.DeleteReview(c.Request.Context(), actor, id); err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(model.MessageResponse{Message: "review deleted"}))
}

func (h *Handler) Stats(c *gin.Context) {
	actor, ok := handler.CurrentPrincipal(c)
	if !ok {
		return
	}

	stats, err := h.svc.Stats(c.Request.Context(), actor)
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(stats))
}
