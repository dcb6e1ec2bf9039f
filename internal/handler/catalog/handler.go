package catalog

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/marketplace-api/internal/handler"
	"github.com/jwalitptl/marketplace-api/internal/middleware"
	"github.com/jwalitptl/marketplace-api/internal/model"
	"github.com/jwalitptl/marketplace-api/internal/service/catalog"
)

type Handler struct {
	svc *catalog.Service
}

func NewHandler(svc *catalog.Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes mounts /services. Reads are public; writes need a token and
// the ownership checks happen in the service.
func (h *Handler) RegisterRoutes(r *gin.RouterGroup, mw *middleware.AuthMiddleware) {
	services := r.Group("/services")
	{
		services.GET("", h.ListServices)
		services.GET("/:id", h.GetService)

		protected := services.Group("", mw.Authenticate())
		protected.POST("", mw.RequireRole(model.RoleProvider, model.RoleAdmin), h.CreateService)
		protected.PUT("/:id", h.UpdateService)
		protected.DELETE("/:id", h.DeleteService)
	}
}

func (h *Handler) ListServices(c *gin.Context) {
	providerID, ok := handler.OptionalQueryID(c, "provider")
	if !ok {
		return
	}

	services, err := h.svc.ListServices(c.Request.Context(), c.Query("keyword"), providerID)
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(services))
}

func (h *Handler) GetService(c *gin.Context) {
	id, ok := handler.ParseID(c, "id", "service")
	if !ok {
		return
	}

	svc, err := h.svc.GetService(c.Request.Context(), id)
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(svc))
}

func (h *Handler) CreateService(c *gin.Context) {
	actor, ok := handler.CurrentPrincipal(c)
	if !ok {
		return
	}

	var req model.CreateServiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handler.RespondBindError(c, err)
		return
	}

	svc, err := h.svc.CreateService(c.Request.Context(), actor, &req)
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, handler.NewSuccessResponse(svc))
}

func (h *Handler) UpdateService(c *gin.Context) {
	actor, ok := handler.CurrentPrincipal(c)
	if !ok {
		return
	}
	id, ok := handler.ParseID(c, "id", "service")
	if !ok {
		return
	}

	var req model.UpdateServiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handler.RespondBindError(c, err)
		return
	}

	svc, err := h.svc.UpdateService(c.Request.Context(), actor, id, &req)
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(svc))
}

func (h *Handler) DeleteService(c *gin.Context) {
	actor, ok := handler.CurrentPrincipal(c)
	if !ok {
		return
	}
	id, ok := handler.ParseID(c, "id", "service")
	if !ok {
		return
	}

	if err := h.svc.DeleteService(c.Request.Context(), actor, id); err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(model.MessageResponse{Message: "service deleted"}))
}
