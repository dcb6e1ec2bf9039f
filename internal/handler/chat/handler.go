package chat

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/marketplace-api/internal/handler"
	"github.com/jwalitptl/marketplace-api/internal/middleware"
	"github.com/jwalitptl/marketplace-api/internal/model"
	"github.com/jwalitptl/marketplace-api/internal/service/chat"
)

type Handler struct {
	svc *chat.Service
}

func NewHandler(svc *chat.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup, mw *middleware.AuthMiddleware) {
	chats := r.Group("/chats", mw.Authenticate())
	{
		chats.GET("/:bookingId", h.GetThread)
		chats.POST("/:bookingId/message", h.SendMessage)
	}
}

func (h *Handler) GetThread(c *gin.Context) {
	actor, ok := handler.CurrentPrincipal(c)
	if !ok {
		return
	}
	bookingID, ok := handler.ParseID(c, "bookingId", "booking")
	if !ok {
		return
	}

	thread, err := h.svc.GetThread(c.Request.Context(), actor, bookingID)
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(thread))
}

func (h *Handler) SendMessage(c *gin.Context) {
	actor, ok := handler.CurrentPrincipal(c)
	if !ok {
		return
	}
	bookingID, ok := handler.ParseID(c, "bookingId", "booking")
	if !ok {
		return
	}

	var req model.SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handler.RespondBindError(c, err)
		return
	}

	msg, err := h.svc.SendMessage(c.Request.Context(), actor, bookingID, req.Message)
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, handler.NewSuccessResponse(msg))
}
