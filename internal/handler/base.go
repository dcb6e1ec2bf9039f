package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/jwalitptl/marketplace-api/internal/model"
)

// CurrentPrincipal returns the caller placed in the request context by the
// auth middleware. It answers 401 and returns false when there is none.
func CurrentPrincipal(c *gin.Context) (model.Principal, bool) {
	p, ok := model.PrincipalFrom(c.Request.Context())
	if !ok {
		c.JSON(http.StatusUnauthorized, NewErrorResponse("authentication required"))
		return model.Principal{}, false
	}
	return p, true
}

// ParseID parses a uuid path parameter, answering 400 when malformed
func ParseID(c *gin.Context, param, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(param))
	if err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse("invalid "+name+" ID"))
		return uuid.Nil, false
	}
	return id, true
}

// OptionalQueryID parses an optional uuid query parameter
func OptionalQueryID(c *gin.Context, key string) (*uuid.UUID, bool) {
	raw := c.Query(key)
	if raw == "" {
		return nil, true
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse("invalid "+key))
		return nil, false
	}
	return &id, true
}
