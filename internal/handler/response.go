package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	apperrors "github.com/jwalitptl/marketplace-api/pkg/errors"
)

type Response struct {
	Status  string      `json:"status"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

func NewSuccessResponse(data interface{}) *Response {
	return &Response{
		Status: "success",
		Data:   data,
	}
}

func NewErrorResponse(message string) *Response {
	return &Response{
		Status:  "error",
		Message: message,
	}
}

// RespondError writes err as an error response. Application errors keep
// their message and status; anything else is logged and hidden behind a 500.
func RespondError(c *gin.Context, err error) {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) && appErr.Kind != apperrors.KindInternal {
		c.JSON(appErr.StatusCode(), NewErrorResponse(appErr.Message))
		return
	}

	zerolog.Ctx(c.Request.Context()).Error().
		Err(err).
		Str("method", c.Request.Method).
		Str("route", c.FullPath()).
		Msg("Request failed")
	c.JSON(http.StatusInternalServerError, NewErrorResponse("internal server error"))
}

// RespondBindError answers a request body that failed binding
func RespondBindError(c *gin.Context, err error) {
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		fe := fieldErrs[0]
		c.JSON(http.StatusBadRequest, NewErrorResponse(fe.Field()+" failed on the '"+fe.Tag()+"' rule"))
		return
	}
	c.JSON(http.StatusBadRequest, NewErrorResponse("invalid request body"))
}
