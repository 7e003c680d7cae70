package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	apperrors "campusnet/backend/pkg/errors"
)

type errorBody struct {
	Message string `json:"message"`
	Error   string `json:"error"`
	Reason  string `json:"reason"`
}

// statusFor maps an error kind to its HTTP status
func statusFor(err error) int {
	switch apperrors.TypeOf(err) {
	case apperrors.ErrorTypeInvalidInput:
		return http.StatusBadRequest
	case apperrors.ErrorTypeUnauthorized:
		return http.StatusUnauthorized
	case apperrors.ErrorTypeForbidden:
		return http.StatusForbidden
	case apperrors.ErrorTypeNotFound:
		return http.StatusNotFound
	case apperrors.ErrorTypeConflict:
		return http.StatusConflict
	case apperrors.ErrorTypeUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func bodyFor(err error) errorBody {
	var base *apperrors.BaseError
	if !errors.As(err, &base) {
		return errorBody{Message: "internal server error", Error: "internal", Reason: "Internal"}
	}
	return errorBody{
		Message: base.Message,
		Error:   string(base.Type),
		Reason:  string(base.Reason),
	}
}

func abortWithError(c *gin.Context, err error) {
	c.AbortWithStatusJSON(statusFor(err), bodyFor(err))
}

// respondError writes the error body. Server-side failures are logged with the cause.
func (h *handler) respondError(c *gin.Context, op string, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		h.log.Error("Request failed",
			zap.String("operation", op),
			zap.String("caller", callerID(c)),
			zap.Error(err),
		)
	} else {
		h.log.Debug("Request rejected",
			zap.String("operation", op),
			zap.String("reason", string(apperrors.ReasonOf(err))),
		)
	}
	c.JSON(status, bodyFor(err))
}

// outcome is the metrics label for an operation result
func outcome(err error) string {
	if err == nil {
		return "ok"
	}
	if reason := apperrors.ReasonOf(err); reason != "" {
		return string(reason)
	}
	return "error"
}

func badRequest(err error) error {
	return apperrors.NewInvalidInput(err.Error())
}
