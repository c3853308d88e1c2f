package gateway

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/MaverickLook/Big-Bite/pkg/apperr"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

type errorResponse struct {
	Message       string            `json:"message"`
	CurrentStatus string            `json:"currentStatus,omitempty"`
	AllowedNext   []string          `json:"allowedNext,omitempty"`
	Details       map[string]string `json:"details,omitempty"`
}

// respondError maps a service error to its HTTP status. Unexpected errors
// are logged and hidden from the client.
func (g *Gateway) respondError(c *gin.Context, err error) {
	status := apperr.HTTPStatus(err)
	if status == http.StatusInternalServerError {
		g.logger.Error("Request failed",
			zap.String("request_id", c.GetString(requestIDKey)),
			zap.String("path", c.FullPath()),
			zap.Error(err))
		c.JSON(status, errorResponse{Message: "internal server error"})
		return
	}

	resp := errorResponse{Message: err.Error()}

	var terr *apperr.InvalidTransitionError
	if errors.As(err, &terr) {
		resp.CurrentStatus = terr.Current.String()
		resp.AllowedNext = make([]string, len(terr.AllowedNext))
		for i, s := range terr.AllowedNext {
			resp.AllowedNext[i] = s.String()
		}
	}
	var rerr *apperr.OrderReadOnlyError
	if errors.As(err, &rerr) {
		resp.CurrentStatus = rerr.Current.String()
	}

	c.JSON(status, resp)
}

// bind decodes the JSON body into req and runs struct validation on it.
// It writes the 400 response itself and reports false on failure.
func (g *Gateway) bind(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Message: fmt.Sprintf("invalid request payload: %v", err)})
		return false
	}

	if err := g.validate.Struct(req); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			c.JSON(http.StatusBadRequest, errorResponse{
				Message: "validation failed",
				Details: formatValidationErrors(verrs),
			})
			return false
		}
		g.logger.Error("Unexpected validation error", zap.Error(err))
		c.JSON(http.StatusInternalServerError, errorResponse{Message: "internal validation error"})
		return false
	}
	return true
}

func formatValidationErrors(verrs validator.ValidationErrors) map[string]string {
	details := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		field := strings.TrimPrefix(fe.Namespace(), strings.Split(fe.Namespace(), ".")[0]+".")
		switch fe.Tag() {
		case "required":
			details[field] = "is required"
		case "min":
			details[field] = fmt.Sprintf("must have at least %s entries", fe.Param())
		case "max":
			details[field] = fmt.Sprintf("must be at most %s characters", fe.Param())
		case "gte":
			details[field] = fmt.Sprintf("must be greater than or equal to %s", fe.Param())
		default:
			details[field] = fmt.Sprintf("failed %s validation", fe.Tag())
		}
	}
	return details
}
