package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/optica/internal/domain/models"
	"github.com/mamadbah2/optica/internal/service/masks"
	"github.com/mamadbah2/optica/internal/service/sales"
	"github.com/mamadbah2/optica/internal/service/wizard"
	"github.com/mamadbah2/optica/pkg/clients/backend"
)

// Toast is the notification payload the console renders.
type Toast struct {
	Level   string              `json:"level"`
	Message string              `json:"message"`
	Fields  []models.FieldError `json:"fields,omitempty"`
}

func successToast(message string) Toast {
	return Toast{Level: "success", Message: message}
}

// respondError maps service errors to an HTTP status and an error toast.
func respondError(c *gin.Context, logger *zap.Logger, err error) {
	status, toast := classify(err)
	if status >= http.StatusInternalServerError {
		logger.Error("request failed", zap.String("path", c.FullPath()), zap.Error(err))
	} else {
		logger.Warn("request rejected", zap.String("path", c.FullPath()), zap.Int("status", status), zap.Error(err))
	}
	c.AbortWithStatusJSON(status, gin.H{"toast": toast})
}

func classify(err error) (int, Toast) {
	toast := Toast{Level: "error", Message: err.Error()}

	var fields models.ValidationErrors
	if errors.As(err, &fields) {
		toast.Message = "please review the highlighted fields"
		toast.Fields = fields
		return http.StatusBadRequest, toast
	}

	var apiErr *backend.APIError
	if errors.As(err, &apiErr) {
		toast.Message = apiErr.UserMessage()
	}

	switch {
	case errors.Is(err, models.ErrDraftNotFound), errors.Is(err, backend.ErrNotFound):
		return http.StatusNotFound, toast
	case errors.Is(err, backend.ErrValidation),
		errors.Is(err, sales.ErrInvalidQuantity),
		errors.Is(err, masks.ErrNotANumber),
		errors.Is(err, masks.ErrNegative),
		errors.Is(err, masks.ErrRange),
		errors.Is(err, masks.ErrStep):
		return http.StatusBadRequest, toast
	case errors.Is(err, backend.ErrConflict),
		errors.Is(err, wizard.ErrWrongStep),
		errors.Is(err, sales.ErrInsufficientStock),
		errors.Is(err, sales.ErrInactiveProduct):
		return http.StatusConflict, toast
	case errors.Is(err, backend.ErrTimeout):
		return http.StatusGatewayTimeout, toast
	case errors.Is(err, backend.ErrUnavailable):
		return http.StatusServiceUnavailable, toast
	case errors.Is(err, backend.ErrUnauthorized),
		errors.Is(err, backend.ErrUpstream),
		errors.Is(err, backend.ErrBadResponse):
		return http.StatusBadGateway, toast
	default:
		toast.Message = "unexpected error"
		return http.StatusInternalServerError, toast
	}
}

func badRequest(c *gin.Context, logger *zap.Logger, message string, err error) {
	logger.Warn("invalid request", zap.String("path", c.FullPath()), zap.Error(err))
	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"toast": Toast{Level: "error", Message: message}})
}

func parseID(c *gin.Context, logger *zap.Logger, param string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(param), 10, 64)
	if err != nil || id <= 0 {
		badRequest(c, logger, "invalid "+param, err)
		return 0, false
	}
	return id, true
}

func bindListQuery(c *gin.Context, logger *zap.Logger) (models.ListQuery, bool) {
	var q models.ListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		badRequest(c, logger, "invalid pagination parameters", err)
		return q, false
	}
	return q, true
}
