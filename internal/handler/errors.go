package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"flight-forecast-backend/internal/apperror"
	"flight-forecast-backend/internal/predictor"
	"flight-forecast-backend/internal/service"
)

// toAPIError maps service errors onto the API error taxonomy.
func toAPIError(err error) *apperror.APIError {
	var apiErr *apperror.APIError
	switch {
	case errors.As(err, &apiErr):
		return apiErr
	case errors.Is(err, predictor.ErrNotTrained):
		return apperror.ErrModelNotReady
	case errors.Is(err, service.ErrInvalidInput):
		return apperror.ErrInvalidRequest.WithMessage(err.Error())
	case errors.Is(err, service.ErrTaskNotFound):
		return apperror.ErrNotFound.WithMessage("task not found or expired")
	case errors.Is(err, service.ErrRetrainRunning):
		return apperror.ErrConflict.WithMessage(err.Error())
	default:
		return apperror.ErrInternal.WithDetails(err.Error())
	}
}

func (h *Handler) fail(c *gin.Context, err error) {
	apiErr := toAPIError(err)
	if apiErr.StatusCode >= http.StatusInternalServerError && apiErr.StatusCode != http.StatusServiceUnavailable {
		h.logger.Error("request failed", zap.String("path", c.FullPath()), zap.Error(err))
	}
	c.JSON(apiErr.StatusCode, apiErr)
}

func badRequest(c *gin.Context, err error) {
	apiErr := apperror.ErrInvalidRequest.WithMessage("invalid request: " + err.Error())
	c.JSON(apiErr.StatusCode, apiErr)
}
