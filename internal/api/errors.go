package api

import (
	"errors"
	"glog/workout-server/internal/service"
	"glog/workout-server/internal/session"
	"net/http"

	"github.com/gin-gonic/gin"
)

// respondError maps service and session errors to HTTP status codes.
// Anything unrecognised becomes a 500 with the fallback message.
func respondError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, session.ErrFinishFailed):
		abortWithError(c, http.StatusBadGateway, err.Error())
	case errors.Is(err, service.ErrValidationFailed),
		errors.Is(err, service.ErrReorderMismatch),
		errors.Is(err, service.ErrHistoryValidation):
		abortWithError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrPlanNotFound),
		errors.Is(err, service.ErrExerciseNotFound),
		errors.Is(err, session.ErrNoActiveSession):
		abortWithError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrPlanDayTaken),
		errors.Is(err, session.ErrSessionActive),
		errors.Is(err, session.ErrFinishInProgress):
		abortWithError(c, http.StatusConflict, err.Error())
	case errors.Is(err, session.ErrNoCompletedSets),
		errors.Is(err, session.ErrUnknownExercise),
		errors.Is(err, session.ErrInvalidSetIndex),
		errors.Is(err, session.ErrInvalidPlan):
		abortWithError(c, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, service.ErrExportDisabled):
		abortWithError(c, http.StatusServiceUnavailable, err.Error())
	default:
		abortWithError(c, http.StatusInternalServerError, fallback)
	}
}
