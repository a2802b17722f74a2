package api

import (
	"errors"
	"glog/workout-server/internal/domain"
	"glog/workout-server/internal/service"
	"glog/workout-server/internal/session"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// WorkoutHandler drives the user's active workout.
type WorkoutHandler struct {
	workoutService service.WorkoutService
}

// NewWorkoutHandler creates a new WorkoutHandler.
func NewWorkoutHandler(workoutService service.WorkoutService) *WorkoutHandler {
	return &WorkoutHandler{workoutService: workoutService}
}

type StartWorkoutRequest struct {
	PlanID string `json:"planId" binding:"required"`
}

type ToggleSetRequest struct {
	ExerciseID string `json:"exerciseId" binding:"required"`
	SetIndex   *int   `json:"setIndex" binding:"required,min=0"`
}

// VisibilityRequest sets visibility explicitly; an empty body flips it.
type VisibilityRequest struct {
	Visible *bool `json:"visible"`
}

type ActiveSessionResponse struct {
	Plan          PlanResponse         `json:"plan"`
	StartedAt     time.Time            `json:"startedAt"`
	CompletedSets domain.CompletedSets `json:"completedSets"`
}

type ProgressResponse struct {
	Completed  int     `json:"completed"`
	Total      int     `json:"total"`
	Percentage float64 `json:"percentage"`
}

type ActiveWorkoutResponse struct {
	State          string                 `json:"state"`
	Visible        bool                   `json:"visible"`
	Session        *ActiveSessionResponse `json:"session"` // null when idle
	ElapsedSeconds int64                  `json:"elapsedSeconds"`
	Progress       ProgressResponse       `json:"progress"`
	Finishing      bool                   `json:"finishing"`
}

// MapViewToResponse converts a controller snapshot to its DTO.
func MapViewToResponse(v session.View) ActiveWorkoutResponse {
	resp := ActiveWorkoutResponse{
		State:          v.State.String(),
		Visible:        v.State == session.StateActiveVisible,
		ElapsedSeconds: v.ElapsedSeconds,
		Progress: ProgressResponse{
			Completed:  v.Progress.Completed,
			Total:      v.Progress.Total,
			Percentage: v.Progress.Percentage,
		},
		Finishing: v.Finishing,
	}
	if v.Session != nil {
		resp.Session = &ActiveSessionResponse{
			Plan:          MapPlanToResponse(&v.Session.Plan),
			StartedAt:     v.Session.StartedAt,
			CompletedSets: v.Session.CompletedSets,
		}
	}
	return resp
}

// controller resolves the caller's session controller, aborting on failure.
func (h *WorkoutHandler) controller(c *gin.Context) (*session.Controller, bool) {
	userID, ok := requireUserID(c)
	if !ok {
		return nil, false
	}
	ctrl, err := h.workoutService.Controller(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err, "Failed to load active workout.")
		return nil, false
	}
	return ctrl, true
}

// GetActiveWorkout godoc
// @Summary Current workout state, elapsed time and progress
// @Tags Workout
// @Produce json
// @Security BearerAuth
// @Success 200 {object} ActiveWorkoutResponse
// @Router /workout/active [get]
func (h *WorkoutHandler) GetActiveWorkout(c *gin.Context) {
	ctrl, ok := h.controller(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, MapViewToResponse(ctrl.Snapshot()))
}

// StartWorkout godoc
// @Summary Start a workout from one of the user's plans
// @Tags Workout
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body StartWorkoutRequest true "Plan to start"
// @Success 201 {object} ActiveWorkoutResponse
// @Failure 409 {object} gin.H "A workout is already in progress"
// @Router /workout/active [post]
func (h *WorkoutHandler) StartWorkout(c *gin.Context) {
	var req StartWorkoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	planID, err := primitive.ObjectIDFromHex(req.PlanID)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid planId format.")
		return
	}
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	if _, err := h.workoutService.StartWorkout(c.Request.Context(), userID, planID); err != nil {
		respondError(c, err, "Failed to start workout.")
		return
	}
	ctrl, ok := h.controller(c)
	if !ok {
		return
	}
	c.JSON(http.StatusCreated, MapViewToResponse(ctrl.Snapshot()))
}

// ToggleSet godoc
// @Summary Mark or unmark one set as completed
// @Tags Workout
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body ToggleSetRequest true "Set to toggle"
// @Success 200 {object} ActiveWorkoutResponse
// @Router /workout/active/sets [post]
func (h *WorkoutHandler) ToggleSet(c *gin.Context) {
	var req ToggleSetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	ctrl, ok := h.controller(c)
	if !ok {
		return
	}

	if _, err := ctrl.ToggleSet(c.Request.Context(), req.ExerciseID, *req.SetIndex); err != nil {
		respondError(c, err, "Failed to update set.")
		return
	}
	c.JSON(http.StatusOK, MapViewToResponse(ctrl.Snapshot()))
}

// SetVisibility godoc
// @Summary Show, hide or flip the active workout view
// @Tags Workout
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body VisibilityRequest false "Explicit visibility"
// @Success 200 {object} gin.H
// @Router /workout/active/visibility [post]
func (h *WorkoutHandler) SetVisibility(c *gin.Context) {
	var req VisibilityRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	ctrl, ok := h.controller(c)
	if !ok {
		return
	}

	visible, err := ctrl.ToggleVisibility(req.Visible)
	if err != nil {
		respondError(c, err, "Failed to change visibility.")
		return
	}
	c.JSON(http.StatusOK, gin.H{"visible": visible})
}

// CancelWorkout godoc
// @Summary Discard the active workout without saving
// @Description Nothing happens unless confirm=true is passed.
// @Tags Workout
// @Produce json
// @Security BearerAuth
// @Param confirm query bool false "Confirm cancellation"
// @Success 200 {object} gin.H
// @Router /workout/active [delete]
func (h *WorkoutHandler) CancelWorkout(c *gin.Context) {
	confirmed, _ := strconv.ParseBool(c.DefaultQuery("confirm", "false"))
	ctrl, ok := h.controller(c)
	if !ok {
		return
	}

	ctx := session.WithConfirmation(c.Request.Context(), confirmed)
	canceled, err := ctrl.Cancel(ctx)
	if err != nil {
		respondError(c, err, "Failed to cancel workout.")
		return
	}
	c.JSON(http.StatusOK, gin.H{"canceled": canceled})
}

// FinishWorkout godoc
// @Summary Save the active workout to history and end it
// @Tags Workout
// @Produce json
// @Security BearerAuth
// @Success 201 {object} domain.WorkoutHistory
// @Failure 422 {object} gin.H "No completed sets"
// @Failure 502 {object} gin.H "History could not be saved; the workout is kept"
// @Router /workout/active/finish [post]
func (h *WorkoutHandler) FinishWorkout(c *gin.Context) {
	ctrl, ok := h.controller(c)
	if !ok {
		return
	}

	record, err := ctrl.Finish(c.Request.Context())
	if err != nil {
		respondError(c, err, "Failed to finish workout.")
		return
	}
	c.JSON(http.StatusCreated, record)
}

// StreamTimer godoc
// @Summary Server-sent events with the elapsed seconds of the active workout
// @Tags Workout
// @Produce text/event-stream
// @Security BearerAuth
// @Router /workout/active/timer [get]
func (h *WorkoutHandler) StreamTimer(c *gin.Context) {
	ctrl, ok := h.controller(c)
	if !ok {
		return
	}

	ticks, err := ctrl.Watch(c.Request.Context())
	if err != nil {
		respondError(c, err, "Failed to watch workout timer.")
		return
	}

	c.Stream(func(w io.Writer) bool {
		elapsed, open := <-ticks
		if !open {
			c.SSEvent("end", gin.H{"state": ctrl.State().String()})
			return false
		}
		c.SSEvent("elapsed", gin.H{"elapsedSeconds": elapsed})
		return true
	})
}
