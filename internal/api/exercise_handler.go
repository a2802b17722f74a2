package api

import (
	"glog/workout-server/internal/domain"
	"glog/workout-server/internal/service"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ExerciseHandler serves the exercises of a plan.
type ExerciseHandler struct {
	planService service.PlanService
}

// NewExerciseHandler creates a new ExerciseHandler.
func NewExerciseHandler(planService service.PlanService) *ExerciseHandler {
	return &ExerciseHandler{planService: planService}
}

// ExerciseRequest is used both to add and to update an exercise. Update
// replaces every field.
type ExerciseRequest struct {
	Name   string   `json:"name" binding:"required"`
	Sets   *int     `json:"sets" binding:"omitempty,min=1"`
	Reps   *int     `json:"reps" binding:"omitempty,min=0"`
	Weight *float64 `json:"weight" binding:"omitempty,min=0"` // kg
}

type ReorderExercisesRequest struct {
	ExerciseIDs []string `json:"exerciseIds" binding:"required"`
}

// ExerciseResponse is the DTO for returning exercise details.
type ExerciseResponse struct {
	ID            string    `json:"id"`
	WorkoutPlanID string    `json:"workoutPlanId"`
	Name          string    `json:"name"`
	Sets          *int      `json:"sets"`
	Reps          *int      `json:"reps"`
	Weight        *float64  `json:"weight"`
	OrderIndex    int       `json:"orderIndex"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// MapExerciseToResponse converts a domain.Exercise to ExerciseResponse DTO.
func MapExerciseToResponse(ex *domain.Exercise) ExerciseResponse {
	if ex == nil {
		return ExerciseResponse{}
	}
	return ExerciseResponse{
		ID:            ex.ID.Hex(),
		WorkoutPlanID: ex.WorkoutPlanID.Hex(),
		Name:          ex.Name,
		Sets:          ex.Sets,
		Reps:          ex.Reps,
		Weight:        ex.Weight,
		OrderIndex:    ex.OrderIndex,
		CreatedAt:     ex.CreatedAt,
		UpdatedAt:     ex.UpdatedAt,
	}
}

// MapExercisesToResponse converts a slice of domain.Exercise to a slice of ExerciseResponse DTO.
func MapExercisesToResponse(exercises []domain.Exercise) []ExerciseResponse {
	responses := make([]ExerciseResponse, len(exercises))
	for i := range exercises {
		responses[i] = MapExerciseToResponse(&exercises[i])
	}
	return responses
}

func (r ExerciseRequest) input() service.ExerciseInput {
	return service.ExerciseInput{Name: r.Name, Sets: r.Sets, Reps: r.Reps, Weight: r.Weight}
}

// AddExercise godoc
// @Summary Append an exercise to a plan
// @Tags Exercises
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param planId path string true "Plan ID"
// @Param exercise body ExerciseRequest true "Exercise details"
// @Success 201 {object} ExerciseResponse
// @Router /plans/{planId}/exercises [post]
func (h *ExerciseHandler) AddExercise(c *gin.Context) {
	var req ExerciseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	planID, ok := pathObjectID(c, "planId")
	if !ok {
		return
	}

	exercise, err := h.planService.AddExercise(c.Request.Context(), userID, planID, req.input())
	if err != nil {
		respondError(c, err, "Failed to add exercise.")
		return
	}
	c.JSON(http.StatusCreated, MapExerciseToResponse(exercise))
}

// UpdateExercise godoc
// @Summary Replace an exercise's name and targets
// @Tags Exercises
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param exerciseId path string true "Exercise ID"
// @Param exercise body ExerciseRequest true "Exercise details"
// @Success 200 {object} ExerciseResponse
// @Router /exercises/{exerciseId} [put]
func (h *ExerciseHandler) UpdateExercise(c *gin.Context) {
	var req ExerciseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	exerciseID, ok := pathObjectID(c, "exerciseId")
	if !ok {
		return
	}

	exercise, err := h.planService.UpdateExercise(c.Request.Context(), userID, exerciseID, req.input())
	if err != nil {
		respondError(c, err, "Failed to update exercise.")
		return
	}
	c.JSON(http.StatusOK, MapExerciseToResponse(exercise))
}

// DeleteExercise godoc
// @Summary Remove an exercise from its plan
// @Tags Exercises
// @Security BearerAuth
// @Param exerciseId path string true "Exercise ID"
// @Success 204
// @Router /exercises/{exerciseId} [delete]
func (h *ExerciseHandler) DeleteExercise(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	exerciseID, ok := pathObjectID(c, "exerciseId")
	if !ok {
		return
	}

	if err := h.planService.DeleteExercise(c.Request.Context(), userID, exerciseID); err != nil {
		respondError(c, err, "Failed to delete exercise.")
		return
	}
	c.Status(http.StatusNoContent)
}

// ReorderExercises godoc
// @Summary Set the order of a plan's exercises
// @Tags Exercises
// @Accept json
// @Security BearerAuth
// @Param planId path string true "Plan ID"
// @Param order body ReorderExercisesRequest true "Every exercise id of the plan, in the new order"
// @Success 204
// @Router /plans/{planId}/exercises/order [put]
func (h *ExerciseHandler) ReorderExercises(c *gin.Context) {
	var req ReorderExercisesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	planID, ok := pathObjectID(c, "planId")
	if !ok {
		return
	}

	ids := make([]primitive.ObjectID, len(req.ExerciseIDs))
	for i, hex := range req.ExerciseIDs {
		id, err := primitive.ObjectIDFromHex(hex)
		if err != nil {
			abortWithError(c, http.StatusBadRequest, "Invalid exercise ID format: "+hex)
			return
		}
		ids[i] = id
	}

	if err := h.planService.ReorderExercises(c.Request.Context(), userID, planID, ids); err != nil {
		respondError(c, err, "Failed to reorder exercises.")
		return
	}
	c.Status(http.StatusNoContent)
}
