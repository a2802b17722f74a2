package api

import (
	"glog/workout-server/internal/domain"
	"glog/workout-server/internal/service"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// PlanHandler serves the weekly plan endpoints.
type PlanHandler struct {
	planService service.PlanService
}

// NewPlanHandler creates a new PlanHandler.
func NewPlanHandler(planService service.PlanService) *PlanHandler {
	return &PlanHandler{planService: planService}
}

type CreatePlanRequest struct {
	DayOfWeek *int   `json:"dayOfWeek" binding:"required,min=0,max=6"` // 0 = Monday
	Name      string `json:"name" binding:"required"`
}

type RenamePlanRequest struct {
	Name string `json:"name" binding:"required"`
}

type PlanResponse struct {
	ID        string             `json:"id"`
	DayOfWeek int                `json:"dayOfWeek"`
	Name      string             `json:"name"`
	Exercises []ExerciseResponse `json:"exercises"`
	CreatedAt time.Time          `json:"createdAt"`
	UpdatedAt time.Time          `json:"updatedAt"`
}

// MapPlanToResponse converts a domain.WorkoutPlan to PlanResponse DTO.
func MapPlanToResponse(plan *domain.WorkoutPlan) PlanResponse {
	if plan == nil {
		return PlanResponse{}
	}
	return PlanResponse{
		ID:        plan.ID.Hex(),
		DayOfWeek: plan.DayOfWeek,
		Name:      plan.Name,
		Exercises: MapExercisesToResponse(plan.Exercises),
		CreatedAt: plan.CreatedAt,
		UpdatedAt: plan.UpdatedAt,
	}
}

// ListPlans godoc
// @Summary List the user's plans with their exercises, Monday first
// @Tags Plans
// @Produce json
// @Security BearerAuth
// @Success 200 {array} PlanResponse
// @Router /plans [get]
func (h *PlanHandler) ListPlans(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	plans, err := h.planService.ListPlans(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err, "Failed to retrieve plans.")
		return
	}

	resp := make([]PlanResponse, len(plans))
	for i := range plans {
		resp[i] = MapPlanToResponse(&plans[i])
	}
	c.JSON(http.StatusOK, resp)
}

// CreatePlan godoc
// @Summary Create the plan for a day of the week
// @Tags Plans
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param plan body CreatePlanRequest true "Plan details"
// @Success 201 {object} PlanResponse
// @Failure 409 {object} gin.H "Day already has a plan"
// @Router /plans [post]
func (h *PlanHandler) CreatePlan(c *gin.Context) {
	var req CreatePlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	plan, err := h.planService.CreatePlan(c.Request.Context(), userID, *req.DayOfWeek, req.Name)
	if err != nil {
		respondError(c, err, "Failed to create plan.")
		return
	}
	c.JSON(http.StatusCreated, MapPlanToResponse(plan))
}

// RenamePlan godoc
// @Summary Rename a plan
// @Tags Plans
// @Accept json
// @Security BearerAuth
// @Param planId path string true "Plan ID"
// @Param plan body RenamePlanRequest true "New name"
// @Success 204
// @Router /plans/{planId} [put]
func (h *PlanHandler) RenamePlan(c *gin.Context) {
	var req RenamePlanRequest
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

	if err := h.planService.RenamePlan(c.Request.Context(), userID, planID, req.Name); err != nil {
		respondError(c, err, "Failed to rename plan.")
		return
	}
	c.Status(http.StatusNoContent)
}

// DeletePlan godoc
// @Summary Delete a plan and its exercises. History is kept.
// @Tags Plans
// @Security BearerAuth
// @Param planId path string true "Plan ID"
// @Success 204
// @Router /plans/{planId} [delete]
func (h *PlanHandler) DeletePlan(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	planID, ok := pathObjectID(c, "planId")
	if !ok {
		return
	}

	if err := h.planService.DeletePlan(c.Request.Context(), userID, planID); err != nil {
		respondError(c, err, "Failed to delete plan.")
		return
	}
	c.Status(http.StatusNoContent)
}
