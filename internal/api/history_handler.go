package api

import (
	"glog/workout-server/internal/domain"
	"glog/workout-server/internal/service"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

// HistoryHandler serves finished workouts.
type HistoryHandler struct {
	historyService service.HistoryService
	exportService  service.ExportService
}

// NewHistoryHandler creates a new HistoryHandler.
func NewHistoryHandler(historyService service.HistoryService, exportService service.ExportService) *HistoryHandler {
	return &HistoryHandler{
		historyService: historyService,
		exportService:  exportService,
	}
}

// ListHistory godoc
// @Summary Finished workouts, newest first
// @Tags History
// @Produce json
// @Security BearerAuth
// @Param limit query int false "Page size (default 50, max 200)"
// @Param offset query int false "Records to skip"
// @Success 200 {array} domain.WorkoutHistory
// @Router /history [get]
func (h *HistoryHandler) ListHistory(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "0"))
	if err != nil || limit < 0 {
		abortWithError(c, http.StatusBadRequest, "limit must be a non-negative integer")
		return
	}
	offset, err := strconv.Atoi(c.DefaultQuery("offset", "0"))
	if err != nil || offset < 0 {
		abortWithError(c, http.StatusBadRequest, "offset must be a non-negative integer")
		return
	}
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	records, err := h.historyService.ListHistory(c.Request.Context(), userID, limit, offset)
	if err != nil {
		respondError(c, err, "Failed to retrieve workout history.")
		return
	}
	if records == nil {
		records = []domain.WorkoutHistory{} // Return empty JSON array, not null
	}
	c.JSON(http.StatusOK, records)
}

// ExportHistory godoc
// @Summary Upload the full history as JSON and return a download link
// @Tags History
// @Produce json
// @Security BearerAuth
// @Success 201 {object} service.HistoryExport
// @Failure 503 {object} gin.H "Exports are not configured"
// @Router /history/export [post]
func (h *HistoryHandler) ExportHistory(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	export, err := h.exportService.ExportHistory(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err, "Failed to export workout history.")
		return
	}
	c.JSON(http.StatusCreated, export)
}
