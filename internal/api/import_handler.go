package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/estatelink/property-importer/internal/domain"
	"github.com/estatelink/property-importer/internal/schedule"
)

const (
	defaultRunsLimit = 20
	maxRunsLimit     = 100
)

// GuardInterface is the scheduler surface the handler needs.
type GuardInterface interface {
	TriggerManually(triggeredBy string) (*domain.ImportRun, error)
	Status() schedule.Status
}

// RunHistory reads persisted run records.
type RunHistory interface {
	ListRecent(ctx context.Context, limit int) ([]domain.ImportRun, error)
}

// ImportHandler handles import-related HTTP requests.
type ImportHandler struct {
	guard GuardInterface
	runs  RunHistory
}

// NewImportHandler creates a new import handler.
func NewImportHandler(guard GuardInterface, runs RunHistory) *ImportHandler {
	return &ImportHandler{guard: guard, runs: runs}
}

// GetStatus handles GET /api/v1/import/status.
func (h *ImportHandler) GetStatus(c *gin.Context) {
	c.JSON(http.StatusOK, h.guard.Status())
}

// Trigger handles POST /api/v1/import/trigger. It runs the import
// synchronously and returns the run summary; a concurrent run yields 409.
func (h *ImportHandler) Trigger(c *gin.Context) {
	run, err := h.guard.TriggerManually(domain.TriggerAPI)
	if err != nil {
		if errors.Is(err, schedule.ErrAlreadyRunning) {
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			return
		}
		response := gin.H{"error": err.Error()}
		if run != nil {
			response["run"] = run
		}
		c.JSON(http.StatusInternalServerError, response)
		return
	}

	c.JSON(http.StatusOK, gin.H{"run": run})
}

// ListRuns handles GET /api/v1/import/runs.
func (h *ImportHandler) ListRuns(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(defaultRunsLimit)))
	if err != nil || limit <= 0 || limit > maxRunsLimit {
		limit = defaultRunsLimit
	}

	runs, err := h.runs.ListRecent(c.Request.Context(), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list import runs"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"runs": runs, "count": len(runs)})
}
