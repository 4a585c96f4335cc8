package api

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	ierr "payment-api/internal/errors"
	"payment-api/internal/models"
	"payment-api/internal/response"
)

// ReconciliationManager lists and resolves entries needing manual follow-up
type ReconciliationManager interface {
	List(ctx context.Context, resolved *bool, limit int) ([]models.ReconciliationEntry, error)
	Get(ctx context.Context, id uint) (*models.ReconciliationEntry, error)
	Resolve(ctx context.Context, id uint, resolvedBy, note string) (*models.ReconciliationEntry, error)
}

// ReconciliationHandler exposes the reconciliation journal to operators
type ReconciliationHandler struct {
	manager ReconciliationManager
}

// NewReconciliationHandler creates the admin handler
func NewReconciliationHandler(manager ReconciliationManager) *ReconciliationHandler {
	return &ReconciliationHandler{manager: manager}
}

// ListReconciliations handles GET /api/admin/reconciliations
func (h *ReconciliationHandler) ListReconciliations(c *gin.Context) {
	var resolved *bool
	if raw := c.Query("resolved"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			response.ErrorJSON(c, http.StatusBadRequest, "resolved must be true or false")
			return
		}
		resolved = &v
	}

	limit := 100
	if raw := c.Query("limit"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v <= 0 {
			response.ErrorJSON(c, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = v
	}

	entries, err := h.manager.List(c.Request.Context(), resolved, limit)
	if err != nil {
		_ = c.Error(err)
		response.ErrorJSON(c, ierr.HTTPStatus(err), "Failed to list reconciliation entries")
		return
	}

	response.SuccessJSON(c, gin.H{
		"entries": entries,
		"total":   len(entries),
	})
}

// GetReconciliation handles GET /api/admin/reconciliations/:id
func (h *ReconciliationHandler) GetReconciliation(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		response.ErrorJSON(c, http.StatusBadRequest, "Invalid reconciliation id")
		return
	}

	entry, err := h.manager.Get(c.Request.Context(), uint(id))
	if err != nil {
		_ = c.Error(err)
		status := ierr.HTTPStatus(err)
		if status == http.StatusNotFound {
			response.ErrorJSON(c, status, "Reconciliation entry not found")
			return
		}
		response.ErrorJSON(c, status, "Failed to load reconciliation entry")
		return
	}

	response.SuccessJSON(c, entry)
}

type resolveRequest struct {
	ResolvedBy string `json:"resolvedBy" binding:"required"`
	Note       string `json:"note"`
}

// ResolveReconciliation handles POST /api/admin/reconciliations/:id/resolve
func (h *ReconciliationHandler) ResolveReconciliation(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		response.ErrorJSON(c, http.StatusBadRequest, "Invalid reconciliation id")
		return
	}

	var req resolveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorJSON(c, http.StatusBadRequest, "resolvedBy is required")
		return
	}

	entry, err := h.manager.Resolve(c.Request.Context(), uint(id), req.ResolvedBy, req.Note)
	if err != nil {
		_ = c.Error(err)
		status := ierr.HTTPStatus(err)
		if status == http.StatusNotFound {
			response.ErrorJSON(c, status, "Reconciliation entry not found")
			return
		}
		response.ErrorJSON(c, status, "Failed to resolve reconciliation entry")
		return
	}

	response.SuccessJSON(c, entry)
}
