package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	apperrors "auditserver/server/errors"
)

// Health reports service liveness.
func (h *Handlers) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// AuditLog returns the most recent audit trail entries, newest first.
// Query: limit (optional).
func (h *Handlers) AuditLog(c *gin.Context) {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			h.abortError(c, apperrors.NewValidationError("limit must be an integer", err))
			return
		}
		limit = n
	}

	entries, err := h.audit.Recent(limit)
	if err != nil {
		h.abortError(c, apperrors.NewInternalError("failed to read audit log", err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"entries": entries})
}
