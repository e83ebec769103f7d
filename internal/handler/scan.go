package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// TriggerScan godoc
// @Summary      Run one universe scan manually
// @Description  Runs the full filter/score/rank funnel and returns the ranked result
// @Tags         scan
// @Produce      json
// @Success      200  {object}  domain.ScanResult
// @Failure      503  {object}  map[string]string
// @Router       /api/scan/run [post]
func (h *Handler) TriggerScan(c *gin.Context) {
	if h.scans == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "scan service unavailable"})
		return
	}

	ctx, span := h.tracer.Start(c.Request.Context(), "handler.trigger-scan")
	defer span.End()

	result := h.scans.Run(ctx)
	c.JSON(http.StatusOK, result)
}
