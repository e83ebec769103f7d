package handler

import (
	"net/http"
	"regexp"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

var symbolParam = regexp.MustCompile(`^[A-Z][A-Z.\-]{0,5}$`)

// Analyze godoc
// @Summary      Run the multi-agent pipeline for one stock
// @Description  Builds the analysis context, runs every applicable agent and returns the aggregated decision
// @Tags         analysis
// @Produce      json
// @Param        symbol  path  string  true  "Ticker symbol"
// @Success      200  {object}  domain.AnalysisReport
// @Failure      400  {object}  map[string]string
// @Router       /api/analyze/{symbol} [get]
func (h *Handler) Analyze(c *gin.Context) {
	symbol := strings.ToUpper(strings.TrimSpace(c.Param("symbol")))
	if !symbolParam.MatchString(symbol) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid symbol"})
		return
	}

	ctx, span := h.tracer.Start(c.Request.Context(), "handler.analyze",
		trace.WithAttributes(attribute.String("symbol", symbol)))
	defer span.End()

	in := h.contexts.Build(ctx, symbol)
	report := h.analysis.Analyze(ctx, in)
	c.JSON(http.StatusOK, report)
}

// RecentDecisions godoc
// @Summary      List recent stored decisions for one stock
// @Tags         analysis
// @Produce      json
// @Param        symbol  path   string  true   "Ticker symbol"
// @Param        limit   query  int     false  "Max rows (default 20)"
// @Success      200  {object}  map[string]interface{}
// @Failure      400  {object}  map[string]string
// @Failure      503  {object}  map[string]string
// @Router       /api/decisions/{symbol} [get]
func (h *Handler) RecentDecisions(c *gin.Context) {
	if h.decisions == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "decision store unavailable"})
		return
	}
	symbol := strings.ToUpper(strings.TrimSpace(c.Param("symbol")))
	if !symbolParam.MatchString(symbol) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid symbol"})
		return
	}
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if err != nil || limit <= 0 || limit > 200 {
		limit = 20
	}

	ctx, span := h.tracer.Start(c.Request.Context(), "handler.recent-decisions")
	defer span.End()

	rows, err := h.decisions.RecentDecisions(ctx, symbol, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"symbol": symbol, "decisions": rows})
}
