package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/trace"

	"github.com/ZenKaiii/ai-stock-analyst/internal/domain"
	"github.com/ZenKaiii/ai-stock-analyst/internal/service"
)

// DecisionReader serves historical decisions for the API.
type DecisionReader interface {
	RecentDecisions(ctx context.Context, symbol string, limit int) ([]domain.Decision, error)
}

type Handler struct {
	tracer    trace.Tracer
	analysis  *service.AnalysisService
	contexts  *service.ContextService
	scans     *service.ScanService
	decisions DecisionReader
}

func New(tracer trace.Tracer, analysis *service.AnalysisService, contexts *service.ContextService, scans *service.ScanService, decisions DecisionReader) *Handler {
	return &Handler{
		tracer:    tracer,
		analysis:  analysis,
		contexts:  contexts,
		scans:     scans,
		decisions: decisions,
	}
}

func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.GET("/health", h.Health)
	r.GET("/api/analyze/:symbol", h.Analyze)
	r.GET("/api/decisions/:symbol", h.RecentDecisions)
	r.POST("/api/scan/run", h.TriggerScan)
}
