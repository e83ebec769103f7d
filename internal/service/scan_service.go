package service

import (
	"context"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/ZenKaiii/ai-stock-analyst/internal/domain"
	"github.com/ZenKaiii/ai-stock-analyst/internal/scanner"
)

// ScanStore persists completed scan runs.
type ScanStore interface {
	SaveRun(ctx context.Context, result domain.ScanResult) error
}

// ScanService runs the universe scanner and persists the result. Storage
// failures are logged, not fatal: a scan that completed is still returned.
type ScanService struct {
	tracer  trace.Tracer
	log     zerolog.Logger
	scanner *scanner.Scanner
	store   ScanStore
}

func NewScanService(tracer trace.Tracer, log zerolog.Logger, sc *scanner.Scanner, store ScanStore) *ScanService {
	return &ScanService{tracer: tracer, log: log, scanner: sc, store: store}
}

func (s *ScanService) Run(ctx context.Context) domain.ScanResult {
	ctx, span := s.tracer.Start(ctx, "scan-service.run")
	defer span.End()

	result := s.scanner.Scan(ctx)
	span.SetAttributes(
		attribute.Int("scan.final_count", result.Stats.FinalCount),
		attribute.Bool("scan.news_fallback", result.Stats.NewsFallback),
	)

	if s.store != nil {
		if err := s.store.SaveRun(ctx, result); err != nil {
			s.log.Warn().Err(err).Msg("failed to persist scan run")
		}
	}
	return result
}
