package repository

import (
	"context"
	"encoding/json"

	"go.opentelemetry.io/otel/trace"

	"github.com/ZenKaiii/ai-stock-analyst/internal/domain"
)

const createScanRunsTable = `
CREATE TABLE IF NOT EXISTS scan_runs (
    id               BIGSERIAL   PRIMARY KEY,
    signal           TEXT        NOT NULL,
    confidence       NUMERIC     NOT NULL,
    top_pick         TEXT,
    scanned_universe INTEGER     NOT NULL,
    prefiltered      INTEGER     NOT NULL,
    scored           INTEGER     NOT NULL,
    final_count      INTEGER     NOT NULL,
    news_fallback    BOOLEAN     NOT NULL,
    candidates       JSONB       NOT NULL DEFAULT '[]',
    created_at       TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_scan_runs_time ON scan_runs (created_at DESC);
`

// ScanRepository persists universe scan runs with their funnel statistics.
type ScanRepository struct {
	pool   PgxPool
	tracer trace.Tracer
}

func NewScanRepository(pool PgxPool, tracer trace.Tracer) *ScanRepository {
	return &ScanRepository{pool: pool, tracer: tracer}
}

func (r *ScanRepository) RunMigrations(ctx context.Context) error {
	_, span := r.tracer.Start(ctx, "scan-repo.run-migrations")
	defer span.End()

	_, err := r.pool.Exec(ctx, createScanRunsTable)
	return err
}

func (r *ScanRepository) SaveRun(ctx context.Context, result domain.ScanResult) error {
	_, span := r.tracer.Start(ctx, "scan-repo.save-run")
	defer span.End()

	candidates, err := json.Marshal(result.Candidates)
	if err != nil {
		return err
	}
	var topPick *string
	if result.TopPick != nil {
		topPick = &result.TopPick.Symbol
	}
	_, err = r.pool.Exec(ctx,
		`INSERT INTO scan_runs (signal, confidence, top_pick, scanned_universe, prefiltered,
		     scored, final_count, news_fallback, candidates, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		string(result.Signal), result.Confidence, topPick, result.Stats.ScannedUniverse,
		result.Stats.Prefiltered, result.Stats.Scored, result.Stats.FinalCount,
		result.Stats.NewsFallback, candidates, result.Timestamp,
	)
	return err
}
