package repository

import (
	"context"
	"encoding/json"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.opentelemetry.io/otel/trace"

	"github.com/ZenKaiii/ai-stock-analyst/internal/domain"
)

const createDecisionsTable = `
CREATE TABLE IF NOT EXISTS decisions (
    id            BIGSERIAL   PRIMARY KEY,
    symbol        TEXT        NOT NULL,
    signal        TEXT        NOT NULL,
    confidence    NUMERIC     NOT NULL,
    score         NUMERIC     NOT NULL,
    entry_price   NUMERIC     NOT NULL,
    stop_loss     NUMERIC     NOT NULL,
    target_price  NUMERIC     NOT NULL,
    position_size TEXT        NOT NULL,
    risk_override BOOLEAN     NOT NULL,
    risk_level    TEXT        NOT NULL,
    rationale     TEXT        NOT NULL,
    analyses      JSONB       NOT NULL DEFAULT '[]',
    created_at    TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_decisions_symbol_time
    ON decisions (symbol, created_at DESC);
`

type PgxPool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// DecisionRepository persists per-instrument analysis reports.
type DecisionRepository struct {
	pool   PgxPool
	tracer trace.Tracer
}

func NewDecisionRepository(pool PgxPool, tracer trace.Tracer) *DecisionRepository {
	return &DecisionRepository{pool: pool, tracer: tracer}
}

func (r *DecisionRepository) RunMigrations(ctx context.Context) error {
	_, span := r.tracer.Start(ctx, "decision-repo.run-migrations")
	defer span.End()

	_, err := r.pool.Exec(ctx, createDecisionsTable)
	return err
}

func (r *DecisionRepository) SaveReport(ctx context.Context, report domain.AnalysisReport) error {
	_, span := r.tracer.Start(ctx, "decision-repo.save-report")
	defer span.End()

	analyses, err := json.Marshal(report.Analyses)
	if err != nil {
		return err
	}
	d := report.Decision
	_, err = r.pool.Exec(ctx,
		`INSERT INTO decisions (symbol, signal, confidence, score, entry_price, stop_loss,
		     target_price, position_size, risk_override, risk_level, rationale, analyses, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		d.Symbol, string(d.Signal), d.Confidence, d.Score, d.EntryPrice, d.StopLoss,
		d.TargetPrice, d.PositionSize, d.RiskOverride, string(d.RiskLevel), d.Rationale,
		analyses, report.Timestamp,
	)
	return err
}

// RecentDecisions returns the latest decisions for a symbol, newest first.
func (r *DecisionRepository) RecentDecisions(ctx context.Context, symbol string, limit int) ([]domain.Decision, error) {
	_, span := r.tracer.Start(ctx, "decision-repo.recent-decisions")
	defer span.End()

	if limit <= 0 {
		limit = 20
	}
	rows, err := r.pool.Query(ctx,
		`SELECT symbol, signal, confidence, score, entry_price, stop_loss, target_price,
		     position_size, risk_override, risk_level, rationale, created_at
		 FROM decisions
		 WHERE symbol = $1
		 ORDER BY created_at DESC
		 LIMIT $2`,
		symbol, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Decision
	for rows.Next() {
		var d domain.Decision
		var signal, riskLevel string
		var createdAt time.Time
		if err := rows.Scan(&d.Symbol, &signal, &d.Confidence, &d.Score, &d.EntryPrice,
			&d.StopLoss, &d.TargetPrice, &d.PositionSize, &d.RiskOverride, &riskLevel,
			&d.Rationale, &createdAt); err != nil {
			return nil, err
		}
		d.Signal = domain.Signal(signal)
		d.RiskLevel = domain.RiskLevel(riskLevel)
		d.Timestamp = createdAt
		out = append(out, d)
	}
	return out, rows.Err()
}
