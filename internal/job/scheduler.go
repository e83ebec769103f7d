package job

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/trace"

	"github.com/ZenKaiii/ai-stock-analyst/internal/domain"
	"github.com/ZenKaiii/ai-stock-analyst/internal/service"
)

// Notifier pushes job results to the chat channel. Both methods tolerate a
// nil receiver so jobs run fine without Telegram configured.
type Notifier interface {
	NotifyScan(ctx context.Context, result domain.ScanResult) error
	NotifyReport(ctx context.Context, report domain.AnalysisReport) error
}

// Scheduler owns the cron entries: the daily universe scan and the
// watchlist re-analysis. Cron expressions include a seconds field.
type Scheduler struct {
	cron     *cron.Cron
	tracer   trace.Tracer
	log      zerolog.Logger
	scans    *service.ScanService
	analysis *service.AnalysisService
	contexts *service.ContextService
	notifier Notifier
	watch    []string
}

func NewScheduler(tracer trace.Tracer, log zerolog.Logger, scans *service.ScanService, analysis *service.AnalysisService, contexts *service.ContextService, notifier Notifier, watchSymbols []string) *Scheduler {
	return &Scheduler{
		cron:     cron.New(cron.WithSeconds()),
		tracer:   tracer,
		log:      log,
		scans:    scans,
		analysis: analysis,
		contexts: contexts,
		notifier: notifier,
		watch:    watchSymbols,
	}
}

// Register adds both cron entries. An empty expression disables that job.
func (s *Scheduler) Register(scanCron, watchCron string) error {
	if scanCron != "" {
		if _, err := s.cron.AddFunc(scanCron, s.runScan); err != nil {
			return fmt.Errorf("schedule scan job: %w", err)
		}
		s.log.Info().Str("cron", scanCron).Msg("scan job scheduled")
	}
	if watchCron != "" && len(s.watch) > 0 {
		if _, err := s.cron.AddFunc(watchCron, s.runWatchlist); err != nil {
			return fmt.Errorf("schedule watchlist job: %w", err)
		}
		s.log.Info().Str("cron", watchCron).Strs("symbols", s.watch).Msg("watchlist job scheduled")
	}
	return nil
}

func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop halts scheduling and waits for running jobs to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}

func (s *Scheduler) runScan() {
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Minute)
	defer cancel()

	ctx, span := s.tracer.Start(ctx, "job.scan")
	defer span.End()

	start := time.Now()
	result := s.scans.Run(ctx)
	s.log.Info().
		Int("final_count", result.Stats.FinalCount).
		Dur("elapsed", time.Since(start)).
		Msg("scheduled scan complete")

	if s.notifier != nil {
		if err := s.notifier.NotifyScan(ctx, result); err != nil {
			s.log.Error().Err(err).Msg("failed to notify scan result")
		}
	}
}

func (s *Scheduler) runWatchlist() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
	defer cancel()

	ctx, span := s.tracer.Start(ctx, "job.watchlist")
	defer span.End()

	for _, symbol := range s.watch {
		in := s.contexts.Build(ctx, symbol)
		report := s.analysis.Analyze(ctx, in)
		s.log.Info().
			Str("symbol", symbol).
			Str("signal", string(report.Decision.Signal)).
			Msg("watchlist analysis complete")

		if s.notifier != nil {
			if err := s.notifier.NotifyReport(ctx, report); err != nil {
				s.log.Error().Err(err).Str("symbol", symbol).Msg("failed to notify report")
			}
		}
	}
}
