package service

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/ZenKaiii/ai-stock-analyst/internal/agent"
	"github.com/ZenKaiii/ai-stock-analyst/internal/decision"
	"github.com/ZenKaiii/ai-stock-analyst/internal/domain"
	"github.com/ZenKaiii/ai-stock-analyst/internal/llm"
)

// ReportStore persists completed analysis reports.
type ReportStore interface {
	SaveReport(ctx context.Context, report domain.AnalysisReport) error
}

// AnalysisService runs the agent pipeline for one instrument and folds the
// verdicts into a Decision. Agents are stateless and independent, so they
// run concurrently; the aggregator waits for the full set.
type AnalysisService struct {
	tracer     trace.Tracer
	log        zerolog.Logger
	agents     []agent.Agent
	gate       *agent.RiskGate
	aggregator *decision.Aggregator
	store      ReportStore
}

// NewAnalysisService wires the pipeline. store may be nil when no database
// is configured.
func NewAnalysisService(tracer trace.Tracer, log zerolog.Logger, agents []agent.Agent, gate *agent.RiskGate, aggregator *decision.Aggregator, store ReportStore) *AnalysisService {
	return &AnalysisService{
		tracer:     tracer,
		log:        log,
		agents:     agents,
		gate:       gate,
		aggregator: aggregator,
		store:      store,
	}
}

// DefaultPipeline builds the full ordered agent set. gen may be nil, in
// which case every generative agent takes its rule path.
func DefaultPipeline(gen llm.TextGenerator, gate *agent.RiskGate) []agent.Agent {
	return []agent.Agent{
		agent.NewTechnicalAgent(gen),
		agent.NewAnomalyAgent(),
		agent.NewFundamentalAgent(gen),
		agent.NewNewsAgent(gen),
		agent.NewBullAgent(gen),
		agent.NewBearAgent(gen),
		agent.NewSocialAgent(),
		agent.NewMacroAgent(),
		agent.NewLiquidityAgent(),
		gate,
	}
}

// Analyze runs every applicable agent and aggregates. It never fails:
// missing input categories skip their agents and the gate always runs.
func (s *AnalysisService) Analyze(ctx context.Context, in *domain.AnalysisContext) domain.AnalysisReport {
	ctx, span := s.tracer.Start(ctx, "analysis-service.analyze",
		trace.WithAttributes(attribute.String("symbol", in.Symbol)))
	defer span.End()

	selected := make([]agent.Agent, 0, len(s.agents))
	for _, a := range s.agents {
		if s.skip(a.Name(), in) {
			continue
		}
		selected = append(selected, a)
	}

	analyses := make([]domain.AnalysisResult, len(selected))
	var wg sync.WaitGroup
	for i, a := range selected {
		wg.Add(1)
		go func(i int, a agent.Agent) {
			defer wg.Done()
			analyses[i] = a.Analyze(ctx, in)
		}(i, a)
	}
	wg.Wait()

	gateSeen := false
	for _, r := range analyses {
		if r.Agent == agent.NameRiskGate {
			gateSeen = true
			break
		}
	}
	if !gateSeen {
		analyses = append(analyses, s.gate.Analyze(ctx, in))
	}

	risk := s.gate.Assess(in)

	price, atrPct := 0.0, 0.0
	if in.HasFeatures() {
		price = in.Features.CurrentPrice
		atrPct = in.Features.ATRPct
	}

	d := s.aggregator.Decide(ctx, in.Symbol, analyses, risk, price, atrPct)

	s.log.Info().
		Str("symbol", in.Symbol).
		Str("signal", string(d.Signal)).
		Float64("confidence", d.Confidence).
		Float64("score", d.Score).
		Bool("risk_override", d.RiskOverride).
		Int("agents", len(analyses)).
		Msg("analysis complete")

	news := in.News
	if len(news) > 5 {
		news = news[:5]
	}
	report := domain.AnalysisReport{
		Symbol:    in.Symbol,
		Decision:  d,
		Analyses:  analyses,
		News:      news,
		Timestamp: time.Now().UTC(),
	}

	if s.store != nil {
		if err := s.store.SaveReport(ctx, report); err != nil {
			s.log.Warn().Err(err).Str("symbol", in.Symbol).Msg("failed to persist analysis report")
		}
	}
	return report
}

// skip drops an agent when its required input category is absent.
func (s *AnalysisService) skip(name string, in *domain.AnalysisContext) bool {
	switch name {
	case agent.NameTechnical, agent.NameFundamental:
		return !in.HasFeatures()
	case agent.NameAnomaly, agent.NameLiquidity:
		return !in.HasPriceHistory(20)
	case agent.NameNews, agent.NameBull, agent.NameBear:
		return !in.HasNews()
	case agent.NameSocial:
		return !in.HasSocial()
	}
	return false
}
