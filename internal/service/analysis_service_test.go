package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/trace"

	"github.com/ZenKaiii/ai-stock-analyst/internal/agent"
	"github.com/ZenKaiii/ai-stock-analyst/internal/config"
	"github.com/ZenKaiii/ai-stock-analyst/internal/decision"
	"github.com/ZenKaiii/ai-stock-analyst/internal/domain"
)

type stubAgent struct {
	name   string
	signal domain.Signal
	conf   float64
}

func (a *stubAgent) Name() string { return a.name }

func (a *stubAgent) Analyze(ctx context.Context, in *domain.AnalysisContext) domain.AnalysisResult {
	return domain.AnalysisResult{Agent: a.name, Signal: a.signal, Confidence: a.conf}
}

type captureStore struct {
	saved []domain.AnalysisReport
	err   error
}

func (s *captureStore) SaveReport(ctx context.Context, report domain.AnalysisReport) error {
	s.saved = append(s.saved, report)
	return s.err
}

func newTestAnalysisService(agents []agent.Agent, store ReportStore) *AnalysisService {
	tracer := trace.NewNoopTracerProvider().Tracer("test")
	gate := agent.NewRiskGate(config.DefaultRiskThresholds(), config.DefaultEventKeywords(), config.DefaultGeoKeywordWeights())
	aggregator := decision.NewAggregator(tracer, config.DefaultAgentWeights())
	return NewAnalysisService(tracer, zerolog.Nop(), agents, gate, aggregator, store)
}

func healthyFeatures() *domain.FeatureSnapshot {
	return &domain.FeatureSnapshot{
		CurrentPrice:  100,
		Trend:         domain.TrendBullish,
		RSI14:         55,
		ATRPct:        1.5,
		Volatility20D: 1.2,
		ChangePercent: 0.5,
		DataQuality:   0.95,
	}
}

func TestAnalyzeSkipsAgentsMissingInputs(t *testing.T) {
	agents := []agent.Agent{
		&stubAgent{name: agent.NameTechnical, signal: domain.SignalBuy, conf: 0.8},
		&stubAgent{name: agent.NameNews, signal: domain.SignalBuy, conf: 0.9},
		&stubAgent{name: agent.NameSocial, signal: domain.SignalSell, conf: 0.9},
		&stubAgent{name: agent.NameAnomaly, signal: domain.SignalSell, conf: 0.9},
	}
	s := newTestAnalysisService(agents, nil)

	// Features only: no history, headlines or social sample.
	in := &domain.AnalysisContext{Symbol: "AAPL", Features: healthyFeatures()}
	report := s.Analyze(context.Background(), in)

	if len(report.Analyses) != 2 {
		t.Fatalf("expected technical + gate, got %d results: %+v", len(report.Analyses), report.Analyses)
	}
	names := map[string]bool{}
	for _, r := range report.Analyses {
		names[r.Agent] = true
	}
	if !names[agent.NameTechnical] || !names[agent.NameRiskGate] {
		t.Fatalf("unexpected agent set: %v", names)
	}
}

func TestAnalyzeGateAlwaysRuns(t *testing.T) {
	s := newTestAnalysisService(nil, nil)

	report := s.Analyze(context.Background(), &domain.AnalysisContext{Symbol: "XYZ"})
	if len(report.Analyses) != 1 || report.Analyses[0].Agent != agent.NameRiskGate {
		t.Fatalf("expected a lone gate verdict, got %+v", report.Analyses)
	}
	// Zero data quality trips the gate; the decision must carry the
	// reduced sizing.
	if report.Decision.Risk.Level == domain.RiskLow {
		t.Fatal("expected an elevated risk level on an empty context")
	}
	if report.Decision.Signal != domain.SignalHold {
		t.Fatalf("expected HOLD without any directional agent, got %s", report.Decision.Signal)
	}
}

func TestAnalyzePersistsReport(t *testing.T) {
	store := &captureStore{}
	s := newTestAnalysisService([]agent.Agent{
		&stubAgent{name: agent.NameTechnical, signal: domain.SignalBuy, conf: 0.7},
	}, store)

	in := &domain.AnalysisContext{Symbol: "NVDA", Features: healthyFeatures()}
	s.Analyze(context.Background(), in)

	if len(store.saved) != 1 || store.saved[0].Symbol != "NVDA" {
		t.Fatalf("expected one persisted report for NVDA, got %+v", store.saved)
	}
}

func TestAnalyzeStoreFailureIsNotFatal(t *testing.T) {
	store := &captureStore{err: errors.New("db down")}
	s := newTestAnalysisService(nil, store)

	report := s.Analyze(context.Background(), &domain.AnalysisContext{Symbol: "MSFT", Features: healthyFeatures()})
	if report.Symbol != "MSFT" {
		t.Fatalf("expected report despite store failure, got %+v", report)
	}
}

func TestAnalyzeCapsReportNews(t *testing.T) {
	s := newTestAnalysisService(nil, nil)

	news := make([]domain.NewsItem, 8)
	for i := range news {
		news[i] = domain.NewsItem{Title: "headline", PublishedAt: time.Now()}
	}
	in := &domain.AnalysisContext{Symbol: "TSLA", Features: healthyFeatures(), News: news}
	report := s.Analyze(context.Background(), in)

	if len(report.News) != 5 {
		t.Fatalf("expected report news capped at 5, got %d", len(report.News))
	}
}

func TestDefaultPipelineOrder(t *testing.T) {
	gate := agent.NewRiskGate(config.DefaultRiskThresholds(), config.DefaultEventKeywords(), config.DefaultGeoKeywordWeights())
	pipeline := DefaultPipeline(nil, gate)
	if len(pipeline) != 10 {
		t.Fatalf("expected 10 agents, got %d", len(pipeline))
	}
	if pipeline[0].Name() != agent.NameTechnical {
		t.Fatalf("expected technical first, got %s", pipeline[0].Name())
	}
	if pipeline[len(pipeline)-1].Name() != agent.NameRiskGate {
		t.Fatalf("expected the gate last, got %s", pipeline[len(pipeline)-1].Name())
	}
}
