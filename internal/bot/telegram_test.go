package bot

import (
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/ZenKaiii/ai-stock-analyst/internal/domain"
)

func TestNewWithoutToken(t *testing.T) {
	tg, err := New("", 0, zerolog.Nop(), nil, nil, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tg != nil {
		t.Fatal("expected nil bot without a token")
	}

	// The nil bot must be safe to drive and notify.
	tg.Start()
	tg.Stop()
	if err := tg.NotifyScan(nil, domain.ScanResult{}); err != nil {
		t.Fatalf("notify on nil bot must be a no-op, got %v", err)
	}
	if err := tg.NotifyReport(nil, domain.AnalysisReport{}); err != nil {
		t.Fatalf("notify on nil bot must be a no-op, got %v", err)
	}
}

func TestRenderReport(t *testing.T) {
	report := domain.AnalysisReport{
		Symbol: "NVDA",
		Decision: domain.Decision{
			Symbol:       "NVDA",
			Signal:       domain.SignalHold,
			Confidence:   0.6,
			Score:        71.5,
			EntryPrice:   180,
			StopLoss:     174.6,
			TargetPrice:  190.8,
			PositionSize: "2%",
			RiskOverride: true,
			RiskLevel:    domain.RiskHigh,
			Rationale:    "risk gate downgraded BUY to HOLD",
			Risk: domain.RiskAssessment{
				Level:     domain.RiskHigh,
				Triggered: true,
				Triggers:  []string{"elevated ATR volatility (6.50%)"},
			},
		},
		Analyses: []domain.AnalysisResult{
			{Agent: "technical_analyst", Signal: domain.SignalBuy, Confidence: 0.7},
			{Agent: "risk_manager", Signal: domain.SignalHold, Confidence: 0.78},
		},
	}

	out := RenderReport(report)
	for _, want := range []string{
		"🟡 NVDA",
		"Signal: HOLD (60% confidence)",
		"Score: 71.5/100 | Risk: HIGH",
		"Risk gate override: BUY downgraded to HOLD",
		"Entry: $180.00 | Stop: $174.60 | Target: $190.80",
		"Position size: 2%",
		"elevated ATR volatility",
		"technical_analyst: BUY (0.70)",
		"risk gate downgraded BUY to HOLD",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in report:\n%s", want, out)
		}
	}
}

func TestRenderReportOmitsPriceBlockWithoutEntry(t *testing.T) {
	out := RenderReport(domain.AnalysisReport{
		Symbol:   "XYZ",
		Decision: domain.Decision{Signal: domain.SignalHold, PositionSize: "5%"},
	})
	if strings.Contains(out, "Entry:") {
		t.Fatalf("expected no price block without an entry price:\n%s", out)
	}
}

func TestRenderScan(t *testing.T) {
	ts := time.Date(2026, 8, 28, 13, 35, 0, 0, time.UTC)
	result := domain.ScanResult{
		Signal:     domain.SignalBuy,
		Confidence: 0.81,
		Timestamp:  ts,
		TopPick: &domain.CandidateScore{
			Symbol:        "NVDA",
			CompanyName:   "NVIDIA Corporation",
			Signal:        domain.SignalBuy,
			Score100:      81.0,
			NewsCount:     3,
			EntryPrice:    180,
			TargetPrice:   194.4,
			RecommendNote: "prefilter 14.20, technical 0.93",
			EvidenceNews:  []string{"[CNBC] NVDA record quarter"},
		},
		Watchlist: []domain.CandidateScore{
			{Symbol: "AAPL", Signal: domain.SignalBuy, Score100: 74.5},
			{Symbol: "MSFT", Signal: domain.SignalHold, Score100: 70.1},
		},
		Stats: domain.ScanStats{ScannedUniverse: 5100, Prefiltered: 120, Scored: 118, FinalCount: 21},
	}

	out := RenderScan(result)
	for _, want := range []string{
		"Market scan 2026-08-28 13:35 UTC",
		"Universe 5100 -> prefilter 120 -> scored 118 -> final 21",
		"🟢 Top pick: NVDA (NVIDIA Corporation)",
		"Signal: BUY | Score: 81.0/100 | News: 3",
		"Entry: $180.00 | Target: $194.40",
		"  - [CNBC] NVDA record quarter",
		" 2. AAPL BUY 74.5",
		" 3. MSFT HOLD 70.1",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in scan message:\n%s", want, out)
		}
	}
	if strings.Contains(out, "news signals") {
		t.Fatal("fallback note must not appear for a price-funnel scan")
	}
}

func TestRenderScanEmpty(t *testing.T) {
	out := RenderScan(domain.ScanResult{
		Signal:    domain.SignalHold,
		Timestamp: time.Now().UTC(),
		Stats:     domain.ScanStats{NewsFallback: true},
	})
	if !strings.Contains(out, "No candidates passed the screen today.") {
		t.Fatalf("expected empty-scan message:\n%s", out)
	}
	if !strings.Contains(out, "ranked from news signals") {
		t.Fatalf("expected fallback note:\n%s", out)
	}
}
