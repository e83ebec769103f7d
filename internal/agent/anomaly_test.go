package agent

import (
	"context"
	"testing"

	"github.com/ZenKaiii/ai-stock-analyst/internal/domain"
)

func TestAnomalyAgentInsufficientHistory(t *testing.T) {
	a := NewAnomalyAgent()
	res := a.Analyze(context.Background(), &domain.AnalysisContext{Symbol: "NVDA"})
	if res.Signal != domain.SignalHold {
		t.Fatalf("expected HOLD without history, got %s", res.Signal)
	}
}

func TestAnomalyAgentOrderlyTape(t *testing.T) {
	a := NewAnomalyAgent()
	closes := make([]float64, 40)
	for i := range closes {
		closes[i] = 100 + float64(i%3)
	}
	in := &domain.AnalysisContext{Symbol: "KO", History: testHistory(closes, nil)}
	res := a.Analyze(context.Background(), in)
	if res.Signal != domain.SignalHold {
		t.Fatalf("expected HOLD on an orderly tape, got %s", res.Signal)
	}
	if len(res.Risks) != 0 {
		t.Fatalf("expected no risks, got %v", res.Risks)
	}
}

func TestAnomalyAgentVolumeSpikeWithUpMove(t *testing.T) {
	a := NewAnomalyAgent()
	n := 40
	closes := make([]float64, n)
	volumes := make([]float64, n)
	for i := range closes {
		closes[i] = 100
		volumes[i] = 1_000_000
	}
	// Last bar: sharp rise on an extreme volume spike.
	closes[n-1] = 104
	volumes[n-1] = 25_000_000
	in := &domain.AnalysisContext{Symbol: "SMCI", History: testHistory(closes, volumes)}

	res := a.Analyze(context.Background(), in)
	if res.Signal != domain.SignalBuy {
		t.Fatalf("expected BUY on volume spike with rising price, got %s (%s)", res.Signal, res.Rationale)
	}
	if res.Confidence != 0.7 {
		t.Fatalf("expected confidence 0.7, got %f", res.Confidence)
	}
	if _, ok := res.Indicators["volume_z_score"]; !ok {
		t.Fatal("expected volume z-score indicator")
	}
}

func TestAnomalyAgentSteepDrawdown(t *testing.T) {
	a := NewAnomalyAgent()
	n := 40
	closes := make([]float64, n)
	for i := range closes {
		closes[i] = 100
	}
	closes[n-1] = 92 // -8% plunge
	in := &domain.AnalysisContext{Symbol: "DOCU", History: testHistory(closes, nil)}

	res := a.Analyze(context.Background(), in)
	if res.Signal != domain.SignalSell {
		t.Fatalf("expected SELL on steep drawdown, got %s (%s)", res.Signal, res.Rationale)
	}
	if res.Confidence != 0.6 {
		t.Fatalf("expected confidence 0.6, got %f", res.Confidence)
	}
}
