// Package decision folds the agents' directional verdicts into one
// tradeable Decision: plurality vote, weighted composite score and the
// risk-gate override.
package decision

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/ZenKaiii/ai-stock-analyst/internal/agent"
	"github.com/ZenKaiii/ai-stock-analyst/internal/config"
	"github.com/ZenKaiii/ai-stock-analyst/internal/domain"
)

// Aggregator combines per-agent analyses. Weights are injected so tuning
// happens in configuration, not here.
type Aggregator struct {
	weights config.AgentWeights
	tracer  trace.Tracer
}

func NewAggregator(tracer trace.Tracer, weights config.AgentWeights) *Aggregator {
	if weights == nil {
		weights = config.DefaultAgentWeights()
	}
	return &Aggregator{weights: weights, tracer: tracer}
}

// Decide tallies the directional analyses (the risk gate never votes),
// scores the weighted agreement on a 0-100 scale and applies the gate.
func (a *Aggregator) Decide(ctx context.Context, symbol string, analyses []domain.AnalysisResult, risk domain.RiskAssessment, currentPrice, atrPct float64) domain.Decision {
	if a.tracer != nil {
		var span trace.Span
		_, span = a.tracer.Start(ctx, "decision.Decide",
			trace.WithAttributes(attribute.String("symbol", symbol), attribute.Int("analyses", len(analyses))))
		defer span.End()
	}

	directional := make([]domain.AnalysisResult, 0, len(analyses))
	for _, r := range analyses {
		if r.Agent == agent.NameRiskGate {
			continue
		}
		directional = append(directional, r)
	}

	signal, confidence := voteTally(directional)
	score := compositeScore(directional, a.weights)

	override := false
	if risk.Triggered {
		switch signal {
		case domain.SignalBuy:
			signal = domain.SignalHold
			confidence = math.Max(confidence*0.75, 0.35)
			override = true
		default:
			confidence = math.Max(confidence*0.9, 0.3)
		}
	}

	entry, stop, target := priceLevels(currentPrice, atrPct)

	return domain.Decision{
		Symbol:       symbol,
		Signal:       signal,
		Confidence:   confidence,
		Score:        score,
		EntryPrice:   entry,
		StopLoss:     stop,
		TargetPrice:  target,
		PositionSize: risk.MaxPositionSize,
		RiskOverride: override,
		RiskLevel:    risk.Level,
		Rationale:    rationale(directional, signal, score, risk, override),
		Risk:         risk,
		Timestamp:    time.Now().UTC(),
	}
}

func voteTally(directional []domain.AnalysisResult) (domain.Signal, float64) {
	if len(directional) == 0 {
		return domain.SignalHold, 0
	}
	buy, sell, sum := 0, 0, 0.0
	for _, r := range directional {
		switch r.Signal {
		case domain.SignalBuy:
			buy++
		case domain.SignalSell:
			sell++
		}
		sum += r.Confidence
	}
	hold := len(directional) - buy - sell

	signal := domain.SignalHold
	if buy > sell && buy > hold {
		signal = domain.SignalBuy
	} else if sell > buy && sell > hold {
		signal = domain.SignalSell
	}
	return signal, sum / float64(len(directional))
}

// compositeScore maps weighted agreement into [0,100]. Each agent
// contributes weight * clamp(confidence, 0.2, 1) * signed(signal); the sum
// is normalized by the maximum attainable magnitude. No votes scores 50.
func compositeScore(directional []domain.AnalysisResult, weights config.AgentWeights) float64 {
	weightedSum, maxAbs := 0.0, 0.0
	for _, r := range directional {
		weight, ok := weights[r.Agent]
		if !ok {
			weight = 1.0
		}
		conf := clamp(r.Confidence, 0.2, 1.0)
		maxAbs += weight * conf
		weightedSum += weight * conf * signed(r.Signal)
	}
	if maxAbs == 0 {
		return 50
	}
	normalized := clamp(weightedSum/maxAbs, -1, 1)
	return 50 + 50*normalized
}

func signed(s domain.Signal) float64 {
	switch s {
	case domain.SignalBuy:
		return 1
	case domain.SignalSell:
		return -1
	default:
		return 0
	}
}

// priceLevels widens the stop and tightens the target when ATR% runs hot.
func priceLevels(currentPrice, atrPct float64) (entry, stop, target float64) {
	if currentPrice <= 0 {
		return 0, 0, 0
	}
	entry = round2(currentPrice)
	if atrPct < 4.0 {
		stop = round2(currentPrice * 0.95)
		target = round2(currentPrice * 1.10)
	} else {
		stop = round2(currentPrice * 0.97)
		target = round2(currentPrice * 1.06)
	}
	return entry, stop, target
}

func rationale(directional []domain.AnalysisResult, signal domain.Signal, score float64, risk domain.RiskAssessment, override bool) string {
	buy, sell := 0, 0
	for _, r := range directional {
		switch r.Signal {
		case domain.SignalBuy:
			buy++
		case domain.SignalSell:
			sell++
		}
	}
	hold := len(directional) - buy - sell

	var b strings.Builder
	fmt.Fprintf(&b, "votes buy=%d sell=%d hold=%d, composite score %.1f, risk %s", buy, sell, hold, score, risk.Level)
	if override {
		b.WriteString("; risk gate downgraded BUY to HOLD")
	}
	if len(risk.Triggers) > 0 {
		b.WriteString("; triggers: ")
		b.WriteString(strings.Join(risk.Triggers, ", "))
	}
	fmt.Fprintf(&b, "; final %s", signal)
	return b.String()
}

func clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return lo
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
