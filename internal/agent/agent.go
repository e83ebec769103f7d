package agent

import (
	"context"
	"math"
	"strings"

	"github.com/ZenKaiii/ai-stock-analyst/internal/domain"
)

// Agent identifiers, used for pipeline ordering and composite weights.
const (
	NameTechnical   = "technical"
	NameAnomaly     = "anomaly"
	NameFundamental = "fundamental"
	NameNews        = "news"
	NameBull        = "bull"
	NameBear        = "bear"
	NameSocial      = "social"
	NameMacro       = "macro"
	NameLiquidity   = "liquidity"
	NameRiskGate    = "risk"
)

// Agent is a stateless scorer mapping a shared context to one verdict.
// Analyze never fails outward: malformed or missing inputs coerce to
// neutral defaults and the result's confidence is always inside [0,1].
type Agent interface {
	Name() string
	Analyze(ctx context.Context, in *domain.AnalysisContext) domain.AnalysisResult
}

func clampConfidence(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// signalFromText extracts a crude BUY/SELL/HOLD verdict from generated
// text. sellFirst flips the precedence for agents arguing the short side.
func signalFromText(text string, sellFirst bool) domain.Signal {
	upper := strings.ToUpper(text)
	hasBuy := strings.Contains(upper, "BUY")
	hasSell := strings.Contains(upper, "SELL")
	if sellFirst {
		if hasSell {
			return domain.SignalSell
		}
		if hasBuy {
			return domain.SignalBuy
		}
		return domain.SignalHold
	}
	if hasBuy {
		return domain.SignalBuy
	}
	if hasSell {
		return domain.SignalSell
	}
	return domain.SignalHold
}

// features returns the snapshot or a neutral stand-in so field reads never
// need nil checks.
func features(in *domain.AnalysisContext) domain.FeatureSnapshot {
	if in == nil || in.Features == nil {
		return domain.FeatureSnapshot{Trend: domain.TrendNeutral, RSI14: 50}
	}
	return *in.Features
}

func safeNum(v float64, fallback float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return fallback
	}
	return v
}

func joinedHeadlines(items []domain.NewsItem, limit int) string {
	if limit > len(items) {
		limit = len(items)
	}
	var b strings.Builder
	for _, item := range items[:limit] {
		b.WriteString(strings.ToLower(item.Title))
		b.WriteString(" ")
	}
	return b.String()
}

func result(name string, signal domain.Signal, confidence float64, rationale string, indicators map[string]any, risks []string) domain.AnalysisResult {
	if !signal.IsValid() {
		signal = domain.SignalHold
	}
	return domain.AnalysisResult{
		Agent:      name,
		Signal:     signal,
		Confidence: clampConfidence(confidence),
		Rationale:  rationale,
		Indicators: indicators,
		Risks:      risks,
	}
}
