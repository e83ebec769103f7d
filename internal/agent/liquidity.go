package agent

import (
	"context"
	"fmt"
	"strings"

	"github.com/ZenKaiii/ai-stock-analyst/internal/domain"
	"github.com/ZenKaiii/ai-stock-analyst/internal/ta"
)

// LiquidityAgent grades executability: average dollar volume, today's
// turnover versus the 20-day norm, realized volatility and opening gaps.
type LiquidityAgent struct{}

func NewLiquidityAgent() *LiquidityAgent { return &LiquidityAgent{} }

func (a *LiquidityAgent) Name() string { return NameLiquidity }

func (a *LiquidityAgent) Analyze(ctx context.Context, in *domain.AnalysisContext) domain.AnalysisResult {
	if !in.HasPriceHistory(25) {
		return result(NameLiquidity, domain.SignalHold, 0.45,
			"insufficient trade history for a liquidity read", nil, []string{"liquidity data missing"})
	}

	bars := in.History
	last := bars[len(bars)-1]
	tail := bars[max(0, len(bars)-20):]

	var sumVol, sumDollar float64
	for _, b := range tail {
		sumVol += b.Volume
		sumDollar += b.Close * b.Volume
	}
	avgVolume20 := sumVol / float64(len(tail))
	avgDollarVolume20 := sumDollar / float64(len(tail))

	turnover := 0.0
	if avgVolume20 > 0 {
		turnover = last.Volume / avgVolume20
	}

	gapPct := 0.0
	if prev := bars[len(bars)-2].Close; prev > 0 {
		gapPct = (last.Open/prev - 1) * 100
	}

	vol20 := safeNum(features(in).Volatility20D, 0)
	if vol20 == 0 {
		closes := make([]float64, len(bars))
		for i, b := range bars {
			closes[i] = b.Close
		}
		vol20 = ta.ReturnVolatility(closes, 20)
	}

	score := 0.0
	var reasons, risks []string
	add := func(delta float64, reason string, risky bool) {
		score += delta
		reasons = append(reasons, reason)
		if risky {
			risks = append(risks, reason)
		}
	}

	switch {
	case avgDollarVolume20 >= 1e9:
		add(1.2, fmt.Sprintf("deep 20d dollar volume ($%.2fB)", avgDollarVolume20/1e9), false)
	case avgDollarVolume20 >= 2e8:
		add(0.6, fmt.Sprintf("moderate 20d dollar volume ($%.0fM)", avgDollarVolume20/1e6), false)
	default:
		add(-1.0, fmt.Sprintf("thin 20d dollar volume ($%.0fM)", avgDollarVolume20/1e6), true)
	}

	if turnover >= 0.8 && turnover <= 2.5 {
		add(0.5, fmt.Sprintf("normal session turnover (%.2fx)", turnover), false)
	} else if turnover > 4.0 || turnover < 0.4 {
		add(-0.5, fmt.Sprintf("abnormal session turnover (%.2fx)", turnover), true)
	}

	if vol20 <= 2.5 {
		add(0.4, fmt.Sprintf("contained 20d volatility (%.2f%%)", vol20), false)
	} else if vol20 >= 4.0 {
		add(-0.6, fmt.Sprintf("high 20d volatility (%.2f%%)", vol20), true)
	}

	if gapPct >= 3.0 || gapPct <= -3.0 {
		add(-0.4, fmt.Sprintf("large opening gap (%.2f%%)", gapPct), false)
	}

	signal := domain.SignalHold
	switch {
	case score >= 1.0:
		signal = domain.SignalBuy
	case score <= -1.0:
		signal = domain.SignalSell
	}

	confidence := 0.45 + absf(score)*0.12
	if confidence > 0.8 {
		confidence = 0.8
	}

	return result(NameLiquidity, signal, confidence, strings.Join(reasons, "; "),
		map[string]any{
			"liquidity_score":      score,
			"current_price":        last.Close,
			"current_volume":       last.Volume,
			"avg_volume_20":        avgVolume20,
			"avg_dollar_volume_20": avgDollarVolume20,
			"turnover_ratio":       turnover,
			"gap_pct":              gapPct,
			"volatility_20d":       vol20,
		},
		risks,
	)
}

func absf(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
