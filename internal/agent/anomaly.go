package agent

import (
	"context"
	"fmt"
	"strings"

	"github.com/ZenKaiii/ai-stock-analyst/internal/domain"
	"github.com/ZenKaiii/ai-stock-analyst/internal/ta"

	"github.com/narumiruna/go-iforest/pkg/iforest"
)

const anomalyZThreshold = 3.0

// AnomalyAgent detects statistical outliers in the recent history: volume
// spikes, abnormal daily returns and opening gaps, backed by an isolation
// forest over (return, volume) observations.
type AnomalyAgent struct{}

func NewAnomalyAgent() *AnomalyAgent { return &AnomalyAgent{} }

func (a *AnomalyAgent) Name() string { return NameAnomaly }

func (a *AnomalyAgent) Analyze(ctx context.Context, in *domain.AnalysisContext) domain.AnalysisResult {
	if !in.HasPriceHistory(20) {
		return result(NameAnomaly, domain.SignalHold, 0,
			"insufficient history for outlier detection", nil, nil)
	}

	bars := in.History
	closes := make([]float64, len(bars))
	volumes := make([]float64, len(bars))
	for i, b := range bars {
		closes[i] = b.Close
		volumes[i] = b.Volume
	}
	returns := ta.Returns(closes)

	var anomalies []string
	indicators := map[string]any{}
	riskScore := 0

	volumeZ := ta.ZScore(volumes)
	indicators["volume_z_score"] = volumeZ
	if volumeZ > anomalyZThreshold {
		anomalies = append(anomalies, fmt.Sprintf("volume spike (z=%.2f), likely news-driven", volumeZ))
		riskScore++
	} else if volumeZ < -2.0 {
		anomalies = append(anomalies, "volume dried up, attention fading")
	}

	priceZ := ta.ZScore(returns)
	indicators["price_z_score"] = priceZ
	if priceZ > anomalyZThreshold || priceZ < -anomalyZThreshold {
		direction := "surge"
		if priceZ < 0 {
			direction = "plunge"
		}
		anomalies = append(anomalies, fmt.Sprintf("abnormal daily %s (z=%.2f)", direction, priceZ))
		riskScore += 2
	}

	prevClose := bars[len(bars)-2].Close
	if prevClose > 0 {
		gapPct := (bars[len(bars)-1].Open/prevClose - 1) * 100
		indicators["gap_percent"] = gapPct
		if gapPct > 2.0 {
			anomalies = append(anomalies, fmt.Sprintf("gap up +%.2f%%", gapPct))
		} else if gapPct < -2.0 {
			anomalies = append(anomalies, fmt.Sprintf("gap down %.2f%%", gapPct))
			riskScore++
		}
	}

	if score, ok := isolationScore(returns, volumes); ok {
		indicators["iforest_score"] = score
		if score >= 0.65 {
			anomalies = append(anomalies, fmt.Sprintf("isolation-forest outlier (score=%.2f)", score))
		}
	}

	if len(anomalies) == 0 {
		return result(NameAnomaly, domain.SignalHold, 0.5,
			"no notable market anomalies, price action looks orderly", indicators, nil)
	}

	lastReturn := returns[len(returns)-1]
	rationale := "detected market anomalies: " + strings.Join(anomalies, "; ")
	signal := domain.SignalHold
	confidence := 0.5
	if riskScore > 0 {
		switch {
		case lastReturn > 0 && volumeZ > anomalyZThreshold:
			signal = domain.SignalBuy
			confidence = 0.7
			rationale += "; rising on heavy volume, momentum is strong"
		case lastReturn < -0.03:
			signal = domain.SignalSell
			confidence = 0.6
			rationale += "; drawdown too steep, de-risking advised"
		}
	}

	var risks []string
	if riskScore > 0 {
		risks = anomalies
	}
	return result(NameAnomaly, signal, confidence, rationale, indicators, risks)
}

// isolationScore fits an isolation forest over (return, volume) pairs and
// scores the latest observation. Needs at least 20 pairs.
func isolationScore(returns, volumes []float64) (float64, bool) {
	n := len(returns)
	if n < 20 || len(volumes) < n+1 {
		return 0, false
	}
	samples := make([][]float64, n)
	for i := 0; i < n; i++ {
		samples[i] = []float64{returns[i], volumes[i+1]}
	}
	forest := iforest.New()
	forest.Fit(samples)
	scores := forest.Score(samples)
	if len(scores) != n {
		return 0, false
	}
	return scores[n-1], true
}
