package ta

import (
	"github.com/ZenKaiii/ai-stock-analyst/internal/domain"
)

// BuildFeatures derives the technical and risk feature set from daily bars.
// An empty history yields the neutral snapshot (trend NEUTRAL, RSI 50,
// data quality 0) rather than an error.
func BuildFeatures(symbol string, bars []domain.Bar) domain.FeatureSnapshot {
	snap := domain.FeatureSnapshot{
		Symbol: symbol,
		Trend:  domain.TrendNeutral,
		RSI14:  50,
	}
	if len(bars) == 0 {
		return snap
	}

	closes := make([]float64, len(bars))
	highs := make([]float64, len(bars))
	lows := make([]float64, len(bars))
	for i, b := range bars {
		closes[i] = b.Close
		highs[i] = b.High
		lows[i] = b.Low
	}

	snap.CurrentPrice = closes[len(closes)-1]
	if len(closes) >= 2 {
		snap.PreviousClose = closes[len(closes)-2]
		if snap.PreviousClose != 0 {
			snap.ChangePercent = (snap.CurrentPrice/snap.PreviousClose - 1) * 100
		}
	}

	snap.MA5 = SMA(closes, 5)
	snap.MA20 = SMA(closes, 20)
	if snap.MA5 > snap.MA20 {
		snap.Trend = domain.TrendBullish
	} else if snap.MA5 < snap.MA20 {
		snap.Trend = domain.TrendBearish
	}

	snap.RSI14 = RSI(closes, 14)
	snap.MACD, snap.MACDSignal, snap.MACDHist = MACD(closes)
	snap.ATR14 = ATR(highs, lows, closes, 14)
	if snap.CurrentPrice > 0 {
		snap.ATRPct = snap.ATR14 / snap.CurrentPrice * 100
	}
	snap.Volatility20D = ReturnVolatility(closes, 20)

	// Quality blends field completeness with history depth, mirroring the
	// freshness weighting the risk gate expects.
	completeness := 1.0
	for _, b := range bars {
		if b.Close == 0 {
			completeness = 0.8
			break
		}
	}
	freshness := 1.0
	if len(bars) < 20 {
		freshness = float64(len(bars)) / 20
	}
	snap.DataQuality = completeness*0.6 + freshness*0.4

	return snap
}
