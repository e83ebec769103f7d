package config

// The tables below carry empirically tuned constants. None of them derive
// from structural requirements, so they live here as injectable values
// rather than literals inside the engine.

// AgentWeights maps an agent identifier to its composite-score weight.
// Fundamental conviction counts most, crowd sentiment least.
type AgentWeights map[string]float64

func DefaultAgentWeights() AgentWeights {
	return AgentWeights{
		"technical":   1.0,
		"anomaly":     1.0,
		"fundamental": 1.3,
		"news":        1.0,
		"bull":        1.0,
		"bear":        1.0,
		"macro":       1.0,
		"liquidity":   1.0,
		"social":      0.7,
	}
}

// RiskThresholds holds the risk gate's trigger cutoffs.
type RiskThresholds struct {
	ATRPct          float64
	Volatility20D   float64
	AbsDailyChange  float64
	MinDataQuality  float64
	SocialBearish   float64
	GeoScoreTrigger int
}

func DefaultRiskThresholds() RiskThresholds {
	return RiskThresholds{
		ATRPct:          4.0,
		Volatility20D:   3.0,
		AbsDailyChange:  6.0,
		MinDataQuality:  0.7,
		SocialBearish:   70,
		GeoScoreTrigger: 2,
	}
}

// EventKeywords flag event-calendar windows in recent headlines.
func DefaultEventKeywords() []string {
	return []string{"earnings", "fomc", "cpi", "fed", "rate decision"}
}

// GeoKeywordWeights is the weighted geopolitical term table. Matched terms
// sum into a score that itself becomes a trigger at GeoScoreTrigger.
func DefaultGeoKeywordWeights() map[string]int {
	return map[string]int{
		"trump":               1,
		"tariff":              2,
		"trade war":           2,
		"sanction":            2,
		"middle east":         2,
		"iran":                1,
		"china":               1,
		"taiwan":              2,
		"ukraine":             2,
		"russia":              1,
		"geopolitical":        2,
		"shipping disruption": 2,
	}
}

// ScannerWeights holds the composite coefficients of the scan scorer and
// the prefilter momentum funnel.
type ScannerWeights struct {
	Technical     float64
	Fundamental   float64
	NewsSentiment float64
	Prefilter     float64
	SourceQuality float64
	ATRPenalty    float64
	ATRPenaltyAt  float64
	BuyThreshold  float64

	PrefilterRet20     float64
	PrefilterRet5      float64
	PrefilterDollarVol float64
	PrefilterVolPivot  float64
	PrefilterVolSlope  float64
}

func DefaultScannerWeights() ScannerWeights {
	return ScannerWeights{
		Technical:     0.33,
		Fundamental:   0.22,
		NewsSentiment: 0.18,
		Prefilter:     0.17,
		SourceQuality: 0.10,
		ATRPenalty:    0.08,
		ATRPenaltyAt:  6.0,
		BuyThreshold:  0.72,

		PrefilterRet20:     0.55,
		PrefilterRet5:      0.25,
		PrefilterDollarVol: 0.20,
		PrefilterVolPivot:  4.5,
		PrefilterVolSlope:  0.6,
	}
}

// SourceQualityWeights maps a news source to its credibility weight;
// unknown sources score 0.6.
func DefaultSourceQualityWeights() map[string]float64 {
	return map[string]float64{
		"WSJ":                             0.95,
		"CNBC":                            0.85,
		"MarketWatch":                     0.80,
		"Seeking Alpha":                   0.78,
		"Yahoo Finance":                   0.72,
		"New York Times Business":         0.88,
		"New York Times Economy":          0.88,
		"SEC Press Releases":              0.96,
		"Federal Reserve":                 0.96,
		"Federal Reserve Monetary Policy": 0.96,
		"CFTC Press Releases":             0.95,
		"Investing.com Markets":           0.65,
		"News Minimalist":                 0.68,
	}
}
