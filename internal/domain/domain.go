package domain

import "time"

// Signal is the directional verdict an agent or decision carries.
type Signal string

const (
	SignalBuy  Signal = "BUY"
	SignalSell Signal = "SELL"
	SignalHold Signal = "HOLD"
)

func (s Signal) IsValid() bool {
	return s == SignalBuy || s == SignalSell || s == SignalHold
}

// Trend labels the moving-average posture of a price series.
type Trend string

const (
	TrendBullish Trend = "BULLISH"
	TrendBearish Trend = "BEARISH"
	TrendNeutral Trend = "NEUTRAL"
)

// RiskLevel is the risk gate's three-step ladder.
type RiskLevel string

const (
	RiskLow    RiskLevel = "LOW"
	RiskMedium RiskLevel = "MEDIUM"
	RiskHigh   RiskLevel = "HIGH"
)

// AnalysisResult is one agent's verdict for one instrument. Results are
// immutable after construction and discarded once aggregated.
type AnalysisResult struct {
	Agent      string         `json:"agent"`
	Signal     Signal         `json:"signal"`
	Confidence float64        `json:"confidence"`
	Rationale  string         `json:"rationale"`
	Indicators map[string]any `json:"indicators,omitempty"`
	Risks      []string       `json:"risks,omitempty"`
}

// RiskAssessment is the risk gate's payload consumed by the aggregator.
type RiskAssessment struct {
	Level           RiskLevel `json:"risk_level"`
	Triggered       bool      `json:"triggered"`
	Triggers        []string  `json:"triggers"`
	MaxPositionSize string    `json:"max_position_size"`
}

// Decision is the aggregated per-instrument output of the engine.
type Decision struct {
	Symbol       string         `json:"symbol"`
	Signal       Signal         `json:"signal"`
	Confidence   float64        `json:"confidence"`
	Score        float64        `json:"score"`
	EntryPrice   float64        `json:"entry_price"`
	StopLoss     float64        `json:"stop_loss"`
	TargetPrice  float64        `json:"target_price"`
	PositionSize string         `json:"position_size"`
	RiskOverride bool           `json:"risk_override"`
	RiskLevel    RiskLevel      `json:"risk_level"`
	Rationale    string         `json:"rationale"`
	Risk         RiskAssessment `json:"risk_assessment"`
	Timestamp    time.Time      `json:"timestamp"`
}

// AnalysisReport bundles the decision with each agent's verdict for
// persistence and notification rendering.
type AnalysisReport struct {
	Symbol    string           `json:"symbol"`
	Decision  Decision         `json:"decision"`
	Analyses  []AnalysisResult `json:"analyses"`
	News      []NewsItem       `json:"news,omitempty"`
	Timestamp time.Time        `json:"timestamp"`
}
