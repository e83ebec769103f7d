package agent

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/ZenKaiii/ai-stock-analyst/internal/config"
	"github.com/ZenKaiii/ai-stock-analyst/internal/domain"
)

// RiskGate is the last agent in the pipeline. It never argues direction:
// it counts triggers and ladders them into LOW/MEDIUM/HIGH with a position
// cap. The aggregator reads the assessment to override the vote.
type RiskGate struct {
	thresholds    config.RiskThresholds
	eventKeywords []string
	geoWeights    map[string]int
}

func NewRiskGate(thresholds config.RiskThresholds, eventKeywords []string, geoWeights map[string]int) *RiskGate {
	return &RiskGate{
		thresholds:    thresholds,
		eventKeywords: eventKeywords,
		geoWeights:    geoWeights,
	}
}

func (g *RiskGate) Name() string { return NameRiskGate }

// Assess evaluates every trigger and returns the ladder verdict. Pure with
// respect to its inputs; Analyze wraps it for the pipeline.
func (g *RiskGate) Assess(in *domain.AnalysisContext) domain.RiskAssessment {
	f := features(in)
	var triggers []string

	atrPct := safeNum(f.ATRPct, 0)
	vol20 := safeNum(f.Volatility20D, 0)
	change := absf(safeNum(f.ChangePercent, 0))
	quality := safeNum(f.DataQuality, 0)

	if atrPct >= g.thresholds.ATRPct {
		triggers = append(triggers, fmt.Sprintf("elevated ATR volatility (%.2f%%)", atrPct))
	}
	if vol20 >= g.thresholds.Volatility20D {
		triggers = append(triggers, fmt.Sprintf("elevated 20d volatility (%.2f%%)", vol20))
	}
	if change >= g.thresholds.AbsDailyChange {
		triggers = append(triggers, fmt.Sprintf("outsized daily move (%.2f%%)", change))
	}
	if quality < g.thresholds.MinDataQuality {
		triggers = append(triggers, fmt.Sprintf("insufficient data quality (%.2f)", quality))
	}
	if in.HasSocial() {
		if bearish := safeNum(in.Social.BearishPct, 50); bearish >= g.thresholds.SocialBearish {
			triggers = append(triggers, fmt.Sprintf("crowd heavily bearish (%.1f%%)", bearish))
		}
	}

	titles := joinedHeadlines(in.News, 10)
	for _, keyword := range g.eventKeywords {
		if strings.Contains(titles, keyword) {
			triggers = append(triggers, "major event window detected")
			break
		}
	}

	geoScore, geoHits := g.geopoliticalScore(in.News)
	if geoScore >= g.thresholds.GeoScoreTrigger {
		triggers = append(triggers, fmt.Sprintf("geopolitical risk rising (%d)", geoScore))
	}
	if len(geoHits) > 0 {
		triggers = append(triggers, "geopolitical keywords: "+strings.Join(geoHits[:min(len(geoHits), 4)], ", "))
	}

	level := domain.RiskLow
	switch {
	case len(triggers) >= 3:
		level = domain.RiskHigh
	case len(triggers) >= 1:
		level = domain.RiskMedium
	}

	maxPosition := "10%"
	switch level {
	case domain.RiskMedium:
		maxPosition = "5%"
	case domain.RiskHigh:
		maxPosition = "2%"
	}

	return domain.RiskAssessment{
		Level:           level,
		Triggered:       level != domain.RiskLow,
		Triggers:        triggers,
		MaxPositionSize: maxPosition,
	}
}

func (g *RiskGate) Analyze(ctx context.Context, in *domain.AnalysisContext) domain.AnalysisResult {
	assessment := g.Assess(in)

	signal := domain.SignalBuy
	confidence := 0.6
	rationale := "no major risk triggers, normal sizing allowed"
	if assessment.Triggered {
		signal = domain.SignalHold
		confidence = 0.78
		rationale = "risk gate triggered: " + strings.Join(assessment.Triggers, "; ")
	}

	return result(NameRiskGate, signal, confidence, rationale,
		map[string]any{
			"triggered":         assessment.Triggered,
			"risk_level":        string(assessment.Level),
			"triggers":          assessment.Triggers,
			"max_position_size": assessment.MaxPositionSize,
		},
		assessment.Triggers,
	)
}

// geopoliticalScore scans the 20 most recent headlines for weighted terms.
func (g *RiskGate) geopoliticalScore(news []domain.NewsItem) (int, []string) {
	titles := joinedHeadlines(news, 20)
	var hits []string
	score := 0
	for term, weight := range g.geoWeights {
		if strings.Contains(titles, term) {
			hits = append(hits, term)
			score += weight
		}
	}
	sort.Strings(hits)
	return score, hits
}
