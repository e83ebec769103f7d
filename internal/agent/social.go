package agent

import (
	"context"
	"fmt"

	"github.com/ZenKaiii/ai-stock-analyst/internal/domain"
)

// SocialAgent maps the crowd sentiment aggregate straight to a verdict.
// Confidence scales with how lopsided the crowd is, capped at 0.9.
type SocialAgent struct{}

func NewSocialAgent() *SocialAgent { return &SocialAgent{} }

func (a *SocialAgent) Name() string { return NameSocial }

func (a *SocialAgent) Analyze(ctx context.Context, in *domain.AnalysisContext) domain.AnalysisResult {
	if !in.HasSocial() {
		return result(NameSocial, domain.SignalHold, 0.5, "no social sentiment data",
			map[string]any{"total": 0}, []string{"no crowd coverage"})
	}

	bullish := safeNum(in.Social.BullishPct, 50)
	bearish := safeNum(in.Social.BearishPct, 50)

	signal := domain.SignalHold
	confidence := 0.5
	switch {
	case bullish > 60:
		signal = domain.SignalBuy
		confidence = (bullish-50)/100 + 0.5
	case bearish > 60:
		signal = domain.SignalSell
		confidence = (bearish-50)/100 + 0.5
	}
	if confidence > 0.9 {
		confidence = 0.9
	}

	rationale := fmt.Sprintf("crowd sentiment: %.1f%% bullish, %.1f%% bearish over %d posts -> %s",
		bullish, bearish, in.Social.Total, signal)

	return result(NameSocial, signal, confidence, rationale,
		map[string]any{
			"bullish_pct": bullish,
			"bearish_pct": bearish,
			"total":       in.Social.Total,
		},
		[]string{"crowd sentiment can be manipulated", "retail mood reverses fast"},
	)
}
