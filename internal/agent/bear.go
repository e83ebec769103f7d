package agent

import (
	"context"
	"fmt"

	"github.com/ZenKaiii/ai-stock-analyst/internal/domain"
	"github.com/ZenKaiii/ai-stock-analyst/internal/llm"
)

// BearAgent argues the short side: overheating, volatility and crowd fear.
// Signal extraction favors SELL when generated text mentions both sides.
type BearAgent struct {
	gen llm.TextGenerator
}

func NewBearAgent(gen llm.TextGenerator) *BearAgent { return &BearAgent{gen: gen} }

func (a *BearAgent) Name() string { return NameBear }

func (a *BearAgent) Analyze(ctx context.Context, in *domain.AnalysisContext) domain.AnalysisResult {
	f := features(in)
	rsi14 := safeNum(f.RSI14, 50)
	atrPct := safeNum(f.ATRPct, 0)
	changePct := safeNum(f.ChangePercent, 0)
	bearishPct := 50.0
	if in.HasSocial() {
		bearishPct = safeNum(in.Social.BearishPct, 50)
	}

	signal, confidence, rationale := a.generate(ctx, in.Symbol, f, bearishPct, in.News)
	if rationale == "" {
		if (rsi14 > 78 && changePct > 4) || (atrPct > 4 && bearishPct >= 55) {
			signal, confidence = domain.SignalSell, 0.62
			rationale = "rule verdict: volatility and sentiment point to drawdown risk"
		} else {
			signal, confidence = domain.SignalHold, 0.5
			rationale = "rule verdict: short case lacks evidence, staying neutral"
		}
	}

	return result(NameBear, signal, confidence, rationale,
		map[string]any{
			"rsi14":          rsi14,
			"atr_pct":        atrPct,
			"change_percent": changePct,
			"bearish_pct":    bearishPct,
		},
		[]string{"short-side arguments can miss the rebound"},
	)
}

func (a *BearAgent) generate(ctx context.Context, symbol string, f domain.FeatureSnapshot, bearishPct float64, news []domain.NewsItem) (domain.Signal, float64, string) {
	if a.gen == nil {
		return domain.SignalHold, 0, ""
	}
	prompt := fmt.Sprintf(
		"As a bear researcher, make the strongest short case for %s:\nrsi14=%.1f atr_pct=%.2f%% change=%.2f%% social_bearish=%.1f%%\nHeadlines: %s\nReply with BUY, SELL or HOLD plus at most three sentences.",
		symbol, f.RSI14, f.ATRPct, f.ChangePercent, bearishPct, joinedHeadlines(news, 6),
	)
	text, err := a.gen.Generate(ctx, prompt, "You are a bear researcher focused on downside and drawdown risk.")
	if err != nil || text == "" {
		return domain.SignalHold, 0, ""
	}
	return signalFromText(text, true), 0.62, text
}
