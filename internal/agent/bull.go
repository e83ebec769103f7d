package agent

import (
	"context"
	"fmt"

	"github.com/ZenKaiii/ai-stock-analyst/internal/domain"
	"github.com/ZenKaiii/ai-stock-analyst/internal/llm"
)

// BullAgent argues the long side: trend plus momentum plus crowd optimism.
type BullAgent struct {
	gen llm.TextGenerator
}

func NewBullAgent(gen llm.TextGenerator) *BullAgent { return &BullAgent{gen: gen} }

func (a *BullAgent) Name() string { return NameBull }

func (a *BullAgent) Analyze(ctx context.Context, in *domain.AnalysisContext) domain.AnalysisResult {
	f := features(in)
	rsi14 := safeNum(f.RSI14, 50)
	macdHist := safeNum(f.MACDHist, 0)
	bullishPct := 50.0
	if in.HasSocial() {
		bullishPct = safeNum(in.Social.BullishPct, 50)
	}

	signal, confidence, rationale := a.generate(ctx, in.Symbol, f, bullishPct, in.News)
	if rationale == "" {
		if f.Trend == domain.TrendBullish && macdHist > 0 && bullishPct >= 55 && rsi14 < 75 {
			signal, confidence = domain.SignalBuy, 0.6
			rationale = "rule verdict: trend and momentum aligned with bullish crowd sentiment"
		} else {
			signal, confidence = domain.SignalHold, 0.5
			rationale = "rule verdict: long case lacks evidence, not chasing"
		}
	}

	return result(NameBull, signal, confidence, rationale,
		map[string]any{
			"rsi14":       rsi14,
			"macd_hist":   macdHist,
			"trend":       string(f.Trend),
			"bullish_pct": bullishPct,
		},
		[]string{"long-side arguments can ignore tail risk"},
	)
}

func (a *BullAgent) generate(ctx context.Context, symbol string, f domain.FeatureSnapshot, bullishPct float64, news []domain.NewsItem) (domain.Signal, float64, string) {
	if a.gen == nil {
		return domain.SignalHold, 0, ""
	}
	prompt := fmt.Sprintf(
		"As a bull researcher, make the strongest long case for %s:\nrsi14=%.1f macd_hist=%.4f trend=%s social_bullish=%.1f%%\nHeadlines: %s\nReply with BUY, SELL or HOLD plus at most three sentences.",
		symbol, f.RSI14, f.MACDHist, f.Trend, bullishPct, joinedHeadlines(news, 6),
	)
	text, err := a.gen.Generate(ctx, prompt, "You are a bull researcher focused on upside catalysts.")
	if err != nil || text == "" {
		return domain.SignalHold, 0, ""
	}
	return signalFromText(text, false), 0.62, text
}
