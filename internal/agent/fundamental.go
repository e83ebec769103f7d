package agent

import (
	"context"
	"fmt"

	"github.com/ZenKaiii/ai-stock-analyst/internal/domain"
	"github.com/ZenKaiii/ai-stock-analyst/internal/llm"
)

// FundamentalAgent weighs valuation against the current tape. The LLM path
// narrates; the rule path keys off PE, trend and daily change only.
type FundamentalAgent struct {
	gen llm.TextGenerator
}

func NewFundamentalAgent(gen llm.TextGenerator) *FundamentalAgent {
	return &FundamentalAgent{gen: gen}
}

func (a *FundamentalAgent) Name() string { return NameFundamental }

func (a *FundamentalAgent) Analyze(ctx context.Context, in *domain.AnalysisContext) domain.AnalysisResult {
	f := features(in)
	pe := safeNum(f.Fundamentals.PERatio, 0)
	changePct := safeNum(f.ChangePercent, 0)

	signal, confidence, rationale := a.generate(ctx, in.Symbol, f, in.News)
	if rationale == "" {
		signal, confidence, rationale = ruleFundamentalSignal(pe, f.Trend, changePct)
	}

	return result(NameFundamental, signal, confidence, rationale,
		map[string]any{
			"pe_ratio":       pe,
			"market_cap":     f.Fundamentals.MarketCap,
			"trend":          string(f.Trend),
			"change_percent": changePct,
		},
		[]string{"financials and valuations lag the tape", "fundamentals can diverge from short-term price"},
	)
}

func (a *FundamentalAgent) generate(ctx context.Context, symbol string, f domain.FeatureSnapshot, news []domain.NewsItem) (domain.Signal, float64, string) {
	if a.gen == nil {
		return domain.SignalHold, 0, ""
	}
	prompt := fmt.Sprintf(
		"Evaluate %s from a fundamental standpoint:\nPE=%.2f market_cap=%.0f trend=%s daily_change=%.2f%%\nRecent headlines: %s\nReply with BUY, SELL or HOLD plus at most three sentences of reasoning.",
		symbol, f.Fundamentals.PERatio, f.Fundamentals.MarketCap, f.Trend, f.ChangePercent, joinedHeadlines(news, 5),
	)
	text, err := a.gen.Generate(ctx, prompt, "You are a prudent fundamental analyst.")
	if err != nil || text == "" {
		return domain.SignalHold, 0, ""
	}
	return signalFromText(text, false), 0.65, text
}

func ruleFundamentalSignal(pe float64, trend domain.Trend, changePct float64) (domain.Signal, float64, string) {
	if pe > 0 && pe < 35 && trend == domain.TrendBullish && changePct > -3 {
		return domain.SignalBuy, 0.6, "rule verdict: valuation acceptable and trend constructive"
	}
	if pe > 80 && changePct < -2 {
		return domain.SignalSell, 0.6, "rule verdict: stretched valuation into price weakness"
	}
	return domain.SignalHold, 0.5, "rule verdict: fundamental evidence inconclusive, staying sidelined"
}
