package agent

import (
	"context"
	"fmt"

	"github.com/ZenKaiii/ai-stock-analyst/internal/domain"
	"github.com/ZenKaiii/ai-stock-analyst/internal/llm"
)

// TechnicalAgent scores the moving-average / momentum posture of the
// instrument. With a text generator attached it asks for a narrated
// verdict; otherwise (or on generator error) it applies the rule table.
type TechnicalAgent struct {
	gen llm.TextGenerator
}

func NewTechnicalAgent(gen llm.TextGenerator) *TechnicalAgent {
	return &TechnicalAgent{gen: gen}
}

func (a *TechnicalAgent) Name() string { return NameTechnical }

func (a *TechnicalAgent) Analyze(ctx context.Context, in *domain.AnalysisContext) domain.AnalysisResult {
	f := features(in)
	rsi14 := safeNum(f.RSI14, 50)
	changePct := safeNum(f.ChangePercent, 0)
	macd := safeNum(f.MACD, 0)
	macdSignal := safeNum(f.MACDSignal, 0)

	signal, confidence, rationale := a.generate(ctx, in.Symbol, f)
	if rationale == "" {
		signal = ruleTechnicalSignal(f.Trend, changePct, rsi14, macd, macdSignal)
		confidence = 0.5
		rationale = fmt.Sprintf("rule verdict: %s (trend=%s rsi=%.1f macd=%.3f/%.3f)", signal, f.Trend, rsi14, macd, macdSignal)
	}

	return result(NameTechnical, signal, confidence, rationale,
		map[string]any{
			"price":          f.CurrentPrice,
			"ma5":            f.MA5,
			"ma20":           f.MA20,
			"trend":          string(f.Trend),
			"change_percent": changePct,
			"rsi14":          rsi14,
			"macd":           macd,
			"macd_signal":    macdSignal,
			"atr_pct":        f.ATRPct,
		},
		[]string{"technical indicators lag price", "single-factor signals can fail"},
	)
}

func (a *TechnicalAgent) generate(ctx context.Context, symbol string, f domain.FeatureSnapshot) (domain.Signal, float64, string) {
	if a.gen == nil {
		return domain.SignalHold, 0, ""
	}
	prompt := fmt.Sprintf(
		"Assess the technical posture of %s:\nprice=%.2f ma5=%.2f ma20=%.2f trend=%s change=%.2f%% rsi14=%.1f macd=%.4f signal=%.4f atr_pct=%.2f%%\nReply with BUY, SELL or HOLD and at most three sentences of reasoning.",
		symbol, f.CurrentPrice, f.MA5, f.MA20, f.Trend, f.ChangePercent, f.RSI14, f.MACD, f.MACDSignal, f.ATRPct,
	)
	text, err := a.gen.Generate(ctx, prompt, "You are a disciplined technical analyst.")
	if err != nil || text == "" {
		return domain.SignalHold, 0, ""
	}
	confidence := 0.5
	if f.Trend != domain.TrendNeutral {
		confidence = 0.7
	}
	return signalFromText(text, false), confidence, text
}

func ruleTechnicalSignal(trend domain.Trend, changePct, rsi14, macd, macdSignal float64) domain.Signal {
	if trend == domain.TrendBullish && macd >= macdSignal && rsi14 < 75 && changePct > -1 {
		return domain.SignalBuy
	}
	if trend == domain.TrendBearish && macd < macdSignal && (rsi14 > 78 || changePct < -2) {
		return domain.SignalSell
	}
	return domain.SignalHold
}
