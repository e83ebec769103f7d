package agent

import (
	"context"
	"fmt"
	"strings"

	"github.com/ZenKaiii/ai-stock-analyst/internal/domain"
	"github.com/ZenKaiii/ai-stock-analyst/internal/llm"
)

var (
	newsPositiveWords = []string{"beat", "growth", "surge", "rally", "upgrade"}
	newsNegativeWords = []string{"miss", "decline", "crash", "downgrade", "lawsuit"}
)

// NewsAgent reads the attached headlines for sentiment. With a generator it
// narrates and derives confidence from how one-sided the response reads;
// otherwise it counts sentiment keywords across the headlines.
type NewsAgent struct {
	gen llm.TextGenerator
}

func NewNewsAgent(gen llm.TextGenerator) *NewsAgent { return &NewsAgent{gen: gen} }

func (a *NewsAgent) Name() string { return NameNews }

func (a *NewsAgent) Analyze(ctx context.Context, in *domain.AnalysisContext) domain.AnalysisResult {
	if !in.HasNews() {
		return result(NameNews, domain.SignalHold, 0.5, "no relevant headlines",
			map[string]any{"news_count": 0}, []string{"no news coverage"})
	}

	signal, confidence, rationale := a.generate(ctx, in.Symbol, in.News)
	if rationale == "" {
		signal = keywordSignal(joinedHeadlines(in.News, len(in.News)))
		confidence = 0.5
		rationale = fmt.Sprintf("keyword verdict: %s", signal)
	}

	return result(NameNews, signal, confidence, rationale,
		map[string]any{"news_count": len(in.News)},
		[]string{"headlines lag events", "sentiment can turn quickly"},
	)
}

func (a *NewsAgent) generate(ctx context.Context, symbol string, news []domain.NewsItem) (domain.Signal, float64, string) {
	if a.gen == nil {
		return domain.SignalHold, 0, ""
	}
	var b strings.Builder
	for _, item := range news[:min(len(news), 10)] {
		fmt.Fprintf(&b, "- [%s] %s\n", item.Source, item.Title)
	}
	prompt := fmt.Sprintf(
		"Assess market sentiment for %s from these headlines:\n%s\nName the overall tone, any catalysts, and finish with BUY, SELL or HOLD.",
		symbol, b.String(),
	)
	text, err := a.gen.Generate(ctx, prompt, "You are a financial news analyst.")
	if err != nil || text == "" {
		return domain.SignalHold, 0, ""
	}
	sentiment := responseSentiment(text)
	confidence := (sentiment - 0.5) * 2
	if confidence < 0 {
		confidence = -confidence
	}
	return signalFromText(text, false), confidence, text
}

// responseSentiment maps generated text to 0.3 / 0.5 / 0.7 by counting
// sentiment keywords.
func responseSentiment(text string) float64 {
	lower := strings.ToLower(text)
	pos, neg := 0, 0
	for _, w := range newsPositiveWords {
		if strings.Contains(lower, w) {
			pos++
		}
	}
	for _, w := range newsNegativeWords {
		if strings.Contains(lower, w) {
			neg++
		}
	}
	switch {
	case pos > neg:
		return 0.7
	case neg > pos:
		return 0.3
	default:
		return 0.5
	}
}

func keywordSignal(text string) domain.Signal {
	pos, neg := 0, 0
	for _, w := range newsPositiveWords {
		if strings.Contains(text, w) {
			pos++
		}
	}
	for _, w := range newsNegativeWords {
		if strings.Contains(text, w) {
			neg++
		}
	}
	switch {
	case pos > neg:
		return domain.SignalBuy
	case neg > pos:
		return domain.SignalSell
	default:
		return domain.SignalHold
	}
}
