// Package newsintel mines raw headlines for per-symbol trade signals. It is
// the scanner's fallback path when the price funnel yields nothing, and
// feeds evidence lines into candidate reports.
package newsintel

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/ZenKaiii/ai-stock-analyst/internal/domain"
)

var positiveKeywords = []string{
	"upgrade", "beat", "bullish", "outperform", "buy", "recommend",
	"growth", "surge", "rally", "soar", "jump", "gain", "profit", "record",
	"breakthrough", "innovation", "expansion", "partnership", "contract",
}

var negativeKeywords = []string{
	"downgrade", "miss", "bearish", "underperform", "sell", "cut", "reduce",
	"decline", "crash", "plunge", "drop", "loss", "lawsuit", "investigation",
}

var cashtagPattern = regexp.MustCompile(`\$([A-Z]{1,5})\b`)

// SymbolSignal is the per-symbol aggregate mined from headlines.
type SymbolSignal struct {
	Symbol        string
	Signal        domain.Signal
	AvgSentiment  float64
	BullishScore  float64
	Composite     float64
	NewsCount     int
	Sources       []string
	Items         []domain.NewsItem
	CompanyName   string
	Sector        string
	Industry      string
	BriefAnalysis string
	RecommendNote string
	EvidenceNews  []string
}

// Extractor matches headlines against a known-ticker set via word-boundary
// and cashtag patterns, then scores sentiment per symbol.
type Extractor struct {
	tracer   trace.Tracer
	patterns map[string]*regexp.Regexp
}

// NewExtractor compiles one boundary pattern per known ticker. The default
// set covers large-cap US names; callers may pass their own.
func NewExtractor(tracer trace.Tracer, tickers []string) *Extractor {
	if len(tickers) == 0 {
		tickers = KnownTickers()
	}
	patterns := make(map[string]*regexp.Regexp, len(tickers))
	for _, t := range tickers {
		patterns[t] = regexp.MustCompile(`\b` + regexp.QuoteMeta(t) + `\b`)
	}
	return &Extractor{tracer: tracer, patterns: patterns}
}

// Extract mines per-symbol signals from the headline list. Sentiment is the
// positive-hit ratio per headline (0.5 with no hits); bullish_score scales
// average sentiment by coverage, capped at five headlines of credit.
func (e *Extractor) Extract(ctx context.Context, news []domain.NewsItem) map[string]*SymbolSignal {
	if e.tracer != nil {
		var span trace.Span
		_, span = e.tracer.Start(ctx, "newsintel.extract",
			trace.WithAttributes(attribute.Int("headlines", len(news))))
		defer span.End()
	}

	signals := make(map[string]*SymbolSignal)
	sentiments := make(map[string][]float64)

	for _, item := range news {
		upper := strings.ToUpper(item.Title)
		sentiment := headlineSentiment(upper)

		found := make(map[string]bool)
		for ticker, pattern := range e.patterns {
			if pattern.MatchString(upper) {
				found[ticker] = true
			}
		}
		for _, m := range cashtagPattern.FindAllStringSubmatch(upper, -1) {
			if _, known := e.patterns[m[1]]; known {
				found[m[1]] = true
			}
		}

		for ticker := range found {
			s, ok := signals[ticker]
			if !ok {
				s = &SymbolSignal{Symbol: ticker, Signal: domain.SignalHold}
				signals[ticker] = s
			}
			sentiments[ticker] = append(sentiments[ticker], sentiment)
			s.NewsCount++
			s.Sources = append(s.Sources, item.Source)
			s.Items = append(s.Items, item)
		}
	}

	for ticker, s := range signals {
		avg := 0.5
		if scores := sentiments[ticker]; len(scores) > 0 {
			sum := 0.0
			for _, v := range scores {
				sum += v
			}
			avg = sum / float64(len(scores))
		}
		s.AvgSentiment = avg
		s.BullishScore = avg * (1 + float64(min(s.NewsCount, 5))*0.1)
		switch {
		case avg > 0.6:
			s.Signal = domain.SignalBuy
		case avg < 0.4:
			s.Signal = domain.SignalSell
		}
	}
	return signals
}

// headlineSentiment is positive hits over total hits, 0.5 when nothing
// matches.
func headlineSentiment(upperTitle string) float64 {
	pos, neg := 0, 0
	for _, kw := range positiveKeywords {
		if strings.Contains(upperTitle, strings.ToUpper(kw)) {
			pos++
		}
	}
	for _, kw := range negativeKeywords {
		if strings.Contains(upperTitle, strings.ToUpper(kw)) {
			neg++
		}
	}
	if pos == 0 && neg == 0 {
		return 0.5
	}
	return float64(pos) / float64(pos+neg)
}

// FeatureLookup fetches a price snapshot for enrichment; an error excludes
// the symbol's technical contribution, never the symbol itself.
type FeatureLookup func(ctx context.Context, symbol string) (*domain.FeatureSnapshot, error)

// Enrich blends each candidate's news score with a momentum proxy and
// source diversity, penalizing high ATR%. Only the twelve most-covered
// symbols get a snapshot fetch; the rest keep their bullish score.
func (e *Extractor) Enrich(ctx context.Context, signals map[string]*SymbolSignal, lookup FeatureLookup) {
	candidates := make([]*SymbolSignal, 0, len(signals))
	for _, s := range signals {
		candidates = append(candidates, s)
	}
	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].NewsCount != candidates[j].NewsCount {
			return candidates[i].NewsCount > candidates[j].NewsCount
		}
		return candidates[i].Symbol < candidates[j].Symbol
	})
	if len(candidates) > 12 {
		candidates = candidates[:12]
	}

	for _, s := range candidates {
		var f *domain.FeatureSnapshot
		var err error
		if lookup != nil {
			f, err = lookup(ctx, s.Symbol)
		}
		if lookup == nil || err != nil || f == nil {
			s.Composite = maxf(s.BullishScore*0.6, 0)
			s.BriefAnalysis = "market data unavailable, judged on news sentiment alone"
			s.RecommendNote = "news-side evidence only, size with caution"
			s.EvidenceNews = summarizeEvidence(s.Items, 2)
			continue
		}

		momentum := 0.5
		if f.Trend == domain.TrendBullish {
			momentum += 0.2
		}
		if f.MACDHist > 0 {
			momentum += 0.15
		}
		if f.RSI14 >= 45 && f.RSI14 <= 70 {
			momentum += 0.1
		}
		if f.ATRPct > 4 {
			momentum -= 0.15
		}

		diversity := minf(float64(uniqueCount(s.Sources))/4, 1.0)
		penalty := 0.0
		if f.ATRPct > 4 {
			penalty = 0.15
		}

		s.CompanyName = f.Name
		s.Sector = f.Sector
		s.Industry = f.Industry
		s.Composite = maxf(s.BullishScore*0.55+momentum*0.30+diversity*0.15-penalty, 0)
		s.EvidenceNews = summarizeEvidence(s.Items, 3)
		s.BriefAnalysis = fmt.Sprintf("trend %s, RSI14=%.1f, MACD hist=%.3f, ATR%%=%.2f",
			f.Trend, f.RSI14, f.MACDHist, f.ATRPct)
		switch {
		case s.Composite >= 0.75:
			s.RecommendNote = "news heat, technical momentum and risk control all aligned"
		case s.Composite >= 0.62:
			s.RecommendNote = "mildly constructive but uncertain, scale in small"
		default:
			s.RecommendNote = "evidence thin or volatility high, watch for a clearer catalyst"
		}
	}

	for _, s := range signals {
		if s.Composite == 0 && s.BriefAnalysis == "" {
			s.Composite = s.BullishScore
		}
		if len(s.EvidenceNews) == 0 {
			s.EvidenceNews = summarizeEvidence(s.Items, 2)
		}
		if s.BriefAnalysis == "" {
			s.BriefAnalysis = "small sample, lacks technical confirmation"
		}
		if s.RecommendNote == "" {
			s.RecommendNote = "insufficient news evidence, keep watching"
		}
	}
}

// Ranked returns the signals ordered by composite score descending.
func Ranked(signals map[string]*SymbolSignal) []*SymbolSignal {
	out := make([]*SymbolSignal, 0, len(signals))
	for _, s := range signals {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Composite != out[j].Composite {
			return out[i].Composite > out[j].Composite
		}
		return out[i].Symbol < out[j].Symbol
	})
	return out
}

func summarizeEvidence(items []domain.NewsItem, limit int) []string {
	if limit > len(items) {
		limit = len(items)
	}
	out := make([]string, 0, limit)
	for _, item := range items[:limit] {
		title := item.Title
		if len(title) > 120 {
			title = title[:120]
		}
		out = append(out, fmt.Sprintf("[%s] %s (%s)", item.Source, title, inferImpact(item)))
	}
	return out
}

func inferImpact(item domain.NewsItem) string {
	text := strings.ToLower(item.Title + " " + item.Summary)
	switch {
	case containsAny(text, "beat", "upgrade", "record", "growth", "partnership"):
		return "constructive, usually maps to earnings or order momentum"
	case containsAny(text, "downgrade", "miss", "lawsuit", "tariff", "sanction"):
		return "negative, may pressure margins or valuation"
	case containsAny(text, "earnings", "guidance"):
		return "event-driven, direction depends on the report details"
	default:
		return "neutral, confirm with price and volume"
	}
}

func containsAny(text string, keywords ...string) bool {
	for _, k := range keywords {
		if strings.Contains(text, k) {
			return true
		}
	}
	return false
}

func uniqueCount(values []string) int {
	seen := make(map[string]bool, len(values))
	for _, v := range values {
		seen[v] = true
	}
	return len(seen)
}

func minf(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}

func maxf(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}
