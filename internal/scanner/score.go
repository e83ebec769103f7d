package scanner

import (
	"regexp"
	"strings"

	"github.com/ZenKaiii/ai-stock-analyst/internal/domain"
)

var scorePositiveKeywords = []string{
	"UPGRADE", "BEAT", "BULLISH", "OUTPERFORM", "BUY", "RECOMMEND",
	"GROWTH", "SURGE", "RALLY", "SOAR", "JUMP", "GAIN", "PROFIT", "RECORD",
	"BREAKTHROUGH", "INNOVATION", "EXPANSION", "PARTNERSHIP", "CONTRACT",
}

var scoreNegativeKeywords = []string{
	"DOWNGRADE", "MISS", "BEARISH", "UNDERPERFORM", "SELL", "CUT", "REDUCE",
	"DECLINE", "CRASH", "PLUNGE", "DROP", "LOSS", "LAWSUIT", "INVESTIGATION",
}

// matchNewsForSymbol keeps headlines that mention the symbol directly or as
// a cashtag, capped at maxItems.
func matchNewsForSymbol(symbol string, pool []domain.NewsItem, maxItems int) []domain.NewsItem {
	upper := strings.ToUpper(symbol)
	direct := regexp.MustCompile(`\b` + regexp.QuoteMeta(upper) + `\b`)
	cashtag := regexp.MustCompile(`\$` + regexp.QuoteMeta(upper) + `\b`)

	var out []domain.NewsItem
	for _, item := range pool {
		title := strings.ToUpper(item.Title)
		if direct.MatchString(title) || cashtag.MatchString(title) {
			out = append(out, item)
		}
		if len(out) >= maxItems {
			break
		}
	}
	return out
}

// newsSentimentScore averages keyword polarity over the matched headlines;
// no coverage reads as neutral 0.5.
func newsSentimentScore(items []domain.NewsItem) float64 {
	if len(items) == 0 {
		return 0.5
	}
	sum := 0.0
	for _, item := range items {
		text := strings.ToUpper(item.Title + " " + item.Summary)
		pos, neg := 0, 0
		for _, kw := range scorePositiveKeywords {
			if strings.Contains(text, kw) {
				pos++
			}
		}
		for _, kw := range scoreNegativeKeywords {
			if strings.Contains(text, kw) {
				neg++
			}
		}
		if pos == 0 && neg == 0 {
			sum += 0.5
		} else {
			sum += float64(pos) / float64(pos+neg)
		}
	}
	return clamp01(sum / float64(len(items)))
}

// sourceQualityScore blends per-source credibility with a diversity bonus.
// Unknown sources weigh 0.6; no coverage scores 0.45.
func sourceQualityScore(items []domain.NewsItem, weights map[string]float64) float64 {
	if len(items) == 0 {
		return 0.45
	}
	unique := make(map[string]bool)
	sum := 0.0
	for _, item := range items {
		source := strings.TrimSpace(item.Source)
		unique[source] = true
		w, ok := weights[source]
		if !ok {
			w = 0.6
		}
		sum += w
	}
	avg := sum / float64(len(items))
	diversity := minf(float64(len(unique))/4, 1.0) * 0.2
	return clamp01(avg*0.8 + diversity)
}

// technicalScore rewards trend, momentum and a healthy RSI band, penalizing
// hot ATR%.
func technicalScore(f *domain.FeatureSnapshot) float64 {
	score := 0.5
	if f.Trend == domain.TrendBullish {
		score += 0.2
	}
	if f.MACDHist > 0 {
		score += 0.15
	}
	if f.RSI14 >= 45 && f.RSI14 <= 68 {
		score += 0.08
	}
	if f.ATRPct > 5 {
		score -= 0.12
	}
	return clamp01(score)
}

// fundamentalScore grades growth, profitability and balance-sheet stress.
func fundamentalScore(f domain.Fundamentals) float64 {
	score := 0.5
	if f.RevenueGrowth > 0.08 {
		score += 0.12
	} else if f.RevenueGrowth < 0 {
		score -= 0.10
	}
	if f.EarningsGrowth > 0.08 {
		score += 0.12
	} else if f.EarningsGrowth < 0 {
		score -= 0.10
	}
	if f.ProfitMargins > 0.12 {
		score += 0.08
	}
	if f.ReturnOnEquity > 0.12 {
		score += 0.08
	}
	if f.DebtToEquity > 200 {
		score -= 0.10
	}
	if f.PERatio > 85 {
		score -= 0.08
	}
	return clamp01(score)
}

// normalizePrefilter maps the practical prefilter score range (about -8 to
// +20) into [0,1] with soft clamping.
func normalizePrefilter(score float64) float64 {
	return clamp01((score + 8) / 28)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func minf(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}
