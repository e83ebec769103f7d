package agent

import (
	"context"
	"fmt"
	"strings"

	"github.com/ZenKaiii/ai-stock-analyst/internal/domain"
)

var (
	macroRiskKeywords = []string{
		"trump", "tariff", "sanction", "trade war", "geopolitical", "middle east",
		"ukraine", "russia", "taiwan", "shipping disruption", "hawkish", "hot inflation",
	}
	macroPositiveKeywords = []string{
		"cooling inflation", "rate cut", "fed pause", "soft landing", "stimulus",
	}
)

// MacroAgent scores the index-level regime: QQQ posture, the VIX ladder and
// macro keywords in recent headlines. Score >= +2 leans BUY, <= -2 SELL.
type MacroAgent struct{}

func NewMacroAgent() *MacroAgent { return &MacroAgent{} }

func (a *MacroAgent) Name() string { return NameMacro }

func (a *MacroAgent) Analyze(ctx context.Context, in *domain.AnalysisContext) domain.AnalysisResult {
	f := features(in)
	mc := f.Market

	score := 0
	var reasons []string

	switch mc.QQQRisk {
	case domain.RiskLow:
		score++
		reasons = append(reasons, fmt.Sprintf("index risk low (5d %.2f%%)", mc.QQQRet5D))
	case domain.RiskMedium:
		score--
		reasons = append(reasons, fmt.Sprintf("index risk elevated (5d %.2f%%)", mc.QQQRet5D))
	case domain.RiskHigh:
		score -= 2
		reasons = append(reasons, fmt.Sprintf("index risk high (5d %.2f%%)", mc.QQQRet5D))
	}

	switch mc.VIXRisk {
	case domain.RiskLow:
		score++
		reasons = append(reasons, fmt.Sprintf("VIX subdued (%.2f)", mc.VIXLevel))
	case domain.RiskMedium:
		score--
		reasons = append(reasons, fmt.Sprintf("VIX mid-range (%.2f)", mc.VIXLevel))
	case domain.RiskHigh:
		score -= 2
		reasons = append(reasons, fmt.Sprintf("VIX elevated (%.2f)", mc.VIXLevel))
	}

	titles := joinedHeadlines(in.News, 12)
	riskHits := keywordHits(titles, macroRiskKeywords)
	posHits := keywordHits(titles, macroPositiveKeywords)
	if len(riskHits) > 0 {
		score -= min(len(riskHits), 3)
		reasons = append(reasons, "macro/policy risk keywords: "+strings.Join(riskHits[:min(len(riskHits), 3)], ", "))
	}
	if len(posHits) > 0 {
		score += min(len(posHits), 2)
		reasons = append(reasons, "supportive macro keywords: "+strings.Join(posHits[:min(len(posHits), 2)], ", "))
	}

	signal := domain.SignalHold
	switch {
	case score >= 2:
		signal = domain.SignalBuy
	case score <= -2:
		signal = domain.SignalSell
	}

	confidence := 0.45 + float64(abs(score))*0.1
	if confidence > 0.85 {
		confidence = 0.85
	}

	rationale := "macro evidence thin, staying neutral"
	if len(reasons) > 0 {
		rationale = strings.Join(reasons, "; ")
	}

	var risks []string
	if len(riskHits) > 0 {
		risks = riskHits[:min(len(riskHits), 3)]
	}

	return result(NameMacro, signal, confidence, rationale,
		map[string]any{
			"macro_score": score,
			"qqq_risk":    string(mc.QQQRisk),
			"vix_risk":    string(mc.VIXRisk),
			"qqq_ret_5d":  mc.QQQRet5D,
			"vix_level":   mc.VIXLevel,
		},
		risks,
	)
}

func keywordHits(text string, keywords []string) []string {
	var hits []string
	for _, k := range keywords {
		if strings.Contains(text, k) {
			hits = append(hits, k)
		}
	}
	return hits
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
