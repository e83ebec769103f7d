// Package scanner implements the universe funnel: load listings, prefilter
// on liquidity and momentum, score survivors on a weighted composite and
// rank into a top pick plus watchlist.
package scanner

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/ZenKaiii/ai-stock-analyst/internal/config"
	"github.com/ZenKaiii/ai-stock-analyst/internal/domain"
	"github.com/ZenKaiii/ai-stock-analyst/internal/newsintel"
)

// SnapshotProvider fetches the full feature snapshot for one symbol.
type SnapshotProvider interface {
	Snapshot(ctx context.Context, symbol string) (*domain.FeatureSnapshot, error)
}

// NewsProvider serves the shared headline pool for a scan.
type NewsProvider interface {
	FetchNews(ctx context.Context) ([]domain.NewsItem, error)
}

type Scanner struct {
	tracer        trace.Tracer
	log           zerolog.Logger
	listings      ListingProvider
	bars          BarProvider
	snapshots     SnapshotProvider
	news          NewsProvider
	extractor     *newsintel.Extractor
	weights       config.ScannerWeights
	sourceWeights map[string]float64
	budgets       config.ScanBudgets
}

func New(tracer trace.Tracer, log zerolog.Logger, listings ListingProvider, bars BarProvider, snapshots SnapshotProvider, news NewsProvider, extractor *newsintel.Extractor, weights config.ScannerWeights, sourceWeights map[string]float64, budgets config.ScanBudgets) *Scanner {
	if sourceWeights == nil {
		sourceWeights = config.DefaultSourceQualityWeights()
	}
	return &Scanner{
		tracer:        tracer,
		log:           log,
		listings:      listings,
		bars:          bars,
		snapshots:     snapshots,
		news:          news,
		extractor:     extractor,
		weights:       weights,
		sourceWeights: sourceWeights,
		budgets:       budgets,
	}
}

// Scan runs the four-stage funnel. It always returns a well-formed result:
// empty stages degrade to documented fallbacks, never to an error.
func (s *Scanner) Scan(ctx context.Context) domain.ScanResult {
	ctx, span := s.tracer.Start(ctx, "scanner.scan")
	defer span.End()

	pool := s.fetchNewsPool(ctx)

	universeSize := s.budgets.UniverseSize
	if universeSize > 0 && universeSize < 200 {
		universeSize = 200
	}
	universe, stats := LoadUniverse(ctx, s.listings, universeSize, s.budgets.IncludeETF)
	s.log.Info().Int("universe", len(universe)).Bool("fallback", stats.Fallback).Msg("universe loaded")

	symbols := make([]string, len(universe))
	for i, entry := range universe {
		symbols[i] = entry.Symbol
	}

	prefilterSize := s.budgets.PrefilterSize
	if prefilterSize < 30 {
		prefilterSize = 30
	}
	prefiltered := Prefilter(ctx, s.bars, symbols, prefilterSize, s.weights)
	s.log.Info().Int("prefiltered", len(prefiltered)).Msg("prefilter complete")

	span.SetAttributes(
		attribute.Int("universe", len(universe)),
		attribute.Int("prefiltered", len(prefiltered)),
	)

	if len(prefiltered) == 0 {
		s.log.Warn().Msg("prefilter empty, falling back to news-derived candidates")
		return s.newsFallback(ctx, pool, len(universe), stats.ExchangeBreakdown)
	}

	scored := make([]domain.CandidateScore, 0, len(prefiltered))
	for _, row := range prefiltered {
		candidate, ok := s.scoreCandidate(ctx, row, pool)
		if !ok {
			continue
		}
		scored = append(scored, candidate)
	}

	sortCandidates(scored)

	finalSize := s.budgets.FinalSize
	if finalSize < 21 {
		finalSize = 21
	}
	finalCount := min(finalSize, len(scored))
	recommendations := scored[:finalCount]

	var topPick *domain.CandidateScore
	var watchlist []domain.CandidateScore
	if len(recommendations) > 0 {
		topPick = &recommendations[0]
		if len(recommendations) > 1 {
			watchlist = recommendations[1:min(len(recommendations), 21)]
		}
	}

	signal := domain.SignalHold
	confidence := 0.0
	if topPick != nil {
		confidence = minf(0.95, topPick.Composite)
		if topPick.Signal == domain.SignalBuy {
			signal = domain.SignalBuy
		}
	}

	return domain.ScanResult{
		TopPick:    topPick,
		Watchlist:  watchlist,
		Candidates: recommendations,
		Signal:     signal,
		Confidence: confidence,
		Stats: domain.ScanStats{
			ScannedUniverse:   len(universe),
			Prefiltered:       len(prefiltered),
			Scored:            len(scored),
			FinalCount:        len(recommendations),
			ExchangeBreakdown: stats.ExchangeBreakdown,
		},
		Timestamp: time.Now().UTC(),
	}
}

func (s *Scanner) fetchNewsPool(ctx context.Context) []domain.NewsItem {
	if s.news == nil {
		return nil
	}
	pool, err := s.news.FetchNews(ctx)
	if err != nil {
		s.log.Warn().Err(err).Msg("news fetch failed, scanning without headlines")
		return nil
	}
	if s.budgets.MaxNews > 0 && len(pool) > s.budgets.MaxNews {
		pool = pool[:s.budgets.MaxNews]
	}
	return pool
}

// scoreCandidate computes the weighted composite for one prefilter
// survivor. Snapshot failure excludes the candidate, not the scan.
func (s *Scanner) scoreCandidate(ctx context.Context, row domain.PrefilterRow, pool []domain.NewsItem) (domain.CandidateScore, bool) {
	f, err := s.snapshots.Snapshot(ctx, row.Symbol)
	if err != nil || f == nil {
		return domain.CandidateScore{}, false
	}

	symbolNews := matchNewsForSymbol(row.Symbol, pool, 4)
	news := newsSentimentScore(symbolNews)
	quality := sourceQualityScore(symbolNews, s.sourceWeights)
	technical := technicalScore(f)
	fundamental := fundamentalScore(f.Fundamentals)
	prefNorm := normalizePrefilter(row.Score)

	penalty := 0.0
	if f.ATRPct >= s.weights.ATRPenaltyAt {
		penalty = s.weights.ATRPenalty
	}

	composite := clamp01(technical*s.weights.Technical +
		fundamental*s.weights.Fundamental +
		news*s.weights.NewsSentiment +
		prefNorm*s.weights.Prefilter +
		quality*s.weights.SourceQuality -
		penalty)

	signal := domain.SignalHold
	if composite >= s.weights.BuyThreshold {
		signal = domain.SignalBuy
	}

	evidence := []string{"no direct headlines; scored on price action and fundamentals"}
	if len(symbolNews) > 0 {
		evidence = evidenceLines(symbolNews, 2)
	}

	return domain.CandidateScore{
		Symbol:        row.Symbol,
		CompanyName:   f.Name,
		Sector:        f.Sector,
		Industry:      f.Industry,
		Signal:        signal,
		Technical:     technical,
		Fundamental:   fundamental,
		NewsSentiment: news,
		SourceQuality: quality,
		PrefilterNorm: prefNorm,
		Composite:     round2(composite),
		Score100:      round1(composite * 100),
		NewsCount:     len(symbolNews),
		EntryPrice:    f.CurrentPrice,
		TargetPrice:   round2(f.CurrentPrice * 1.08),
		BriefAnalysis: fmt.Sprintf("trend %s, RSI14=%.1f, MACD hist=%.3f, ATR%%=%.2f",
			f.Trend, f.RSI14, f.MACDHist, f.ATRPct),
		RecommendNote: fmt.Sprintf("prefilter %.2f, technical %.2f, fundamentals %.2f, news %.2f, source quality %.2f",
			row.Score, technical, fundamental, news, quality),
		EvidenceNews:   evidence,
		PrefilterScore: round2(row.Score),
	}, true
}

// newsFallback derives candidates purely from headline mining when the
// price funnel yields nothing.
func (s *Scanner) newsFallback(ctx context.Context, pool []domain.NewsItem, universeSize int, breakdown map[string]int) domain.ScanResult {
	result := domain.ScanResult{
		Signal:    domain.SignalHold,
		Watchlist: []domain.CandidateScore{},
		Stats: domain.ScanStats{
			ScannedUniverse:   universeSize,
			ExchangeBreakdown: breakdown,
			NewsFallback:      true,
		},
		Timestamp: time.Now().UTC(),
	}
	if s.extractor == nil || len(pool) == 0 {
		result.Candidates = []domain.CandidateScore{}
		return result
	}

	signals := s.extractor.Extract(ctx, pool)
	s.extractor.Enrich(ctx, signals, func(ctx context.Context, symbol string) (*domain.FeatureSnapshot, error) {
		if s.snapshots == nil {
			return nil, fmt.Errorf("no snapshot provider")
		}
		return s.snapshots.Snapshot(ctx, symbol)
	})

	ranked := newsintel.Ranked(signals)
	finalSize := s.budgets.FinalSize
	if finalSize < 21 {
		finalSize = 21
	}
	if len(ranked) > finalSize {
		ranked = ranked[:finalSize]
	}

	candidates := make([]domain.CandidateScore, 0, len(ranked))
	buyCount := 0
	for _, sig := range ranked {
		if sig.Signal == domain.SignalBuy {
			buyCount++
		}
		candidates = append(candidates, domain.CandidateScore{
			Symbol:         sig.Symbol,
			CompanyName:    sig.CompanyName,
			Sector:         sig.Sector,
			Industry:       sig.Industry,
			Signal:         sig.Signal,
			NewsSentiment:  round2(sig.BullishScore),
			Composite:      round2(sig.Composite),
			Score100:       round1(sig.Composite * 100),
			NewsCount:      sig.NewsCount,
			BriefAnalysis:  sig.BriefAnalysis,
			RecommendNote:  sig.RecommendNote,
			EvidenceNews:   sig.EvidenceNews,
			PrefilterScore: 0,
		})
	}

	if buyCount >= 3 {
		result.Signal = domain.SignalBuy
	}
	voteBase := max(1, min(finalSize, 21))
	result.Confidence = minf(0.85, float64(buyCount)/float64(voteBase))
	result.Candidates = candidates
	if len(candidates) > 0 {
		result.TopPick = &candidates[0]
		if len(candidates) > 1 {
			result.Watchlist = candidates[1:min(len(candidates), 21)]
		}
	}
	result.Stats.Scored = len(candidates)
	result.Stats.FinalCount = len(candidates)
	return result
}

func sortCandidates(scored []domain.CandidateScore) {
	sort.Slice(scored, func(i, j int) bool {
		if scored[i].Composite != scored[j].Composite {
			return scored[i].Composite > scored[j].Composite
		}
		return scored[i].Symbol < scored[j].Symbol
	})
}

func evidenceLines(items []domain.NewsItem, limit int) []string {
	if limit > len(items) {
		limit = len(items)
	}
	out := make([]string, 0, limit)
	for _, item := range items[:limit] {
		title := item.Title
		if len(title) > 120 {
			title = title[:120]
		}
		out = append(out, fmt.Sprintf("[%s] %s", item.Source, title))
	}
	return out
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
