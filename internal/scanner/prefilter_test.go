package scanner

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ZenKaiii/ai-stock-analyst/internal/config"
	"github.com/ZenKaiii/ai-stock-analyst/internal/domain"
)

type stubBars struct {
	histories map[string][]domain.Bar
}

func (s *stubBars) DailyBars(ctx context.Context, symbol string, days int) ([]domain.Bar, error) {
	h, ok := s.histories[symbol]
	if !ok {
		return nil, errors.New("no data")
	}
	return h, nil
}

func barsFromCloses(closes []float64, volume float64) []domain.Bar {
	out := make([]domain.Bar, len(closes))
	base := time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC)
	for i, c := range closes {
		out[i] = domain.Bar{
			Date: base.AddDate(0, 0, i), Open: c, High: c, Low: c, Close: c, Volume: volume,
		}
	}
	return out
}

func trendingCloses(n int, start, dailyGain float64) []float64 {
	closes := make([]float64, n)
	price := start
	for i := range closes {
		closes[i] = price
		price *= 1 + dailyGain
	}
	return closes
}

func TestPrefilterOrdersByScore(t *testing.T) {
	provider := &stubBars{histories: map[string][]domain.Bar{
		"FAST": barsFromCloses(trendingCloses(60, 50, 0.01), 2_000_000),
		"SLOW": barsFromCloses(trendingCloses(60, 50, 0.001), 2_000_000),
	}}
	rows := Prefilter(context.Background(), provider, []string{"SLOW", "FAST"}, 10, config.DefaultScannerWeights())
	if len(rows) != 2 {
		t.Fatalf("expected both symbols to survive, got %d", len(rows))
	}
	if rows[0].Symbol != "FAST" {
		t.Fatalf("expected FAST ranked first, got %s", rows[0].Symbol)
	}
	if rows[0].Score <= rows[1].Score {
		t.Fatalf("expected descending scores, got %f <= %f", rows[0].Score, rows[1].Score)
	}
}

func TestPrefilterTopKTruncation(t *testing.T) {
	histories := make(map[string][]domain.Bar)
	symbols := []string{"AAA", "BBB", "CCC", "DDD"}
	for i, s := range symbols {
		histories[s] = barsFromCloses(trendingCloses(60, 50, 0.002*float64(i+1)), 2_000_000)
	}
	provider := &stubBars{histories: histories}
	rows := Prefilter(context.Background(), provider, symbols, 2, config.DefaultScannerWeights())
	if len(rows) != 2 {
		t.Fatalf("expected topK=2, got %d", len(rows))
	}
	if rows[0].Symbol != "DDD" || rows[1].Symbol != "CCC" {
		t.Fatalf("expected strongest movers kept, got %v", rows)
	}
}

func TestPrefilterDropsPennyAndIlliquid(t *testing.T) {
	provider := &stubBars{histories: map[string][]domain.Bar{
		"PENNY": barsFromCloses(trendingCloses(60, 1.0, 0.01), 50_000_000),
		"THIN":  barsFromCloses(trendingCloses(60, 50, 0.01), 1_000), // ~$50k/day
		"GOOD":  barsFromCloses(trendingCloses(60, 50, 0.01), 2_000_000),
	}}
	rows := Prefilter(context.Background(), provider, []string{"PENNY", "THIN", "GOOD"}, 10, config.DefaultScannerWeights())
	if len(rows) != 1 || rows[0].Symbol != "GOOD" {
		t.Fatalf("expected only GOOD to survive, got %v", rows)
	}
}

func TestPrefilterDropsShortHistory(t *testing.T) {
	provider := &stubBars{histories: map[string][]domain.Bar{
		"NEW": barsFromCloses(trendingCloses(10, 50, 0.01), 2_000_000),
	}}
	rows := Prefilter(context.Background(), provider, []string{"NEW"}, 10, config.DefaultScannerWeights())
	if len(rows) != 0 {
		t.Fatalf("expected short history dropped, got %v", rows)
	}
}

func TestPrefilterProviderErrorSkipsSymbol(t *testing.T) {
	provider := &stubBars{histories: map[string][]domain.Bar{
		"GOOD": barsFromCloses(trendingCloses(60, 50, 0.01), 2_000_000),
	}}
	rows := Prefilter(context.Background(), provider, []string{"MISSING", "GOOD"}, 10, config.DefaultScannerWeights())
	if len(rows) != 1 || rows[0].Symbol != "GOOD" {
		t.Fatalf("expected MISSING skipped, got %v", rows)
	}
}

func TestPrefilterEmptyUniverse(t *testing.T) {
	if rows := Prefilter(context.Background(), &stubBars{}, nil, 10, config.DefaultScannerWeights()); rows != nil {
		t.Fatalf("expected nil for empty universe, got %v", rows)
	}
}
