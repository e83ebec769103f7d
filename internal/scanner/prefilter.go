package scanner

import (
	"context"
	"math"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/ZenKaiii/ai-stock-analyst/internal/config"
	"github.com/ZenKaiii/ai-stock-analyst/internal/domain"
	"github.com/ZenKaiii/ai-stock-analyst/internal/ta"
)

const (
	prefilterChunkSize  = 120
	prefilterMinObs     = 25
	defaultMinPrice     = 3.0
	defaultMinDollarVol = 20_000_000
)

// BarProvider fetches roughly three months of daily bars for one symbol.
// Any error excludes that symbol from the funnel, never the whole batch.
type BarProvider interface {
	DailyBars(ctx context.Context, symbol string, days int) ([]domain.Bar, error)
}

// Prefilter screens the universe on price, liquidity and momentum. Symbols
// are processed in fixed-size chunks fetched concurrently; survivors are
// sorted by score descending and truncated to topK.
func Prefilter(ctx context.Context, bars BarProvider, symbols []string, topK int, weights config.ScannerWeights) []domain.PrefilterRow {
	if len(symbols) == 0 || bars == nil {
		return nil
	}

	var mu sync.Mutex
	var rows []domain.PrefilterRow

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for start := 0; start < len(symbols); start += prefilterChunkSize {
		chunk := symbols[start:min(start+prefilterChunkSize, len(symbols))]
		g.Go(func() error {
			local := make([]domain.PrefilterRow, 0, len(chunk))
			for _, symbol := range chunk {
				history, err := bars.DailyBars(ctx, symbol, 90)
				if err != nil {
					continue
				}
				if row, ok := prefilterRow(symbol, history, weights); ok {
					local = append(local, row)
				}
			}
			mu.Lock()
			rows = append(rows, local...)
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Score != rows[j].Score {
			return rows[i].Score > rows[j].Score
		}
		return rows[i].Symbol < rows[j].Symbol
	})
	if topK > 0 && len(rows) > topK {
		rows = rows[:topK]
	}
	return rows
}

func prefilterRow(symbol string, history []domain.Bar, weights config.ScannerWeights) (domain.PrefilterRow, bool) {
	if len(history) < prefilterMinObs {
		return domain.PrefilterRow{}, false
	}

	closes := make([]float64, 0, len(history))
	volumes := make([]float64, 0, len(history))
	for _, b := range history {
		if b.Close <= 0 || math.IsNaN(b.Close) || math.IsNaN(b.Volume) {
			continue
		}
		closes = append(closes, b.Close)
		volumes = append(volumes, b.Volume)
	}
	if len(closes) < prefilterMinObs {
		return domain.PrefilterRow{}, false
	}

	price := closes[len(closes)-1]
	var sumDollar float64
	for i := len(closes) - 20; i < len(closes); i++ {
		sumDollar += closes[i] * volumes[i]
	}
	avgDollarVolume20 := sumDollar / 20

	if price < defaultMinPrice || avgDollarVolume20 < defaultMinDollarVol {
		return domain.PrefilterRow{}, false
	}

	ret20 := closes[len(closes)-1]/closes[len(closes)-21] - 1
	ret5 := 0.0
	if len(closes) >= 6 {
		ret5 = closes[len(closes)-1]/closes[len(closes)-6] - 1
	}
	vol20 := ta.ReturnVolatility(closes, 20)

	score := ret20*100*weights.PrefilterRet20 +
		ret5*100*weights.PrefilterRet5 +
		math.Min(avgDollarVolume20/1e8, 10)*weights.PrefilterDollarVol -
		math.Max(vol20-weights.PrefilterVolPivot, 0)*weights.PrefilterVolSlope

	return domain.PrefilterRow{
		Symbol:            symbol,
		Price:             round2(price),
		AvgDollarVolume20: round2(avgDollarVolume20),
		Ret20Pct:          round2(ret20 * 100),
		Ret5Pct:           round2(ret5 * 100),
		Vol20Pct:          round2(vol20),
		Score:             round4(score),
	}, true
}

func round2(v float64) float64 { return math.Round(v*100) / 100 }
func round4(v float64) float64 { return math.Round(v*10000) / 10000 }
