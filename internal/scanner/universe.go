package scanner

import (
	"context"
	"regexp"
	"sort"
	"strings"

	"github.com/ZenKaiii/ai-stock-analyst/internal/domain"
)

var symbolPattern = regexp.MustCompile(`^[A-Z][A-Z.\-]{0,5}$`)

var exchangeLabels = map[string]string{
	"Q": "NASDAQ",
	"N": "NYSE",
	"A": "NYSE American",
	"P": "NYSE Arca",
	"Z": "Cboe BZX",
	"V": "IEX",
}

// fallbackUniverse keeps the scanner alive when both listing feeds fail.
var fallbackUniverse = []string{
	"AAPL", "MSFT", "NVDA", "AMZN", "META", "GOOGL", "TSLA", "AVGO", "AMD", "NFLX",
	"JPM", "BAC", "GS", "V", "MA", "WMT", "COST", "HD", "NKE", "SBUX",
	"UNH", "LLY", "JNJ", "PFE", "MRK", "XOM", "CVX", "COP", "CAT", "BA",
	"SPY", "QQQ", "IWM", "DIA", "TLT", "GLD", "SLV", "USO",
}

// ListingProvider serves the two raw listing feeds. Network failure
// returns an empty slice, which trips the embedded fallback.
type ListingProvider interface {
	NasdaqListed(ctx context.Context) ([]domain.ListingRow, error)
	OtherListed(ctx context.Context) ([]domain.ListingRow, error)
}

// UniverseStats summarizes one load for scan reporting.
type UniverseStats struct {
	RawRows           int
	Selected          int
	IncludeETF        bool
	ExchangeBreakdown map[string]int
	Fallback          bool
}

// LoadUniverse merges both feeds, normalizes and validates symbols,
// deduplicates keeping the first exchange seen, optionally drops ETFs and
// truncates to maxSymbols (0 = no cap). Empty merged input yields the
// embedded fallback list instead of an empty universe.
func LoadUniverse(ctx context.Context, provider ListingProvider, maxSymbols int, includeETF bool) ([]domain.UniverseEntry, UniverseStats) {
	var rows []domain.ListingRow
	if provider != nil {
		if nasdaq, err := provider.NasdaqListed(ctx); err == nil {
			rows = append(rows, nasdaq...)
		}
		if other, err := provider.OtherListed(ctx); err == nil {
			rows = append(rows, other...)
		}
	}

	deduped := make(map[string]domain.UniverseEntry)
	for _, row := range rows {
		symbol := normalizeSymbol(row.Symbol)
		if !isValidSymbol(symbol) {
			continue
		}
		if row.IsETF && !includeETF {
			continue
		}
		exchange := strings.ToUpper(strings.TrimSpace(row.Exchange))
		if exchange == "" {
			exchange = "Q"
		}
		if _, seen := deduped[symbol]; !seen {
			deduped[symbol] = domain.UniverseEntry{Symbol: symbol, Exchange: exchange, IsETF: row.IsETF}
		}
	}

	if len(deduped) == 0 {
		fallback := append([]string(nil), fallbackUniverse...)
		sort.Strings(fallback)
		if maxSymbols > 0 && len(fallback) > maxSymbols {
			fallback = fallback[:maxSymbols]
		}
		entries := make([]domain.UniverseEntry, len(fallback))
		for i, s := range fallback {
			entries[i] = domain.UniverseEntry{Symbol: s, Exchange: "Q"}
		}
		return entries, UniverseStats{
			Selected:          len(entries),
			IncludeETF:        includeETF,
			ExchangeBreakdown: map[string]int{"Fallback Mixed": len(entries)},
			Fallback:          true,
		}
	}

	symbols := make([]string, 0, len(deduped))
	for s := range deduped {
		symbols = append(symbols, s)
	}
	sort.Strings(symbols)
	if maxSymbols > 0 && len(symbols) > maxSymbols {
		symbols = symbols[:maxSymbols]
	}

	entries := make([]domain.UniverseEntry, 0, len(symbols))
	breakdown := make(map[string]int)
	for _, s := range symbols {
		entry := deduped[s]
		entries = append(entries, entry)
		label, ok := exchangeLabels[entry.Exchange]
		if !ok {
			label = "Exchange-" + entry.Exchange
		}
		breakdown[label]++
	}

	return entries, UniverseStats{
		RawRows:           len(rows),
		Selected:          len(entries),
		IncludeETF:        includeETF,
		ExchangeBreakdown: breakdown,
	}
}

func normalizeSymbol(symbol string) string {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	return strings.ReplaceAll(symbol, ".", "-")
}

func isValidSymbol(symbol string) bool {
	if symbol == "" {
		return false
	}
	if strings.ContainsAny(symbol, "$/^=") {
		return false
	}
	return symbolPattern.MatchString(symbol)
}
