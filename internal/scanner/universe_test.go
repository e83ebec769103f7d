package scanner

import (
	"context"
	"errors"
	"testing"

	"github.com/ZenKaiii/ai-stock-analyst/internal/domain"
)

type stubListings struct {
	nasdaq    []domain.ListingRow
	other     []domain.ListingRow
	nasdaqErr error
	otherErr  error
}

func (s *stubListings) NasdaqListed(ctx context.Context) ([]domain.ListingRow, error) {
	return s.nasdaq, s.nasdaqErr
}

func (s *stubListings) OtherListed(ctx context.Context) ([]domain.ListingRow, error) {
	return s.other, s.otherErr
}

func TestLoadUniverseMergesAndSorts(t *testing.T) {
	provider := &stubListings{
		nasdaq: []domain.ListingRow{
			{Symbol: "msft", Exchange: "Q"},
			{Symbol: "AAPL", Exchange: "Q"},
		},
		other: []domain.ListingRow{
			{Symbol: "JPM", Exchange: "N"},
		},
	}
	entries, stats := LoadUniverse(context.Background(), provider, 0, false)
	if len(entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(entries))
	}
	if entries[0].Symbol != "AAPL" || entries[1].Symbol != "JPM" || entries[2].Symbol != "MSFT" {
		t.Fatalf("expected sorted symbols, got %v", entries)
	}
	if stats.Fallback {
		t.Fatal("unexpected fallback")
	}
	if stats.ExchangeBreakdown["NASDAQ"] != 2 || stats.ExchangeBreakdown["NYSE"] != 1 {
		t.Fatalf("unexpected breakdown %v", stats.ExchangeBreakdown)
	}
}

func TestLoadUniverseFirstExchangeWins(t *testing.T) {
	provider := &stubListings{
		nasdaq: []domain.ListingRow{{Symbol: "TSLA", Exchange: "Q"}},
		other:  []domain.ListingRow{{Symbol: "TSLA", Exchange: "N"}},
	}
	entries, _ := LoadUniverse(context.Background(), provider, 0, false)
	if len(entries) != 1 {
		t.Fatalf("expected dedupe to 1 entry, got %d", len(entries))
	}
	if entries[0].Exchange != "Q" {
		t.Fatalf("expected first-seen exchange Q, got %s", entries[0].Exchange)
	}
}

func TestLoadUniverseNormalizesDotSymbols(t *testing.T) {
	provider := &stubListings{
		other: []domain.ListingRow{{Symbol: "BRK.B", Exchange: "N"}},
	}
	entries, _ := LoadUniverse(context.Background(), provider, 0, false)
	if len(entries) != 1 || entries[0].Symbol != "BRK-B" {
		t.Fatalf("expected BRK.B normalized to BRK-B, got %v", entries)
	}
}

func TestLoadUniverseRejectsInvalidSymbols(t *testing.T) {
	provider := &stubListings{
		nasdaq: []domain.ListingRow{
			{Symbol: "AAPL$", Exchange: "Q"},
			{Symbol: "^VIX", Exchange: "Q"},
			{Symbol: "TOOLONGSYM", Exchange: "Q"},
			{Symbol: "", Exchange: "Q"},
			{Symbol: "OK", Exchange: "Q"},
		},
	}
	entries, _ := LoadUniverse(context.Background(), provider, 0, false)
	if len(entries) != 1 || entries[0].Symbol != "OK" {
		t.Fatalf("expected only OK to survive, got %v", entries)
	}
}

func TestLoadUniverseExcludesETFsByDefault(t *testing.T) {
	provider := &stubListings{
		nasdaq: []domain.ListingRow{
			{Symbol: "QQQ", Exchange: "Q", IsETF: true},
			{Symbol: "NVDA", Exchange: "Q"},
		},
	}
	entries, _ := LoadUniverse(context.Background(), provider, 0, false)
	if len(entries) != 1 || entries[0].Symbol != "NVDA" {
		t.Fatalf("expected ETF excluded, got %v", entries)
	}

	entries, _ = LoadUniverse(context.Background(), provider, 0, true)
	if len(entries) != 2 {
		t.Fatalf("expected ETF kept with includeETF, got %v", entries)
	}
}

func TestLoadUniverseFallbackWhenFeedsFail(t *testing.T) {
	provider := &stubListings{
		nasdaqErr: errors.New("network down"),
		otherErr:  errors.New("network down"),
	}
	entries, stats := LoadUniverse(context.Background(), provider, 0, false)
	if !stats.Fallback {
		t.Fatal("expected fallback flag")
	}
	if len(entries) != 38 {
		t.Fatalf("expected the embedded universe of 38 symbols, got %d", len(entries))
	}
	if stats.ExchangeBreakdown["Fallback Mixed"] != 38 {
		t.Fatalf("unexpected breakdown %v", stats.ExchangeBreakdown)
	}
}

func TestLoadUniverseCap(t *testing.T) {
	provider := &stubListings{
		nasdaq: []domain.ListingRow{
			{Symbol: "AAA", Exchange: "Q"},
			{Symbol: "BBB", Exchange: "Q"},
			{Symbol: "CCC", Exchange: "Q"},
		},
	}
	entries, _ := LoadUniverse(context.Background(), provider, 2, false)
	if len(entries) != 2 {
		t.Fatalf("expected cap to 2, got %d", len(entries))
	}
}
