package service

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/trace"

	"github.com/ZenKaiii/ai-stock-analyst/internal/domain"
)

type stubSnapshots struct {
	snap *domain.FeatureSnapshot
	err  error
}

func (s *stubSnapshots) Snapshot(ctx context.Context, symbol string) (*domain.FeatureSnapshot, error) {
	return s.snap, s.err
}

type stubBars struct {
	bars []domain.Bar
	err  error
}

func (s *stubBars) DailyBars(ctx context.Context, symbol string, days int) ([]domain.Bar, error) {
	return s.bars, s.err
}

type stubNews struct {
	items []domain.NewsItem
	err   error
}

func (s *stubNews) FetchNews(ctx context.Context) ([]domain.NewsItem, error) {
	return s.items, s.err
}

type stubSocial struct {
	sentiment *domain.SocialSentiment
	err       error
}

func (s *stubSocial) FetchSentiment(ctx context.Context, symbol string) (*domain.SocialSentiment, error) {
	return s.sentiment, s.err
}

func TestContextServiceBuild(t *testing.T) {
	tracer := trace.NewNoopTracerProvider().Tracer("test")
	s := NewContextService(tracer, zerolog.Nop(),
		&stubSnapshots{snap: &domain.FeatureSnapshot{Symbol: "NVDA", CurrentPrice: 180}},
		&stubBars{bars: make([]domain.Bar, 30)},
		&stubNews{items: []domain.NewsItem{
			{Title: "NVDA hits a new high"},
			{Title: "Unrelated macro story"},
			{Title: "$NVDA options volume explodes"},
		}},
		&stubSocial{sentiment: &domain.SocialSentiment{BullishPct: 70, BearishPct: 20, Total: 40}},
		20)

	in := s.Build(context.Background(), " nvda ")
	if in.Symbol != "NVDA" {
		t.Fatalf("expected normalized symbol, got %q", in.Symbol)
	}
	if !in.HasFeatures() || !in.HasPriceHistory(20) || !in.HasSocial() {
		t.Fatalf("expected all sections present: %+v", in)
	}
	if len(in.News) != 2 {
		t.Fatalf("expected 2 symbol-matched headlines, got %d", len(in.News))
	}
}

func TestContextServiceDegradesOnProviderFailure(t *testing.T) {
	tracer := trace.NewNoopTracerProvider().Tracer("test")
	s := NewContextService(tracer, zerolog.Nop(),
		&stubSnapshots{err: errors.New("yahoo down")},
		&stubBars{err: errors.New("yahoo down")},
		&stubNews{err: errors.New("feeds down")},
		&stubSocial{err: errors.New("reddit down")},
		20)

	in := s.Build(context.Background(), "AAPL")
	if in.Symbol != "AAPL" {
		t.Fatalf("expected symbol carried through, got %q", in.Symbol)
	}
	if in.HasFeatures() || in.HasNews() || in.HasSocial() || in.HasPriceHistory(1) {
		t.Fatalf("expected every section absent, got %+v", in)
	}
}

func TestFilterSymbolNews(t *testing.T) {
	pool := []domain.NewsItem{
		{Title: "CAT raises dividend"},
		{Title: "CATALYST for the sector emerges"},
		{Title: "Heavy $CAT call buying"},
		{Title: "cat upgraded by two desks"},
	}
	out := filterSymbolNews("CAT", pool, 10)
	if len(out) != 3 {
		t.Fatalf("expected 3 matches without the CATALYST false positive, got %d: %+v", len(out), out)
	}

	out = filterSymbolNews("CAT", pool, 2)
	if len(out) != 2 {
		t.Fatalf("expected the cap to hold, got %d", len(out))
	}
}
