package service

import (
	"context"
	"regexp"
	"strings"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/ZenKaiii/ai-stock-analyst/internal/domain"
)

// SnapshotProvider fetches the feature snapshot for one symbol.
type SnapshotProvider interface {
	Snapshot(ctx context.Context, symbol string) (*domain.FeatureSnapshot, error)
}

// BarProvider fetches daily history for one symbol.
type BarProvider interface {
	DailyBars(ctx context.Context, symbol string, days int) ([]domain.Bar, error)
}

// NewsProvider serves the shared headline pool.
type NewsProvider interface {
	FetchNews(ctx context.Context) ([]domain.NewsItem, error)
}

// SentimentProvider aggregates crowd sentiment for one symbol.
type SentimentProvider interface {
	FetchSentiment(ctx context.Context, symbol string) (*domain.SocialSentiment, error)
}

// ContextService assembles the per-request AnalysisContext from the
// external providers. Every provider failure degrades to an absent section
// rather than an error; agents skip what is missing.
type ContextService struct {
	tracer    trace.Tracer
	log       zerolog.Logger
	snapshots SnapshotProvider
	bars      BarProvider
	news      NewsProvider
	social    SentimentProvider
	maxNews   int
}

func NewContextService(tracer trace.Tracer, log zerolog.Logger, snapshots SnapshotProvider, bars BarProvider, news NewsProvider, social SentimentProvider, maxNews int) *ContextService {
	if maxNews <= 0 {
		maxNews = 20
	}
	return &ContextService{
		tracer:    tracer,
		log:       log,
		snapshots: snapshots,
		bars:      bars,
		news:      news,
		social:    social,
		maxNews:   maxNews,
	}
}

// Build gathers features, history, symbol-matched news and social
// sentiment for one instrument.
func (s *ContextService) Build(ctx context.Context, symbol string) *domain.AnalysisContext {
	ctx, span := s.tracer.Start(ctx, "context-service.build",
		trace.WithAttributes(attribute.String("symbol", symbol)))
	defer span.End()

	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	in := &domain.AnalysisContext{Symbol: symbol}

	if s.snapshots != nil {
		if f, err := s.snapshots.Snapshot(ctx, symbol); err == nil {
			in.Features = f
		} else {
			s.log.Warn().Err(err).Str("symbol", symbol).Msg("snapshot unavailable")
		}
	}
	if s.bars != nil {
		if history, err := s.bars.DailyBars(ctx, symbol, 180); err == nil {
			in.History = history
		} else {
			s.log.Warn().Err(err).Str("symbol", symbol).Msg("price history unavailable")
		}
	}
	if s.news != nil {
		if pool, err := s.news.FetchNews(ctx); err == nil {
			in.News = filterSymbolNews(symbol, pool, s.maxNews)
		} else {
			s.log.Warn().Err(err).Msg("news pool unavailable")
		}
	}
	if s.social != nil {
		if sentiment, err := s.social.FetchSentiment(ctx, symbol); err == nil {
			in.Social = sentiment
		} else {
			s.log.Warn().Err(err).Str("symbol", symbol).Msg("social sentiment unavailable")
		}
	}
	return in
}

// filterSymbolNews keeps headlines mentioning the symbol directly or as a
// cashtag, capped at maxItems.
func filterSymbolNews(symbol string, pool []domain.NewsItem, maxItems int) []domain.NewsItem {
	direct := regexp.MustCompile(`\b` + regexp.QuoteMeta(symbol) + `\b`)
	cashtag := regexp.MustCompile(`\$` + regexp.QuoteMeta(symbol) + `\b`)

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
