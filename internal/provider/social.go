package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/otel/trace"

	"github.com/ZenKaiii/ai-stock-analyst/internal/domain"
)

const (
	redditBaseURL   = "https://www.reddit.com"
	defaultSocialUA = "ai-stock-analyst/1.0 (+https://github.com/ZenKaiii/ai-stock-analyst)"
)

var socialSubreddits = []string{"wallstreetbets", "stocks", "investing"}

var bullishKeywords = []string{
	"buy", "long", "bull", "moon", "rocket", "calls", "surge", "rally", "breakout",
}

var bearishKeywords = []string{
	"sell", "short", "bear", "crash", "dump", "tank", "puts", "bearish",
}

// SocialProvider aggregates crowd sentiment for a symbol from Reddit
// search results across the trading subreddits.
type SocialProvider struct {
	client    *http.Client
	baseURL   string
	userAgent string
	tracer    trace.Tracer
	limiter   *RateLimiter
}

func NewSocialProvider(tracer trace.Tracer) *SocialProvider {
	return &SocialProvider{
		client:    &http.Client{Timeout: 20 * time.Second},
		baseURL:   redditBaseURL,
		userAgent: defaultSocialUA,
		tracer:    tracer,
		limiter:   NewRateLimiter(30, 2 * time.Second),
	}
}

// FetchSentiment searches each subreddit for the symbol and classifies the
// post titles by keyword balance. A subreddit failure reduces the sample,
// never fails the call; zero posts yields a neutral 50/50 aggregate.
func (p *SocialProvider) FetchSentiment(ctx context.Context, symbol string) (*domain.SocialSentiment, error) {
	_, span := p.tracer.Start(ctx, "social.fetch-sentiment")
	defer span.End()

	symbol = strings.TrimSpace(symbol)
	if symbol == "" {
		return nil, fmt.Errorf("symbol is required")
	}

	var titles []string
	for _, subreddit := range socialSubreddits {
		posts, err := p.search(ctx, subreddit, symbol, 50)
		if err != nil {
			continue
		}
		titles = append(titles, posts...)
	}

	if len(titles) == 0 {
		return &domain.SocialSentiment{BullishPct: 50, BearishPct: 50}, nil
	}

	bullish, bearish := 0, 0
	for _, title := range titles {
		lower := strings.ToLower(title)
		b, br := 0, 0
		for _, k := range bullishKeywords {
			if strings.Contains(lower, k) {
				b++
			}
		}
		for _, k := range bearishKeywords {
			if strings.Contains(lower, k) {
				br++
			}
		}
		if b > br {
			bullish++
		} else if br > b {
			bearish++
		}
	}

	total := len(titles)
	return &domain.SocialSentiment{
		BullishPct: float64(bullish) / float64(total) * 100,
		BearishPct: float64(bearish) / float64(total) * 100,
		Total:      total,
	}, nil
}

func (p *SocialProvider) search(ctx context.Context, subreddit, symbol string, limit int) ([]string, error) {
	if err := p.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	endpoint := fmt.Sprintf("%s/r/%s/search.json?q=%s&restrict_sr=1&limit=%d",
		strings.TrimRight(p.baseURL, "/"), url.PathEscape(subreddit), url.QueryEscape(symbol), limit)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", p.userAgent)

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("reddit API error %d: %s", resp.StatusCode, string(body))
	}

	var payload struct {
		Data struct {
			Children []struct {
				Data struct {
					Title string `json:"title"`
				} `json:"data"`
			} `json:"children"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode reddit payload: %w", err)
	}

	titles := make([]string, 0, len(payload.Data.Children))
	for _, child := range payload.Data.Children {
		if t := strings.TrimSpace(child.Data.Title); t != "" {
			titles = append(titles, t)
		}
	}
	return titles, nil
}
