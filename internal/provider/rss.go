package provider

import (
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/trace"

	"github.com/ZenKaiii/ai-stock-analyst/internal/domain"
)

// Feed names one RSS source; Name keys into the source-quality table.
type Feed struct {
	Name string
	URL  string
}

// DefaultFeeds is the curated headline pool for scans.
func DefaultFeeds() []Feed {
	return []Feed{
		{Name: "Seeking Alpha", URL: "https://seekingalpha.com/feed.xml"},
		{Name: "MarketWatch", URL: "https://feeds.content.dowjones.io/public/rss/mw_topstories"},
		{Name: "CNBC", URL: "https://search.cnbc.com/rs/search/combinedcms/view.xml?partnerId=wrss01&id=100003114"},
		{Name: "Investing.com Markets", URL: "https://www.investing.com/rss/news.rss"},
		{Name: "Nasdaq", URL: "https://www.nasdaq.com/feed/rssoutbound?category=Stocks"},
	}
}

// RSSProvider fetches and merges the configured feeds into one ordered
// headline pool, newest first. A failing feed is skipped, not fatal.
type RSSProvider struct {
	client *http.Client
	tracer trace.Tracer
	log    zerolog.Logger
	feeds  []Feed
}

func NewRSSProvider(tracer trace.Tracer, log zerolog.Logger, feeds []Feed) *RSSProvider {
	if len(feeds) == 0 {
		feeds = DefaultFeeds()
	}
	return &RSSProvider{
		client: &http.Client{Timeout: 20 * time.Second},
		tracer: tracer,
		log:    log,
		feeds:  feeds,
	}
}

// FetchNews pulls every feed concurrently and merges results by recency.
func (p *RSSProvider) FetchNews(ctx context.Context) ([]domain.NewsItem, error) {
	ctx, span := p.tracer.Start(ctx, "rss.fetch-news")
	defer span.End()

	var mu sync.Mutex
	var all []domain.NewsItem
	var wg sync.WaitGroup
	for _, feed := range p.feeds {
		wg.Add(1)
		go func(feed Feed) {
			defer wg.Done()
			items, err := p.fetchFeed(ctx, feed)
			if err != nil {
				p.log.Warn().Err(err).Str("feed", feed.Name).Msg("feed fetch failed")
				return
			}
			mu.Lock()
			all = append(all, items...)
			mu.Unlock()
		}(feed)
	}
	wg.Wait()

	sort.Slice(all, func(i, j int) bool {
		if !all[i].PublishedAt.Equal(all[j].PublishedAt) {
			return all[i].PublishedAt.After(all[j].PublishedAt)
		}
		return all[i].Title < all[j].Title
	})
	return all, nil
}

func (p *RSSProvider) fetchFeed(ctx context.Context, feed Feed) ([]domain.NewsItem, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, feed.URL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/rss+xml, application/xml, text/xml")
	req.Header.Set("User-Agent", "Mozilla/5.0 (compatible; stock-analyst/1.0)")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("rss fetch error %d from %s", resp.StatusCode, feed.Name)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	var rss struct {
		Channel struct {
			Items []struct {
				Title       string `xml:"title"`
				Link        string `xml:"link"`
				Description string `xml:"description"`
				PubDate     string `xml:"pubDate"`
			} `xml:"item"`
		} `xml:"channel"`
	}
	if err := xml.Unmarshal(body, &rss); err != nil {
		return nil, fmt.Errorf("decode %s payload: %w", feed.Name, err)
	}

	items := make([]domain.NewsItem, 0, len(rss.Channel.Items))
	for _, row := range rss.Channel.Items {
		title := sanitizeText(row.Title, 300)
		if title == "" {
			continue
		}
		publishedAt := parseRSSDate(row.PubDate)
		if publishedAt.IsZero() {
			publishedAt = time.Now().UTC()
		}
		items = append(items, domain.NewsItem{
			Title:       title,
			Source:      feed.Name,
			Summary:     sanitizeText(htmlStrip(row.Description), 420),
			Link:        sanitizeText(row.Link, 500),
			PublishedAt: publishedAt,
		})
	}
	return items, nil
}

func parseRSSDate(v string) time.Time {
	v = strings.TrimSpace(v)
	if v == "" {
		return time.Time{}
	}
	layouts := []string{time.RFC1123Z, time.RFC1123, time.RFC822Z, time.RFC822, time.RFC3339}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, v); err == nil {
			return t.UTC()
		}
	}
	return time.Time{}
}

var htmlTagPattern = regexp.MustCompile(`<[^>]*>`)

func htmlStrip(in string) string {
	return htmlTagPattern.ReplaceAllString(in, " ")
}

func sanitizeText(in string, limit int) string {
	out := strings.Join(strings.Fields(in), " ")
	if len(out) > limit {
		out = out[:limit]
	}
	return strings.TrimSpace(out)
}
