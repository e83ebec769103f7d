package provider

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel/trace"

	"github.com/ZenKaiii/ai-stock-analyst/internal/domain"
)

const (
	nasdaqListedURL = "https://www.nasdaqtrader.com/dynamic/symdir/nasdaqlisted.txt"
	otherListedURL  = "https://www.nasdaqtrader.com/dynamic/symdir/otherlisted.txt"
)

// ListingsProvider downloads the two NASDAQ Trader symbol directory feeds.
// Both are pipe-delimited text with a header row and a trailing
// "File Creation Time" line.
type ListingsProvider struct {
	client *resty.Client
	tracer trace.Tracer
}

func NewListingsProvider(tracer trace.Tracer) *ListingsProvider {
	client := resty.New().
		SetTimeout(15 * time.Second).
		SetRetryCount(2).
		SetRetryWaitTime(2 * time.Second)
	return &ListingsProvider{client: client, tracer: tracer}
}

// NasdaqListed returns NASDAQ-listed rows. Test issues are dropped at the
// feed level.
func (p *ListingsProvider) NasdaqListed(ctx context.Context) ([]domain.ListingRow, error) {
	_, span := p.tracer.Start(ctx, "listings.nasdaq")
	defer span.End()
	return p.fetchRows(ctx, nasdaqListedURL, []string{"Symbol"}, nil, "Q")
}

// OtherListed returns NYSE/American/Arca/BZX/IEX rows.
func (p *ListingsProvider) OtherListed(ctx context.Context) ([]domain.ListingRow, error) {
	_, span := p.tracer.Start(ctx, "listings.other")
	defer span.End()
	return p.fetchRows(ctx, otherListedURL,
		[]string{"NASDAQ Symbol", "CQS Symbol", "ACT Symbol"}, []string{"Exchange"}, "")
}

func (p *ListingsProvider) fetchRows(ctx context.Context, feedURL string, symbolKeys, exchangeKeys []string, defaultExchange string) ([]domain.ListingRow, error) {
	resp, err := p.client.R().SetContext(ctx).Get(feedURL)
	if err != nil {
		return nil, fmt.Errorf("fetch listing feed: %w", err)
	}
	if resp.StatusCode() != 200 {
		return nil, fmt.Errorf("listing feed status %d", resp.StatusCode())
	}
	return parsePipeText(resp.String(), symbolKeys, exchangeKeys, defaultExchange), nil
}

// parsePipeText maps each data line against the header, dropping malformed
// lines and test issues.
func parsePipeText(text string, symbolKeys, exchangeKeys []string, defaultExchange string) []domain.ListingRow {
	var lines []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			lines = append(lines, line)
		}
	}
	if len(lines) < 2 {
		return nil
	}

	header := strings.Split(lines[0], "|")
	var rows []domain.ListingRow
	for _, line := range lines[1:] {
		if strings.HasPrefix(line, "File Creation Time") {
			continue
		}
		parts := strings.Split(line, "|")
		if len(parts) != len(header) {
			continue
		}
		row := make(map[string]string, len(header))
		for i, key := range header {
			row[key] = parts[i]
		}
		if row["Test Issue"] == "Y" {
			continue
		}

		symbol := ""
		for _, key := range symbolKeys {
			if v := strings.TrimSpace(row[key]); v != "" {
				symbol = v
				break
			}
		}
		if symbol == "" {
			continue
		}

		exchange := defaultExchange
		for _, key := range exchangeKeys {
			if v := strings.TrimSpace(row[key]); v != "" {
				exchange = v
				break
			}
		}

		etf := strings.TrimSpace(row["ETF"])
		if etf == "" {
			etf = strings.TrimSpace(row["Etf"])
		}

		rows = append(rows, domain.ListingRow{
			Symbol:   symbol,
			Exchange: exchange,
			IsETF:    strings.EqualFold(etf, "Y"),
		})
	}
	return rows
}
