package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"go.opentelemetry.io/otel/trace"

	"github.com/ZenKaiii/ai-stock-analyst/internal/cache"
	"github.com/ZenKaiii/ai-stock-analyst/internal/domain"
	"github.com/ZenKaiii/ai-stock-analyst/internal/ta"
)

const yahooBaseURL = "https://query1.finance.yahoo.com"

// YahooProvider serves daily bars, feature snapshots and the index-level
// market context from the Yahoo Finance public endpoints. Snapshots and the
// market context are cached; bars are fetched fresh for the funnel.
type YahooProvider struct {
	client    *http.Client
	baseURL   string
	tracer    trace.Tracer
	limiter   *RateLimiter
	snapshots *cache.TTL
	market    *cache.TTL
}

// NewYahooProvider wires the provider with built-in rate limiting (120
// requests per minute). Caches may be nil to disable caching.
func NewYahooProvider(tracer trace.Tracer, snapshots, market *cache.TTL) *YahooProvider {
	return &YahooProvider{
		client:    &http.Client{Timeout: 20 * time.Second},
		baseURL:   yahooBaseURL,
		tracer:    tracer,
		limiter:   NewRateLimiter(120, 500*time.Millisecond),
		snapshots: snapshots,
		market:    market,
	}
}

// DailyBars fetches daily OHLCV history covering roughly the given number
// of calendar days.
func (p *YahooProvider) DailyBars(ctx context.Context, symbol string, days int) ([]domain.Bar, error) {
	_, span := p.tracer.Start(ctx, "yahoo.daily-bars")
	defer span.End()

	rng := "3mo"
	switch {
	case days > 270:
		rng = "1y"
	case days > 95:
		rng = "6mo"
	}

	endpoint := fmt.Sprintf("%s/v8/finance/chart/%s?range=%s&interval=1d",
		p.baseURL, url.PathEscape(symbol), rng)
	body, err := p.doRequest(ctx, endpoint)
	if err != nil {
		return nil, fmt.Errorf("fetch bars for %s: %w", symbol, err)
	}

	var raw struct {
		Chart struct {
			Result []struct {
				Timestamp  []int64 `json:"timestamp"`
				Indicators struct {
					Quote []struct {
						Open   []float64 `json:"open"`
						High   []float64 `json:"high"`
						Low    []float64 `json:"low"`
						Close  []float64 `json:"close"`
						Volume []float64 `json:"volume"`
					} `json:"quote"`
				} `json:"indicators"`
			} `json:"result"`
			Error *struct {
				Description string `json:"description"`
			} `json:"error"`
		} `json:"chart"`
	}
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("parse bars for %s: %w", symbol, err)
	}
	if raw.Chart.Error != nil {
		return nil, fmt.Errorf("chart error for %s: %s", symbol, raw.Chart.Error.Description)
	}
	if len(raw.Chart.Result) == 0 || len(raw.Chart.Result[0].Indicators.Quote) == 0 {
		return nil, fmt.Errorf("no chart data for %s", symbol)
	}

	result := raw.Chart.Result[0]
	quote := result.Indicators.Quote[0]
	bars := make([]domain.Bar, 0, len(result.Timestamp))
	for i, ts := range result.Timestamp {
		if i >= len(quote.Close) || quote.Close[i] <= 0 {
			continue
		}
		bars = append(bars, domain.Bar{
			Date:   time.Unix(ts, 0).UTC(),
			Open:   at(quote.Open, i),
			High:   at(quote.High, i),
			Low:    at(quote.Low, i),
			Close:  quote.Close[i],
			Volume: at(quote.Volume, i),
		})
	}
	return bars, nil
}

// Snapshot builds the full feature snapshot: six months of bars for the
// indicator set, plus fundamentals and the shared market context.
func (p *YahooProvider) Snapshot(ctx context.Context, symbol string) (*domain.FeatureSnapshot, error) {
	ctx, span := p.tracer.Start(ctx, "yahoo.snapshot")
	defer span.End()

	var cached domain.FeatureSnapshot
	if err := p.snapshots.Get(ctx, symbol, &cached); err == nil {
		return &cached, nil
	}

	bars, err := p.DailyBars(ctx, symbol, 180)
	if err != nil {
		return nil, err
	}
	snapshot := ta.BuildFeatures(symbol, bars)

	if profile, err := p.fetchProfile(ctx, symbol); err == nil {
		snapshot.Name = profile.name
		snapshot.Sector = profile.sector
		snapshot.Industry = profile.industry
		snapshot.Fundamentals = profile.fundamentals
	}
	if mc, err := p.MarketContext(ctx); err == nil {
		snapshot.Market = mc
	}

	_ = p.snapshots.Set(ctx, symbol, snapshot)
	return &snapshot, nil
}

// MarketContext derives index-level risk labels from QQQ posture and the
// VIX, cached for its TTL so a scan hits the network once.
func (p *YahooProvider) MarketContext(ctx context.Context) (domain.MarketContext, error) {
	ctx, span := p.tracer.Start(ctx, "yahoo.market-context")
	defer span.End()

	var cached domain.MarketContext
	if err := p.market.Get(ctx, "qqq-vix", &cached); err == nil {
		return cached, nil
	}

	qqq, err := p.DailyBars(ctx, "QQQ", 90)
	if err != nil {
		return domain.MarketContext{}, err
	}
	vix, err := p.DailyBars(ctx, "^VIX", 90)
	if err != nil {
		return domain.MarketContext{}, err
	}

	closes := make([]float64, len(qqq))
	for i, b := range qqq {
		closes[i] = b.Close
	}

	mc := domain.MarketContext{FetchedAt: time.Now().UTC(), QQQRisk: domain.RiskLow, VIXRisk: domain.RiskLow}
	if len(closes) > 0 {
		mc.QQQPrice = closes[len(closes)-1]
	}
	if len(closes) >= 20 {
		mc.QQQMA20 = ta.SMA(closes, 20)
	}
	if len(closes) >= 6 {
		mc.QQQRet5D = (closes[len(closes)-1]/closes[len(closes)-6] - 1) * 100
	}
	if len(vix) > 0 {
		mc.VIXLevel = vix[len(vix)-1].Close
	}

	if mc.QQQPrice > 0 && mc.QQQMA20 > 0 {
		switch {
		case mc.QQQPrice < mc.QQQMA20 && mc.QQQRet5D < -2:
			mc.QQQRisk = domain.RiskHigh
		case mc.QQQPrice < mc.QQQMA20 || mc.QQQRet5D < -1:
			mc.QQQRisk = domain.RiskMedium
		}
	}
	switch {
	case mc.VIXLevel >= 24:
		mc.VIXRisk = domain.RiskHigh
	case mc.VIXLevel >= 20:
		mc.VIXRisk = domain.RiskMedium
	}

	_ = p.market.Set(ctx, "qqq-vix", mc)
	return mc, nil
}

type companyProfile struct {
	name         string
	sector       string
	industry     string
	fundamentals domain.Fundamentals
}

// fetchProfile pulls valuation and quality fields from the quoteSummary
// endpoint. Missing modules leave their fields zero.
func (p *YahooProvider) fetchProfile(ctx context.Context, symbol string) (companyProfile, error) {
	endpoint := fmt.Sprintf("%s/v10/finance/quoteSummary/%s?modules=price,assetProfile,summaryDetail,financialData",
		p.baseURL, url.PathEscape(symbol))
	body, err := p.doRequest(ctx, endpoint)
	if err != nil {
		return companyProfile{}, err
	}

	type rawValue struct {
		Raw float64 `json:"raw"`
	}
	var raw struct {
		QuoteSummary struct {
			Result []struct {
				Price struct {
					LongName string `json:"longName"`
				} `json:"price"`
				AssetProfile struct {
					Sector   string `json:"sector"`
					Industry string `json:"industry"`
				} `json:"assetProfile"`
				SummaryDetail struct {
					TrailingPE rawValue `json:"trailingPE"`
					MarketCap  rawValue `json:"marketCap"`
				} `json:"summaryDetail"`
				FinancialData struct {
					RevenueGrowth  rawValue `json:"revenueGrowth"`
					EarningsGrowth rawValue `json:"earningsGrowth"`
					ProfitMargins  rawValue `json:"profitMargins"`
					ReturnOnEquity rawValue `json:"returnOnEquity"`
					DebtToEquity   rawValue `json:"debtToEquity"`
				} `json:"financialData"`
			} `json:"result"`
		} `json:"quoteSummary"`
	}
	if err := json.Unmarshal(body, &raw); err != nil {
		return companyProfile{}, fmt.Errorf("parse profile for %s: %w", symbol, err)
	}
	if len(raw.QuoteSummary.Result) == 0 {
		return companyProfile{}, fmt.Errorf("no profile data for %s", symbol)
	}

	r := raw.QuoteSummary.Result[0]
	return companyProfile{
		name:     r.Price.LongName,
		sector:   r.AssetProfile.Sector,
		industry: r.AssetProfile.Industry,
		fundamentals: domain.Fundamentals{
			PERatio:        r.SummaryDetail.TrailingPE.Raw,
			MarketCap:      r.SummaryDetail.MarketCap.Raw,
			RevenueGrowth:  r.FinancialData.RevenueGrowth.Raw,
			EarningsGrowth: r.FinancialData.EarningsGrowth.Raw,
			ProfitMargins:  r.FinancialData.ProfitMargins.Raw,
			ReturnOnEquity: r.FinancialData.ReturnOnEquity.Raw,
			DebtToEquity:   r.FinancialData.DebtToEquity.Raw,
		},
	}, nil
}

func (p *YahooProvider) doRequest(ctx context.Context, endpoint string) ([]byte, error) {
	if err := p.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (compatible; stock-analyst/1.0)")
	req.Header.Set("Accept", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("yahoo status %d: %s", resp.StatusCode, string(body))
	}
	return io.ReadAll(resp.Body)
}

func at(values []float64, i int) float64 {
	if i < len(values) {
		return values[i]
	}
	return 0
}
