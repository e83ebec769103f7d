package domain

import "time"

// Bar is a single daily OHLCV observation.
type Bar struct {
	Date   time.Time `json:"date"`
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume float64   `json:"volume"`
}

// MarketContext carries index-level risk labels (QQQ posture + VIX).
type MarketContext struct {
	QQQPrice  float64   `json:"qqq_price"`
	QQQMA20   float64   `json:"qqq_ma20"`
	QQQRet5D  float64   `json:"qqq_ret_5d"`
	QQQRisk   RiskLevel `json:"qqq_risk"`
	VIXLevel  float64   `json:"vix_level"`
	VIXRisk   RiskLevel `json:"vix_risk"`
	FetchedAt time.Time `json:"fetched_at"`
}

// Fundamentals holds the valuation and quality fields a feature snapshot
// carries. Missing values stay zero and are treated as neutral downstream.
type Fundamentals struct {
	PERatio        float64 `json:"pe_ratio"`
	MarketCap      float64 `json:"market_cap"`
	RevenueGrowth  float64 `json:"revenue_growth"`
	EarningsGrowth float64 `json:"earnings_growth"`
	ProfitMargins  float64 `json:"profit_margins"`
	ReturnOnEquity float64 `json:"return_on_equity"`
	DebtToEquity   float64 `json:"debt_to_equity"`
}

// FeatureSnapshot is the per-symbol price/technical feature set providers
// hand to the engine.
type FeatureSnapshot struct {
	Symbol        string        `json:"symbol"`
	Name          string        `json:"name,omitempty"`
	Sector        string        `json:"sector,omitempty"`
	Industry      string        `json:"industry,omitempty"`
	CurrentPrice  float64       `json:"current_price"`
	PreviousClose float64       `json:"previous_close"`
	ChangePercent float64       `json:"change_percent"`
	MA5           float64       `json:"ma5"`
	MA20          float64       `json:"ma20"`
	Trend         Trend         `json:"trend"`
	RSI14         float64       `json:"rsi14"`
	MACD          float64       `json:"macd"`
	MACDSignal    float64       `json:"macd_signal"`
	MACDHist      float64       `json:"macd_hist"`
	ATR14         float64       `json:"atr14"`
	ATRPct        float64       `json:"atr_pct"`
	Volatility20D float64       `json:"volatility_20d"`
	DataQuality   float64       `json:"data_quality"`
	Fundamentals  Fundamentals  `json:"fundamentals"`
	Market        MarketContext `json:"market_context"`
}

// NewsItem is one headline handed to the engine by the news provider.
type NewsItem struct {
	Title       string    `json:"title"`
	Source      string    `json:"source"`
	Summary     string    `json:"summary,omitempty"`
	Link        string    `json:"link,omitempty"`
	PublishedAt time.Time `json:"published_at,omitempty"`
}

// SocialSentiment is the aggregate the social provider produces.
type SocialSentiment struct {
	BullishPct float64 `json:"bullish_pct"`
	BearishPct float64 `json:"bearish_pct"`
	Total      int     `json:"total"`
}

// AnalysisContext is the shared read-only input every agent sees. It is
// assembled once per request by external providers; absent sections are nil.
type AnalysisContext struct {
	Symbol   string
	Features *FeatureSnapshot
	News     []NewsItem
	Social   *SocialSentiment
	History  []Bar
}

// HasPriceHistory reports whether enough daily bars exist for the
// statistical agents (anomaly, liquidity).
func (c *AnalysisContext) HasPriceHistory(minBars int) bool {
	return c != nil && len(c.History) >= minBars
}

// HasFeatures reports whether a price-feature snapshot is attached.
func (c *AnalysisContext) HasFeatures() bool {
	return c != nil && c.Features != nil
}

// HasNews reports whether any headlines are attached.
func (c *AnalysisContext) HasNews() bool {
	return c != nil && len(c.News) > 0
}

// HasSocial reports whether a social aggregate is attached.
func (c *AnalysisContext) HasSocial() bool {
	return c != nil && c.Social != nil
}
