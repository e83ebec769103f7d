package domain

import "time"

// ListingRow is one raw row from a listing feed, prior to normalization.
type ListingRow struct {
	Symbol   string
	Exchange string
	IsETF    bool
}

// UniverseEntry is one validated, deduplicated listing row.
type UniverseEntry struct {
	Symbol   string `json:"symbol"`
	Exchange string `json:"exchange"`
	IsETF    bool   `json:"is_etf"`
}

// PrefilterRow is one survivor of the liquidity/momentum screen.
type PrefilterRow struct {
	Symbol            string  `json:"symbol"`
	Price             float64 `json:"price"`
	AvgDollarVolume20 float64 `json:"avg_dollar_volume_20"`
	Ret20Pct          float64 `json:"ret20_pct"`
	Ret5Pct           float64 `json:"ret5_pct"`
	Vol20Pct          float64 `json:"vol20_pct"`
	Score             float64 `json:"prefilter_score"`
}

// CandidateScore is one fully scored scan candidate.
type CandidateScore struct {
	Symbol         string  `json:"symbol"`
	CompanyName    string  `json:"company_name,omitempty"`
	Sector         string  `json:"sector,omitempty"`
	Industry       string  `json:"industry,omitempty"`
	Signal         Signal  `json:"signal"`
	Technical      float64 `json:"technical_score"`
	Fundamental    float64 `json:"fundamental_score"`
	NewsSentiment  float64 `json:"news_sentiment_score"`
	SourceQuality  float64 `json:"source_quality_score"`
	PrefilterNorm  float64 `json:"prefilter_norm"`
	Composite      float64 `json:"composite_score"`
	Score100       float64 `json:"score_100"`
	NewsCount      int     `json:"news_count"`
	EntryPrice     float64 `json:"entry_price"`
	TargetPrice    float64 `json:"target_price"`
	BriefAnalysis  string  `json:"brief_analysis,omitempty"`
	RecommendNote  string  `json:"recommend_reason,omitempty"`
	EvidenceNews   []string `json:"evidence_news,omitempty"`
	PrefilterScore float64 `json:"prefilter_score"`
}

// ScanStats summarizes how many symbols survived each funnel stage.
type ScanStats struct {
	ScannedUniverse   int            `json:"scanned_universe"`
	Prefiltered       int            `json:"prefiltered"`
	Scored            int            `json:"scored"`
	FinalCount        int            `json:"final_count"`
	ExchangeBreakdown map[string]int `json:"exchange_breakdown,omitempty"`
	NewsFallback      bool           `json:"news_fallback,omitempty"`
}

// ScanResult is the universe scanner's output: one top pick plus a ranked
// watchlist, with funnel statistics. Never nil fields; an empty scan still
// carries stats.
type ScanResult struct {
	TopPick    *CandidateScore  `json:"top_pick,omitempty"`
	Watchlist  []CandidateScore `json:"watchlist"`
	Candidates []CandidateScore `json:"recommendations"`
	Signal     Signal           `json:"signal"`
	Confidence float64          `json:"confidence"`
	Stats      ScanStats        `json:"scan_stats"`
	Timestamp  time.Time        `json:"timestamp"`
}
