package newsintel

// KnownTickers returns the default large-cap US ticker set used for
// headline matching. Boundary matching against an open vocabulary produces
// too many false positives (words like "A" or "ALL"), so extraction is
// restricted to a curated list.
func KnownTickers() []string {
	return []string{
		// Tech
		"AAPL", "MSFT", "GOOGL", "GOOG", "AMZN", "META", "NVDA", "TSLA", "AMD", "INTC",
		"ORCL", "CRM", "ADBE", "CSCO", "IBM", "QCOM", "TXN", "AVGO", "NOW", "SNOW",
		"PANW", "CRWD", "NET", "DDOG", "ZS", "MDB", "TEAM", "WDAY", "OKTA", "SPLK",
		// Finance
		"JPM", "BAC", "WFC", "GS", "MS", "C", "BLK", "AXP", "V", "MA", "PYPL", "SQ",
		// Consumer
		"WMT", "TGT", "COST", "HD", "LOW", "NKE", "SBUX", "MCD", "DIS", "CMCSA",
		// Healthcare
		"JNJ", "UNH", "PFE", "ABBV", "MRK", "LLY", "TMO", "ABT", "DHR", "BMY",
		// Energy
		"XOM", "CVX", "COP", "SLB", "EOG", "MPC", "PSX", "VLO",
		// Industrial
		"BA", "CAT", "GE", "HON", "UPS", "RTX", "LMT", "DE", "MMM",
		// Index and broad ETFs
		"BRK.B", "BRK.A", "SPY", "QQQ", "IWM", "DIA", "VOO", "VTI", "ARKK",
		// Chinese ADRs
		"BABA", "JD", "PDD", "BIDU", "NIO", "XPEV", "LI", "BILI", "TAL", "EDU",
		"NTES", "TME", "IQ", "HUYA", "DOYU", "MOMO", "YY", "BEKE",
	}
}
