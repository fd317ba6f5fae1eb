package contracts

// MarketOverview is the externally supplied market context for one day.
type MarketOverview struct {
	NasdaqTrendBias     string `json:"nasdaq_trend_bias"`
	TechSectorSentiment string `json:"tech_sector_sentiment"`
}

// EarningsWatchItem is one upcoming or recent earnings event.
type EarningsWatchItem struct {
	Ticker       string `json:"ticker"`
	EarningsDate string `json:"earnings_date"`
	Window       string `json:"window"`
}

// StrategyNotes is the free-form evolution digest surfaced on the dashboard.
type StrategyNotes struct {
	Worked string `json:"worked"`
	Failed string `json:"failed"`
}

// ScannerPayload is the daily scanner document. It arrives with the stock
// batch and market context, and is re-emitted enriched with the day's sanity
// and trend results for the dashboard.
type ScannerPayload struct {
	ReportDate             string              `json:"report_date"`
	Stocks                 []AnalysisInput     `json:"stocks"`
	MarketOverview         MarketOverview      `json:"market_overview"`
	EarningsWatchlist      []EarningsWatchItem `json:"earnings_watchlist"`
	StrategyEvolutionNotes StrategyNotes       `json:"strategy_evolution_notes"`
	SanityReport           *SanityReport       `json:"sanity_report,omitempty"`
	HealthControls         *HealthControls     `json:"health_controls,omitempty"`
	HealthTrend            *HealthTrend        `json:"health_trend,omitempty"`
}
