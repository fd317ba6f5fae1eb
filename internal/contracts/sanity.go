package contracts

// StockViolations lists sanity violations and penalty for a single stock.
type StockViolations struct {
	Ticker     string   `json:"ticker"`
	Violations []string `json:"violations"`
	Penalty    int      `json:"penalty"`
}

// SanityReport is the aggregate result of a day's sanity evaluation.
// Derived per batch, never stored independently of the day's snapshot.
type SanityReport struct {
	HealthScore    int               `json:"health_score"`
	MaxHealthScore int               `json:"max_health_score"`
	TotalPenalty   int               `json:"total_penalty"`
	ViolationCount int               `json:"violation_count"`
	PerStock       []StockViolations `json:"per_stock"`
}

// HealthControls reports what the health guard did to a batch.
type HealthControls struct {
	HealthGuardActive            bool          `json:"health_guard_active"`
	BuyRecommendationsDowngraded int           `json:"buy_recommendations_downgraded"`
	Policy                       ControlPolicy `json:"policy"`
}

// ControlPolicy echoes the thresholds the guard enforced.
type ControlPolicy struct {
	BlockBuyBelowHealthScore int `json:"block_buy_below_health_score"`
}

// TickerViolations is the per-ticker violation list persisted in history.
type TickerViolations struct {
	Ticker     string   `json:"ticker"`
	Violations []string `json:"violations"`
}

// HealthHistoryEntry is one daily health snapshot. Date is an ISO calendar
// date and the unique key: re-running for the same date replaces the entry.
type HealthHistoryEntry struct {
	Date               string             `json:"date"`
	HealthScore        int                `json:"health_score"`
	ViolationCount     int                `json:"violation_count"`
	StockCount         int                `json:"stock_count"`
	ViolationsByTicker []TickerViolations `json:"violations_by_ticker"`
}

// ViolationTally is one ranked root-cause entry.
type ViolationTally struct {
	Violation string `json:"violation"`
	Count     int    `json:"count"`
}

// HealthTrend is the derived, stateless view over the health history.
// Nil pointers mean the metric is undefined for the available history.
type HealthTrend struct {
	MovingAverage5D     *float64         `json:"moving_average_5d"`
	MovingAverage20D    *float64         `json:"moving_average_20d"`
	Slope7D             *float64         `json:"slope_7d"`
	ViolationDensity5D  *float64         `json:"violation_density_5d"`
	ViolationDensity20D *float64         `json:"violation_density_20d"`
	RecoveryTimeDays    *int             `json:"recovery_time_days"`
	RootCauseSummary    []ViolationTally `json:"root_cause_summary"`
}
