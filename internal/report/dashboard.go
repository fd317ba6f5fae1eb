package report

import (
	"fmt"
	"sort"
	"strings"

	"github.com/wonny/vigil/internal/contracts"
)

const topOpportunityCount = 5

// GenerateDashboard renders the compact one-page markdown dashboard that is
// attached to the daily email. Sections always appear in the same order so
// day-over-day diffs stay readable.
func GenerateDashboard(payload contracts.ScannerPayload, results []contracts.AnalysisResult) string {
	ordered := sortByScoreDesc(results)

	topPicks := ordered
	if len(topPicks) > topOpportunityCount {
		topPicks = topPicks[:topOpportunityCount]
	}

	highRisk := []contracts.AnalysisResult{}
	for _, row := range results {
		if row.RiskLevel == contracts.RiskHigh {
			highRisk = append(highRisk, row)
		}
	}

	var b strings.Builder
	b.WriteString("# Daily NASDAQ Scanner Dashboard\n")
	fmt.Fprintf(&b, "Date: %s\n", payload.ReportDate)

	b.WriteString("\n## Market Overview\n")
	fmt.Fprintf(&b, "- NASDAQ trend bias: %s\n", orNA(payload.MarketOverview.NasdaqTrendBias))
	fmt.Fprintf(&b, "- Tech sector sentiment: %s\n", orNA(payload.MarketOverview.TechSectorSentiment))

	if payload.SanityReport != nil {
		b.WriteString("\n## System Health Score\n")
		fmt.Fprintf(&b, "- Health Score: %d/100\n", payload.SanityReport.HealthScore)
		fmt.Fprintf(&b, "- Daily sanity violations: %d\n", payload.SanityReport.ViolationCount)
		if payload.HealthControls != nil {
			fmt.Fprintf(&b, "- Health guard active: %t\n", payload.HealthControls.HealthGuardActive)
			fmt.Fprintf(&b, "- BUY recommendations downgraded: %d\n", payload.HealthControls.BuyRecommendationsDowngraded)
		}
	}

	if payload.HealthTrend != nil {
		trend := payload.HealthTrend
		b.WriteString("\n## Health Trend\n")
		fmt.Fprintf(&b, "- 5d moving average: %s\n", formatFloat(trend.MovingAverage5D))
		fmt.Fprintf(&b, "- 20d moving average: %s\n", formatFloat(trend.MovingAverage20D))
		fmt.Fprintf(&b, "- 7d slope: %s\n", formatFloat(trend.Slope7D))
		fmt.Fprintf(&b, "- 5d violation density: %s\n", formatFloat(trend.ViolationDensity5D))
		fmt.Fprintf(&b, "- 20d violation density: %s\n", formatFloat(trend.ViolationDensity20D))
		fmt.Fprintf(&b, "- Recovery time (days): %s\n", formatInt(trend.RecoveryTimeDays))
		if len(trend.RootCauseSummary) > 0 {
			b.WriteString("- Top root causes:\n")
			for _, item := range trend.RootCauseSummary {
				fmt.Fprintf(&b, "  - %s: %d\n", item.Violation, item.Count)
			}
		}
	}

	b.WriteString("\n## Top Opportunities\n")
	if len(topPicks) > 0 {
		for _, row := range topPicks {
			fmt.Fprintf(&b, "- %s: score %d, rating %s, target $%v, expected return %v%%\n",
				row.Ticker, row.Score, row.Rating, row.TargetPrice, row.ExpectedReturnPct)
		}
	} else {
		b.WriteString("- No opportunities available.\n")
	}

	b.WriteString("\n## High-Risk Alerts\n")
	if len(highRisk) > 0 {
		for _, row := range highRisk {
			fmt.Fprintf(&b, "- %s: score %d, rating %s, risk %s\n",
				row.Ticker, row.Score, row.Rating, row.RiskLevel)
		}
	} else {
		b.WriteString("- No high-risk alerts detected.\n")
	}

	b.WriteString("\n## Earnings Watchlist\n")
	if len(payload.EarningsWatchlist) > 0 {
		for _, item := range payload.EarningsWatchlist {
			fmt.Fprintf(&b, "- %s: earnings date %s (%s)\n",
				orNA(item.Ticker), orNA(item.EarningsDate), orNA(item.Window))
		}
	} else {
		b.WriteString("- No earnings watchlist entries provided.\n")
	}

	b.WriteString("\n## Strategy Evolution Notes\n")
	fmt.Fprintf(&b, "- What worked recently: %s\n", orNA(payload.StrategyEvolutionNotes.Worked))
	fmt.Fprintf(&b, "- What failed: %s\n", orNA(payload.StrategyEvolutionNotes.Failed))

	return b.String()
}

// GenerateSummary produces the short plain-text digest used as the email body.
func GenerateSummary(results []contracts.AnalysisResult) string {
	if len(results) == 0 {
		return "No stocks analyzed for this run."
	}

	ordered := sortByScoreDesc(results)
	top := ordered[0]
	return fmt.Sprintf("Analyzed %d stocks. Top pick: %s (score %d, rating %s, expected return %v%%).",
		len(results), top.Ticker, top.Score, top.Rating, top.ExpectedReturnPct)
}

func sortByScoreDesc(results []contracts.AnalysisResult) []contracts.AnalysisResult {
	ordered := make([]contracts.AnalysisResult, len(results))
	copy(ordered, results)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Score > ordered[j].Score
	})
	return ordered
}

func orNA(value string) string {
	if value == "" {
		return "N/A"
	}
	return value
}

func formatFloat(value *float64) string {
	if value == nil {
		return "N/A"
	}
	return strings.TrimRight(strings.TrimRight(fmt.Sprintf("%.3f", *value), "0"), ".")
}

func formatInt(value *int) string {
	if value == nil {
		return "N/A"
	}
	return fmt.Sprintf("%d", *value)
}
