package health

import (
	"math"
	"sort"
	"time"

	"github.com/wonny/vigil/internal/contracts"
)

// healthyScoreThreshold is the floor a day must reach to count as healthy
// for recovery-time purposes.
const healthyScoreThreshold = 85

const (
	shortWindow     = 5
	longWindow      = 20
	slopeWindow     = 7
	rootCauseTopN   = 5
	rootCauseWindow = 20
)

// ComputeTrend derives the stateless trend view over the stored history:
// moving averages, slope, violation density, recovery time, root causes.
func ComputeTrend(history []contracts.HealthHistoryEntry) contracts.HealthTrend {
	scores := make([]int, 0, len(history))
	for _, row := range history {
		scores = append(scores, row.HealthScore)
	}

	return contracts.HealthTrend{
		MovingAverage5D:     movingAverage(scores, shortWindow),
		MovingAverage20D:    movingAverage(scores, longWindow),
		Slope7D:             slope(tail(scores, slopeWindow)),
		ViolationDensity5D:  violationDensity(history, shortWindow),
		ViolationDensity20D: violationDensity(history, longWindow),
		RecoveryTimeDays:    recoveryTimeDays(history),
		RootCauseSummary:    rootCauseSummary(history, rootCauseWindow),
	}
}

func tail(values []int, window int) []int {
	if len(values) <= window {
		return values
	}
	return values[len(values)-window:]
}

// movingAverage is the mean of the last window scores, nil on empty history.
func movingAverage(scores []int, window int) *float64 {
	if len(scores) == 0 {
		return nil
	}
	windowed := tail(scores, window)
	sum := 0
	for _, v := range windowed {
		sum += v
	}
	avg := roundTo(float64(sum)/float64(len(windowed)), 2)
	return &avg
}

// slope is (last-first)/(n-1) over the given points: a linear trend
// estimate, not a regression. Nil with fewer than two points.
func slope(values []int) *float64 {
	if len(values) < 2 {
		return nil
	}
	s := roundTo(float64(values[len(values)-1]-values[0])/float64(len(values)-1), 3)
	return &s
}

// violationDensity is violations per stock over the trailing window.
func violationDensity(history []contracts.HealthHistoryEntry, window int) *float64 {
	if len(history) == 0 {
		return nil
	}

	windowed := history
	if len(windowed) > window {
		windowed = windowed[len(windowed)-window:]
	}

	totalViolations := 0
	totalStocks := 0
	for _, row := range windowed {
		totalViolations += row.ViolationCount
		totalStocks += row.StockCount
	}

	density := 0.0
	if totalStocks > 0 {
		density = roundTo(float64(totalViolations)/float64(totalStocks), 3)
	}
	return &density
}

// recoveryTimeDays is the day gap between the latest entry and the most
// recent entry (latest included) whose score reached the healthy threshold.
func recoveryTimeDays(history []contracts.HealthHistoryEntry) *int {
	if len(history) == 0 {
		return nil
	}

	latestDate, err := time.Parse(dateLayout, history[len(history)-1].Date)
	if err != nil {
		return nil
	}

	for i := len(history) - 1; i >= 0; i-- {
		if history[i].HealthScore < healthyScoreThreshold {
			continue
		}
		healthyDate, err := time.Parse(dateLayout, history[i].Date)
		if err != nil {
			return nil
		}
		days := int(latestDate.Sub(healthyDate).Hours() / 24)
		return &days
	}
	return nil
}

// rootCauseSummary tallies every violation string over the trailing window
// and returns the top entries by count, ties broken by first appearance.
func rootCauseSummary(history []contracts.HealthHistoryEntry, window int) []contracts.ViolationTally {
	if len(history) == 0 {
		return []contracts.ViolationTally{}
	}

	windowed := history
	if len(windowed) > window {
		windowed = windowed[len(windowed)-window:]
	}

	counts := make(map[string]int)
	firstSeen := make([]string, 0)
	for _, row := range windowed {
		for _, item := range row.ViolationsByTicker {
			for _, violation := range item.Violations {
				if _, ok := counts[violation]; !ok {
					firstSeen = append(firstSeen, violation)
				}
				counts[violation]++
			}
		}
	}

	ranked := make([]contracts.ViolationTally, 0, len(firstSeen))
	for _, violation := range firstSeen {
		ranked = append(ranked, contracts.ViolationTally{Violation: violation, Count: counts[violation]})
	}

	// Stable sort keeps first-seen order on equal counts.
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Count > ranked[j].Count
	})

	if len(ranked) > rootCauseTopN {
		ranked = ranked[:rootCauseTopN]
	}
	return ranked
}

func roundTo(value float64, decimals int) float64 {
	factor := math.Pow(10, float64(decimals))
	return math.Round(value*factor) / factor
}
