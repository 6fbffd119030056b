package analytics

import (
	"sort"

	"github.com/muh-hamada/german-telc-b1-sub000/shared"
)

// BuildSeries projects one metric out of an ascending snapshot list into a
// date-ordered series. Dates with no snapshot are simply absent; there is no
// gap filling. Missing nested fields project to 0.
func BuildSeries(snapshots []shared.DailySnapshotDocument, metric shared.MetricKey) []shared.TrendPoint {
	series := make([]shared.TrendPoint, 0, len(snapshots))
	for _, snap := range snapshots {
		series = append(series, shared.TrendPoint{
			Date:  snap.Date,
			Value: metricValue(snap.Data, metric),
		})
	}
	sort.Slice(series, func(i, j int) bool {
		return series[i].Date < series[j].Date
	})
	return series
}

// MergeSeries sums per-app series for the same metric into one series. Dates
// present in only some apps still appear, with the missing apps contributing
// 0. Merging is commutative and associative; a single input is returned in
// the same date order with the same values.
func MergeSeries(perApp [][]shared.TrendPoint) []shared.TrendPoint {
	totals := make(map[string]int)
	for _, series := range perApp {
		for _, point := range series {
			totals[point.Date] += point.Value
		}
	}

	merged := make([]shared.TrendPoint, 0, len(totals))
	for date, value := range totals {
		merged = append(merged, shared.TrendPoint{Date: date, Value: value})
	}
	// YYYY-MM-DD is fixed width and zero padded, so lexical order is
	// chronological order.
	sort.Slice(merged, func(i, j int) bool {
		return merged[i].Date < merged[j].Date
	})
	return merged
}

func metricValue(data shared.AnalyticsData, metric shared.MetricKey) int {
	switch metric {
	case shared.MetricTotalUsers:
		return data.TotalUsers
	case shared.MetricActiveStreaks:
		return data.Streaks.ActiveStreaks
	case shared.MetricWordsStudied:
		return data.Vocabulary.TotalWordsStudied
	case shared.MetricExamsCompleted:
		return data.Progress.ExamsCompleted
	case shared.MetricNotificationsEnabled:
		return data.Notifications.Enabled
	case shared.MetricPremiumUsers:
		return data.Premium.Total
	}
	return 0
}
