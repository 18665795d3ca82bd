package domain

import (
	"sort"
	"time"
)

// Score bounds for a sleepiness rating, inclusive.
const (
	MinScore = 1
	MaxScore = 10
)

// Record represents a single self-reported sleepiness score. Records are
// append-only: once written they are never updated or deleted.
type Record struct {
	ID        int64
	UserID    int64
	Timestamp time.Time
	Score     float64
}

// HourlyAverage is the mean score for one hour of day (0-23).
type HourlyAverage struct {
	Hour  int
	Score float64
}

// ValidScore reports whether a score lies within the accepted range.
// NaN fails both comparisons and is rejected.
func ValidScore(score float64) bool {
	return score >= MinScore && score <= MaxScore
}

// AverageByHour groups records by UTC hour of day and computes the arithmetic
// mean score per hour. Hours with no records are absent from the result. The
// result is sorted ascending by hour so it can feed a chart x-axis directly.
func AverageByHour(records []Record) []HourlyAverage {
	sums := make(map[int]float64, 24)
	counts := make(map[int]int, 24)
	for _, rec := range records {
		hour := rec.Timestamp.UTC().Hour()
		sums[hour] += rec.Score
		counts[hour]++
	}

	averages := make([]HourlyAverage, 0, len(sums))
	for hour, sum := range sums {
		averages = append(averages, HourlyAverage{
			Hour:  hour,
			Score: sum / float64(counts[hour]),
		})
	}
	sort.Slice(averages, func(i, j int) bool { return averages[i].Hour < averages[j].Hour })
	return averages
}
