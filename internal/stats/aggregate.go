// Package stats implements the aggregation engine: pure computations over
// usage logs and streak rows, plus a service that fetches the windows and
// derives daily streak rows.
package stats

import (
	"math"
	"sort"
	"time"

	"github.com/Ufhano/Minimalist-App/internal/domain"
)

// Point is one bucket of the weekly series: a weekday label and the total
// usage minutes for that calendar day.
type Point struct {
	Label   string `json:"label"`
	Minutes int    `json:"minutes"`
}

// DayStart truncates t to UTC midnight.
func DayStart(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// roundToMinutes converts seconds to whole minutes, rounding to nearest.
func roundToMinutes(seconds int) int {
	return int(math.Round(float64(seconds) / 60.0))
}

// DailySeconds sums duration_seconds over logs whose opened_at falls on the
// UTC calendar day of `day`. Open logs contribute zero.
func DailySeconds(logs []domain.UsageLog, day time.Time) int {
	start := DayStart(day)
	end := start.Add(24 * time.Hour)

	var total int
	for _, log := range logs {
		opened := log.OpenedAt.UTC()
		if opened.Before(start) || !opened.Before(end) {
			continue
		}
		if log.DurationSeconds != nil {
			total += *log.DurationSeconds
		}
	}
	return total
}

// DailyTotalMinutes is the day's usage in whole minutes, rounded once at the
// end rather than per record.
func DailyTotalMinutes(logs []domain.UsageLog, day time.Time) int {
	return roundToMinutes(DailySeconds(logs, day))
}

// WeeklySeries buckets the 7 calendar days ending at reference, oldest
// first. Labels are the true weekday abbreviations, so the axis stays
// correct across week boundaries. Days without logs produce a zero bucket.
func WeeklySeries(logs []domain.UsageLog, reference time.Time) []Point {
	ref := DayStart(reference)
	series := make([]Point, 0, 7)
	for i := 6; i >= 0; i-- {
		day := ref.AddDate(0, 0, -i)
		series = append(series, Point{
			Label:   day.Weekday().String()[:3],
			Minutes: DailyTotalMinutes(logs, day),
		})
	}
	return series
}

// WeeklyAverageMinutes is the mean daily usage over the 7 days ending at
// reference. The week total is summed in seconds and rounded to minutes
// once, independently of per-day rounding, then divided by 7.
func WeeklyAverageMinutes(logs []domain.UsageLog, reference time.Time) int {
	ref := DayStart(reference)
	var totalSeconds int
	for i := 6; i >= 0; i-- {
		totalSeconds += DailySeconds(logs, ref.AddDate(0, 0, -i))
	}
	weekMinutes := roundToMinutes(totalSeconds)
	return int(math.Round(float64(weekMinutes) / 7.0))
}

// DeviationPercent is today's usage relative to the weekly average as a
// signed percentage, negative meaning under average. Zero average yields
// zero deviation.
func DeviationPercent(todayMinutes, averageMinutes int) int {
	if averageMinutes <= 0 {
		return 0
	}
	return int(math.Round(float64(todayMinutes-averageMinutes) / float64(averageMinutes) * 100.0))
}

// StreakLength counts consecutive goal-met days walking backwards from the
// most recent streak row. Counting stops at the first day the goal was
// missed and at the first gap in the date sequence: a day without a row
// ends the streak rather than being skipped over.
func StreakLength(streaks []domain.Streak) int {
	if len(streaks) == 0 {
		return 0
	}

	sorted := make([]domain.Streak, len(streaks))
	copy(sorted, streaks)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Date.After(sorted[j].Date)
	})

	count := 0
	var prev time.Time
	for i, streak := range sorted {
		if !streak.GoalMet {
			break
		}
		date := DayStart(streak.Date)
		if i > 0 && !date.Equal(prev.AddDate(0, 0, -1)) {
			break
		}
		count++
		prev = date
	}
	return count
}

// GoalMet reports whether a day's total stayed at or below the configured
// daily goal.
func GoalMet(totalMinutes, dailyGoalMinutes int) bool {
	return totalMinutes <= dailyGoalMinutes
}
