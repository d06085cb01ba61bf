// Package progress aggregates completion and submission timestamps into a
// trailing twelve-week histogram.
package progress

import (
	"time"

	"github.com/okian/applytrack/internal/domain/dates"
	"github.com/okian/applytrack/internal/domain/types"
)

const (
	// Weeks is the fixed length of the series.
	Weeks = 12
	// LookbackDays reaches back to the start of the oldest week.
	LookbackDays = (Weeks - 1) * dates.DaysPerWeek
)

// Point is one week of the histogram.
type Point struct {
	Week                  string `json:"week"`
	WeekStart             string `json:"week_start"`
	TasksCompleted        int    `json:"tasks_completed"`
	ApplicationsSubmitted int    `json:"applications_submitted"`
}

// Window is the instant callers pre-filter timestamps from.
func Window(now time.Time) time.Time {
	return dates.StartOfDay(dates.AddDays(now, -LookbackDays))
}

// Keys returns the twelve week-start dates ending with now's week, oldest first.
func Keys(now time.Time) []string {
	start := Window(now)
	keys := make([]string, Weeks)
	for i := range Weeks {
		keys[i] = dates.WeekStartISO(dates.AddDays(start, i*dates.DaysPerWeek))
	}
	return keys
}

// Result is the histogram plus the number of dropped timestamps.
type Result struct {
	Points  []Point
	Ignored int
}

// Weekly builds the histogram. Timestamps are read in now's location;
// those outside the twelve weeks are dropped. A zero now is rejected.
func Weekly(now time.Time, completions, submissions []time.Time) ([]Point, error) {
	res, err := Aggregate(now, completions, submissions)
	if err != nil {
		return nil, err
	}
	return res.Points, nil
}

// Aggregate is Weekly that also reports how many timestamps were dropped.
func Aggregate(now time.Time, completions, submissions []time.Time) (Result, error) {
	if now.IsZero() {
		return Result{}, types.Invalid("progress.Aggregate", "missing reference date")
	}
	keys := Keys(now)
	index := make(map[string]int, Weeks)
	points := make([]Point, Weeks)
	for i, k := range keys {
		index[k] = i
		label, _ := dates.FormatWeekLabel(k)
		points[i] = Point{Week: label, WeekStart: k}
	}

	loc := now.Location()
	ignored := 0
	for _, ts := range completions {
		i, ok := index[dates.WeekStartISO(ts.In(loc))]
		if !ok || ts.IsZero() {
			ignored++
			continue
		}
		points[i].TasksCompleted++
	}
	for _, ts := range submissions {
		i, ok := index[dates.WeekStartISO(ts.In(loc))]
		if !ok || ts.IsZero() {
			ignored++
			continue
		}
		points[i].ApplicationsSubmitted++
	}
	return Result{Points: points, Ignored: ignored}, nil
}
