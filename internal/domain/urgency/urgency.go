// Package urgency classifies due dates relative to today.
package urgency

import (
	"time"

	"github.com/okian/applytrack/internal/domain/dates"
	"github.com/okian/applytrack/internal/domain/model"
)

// Urgency is the tier of a due date.
type Urgency string

const (
	Overdue Urgency = "overdue"
	Soon    Urgency = "soon"
	Later   Urgency = "later"
)

// SoonDays is the last day offset still classified as Soon.
const SoonDays = 7

// ForDays classifies a signed day distance.
func ForDays(n int) Urgency {
	switch {
	case n < 0:
		return Overdue
	case n <= SoonDays:
		return Soon
	default:
		return Later
	}
}

// ForDue classifies iso relative to now's date.
func ForDue(now time.Time, iso string) (Urgency, error) {
	n, err := dates.DaysUntil(now, iso)
	if err != nil {
		return "", err
	}
	return ForDays(n), nil
}

// Bucket names the dashboard task lists.
type Bucket string

const (
	BucketOverdue Bucket = "overdue"
	BucketWeek    Bucket = "week"
	BucketMonth   Bucket = "month"
)

// BucketTitle is the heading shown above a bucket.
func BucketTitle(b Bucket) string {
	switch b {
	case BucketOverdue:
		return "Overdue"
	case BucketWeek:
		return "Due in 7 days"
	case BucketMonth:
		return "Due in 30 days"
	default:
		return string(b)
	}
}

// Windows bounds the week and month buckets in days from today.
type Windows struct {
	Week  int
	Month int
}

// DefaultWindows matches the dashboard headings.
var DefaultWindows = Windows{Week: 7, Month: 30}

// Buckets holds open tasks split by due date, each in input order.
type Buckets struct {
	Overdue []model.Task `json:"overdue"`
	Week    []model.Task `json:"week"`
	Month   []model.Task `json:"month"`
}

// Total is the number of bucketed tasks.
func (b Buckets) Total() int {
	return len(b.Overdue) + len(b.Week) + len(b.Month)
}

// Bucketize splits tasks using DefaultWindows.
func Bucketize(now time.Time, tasks []model.Task) Buckets {
	return BucketizeWithin(now, tasks, DefaultWindows)
}

// BucketizeWithin splits open tasks with a due date into overdue (before
// today), week (today .. today+w.Week) and month (up to today+w.Month).
// Done tasks, tasks without a due date, unparsable dates and dates past
// the month window are skipped.
func BucketizeWithin(now time.Time, tasks []model.Task, w Windows) Buckets {
	out := Buckets{
		Overdue: []model.Task{},
		Week:    []model.Task{},
		Month:   []model.Task{},
	}
	if now.IsZero() {
		return out
	}
	for _, t := range tasks {
		if t.Done || t.DueDate == nil {
			continue
		}
		n, err := dates.DaysUntil(now, *t.DueDate)
		if err != nil {
			continue
		}
		switch {
		case n < 0:
			out.Overdue = append(out.Overdue, t)
		case n <= w.Week:
			out.Week = append(out.Week, t)
		case n <= w.Month:
			out.Month = append(out.Month, t)
		}
	}
	return out
}
