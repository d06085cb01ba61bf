package seed

import (
	"context"
	"errors"
	"fmt"
)

// Verify reads the dashboards back and compares them with the plan. It
// returns how many checks ran. The owner must hold nothing but the plan.
func Verify(ctx context.Context, client *Client, plan *Plan) (int, error) {
	want := plan.Expect()
	var (
		checks int
		errs   []error
	)
	check := func(name string, got, expected int) {
		checks++
		if got != expected {
			errs = append(errs, fmt.Errorf("%s: got %d, want %d", name, got, expected))
		}
	}

	ov, err := client.GetOverview(ctx)
	if err != nil {
		return checks, err
	}
	check("overview colleges", ov.Colleges, want.Colleges)
	check("overview applications", ov.Applications, want.Applications)
	check("overview open tasks", ov.OpenTasks, want.OpenTasks)
	check("overview overdue", len(ov.Due.Overdue), want.Overdue)

	cal, err := client.GetCalendar(ctx, plan.Today[:7])
	if err != nil {
		return checks, err
	}
	check("calendar cells", len(cal.Days), 42)
	tasksDue, appsDue := 0, 0
	for _, d := range cal.Days {
		tasksDue += d.TasksDue
		appsDue += d.AppsDue
	}
	check("calendar tasks due", tasksDue, plan.OpenDuesBetween(cal.From, cal.To))
	check("calendar deadlines", appsDue, plan.DeadlinesBetween(cal.From, cal.To))

	if day, n := plan.BusiestOpenDay(); n > 0 {
		ag, err := client.GetAgenda(ctx, day)
		if err != nil {
			return checks, err
		}
		check("agenda tasks on "+day, len(ag.Tasks), n)
	}

	pr, err := client.GetProgress(ctx)
	if err != nil {
		return checks, err
	}
	check("progress weeks", len(pr.Points), 12)
	if len(pr.Points) > 0 {
		last := pr.Points[len(pr.Points)-1]
		check("progress completed this week", last.TasksCompleted, want.Completed)
		check("progress submitted this week", last.ApplicationsSubmitted, want.Submitted)
	}

	pins, err := client.GetMapPins(ctx)
	if err != nil {
		return checks, err
	}
	check("map pins", len(pins.Pins), want.Pins)
	check("map missing", len(pins.Missing), want.Missing)

	return checks, errors.Join(errs...)
}
