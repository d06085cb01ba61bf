package progress_test

import (
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/okian/applytrack/internal/domain/dates"
	"github.com/okian/applytrack/internal/domain/progress"
	"github.com/okian/applytrack/internal/domain/types"
	. "github.com/smartystreets/goconvey/convey"
)

func TestWeeklyExample(t *testing.T) {
	Convey("Given now is Monday 2024-06-10", t, func() {
		now := time.Date(2024, time.June, 10, 15, 0, 0, 0, time.UTC)
		completions := []time.Time{time.Date(2024, time.June, 11, 9, 0, 0, 0, time.UTC)}
		submissions := []time.Time{time.Date(2024, time.May, 28, 20, 0, 0, 0, time.UTC)}

		points, err := progress.Weekly(now, completions, submissions)
		So(err, ShouldBeNil)

		Convey("Then the series has twelve weeks ending with the current one", func() {
			So(len(points), ShouldEqual, progress.Weeks)
			So(points[0].WeekStart, ShouldEqual, "2024-03-25")
			So(points[0].Week, ShouldEqual, "3/25")
			So(points[11].WeekStart, ShouldEqual, "2024-06-10")
			So(points[11].Week, ShouldEqual, "6/10")
		})

		Convey("Then the two events land in distinct weeks", func() {
			So(points[11].TasksCompleted, ShouldEqual, 1)
			So(points[11].ApplicationsSubmitted, ShouldEqual, 0)
			So(points[9].WeekStart, ShouldEqual, "2024-05-27")
			So(points[9].ApplicationsSubmitted, ShouldEqual, 1)
			So(points[9].TasksCompleted, ShouldEqual, 0)

			zero := 0
			for _, p := range points {
				if p.TasksCompleted == 0 && p.ApplicationsSubmitted == 0 {
					zero++
				}
			}
			So(zero, ShouldEqual, 10)
		})

		Convey("Then aggregating again yields the same series", func() {
			again, err := progress.Weekly(now, completions, submissions)
			So(err, ShouldBeNil)
			So(again, ShouldResemble, points)
		})
	})
}

func TestWeeklyDropsStrayRecords(t *testing.T) {
	Convey("Given timestamps outside the window", t, func() {
		now := time.Date(2024, time.June, 10, 15, 0, 0, 0, time.UTC)
		stray := []time.Time{
			time.Date(2024, time.March, 24, 23, 0, 0, 0, time.UTC),
			time.Date(2024, time.June, 17, 0, 0, 0, 0, time.UTC),
			{},
		}

		res, err := progress.Aggregate(now, stray, stray)
		So(err, ShouldBeNil)

		Convey("Then they are counted as ignored and never bucketed", func() {
			So(res.Ignored, ShouldEqual, 6)
			for _, p := range res.Points {
				So(p.TasksCompleted, ShouldEqual, 0)
				So(p.ApplicationsSubmitted, ShouldEqual, 0)
			}
		})
	})
}

func TestWeeklyUsesLocalWeeks(t *testing.T) {
	Convey("Given a timestamp that is Sunday evening locally but Monday in UTC", t, func() {
		loc, err := time.LoadLocation("America/Los_Angeles")
		So(err, ShouldBeNil)
		now := time.Date(2024, time.June, 12, 9, 0, 0, 0, loc)
		// 2024-06-10 03:00 UTC is 2024-06-09 20:00 in Los Angeles.
		ts := time.Date(2024, time.June, 10, 3, 0, 0, 0, time.UTC)

		points, err := progress.Weekly(now, []time.Time{ts}, nil)
		So(err, ShouldBeNil)

		Convey("Then it counts toward the local week", func() {
			So(points[10].WeekStart, ShouldEqual, "2024-06-03")
			So(points[10].TasksCompleted, ShouldEqual, 1)
			So(points[11].TasksCompleted, ShouldEqual, 0)
		})
	})
}

func TestWeeklyLengthInvariant(t *testing.T) {
	Convey("Given a wide range of reference instants", t, func() {
		base := time.Date(2023, time.October, 1, 23, 59, 0, 0, time.UTC)
		bad := 0
		for i := 0; i < 500; i += 5 {
			now := dates.AddDays(base, i)
			points, err := progress.Weekly(now, []time.Time{now}, nil)
			if err != nil || len(points) != progress.Weeks {
				bad++
				continue
			}
			for j := 1; j < len(points); j++ {
				if points[j].WeekStart <= points[j-1].WeekStart {
					bad++
				}
			}
			if points[progress.Weeks-1].TasksCompleted != 1 {
				bad++
			}
		}

		Convey("Then there are always twelve increasing weeks", func() {
			So(bad, ShouldEqual, 0)
		})
	})

	Convey("Given the pre-filter window", t, func() {
		now := time.Date(2024, time.June, 10, 15, 0, 0, 0, time.UTC)
		So(progress.Window(now), ShouldEqual, time.Date(2024, time.March, 25, 0, 0, 0, 0, time.UTC))
	})
}

func TestWeeklyRejectsMissingNow(t *testing.T) {
	Convey("Given a missing reference date", t, func() {
		completions := []time.Time{time.Date(2024, time.June, 11, 9, 0, 0, 0, time.UTC)}

		Convey("When aggregating", func() {
			res, err := progress.Aggregate(time.Time{}, completions, nil)

			Convey("Then it fails with an invalid argument and no series", func() {
				So(err, ShouldNotBeNil)
				So(types.KindOf(err), ShouldEqual, types.ErrInvalidArgument)
				So(err.Error(), ShouldContainSubstring, "missing reference date")
				So(res.Points, ShouldBeNil)
			})
		})

		Convey("When building the weekly series", func() {
			points, err := progress.Weekly(time.Time{}, completions, nil)

			Convey("Then it fails the same way", func() {
				So(types.KindOf(err), ShouldEqual, types.ErrInvalidArgument)
				So(points, ShouldBeNil)
			})
		})
	})
}
