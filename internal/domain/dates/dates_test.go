package dates_test

import (
	"errors"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/okian/applytrack/internal/domain/dates"
	"github.com/okian/applytrack/internal/domain/types"
	. "github.com/smartystreets/goconvey/convey"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestISODate(t *testing.T) {
	Convey("Given local calendar dates", t, func() {
		Convey("When formatting", func() {
			So(dates.ISODate(day(2024, time.March, 5)), ShouldEqual, "2024-03-05")
			So(dates.ISODate(day(999, time.January, 1)), ShouldEqual, "0999-01-01")
		})

		Convey("When the instant is late in the evening west of UTC", func() {
			loc, err := time.LoadLocation("America/Los_Angeles")
			So(err, ShouldBeNil)
			evening := time.Date(2024, time.March, 15, 23, 30, 0, 0, loc)

			Convey("Then the local date is used, not the UTC one", func() {
				So(dates.ISODate(evening), ShouldEqual, "2024-03-15")
			})
		})

		Convey("When round tripping every day of several years", func() {
			loc, err := time.LoadLocation("America/New_York")
			So(err, ShouldBeNil)
			start := time.Date(2023, time.January, 1, 12, 0, 0, 0, loc)
			mismatches := 0
			for i := 0; i < 3*366; i++ {
				d := dates.AddDays(start, i)
				parsed, err := dates.ParseISO(dates.ISODate(d), loc)
				if err != nil || dates.ISODate(parsed) != dates.ISODate(d) || parsed.Day() != d.Day() {
					mismatches++
				}
			}

			Convey("Then every calendar day survives", func() {
				So(mismatches, ShouldEqual, 0)
			})
		})
	})
}

func TestParseISO(t *testing.T) {
	Convey("Given ISO date strings", t, func() {
		Convey("When the string is well formed", func() {
			got, err := dates.ParseISO("2024-02-29", time.UTC)
			So(err, ShouldBeNil)
			So(got, ShouldEqual, day(2024, time.February, 29))
		})

		Convey("When the string is malformed", func() {
			for _, in := range []string{"", "2024-2-29", "2023-02-29", "2024/02/01", "tomorrow", "2024-13-01"} {
				_, err := dates.ParseISO(in, time.UTC)
				So(err, ShouldNotBeNil)
				So(errors.Is(err, types.ErrInvalidArgument), ShouldBeTrue)
			}
		})

		Convey("When parsing a month", func() {
			got, err := dates.ParseMonth("2024-03", time.UTC)
			So(err, ShouldBeNil)
			So(got, ShouldEqual, day(2024, time.March, 1))

			_, err = dates.ParseMonth("2024-3", time.UTC)
			So(errors.Is(err, types.ErrInvalidArgument), ShouldBeTrue)
		})
	})
}

func TestMonthBoundaries(t *testing.T) {
	Convey("Given a date in February of a leap year", t, func() {
		d := time.Date(2024, time.February, 17, 15, 4, 5, 0, time.UTC)

		So(dates.StartOfMonth(d), ShouldEqual, day(2024, time.February, 1))
		So(dates.EndOfMonth(d), ShouldEqual, day(2024, time.February, 29))
		So(dates.StartOfDay(d), ShouldEqual, day(2024, time.February, 17))
	})

	Convey("Given month navigation", t, func() {
		d := day(2024, time.December, 31)

		So(dates.AddMonths(d, 1), ShouldEqual, day(2025, time.January, 1))
		So(dates.AddMonths(d, -12), ShouldEqual, day(2023, time.December, 1))
	})
}

func TestAddDays(t *testing.T) {
	Convey("Given calendar day arithmetic", t, func() {
		Convey("When crossing month and year boundaries", func() {
			So(dates.AddDays(day(2024, time.January, 31), 1), ShouldEqual, day(2024, time.February, 1))
			So(dates.AddDays(day(2024, time.January, 1), -1), ShouldEqual, day(2023, time.December, 31))
			So(dates.AddDays(day(2024, time.March, 1), -1), ShouldEqual, day(2024, time.February, 29))
		})

		Convey("When crossing a DST change", func() {
			loc, err := time.LoadLocation("America/New_York")
			So(err, ShouldBeNil)
			before := time.Date(2024, time.March, 9, 0, 0, 0, 0, loc)
			after := dates.AddDays(before, 2)

			Convey("Then the wall clock stays at midnight", func() {
				So(dates.ISODate(after), ShouldEqual, "2024-03-11")
				So(after.Hour(), ShouldEqual, 0)
			})
		})
	})
}

func TestDaysUntil(t *testing.T) {
	Convey("Given today is 2024-03-15", t, func() {
		now := time.Date(2024, time.March, 15, 18, 45, 0, 0, time.UTC)

		Convey("Then the distances are signed day counts", func() {
			n, err := dates.DaysUntil(now, "2024-03-15")
			So(err, ShouldBeNil)
			So(n, ShouldEqual, 0)

			n, _ = dates.DaysUntil(now, "2024-03-14")
			So(n, ShouldEqual, -1)

			n, _ = dates.DaysUntil(now, "2024-03-16")
			So(n, ShouldEqual, 1)

			n, _ = dates.DaysUntil(now, "2025-03-15")
			So(n, ShouldEqual, 365)
		})

		Convey("Then due labels follow the distance", func() {
			cases := map[string]string{
				"2024-03-14": "1d overdue",
				"2024-03-01": "14d overdue",
				"2024-03-15": "due today",
				"2024-03-16": "due tomorrow",
				"2024-03-20": "due in 5d",
			}
			for iso, want := range cases {
				got, err := dates.DueLabel(now, iso)
				So(err, ShouldBeNil)
				So(got, ShouldEqual, want)
			}
		})

		Convey("Then bad input is rejected", func() {
			_, err := dates.DaysUntil(now, "15/03/2024")
			So(errors.Is(err, types.ErrInvalidArgument), ShouldBeTrue)

			_, err = dates.DueLabel(time.Time{}, "2024-03-15")
			So(errors.Is(err, types.ErrInvalidArgument), ShouldBeTrue)
		})
	})

	Convey("Given a spring-forward day in a DST zone", t, func() {
		loc, err := time.LoadLocation("Europe/Berlin")
		So(err, ShouldBeNil)
		now := time.Date(2024, time.March, 30, 22, 0, 0, 0, loc)

		n, err := dates.DaysUntil(now, "2024-04-01")
		So(err, ShouldBeNil)
		So(n, ShouldEqual, 2)
	})
}

func TestWeeks(t *testing.T) {
	Convey("Given week helpers", t, func() {
		Convey("When the date is a weekday", func() {
			So(dates.WeekStartISO(day(2024, time.June, 12)), ShouldEqual, "2024-06-10")
			So(dates.WeekStartISO(day(2024, time.June, 10)), ShouldEqual, "2024-06-10")
		})

		Convey("When the date is a Sunday", func() {
			So(dates.WeekStartISO(day(2024, time.June, 16)), ShouldEqual, "2024-06-10")
		})

		Convey("When the week spans a new year", func() {
			So(dates.WeekStartISO(day(2025, time.January, 1)), ShouldEqual, "2024-12-30")
		})

		Convey("When finding the Sunday that starts a calendar row", func() {
			So(dates.SundayOnOrBefore(day(2024, time.March, 1)), ShouldEqual, day(2024, time.February, 25))
			So(dates.SundayOnOrBefore(day(2024, time.March, 3)), ShouldEqual, day(2024, time.March, 3))
		})

		Convey("When labelling a week", func() {
			label, err := dates.FormatWeekLabel("2024-06-03")
			So(err, ShouldBeNil)
			So(label, ShouldEqual, "6/3")

			label, _ = dates.FormatWeekLabel("2024-12-30")
			So(label, ShouldEqual, "12/30")

			_, err = dates.FormatWeekLabel("June 3")
			So(errors.Is(err, types.ErrInvalidArgument), ShouldBeTrue)
		})
	})
}
