package model_test

import (
	"testing"
	"time"

	"github.com/okian/applytrack/internal/domain/model"
	"github.com/smartystreets/goconvey/convey"
)

func ptr[T any](v T) *T { return &v }

func TestApplicationStatus(t *testing.T) {
	convey.Convey("Given a new application", t, func() {
		app := model.Application{ID: "app-1"}
		first := time.Date(2024, time.January, 2, 10, 0, 0, 0, time.UTC)
		later := first.Add(72 * time.Hour)

		convey.Convey("When the status is empty", func() {
			app.ApplyStatus("  ", first)

			convey.Convey("Then it defaults to Not started", func() {
				convey.So(app.Status, convey.ShouldEqual, model.StatusNotStarted)
				convey.So(app.SubmittedAt, convey.ShouldBeNil)
			})
		})

		convey.Convey("When it is submitted twice", func() {
			app.ApplyStatus(model.StatusSubmitted, first)
			app.ApplyStatus(model.StatusSubmitted, later)

			convey.Convey("Then the first submission time is kept", func() {
				convey.So(app.SubmittedAt, convey.ShouldNotBeNil)
				convey.So(*app.SubmittedAt, convey.ShouldEqual, first)
				convey.So(app.DecidedAt, convey.ShouldBeNil)
			})
		})

		convey.Convey("When it moves back and forth", func() {
			app.ApplyStatus(model.StatusDecided, first)
			app.ApplyStatus(model.StatusInProgress, later)
			app.ApplyStatus(model.StatusDecided, later)

			convey.Convey("Then the first decision time survives", func() {
				convey.So(app.Status, convey.ShouldEqual, model.StatusDecided)
				convey.So(*app.DecidedAt, convey.ShouldEqual, first)
			})
		})
	})

	convey.Convey("Given histogram labels", t, func() {
		convey.So(model.HistogramStatus(nil), convey.ShouldEqual, model.StatusUnknown)
		convey.So(model.HistogramStatus(ptr("")), convey.ShouldEqual, model.StatusUnknown)
		convey.So(model.HistogramStatus(ptr("Submitted")), convey.ShouldEqual, "Submitted")
	})
}

func TestTaskDone(t *testing.T) {
	convey.Convey("Given an open task", t, func() {
		task := model.Task{ID: "t-1", Title: "Essay draft"}
		now := time.Date(2024, time.June, 11, 9, 0, 0, 0, time.UTC)

		convey.Convey("When it is completed", func() {
			task.SetDone(true, now)

			convey.Convey("Then it carries the completion time", func() {
				convey.So(task.Done, convey.ShouldBeTrue)
				convey.So(*task.CompletedAt, convey.ShouldEqual, now)
			})

			convey.Convey("Then reopening clears it", func() {
				task.SetDone(false, now)
				convey.So(task.Done, convey.ShouldBeFalse)
				convey.So(task.CompletedAt, convey.ShouldBeNil)
			})
		})

		convey.Convey("When it has no application", func() {
			convey.So(task.School(), convey.ShouldBeNil)
		})

		convey.Convey("When it joins an application with a school", func() {
			task.Application = &model.Application{School: &model.SchoolRef{ID: "s-1", Name: "Reed"}}
			convey.So(task.School().Name, convey.ShouldEqual, "Reed")
		})
	})
}

func TestMySchool(t *testing.T) {
	convey.Convey("Given fit ratings", t, func() {
		convey.So(model.ClampRating(nil), convey.ShouldBeNil)
		convey.So(*model.ClampRating(ptr(-2)), convey.ShouldEqual, 0)
		convey.So(*model.ClampRating(ptr(3)), convey.ShouldEqual, 3)
		convey.So(*model.ClampRating(ptr(9)), convey.ShouldEqual, 5)
	})

	convey.Convey("Given ranking buckets", t, func() {
		convey.So(*model.NormalizeBucket(" reach "), convey.ShouldEqual, model.BucketReach)
		convey.So(model.NormalizeBucket(""), convey.ShouldBeNil)
		convey.So(model.NormalizeBucket("dream"), convey.ShouldBeNil)

		rows := []model.MySchool{
			{RankingBucket: ptr("Reach")},
			{RankingBucket: ptr("match")},
			{RankingBucket: ptr("Safety")},
			{RankingBucket: ptr("Safety")},
			{},
		}
		convey.So(model.CountBuckets(rows), convey.ShouldResemble, model.BucketCounts{Reach: 1, Match: 1, Safety: 2, Unbucketed: 1})
	})

	convey.Convey("Given schools with and without coordinates", t, func() {
		convey.So(model.School{Lat: ptr(45.48), Lng: ptr(-122.63)}.HasCoordinates(), convey.ShouldBeTrue)
		convey.So(model.School{Lat: ptr(45.48)}.HasCoordinates(), convey.ShouldBeFalse)
		convey.So(model.MySchool{}.Ref(), convey.ShouldBeNil)
		convey.So(model.MySchool{School: &model.School{ID: "s", Name: "Reed"}}.Ref(), convey.ShouldResemble, &model.SchoolRef{ID: "s", Name: "Reed"})
	})
}
