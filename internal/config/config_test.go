package config_test

import (
	"errors"
	"testing"
	"time"

	"github.com/okian/applytrack/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfig_New(t *testing.T) {
	convey.Convey("Given a new config with default options", t, func() {
		cfg := config.New()

		convey.Convey("Then it should have sensible defaults", func() {
			convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
			convey.So(cfg.DBPath, convey.ShouldEqual, "applytrack.db")
			convey.So(cfg.BucketWeekDays, convey.ShouldEqual, 7)
			convey.So(cfg.BucketMonthDays, convey.ShouldEqual, 30)
			convey.So(cfg.MetricsEnabled, convey.ShouldBeTrue)
			convey.So(cfg.MetricsRefreshInterval, convey.ShouldEqual, 10*time.Second)
			convey.So(cfg.Validate(), convey.ShouldBeNil)
		})

		convey.Convey("Then an empty timezone resolves to Local", func() {
			loc, err := cfg.Location()
			convey.So(err, convey.ShouldBeNil)
			convey.So(loc, convey.ShouldEqual, time.Local)
		})
	})

	convey.Convey("Given invalid combinations", t, func() {
		cases := map[string]func(c *config.Config){
			"empty db path":     func(c *config.Config) { c.DBPath = "" },
			"inverted windows":  func(c *config.Config) { c.BucketWeekDays = 30; c.BucketMonthDays = 7 },
			"zero window":       func(c *config.Config) { c.BucketWeekDays = 0 },
			"unknown format":    func(c *config.Config) { c.LogFormat = "xml" },
			"unknown zone":      func(c *config.Config) { c.Timezone = "Mars/Olympus" },
			"non-positive list": func(c *config.Config) { c.ListLimit = 0 },
			"zero refresh":      func(c *config.Config) { c.MetricsRefreshInterval = 0 },
		}
		for name, mutate := range cases {
			cfg := config.New()
			mutate(cfg)
			err := cfg.Validate()
			convey.So(err, convey.ShouldNotBeNil)
			convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
			_ = name
		}
	})
}
