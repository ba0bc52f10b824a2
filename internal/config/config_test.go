package config_test

import (
	"errors"
	"runtime"
	"testing"
	"time"

	"github.com/okian/goalboard/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfig_New(t *testing.T) {
	convey.Convey("Given a new config with default options", t, func() {
		cfg := config.New()

		convey.Convey("Then it should have sensible defaults", func() {
			convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
			convey.So(cfg.LogLevel, convey.ShouldEqual, "info")
			convey.So(cfg.QueueSize, convey.ShouldEqual, 10_000)
			convey.So(cfg.WorkerCount, convey.ShouldEqual, runtime.NumCPU()*2)
			convey.So(cfg.DedupeSize, convey.ShouldEqual, 50_000)
			convey.So(cfg.BatchLimit, convey.ShouldEqual, 1_000)
			convey.So(cfg.CycleDays, convey.ShouldEqual, 21)
			convey.So(cfg.RateLimitWindow, convey.ShouldEqual, time.Minute)
			convey.So(cfg.Validate(), convey.ShouldBeNil)
		})
	})
}

func TestConfig_Validate(t *testing.T) {
	convey.Convey("Given configs with invalid settings", t, func() {
		convey.Convey("When the log level is unknown", func() {
			cfg := config.New()
			cfg.LogLevel = "verbose"
			err := cfg.Validate()

			convey.Convey("Then it should be rejected as invalid config", func() {
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
				convey.So(err.Error(), convey.ShouldContainSubstring, "log_level")
			})
		})

		convey.Convey("When a team policy is unknown", func() {
			cfg := config.New()
			cfg.TeamPolicies = map[string]string{"er": "random"}
			err := cfg.Validate()

			convey.Convey("Then it should be rejected", func() {
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When worker and batch sizes are zero", func() {
			cfg := config.New()
			cfg.WorkerCount = 0
			cfg.BatchLimit = 0
			err := cfg.Validate()

			convey.Convey("Then both should be reported", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(err.Error(), convey.ShouldContainSubstring, "worker_count")
				convey.So(err.Error(), convey.ShouldContainSubstring, "batch_limit")
			})
		})

		convey.Convey("When known team policies are set", func() {
			cfg := config.New()
			cfg.TeamPolicies = map[string]string{"er": "report-first", "carteira-ii": "platform-first"}

			convey.Convey("Then the config should be valid", func() {
				convey.So(cfg.Validate(), convey.ShouldBeNil)
			})
		})
	})
}
