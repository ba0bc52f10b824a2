package teams

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/okian/goalboard/internal/domain/goals"
	"github.com/okian/goalboard/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func intp(v int) *int { return &v }

func TestComputeMetricsDirectPassthrough(t *testing.T) {
	Convey("Given a direct passthrough team", t, func() {
		ctx := context.Background()
		reg := NewRegistry(DefaultCatalog())
		p, err := reg.Processor("er")
		So(err, ShouldBeNil)
		defaults := DefaultCatalog()[ER].Defaults

		status := &model.PlatformPlayerStatus{
			ID:          "p-1",
			Name:        "Ana",
			TotalPoints: 1234,
			InventoryCounts: map[string]int{
				defaults.UnlockItemID:           1,
				defaults.Secondary1.BoostItemID: 1,
				defaults.Secondary2.BoostItemID: 0,
			},
			ChallengeProgress: []model.ChallengeProgress{
				model.NewChallengeProgress(defaults.Primary.ChallengeRefs[0], 88),
			},
		}
		report := &model.UploadedReportRow{
			PlayerID:     "p-1",
			Team:         "er",
			MetricValues: map[string]float64{defaults.Secondary1.MetricName: 95},
		}

		Convey("When computing the end-to-end scenario", func() {
			m, err := p.ComputeMetrics(ctx, status, report, nil)

			Convey("Then the metrics should match the scenario", func() {
				So(err, ShouldBeNil)
				So(m.PlayerID, ShouldEqual, "p-1")
				So(m.PlayerName, ShouldEqual, "Ana")
				So(m.Team, ShouldEqual, "er")
				So(m.PointsLocked, ShouldBeFalse)
				So(m.TotalPoints, ShouldEqual, 1234)

				So(m.PrimaryGoal.Percentage, ShouldEqual, 88)
				So(m.PrimaryGoal.ProgressBar.Color, ShouldEqual, model.ColorYellow)
				So(m.PrimaryGoal.ProgressBar.FillPercentage, ShouldEqual, 58.66)
				So(m.PrimaryGoal.BoostActive, ShouldBeFalse)
				So(m.PrimaryGoal.Name, ShouldEqual, defaults.Primary.DisplayName)

				So(m.SecondaryGoal1.Percentage, ShouldEqual, 95)
				// 50 < p <= 100 is the yellow band, so 95 is yellow.
				So(m.SecondaryGoal1.ProgressBar.Color, ShouldEqual, model.ColorYellow)
				So(m.SecondaryGoal1.BoostActive, ShouldBeTrue)
				So(m.SecondaryGoal2.BoostActive, ShouldBeFalse)
				So(m.SecondaryGoal2.Percentage, ShouldEqual, 0)
			})
		})

		Convey("When the unlock item is missing", func() {
			status.InventoryCounts = nil
			m, err := p.ComputeMetrics(ctx, status, report, nil)

			Convey("Then points should be locked but unchanged", func() {
				So(err, ShouldBeNil)
				So(m.PointsLocked, ShouldBeTrue)
				So(m.TotalPoints, ShouldEqual, 1234)
				So(m.SecondaryGoal1.BoostActive, ShouldBeFalse)
			})
		})

		Convey("When the config overrides the unlock item", func() {
			cfg := &model.TeamGoalConfig{UnlockItemID: "other-unlock"}
			m, err := p.ComputeMetrics(ctx, status, report, cfg)

			Convey("Then the configured item should decide the lock", func() {
				So(err, ShouldBeNil)
				So(m.PointsLocked, ShouldBeTrue)
			})
		})

		Convey("When the config overrides the challenge refs", func() {
			status.ChallengeProgress = append(status.ChallengeProgress, model.NewChallengeProgress("ch-custom", 30))
			cfg := &model.TeamGoalConfig{Primary: model.GoalConfig{ChallengeRefs: []string{"ch-custom"}}}
			m, err := p.ComputeMetrics(ctx, status, report, cfg)

			Convey("Then the configured refs should be matched", func() {
				So(err, ShouldBeNil)
				So(m.PrimaryGoal.Percentage, ShouldEqual, 30)
				So(m.PrimaryGoal.ProgressBar.Color, ShouldEqual, model.ColorRed)
			})
		})

		Convey("When the report belongs to another team", func() {
			report.Team = "carteira-iv"
			m, err := p.ComputeMetrics(ctx, status, report, nil)

			Convey("Then the report values should still be used", func() {
				So(err, ShouldBeNil)
				So(m.SecondaryGoal1.Percentage, ShouldEqual, 95)
			})
		})

		Convey("When the report carries cycle information", func() {
			report.CurrentCycleDay = intp(5)
			m, _ := p.ComputeMetrics(ctx, status, report, nil)

			Convey("Then the remaining days should use the default cycle", func() {
				So(m.CurrentCycleDay, ShouldEqual, 5)
				So(m.DaysUntilCycleEnd, ShouldEqual, DefaultCycleDays-5)
			})

			Convey("Then an explicit cycle length should be honoured", func() {
				report.CurrentCycleDay = intp(30)
				report.TotalCycleDays = intp(28)
				m, _ := p.ComputeMetrics(ctx, status, report, nil)
				So(m.DaysUntilCycleEnd, ShouldEqual, 0)
			})
		})

		Convey("When there is no report", func() {
			m, err := p.ComputeMetrics(ctx, status, nil, nil)

			Convey("Then missing values should default to zero", func() {
				So(err, ShouldBeNil)
				So(m.SecondaryGoal1.Percentage, ShouldEqual, 0)
				So(m.CurrentCycleDay, ShouldEqual, 0)
				So(m.DaysUntilCycleEnd, ShouldEqual, DefaultCycleDays)
			})
		})

		Convey("When inputs are not finite", func() {
			status.ChallengeProgress = []model.ChallengeProgress{
				model.NewChallengeProgress(defaults.Primary.ChallengeRefs[0], math.Inf(1)),
			}
			m, err := p.ComputeMetrics(ctx, status, report, nil)

			Convey("Then percentages should be sanitized", func() {
				So(err, ShouldBeNil)
				So(m.PrimaryGoal.Percentage, ShouldEqual, 0)
				So(m.PrimaryGoal.ProgressBar.FillPercentage, ShouldEqual, 0)
			})
		})

		Convey("When the status has no identity", func() {
			_, err := p.ComputeMetrics(ctx, &model.PlatformPlayerStatus{TotalPoints: 5}, report, nil)

			Convey("Then a DataError should be returned", func() {
				var de *model.DataError
				So(errors.As(err, &de), ShouldBeTrue)
				So(errors.Is(err, model.ErrMissingIdentity), ShouldBeTrue)
			})
		})

		Convey("When the status is nil", func() {
			_, err := p.ComputeMetrics(ctx, nil, report, nil)

			Convey("Then a DataError should be returned", func() {
				So(errors.Is(err, model.ErrMissingIdentity), ShouldBeTrue)
			})
		})

		Convey("When boosts vary", func() {
			Convey("Then the point total should never change", func() {
				for _, inv := range []map[string]int{
					{defaults.UnlockItemID: 1},
					{defaults.UnlockItemID: 1, defaults.Secondary1.BoostItemID: 1},
					{defaults.UnlockItemID: 1, defaults.Secondary1.BoostItemID: 1, defaults.Secondary2.BoostItemID: 2},
					{defaults.Secondary2.BoostItemID: 1},
				} {
					status.InventoryCounts = inv
					m, err := p.ComputeMetrics(ctx, status, report, nil)
					So(err, ShouldBeNil)
					So(m.TotalPoints, ShouldEqual, 1234)
				}
			})
		})
	})
}

func TestComputeMetricsLocalMultiplier(t *testing.T) {
	Convey("Given the local multiplier team", t, func() {
		ctx := context.Background()
		reg := NewRegistry(DefaultCatalog())
		p, err := reg.Processor("carteira-ii")
		So(err, ShouldBeNil)
		defaults := DefaultCatalog()[CarteiraII].Defaults

		status := &model.PlatformPlayerStatus{
			ID:          "p-2",
			Name:        "Bia",
			TotalPoints: 1000,
			InventoryCounts: map[string]int{
				defaults.Secondary1.BoostItemID: 1,
			},
			ChallengeProgress: []model.ChallengeProgress{
				model.NewChallengeProgress(defaults.Primary.ChallengeRefs[0], 40),
			},
		}
		report := &model.UploadedReportRow{
			PlayerID:     "p-2",
			Team:         "carteira-ii",
			MetricValues: map[string]float64{defaults.Primary.MetricName: 100},
		}

		Convey("When the report shows the primary goal met", func() {
			m, err := p.ComputeMetrics(ctx, status, report, nil)

			Convey("Then the report should take precedence and points double", func() {
				So(err, ShouldBeNil)
				So(p.Policy(), ShouldEqual, goals.ReportFirst)
				So(m.PrimaryGoal.Percentage, ShouldEqual, 100)
				So(m.PointsLocked, ShouldBeFalse)
				So(m.TotalPoints, ShouldEqual, 2000)
			})
		})

		Convey("When both boosts are owned", func() {
			status.InventoryCounts[defaults.Secondary2.BoostItemID] = 1
			m, _ := p.ComputeMetrics(ctx, status, report, nil)

			Convey("Then points should triple", func() {
				So(m.TotalPoints, ShouldEqual, 3000)
				So(m.SecondaryGoal1.BoostActive, ShouldBeTrue)
				So(m.SecondaryGoal2.BoostActive, ShouldBeTrue)
			})
		})

		Convey("When the primary goal is at 99", func() {
			report.MetricValues[defaults.Primary.MetricName] = 99
			status.InventoryCounts[defaults.Secondary2.BoostItemID] = 1
			m, _ := p.ComputeMetrics(ctx, status, report, nil)

			Convey("Then points should stay locked at the base", func() {
				So(m.PointsLocked, ShouldBeTrue)
				So(m.TotalPoints, ShouldEqual, 1000)
			})
		})

		Convey("When there is no report", func() {
			m, _ := p.ComputeMetrics(ctx, status, nil, nil)

			Convey("Then the live value should be the fallback", func() {
				So(m.PrimaryGoal.Percentage, ShouldEqual, 40)
				So(m.PointsLocked, ShouldBeTrue)
			})
		})
	})
}
