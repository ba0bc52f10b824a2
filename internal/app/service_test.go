package service_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	service "github.com/okian/goalboard/internal/app"
	"github.com/okian/goalboard/internal/adapters/repository"
	"github.com/okian/goalboard/internal/domain/model"
	"github.com/okian/goalboard/internal/domain/teams"
	"github.com/okian/goalboard/internal/domain/types"
	"github.com/okian/goalboard/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	// Initialize logging for tests
	err := logger.Init()
	if err != nil {
		panic(err)
	}
}

func intPtr(v int) *int { return &v }

func carteira0Status(id string) model.PlatformPlayerStatus {
	return model.PlatformPlayerStatus{
		ID:          id,
		Name:        "Ana " + id,
		TotalPoints: 1500,
		InventoryCounts: map[string]int{
			"E6F0MJ3": 1,
			"E6F0WGc": 2,
		},
		ChallengeProgress: []model.ChallengeProgress{
			model.NewChallengeProgress("E6GglPq", 88),
		},
		TeamMemberships: []string{"carteira-0"},
	}
}

func startService(opts ...service.Option) *service.Service {
	opts = append([]service.Option{
		service.WithWorkerCount(2),
		service.WithQueueSize(100),
		service.WithLogger(logger.Nop()),
	}, opts...)
	svc := service.New(opts...)
	So(svc.Start(context.Background()), ShouldBeNil)
	return svc
}

func stopService(svc *service.Service) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = svc.Stop(ctx)
}

func TestService_DefaultLogger(t *testing.T) {
	Convey("Given a service built without a logger", t, func() {
		svc := service.New(service.WithWorkerCount(1), service.WithQueueSize(10))

		Convey("Then it should start, compute and stop", func() {
			So(svc.Start(context.Background()), ShouldBeNil)
			defer stopService(svc)

			m, err := svc.Compute(context.Background(), types.ComputeRequest{Status: carteira0Status("p1")})
			So(err, ShouldBeNil)
			So(m.Team, ShouldEqual, "carteira-0")
		})
	})
}

func TestService_Lifecycle(t *testing.T) {
	Convey("Given a new service", t, func() {
		svc := service.New(service.WithLogger(logger.Nop()))

		Convey("When it is not started", func() {
			_, err := svc.Compute(context.Background(), types.ComputeRequest{Status: carteira0Status("p1")})

			Convey("Then operations should fail with ErrNotStarted", func() {
				So(errors.Is(err, service.ErrNotStarted), ShouldBeTrue)
				So(svc.GetStats()["started"], ShouldEqual, false)
			})
		})

		Convey("When starting and stopping twice", func() {
			ctx := context.Background()
			So(svc.Start(ctx), ShouldBeNil)
			So(svc.Start(ctx), ShouldBeNil)
			So(svc.GetStats()["started"], ShouldEqual, true)
			So(svc.GetStats()["teams"], ShouldEqual, 6)

			So(svc.Stop(ctx), ShouldBeNil)
			So(svc.Stop(ctx), ShouldBeNil)

			Convey("Then the service should be stopped", func() {
				So(svc.GetStats()["started"], ShouldEqual, false)
			})
		})

		Convey("When a team policy is invalid", func() {
			bad := service.New(
				service.WithLogger(logger.Nop()),
				service.WithTeamPolicies(map[string]string{"er": "random"}),
			)
			err := bad.Start(context.Background())

			Convey("Then start should fail", func() {
				So(err, ShouldNotBeNil)
				So(bad.GetStats()["started"], ShouldEqual, false)
			})
		})
	})
}

func TestService_Compute(t *testing.T) {
	Convey("Given a started service", t, func() {
		svc := startService()
		defer stopService(svc)
		ctx := context.Background()

		Convey("When computing a carteira-0 player", func() {
			m, err := svc.Compute(ctx, types.ComputeRequest{Status: carteira0Status("p1")})

			Convey("Then the membership team should be used", func() {
				So(err, ShouldBeNil)
				So(m.Team, ShouldEqual, "carteira-0")
				So(m.PlayerName, ShouldEqual, "Ana p1")
				So(m.TotalPoints, ShouldEqual, 1500)
				So(m.PointsLocked, ShouldBeFalse)
				So(m.PrimaryGoal.Percentage, ShouldEqual, 88)
				So(m.PrimaryGoal.ProgressBar.Color, ShouldEqual, model.ColorYellow)
				So(m.SecondaryGoal1.BoostActive, ShouldBeTrue)
				So(m.SecondaryGoal2.BoostActive, ShouldBeFalse)
				So(m.DaysUntilCycleEnd, ShouldEqual, 21)
			})
		})

		Convey("When a report was uploaded for the player", func() {
			_, err := svc.UploadReports(ctx, types.UploadRequest{Rows: []model.UploadedReportRow{{
				PlayerID:        "p1",
				MetricValues:    map[string]float64{teams.MetricBilling: 40},
				CurrentCycleDay: intPtr(5),
			}}})
			So(err, ShouldBeNil)

			m, err := svc.Compute(ctx, types.ComputeRequest{Status: carteira0Status("p1")})

			Convey("Then the stored row should feed the goals and cycle", func() {
				So(err, ShouldBeNil)
				So(m.SecondaryGoal1.Percentage, ShouldEqual, 40)
				So(m.CurrentCycleDay, ShouldEqual, 5)
				So(m.DaysUntilCycleEnd, ShouldEqual, 16)
			})
		})

		Convey("When the hint names a local-multiplier team", func() {
			status := carteira0Status("p2")
			m, err := svc.Compute(ctx, types.ComputeRequest{
				Team:   "Carteira II",
				Status: status,
				Report: &model.UploadedReportRow{
					PlayerID:     "p2",
					MetricValues: map[string]float64{teams.MetricBilling: 120},
				},
			})

			Convey("Then points should be multiplied", func() {
				So(err, ShouldBeNil)
				So(m.Team, ShouldEqual, "carteira-ii")
				So(m.PointsLocked, ShouldBeFalse)
				So(m.TotalPoints, ShouldEqual, 3000)
			})
		})

		Convey("When the status has no identity", func() {
			status := carteira0Status("")
			_, err := svc.Compute(ctx, types.ComputeRequest{Status: status})

			Convey("Then a DataError should be returned", func() {
				var de *model.DataError
				So(errors.As(err, &de), ShouldBeTrue)
				So(errors.Is(err, model.ErrMissingIdentity), ShouldBeTrue)
			})
		})

		Convey("When no team can be selected", func() {
			status := carteira0Status("p3")
			status.TeamMemberships = []string{"marketing"}
			_, err := svc.Compute(ctx, types.ComputeRequest{Status: status})

			Convey("Then ErrUnknownTeam should be returned", func() {
				So(errors.Is(err, teams.ErrUnknownTeam), ShouldBeTrue)
			})
		})
	})
}

func TestService_ComputeBatch(t *testing.T) {
	Convey("Given a started service with a small batch limit", t, func() {
		svc := startService(service.WithBatchLimit(5))
		defer stopService(svc)
		ctx := context.Background()

		Convey("When a batch has duplicates and bad items", func() {
			noTeam := carteira0Status("p4")
			noTeam.TeamMemberships = nil
			res, err := svc.ComputeBatch(ctx, types.BatchRequest{Items: []types.ComputeRequest{
				{Status: carteira0Status("p1")},
				{Status: carteira0Status("p2")},
				{Status: carteira0Status("p1")},
				{Status: noTeam},
				{Status: carteira0Status("")},
			}})

			Convey("Then items should be ordered and flagged", func() {
				So(err, ShouldBeNil)
				So(res.BatchID, ShouldNotBeEmpty)
				So(len(res.Items), ShouldEqual, 5)
				So(res.Computed, ShouldEqual, 2)
				So(res.Duplicates, ShouldEqual, 1)
				So(res.Failed, ShouldEqual, 2)

				for i, item := range res.Items {
					So(item.Index, ShouldEqual, i)
				}
				So(res.Items[0].Metrics, ShouldNotBeNil)
				So(res.Items[0].Metrics.PlayerID, ShouldEqual, "p1")
				So(res.Items[1].Metrics.PlayerID, ShouldEqual, "p2")
				So(res.Items[2].Duplicate, ShouldBeTrue)
				So(res.Items[2].Metrics, ShouldEqual, res.Items[0].Metrics)
				So(res.Items[3].Error, ShouldContainSubstring, "unknown team")
				So(res.Items[4].Error, ShouldContainSubstring, "missing")
			})
		})

		Convey("When a player fails before a later item for the same player", func() {
			lost := carteira0Status("p7")
			lost.TeamMemberships = nil
			res, err := svc.ComputeBatch(ctx, types.BatchRequest{Items: []types.ComputeRequest{
				{Status: lost},
				{Team: "carteira-0", Status: lost},
				{Status: lost},
			}})

			Convey("Then the later item should be computed and later duplicates copy it", func() {
				So(err, ShouldBeNil)
				So(res.Failed, ShouldEqual, 1)
				So(res.Computed, ShouldEqual, 1)
				So(res.Duplicates, ShouldEqual, 1)
				So(res.Items[0].Error, ShouldContainSubstring, "unknown team")
				So(res.Items[1].Duplicate, ShouldBeFalse)
				So(res.Items[1].Metrics, ShouldNotBeNil)
				So(res.Items[2].Duplicate, ShouldBeTrue)
				So(res.Items[2].Team, ShouldEqual, "carteira-0")
				So(res.Items[2].Metrics, ShouldEqual, res.Items[1].Metrics)
			})
		})

		Convey("When the batch exceeds the limit", func() {
			items := make([]types.ComputeRequest, 6)
			for i := range items {
				items[i] = types.ComputeRequest{Status: carteira0Status(fmt.Sprintf("p%d", i))}
			}
			_, err := svc.ComputeBatch(ctx, types.BatchRequest{Items: items})

			Convey("Then ErrBatchTooLarge should be returned", func() {
				So(errors.Is(err, service.ErrBatchTooLarge), ShouldBeTrue)
			})
		})
	})
}

func TestService_ConcurrentBatches(t *testing.T) {
	Convey("Given a started service with several workers", t, func() {
		svc := startService(service.WithWorkerCount(4), service.WithQueueSize(1000))
		defer stopService(svc)
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		Convey("When many goroutines submit batches concurrently", func() {
			const goroutines = 8
			const perBatch = 20
			errs := make(chan error, goroutines)
			computed := make(chan int, goroutines)

			for g := 0; g < goroutines; g++ {
				go func(g int) {
					items := make([]types.ComputeRequest, perBatch)
					for i := range items {
						items[i] = types.ComputeRequest{Status: carteira0Status(fmt.Sprintf("g%d-p%d", g, i))}
					}
					res, err := svc.ComputeBatch(ctx, types.BatchRequest{Items: items})
					errs <- err
					computed <- res.Computed
				}(g)
			}

			total := 0
			for g := 0; g < goroutines; g++ {
				So(<-errs, ShouldBeNil)
				total += <-computed
			}

			Convey("Then every item should be computed", func() {
				So(total, ShouldEqual, goroutines*perBatch)
				So(svc.GetStats()["jobsProcessed"], ShouldEqual, int64(goroutines*perBatch))
			})
		})
	})
}

func TestService_UploadReports(t *testing.T) {
	Convey("Given a started service", t, func() {
		svc := startService()
		defer stopService(svc)
		ctx := context.Background()

		Convey("When an upload repeats a player", func() {
			res, err := svc.UploadReports(ctx, types.UploadRequest{Rows: []model.UploadedReportRow{
				{PlayerID: "p1", CurrentCycleDay: intPtr(3)},
				{PlayerID: "p2"},
				{PlayerID: "p1", CurrentCycleDay: intPtr(7)},
			}})

			Convey("Then the last row should win", func() {
				So(err, ShouldBeNil)
				So(res.UploadID, ShouldNotBeEmpty)
				So(res.Received, ShouldEqual, 3)
				So(res.Stored, ShouldEqual, 2)
				So(res.Duplicates, ShouldEqual, 1)
				So(svc.GetStats()["reportsStored"], ShouldEqual, 2)

				m, err := svc.Compute(ctx, types.ComputeRequest{Status: carteira0Status("p1")})
				So(err, ShouldBeNil)
				So(m.CurrentCycleDay, ShouldEqual, 7)
			})
		})

		Convey("When a row has no player id", func() {
			_, err := svc.UploadReports(ctx, types.UploadRequest{Rows: []model.UploadedReportRow{{PlayerID: ""}}})

			Convey("Then the upload should fail", func() {
				So(errors.Is(err, repository.ErrInvalidKey), ShouldBeTrue)
			})
		})
	})
}

func TestService_TeamConfig(t *testing.T) {
	Convey("Given a service seeded with an override and a policy", t, func() {
		svc := startService(
			service.WithTeamPolicies(map[string]string{"er": "report-first"}),
			service.WithTeamOverrides(map[string]model.TeamGoalConfig{
				"er":        {Primary: model.GoalConfig{DisplayName: "Atividade Diária"}},
				"marketing": {UnlockItemID: "x"},
			}),
		)
		defer stopService(svc)
		ctx := context.Background()

		Convey("When listing teams", func() {
			list, err := svc.Teams(ctx)

			Convey("Then every team should be summarized in order", func() {
				So(err, ShouldBeNil)
				So(len(list), ShouldEqual, 6)
				So(list[0].Team, ShouldEqual, "carteira-0")
				er := list[5]
				So(er.Team, ShouldEqual, "er")
				So(er.Policy, ShouldEqual, "report-first")
				So(er.Overridden, ShouldBeTrue)
				So(er.Config.Primary.DisplayName, ShouldEqual, "Atividade Diária")
				So(er.Config.Primary.MetricName, ShouldEqual, teams.MetricActivity)
			})
		})

		Convey("When setting and deleting an override", func() {
			sum, err := svc.SetTeamConfig(ctx, "Carteira II", model.TeamGoalConfig{
				Secondary2: model.GoalConfig{BoostItemID: "boost-x"},
			})
			So(err, ShouldBeNil)
			So(sum.Team, ShouldEqual, "carteira-ii")
			So(sum.Strategy, ShouldEqual, "local-multiplier")
			So(sum.Overridden, ShouldBeTrue)
			So(sum.Config.Secondary2.BoostItemID, ShouldEqual, "boost-x")
			So(sum.Config.Secondary2.MetricName, ShouldEqual, teams.MetricMultiBrandPerAcct)

			So(svc.DeleteTeamConfig(ctx, "carteira-ii"), ShouldBeNil)
			after, err := svc.TeamConfig(ctx, "carteira-ii")

			Convey("Then the defaults should be restored", func() {
				So(err, ShouldBeNil)
				So(after.Overridden, ShouldBeFalse)
				So(after.Config.Secondary2.BoostItemID, ShouldEqual, "E6K79Mt")
			})

			Convey("And a second delete should report not found", func() {
				err := svc.DeleteTeamConfig(ctx, "carteira-ii")
				So(errors.Is(err, repository.ErrNotFound), ShouldBeTrue)
			})
		})

		Convey("When the team is unknown", func() {
			_, err := svc.TeamConfig(ctx, "marketing")

			Convey("Then ErrUnknownTeam should be returned", func() {
				So(errors.Is(err, teams.ErrUnknownTeam), ShouldBeTrue)
			})
		})
	})
}
