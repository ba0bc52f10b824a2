package teams

import (
	"context"
	"errors"
	"testing"

	"github.com/okian/goalboard/internal/domain/goals"
	"github.com/okian/goalboard/internal/domain/model"
	"github.com/okian/goalboard/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func TestRegistry(t *testing.T) {
	Convey("Given a registry over the default catalog", t, func() {
		reg := NewRegistry(DefaultCatalog(), WithLogger(logger.Nop()))

		Convey("When listing teams", func() {
			Convey("Then all six should be registered", func() {
				So(reg.Teams(), ShouldHaveLength, 6)
			})
		})

		Convey("When looking up a processor", func() {
			Convey("Then known names should resolve in any spelling", func() {
				p, err := reg.Processor("Carteira_IV")
				So(err, ShouldBeNil)
				So(p.Team(), ShouldEqual, CarteiraIV)
				So(p.Label(), ShouldEqual, "Carteira IV")
			})

			Convey("Then unknown names should fail", func() {
				_, err := reg.Processor("carteira-x")
				So(errors.Is(err, ErrUnknownTeam), ShouldBeTrue)
			})
		})

		Convey("When selecting a processor for a player", func() {
			status := &model.PlatformPlayerStatus{ID: "p", Name: "n", TeamMemberships: []string{"vendas", "Carteira I"}}
			report := &model.UploadedReportRow{PlayerID: "p", Team: "carteira-iii"}

			Convey("Then an explicit hint should win", func() {
				p, err := reg.Select(status, report, "er")
				So(err, ShouldBeNil)
				So(p.Team(), ShouldEqual, ER)
			})

			Convey("Then an unknown hint should fail", func() {
				_, err := reg.Select(status, report, "nope")
				So(errors.Is(err, ErrUnknownTeam), ShouldBeTrue)
			})

			Convey("Then the report team should come next", func() {
				p, err := reg.Select(status, report, "")
				So(err, ShouldBeNil)
				So(p.Team(), ShouldEqual, CarteiraIII)
			})

			Convey("Then the first registered membership should come last", func() {
				p, err := reg.Select(status, nil, "")
				So(err, ShouldBeNil)
				So(p.Team(), ShouldEqual, CarteiraI)
			})

			Convey("Then no match should fail", func() {
				_, err := reg.Select(&model.PlatformPlayerStatus{}, nil, "")
				So(errors.Is(err, ErrUnknownTeam), ShouldBeTrue)
			})
		})
	})

	Convey("Given registry options", t, func() {
		Convey("When a policy override is configured", func() {
			reg := NewRegistry(DefaultCatalog(),
				WithPolicy("ER", goals.ReportFirst),
				WithPolicy("carteira-ii", goals.PlatformFirst),
				WithPolicy("ghost", goals.ReportFirst),
			)

			Convey("Then the processors should use it", func() {
				er, _ := reg.Processor("er")
				ii, _ := reg.Processor("carteira-ii")
				So(er.Policy(), ShouldEqual, goals.ReportFirst)
				So(ii.Policy(), ShouldEqual, goals.PlatformFirst)
				So(ii.Strategy(), ShouldEqual, "local-multiplier")
			})
		})

		Convey("When a cycle length is configured", func() {
			reg := NewRegistry(DefaultCatalog(), WithCycleDays(30))
			p, _ := reg.Processor("er")

			Convey("Then reports without one should use it", func() {
				m, err := p.ComputeMetrics(context.Background(), &model.PlatformPlayerStatus{ID: "p", Name: "n"}, nil, nil)
				So(err, ShouldBeNil)
				So(m.DaysUntilCycleEnd, ShouldEqual, 30)
			})
		})

		Convey("When the catalog is custom", func() {
			c := Catalog{"solo": DefaultCatalog()[ER]}
			reg := NewRegistry(c)

			Convey("Then only its teams should be registered", func() {
				So(reg.Teams(), ShouldResemble, []TeamID{"solo"})
				p, err := reg.Processor("solo")
				So(err, ShouldBeNil)
				So(p.Team(), ShouldEqual, TeamID("solo"))
			})
		})
	})
}
