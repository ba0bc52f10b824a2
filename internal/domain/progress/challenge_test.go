package progress

import (
	"testing"

	"github.com/okian/goalboard/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func TestFindPercentage(t *testing.T) {
	Convey("Given challenge progress records", t, func() {
		records := []model.ChallengeProgress{
			model.NewChallengeProgress("ch-other", 10),
			model.NewChallengeProgress("ch-billing", 42.345),
			model.NewChallengeProgress("ch-billing-alt", 99),
		}

		Convey("When one of the accepted refs matches", func() {
			v, ok := FindPercentage(records, []string{"ch-billing-alt", "ch-billing"})

			Convey("Then the first matching record in order should win", func() {
				So(ok, ShouldBeTrue)
				So(v, ShouldEqual, 42.35)
			})
		})

		Convey("When nothing matches", func() {
			v, ok := FindPercentage(records, []string{"ch-missing"})

			Convey("Then it should report absence", func() {
				So(ok, ShouldBeFalse)
				So(v, ShouldEqual, 0)
				So(ExtractPercentage(records, []string{"ch-missing"}, 7), ShouldEqual, 7)
			})
		})

		Convey("When the inputs are empty", func() {
			Convey("Then it should report absence", func() {
				_, ok := FindPercentage(nil, []string{"ch-billing"})
				So(ok, ShouldBeFalse)
				_, ok = FindPercentage(records, nil)
				So(ok, ShouldBeFalse)
			})
		})

		Convey("When a matching record has no value", func() {
			empty := model.ChallengeProgress{Challenge: "ch-billing"}
			v, ok := FindPercentage([]model.ChallengeProgress{empty, records[1]}, []string{"ch-billing"})

			Convey("Then it should be skipped", func() {
				So(ok, ShouldBeTrue)
				So(v, ShouldEqual, 42.35)
			})
		})

		Convey("When a record uses an alternate reference field", func() {
			pct := 61.0
			rec := model.ChallengeProgress{ChallengeID: "ch-x", Progress: &pct}

			Convey("Then it should still match", func() {
				v, ok := FindPercentage([]model.ChallengeProgress{rec}, []string{"ch-x"})
				So(ok, ShouldBeTrue)
				So(v, ShouldEqual, 61)
			})
		})
	})
}
