package progress

import (
	"math"
	"testing"

	"github.com/okian/goalboard/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMapBar(t *testing.T) {
	Convey("Given goal percentages", t, func() {
		Convey("When the value is at a band boundary", func() {
			Convey("Then fifty should close the red band", func() {
				bar := MapBar(50)
				So(bar.Color, ShouldEqual, model.ColorRed)
				So(bar.FillPercentage, ShouldEqual, 33.33)
			})

			Convey("Then one hundred should close the yellow band", func() {
				bar := MapBar(100)
				So(bar.Color, ShouldEqual, model.ColorYellow)
				So(bar.FillPercentage, ShouldEqual, 66.66)
			})

			Convey("Then one hundred and fifty should fill the bar", func() {
				bar := MapBar(150)
				So(bar.Color, ShouldEqual, model.ColorGreen)
				So(bar.FillPercentage, ShouldEqual, 100)
			})
		})

		Convey("When the value lies inside a band", func() {
			Convey("Then the fill should be interpolated", func() {
				So(MapBar(0).FillPercentage, ShouldEqual, 0)
				So(MapBar(25).FillPercentage, ShouldEqual, 16.67)
				So(MapBar(88).FillPercentage, ShouldEqual, 58.66)
				So(MapBar(88).Color, ShouldEqual, model.ColorYellow)
				So(MapBar(101).Color, ShouldEqual, model.ColorGreen)
				So(MapBar(125).FillPercentage, ShouldEqual, 83.33)
			})
		})

		Convey("When the value exceeds the saturation point", func() {
			bar := MapBar(200)

			Convey("Then the fill should saturate but the percentage is kept", func() {
				So(bar.FillPercentage, ShouldEqual, 100)
				So(bar.Percentage, ShouldEqual, 200)
				So(bar.Color, ShouldEqual, model.ColorGreen)
			})
		})

		Convey("When the value is invalid", func() {
			Convey("Then it should map to an empty red bar", func() {
				for _, v := range []float64{math.NaN(), math.Inf(1), -10} {
					bar := MapBar(v)
					So(bar.Percentage, ShouldEqual, 0)
					So(bar.Color, ShouldEqual, model.ColorRed)
					So(bar.FillPercentage, ShouldEqual, 0)
				}
			})
		})

		Convey("When the value has more than two decimals", func() {
			Convey("Then the percentage should be rounded", func() {
				So(MapBar(42.345).Percentage, ShouldEqual, 42.35)
			})
		})
	})
}

func TestMapBarFillSweep(t *testing.T) {
	Convey("Given percentages from 0 to 200 in steps of 0.01", t, func() {
		const steps = 20000
		fills := make([]float64, steps+1)
		for i := range fills {
			fills[i] = MapBar(float64(i) / 100).FillPercentage
		}

		Convey("Then the fill should never decrease or jump", func() {
			decreases, maxStep := 0, 0.0
			for i := 1; i < len(fills); i++ {
				step := fills[i] - fills[i-1]
				if step < 0 {
					decreases++
				}
				maxStep = math.Max(maxStep, step)
			}
			So(decreases, ShouldEqual, 0)
			So(maxStep, ShouldBeLessThanOrEqualTo, 0.02)
		})

		Convey("Then the fill should be empty at 0 and full from 150", func() {
			So(fills[0], ShouldEqual, 0)
			for i := 15000; i <= steps; i++ {
				if fills[i] != 100 {
					So(fills[i], ShouldEqual, 100)
					break
				}
			}
		})

		Convey("Then the fill should be continuous across band boundaries", func() {
			for _, boundary := range []int{5000, 10000} {
				So(math.Abs(fills[boundary]-fills[boundary-1]), ShouldBeLessThanOrEqualTo, 0.02)
				So(math.Abs(fills[boundary+1]-fills[boundary]), ShouldBeLessThanOrEqualTo, 0.02)
			}
		})
	})
}
