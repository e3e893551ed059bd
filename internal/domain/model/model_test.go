package model_test

import (
	"testing"

	"github.com/rizeos/workforce/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func TestStringList(t *testing.T) {
	Convey("Given a string list", t, func() {
		list := model.StringList{"Go", "SQL"}

		Convey("When valuing it for storage", func() {
			v, err := list.Value()

			Convey("Then it should be JSON text", func() {
				So(err, ShouldBeNil)
				So(v, ShouldEqual, `["Go","SQL"]`)
			})
		})

		Convey("When scanning JSON text back", func() {
			var out model.StringList
			So(out.Scan(`["React","SQL"]`), ShouldBeNil)
			So(out, ShouldResemble, model.StringList{"React", "SQL"})
		})

		Convey("When scanning nil", func() {
			var out model.StringList
			So(out.Scan(nil), ShouldBeNil)
			So(out, ShouldResemble, model.StringList{})
		})

		Convey("When valuing a nil list", func() {
			var empty model.StringList
			v, err := empty.Value()
			So(err, ShouldBeNil)
			So(v, ShouldEqual, `[]`)
		})
	})
}

func TestBreakdownRoundTrip(t *testing.T) {
	Convey("Given a breakdown snapshot", t, func() {
		b := model.Breakdown{TotalAssigned: 4, TotalCompleted: 2, CompletionRatePct: 50}

		Convey("When stored and scanned back", func() {
			v, err := b.Value()
			So(err, ShouldBeNil)

			var out model.Breakdown
			So(out.Scan(v), ShouldBeNil)
			So(out, ShouldResemble, b)
		})
	})
}

func TestEnumHelpers(t *testing.T) {
	Convey("Given priority and status helpers", t, func() {
		Convey("Then known values should validate", func() {
			So(model.ValidPriority(model.PriorityLow), ShouldBeTrue)
			So(model.ValidPriority(model.PriorityMedium), ShouldBeTrue)
			So(model.ValidPriority(model.PriorityHigh), ShouldBeTrue)
			So(model.ValidStatus(model.StatusAssigned), ShouldBeTrue)
			So(model.ValidStatus(model.StatusInProgress), ShouldBeTrue)
			So(model.ValidStatus(model.StatusCompleted), ShouldBeTrue)
		})

		Convey("Then unknown values should not", func() {
			So(model.ValidPriority("urgent"), ShouldBeFalse)
			So(model.ValidStatus("done"), ShouldBeFalse)
		})
	})
}
