package gesture

import (
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
)

func TestDisambiguator(t *testing.T) {
	base := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	at := func(ms int) time.Time {
		return base.Add(time.Duration(ms) * time.Millisecond)
	}

	Convey("Given a disambiguator with a 300ms window", t, func() {
		d := New(300*time.Millisecond, CandidateOnly)

		Convey("When tapping once", func() {
			r := d.Tap(Event{Side: Right, At: at(0)})

			Convey("Then the tap should only be a candidate", func() {
				So(r.Kind, ShouldEqual, Candidate)
				So(r.Pending, ShouldBeFalse)
			})
		})

		Convey("When tapping twice on the right 200ms apart", func() {
			d.Tap(Event{Side: Right, At: at(0)})
			r := d.Tap(Event{Side: Right, At: at(200)})

			Convey("Then a right double tap should be detected", func() {
				So(r.Kind, ShouldEqual, DoubleTap)
				So(r.Side, ShouldEqual, Right)
			})

			Convey("And tapping a third time", func() {
				third := d.Tap(Event{Side: Right, At: at(350)})

				Convey("Then it should start a new candidate", func() {
					So(third.Kind, ShouldEqual, Candidate)
				})
			})
		})

		Convey("When tapping twice exactly one window apart", func() {
			d.Tap(Event{Side: Left, At: at(0)})
			r := d.Tap(Event{Side: Left, At: at(300)})

			Convey("Then it should not be a double tap", func() {
				So(r.Kind, ShouldEqual, Candidate)
			})
		})

		Convey("When the second tap lands on the other side", func() {
			d.Tap(Event{Side: Left, At: at(0)})
			r := d.Tap(Event{Side: Right, At: at(100)})

			Convey("Then the double tap should belong to the second side", func() {
				So(r.Kind, ShouldEqual, DoubleTap)
				So(r.Side, ShouldEqual, Right)
			})
		})

		Convey("When the clock goes backwards", func() {
			d.Tap(Event{Side: Left, At: at(500)})
			r := d.Tap(Event{Side: Left, At: at(400)})

			Convey("Then it should not be a double tap", func() {
				So(r.Kind, ShouldEqual, Candidate)
			})
		})

		Convey("When settling under the candidate only policy", func() {
			r := d.Tap(Event{Side: Left, At: at(0)})

			Convey("Then nothing should settle", func() {
				So(d.Settle(r.Gen), ShouldBeFalse)
			})
		})
	})

	Convey("Given a disambiguator that toggles the overlay", t, func() {
		d := New(300*time.Millisecond, ToggleOverlay)

		Convey("When a single tap is not followed by another", func() {
			r := d.Tap(Event{Side: Left, At: at(0)})

			Convey("Then it should settle exactly once", func() {
				So(r.Pending, ShouldBeTrue)
				So(d.Settle(r.Gen), ShouldBeTrue)
				So(d.Settle(r.Gen), ShouldBeFalse)
			})
		})

		Convey("When a single tap becomes a double tap", func() {
			first := d.Tap(Event{Side: Left, At: at(0)})
			second := d.Tap(Event{Side: Left, At: at(100)})

			Convey("Then the first tap should not settle", func() {
				So(second.Kind, ShouldEqual, DoubleTap)
				So(d.Settle(first.Gen), ShouldBeFalse)
				So(d.Settle(second.Gen), ShouldBeFalse)
			})
		})

		Convey("When reset between the tap and its settlement", func() {
			r := d.Tap(Event{Side: Right, At: at(0)})
			d.Reset()

			Convey("Then it should not settle", func() {
				So(d.Settle(r.Gen), ShouldBeFalse)
			})
		})
	})

	Convey("Given the overlay toggle setting", t, func() {
		So(ParsePolicy(true), ShouldEqual, ToggleOverlay)
		So(ParsePolicy(false), ShouldEqual, CandidateOnly)
		So(Left.String(), ShouldEqual, "left")
	})
}
