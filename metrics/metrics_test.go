package metrics

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	. "github.com/smartystreets/goconvey/convey"
)

func TestCounters(t *testing.T) {
	Convey("Given the player counters", t, func() {
		before := testutil.ToFloat64(DoubleTaps.WithLabelValues("left"))

		Convey("When a double tap is counted", func() {
			DoubleTaps.WithLabelValues("left").Inc()

			Convey("Then the counter should grow by one", func() {
				So(testutil.ToFloat64(DoubleTaps.WithLabelValues("left")), ShouldEqual, before+1)
			})
		})
	})
}

func TestServe(t *testing.T) {
	Convey("Given a cancelled context", t, func() {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		Convey("When serving", func() {
			err := Serve(ctx, "127.0.0.1:0")

			Convey("Then it should shut down cleanly", func() {
				So(err, ShouldBeNil)
			})
		})
	})
}
