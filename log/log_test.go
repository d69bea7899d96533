package log

import (
	"bytes"
	"testing"

	"github.com/sirupsen/logrus"
	. "github.com/smartystreets/goconvey/convey"
)

func TestLog(t *testing.T) {
	Convey("Given a captured output", t, func() {
		var buf bytes.Buffer
		SetOutput(&buf, "warn")

		Convey("Warnings should be written", func() {
			Warnf("storage unavailable: %s", "disk full")
			So(buf.String(), ShouldContainSubstring, "storage unavailable: disk full")
		})

		Convey("Messages below the level should be dropped", func() {
			Infof("tick %d", 1)
			So(buf.Len(), ShouldEqual, 0)
		})

		Convey("Fields should be rendered", func() {
			With(logrus.Fields{"uri": "a.mp4"}).Warn("persist failed")
			So(buf.String(), ShouldContainSubstring, "uri=a.mp4")
		})
	})
}
