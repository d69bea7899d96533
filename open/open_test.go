package open

import (
	"testing"

	"github.com/reelplay/reelplay/constant"
	. "github.com/smartystreets/goconvey/convey"
)

func TestCommand(t *testing.T) {
	Convey("Given a path to open", t, func() {
		Convey("Linux should use xdg-open", func() {
			cmd, ok := Command(constant.Linux, "/tmp/x")
			So(ok, ShouldBeTrue)
			So(cmd.Args, ShouldResemble, []string{"xdg-open", "/tmp/x"})
		})

		Convey("Darwin should use open", func() {
			cmd, ok := Command(constant.Darwin, "/tmp/x")
			So(ok, ShouldBeTrue)
			So(cmd.Args, ShouldResemble, []string{"open", "/tmp/x"})
		})

		Convey("Unknown systems should be rejected", func() {
			_, ok := Command("plan9", "/tmp/x")
			So(ok, ShouldBeFalse)
		})
	})
}
