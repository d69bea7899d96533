package where

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/reelplay/reelplay/filesystem"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	filesystem.SetMemMapFs()
}

func TestWhere(t *testing.T) {
	Convey("Given a custom config path", t, func() {
		custom := filepath.Join(os.TempDir(), "reelplay-where-test")
		t.Setenv(EnvConfigPath, custom)

		Convey("Config should return it", func() {
			So(Config(), ShouldEqual, custom)
		})

		Convey("History and logs should live under it", func() {
			So(History(), ShouldEqual, filepath.Join(custom, "history.json"))
			So(Logs(), ShouldEqual, filepath.Join(custom, "logs"))
		})

		Convey("The directory should exist on the active filesystem", func() {
			_ = Config()
			exists, err := filesystem.API().DirExists(custom)
			So(err, ShouldBeNil)
			So(exists, ShouldBeTrue)
		})
	})

	Convey("The sqlite database should be named after the backend", t, func() {
		So(filepath.Base(HistoryDB()), ShouldEqual, "history.sqlite")
	})
}
