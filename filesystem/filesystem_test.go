package filesystem

import (
	"os"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestBackend(t *testing.T) {
	Convey("Filesystem backend", t, func() {
		Convey("Should default to the OS", func() {
			SetOsFs()
			So(API().Name(), ShouldEqual, "OsFs")
		})

		Convey("Should switch to memory", func() {
			SetMemMapFs()
			So(API().Name(), ShouldEqual, "MemMapFS")
		})

		Convey("GacheFs should write through the active backend", func() {
			SetMemMapFs()
			fs := GacheFs{}
			So(fs.MkdirAll("/cache", os.ModePerm), ShouldBeNil)

			f, err := fs.OpenFile("/cache/entry.json", os.O_CREATE|os.O_RDWR, 0o600)
			So(err, ShouldBeNil)
			_, err = f.Write([]byte(`{}`))
			So(err, ShouldBeNil)
			So(f.Close(), ShouldBeNil)

			data, err := API().ReadFile("/cache/entry.json")
			So(err, ShouldBeNil)
			So(string(data), ShouldEqual, `{}`)
		})
	})
}
