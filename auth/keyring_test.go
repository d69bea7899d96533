package auth

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
	"github.com/zalando/go-keyring"
)

func init() {
	keyring.MockInit()
}

func TestToken(t *testing.T) {
	Convey("Given an empty keyring", t, func() {
		So(DeleteToken(), ShouldBeNil)

		Convey("When reading the token", func() {
			token, err := GetToken()

			Convey("Then it should be empty without error", func() {
				So(err, ShouldBeNil)
				So(token, ShouldBeEmpty)
			})
		})

		Convey("When a token is stored", func() {
			So(SetToken("secret"), ShouldBeNil)

			Convey("Then it should be read back", func() {
				token, err := GetToken()
				So(err, ShouldBeNil)
				So(token, ShouldEqual, "secret")
			})

			Convey("And deleted", func() {
				So(DeleteToken(), ShouldBeNil)

				Convey("Then it should be gone", func() {
					token, err := GetToken()
					So(err, ShouldBeNil)
					So(token, ShouldBeEmpty)
				})
			})
		})
	})
}
