package icon

import (
	"testing"

	"github.com/reelplay/reelplay/key"
	. "github.com/smartystreets/goconvey/convey"
	"github.com/spf13/viper"
)

func TestGet(t *testing.T) {
	Convey("Given a registered icon", t, func() {
		target := Resume

		Convey("It renders correctly for each variant", func() {
			for _, variant := range AvailableVariants() {
				Convey("variant="+variant, func() {
					viper.Set(key.IconsVariant, variant)
					So(Get(target), ShouldNotBeEmpty)
				})
			}
		})

		Convey("It returns empty for an unknown variant", func() {
			viper.Set(key.IconsVariant, "")
			So(Get(target), ShouldBeEmpty)
		})
	})

	Convey("Given an unregistered icon", t, func() {
		viper.Set(key.IconsVariant, plain)
		So(Get(Icon(99)), ShouldBeEmpty)
	})
}
