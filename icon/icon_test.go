package icon

import (
	"testing"

	"github.com/relayplay/relayplay/key"
	. "github.com/smartystreets/goconvey/convey"
	"github.com/spf13/viper"
)

func TestGet(t *testing.T) {
	Convey("Given a registered icon", t, func() {
		target := Relay

		Convey("It renders correctly for each variant", func() {
			for _, variant := range AvailableVariants() {
				Convey("variant="+variant, func() {
					viper.Set(key.IconsVariant, variant)
					result := Get(target)
					So(result, ShouldNotBeEmpty)
				})
			}
		})

		Convey("It returns empty for an unknown variant", func() {
			viper.Set(key.IconsVariant, "")
			result := Get(target)
			So(result, ShouldBeEmpty)
		})
	})

	Convey("Every icon should render in every variant", t, func() {
		for _, variant := range AvailableVariants() {
			viper.Set(key.IconsVariant, variant)
			for i := Success; i <= Reconnect; i++ {
				So(Get(i), ShouldNotBeEmpty)
			}
		}
	})
}
