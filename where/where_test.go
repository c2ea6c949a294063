package where

import (
	"path/filepath"
	"testing"

	"github.com/relayplay/relayplay/filesystem"
	"github.com/relayplay/relayplay/key"
	"github.com/samber/lo"
	. "github.com/smartystreets/goconvey/convey"
	"github.com/spf13/viper"
)

func init() {
	// Use in-memory filesystem for tests to avoid creating real directories
	filesystem.SetMemMapFs()
}

func TestPaths(t *testing.T) {
	Convey("Path functions", t, func() {
		Convey("Config()", func() {
			path := Config()
			So(path, ShouldNotBeEmpty)
			So(lo.Must(filesystem.API().IsDir(path)), ShouldBeTrue)
		})

		Convey("Cache()", func() {
			path := Cache()
			So(path, ShouldNotBeEmpty)
			So(lo.Must(filesystem.API().IsDir(path)), ShouldBeTrue)
		})

		Convey("Logs()", func() {
			path := Logs()
			So(path, ShouldNotBeEmpty)
			So(lo.Must(filesystem.API().IsDir(path)), ShouldBeTrue)
		})

		Convey("Screenshots()", func() {
			Convey("Should default to the config directory", func() {
				viper.Set(key.ScreenshotDir, "")
				So(Screenshots(), ShouldEqual, filepath.Join(Config(), "screenshots"))
			})

			Convey("Should honour screenshot.dir", func() {
				viper.Set(key.ScreenshotDir, "/shots")
				So(Screenshots(), ShouldEqual, "/shots")
				So(lo.Must(filesystem.API().IsDir("/shots")), ShouldBeTrue)
				viper.Set(key.ScreenshotDir, "")
			})
		})

		Convey("History() should live in the cache directory", func() {
			So(filepath.Dir(History()), ShouldEqual, Cache())
		})
	})
}
