package util

import (
	"regexp"
	"testing"

	"github.com/relayplay/relayplay/filesystem"
	"github.com/samber/lo"
	. "github.com/smartystreets/goconvey/convey"
)

func TestSanitizeFilename(t *testing.T) {
	Convey("SanitizeFilename", t, func() {
		Convey("Should replace invalid chars", func() {
			So(SanitizeFilename("file:name?.txt"), ShouldEqual, "file_name_.txt")
		})
		Convey("Should collapse underscores", func() {
			So(SanitizeFilename("Late Night  Radio"), ShouldEqual, "Late_Night_Radio")
		})
		Convey("Should trim separators", func() {
			So(SanitizeFilename("-file-name-"), ShouldEqual, "file-name")
		})
	})
}

func TestQuantify(t *testing.T) {
	Convey("Quantify", t, func() {
		So(Quantify(1, "attempt", "attempts"), ShouldEqual, "1 attempt")
		So(Quantify(3, "attempt", "attempts"), ShouldEqual, "3 attempts")
	})
}

func TestReGroups(t *testing.T) {
	Convey("ReGroups", t, func() {
		re := regexp.MustCompile(`^VO: \[(?P<driver>\w+)\] (?P<w>\d+)x(?P<h>\d+)`)

		Convey("Should map named groups", func() {
			groups := ReGroups(re, "VO: [xv] 640x480 => 640x480 Planar YV12")
			So(groups["driver"], ShouldEqual, "xv")
			So(groups["w"], ShouldEqual, "640")
			So(groups["h"], ShouldEqual, "480")
		})

		Convey("Should return nil without a match", func() {
			So(ReGroups(re, "AO: [pulse] 44100Hz 2ch s16le"), ShouldBeNil)
		})
	})
}

func TestFormatElapsed(t *testing.T) {
	Convey("FormatElapsed", t, func() {
		So(FormatElapsed(0), ShouldEqual, "00:00")
		So(FormatElapsed(65.9), ShouldEqual, "01:05")
		So(FormatElapsed(3725), ShouldEqual, "1:02:05")
		So(FormatElapsed(-3), ShouldEqual, "00:00")
	})
}

func TestClamp(t *testing.T) {
	Convey("Clamp", t, func() {
		So(Clamp(120, 0, 100), ShouldEqual, 100)
		So(Clamp(-5, 0, 100), ShouldEqual, 0)
		So(Clamp(0.5, 0.1, 4.0), ShouldEqual, 0.5)
	})
}

func TestDelete(t *testing.T) {
	Convey("Delete", t, func() {
		filesystem.SetMemMapFs()
		lo.Must0(filesystem.API().MkdirAll("/cache/x", 0755))

		So(Delete("/cache"), ShouldBeNil)
		So(lo.Must(filesystem.API().Exists("/cache/x")), ShouldBeFalse)

		Convey("Missing paths are not an error", func() {
			So(Delete("/nothing"), ShouldBeNil)
		})
	})
}
