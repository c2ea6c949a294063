package open

import (
	"runtime"
	"testing"

	"github.com/relayplay/relayplay/constant"
	. "github.com/smartystreets/goconvey/convey"
)

func TestCheckURL(t *testing.T) {
	Convey("Given contact URLs announced by a relay", t, func() {
		u, err := checkURL(" http://example.com/board?id=1 ")
		So(err, ShouldBeNil)
		So(u, ShouldEqual, "http://example.com/board?id=1")

		for _, bad := range []string{"", "file:///etc/passwd", "javascript:alert(1)", "-flag"} {
			_, err := checkURL(bad)
			So(err, ShouldNotBeNil)
		}
	})
}

func TestCommand(t *testing.T) {
	Convey("The default handler should be known on desktop platforms", t, func() {
		cmd, ok := command("http://example.com")

		switch runtime.GOOS {
		case constant.Linux, constant.Darwin, constant.Windows:
			So(ok, ShouldBeTrue)
			So(cmd.Args[len(cmd.Args)-1], ShouldEqual, "http://example.com")
		}
	})
}
