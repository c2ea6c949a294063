package ui

import (
	"strings"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestModel(t *testing.T) {
	Convey("Given a toast model", t, func() {
		m := &Model{}
		So(m.View("a\nb"), ShouldEqual, "a\nb")

		Convey("A toast should be shown and expire", func() {
			So(m.Update(Toast("saved")), ShouldNotBeNil)
			So(m.Text(), ShouldEqual, "saved")
			So(strings.HasPrefix(strings.Split(m.View("a\nb"), "\n")[1], "b  "), ShouldBeTrue)

			first := m.at
			m.Update(ClearMsg{At: first})
			So(m.Text(), ShouldBeEmpty)
		})

		Convey("An older expiry should not clear a newer toast", func() {
			m.Update(Toast("one"))
			stale := ClearMsg{At: m.at.Add(-1)}
			m.Update(Toast("two"))
			m.Update(stale)
			So(m.Text(), ShouldEqual, "two")
		})
	})
}
