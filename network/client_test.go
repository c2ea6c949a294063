package network

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/relayplay/relayplay/constant"
	. "github.com/smartystreets/goconvey/convey"
)

func TestClient(t *testing.T) {
	Convey("Given a client built by New", t, func() {
		var got string
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got = r.Header.Get("User-Agent")
		}))
		defer srv.Close()

		client := New(time.Second)

		Convey("It should carry the configured timeout", func() {
			So(client.Timeout, ShouldEqual, time.Second)
		})

		Convey("It should send the application User-Agent", func() {
			resp, err := client.Get(srv.URL)
			So(err, ShouldBeNil)
			resp.Body.Close()
			So(got, ShouldEqual, constant.UserAgent)
		})

		Convey("It should keep an explicit User-Agent", func() {
			req, _ := http.NewRequest(http.MethodGet, srv.URL, nil)
			req.Header.Set("User-Agent", "custom")
			resp, err := client.Do(req)
			So(err, ShouldBeNil)
			resp.Body.Close()
			So(got, ShouldEqual, "custom")
		})
	})
}
