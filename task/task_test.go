package task

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/relayplay/relayplay/filesystem"
	"github.com/samber/lo"
	. "github.com/smartystreets/goconvey/convey"
)

func TestRegistry(t *testing.T) {
	Convey("Given an empty registry", t, func() {
		r := NewRegistry(context.Background())

		Convey("Drain should return immediately", func() {
			start := time.Now()
			So(r.Drain(time.Second), ShouldBeTrue)
			So(time.Since(start), ShouldBeLessThan, 100*time.Millisecond)
		})

		Convey("When tasks are spawned", func() {
			release := make(chan struct{})
			var ran atomic.Int32

			for i := 0; i < 3; i++ {
				r.Spawn(Func{Label: "wait", Fn: func(ctx context.Context) {
					<-release
					ran.Add(1)
				}})
			}

			Convey("They should be registered until they return", func() {
				So(r.Len(), ShouldEqual, 3)
				close(release)
				So(r.Drain(time.Second), ShouldBeTrue)
				So(r.Len(), ShouldEqual, 0)
				So(ran.Load(), ShouldEqual, 3)
			})

			Convey("Drain should give up after its bound", func() {
				So(r.Drain(50*time.Millisecond), ShouldBeFalse)
				So(r.Len(), ShouldEqual, 3)
				close(release)
				So(r.Drain(time.Second), ShouldBeTrue)
			})
		})

		Convey("A task that spawns a follow-up hands the operation over", func() {
			done := make(chan struct{})
			r.Spawn(Func{Label: "first", Fn: func(ctx context.Context) {
				r.Spawn(Func{Label: "second", Fn: func(ctx context.Context) {
					close(done)
				}})
			}})

			So(r.Drain(time.Second), ShouldBeTrue)
			_, open := <-done
			So(open, ShouldBeFalse)
		})

		Convey("A task is bounded by its own limit", func() {
			var cancelled atomic.Bool
			r.Spawn(Func{Label: "slow", Timeout: 20 * time.Millisecond, Fn: func(ctx context.Context) {
				<-ctx.Done()
				cancelled.Store(true)
			}})

			So(r.Drain(time.Second), ShouldBeTrue)
			So(cancelled.Load(), ShouldBeTrue)
		})

		Convey("Finishing an unknown task is a programming error", func() {
			So(func() { r.unregister(42) }, ShouldPanic)
		})
	})
}

func TestAfter(t *testing.T) {
	Convey("After should fire once its delay elapsed", t, func() {
		r := NewRegistry(context.Background())
		fired := make(chan time.Time, 1)
		start := time.Now()

		r.Spawn(After{Label: "timer", Delay: 30 * time.Millisecond, Fn: func() {
			fired <- time.Now()
		}})

		So(r.Drain(time.Second), ShouldBeTrue)
		So((<-fired).Sub(start), ShouldBeGreaterThanOrEqualTo, 30*time.Millisecond)
	})

	Convey("After should not fire when the registry is cancelled", t, func() {
		ctx, cancel := context.WithCancel(context.Background())
		r := NewRegistry(ctx)
		var fired atomic.Bool

		r.Spawn(After{Label: "timer", Delay: time.Hour, Fn: func() { fired.Store(true) }})
		cancel()

		So(r.Drain(time.Second), ShouldBeTrue)
		So(fired.Load(), ShouldBeFalse)
	})
}

func TestRename(t *testing.T) {
	Convey("Given a screenshot written by the decoder", t, func() {
		filesystem.SetMemMapFs()
		lo.Must0(filesystem.API().WriteFile("/work/shot0001.png", []byte("png"), 0644))
		r := NewRegistry(context.Background())

		Convey("Rename should move it after the delay", func() {
			var result error = context.Canceled
			r.Spawn(Rename{
				From:  "/work/shot0001.png",
				To:    "/shots/shot.png",
				Delay: 10 * time.Millisecond,
				Done:  func(err error) { result = err },
			})

			So(r.Drain(time.Second), ShouldBeTrue)
			So(result, ShouldBeNil)
			So(lo.Must(filesystem.API().Exists("/shots/shot.png")), ShouldBeTrue)
		})
	})
}

func TestDispatchers(t *testing.T) {
	Convey("Inline should run the function on the caller", t, func() {
		called := false
		Inline.Post(func() { called = true })
		So(called, ShouldBeTrue)
	})
}
