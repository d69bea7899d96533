package device

import (
	"context"
	"errors"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

// blockingLock holds LockLandscape until released.
type blockingLock struct {
	*Memory
	entered chan struct{}
	proceed chan struct{}
}

func (b *blockingLock) LockLandscape(ctx context.Context) error {
	close(b.entered)
	<-b.proceed
	return b.Memory.LockLandscape(ctx)
}

func TestClaim(t *testing.T) {
	ctx := context.Background()

	Convey("Given healthy resources", t, func() {
		res := NewMemory(0.6)
		claim := NewClaim(res, func() bool { return true })

		Convey("When acquiring", func() {
			caps, err := claim.Acquire(ctx)

			Convey("Then every control should be available", func() {
				So(err, ShouldBeNil)
				So(caps.Orientation, ShouldBeTrue)
				So(caps.Brightness, ShouldBeTrue)
				So(caps.InitialBrightness, ShouldEqual, 0.6)
				So(res.Landscape(), ShouldBeTrue)
				So(res.Hub.Len(), ShouldEqual, 1)
			})

			Convey("And releasing twice", func() {
				So(claim.Release(ctx), ShouldBeNil)
				So(claim.Release(ctx), ShouldBeNil)

				Convey("Then everything should be given back once", func() {
					So(res.Landscape(), ShouldBeFalse)
					So(res.Hub.Len(), ShouldEqual, 0)
					So(res.Unlocks(), ShouldEqual, 1)
					So(claim.Released(), ShouldBeTrue)
				})
			})
		})
	})

	Convey("Given resources that fail to lock orientation", t, func() {
		res := NewMemory(0.5)
		res.LockErr = errors.New("rotation unsupported")
		claim := NewClaim(res, nil)

		Convey("When acquiring", func() {
			caps, err := claim.Acquire(ctx)

			Convey("Then only orientation should be disabled", func() {
				So(err, ShouldNotBeNil)
				So(caps.Orientation, ShouldBeFalse)
				So(caps.Brightness, ShouldBeTrue)
			})

			Convey("And releasing", func() {
				So(claim.Release(ctx), ShouldBeNil)

				Convey("Then unlock should still be attempted", func() {
					So(res.Unlocks(), ShouldEqual, 1)
				})
			})
		})
	})

	Convey("Given brightness permission is denied", t, func() {
		res := NewMemory(0.5)
		res.Denied = true
		claim := NewClaim(res, nil)

		Convey("When acquiring", func() {
			caps, err := claim.Acquire(ctx)

			Convey("Then brightness should be disabled", func() {
				So(errors.Is(err, ErrPermissionDenied), ShouldBeTrue)
				So(caps.Brightness, ShouldBeFalse)
				So(caps.Orientation, ShouldBeTrue)
			})
		})
	})

	Convey("Given every release step fails", t, func() {
		res := NewMemory(0.5)
		res.UnlockErr = errors.New("unlock failed")
		claim := NewClaim(res, func() bool { return true })
		_, _ = claim.Acquire(ctx)

		Convey("When releasing", func() {
			err := claim.Release(ctx)

			Convey("Then the error should be reported and back still released", func() {
				So(err, ShouldNotBeNil)
				So(errors.Is(err, res.UnlockErr), ShouldBeTrue)
				So(res.Hub.Len(), ShouldEqual, 0)
			})
		})
	})

	Convey("Given an acquisition still in flight", t, func() {
		res := &blockingLock{
			Memory:  NewMemory(0.5),
			entered: make(chan struct{}),
			proceed: make(chan struct{}),
		}
		claim := NewClaim(res, func() bool { return true })

		done := make(chan Capabilities)
		go func() {
			caps, _ := claim.Acquire(ctx)
			done <- caps
		}()
		<-res.entered

		Convey("When releasing before it completes", func() {
			So(claim.Release(ctx), ShouldBeNil)
			close(res.proceed)
			caps := <-done

			Convey("Then the late lock should be undone", func() {
				So(caps, ShouldResemble, Capabilities{})
				So(res.Landscape(), ShouldBeFalse)
				So(res.Unlocks(), ShouldEqual, 2)
				So(res.Hub.Len(), ShouldEqual, 0)
			})
		})
	})
}

func TestBackHub(t *testing.T) {
	Convey("Given a hub with two handlers", t, func() {
		var hub BackHub
		var calls []string

		releaseOuter := hub.Push(func() bool {
			calls = append(calls, "outer")
			return true
		})
		releaseInner := hub.Push(func() bool {
			calls = append(calls, "inner")
			return false
		})

		Convey("When back is pressed", func() {
			handled := hub.Press()

			Convey("Then the newest handler should run first", func() {
				So(handled, ShouldBeTrue)
				So(calls, ShouldResemble, []string{"inner", "outer"})
			})
		})

		Convey("When every handler is released", func() {
			releaseOuter()
			releaseInner()
			releaseInner()

			Convey("Then back should not be handled", func() {
				So(hub.Press(), ShouldBeFalse)
				So(hub.Len(), ShouldEqual, 0)
			})
		})
	})
}

type fakeProps struct {
	set map[string]any
	get float64
}

func (f *fakeProps) SetProperty(_ context.Context, name string, value any) error {
	f.set[name] = value
	return nil
}

func (f *fakeProps) GetFloatProperty(context.Context, string) (float64, error) {
	return f.get, nil
}

func TestDisplay(t *testing.T) {
	ctx := context.Background()

	Convey("Given a display over player properties", t, func() {
		props := &fakeProps{set: map[string]any{}, get: 0}
		hub := &BackHub{}
		d := NewDisplay(props, hub)

		Convey("Then landscape should map to fullscreen", func() {
			So(d.LockLandscape(ctx), ShouldBeNil)
			So(props.set["fullscreen"], ShouldEqual, true)
			So(d.Unlock(ctx), ShouldBeNil)
			So(props.set["fullscreen"], ShouldEqual, false)
		})

		Convey("Then brightness should map onto the filter range", func() {
			v, err := d.Brightness(ctx)
			So(err, ShouldBeNil)
			So(v, ShouldEqual, 0.5)

			So(d.SetBrightness(ctx, 1.4), ShouldBeNil)
			So(props.set["brightness"], ShouldEqual, 100)
			So(d.SetBrightness(ctx, 0.25), ShouldBeNil)
			So(props.set["brightness"], ShouldEqual, -50)
		})

		Convey("Then back interception should go through the hub", func() {
			release := d.InterceptBack(func() bool { return true })
			So(hub.Press(), ShouldBeTrue)
			release()
			So(hub.Press(), ShouldBeFalse)
		})
	})
}
