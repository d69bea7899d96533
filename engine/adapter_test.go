package engine_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/reelplay/reelplay/engine"
	"github.com/reelplay/reelplay/engine/enginetest"
	. "github.com/smartystreets/goconvey/convey"
)

type recorder struct {
	statuses []engine.Status
	errs     []error
}

func (r *recorder) handlers() engine.Handlers {
	return engine.Handlers{
		OnStatus: func(st engine.Status) { r.statuses = append(r.statuses, st) },
		OnError:  func(err error) { r.errs = append(r.errs, err) },
	}
}

func (r *recorder) positions() []time.Duration {
	out := make([]time.Duration, len(r.statuses))
	for i, st := range r.statuses {
		out[i] = st.Position
	}
	return out
}

func TestAdapterLoad(t *testing.T) {
	ctx := context.Background()

	Convey("Given an adapter over a surface", t, func() {
		surface := enginetest.NewSurface(time.Minute)
		adapter := engine.NewAdapter(surface)
		rec := &recorder{}

		Convey("When loading a valid source", func() {
			sub, err := adapter.Load(ctx, engine.Source{URI: "https://cdn/a.m3u8"}, rec.handlers())

			Convey("Then the status should be loaded with the duration", func() {
				So(err, ShouldBeNil)
				So(sub.Active(), ShouldBeTrue)
				So(adapter.Status().IsLoaded, ShouldBeTrue)
				So(adapter.Status().Duration, ShouldEqual, time.Minute)
				So(surface.Ops(), ShouldResemble, []string{"open"})
			})

			Convey("And cancelling the subscription twice", func() {
				sub.Cancel()
				sub.Cancel()

				Convey("Then no listeners should remain and no ticks delivered", func() {
					before := len(rec.statuses)
					surface.Emit(engine.Status{IsLoaded: true, IsPlaying: true, Position: time.Second, Duration: time.Minute})
					So(surface.Subscribers(), ShouldEqual, 0)
					So(len(rec.statuses), ShouldEqual, before)
					So(sub.Active(), ShouldBeFalse)
				})
			})

			Convey("And loading another source", func() {
				second, err := adapter.Load(ctx, engine.Source{URI: "https://cdn/b.m3u8"}, engine.Handlers{})

				Convey("Then the first subscription should be cancelled", func() {
					So(err, ShouldBeNil)
					So(sub.Active(), ShouldBeFalse)
					So(second.Active(), ShouldBeTrue)
					So(surface.Subscribers(), ShouldEqual, 1)
				})
			})
		})

		Convey("When loading an empty uri", func() {
			_, err := adapter.Load(ctx, engine.Source{URI: "  "}, rec.handlers())

			Convey("Then the error should be unresolvable", func() {
				So(errors.Is(err, engine.ErrUnresolvable), ShouldBeTrue)
				So(surface.Count("open"), ShouldEqual, 0)
			})
		})

		Convey("When the surface fails to open", func() {
			surface.OpenErr = errors.New("connection refused")
			_, err := adapter.Load(ctx, engine.Source{URI: "https://cdn/a.m3u8"}, rec.handlers())

			Convey("Then the error should be classified as unresolvable", func() {
				So(errors.Is(err, engine.ErrUnresolvable), ShouldBeTrue)
				So(engine.Terminal(err), ShouldBeTrue)
				So(surface.Subscribers(), ShouldEqual, 0)
			})
		})

		Convey("When the surface reports a decode failure", func() {
			surface.OpenErr = engine.ErrDecodeFailure
			_, err := adapter.Load(ctx, engine.Source{URI: "file:///a.xyz"}, rec.handlers())

			Convey("Then the decode failure should be preserved", func() {
				So(errors.Is(err, engine.ErrDecodeFailure), ShouldBeTrue)
				So(errors.Is(err, engine.ErrUnresolvable), ShouldBeFalse)
			})
		})

		Convey("When transport calls are made before loading", func() {
			Convey("Then they should fail with no source", func() {
				So(adapter.Play(ctx), ShouldEqual, engine.ErrNoSource)
				So(adapter.Pause(ctx), ShouldEqual, engine.ErrNoSource)
				_, err := adapter.Seek(ctx, time.Second)
				So(err, ShouldEqual, engine.ErrNoSource)
			})
		})
	})
}

func TestAdapterTransport(t *testing.T) {
	ctx := context.Background()

	Convey("Given a loaded adapter", t, func() {
		surface := enginetest.NewSurface(time.Minute)
		adapter := engine.NewAdapter(surface)
		rec := &recorder{}
		_, err := adapter.Load(ctx, engine.Source{URI: "https://cdn/a.m3u8"}, rec.handlers())
		So(err, ShouldBeNil)
		surface.Reset()

		Convey("When calling play twice", func() {
			So(adapter.Play(ctx), ShouldBeNil)
			So(adapter.Play(ctx), ShouldBeNil)

			Convey("Then the surface should be played once", func() {
				So(surface.Count("play"), ShouldEqual, 1)
				So(adapter.ShouldPlay(), ShouldBeTrue)
			})
		})

		Convey("When the surface pauses itself after play", func() {
			So(adapter.Play(ctx), ShouldBeNil)
			surface.Emit(engine.Status{IsLoaded: true, Position: 5 * time.Second, Duration: time.Minute})

			Convey("Then play should reach the surface again", func() {
				So(adapter.ShouldPlay(), ShouldBeFalse)
				So(adapter.Play(ctx), ShouldBeNil)
				So(surface.Ops(), ShouldResemble, []string{"play", "play"})
			})
		})

		Convey("When the surface resumes itself while paused", func() {
			surface.Emit(engine.Status{IsLoaded: true, IsPlaying: true, Position: 5 * time.Second, Duration: time.Minute})

			Convey("Then pause should reach the surface", func() {
				So(adapter.ShouldPlay(), ShouldBeTrue)
				So(adapter.Pause(ctx), ShouldBeNil)
				So(surface.Ops(), ShouldResemble, []string{"pause"})
			})
		})

		Convey("When pausing an already paused adapter", func() {
			So(adapter.Pause(ctx), ShouldBeNil)

			Convey("Then the surface should not be touched", func() {
				So(surface.Count("pause"), ShouldEqual, 0)
			})
		})

		Convey("When setting an unsupported rate", func() {
			So(adapter.SetRate(ctx, 1.5), ShouldBeNil)
			err := adapter.SetRate(ctx, 3.0)

			Convey("Then the rate should be rejected and stay unchanged", func() {
				So(errors.Is(err, engine.ErrInvalidRate), ShouldBeTrue)
				So(adapter.Rate(), ShouldEqual, 1.5)
				So(surface.Count("rate"), ShouldEqual, 1)
			})
		})

		Convey("When setting an out of range volume", func() {
			So(adapter.SetVolume(ctx, 1.7), ShouldBeNil)
			high := adapter.Volume()
			So(adapter.SetVolume(ctx, -0.2), ShouldBeNil)

			Convey("Then it should be clamped to the unit range", func() {
				So(high, ShouldEqual, 1.0)
				So(adapter.Volume(), ShouldEqual, 0.0)
			})
		})

		Convey("When the surface pushes an error", func() {
			surface.Fail(errors.New("stream lost"))

			Convey("Then the listener should receive a classified error", func() {
				So(rec.errs, ShouldHaveLength, 1)
				So(errors.Is(rec.errs[0], engine.ErrUnresolvable), ShouldBeTrue)
			})
		})
	})
}

func TestAdapterSeek(t *testing.T) {
	ctx := context.Background()

	Convey("Given a playing adapter", t, func() {
		surface := enginetest.NewSurface(time.Minute)
		adapter := engine.NewAdapter(surface)
		rec := &recorder{}
		_, err := adapter.Load(ctx, engine.Source{URI: "https://cdn/a.m3u8"}, rec.handlers())
		So(err, ShouldBeNil)
		So(adapter.Play(ctx), ShouldBeNil)
		surface.Reset()
		rec.statuses = nil

		Convey("When seeking past the end", func() {
			pos, err := adapter.Seek(ctx, 2*time.Minute)

			Convey("Then the target should be clamped to the duration", func() {
				So(err, ShouldBeNil)
				So(pos, ShouldEqual, time.Minute)
			})
		})

		Convey("When seeking before the start", func() {
			pos, err := adapter.Seek(ctx, -5*time.Second)

			Convey("Then the target should be clamped to zero", func() {
				So(err, ShouldBeNil)
				So(pos, ShouldEqual, time.Duration(0))
			})
		})

		Convey("When seeking while playing", func() {
			_, err := adapter.Seek(ctx, 20*time.Second)

			Convey("Then playback should pause, seek, and resume", func() {
				So(err, ShouldBeNil)
				want := []enginetest.Call{
					{Op: "pause"},
					{Op: "seek", Arg: 20 * time.Second},
					{Op: "play"},
				}
				So(cmp.Diff(want, surface.Calls()), ShouldBeEmpty)
			})

			Convey("Then a synthetic status with the new position should be delivered", func() {
				So(rec.statuses, ShouldHaveLength, 1)
				So(rec.statuses[0].Position, ShouldEqual, 20*time.Second)
				So(rec.statuses[0].IsPlaying, ShouldBeTrue)
			})
		})

		Convey("When seeking while paused", func() {
			So(adapter.Pause(ctx), ShouldBeNil)
			surface.Reset()
			_, err := adapter.Seek(ctx, 20*time.Second)

			Convey("Then playback should not resume", func() {
				So(err, ShouldBeNil)
				So(surface.Ops(), ShouldResemble, []string{"seek"})
			})
		})

		Convey("When a scrub holds the surface", func() {
			So(adapter.Hold(ctx), ShouldBeNil)
			surface.Emit(engine.Status{IsLoaded: true, IsPlaying: false, Position: 3 * time.Second, Duration: time.Minute})

			Convey("Then ticks should be withheld until the seek completes", func() {
				So(rec.statuses, ShouldBeEmpty)

				_, err := adapter.Seek(ctx, 40*time.Second)
				So(err, ShouldBeNil)
				So(rec.positions(), ShouldResemble, []time.Duration{40 * time.Second})
				So(surface.Ops(), ShouldResemble, []string{"pause", "seek", "play"})
			})
		})

		Convey("When a stale tick from before a backward seek arrives", func() {
			surface.Emit(engine.Status{IsLoaded: true, IsPlaying: true, Position: time.Minute - time.Second, Duration: time.Minute})
			_, err := adapter.Seek(ctx, 50*time.Second)
			So(err, ShouldBeNil)

			for _, pos := range []time.Duration{59250 * time.Millisecond, 50500 * time.Millisecond, 51 * time.Second} {
				surface.Emit(engine.Status{IsLoaded: true, IsPlaying: true, Position: pos, Duration: time.Minute})
			}

			Convey("Then it should be dropped instead of raising the floor", func() {
				want := []time.Duration{59 * time.Second, 50 * time.Second, 50500 * time.Millisecond, 51 * time.Second}
				So(cmp.Diff(want, rec.positions()), ShouldBeEmpty)
				So(adapter.Status().Position, ShouldEqual, 51*time.Second)
			})

			Convey("And the surface then jumps back on its own", func() {
				surface.Emit(engine.Status{IsLoaded: true, IsPlaying: true, IsSeeking: true, Position: 46 * time.Second, Duration: time.Minute})
				surface.Emit(engine.Status{IsLoaded: true, IsPlaying: true, Position: 46500 * time.Millisecond, Duration: time.Minute})

				Convey("Then the earlier positions should be delivered unclamped", func() {
					So(rec.positions()[4:], ShouldResemble, []time.Duration{46 * time.Second, 46500 * time.Millisecond})
					So(adapter.Status().Position, ShouldEqual, 46500*time.Millisecond)
				})
			})
		})

		Convey("When the surface never lands near the target", func() {
			_, err := adapter.Seek(ctx, 20*time.Second)
			So(err, ShouldBeNil)

			for i := range 4 {
				surface.Emit(engine.Status{IsLoaded: true, IsPlaying: true, Position: 15*time.Second + time.Duration(i)*time.Second, Duration: time.Minute})
			}

			Convey("Then off-target ticks should be accepted after a bounded wait", func() {
				So(rec.positions(), ShouldResemble, []time.Duration{20 * time.Second, 18 * time.Second})
			})
		})

		Convey("When the surface fails to seek", func() {
			surface.SeekErr = errors.New("ipc closed")
			_, err := adapter.Seek(ctx, 20*time.Second)

			Convey("Then the error should be returned and playback resumed", func() {
				So(err, ShouldNotBeNil)
				So(surface.Count("play"), ShouldEqual, 1)
				So(rec.statuses, ShouldBeEmpty)
			})
		})
	})
}

func TestAdapterStatus(t *testing.T) {
	ctx := context.Background()

	Convey("Given a playing adapter", t, func() {
		surface := enginetest.NewSurface(time.Minute)
		adapter := engine.NewAdapter(surface)
		rec := &recorder{}
		_, err := adapter.Load(ctx, engine.Source{URI: "https://cdn/a.m3u8"}, rec.handlers())
		So(err, ShouldBeNil)
		So(adapter.Play(ctx), ShouldBeNil)
		rec.statuses = nil

		tick := func(pos time.Duration) {
			surface.Emit(engine.Status{IsLoaded: true, IsPlaying: true, Position: pos, Duration: time.Minute})
		}

		Convey("When the surface reports a regressing position", func() {
			tick(5 * time.Second)
			tick(4 * time.Second)
			tick(6 * time.Second)

			Convey("Then delivered positions should be non-decreasing", func() {
				So(rec.positions(), ShouldResemble, []time.Duration{5 * time.Second, 5 * time.Second, 6 * time.Second})
			})
		})

		Convey("When the surface reports a position past the duration", func() {
			tick(2 * time.Minute)

			Convey("Then the position should be clamped", func() {
				So(adapter.Status().Position, ShouldEqual, time.Minute)
			})
		})

		Convey("When playback finishes", func() {
			tick(59 * time.Second)
			surface.Emit(engine.Status{IsLoaded: true, Position: time.Minute, Duration: time.Minute, DidJustFinish: true})

			Convey("Then the edge should be delivered once and not retained", func() {
				So(rec.statuses[len(rec.statuses)-1].DidJustFinish, ShouldBeTrue)
				So(adapter.Status().DidJustFinish, ShouldBeFalse)
				So(adapter.ShouldPlay(), ShouldBeFalse)
			})

			Convey("And seeking back to the start", func() {
				surface.Reset()
				_, err := adapter.Seek(ctx, 0)
				So(err, ShouldBeNil)
				tick(time.Second)

				Convey("Then positions should be accepted from the new floor", func() {
					So(adapter.Status().Position, ShouldEqual, time.Second)
				})
			})
		})
	})
}

func TestValidRate(t *testing.T) {
	Convey("Given the rate set", t, func() {
		Convey("Then every listed rate should be valid", func() {
			for _, r := range engine.Rates {
				So(engine.ValidRate(r), ShouldBeTrue)
			}
		})

		Convey("Then unlisted rates should be invalid", func() {
			So(engine.ValidRate(3.0), ShouldBeFalse)
			So(engine.ValidRate(0), ShouldBeFalse)
			So(engine.ValidRate(1.1), ShouldBeFalse)
		})
	})
}
