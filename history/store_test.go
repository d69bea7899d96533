package history

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/reelplay/reelplay/filesystem"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	filesystem.SetMemMapFs()
}

func backends(t *testing.T) map[string]func() Store {
	return map[string]func() Store{
		BackendFile: func() Store {
			return NewFileStore(filepath.Join(t.TempDir(), "history.json"))
		},
		BackendSQLite: func() Store {
			s, err := NewSQLiteStore(filepath.Join(t.TempDir(), "history.sqlite"))
			if err != nil {
				t.Fatal(err)
			}
			return s
		},
		BackendMemory: func() Store {
			return NewMemoryStore()
		},
	}
}

func TestStore(t *testing.T) {
	ctx := context.Background()
	now := time.UnixMilli(1_700_000_000_000)

	for name, open := range backends(t) {
		Convey("Given the "+name+" store", t, func() {
			store := open()
			Reset(func() { _ = store.Close() })

			Convey("When reading an unknown uri", func() {
				got, err := store.Get(ctx, "a.mp4")

				Convey("Then it should be absent", func() {
					So(err, ShouldBeNil)
					So(got.IsPresent(), ShouldBeFalse)
				})
			})

			Convey("When saving an entry", func() {
				entry := NewEntry("ignored", "Pilot", 12*time.Second, time.Minute, now)
				err := store.Set(ctx, "a.mp4", entry)

				Convey("Then it should be read back under the given uri", func() {
					So(err, ShouldBeNil)

					got, err := store.Get(ctx, "a.mp4")
					So(err, ShouldBeNil)
					So(got.IsPresent(), ShouldBeTrue)

					e := got.MustGet()
					So(e.URI, ShouldEqual, "a.mp4")
					So(e.PositionMillis, ShouldEqual, 12000)
					So(e.DurationMillis, ShouldEqual, 60000)
					So(e.TimestampMillis, ShouldEqual, now.UnixMilli())
					So(e.Title, ShouldEqual, "Pilot")
				})

				Convey("And saving it again with a new position", func() {
					entry.PositionMillis = 30000
					So(store.Set(ctx, "a.mp4", entry), ShouldBeNil)

					Convey("Then the entry should be replaced", func() {
						entries, err := store.List(ctx)
						So(err, ShouldBeNil)
						So(entries, ShouldHaveLength, 1)
						So(entries[0].PositionMillis, ShouldEqual, 30000)
					})
				})

				Convey("And saving a newer entry", func() {
					later := NewEntry("b.mp4", "Second", time.Second, time.Minute, now.Add(time.Hour))
					So(store.Set(ctx, "b.mp4", later), ShouldBeNil)

					Convey("Then the list should be newest first", func() {
						entries, err := store.List(ctx)
						So(err, ShouldBeNil)
						So(entries, ShouldHaveLength, 2)
						So(entries[0].URI, ShouldEqual, "b.mp4")
						So(entries[1].URI, ShouldEqual, "a.mp4")
					})
				})

				Convey("And removing it", func() {
					So(store.Remove(ctx, "a.mp4"), ShouldBeNil)

					Convey("Then it should be gone", func() {
						got, err := store.Get(ctx, "a.mp4")
						So(err, ShouldBeNil)
						So(got.IsPresent(), ShouldBeFalse)
					})
				})

				Convey("And clearing the store", func() {
					So(store.Clear(ctx), ShouldBeNil)

					Convey("Then nothing should be listed", func() {
						entries, err := store.List(ctx)
						So(err, ShouldBeNil)
						So(entries, ShouldBeEmpty)
					})
				})
			})
		})
	}
}

func TestMemoryStoreFailure(t *testing.T) {
	Convey("Given a failing memory store", t, func() {
		store := NewMemoryStore()
		store.Err = errors.New("disk full")

		Convey("When writing", func() {
			err := store.Set(context.Background(), "a.mp4", Entry{})

			Convey("Then the error should be unavailable", func() {
				So(errors.Is(err, ErrUnavailable), ShouldBeTrue)
			})
		})
	})
}

func TestNewStore(t *testing.T) {
	Convey("Given an unknown backend", t, func() {
		_, err := NewStore("bolt")

		Convey("Then it should be rejected", func() {
			So(err, ShouldNotBeNil)
		})
	})

	Convey("Given the memory backend", t, func() {
		store, err := NewStore(BackendMemory)

		Convey("Then a memory store should be returned", func() {
			So(err, ShouldBeNil)
			_, ok := store.(*MemoryStore)
			So(ok, ShouldBeTrue)
		})
	})
}

func TestEntry(t *testing.T) {
	Convey("Given an entry", t, func() {
		e := Entry{URI: "a.mp4", PositionMillis: 45000, DurationMillis: 90000}

		Convey("Then its progress and durations should be derived", func() {
			So(e.Progress(), ShouldEqual, 0.5)
			So(e.Position(), ShouldEqual, 45*time.Second)
			So(e.String(), ShouldEqual, "a.mp4 : 00:45 / 01:30")
		})

		Convey("Then an unknown duration should mean no progress", func() {
			So(Entry{PositionMillis: 10}.Progress(), ShouldEqual, 0.0)
		})
	})
}
