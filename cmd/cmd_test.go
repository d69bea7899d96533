package cmd

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/reelplay/reelplay/config"
	"github.com/reelplay/reelplay/controller"
	"github.com/reelplay/reelplay/filesystem"
	"github.com/reelplay/reelplay/history"
	"github.com/reelplay/reelplay/key"
	. "github.com/smartystreets/goconvey/convey"
	"github.com/spf13/viper"
	"github.com/zalando/go-keyring"
)

func init() {
	filesystem.SetMemMapFs()
	keyring.MockInit()
}

func TestResolveTarget(t *testing.T) {
	Convey("Given something to play", t, func() {
		ctx := context.Background()

		Convey("A URL should be played as is", func() {
			got, err := resolveTarget(ctx, "https://cdn.example.com/v/clip.mp4")
			So(err, ShouldBeNil)
			So(got, ShouldResemble, target{uri: "https://cdn.example.com/v/clip.mp4", title: "clip.mp4"})
		})

		Convey("An existing file should be played by its path", func() {
			So(filesystem.API().WriteFile("/videos/trip.mkv", []byte("x"), 0o644), ShouldBeNil)

			got, err := resolveTarget(ctx, "/videos/trip.mkv")
			So(err, ShouldBeNil)
			So(got.uri, ShouldEqual, "/videos/trip.mkv")
			So(got.title, ShouldEqual, "trip.mkv")
		})

		Convey("Anything else needs the API", func() {
			viper.Set(key.APIBaseURL, "")
			_, err := resolveTarget(ctx, "42")
			So(err, ShouldNotBeNil)
			So(err.Error(), ShouldContainSubstring, key.APIBaseURL)
		})

		Convey("A post id should resolve to its video", func() {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path != "/posts/42" {
					http.NotFound(w, r)
					return
				}
				_, _ = w.Write([]byte(`{"post":{"postId":"42","caption":"Sunset","videoUrl":"https://cdn.example.com/42.mp4"}}`))
			}))
			defer srv.Close()

			viper.Set(key.APIBaseURL, srv.URL)
			defer viper.Set(key.APIBaseURL, "")

			got, err := resolveTarget(ctx, "42")
			So(err, ShouldBeNil)
			So(got, ShouldResemble, target{uri: "https://cdn.example.com/42.mp4", title: "Sunset"})
		})

		Convey("Blank input should be rejected", func() {
			_, err := resolveTarget(ctx, "  ")
			So(err, ShouldNotBeNil)
		})
	})
}

func TestParseSubtitles(t *testing.T) {
	Convey("Given subtitle flags", t, func() {
		Convey("Pairs should be parsed in order", func() {
			got, err := parseSubtitles([]string{"English=en.srt", " Deutsch = https://x/de.vtt"})
			So(err, ShouldBeNil)
			So(got, ShouldResemble, []controller.Subtitle{
				{Language: "English", URI: "en.srt"},
				{Language: "Deutsch", URI: "https://x/de.vtt"},
			})
		})

		Convey("A pair without a uri should fail", func() {
			_, err := parseSubtitles([]string{"English="})
			So(err, ShouldNotBeNil)
		})
	})
}

func TestConfigHelpers(t *testing.T) {
	Convey("Given the registered keys", t, func() {
		Convey("A typo should suggest the closest key", func() {
			So(closestKey("player.autoply"), ShouldEqual, key.PlayerAutoplay)
		})

		Convey("Values should be parsed by the default's type", func() {
			v, err := parseValue(key.PlayerSkipStep, "5000")
			So(err, ShouldBeNil)
			So(v, ShouldEqual, 5000)

			v, err = parseValue(key.HistoryEnabled, "false")
			So(err, ShouldBeNil)
			So(v, ShouldEqual, false)

			v, err = parseValue(key.HistoryBackend, "sqlite")
			So(err, ShouldBeNil)
			So(v, ShouldEqual, "sqlite")

			_, err = parseValue(key.PlayerSkipStep, "ten")
			So(err, ShouldNotBeNil)
		})

		Convey("Every key should be exposed as an env var", func() {
			names := envNames()
			So(names, ShouldHaveLength, len(config.EnvExposed)+1)
			So(names, ShouldContain, "REELPLAY_PLAYER_AUTOPLAY")
		})
	})
}

func TestFilterEntries(t *testing.T) {
	Convey("Given a watch history", t, func() {
		entries := []history.Entry{
			{URI: "https://cdn/a.mp4", Title: "Mountain Trip"},
			{URI: "https://cdn/b.mp4", Title: "City Lights"},
		}

		Convey("An empty query should keep everything", func() {
			So(filterEntries(entries, ""), ShouldHaveLength, 2)
		})

		Convey("A fuzzy query should match titles case-insensitively", func() {
			got := filterEntries(entries, "mtntrip")
			So(got, ShouldHaveLength, 1)
			So(got[0].Title, ShouldEqual, "Mountain Trip")
		})

		Convey("A query should also match the uri", func() {
			got := filterEntries(entries, "b.mp4")
			So(got, ShouldHaveLength, 1)
			So(got[0].Title, ShouldEqual, "City Lights")
		})
	})
}
