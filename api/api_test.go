package api

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
)

func TestClient(t *testing.T) {
	ctx := context.Background()

	Convey("Given an API server", t, func() {
		auth := make(chan string, 8)
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			auth <- r.Header.Get("Authorization")

			switch r.URL.Path {
			case "/v1/posts/42":
				_, _ = w.Write([]byte(`{"post":{"id":42,"caption":"Sunset","videoUrl":"https://cdn/42.m3u8","thumbnailUrl":"https://cdn/42.jpg","tags":["sky"]}}`))
			case "/v1/posts/7":
				_, _ = w.Write([]byte(`{"post":null}`))
			case "/v1/posts/500":
				w.WriteHeader(http.StatusBadGateway)
			case "/v1/posts/401":
				w.WriteHeader(http.StatusUnauthorized)
			default:
				http.NotFound(w, r)
			}
		}))
		defer srv.Close()

		client, err := New(srv.URL+"/v1/", time.Second, func() (string, error) { return "secret", nil })
		So(err, ShouldBeNil)

		Convey("When fetching an existing post", func() {
			post, err := client.Post(ctx, "42")

			Convey("Then it should be decoded with the bearer token sent", func() {
				So(err, ShouldBeNil)
				So(post.VideoURL, ShouldEqual, "https://cdn/42.m3u8")
				So(post.Caption, ShouldEqual, "Sunset")
				So(post.Tags, ShouldResemble, []string{"sky"})
				So(<-auth, ShouldEqual, "Bearer secret")
			})
		})

		Convey("When the post is missing", func() {
			_, err := client.Post(ctx, "1")
			_, errNull := client.Post(ctx, "7")

			Convey("Then the error should be not found", func() {
				So(errors.Is(err, ErrNotFound), ShouldBeTrue)
				So(errors.Is(errNull, ErrNotFound), ShouldBeTrue)
			})
		})

		Convey("When the server fails", func() {
			_, err := client.Post(ctx, "500")

			Convey("Then the error should be a server error", func() {
				So(errors.Is(err, ErrServer), ShouldBeTrue)
			})
		})

		Convey("When the token is rejected", func() {
			_, err := client.Post(ctx, "401")

			Convey("Then the error should be unauthorized", func() {
				So(errors.Is(err, ErrUnauthorized), ShouldBeTrue)
			})
		})
	})

	Convey("Given no base url", t, func() {
		_, err := New(" ", time.Second, nil)

		Convey("Then the client should not be created", func() {
			So(err, ShouldEqual, ErrNoBaseURL)
		})
	})
}
