// Package network provides the shared HTTP client and connectivity reporting.
package network

import (
	"net/http"
	"time"

	"github.com/reelplay/reelplay/constant"
)

// Client is the HTTP client shared across the application.
var Client = &http.Client{
	Timeout:   time.Minute,
	Transport: &userAgent{base: newTransport()},
}

// newTransport initializes a tuned http.Transport.
func newTransport() *http.Transport {
	t := http.DefaultTransport.(*http.Transport).Clone()
	t.MaxIdleConns = 20
	t.MaxIdleConnsPerHost = 10
	t.IdleConnTimeout = 30 * time.Second
	t.ResponseHeaderTimeout = 30 * time.Second
	t.ExpectContinueTimeout = 5 * time.Second
	return t
}

type userAgent struct {
	base http.RoundTripper
}

func (u *userAgent) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.Header.Get("User-Agent") == "" {
		req = req.Clone(req.Context())
		req.Header.Set("User-Agent", constant.UserAgent)
	}
	return u.base.RoundTrip(req)
}
