// Package metrics exposes the player's prometheus counters.
package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/reelplay/reelplay/constant"
)

var (
	// Seeks counts requested seeks by origin: skip, scrub, resume, start or restart.
	Seeks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: constant.App,
			Subsystem: "player",
			Name:      "seeks_total",
			Help:      "Seeks requested by the player",
		},
		[]string{"origin"},
	)

	DoubleTaps = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: constant.App,
			Subsystem: "player",
			Name:      "double_taps_total",
			Help:      "Double taps recognised per side",
		},
		[]string{"side"},
	)

	// HistoryWrites counts progress writes by result: ok or error.
	HistoryWrites = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: constant.App,
			Subsystem: "history",
			Name:      "writes_total",
			Help:      "Watch progress writes",
		},
		[]string{"result"},
	)

	// EngineErrors counts playback errors by kind: unresolvable, decode, rate or other.
	EngineErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: constant.App,
			Subsystem: "engine",
			Name:      "errors_total",
			Help:      "Playback engine errors",
		},
		[]string{"kind"},
	)
)

// Serve exposes /metrics on addr until ctx is done.
func Serve(ctx context.Context, addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdown, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		return srv.Shutdown(shutdown)
	}
}
