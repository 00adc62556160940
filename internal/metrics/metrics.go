package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Shape construction
	PreviewsIssued = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "geoshape",
		Subsystem: "shape",
		Name:      "previews_total",
		Help:      "Total preview graphics issued",
	}, []string{"tool"})

	Commits = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "geoshape",
		Subsystem: "shape",
		Name:      "commits_total",
		Help:      "Total shapes committed",
	}, []string{"tool"})

	RejectedEdits = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "geoshape",
		Subsystem: "shape",
		Name:      "rejected_edits_total",
		Help:      "Total edits rejected by validation",
	}, []string{"tool", "class"})

	// Coordinate notation
	CoordinateParses = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "geoshape",
		Subsystem: "coord",
		Name:      "parses_total",
		Help:      "Total coordinate text parses by detected format",
	}, []string{"format", "outcome"})

	// Persistence
	Exports = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "geoshape",
		Subsystem: "export",
		Name:      "files_total",
		Help:      "Total export files written",
	}, []string{"format", "outcome"})

	ExportFeatures = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "geoshape",
		Subsystem: "export",
		Name:      "features",
		Help:      "Features written per export",
		Buckets:   prometheus.ExponentialBuckets(1, 4, 6),
	})
)

// Outcome returns the outcome label for err.
func Outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

// Serve exposes /metrics on addr until ctx is cancelled. An empty addr
// disables the endpoint.
func Serve(ctx context.Context, addr string) error {
	if addr == "" {
		return nil
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		<-ctx.Done()
		shutdown, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdown)
	}()

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
