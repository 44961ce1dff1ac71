package web

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"brickyard/internal/adapters/http/perf"
)

// healthTimeout bounds the database ping behind /api/health.
const healthTimeout = 2 * time.Second

// handleHealth reports liveness and the applied schema version.
// A failed ping is 503 so load balancers take the instance out.
func handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
	defer cancel()
	if err := stores.DB.PingContext(ctx); err != nil {
		writeFailure(w, http.StatusServiceUnavailable, "database unavailable")
		return
	}
	version, err := stores.DB.SchemaVersion()
	if err != nil {
		internalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, healthDTO{
		Status:        "ok",
		Version:       settings.Version,
		SchemaVersion: version,
	})
}

// Perf snapshot defaults.
const (
	defaultPerfWindow = time.Hour
	defaultPerfTopN   = 10
	maxPerfTopN       = 100
)

// handleAdminPerf returns request and query timings from the collector. Admin only.
// Query: minutes (window, default 60), top (list length, default 10).
func handleAdminPerf(w http.ResponseWriter, r *http.Request) {
	if !requireAdmin(w, r) {
		return
	}
	if perfCollector == nil {
		writeJSON(w, http.StatusOK, perf.Snapshot{SlowestPaths: []perf.PathStat{}, SlowestQueries: []perf.PathStat{}})
		return
	}

	window := defaultPerfWindow
	if v, err := strconv.Atoi(r.URL.Query().Get("minutes")); err == nil && v > 0 {
		window = time.Duration(v) * time.Minute
	}
	topN := defaultPerfTopN
	if v, err := strconv.Atoi(r.URL.Query().Get("top")); err == nil && v > 0 {
		topN = min(v, maxPerfTopN)
	}
	writeJSON(w, http.StatusOK, perfCollector.Snapshot(timeNow().Add(-window), topN))
}
