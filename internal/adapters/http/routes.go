package web

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// registerRoutes maps every endpoint onto mux using method-qualified patterns.
func registerRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/health", handleHealth)

	mux.HandleFunc("GET /api/sessions", handleListSessions)
	mux.HandleFunc("POST /api/sessions", handleCreateSession)
	mux.HandleFunc("GET /api/sessions/discover", handleDiscoverSessions)
	mux.HandleFunc("GET /api/sessions/{id}", handleGetSession)

	mux.HandleFunc("GET /api/families/{id}", handleGetFamily)
	mux.HandleFunc("POST /api/families", handleCreateFamily)

	mux.HandleFunc("GET /api/bookings", handleListBookings)
	mux.HandleFunc("POST /api/bookings", handleCreateBooking)
	mux.HandleFunc("POST /api/bookings/{id}/approve", handleApproveBooking)
	mux.HandleFunc("DELETE /api/bookings/{id}", handleCancelBooking)
	mux.HandleFunc("GET /api/bookings/{id}/ics", handleBookingCalendar)

	mux.HandleFunc("GET /api/sets", handleListSets)
	mux.HandleFunc("POST /api/sets", handleCreateSet)

	mux.HandleFunc("GET /api/admin/bookings", handleAdminListBookings)
	mux.HandleFunc("GET /api/admin/families", handleAdminListFamilies)
	mux.HandleFunc("GET /api/admin/perf", handleAdminPerf)

	mux.Handle("GET /metrics", promhttp.Handler())

	mux.HandleFunc("/", handleNotFound)
}

func handleNotFound(w http.ResponseWriter, r *http.Request) {
	writeFailure(w, http.StatusNotFound, "Not found")
}
