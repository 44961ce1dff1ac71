package web

import (
	"context"
	"crypto/rand"
	"log/slog"
	"net/http"
	"time"

	"brickyard/internal/adapters/http/middleware"
	"brickyard/internal/adapters/http/perf"
	bookingStore "brickyard/internal/adapters/storage/booking"
	familyStore "brickyard/internal/adapters/storage/family"
	legoSetStore "brickyard/internal/adapters/storage/legoset"
	sessionStore "brickyard/internal/adapters/storage/session"
)

// Database is the health surface of the storage layer.
type Database interface {
	PingContext(ctx context.Context) error
	SchemaVersion() (int, error)
}

// Stores holds all storage dependencies.
type Stores struct {
	DB           Database
	SessionStore sessionStore.Store
	FamilyStore  familyStore.Store
	BookingStore bookingStore.Store
	LegoSetStore legoSetStore.Store
}

// Options carries the HTTP-facing settings from config.
type Options struct {
	Version string
	// CSRFKey is 32 bytes. Empty means a random per-process key.
	CSRFKey        []byte
	SecureCookies  bool
	TrustedOrigins []string
	CORSOrigins    []string
	// RateLimitPerSecond is the per-IP limit. Zero means DefaultRateLimit.
	RateLimitPerSecond int
	SlowRequest        time.Duration
	// StrictBookings makes booking creation verify session, family and child.
	StrictBookings   bool
	CalendarTimezone string
}

// DefaultRateLimit is the per-IP request rate when Options leaves it unset.
const DefaultRateLimit = 10

// Global stores instance (set by NewMux)
var stores *Stores

// Global perf collector (set by NewMux)
var perfCollector *perf.Collector

// Global options (set by NewMux)
var settings Options

// csrfKey returns the configured key or a random one for this process.
func csrfKey(configured []byte) []byte {
	if len(configured) == 32 {
		return configured
	}
	key := make([]byte, 32)
	if _, err := rand.Read(key); err != nil {
		panic("failed to generate CSRF key: " + err.Error())
	}
	slog.Warn("csrf_random_key", "detail", "form tokens won't survive restart; set BRICKYARD_CSRF_KEY")
	return key
}

// NewMux wires HTTP handlers for the app. The rate limiter's idle-visitor
// sweep runs until ctx is done.
func NewMux(ctx context.Context, opts Options, s *Stores, collector *perf.Collector) http.Handler {
	stores = s
	perfCollector = collector
	if opts.RateLimitPerSecond <= 0 {
		opts.RateLimitPerSecond = DefaultRateLimit
	}
	settings = opts

	mux := http.NewServeMux()
	registerRoutes(mux)

	limiter := middleware.NewRateLimiter(opts.RateLimitPerSecond)
	go limiter.Run(ctx.Done())

	// Request order: Timing -> CORS -> RateLimit -> CSRF -> SecurityHeaders -> Metrics -> Mux
	return middleware.Chain(mux,
		middleware.Metrics,
		middleware.SecurityHeaders,
		middleware.CSRF(csrfKey(opts.CSRFKey), opts.SecureCookies, opts.TrustedOrigins),
		middleware.RateLimit(limiter),
		middleware.CORS(opts.CORSOrigins),
		middleware.Timing(collector, opts.SlowRequest),
	)
}
