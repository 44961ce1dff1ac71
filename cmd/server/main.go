package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"

	web "brickyard/internal/adapters/http"
	"brickyard/internal/adapters/http/perf"
	"brickyard/internal/adapters/storage"
	bookingStore "brickyard/internal/adapters/storage/booking"
	familyStore "brickyard/internal/adapters/storage/family"
	legoSetStore "brickyard/internal/adapters/storage/legoset"
	sessionStore "brickyard/internal/adapters/storage/session"
	"brickyard/internal/application/orchestrators"
	"brickyard/internal/config"
)

// version is set at build time via -ldflags "-X main.version=..."
var version = "dev"

// shutdownTimeout bounds graceful shutdown after SIGINT/SIGTERM.
const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid config: %v", err)
	}
	slog.SetDefault(newLogger(cfg))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dialect, err := storage.DialectByName(cfg.DBDriver)
	if err != nil {
		log.Fatalf("failed to select database: %v", err)
	}
	dsn := cfg.DSN()
	if dialect == storage.SQLite {
		dsn = storage.SQLiteDSN(cfg.DBPath)
	}
	db, err := storage.Open(ctx, dialect, dsn)
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	defer db.Close()

	if err := storage.MigrateDB(db, dialect); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	// Performance instrumentation: wrap DB with timing, create collector
	collector := perf.NewCollector(perf.DefaultRingSize)
	timedDB := storage.NewTimedDB(db, dialect, collector)
	timedDB.SetSlowQueryThreshold(cfg.SlowQuery)

	stores := &web.Stores{
		DB:           timedDB,
		SessionStore: sessionStore.NewSQLiteStore(timedDB),
		FamilyStore:  familyStore.NewSQLiteStore(timedDB),
		BookingStore: bookingStore.NewSQLiteStore(timedDB),
		LegoSetStore: legoSetStore.NewSQLiteStore(timedDB),
	}

	if cfg.SeedDemo {
		result, err := orchestrators.ExecuteSeedDemo(ctx, orchestrators.SeedDemoDeps{
			SessionStore:  stores.SessionStore,
			FamilyStore:   stores.FamilyStore,
			BookingStore:  stores.BookingStore,
			LegoSetStore:  stores.LegoSetStore,
			GenerateID:    uuid.NewString,
			GenerateToken: uuid.NewString,
			Now:           time.Now,
		})
		if err != nil {
			log.Fatalf("failed to seed demo data: %v", err)
		}
		slog.Info("demo_seeded",
			"sessions", result.Sessions,
			"families", result.Families,
			"bookings", result.Bookings,
			"sets", result.Sets,
		)
	}

	handler := web.NewMux(ctx, web.Options{
		Version:            version,
		CSRFKey:            cfg.CSRFKey,
		SecureCookies:      cfg.IsProduction(),
		TrustedOrigins:     cfg.TrustedOrigins(),
		CORSOrigins:        cfg.CORSOrigins,
		RateLimitPerSecond: cfg.RateLimit,
		SlowRequest:        cfg.SlowRequest,
		StrictBookings:     cfg.StrictBookings,
		CalendarTimezone:   cfg.CalendarTZ,
	}, stores, collector)

	server := &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadTimeout:       7 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       120 * time.Second,
		ReadHeaderTimeout: 2 * time.Second,
	}

	go func() {
		slog.Info("server_starting",
			"version", version,
			"addr", cfg.Addr,
			"env", cfg.Env,
			"db", dialect.Name(),
			"schema", storage.LatestSchemaVersion(),
		)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server failed: %v", err)
		}
	}()

	<-ctx.Done()
	slog.Info("server_stopping")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("shutdown_failed", "error", err)
		return
	}
	slog.Info("server_stopped")
}

// newLogger returns a JSON logger in production and a text logger otherwise.
func newLogger(cfg config.Config) *slog.Logger {
	opts := &slog.HandlerOptions{Level: cfg.LogLevel}
	if cfg.IsProduction() {
		return slog.New(slog.NewJSONHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stderr, opts))
}
