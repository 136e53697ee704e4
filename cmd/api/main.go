package main

import (
	"context"
	"crypto/rand"
	"database/sql"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/cors"

	"unisync-backend/internal/agenda"
	"unisync-backend/internal/ai"
	"unisync-backend/internal/analytics"
	"unisync-backend/internal/auth"
	"unisync-backend/internal/calendar"
	"unisync-backend/internal/config"
	"unisync-backend/internal/db"
	"unisync-backend/internal/events"
	"unisync-backend/internal/httpx"
	"unisync-backend/internal/logger"
	"unisync-backend/internal/metrics"
	"unisync-backend/internal/notify"
	"unisync-backend/internal/quickadd"
	"unisync-backend/internal/ratelimit"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		logger.FromContext(ctx).Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	log := logger.NewLogger(logger.Config{Level: cfg.LogLevel, JSON: cfg.LogJSON})
	logger.SetDefault(log)
	ctx = logger.ContextWithLogger(ctx, log)

	events.SetLocation(cfg.TimeZone)
	log.Info("time zone", "zone", events.Location().String())

	// ----- storage -----
	var (
		database *sql.DB
		store    events.Store
	)
	if cfg.DBConfigured() {
		database, err = db.Connect(ctx, cfg.ConnString())
		if err != nil {
			return err
		}
		defer database.Close()

		if err := db.Migrate(ctx, database); err != nil {
			return err
		}
		log.Info("connected to PostgreSQL", "host", cfg.DBHost, "db", cfg.DBName)
		store = events.NewPostgresStore(database)
	} else {
		log.Warn("DB_HOST not set, keeping events in memory")
		store = events.NewMemoryStore()
	}

	// ----- llm -----
	var completer ai.Completer
	client, err := ai.New(ctx, cfg)
	switch {
	case errors.Is(err, ai.ErrNotConfigured):
		log.Warn("no LLM key set, quick add will answer 503")
	case err != nil:
		return err
	default:
		completer = client
		log.Info("llm ready", "provider", client.Provider, "model", client.Model)
	}
	parser := quickadd.NewParser(completer, quickadd.WithTimeout(cfg.LLMTimeout))

	secret := cfg.JWTSecret
	if len(secret) == 0 {
		secret = make([]byte, 32)
		if _, err := rand.Read(secret); err != nil {
			return fmt.Errorf("generate jwt secret: %w", err)
		}
		log.Warn("JWT_SECRET not set, device tokens will not survive a restart")
	}

	changes := notify.NewRegistry()
	recorder := analytics.NewRecorder(database)
	deviceAuth := auth.New(secret)
	requireDevice := deviceAuth.Wrap
	limitLLM := ratelimit.PerMinuteFunc(cfg.ParseRateLimit)
	agendaSvc := agenda.NewService(store)

	mux := http.NewServeMux()

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		httpx.JSON(w, http.StatusOK, map[string]any{
			"ok":  true,
			"llm": completer != nil,
			"db":  database != nil,
		})
	})
	mux.Handle("/metrics", metrics.Handler())

	// ----- identity -----
	issue := auth.IdentityHandler(secret, cfg.TokenTTL)
	forget := requireDevice(func(w http.ResponseWriter, r *http.Request) {
		httpx.Error(w, http.StatusNotImplemented, "forget needs a database", "not_implemented", "")
	})
	if database != nil {
		forget = requireDevice(auth.ForgetHandler(database, changes))
	}
	mux.HandleFunc("/api/identity", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPost:
			issue(w, r)
		case http.MethodDelete:
			forget(w, r)
		default:
			httpx.MethodNotAllowed(w)
		}
	})

	// ----- quick add -----
	// parse-only works without a token; anonymous callers are limited per IP.
	mux.HandleFunc("/api/parse-event", deviceAuth.Optional(
		limitLLM(quickadd.ParseHandler(parser, recorder)),
	))
	mux.HandleFunc("/api/events/quick", requireDevice(
		limitLLM(quickadd.QuickCreateHandler(parser, store, changes, recorder)),
	))

	// ----- events -----
	mux.HandleFunc("/api/events", requireDevice(events.CollectionHandler(store, changes, recorder)))
	mux.HandleFunc("/api/events/stream", requireDevice(events.StreamHandler(changes)))
	mux.HandleFunc("/api/events/{id}", requireDevice(events.ItemHandler(store, changes, recorder)))

	// ----- views -----
	mux.HandleFunc("/api/agenda/today", requireDevice(agenda.TodayHandler(agendaSvc)))
	mux.HandleFunc("/api/agenda/week", requireDevice(agenda.WeekHandler(agendaSvc)))
	mux.HandleFunc("/api/deadlines", requireDevice(agenda.DeadlinesHandler(agendaSvc)))
	mux.HandleFunc("/api/calendar.ics", requireDevice(calendar.FeedHandler(store)))

	// CORS
	c := cors.New(cors.Options{
		AllowedOrigins: cfg.CORSOrigins,
		AllowedMethods: []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{
			"Content-Type", "Authorization",
			"X-Platform", "X-App-Version", "X-Session-Id", "X-Device-Locale",
			"Idempotency-Key", "X-Source-Event-Key", "X-Request-Id",
		},
		ExposedHeaders: []string{"X-Request-Id", "X-RateLimit-Remaining", "X-RateLimit-Reset"},
	})

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           httpx.Logging(log, c.Handler(mux)),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       2 * time.Minute,
		BaseContext:       func(_ net.Listener) context.Context { return ctx },
	}

	errc := make(chan error, 1)
	go func() {
		log.Info("API server is running", "addr", srv.Addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
