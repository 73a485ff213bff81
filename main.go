package main

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Nerzal/gocloak/v13"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "github.com/joho/godotenv/autoload"
	_ "github.com/lib/pq"
	"github.com/lmittmann/tint"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/kova98/userlens.api/app"
	"github.com/kova98/userlens.api/config"
	"github.com/kova98/userlens.api/data"
	"github.com/kova98/userlens.api/data/repos"
	"github.com/kova98/userlens.api/handlers"
	"github.com/kova98/userlens.api/metrics"
	"github.com/kova98/userlens.api/models"
	"github.com/kova98/userlens.api/notifiers"
	"github.com/kova98/userlens.api/sources"
)

var auth *handlers.AuthHandler

//go:embed data/migrations/*.sql
var embedMigrations embed.FS

func main() {
	config.LoadConfig()

	logger := newLogger()
	slog.SetDefault(logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	limiter := newLimiter(ctx, logger)

	timeout := app.RequestTimeout(config.Config)
	analyzer, err := app.NewAnalyzer(config.Config, logger, limiter, m)
	if err != nil {
		slog.Error("failed to create analyzer", "error", err)
		os.Exit(1)
	}

	var (
		eventRepo *repos.EventRepo
		events    handlers.EventRecorder
		pinger    handlers.Pinger
	)
	db := connectDB()
	if db != nil {
		eventRepo = repos.NewEventRepo(db)
		events = eventRepo
		pinger = db

		if config.Config.SMTPHost != "" {
			mailer := notifiers.NewMailer(
				config.Config.SMTPHost,
				config.Config.SMTPPort,
				config.Config.SMTPFrom,
				config.Config.SMTPPassword,
			)
			notifier := NewNotifier(mailer, eventRepo, config.Config.AlertEmail)
			go notifier.Start(ctx)
		}
	}

	analyze := handlers.NewAnalyzeHandler(logger, analyzer, events, m, timeout)
	health := handlers.NewHealthHandler(pinger)

	mux := http.NewServeMux()

	mux.HandleFunc("POST /analyze", public(analyze.Analyze))
	mux.HandleFunc("GET /analyze/{username}", public(analyze.AnalyzeByPath))

	mux.HandleFunc("GET /healthz", public(health.GetHealth))
	mux.Handle("GET /metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))

	if eventRepo != nil && config.Config.KeycloakURL != "" {
		auth = handlers.NewAuthHandler(gocloak.NewClient(config.Config.KeycloakURL), config.Config.KeycloakRealm)
		eventsHandler := handlers.NewEventsHandler(logger, eventRepo)

		mux.HandleFunc("GET /events", operator(eventsHandler.GetEvents))
		mux.HandleFunc("GET /events/stats", operator(eventsHandler.GetStats))
	}

	server := &http.Server{
		Addr:              config.Config.HTTPAddr,
		Handler:           withCORS(mux),
		ReadHeaderTimeout: 10 * time.Second,
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	go func() {
		<-sigCh
		slog.Info("Shutting down...")
		cancel()

		shutdownCtx, done := context.WithTimeout(context.Background(), timeout+5*time.Second)
		defer done()
		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("failed to shut down server", "error", err)
		}
		if db != nil {
			if err := db.Close(); err != nil {
				slog.Error("failed to close database connection", "error", err)
			}
		}
	}()

	slog.Info("Starting server", "addr", config.Config.HTTPAddr, "oauth", config.Config.RedditOAuthEnabled(), "proxies", len(config.Config.ProxyURLs))
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("failed to start server", "error", err)
		os.Exit(1)
	}
}

func newLogger() *slog.Logger {
	if config.Config.IsProduction() {
		opts := slog.HandlerOptions{Level: config.Config.LogLevel}
		return slog.New(slog.NewJSONHandler(os.Stdout, &opts))
	}
	return slog.New(tint.NewHandler(os.Stderr, &tint.Options{
		Level:      config.Config.LogLevel,
		TimeFormat: time.Kitchen,
	}))
}

// newLimiter prefers the shared valkey budget and falls back to pacing this process only.
func newLimiter(ctx context.Context, logger *slog.Logger) sources.Limiter {
	if config.Config.ValkeyAddress == "" {
		return sources.NewIntervalLimiter(config.Config.RateLimitPerMinute)
	}

	client, err := sources.NewValkeyClient(ctx, config.Config.ValkeyAddress, config.Config.ValkeyPassword)
	if err != nil {
		slog.Error("valkey unavailable, using in-process rate limiter", "error", err)
		return sources.NewIntervalLimiter(config.Config.RateLimitPerMinute)
	}

	return sources.NewValkeyLimiter(logger, client, config.Config.RateLimitPerMinute)
}

func connectDB() *sqlx.DB {
	if config.Config.PostgresURL == "" {
		slog.Info("POSTGRES_URL not set, event log disabled")
		return nil
	}

	db, err := sqlx.Connect("postgres", config.Config.PostgresURL)
	if err != nil {
		slog.Error("failed to connect to db", "error", err)
		os.Exit(1)
	}

	db.SetMaxOpenConns(20)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)
	db.SetConnMaxIdleTime(1 * time.Minute)

	if err := data.RunMigrations(db.DB, embedMigrations); err != nil {
		slog.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	return db
}

func withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Request-ID")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func operator(handler handlers.Handler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		result := auth.GetOperator(r.Context(), r.Header.Get("Authorization"))
		if result.Code != http.StatusOK {
			slog.Debug("unauthorized request", "path", r.URL.Path)
			writeResult(w, result)
			return
		}

		op := result.Body.(models.Operator)
		slog.Debug("operator request", "operator", op.Name, "path", r.URL.Path)

		public(handler)(w, r.WithContext(handlers.WithOperator(r.Context(), op)))
	}
}

func public(handler handlers.Handler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get("X-Request-ID")
		if requestID == "" {
			requestID = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", requestID)

		ts := time.Now()
		res := handler(w, r)
		elapsedMs := time.Since(ts).Milliseconds()
		slog.Debug("req", "method", r.Method, "path", r.URL.Path, "code", res.Code, "elapsed", elapsedMs, "request_id", requestID)
		writeResult(w, res)
	}
}

func writeResult(w http.ResponseWriter, res handlers.Result) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(res.Code)
	if res.Body != nil {
		if err := json.NewEncoder(w).Encode(res.Body); err != nil {
			slog.Error("failed to encode response", "error", err)
		}
	}
	if res.Code >= http.StatusInternalServerError && res.Error != nil {
		slog.Error("internal error", "code", res.Code, "error", res.Error.Error())
	}
}
