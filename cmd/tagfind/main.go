package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/kailas-cloud/tagfind/internal/config"
	dbRedis "github.com/kailas-cloud/tagfind/internal/db/redis"
	"github.com/kailas-cloud/tagfind/internal/domain/tagfilter"
	logpkg "github.com/kailas-cloud/tagfind/internal/logger"
	"github.com/kailas-cloud/tagfind/internal/metrics"
	sessionrepo "github.com/kailas-cloud/tagfind/internal/repository/session"
	"github.com/kailas-cloud/tagfind/internal/transport/api"
	chiTransport "github.com/kailas-cloud/tagfind/internal/transport/chi"
	healthuc "github.com/kailas-cloud/tagfind/internal/usecase/health"
	sessionuc "github.com/kailas-cloud/tagfind/internal/usecase/session"
	"github.com/kailas-cloud/tagfind/internal/version"
)

// sessionStore is what both session repositories provide.
type sessionStore interface {
	sessionuc.Repository
	healthuc.StorePinger
}

func main() {
	// Load configuration based on ENV
	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting tagfind API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.String("session_store", cfg.Session.Store),
		zap.String("empty_filter", cfg.Session.EmptyFilter),
	)

	policy, err := tagfilter.ParseEmptyPolicy(cfg.Session.EmptyFilter)
	if err != nil {
		logger.Fatal("Invalid empty filter policy", zap.Error(err))
	}

	var repo sessionStore
	switch cfg.Session.Store {
	case config.StoreMemory:
		mem := sessionrepo.NewMemory(cfg.Session.TTL())
		metrics.RegisterActiveSessions(mem.Len)
		repo = mem
	case config.StoreRedis, config.StoreValkey:
		// Valkey speaks RESP, so one rueidis client serves both drivers.
		store, err := dbRedis.NewStore(dbRedis.Config{
			Addrs:      cfg.Database.Addrs,
			Username:   cfg.Database.Username,
			Password:   cfg.Database.Password,
			DB:         cfg.Database.DB,
			Standalone: len(cfg.Database.Addrs) == 1,
		})
		if err != nil {
			logger.Fatal("Failed to create session store", zap.Error(err))
		}
		defer store.Close()

		ctx := context.Background()
		if err := store.WaitForReady(ctx, time.Duration(cfg.Database.ReadinessTimeout)*time.Second); err != nil {
			logger.Fatal("Session store not ready", zap.Error(err))
		}
		logger.Info("Connected to session store", zap.Strings("addrs", cfg.Database.Addrs))
		repo = sessionrepo.New(store, cfg.Session.KeyPrefix, cfg.Session.TTL())
	default:
		logger.Fatal("Unknown session store", zap.String("store", cfg.Session.Store))
	}

	// Register metrics explicitly (no init())
	metrics.RegisterHTTPMetrics()
	metrics.RegisterSessionMetrics()

	sessionSvc := sessionuc.New(repo, sessionuc.Config{
		Limits: sessionuc.Limits{
			MaxCandidates:       cfg.Session.MaxCandidates,
			MaxTagsPerCandidate: cfg.Session.MaxTagsPerCandidate,
			MaxRequiredTags:     cfg.Session.MaxRequiredTags,
			MaxTagLength:        cfg.Session.MaxTagLength,
		},
		EmptyFilter:        policy,
		SuggestionDistance: cfg.Session.SuggestionDistance,
	})
	healthSvc := healthuc.New(repo, cfg.Session.Store)

	server := chiTransport.NewServer(sessionSvc, healthSvc, logger)

	r := chi.NewRouter()
	r.Use(jsonRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(logger))
	r.Use(chiTransport.BearerAuthMiddleware(cfg.Auth.APIKeys, chiTransport.PublicPaths...))
	r.Use(metrics.Middleware("/metrics"))
	api.HandlerWithOptions(server, api.ChiServerOptions{
		BaseRouter:       r,
		ErrorHandlerFunc: chiTransport.ParamErrorHandler,
	})

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("Received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
}

// jsonRecoverer is a recovery middleware that returns JSON instead of a plain text stacktrace.
func jsonRecoverer(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rvr := recover(); rvr != nil {
					logger.Error("panic recovered",
						zap.Any("panic", rvr),
						zap.String("path", r.URL.Path),
						zap.Stack("stacktrace"),
					)
					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					_ = json.NewEncoder(w).Encode(api.ErrorResponse{
						Code:    api.ErrorResponseCodeInternalError,
						Message: "internal error",
					})
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// wideEventMiddleware emits a canonical log line per request and propagates X-Request-ID.
func wideEventMiddleware(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			// chi.middleware.RequestID already placed request_id in context
			requestID := chiMiddleware.GetReqID(r.Context())
			if requestID != "" {
				w.Header().Set("X-Request-ID", requestID)
			}

			reqLogger := logger.With(zap.String("request_id", requestID))
			ctx := logpkg.ContextWithLogger(r.Context(), reqLogger)

			ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(ctx))

			route := ""
			if rc := chi.RouteContext(r.Context()); rc != nil {
				route = rc.RoutePattern()
			}

			// Canonical log line, one per request
			reqLogger.Info("http_request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.String("route", route),
				zap.Int("status", ww.Status()),
				zap.Duration("latency", time.Since(start)),
				zap.String("ip", r.RemoteAddr),
				zap.Int64("content_length", r.ContentLength),
				zap.String("user_agent", r.UserAgent()),
				zap.Int("response_bytes", ww.BytesWritten()),
			)
		})
	}
}
