package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	httpadapter "github.com/comexkit/tradedocs/internal/adapters/http"
	"github.com/comexkit/tradedocs/internal/bootstrap"
	"github.com/comexkit/tradedocs/internal/config"
	"github.com/comexkit/tradedocs/internal/observability/logging"
	"github.com/comexkit/tradedocs/internal/observability/metrics"
)

func main() {
	cfg := config.Load()
	logger := logging.NewJSONLogger("api", cfg.LogLevel)
	slog.SetDefault(logger)
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.New(ctx, cfg)
	if err != nil {
		log.Fatalf("bootstrap error: %v", err)
	}
	defer app.Close()

	apiMetrics := metrics.NewHTTPServerMetrics("api")
	router := httpadapter.NewRouter(httpadapter.Config{
		UploadMaxBytes:   cfg.UploadMaxBytes,
		RateLimitRPS:     cfg.RateLimitRPS,
		RateLimitBurst:   cfg.RateLimitBurst,
		MaxInFlight:      cfg.MaxInFlight,
		BackpressureWait: time.Duration(cfg.BackpressureWait) * time.Millisecond,
	}, app.SessionUC, app.UploadUC, app.AnalyzeUC, apiMetrics)

	mux := http.NewServeMux()
	mux.Handle("/metrics", apiMetrics.Handler())
	mux.Handle("/", apiMetrics.InFlightMiddleware(router.Handler()))

	server := &http.Server{
		Addr:         ":" + cfg.APIPort,
		Handler:      mux,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("api listening", "port", cfg.APIPort, "session_store", cfg.SessionStore)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("api server error: %v", err)
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("api shutdown error", "error", err)
	}
}
