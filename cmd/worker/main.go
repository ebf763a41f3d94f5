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

	"github.com/comexkit/tradedocs/internal/bootstrap"
	"github.com/comexkit/tradedocs/internal/config"
	"github.com/comexkit/tradedocs/internal/core/domain"
	"github.com/comexkit/tradedocs/internal/observability/logging"
	"github.com/comexkit/tradedocs/internal/observability/metrics"
)

func main() {
	cfg := config.Load()
	logger := logging.NewJSONLogger("worker", cfg.LogLevel)
	slog.SetDefault(logger)
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.New(ctx, cfg)
	if err != nil {
		log.Fatalf("bootstrap error: %v", err)
	}
	defer app.Close()

	workerMetrics := metrics.NewWorkerMetrics("worker")
	metricsServer := &http.Server{
		Addr:    ":" + cfg.WorkerMetricsPort,
		Handler: workerMetrics.Handler(),
	}
	go func() {
		if err := metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("metrics server error", "error", err)
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = metricsServer.Shutdown(shutdownCtx)
	}()

	logger.Info("worker subscribed", "subject", cfg.NATSSubject)
	err = app.Queue.SubscribeDocumentTasks(ctx, func(handlerCtx context.Context, task domain.DocumentTask) error {
		processCtx, cancel := context.WithTimeout(handlerCtx, 5*time.Minute)
		defer cancel()

		workerMetrics.StartDocument()
		workerMetrics.ObserveQueueLag(time.Since(task.EnqueuedAt))
		start := time.Now()

		record, err := app.ProcessUC.Process(processCtx, task)
		workerMetrics.FinishDocument(time.Since(start), err)
		if err != nil {
			logger.Error("process document failed",
				"session_id", task.SessionID,
				"doc_type", task.DocType,
				"error", err,
			)
			return err
		}

		for _, result := range record.Fields {
			switch result.SourceLayer {
			case domain.LayerAlias, domain.LayerContext, domain.LayerInference:
				workerMetrics.ObserveResolvedField(string(result.SourceLayer))
			}
		}
		if record.LowOCRConfidence {
			workerMetrics.ObserveLowOCRDocument(string(task.DocType))
		}
		logger.Info("document processed",
			"session_id", task.SessionID,
			"doc_type", task.DocType,
			"extraction_method", record.ExtractionMethod,
			"low_ocr_confidence", record.LowOCRConfidence,
		)
		return nil
	})
	if err != nil {
		log.Fatalf("worker subscribe error: %v", err)
	}
}
