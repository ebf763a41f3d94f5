package bootstrap

import (
	"context"
	"fmt"
	"time"

	"github.com/comexkit/tradedocs/internal/config"
	"github.com/comexkit/tradedocs/internal/core/domain"
	"github.com/comexkit/tradedocs/internal/core/ocrquality"
	"github.com/comexkit/tradedocs/internal/core/ports"
	"github.com/comexkit/tradedocs/internal/core/reconcile"
	"github.com/comexkit/tradedocs/internal/core/resolve"
	"github.com/comexkit/tradedocs/internal/core/usecase"
	"github.com/comexkit/tradedocs/internal/infrastructure/extractor/ocr"
	"github.com/comexkit/tradedocs/internal/infrastructure/extractor/pdfnative"
	"github.com/comexkit/tradedocs/internal/infrastructure/inference/openai"
	"github.com/comexkit/tradedocs/internal/infrastructure/queue/nats"
	"github.com/comexkit/tradedocs/internal/infrastructure/repository/memory"
	"github.com/comexkit/tradedocs/internal/infrastructure/repository/postgres"
	"github.com/comexkit/tradedocs/internal/infrastructure/resilience"
	"github.com/comexkit/tradedocs/internal/infrastructure/storage/localfs"
)

type App struct {
	Config config.Config

	Queue     ports.MessageQueue
	Store     ports.SessionStore
	SessionUC ports.SessionManager
	UploadUC  ports.DocumentIngestor
	ProcessUC ports.DocumentProcessor
	AnalyzeUC ports.SessionAnalyzer

	closeFn func()
}

func New(ctx context.Context, cfg config.Config) (*App, error) {
	if err := domain.LoadProfileOverrides(cfg.ProfileOverridesPath); err != nil {
		return nil, fmt.Errorf("load profile overrides: %w", err)
	}

	store, closeStore, err := newSessionStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	storage, err := localfs.New(cfg.StoragePath)
	if err != nil {
		closeStore()
		return nil, fmt.Errorf("init object storage: %w", err)
	}

	queue, err := nats.New(cfg.NATSURL, cfg.NATSSubject)
	if err != nil {
		closeStore()
		return nil, fmt.Errorf("init message queue: %w", err)
	}

	ocrExtractor := ocr.New(ocr.Config{
		Pdftoppm:  cfg.PdftoppmPath,
		Tesseract: cfg.TesseractPath,
		Languages: cfg.OCRLanguages,
		DPI:       cfg.OCRDPI,
		MaxPages:  cfg.OCRMaxPages,
	})
	extractor := pdfnative.New(ocrExtractor)

	engine := resolve.NewEngine(newInferenceProvider(cfg), resolve.Config{
		ConfidenceThreshold:      cfg.ConfidenceThreshold,
		AliasLayerConfidence:     cfg.AliasLayerConfidence,
		ContextLayerConfidence:   cfg.ContextLayerConfidence,
		InferenceLayerConfidence: cfg.InferenceLayerConfidence,
		SampleLimit:              cfg.InferenceSampleLimit,
	})
	thresholds := ocrquality.Thresholds{
		MinPageConfidence: cfg.MinPageConfidence,
		MinValidWords:     cfg.MinValidWords,
	}

	processUC := usecase.NewProcessDocumentUseCase(store, storage, extractor, engine, thresholds)

	var inlineProcessor ports.DocumentProcessor
	if cfg.ProcessInline {
		inlineProcessor = processUC
	}
	uploadUC := usecase.NewUploadDocumentUseCase(store, storage, queue, inlineProcessor)
	sessionUC := usecase.NewSessionUseCase(store)
	analyzeUC := usecase.NewAnalyzeSessionUseCase(store, reconcile.Config{
		ComparativeMinimum: cfg.ComparativeMinimum,
		RequiredMinimum:    cfg.RequiredMinimum,
	})

	return &App{
		Config: cfg,
		Queue:  queue,
		Store:  store,

		SessionUC: sessionUC,
		UploadUC:  uploadUC,
		ProcessUC: processUC,
		AnalyzeUC: analyzeUC,

		closeFn: func() {
			queue.Close()
			closeStore()
		},
	}, nil
}

func (a *App) Close() {
	if a.closeFn != nil {
		a.closeFn()
	}
}

func newSessionStore(ctx context.Context, cfg config.Config) (ports.SessionStore, func(), error) {
	switch cfg.SessionStore {
	case "postgres":
		db, err := postgres.OpenDB(cfg.PostgresDSN)
		if err != nil {
			return nil, nil, fmt.Errorf("open postgres: %w", err)
		}
		repo := postgres.NewSessionRepository(db)
		if err := repo.EnsureSchema(ctx); err != nil {
			_ = db.Close()
			return nil, nil, fmt.Errorf("ensure schema: %w", err)
		}
		return repo, func() { _ = db.Close() }, nil
	case "", "memory":
		return memory.New(), func() {}, nil
	default:
		return nil, nil, fmt.Errorf("unknown session store %q", cfg.SessionStore)
	}
}

// newInferenceProvider returns nil when no base URL is configured; the
// resolution engine then relies on its local heuristic layer.
func newInferenceProvider(cfg config.Config) ports.InferenceProvider {
	if cfg.InferenceBaseURL == "" {
		return nil
	}
	// Retries stay off for inference calls. The resolution pipeline has a
	// local fallback, so one failed attempt should surface immediately.
	executor := resilience.NewExecutor(resilience.Config{
		RetryMaxAttempts: 1,
		BreakerEnabled:   true,
	})
	return openai.NewWithOptions(cfg.InferenceBaseURL, cfg.InferenceAPIKey, cfg.InferenceModel, openai.Options{
		Timeout:            time.Duration(cfg.InferenceTimeoutSeconds) * time.Second,
		ResilienceExecutor: executor,
	})
}
