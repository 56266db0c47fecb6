package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dgallion1/essaygest/internal/api"
	"github.com/dgallion1/essaygest/internal/config"
	"github.com/dgallion1/essaygest/internal/history"
	"github.com/dgallion1/essaygest/internal/layout"
	"github.com/dgallion1/essaygest/internal/ocr"
	"github.com/dgallion1/essaygest/internal/parser"
	"github.com/dgallion1/essaygest/internal/pipeline"
	"github.com/dgallion1/essaygest/internal/scoring"
)

func main() {
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	if loaded, err := config.LoadDotenv(); err != nil {
		log.Error("load dotenv", "error", err)
		os.Exit(1)
	} else if len(loaded) > 0 {
		log.Info("loaded dotenv", "files", loaded)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Error("load configuration", "error", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize clients.
	recognizer, err := ocr.Select(cfg.OCRProvider, cfg.ClovaOCRURL, cfg.ClovaOCRSecret, cfg.TesseractLangs)
	if err != nil {
		log.Error("ocr provider", "error", err)
		os.Exit(1)
	}
	if cfg.UseMockOCR() {
		log.Warn("CLOVA_OCR_URL or CLOVA_OCR_SECRET unset, serving mock OCR text")
	}

	model, closeModel, err := newModel(ctx, cfg, log)
	if err != nil {
		log.Error("scoring provider", "error", err)
		os.Exit(1)
	}
	scorer := scoring.NewScorer(model, log, scoring.Options{PromptTokenBudget: cfg.PromptTokenBudget})

	store, err := history.Open(cfg.HistoryDB)
	if err != nil {
		log.Error("open history", "path", cfg.HistoryDB, "error", err)
		os.Exit(1)
	}

	reader := &pipeline.Reader{
		OCR:           recognizer,
		Layout:        layout.New(cfg.Calibration()),
		ParserOptions: parser.Options{PDFFallbackPdftotext: cfg.PDFFallbackPdftotext},
	}

	// Initialize pipeline.
	orch := pipeline.NewOrchestrator(cfg, reader, scorer, store, log)
	orch.Start(ctx)

	// Initialize HTTP server.
	srv := api.NewServer(api.Deps{
		Orchestrator: orch,
		Reader:       reader,
		Scorer:       scorer,
		History:      store,
	}, log, cfg)

	httpServer := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      srv,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 180 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown.
	done := make(chan struct{})
	go func() {
		defer close(done)
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Info("shutting down...")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		httpServer.Shutdown(shutdownCtx)

		orch.Stop()
		closeModel()
		if c, ok := recognizer.(*ocr.ClovaClient); ok {
			c.Close()
		}
		if err := store.Close(); err != nil {
			log.Error("close history", "error", err)
		}
	}()

	log.Info("starting essaygest",
		"port", cfg.Port,
		"ocr", recognizer.Name(),
		"model", model.Name(),
		"auth", cfg.APIKey != "",
	)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
	<-done
}

// newModel builds the configured scoring backend. Without an API key the
// mock model is used so the service still answers.
func newModel(ctx context.Context, cfg config.Config, log *slog.Logger) (scoring.Model, func(), error) {
	if cfg.UseMockScoring() {
		log.Warn("no scoring API key set, serving mock analyses", "provider", cfg.ScoringProvider)
		return scoring.MockModel{}, func() {}, nil
	}
	switch cfg.ScoringProvider {
	case "anthropic":
		m := scoring.NewClaudeModel(cfg.AnthropicAPIKey, cfg.AnthropicModel)
		return m, m.Close, nil
	default:
		m, err := scoring.NewGeminiModel(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			return nil, nil, err
		}
		return m, func() {}, nil
	}
}
