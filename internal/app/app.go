package app

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"jobfit/features/draft"
	"jobfit/features/job"
	"jobfit/features/profile"
	"jobfit/features/stats"
	"jobfit/features/usage"

	"jobfit/internal/adapter/gemini"
	"jobfit/internal/adapter/scraper"
	"jobfit/internal/config"
	"jobfit/internal/middleware"
	"jobfit/internal/settings"
	"jobfit/internal/worker"
)

type TaskPublisher interface {
	Publish(topic string, body []byte) error
}

type App struct {
	Handler         http.Handler
	JobService      *job.Service
	AnalyzeConsumer *worker.AnalyzeConsumer

	port int
}

func New(cfg *config.Config, db *sql.DB, taskPub TaskPublisher) (*App, error) {
	// Feature: Settings
	settingsRepo := settings.NewPostgresRepo(db)
	settingsService := settings.NewService(settingsRepo)

	// Seed Gemini API Key from Config
	if cfg.GeminiAPIKey != "" {
		ctx := context.Background()
		set, err := settingsService.Get(ctx)
		if err == nil {
			if set.GeminiAPIKey == "" {
				set.GeminiAPIKey = cfg.GeminiAPIKey
				if err := settingsService.Update(ctx, set); err != nil {
					slog.Warn("failed to seed gemini api key", "error", err)
				} else {
					slog.Info("seeded gemini api key from environment")
				}
			}
		} else {
			slog.Warn("failed to fetch settings for seeding", "error", err)
		}
	}

	// Adapters: content fetcher and inference client. The analyzer also
	// backs drafting and key validation.
	fetcher := scraper.NewClient(
		time.Duration(cfg.ScrapeTimeoutSeconds)*time.Second,
		cfg.ScrapeMinContentLen,
		cfg.ScrapeMaxContentLen,
	)
	analyzer := gemini.NewDynamicAnalyzer(settingsService, cfg.GeminiModel)

	settingsHandler := settings.NewHandler(settingsService, analyzer)

	// Feature: Usage
	usageRepo := usage.NewPostgresRepo(db)
	ledger := usage.NewLedger(usageRepo, cfg.FreeLifetimeLimit, cfg.FreeDailyLimit)

	// Feature: Job
	jobRepo := job.NewPostgresRepo(db)
	jobService := job.NewService(jobRepo, taskPub, ledger)
	jobHandler := job.NewHandler(jobService)

	// Feature: Profile
	profileRepo := profile.NewPostgresRepo(db)
	profileService := profile.NewService(profileRepo)
	profileHandler := profile.NewHandler(profileService)

	// Feature: Draft
	draftService := draft.NewService(
		analyzer,
		profileService,
		cfg.AnalysisMaxAttempts,
		time.Duration(cfg.AnalysisRetryBaseMS)*time.Millisecond,
	)
	draftHandler := draft.NewHandler(draftService)

	// Feature: Stats
	statsHandler := stats.NewHandler(jobRepo, ledger)

	// Middleware: CORS
	enableCORS := func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Access-Control-Allow-Origin", "*")
			w.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS, PUT, DELETE")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, X-Identity-ID, X-Identity-Tier")

			if r.Method == "OPTIONS" {
				w.WriteHeader(http.StatusOK)
				return
			}
			next(w, r)
		}
	}

	// Routes
	mux := http.NewServeMux()

	mux.Handle("POST /jobs", middleware.CorrelationID(enableCORS(jobHandler.Create)))
	mux.Handle("GET /jobs", middleware.CorrelationID(enableCORS(jobHandler.List)))
	mux.Handle("GET /jobs/{id}", middleware.CorrelationID(enableCORS(jobHandler.Get)))
	mux.Handle("DELETE /jobs/{id}", middleware.CorrelationID(enableCORS(jobHandler.Delete)))

	mux.Handle("POST /profiles", middleware.CorrelationID(enableCORS(profileHandler.Create)))
	mux.Handle("GET /profiles", middleware.CorrelationID(enableCORS(profileHandler.List)))
	mux.Handle("GET /profiles/{id}", middleware.CorrelationID(enableCORS(profileHandler.Get)))
	mux.Handle("DELETE /profiles/{id}", middleware.CorrelationID(enableCORS(profileHandler.Delete)))

	mux.Handle("POST /drafts/cover-letter", middleware.CorrelationID(enableCORS(draftHandler.CoverLetter)))
	mux.Handle("POST /drafts/summary", middleware.CorrelationID(enableCORS(draftHandler.Summary)))
	mux.Handle("POST /drafts/critique", middleware.CorrelationID(enableCORS(draftHandler.Critique)))
	mux.Handle("POST /drafts/tailor-block", middleware.CorrelationID(enableCORS(draftHandler.TailorBlock)))

	mux.Handle("GET /settings", middleware.CorrelationID(enableCORS(settingsHandler.GetSettings)))
	mux.Handle("PUT /settings", middleware.CorrelationID(enableCORS(settingsHandler.UpdateSettings)))
	mux.Handle("POST /settings/validate-key", middleware.CorrelationID(enableCORS(settingsHandler.ValidateKey)))

	mux.Handle("GET /stats", middleware.CorrelationID(enableCORS(statsHandler.GetStats)))

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})

	// Worker (Analyze Consumer) Setup
	analyzeConsumer := worker.NewAnalyzeConsumer(
		jobRepo,
		fetcher,
		analyzer,
		profileService,
		ledger,
		taskPub,
		cfg.AnalysisMaxAttempts,
		time.Duration(cfg.AnalysisRetryBaseMS)*time.Millisecond,
	)

	return &App{
		Handler:         mux,
		JobService:      jobService,
		AnalyzeConsumer: analyzeConsumer,
		port:            cfg.ServerPort,
	}, nil
}

// RepairInterrupted runs the startup repair pass. Must finish before the
// server starts accepting new submissions.
func (a *App) RepairInterrupted(ctx context.Context) error {
	n, err := a.JobService.RepairInterrupted(ctx)
	if err != nil {
		return err
	}
	if n > 0 {
		slog.Info("repaired interrupted jobs", "count", n)
	}
	return nil
}

func (a *App) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", a.port),
		Handler: a.Handler,
	}

	go func() {
		<-ctx.Done()
		slog.Info("shutting down server...")
		if err := srv.Shutdown(context.Background()); err != nil {
			slog.Error("server shutdown failed", "error", err)
		}
	}()

	slog.Info("server starting", "port", a.port)
	if err := srv.ListenAndServe(); err != http.ErrServerClosed {
		return err
	}
	return nil
}
