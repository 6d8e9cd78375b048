// Package main is the entry point for the Veritas forensic financial
// analysis service. It wires configuration, storage, the analysis engine,
// the monitoring scheduler and the HTTP API, then runs until signalled.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/veritaslabs/veritas/internal/clients/newsapi"
	"github.com/veritaslabs/veritas/internal/config"
	"github.com/veritaslabs/veritas/internal/database"
	"github.com/veritaslabs/veritas/internal/domain"
	"github.com/veritaslabs/veritas/internal/modules/assessments"
	"github.com/veritaslabs/veritas/internal/modules/compliance"
	"github.com/veritaslabs/veritas/internal/modules/forensic"
	"github.com/veritaslabs/veritas/internal/modules/risk"
	"github.com/veritaslabs/veritas/internal/modules/statements"
	"github.com/veritaslabs/veritas/internal/scheduler"
	"github.com/veritaslabs/veritas/internal/server"
	"github.com/veritaslabs/veritas/internal/services"
	"github.com/veritaslabs/veritas/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		os.Stderr.WriteString("failed to load configuration: " + err.Error() + "\n")
		os.Exit(1)
	}

	log := logger.New(logger.Config{Level: cfg.LogLevel, Pretty: cfg.DevMode})
	log.Info().Str("data_dir", cfg.DataDir).Int("port", cfg.Port).Msg("starting veritas")

	// Storage
	statementsDB, err := database.New(database.Config{
		Path:    cfg.StatementsDBPath(),
		Profile: database.ProfileStandard,
		Name:    "statements",
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open statements database")
	}
	defer statementsDB.Close()

	assessmentsDB, err := database.New(database.Config{
		Path:    cfg.AssessmentsDBPath(),
		Profile: database.ProfileCache,
		Name:    "assessments",
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open assessments database")
	}
	defer assessmentsDB.Close()

	statementRepo, err := statements.NewRepository(statementsDB.Conn(), log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize statement repository")
	}
	assessmentStore, err := assessments.NewStore(assessmentsDB.Conn(), log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize assessment store")
	}

	// Analysis engine. Without an API key the sentiment probe reports no
	// signal and market risk relies on its structural inputs alone.
	var probe domain.SentimentProbe
	if cfg.NewsAPIKey != "" {
		probe = newsapi.NewClient(cfg.NewsAPIURL, cfg.NewsAPIKey, cfg.SentimentTimeout, log)
	}

	analysisService := services.NewAnalysisService(
		statementRepo,
		assessmentStore,
		forensic.NewPipeline(log),
		compliance.NewEngine(log),
		risk.NewScorer(probe, cfg.SentimentTimeout, log),
		log,
	)

	// Background monitoring
	var sched *scheduler.Scheduler
	if cfg.MonitoringSchedules {
		sched = scheduler.New(log)
		sweep := scheduler.NewMonitoringJob(statementRepo, analysisService, log)
		if err := sched.AddJob("0 0 2 * * *", sweep); err != nil {
			log.Fatal().Err(err).Msg("failed to register monitoring sweep")
		}
		sched.Start()
		defer sched.Stop()
	}

	srv := server.New(server.Config{
		Log:           log,
		Config:        cfg,
		Statements:    statementRepo,
		Analysis:      analysisService,
		Scheduler:     sched,
		StatementsDB:  statementsDB,
		AssessmentsDB: assessmentsDB,
	})

	errCh := make(chan error, 1)
	go func() {
		if err := srv.Start(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		log.Error().Err(err).Msg("HTTP server failed")
	case sig := <-quit:
		log.Info().Str("signal", sig.String()).Msg("shutdown signal received")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}

	log.Info().Msg("veritas stopped")
}
