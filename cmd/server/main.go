package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"

	"github.com/symptoguide-engine/internal/api"
	"github.com/symptoguide-engine/internal/assessment"
	"github.com/symptoguide-engine/internal/config"
	"github.com/symptoguide-engine/internal/domain"
	"github.com/symptoguide-engine/internal/geo"
	"github.com/symptoguide-engine/internal/hospitals"
	"github.com/symptoguide-engine/internal/prefs"
	"github.com/symptoguide-engine/internal/session"
	"github.com/symptoguide-engine/pkg/backend"
)

func main() {
	configManager, err := config.NewManager()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	if err := configManager.Validate(); err != nil {
		log.Fatalf("Configuration validation failed: %v", err)
	}

	cfg := configManager.GetConfig()
	logger := newLogger(cfg.Logging)
	logger.WithFields(logrus.Fields{
		"host": cfg.Gateway.Host,
		"port": cfg.Gateway.Port,
	}).Info("starting symptoguide engine")

	client := backend.NewResilientClient(cfg.Backend, logger)
	sessions := session.NewStore(logger)

	var prefsStore *prefs.SQLiteStore
	if err := configManager.EnsureDataDir(); err != nil {
		logger.WithError(err).Warn("data directory unavailable, continuing without persistence")
	} else {
		prefsStore, err = prefs.NewSQLiteStore(configManager.PrefsDBPath())
		if err != nil {
			logger.WithError(err).Warn("preferences database unavailable, continuing without persistence")
			prefsStore = nil
		} else {
			defer prefsStore.Close()
		}
	}

	var history assessment.HistoryRecorder
	var departments domain.DepartmentStore
	if prefsStore != nil {
		history = prefsStore
		departments = prefsStore
	}
	orchestrator := assessment.NewOrchestrator(client, sessions, history, logger)

	locator := api.NewSwitchableLocator(geo.NewStaticLocator(cfg.Hospitals, logger))
	matcher := hospitals.NewMatcher(
		locator,
		client,
		hospitals.NewOverpassSource(cfg.Hospitals, logger),
		nil,
		logger,
	)

	server := api.NewServer(api.Deps{
		Config:       configManager,
		Logger:       logger,
		Backend:      client,
		Sessions:     sessions,
		Orchestrator: orchestrator,
		Matcher:      matcher,
		Locator:      locator,
		Departments:  departments,
		History:      prefsStore,
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigChan
		logger.Info("shutdown signal received, gracefully shutting down")
		cancel()
	}()

	if err := server.Start(ctx); err != nil {
		logger.WithError(err).Fatal("gateway failed")
	}

	logger.Info("engine stopped")
}

func newLogger(cfg domain.LoggingConfig) *logrus.Logger {
	logger := logrus.New()

	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	if cfg.Format == "text" {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	} else {
		logger.SetFormatter(&logrus.JSONFormatter{})
	}
	return logger
}
