package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"estatewise/server/config"
	"estatewise/server/internal/analysis"
	"estatewise/server/internal/api"
	"estatewise/server/internal/database"
	"estatewise/server/internal/geocoding"
	"estatewise/server/internal/processor"
	"estatewise/server/internal/provider"
	"estatewise/server/internal/queue"
	"estatewise/server/internal/report"
	"estatewise/server/internal/scheduler"
	"estatewise/server/internal/telegram"
)

func main() {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.SetOutput(os.Stdout)

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.WithError(err).Fatal("Failed to load configuration")
	}
	if level, err := logrus.ParseLevel(cfg.LogLevel); err == nil {
		logger.SetLevel(level)
	} else {
		logger.WithField("log_level", cfg.LogLevel).Warn("Unknown log level, using info")
	}

	policy, err := config.LoadPolicy(cfg.Analysis.PolicyPath)
	if err != nil {
		logger.WithError(err).Fatal("Failed to load analysis policy")
	}

	// Initialize database
	dbPath := cfg.Database.Path
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		logger.WithError(err).Fatal("Failed to create database directory")
	}
	logger.Infof("Using database at: %s", dbPath)
	db, err := database.NewDatabase(dbPath)
	if err != nil {
		logger.WithError(err).Fatal("Failed to initialize database")
	}
	defer db.Close()

	logger.Info("Running database migrations...")
	if err := db.RunMigrations(); err != nil {
		logger.WithError(err).Fatal("Failed to run database migrations")
	}

	dataProvider, err := newProvider(cfg, logger)
	if err != nil {
		logger.WithError(err).Fatal("Failed to initialize property data provider")
	}

	serviceOpts := []analysis.Option{analysis.WithLogger(logger)}
	if cfg.Provider.Geocode {
		cacheDir := cfg.Provider.CacheDir
		if cacheDir == "" {
			cacheDir = filepath.Join(os.TempDir(), "estatewise", "geocode_cache")
		}
		serviceOpts = append(serviceOpts, analysis.WithGeocoder(geocoding.NewGeocoder(logger, cacheDir)))
	}
	if cfg.Analysis.SimulateMissingPriceHistory {
		logger.Warn("Simulating missing price history; results are not suitable for real offers")
		serviceOpts = append(serviceOpts, analysis.WithSimulatedPriceHistory(cfg.Analysis.SimulationSeed))
	}
	service := analysis.NewService(dataProvider, policy, serviceOpts...)

	// Batch processing
	analysisQueue := queue.NewAnalysisQueue(cfg.BatchProcessing.QueueSize, logger)
	batchProcessor := processor.NewBatchProcessor(service, db, analysisQueue, cfg, logger)
	if cfg.Telegram.Enabled {
		batchProcessor.SetNotifier(telegram.NewService(telegram.Config{
			IsEnabled: true,
			BotToken:  cfg.Telegram.BotToken,
			ChatID:    cfg.Telegram.ChatID,
		}, logger))
	}
	batchProcessor.Start()
	defer batchProcessor.Stop()

	// Retention
	sched := scheduler.NewScheduler(logger)
	if err := sched.AddJob(cfg.Retention.Schedule, scheduler.NewRetentionJob(db, cfg.Retention.MaxAgeDays, logger)); err != nil {
		logger.WithError(err).Fatal("Failed to schedule retention job")
	}
	sched.Start()
	defer sched.Stop()

	gin.SetMode(cfg.Server.GinMode)
	router := gin.New()
	router.Use(gin.Recovery())
	handler := api.NewHandler(service, db, batchProcessor, report.NewChartRenderer(), logger)
	api.SetupRoutes(router, handler, cfg.Server.CORSOrigins)

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Infof("Starting server on port %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Fatal("Server failed to start")
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Error("Server shutdown failed")
	}
}

// newProvider builds the configured data source, wrapped in the file cache
// when a cache directory is set.
func newProvider(cfg *config.Config, logger *logrus.Logger) (provider.PropertyDataProvider, error) {
	var p provider.PropertyDataProvider
	switch cfg.Provider.Mode {
	case "http":
		p = provider.NewHTTPProvider(cfg.Provider.BaseURL,
			provider.WithAPIKey(cfg.Provider.APIKey),
			provider.WithRateLimit(cfg.Provider.RateLimit),
			provider.WithTimeout(cfg.Provider.Timeout),
			provider.WithLogger(logger),
		)
	default:
		fp, err := provider.LoadFileProvider(cfg.Provider.FixturesPath)
		if err != nil {
			return nil, err
		}
		p = fp
	}

	if cfg.Provider.CacheDir != "" {
		return provider.NewCachingProvider(p, logger, cfg.Provider.CacheDir, cfg.Provider.CacheTTL), nil
	}
	return p, nil
}
