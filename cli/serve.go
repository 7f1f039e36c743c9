package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/learnflow/catalog/api"
	"github.com/learnflow/catalog/config"
	"github.com/learnflow/catalog/internal/analytics"
	"github.com/learnflow/catalog/internal/catalog"
	logpkg "github.com/learnflow/catalog/internal/logger"
	"github.com/learnflow/catalog/internal/seed"
)

func serveCmd() *cobra.Command {
	var (
		configPath string
		port       int
		dataDir    string
		seedFile   string
	)

	cmd := &cobra.Command{
		Use:     "serve",
		Short:   "Serve the catalog HTTP API",
		Aliases: []string{"server", "start"},
		Args:    cobra.NoArgs,
		Example: `  $ catalog serve
  $ catalog serve --config configs/local.yaml --port 9000`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(configPath)
			if err != nil {
				return err
			}

			// Flags override file values
			flags := cmd.Flags()
			if flags.Changed("port") {
				cfg.HTTP.Port = port
			}
			if flags.Changed("data-dir") {
				cfg.Storage.DataDir = dataDir
			}
			if flags.Changed("seed") {
				cfg.Catalog.SeedFile = seedFile
			}
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("invalid config: %w", err)
			}

			return runServer(cmd.Context(), cfg)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to a YAML config file")
	cmd.Flags().IntVar(&port, "port", 8080, "Port to run the server on")
	cmd.Flags().StringVar(&dataDir, "data-dir", "./catalog_data", "Directory to store catalog data")
	cmd.Flags().StringVar(&seedFile, "seed", "", "YAML seed catalog applied on startup")
	return cmd
}

func loadConfig(path string) (config.AppConfig, error) {
	if path == "" {
		return config.Default(), nil
	}
	return config.Load(path)
}

func runServer(ctx context.Context, cfg config.AppConfig) error {
	if ctx == nil {
		ctx = context.Background()
	}

	logger, err := logpkg.NewLogger(cfg.Logging.Env, cfg.Logging.Level)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting catalog API server",
		zap.String("version", Version),
		zap.String("env", cfg.Logging.Env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.String("data_dir", cfg.Storage.DataDir),
	)

	eng := catalog.NewEngine(cfg.Storage.DataDir, logger, catalog.Options{
		DefaultPageSize: cfg.Catalog.DefaultPageSize,
		MaxPageSize:     cfg.Catalog.MaxPageSize,
		MemoEntries:     cfg.Catalog.MemoEntries,
	})

	if cfg.Catalog.SeedFile != "" {
		seedCatalog, err := seed.LoadFile(cfg.Catalog.SeedFile)
		if err != nil {
			return err
		}
		result, err := seed.Apply(eng, seedCatalog, logger)
		if err != nil {
			return err
		}
		logger.Info("Seed catalog applied",
			zap.Strings("created", result.Created),
			zap.Strings("skipped", result.Skipped),
		)
	}

	analyticsService := analytics.NewService(eng, cfg.Storage.DataDir, logger)
	analyticsCtx, stopAnalytics := context.WithCancel(context.Background())
	analyticsDone := make(chan struct{})
	go func() {
		analyticsService.Run(analyticsCtx)
		close(analyticsDone)
	}()
	defer func() {
		stopAnalytics()
		<-analyticsDone
	}()

	if cfg.Logging.Env == "prod" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := api.NewRouter(logger, cfg.HTTP.MaxBodyBytes)
	api.SetupRoutes(router, api.NewAPI(eng, analyticsService))

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case <-ctx.Done():
		logger.Info("Received shutdown signal")
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("http server error: %w", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	for _, name := range eng.ListCollections() {
		if err := eng.PersistCollection(name); err != nil {
			logger.Error("Failed to persist collection on shutdown", zap.String("collection", name), zap.Error(err))
		}
	}

	logger.Info("Server stopped gracefully")
	return nil
}
