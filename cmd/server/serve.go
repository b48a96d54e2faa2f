package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/satyanarayana32518/plant-disease-detection/internal/agent"
	"github.com/satyanarayana32518/plant-disease-detection/internal/analysis"
	"github.com/satyanarayana32518/plant-disease-detection/internal/catalog"
	"github.com/satyanarayana32518/plant-disease-detection/internal/config"
	"github.com/satyanarayana32518/plant-disease-detection/internal/logging"
	"github.com/satyanarayana32518/plant-disease-detection/internal/report"
)

const shutdownTimeout = 10 * time.Second

func NewServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE:  runServe,
	}
	cmd.Flags().String("port", "", "listen address, overrides PORT")
	cmd.Flags().Float64("pace", 1, "analysis script speed multiplier, overrides ANALYSIS_PACE (0 = instant)")
	cmd.Flags().String("catalog", "", "YAML disease catalog, overrides CATALOG_FILE")
	cmd.Flags().Uint64("seed", 0, "seed for reproducible diagnoses, overrides RANDOM_SEED")
	return cmd
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	verbose, _ := cmd.Flags().GetBool("verbose")
	logger := logging.New(os.Stderr, cfg.LogLevel, verbose)
	slog.SetDefault(logger)

	cat, err := catalog.Load(cfg.CatalogFile)
	if err != nil {
		return fmt.Errorf("failed to load catalog: %w", err)
	}
	if cfg.CatalogFile != "" {
		logger.Info("catalog loaded", "path", cfg.CatalogFile, "records", cat.Len())
	}

	src := agent.DefaultRand()
	if cfg.Seed != 0 {
		src = agent.NewSeededRand(cfg.Seed)
	}
	detector := agent.NewSimulatedDetector(cat, src)

	repo := analysis.NewRepository(cfg.SessionMax, cfg.SessionTTL)
	reportSvc := report.NewService(cfg.ReportFonts...)
	svc := analysis.NewService(repo, cat, detector, reportSvc,
		analysis.WithPace(cfg.Pace),
		analysis.WithLogger(logger),
	)
	handler := analysis.NewHandler(svc, cfg.UploadLimit, logger, analysis.WithSessionTTL(cfg.SessionTTL))

	srv := &http.Server{
		Addr:              cfg.Port,
		Handler:           newRouter(cfg, handler),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, ctx := errgroup.WithContext(cmd.Context())
	g.Go(func() error {
		logger.Info("server starting", "addr", cfg.Port, "env", cfg.Env, "pace", cfg.Pace)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		logger.Info("server shutting down")
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

// loadConfig reads the environment and applies explicitly set flags on top.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	flags := cmd.Flags()
	if flags.Changed("port") {
		port, _ := flags.GetString("port")
		if !strings.Contains(port, ":") {
			port = ":" + port
		}
		cfg.Port = port
	}
	if flags.Changed("pace") {
		cfg.Pace, _ = flags.GetFloat64("pace")
	}
	if flags.Changed("catalog") {
		cfg.CatalogFile, _ = flags.GetString("catalog")
	}
	if flags.Changed("seed") {
		cfg.Seed, _ = flags.GetUint64("seed")
	}
	return cfg, cfg.Validate()
}
