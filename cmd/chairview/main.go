package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/pdclabs/chairview/internal/api"
	"github.com/pdclabs/chairview/internal/config"
	"github.com/pdclabs/chairview/internal/credentialing"
	"github.com/pdclabs/chairview/internal/logging"
	"github.com/pdclabs/chairview/internal/pivot"
	"github.com/pdclabs/chairview/internal/respcache"
	"github.com/pdclabs/chairview/internal/store"
)

// Version information (set at build time with -ldflags)
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

const shutdownTimeout = 30 * time.Second

var rootCmd = &cobra.Command{
	Use:     "chairview",
	Short:   "ChairView - dental claims analytics and reporting service",
	Long:    `ChairView serves read-only fee-strategy and credentialing reports over the practice document store.`,
	Version: Version,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServer()
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("ChairView %s\n", Version)
		if BuildTime != "unknown" {
			fmt.Printf("Built: %s\n", BuildTime)
		}
		if GitCommit != "unknown" {
			fmt.Printf("Commit: %s\n", GitCommit)
		}
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
	rootCmd.SilenceUsage = true
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runServer() error {
	// Baseline logger for early startup lines; re-initialized once the
	// configuration is known.
	logging.Init(logging.Config{
		Format:    "auto",
		Level:     "info",
		Component: "chairview",
	})

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}

	logging.Init(logging.Config{
		Format:    cfg.LogFormat,
		Level:     cfg.LogLevel,
		Component: "chairview",
	})

	log.Info().
		Str("version", Version).
		Str("mongo_uri", cfg.RedactedMongoURI()).
		Int("port", cfg.Port).
		Str("timezone", cfg.Timezone).
		Dur("cache_ttl", cfg.CacheTTL).
		Dur("query_timeout", cfg.QueryTimeout).
		Msg("Starting ChairView")

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	st, err := store.Connect(ctx, cfg.MongoURI)
	if err != nil {
		return fmt.Errorf("connect to store: %w", err)
	}
	defer func() {
		closeCtx, closeCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer closeCancel()
		if err := st.Close(closeCtx); err != nil {
			log.Warn().Err(err).Msg("Failed to close store cleanly")
		}
	}()

	if err := st.CheckLayout(ctx); err != nil {
		// Startup proceeds; /health keeps reporting the violation.
		log.Warn().Err(err).Msg("Database layout violation detected at startup")
	}

	server := api.NewServer(api.Config{
		Pivot:          pivot.NewEngine(st, cfg.Timezone, cfg.DebugPivot),
		Credentialing:  credentialing.NewEngine(st),
		Health:         st,
		Cache:          respcache.New(cfg.CacheTTL),
		QueryTimeout:   cfg.QueryTimeout,
		AllowedOrigins: cfg.AllowedOrigins,
	})

	if cfg.MetricsPort > 0 {
		startMetricsServer(ctx, fmt.Sprintf(":%d", cfg.MetricsPort))
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           server.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", srv.Addr).Msg("API listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("serve: %w", err)
	case <-ctx.Done():
	}

	log.Info().Msg("Shutting down")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Warn().Err(err).Msg("Forced shutdown before all requests drained")
	}

	log.Info().Msg("Shutdown complete")
	return nil
}
