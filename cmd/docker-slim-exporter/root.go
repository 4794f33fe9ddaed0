package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/auto-dns/docker-slim-exporter/internal/app"
	"github.com/auto-dns/docker-slim-exporter/internal/config"
	"github.com/auto-dns/docker-slim-exporter/internal/logger"
)

type contextKey string

const configKey = contextKey("config")

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "docker-slim-exporter",
	Short: "Export Docker container state and health as Prometheus metrics",
	Long: "A slim Prometheus exporter that polls the Docker Engine API for container status " +
		"and healthcheck state and serves them as gauges with cAdvisor-style container labels.",
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := config.InitConfig(viper.GetViper(), cfgFile); err != nil {
			return err
		}
		cfg, err := config.Load(viper.GetViper())
		if err != nil {
			return err
		}
		ctx := context.WithValue(cmd.Context(), configKey, cfg)
		cmd.SetContext(ctx)
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		// Load configuration.
		cfg := cmd.Context().Value(configKey).(*config.Config)

		// Set up logger.
		logInstance := logger.SetupLogger(&cfg.Logging)

		// Create the application.
		a, err := app.New(cfg, logInstance)
		if err != nil {
			return fmt.Errorf("failed to create app: %w", err)
		}
		var application application = a
		defer func() {
			if err := application.Close(); err != nil {
				logInstance.Error().Err(err).Msg("Error closing application")
			}
		}()

		// Cancel on SIGINT/SIGTERM for graceful shutdown.
		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		// Run the application. When context is canceled, Run returns.
		if err := application.Run(ctx); err != nil {
			return fmt.Errorf("app run error: %w", err)
		}
		return nil
	},
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "config file (default is ./config.yaml)")
	flags.String("log-level", "INFO", "set log level (e.g. INFO, DEBUG, WARN)")
	flags.Int("port", 9090, "TCP port for the metrics endpoint")
	flags.String("docker-host", "", "Docker Engine API endpoint (overrides DOCKER_HOST)")

	viper.BindPFlag("log.level", flags.Lookup("log-level"))
	viper.BindPFlag("exporter.port", flags.Lookup("port"))
	viper.BindPFlag("docker.host", flags.Lookup("docker-host"))
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Execution error: %v\n", err)
		os.Exit(1)
	}
}
