package app

import (
	"context"
	"fmt"
	"time"

	"github.com/auto-dns/docker-slim-exporter/internal/config"
	"github.com/auto-dns/docker-slim-exporter/internal/core"
	"github.com/auto-dns/docker-slim-exporter/internal/docker"
	"github.com/auto-dns/docker-slim-exporter/internal/metrics"
	"github.com/auto-dns/docker-slim-exporter/internal/server"
	"github.com/auto-dns/docker-slim-exporter/internal/state"
	"github.com/docker/docker/api/types/container"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

type dockerClient interface {
	ContainerList(ctx context.Context, options container.ListOptions) ([]container.Summary, error)
	ContainerInspect(ctx context.Context, containerID string) (container.InspectResponse, error)
	Close() error
}

type App struct {
	dockerClient dockerClient
	cache        *state.SnapshotCache
	poller       *core.Poller
	server       *server.Server
	logger       zerolog.Logger
}

// New creates a new App by wiring up all dependencies.
func New(cfg *config.Config, logger zerolog.Logger) (*App, error) {
	dockerClient, err := docker.NewClient(cfg.Docker)
	if err != nil {
		return nil, err
	}
	return newWithClient(cfg, logger, dockerClient)
}

func newWithClient(cfg *config.Config, logger zerolog.Logger, cli dockerClient) (*App, error) {
	cache := state.NewSnapshotCache()
	poller := core.NewPoller(logger, cfg.Collector, cli, cache)

	renderer := metrics.NewRenderer(logger, cache, cfg.Metrics.NamePrefix(), cfg.Collector.IncludeLabels)
	gatherer, err := metrics.NewRegistry(renderer, cfg.Metrics.DisableDefaultMetrics)
	if err != nil {
		return nil, err
	}
	if cfg.Metrics.DisableDefaultMetrics {
		logger.Info().Msg("Default metrics disabled")
	} else {
		logger.Info().Msg("Including default Go and process metrics")
	}
	if cfg.Collector.IncludeLabels {
		logger.Info().Msg("Container labels included in metrics (cAdvisor style)")
	}

	return &App{
		dockerClient: cli,
		cache:        cache,
		poller:       poller,
		server:       server.New(logger, cfg.Exporter, gatherer),
		logger:       logger,
	}, nil
}

// Run starts the collector loop and the metrics server and blocks until ctx
// is cancelled or one of them fails.
func (a *App) Run(ctx context.Context) error {
	a.logger.Info().Msg("Application starting")
	started := time.Now()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return a.poller.Run(gctx)
	})
	g.Go(func() error {
		return a.server.Start(gctx)
	})

	err := g.Wait()
	a.logger.Info().Dur("uptime", time.Since(started)).Msg("Application stopped")
	return err
}

func (a *App) Close() error {
	if a.dockerClient != nil {
		if err := a.dockerClient.Close(); err != nil {
			return fmt.Errorf("close docker client: %w", err)
		}
	}
	return nil
}
