package core

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/auto-dns/docker-slim-exporter/internal/config"
	"github.com/auto-dns/docker-slim-exporter/internal/domain"
	"github.com/containerd/errdefs"
	"github.com/docker/docker/api/types/container"
	"github.com/rs/zerolog"
)

// PassResult summarizes one collection pass.
type PassResult struct {
	Listed    int
	Collected int
	Skipped   int
	Duration  time.Duration
}

// Poller periodically lists containers and replaces the snapshot store with
// the records it builds.
type Poller struct {
	logger      zerolog.Logger
	cfg         config.CollectorConfig
	cli         dockerClient
	store       snapshotStore
	interval    time.Duration
	// callTimeout bounds each Docker API call. Zero means no bound.
	callTimeout time.Duration
}

func NewPoller(logger zerolog.Logger, cfg config.CollectorConfig, cli dockerClient, store snapshotStore) *Poller {
	return &Poller{
		logger:      logger.With().Str("component", "poller").Logger(),
		cfg:         cfg,
		cli:         cli,
		store:       store,
		interval:    cfg.Interval(),
		callTimeout: cfg.Timeout(),
	}
}

// Run performs a collection pass, sleeps for the configured interval, and
// repeats until ctx is cancelled. The interval is measured from the end of
// one pass, so a slow pass delays the following ones.
func (p *Poller) Run(ctx context.Context) error {
	p.logger.Info().
		Dur("interval", p.interval).
		Bool("include_stopped", p.cfg.IncludeStopped).
		Bool("include_labels", p.cfg.IncludeLabels).
		Msg("Starting collector loop")

	for {
		if ctx.Err() != nil {
			p.logger.Info().Msg("Collector loop shutting down")
			return nil
		}

		if _, err := p.CollectOnce(ctx); err != nil {
			if errors.Is(err, context.Canceled) {
				p.logger.Info().Msg("Collection pass interrupted by shutdown")
			} else {
				p.logger.Error().Err(err).Time("snapshot_updated_at", p.store.UpdatedAt()).Msg("Error collecting metrics")
			}
		}

		sleep := time.NewTimer(p.interval)
		select {
		case <-ctx.Done():
			sleep.Stop()
			p.logger.Info().Msg("Collector loop shutting down")
			return nil
		case <-sleep.C:
		}
	}
}

// CollectOnce runs a single collection pass. On success the snapshot store
// holds exactly the containers that were extracted without error. When the
// listing call fails or ctx is cancelled mid-pass, the store is left
// untouched. Each API call gets its own deadline, so a slow container is
// skipped rather than failing the pass.
func (p *Poller) CollectOnce(ctx context.Context) (PassResult, error) {
	start := time.Now()

	listCtx, cancel := p.callContext(ctx)
	containers, err := p.cli.ContainerList(listCtx, container.ListOptions{All: p.cfg.IncludeStopped})
	cancel()
	if err != nil {
		if ctx.Err() != nil {
			return PassResult{}, fmt.Errorf("%w: %w", ErrPassAborted, ctx.Err())
		}
		return PassResult{}, fmt.Errorf("%w: %w", ErrRuntimeUnreachable, err)
	}
	p.logger.Info().Msgf("Collecting metrics for %d containers", len(containers))

	result := PassResult{Listed: len(containers)}
	records := make([]domain.ContainerRecord, 0, len(containers))
	for _, c := range containers {
		if ctx.Err() != nil {
			break
		}
		rec, err := p.collectContainer(ctx, c)
		if err != nil {
			if ctx.Err() != nil {
				break
			}
			result.Skipped++
			if errdefs.IsNotFound(err) {
				p.logger.Warn().Err(err).Str("container_id", c.ID).Msg("Container disappeared before it could be inspected")
			} else {
				p.logger.Error().Err(err).Str("container_id", c.ID).Msg("Error processing container")
			}
			continue
		}
		records = append(records, rec)
	}

	if err := ctx.Err(); err != nil {
		return result, fmt.Errorf("%w: %w", ErrPassAborted, err)
	}

	p.store.Replace(records)

	result.Collected = len(records)
	result.Duration = time.Since(start)
	p.logger.Debug().
		Int("collected", result.Collected).
		Int("skipped", result.Skipped).
		Dur("duration", result.Duration).
		Msg("Snapshot replaced")

	return result, nil
}

func (p *Poller) collectContainer(ctx context.Context, c container.Summary) (domain.ContainerRecord, error) {
	inspectCtx, cancel := p.callContext(ctx)
	defer cancel()

	info, err := p.cli.ContainerInspect(inspectCtx, c.ID)
	if err != nil {
		return domain.ContainerRecord{}, NewExtractionError(c.ID, fmt.Errorf("inspecting container: %w", err))
	}
	rec, err := BuildContainerRecord(c, info, p.cfg.IncludeLabels)
	if err != nil {
		return domain.ContainerRecord{}, NewExtractionError(c.ID, err)
	}
	if p.cfg.IncludeLabels {
		for _, lc := range LabelCollisions(rawLabels(c, info)) {
			p.logger.Debug().
				Str("container_id", rec.ID).
				Str("label", lc.Name).
				Str("kept", lc.Kept).
				Str("dropped", lc.Dropped).
				Msg("Label keys collide after sanitizing")
		}
	}
	return rec, nil
}

func (p *Poller) callContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if p.callTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, p.callTimeout)
}
