// Package docker builds the Docker Engine API client used by the collector.
package docker

import (
	"fmt"

	"github.com/auto-dns/docker-slim-exporter/internal/config"
	dockerCli "github.com/docker/docker/client"
)

// NewClient connects using the standard DOCKER_* environment and API version
// negotiation. A non-empty cfg.Host overrides the daemon endpoint.
func NewClient(cfg config.DockerConfig) (*dockerCli.Client, error) {
	opts := []dockerCli.Opt{
		dockerCli.FromEnv,
		dockerCli.WithAPIVersionNegotiation(),
	}
	if cfg.Host != "" {
		opts = append(opts, dockerCli.WithHost(cfg.Host))
	}

	cli, err := dockerCli.NewClientWithOpts(opts...)
	if err != nil {
		return nil, fmt.Errorf("creating docker client: %w", err)
	}
	return cli, nil
}
