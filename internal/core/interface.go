package core

import (
	"context"
	"time"

	"github.com/auto-dns/docker-slim-exporter/internal/domain"
	"github.com/docker/docker/api/types/container"
)

type dockerClient interface {
	ContainerList(ctx context.Context, options container.ListOptions) ([]container.Summary, error)
	ContainerInspect(ctx context.Context, containerID string) (container.InspectResponse, error)
}

type snapshotStore interface {
	Replace(records []domain.ContainerRecord)
	UpdatedAt() time.Time
}
