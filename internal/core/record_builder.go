package core

import (
	"errors"
	"strings"

	"github.com/auto-dns/docker-slim-exporter/internal/domain"
	"github.com/docker/docker/api/types/container"
)

var (
	errMissingDetails = errors.New("inspect response has no container details")
	errMissingID      = errors.New("container has no id")
	errMissingState   = errors.New("container has no state")
)

// BuildContainerRecord extracts a ContainerRecord from the list summary and
// inspect response of one container. Labels are only read when includeLabels
// is set.
func BuildContainerRecord(summary container.Summary, info container.InspectResponse, includeLabels bool) (domain.ContainerRecord, error) {
	if info.ContainerJSONBase == nil {
		return domain.ContainerRecord{}, errMissingDetails
	}

	id := info.ID
	if id == "" {
		id = summary.ID
	}
	if id == "" {
		return domain.ContainerRecord{}, errMissingID
	}

	if info.State == nil {
		return domain.ContainerRecord{}, errMissingState
	}

	return domain.ContainerRecord{
		ID:           domain.ShortID(id),
		Name:         containerName(summary, info),
		Status:       string(info.State.Status),
		HealthStatus: healthStatus(info.State),
		Labels:       containerLabels(summary, info, includeLabels),
	}, nil
}

func containerName(summary container.Summary, info container.InspectResponse) string {
	if info.Name != "" {
		return strings.TrimPrefix(info.Name, "/")
	}
	if len(summary.Names) > 0 {
		return strings.TrimPrefix(summary.Names[0], "/")
	}
	return ""
}

func healthStatus(st *container.State) string {
	if st.Health == nil {
		return domain.HealthStatusNone
	}
	return string(st.Health.Status)
}

func containerLabels(summary container.Summary, info container.InspectResponse, includeLabels bool) map[string]string {
	if !includeLabels {
		return map[string]string{}
	}
	return SanitizeLabels(rawLabels(summary, info))
}

// rawLabels prefers the inspect response and falls back to the list summary.
func rawLabels(summary container.Summary, info container.InspectResponse) map[string]string {
	if info.Config != nil {
		return info.Config.Labels
	}
	return summary.Labels
}
