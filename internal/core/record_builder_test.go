package core

import (
	"testing"

	"github.com/auto-dns/docker-slim-exporter/internal/domain"
	"github.com/docker/docker/api/types/container"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildContainerRecord_FallsBackToSummary(t *testing.T) {
	summary := container.Summary{
		ID:     webID,
		Names:  []string{"/web"},
		Labels: map[string]string{"env": "prod"},
	}
	info := container.InspectResponse{
		ContainerJSONBase: &container.ContainerJSONBase{
			State: &container.State{Status: "paused"},
		},
	}

	rec, err := BuildContainerRecord(summary, info, true)
	require.NoError(t, err)
	assert.Equal(t, "abc123def456", rec.ID)
	assert.Equal(t, "web", rec.Name)
	assert.Equal(t, "paused", rec.Status)
	assert.Equal(t, domain.HealthStatusNone, rec.HealthStatus)
	assert.Equal(t, map[string]string{"container_label_env": "prod"}, rec.Labels)
}

func TestBuildContainerRecord_Errors(t *testing.T) {
	tests := []struct {
		name string
		info container.InspectResponse
		want error
	}{
		{
			name: "no details",
			info: container.InspectResponse{},
			want: errMissingDetails,
		},
		{
			name: "no id",
			info: container.InspectResponse{
				ContainerJSONBase: &container.ContainerJSONBase{State: &container.State{Status: "running"}},
			},
			want: errMissingID,
		},
		{
			name: "no state",
			info: container.InspectResponse{
				ContainerJSONBase: &container.ContainerJSONBase{ID: webID},
			},
			want: errMissingState,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := BuildContainerRecord(container.Summary{}, tt.info, true)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestBuildContainerRecord_HealthStates(t *testing.T) {
	tests := []struct {
		name   string
		health *container.Health
		want   string
	}{
		{name: "starting", health: &container.Health{Status: "starting"}, want: "starting"},
		{name: "healthy", health: &container.Health{Status: "healthy"}, want: "healthy"},
		{name: "unhealthy", health: &container.Health{Status: "unhealthy"}, want: "unhealthy"},
		{name: "no healthcheck", health: nil, want: domain.HealthStatusNone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			info := container.InspectResponse{
				ContainerJSONBase: &container.ContainerJSONBase{
					ID:    webID,
					Name:  "/web",
					State: &container.State{Status: "running", Health: tt.health},
				},
				Config: &container.Config{Labels: map[string]string{"env": "prod"}},
			}

			rec, err := BuildContainerRecord(container.Summary{}, info, false)
			require.NoError(t, err)
			assert.Equal(t, tt.want, rec.HealthStatus)
			assert.Empty(t, rec.Labels)
		})
	}
}
