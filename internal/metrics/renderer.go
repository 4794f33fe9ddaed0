package metrics

import (
	"github.com/auto-dns/docker-slim-exporter/internal/domain"
	"github.com/auto-dns/docker-slim-exporter/internal/util"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
)

const (
	ExporterVersion     = "1.0.0"
	ExporterDescription = "Slim Docker Container State Exporter"
)

type snapshotReader interface {
	Read() []domain.ContainerRecord
}

// MetricsProducer yields the current series on demand.
type MetricsProducer interface {
	ProduceMetrics() []prometheus.Metric
}

// Renderer turns the cached snapshot into gauges on every scrape. It never
// talks to the container runtime.
type Renderer struct {
	logger        zerolog.Logger
	source        snapshotReader
	prefix        string
	includeLabels bool
}

var (
	_ prometheus.Collector = (*Renderer)(nil)
	_ MetricsProducer      = (*Renderer)(nil)
)

// NewRenderer creates a Renderer reading from source. prefix is prepended
// verbatim to every metric name.
func NewRenderer(logger zerolog.Logger, source snapshotReader, prefix string, includeLabels bool) *Renderer {
	return &Renderer{
		logger:        logger.With().Str("component", "renderer").Logger(),
		source:        source,
		prefix:        prefix,
		includeLabels: includeLabels,
	}
}

// Describe sends nothing. The label set depends on the labels present in the
// snapshot at scrape time, so the renderer registers as an unchecked collector.
func (r *Renderer) Describe(chan<- *prometheus.Desc) {}

func (r *Renderer) Collect(ch chan<- prometheus.Metric) {
	for _, m := range r.ProduceMetrics() {
		ch <- m
	}
}

// ProduceMetrics renders the status, health and exporter info series
// from a copy of the current snapshot.
func (r *Renderer) ProduceMetrics() []prometheus.Metric {
	records := r.source.Read()

	var keys []string
	if r.includeLabels {
		keys = dynamicLabelKeys(records)
	}

	statusDesc := prometheus.NewDesc(
		r.prefix+"container_status",
		"Docker container status",
		append([]string{"container_id", "name", "status"}, keys...), nil,
	)
	healthDesc := prometheus.NewDesc(
		r.prefix+"container_health",
		"Docker container health status",
		append([]string{"container_id", "name", "health_status"}, keys...), nil,
	)
	infoDesc := prometheus.NewDesc(
		r.prefix+"docker_slim_exporter_info",
		"Docker container state and health exporter information",
		[]string{"version", "description"}, nil,
	)

	out := make([]prometheus.Metric, 0, 2*len(records)+1)
	for _, rec := range records {
		extra := labelValues(rec, keys)
		out = r.appendGauge(out, statusDesc, rec, append([]string{rec.ID, rec.Name, rec.Status}, extra...))
		out = r.appendGauge(out, healthDesc, rec, append([]string{rec.ID, rec.Name, rec.HealthStatus}, extra...))
	}

	info, err := prometheus.NewConstMetric(infoDesc, prometheus.GaugeValue, 1, ExporterVersion, ExporterDescription)
	if err != nil {
		r.logger.Error().Err(err).Msg("Error building exporter info metric")
	} else {
		out = append(out, info)
	}

	return out
}

func (r *Renderer) appendGauge(out []prometheus.Metric, desc *prometheus.Desc, rec domain.ContainerRecord, values []string) []prometheus.Metric {
	m, err := prometheus.NewConstMetric(desc, prometheus.GaugeValue, 1, values...)
	if err != nil {
		r.logger.Warn().Err(err).Str("container_id", rec.ID).Str("name", rec.Name).Msg("Dropping series")
		return out
	}
	return append(out, m)
}

// dynamicLabelKeys returns the sorted union of label keys across records so
// every series of a family has the same label names.
func dynamicLabelKeys(records []domain.ContainerRecord) []string {
	labelSets := make([]map[string]string, len(records))
	for i, rec := range records {
		labelSets[i] = rec.Labels
	}
	return util.SortedKeys(util.KeyUnion(labelSets...))
}

// labelValues lines up rec's label values with keys, using "" for missing ones.
func labelValues(rec domain.ContainerRecord, keys []string) []string {
	values := make([]string, len(keys))
	for i, k := range keys {
		values[i] = rec.Labels[k]
	}
	return values
}
