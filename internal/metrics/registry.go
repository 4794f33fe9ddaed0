package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

// NewRegistry registers c and returns the registry to serve. With
// disableDefault the registry is isolated and holds only c; otherwise c is
// added to the global default registry next to the Go and process collectors.
func NewRegistry(c prometheus.Collector, disableDefault bool) (prometheus.Gatherer, error) {
	var (
		reg      prometheus.Registerer
		gatherer prometheus.Gatherer
	)
	if disableDefault {
		r := prometheus.NewRegistry()
		reg, gatherer = r, r
	} else {
		reg, gatherer = prometheus.DefaultRegisterer, prometheus.DefaultGatherer
	}

	if err := reg.Register(c); err != nil {
		return nil, fmt.Errorf("registering container collector: %w", err)
	}
	return gatherer, nil
}
