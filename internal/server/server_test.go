package server

import (
	"bytes"
	"context"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/auto-dns/docker-slim-exporter/internal/config"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testGatherer(t *testing.T) prometheus.Gatherer {
	t.Helper()
	reg := prometheus.NewRegistry()
	g := prometheus.NewGauge(prometheus.GaugeOpts{Name: "container_status_test", Help: "test gauge"})
	g.Set(1)
	require.NoError(t, reg.Register(g))
	return reg
}

func TestHandler_Metrics(t *testing.T) {
	h := newHandler(testGatherer(t), zerolog.Nop())

	req := httptest.NewRequest(http.MethodGet, MetricsPath, nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/plain")
	assert.Contains(t, w.Body.String(), "container_status_test 1")
}

func TestHandler_UnknownRoute(t *testing.T) {
	h := newHandler(testGatherer(t), zerolog.Nop())

	for _, path := range []string{"/", "/health", "/metrics/extra"} {
		t.Run(path, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, path, nil)
			w := httptest.NewRecorder()
			h.ServeHTTP(w, req)

			assert.Equal(t, http.StatusNotFound, w.Code)
		})
	}
}

func TestServer_ServeAndShutdown(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	cfg := config.ExporterConfig{Address: "127.0.0.1", Port: 9090, ShutdownTimeout: 1}
	var logs bytes.Buffer
	s := New(zerolog.New(&logs), cfg, testGatherer(t))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- s.Serve(ctx, ln)
	}()

	url := "http://" + ln.Addr().String() + MetricsPath
	var body []byte
	require.Eventually(t, func() bool {
		resp, err := http.Get(url)
		if err != nil {
			return false
		}
		defer resp.Body.Close()
		body, err = io.ReadAll(resp.Body)
		return err == nil && resp.StatusCode == http.StatusOK
	}, 2*time.Second, 10*time.Millisecond)
	assert.Contains(t, string(body), "container_status_test 1")

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(3 * time.Second):
		t.Fatal("server did not shut down")
	}
	assert.Contains(t, logs.String(), "Docker Exporter started")
	assert.Contains(t, logs.String(), ln.Addr().String())
}

func TestServer_StartListenError(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	port := ln.Addr().(*net.TCPAddr).Port
	var logs bytes.Buffer
	s := New(zerolog.New(&logs), config.ExporterConfig{Address: "127.0.0.1", Port: port}, testGatherer(t))

	err = s.Start(context.Background())
	assert.Error(t, err)
	assert.NotContains(t, logs.String(), "Docker Exporter started")
}
