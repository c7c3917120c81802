/* Copyright 2025 Dnote Authors
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package metrics exposes sync activity of the daemon in the Prometheus
// text format.
package metrics

import (
	"context"
	"net/http"
	"time"

	clisync "github.com/dnote/memosync/pkg/cli/sync"
	"github.com/gorilla/mux"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "memosync"

// pass results
const (
	resultOK      = "ok"
	resultPartial = "partial"
	resultError   = "error"
)

// Metrics holds the collectors for one daemon
type Metrics struct {
	registry *prometheus.Registry

	passes      *prometheus.CounterVec
	items       *prometheus.CounterVec
	remoteNotes *prometheus.CounterVec
	duration    prometheus.Histogram
	online      prometheus.Gauge
	lastSuccess prometheus.Gauge
	failures    prometheus.Gauge
}

// New registers the collectors on a fresh registry. queueDepth, if not nil,
// is polled on every scrape.
func New(queueDepth func() (int, error)) *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		passes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sync_passes_total",
			Help:      "Number of sync passes by result.",
		}, []string{"result"}),
		items: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sync_queue_items_total",
			Help:      "Number of queue items handled by outcome.",
		}, []string{"outcome"}),
		remoteNotes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sync_remote_notes_total",
			Help:      "Number of remote notes applied locally by kind.",
		}, []string{"kind"}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "sync_duration_seconds",
			Help:      "Duration of sync passes.",
			Buckets:   prometheus.ExponentialBuckets(0.05, 2, 12),
		}),
		online: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "online",
			Help:      "1 if the server is reachable.",
		}),
		lastSuccess: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "sync_last_success_timestamp_seconds",
			Help:      "Unix time of the last pass that completed without errors.",
		}),
		failures: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "sync_consecutive_failures",
			Help:      "Number of failed passes since the last success.",
		}),
	}

	m.registry.MustRegister(
		m.passes,
		m.items,
		m.remoteNotes,
		m.duration,
		m.online,
		m.lastSuccess,
		m.failures,
		collectors.NewGoCollector(),
	)

	if queueDepth != nil {
		m.registry.MustRegister(prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "sync_queue_depth",
			Help:      "Number of local changes waiting to be sent.",
		}, func() float64 {
			n, err := queueDepth()
			if err != nil {
				return -1
			}
			return float64(n)
		}))
	}

	return m
}

// Observe records a finished pass. It has the signature of a sync observer.
func (m *Metrics) Observe(r clisync.Report) {
	result := resultOK
	if r.Err != "" {
		result = resultError
	} else if r.Failed > 0 {
		result = resultPartial
	}
	m.passes.WithLabelValues(result).Inc()

	m.items.WithLabelValues("processed").Add(float64(r.Processed))
	m.items.WithLabelValues("failed").Add(float64(r.Failed))
	m.items.WithLabelValues("moot").Add(float64(r.Moot))
	m.items.WithLabelValues("deferred").Add(float64(r.Deferred))

	m.remoteNotes.WithLabelValues("inserted").Add(float64(r.Inserted))
	m.remoteNotes.WithLabelValues("overwritten").Add(float64(r.Overwritten))

	m.duration.Observe(r.Duration().Seconds())

	if r.OK() {
		m.lastSuccess.Set(float64(r.FinishedAt.Unix()))
	}
}

// SetOnline records the connectivity state
func (m *Metrics) SetOnline(online bool) {
	if online {
		m.online.Set(1)
	} else {
		m.online.Set(0)
	}
}

// SetConsecutiveFailures records the scheduler failure streak
func (m *Metrics) SetConsecutiveFailures(n int) {
	m.failures.Set(float64(n))
}

// Handler returns the HTTP handler serving the metrics
func (m *Metrics) Handler() http.Handler {
	r := mux.NewRouter()
	r.Handle("/metrics", promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})).Methods(http.MethodGet)

	return r
}

// Serve listens on addr until ctx is done
func (m *Metrics) Serve(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           m.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return errors.Wrapf(err, "serving metrics on %s", addr)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return errors.Wrap(err, "shutting down metrics server")
	}

	return nil
}
