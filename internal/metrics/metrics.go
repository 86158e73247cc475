// Package metrics exposes Prometheus instrumentation for entry ingestion and
// report computation.
package metrics

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"moodlens/internal/analytics"
)

const namespace = "moodlens"

// Metrics owns a private registry so tests can create independent instances.
type Metrics struct {
	registry *prometheus.Registry
	handler  http.Handler

	entriesIngested prometheus.Counter
	reportDuration  *prometheus.HistogramVec
	reportsTotal    *prometheus.CounterVec

	entries      prometheus.Gauge
	validEntries prometheus.Gauge
	exclusions   *prometheus.GaugeVec
	moodScores   *prometheus.GaugeVec
	categories   *prometheus.GaugeVec
	lastRefresh  prometheus.Gauge
}

// New registers all collectors on a fresh registry.
func New() *Metrics {
	registry := prometheus.NewRegistry()

	entriesIngested := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "entries_ingested_total",
		Help:      "Total number of entries accepted by the entry API or importer",
	})

	reportDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "report_duration_seconds",
		Help:      "Time spent computing a report, snapshot load included",
		Buckets:   prometheus.DefBuckets,
	}, []string{"source"})

	reportsTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "reports_total",
		Help:      "Reports computed, by source and result",
	}, []string{"source", "result"})

	entries := prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "entries",
		Help:      "Entries in the last computed snapshot",
	})

	validEntries := prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "valid_entries",
		Help:      "Entries with a valid mood score in the last computed snapshot",
	})

	exclusions := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "excluded_entries",
		Help:      "Entries excluded from part of the last report, by reason",
	}, []string{"reason"})

	moodScores := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "mood_score_entries",
		Help:      "Mood histogram of the last computed snapshot",
	}, []string{"score"})

	categories := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "mood_category_entries",
		Help:      "Low, medium and high mood counts of the last computed snapshot",
	}, []string{"category"})

	lastRefresh := prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "report_last_refresh_timestamp_seconds",
		Help:      "Unix time of the last successful report refresh",
	})

	registry.MustRegister(entriesIngested, reportDuration, reportsTotal, entries, validEntries,
		exclusions, moodScores, categories, lastRefresh)

	return &Metrics{
		registry:        registry,
		handler:         promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		entriesIngested: entriesIngested,
		reportDuration:  reportDuration,
		reportsTotal:    reportsTotal,
		entries:         entries,
		validEntries:    validEntries,
		exclusions:      exclusions,
		moodScores:      moodScores,
		categories:      categories,
		lastRefresh:     lastRefresh,
	}
}

var (
	defaultMetrics *Metrics
	defaultOnce    sync.Once
)

// Default returns the process wide instance shared by routes and jobs.
func Default() *Metrics {
	defaultOnce.Do(func() {
		defaultMetrics = New()
	})
	return defaultMetrics
}

// Registry returns the underlying registry
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler exposes the Prometheus HTTP handler.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// RecordIngested counts accepted entries
func (m *Metrics) RecordIngested(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.entriesIngested.Add(float64(n))
}

// ObserveReport records the outcome of one report computation.
func (m *Metrics) ObserveReport(source string, duration time.Duration, err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.reportDuration.WithLabelValues(source).Observe(duration.Seconds())
	m.reportsTotal.WithLabelValues(source, result).Inc()
}

// SetReport publishes the headline numbers of a report as gauges.
func (m *Metrics) SetReport(report analytics.Report, at time.Time) {
	if m == nil {
		return
	}
	m.entries.Set(float64(report.EntryCount))
	m.validEntries.Set(float64(report.ValidEntryCount))

	m.exclusions.WithLabelValues("invalid_score").Set(float64(report.Exclusions.InvalidScore))
	m.exclusions.WithLabelValues("invalid_time").Set(float64(report.Exclusions.InvalidTime))
	m.exclusions.WithLabelValues("oversized_tag_set").Set(float64(report.Exclusions.OversizedTagSet))

	for _, bucket := range report.Distribution.Histogram {
		m.moodScores.WithLabelValues(strconv.Itoa(bucket.Score)).Set(float64(bucket.Count))
	}

	m.categories.WithLabelValues("low").Set(float64(report.Distribution.Categories.Low))
	m.categories.WithLabelValues("medium").Set(float64(report.Distribution.Categories.Medium))
	m.categories.WithLabelValues("high").Set(float64(report.Distribution.Categories.High))

	m.lastRefresh.Set(float64(at.Unix()))
}
