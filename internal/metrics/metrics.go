// Package metrics exports page traffic counters to Prometheus.
package metrics

import (
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "portfolio"

// Metrics holds the server's collectors on a private registry.
type Metrics struct {
	registry       *prometheus.Registry
	pageViews      *prometheus.CounterVec
	outboundClicks *prometheus.CounterVec
	sectionChanges *prometheus.CounterVec
	streams        *prometheus.CounterVec
	activeStreams  *prometheus.GaugeVec
}

// New registers every collector plus the Go and process collectors.
func New() (*Metrics, error) {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		pageViews: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "page_views_total",
			Help:      "Rendered pages and section fragments.",
		}, []string{"page"}),
		outboundClicks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "outbound_clicks_total",
			Help:      "Followed outbound links by record kind and action.",
		}, []string{"kind", "action"}),
		sectionChanges: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "active_section_changes_total",
			Help:      "Navigation highlight changes by newly active section.",
		}, []string{"section"}),
		streams: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "streams_total",
			Help:      "Opened animation streams by kind.",
		}, []string{"stream"}),
		activeStreams: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "streams_active",
			Help:      "Currently open animation streams by kind.",
		}, []string{"stream"}),
	}

	toRegister := []prometheus.Collector{
		m.pageViews, m.outboundClicks, m.sectionChanges, m.streams, m.activeStreams,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	}
	for _, c := range toRegister {
		if err := m.registry.Register(c); err != nil {
			return nil, fmt.Errorf("register metric: %w", err)
		}
	}
	return m, nil
}

// PageView counts a rendered page.
func (m *Metrics) PageView(page string) {
	if m == nil {
		return
	}
	m.pageViews.WithLabelValues(page).Inc()
}

// OutboundClick counts a followed link.
func (m *Metrics) OutboundClick(kind, action string) {
	if m == nil {
		return
	}
	m.outboundClicks.WithLabelValues(kind, action).Inc()
}

// SectionChanged counts a navigation highlight change.
func (m *Metrics) SectionChanged(section string) {
	if m == nil {
		return
	}
	m.sectionChanges.WithLabelValues(section).Inc()
}

// StreamOpened counts a stream and returns the func that marks it closed.
func (m *Metrics) StreamOpened(stream string) (closed func()) {
	if m == nil {
		return func() {}
	}
	m.streams.WithLabelValues(stream).Inc()
	m.activeStreams.WithLabelValues(stream).Inc()
	return func() { m.activeStreams.WithLabelValues(stream).Dec() }
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
