// Package metrics exposes engine counters and gauges as Prometheus collectors.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "thunder_store"

type Metrics struct {
	compositeTruncations *prometheus.CounterVec
	skippedFiles         *prometheus.CounterVec
	declarativeResources *prometheus.GaugeVec
	reloads              *prometheus.CounterVec
}

// New builds the collectors and registers them on registerer. A nil
// registerer leaves them unregistered.
func New(registerer prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		compositeTruncations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "composite_truncations_total",
			Help:      "Composite listings whose combined source records exceeded the in-memory ceiling.",
		}, []string{"resource_type"}),
		skippedFiles: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "declarative_skipped_files_total",
			Help:      "Declarative files skipped during loads.",
		}, []string{"resource_type"}),
		declarativeResources: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "declarative_resources",
			Help:      "Resources in the current declarative snapshot.",
		}, []string{"resource_type"}),
		reloads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "declarative_reloads_total",
			Help:      "Declarative snapshot reloads by result.",
		}, []string{"result"}),
	}

	if registerer == nil {
		return m, nil
	}
	for _, collector := range m.collectors() {
		if err := registerer.Register(collector); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *Metrics) collectors() []prometheus.Collector {
	return []prometheus.Collector{
		m.compositeTruncations,
		m.skippedFiles,
		m.declarativeResources,
		m.reloads,
	}
}

func (m *Metrics) ObserveCompositeTruncation(resourceType string) {
	if m == nil {
		return
	}
	m.compositeTruncations.WithLabelValues(resourceType).Inc()
}

func (m *Metrics) ObserveDeclarativeReload(success bool) {
	if m == nil {
		return
	}
	result := "success"
	if !success {
		result = "failure"
	}
	m.reloads.WithLabelValues(result).Inc()
}

func (m *Metrics) SetDeclarativeResources(resourceType string, count int) {
	if m == nil {
		return
	}
	m.declarativeResources.WithLabelValues(resourceType).Set(float64(count))
}

func (m *Metrics) AddDeclarativeSkippedFiles(resourceType string, count int) {
	if m == nil || count <= 0 {
		return
	}
	m.skippedFiles.WithLabelValues(resourceType).Add(float64(count))
}
