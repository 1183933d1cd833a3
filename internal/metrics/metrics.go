// Package metrics собирает метрики запуска для textfile-коллектора node-exporter.
package metrics

import (
	"os"
	"path/filepath"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "readme_updater"

// Metrics - метрики одного запуска в собственном реестре.
type Metrics struct {
	Registry *prometheus.Registry

	// LastRunTimestamp - время окончания последнего запуска (unix, секунды).
	LastRunTimestamp prometheus.Gauge
	// LastRunSuccess - 1, если запуск завершился без фатальной ошибки.
	LastRunSuccess prometheus.Gauge
	// RunDuration - длительность последнего запуска в секундах.
	RunDuration prometheus.Gauge
	// SectionDegraded - 1 для разделов, показанных заглушкой.
	SectionDegraded *prometheus.GaugeVec
	// ProviderFailures - сбои провайдеров в последнем запуске по имени и виду ошибки.
	ProviderFailures *prometheus.GaugeVec
}

func New() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		Registry: reg,
		LastRunTimestamp: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_run_timestamp_seconds",
			Help:      "Unix time the last run finished",
		}),
		LastRunSuccess: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_run_success",
			Help:      "Whether the last run succeeded (1 = success, 0 = failure)",
		}),
		RunDuration: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_run_duration_seconds",
			Help:      "Duration of the last run in seconds",
		}),
		SectionDegraded: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "section_degraded",
			Help:      "Whether a section was rendered with its placeholder (1 = degraded)",
		}, []string{"section"}),
		ProviderFailures: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_run_provider_failures",
			Help:      "Number of provider failures in the last run",
		}, []string{"provider", "kind"}),
	}
}

// RecordProviderFailure учитывает сбой провайдера в текущем запуске.
func (m *Metrics) RecordProviderFailure(provider, kind string) {
	m.ProviderFailures.WithLabelValues(provider, kind).Inc()
}

// RecordRun фиксирует итог запуска. sections - все разделы документа, degraded - деградировавшие.
func (m *Metrics) RecordRun(started, finished time.Time, success bool, sections, degraded []string) {
	m.LastRunTimestamp.Set(float64(finished.Unix()))
	m.RunDuration.Set(finished.Sub(started).Seconds())
	if success {
		m.LastRunSuccess.Set(1)
	} else {
		m.LastRunSuccess.Set(0)
	}

	isDegraded := make(map[string]bool, len(degraded))
	for _, s := range degraded {
		isDegraded[s] = true
	}
	for _, s := range sections {
		v := 0.0
		if isDegraded[s] {
			v = 1
		}
		m.SectionDegraded.WithLabelValues(s).Set(v)
	}
}

// WriteTextfile записывает метрики в формате text exposition.
// Пустой path ничего не делает.
func (m *Metrics) WriteTextfile(path string) error {
	if path == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return prometheus.WriteToTextfile(path, m.Registry)
}
