package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
)

// CycleMetrics exposes monitoring-cycle outcomes in Prometheus format.
// Gauges reflect the most recent cycle; counters accumulate across the
// process lifetime.
type CycleMetrics struct {
	registry *prometheus.Registry

	cyclesTotal      prometheus.Counter
	cycleDuration    prometheus.Gauge
	lastCycleSuccess prometheus.Gauge
	lastCycleTime    prometheus.Gauge

	recordsTotal  *prometheus.GaugeVec
	recordsFailed *prometheus.GaugeVec

	sourceErrors     *prometheus.CounterVec
	deliveryFailures prometheus.Counter

	servicesReachable *prometheus.GaugeVec
}

// New creates and registers the cycle metrics on a private registry
func New() *CycleMetrics {
	m := &CycleMetrics{
		registry: prometheus.NewRegistry(),
		cyclesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "opsmon_cycles_total",
			Help: "Number of monitoring cycles run",
		}),
		cycleDuration: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "opsmon_cycle_duration_seconds",
			Help: "Duration of the last monitoring cycle",
		}),
		lastCycleSuccess: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "opsmon_last_cycle_success",
			Help: "Whether the last cycle completed without source or delivery failures (1) or not (0)",
		}),
		lastCycleTime: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "opsmon_last_cycle_timestamp_seconds",
			Help: "Unix time of the last completed cycle",
		}),
		recordsTotal: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "opsmon_records_total",
			Help: "Execution records fetched in the last cycle",
		}, []string{"source"}),
		recordsFailed: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "opsmon_records_failed",
			Help: "Execution records with a non-succeeded outcome in the last cycle",
		}, []string{"source"}),
		sourceErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "opsmon_source_errors_total",
			Help: "Repository fetch failures by source",
		}, []string{"source"}),
		deliveryFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "opsmon_delivery_failures_total",
			Help: "Chat deliveries that returned failure",
		}),
		servicesReachable: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "opsmon_service_reachable",
			Help: "Integration service reachability by environment (1 reachable, 0 not)",
		}, []string{"environment"}),
	}

	m.registry.MustRegister(
		m.cyclesTotal, m.cycleDuration, m.lastCycleSuccess, m.lastCycleTime,
		m.recordsTotal, m.recordsFailed, m.sourceErrors, m.deliveryFailures,
		m.servicesReachable,
	)
	return m
}

// CycleStarted increments the cycle counter
func (m *CycleMetrics) CycleStarted() {
	m.cyclesTotal.Inc()
}

// CycleFinished records the last cycle's duration and overall health
func (m *CycleMetrics) CycleFinished(duration time.Duration, clean bool) {
	m.cycleDuration.Set(duration.Seconds())
	m.lastCycleTime.Set(float64(time.Now().Unix()))
	if clean {
		m.lastCycleSuccess.Set(1)
	} else {
		m.lastCycleSuccess.Set(0)
	}
}

// RecordCounts sets the per-source record gauges for the last cycle
func (m *CycleMetrics) RecordCounts(source string, total, failed int) {
	m.recordsTotal.WithLabelValues(source).Set(float64(total))
	m.recordsFailed.WithLabelValues(source).Set(float64(failed))
}

// SourceError counts one repository fetch failure
func (m *CycleMetrics) SourceError(source string) {
	m.sourceErrors.WithLabelValues(source).Inc()
}

// DeliveryFailure counts one failed chat delivery
func (m *CycleMetrics) DeliveryFailure() {
	m.deliveryFailures.Inc()
}

// ServiceReachable records one environment's probe result
func (m *CycleMetrics) ServiceReachable(environment string, reachable bool) {
	v := 0.0
	if reachable {
		v = 1.0
	}
	m.servicesReachable.WithLabelValues(environment).Set(v)
}

// Handler serves the registry in Prometheus text exposition format
func (m *CycleMetrics) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		families, err := m.registry.Gather()
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", string(expfmt.NewFormat(expfmt.TypeTextPlain)))
		encoder := expfmt.NewEncoder(w, expfmt.NewFormat(expfmt.TypeTextPlain))
		for _, family := range families {
			if err := encoder.Encode(family); err != nil {
				return
			}
		}
	})
}
