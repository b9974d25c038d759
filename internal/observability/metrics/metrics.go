package metrics

import "github.com/prometheus/client_golang/prometheus"

// BoardMetrics exposes counters/histograms for the waiting-list board.
type BoardMetrics struct {
	checkinsTotal     *prometheus.CounterVec
	transitionsTotal  *prometheus.CounterVec
	projectionSeconds *prometheus.HistogramVec
	pollTotal         *prometheus.CounterVec
}

func NewBoardMetrics(reg prometheus.Registerer) *BoardMetrics {
	m := &BoardMetrics{
		checkinsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "vetclinic",
			Subsystem: "board",
			Name:      "checkins_total",
			Help:      "Total patient check-ins",
		}, []string{"priority"}),
		transitionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "vetclinic",
			Subsystem: "board",
			Name:      "transitions_total",
			Help:      "Total status transition attempts",
		}, []string{"from", "to", "result"}),
		projectionSeconds: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "vetclinic",
			Subsystem: "board",
			Name:      "projection_seconds",
			Help:      "Latency of whiteboard projection builds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"source"}),
		pollTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "vetclinic",
			Subsystem: "board",
			Name:      "poll_total",
			Help:      "Total board poll refreshes",
		}, []string{"result"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.checkinsTotal, m.transitionsTotal, m.projectionSeconds, m.pollTotal)
	return m
}

func (m *BoardMetrics) ObserveCheckIn(priority string) {
	if m == nil {
		return
	}
	m.checkinsTotal.WithLabelValues(priority).Inc()
}

func (m *BoardMetrics) ObserveTransition(from, to, result string) {
	if m == nil {
		return
	}
	m.transitionsTotal.WithLabelValues(from, to, result).Inc()
}

func (m *BoardMetrics) ObserveProjection(source string, seconds float64) {
	if m == nil {
		return
	}
	m.projectionSeconds.WithLabelValues(source).Observe(seconds)
}

func (m *BoardMetrics) ObservePoll(result string) {
	if m == nil {
		return
	}
	m.pollTotal.WithLabelValues(result).Inc()
}
