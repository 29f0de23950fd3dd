package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Namespace prefixes every metric name.
const Namespace = "labwork"

// Recorder holds the application metrics on a private registry. It
// implements fibonacci.Observer and users.CacheObserver.
type Recorder struct {
	registry *prometheus.Registry

	sequenceLookups *prometheus.CounterVec
	sequenceEntries *prometheus.GaugeVec
	userLookups     *prometheus.CounterVec
	evalDuration    *prometheus.HistogramVec
	modeDuration    *prometheus.HistogramVec
}

// NewRecorder creates a Recorder. Go runtime collectors are registered
// alongside the application metrics.
func NewRecorder() *Recorder {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	factory := promauto.With(reg)

	return &Recorder{
		registry: reg,
		sequenceLookups: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "sequence_cache_lookups_total",
			Help:      "Sequence evaluator lookups by evaluator and cache result",
		}, []string{"evaluator", "result"}),
		sequenceEntries: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: Namespace,
			Name:      "sequence_cache_entries",
			Help:      "Number of memoized sequence terms per evaluator",
		}, []string{"evaluator"}),
		userLookups: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "user_cache_lookups_total",
			Help:      "Active-user cache lookups by result",
		}, []string{"result"}),
		evalDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "compare_evaluation_duration_seconds",
			Help:      "Duration of one calculator run over the compared indices",
			Buckets:   []float64{.0001, .001, .01, .1, 1, 10},
		}, []string{"calculator"}),
		modeDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "mode_duration_seconds",
			Help:      "Duration of each application mode",
			Buckets:   prometheus.DefBuckets,
		}, []string{"mode", "status"}),
	}
}

// Registry returns the underlying registry.
func (r *Recorder) Registry() *prometheus.Registry { return r.registry }

func result(hit bool) string {
	if hit {
		return "hit"
	}
	return "miss"
}

// ObserveLookup records one sequence evaluator lookup.
func (r *Recorder) ObserveLookup(evaluator string, hit bool, size int) {
	r.sequenceLookups.WithLabelValues(evaluator, result(hit)).Inc()
	r.sequenceEntries.WithLabelValues(evaluator).Set(float64(size))
}

// ObserveCacheLookup records one active-user cache lookup.
func (r *Recorder) ObserveCacheLookup(hit bool) {
	r.userLookups.WithLabelValues(result(hit)).Inc()
}

// ObserveEvaluation records how long a calculator took in compare mode.
func (r *Recorder) ObserveEvaluation(calculator string, d time.Duration) {
	r.evalDuration.WithLabelValues(calculator).Observe(d.Seconds())
}

// ObserveMode records the duration and outcome of an application mode.
func (r *Recorder) ObserveMode(mode string, err error, d time.Duration) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	r.modeDuration.WithLabelValues(mode, status).Observe(d.Seconds())
}

// WriteTextfile writes the text exposition of every metric to path.
func (r *Recorder) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, r.registry)
}
