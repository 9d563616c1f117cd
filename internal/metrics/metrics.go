// Package metrics exposes flatten runs as Prometheus metrics, either as a
// node_exporter textfile written after each run or over HTTP while a watch
// loop is running.
package metrics

import (
	"net/http"
	"time"

	"github.com/hpdcache/flistflat/internal/flist"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "flistflat"

// Recorder holds the metrics of one flistflat process. Each Recorder has its
// own registry, so several may coexist in tests.
type Recorder struct {
	registry    *prometheus.Registry
	runs        *prometheus.CounterVec
	duration    prometheus.Histogram
	commands    prometheus.Gauge
	files       prometheus.Gauge
	skipped     prometheus.Gauge
	lastSuccess prometheus.Gauge
}

// NewRecorder creates a Recorder with all metrics registered.
func NewRecorder() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "runs_total",
			Help:      "Flatten runs by result.",
		}, []string{"result"}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "run_duration_seconds",
			Help:      "Time spent resolving and writing one flatten run.",
			Buckets:   prometheus.ExponentialBuckets(0.0005, 4, 8),
		}),
		commands: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "commands",
			Help:      "Read commands emitted by the last successful run.",
		}),
		files: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "flist_files",
			Help:      "Distinct Flist files opened by the last successful run.",
		}),
		skipped: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "skipped_lines",
			Help:      "Source lines without a frontend in the last successful run.",
		}),
		lastSuccess: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_success_timestamp_seconds",
			Help:      "Unix time of the last successful run.",
		}),
	}

	r.registry.MustRegister(r.runs, r.duration, r.commands, r.files, r.skipped, r.lastSuccess)
	// Pre-create both series so a fresh textfile shows zero failures.
	r.runs.WithLabelValues("success")
	r.runs.WithLabelValues("failure")

	return r
}

// Observe records one run. Gauges keep the values of the last successful
// run when err is non-nil.
func (r *Recorder) Observe(res *flist.Result, err error, duration time.Duration) {
	r.duration.Observe(duration.Seconds())

	if err != nil || res == nil {
		r.runs.WithLabelValues("failure").Inc()
		return
	}

	r.runs.WithLabelValues("success").Inc()
	r.commands.Set(float64(res.Commands))
	r.files.Set(float64(len(res.Paths())))
	r.skipped.Set(float64(len(res.Skipped)))
	r.lastSuccess.SetToCurrentTime()
}

// WriteTextfile writes all metrics to path in the text exposition format.
// The file is replaced atomically.
func (r *Recorder) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, r.registry)
}

// Handler serves the metrics for scraping.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}
