package metrics

import (
	"sync"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
)

const namespace = "earshooks"

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	once         sync.Once
	reg          *prom.Registry
	hookDuration *prom.HistogramVec
	hookResults  *prom.CounterVec
	patchFixes   *prom.CounterVec
	lintFindings *prom.CounterVec
	buildCounter prom.Gauge
	lastRun      prom.Gauge
}

// NewPrometheusRecorder constructs and registers Prometheus metrics (idempotent).
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{reg: reg}
	pr.once.Do(func() {
		pr.hookDuration = prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "hook_duration_seconds",
			Help:      "Duration of individual pre-build hooks",
			Buckets:   prom.DefBuckets,
		}, []string{"hook"})
		pr.hookResults = prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "hook_results_total",
			Help:      "Hook result counts by outcome",
		}, []string{"hook", "result"})
		pr.patchFixes = prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "patch_fixes_total",
			Help:      "Call sites rewritten by the compatibility patcher, per rule",
		}, []string{"rule"})
		pr.lintFindings = prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "doxygen_findings_total",
			Help:      "Documentation annotation findings by severity",
		}, []string{"severity"})
		pr.buildCounter = prom.NewGauge(prom.GaugeOpts{
			Namespace: namespace,
			Name:      "build_counter",
			Help:      "Value of EARS_APP_VERSION_PATCH after the last bump",
		})
		pr.lastRun = prom.NewGauge(prom.GaugeOpts{
			Namespace: namespace,
			Name:      "last_run_timestamp_seconds",
			Help:      "Unix time of the last hook run",
		})
		reg.MustRegister(pr.hookDuration, pr.hookResults, pr.patchFixes, pr.lintFindings, pr.buildCounter, pr.lastRun)
	})
	return pr
}

// Registry returns the registry the recorder writes to.
func (p *PrometheusRecorder) Registry() *prom.Registry {
	if p == nil {
		return nil
	}
	return p.reg
}

func (p *PrometheusRecorder) ObserveHookDuration(hook string, d time.Duration) {
	if p == nil || p.hookDuration == nil {
		return
	}
	p.hookDuration.WithLabelValues(hook).Observe(d.Seconds())
	p.lastRun.SetToCurrentTime()
}

func (p *PrometheusRecorder) IncHookResult(hook string, result ResultLabel) {
	if p == nil || p.hookResults == nil {
		return
	}
	p.hookResults.WithLabelValues(hook, string(result)).Inc()
}

func (p *PrometheusRecorder) AddPatchFixes(rule string, n int) {
	if p == nil || p.patchFixes == nil || n <= 0 {
		return
	}
	p.patchFixes.WithLabelValues(rule).Add(float64(n))
}

func (p *PrometheusRecorder) AddLintFindings(severity string, n int) {
	if p == nil || p.lintFindings == nil || n <= 0 {
		return
	}
	p.lintFindings.WithLabelValues(severity).Add(float64(n))
}

func (p *PrometheusRecorder) SetBuildCounter(n int) {
	if p == nil || p.buildCounter == nil {
		return
	}
	p.buildCounter.Set(float64(n))
}

// WriteTextfile writes the registry to path in textfile collector format.
func (p *PrometheusRecorder) WriteTextfile(path string) error {
	return prom.WriteToTextfile(path, p.reg)
}
