package metrics

import "time"

// ResultLabel enumerates hook result categories for counters.
type ResultLabel string

const (
	ResultSuccess  ResultLabel = "success"
	ResultWarning  ResultLabel = "warning"
	ResultFatal    ResultLabel = "fatal"
	ResultCanceled ResultLabel = "canceled"
)

// Recorder defines observability hooks for pre-build hook metrics.
type Recorder interface {
	ObserveHookDuration(hook string, d time.Duration)
	IncHookResult(hook string, result ResultLabel)
	AddPatchFixes(rule string, n int)
	AddLintFindings(severity string, n int)
	SetBuildCounter(n int)
}

// NoopRecorder is a Recorder that does nothing (default when metrics not configured).
type NoopRecorder struct{}

func (NoopRecorder) ObserveHookDuration(string, time.Duration) {}
func (NoopRecorder) IncHookResult(string, ResultLabel)         {}
func (NoopRecorder) AddPatchFixes(string, int)                 {}
func (NoopRecorder) AddLintFindings(string, int)               {}
func (NoopRecorder) SetBuildCounter(int)                       {}
