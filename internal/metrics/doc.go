// Package metrics records hook statistics.
//
// Components receive a Recorder through dependency injection and default to
// NoopRecorder, so code paths never need nil checks:
//
//	type Patcher struct {
//	    recorder metrics.Recorder
//	}
//
//	p := patch.NewPatcher(rules, patch.WithRecorder(metrics.NoopRecorder{}))
//
// PrometheusRecorder forwards to a prometheus registry. The CLI enables it when
// metrics.textfile is configured and writes the registry in node-exporter textfile
// collector format after each run, since hooks are short-lived processes with nothing
// to scrape.
package metrics
