package commands

import (
	"context"
	"fmt"
	"io"
	"time"

	"git.home.luguber.info/inful/earshooks/internal/buildenv"
	"git.home.luguber.info/inful/earshooks/internal/config"
	"git.home.luguber.info/inful/earshooks/internal/hooks"
	"git.home.luguber.info/inful/earshooks/internal/metrics"
)

// RunCmd implements the 'run' command.
type RunCmd struct {
	Target string `arg:"" optional:"" help:"Build target, e.g. buildprog; see 'earshooks hooks' for the list"`
	DryRun bool   `help:"Count patch substitutions without writing the UI source"`
}

func (r *RunCmd) Run(ctx context.Context, g *Global, root *CLI) error {
	cfg, err := root.LoadConfig(g)
	if err != nil {
		return err
	}
	recorder, flush := recorderFor(cfg)
	defer flushMetrics(flush)

	chain := buildChain(cfg, g, recorder, r.DryRun)
	env := root.env(g, cfg)

	report, runErr := chain.Run(ctx, env, r.Target)
	if report != nil {
		writeReport(g.Stdout, report)
	}
	return runErr
}

// buildChain registers the default firmware hooks from cfg.
func buildChain(cfg *config.Config, g *Global, recorder metrics.Recorder, dryRun bool) *hooks.Chain {
	chain := hooks.NewChain(
		hooks.WithStopOnFatal(cfg.Hooks.StopOnFatal),
		hooks.WithRecorder(recorder),
	)
	filter := cfg.SourceFilter()
	hooks.RegisterDefaults(chain, hooks.Defaults{
		Extractor: cfg.Extractor(),
		Updater:   cfg.Updater(g.Clock, recorder),
		Patcher:   cfg.Patcher(dryRun, recorder),
		Filter:    &filter,
	})
	return chain
}

// env builds the build environment with the -D overrides applied.
func (c *CLI) env(g *Global, cfg *config.Config) *buildenv.Static {
	return cfg.Env(g.Clock.Now(), c.Vars)
}

func writeReport(w io.Writer, report *hooks.Report) {
	for _, e := range report.Entries {
		line := fmt.Sprintf("%-8s %-9s %s", e.Outcome, e.Hook, e.Target)
		if e.Summary != "" {
			line += ": " + e.Summary
		}
		if e.Err != nil {
			line += " (" + e.Err.Error() + ")"
		}
		_, _ = fmt.Fprintln(w, line)
	}
	_, _ = fmt.Fprintf(w, "run %s: %d hooks, %d warnings, %d failed in %s\n",
		report.RunID, len(report.Entries), report.Count(hooks.OutcomeWarning),
		report.Count(hooks.OutcomeFatal), report.End.Sub(report.Start).Round(time.Millisecond))
}

// HooksCmd implements the 'hooks' command.
type HooksCmd struct{}

func (h *HooksCmd) Run(g *Global, root *CLI) error {
	cfg, err := root.LoadConfig(g)
	if err != nil {
		return err
	}
	chain := buildChain(cfg, g, metrics.NoopRecorder{}, true)
	env := root.env(g, cfg)
	for _, target := range chain.Targets() {
		_, _ = fmt.Fprintf(g.Stdout, "%s -> %s\n", target, env.Subst(target))
		for _, name := range chain.Hooks(env, target) {
			_, _ = fmt.Fprintf(g.Stdout, "  %s\n", name)
		}
	}
	return nil
}
