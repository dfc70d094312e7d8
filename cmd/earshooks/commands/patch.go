package commands

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"git.home.luguber.info/inful/earshooks/internal/buildenv"
	"git.home.luguber.info/inful/earshooks/internal/patch"
	"git.home.luguber.info/inful/earshooks/internal/watch"
)

// PatchCmd implements the 'patch' command.
type PatchCmd struct {
	DryRun   bool          `help:"Report substitutions without writing"`
	Watch    bool          `short:"w" help:"Re-apply whenever the UI generator rewrites the file"`
	Debounce time.Duration `help:"Quiet period before re-patching in watch mode" default:"500ms"`
}

func (p *PatchCmd) Run(ctx context.Context, g *Global, root *CLI) error {
	cfg, err := root.LoadConfig(g)
	if err != nil {
		return err
	}
	recorder, flush := recorderFor(cfg)
	defer flushMetrics(flush)

	patcher := cfg.Patcher(p.DryRun, recorder)
	env := root.env(g, cfg)

	if !p.Watch {
		res, err := patcher.Run(ctx, env)
		if err != nil {
			return err
		}
		printPatchResult(g, res)
		return nil
	}
	return p.watch(ctx, g, patcher, env)
}

func (p *PatchCmd) watch(ctx context.Context, g *Global, patcher *patch.Patcher, env buildenv.Env) error {
	action := func(ctx context.Context) error {
		res, err := patcher.Run(ctx, env)
		if err != nil {
			return err
		}
		printPatchResult(g, res)
		return nil
	}

	// Patch once up front; the watcher only reacts to later writes.
	if err := action(ctx); err != nil {
		slog.Error("Initial patch failed", slog.String("error", err.Error()))
	}

	fw, err := watch.NewFileWatcher(patcher.Target(env), action,
		watch.WithDebounce(p.Debounce),
		watch.WithClock(g.Clock),
	)
	if err != nil {
		return err
	}
	return fw.Run(ctx)
}

func printPatchResult(g *Global, res *patch.Result) {
	switch {
	case res.Skipped:
		_, _ = fmt.Fprintf(g.Stdout, "%s: not found, skipped\n", res.Path)
		return
	case !res.Changed():
		_, _ = fmt.Fprintf(g.Stdout, "%s: already compatible\n", res.Path)
		return
	}
	for _, rc := range res.PerRule {
		if rc.Count > 0 {
			_, _ = fmt.Fprintf(g.Stdout, "  %-28s %d\n", rc.Rule, rc.Count)
		}
	}
	verb := "patched"
	if res.DryRun {
		verb = "would patch"
	}
	_, _ = fmt.Fprintf(g.Stdout, "%s: %s %d call sites\n", res.Path, verb, res.Total)
}
