package commands

import (
	"context"
	"fmt"
	"log/slog"
)

// VersionsCmd implements the 'versions' command.
type VersionsCmd struct{}

func (v *VersionsCmd) Run(ctx context.Context, g *Global, root *CLI) error {
	cfg, err := root.LoadConfig(g)
	if err != nil {
		return err
	}
	res := cfg.Extractor().Extract(ctx, root.env(g, cfg))

	for _, rec := range []struct {
		name    string
		version string
		known   bool
	}{
		{res.Compiler.Component, res.Compiler.Version, res.Compiler.Known()},
		{res.Platform.Component, res.Platform.Version, res.Platform.Known()},
	} {
		note := ""
		if !rec.known {
			note = " (fallback)"
		}
		_, _ = fmt.Fprintf(g.Stdout, "%-20s %s%s\n", rec.name, rec.version, note)
	}
	if res.Err != nil {
		// The header is best effort; the build continues without it.
		slog.Warn("Version header not written", slog.String("error", res.Err.Error()))
		return nil
	}
	_, _ = fmt.Fprintf(g.Stdout, "wrote %s\n", res.Header)
	return nil
}

// BumpCmd implements the 'bump' command.
type BumpCmd struct{}

func (b *BumpCmd) Run(ctx context.Context, g *Global, root *CLI) error {
	cfg, err := root.LoadConfig(g)
	if err != nil {
		return err
	}
	recorder, flush := recorderFor(cfg)
	defer flushMetrics(flush)

	res, err := cfg.Updater(g.Clock, recorder).Run(ctx, root.env(g, cfg))
	if err != nil {
		return err
	}
	st := res.State
	_, _ = fmt.Fprintf(g.Stdout, "%s: build %d -> %d at %s\n", res.Path, st.Previous, st.Counter, st.Timestamp)
	if st.BuildNumber != nil {
		_, _ = fmt.Fprintf(g.Stdout, "build number %d\n", *st.BuildNumber)
	}
	return nil
}
