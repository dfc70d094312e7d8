package hooks

import (
	"context"
	"fmt"

	"git.home.luguber.info/inful/earshooks/internal/buildenv"
	"git.home.luguber.info/inful/earshooks/internal/buildstate"
	"git.home.luguber.info/inful/earshooks/internal/patch"
	"git.home.luguber.info/inful/earshooks/internal/srcfilter"
	"git.home.luguber.info/inful/earshooks/internal/toolversion"
)

// Hook names.
const (
	HookVersions = "versions"
	HookBump     = "bump"
	HookPatch    = "patch"
)

// PatchHook adapts the compatibility patcher.
func PatchHook(p *patch.Patcher) Hook {
	return Hook{Name: HookPatch, Run: func(ctx context.Context, env buildenv.Env) Result {
		res, err := p.Run(ctx, env)
		if err != nil {
			return FromError("patch failed", err)
		}
		switch {
		case res.Skipped:
			return Warning("target not found: "+res.Path, nil)
		case res.Total == 0:
			return Success("already compatible")
		case res.DryRun:
			return Success(fmt.Sprintf("%d call site(s) would change", res.Total))
		default:
			return Success(fmt.Sprintf("%d call site(s) fixed", res.Total))
		}
	}}
}

// VersionsHook adapts the version metadata extractor. It never fails.
func VersionsHook(e *toolversion.Extractor) Hook {
	return Hook{Name: HookVersions, Run: func(ctx context.Context, env buildenv.Env) Result {
		res := e.Extract(ctx, env)
		summary := fmt.Sprintf("compiler %s, platform %s", res.Compiler.Version, res.Platform.Version)
		if res.Degraded() {
			return Warning(summary, res.Err)
		}
		return Success(summary)
	}}
}

// BumpHook adapts the build counter updater.
func BumpHook(u *buildstate.Updater) Hook {
	return Hook{Name: HookBump, Run: func(ctx context.Context, env buildenv.Env) Result {
		res, err := u.Run(ctx, env)
		if err != nil {
			return FromError("bump failed", err)
		}
		st := res.State
		summary := fmt.Sprintf("build %d at %s", st.Counter, st.Timestamp)
		if st.Inserted || st.Migrated || st.TimestampMissing {
			return Warning(summary, nil)
		}
		return Success(summary)
	}}
}

// Defaults are the hooks registered by RegisterDefaults.
type Defaults struct {
	Extractor *toolversion.Extractor
	Updater   *buildstate.Updater
	Patcher   *patch.Patcher
	Filter    *srcfilter.Filter
}

// RegisterDefaults wires the firmware pre-actions: version extraction before
// compilation, then the counter bump and UI source patch before linking. Nil members
// are skipped.
func RegisterDefaults(c *Chain, d Defaults) {
	if d.Extractor != nil {
		c.AddPreAction(TargetBuildProg, VersionsHook(d.Extractor))
	}
	if d.Updater != nil {
		c.AddPreAction(TargetProgram, BumpHook(d.Updater))
	}
	if d.Patcher != nil {
		c.AddPreAction(TargetProgram, PatchHook(d.Patcher))
	}
	if d.Filter != nil {
		c.AddBuildMiddleware(d.Filter.Keep)
	}
}
