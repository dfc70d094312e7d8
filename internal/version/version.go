// Package version exposes the earshooks binary version.
package version

import (
	"fmt"
	"runtime/debug"
)

// Set via ldflags by release builds:
// go build -ldflags "-X git.home.luguber.info/inful/earshooks/internal/version.Version=v1.0.0".
var (
	Version   = "unknown"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

// String renders the version line printed by --version. Binaries built with
// go install fall back to the module version and VCS stamp.
func String() string {
	version, commit, built := Version, GitCommit, BuildTime
	if info, ok := debug.ReadBuildInfo(); ok {
		if version == "unknown" && info.Main.Version != "" && info.Main.Version != "(devel)" {
			version = info.Main.Version
		}
		for _, s := range info.Settings {
			switch {
			case s.Key == "vcs.revision" && commit == "unknown":
				commit = shortRevision(s.Value)
			case s.Key == "vcs.time" && built == "unknown":
				built = s.Value
			}
		}
	}
	return fmt.Sprintf("earshooks %s (commit %s, built %s)", version, commit, built)
}

func shortRevision(rev string) string {
	if len(rev) > 12 {
		return rev[:12]
	}
	return rev
}
