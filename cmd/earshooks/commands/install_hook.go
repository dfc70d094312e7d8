package commands

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	foundationerrors "git.home.luguber.info/inful/earshooks/internal/foundation/errors"
	"git.home.luguber.info/inful/earshooks/internal/git"
)

// InstallHookCmd implements the 'install-hook' command.
type InstallHookCmd struct {
	Force bool `help:"Overwrite existing hook without backup"`
}

const preCommitHook = `#!/usr/bin/env bash
# earshooks pre-commit hook - validate Doxygen commands in staged sources
set -e

if ! command -v earshooks &> /dev/null; then
    echo "earshooks not found in PATH, skipping documentation validation"
    echo "   Install: go install git.home.luguber.info/inful/earshooks/cmd/earshooks@latest"
    exit 0
fi

STAGED=$(git diff --cached --name-only --diff-filter=ACM | grep -E '\.(cpp|h)$' || true)
if [ -z "$STAGED" ]; then
    exit 0
fi

echo "Validating Doxygen commands..."
if earshooks validate --changed --quiet; then
    exit 0
else
    EXIT_CODE=$?
    echo ""
    echo "Documentation validation failed"
    echo ""
    echo "To bypass this check (not recommended):"
    echo "  git commit --no-verify"
    exit $EXIT_CODE
fi
`

// Run executes the install-hook command.
func (cmd *InstallHookCmd) Run(g *Global, _ *CLI) error {
	repo, err := git.Open(".")
	if err != nil {
		if errors.Is(err, git.ErrNotRepository) {
			return foundationerrors.NotFoundError("not in a Git repository").Build()
		}
		return err
	}

	hooksDir := repo.HooksDir()
	hookPath := filepath.Join(hooksDir, "pre-commit")

	// #nosec G301 -- hooks directory must be traversable by git
	if err := os.MkdirAll(hooksDir, 0o755); err != nil {
		return foundationerrors.WrapError(err, foundationerrors.CategoryFileSystem, "failed to create hooks directory").Build()
	}

	// Backup existing hook unless --force
	if _, err := os.Stat(hookPath); err == nil && !cmd.Force {
		backupPath := fmt.Sprintf("%s.backup-%s", hookPath, g.Clock.Now().Format("20060102-150405"))
		_, _ = fmt.Fprintf(g.Stdout, "Backing up existing hook to: %s\n", backupPath)

		// #nosec G304 -- path derived from the repository layout
		content, err := os.ReadFile(hookPath)
		if err != nil {
			return fmt.Errorf("failed to read existing hook: %w", err)
		}
		// #nosec G306 -- hook scripts must be executable
		if err := os.WriteFile(backupPath, content, 0o755); err != nil {
			return fmt.Errorf("failed to create backup: %w", err)
		}
	}

	// #nosec G306 -- hook scripts must be executable
	if err := os.WriteFile(hookPath, []byte(preCommitHook), 0o755); err != nil {
		return foundationerrors.WrapError(err, foundationerrors.CategoryFileSystem, "failed to write hook file").Build()
	}

	_, _ = fmt.Fprintln(g.Stdout, "Pre-commit hook installed successfully")
	_, _ = fmt.Fprintf(g.Stdout, "To uninstall:\n  rm %s\n", hookPath)
	return nil
}
