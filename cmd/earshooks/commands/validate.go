package commands

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"git.home.luguber.info/inful/earshooks/internal/doxylint"
	foundationerrors "git.home.luguber.info/inful/earshooks/internal/foundation/errors"
	"git.home.luguber.info/inful/earshooks/internal/git"
)

// ValidateCmd implements the 'validate' command.
type ValidateCmd struct {
	Root    string `arg:"" optional:"" help:"Project root (defaults to the working directory)"`
	Format  string `short:"f" default:"text" help:"Output format (text or json)" enum:"text,json"`
	Quiet   bool   `short:"q" help:"Quiet mode: only show errors, suppress warnings"`
	Changed bool   `help:"Only validate files modified or untracked in the git worktree"`
}

func (v *ValidateCmd) Run(ctx context.Context, g *Global, root *CLI) error {
	cfg, err := root.LoadConfig(g)
	if err != nil {
		return err
	}
	recorder, flush := recorderFor(cfg)
	defer flushMetrics(flush)

	projectRoot := v.Root
	if projectRoot == "" {
		if projectRoot, err = os.Getwd(); err != nil {
			return err
		}
	}
	if info, err := os.Stat(projectRoot); err != nil || !info.IsDir() {
		return foundationerrors.NotFoundError("project root does not exist").
			WithPath(projectRoot).
			Build()
	}

	validator := doxylint.NewValidator(cfg.LintConfig(v.Quiet), recorder)

	var result *doxylint.Result
	if v.Changed {
		result, err = v.validateChanged(ctx, validator, projectRoot)
	} else {
		result, err = validator.ValidateProject(ctx, projectRoot)
	}
	if err != nil {
		return err
	}

	if err := doxylint.NewFormatter(v.Format).Format(g.Stdout, result); err != nil {
		return fmt.Errorf("formatting output: %w", err)
	}

	if code := result.ExitCode(); code != 0 {
		return &ExitCodeError{Code: code}
	}
	return nil
}

// validateChanged restricts validation to the worktree changes of the repository
// containing root.
func (v *ValidateCmd) validateChanged(ctx context.Context, validator *doxylint.Validator, root string) (*doxylint.Result, error) {
	repo, err := git.Open(root)
	if err != nil {
		if errors.Is(err, git.ErrNotRepository) {
			return nil, foundationerrors.ValidationError("--changed requires a git repository").
				WithPath(root).
				Build()
		}
		return nil, err
	}
	files, err := repo.ChangedFiles()
	if err != nil {
		return nil, err
	}

	// Changed paths are relative to the repository root; rebase them onto root.
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}
	rel := make([]string, 0, len(files))
	for _, f := range files {
		r, err := filepath.Rel(absRoot, filepath.Join(repo.Root(), filepath.FromSlash(f)))
		if err != nil || r == ".." || strings.HasPrefix(r, ".."+string(filepath.Separator)) {
			continue
		}
		rel = append(rel, r)
	}
	return validator.ValidateFiles(ctx, root, rel)
}
