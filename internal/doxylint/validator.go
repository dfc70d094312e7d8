package doxylint

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"git.home.luguber.info/inful/earshooks/internal/fsutil"
	"git.home.luguber.info/inful/earshooks/internal/logfields"
	"git.home.luguber.info/inful/earshooks/internal/metrics"
	"git.home.luguber.info/inful/earshooks/internal/observability"
)

// Validator scans a project tree for documentation annotation problems.
type Validator struct {
	cfg        Config
	classifier *Classifier
	recorder   metrics.Recorder
}

// NewValidator creates a validator. Empty lists in cfg fall back to DefaultConfig.
func NewValidator(cfg Config, recorder metrics.Recorder) *Validator {
	def := DefaultConfig()
	if len(cfg.Dirs) == 0 {
		cfg.Dirs = def.Dirs
	}
	if len(cfg.Extensions) == 0 {
		cfg.Extensions = def.Extensions
	}
	if cfg.SkipDirs == nil {
		cfg.SkipDirs = def.SkipDirs
	}
	if len(cfg.Allowed) == 0 {
		cfg.Allowed = def.Allowed
	}
	if cfg.Forbidden == nil {
		cfg.Forbidden = def.Forbidden
	}
	if recorder == nil {
		recorder = metrics.NoopRecorder{}
	}
	return &Validator{
		cfg:        cfg,
		classifier: NewClassifier(cfg.Allowed, cfg.Forbidden),
		recorder:   recorder,
	}
}

// ValidateProject scans every configured directory that exists under root.
func (v *Validator) ValidateProject(ctx context.Context, root string) (*Result, error) {
	result := &Result{Root: root}
	for _, dir := range v.cfg.Dirs {
		path := filepath.Join(root, dir)
		info, err := os.Stat(path)
		if err != nil || !info.IsDir() {
			continue
		}
		observability.DebugContext(ctx, "Scanning directory", logfields.Path(path))
		if err := v.scanDirectory(ctx, path, result); err != nil {
			return result, err
		}
	}
	v.record(result)
	return result, nil
}

func (v *Validator) scanDirectory(ctx context.Context, dirPath string, result *Result) error {
	return filepath.WalkDir(dirPath, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			result.add(readFailure(path, err))
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if d.IsDir() {
			if path != dirPath && v.cfg.skipDir(d.Name()) {
				return fs.SkipDir
			}
			return nil
		}
		if !v.matchesExtension(path) {
			return nil
		}
		result.FilesTotal++
		v.validateFile(path, result)
		return nil
	})
}

// ValidateFiles checks an explicit list of files relative to root, applying the same
// directory, extension and skip rules as a full scan. Missing files are ignored.
func (v *Validator) ValidateFiles(ctx context.Context, root string, files []string) (*Result, error) {
	result := &Result{Root: root}
	for _, rel := range files {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		rel = filepath.ToSlash(rel)
		if !v.inScope(rel) {
			continue
		}
		path := filepath.Join(root, filepath.FromSlash(rel))
		if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
			continue
		}
		result.FilesTotal++
		v.validateFile(path, result)
	}
	v.record(result)
	return result, nil
}

func (v *Validator) inScope(rel string) bool {
	if !v.matchesExtension(rel) {
		return false
	}
	parts := strings.Split(rel, "/")
	if len(parts) < 2 || !slices.Contains(v.cfg.Dirs, parts[0]) {
		return false
	}
	for _, dir := range parts[1 : len(parts)-1] {
		if v.cfg.skipDir(dir) {
			return false
		}
	}
	return true
}

func (v *Validator) matchesExtension(path string) bool {
	for _, ext := range v.cfg.Extensions {
		if strings.HasSuffix(path, ext) {
			return true
		}
	}
	return false
}

func (v *Validator) validateFile(path string, result *Result) {
	text, err := fsutil.ReadText(path)
	if err != nil {
		result.add(readFailure(path, err))
		return
	}
	findings, err := v.classifier.Scan(path, strings.NewReader(text.Body))
	for _, f := range findings {
		if v.cfg.Quiet && f.Severity != SeverityError {
			continue
		}
		result.add(f)
	}
	if err != nil {
		result.add(readFailure(path, err))
	}
}

func readFailure(path string, err error) Finding {
	return Finding{
		FilePath: path,
		Severity: SeverityError,
		Message:  "Error reading " + path + ": " + err.Error(),
	}
}

func (v *Validator) record(result *Result) {
	v.recorder.AddLintFindings(SeverityError.String(), result.ErrorCount())
	v.recorder.AddLintFindings(SeverityWarning.String(), result.WarningCount())
}
