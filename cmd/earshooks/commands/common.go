package commands

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/alecthomas/kong"
	"github.com/jonboulle/clockwork"

	"git.home.luguber.info/inful/earshooks/internal/config"
	"git.home.luguber.info/inful/earshooks/internal/metrics"
)

// Global carries process-level dependencies shared by subcommands.
type Global struct {
	Logger *slog.Logger
	Clock  clockwork.Clock
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// NewGlobal returns a Global wired to the real process.
func NewGlobal() *Global {
	return &Global{
		Logger: slog.Default(),
		Clock:  clockwork.NewRealClock(),
		Stdin:  os.Stdin,
		Stdout: os.Stdout,
		Stderr: os.Stderr,
	}
}

// CLI definition & global flags.
type CLI struct {
	Config    string            `short:"c" help:"Configuration file path" default:"earshooks.yaml"`
	Verbose   bool              `short:"v" help:"Enable verbose logging"`
	LogFormat string            `name:"log-format" help:"Log format (text or json); overrides logging.format"`
	Vars      map[string]string `name:"var" short:"D" help:"Build variable override (KEY=VALUE), e.g. -D PIOENV=esp32s3"`
	Version   kong.VersionFlag  `name:"version" help:"Show version and exit"`

	Run         RunCmd         `cmd:"" help:"Run the pre-build hooks for a target (all targets when omitted)"`
	Patch       PatchCmd       `cmd:"" help:"Patch LVGL call sites in the generated UI source"`
	Versions    VersionsCmd    `cmd:"" help:"Write the toolchain version header"`
	Bump        BumpCmd        `cmd:"" help:"Increment the build counter and refresh the build timestamp"`
	Filter      FilterCmd      `cmd:"" help:"Filter candidate library sources for the Xtensa build"`
	Validate    ValidateCmd    `cmd:"" help:"Validate Doxygen commands in project sources"`
	Hooks       HooksCmd       `cmd:"" help:"List registered hook targets"`
	Init        InitCmd        `cmd:"" help:"Initialize a new configuration file"`
	InstallHook InstallHookCmd `cmd:"" name:"install-hook" help:"Install a git pre-commit hook running validate"`

	cfg *config.Config `kong:"-"`
}

// AfterApply runs after flag parsing; setup logging once.
// nolint:unparam // AfterApply currently never returns an error.
func (c *CLI) AfterApply(g *Global) error {
	format := config.NormalizeLogFormat(c.LogFormat)
	setupLogging(g, c.Verbose, config.LogLevelInfo, format)
	return nil
}

// setupLogging installs the slog default handler on stderr.
func setupLogging(g *Global, verbose bool, level config.LogLevel, format config.LogFormat) {
	lvl := level.SlogLevel()
	if verbose {
		lvl = slog.LevelDebug
	}
	opts := &slog.HandlerOptions{Level: lvl}
	var handler slog.Handler
	if format == config.LogFormatJSON {
		handler = slog.NewJSONHandler(g.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(g.Stderr, opts)
	}
	g.Logger = slog.New(handler)
	slog.SetDefault(g.Logger)
}

// LoadConfig loads the configuration once and re-applies the configured logging.
func (c *CLI) LoadConfig(g *Global) (*config.Config, error) {
	if c.cfg != nil {
		return c.cfg, nil
	}
	cfg, err := config.LoadOrDefault(c.Config)
	if err != nil {
		return nil, err
	}
	format := cfg.Logging.Format
	if c.LogFormat != "" {
		format = config.NormalizeLogFormat(c.LogFormat)
	}
	setupLogging(g, c.Verbose, cfg.Logging.Level, format)
	c.cfg = cfg
	return cfg, nil
}

// recorderFor returns the metrics recorder and a flush function writing the
// textfile when metrics.textfile is configured.
func recorderFor(cfg *config.Config) (metrics.Recorder, func() error) {
	if cfg.Metrics.Textfile == "" {
		return metrics.NoopRecorder{}, func() error { return nil }
	}
	rec := metrics.NewPrometheusRecorder(nil)
	return rec, func() error {
		if err := rec.WriteTextfile(cfg.Metrics.Textfile); err != nil {
			return fmt.Errorf("write metrics textfile: %w", err)
		}
		return nil
	}
}

// flushMetrics writes metrics, logging instead of failing the command.
func flushMetrics(flush func() error) {
	if err := flush(); err != nil {
		slog.Warn("Failed to export metrics", slog.String("error", err.Error()))
	}
}

// ExitCodeError ends the process with Code without further error output.
type ExitCodeError struct {
	Code int
}

func (e *ExitCodeError) Error() string { return fmt.Sprintf("exit status %d", e.Code) }
