package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/earshooks/cmd/earshooks/commands"
	foundationerrors "git.home.luguber.info/inful/earshooks/internal/foundation/errors"
	"git.home.luguber.info/inful/earshooks/internal/version"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g := commands.NewGlobal()
	cli := &commands.CLI{}
	parser, err := kong.New(cli,
		kong.Name("earshooks"),
		kong.Description("Build-time hooks for the EARS firmware pipeline"),
		kong.UsageOnError(),
		kong.Vars{"version": version.String()},
		kong.Bind(g),
		kong.BindTo(ctx, (*context.Context)(nil)),
	)
	if err != nil {
		panic(err)
	}

	kctx, err := parser.Parse(args)
	parser.FatalIfErrorf(err)

	err = kctx.Run(g, cli)
	if err == nil {
		return 0
	}

	var exitErr *commands.ExitCodeError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	adapter := foundationerrors.NewCLIErrorAdapter(cli.Verbose, g.Logger)
	adapter.PrintError(err)
	return adapter.ExitCodeFor(err)
}
