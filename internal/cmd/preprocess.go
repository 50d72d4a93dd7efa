package cmd

import (
	"context"

	"go.followtheprocess.codes/cli"
	"go.followtheprocess.codes/cli/flag"
	"go.followtheprocess.codes/fruition/internal/fruition"
)

const preprocessLong = `
Preprocess rewrites a template document the way it is handed to the linter.

Every name the template refers to that no script declares gets a declaration
inserted straight after the opening script tag, so no line of script moves.
Names only a module context script can't satisfy are declared in an extra
virtual file.

The virtual files are printed in order, the rewritten document always first.
`

// preprocess returns the preprocess subcommand.
func preprocess() (*cli.Command, error) {
	var options fruition.PreprocessOptions

	return cli.New(
		"preprocess",
		cli.Short("Show the virtual files the linter sees for a document"),
		cli.Long(preprocessLong),
		cli.Arg(&options.File, "file", "Path to the template document"),
		cli.Flag(&options.Dialect, "dialect", flag.NoShortHand, dialectUsage),
		cli.Flag(&options.Format, "format", 'f', formatUsage, cli.FlagDefault(fruition.FormatText)),
		cli.Flag(&options.Debug, "debug", 'd', "Enable debug logging"),
		cli.Run(func(ctx context.Context, cmd *cli.Command) error {
			app := fruition.New(options.Debug, cmd.Stdout(), cmd.Stderr())
			return app.Preprocess(ctx, options)
		}),
	)
}
