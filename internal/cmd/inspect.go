package cmd

import (
	"context"

	"go.followtheprocess.codes/cli"
	"go.followtheprocess.codes/cli/flag"
	"go.followtheprocess.codes/fruition/internal/fruition"
)

const inspectLong = `
The path argument may be a directory or a file.

If it is the name of a template document, then this document alone is
inspected.

If it is a directory, this directory is scanned recursively for all
files with a known template extension ('.html', '.htm', '.svelte' or
'.component') and every one of them is inspected.

For each document, inspect shows the tags and binding tree of the template,
the symbols each script region declares and the code that would be generated
for it.
`

// inspect returns the inspect subcommand.
func inspect() (*cli.Command, error) {
	var options fruition.InspectOptions

	return cli.New(
		"inspect",
		cli.Short("Show what fruition works out about template documents"),
		cli.Long(inspectLong),
		cli.Arg(&options.Path, "path", "Path to inspect, may be directory or file", cli.ArgDefault(".")),
		cli.Flag(&options.Dialect, "dialect", flag.NoShortHand, dialectUsage),
		cli.Flag(&options.Debug, "debug", 'd', "Enable debug logging"),
		cli.Run(func(ctx context.Context, cmd *cli.Command) error {
			app := fruition.New(options.Debug, cmd.Stdout(), cmd.Stderr())
			return app.Inspect(ctx, options)
		}),
	)
}
