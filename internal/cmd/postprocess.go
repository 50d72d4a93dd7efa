package cmd

import (
	"context"

	"go.followtheprocess.codes/cli"
	"go.followtheprocess.codes/cli/flag"
	"go.followtheprocess.codes/fruition/internal/fruition"
)

const postprocessLong = `
Postprocess takes the messages a linter reported against the virtual files
of a document and turns them into messages about the original.

The messages file holds one list of messages per virtual file, in the same
order preprocess printed them. It is read as JSON, YAML or TOML depending on
its extension.

Undefined identifier messages about a name the template binds are moved to the
first place the template binds it. Nothing is ever dropped.
`

// postprocess returns the postprocess subcommand.
func postprocess() (*cli.Command, error) {
	var options fruition.PostprocessOptions

	return cli.New(
		"postprocess",
		cli.Short("Map linter messages back onto the original document"),
		cli.Long(postprocessLong),
		cli.Arg(&options.File, "file", "Path to the original template document"),
		cli.Flag(&options.Messages, "messages", 'm', "Path to the linter messages for each virtual file"),
		cli.Flag(&options.Dialect, "dialect", flag.NoShortHand, dialectUsage),
		cli.Flag(&options.Format, "format", 'f', formatUsage, cli.FlagDefault(fruition.FormatText)),
		cli.Flag(&options.Debug, "debug", 'd', "Enable debug logging"),
		cli.Run(func(ctx context.Context, cmd *cli.Command) error {
			app := fruition.New(options.Debug, cmd.Stdout(), cmd.Stderr())
			return app.Postprocess(ctx, options)
		}),
	)
}
