package cmd

import (
	"context"

	"go.followtheprocess.codes/cli"
	"go.followtheprocess.codes/fruition/internal/format"
	"go.followtheprocess.codes/fruition/internal/fruition"
)

// configuration returns the config subcommand.
func configuration() (*cli.Command, error) {
	var options fruition.ConfigOptions

	return cli.New(
		"config",
		cli.Short("Print the linter configuration processed documents need"),
		cli.Flag(
			&options.Format,
			"format",
			'f',
			"Output format, one of "+choices(format.Formats()),
			cli.FlagDefault(format.JSON),
		),
		cli.Flag(&options.Debug, "debug", 'd', "Enable debug logging"),
		cli.Run(func(ctx context.Context, cmd *cli.Command) error {
			app := fruition.New(options.Debug, cmd.Stdout(), cmd.Stderr())
			return app.Config(options)
		}),
	)
}
