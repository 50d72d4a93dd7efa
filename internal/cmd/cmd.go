// Package cmd implements fruition's CLI.
package cmd

import (
	"strings"

	"go.followtheprocess.codes/cli"
	"go.followtheprocess.codes/fruition/internal/format"
	"go.followtheprocess.codes/fruition/internal/fruition"
	"go.followtheprocess.codes/fruition/internal/processor"
)

var (
	version = "dev"
	commit  = ""
	date    = ""
)

// Build builds and returns the fruition CLI.
func Build() (*cli.Command, error) {
	return cli.New(
		"fruition",
		cli.Short("Lint the scripts of template documents without false undefined errors"),
		cli.Version(version),
		cli.Commit(commit),
		cli.BuildDate(date),
		cli.Example("Show what the linter will see for a component", "fruition preprocess ./App.svelte"),
		cli.Example(
			"Move the linter's findings back onto the original document",
			"fruition postprocess ./App.svelte --messages ./messages.json",
		),
		cli.Example("Inspect every template under a directory (recursively)", "fruition inspect ./src"),
		cli.Example("Print the linter configuration as YAML", "fruition config --format yaml"),
		cli.SubCommands(preprocess, postprocess, inspect, configuration),
	)
}

// dialectUsage is the usage line of the --dialect flag.
var dialectUsage = "Template dialect, one of " + choices(processor.Dialects()) + ", picked from the extension by default"

// formatUsage is the usage line of the --format flag on the document subcommands.
var formatUsage = "Output format, one of " + choices(append([]string{fruition.FormatText}, format.Formats()...))

// choices renders names as '(a|b|c)'.
func choices(names []string) string {
	return "(" + strings.Join(names, "|") + ")"
}
