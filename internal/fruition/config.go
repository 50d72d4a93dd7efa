package fruition

import (
	"log/slog"

	"go.followtheprocess.codes/fruition/internal/config"
	"go.followtheprocess.codes/fruition/internal/format"
)

// ConfigOptions are the options passed to the config subcommand.
type ConfigOptions struct {
	// Format is the format to print the configuration in.
	Format string

	// Debug enables debug logging.
	Debug bool
}

// Validate reports whether the ConfigOptions is valid, returning a non-nil
// error if it's not.
func (c ConfigOptions) Validate() error {
	return validateFormat(c.Format, format.Formats())
}

// Config implements the config subcommand, printing the linter configuration
// processed documents need.
func (f Fruition) Config(options ConfigOptions) error {
	if err := options.Validate(); err != nil {
		return err
	}

	cfg := config.Default()

	f.logger.Prefixed("config").Debug(
		"Exporting configuration",
		slog.String("format", options.Format),
		slog.Int("rules", len(cfg.Rules)),
	)

	return f.export(options.Format, cfg)
}
