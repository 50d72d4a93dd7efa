package fruition

import (
	"context"
	"fmt"
	"io/fs"
	"iter"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.followtheprocess.codes/fruition/internal/processor"
	"go.followtheprocess.codes/fruition/internal/template"
	"go.followtheprocess.codes/hue"
	"go.followtheprocess.codes/msg"
	"golang.org/x/sync/errgroup"
)

// InspectOptions are the options passed to the inspect subcommand.
type InspectOptions struct {
	// Path is the path (file or directory) to inspect.
	Path string

	// Dialect overrides the dialect picked from each file's extension.
	Dialect string

	// Debug enables debug logging.
	Debug bool
}

// Validate reports whether the InspectOptions is valid, returning a non-nil
// error if it's not.
func (i InspectOptions) Validate() error {
	return validateDialect(i.Dialect)
}

// Inspect implements the inspect subcommand.
//
// It shows what the processor works out about each document: the tags and binding
// tree of the template, the symbols each script region declares and the code that
// would be generated for it.
func (f Fruition) Inspect(ctx context.Context, options InspectOptions) error {
	if err := options.Validate(); err != nil {
		return err
	}

	if options.Path == "" {
		options.Path = "."
	}

	logger := f.logger.Prefixed("inspect").With(slog.String("path", options.Path))
	logger.Debug("Inspecting path")

	info, err := os.Stat(options.Path)
	if err != nil {
		return fmt.Errorf("could not get path info: %w", err)
	}

	var paths []string

	if info.IsDir() {
		logger.Debug("Path is a directory")

		for path, err := range documents(options.Path) {
			if err != nil {
				return fmt.Errorf("could not walk %s: %w", options.Path, err)
			}

			paths = append(paths, path)
		}
	} else {
		logger.Debug("Path is a file")

		paths = []string{options.Path}
	}

	logger.Debug("Inspecting documents given by path", slog.Int("number", len(paths)))

	reports := make([]string, len(paths))

	group, ctx := errgroup.WithContext(ctx)

	for i, path := range paths {
		group.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			report, err := f.inspectFile(path, options.Dialect)
			if err != nil {
				return err
			}

			reports[i] = report

			return nil
		})
	}

	if err := group.Wait(); err != nil {
		return err
	}

	for _, report := range reports {
		fmt.Fprintln(f.stdout, report)
	}

	for _, path := range paths {
		msg.Fsuccess(f.stdout, "%s inspected", path)
	}

	return nil
}

// documents returns an iterator over all the template documents under root,
// recursively. A document is any regular file with an extension that maps to
// a dialect.
//
// A walk error is yielded once with an empty path and stops the iteration.
func documents(root string) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		err := filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
			if walkErr != nil {
				return walkErr
			}

			if !d.Type().IsRegular() {
				return nil
			}

			if _, ok := processor.DialectFor(path); ok && !yield(path, nil) {
				return fs.SkipAll
			}

			return nil
		})
		if err != nil {
			yield("", err)
		}
	}
}

// inspectFile analyses a single document and renders the report.
func (f Fruition) inspectFile(path, name string) (string, error) {
	start := time.Now()

	d, err := dialect(path, name)
	if err != nil {
		return "", err
	}

	text, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("could not read %s: %w", path, err)
	}

	analysis := processor.New(d).Analyze(string(text))

	f.logger.Prefixed("inspect").Debug(
		"Analysed document",
		slog.String("file", path),
		slog.String("dialect", d.Name()),
		slog.Int("bindings", len(analysis.Result.Bindings)),
		slog.Duration("took", time.Since(start)),
	)

	report := &strings.Builder{}

	fmt.Fprintf(report, "%s %s\n", hue.Bold.Text(path), dimmed.Text("("+d.Name()+")"))

	if len(analysis.Regions) == 0 {
		fmt.Fprintln(report, dimmed.Text("no script regions, nothing to generate"))
		return report.String(), nil
	}

	fmt.Fprintf(report, "tags: %s\n", strings.Join(analysis.Result.Tags, ", "))

	fmt.Fprintln(report, "bindings:")
	writeBindings(report, analysis.Result.Bindings, nil, 1)

	fmt.Fprintln(report, "regions:")

	for i, region := range analysis.Regions {
		scope := "instance"
		if region.Module {
			scope = "module"
		}

		fmt.Fprintf(report, "  [%d] %s %s\n", i, scope, analysis.Symbols.Regions[i])

		if line := analysis.Syntheses[i].Line(); line != "" {
			fmt.Fprintf(report, "      %s %s\n", dimmed.Text("generated:"), line)
		}
	}

	if len(analysis.Trailing) != 0 {
		fmt.Fprintf(report, "trailing: %s\n", strings.Join(analysis.Trailing, ", "))
	}

	return report.String(), nil
}

// writeBindings writes the bindings whose parent is parent, each followed by its
// own children indented one level further.
func writeBindings(report *strings.Builder, bindings []*template.Binding, parent *template.Binding, depth int) {
	for _, binding := range bindings {
		if binding.Parent != parent {
			continue
		}

		key := binding.Key
		if binding.Unless {
			key = "^" + key
		}

		fmt.Fprintf(report, "%s%s\n", strings.Repeat("  ", depth), keyStyle.Text(key))

		writeBindings(report, bindings, binding, depth+1)
	}
}
