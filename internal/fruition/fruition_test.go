package fruition_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.followtheprocess.codes/fruition/internal/config"
	"go.followtheprocess.codes/fruition/internal/fruition"
	"go.followtheprocess.codes/fruition/internal/processor"
	"go.followtheprocess.codes/test"
	"go.uber.org/goleak"
)

const component = `<script>
	import Widget from './Widget.svelte';
	export let name;
</script>

<Widget />
<p>{name} {greeting}</p>
{{#items}}{{label}}{{/items}}
`

// write writes a file called name with contents into dir, returning its path.
func write(t *testing.T, dir, name, contents string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	test.Ok(t, os.WriteFile(path, []byte(contents), 0o644))

	return path
}

func TestPreprocessJSON(t *testing.T) {
	defer goleak.VerifyNone(t)

	path := write(t, t.TempDir(), "App.svelte", component)

	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}

	app := fruition.New(false, stdout, stderr)

	err := app.Preprocess(t.Context(), fruition.PreprocessOptions{File: path, Format: "json"})
	test.Ok(t, err)

	var got fruition.Preprocessed
	test.Ok(t, json.Unmarshal(stdout.Bytes(), &got))

	test.Equal(t, got.File, path)
	test.Equal(t, got.Dialect, "component")
	test.Equal(t, len(got.Files), 1)

	want := strings.Replace(component, "<script>", "<script>/* eslint-disable */let items, greeting;Widget;/* eslint-enable */", 1)
	test.Diff(t, got.Files[0], want)
	test.Diff(t, stderr.String(), "")
}

func TestPreprocessText(t *testing.T) {
	path := write(t, t.TempDir(), "page.tmpl", "<p>{{ user }}</p><script></script>")

	stdout := &bytes.Buffer{}
	app := fruition.New(false, stdout, &bytes.Buffer{})

	err := app.Preprocess(t.Context(), fruition.PreprocessOptions{File: path, Dialect: "html", Format: "text"})
	test.Ok(t, err)

	got := stdout.String()
	test.True(t, strings.Contains(got, path+"[0]"), test.Context("missing header in %q", got))
	test.True(t, strings.Contains(got, "<script>/* eslint-disable */let user;/* eslint-enable */</script>"))
}

func TestPreprocessUnknownDialect(t *testing.T) {
	path := write(t, t.TempDir(), "notes.txt", "{{ nope }}")

	app := fruition.New(false, &bytes.Buffer{}, &bytes.Buffer{})

	err := app.Preprocess(t.Context(), fruition.PreprocessOptions{File: path, Format: "text"})
	test.Err(t, err)
	test.True(t, errors.Is(err, fruition.ErrUnknownDialect), test.Context("got %v", err))
}

func TestPostprocess(t *testing.T) {
	defer goleak.VerifyNone(t)

	dir := t.TempDir()
	path := write(t, dir, "App.svelte", component)
	messages := write(t, dir, "messages.json", `[[
		{"ruleId": "no-undef", "message": "'greeting' is not defined.", "severity": 2, "line": 1, "column": 30, "endLine": 1, "endColumn": 38},
		{"ruleId": "semi", "message": "Missing semicolon.", "severity": 1, "line": 3, "column": 17, "source": "$: x = /**/ y"}
	]]`)

	stdout := &bytes.Buffer{}
	app := fruition.New(false, stdout, &bytes.Buffer{})

	err := app.Postprocess(t.Context(), fruition.PostprocessOptions{File: path, Messages: messages, Format: "json"})
	test.Ok(t, err)

	var got fruition.Postprocessed
	test.Ok(t, json.Unmarshal(stdout.Bytes(), &got))

	test.Equal(t, len(got.Messages), 2)

	// {greeting} on line 7
	test.Equal(t, got.Messages[0].Line, 7)
	test.Equal(t, got.Messages[0].Column, 12)
	test.Equal(t, got.Messages[0].EndColumn, 20)

	test.Equal(t, got.Messages[1].Line, 3)
	test.Equal(t, got.Messages[1].Source, "$: x = await y")
}

func TestPostprocessText(t *testing.T) {
	dir := t.TempDir()
	path := write(t, dir, "App.svelte", component)
	messages := write(t, dir, "messages.yaml", `- - ruleId: no-undef
    message: "'undeclared' is not defined."
    severity: 2
    line: 4
    column: 14
`)

	stdout := &bytes.Buffer{}
	app := fruition.New(false, stdout, &bytes.Buffer{})

	err := app.Postprocess(t.Context(), fruition.PostprocessOptions{File: path, Messages: messages, Format: "text"})
	test.Ok(t, err)

	got := stdout.String()
	test.True(t, strings.Contains(got, path+":4:14"), test.Context("got %q", got))
	test.True(t, strings.Contains(got, "'undeclared' is not defined."), test.Context("got %q", got))
}

func TestPostprocessMissingDocument(t *testing.T) {
	dir := t.TempDir()
	messages := write(t, dir, "messages.json", `[[{"ruleId": "no-undef", "message": "'x' is not defined.", "severity": 2, "line": 1, "column": 1}]]`)

	app := fruition.New(false, &bytes.Buffer{}, &bytes.Buffer{})

	err := app.Postprocess(t.Context(), fruition.PostprocessOptions{
		File:     filepath.Join(dir, "Missing.svelte"),
		Messages: messages,
		Format:   "text",
	})
	test.Err(t, err)
	test.True(t, errors.Is(err, os.ErrNotExist), test.Context("got %v", err))
}

func TestConfig(t *testing.T) {
	stdout := &bytes.Buffer{}
	app := fruition.New(false, stdout, &bytes.Buffer{})

	test.Ok(t, app.Config(fruition.ConfigOptions{Format: "json"}))

	var got config.Config
	test.Ok(t, json.Unmarshal(stdout.Bytes(), &got))

	test.Equal(t, got.ParserOptions.ECMAVersion, 2019)
	test.Equal(t, got.ParserOptions.SourceType, "module")
	test.True(t, got.Waived("no-console"))
	test.True(t, !got.Waived("arrow-parens"))

	stdout.Reset()
	test.Ok(t, app.Config(fruition.ConfigOptions{Format: "yaml"}))
	test.True(t, strings.Contains(stdout.String(), "ecmaVersion: 2019"), test.Context("got %q", stdout.String()))
}

func TestInspect(t *testing.T) {
	defer goleak.VerifyNone(t)

	dir := t.TempDir()
	first := write(t, dir, "App.svelte", component)
	second := write(t, dir, "index.html", "<p>{{ user.name }}</p>")
	write(t, dir, "README.md", "{{ ignored }}")

	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}

	app := fruition.New(false, stdout, stderr)

	err := app.Inspect(t.Context(), fruition.InspectOptions{Path: dir})
	test.Ok(t, err)

	got := stdout.String()

	for _, want := range []string{
		"bindings:",
		"items",
		"label",
		"Widget: import",
		"no script regions",
		fmt.Sprintf("Success: %s inspected\n", first),
		fmt.Sprintf("Success: %s inspected\n", second),
	} {
		test.True(t, strings.Contains(got, want), test.Context("%q missing from output:\n%s", want, got))
	}

	test.True(t, !strings.Contains(got, "README.md"))
	test.Diff(t, stderr.String(), "")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		options interface{ Validate() error } // Options under test
		name    string                        // Name of the test case
		wantErr bool                          // Whether Validate should fail
	}{
		{
			name:    "preprocess ok",
			options: fruition.PreprocessOptions{File: "a.html", Format: "text"},
		},
		{
			name:    "preprocess no file",
			options: fruition.PreprocessOptions{Format: "text"},
			wantErr: true,
		},
		{
			name:    "preprocess bad format",
			options: fruition.PreprocessOptions{File: "a.html", Format: "xml"},
			wantErr: true,
		},
		{
			name:    "preprocess bad dialect",
			options: fruition.PreprocessOptions{File: "a.html", Format: "json", Dialect: "jinja"},
			wantErr: true,
		},
		{
			name:    "postprocess ok",
			options: fruition.PostprocessOptions{File: "a.svelte", Messages: "m.json", Format: "toml"},
		},
		{
			name:    "postprocess no messages",
			options: fruition.PostprocessOptions{File: "a.svelte", Format: "text"},
			wantErr: true,
		},
		{
			name:    "inspect ok",
			options: fruition.InspectOptions{Dialect: processor.NameComponent},
		},
		{
			name:    "inspect bad dialect",
			options: fruition.InspectOptions{Dialect: "erb"},
			wantErr: true,
		},
		{
			name:    "config text not allowed",
			options: fruition.ConfigOptions{Format: "text"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.options.Validate()
			if tt.wantErr {
				test.Err(t, err)
			} else {
				test.Ok(t, err)
			}
		})
	}
}
