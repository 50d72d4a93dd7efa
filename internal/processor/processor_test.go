package processor_test

import (
	"errors"
	"io/fs"
	"slices"
	"strings"
	"testing"

	"go.followtheprocess.codes/fruition/internal/processor"
	"go.followtheprocess.codes/fruition/internal/processor/processortest"
	"go.followtheprocess.codes/test"
	"go.uber.org/goleak"
)

func TestPreprocess(t *testing.T) {
	tests := []struct {
		dialect processor.Dialect // Dialect under test
		name    string            // Name of the test case
		src     string            // Original document
		want    []string          // Expected virtual files
	}{
		{
			name:    "html no script",
			dialect: processor.HTML{},
			src:     "<p>{{ name }}</p>",
			want:    []string{"<p>{{ name }}</p>"},
		},
		{
			name:    "component no script",
			dialect: processor.Component{},
			src:     "<p>{name}</p>",
			want:    []string{"<p>{name}</p>"},
		},
		{
			name:    "html undeclared binding",
			dialect: processor.HTML{},
			src:     "<p>{{ user.name }}</p>\n<script>\nconsole.log(user)\n</script>",
			want: []string{
				"<p>{{ user.name }}</p>\n<script>/* eslint-disable */let user;/* eslint-enable */\nconsole.log(user)\n</script>",
			},
		},
		{
			name:    "html declared kinds",
			dialect: processor.HTML{},
			src:     "{{ a }}{{ b }}{{ c }}<script>const a = 1; function b() {}</script>",
			want: []string{
				"{{ a }}{{ b }}{{ c }}<script>/* eslint-disable */let c;b;/* eslint-enable */const a = 1; function b() {}</script>",
			},
		},
		{
			name:    "html exports shared between scripts",
			dialect: processor.HTML{},
			src:     "<script>export let shared = 1;</script>\n<script>\nshared += 1\n</script>",
			want: []string{
				"<script>export let shared = 1;</script>\n<script>/* eslint-disable */let shared;/* eslint-enable */\nshared += 1\n</script>",
			},
		},
		{
			name:    "component sections imports and tags",
			dialect: processor.Component{},
			src: `<script>
	import Widget from './Widget.svelte';
	import { x as y } from 'm';
	export let name;
</script>
<Widget/>
<y></y>
<p>{name} {greeting}</p>
{{#items}}{{label}}{{/items}}`,
			want: []string{
				`<script>/* eslint-disable */let items, greeting;Widget;y;/* eslint-enable */
	import Widget from './Widget.svelte';
	import { x as y } from 'm';
	export let name;
</script>
<Widget/>
<y></y>
<p>{name} {greeting}</p>
{{#items}}{{label}}{{/items}}`,
			},
		},
		{
			name:    "component module context",
			dialect: processor.Component{},
			src: `<script context="module">
	export const preload = () => {};
	let cache;
</script>
<script>
	export let title;
</script>
<h1>{title}</h1><p>{cache}{missing}</p>`,
			want: []string{
				`<script context="module">
	export const preload = () => {};
	let cache;
</script>
<script>/* eslint-disable */let missing;/* eslint-enable */
	export let title;
</script>
<h1>{title}</h1><p>{cache}{missing}</p>`,
			},
		},
		{
			name:    "component instance declaration satisfies module context",
			dialect: processor.Component{},
			src:     "<script context=\"module\"></script><script>\nlet name = 1;\n</script><p>{name}</p>",
			want:    []string{"<script context=\"module\"></script><script>\nlet name = 1;\n</script><p>{name}</p>"},
		},
		{
			name:    "component module context only",
			dialect: processor.Component{},
			src:     "<script context=\"module\">\nlet cache;\n</script><p>{cache}{orphan}</p>",
			want: []string{
				"<script context=\"module\">\nlet cache;\n</script><p>{cache}{orphan}</p>",
				"<script>/* eslint-disable */let orphan;/* eslint-enable */</script>",
			},
		},
		{
			name:    "component script keywords never declared",
			dialect: processor.Component{},
			src:     "<p>{new Date()}</p><p>{typeof x}</p><p>{y}</p><script>\nlet z = 1;\n</script>",
			want: []string{
				"<p>{new Date()}</p><p>{typeof x}</p><p>{y}</p><script>/* eslint-disable */let y;/* eslint-enable */\nlet z = 1;\n</script>",
			},
		},
		{
			name:    "component keyword section never declared",
			dialect: processor.Component{},
			src:     "{#if true}<p>ok</p>{/if}<script>\n</script>",
			want:    []string{"{#if true}<p>ok</p>{/if}<script>\n</script>"},
		},
		{
			name:    "html void expression never declared",
			dialect: processor.HTML{},
			src:     "<p>{{ void 0 }}</p><script>\n</script>",
			want:    []string{"<p>{{ void 0 }}</p><script>\n</script>"},
		},
		{
			name:    "component keyword bindings skipped",
			dialect: processor.Component{},
			src:     "{default}{class}<script>\n</script>",
			want:    []string{"{default}{class}<script>\n</script>"},
		},
		{
			name:    "component reactive await",
			dialect: processor.Component{},
			src:     "<script>\n$: { await foo(); }\n</script>",
			want:    []string{"<script>\n$: { /**/ foo(); }\n</script>"},
		},
		{
			name:    "html reactive await keeps columns",
			dialect: processor.HTML{},
			src:     "<script>\n$: data = await load()\n</script>",
			want:    []string{"<script>\n$: data = /* */ load()\n</script>"},
		},
		{
			name:    "commented out declaration does not count",
			dialect: processor.Component{},
			src:     "<script>\n// let hidden;\n</script>{hidden}",
			want:    []string{"<script>/* eslint-disable */let hidden;/* eslint-enable */\n// let hidden;\n</script>{hidden}"},
		},
		{
			name:    "comment mentioning globalThis is not a directive",
			dialect: processor.Component{},
			src:     "<script>\n// let hidden; globalThis.x\n</script>{hidden}",
			want:    []string{"<script>/* eslint-disable */let hidden;/* eslint-enable */\n// let hidden; globalThis.x\n</script>{hidden}"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			defer goleak.VerifyNone(t)

			p := processor.New(tt.dialect)
			got := p.Preprocess(tt.src, "test")

			test.Equal(t, len(got), len(tt.want), test.Context("wrong number of virtual files"))

			for i := range min(len(got), len(tt.want)) {
				test.Diff(t, got[i], tt.want[i])
			}
		})
	}
}

func TestPreprocessDeterministic(t *testing.T) {
	src := "<script>import A from 'a';</script><A/>{{#a}}{{b}}{{/a}}{c}{d}"
	p := processor.New(processor.Component{})

	first := p.Preprocess(src, "test.svelte")
	second := p.Preprocess(src, "test.svelte")

	test.EqualFunc(t, first, second, slices.Equal)
}

func TestSectionsHoistOnlyRoot(t *testing.T) {
	p := processor.New(processor.Component{})
	got := p.Preprocess("<script></script>{{#a}}{{b}}{{/a}}", "test.svelte")

	test.Equal(t, len(got), 1)
	test.Diff(t, got[0], "<script>/* eslint-disable */let a;/* eslint-enable */</script>{{#a}}{{b}}{{/a}}")
}

func TestInvertedSection(t *testing.T) {
	p := processor.New(processor.Component{})
	analysis := p.Analyze("<script></script>{{^flag}}nope{{/flag}}")

	roots := analysis.Result.Roots()
	test.Equal(t, len(roots), 1)
	test.Equal(t, roots[0].Key, "flag")
	test.True(t, roots[0].Unless)
}

func TestImportTagIsCandidate(t *testing.T) {
	p := processor.New(processor.Component{})
	analysis := p.Analyze("<script>import { x as y } from 'm'</script><y></y>")

	kind, ok := analysis.Symbols.Regions[0].Lookup("y")
	test.True(t, ok)
	test.Equal(t, kind.String(), "import")

	test.Equal(t, len(analysis.Syntheses), 1)
	test.EqualFunc(t, analysis.Syntheses[0].Reference, []string{"y"}, slices.Equal)
	test.Equal(t, len(analysis.Syntheses[0].Declare), 0)
}

func TestPostprocessPassThrough(t *testing.T) {
	p := processor.New(processor.HTML{}, processor.WithReadFile(func(string) ([]byte, error) {
		t.Fatal("html postprocess should never read the original")
		return nil, nil
	}))

	messages := [][]processor.Message{
		{{RuleID: "semi", Message: "Missing semicolon.", Line: 3, Column: 10, Severity: 2}},
		{{RuleID: "no-undef", Message: "'x' is not defined.", Line: 1, Column: 1, Severity: 2}},
	}

	got, err := p.Postprocess(messages, "page.html")
	test.Ok(t, err)

	want := []processor.Message{messages[0][0], messages[1][0]}
	test.EqualFunc(t, got, want, slices.Equal)
}

func TestPostprocessRestoresSource(t *testing.T) {
	tests := []struct {
		dialect processor.Dialect // Dialect under test
		source  string            // Reported source line
		want    string            // Expected restored source
	}{
		{dialect: processor.HTML{}, source: "$: data = /* */ load()", want: "$: data = await load()"},
		{dialect: processor.Component{}, source: "$: { /**/ foo(); }", want: "$: { await foo(); }"},
	}

	for _, tt := range tests {
		t.Run(tt.dialect.Name(), func(t *testing.T) {
			p := processor.New(tt.dialect, processor.WithReadFile(func(string) ([]byte, error) {
				return nil, nil
			}))

			got, err := p.Postprocess([][]processor.Message{{{RuleID: "semi", Source: tt.source}}}, "test")
			test.Ok(t, err)
			test.Equal(t, len(got), 1)
			test.Equal(t, got[0].Source, tt.want)
		})
	}
}

func TestPostprocessRemap(t *testing.T) {
	original := "<script>\n</script>\n<p>{greeting}</p>\n<p>{{ greeting }}</p>"
	reads := 0

	p := processor.New(processor.Component{}, processor.WithReadFile(func(name string) ([]byte, error) {
		reads++

		test.Equal(t, name, "App.svelte")

		return []byte(original), nil
	}))

	messages := [][]processor.Message{{
		{RuleID: "no-undef", Message: "'greeting' is not defined.", Line: 1, Column: 9, EndLine: 1, EndColumn: 17},
		{RuleID: "no-undef", Message: "'elsewhere' is not defined.", Line: 2, Column: 3, EndLine: 2, EndColumn: 12},
		{RuleID: "semi", Message: "Missing semicolon.", Line: 1, Column: 4},
	}}

	got, err := p.Postprocess(messages, "App.svelte")
	test.Ok(t, err)
	test.Equal(t, reads, 1)
	test.Equal(t, len(got), 3)

	// Moved to the first place greeting is bound
	test.Equal(t, got[0].Line, 3)
	test.Equal(t, got[0].Column, 5)
	test.Equal(t, got[0].EndLine, 3)
	test.Equal(t, got[0].EndColumn, 13)

	// Not bound anywhere, left alone
	test.Equal(t, got[1], messages[0][1])
	test.Equal(t, got[2], messages[0][2])
}

func TestPostprocessReadsOnce(t *testing.T) {
	tests := []struct {
		name     string                // Name of the test case
		messages [][]processor.Message // Messages to postprocess
	}{
		{name: "no messages", messages: nil},
		{name: "nothing to remap", messages: [][]processor.Message{{{RuleID: "semi"}}}},
		{
			name: "several undefined",
			messages: [][]processor.Message{
				{{RuleID: "no-undef", Message: "'a' is not defined."}},
				{{RuleID: "no-undef", Message: "'b' is not defined."}},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reads := 0
			p := processor.New(processor.Component{}, processor.WithReadFile(func(string) ([]byte, error) {
				reads++
				return []byte("<p>{a}</p>"), nil
			}))

			_, err := p.Postprocess(tt.messages, "App.svelte")
			test.Ok(t, err)
			test.Equal(t, reads, 1)
		})
	}
}

func TestPostprocessReadError(t *testing.T) {
	p := processor.New(processor.Component{}, processor.WithReadFile(func(string) ([]byte, error) {
		return nil, fs.ErrNotExist
	}))

	_, err := p.Postprocess([][]processor.Message{{{RuleID: "semi"}}}, "missing.svelte")
	test.Err(t, err)
	test.True(t, errors.Is(err, fs.ErrNotExist), test.Context("read error should be returned as is, got %v", err))
}

func TestEndToEnd(t *testing.T) {
	tests := []struct {
		name string   // Name of the test case
		file string   // Filename, picks the dialect
		src  string   // Original document
		want []string // Expected messages after postprocessing, as strings
	}{
		{
			name: "html bindings",
			file: "index.html",
			src:  "<p>{{ user.name }} {{ count }}</p>\n<script>\nconsole.log(user, count)\n</script>",
			want: nil,
		},
		{
			name: "component bindings",
			file: "App.svelte",
			src: `<script>
	import Widget from './Widget.svelte';
	export let name;
	console.log(undeclared);
</script>

<Widget />
<p>{name} {greeting}</p>
{{#items}}{{label}}{{/items}}`,
			want: []string{"4:14 error 'undeclared' is not defined. no-undef"},
		},
		{
			name: "component module context",
			file: "Page.svelte",
			src: `<script context="module">
	export function load() {}
</script>
<script>
	export let data;
	load(data, other);
</script>
<h1>{data.title}</h1>`,
			want: []string{"6:13 error 'other' is not defined. no-undef"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, ok := processor.ForFile(tt.file, processor.WithReadFile(func(string) ([]byte, error) {
				return []byte(tt.src), nil
			}))
			test.True(t, ok)

			files := p.Preprocess(tt.src, tt.file)

			// Line numbers inside the scripts never move
			test.Equal(t, strings.Count(files[0], "\n"), strings.Count(tt.src, "\n"))

			messages, err := p.Postprocess(processortest.Lint(files), tt.file)
			test.Ok(t, err)

			var got []string
			for _, message := range messages {
				got = append(got, message.String())
			}

			test.EqualFunc(t, got, tt.want, slices.Equal)
		})
	}
}

func TestForFile(t *testing.T) {
	tests := []struct {
		file string // Filename
		want string // Expected dialect name, "" for none
	}{
		{file: "index.html", want: "html"},
		{file: "page.HTM", want: "html"},
		{file: "App.svelte", want: "component"},
		{file: "thing.component", want: "component"},
		{file: "script.js", want: ""},
		{file: "noext", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.file, func(t *testing.T) {
			p, ok := processor.ForFile(tt.file)
			if tt.want == "" {
				test.True(t, !ok)
				return
			}

			test.True(t, ok)
			test.Equal(t, p.Dialect().Name(), tt.want)
			test.True(t, p.SupportsAutofix())
		})
	}
}

func FuzzPreprocess(f *testing.F) {
	f.Add("<script>\nlet a;\n</script>{a}{b}", true)
	f.Add("<p>{{ user }}</p><script>$: x = await y</script>", false)
	f.Add("<script context=module>export let a</script><script></script>{{#s}}{{t}}{{/s}}", true)
	f.Add("", false)

	f.Fuzz(func(t *testing.T, src string, component bool) {
		var dialect processor.Dialect = processor.HTML{}
		if component {
			dialect = processor.Component{}
		}

		files := processor.New(dialect).Preprocess(src, "fuzz")

		// Property: the rewritten document is always first and never gains or loses lines
		test.True(t, len(files) >= 1 && len(files) <= 2)
		test.Equal(t, strings.Count(files[0], "\n"), strings.Count(src, "\n"))
	})
}
