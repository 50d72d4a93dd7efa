package syntax_test

import (
	"fmt"
	"testing"

	"go.followtheprocess.codes/fruition/internal/syntax"
	"go.followtheprocess.codes/test"
)

func TestPositionString(t *testing.T) {
	tests := []struct {
		name string          // Name of the test case
		want string          // Expected return value
		pos  syntax.Position // Position under test
	}{
		{
			name: "empty",
			pos:  syntax.Position{},
			want: `BadPosition: {Name: "", Line: 0, StartCol: 0, EndCol: 0}`,
		},
		{
			name: "missing name",
			pos:  syntax.Position{Line: 12, StartCol: 2, EndCol: 6},
			want: `BadPosition: {Name: "", Line: 12, StartCol: 2, EndCol: 6}`,
		},
		{
			name: "zero line",
			pos:  syntax.Position{Name: "page.html", Line: 0, StartCol: 12, EndCol: 19},
			want: `BadPosition: {Name: "page.html", Line: 0, StartCol: 12, EndCol: 19}`,
		},
		{
			name: "end less than start",
			pos:  syntax.Position{Name: "page.html", Line: 1, StartCol: 6, EndCol: 4},
			want: `BadPosition: {Name: "page.html", Line: 1, StartCol: 6, EndCol: 4}`,
		},
		{
			name: "valid single column",
			pos:  syntax.Position{Name: "page.html", Line: 1, StartCol: 6, EndCol: 6},
			want: "page.html:1:6",
		},
		{
			name: "valid column range",
			pos:  syntax.Position{Name: "App.svelte", Line: 17, StartCol: 20, EndCol: 26},
			want: "App.svelte:17:20-26",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			test.Equal(t, tt.pos.String(), tt.want)
		})
	}
}

func TestPositionOf(t *testing.T) {
	tests := []struct {
		name string          // Name of the test case
		src  string          // Source text
		span syntax.Span     // Span to translate
		want syntax.Position // Expected position
	}{
		{
			name: "start of file",
			src:  "{{ name }}",
			span: syntax.Span{Start: 3, End: 7},
			want: syntax.Position{Name: "test", Offset: 3, Line: 1, StartCol: 4, EndCol: 8},
		},
		{
			name: "second line",
			src:  "<div>\n  {name}\n</div>",
			span: syntax.Span{Start: 9, End: 13},
			want: syntax.Position{Name: "test", Offset: 9, Line: 2, StartCol: 4, EndCol: 8},
		},
		{
			name: "multibyte before span",
			src:  "é {x}",
			span: syntax.Span{Start: 4, End: 5},
			want: syntax.Position{Name: "test", Offset: 4, Line: 1, StartCol: 4, EndCol: 5},
		},
		{
			name: "astral plane counts twice",
			src:  "😀{x}",
			span: syntax.Span{Start: 5, End: 6},
			want: syntax.Position{Name: "test", Offset: 5, Line: 1, StartCol: 4, EndCol: 5},
		},
		{
			name: "clamped past the end",
			src:  "ab",
			span: syntax.Span{Start: 10, End: 20},
			want: syntax.Position{Name: "test", Offset: 2, Line: 1, StartCol: 3, EndCol: 3},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := syntax.PositionOf("test", []byte(tt.src), tt.span)
			test.Equal(t, got, tt.want)
		})
	}
}

func FuzzPosition(f *testing.F) {
	f.Add("", 0, 0, 0)
	f.Add("name.txt", 1, 1, 2)
	f.Add("valid.html", 12, 17, 19)
	f.Add("invalid.html", 0, -9, 9999)

	f.Fuzz(func(t *testing.T, name string, line, startCol, endCol int) {
		pos := syntax.Position{
			Name:     name,
			Line:     line,
			StartCol: startCol,
			EndCol:   endCol,
		}

		got := pos.String()

		// Property: If IsValid returns false, the string must be this format
		if !pos.IsValid() {
			want := fmt.Sprintf(
				"BadPosition: {Name: %q, Line: %d, StartCol: %d, EndCol: %d}",
				name,
				line,
				startCol,
				endCol,
			)
			test.Equal(t, got, want)

			return
		}

		test.True(t, pos.Line >= 1, test.Context("IsValid() = true but pos.Line (%d) was not >= 1", pos.Line))
		test.True(t, pos.EndCol >= pos.StartCol, test.Context("IsValid() = true but EndCol < StartCol"))

		if startCol == endCol {
			test.Equal(t, got, fmt.Sprintf("%s:%d:%d", name, line, startCol))
			return
		}

		test.Equal(t, got, fmt.Sprintf("%s:%d:%d-%d", name, line, startCol, endCol))
	})
}

func FuzzPositionOf(f *testing.F) {
	f.Add("<p>{{ a }}</p>", 3, 10)
	f.Add("line\nline\n", 5, 9)
	f.Add("", 0, 0)

	f.Fuzz(func(t *testing.T, src string, start, end int) {
		pos := syntax.PositionOf("fuzz", []byte(src), syntax.Span{Start: start, End: end})

		// Property: never panics and always produces a valid position
		test.True(t, pos.IsValid(), test.Context("PositionOf produced invalid position %#v", pos))
	})
}
