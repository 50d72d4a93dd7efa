package token_test

import (
	"fmt"
	"math/rand/v2"
	"testing"

	"go.followtheprocess.codes/fruition/internal/syntax/token"
	"go.followtheprocess.codes/test"
)

func FuzzTokenString(f *testing.F) {
	// Generate some random integers as seeds
	for range 100 {
		f.Add(rand.Int(), rand.Int(), rand.Int())
	}

	f.Fuzz(func(t *testing.T, kind, start, end int) {
		tok := token.Token{
			Kind:  token.Kind(kind),
			Start: start,
			End:   end,
		}

		got := tok.String()

		// It should always look like this, regardless of the numbers
		want := fmt.Sprintf("<Token::%s start=%d, end=%d>", token.Kind(kind), start, end)

		test.Equal(t, got, want)
	})
}

func TestKindString(t *testing.T) {
	test.Equal(t, token.OpenSection.String(), "OpenSection")
	test.Equal(t, token.CloseInterp.String(), "CloseInterp")
	test.Equal(t, token.Kind(42).String(), "Kind(42)")
}

func TestIsOpen(t *testing.T) {
	tests := []struct {
		kind token.Kind // Kind under test
		want bool       // Expected IsOpen
	}{
		{kind: token.OpenInterp, want: true},
		{kind: token.OpenSection, want: true},
		{kind: token.OpenInverted, want: true},
		{kind: token.OpenEnd, want: true},
		{kind: token.Body, want: false},
		{kind: token.CloseInterp, want: false},
		{kind: token.Text, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.kind.String(), func(t *testing.T) {
			test.Equal(t, token.Token{Kind: tt.kind}.IsOpen(), tt.want)
		})
	}
}

func TestIsSection(t *testing.T) {
	test.True(t, token.OpenSection.IsSection())
	test.True(t, token.OpenInverted.IsSection())
	test.True(t, !token.OpenEnd.IsSection())
	test.True(t, !token.OpenInterp.IsSection())
}

func TestReserved(t *testing.T) {
	tests := []struct {
		text string // Text input
		want bool   // Expected return
	}{
		{text: "if", want: true},
		{text: "else", want: true},
		{text: "each", want: true},
		{text: "html", want: true},
		{text: "name", want: false},
		{text: "items", want: false},
		{text: "If", want: false},
		{text: "", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			test.Equal(t, token.Reserved(tt.text), tt.want)
		})
	}
}

func TestKeyword(t *testing.T) {
	tests := []struct {
		text string // Text input
		want bool   // Expected return
	}{
		{text: "new", want: true},
		{text: "typeof", want: true},
		{text: "void", want: true},
		{text: "true", want: true},
		{text: "default", want: false},
		{text: "class", want: false},
		{text: "Date", want: false},
		{text: "", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			test.Equal(t, token.Keyword(tt.text), tt.want)
		})
	}
}
