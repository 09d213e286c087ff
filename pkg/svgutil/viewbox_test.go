package svgutil

import (
	"strings"
	"testing"
)

func TestEnsureViewBox(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "injects from integer dimensions",
			in:   `<svg width="640" height="480" xmlns="http://www.w3.org/2000/svg"><path d="M0 0"/></svg>`,
			want: `viewBox="0 0 640 480"`,
		},
		{
			name: "injects from px dimensions",
			in:   `<svg width="640px" height="480px"></svg>`,
			want: `viewBox="0 0 640 480"`,
		},
		{
			name: "injects from decimal dimensions",
			in:   `<svg width="640.5" height="480.25"></svg>`,
			want: `viewBox="0 0 640.5 480.25"`,
		},
		{
			name: "ignores hyphenated attributes",
			in:   `<svg stroke-width="2" width="640" height="480"></svg>`,
			want: `viewBox="0 0 640 480"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := string(EnsureViewBox([]byte(tt.in)))
			if !strings.Contains(got, tt.want) {
				t.Errorf("EnsureViewBox() = %q, want it to contain %q", got, tt.want)
			}
			if !strings.HasPrefix(got, `<svg viewBox=`) {
				t.Errorf("viewBox should be injected directly after the tag name, got %q", got)
			}
		})
	}
}

func TestEnsureViewBoxUnchanged(t *testing.T) {
	tests := []struct {
		name string
		in   string
	}{
		{"already has viewBox", `<svg viewBox="0 0 10 10" width="640" height="480"></svg>`},
		{"missing height", `<svg width="640"></svg>`},
		{"stroke-width is not a width", `<svg stroke-width="2" height="480"></svg>`},
		{"percentage dimensions", `<svg width="100%" height="100%"></svg>`},
		{"unit-bearing dimensions", `<svg width="10cm" height="4cm"></svg>`},
		{"no svg element", `<html><body>hi</body></html>`},
		{"empty input", ``},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := string(EnsureViewBox([]byte(tt.in))); got != tt.in {
				t.Errorf("EnsureViewBox() = %q, want input unchanged", got)
			}
		})
	}
}

func TestEnsureViewBoxIdempotent(t *testing.T) {
	in := []byte(`<svg width="10" height="20"></svg>`)
	once := EnsureViewBox(in)
	twice := EnsureViewBox(once)
	if string(once) != string(twice) {
		t.Errorf("second application changed the document: %q vs %q", once, twice)
	}
}

func TestEnsureViewBoxMultilineTag(t *testing.T) {
	in := "<svg\n  width=\"10\"\n  height=\"20\"\n>\n</svg>"
	got := string(EnsureViewBox([]byte(in)))
	if !strings.Contains(got, `viewBox="0 0 10 20"`) {
		t.Errorf("EnsureViewBox() = %q, want viewBox injected for a multiline tag", got)
	}
}
