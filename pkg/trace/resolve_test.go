package trace

import (
	"strings"
	"testing"

	"github.com/mkoeppen/svgtrace/pkg/errors"
)

func TestResolveNoOverrides(t *testing.T) {
	got, err := Resolve("photo", nil)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if got != LookupPreset("photo") {
		t.Errorf("Resolve with no overrides = %+v, want the photo preset verbatim", got)
	}
}

func TestResolveOverridesSingleField(t *testing.T) {
	got, err := Resolve("default", map[string]string{"filter_speckle": "10"})
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}

	if got.FilterSpeckle != 10 {
		t.Errorf("FilterSpeckle = %d, want 10", got.FilterSpeckle)
	}
	// Every other field keeps its preset value.
	want := LookupPreset("default")
	want.FilterSpeckle = 10
	if got != want {
		t.Errorf("Resolve() = %+v, want %+v", got, want)
	}
}

func TestResolveErrors(t *testing.T) {
	tests := []struct {
		name      string
		overrides map[string]string
		wantIn    string // substring of the error message
	}{
		{
			name:      "invalid enum value",
			overrides: map[string]string{"colormode": "grayscale"},
			wantIn:    "colormode",
		},
		{
			name:      "out of range",
			overrides: map[string]string{"color_precision": "9"},
			wantIn:    "color_precision must be between 1 and 8, got 9",
		},
		{
			name:      "not an integer",
			overrides: map[string]string{"corner_threshold": "sharp"},
			wantIn:    `corner_threshold must be an integer, got "sharp"`,
		},
		{
			name:      "not a number",
			overrides: map[string]string{"length_threshold": "long"},
			wantIn:    `length_threshold must be a number, got "long"`,
		},
		{
			name:      "negative length threshold",
			overrides: map[string]string{"length_threshold": "-1"},
			wantIn:    "length_threshold must be non-negative",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Resolve("default", tt.overrides)
			if err == nil {
				t.Fatal("Resolve() error = nil, want INVALID_SETTING")
			}
			if !errors.Is(err, errors.ErrCodeInvalidSetting) {
				t.Errorf("error code = %q, want INVALID_SETTING", errors.GetCode(err))
			}
			if !strings.Contains(err.Error(), tt.wantIn) {
				t.Errorf("error %q does not mention %q", err, tt.wantIn)
			}
		})
	}
}

func TestResolveIgnoresUnknownKeys(t *testing.T) {
	got, err := Resolve("default", map[string]string{"sharpness": "11"})
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if got != LookupPreset("default") {
		t.Errorf("unknown override key changed the settings: %+v", got)
	}
}

func TestNormalizeOverrides(t *testing.T) {
	got := NormalizeOverrides(map[string]any{
		"filter_speckle":   float64(4), // JSON numbers decode as float64
		"length_threshold": 3.5,
		"colormode":        "binary",
	})

	want := map[string]string{
		"filter_speckle":   "4",
		"length_threshold": "3.5",
		"colormode":        "binary",
	}
	for k, v := range want {
		if got[k] != v {
			t.Errorf("normalized[%q] = %q, want %q", k, got[k], v)
		}
	}

	if NormalizeOverrides(nil) != nil {
		t.Error("NormalizeOverrides(nil) should return nil")
	}
}
