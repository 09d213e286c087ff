// Package trace defines the conversion parameter model and the boundary to
// the external vectorization engine.
//
// A conversion is fully described by a Settings value: eleven parameters
// controlling color quantization, shape hierarchy, and curve fitting. Named
// presets provide complete parameter sets for common image types; callers
// selectively override individual fields through Resolve.
package trace

import (
	"github.com/mkoeppen/svgtrace/pkg/errors"
)

// ColorMode controls whether the engine quantizes colors or thresholds to
// black and white.
type ColorMode string

// Supported color modes.
const (
	ColorModeColor  ColorMode = "color"
	ColorModeBinary ColorMode = "binary"
)

// Hierarchy controls how overlapping shapes are emitted.
type Hierarchy string

// Supported shape hierarchies.
const (
	HierarchyStacked Hierarchy = "stacked"
	HierarchyCutout  Hierarchy = "cutout"
)

// CurveMode controls the curve fitting applied to traced paths.
type CurveMode string

// Supported curve fitting modes.
const (
	CurveModeSpline  CurveMode = "spline"
	CurveModePolygon CurveMode = "polygon"
	CurveModeNone    CurveMode = "none"
)

// ParseColorMode parses a color mode string.
func ParseColorMode(s string) (ColorMode, error) {
	switch ColorMode(s) {
	case ColorModeColor, ColorModeBinary:
		return ColorMode(s), nil
	}
	return "", errors.New(errors.ErrCodeInvalidSetting, "colormode must be 'color' or 'binary', got %q", s)
}

// ParseHierarchy parses a hierarchy string.
func ParseHierarchy(s string) (Hierarchy, error) {
	switch Hierarchy(s) {
	case HierarchyStacked, HierarchyCutout:
		return Hierarchy(s), nil
	}
	return "", errors.New(errors.ErrCodeInvalidSetting, "hierarchical must be 'stacked' or 'cutout', got %q", s)
}

// ParseCurveMode parses a curve mode string.
func ParseCurveMode(s string) (CurveMode, error) {
	switch CurveMode(s) {
	case CurveModeSpline, CurveModePolygon, CurveModeNone:
		return CurveMode(s), nil
	}
	return "", errors.New(errors.ErrCodeInvalidSetting, "mode must be 'spline', 'polygon' or 'none', got %q", s)
}

// Settings is a complete parameter set for one conversion.
// Every field always holds a concrete value; a Settings is assembled from a
// preset plus overrides by Resolve and is immutable from then on.
// The JSON field names match the engine's parameter names.
type Settings struct {
	ColorMode       ColorMode `json:"colormode"`
	Hierarchical    Hierarchy `json:"hierarchical"`
	Mode            CurveMode `json:"mode"`
	FilterSpeckle   int       `json:"filter_speckle"`   // discard patches smaller than N px²
	ColorPrecision  int       `json:"color_precision"`  // significant bits per color channel
	LayerDifference int       `json:"layer_difference"` // color difference between gradient layers
	CornerThreshold int       `json:"corner_threshold"` // corner detection angle (degrees)
	LengthThreshold float64   `json:"length_threshold"` // minimum segment length
	MaxIterations   int       `json:"max_iterations"`   // curve fitting iteration cap
	SpliceThreshold int       `json:"splice_threshold"` // spline splicing angle (degrees)
	PathPrecision   int       `json:"path_precision"`   // decimal places in path coordinates
}

// Validate checks that every field is within its declared range.
// The returned error names the offending field.
func (s Settings) Validate() error {
	if _, err := ParseColorMode(string(s.ColorMode)); err != nil {
		return err
	}
	if _, err := ParseHierarchy(string(s.Hierarchical)); err != nil {
		return err
	}
	if _, err := ParseCurveMode(string(s.Mode)); err != nil {
		return err
	}
	if s.FilterSpeckle < 1 {
		return errors.New(errors.ErrCodeInvalidSetting, "filter_speckle must be at least 1, got %d", s.FilterSpeckle)
	}
	if s.ColorPrecision < 1 || s.ColorPrecision > 8 {
		return errors.New(errors.ErrCodeInvalidSetting, "color_precision must be between 1 and 8, got %d", s.ColorPrecision)
	}
	if s.LayerDifference < 1 {
		return errors.New(errors.ErrCodeInvalidSetting, "layer_difference must be at least 1, got %d", s.LayerDifference)
	}
	if s.CornerThreshold < 1 || s.CornerThreshold > 180 {
		return errors.New(errors.ErrCodeInvalidSetting, "corner_threshold must be between 1 and 180, got %d", s.CornerThreshold)
	}
	if s.LengthThreshold < 0 {
		return errors.New(errors.ErrCodeInvalidSetting, "length_threshold must be non-negative, got %g", s.LengthThreshold)
	}
	if s.MaxIterations < 1 {
		return errors.New(errors.ErrCodeInvalidSetting, "max_iterations must be at least 1, got %d", s.MaxIterations)
	}
	if s.SpliceThreshold < 1 {
		return errors.New(errors.ErrCodeInvalidSetting, "splice_threshold must be at least 1, got %d", s.SpliceThreshold)
	}
	if s.PathPrecision < 1 {
		return errors.New(errors.ErrCodeInvalidSetting, "path_precision must be at least 1, got %d", s.PathPrecision)
	}
	return nil
}
