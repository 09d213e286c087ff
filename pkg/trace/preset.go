package trace

import (
	"slices"
)

// DefaultPreset is the preset used when a requested name is unknown.
const DefaultPreset = "default"

// presets maps preset names to complete parameter sets. The catalog is
// initialized once and never mutated; lookups return copies by value.
var presets = map[string]Settings{
	"default": {
		ColorMode:       ColorModeColor,
		Hierarchical:    HierarchyStacked,
		Mode:            CurveModeSpline,
		FilterSpeckle:   4,
		ColorPrecision:  6,
		LayerDifference: 16,
		CornerThreshold: 60,
		LengthThreshold: 4.0,
		MaxIterations:   10,
		SpliceThreshold: 45,
		PathPrecision:   3,
	},
	"logo": {
		ColorMode:       ColorModeColor,
		Hierarchical:    HierarchyStacked,
		Mode:            CurveModeSpline,
		FilterSpeckle:   8,
		ColorPrecision:  4,
		LayerDifference: 24,
		CornerThreshold: 60,
		LengthThreshold: 4.0,
		MaxIterations:   10,
		SpliceThreshold: 45,
		PathPrecision:   2,
	},
	"photo": {
		ColorMode:       ColorModeColor,
		Hierarchical:    HierarchyStacked,
		Mode:            CurveModeSpline,
		FilterSpeckle:   2,
		ColorPrecision:  8,
		LayerDifference: 8,
		CornerThreshold: 60,
		LengthThreshold: 2.0,
		MaxIterations:   10,
		SpliceThreshold: 45,
		PathPrecision:   4,
	},
	"lineart": {
		ColorMode:       ColorModeBinary,
		Hierarchical:    HierarchyStacked,
		Mode:            CurveModeSpline,
		FilterSpeckle:   4,
		ColorPrecision:  6,
		LayerDifference: 16,
		CornerThreshold: 60,
		LengthThreshold: 4.0,
		MaxIterations:   10,
		SpliceThreshold: 45,
		PathPrecision:   3,
	},
	"sketch": {
		ColorMode:       ColorModeBinary,
		Hierarchical:    HierarchyStacked,
		Mode:            CurveModeSpline,
		FilterSpeckle:   2,
		ColorPrecision:  6,
		LayerDifference: 16,
		CornerThreshold: 45,
		LengthThreshold: 2.0,
		MaxIterations:   15,
		SpliceThreshold: 45,
		PathPrecision:   3,
	},
	"minimal": {
		ColorMode:       ColorModeColor,
		Hierarchical:    HierarchyStacked,
		Mode:            CurveModePolygon,
		FilterSpeckle:   16,
		ColorPrecision:  3,
		LayerDifference: 32,
		CornerThreshold: 60,
		LengthThreshold: 6.0,
		MaxIterations:   10,
		SpliceThreshold: 45,
		PathPrecision:   2,
	},
}

// LookupPreset returns the parameter set for the named preset.
// Unknown names fall back to the default preset; the call never fails.
func LookupPreset(name string) Settings {
	if s, ok := presets[name]; ok {
		return s
	}
	return presets[DefaultPreset]
}

// Presets returns a copy of the full preset catalog for introspection.
func Presets() map[string]Settings {
	out := make(map[string]Settings, len(presets))
	for name, s := range presets {
		out[name] = s
	}
	return out
}

// PresetNames returns the catalog's preset names in sorted order.
func PresetNames() []string {
	names := make([]string, 0, len(presets))
	for name := range presets {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}
