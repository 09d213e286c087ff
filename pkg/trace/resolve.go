package trace

import (
	"fmt"
	"strconv"

	"github.com/mkoeppen/svgtrace/pkg/errors"
)

// SettingFields lists the override keys accepted by Resolve, in declaration
// order. The names match the Settings JSON field names.
var SettingFields = []string{
	"colormode",
	"hierarchical",
	"mode",
	"filter_speckle",
	"color_precision",
	"layer_difference",
	"corner_threshold",
	"length_threshold",
	"max_iterations",
	"splice_threshold",
	"path_precision",
}

// Resolve builds a complete Settings from a preset plus caller overrides.
//
// The preset provides the base value for every field; each override present
// in the map is parsed to the field's declared type and replaces only that
// field. Unknown override keys are ignored. An enum mismatch, a parse
// failure, or an out-of-range value yields an INVALID_SETTING error naming
// the offending field.
func Resolve(preset string, overrides map[string]string) (Settings, error) {
	s := LookupPreset(preset)
	for _, field := range SettingFields {
		raw, ok := overrides[field]
		if !ok {
			continue
		}
		if err := applyOverride(&s, field, raw); err != nil {
			return Settings{}, err
		}
	}
	if err := s.Validate(); err != nil {
		return Settings{}, err
	}
	return s, nil
}

// applyOverride parses raw into the named field of s.
func applyOverride(s *Settings, field, raw string) error {
	var err error
	switch field {
	case "colormode":
		s.ColorMode, err = ParseColorMode(raw)
	case "hierarchical":
		s.Hierarchical, err = ParseHierarchy(raw)
	case "mode":
		s.Mode, err = ParseCurveMode(raw)
	case "filter_speckle":
		s.FilterSpeckle, err = parseInt(field, raw)
	case "color_precision":
		s.ColorPrecision, err = parseInt(field, raw)
	case "layer_difference":
		s.LayerDifference, err = parseInt(field, raw)
	case "corner_threshold":
		s.CornerThreshold, err = parseInt(field, raw)
	case "length_threshold":
		s.LengthThreshold, err = parseFloat(field, raw)
	case "max_iterations":
		s.MaxIterations, err = parseInt(field, raw)
	case "splice_threshold":
		s.SpliceThreshold, err = parseInt(field, raw)
	case "path_precision":
		s.PathPrecision, err = parseInt(field, raw)
	}
	return err
}

func parseInt(field, raw string) (int, error) {
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, errors.New(errors.ErrCodeInvalidSetting, "%s must be an integer, got %q", field, raw)
	}
	return v, nil
}

func parseFloat(field, raw string) (float64, error) {
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, errors.New(errors.ErrCodeInvalidSetting, "%s must be a number, got %q", field, raw)
	}
	return v, nil
}

// NormalizeOverrides converts a loosely typed override map (e.g. a decoded
// JSON object with numbers and strings) into the string map Resolve expects.
// Floats that carry no fractional part are rendered as integers so JSON
// number decoding doesn't turn "4" into "4.000000".
func NormalizeOverrides(raw map[string]any) map[string]string {
	if len(raw) == 0 {
		return nil
	}
	out := make(map[string]string, len(raw))
	for k, v := range raw {
		switch val := v.(type) {
		case string:
			out[k] = val
		case float64:
			if val == float64(int64(val)) {
				out[k] = strconv.FormatInt(int64(val), 10)
			} else {
				out[k] = strconv.FormatFloat(val, 'g', -1, 64)
			}
		case bool:
			out[k] = strconv.FormatBool(val)
		default:
			out[k] = fmt.Sprint(val)
		}
	}
	return out
}
