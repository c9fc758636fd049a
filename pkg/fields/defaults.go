package fields

import (
	"math"

	"github.com/ritzau/brandos-canvas/pkg/logging"
)

// Defaults returns the default value of every field that declares one
func Defaults(specs []Spec) map[string]any {
	out := make(map[string]any, len(specs))
	for _, s := range specs {
		if s.Default != nil {
			out[s.Key] = s.Default
		}
	}
	return out
}

// Merge shallow-merges patch into prior and returns a new record.
// Keys not named in patch keep their prior values.
func Merge(prior map[string]any, patch Patch) map[string]any {
	out := make(map[string]any, len(prior)+len(patch))
	for k, v := range prior {
		out[k] = v
	}
	for k, v := range patch {
		out[k] = v
	}
	return out
}

// Normalize applies the default table to a stored record at read time.
// Missing keys take the field default, enum values outside the option list
// fall back to the default, and numbers are clamped into range. Keys without
// a spec pass through unchanged. The input record is not modified.
func Normalize(specs []Spec, data map[string]any) map[string]any {
	out := make(map[string]any, len(data)+len(specs))
	for k, v := range data {
		out[k] = v
	}

	for _, s := range specs {
		v, present := out[s.Key]
		if !present || v == nil {
			if s.Default != nil {
				out[s.Key] = s.Default
			}
			continue
		}

		switch s.Kind {
		case KindEnumSelect:
			str, ok := v.(string)
			if !ok || !contains(s.Options, str) {
				logging.Debug("enum value not in options, using default",
					"field", s.Key, "value", v, "default", s.Default)
				out[s.Key] = s.Default
			}
		case KindNumericRange:
			f, ok := toFloat(v)
			if !ok {
				out[s.Key] = s.Default
				continue
			}
			out[s.Key] = math.Min(math.Max(f, s.Min), s.Max)
		case KindToggle:
			if _, ok := v.(bool); !ok {
				out[s.Key] = s.Default
			}
		case KindFreeText, KindMultilineText, KindColorSwatch:
			if _, ok := v.(string); !ok {
				out[s.Key] = s.Default
			}
		}
	}
	return out
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, !math.IsNaN(n)
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case int32:
		return float64(n), true
	default:
		return 0, false
	}
}
