package layers

import (
	"slices"

	"github.com/sunstflower/modelsee/pkg/errors"
	"github.com/sunstflower/modelsee/pkg/graph"
)

// ParamKind is the expected value type of a layer parameter.
type ParamKind int

const (
	ParamInt ParamKind = iota
	ParamFloat
	ParamBool
	ParamString
	ParamIntList
)

func (k ParamKind) String() string {
	switch k {
	case ParamInt:
		return "int"
	case ParamFloat:
		return "float"
	case ParamBool:
		return "bool"
	case ParamString:
		return "string"
	case ParamIntList:
		return "int list"
	}
	return "unknown"
}

// ParamSpec declares one configuration parameter and its constraints.
// The zero values of Min/Max/Choices/ListLen mean "unconstrained".
type ParamSpec struct {
	Name     string
	Kind     ParamKind
	Required bool

	Min, Max float64  // Inclusive numeric range (when both zero, unchecked)
	Choices  []string // Allowed values for string parameters
	ListLen  int      // Required length for int-list parameters
}

// CheckConfig validates a node configuration against the descriptor's
// parameter specs. Every violation is reported as its own error so the
// caller can surface all problems at once; the returned errors all carry
// ErrCodeConfigType.
//
// Configuration values arrive from JSON, so numbers may be float64 and lists
// []any. The checks accept those representations; the typed accessors below
// perform the same coercions when reading.
func (d *Descriptor) CheckConfig(cfg graph.Config) []error {
	var errs []error

	for _, p := range d.Params {
		v, ok := cfg[p.Name]
		if !ok {
			if p.Required {
				errs = append(errs, errors.New(errors.ErrCodeConfigType,
					"missing required parameter %q", p.Name))
			}
			continue
		}
		if err := p.check(v); err != nil {
			errs = append(errs, err)
		}
	}

	known := make(map[string]bool, len(d.Params))
	for _, p := range d.Params {
		known[p.Name] = true
	}
	for name := range cfg {
		if !known[name] {
			errs = append(errs, errors.New(errors.ErrCodeConfigType,
				"unknown parameter %q for layer type %q", name, d.Type))
		}
	}
	return errs
}

func (p ParamSpec) check(v any) error {
	switch p.Kind {
	case ParamInt, ParamFloat:
		f, ok := asFloat(v)
		if !ok {
			return errors.New(errors.ErrCodeConfigType,
				"parameter %q must be a number, got %T", p.Name, v)
		}
		if p.Kind == ParamInt && f != float64(int(f)) {
			return errors.New(errors.ErrCodeConfigType,
				"parameter %q must be an integer, got %v", p.Name, v)
		}
		if (p.Min != 0 || p.Max != 0) && (f < p.Min || f > p.Max) {
			return errors.New(errors.ErrCodeConfigType,
				"parameter %q = %v out of range [%v, %v]", p.Name, v, p.Min, p.Max)
		}
	case ParamBool:
		if _, ok := v.(bool); !ok {
			return errors.New(errors.ErrCodeConfigType,
				"parameter %q must be a bool, got %T", p.Name, v)
		}
	case ParamString:
		s, ok := v.(string)
		if !ok {
			return errors.New(errors.ErrCodeConfigType,
				"parameter %q must be a string, got %T", p.Name, v)
		}
		if len(p.Choices) > 0 && !slices.Contains(p.Choices, s) {
			return errors.New(errors.ErrCodeConfigType,
				"parameter %q = %q (must be one of: %v)", p.Name, s, p.Choices)
		}
	case ParamIntList:
		ints, ok := asIntList(v)
		if !ok {
			return errors.New(errors.ErrCodeConfigType,
				"parameter %q must be a list of integers, got %T", p.Name, v)
		}
		if p.ListLen > 0 && len(ints) != p.ListLen {
			return errors.New(errors.ErrCodeConfigType,
				"parameter %q must have length %d, got %d", p.Name, p.ListLen, len(ints))
		}
	}
	return nil
}

// =============================================================================
// Typed Config Accessors
// =============================================================================

// configInt reads an integer parameter, falling back to def when absent or
// malformed. A JSON float64 holding an integral value is accepted.
func configInt(cfg graph.Config, name string, def int) int {
	if f, ok := asFloat(cfg[name]); ok {
		return int(f)
	}
	return def
}

// configFloat reads a float parameter with a default.
func configFloat(cfg graph.Config, name string, def float64) float64 {
	if f, ok := asFloat(cfg[name]); ok {
		return f
	}
	return def
}

// configBool reads a boolean parameter with a default.
func configBool(cfg graph.Config, name string, def bool) bool {
	if b, ok := cfg[name].(bool); ok {
		return b
	}
	return def
}

// configString reads a string parameter with a default.
func configString(cfg graph.Config, name string, def string) string {
	if s, ok := cfg[name].(string); ok {
		return s
	}
	return def
}

// configIntList reads an int-list parameter, returning a copy of def when
// absent or malformed.
func configIntList(cfg graph.Config, name string, def []int) []int {
	if ints, ok := asIntList(cfg[name]); ok {
		return ints
	}
	return slices.Clone(def)
}

func asFloat(v any) (float64, bool) {
	switch t := v.(type) {
	case int:
		return float64(t), true
	case int64:
		return float64(t), true
	case float64:
		return t, true
	case float32:
		return float64(t), true
	}
	return 0, false
}

func asIntList(v any) ([]int, bool) {
	switch t := v.(type) {
	case []int:
		return slices.Clone(t), true
	case []any:
		out := make([]int, len(t))
		for i, e := range t {
			f, ok := asFloat(e)
			if !ok || f != float64(int(f)) {
				return nil, false
			}
			out[i] = int(f)
		}
		return out, true
	}
	return nil, false
}

// intRange is a shorthand for a required-range int parameter.
func intRange(name string, required bool, min, max float64) ParamSpec {
	return ParamSpec{Name: name, Kind: ParamInt, Required: required, Min: min, Max: max}
}

// choice is a shorthand for an enumerated string parameter.
func choice(name string, values ...string) ParamSpec {
	return ParamSpec{Name: name, Kind: ParamString, Choices: values}
}

// intPair is a shorthand for a two-element int-list parameter (kernel sizes,
// strides, pool sizes).
func intPair(name string, required bool) ParamSpec {
	return ParamSpec{Name: name, Kind: ParamIntList, Required: required, ListLen: 2}
}

// rankError builds the validator-classifiable rank failure for a layer.
func rankError(tag string, req RankRequirement, got int) error {
	return errors.New(errors.ErrCodeRankMismatch,
		"%s requires %s input, got %d-D", tag, req, got)
}

// dimError builds a concrete-dimension failure.
func dimError(format string, args ...any) error {
	return errors.New(errors.ErrCodeIncompatibleDimension, format, args...)
}
