// Package shape provides tensor shape types for the modelsee compiler.
//
// A shape is an ordered sequence of dimensions where each dimension is either
// a concrete positive size or a wildcard. Wildcards stand for "unknown at
// build time", most commonly the batch dimension, and match any concrete
// size during compatibility checks.
//
// Shapes are small value types: every operation returns a new shape and never
// mutates its receiver, so shapes can be shared freely between compiler runs.
package shape

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
)

// Dim is a single tensor dimension. A non-positive value is a wildcard.
type Dim int

// Wild is the wildcard dimension ("unknown/batch"). It matches any concrete
// dimension during compatibility checks and serializes to JSON null.
const Wild Dim = -1

// IsWild reports whether the dimension is a wildcard.
func (d Dim) IsWild() bool { return d <= 0 }

// String returns the dimension as a decimal number, or "?" for wildcards.
func (d Dim) String() string {
	if d.IsWild() {
		return "?"
	}
	return strconv.Itoa(int(d))
}

// MarshalJSON encodes wildcards as null, matching the editor's wire format
// where the batch dimension arrives as [null, 28, 28, 1].
func (d Dim) MarshalJSON() ([]byte, error) {
	if d.IsWild() {
		return []byte("null"), nil
	}
	return []byte(strconv.Itoa(int(d))), nil
}

// UnmarshalJSON decodes null as the wildcard dimension.
func (d *Dim) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		*d = Wild
		return nil
	}
	n, err := strconv.Atoi(string(data))
	if err != nil {
		return fmt.Errorf("dimension must be an integer or null: %w", err)
	}
	if n <= 0 {
		return fmt.Errorf("dimension must be positive, got %d", n)
	}
	*d = Dim(n)
	return nil
}

// Shape is an ordered list of dimensions. A nil shape means "no shape known"
// and is distinct from the empty (rank-0) shape.
type Shape []Dim

// Of builds a shape from dimension values. Non-positive values become
// wildcards, so Of(-1, 28, 28, 1) is the usual NHWC image shape.
func Of(dims ...int) Shape {
	s := make(Shape, len(dims))
	for i, d := range dims {
		if d <= 0 {
			s[i] = Wild
		} else {
			s[i] = Dim(d)
		}
	}
	return s
}

// Rank returns the number of dimensions.
func (s Shape) Rank() int { return len(s) }

// Clone returns an independent copy of the shape.
func (s Shape) Clone() Shape {
	if s == nil {
		return nil
	}
	out := make(Shape, len(s))
	copy(out, s)
	return out
}

// Equal reports whether both shapes have identical rank and dimensions.
// Wildcards only equal wildcards; use CompatibleWith for validation checks.
func (s Shape) Equal(other Shape) bool {
	if len(s) != len(other) {
		return false
	}
	for i := range s {
		if s[i].IsWild() != other[i].IsWild() {
			return false
		}
		if !s[i].IsWild() && s[i] != other[i] {
			return false
		}
	}
	return true
}

// CompatibleWith reports whether s can flow where other is expected: ranks
// must match and every concrete dimension pair must agree. A wildcard on
// either side matches anything without constraining the other side.
func (s Shape) CompatibleWith(other Shape) bool {
	if len(s) != len(other) {
		return false
	}
	for i := range s {
		if s[i].IsWild() || other[i].IsWild() {
			continue
		}
		if s[i] != other[i] {
			return false
		}
	}
	return true
}

// Elements returns the product of all concrete dimensions from index from
// onward. Wildcard dimensions are skipped; ok is false when every dimension
// in the range is a wildcard.
func (s Shape) Elements(from int) (n int, ok bool) {
	n = 1
	for _, d := range s[from:] {
		if d.IsWild() {
			continue
		}
		n *= int(d)
		ok = true
	}
	return n, ok
}

// String formats the shape as "[?, 28, 28, 1]".
func (s Shape) String() string {
	parts := make([]string, len(s))
	for i, d := range s {
		parts[i] = d.String()
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// Parse converts a comma-separated dimension list into a shape. Both "?" and
// "null" denote a wildcard, and surrounding brackets are optional, so
// "?,28,28,1" and "[null, 28, 28, 1]" parse to the same shape.
func Parse(s string) (Shape, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "[")
	s = strings.TrimSuffix(s, "]")
	if strings.TrimSpace(s) == "" {
		return nil, fmt.Errorf("empty shape")
	}

	parts := strings.Split(s, ",")
	out := make(Shape, len(parts))
	for i, p := range parts {
		p = strings.TrimSpace(p)
		if p == "?" || p == "null" {
			out[i] = Wild
			continue
		}
		n, err := strconv.Atoi(p)
		if err != nil {
			return nil, fmt.Errorf("invalid dimension %q: %w", p, err)
		}
		if n <= 0 {
			return nil, fmt.Errorf("dimension must be positive, got %d", n)
		}
		out[i] = Dim(n)
	}
	return out, nil
}
