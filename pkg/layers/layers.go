// Package layers provides the static registry of known layer types.
//
// Every layer type the editor can place on the canvas is described by a
// [Descriptor]: its default configuration, parameter constraints, input rank
// requirement, shape-transform function, and per-framework code emitters. The
// registry is the leaf dependency of the whole compiler - the sequencer,
// validator, and code generator all resolve layer-type tags through it.
//
// Registration is append-only and happens at package init time. Unknown tags
// are rejected with a typed error rather than a runtime nil, and stored
// defaults are never handed out by reference: [DefaultConfig] always returns
// a deep copy.
package layers

import (
	"fmt"
	"slices"

	"github.com/sunstflower/modelsee/pkg/errors"
	"github.com/sunstflower/modelsee/pkg/graph"
	"github.com/sunstflower/modelsee/pkg/shape"
)

// Layer categories, used for grouping in pickers and listings.
const (
	CategoryBasic          = "basic"
	CategoryAdvanced       = "advanced"
	CategoryRegularization = "regularization"
	CategoryAttention      = "attention"
	CategoryCustom         = "custom"
	CategoryUtility        = "utility"
)

// RankRequirement declares the input tensor rank a layer accepts.
// Exact takes precedence when non-zero; otherwise Min applies ("any rank
// >= Min"). The zero value accepts any rank.
type RankRequirement struct {
	Exact int
	Min   int
}

// Accepts reports whether an input of the given rank satisfies the requirement.
func (r RankRequirement) Accepts(rank int) bool {
	if r.Exact > 0 {
		return rank == r.Exact
	}
	return rank >= r.Min
}

// String describes the requirement for diagnostics ("exactly 2-D", "any rank >= 2").
func (r RankRequirement) String() string {
	if r.Exact > 0 {
		return fmt.Sprintf("exactly %d-D", r.Exact)
	}
	if r.Min > 1 {
		return fmt.Sprintf("any rank >= %d", r.Min)
	}
	return "any rank"
}

// EmitContext carries everything a code emitter needs for one node.
type EmitContext struct {
	Config graph.Config // Node configuration merged over defaults
	Input  shape.Shape  // Inferred input shape of the node
	First  bool         // True for the first shape-transforming layer
	Index  int          // Position in the emitted sequence, for field names
}

// ShapeFunc computes a layer's output shape from its input shape and
// configuration. It must be pure. Failures are *errors.Error values carrying
// ErrCodeRankMismatch or ErrCodeIncompatibleDimension so the validator can
// classify them.
type ShapeFunc func(in shape.Shape, cfg graph.Config) (shape.Shape, error)

// Descriptor describes one registered layer type.
type Descriptor struct {
	Type     string       // Layer-type tag, e.g. "conv2d"
	Category string       // One of the Category constants
	Doc      string       // One-line human description
	Defaults graph.Config // Default configuration (deep-copied on access)
	Params   []ParamSpec  // Parameter constraints for config validation
	Rank     RankRequirement

	// Marker is true for non-layer node types (input/output pins) the
	// validator skips: they do not transform shape and emit no code.
	Marker bool

	// ShapeOf is the shape-transform function. Nil for marker types.
	ShapeOf ShapeFunc

	// TensorFlow renders one Keras Sequential construction expression,
	// e.g. `layers.Dense(10, activation='softmax')`.
	TensorFlow func(c EmitContext) string

	// PyTorch renders an nn.Module field definition plus the matching
	// forward statement. The definition may be empty for stateless ops.
	PyTorch func(c EmitContext) (definition, forward string)
}

var (
	registry = make(map[string]*Descriptor)
	tags     []string // registration order
)

// Register adds a descriptor to the registry.
// It panics on an empty tag or a duplicate registration: the layer set is
// wired at init time, and a collision there is a programming error no caller
// can recover from.
func Register(d *Descriptor) {
	if d.Type == "" {
		panic("layers: descriptor with empty type tag")
	}
	if _, exists := registry[d.Type]; exists {
		panic("layers: duplicate registration of layer type " + d.Type)
	}
	registry[d.Type] = d
	tags = append(tags, d.Type)
}

// Lookup resolves a layer-type tag to its descriptor.
// Returns an error with ErrCodeUnknownLayerType when the tag is absent.
func Lookup(tag string) (*Descriptor, error) {
	d, ok := registry[tag]
	if !ok {
		return nil, errors.New(errors.ErrCodeUnknownLayerType, "no layer registered for type %q", tag)
	}
	return d, nil
}

// DefaultConfig returns a deep copy of the layer's default configuration.
// Callers may mutate the result freely; the registry's stored defaults are
// never exposed. Returns an error for unknown tags.
func DefaultConfig(tag string) (graph.Config, error) {
	d, err := Lookup(tag)
	if err != nil {
		return nil, err
	}
	return d.Defaults.Clone(), nil
}

// Types returns all registered layer-type tags in sorted order.
func Types() []string {
	out := slices.Clone(tags)
	slices.Sort(out)
	return out
}

// ByCategory returns registered tags grouped by category, each group sorted.
func ByCategory() map[string][]string {
	out := make(map[string][]string)
	for _, tag := range tags {
		d := registry[tag]
		out[d.Category] = append(out[d.Category], tag)
	}
	for _, group := range out {
		slices.Sort(group)
	}
	return out
}
