package compile

import (
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/sunstflower/modelsee/pkg/codegen"
	"github.com/sunstflower/modelsee/pkg/graph"
	"github.com/sunstflower/modelsee/pkg/shape"
)

// DefaultModelName names the generated model when callers do not.
const DefaultModelName = "Model"

// DefaultFramework is the target framework when callers do not choose one.
const DefaultFramework = string(codegen.FrameworkTensorFlow)

// Options configures a complete compile run.
// The struct supports JSON serialization so runs can be recorded and
// replayed; runtime-only fields are excluded.
type Options struct {
	// InputShape is the declared model input, batch dimension first.
	// Required.
	InputShape shape.Shape `json:"input_shape"`

	// Framework selects the code generation target. Defaults to
	// "tensorflow".
	Framework string `json:"framework,omitempty"`

	// ModelName is used for the generated function or class name.
	ModelName string `json:"model_name,omitempty"`

	// Analyze includes a parameter-count analysis in the result.
	Analyze bool `json:"analyze,omitempty"`

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool `json:"-"`
}

// ValidateAndSetDefaults checks required fields and applies defaults.
// Idempotent.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if o.InputShape.Rank() == 0 {
		return fmt.Errorf("input shape is required")
	}
	if o.Framework == "" {
		o.Framework = DefaultFramework
	}
	if _, err := codegen.ParseFramework(o.Framework); err != nil {
		return err
	}
	if o.ModelName == "" {
		o.ModelName = DefaultModelName
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	o.validated = true
	return nil
}

// Stats captures timing and size information for a compile run.
type Stats struct {
	NodeCount    int
	EdgeCount    int
	SequenceTime time.Duration
	ValidateTime time.Duration
	GenerateTime time.Duration
}

// Result contains the outputs of a compile run.
type Result struct {
	// Sequence is the ordered node list the validator and generator
	// walked.
	Sequence []string

	// Diagnostics holds every finding from sequencing and validation.
	Diagnostics Diagnostics

	// Code is the generated source, or nil when generation was blocked.
	Code *codegen.Output

	// Blocked explains why generation was refused; empty on success.
	Blocked string

	// Analysis is the parameter-count estimate, present when requested.
	Analysis *Analysis

	// InputHash fingerprints the graph plus options that produced this
	// result.
	InputHash string

	// Stats contains run statistics.
	Stats Stats
}

// Run executes the full sequence → validate → generate pipeline on a
// snapshot of the graph.
//
// The pipeline never mutates the caller's graph: it clones the snapshot so
// the per-node output shape caches the validator writes stay private to the
// run. Generation is gated on validation: any error-severity diagnostic
// blocks it, and the result carries the diagnostics and a Blocked message
// instead of code. A blocked run is not a Go error; errors are reserved for
// malformed requests and internal failures.
func Run(g *graph.Graph, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	work := g.Clone()
	result := &Result{
		InputHash: inputHash(work, opts),
	}
	result.Stats.NodeCount = work.NodeCount()
	result.Stats.EdgeCount = work.EdgeCount()

	seqStart := time.Now()
	seq, seqDiags := Sequence(work)
	result.Sequence = seq
	result.Diagnostics = append(result.Diagnostics, seqDiags...)
	result.Stats.SequenceTime = time.Since(seqStart)

	opts.Logger.Info("sequenced graph",
		"nodes", work.NodeCount(),
		"ordered", len(seq),
		"duration", result.Stats.SequenceTime)

	validateStart := time.Now()
	result.Diagnostics = append(result.Diagnostics, Validate(work, seq, opts.InputShape)...)
	result.Stats.ValidateTime = time.Since(validateStart)

	opts.Logger.Info("validated shapes",
		"errors", result.Diagnostics.ErrorCount(),
		"duration", result.Stats.ValidateTime)

	if opts.Analyze {
		result.Analysis = Analyze(work, seq, opts.InputShape)
	}

	if n := result.Diagnostics.ErrorCount(); n > 0 {
		result.Blocked = fmt.Sprintf("blocked by %d unresolved error%s", n, plural(n))
		opts.Logger.Warn("generation blocked", "errors", n)
		return result, nil
	}

	genStart := time.Now()
	fw, _ := codegen.ParseFramework(opts.Framework)
	code, err := codegen.Generate(work, seq, fw, codegen.Options{
		ModelName:  opts.ModelName,
		InputShape: opts.InputShape,
	})
	if err != nil {
		return nil, fmt.Errorf("generate: %w", err)
	}
	result.Code = code
	result.Stats.GenerateTime = time.Since(genStart)

	opts.Logger.Info("generated code",
		"framework", opts.Framework,
		"bytes", len(code.SourceText),
		"duration", result.Stats.GenerateTime)

	return result, nil
}

func plural(n int) string {
	if n == 1 {
		return ""
	}
	return "s"
}
