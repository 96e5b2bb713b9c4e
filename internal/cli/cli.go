// Package cli implements the modelsee command-line interface.
//
// This package provides commands for validating layer graphs, compiling them
// to framework code, repairing shape mismatches, and rendering graph
// diagrams. The CLI is built using cobra and supports verbose logging via
// the charmbracelet/log library.
//
// # Commands
//
// The main commands are:
//   - compile: Validate a graph and generate TensorFlow or PyTorch code
//   - validate: Check a graph and report diagnostics without generating
//   - repair: Propose and apply flatten adapters for rank mismatches
//   - layers: List the registered layer types
//   - visualize: Render a graph as a DOT or SVG diagram
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging. Loggers are
// passed through context.Context to allow structured progress tracking.
package cli

import (
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/sunstflower/modelsee/pkg/buildinfo"
	"github.com/sunstflower/modelsee/pkg/graph"
)

// appName is the application name used for directories and display.
const appName = "modelsee"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger
	Config *Config
}

// New creates a new CLI instance with a default logger and the user config
// loaded from disk (falling back to defaults when absent).
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		Config: LoadConfig(),
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "Modelsee compiles visual layer graphs to framework code",
		Long:         `Modelsee is a CLI tool for validating neural network layer graphs and compiling them to runnable TensorFlow or PyTorch model code.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
	}

	root.SetVersionTemplate(buildinfo.Template())

	root.AddCommand(c.compileCommand())
	root.AddCommand(c.validateCommand())
	root.AddCommand(c.repairCommand())
	root.AddCommand(c.layersCommand())
	root.AddCommand(c.visualizeCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// loadGraph reads a graph JSON file for command input.
func loadGraph(path string) (*graph.Graph, error) {
	return graph.ImportJSON(path)
}

// writeOutput writes data to path, or stdout when path is empty.
func writeOutput(path string, data []byte) error {
	if path == "" || path == "-" {
		_, err := os.Stdout.Write(data)
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return os.WriteFile(path, data, 0o644)
}
