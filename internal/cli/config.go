package cli

import (
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"github.com/sunstflower/modelsee/pkg/compile"
)

// Config holds user preferences loaded from the config file. Zero values
// mean "use the built-in default"; command-line flags always win.
type Config struct {
	// Framework is the default code generation target.
	Framework string `toml:"framework"`
	// ModelName is the default generated model name.
	ModelName string `toml:"model_name"`
	// InputShape is the default model input, e.g. "[null, 28, 28, 1]".
	InputShape string `toml:"input_shape"`
}

// configPath returns the config file location using the XDG standard
// (~/.config/modelsee/config.toml).
func configPath() (string, error) {
	if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
		return filepath.Join(configHome, appName, "config.toml"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", appName, "config.toml"), nil
}

// LoadConfig reads the user config file. A missing or unreadable file
// yields the zero config; a present but malformed file is ignored the same
// way, since preferences are never worth failing a command over.
func LoadConfig() *Config {
	cfg := &Config{}
	path, err := configPath()
	if err != nil {
		return cfg
	}
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return &Config{}
	}
	return cfg
}

// framework resolves the framework preference chain: flag, config file,
// built-in default.
func (c *Config) framework(flag string) string {
	if flag != "" {
		return flag
	}
	if c.Framework != "" {
		return c.Framework
	}
	return compile.DefaultFramework
}

// modelName resolves the model name preference chain.
func (c *Config) modelName(flag string) string {
	if flag != "" {
		return flag
	}
	if c.ModelName != "" {
		return c.ModelName
	}
	return compile.DefaultModelName
}

// inputShape resolves the input shape preference chain. Returns the raw
// string for the caller to parse, empty when neither source set one.
func (c *Config) inputShape(flag string) string {
	if flag != "" {
		return flag
	}
	return c.InputShape
}
