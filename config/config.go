// Package config holds the settings for a twoword session. Values come
// from built-in defaults, then an optional YAML file, then TWOWORD_*
// environment variables; command-line flags are applied last by the
// caller.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/caarlos0/env/v11"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"

	"github.com/nathoo/twoword/engine/output"
	"github.com/nathoo/twoword/engine/rules"
)

// EnvPrefix prefixes every environment variable read by Load.
const EnvPrefix = "TWOWORD_"

// Config is the full set of session settings.
type Config struct {
	Story       string `yaml:"story" env:"STORY"`
	StoryDir    string `yaml:"story_dir" env:"STORY_DIR"` // Lua story directory; overrides Story
	Width       int    `yaml:"width" env:"WIDTH"`
	Prompt      string `yaml:"prompt" env:"PROMPT"` // replaces the story's prompt when set
	MatchPolicy string `yaml:"match_policy" env:"MATCH_POLICY"`
	Plain       bool   `yaml:"plain" env:"PLAIN"`
	Log         Log    `yaml:"log" envPrefix:"LOG_"`
}

// Log configures the session logger.
type Log struct {
	Level string `yaml:"level" env:"LEVEL"`
	File  string `yaml:"file" env:"FILE"` // empty means stderr
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Story:       "demo",
		Width:       output.DefaultWidth,
		MatchPolicy: rules.HighestPriority.String(),
		Log:         Log{Level: "info"},
	}
}

// Load returns the defaults overlaid with the YAML file at path (if path
// is not empty) and then with the environment. The result is not
// validated.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("read config: %w", err)
		}
		if err := decodeYAML(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	if err := env.ParseWithOptions(&cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return cfg, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}

// decodeYAML decodes a single document, rejecting unknown keys. An empty
// file leaves cfg untouched.
func decodeYAML(data []byte, cfg *Config) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return err
	}
	return nil
}

// Validate reports every setting that cannot be used.
func (c Config) Validate() error {
	var errs []error
	if c.Width <= 0 {
		errs = append(errs, fmt.Errorf("width must be positive, got %d", c.Width))
	}
	if _, err := c.Policy(); err != nil {
		errs = append(errs, err)
	}
	if _, err := c.Level(); err != nil {
		errs = append(errs, err)
	}
	if c.StoryDir == "" && strings.TrimSpace(c.Story) == "" {
		errs = append(errs, errors.New("no story selected"))
	}
	return errors.Join(errs...)
}

// Policy returns the configured rule selection policy.
func (c Config) Policy() (rules.Policy, error) {
	return rules.ParsePolicy(c.MatchPolicy)
}

// Level returns the configured log level.
func (c Config) Level() (zapcore.Level, error) {
	lvl, err := zapcore.ParseLevel(c.Log.Level)
	if err != nil {
		return lvl, fmt.Errorf("log level: %w", err)
	}
	return lvl, nil
}
