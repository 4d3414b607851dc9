// Package config loads the converter settings from YAML and the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"layout-converter/internal/common"
	"layout-converter/internal/pack"
)

// Environment variables overriding the config file.
const (
	EnvSchema     = "LAYOUT_CONVERTER_SCHEMA"
	EnvScratchDir = "LAYOUT_CONVERTER_SCRATCH_DIR"
	EnvMDXAddr    = "LAYOUT_CONVERTER_MDX_ADDR"
	EnvMDXCommand = "LAYOUT_CONVERTER_MDX_COMMAND"
)

// Defaults of the MDX parse server.
const (
	DefaultMDXAddr    = "http://localhost:6161"
	DefaultMDXTimeout = 10 * time.Second
)

// Config holds every setting of a converter run.
type Config struct {
	// Schema is the path of the container schema; empty means the embedded one.
	Schema     string   `yaml:"schema,omitempty"`
	Separators []string `yaml:"separators"`
	ContentDir string   `yaml:"contentDir"`
	PacksDir   string   `yaml:"packsDir"`
	LayoutsDir string   `yaml:"layoutsDir"`
	ScratchDir string   `yaml:"scratchDir,omitempty"`
	Exclude    []string `yaml:"exclude,omitempty"`
	MDX        MDX      `yaml:"mdx"`
}

// MDX configures README verification.
type MDX struct {
	Addr string `yaml:"addr"`
	// Command starts a local parse server; empty means Addr is already served.
	Command []string      `yaml:"command,omitempty"`
	Timeout time.Duration `yaml:"timeout"`
}

// Default returns the settings used when no file is given.
func Default() *Config {
	return &Config{
		Separators: append([]string(nil), common.DefaultSeparators...),
		ContentDir: pack.DefaultContentDir,
		PacksDir:   pack.DefaultPacksDir,
		LayoutsDir: pack.DefaultLayoutsDir,
		MDX: MDX{
			Addr:    DefaultMDXAddr,
			Timeout: DefaultMDXTimeout,
		},
	}
}

// LoadFile reads a YAML config on top of the defaults. A missing file yields
// the defaults.
func LoadFile(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}

		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}

	err = yaml.Unmarshal(data, cfg)
	if err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	err = cfg.Validate()
	if err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}

	return cfg, nil
}

// ApplyEnv overrides settings from the environment. lookup is usually os.LookupEnv.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) {
	if v, ok := lookupTrimmed(lookup, EnvSchema); ok {
		c.Schema = v
	}

	if v, ok := lookupTrimmed(lookup, EnvScratchDir); ok {
		c.ScratchDir = v
	}

	if v, ok := lookupTrimmed(lookup, EnvMDXAddr); ok {
		c.MDX.Addr = v
	}

	if v, ok := lookupTrimmed(lookup, EnvMDXCommand); ok {
		c.MDX.Command = strings.Fields(v)
	}
}

func lookupTrimmed(lookup func(string) (string, bool), key string) (string, bool) {
	v, ok := lookup(key)
	if !ok {
		return "", false
	}

	v = strings.TrimSpace(v)

	return v, v != ""
}

// Validate rejects settings no run could use.
func (c *Config) Validate() error {
	var errs []error

	if len(c.Separators) == 0 {
		errs = append(errs, errors.New("separators must not be empty"))
	}

	for _, s := range c.Separators {
		if s == "" {
			errs = append(errs, errors.New("separators must not contain an empty string"))
			break
		}
	}

	if c.ContentDir == "" || c.PacksDir == "" || c.LayoutsDir == "" {
		errs = append(errs, errors.New("contentDir, packsDir and layoutsDir must be set"))
	}

	if c.MDX.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("mdx timeout must be positive, got %s", c.MDX.Timeout))
	}

	return errors.Join(errs...)
}

// Shape returns the pack directory shape.
func (c *Config) Shape() pack.Shape {
	return pack.Shape{ContentDir: c.ContentDir, PacksDir: c.PacksDir}
}
