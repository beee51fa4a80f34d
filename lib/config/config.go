// Copyright 2026 The Terrapoint Authors
// SPDX-License-Identifier: Apache-2.0

// Package config provides configuration loading for Terrapoint
// binaries.
//
// Configuration is loaded from a single file specified by:
//   - TERRAPOINT_CONFIG environment variable, or
//   - -config flag passed to the command
//
// There are no fallbacks or automatic discovery; run parameters come
// from flags, and the config file carries only ambient settings (tool
// binary paths, the network interface for service configs, template
// overrides, the external tool timeout). When neither source names a
// file, defaults apply.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the ambient configuration for a Terrapoint run.
type Config struct {
	// Tools configures the external binaries the pipeline invokes.
	Tools ToolsConfig `yaml:"tools"`

	// Network configures address resolution for service configs.
	Network NetworkConfig `yaml:"network"`

	// Templates overrides the built-in artifact templates.
	Templates TemplatesConfig `yaml:"templates"`

	// ToolTimeout bounds each external invocation (e.g. "30m").
	// Empty means the built-in default.
	ToolTimeout string `yaml:"tool_timeout"`

	// AllowStale lets the bulk loader proceed against a descriptor
	// manifest generated by a different run.
	AllowStale bool `yaml:"allow_stale"`
}

// ToolsConfig names the external binaries. Paths may be bare names
// (resolved via PATH) or absolute.
type ToolsConfig struct {
	// Metadata is the point-cloud metadata extraction tool.
	Metadata string `yaml:"metadata"`

	// Ingest is the ingestion-pipeline tool, invoked once per
	// generated descriptor.
	Ingest string `yaml:"ingest"`

	// Psql, CreateDB and DropDB are the database client binaries.
	Psql     string `yaml:"psql"`
	CreateDB string `yaml:"createdb"`
	DropDB   string `yaml:"dropdb"`

	// Morton assigns grid/Morton codes; Hierarchy builds the
	// level-of-detail tree. Both read the generated service config.
	Morton    string `yaml:"morton"`
	Hierarchy string `yaml:"hierarchy"`
}

// NetworkConfig configures service-config address resolution.
type NetworkConfig struct {
	// Interface is the network interface whose address is written
	// into service configs. Empty selects the first non-loopback
	// interface with an IPv4 address.
	Interface string `yaml:"interface"`
}

// TemplatesConfig points at override template files. Empty fields use
// the built-in templates.
type TemplatesConfig struct {
	Descriptor    string `yaml:"descriptor"`
	PatchSchema   string `yaml:"patch_schema"`
	MetaSchema    string `yaml:"meta_schema"`
	Extensions    string `yaml:"extensions"`
	ProcessConfig string `yaml:"process_config"`
	ServiceConfig string `yaml:"service_config"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Tools: ToolsConfig{
			Metadata:  "lasinfo",
			Ingest:    "pdal",
			Psql:      "psql",
			CreateDB:  "createdb",
			DropDB:    "dropdb",
			Morton:    "terrapoint-morton",
			Hierarchy: "terrapoint-hierarchy",
		},
	}
}

// Load loads configuration from the explicit path, or from the
// TERRAPOINT_CONFIG environment variable when path is empty. When
// neither is set, the defaults are returned unchanged.
func Load(path string) (*Config, error) {
	if path == "" {
		path = os.Getenv("TERRAPOINT_CONFIG")
	}
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	cfg.expandVariables()
	if _, err := cfg.Timeout(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Timeout parses ToolTimeout. Zero means "use the built-in default".
func (c *Config) Timeout() (time.Duration, error) {
	if c.ToolTimeout == "" {
		return 0, nil
	}
	timeout, err := time.ParseDuration(c.ToolTimeout)
	if err != nil {
		return 0, fmt.Errorf("invalid tool_timeout %q: %w", c.ToolTimeout, err)
	}
	return timeout, nil
}

// expandVariables expands ${HOME} in template override paths for
// portability. Config values are otherwise taken literally.
func (c *Config) expandVariables() {
	home := os.Getenv("HOME")
	expand := func(path *string) {
		*path = strings.ReplaceAll(*path, "${HOME}", home)
	}
	expand(&c.Templates.Descriptor)
	expand(&c.Templates.PatchSchema)
	expand(&c.Templates.MetaSchema)
	expand(&c.Templates.Extensions)
	expand(&c.Templates.ProcessConfig)
	expand(&c.Templates.ServiceConfig)
}
