// Package config loads runtime configuration with koanf, layered as
// defaults < config file < environment < flags.
package config

import (
	"fmt"
	"strings"

	"github.com/knadh/koanf/parsers/toml/v2"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

// Config holds all settings for the cascade analyzer.
type Config struct {
	Graph         string  `koanf:"graph"`          // path to the graph JSON document
	Source        string  `koanf:"source"`         // failing node id
	MaxDepth      int     `koanf:"max-depth"`      // propagation depth bound
	MaxPaths      int     `koanf:"max-paths"`      // enumeration safety cap
	MaxCandidates int     `koanf:"max-candidates"` // mitigation candidate cap
	Workers       int     `koanf:"workers"`        // parallel candidate evaluations
	HubThreshold  int     `koanf:"hub-threshold"`  // structural scan fan-out threshold
	PathWeight    float64 `koanf:"path-weight"`    // risk weighting: path reduction share
	NodeWeight    float64 `koanf:"node-weight"`    // risk weighting: affected-node share
	WebMode       bool    `koanf:"web"`
	Port          int     `koanf:"port"`
	Watch         bool    `koanf:"watch"`
	JSONOutput    bool    `koanf:"json"` // print the raw report document instead of the console view
	Verbose       bool    `koanf:"verbose"`
}

// Load assembles configuration from defaults, an optional cascade.toml,
// CASCADE_-prefixed environment variables, and flags.
// Priority: flags > env > file > defaults.
func Load(f *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	defaults := map[string]interface{}{
		"graph":          "graph.json",
		"source":         "",
		"max-depth":      3,
		"max-paths":      10000,
		"max-candidates": 50,
		"workers":        0,
		"hub-threshold":  3,
		"path-weight":    0.6,
		"node-weight":    0.4,
		"web":            false,
		"port":           8080,
		"watch":          false,
		"json":           false,
		"verbose":        false,
	}
	if err := k.Load(makeMapProvider(defaults), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// Optional config file; absence is not an error.
	_ = k.Load(file.Provider("cascade.toml"), toml.Parser())

	// CASCADE_MAX_DEPTH=5 -> max-depth. Underscores separate words
	// within a key, so they map to hyphens rather than nesting.
	if err := k.Load(env.Provider("CASCADE_", ".", func(s string) string {
		return strings.ReplaceAll(strings.ToLower(
			strings.TrimPrefix(s, "CASCADE_")), "_", "-")
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	if f != nil {
		if err := k.Load(posflag.Provider(f, ".", k), nil); err != nil {
			return nil, fmt.Errorf("failed to load flags: %w", err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if cfg.PathWeight < 0 || cfg.NodeWeight < 0 {
		return nil, fmt.Errorf("risk weights must be non-negative (path=%g, node=%g)", cfg.PathWeight, cfg.NodeWeight)
	}

	return &cfg, nil
}

// mapProvider serves a plain map as a koanf provider.
type mapProvider struct {
	m map[string]interface{}
}

func makeMapProvider(m map[string]interface{}) *mapProvider {
	return &mapProvider{m: m}
}

func (p *mapProvider) Read() (map[string]interface{}, error) {
	return p.m, nil
}

func (p *mapProvider) ReadBytes() ([]byte, error) {
	return nil, fmt.Errorf("not implemented")
}
