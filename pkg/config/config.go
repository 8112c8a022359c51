package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Config holds all configuration options for caliper.
type Config struct {
	// Analysis settings consumed by the engine
	Analysis AnalysisConfig `koanf:"analysis"`

	// File exclusion applied while building the tree
	Exclude ExcludeConfig `koanf:"exclude"`

	// Output settings for the CLI
	Output OutputConfig `koanf:"output"`

	// Cache controls the on-disk result cache
	Cache CacheConfig `koanf:"cache"`
}

// AnalysisConfig controls how much per-file work the engine does.
type AnalysisConfig struct {
	// Depth is one of quick, standard, deep.
	Depth string `koanf:"depth"`

	// MaxFileSizeForContentScan is the byte threshold above which pattern
	// and security scanners skip content inspection for a file.
	MaxFileSizeForContentScan int64 `koanf:"max_file_size_for_content_scan"`

	// Workers bounds per-file concurrency. Zero means twice the CPU count.
	Workers int `koanf:"workers"`
}

// ExcludeConfig defines what the scanner leaves out of the tree.
type ExcludeConfig struct {
	Patterns   []string `koanf:"patterns"`
	Extensions []string `koanf:"extensions"`
	Dirs       []string `koanf:"dirs"`
	Gitignore  bool     `koanf:"gitignore"`
}

// OutputConfig controls output formatting.
type OutputConfig struct {
	Format string `koanf:"format"` // text, json, markdown, toon
	Color  bool   `koanf:"color"`
	Quiet  bool   `koanf:"quiet"`
}

// CacheConfig controls result caching between runs. An empty Dir means the
// per-user default cache location.
type CacheConfig struct {
	Enabled  bool   `koanf:"enabled"`
	Dir      string `koanf:"dir"`
	TTLHours int    `koanf:"ttl_hours"`
}

// DefaultConfig returns a config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Analysis: AnalysisConfig{
			Depth:                     "standard",
			MaxFileSizeForContentScan: 1 << 20, // 1 MiB
			Workers:                   0,
		},
		Exclude: ExcludeConfig{
			Patterns: []string{
				"*.min.js",
				"*.min.css",
				"*.map",
			},
			Extensions: []string{
				".lock",
				".sum",
			},
			Dirs: []string{
				".git",
				".hg",
				".svn",
				"node_modules",
				"__pycache__",
				"venv",
				".venv",
				"env",
				"vendor",
				"dist",
				"build",
				"target",
				"coverage",
				".idea",
				".vscode",
				".caliper",
			},
			Gitignore: true,
		},
		Output: OutputConfig{
			Format: "text",
			Color:  true,
		},
		Cache: CacheConfig{
			Enabled:  true,
			TTLHours: 24,
		},
	}
}

// Load loads configuration from a file and validates it.
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	cfg := DefaultConfig()

	var parser koanf.Parser
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		parser = toml.Parser()
	case ".yaml", ".yml":
		parser = yaml.Parser()
	case ".json":
		parser = json.Parser()
	default:
		parser = toml.Parser()
	}

	if err := k.Load(file.Provider(path), parser); err != nil {
		return nil, fmt.Errorf("load config %s: %w", path, err)
	}

	if err := validateRaw(k.Raw()); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}

	return cfg, nil
}

// LoadOrDefault tries standard config locations and falls back to defaults.
func LoadOrDefault() *Config {
	names := []string{
		"caliper.toml",
		"caliper.yaml",
		"caliper.yml",
		"caliper.json",
		".caliper.toml",
		".caliper.yaml",
		".caliper.yml",
		".caliper.json",
	}

	for _, dir := range []string{".", ".caliper"} {
		for _, name := range names {
			path := filepath.Join(dir, name)
			if _, err := os.Stat(path); err == nil {
				if cfg, err := Load(path); err == nil {
					return cfg
				}
			}
		}
	}

	return DefaultConfig()
}

// ShouldExclude checks if a path should be left out of the tree. Paths
// are slash-separated and relative, matching how trees store them.
func (c *Config) ShouldExclude(path string) bool {
	for _, dir := range c.Exclude.Dirs {
		if strings.Contains(path, "/"+dir+"/") || strings.HasPrefix(path, dir+"/") {
			return true
		}
	}

	ext := filepath.Ext(path)
	for _, excludeExt := range c.Exclude.Extensions {
		if ext == excludeExt {
			return true
		}
	}

	base := filepath.Base(path)
	for _, pattern := range c.Exclude.Patterns {
		if matched, _ := filepath.Match(pattern, base); matched {
			return true
		}
	}

	return false
}
