// Package config loads and validates the engine's tunables: compiled-in
// defaults, optionally overridden by a YAML file and by environment
// variables, in that priority order (CLI flags, applied by cmd/wikihumanpath,
// take precedence over all of this).
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds every tunable named in SPEC_FULL.md §6.
type Config struct {
	HardTimeout           time.Duration `yaml:"hard_timeout"`
	SoftTimeoutMargin     time.Duration `yaml:"soft_timeout_margin"`
	MaxNodesVisited       int           `yaml:"max_nodes_visited"`
	MaxStepCount          int           `yaml:"max_step_count"`
	BatchSize             int           `yaml:"batch_size"`
	MaxCandidatesToCheck  int           `yaml:"max_candidates_to_check"`
	MaxDegree             int           `yaml:"max_degree"`
	CategoryBatchSize     int           `yaml:"category_batch_size"`
	ConcurrentRequests    int           `yaml:"concurrent_requests"`
	RequestsPerSecond     float64       `yaml:"requests_per_second"`
	MaxFetchBatches       int           `yaml:"max_fetch_batches"`
	MinHumansForEarlyExit int           `yaml:"min_humans_for_early_exit"`
	BatchCheckTimeout     time.Duration `yaml:"batch_check_timeout"`
	FallbackNodeCap       int           `yaml:"fallback_node_cap"`
	CacheFlushInterval    time.Duration `yaml:"cache_flush_interval"`
	CategoryCacheSize     int           `yaml:"category_cache_size"`
	PageCacheSize         int           `yaml:"page_cache_size"`
	BacklinkCacheSize     int           `yaml:"backlink_cache_size"`

	CacheDir   string `yaml:"cache_dir"`
	UserAgent  string `yaml:"user_agent"`
	RulesFile  string `yaml:"rules_file"`
	LogLevel   string `yaml:"log_level"`
	RandomSeed int64  `yaml:"random_seed"`
}

// Default returns the compiled-in baseline: a value inside every range
// SPEC_FULL.md §6 gives for a tunable.
func Default() Config {
	return Config{
		HardTimeout:           70 * time.Second,
		SoftTimeoutMargin:     5 * time.Second,
		MaxNodesVisited:       4000,
		MaxStepCount:          200,
		BatchSize:             20,
		MaxCandidatesToCheck:  180,
		MaxDegree:             28,
		CategoryBatchSize:     20,
		ConcurrentRequests:    12,
		RequestsPerSecond:     8,
		MaxFetchBatches:       3,
		MinHumansForEarlyExit: 28,
		BatchCheckTimeout:     20 * time.Second,
		FallbackNodeCap:       18,
		CacheFlushInterval:    30 * time.Second,
		CategoryCacheSize:     50000,
		PageCacheSize:         20000,
		BacklinkCacheSize:     20000,
		CacheDir:              "./.wikihumanpath-cache",
		UserAgent:             "wikihumanpath/1.0 (https://github.com/wikihumanpath/wikihumanpath; contact: ops@wikihumanpath.example)",
		LogLevel:              "info",
		RandomSeed:            0,
	}
}

// Load builds a Config from defaults, overlaying a YAML file (if path is
// non-empty) and then environment variables (WIKIHUMANPATH_*), and
// validates the result.
func Load(yamlPath string) (Config, error) {
	cfg := Default()

	if yamlPath != "" {
		data, err := os.ReadFile(yamlPath)
		if err != nil {
			return Config{}, fmt.Errorf("config: read %q: %w", yamlPath, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("config: parse %q: %w", yamlPath, err)
		}
	}

	applyEnvOverrides(&cfg)

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	envDuration("WIKIHUMANPATH_HARD_TIMEOUT", &cfg.HardTimeout)
	envDuration("WIKIHUMANPATH_SOFT_TIMEOUT_MARGIN", &cfg.SoftTimeoutMargin)
	envInt("WIKIHUMANPATH_MAX_NODES_VISITED", &cfg.MaxNodesVisited)
	envInt("WIKIHUMANPATH_MAX_STEP_COUNT", &cfg.MaxStepCount)
	envInt("WIKIHUMANPATH_BATCH_SIZE", &cfg.BatchSize)
	envInt("WIKIHUMANPATH_MAX_CANDIDATES_TO_CHECK", &cfg.MaxCandidatesToCheck)
	envInt("WIKIHUMANPATH_MAX_DEGREE", &cfg.MaxDegree)
	envInt("WIKIHUMANPATH_CATEGORY_BATCH_SIZE", &cfg.CategoryBatchSize)
	envInt("WIKIHUMANPATH_CONCURRENT_REQUESTS", &cfg.ConcurrentRequests)
	envFloat("WIKIHUMANPATH_REQUESTS_PER_SECOND", &cfg.RequestsPerSecond)
	envInt("WIKIHUMANPATH_MAX_FETCH_BATCHES", &cfg.MaxFetchBatches)
	envInt("WIKIHUMANPATH_MIN_HUMANS_FOR_EARLY_EXIT", &cfg.MinHumansForEarlyExit)
	envDuration("WIKIHUMANPATH_BATCH_CHECK_TIMEOUT", &cfg.BatchCheckTimeout)
	envInt("WIKIHUMANPATH_FALLBACK_NODE_CAP", &cfg.FallbackNodeCap)
	envDuration("WIKIHUMANPATH_CACHE_FLUSH_INTERVAL", &cfg.CacheFlushInterval)
	envString("WIKIHUMANPATH_CACHE_DIR", &cfg.CacheDir)
	envString("WIKIHUMANPATH_USER_AGENT", &cfg.UserAgent)
	envString("WIKIHUMANPATH_RULES_FILE", &cfg.RulesFile)
	envString("WIKIHUMANPATH_LOG_LEVEL", &cfg.LogLevel)
}

func envString(key string, dst *string) {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		*dst = v
	}
}

func envInt(key string, dst *int) {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func envFloat(key string, dst *float64) {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			*dst = f
		}
	}
}

func envDuration(key string, dst *time.Duration) {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			*dst = d
		}
	}
}

// Validate rejects out-of-range tunables at startup rather than letting a
// bad value surface mid-search.
func (c Config) Validate() error {
	type check struct {
		name string
		ok   bool
	}
	checks := []check{
		{"hard_timeout", c.HardTimeout > 0},
		{"soft_timeout_margin", c.SoftTimeoutMargin >= 0 && c.SoftTimeoutMargin < c.HardTimeout},
		{"max_nodes_visited", c.MaxNodesVisited > 0},
		{"max_step_count", c.MaxStepCount > 0},
		{"batch_size", c.BatchSize > 0},
		{"max_candidates_to_check", c.MaxCandidatesToCheck > 0},
		{"max_degree", c.MaxDegree > 0},
		{"category_batch_size", c.CategoryBatchSize > 0},
		{"concurrent_requests", c.ConcurrentRequests > 0},
		{"requests_per_second", c.RequestsPerSecond > 0},
		{"max_fetch_batches", c.MaxFetchBatches > 0},
		{"min_humans_for_early_exit", c.MinHumansForEarlyExit > 0},
		{"batch_check_timeout", c.BatchCheckTimeout > 0},
		{"fallback_node_cap", c.FallbackNodeCap > 0},
		{"cache_flush_interval", c.CacheFlushInterval > 0},
		{"cache_dir", c.CacheDir != ""},
		{"user_agent", c.UserAgent != ""},
	}
	for _, ch := range checks {
		if !ch.ok {
			return fmt.Errorf("config: invalid %s=%v", ch.name, fieldValue(c, ch.name))
		}
	}
	return nil
}

// fieldValue is a small debug helper so Validate's error message carries the
// offending value without a reflect-based formatter.
func fieldValue(c Config, name string) any {
	switch name {
	case "hard_timeout":
		return c.HardTimeout
	case "soft_timeout_margin":
		return c.SoftTimeoutMargin
	case "max_nodes_visited":
		return c.MaxNodesVisited
	case "max_step_count":
		return c.MaxStepCount
	case "batch_size":
		return c.BatchSize
	case "max_candidates_to_check":
		return c.MaxCandidatesToCheck
	case "max_degree":
		return c.MaxDegree
	case "category_batch_size":
		return c.CategoryBatchSize
	case "concurrent_requests":
		return c.ConcurrentRequests
	case "requests_per_second":
		return c.RequestsPerSecond
	case "max_fetch_batches":
		return c.MaxFetchBatches
	case "min_humans_for_early_exit":
		return c.MinHumansForEarlyExit
	case "batch_check_timeout":
		return c.BatchCheckTimeout
	case "fallback_node_cap":
		return c.FallbackNodeCap
	case "cache_flush_interval":
		return c.CacheFlushInterval
	case "cache_dir":
		return c.CacheDir
	case "user_agent":
		return c.UserAgent
	default:
		return nil
	}
}
