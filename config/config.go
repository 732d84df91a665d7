// Package config loads and validates the sweep configuration.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/moepig/tagsweep/tagpolicy"
)

const (
	defaultHomeRegion      = "us-east-1"
	defaultRegionBatchSize = 5
	defaultInterTagDelay   = 100
	defaultMaxAttempts     = 3
	defaultRetryBaseDelay  = 1000
)

// Default returns the compiled-in configuration.
func Default() *Config {
	return &Config{
		HomeRegion: defaultHomeRegion,
		DesiredTags: map[string]string{
			"ManagedBy": "tagsweep",
		},
		Mode:             string(tagpolicy.ModeUnionOverwrite),
		RegionBatchSize:  defaultRegionBatchSize,
		InterTagDelayMS:  defaultInterTagDelay,
		MaxAttempts:      defaultMaxAttempts,
		RetryBaseDelayMS: defaultRetryBaseDelay,
	}
}

// Load reads a yaml file over the defaults and validates the result.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	slog.Debug("Read config file", "path", path)

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// ResolveHomeRegion applies the environment variable precedence over the
// loaded value.
func (c *Config) ResolveHomeRegion() string {
	if region := os.Getenv("TAGSWEEP_HOME_REGION"); region != "" {
		return region
	}
	if region := os.Getenv("AWS_REGION"); region != "" {
		return region
	}
	return c.HomeRegion
}

// PolicyMode returns the merge policy as its typed form.
func (c *Config) PolicyMode() tagpolicy.Mode {
	return tagpolicy.Mode(c.Mode)
}

// InterTagDelay returns the inter-operation delay as a duration.
func (c *Config) InterTagDelay() time.Duration {
	return time.Duration(c.InterTagDelayMS) * time.Millisecond
}

// RetryBaseDelay returns the first retry wait as a duration.
func (c *Config) RetryBaseDelay() time.Duration {
	return time.Duration(c.RetryBaseDelayMS) * time.Millisecond
}

func validate(cfg *Config) error {
	if len(cfg.DesiredTags) == 0 {
		return fmt.Errorf("at least one desired tag must be defined")
	}
	for k := range cfg.DesiredTags {
		if k == "" {
			return fmt.Errorf("desired tag keys must not be empty")
		}
	}
	if !cfg.PolicyMode().Valid() {
		return fmt.Errorf("mode must be %q or %q, got %q",
			tagpolicy.ModeUnionOverwrite, tagpolicy.ModeSelective, cfg.Mode)
	}
	if cfg.RegionBatchSize < 1 {
		return fmt.Errorf("region_batch_size must be at least 1")
	}
	if cfg.MaxAttempts < 1 {
		return fmt.Errorf("max_attempts must be at least 1")
	}
	if cfg.InterTagDelayMS < 0 {
		return fmt.Errorf("inter_tag_delay_ms must not be negative")
	}
	if cfg.RetryBaseDelayMS < 0 {
		return fmt.Errorf("retry_base_delay_ms must not be negative")
	}
	return nil
}
