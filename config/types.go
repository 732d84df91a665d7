package config

// Config drives one sweep run. Every field has a compiled default; a yaml
// file only overrides what it sets.
type Config struct {
	// HomeRegion is the region used for global API calls. The
	// TAGSWEEP_HOME_REGION and AWS_REGION environment variables take
	// precedence over the file value.
	HomeRegion string `yaml:"home_region"`

	// DesiredTags is the standardized tag set applied to every resource.
	DesiredTags map[string]string `yaml:"desired_tags"`

	// Mode is the merge policy: "union-overwrite" or "selective".
	Mode string `yaml:"mode"`

	// TagFilters restricts the bulk discovery to resources carrying these
	// tag values. Empty means every taggable resource.
	TagFilters map[string]string `yaml:"tag_filters"`

	// RegionBatchSize is how many regions are discovered concurrently.
	RegionBatchSize int `yaml:"region_batch_size"`

	// InterTagDelayMS is the pause between consecutive tag operations.
	InterTagDelayMS int `yaml:"inter_tag_delay_ms"`

	// MaxAttempts bounds retries of one tag operation, first try included.
	MaxAttempts int `yaml:"max_attempts"`

	// RetryBaseDelayMS is the wait before the second attempt; it doubles
	// after every further failure.
	RetryBaseDelayMS int `yaml:"retry_base_delay_ms"`
}
