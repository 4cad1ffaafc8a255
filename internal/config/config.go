package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/backupwatch/backupwatch/internal/policy"
)

// Default values applied when fields are absent from the config file.
const (
	DefaultOutputDir = "out"
	DefaultStateDB   = "backupwatch.db"
)

// Config is the top-level configuration.
// Fields map 1:1 to config.example.yaml.
type Config struct {
	// Project is the cloud project identifier the policies are created in.
	Project string `yaml:"project"`

	// OutputDir is where the rendered Terraform JSON document is written.
	OutputDir string `yaml:"output_dir"`

	// StateDB is the path of the SQLite workspace state database.
	StateDB string `yaml:"state_db"`

	// JobCategories is the job-category set matched by every policy filter.
	// Empty means the built-in default (SCHEDULED_BACKUP, ON_DEMAND_BACKUP).
	// RESTORE is valid here for deployments that alert on restore jobs too.
	JobCategories []string `yaml:"job_categories"`

	// Policies is the list of alert policies to generate.
	Policies []Policy `yaml:"policies"`
}

// Policy describes one alert policy to generate.
type Policy struct {
	// Name is the policy display name and the workspace key for its
	// state record. Must be unique within the file.
	Name string `yaml:"name"`

	// Condition is "FAILURE" or "SUCCESS", case-sensitive.
	Condition string `yaml:"condition"`

	// Message is the markdown header of the alert documentation.
	Message string `yaml:"message"`

	// NotificationChannels is a comma-separated list of notification
	// channel resource paths, as printed by the channel-listing tool.
	NotificationChannels string `yaml:"notification_channels"`
}

// Request converts a config policy into a generator request.
func (p Policy) Request(project string, categories []string) policy.Request {
	return policy.Request{
		ProjectID:              project,
		Condition:              p.Condition,
		PolicyName:             p.Name,
		CustomMessage:          p.Message,
		NotificationChannelIDs: p.NotificationChannels,
		JobCategories:          categories,
	}
}

// Load reads, parses, and validates the config file at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read file: %w", err)
	}

	cfg := defaults()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parse yaml: %w", err)
	}

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	return cfg, nil
}

// defaults returns a Config pre-populated with default values.
func defaults() *Config {
	return &Config{
		OutputDir: DefaultOutputDir,
		StateDB:   DefaultStateDB,
	}
}

// validate checks required fields and structural constraints.
func validate(cfg *Config) error {
	if cfg.Project == "" {
		return fmt.Errorf("project is required")
	}
	if len(cfg.Policies) == 0 {
		return fmt.Errorf("at least one policy is required")
	}

	seen := make(map[string]bool, len(cfg.Policies))
	for i, p := range cfg.Policies {
		if p.Name == "" {
			return fmt.Errorf("policies[%d].name is required", i)
		}
		if seen[p.Name] {
			return fmt.Errorf("policies[%d].name %q is duplicated", i, p.Name)
		}
		seen[p.Name] = true

		if _, err := policy.ParseCondition(p.Condition); err != nil {
			return fmt.Errorf("policies[%d] (%s): %w", i, p.Name, err)
		}
		if p.Message == "" {
			return fmt.Errorf("policies[%d] (%s): message is required", i, p.Name)
		}
		if p.NotificationChannels == "" {
			return fmt.Errorf("policies[%d] (%s): notification_channels is required", i, p.Name)
		}
		for _, ch := range policy.SplitChannels(p.NotificationChannels) {
			if ch == "" {
				return fmt.Errorf("policies[%d] (%s): notification_channels contains an empty segment", i, p.Name)
			}
		}
	}

	return nil
}
