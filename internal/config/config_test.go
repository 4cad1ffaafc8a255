package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// loadFromString writes yaml to a temp file and loads it, failing the test
// on error.
func loadFromString(t *testing.T, yaml string) *Config {
	t.Helper()
	cfg, err := loadStringErr(t, yaml)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	return cfg
}

// loadStringErr writes yaml to a temp file and returns Load's result as-is.
func loadStringErr(t *testing.T, yaml string) (*Config, error) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(yaml), 0o644); err != nil {
		t.Fatalf("write temp config: %v", err)
	}
	return Load(path)
}

const validYAML = `
project: proj1
policies:
  - name: backup-failure-alert
    condition: FAILURE
    message: "A Backup and DR job has failed."
    notification_channels: "projects/p/notificationChannels/1, projects/p/notificationChannels/2"
  - name: backup-success-alert
    condition: SUCCESS
    message: "A Backup and DR job has completed."
    notification_channels: "projects/p/notificationChannels/1"
`

func TestLoad_Valid(t *testing.T) {
	cfg := loadFromString(t, validYAML)

	if cfg.Project != "proj1" {
		t.Errorf("project: got %q", cfg.Project)
	}
	if len(cfg.Policies) != 2 {
		t.Fatalf("policies: got %d, want 2", len(cfg.Policies))
	}
	p := cfg.Policies[0]
	if p.Name != "backup-failure-alert" {
		t.Errorf("name: got %q", p.Name)
	}
	if p.Condition != "FAILURE" {
		t.Errorf("condition: got %q", p.Condition)
	}
}

func TestLoad_Defaults(t *testing.T) {
	cfg := loadFromString(t, validYAML)

	if cfg.OutputDir != DefaultOutputDir {
		t.Errorf("default output_dir: got %q, want %q", cfg.OutputDir, DefaultOutputDir)
	}
	if cfg.StateDB != DefaultStateDB {
		t.Errorf("default state_db: got %q, want %q", cfg.StateDB, DefaultStateDB)
	}
	if len(cfg.JobCategories) != 0 {
		t.Errorf("job_categories should default to empty (generator applies its own default), got %v", cfg.JobCategories)
	}
}

func TestLoad_JobCategories(t *testing.T) {
	cfg := loadFromString(t, `
project: proj1
job_categories: [SCHEDULED_BACKUP, ON_DEMAND_BACKUP, RESTORE]
policies:
  - name: p
    condition: FAILURE
    message: m
    notification_channels: "ch1"
`)
	if len(cfg.JobCategories) != 3 || cfg.JobCategories[2] != "RESTORE" {
		t.Errorf("job_categories: got %v", cfg.JobCategories)
	}
}

func TestLoad_MissingProject(t *testing.T) {
	_, err := loadStringErr(t, `
policies:
  - name: p
    condition: FAILURE
    message: m
    notification_channels: "ch1"
`)
	if err == nil || !strings.Contains(err.Error(), "project is required") {
		t.Errorf("got %v, want project-required error", err)
	}
}

func TestLoad_NoPolicies(t *testing.T) {
	_, err := loadStringErr(t, `project: proj1`)
	if err == nil || !strings.Contains(err.Error(), "at least one policy") {
		t.Errorf("got %v, want no-policies error", err)
	}
}

func TestLoad_BadCondition(t *testing.T) {
	_, err := loadStringErr(t, `
project: proj1
policies:
  - name: p
    condition: failure
    message: m
    notification_channels: "ch1"
`)
	if err == nil || !strings.Contains(err.Error(), "must be FAILURE or SUCCESS") {
		t.Errorf("got %v, want condition validation error", err)
	}
}

func TestLoad_DuplicateName(t *testing.T) {
	_, err := loadStringErr(t, `
project: proj1
policies:
  - name: p
    condition: FAILURE
    message: m
    notification_channels: "ch1"
  - name: p
    condition: SUCCESS
    message: m
    notification_channels: "ch1"
`)
	if err == nil || !strings.Contains(err.Error(), "duplicated") {
		t.Errorf("got %v, want duplicate-name error", err)
	}
}

func TestLoad_EmptyChannels(t *testing.T) {
	_, err := loadStringErr(t, `
project: proj1
policies:
  - name: p
    condition: FAILURE
    message: m
    notification_channels: ""
`)
	if err == nil || !strings.Contains(err.Error(), "notification_channels is required") {
		t.Errorf("got %v, want channels-required error", err)
	}
}

func TestLoad_EmptyChannelSegment(t *testing.T) {
	_, err := loadStringErr(t, `
project: proj1
policies:
  - name: p
    condition: FAILURE
    message: m
    notification_channels: "ch1,, ch2"
`)
	if err == nil || !strings.Contains(err.Error(), "empty segment") {
		t.Errorf("got %v, want empty-segment error", err)
	}
}

func TestPolicy_Request(t *testing.T) {
	cfg := loadFromString(t, validYAML)
	req := cfg.Policies[0].Request(cfg.Project, cfg.JobCategories)

	if req.ProjectID != "proj1" {
		t.Errorf("project: got %q", req.ProjectID)
	}
	if req.PolicyName != "backup-failure-alert" {
		t.Errorf("policy name: got %q", req.PolicyName)
	}
	if req.Condition != "FAILURE" {
		t.Errorf("condition: got %q", req.Condition)
	}
}
