package apply

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/backupwatch/backupwatch/internal/config"
	"github.com/backupwatch/backupwatch/internal/policy"
	"github.com/backupwatch/backupwatch/internal/render"
	"github.com/backupwatch/backupwatch/internal/state"
)

// OutputFile is the name of the rendered Terraform document.
const OutputFile = "backup_alert_policies.tf.json"

// Applier runs the generate→render→record pipeline for one config.
type Applier struct {
	cfg   *config.Config
	store state.Store
}

// Result summarizes one successful run.
type Result struct {
	// Path is where the Terraform document was written.
	Path string

	// Changed lists workspaces whose fingerprint differs from the stored
	// record (including first-time applies).
	Changed []string

	// Unchanged lists workspaces re-applied with an identical fingerprint.
	Unchanged []string
}

// New creates an Applier. The store is injected so the CLI can use SQLite
// while tests and dry runs use the in-memory implementation.
func New(cfg *config.Config, store state.Store) *Applier {
	return &Applier{cfg: cfg, store: store}
}

// Run executes one apply cycle.
func (a *Applier) Run(ctx context.Context) (Result, error) {
	policies := make([]policy.Policy, 0, len(a.cfg.Policies))
	for _, pc := range a.cfg.Policies {
		p, err := policy.Generate(pc.Request(a.cfg.Project, a.cfg.JobCategories))
		if err != nil {
			return Result{}, fmt.Errorf("apply: policy %s: %w", pc.Name, err)
		}
		policies = append(policies, p)
	}

	doc, err := render.TerraformJSON(policies)
	if err != nil {
		return Result{}, fmt.Errorf("apply: %w", err)
	}

	if err := os.MkdirAll(a.cfg.OutputDir, 0o755); err != nil {
		return Result{}, fmt.Errorf("apply: create output dir: %w", err)
	}
	path := filepath.Join(a.cfg.OutputDir, OutputFile)
	if err := os.WriteFile(path, doc, 0o644); err != nil {
		return Result{}, fmt.Errorf("apply: write %s: %w", path, err)
	}

	res := Result{Path: path}
	for i, p := range policies {
		ws := Workspace(p.DisplayName)
		fp, err := fingerprint(p)
		if err != nil {
			return Result{}, fmt.Errorf("apply: fingerprint %s: %w", p.DisplayName, err)
		}

		prev, existed, err := a.store.Get(ctx, ws)
		if err != nil {
			return Result{}, fmt.Errorf("apply: %w", err)
		}

		rec := state.Record{
			Workspace:   ws,
			PolicyName:  p.DisplayName,
			Condition:   a.cfg.Policies[i].Condition,
			Fingerprint: fp,
		}
		if err := a.store.Put(ctx, rec); err != nil {
			return Result{}, fmt.Errorf("apply: %w", err)
		}

		if existed && prev.Fingerprint == fp {
			res.Unchanged = append(res.Unchanged, ws)
			slog.Info("apply: workspace unchanged", "workspace", ws)
		} else {
			res.Changed = append(res.Changed, ws)
			slog.Info("apply: workspace updated",
				"workspace", ws,
				"condition", rec.Condition,
				"first_apply", !existed,
			)
		}
	}

	slog.Info("apply: wrote terraform document",
		"path", path,
		"policies", len(policies),
	)
	return res, nil
}

// Workspace derives the state partition key for a policy. Policy names are
// unique per config, so the name itself is the key; the reference
// deployment ends up with one workspace per condition type.
func Workspace(policyName string) string {
	return policyName
}

// fingerprint hashes a policy's API rendering. Rendering is deterministic,
// so equal policies always hash equal.
func fingerprint(p policy.Policy) (string, error) {
	doc, err := render.APIJSON(p)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(doc)
	return hex.EncodeToString(sum[:]), nil
}
