package render

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/backupwatch/backupwatch/internal/policy"
)

func genPolicy(t *testing.T, condition string) policy.Policy {
	t.Helper()
	p, err := policy.Generate(policy.Request{
		ProjectID:              "proj1",
		Condition:              condition,
		PolicyName:             "backup-failure-alert",
		CustomMessage:          "A job event occurred.",
		NotificationChannelIDs: "ch1, ch2",
	})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	return p
}

func TestTerraformJSON_Shape(t *testing.T) {
	out, err := TerraformJSON([]policy.Policy{genPolicy(t, "FAILURE")})
	if err != nil {
		t.Fatalf("TerraformJSON: %v", err)
	}

	var doc map[string]map[string]map[string]map[string]any
	if err := json.Unmarshal(out, &doc); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}

	res, ok := doc["resource"]["google_monitoring_alert_policy"]["backup_failure_alert"]
	if !ok {
		t.Fatalf("missing resource block, got: %s", out)
	}
	if res["combiner"] != "OR" {
		t.Errorf("combiner: got %v", res["combiner"])
	}
	if res["enabled"] != true {
		t.Errorf("enabled: got %v", res["enabled"])
	}
	if res["severity"] != "ERROR" {
		t.Errorf("severity: got %v", res["severity"])
	}
	if res["project"] != "proj1" {
		t.Errorf("project: got %v", res["project"])
	}
}

func TestTerraformJSON_SuccessOmitsSeverity(t *testing.T) {
	p := genPolicy(t, "SUCCESS")
	p.DisplayName = "backup-success-alert"

	out, err := TerraformJSON([]policy.Policy{p})
	if err != nil {
		t.Fatalf("TerraformJSON: %v", err)
	}
	if strings.Contains(string(out), `"severity"`) {
		t.Errorf("success policy must not carry a severity field:\n%s", out)
	}
}

func TestTerraformJSON_Deterministic(t *testing.T) {
	ps := []policy.Policy{genPolicy(t, "FAILURE")}

	a, err := TerraformJSON(ps)
	if err != nil {
		t.Fatalf("TerraformJSON: %v", err)
	}
	b, err := TerraformJSON(ps)
	if err != nil {
		t.Fatalf("TerraformJSON: %v", err)
	}
	if !bytes.Equal(a, b) {
		t.Error("identical input rendered to different bytes")
	}
}

func TestTerraformJSON_DuplicateLabel(t *testing.T) {
	a := genPolicy(t, "FAILURE")
	b := genPolicy(t, "SUCCESS")
	// Different display names that sanitize to the same label.
	a.DisplayName = "backup alert"
	b.DisplayName = "backup-alert"

	if _, err := TerraformJSON([]policy.Policy{a, b}); err == nil {
		t.Error("expected duplicate-label error")
	}
}

func TestAPIJSON(t *testing.T) {
	out, err := APIJSON(genPolicy(t, "FAILURE"))
	if err != nil {
		t.Fatalf("APIJSON: %v", err)
	}

	var doc map[string]any
	if err := json.Unmarshal(out, &doc); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if doc["displayName"] != "backup-failure-alert" {
		t.Errorf("displayName: got %v", doc["displayName"])
	}
	strat, _ := doc["alertStrategy"].(map[string]any)
	if strat["autoClose"] != "604800s" {
		t.Errorf("autoClose: got %v", strat["autoClose"])
	}
}

func TestResourceLabel(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"backup-failure-alert", "backup_failure_alert"},
		{"Backup Failure!", "Backup_Failure"},
		{"7days", "p_7days"},
		{"---", "policy"},
		{"already_fine", "already_fine"},
	}
	for _, tc := range cases {
		if got := ResourceLabel(tc.in); got != tc.want {
			t.Errorf("ResourceLabel(%q): got %q, want %q", tc.in, got, tc.want)
		}
	}
}
