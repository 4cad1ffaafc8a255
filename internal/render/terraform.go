package render

import (
	"encoding/json"
	"fmt"
	"strings"
	"unicode"

	"github.com/backupwatch/backupwatch/internal/policy"
)

// tfDocument is the top level of a .tf.json file.
type tfDocument struct {
	Resource map[string]map[string]tfAlertPolicy `json:"resource"`
}

// tfAlertPolicy mirrors the google_monitoring_alert_policy resource schema,
// restricted to the fields this tool sets.
type tfAlertPolicy struct {
	DisplayName          string            `json:"display_name"`
	Project              string            `json:"project"`
	Combiner             string            `json:"combiner"`
	Enabled              bool              `json:"enabled"`
	Severity             string            `json:"severity,omitempty"`
	UserLabels           map[string]string `json:"user_labels"`
	Documentation        tfDocumentation   `json:"documentation"`
	Conditions           []tfCondition     `json:"conditions"`
	AlertStrategy        tfAlertStrategy   `json:"alert_strategy"`
	NotificationChannels []string          `json:"notification_channels"`
}

type tfDocumentation struct {
	MimeType string `json:"mime_type"`
	Content  string `json:"content"`
}

type tfCondition struct {
	DisplayName         string       `json:"display_name"`
	ConditionMatchedLog tfMatchedLog `json:"condition_matched_log"`
}

type tfMatchedLog struct {
	Filter          string            `json:"filter"`
	LabelExtractors map[string]string `json:"label_extractors"`
}

type tfAlertStrategy struct {
	AutoClose             string      `json:"auto_close"`
	NotificationRateLimit tfRateLimit `json:"notification_rate_limit"`
}

type tfRateLimit struct {
	Period string `json:"period"`
}

// TerraformJSON renders the named policies into one .tf.json document.
// Resource labels derive from the policy names; a duplicate label is an
// error because the second resource would silently overwrite the first.
func TerraformJSON(policies []policy.Policy) ([]byte, error) {
	resources := make(map[string]tfAlertPolicy, len(policies))
	for _, p := range policies {
		label := ResourceLabel(p.DisplayName)
		if _, dup := resources[label]; dup {
			return nil, fmt.Errorf("render: duplicate resource label %q", label)
		}
		resources[label] = toTF(p)
	}

	doc := tfDocument{
		Resource: map[string]map[string]tfAlertPolicy{
			"google_monitoring_alert_policy": resources,
		},
	}

	out, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("render: marshal terraform document: %w", err)
	}
	return append(out, '\n'), nil
}

// toTF maps a generated policy onto the Terraform resource schema.
func toTF(p policy.Policy) tfAlertPolicy {
	return tfAlertPolicy{
		DisplayName: p.DisplayName,
		Project:     p.Project,
		Combiner:    p.Combiner,
		Enabled:     p.Enabled,
		Severity:    p.Severity,
		UserLabels:  p.UserLabels,
		Documentation: tfDocumentation{
			MimeType: p.Documentation.MimeType,
			Content:  p.Documentation.Content,
		},
		Conditions: []tfCondition{{
			DisplayName: p.Condition.DisplayName,
			ConditionMatchedLog: tfMatchedLog{
				Filter:          p.Condition.Filter,
				LabelExtractors: p.Condition.LabelExtractors,
			},
		}},
		AlertStrategy: tfAlertStrategy{
			AutoClose: p.AlertStrategy.AutoClose,
			NotificationRateLimit: tfRateLimit{
				Period: p.AlertStrategy.NotificationRatePeriod,
			},
		},
		NotificationChannels: p.NotificationChannels,
	}
}

// ResourceLabel converts a policy display name into a valid Terraform
// resource label: runs of characters outside [A-Za-z0-9_] collapse to one
// underscore, and a leading digit gets a "p_" prefix.
func ResourceLabel(name string) string {
	var b strings.Builder
	lastUnderscore := false
	for _, r := range name {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_':
			b.WriteRune(r)
			lastUnderscore = false
		default:
			if !lastUnderscore {
				b.WriteByte('_')
				lastUnderscore = true
			}
		}
	}
	label := strings.Trim(b.String(), "_")
	if label == "" {
		return "policy"
	}
	if unicode.IsDigit(rune(label[0])) {
		label = "p_" + label
	}
	return label
}
