package render

import (
	"encoding/json"
	"fmt"

	"github.com/backupwatch/backupwatch/internal/policy"
)

// apiAlertPolicy mirrors the Cloud Monitoring AlertPolicy REST shape.
type apiAlertPolicy struct {
	DisplayName          string            `json:"displayName"`
	Combiner             string            `json:"combiner"`
	Enabled              bool              `json:"enabled"`
	Severity             string            `json:"severity,omitempty"`
	UserLabels           map[string]string `json:"userLabels"`
	Documentation        apiDocumentation  `json:"documentation"`
	Conditions           []apiCondition    `json:"conditions"`
	AlertStrategy        apiAlertStrategy  `json:"alertStrategy"`
	NotificationChannels []string          `json:"notificationChannels"`
}

type apiDocumentation struct {
	MimeType string `json:"mimeType"`
	Content  string `json:"content"`
}

type apiCondition struct {
	DisplayName         string        `json:"displayName"`
	ConditionMatchedLog apiMatchedLog `json:"conditionMatchedLog"`
}

type apiMatchedLog struct {
	Filter          string            `json:"filter"`
	LabelExtractors map[string]string `json:"labelExtractors"`
}

type apiAlertStrategy struct {
	NotificationRateLimit apiRateLimit `json:"notificationRateLimit"`
	AutoClose             string       `json:"autoClose"`
}

type apiRateLimit struct {
	Period string `json:"period"`
}

// APIJSON renders one policy in the monitoring API's AlertPolicy JSON shape.
func APIJSON(p policy.Policy) ([]byte, error) {
	doc := apiAlertPolicy{
		DisplayName: p.DisplayName,
		Combiner:    p.Combiner,
		Enabled:     p.Enabled,
		Severity:    p.Severity,
		UserLabels:  p.UserLabels,
		Documentation: apiDocumentation{
			MimeType: p.Documentation.MimeType,
			Content:  p.Documentation.Content,
		},
		Conditions: []apiCondition{{
			DisplayName: p.Condition.DisplayName,
			ConditionMatchedLog: apiMatchedLog{
				Filter:          p.Condition.Filter,
				LabelExtractors: p.Condition.LabelExtractors,
			},
		}},
		AlertStrategy: apiAlertStrategy{
			NotificationRateLimit: apiRateLimit{Period: p.AlertStrategy.NotificationRatePeriod},
			AutoClose:             p.AlertStrategy.AutoClose,
		},
		NotificationChannels: p.NotificationChannels,
	}

	out, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("render: marshal api document: %w", err)
	}
	return append(out, '\n'), nil
}
