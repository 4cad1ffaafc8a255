package policy

import (
	"fmt"
	"strings"
)

// ConditionType selects which job outcome a policy alerts on.
type ConditionType string

const (
	// ConditionFailure alerts on jobs that ended in any non-successful state.
	ConditionFailure ConditionType = "FAILURE"

	// ConditionSuccess alerts on jobs that completed successfully.
	ConditionSuccess ConditionType = "SUCCESS"
)

// Fixed alert-strategy parameters, matching the deployed policies.
const (
	// NotificationRatePeriod throttles renotification to once per 5 minutes.
	NotificationRatePeriod = "300s"

	// AutoCloseDuration closes unresolved incidents after 7 days.
	AutoCloseDuration = "604800s"
)

// logSourceClause matches the Backup and DR job log stream.
const logSourceClause = `log_id("backupdr.googleapis.com/bdr_backup_restore_jobs")`

// DefaultJobCategories is the job-category set matched when a request does
// not name its own. RESTORE is deliberately not included; deployments that
// want restore-job alerting opt in via the request.
var DefaultJobCategories = []string{"SCHEDULED_BACKUP", "ON_DEMAND_BACKUP"}

// ValidationError reports a condition string that is not one of the two
// recognized literals. It is the only error the generator produces.
type ValidationError struct {
	Value string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("policy: condition %q is not valid: must be FAILURE or SUCCESS", e.Value)
}

// ParseCondition validates a raw condition string. The match is exact and
// case-sensitive: "failure" or "Failure" are configuration errors, not
// aliases.
func ParseCondition(s string) (ConditionType, error) {
	switch ConditionType(s) {
	case ConditionFailure, ConditionSuccess:
		return ConditionType(s), nil
	default:
		return "", &ValidationError{Value: s}
	}
}

// Request is the immutable input to Generate.
type Request struct {
	// ProjectID is the cloud project the policy is created in.
	ProjectID string

	// Condition is the raw condition string, validated by Generate.
	// Must be exactly "FAILURE" or "SUCCESS".
	Condition string

	// PolicyName becomes the policy display name.
	PolicyName string

	// CustomMessage is the free-form header of the alert documentation.
	// May contain markdown.
	CustomMessage string

	// NotificationChannelIDs is a comma-separated list of notification
	// channel resource paths.
	NotificationChannelIDs string

	// JobCategories is the explicit job-category set matched by the filter.
	// Empty means DefaultJobCategories.
	JobCategories []string
}

// Policy is the generated alert policy, shaped field-for-field like the
// monitoring backend's AlertPolicy resource.
type Policy struct {
	DisplayName          string
	Project              string
	Combiner             string
	Enabled              bool
	Severity             string
	UserLabels           map[string]string
	Documentation        Documentation
	Condition            Condition
	AlertStrategy        AlertStrategy
	NotificationChannels []string
}

// Documentation is the markdown shown on a fired alert. Label placeholders
// in Content (${log.extracted_label.*}) are resolved by the monitoring
// backend at alert-render time, not here.
type Documentation struct {
	MimeType string
	Content  string
}

// Condition is the single log-match condition of a policy.
type Condition struct {
	DisplayName     string
	Filter          string
	LabelExtractors map[string]string
}

// AlertStrategy holds the fixed renotification and auto-close parameters.
type AlertStrategy struct {
	NotificationRatePeriod string
	AutoClose              string
}

// Generate maps a Request to a Policy. It validates the condition first and
// produces nothing on failure; every other input is passed through
// unchecked. The result is a pure function of the request.
func Generate(req Request) (Policy, error) {
	cond, err := ParseCondition(req.Condition)
	if err != nil {
		return Policy{}, err
	}

	categories := req.JobCategories
	if len(categories) == 0 {
		categories = DefaultJobCategories
	}

	severity := ""
	if cond == ConditionFailure {
		severity = "ERROR"
	}

	return Policy{
		DisplayName: req.PolicyName,
		Project:     req.ProjectID,
		Combiner:    "OR",
		Enabled:     true,
		Severity:    severity,
		UserLabels: map[string]string{
			"managed_by": "terraform",
			"type":       strings.ToLower(string(cond)),
		},
		Documentation: Documentation{
			MimeType: "text/markdown",
			Content:  docContent(req.CustomMessage, cond),
		},
		Condition: Condition{
			DisplayName:     fmt.Sprintf("Backup and DR job log match (%s)", strings.ToLower(string(cond))),
			Filter:          buildFilter(cond, categories),
			LabelExtractors: labelExtractors(cond),
		},
		AlertStrategy: AlertStrategy{
			NotificationRatePeriod: NotificationRatePeriod,
			AutoClose:              AutoCloseDuration,
		},
		NotificationChannels: SplitChannels(req.NotificationChannelIDs),
	}, nil
}

// buildFilter assembles the three filter clauses: log source, job-category
// membership, and the condition-specific status clause. Clauses on separate
// lines combine with AND semantics in the log query language.
func buildFilter(cond ConditionType, categories []string) string {
	var status string
	switch cond {
	case ConditionFailure:
		// RUNNING is excluded so in-progress jobs are never misread as failed.
		status = `(jsonPayload.jobStatus!="SUCCESSFUL" AND jsonPayload.jobStatus!="RUNNING")`
	case ConditionSuccess:
		status = `jsonPayload.jobStatus="SUCCESSFUL"`
	}

	return strings.Join([]string{
		logSourceClause,
		categoryClause(categories),
		status,
	}, "\n")
}

// categoryClause builds an OR-joined set match over the job categories.
func categoryClause(categories []string) string {
	parts := make([]string, len(categories))
	for i, c := range categories {
		parts[i] = fmt.Sprintf("jsonPayload.jobCategory=%q", c)
	}
	return "(" + strings.Join(parts, " OR ") + ")"
}

// labelExtractors returns the five extraction rules. Four are identical in
// both modes; "details" carries the error message for failures and the job
// status for successes.
func labelExtractors(cond ConditionType) map[string]string {
	ex := map[string]string{
		// Last path segment of the protected resource.
		"resource_name": `REGEXP_EXTRACT(jsonPayload.sourceResourceName, "([^/]+)$")`,

		// Segment after "zones/" or "regions/" — covers zonal and regional
		// resources with one pattern.
		"location": `REGEXP_EXTRACT(jsonPayload.sourceResourceName, "(?:zones|regions)/([^/]+)")`,

		"resource_type": `EXTRACT(jsonPayload.resourceType)`,

		"project_id": `REGEXP_EXTRACT(jsonPayload.sourceResourceName, "projects/([^/]+)")`,

		// Last path segment of the backup plan resource.
		"backup_plan": `REGEXP_EXTRACT(jsonPayload.backupPlanName, "([^/]+)$")`,
	}

	if cond == ConditionFailure {
		ex["details"] = `EXTRACT(jsonPayload.errorMessage)`
	} else {
		ex["details"] = `EXTRACT(jsonPayload.jobStatus)`
	}
	return ex
}

// docContent renders the documentation markdown: the custom header line
// followed by six fixed lines referencing the extracted labels by name.
func docContent(message string, cond ConditionType) string {
	detailsLabel := "Details"
	if cond == ConditionFailure {
		detailsLabel = "Error"
	}

	return strings.Join([]string{
		message,
		"Resource Name: ${log.extracted_label.resource_name}",
		"Location: ${log.extracted_label.location}",
		"Resource Type: ${log.extracted_label.resource_type}",
		"Project Id: ${log.extracted_label.project_id}",
		"Backup Plan: ${log.extracted_label.backup_plan}",
		detailsLabel + ": ${log.extracted_label.details}",
	}, "\n")
}
