package policy

import "strings"

// SplitChannels splits a comma-separated channel list and trims surrounding
// whitespace from each segment. Empty segments are kept: splitting "" yields
// [""], matching the historical behavior of the deployed template. Callers
// that want to refuse empty channel entries validate before generating (the
// config loader does).
func SplitChannels(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, len(parts))
	for i, p := range parts {
		out[i] = strings.TrimSpace(p)
	}
	return out
}
