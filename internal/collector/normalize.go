package collector

import "strings"

// normalizeRuntimeModel prefixes bare gpt-* model strings with the
// openai-codex/ namespace, matching what collect_runtime_events.py's
// normalize_runtime_model does for cron/subagent producers that report
// a raw OpenAI model id with no provider prefix.
func normalizeRuntimeModel(raw string) string {
	if raw == "" {
		return ""
	}
	if !strings.Contains(raw, "/") && strings.HasPrefix(raw, "gpt-") {
		return "openai-codex/" + raw
	}
	return raw
}

// normalizeRuntimeThinking lowercases, collapses separators to "_", and
// aliases a handful of synonyms to the canonical effort vocabulary.
func normalizeRuntimeThinking(raw string) string {
	if raw == "" {
		return ""
	}
	s := strings.ToLower(raw)
	s = strings.ReplaceAll(s, "-", "_")
	s = strings.ReplaceAll(s, " ", "_")
	switch s {
	case "min":
		return "minimal"
	case "very_high", "maximum", "max":
		return "extra_high"
	default:
		return s
	}
}
