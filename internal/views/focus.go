package views

import (
	"regexp"
	"strings"
)

var unresolvedFocusValues = map[string]bool{
	"n/a": true, "na": true, "none": true, "unknown": true,
}

var leadingTimePrefixRe = regexp.MustCompile(`^\d{2}:\d{2}(-\d{2}:\d{2})? — `)

const defaultFocus = "Reliability monitoring + scheduled execution"

// stripLeadingTimePrefix removes a leading "HH:MM — " or
// "HH:MM-HH:MM — " label from a resolved active-work string.
func stripLeadingTimePrefix(s string) string {
	return leadingTimePrefixRe.ReplaceAllString(s, "")
}

// ResolveCurrentFocus resolves the "current focus" label through a
// fallback chain: raw focus, current timeline task, active-work with
// its time prefix stripped, the next block's task, then a fixed
// default string.
func ResolveCurrentFocus(rawFocus string, slices TimelineSlices, resolvedActiveWork string) string {
	trimmed := strings.TrimSpace(rawFocus)
	if trimmed != "" && !unresolvedFocusValues[strings.ToLower(trimmed)] {
		return trimmed
	}
	if slices.Current != nil {
		return slices.Current.Task
	}
	if resolvedActiveWork != "" {
		return stripLeadingTimePrefix(resolvedActiveWork)
	}
	if len(slices.Next) > 0 {
		return slices.Next[0].Task
	}
	return defaultFocus
}
