package markdown

import (
	"regexp"
	"strings"
)

var statusFieldRe = regexp.MustCompile(`^-\s*(Primary focus|Running now):\s*(.*)$`)

// StatusFields holds the two status bullet fields; both may be empty,
// meaning "missing" — callers must tolerate absence, not fill in
// placeholders.
type StatusFields struct {
	CurrentFocus string
	ActiveWork   string
}

// ParseStatusFields scans markdown text for "- Primary focus: X" and
// "- Running now: X" bullet lines. Later occurrences of the same field
// overwrite earlier ones.
func ParseStatusFields(text string) StatusFields {
	var fields StatusFields
	for _, line := range strings.Split(text, "\n") {
		m := statusFieldRe.FindStringSubmatch(strings.TrimRight(line, "\r"))
		if m == nil {
			continue
		}
		value := strings.TrimSpace(m[2])
		switch m[1] {
		case "Primary focus":
			fields.CurrentFocus = value
		case "Running now":
			fields.ActiveWork = value
		}
	}
	return fields
}

var headingRe = regexp.MustCompile(`^##\s+(.+?)\s*$`)
var bulletRe = regexp.MustCompile(`^-\s+(.+?)\s*$`)

// ParseSectionBullets returns the top-level "- " bullets appearing
// under the "## <section>" heading (case-sensitive exact match of the
// heading text), terminating at the next "## " heading.
func ParseSectionBullets(text, section string) []string {
	var out []string
	inSection := false
	for _, raw := range strings.Split(text, "\n") {
		line := strings.TrimRight(raw, "\r")
		if hm := headingRe.FindStringSubmatch(line); hm != nil {
			inSection = hm[1] == section
			continue
		}
		if !inSection {
			continue
		}
		if bm := bulletRe.FindStringSubmatch(line); bm != nil {
			out = append(out, strings.TrimSpace(bm[1]))
		}
	}
	return out
}
