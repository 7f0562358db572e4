package reducer

import (
	"fmt"
	"regexp"
	"strconv"
)

var revisionRe = regexp.MustCompile(`^rtv1-(\d+)$`)

// ParseRevision extracts the numeric counter from a "rtv1-NNNNNNNN"
// revision string. Any missing, malformed, or unreadable prior
// revision parses to 0, matching parse_revision_number's fallback.
func ParseRevision(raw string) int {
	m := revisionRe.FindStringSubmatch(raw)
	if m == nil {
		return 0
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0
	}
	return n
}

// NextRevision formats n+1 as "rtv1-NNNNNNNN", zero-padded to 8 digits.
func NextRevision(n int) string {
	return fmt.Sprintf("rtv1-%08d", n+1)
}
