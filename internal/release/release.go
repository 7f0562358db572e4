// Package release slices one version's section out of a changelog. It
// is the only place in the module a missing result is modeled as a
// typed error rather than a silently-degraded field: an unknown version
// is a hard error surfaced to the caller, not an empty string.
package release

import (
	"fmt"
	"regexp"
	"strings"
)

// ErrVersionNotFound is returned when no "## v?X.Y.Z" heading in the
// changelog matches the requested version. DESIGN NOTES calls for a
// typed result variant rather than exceptions-as-control-flow; in Go
// that is a sentinel error a caller can errors.Is against.
var ErrVersionNotFound = fmt.Errorf("release: version not found")

var headingRe = regexp.MustCompile(`^(#{1,6})\s+v?(\S+)\s*$`)

// ExtractNotes returns the body of the changelog section headed by a
// "## v?<version>" (or any heading level) line, stopping at the next
// heading of the same or shallower level. version is compared with an
// optional leading "v" ignored on both sides.
func ExtractNotes(changelog, version string) (string, error) {
	want := strings.TrimPrefix(strings.TrimSpace(version), "v")
	lines := strings.Split(changelog, "\n")

	start := -1
	level := 0
	for i, raw := range lines {
		m := headingRe.FindStringSubmatch(strings.TrimRight(raw, "\r"))
		if m == nil {
			continue
		}
		if strings.TrimPrefix(m[2], "v") == want {
			start = i
			level = len(m[1])
			break
		}
	}
	if start < 0 {
		return "", ErrVersionNotFound
	}

	end := len(lines)
	for i := start + 1; i < len(lines); i++ {
		m := headingRe.FindStringSubmatch(strings.TrimRight(lines[i], "\r"))
		if m != nil && len(m[1]) <= level {
			end = i
			break
		}
	}

	section := strings.Join(lines[start:end], "\n")
	return strings.TrimRight(section, "\n") + "\n", nil
}
