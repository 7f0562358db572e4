// Package markdown implements the regex-based line scanners that pull
// structured data out of the plan/status/activity markdown files:
// timeline blocks, status bullet fields, section bullets, and the
// activity feed.
package markdown

import (
	"regexp"
	"strconv"
	"strings"
)

// timelineBlockRe matches "### HH:MM-HH:MM — task text", an em-dash
// (not a hyphen) required between the time range and the task.
var timelineBlockRe = regexp.MustCompile(`^### (\d{2}:\d{2})-(\d{2}:\d{2}) — (.+)$`)

// TimelineBlock is one plan entry: a time range label plus task text.
type TimelineBlock struct {
	Start string // "HH:MM"
	End   string // "HH:MM"
	Task  string
}

// Label renders the block as "HH:MM-HH:MM — task".
func (b TimelineBlock) Label() string {
	return b.Start + "-" + b.End + " — " + b.Task
}

// ParseTimelineBlocks scans markdown text for "### HH:MM-HH:MM — task"
// headings and returns them in file order.
func ParseTimelineBlocks(text string) []TimelineBlock {
	var out []TimelineBlock
	for _, line := range strings.Split(text, "\n") {
		m := timelineBlockRe.FindStringSubmatch(strings.TrimRight(line, "\r"))
		if m == nil {
			continue
		}
		if !ValidHHMM(m[1]) || !ValidHHMM(m[2]) {
			continue
		}
		out = append(out, TimelineBlock{Start: m[1], End: m[2], Task: strings.TrimSpace(m[3])})
	}
	return out
}

// ValidHHMM reports whether s is a well-formed "HH:MM" with hours <= 23
// and minutes <= 59.
func ValidHHMM(s string) bool {
	_, _, ok := ParseHHMM(s)
	return ok
}

// ParseHHMM parses "HH:MM" into hour/minute, rejecting out-of-range
// values.
func ParseHHMM(s string) (hour, minute int, ok bool) {
	parts := strings.SplitN(s, ":", 2)
	if len(parts) != 2 {
		return 0, 0, false
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil || h > 23 || h < 0 {
		return 0, 0, false
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil || m > 59 || m < 0 {
		return 0, 0, false
	}
	return h, m, true
}

// MinutesOfDay converts a validated HH:MM into minutes since midnight.
func MinutesOfDay(s string) (int, bool) {
	h, m, ok := ParseHHMM(s)
	if !ok {
		return 0, false
	}
	return h*60 + m, true
}
