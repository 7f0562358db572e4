package markdown

import (
	"regexp"
	"strings"
)

var headingTimeRe = regexp.MustCompile(`^(\d{2}:\d{2})\b`)

// ActivityItem is one "## heading" / "- bullet" pair extracted from the
// activity feed markdown, with an optional attached time and an
// inferred category.
type ActivityItem struct {
	TimeHHMM string // "" if the heading doesn't start with HH:MM
	Heading  string
	Bullet   string
	Category string
}

// categoryKeywords is evaluated in order; the first category whose
// keyword list matches wins. "ops" is the fallback when nothing
// matches.
var categoryKeywords = []struct {
	category string
	keywords []string
}{
	{"ui", []string{"react", "typescript", "dashboard", "ui", "vite"}},
	{"reliability", []string{"watchdog", "reliability", "self-heal", "failover", "cron"}},
	{"release", []string{"release", "tag", "version", "changelog"}},
	{"docs", []string{"doc", "architecture", "readme", "agents.md"}},
}

// InferActivityCategory classifies free text into one of
// ui/reliability/release/docs/ops by keyword match.
func InferActivityCategory(text string) string {
	lower := strings.ToLower(text)
	for _, entry := range categoryKeywords {
		for _, kw := range entry.keywords {
			if strings.Contains(lower, kw) {
				return entry.category
			}
		}
	}
	return "ops"
}

// ParseActivity walks "## heading" / "- bullet" pairs and emits one
// ActivityItem per bullet beneath each heading.
func ParseActivity(text string) []ActivityItem {
	var out []ActivityItem
	var heading string
	var headingTime string

	for _, raw := range strings.Split(text, "\n") {
		line := strings.TrimRight(raw, "\r")
		if hm := headingRe.FindStringSubmatch(line); hm != nil {
			heading = hm[1]
			headingTime = ""
			if tm := headingTimeRe.FindStringSubmatch(heading); tm != nil {
				if ValidHHMM(tm[1]) {
					headingTime = tm[1]
				}
			}
			continue
		}
		if heading == "" {
			continue
		}
		bm := bulletRe.FindStringSubmatch(line)
		if bm == nil {
			continue
		}
		bullet := strings.TrimSpace(bm[1])
		out = append(out, ActivityItem{
			TimeHHMM: headingTime,
			Heading:  heading,
			Bullet:   bullet,
			Category: InferActivityCategory(heading + " " + bullet),
		})
	}
	return out
}
