package collector

import (
	"strconv"
	"strings"
	"time"
)

// RawRecord is the permissive layer: producer artifacts decode into
// map[string]any and every accessor here returns (value, ok) rather
// than panicking or guessing, matching the "RawRecord vs canonical
// type" split called for by the data model's heterogeneous producers.
type RawRecord map[string]any

func pickString(rec RawRecord, keys ...string) (string, bool) {
	for _, k := range keys {
		v, ok := rec[k]
		if !ok || v == nil {
			continue
		}
		if s, ok := v.(string); ok && s != "" {
			return s, true
		}
	}
	return "", false
}

func pickAnyTimestamp(rec RawRecord, keys ...string) (int64, bool) {
	for _, k := range keys {
		v, ok := rec[k]
		if !ok || v == nil {
			continue
		}
		if ms, ok := parseTimestampMs(v); ok {
			return ms, true
		}
	}
	return 0, false
}

func pickBool(rec RawRecord, key string) (bool, bool) {
	v, ok := rec[key]
	if !ok {
		return false, false
	}
	b, ok := v.(bool)
	return b, ok
}

// parseTimestampMs parses a timestamp field from a JSON-decoded value.
// Accepts a JSON number (unix-ms if > 10^10, else unix-seconds x1000),
// a numeric string following the same rule, or an ISO-8601 string
// (trailing "Z" treated as "+00:00"; no-offset strings assumed UTC).
// Unparseable values return (0, false), dropping the event per spec.
func parseTimestampMs(v any) (int64, bool) {
	switch t := v.(type) {
	case float64:
		return timestampFromNumber(int64(t)), true
	case int64:
		return timestampFromNumber(t), true
	case int:
		return timestampFromNumber(int64(t)), true
	case string:
		s := strings.TrimSpace(t)
		if s == "" {
			return 0, false
		}
		if n, err := strconv.ParseInt(s, 10, 64); err == nil {
			return timestampFromNumber(n), true
		}
		return parseISOTimestamp(s)
	default:
		return 0, false
	}
}

func timestampFromNumber(n int64) int64 {
	const tenBillion = 10_000_000_000
	if n > tenBillion {
		return n
	}
	return n * 1000
}

var isoLayouts = []string{
	"2006-01-02T15:04:05.999999999Z07:00",
	"2006-01-02T15:04:05Z07:00",
	"2006-01-02 15:04:05Z07:00",
}

var naiveLayouts = []string{
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

func parseISOTimestamp(raw string) (int64, bool) {
	s := raw
	if strings.HasSuffix(s, "Z") {
		s = strings.TrimSuffix(s, "Z") + "+00:00"
	}
	for _, layout := range isoLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UnixMilli(), true
		}
	}
	for _, layout := range naiveLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t.UnixMilli(), true
		}
	}
	return 0, false
}
