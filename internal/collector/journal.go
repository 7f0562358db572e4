package collector

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"

	"github.com/nextlevelbuilder/runtime-truth/internal/events"
)

// loadExistingEventIDs reads every event id already present in the
// journal file so AppendNewEvents can skip duplicates. A missing file
// is treated as an empty journal.
func loadExistingEventIDs(path string) (map[string]struct{}, error) {
	ids := make(map[string]struct{})

	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return ids, nil
		}
		return nil, err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 8*1024*1024)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var rec struct {
			EventID string `json:"eventId"`
		}
		if err := json.Unmarshal(line, &rec); err != nil {
			continue
		}
		if rec.EventID != "" {
			ids[rec.EventID] = struct{}{}
		}
	}
	return ids, scanner.Err()
}

// AppendNewEvents idempotently appends newEvents to the journal at
// path: every existing event id is loaded first, and only ids not
// already present are written, each as its own JSON line opened with
// O_APPEND so concurrent single-line writers never interleave partial
// records. A journal that does not yet exist is bootstrapped in
// canonical sort order; an existing journal receives appends in the
// caller's discovery order, since the reducer re-sorts on read.
func AppendNewEvents(path string, newEvents []events.Event) (int, error) {
	existing, err := loadExistingEventIDs(path)
	if err != nil {
		return 0, fmt.Errorf("load existing event ids: %w", err)
	}

	bootstrap := len(existing) == 0
	candidates := newEvents
	if bootstrap {
		candidates = make([]events.Event, len(newEvents))
		copy(candidates, newEvents)
		events.SortEvents(candidates)
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return 0, fmt.Errorf("open journal %s: %w", path, err)
	}
	defer f.Close()

	appended := 0
	for _, ev := range candidates {
		if _, ok := existing[ev.EventID]; ok {
			continue
		}
		line, err := json.Marshal(ev)
		if err != nil {
			return appended, fmt.Errorf("marshal event %s: %w", ev.EventID, err)
		}
		line = append(line, '\n')
		if _, err := f.Write(line); err != nil {
			return appended, fmt.Errorf("write event %s: %w", ev.EventID, err)
		}
		existing[ev.EventID] = struct{}{}
		appended++
	}
	return appended, nil
}

// ReadJournal reads every event in the journal file, skipping malformed
// lines. Used by the reducer and by tools/call runtime.materialize.
func ReadJournal(path string) ([]events.Event, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	defer f.Close()

	var out []events.Event
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 8*1024*1024)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var ev events.Event
		if err := json.Unmarshal(line, &ev); err != nil {
			continue
		}
		out = append(out, ev)
	}
	return out, scanner.Err()
}
