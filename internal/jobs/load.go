package jobs

import (
	"encoding/json"
	"fmt"
	"os"
)

// Load reads the scheduler jobs file at path. A missing file yields an
// empty job list rather than an error, matching the collector's and
// payload builder's shared tolerance for absent producer inputs.
func Load(path string) ([]Job, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read jobs file %s: %w", path, err)
	}
	var file File
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse jobs file %s: %w", path, err)
	}
	return file.Jobs, nil
}
