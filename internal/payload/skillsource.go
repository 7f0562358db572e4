package payload

import (
	"os"
	"path/filepath"
	"strings"
	"time"
)

const skillArtifactLookbackDays = 7

// longLivedMemoryFileName is the durable memory file consulted
// alongside the rolling daily files, sitting beside them in the same
// directory the way a persistent notes file sits next to dated ones.
const longLivedMemoryFileName = "MEMORY.md"

// collectSkillArtifacts gathers the text (lowercased, joined) and the
// ordered file paths of the last skillArtifactLookbackDays daily memory
// files plus the long-lived memory file, the artifact set views.DeriveSkills
// derives its keyword counts and seed hash from. Missing files
// contribute nothing; their absence is not an error.
func collectSkillArtifacts(memoryDir string, nowLocal time.Time) (text string, paths []string) {
	if memoryDir == "" {
		return "", nil
	}

	var sb strings.Builder
	for i := skillArtifactLookbackDays - 1; i >= 0; i-- {
		day := nowLocal.AddDate(0, 0, -i).Format("2006-01-02")
		path := filepath.Join(memoryDir, day+".md")
		if data, err := os.ReadFile(path); err == nil {
			sb.WriteString(strings.ToLower(string(data)))
			sb.WriteString("\n")
			paths = append(paths, path)
		}
	}

	longLived := filepath.Join(memoryDir, longLivedMemoryFileName)
	if data, err := os.ReadFile(longLived); err == nil {
		sb.WriteString(strings.ToLower(string(data)))
		paths = append(paths, longLived)
	}

	return sb.String(), paths
}
