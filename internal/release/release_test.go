package release

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleChangelog = `# Changelog

## v1.3.0

- Added workstream lanes.
- Fixed stale heartbeat handling.

## v1.2.0

- Initial release.
`

func TestExtractNotesReturnsBoundedSection(t *testing.T) {
	notes, err := ExtractNotes(sampleChangelog, "1.3.0")
	require.NoError(t, err)
	assert.Contains(t, notes, "Added workstream lanes")
	assert.NotContains(t, notes, "Initial release")
}

func TestExtractNotesAcceptsLeadingV(t *testing.T) {
	notes, err := ExtractNotes(sampleChangelog, "v1.2.0")
	require.NoError(t, err)
	assert.Contains(t, notes, "Initial release")
}

func TestExtractNotesMissingVersion(t *testing.T) {
	_, err := ExtractNotes(sampleChangelog, "9.9.9")
	assert.ErrorIs(t, err, ErrVersionNotFound)
}

func TestExtractNotesLastSectionRunsToEOF(t *testing.T) {
	notes, err := ExtractNotes(sampleChangelog, "1.2.0")
	require.NoError(t, err)
	assert.Contains(t, notes, "Initial release")
}
