package views

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSkillCatalogIsAcyclicByConstruction(t *testing.T) {
	seen := map[string]bool{}
	for _, entry := range SkillCatalog {
		for _, dep := range entry.DependsOn {
			require.True(t, seen[dep], "dependency %q of %q must appear earlier in the catalog", dep, entry.ID)
		}
		seen[entry.ID] = true
	}
	assert.Len(t, SkillCatalog, 6)
}

func TestDeriveSkillsAllLockedOnEmptyArtifacts(t *testing.T) {
	nodes := DeriveSkills("")
	for _, n := range nodes {
		assert.Equal(t, SkillStateLocked, n.State)
		assert.Equal(t, 0, n.Tier)
	}
}

func TestDeriveSkillsPromotesDependencyChain(t *testing.T) {
	text := `
the collector reads the journal and assigns each event id deterministically,
ingest ingest ingest ingest ingest ingest
the reducer folds every terminal into the snapshot, fold fold fold fold fold fold
`
	nodes := DeriveSkills(text)
	byID := make(map[string]SkillNode, len(nodes))
	for _, n := range nodes {
		byID[n.ID] = n
	}

	require.GreaterOrEqual(t, byID["event-collection"].Tier, 3)
	assert.Equal(t, SkillStateActive, byID["event-collection"].State)

	require.GreaterOrEqual(t, byID["deterministic-reduction"].Tier, 3)
	assert.Equal(t, SkillStateActive, byID["deterministic-reduction"].State)

	// status-dashboards depends on deterministic-reduction but has no
	// keyword hits of its own, so it stays locked despite its dependency
	// being active.
	assert.Equal(t, 0, byID["status-dashboards"].Tier)
	assert.Equal(t, SkillStateLocked, byID["status-dashboards"].State)
}

func TestDeriveSkillsLockedWhenDependencyHasNoHits(t *testing.T) {
	// Two hits ("dashboard", "payload") promote status-dashboards to
	// tier 1, but its dependency deterministic-reduction has zero hits,
	// so its dependencies are not met and it stays locked.
	text := "the dashboard renders one payload"
	nodes := DeriveSkills(text)
	var dashboards SkillNode
	for _, n := range nodes {
		if n.ID == "status-dashboards" {
			dashboards = n
		}
	}
	require.Equal(t, 1, dashboards.Tier)
	assert.Equal(t, SkillStateLocked, dashboards.State)
}

func TestSkillsSeedIsDeterministic(t *testing.T) {
	paths := []string{"memory/2026-07-28.md", "memory/2026-07-29.md"}
	a := SkillsSeed(paths, "2026-07-29")
	b := SkillsSeed(paths, "2026-07-29")
	assert.Equal(t, a, b)
	assert.Len(t, a, 12)

	c := SkillsSeed(paths, "2026-07-30")
	assert.NotEqual(t, a, c)
}
