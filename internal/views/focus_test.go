package views

import (
	"testing"

	"github.com/nextlevelbuilder/runtime-truth/internal/markdown"
	"github.com/stretchr/testify/assert"
)

func TestResolveCurrentFocusPrefersRaw(t *testing.T) {
	got := ResolveCurrentFocus("Shipping the dashboard", TimelineSlices{}, "")
	assert.Equal(t, "Shipping the dashboard", got)
}

func TestResolveCurrentFocusSkipsUnresolvedValues(t *testing.T) {
	slices := TimelineSlices{Current: &markdown.TimelineBlock{Task: "deep work"}}
	got := ResolveCurrentFocus("n/a", slices, "")
	assert.Equal(t, "deep work", got)
}

func TestResolveCurrentFocusFallsBackToActiveWork(t *testing.T) {
	got := ResolveCurrentFocus("", TimelineSlices{}, "10:30-11:00 — reviewing PRs")
	assert.Equal(t, "reviewing PRs", got)
}

func TestResolveCurrentFocusFallsBackToNext(t *testing.T) {
	slices := TimelineSlices{Next: []markdown.TimelineBlock{{Task: "lunch"}}}
	got := ResolveCurrentFocus("unknown", slices, "")
	assert.Equal(t, "lunch", got)
}

func TestResolveCurrentFocusDefault(t *testing.T) {
	got := ResolveCurrentFocus("", TimelineSlices{}, "")
	assert.Equal(t, defaultFocus, got)
}

func TestStripLeadingTimePrefix(t *testing.T) {
	assert.Equal(t, "reviewing PRs", stripLeadingTimePrefix("10:30-11:00 — reviewing PRs"))
	assert.Equal(t, "writing tests", stripLeadingTimePrefix("10:30 — writing tests"))
	assert.Equal(t, "no prefix here", stripLeadingTimePrefix("no prefix here"))
}
