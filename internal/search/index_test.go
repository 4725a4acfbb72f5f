package search

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmcdole/reel/internal/scan"
)

func entries(paths ...string) []scan.Entry {
	out := make([]scan.Entry, len(paths))
	for i, p := range paths {
		out[i] = scan.Entry{Path: p}
	}
	return out
}

func TestIndex_FilterEmptyQueryReturnsAll(t *testing.T) {
	idx := NewIndex(entries("b.mkv", "a.mkv")...)

	got := idx.Filter("  ")

	require.Len(t, got, 2)
	assert.Equal(t, "b.mkv", got[0].Entry.Path)
	assert.Equal(t, "a.mkv", got[1].Entry.Path)
}

func TestIndex_FilterFuzzy(t *testing.T) {
	idx := NewIndex(entries(
		"Movies/Blade Runner (1982).mkv",
		"Movies/Alien.mkv",
		"TV/Mr. Robot/S01E01.mkv",
	)...)

	got := idx.Filter("BLADE")

	require.NotEmpty(t, got)
	assert.Equal(t, "Movies/Blade Runner (1982).mkv", got[0].Entry.Path)
	assert.Len(t, got[0].MatchedIndexes, 5)
}

func TestIndex_FilterNoMatch(t *testing.T) {
	idx := NewIndex(entries("alien.mkv")...)
	assert.Empty(t, idx.Filter("zzz"))
}

func TestIndex_AddIncrementallyAndReset(t *testing.T) {
	idx := NewIndex()
	idx.Add(entries("one.mkv")...)
	idx.Add(entries("two.mkv")...)

	assert.Equal(t, 2, idx.Size())
	assert.Len(t, idx.Filter("two"), 1)

	idx.Reset()
	assert.Equal(t, 0, idx.Size())
	assert.Empty(t, idx.Entries())
}

func TestIndex_Rank(t *testing.T) {
	idx := NewIndex(entries("movies/alien-resurrection.mkv", "movies/alien.mkv", "tv/lost.mkv")...)

	got := idx.Rank("ALIEN")

	require.Len(t, got, 2)
	assert.Equal(t, "movies/alien.mkv", got[0].Path)
	assert.Equal(t, "movies/alien-resurrection.mkv", got[1].Path)
	assert.Empty(t, idx.Rank(""))
}
