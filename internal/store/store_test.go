package store

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmcdole/reel/internal/scan"
)

func sampleSummary(root string) scan.Summary {
	return scan.Summary{
		Root:     root,
		Files:    2,
		Bytes:    30,
		Skipped:  1,
		Duration: 2 * time.Second,
		Entries: []scan.Entry{
			{Path: "a/one.mkv", Size: 10, Ext: ".mkv"},
			{Path: "b/two.mkv", Size: 20, Ext: ".mkv"},
		},
	}
}

func TestCatalogStore_PersistsAcrossReopen(t *testing.T) {
	dir := t.TempDir()
	root := filepath.Join(dir, "media")

	s, err := Open(dir)
	require.NoError(t, err)
	require.NoError(t, s.SaveSummary(sampleSummary(root)))
	require.NoError(t, s.Close())

	s, err = Open(dir)
	require.NoError(t, err)
	defer s.Close()

	got, ok := s.Summary(root)
	require.True(t, ok)
	assert.Equal(t, 2, got.Files)
	assert.Equal(t, int64(30), got.Bytes)
	assert.Equal(t, 1, got.Skipped)
	assert.Equal(t, 2*time.Second, got.Duration)
	require.Len(t, got.Entries, 2)
	assert.Equal(t, "a/one.mkv", got.Entries[0].Path)
	assert.Equal(t, "b/two.mkv", got.Entries[1].Path)

	at, ok := s.ScannedAt(root)
	require.True(t, ok)
	assert.False(t, at.IsZero())
	assert.Equal(t, []string{root}, s.Roots())
}

func TestCatalogStore_SaveReplacesEntries(t *testing.T) {
	dir := t.TempDir()
	root := filepath.Join(dir, "media")

	s, err := Open(dir)
	require.NoError(t, err)
	require.NoError(t, s.SaveSummary(sampleSummary(root)))

	next := scan.Summary{Root: root, Files: 1, Entries: []scan.Entry{{Path: "c/three.mkv"}}}
	require.NoError(t, s.SaveSummary(next))
	require.NoError(t, s.Close())

	s, err = Open(dir)
	require.NoError(t, err)
	defer s.Close()

	entries, ok := s.Entries(root)
	require.True(t, ok)
	require.Len(t, entries, 1)
	assert.Equal(t, "c/three.mkv", entries[0].Path)
}

func TestCatalogStore_RootsDoNotBleed(t *testing.T) {
	dir := t.TempDir()
	s, err := Open(dir)
	require.NoError(t, err)
	defer s.Close()

	a := filepath.Join(dir, "a")
	ab := filepath.Join(dir, "ab")
	require.NoError(t, s.SaveSummary(sampleSummary(a)))
	require.NoError(t, s.SaveSummary(scan.Summary{Root: ab, Entries: []scan.Entry{{Path: "x"}}}))

	s.Invalidate(a)

	_, ok := s.Summary(a)
	assert.False(t, ok)
	entries, ok := s.Entries(ab)
	require.True(t, ok)
	assert.Len(t, entries, 1)
	assert.Equal(t, []string{ab}, s.Roots())
}

func TestCatalogStore_MemoryOnly(t *testing.T) {
	s, err := Open("")
	require.NoError(t, err)
	defer s.Close()

	root := filepath.Join(t.TempDir(), "media")
	_, ok := s.Summary(root)
	assert.False(t, ok)

	require.NoError(t, s.SaveSummary(sampleSummary(root)))
	got, ok := s.Summary(root)
	require.True(t, ok)
	assert.Len(t, got.Entries, 2)

	s.Invalidate(root)
	assert.Empty(t, s.Roots())
}
