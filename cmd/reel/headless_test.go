package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmcdole/reel/internal/log"
	"github.com/mmcdole/reel/internal/scan"
	"github.com/mmcdole/reel/internal/store"
)

func TestRunHeadless_PrintsAndStores(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "movies"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "movies", "alien.mkv"), []byte("12345"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "notes.txt"), []byte("x"), 0644))

	st, err := store.Open(t.TempDir())
	require.NoError(t, err)
	defer st.Close()

	var out bytes.Buffer
	err = runHeadless(&out, st, scan.Options{Root: root, Extensions: []string{".mkv"}}, log.NullLogger())
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "movies/alien.mkv")
	assert.Contains(t, lines[0], "5 B")
	assert.True(t, strings.HasPrefix(lines[1], "1 files"))

	summary, ok := st.Summary(root)
	require.True(t, ok)
	assert.Equal(t, 1, summary.Files)

	var found bytes.Buffer
	require.NoError(t, runFind(&found, st, root, "alien"))
	assert.Equal(t, "movies/alien.mkv\n", found.String())
}

func TestRunHeadless_FailedScan(t *testing.T) {
	st, err := store.Open("")
	require.NoError(t, err)

	var out bytes.Buffer
	err = runHeadless(&out, st, scan.Options{Root: filepath.Join(t.TempDir(), "missing")}, log.NullLogger())

	assert.ErrorIs(t, err, errScanFailed)
	assert.Empty(t, out.String())
	assert.Empty(t, st.Roots())
}

func TestRunFind_NoCatalog(t *testing.T) {
	st, err := store.Open("")
	require.NoError(t, err)

	err = runFind(&bytes.Buffer{}, st, t.TempDir(), "x")
	assert.ErrorIs(t, err, errNoCatalog)
}
