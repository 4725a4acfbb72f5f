package styles

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", Truncate("short", 10))
	assert.Equal(t, "long...", Truncate("longer text", 7))
	assert.Equal(t, "lo", Truncate("longer", 2))
	assert.Equal(t, "", Truncate("x", 0))
}

func TestTruncateLeft(t *testing.T) {
	assert.Equal(t, "a/b.mkv", TruncateLeft("a/b.mkv", 10))
	assert.Equal(t, "...ie.mkv", TruncateLeft("movies/movie.mkv", 9))
	assert.Equal(t, "kv", TruncateLeft("movie.mkv", 2))
}
