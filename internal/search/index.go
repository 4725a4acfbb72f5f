// Package search provides fuzzy lookup over cataloged paths.
package search

import (
	"sort"
	"strings"
	"sync"

	lfuzzy "github.com/lithammer/fuzzysearch/fuzzy"
	"github.com/sahilm/fuzzy"

	"github.com/mmcdole/reel/internal/scan"
)

// Match is a filter hit with the character positions that matched
type Match struct {
	Entry          scan.Entry
	MatchedIndexes []int
	Score          int // Higher is better
}

// Index holds entries for fuzzy filtering. It implements fuzzy.Source
// over lowercase paths. Safe for concurrent use.
type Index struct {
	mu         sync.RWMutex
	entries    []scan.Entry
	lowerPaths []string // Pre-computed lowercase paths
}

// NewIndex creates an index over entries
func NewIndex(entries ...scan.Entry) *Index {
	idx := &Index{}
	idx.Add(entries...)
	return idx
}

// String returns the lowercase path at i (implements fuzzy.Source).
// Callers must hold the read lock.
func (idx *Index) String(i int) string { return idx.lowerPaths[i] }

// Len returns the number of entries (implements fuzzy.Source)
func (idx *Index) Len() int { return len(idx.entries) }

// Size returns the number of indexed entries
func (idx *Index) Size() int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return len(idx.entries)
}

// Add appends entries, typically one chunk at a time while a scan runs
func (idx *Index) Add(entries ...scan.Entry) {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	for _, e := range entries {
		idx.entries = append(idx.entries, e)
		idx.lowerPaths = append(idx.lowerPaths, strings.ToLower(e.Path))
	}
}

// Reset empties the index
func (idx *Index) Reset() {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	idx.entries = nil
	idx.lowerPaths = nil
}

// Entries returns a copy of all entries in insertion order
func (idx *Index) Entries() []scan.Entry {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return append([]scan.Entry(nil), idx.entries...)
}

// Filter returns entries matching query, best first. An empty query
// matches everything in insertion order.
func (idx *Index) Filter(query string) []Match {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		out := make([]Match, len(idx.entries))
		for i, e := range idx.entries {
			out[i] = Match{Entry: e}
		}
		return out
	}

	matches := fuzzy.FindFrom(query, idx)
	out := make([]Match, len(matches))
	for i, m := range matches {
		out[i] = Match{
			Entry:          idx.entries[m.Index],
			MatchedIndexes: m.MatchedIndexes,
			Score:          m.Score,
		}
	}
	return out
}

// Rank returns entries whose path contains query's characters in order,
// ordered by edit distance (closest first).
func (idx *Index) Rank(query string) []scan.Entry {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	query = strings.TrimSpace(query)
	if query == "" {
		return nil
	}

	ranks := lfuzzy.RankFindNormalizedFold(query, idx.lowerPaths)
	sort.Stable(ranks)

	out := make([]scan.Entry, len(ranks))
	for i, r := range ranks {
		out[i] = idx.entries[r.OriginalIndex]
	}
	return out
}
