package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/mmcdole/reel/internal/scan"
	bolt "go.etcd.io/bbolt"
)

// Bucket names
var (
	bucketSummaries = []byte("summaries")
	bucketEntries   = []byte("entries")
)

// keySep separates root and path in entry keys; it cannot occur in a path
const keySep = "\x00"

// summaryRecord is the persisted form of a scan.Summary without its entries
type summaryRecord struct {
	Root      string        `json:"root"`
	Files     int           `json:"files"`
	Bytes     int64         `json:"bytes"`
	Skipped   int           `json:"skipped"`
	Duration  time.Duration `json:"duration"`
	ScannedAt time.Time     `json:"scannedAt"`
}

// CatalogStore persists scan results in BoltDB with an in-memory read cache.
type CatalogStore struct {
	db *bolt.DB
	mu sync.RWMutex // Protects memory cache

	// In-memory cache for hot-path reads (promoted on access)
	summaries map[string]summaryRecord
	entries   map[string][]scan.Entry
}

// Open opens (or creates) the catalog in dir. An empty dir gives a
// memory-only store.
func Open(dir string) (*CatalogStore, error) {
	s := &CatalogStore{
		summaries: make(map[string]summaryRecord),
		entries:   make(map[string][]scan.Entry),
	}
	if dir == "" {
		return s, nil
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}

	dbPath := filepath.Join(dir, "reel.db")
	db, err := bolt.Open(dbPath, 0600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open bolt db: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		for _, bucket := range [][]byte{bucketSummaries, bucketEntries} {
			if _, err := tx.CreateBucketIfNotExists(bucket); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	s.db = db
	return s, nil
}

func (s *CatalogStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// SaveSummary replaces the catalog for summary.Root.
func (s *CatalogStore) SaveSummary(summary scan.Summary) error {
	root := scan.NormalizeRoot(summary.Root)
	rec := summaryRecord{
		Root:      root,
		Files:     summary.Files,
		Bytes:     summary.Bytes,
		Skipped:   summary.Skipped,
		Duration:  summary.Duration,
		ScannedAt: time.Now(),
	}
	data, err := json.Marshal(rec)
	if err != nil {
		return err
	}

	if s.db != nil {
		err = s.db.Update(func(tx *bolt.Tx) error {
			if err := tx.Bucket(bucketSummaries).Put([]byte(root), data); err != nil {
				return err
			}
			b := tx.Bucket(bucketEntries)
			if err := deletePrefix(b, root+keySep); err != nil {
				return err
			}
			for _, entry := range summary.Entries {
				v, err := json.Marshal(entry)
				if err != nil {
					return err
				}
				if err := b.Put([]byte(root+keySep+entry.Path), v); err != nil {
					return err
				}
			}
			return nil
		})
		if err != nil {
			return fmt.Errorf("failed to save catalog: %w", err)
		}
	}

	s.mu.Lock()
	s.summaries[root] = rec
	s.entries[root] = append([]scan.Entry(nil), summary.Entries...)
	s.mu.Unlock()
	return nil
}

// Summary returns the stored summary for root, with its entries.
func (s *CatalogStore) Summary(root string) (scan.Summary, bool) {
	root = scan.NormalizeRoot(root)

	rec, ok := s.getSummary(root)
	if !ok {
		return scan.Summary{}, false
	}
	entries, _ := s.Entries(root)
	return scan.Summary{
		Root:     rec.Root,
		Files:    rec.Files,
		Bytes:    rec.Bytes,
		Skipped:  rec.Skipped,
		Duration: rec.Duration,
		Entries:  entries,
	}, true
}

// ScannedAt returns when root was last saved
func (s *CatalogStore) ScannedAt(root string) (time.Time, bool) {
	rec, ok := s.getSummary(scan.NormalizeRoot(root))
	return rec.ScannedAt, ok
}

// Entries returns the cataloged entries for root in path order.
func (s *CatalogStore) Entries(root string) ([]scan.Entry, bool) {
	root = scan.NormalizeRoot(root)

	s.mu.RLock()
	if entries, ok := s.entries[root]; ok {
		s.mu.RUnlock()
		return entries, true
	}
	s.mu.RUnlock()

	if s.db == nil {
		return nil, false
	}

	if _, ok := s.getSummary(root); !ok {
		return nil, false
	}

	var entries []scan.Entry
	err := s.db.View(func(tx *bolt.Tx) error {
		c := tx.Bucket(bucketEntries).Cursor()
		prefix := []byte(root + keySep)
		for k, v := c.Seek(prefix); k != nil && strings.HasPrefix(string(k), string(prefix)); k, v = c.Next() {
			var entry scan.Entry
			if err := json.Unmarshal(v, &entry); err != nil {
				return err
			}
			entries = append(entries, entry)
		}
		return nil
	})
	if err != nil {
		return nil, false
	}

	// Promote to memory cache
	s.mu.Lock()
	s.entries[root] = entries
	s.mu.Unlock()

	return entries, true
}

// Roots lists every cataloged root, sorted.
func (s *CatalogStore) Roots() []string {
	seen := make(map[string]bool)

	s.mu.RLock()
	for root := range s.summaries {
		seen[root] = true
	}
	s.mu.RUnlock()

	if s.db != nil {
		s.db.View(func(tx *bolt.Tx) error {
			return tx.Bucket(bucketSummaries).ForEach(func(k, _ []byte) error {
				seen[string(k)] = true
				return nil
			})
		})
	}

	roots := make([]string, 0, len(seen))
	for root := range seen {
		roots = append(roots, root)
	}
	sort.Strings(roots)
	return roots
}

// Invalidate drops the catalog for root.
func (s *CatalogStore) Invalidate(root string) {
	root = scan.NormalizeRoot(root)

	s.mu.Lock()
	delete(s.summaries, root)
	delete(s.entries, root)
	s.mu.Unlock()

	if s.db == nil {
		return
	}

	s.db.Update(func(tx *bolt.Tx) error {
		if err := tx.Bucket(bucketSummaries).Delete([]byte(root)); err != nil {
			return err
		}
		return deletePrefix(tx.Bucket(bucketEntries), root+keySep)
	})
}

func (s *CatalogStore) getSummary(root string) (summaryRecord, bool) {
	s.mu.RLock()
	if rec, ok := s.summaries[root]; ok {
		s.mu.RUnlock()
		return rec, true
	}
	s.mu.RUnlock()

	if s.db == nil {
		return summaryRecord{}, false
	}

	var data []byte
	s.db.View(func(tx *bolt.Tx) error {
		if v := tx.Bucket(bucketSummaries).Get([]byte(root)); v != nil {
			data = make([]byte, len(v))
			copy(data, v)
		}
		return nil
	})
	if data == nil {
		return summaryRecord{}, false
	}

	var rec summaryRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return summaryRecord{}, false
	}

	s.mu.Lock()
	s.summaries[root] = rec
	s.mu.Unlock()
	return rec, true
}

// deletePrefix removes every key in b starting with prefix
func deletePrefix(b *bolt.Bucket, prefix string) error {
	var keys [][]byte
	c := b.Cursor()
	for k, _ := c.Seek([]byte(prefix)); k != nil && strings.HasPrefix(string(k), prefix); k, _ = c.Next() {
		keys = append(keys, append([]byte(nil), k...))
	}
	for _, k := range keys {
		if err := b.Delete(k); err != nil {
			return err
		}
	}
	return nil
}
