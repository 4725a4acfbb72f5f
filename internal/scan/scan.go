// Package scan walks a directory tree as a resumable computation, yielding
// an Update per matched file and finishing with a Summary of the catalog.
package scan

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/mmcdole/reel/internal/progress"
)

// ErrRootNotDir indicates the scan root exists but is not a directory
var ErrRootNotDir = errors.New("scan root is not a directory")

var errStopped = errors.New("scan stopped by consumer")

// Options controls a single scan
type Options struct {
	Root         string
	Extensions   []string // e.g. ".mkv"; empty matches every file
	FollowHidden bool     // descend into dot-prefixed files and directories
	ReportEvery  int      // heartbeat every N visited files; 0 disables
}

// Entry is one cataloged file. Path is slash-separated and relative to the root.
type Entry struct {
	Path    string    `json:"path"`
	Size    int64     `json:"size"`
	ModTime time.Time `json:"modTime"`
	Ext     string    `json:"ext"`
}

// Update is the progress payload. Entry is nil for heartbeats.
type Update struct {
	Scanned int    // Files visited so far
	Matched int    // Files cataloged so far
	Current string // Path last visited, relative to root
	Entry   *Entry
}

// Summary is the final result of a scan
type Summary struct {
	Root     string        `json:"root"`
	Files    int           `json:"files"`
	Bytes    int64         `json:"bytes"`
	Skipped  int           `json:"skipped"` // Entries that could not be read
	Duration time.Duration `json:"duration"`
	Entries  []Entry       `json:"entries"`
}

// NewFactory returns a factory producing a fresh scan of opts.Root each time
// it is invoked. The root is resolved at invocation; an unusable root is a
// fault of the factory.
func NewFactory(opts Options) progress.Factory[Update, Summary] {
	return func() (progress.Sequence[Update, Summary], error) {
		root, err := filepath.Abs(opts.Root)
		if err != nil {
			return nil, fmt.Errorf("resolve scan root: %w", err)
		}
		info, err := os.Stat(root)
		if err != nil {
			return nil, fmt.Errorf("stat scan root: %w", err)
		}
		if !info.IsDir() {
			return nil, fmt.Errorf("%w: %s", ErrRootNotDir, root)
		}

		w := &walker{
			root: root,
			opts: opts,
			exts: normalizeExtensions(opts.Extensions),
		}
		return progress.Generate(w.walk), nil
	}
}

// NormalizeRoot returns the absolute, cleaned form of root used as catalog key
func NormalizeRoot(root string) string {
	abs, err := filepath.Abs(root)
	if err != nil {
		return filepath.Clean(root)
	}
	return abs
}

type walker struct {
	root string
	opts Options
	exts []string
}

func (w *walker) walk(yield func(Update) bool) (Summary, error) {
	start := time.Now()
	summary := Summary{Root: w.root}
	scanned := 0

	err := filepath.WalkDir(w.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == w.root {
				return err
			}
			summary.Skipped++
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}

		if path != w.root && !w.opts.FollowHidden && strings.HasPrefix(d.Name(), ".") {
			if d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}

		scanned++
		rel, relErr := filepath.Rel(w.root, path)
		if relErr != nil {
			rel = path
		}
		rel = filepath.ToSlash(rel)

		update := Update{Scanned: scanned, Matched: summary.Files, Current: rel}
		if w.matches(d.Name()) {
			info, infoErr := d.Info()
			if infoErr != nil {
				summary.Skipped++
				return nil
			}
			entry := Entry{
				Path:    rel,
				Size:    info.Size(),
				ModTime: info.ModTime(),
				Ext:     strings.ToLower(filepath.Ext(d.Name())),
			}
			summary.Files++
			summary.Bytes += entry.Size
			summary.Entries = append(summary.Entries, entry)

			update.Matched = summary.Files
			update.Entry = &entry
			if !yield(update) {
				return errStopped
			}
			return nil
		}

		if w.opts.ReportEvery > 0 && scanned%w.opts.ReportEvery == 0 {
			if !yield(update) {
				return errStopped
			}
		}
		return nil
	})

	summary.Duration = time.Since(start)
	if err != nil && !errors.Is(err, errStopped) {
		return summary, fmt.Errorf("walk %s: %w", w.root, err)
	}
	return summary, nil
}

func (w *walker) matches(name string) bool {
	if len(w.exts) == 0 {
		return true
	}
	return slices.Contains(w.exts, strings.ToLower(filepath.Ext(name)))
}

// normalizeExtensions lowercases and dot-prefixes each extension
func normalizeExtensions(exts []string) []string {
	out := make([]string, 0, len(exts))
	for _, ext := range exts {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		out = append(out, ext)
	}
	return out
}
