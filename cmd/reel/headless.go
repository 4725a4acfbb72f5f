package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/mmcdole/reel/internal/progress"
	"github.com/mmcdole/reel/internal/runner"
	"github.com/mmcdole/reel/internal/scan"
	"github.com/mmcdole/reel/internal/search"
	"github.com/mmcdole/reel/internal/store"
)

var (
	errScanFailed = errors.New("scan failed (see log)")
	errNoCatalog  = errors.New("no catalog for root; run a scan first")
)

// runHeadless scans on a single worker and streams one line per cataloged file
func runHeadless(w io.Writer, st *store.CatalogStore, opts scan.Options, logger *slog.Logger) error {
	it := progress.New(
		scan.NewFactory(opts),
		progress.WithLogger(logger),
		progress.WithName("scan:"+opts.Root),
	)

	var result progress.Completion[scan.Summary]
	it.Subscribe(progress.ObserverFuncs[scan.Update, scan.Summary]{
		Progress: func(u scan.Update) {
			if u.Entry != nil {
				fmt.Fprintf(w, "%9s  %s\n", humanize.Bytes(uint64(u.Entry.Size)), u.Entry.Path)
			}
		},
		Complete: func(c progress.Completion[scan.Summary]) {
			result = c
		},
	})

	pool := runner.New(1, logger)
	task := pool.Submit(it)
	pool.Wait()
	if err := task.Err(); err != nil {
		return err
	}

	summary, ok := result.Get()
	if !ok {
		return errScanFailed
	}
	if err := st.SaveSummary(summary); err != nil {
		logger.Warn("failed to save catalog", "error", err)
	}

	fmt.Fprintf(w, "%s files · %s · %s skipped · took %s\n",
		humanize.Comma(int64(summary.Files)),
		humanize.Bytes(uint64(summary.Bytes)),
		humanize.Comma(int64(summary.Skipped)),
		summary.Duration.Round(time.Millisecond))
	return nil
}

// runFind prints stored entries under root that fuzzy-match query, closest first
func runFind(w io.Writer, st *store.CatalogStore, root, query string) error {
	entries, ok := st.Entries(root)
	if !ok {
		return errNoCatalog
	}

	for _, e := range search.NewIndex(entries...).Rank(query) {
		fmt.Fprintln(w, e.Path)
	}
	return nil
}
