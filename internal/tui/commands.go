package tui

import (
	"log/slog"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/mmcdole/reel/internal/progress"
	"github.com/mmcdole/reel/internal/runner"
	"github.com/mmcdole/reel/internal/scan"
	"github.com/mmcdole/reel/internal/store"
)

// Command factories for async operations

// ScanCmd drives a scan on the runner pool with streaming progress updates.
// Uses a continuation pattern to pump every notification to the UI in order.
func ScanCmd(pool *runner.Pool, opts scan.Options, gen int, logger *slog.Logger) tea.Cmd {
	return func() tea.Msg {
		events := make(chan tea.Msg)

		it := progress.New(
			scan.NewFactory(opts),
			progress.WithLogger(logger),
			progress.WithName("scan:"+opts.Root),
		)
		it.Subscribe(NewChannelObserver(events, gen))

		// Submit may block while workers are busy
		go func() {
			task := pool.Submit(it)
			<-task.Done()
			events <- TaskDoneMsg{Gen: gen, TaskID: task.ID(), Err: task.Err()}
			close(events)
		}()

		// Read the first message and return it with continuation context
		return readScanEvent(events)
	}
}

// readScanEvent reads one message from the channel and attaches the
// continuation command. TaskDoneMsg ends the chain.
func readScanEvent(events <-chan tea.Msg) tea.Msg {
	msg, ok := <-events
	if !ok {
		return nil
	}

	switch m := msg.(type) {
	case ScanProgressMsg:
		m.Next = listenToScanCmd(events)
		return m
	case ScanCompletedMsg:
		m.Next = listenToScanCmd(events)
		return m
	}
	return msg
}

// listenToScanCmd returns a command that reads the next message from the channel
func listenToScanCmd(events <-chan tea.Msg) tea.Cmd {
	return func() tea.Msg {
		return readScanEvent(events)
	}
}

// LoadCatalogCmd loads the stored catalog for root, if any
func LoadCatalogCmd(st *store.CatalogStore, root string) tea.Cmd {
	return func() tea.Msg {
		summary, ok := st.Summary(root)
		return CatalogLoadedMsg{Summary: summary, Found: ok}
	}
}

// SaveCatalogCmd persists a completed scan
func SaveCatalogCmd(st *store.CatalogStore, summary scan.Summary) tea.Cmd {
	return func() tea.Msg {
		if err := st.SaveSummary(summary); err != nil {
			return ErrMsg{Err: err, Context: "saving catalog"}
		}
		return CatalogSavedMsg{Root: summary.Root, Files: summary.Files}
	}
}

// ClearStatusCmd clears the status message after a delay
func ClearStatusCmd(delay time.Duration) tea.Cmd {
	return tea.Tick(delay, func(time.Time) tea.Msg {
		return ClearStatusMsg{}
	})
}
