package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/mmcdole/reel/internal/scan"
)

// Message types for the TUI

// ErrMsg represents an error
type ErrMsg struct {
	Err     error
	Context string
}

// Error implements the error interface
func (e ErrMsg) Error() string {
	if e.Context != "" {
		return e.Context + ": " + e.Err.Error()
	}
	return e.Err.Error()
}

// ScanProgressMsg carries one progress notification from a running scan
type ScanProgressMsg struct {
	Gen    int // Scan generation; stale generations are ignored
	Update scan.Update
	Next   tea.Cmd // Continuation that reads the next notification
}

// ScanCompletedMsg carries the completion notification. OK is false when
// the scan failed; the cause is only in the log.
type ScanCompletedMsg struct {
	Gen     int
	Summary scan.Summary
	OK      bool
	Next    tea.Cmd
}

// TaskDoneMsg signals the runner has finished the scan task. Always
// follows ScanCompletedMsg.
type TaskDoneMsg struct {
	Gen    int
	TaskID string
	Err    error
}

// CatalogLoadedMsg carries a previously stored catalog. Found is false
// when the root has never been scanned.
type CatalogLoadedMsg struct {
	Summary scan.Summary
	Found   bool
}

// CatalogSavedMsg signals that a completed scan was persisted
type CatalogSavedMsg struct {
	Root  string
	Files int
}

// StatusMsg sets a temporary status message
type StatusMsg struct {
	Message string
	IsError bool
}

// ClearStatusMsg clears the status bar message
type ClearStatusMsg struct{}
