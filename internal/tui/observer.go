package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/mmcdole/reel/internal/progress"
	"github.com/mmcdole/reel/internal/scan"
)

// ChannelObserver adapts a scan's notifications to a channel for Bubble Tea.
type ChannelObserver struct {
	ch  chan<- tea.Msg
	gen int
}

// NewChannelObserver creates a new channel-based observer.
func NewChannelObserver(ch chan<- tea.Msg, gen int) *ChannelObserver {
	return &ChannelObserver{ch: ch, gen: gen}
}

// OnProgress sends progress to the channel. Blocks until the UI reads it.
func (o *ChannelObserver) OnProgress(update scan.Update) {
	o.ch <- ScanProgressMsg{Gen: o.gen, Update: update}
}

// OnComplete sends the completion to the channel.
func (o *ChannelObserver) OnComplete(result progress.Completion[scan.Summary]) {
	summary, ok := result.Get()
	o.ch <- ScanCompletedMsg{Gen: o.gen, Summary: summary, OK: ok}
}
