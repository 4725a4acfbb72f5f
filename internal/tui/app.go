package tui

import (
	"log/slog"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/mmcdole/reel/internal/runner"
	"github.com/mmcdole/reel/internal/scan"
	"github.com/mmcdole/reel/internal/search"
	"github.com/mmcdole/reel/internal/store"
	"github.com/mmcdole/reel/internal/tui/styles"
)

// Vertical chrome: header, status line, filter line, footer
const ChromeHeight = 4

const statusTimeout = 3 * time.Second

// Model is the main Bubble Tea model for the application
type Model struct {
	Ready bool

	// Services
	Pool   *runner.Pool
	Store  *store.CatalogStore
	Logger *slog.Logger
	Opts   scan.Options

	// UI Components
	Spinner spinner.Model
	Filter  textinput.Model
	Index   *search.Index

	// Scan state
	Gen      int // Generation of the active scan
	Scanning bool
	Failed   bool
	Last     scan.Update
	Summary  *scan.Summary // Last completed (or stored) scan
	Cached   bool          // Summary came from the store, not this session

	// Results of the previous scan stay visible until the new one produces
	pendingReset bool

	// Dimensions
	Width  int
	Height int

	// UI state
	Filtering   bool
	Cursor      int
	Offset      int
	ShowSizes   bool
	StatusMsg   string
	StatusIsErr bool
}

// NewModel creates a new application model
func NewModel(pool *runner.Pool, st *store.CatalogStore, opts scan.Options, showSizes bool, logger *slog.Logger) Model {
	if logger == nil {
		logger = slog.Default()
	}

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = styles.SpinnerStyle

	ti := textinput.New()
	ti.Prompt = "/ "
	ti.PromptStyle = styles.FilterPromptStyle
	ti.Placeholder = "filter paths"

	opts.Root = scan.NormalizeRoot(opts.Root)

	return Model{
		Pool:      pool,
		Store:     st,
		Logger:    logger,
		Opts:      opts,
		Spinner:   sp,
		Filter:    ti,
		Index:     search.NewIndex(),
		ShowSizes: showSizes,
	}
}

// Init loads the stored catalog; the first scan starts once it is shown
func (m Model) Init() tea.Cmd {
	return LoadCatalogCmd(m.Store, m.Opts.Root)
}

// Update handles messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height
		m.Ready = true
		m.clampCursor()
		return m, nil

	case tea.KeyMsg:
		return m.handleKeyMsg(msg)

	case spinner.TickMsg:
		if !m.Scanning {
			return m, nil
		}
		var cmd tea.Cmd
		m.Spinner, cmd = m.Spinner.Update(msg)
		return m, cmd

	case CatalogLoadedMsg:
		if msg.Found {
			summary := msg.Summary
			m.Summary = &summary
			m.Cached = true
			m.Index.Add(summary.Entries...)
		}
		return m.startScan()

	case ScanProgressMsg:
		// Always keep draining, even stale scans, so the worker is never left blocked
		if msg.Gen == m.Gen {
			m.Last = msg.Update
			if msg.Update.Entry != nil {
				m.resetIfPending()
				m.Index.Add(*msg.Update.Entry)
			}
		}
		return m, msg.Next

	case ScanCompletedMsg:
		if msg.Gen != m.Gen {
			return m, msg.Next
		}
		m.Scanning = false
		if !msg.OK {
			m.Failed = true
			m.Logger.Warn("scan finished without result", "root", m.Opts.Root)
			return m, msg.Next
		}
		m.resetIfPending()
		summary := msg.Summary
		m.Summary = &summary
		m.Cached = false
		m.Logger.Info("scan complete", "root", summary.Root, "files", summary.Files, "duration", summary.Duration)
		return m, tea.Batch(msg.Next, SaveCatalogCmd(m.Store, summary))

	case TaskDoneMsg:
		m.Logger.Debug("scan task done", "task", msg.TaskID, "gen", msg.Gen)
		if msg.Err != nil {
			return m.setStatus("scan task: "+msg.Err.Error(), true)
		}
		return m, nil

	case CatalogSavedMsg:
		return m.setStatus("catalog saved", false)

	case ErrMsg:
		m.Logger.Error("operation failed", "context", msg.Context, "error", msg.Err)
		return m.setStatus(msg.Error(), true)

	case StatusMsg:
		return m.setStatus(msg.Message, msg.IsError)

	case ClearStatusMsg:
		m.StatusMsg = ""
		m.StatusIsErr = false
		return m, nil
	}

	return m, nil
}

// handleKeyMsg handles keyboard input
func (m Model) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.Filtering {
		switch {
		case key.Matches(msg, Keys.Escape):
			m.Filtering = false
			m.Filter.Blur()
			m.Filter.SetValue("")
			m.Cursor, m.Offset = 0, 0
			return m, nil
		case key.Matches(msg, Keys.Accept):
			m.Filtering = false
			m.Filter.Blur()
			return m, nil
		}
		var cmd tea.Cmd
		m.Filter, cmd = m.Filter.Update(msg)
		m.Cursor, m.Offset = 0, 0
		return m, cmd
	}

	switch {
	case key.Matches(msg, Keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, Keys.Rescan):
		if m.Scanning {
			return m.setStatus("scan already running", false)
		}
		return m.startScan()
	case key.Matches(msg, Keys.Filter):
		m.Filtering = true
		cmd := m.Filter.Focus()
		return m, cmd
	case key.Matches(msg, Keys.Escape):
		m.Filter.SetValue("")
		m.Cursor, m.Offset = 0, 0
	case key.Matches(msg, Keys.Up):
		m.Cursor--
	case key.Matches(msg, Keys.Down):
		m.Cursor++
	case key.Matches(msg, Keys.PageUp):
		m.Cursor -= m.listHeight()
	case key.Matches(msg, Keys.PageDown):
		m.Cursor += m.listHeight()
	}
	m.clampCursor()
	return m, nil
}

// startScan begins a new scan generation. Earlier results stay on screen
// until the new scan produces its first entry.
func (m Model) startScan() (tea.Model, tea.Cmd) {
	m.Gen++
	m.Scanning = true
	m.Failed = false
	m.Last = scan.Update{}
	m.pendingReset = true
	m.Logger.Info("scan started", "root", m.Opts.Root, "gen", m.Gen)
	return m, tea.Batch(ScanCmd(m.Pool, m.Opts, m.Gen, m.Logger), m.Spinner.Tick)
}

func (m *Model) resetIfPending() {
	if !m.pendingReset {
		return
	}
	m.pendingReset = false
	m.Index.Reset()
	m.Cursor, m.Offset = 0, 0
}

func (m Model) setStatus(text string, isErr bool) (tea.Model, tea.Cmd) {
	m.StatusMsg = text
	m.StatusIsErr = isErr
	return m, ClearStatusCmd(statusTimeout)
}

func (m Model) listHeight() int {
	h := m.Height - ChromeHeight
	if h < 1 {
		return 1
	}
	return h
}

// clampCursor keeps the cursor within the filtered results and scrolls the window
func (m *Model) clampCursor() {
	n := len(m.Index.Filter(m.Filter.Value()))
	if m.Cursor >= n {
		m.Cursor = n - 1
	}
	if m.Cursor < 0 {
		m.Cursor = 0
	}

	h := m.listHeight()
	if m.Cursor < m.Offset {
		m.Offset = m.Cursor
	}
	if m.Cursor >= m.Offset+h {
		m.Offset = m.Cursor - h + 1
	}
	if m.Offset < 0 {
		m.Offset = 0
	}
}
