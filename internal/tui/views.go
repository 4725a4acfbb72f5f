package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/mmcdole/reel/internal/search"
	"github.com/mmcdole/reel/internal/tui/styles"
)

// sizeColumnWidth fits humanize output like "1023 MB"
const sizeColumnWidth = 9

// View renders the application
func (m Model) View() string {
	if !m.Ready {
		return "Loading..."
	}

	sections := []string{
		m.renderHeader(),
		m.renderStatus(),
		m.renderFilter(),
		m.renderList(),
		m.renderFooter(),
	}
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m Model) renderHeader() string {
	title := styles.TitleStyle.Render("reel")
	root := styles.DimStyle.Render(styles.TruncateLeft(m.Opts.Root, m.Width-8))
	return styles.HeaderStyle.Render(title + "  " + root)
}

// renderStatus renders the scan state line
func (m Model) renderStatus() string {
	var line string
	switch {
	case m.Scanning:
		text := fmt.Sprintf("Scanning · %s visited · %s matched",
			humanize.Comma(int64(m.Last.Scanned)), humanize.Comma(int64(m.Last.Matched)))
		if m.Last.Current != "" {
			room := m.Width - lipgloss.Width(text) - 8
			if room > 10 {
				text += " · " + styles.TruncateLeft(m.Last.Current, room)
			}
		}
		line = m.Spinner.View() + " " + styles.DimStyle.Render(text)

	case m.Failed:
		line = styles.ErrorStyle.Render("✗ Scan failed (see log)")

	case m.Summary != nil:
		line = RenderSummary(m.Summary.Files, m.Summary.Bytes, m.Summary.Skipped, m.Summary.Duration, m.Cached)

	default:
		line = styles.DimStyle.Render("Not scanned yet")
	}
	return styles.HeaderStyle.Render(line)
}

// RenderSummary renders a completed scan's statistics
func RenderSummary(files int, bytes int64, skipped int, took time.Duration, cached bool) string {
	parts := []string{
		humanize.Comma(int64(files)) + " files",
		humanize.Bytes(uint64(bytes)),
	}
	if skipped > 0 {
		parts = append(parts, humanize.Comma(int64(skipped))+" skipped")
	}
	if cached {
		parts = append(parts, "from catalog")
	} else {
		parts = append(parts, "took "+took.Round(time.Millisecond).String())
	}
	return styles.SuccessStyle.Render("✓ ") + styles.SubtitleStyle.Render(strings.Join(parts, " · "))
}

func (m Model) renderFilter() string {
	if !m.Filtering && m.Filter.Value() == "" {
		return ""
	}
	return styles.HeaderStyle.Render(m.Filter.View())
}

func (m Model) renderList() string {
	matches := m.Index.Filter(m.Filter.Value())
	height := m.listHeight()

	if len(matches) == 0 {
		msg := "No files"
		if m.Filter.Value() != "" {
			msg = "No matches"
		}
		return lipgloss.NewStyle().Height(height).Render(styles.HeaderStyle.Render(styles.DimStyle.Render(msg)))
	}

	end := m.Offset + height
	if end > len(matches) {
		end = len(matches)
	}

	rows := make([]string, 0, end-m.Offset)
	for i := m.Offset; i < end; i++ {
		rows = append(rows, m.renderRow(matches[i], i == m.Cursor))
	}
	return lipgloss.NewStyle().Height(height).Render(strings.Join(rows, "\n"))
}

// renderRow renders one catalog entry with matched characters highlighted
func (m Model) renderRow(match search.Match, selected bool) string {
	width := m.Width - 2
	if m.ShowSizes {
		width -= sizeColumnWidth + 1
	}
	if width < 10 {
		width = 10
	}

	path := match.Entry.Path
	var text string
	if lipgloss.Width(path) <= width {
		text = styles.Highlight(path, match.MatchedIndexes, selected)
		text += padding(width-lipgloss.Width(path), selected)
	} else {
		// Offsets no longer line up once the path is truncated
		text = styles.Highlight(styles.TruncateLeft(path, width), nil, selected)
	}

	row := text
	if m.ShowSizes {
		size := fmt.Sprintf(" %*s", sizeColumnWidth, humanize.Bytes(uint64(match.Entry.Size)))
		if selected {
			row += styles.SelectedItemStyle.Render(size)
		} else {
			row += styles.DimStyle.Render(size)
		}
	}

	marker := " "
	if selected {
		marker = styles.AccentStyle.Render("▌")
	}
	return marker + row
}

func padding(n int, selected bool) string {
	if n <= 0 {
		return ""
	}
	pad := strings.Repeat(" ", n)
	if selected {
		return styles.SelectedItemStyle.Render(pad)
	}
	return pad
}

func (m Model) renderFooter() string {
	var left string
	if m.StatusMsg != "" {
		if m.StatusIsErr {
			left = styles.ErrorStyle.Render(m.StatusMsg)
		} else {
			left = styles.AccentStyle.Render(m.StatusMsg)
		}
	}

	help := []string{
		renderHelpKey(Keys.Rescan.Help().Key, Keys.Rescan.Help().Desc),
		renderHelpKey(Keys.Filter.Help().Key, Keys.Filter.Help().Desc),
		renderHelpKey(Keys.Quit.Help().Key, Keys.Quit.Help().Desc),
	}
	right := strings.Join(help, "  ")

	gap := m.Width - lipgloss.Width(left) - lipgloss.Width(right) - 2
	if gap < 1 {
		gap = 1
	}
	return styles.HeaderStyle.Render(left + strings.Repeat(" ", gap) + right)
}

func renderHelpKey(k, desc string) string {
	return styles.HelpKeyStyle.Render(k) + " " + styles.HelpDescStyle.Render(desc)
}
