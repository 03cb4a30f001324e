package main

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tui "github.com/charmbracelet/bubbletea"
	styles "github.com/charmbracelet/lipgloss"
	plot "github.com/chriskim06/drawille-go"

	"github.com/buzzline/streaming-insights/internal/config"
	"github.com/buzzline/streaming-insights/internal/engine"
)

var (
	accentColor = styles.AdaptiveColor{Light: "0", Dark: "9"}
	borderColor = styles.AdaptiveColor{Light: "#555", Dark: "#555"}
	accentFg    = styles.NewStyle().Foreground(accentColor)
	borderFg    = styles.NewStyle().Foreground(borderColor)
	plotStyle   = styles.NewStyle().
			BorderStyle(styles.NormalBorder()).
			Foreground(borderColor).
			BorderForeground(borderColor)
)

// snapshotMsg carries a fresh engine snapshot into the TUI.
type snapshotMsg struct {
	snap engine.Snapshot
}

// fatalMsg surfaces a terminal ingestion error in the view.
type fatalMsg struct {
	err error
}

type model struct {
	cfg config.Config

	width, height  int
	leftPaneWidth  int
	rightPaneWidth int

	paused bool
	err    error

	snap    engine.Snapshot
	hasSnap bool

	list      list.Model
	listStyle styles.Style
	help      help.Model
	plot      *plot.Canvas
}

func newModel(cfg config.Config) *model {
	const (
		defaultWidth  = 80
		defaultHeight = 20
	)

	d := list.NewDefaultDelegate()
	d.Styles.SelectedTitle = styles.NewStyle().
		Border(styles.NormalBorder(), false, false, false, true).
		BorderForeground(borderColor).
		Foreground(accentColor).
		Bold(false).
		Padding(0, 0, 0, 1)
	d.Styles.SelectedDesc = d.Styles.SelectedTitle.
		Foreground(accentColor)
	d.ShowDescription = true

	l := list.New(make([]list.Item, 0), d, defaultWidth/2-2, defaultHeight)
	l.Styles.NoItems = l.Styles.NoItems.Padding(0, 2)
	l.SetFilteringEnabled(false)
	l.SetShowHelp(false)
	l.SetShowTitle(false)
	l.SetShowStatusBar(false)

	p := plot.NewCanvas(defaultWidth, defaultHeight)
	p.NumDataPoints = cfg.HistorySize
	p.ShowAxis = false
	p.LineColors = make([]plot.Color, 2)

	m := &model{
		cfg:  cfg,
		help: help.New(),
		list: l,
		plot: &p,
	}
	m.leftPaneWidth, m.rightPaneWidth = computePaneWidths(defaultWidth)
	return m
}

func (m *model) Init() tui.Cmd { return nil }

func (m *model) Update(msg tui.Msg) (tui.Model, tui.Cmd) {
	switch msg := msg.(type) {
	case fatalMsg:
		m.err = msg.err
		return m, nil
	case snapshotMsg:
		if m.paused {
			return m, nil
		}
		m.snap = msg.snap
		m.hasSnap = true
		m.updateList(msg)
		m.updatePlot()
		return m, nil
	case tui.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.leftPaneWidth, m.rightPaneWidth = computePaneWidths(m.width)

		// Footer: status line + stats line + help line.
		available := max(1, m.height-3)
		leftW := max(1, m.leftPaneWidth)
		rightW := max(1, m.rightPaneWidth)

		// Left pane: top-N table on top, leaderboard list beneath.
		listHeight := max(1, available-m.topNTableHeight())
		m.list.SetSize(leftW, listHeight)
		m.list.Styles.Title = styles.NewStyle()
		m.list.Styles.PaginationStyle = styles.NewStyle()
		m.list.Styles.HelpStyle = styles.NewStyle()
		m.listStyle = styles.NewStyle().Width(leftW).Height(listHeight)

		// Right side: plot canvas + 1 label line, inside a border (2 lines).
		plotHeight := max(1, available-3)
		plotWidth := max(1, rightW-2)
		m.resizePlot(plotWidth, plotHeight)
		return m, nil
	case tui.KeyMsg:
		switch {
		case key.Matches(msg, keys.Quit):
			return m, tui.Quit
		case key.Matches(msg, keys.Pause):
			m.paused = !m.paused
			return m, nil
		case key.Matches(msg, keys.Up):
			m.list.CursorUp()
			return m, nil
		case key.Matches(msg, keys.Down):
			m.list.CursorDown()
			return m, nil
		}
	}
	var cmd tui.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

// topNTableHeight is the title line plus one row per top-N entry.
func (m *model) topNTableHeight() int {
	return m.cfg.TopN + 2
}

func (m *model) resizePlot(w, h int) {
	p := plot.NewCanvas(w, h)
	p.NumDataPoints = m.plot.NumDataPoints
	p.ShowAxis = m.plot.ShowAxis
	p.LineColors = m.plot.LineColors
	m.plot = &p
}

func (m *model) updateList(msg tui.Msg) {
	rows := m.snap.Leaderboard
	items := make([]list.Item, len(rows))
	for i, row := range rows {
		items[i] = leaderboardItem{rank: i + 1, row: row}
	}
	m.list.SetItems(items)
	m.list, _ = m.list.Update(msg)
}

func (m *model) updatePlot() {
	var highlight, dim plot.Color
	if styles.DefaultRenderer().HasDarkBackground() {
		highlight, dim = plot.Red, plot.DimGray
	} else {
		highlight, dim = plot.Black, plot.LightGray
	}
	m.plot.LineColors[0] = dim
	m.plot.LineColors[1] = highlight
	if len(m.snap.Values) == 0 {
		return
	}
	m.plot.Fill([][]float64{m.snap.Values, m.snap.RollingAvg})
}

func (m *model) View() string {
	left := styles.JoinVertical(styles.Left,
		m.topNTable(),
		m.listStyle.Render(m.list.View()),
	)
	right := plotStyle.Render(styles.JoinVertical(styles.Top, m.plotView(), m.plotLabels()))
	view := styles.JoinHorizontal(styles.Top, left, right)

	footer := []string{m.statusLine(), m.statsLine(), m.help.View(keys)}
	if m.err != nil {
		errStyle := styles.NewStyle().Foreground(styles.AdaptiveColor{Light: "1", Dark: "9"})
		footer = append([]string{errStyle.Render("ERROR: " + m.err.Error())}, footer...)
	}
	return styles.JoinVertical(styles.Left, append([]string{view}, footer...)...)
}

func (m *model) topNTable() string {
	var sb strings.Builder
	sb.WriteString(borderFg.Render(fmt.Sprintf("TOP %d CATEGORIES (last %d msgs)",
		m.cfg.TopN, m.cfg.BarWindow)))
	sb.WriteRune('\n')

	rows := m.snap.TopN
	if !m.hasSnap {
		rows = []engine.CategoryCount{{Category: engine.NoDataCategory}}
	}
	maxCount := 1
	for _, row := range rows {
		if row.Count > maxCount {
			maxCount = row.Count
		}
	}
	barSpace := max(4, m.leftPaneWidth-24)
	for _, row := range rows {
		bar := strings.Repeat("█", row.Count*barSpace/maxCount)
		sb.WriteString(fmt.Sprintf("%-14s %5d %s\n", clip(row.Category, 14), row.Count, bar))
	}
	// Pad so the leaderboard below never jumps as rows appear.
	for i := len(rows); i < m.cfg.TopN; i++ {
		sb.WriteRune('\n')
	}
	return sb.String()
}

func (m *model) plotView() string {
	s := m.plot.String()
	if s == "" {
		var sb strings.Builder
		if m.width < 2 || m.height < 4 {
			return sb.String()
		}
		spaces := strings.Repeat(" ", max(1, m.rightPaneWidth-2))
		for range max(1, m.height-6) {
			sb.WriteString(spaces)
			sb.WriteRune('\n')
		}
		return sb.String()
	}
	return s
}

func (m *model) plotLabels() string {
	if len(m.snap.Times) == 0 {
		return " waiting for data from producer…"
	}
	w := max(0, m.rightPaneWidth-2)
	leftLabel := m.snap.Times[0].UTC().Format("15:04:05")
	rightLabel := m.snap.Times[len(m.snap.Times)-1].UTC().Format("15:04:05")
	mid := "value " + accentFg.Render("rolling avg")
	gap := w - len(leftLabel) - len(rightLabel) - len("value rolling avg")
	if gap < 2 {
		return " " + mid
	}
	leftGap := gap / 2
	return leftLabel +
		strings.Repeat(" ", leftGap) +
		mid +
		strings.Repeat(" ", gap-leftGap) +
		borderFg.Render(rightLabel)
}

func (m *model) statusLine() string {
	if !m.hasSnap || !m.snap.HasLast {
		return borderFg.Render("waiting for data…")
	}
	tag := "REAL"
	if m.snap.Last.Synthetic {
		tag = "SYNTH"
	}
	line := fmt.Sprintf("%s · %s · %s · value=%.2f",
		tag,
		m.snap.Last.Timestamp.UTC().Format("15:04:05"),
		m.snap.Last.Category,
		m.snap.Last.Value,
	)
	if m.snap.Stalled {
		line += " · " + accentFg.Render("STALL")
	}
	if m.paused {
		line += " · (paused)"
	}
	return line
}

func (m *model) statsLine() string {
	s := m.snap.Stats
	return borderFg.Render(fmt.Sprintf(
		"records: %d · rate: %d rec/s · dropped: %d · synthetic: %d",
		s.Records, s.AvgRPS, s.Dropped, s.Synthetic,
	))
}

// clip truncates on rune boundaries so multibyte category names stay
// valid UTF-8.
func clip(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return string(runes[:n-1]) + "…"
}

func computePaneWidths(totalWidth int) (left, right int) {
	if totalWidth <= 1 {
		return 1, 1
	}
	left = totalWidth * 40 / 100
	left = max(1, min(left, totalWidth-1))
	right = totalWidth - left

	const minPane = 18
	if totalWidth >= minPane*2 {
		if left < minPane {
			left = minPane
			right = totalWidth - left
		}
		if right < minPane {
			right = minPane
			left = totalWidth - right
		}
	}
	return max(1, left), max(1, right)
}

type leaderboardItem struct {
	rank int
	row  engine.CategoryCount
}

func (i leaderboardItem) Title() string       { return fmt.Sprintf("#%-2d %s", i.rank, i.row.Category) }
func (i leaderboardItem) Description() string { return fmt.Sprintf("    %d", i.row.Count) }
func (i leaderboardItem) FilterValue() string { return i.row.Category }

type keyMap struct {
	Pause key.Binding
	Up    key.Binding
	Down  key.Binding
	Quit  key.Binding
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Quit, k.Pause}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Quit, k.Pause},
		{k.Up, k.Down},
	}
}

var keys = keyMap{
	Pause: key.NewBinding(
		key.WithKeys("p"),
		key.WithHelp("p", "pause"),
	),
	Up: key.NewBinding(
		key.WithKeys("up", "k"),
		key.WithHelp("↑/k", "up"),
	),
	Down: key.NewBinding(
		key.WithKeys("down", "j"),
		key.WithHelp("↓/j", "down"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q/ctrl+c", "quit"),
	),
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
