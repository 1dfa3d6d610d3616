package statsui

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/verte-zerg/mojido/internal/stats"
)

const (
	plotHeight   = 10
	cardWidth    = 18
	weakestShown = 8
)

// Indigo and vermilion on charcoal.
var (
	colorInk    = lipgloss.Color("#ECE6DA")
	colorDim    = lipgloss.Color("#7C7A76")
	colorMuted  = lipgloss.Color("#A9A49B")
	colorRule   = lipgloss.Color("#3D4450")
	colorAccent = lipgloss.Color("#D9534A")
	colorIndigo = lipgloss.Color("#5A78B4")
)

var (
	tabStyle = lipgloss.NewStyle().
			Padding(0, 1).
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(colorRule).
			Foreground(colorMuted)
	activeTabStyle = tabStyle.
			BorderForeground(colorAccent).
			Foreground(colorInk).
			Bold(true)
	hintTextStyle  = lipgloss.NewStyle().Foreground(colorDim)
	errorStyle     = lipgloss.NewStyle().Foreground(colorAccent).Bold(true)
	cardStyle      = tabStyle.Width(cardWidth - 2)
	cardLabelStyle = lipgloss.NewStyle().Foreground(colorDim)
	cardValueStyle = lipgloss.NewStyle().Foreground(colorInk).Bold(true)
	weakStyle      = lipgloss.NewStyle().Foreground(colorAccent)
	tableStyle     = lipgloss.NewStyle().Foreground(colorMuted)
	modalStyle     = lipgloss.NewStyle().
			Border(lipgloss.DoubleBorder(), true).
			BorderForeground(colorIndigo).
			Padding(1, 2)
)

type keyHelp struct {
	key, desc string
}

func helpLine(keys ...keyHelp) string {
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = k.key + " " + k.desc
	}
	return strings.Join(parts, " · ")
}

// View implements tea.Model.
func (m *Model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}
	if m.unitInputMode {
		return fitBlock(m.renderUnitModal(), m.width, m.height)
	}
	headerHeight, bodyHeight, footerHeight := m.layoutHeights()
	return strings.Join([]string{
		fitBlock(m.renderHeader(), m.width, headerHeight),
		fitBlock(m.renderBody(), m.width, bodyHeight),
		fitBlock(m.renderFooter(), m.width, footerHeight),
	}, "\n")
}

func (m *Model) layoutHeights() (headerHeight, bodyHeight, footerHeight int) {
	headerHeight = lipgloss.Height(tabStyle.Render("tab")) + 1
	footerHeight = 1
	if !m.filterMode && m.errMsg != "" {
		footerHeight = 2
	}
	bodyHeight = max(1, m.height-headerHeight-footerHeight)
	return headerHeight, bodyHeight, footerHeight
}

func (m *Model) renderHeader() string {
	tabs := make([]string, len(m.tabs))
	for i, name := range m.tabs {
		style := tabStyle
		if i == m.activeTab {
			style = activeTabStyle
		}
		tabs[i] = style.Render(name)
	}
	bar := lipgloss.JoinHorizontal(lipgloss.Bottom, tabs...)
	return bar + "\n" + hintTextStyle.Render(truncateLine(m.filterSummary(), m.width))
}

func (m *Model) filterSummary() string {
	level := m.cfg.Level
	if level == "" {
		level = "any"
	}
	last := "all"
	if m.cfg.Last > 0 {
		last = strconv.Itoa(m.cfg.Last)
	}
	return fmt.Sprintf("level %s · due only %t · sessions %s · window %d", level, m.cfg.Due, last, m.cfg.CurveWindow)
}

func (m *Model) renderFooter() string {
	var help string
	switch {
	case m.filterMode:
		help = helpLine(keyHelp{"tab", "next field"}, keyHelp{"enter", "apply"}, keyHelp{"esc", "cancel"})
	case m.activeTab == tabKanaCurves:
		help = helpLine(keyHelp{"←/→", "tabs"}, keyHelp{"enter", "pick kana"}, keyHelp{"-/=", "window"}, keyHelp{"/", "filters"}, keyHelp{"q", "quit"})
	default:
		help = helpLine(keyHelp{"←/→", "tabs"}, keyHelp{"↑/↓", "scroll"}, keyHelp{"-/=", "window"}, keyHelp{"/", "filters"}, keyHelp{"q", "quit"})
	}
	out := hintTextStyle.Render(truncateLine(help, m.width))
	if !m.filterMode && m.errMsg != "" {
		out += "\n" + errorStyle.Render(truncateLine(m.errMsg, m.width))
	}
	return out
}

func (m *Model) renderBody() string {
	switch {
	case m.filterMode:
		lines := []string{cardValueStyle.Render("Filters")}
		for _, input := range m.filterInputs {
			lines = append(lines, input.View())
		}
		if m.filterError != "" {
			lines = append(lines, "", errorStyle.Render(m.filterError))
		}
		return strings.Join(lines, "\n")
	case m.activeTab == tabKanaTable:
		if len(m.report.Mastery) == 0 {
			return hintTextStyle.Render("No kana match the current filters.")
		}
		return tableStyle.Render(m.kanaTable.View())
	}
	return m.viewports[m.activeTab].View()
}

func (m *Model) renderTabContents() {
	if m.errMsg != "" {
		return
	}
	width := m.width
	if width <= 0 {
		width = 80
	}
	m.viewports[tabOverview].SetContent(renderOverview(m.report, m.cfg.CurveWindow, width))
	m.viewports[tabKanaCurves].SetContent(renderKanaCurves(m.report, m.cfg.CurveWindow, width))
}

func renderOverview(r stats.Report, window, width int) string {
	blocks := []string{summaryCards(r, width)}
	if weak := stats.WeakestUnits(r.AllMastery, weakestShown); len(weak) > 0 {
		parts := make([]string, len(weak))
		for i, c := range weak {
			parts[i] = fmt.Sprintf("%s %.2f", c.Char, c.MasteryScore)
		}
		blocks = append(blocks, cardLabelStyle.Render("Weakest  ")+weakStyle.Render(strings.Join(parts, "  ")))
	}
	if len(r.Sessions) == 0 {
		blocks = append(blocks, hintTextStyle.Render("No finished sessions yet."))
		return strings.Join(blocks, "\n\n")
	}
	var buf bytes.Buffer
	if err := stats.RenderCurves(&buf, r.Sessions, window, width, plotHeight, true); err != nil {
		blocks = append(blocks, errorStyle.Render(fmt.Sprintf("curves: %v", err)))
	} else {
		blocks = append(blocks, strings.TrimRight(buf.String(), "\n"))
	}
	return strings.Join(blocks, "\n\n")
}

// summaryCards lays the profile cards out in as many columns as fit.
func summaryCards(r stats.Report, width int) string {
	p := r.Profile
	cards := []string{
		metricCard("Skill", fmt.Sprintf("%.0f%%", p.OverallSkill*100)),
		metricCard("Difficulty", fmt.Sprintf("%.2f", p.CurrentDifficulty)),
		metricCard("Baseline", fmt.Sprintf("%.0f ms", p.SpeedBaselineMs)),
		metricCard("Day streak", strconv.Itoa(r.DayStreak)),
		metricCard("Due", strconv.Itoa(r.DueCount)),
		metricCard("Kana typed", strconv.FormatInt(p.CharsTypedTotal, 10)),
	}
	if r.HasLast {
		_, acc := stats.SessionMetrics(r.LastSession)
		cards = append(cards, metricCard("Last session", fmt.Sprintf("%.0f%% ×%d", acc*100, r.LastSession.MaxStreak)))
	}
	perRow := max(1, width/cardWidth)
	var rows []string
	for start := 0; start < len(cards); start += perRow {
		end := min(len(cards), start+perRow)
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, cards[start:end]...))
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

func metricCard(label, value string) string {
	return cardStyle.Render(cardLabelStyle.Render(label) + "\n" + cardValueStyle.Render(value))
}

func renderKanaCurves(r stats.Report, window, width int) string {
	switch {
	case len(r.Sessions) == 0:
		return hintTextStyle.Render("No finished sessions yet.")
	case len(r.CurveUnits) == 0:
		return hintTextStyle.Render("No kana picked. Press enter to choose some.")
	}
	var buf bytes.Buffer
	if err := stats.RenderUnitCurves(&buf, r.Sessions, r.UnitSessions, r.CurveUnits, window, width, plotHeight, true); err != nil {
		return errorStyle.Render(fmt.Sprintf("kana curves: %v", err))
	}
	header := cardLabelStyle.Render("Kana: " + strings.Join(r.CurveUnits, ", "))
	return header + "\n" + strings.TrimRight(buf.String(), "\n")
}

// kanaTableData sizes each column to its widest cell.
func kanaTableData(r stats.Report) ([]table.Column, []table.Row) {
	cells := stats.MasteryRows(r.Mastery, r.Now)
	cols := make([]table.Column, len(stats.MasteryHeaders))
	for i, title := range stats.MasteryHeaders {
		cols[i] = table.Column{Title: title, Width: runewidth.StringWidth(title)}
	}
	rows := make([]table.Row, len(cells))
	for i, row := range cells {
		for j, cell := range row {
			cols[j].Width = max(cols[j].Width, runewidth.StringWidth(cell))
		}
		rows[i] = table.Row(row)
	}
	return cols, rows
}

func kanaTableStyles() table.Styles {
	s := table.DefaultStyles()
	s.Header = lipgloss.NewStyle().
		Foreground(colorInk).
		Bold(true).
		PaddingRight(1).
		Border(lipgloss.NormalBorder(), false, false, true, false).
		BorderForeground(colorRule)
	s.Cell = lipgloss.NewStyle().PaddingRight(1)
	s.Selected = lipgloss.NewStyle().Foreground(colorAccent).Bold(true)
	return s
}

func (m *Model) renderUnitModal() string {
	body := strings.Join([]string{
		cardValueStyle.Render("Kana curves"),
		m.unitInput.View(),
		"",
		hintTextStyle.Render("Separate kana with commas or 、. Empty shows the most practiced."),
		hintTextStyle.Render(helpLine(keyHelp{"enter", "apply"}, keyHelp{"esc", "cancel"})),
	}, "\n")
	box := modalStyle.Width(modalWidth(m.width)).Render(body)
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, box)
}

func modalWidth(width int) int {
	return max(40, min(width-4, 72))
}

// modalInnerWidth leaves room for the border and padding.
func modalInnerWidth(width int) int {
	return max(10, modalWidth(width)-6)
}

// fitBlock pads every line of s to width cells and clamps the block to
// exactly height lines.
func fitBlock(s string, width, height int) string {
	if width <= 0 || height <= 0 {
		return s
	}
	lines := strings.Split(s, "\n")
	if len(lines) > height {
		lines = lines[:height]
	}
	out := make([]string, height)
	for i := range out {
		line := ""
		if i < len(lines) {
			line = lines[i]
		}
		if gap := width - lipgloss.Width(line); gap > 0 {
			line += strings.Repeat(" ", gap)
		}
		out[i] = line
	}
	return strings.Join(out, "\n")
}

// truncateLine cuts s to width display cells.
func truncateLine(s string, width int) string {
	if width <= 0 || runewidth.StringWidth(s) <= width {
		return s
	}
	tail := "..."
	if width <= len(tail) {
		tail = ""
	}
	return runewidth.Truncate(s, width, tail)
}
