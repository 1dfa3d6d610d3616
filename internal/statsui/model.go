// Package statsui provides the Bubble Tea stats interface.
package statsui

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/mojido/internal/model"
	"github.com/verte-zerg/mojido/internal/stats"
	"github.com/verte-zerg/mojido/internal/store"
)

const (
	tabOverview = iota
	tabKanaTable
	tabKanaCurves
)

const (
	fieldLevel = iota
	fieldDue
	fieldLast
	fieldWindow
)

// filterField binds one settings input to a StatsConfig field.
type filterField struct {
	prompt string
	value  func(model.StatsConfig) string
	apply  func(*model.StatsConfig, string) error
}

var filterFields = [...]filterField{
	fieldLevel: {
		prompt: "Level (new/learning/reviewing/mastered): ",
		value:  func(c model.StatsConfig) string { return strings.TrimSpace(c.Level) },
		apply: func(c *model.StatsConfig, raw string) error {
			c.Level = raw
			return nil
		},
	},
	fieldDue: {
		prompt: "Due only (y/n): ",
		value: func(c model.StatsConfig) string {
			if c.Due {
				return "y"
			}
			return "n"
		},
		apply: func(c *model.StatsConfig, raw string) error {
			switch strings.ToLower(raw) {
			case "", "n", "no", "false":
				c.Due = false
			case "y", "yes", "true":
				c.Due = true
			default:
				return errors.New("invalid due value (use y or n)")
			}
			return nil
		},
	},
	fieldLast: {
		prompt: "Last sessions: ",
		value: func(c model.StatsConfig) string {
			if c.Last > 0 {
				return strconv.Itoa(c.Last)
			}
			return ""
		},
		apply: func(c *model.StatsConfig, raw string) error {
			c.Last = 0
			if raw == "" {
				return nil
			}
			n, err := strconv.Atoi(raw)
			if err != nil || n < 0 {
				return errors.New("invalid last value (use 0 or positive integer)")
			}
			c.Last = n
			return nil
		},
	},
	fieldWindow: {
		prompt: "Curve window: ",
		value:  func(c model.StatsConfig) string { return strconv.Itoa(c.CurveWindow) },
		apply: func(c *model.StatsConfig, raw string) error {
			c.CurveWindow = 1
			if raw == "" {
				return nil
			}
			n, err := strconv.Atoi(raw)
			if err != nil || n < 1 {
				return errors.New("invalid curve window (use integer >= 1)")
			}
			c.CurveWindow = n
			return nil
		},
	},
}

// Model implements the Bubble Tea stats UI.
type Model struct {
	store *store.Store
	cfg   model.StatsConfig
	now   func() time.Time

	report stats.Report
	errMsg string

	tabs      []string
	activeTab int
	viewports []viewport.Model
	kanaTable table.Model

	width  int
	height int

	filterMode   bool
	filterInputs []textinput.Model
	filterIndex  int
	filterError  string

	unitInputMode bool
	unitInput     textinput.Model
}

// NewModel loads the first report; errors end up in the footer.
func NewModel(st *store.Store, cfg model.StatsConfig) *Model {
	m := &Model{
		store: st,
		cfg:   cfg,
		now:   time.Now,
		tabs:  []string{"Overview", "Kana Table", "Kana Curves"},
	}
	m.cfg.CurveWindow = max(1, m.cfg.CurveWindow)

	m.filterInputs = make([]textinput.Model, len(filterFields))
	for i, f := range filterFields {
		m.filterInputs[i] = newInput(f.prompt)
	}
	m.unitInput = newInput("Kana: ")
	m.unitInput.Placeholder = "し,しゃ,つ"

	m.kanaTable = table.New(table.WithHeight(1))
	m.kanaTable.SetStyles(kanaTableStyles())
	m.viewports = make([]viewport.Model, len(m.tabs))
	for i := range m.viewports {
		m.viewports[i] = viewport.New(0, 0)
	}
	m.refreshReport()
	return m
}

func newInput(prompt string) textinput.Model {
	input := textinput.New()
	input.Prompt = prompt
	input.Cursor.SetMode(cursor.CursorBlink)
	return input
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.updateLayout()
		m.renderTabContents()
	case tea.KeyMsg:
		switch {
		case msg.Type == tea.KeyCtrlC:
			return m, tea.Quit
		case m.filterMode:
			return m.updateFilter(msg)
		case m.unitInputMode:
			return m.updateUnitInput(msg)
		}
		return m.handleKey(msg)
	}
	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "left", "h":
		m.moveTab(-1)
		return m, tea.ClearScreen
	case "right", "l":
		m.moveTab(1)
		return m, tea.ClearScreen
	case "=":
		m.cfg.CurveWindow = nextCurveWindow(m.cfg.CurveWindow)
		m.renderTabContents()
		return m, nil
	case "-":
		m.cfg.CurveWindow = prevCurveWindow(m.cfg.CurveWindow)
		m.renderTabContents()
		return m, nil
	case "/":
		m.filterMode = true
		m.filterError = ""
		for i, f := range filterFields {
			m.filterInputs[i].SetValue(f.value(m.cfg))
		}
		return m, m.focusFilter(0)
	case "enter":
		if m.activeTab != tabKanaCurves {
			return m, nil
		}
		m.unitInputMode = true
		m.unitInput.SetValue(m.cfg.Units)
		return m, m.unitInput.Focus()
	case "g", "home":
		m.jump(true)
		return m, nil
	case "G", "end":
		m.jump(false)
		return m, nil
	}

	var cmd tea.Cmd
	if m.activeTab == tabKanaTable {
		m.kanaTable, cmd = m.kanaTable.Update(msg)
	} else {
		m.viewports[m.activeTab], cmd = m.viewports[m.activeTab].Update(msg)
	}
	return m, cmd
}

func (m *Model) jump(top bool) {
	switch {
	case m.activeTab == tabKanaTable && top:
		m.kanaTable.GotoTop()
	case m.activeTab == tabKanaTable:
		m.kanaTable.GotoBottom()
	case top:
		m.viewports[m.activeTab].GotoTop()
	default:
		m.viewports[m.activeTab].GotoBottom()
	}
}

func (m *Model) updateLayout() {
	if m.width <= 0 || m.height <= 0 {
		return
	}
	_, bodyHeight, _ := m.layoutHeights()
	for i := range m.viewports {
		m.viewports[i].Width = m.width
		m.viewports[i].Height = bodyHeight
	}
	m.kanaTable.SetWidth(m.width)
	m.kanaTable.SetHeight(max(1, bodyHeight-1))
	for i := range m.filterInputs {
		m.filterInputs[i].Width = max(10, m.width-lipgloss.Width(m.filterInputs[i].Prompt)-2)
	}
	m.unitInput.Width = max(10, modalInnerWidth(m.width)-lipgloss.Width(m.unitInput.Prompt))
}

func (m *Model) moveTab(delta int) {
	m.activeTab = (m.activeTab + delta + len(m.tabs)) % len(m.tabs)
	if m.activeTab == tabKanaTable {
		m.kanaTable.Focus()
	} else {
		m.kanaTable.Blur()
	}
}

func (m *Model) refreshReport() {
	report, err := stats.BuildReport(context.Background(), m.store, m.cfg, m.now())
	if err != nil {
		m.errMsg = err.Error()
		for i := range m.viewports {
			m.viewports[i].SetContent("Stats unavailable.")
		}
		return
	}
	m.errMsg = ""
	m.report = report
	cols, rows := kanaTableData(report)
	// SetColumns re-renders the current rows against the new columns.
	m.kanaTable.SetRows(nil)
	m.kanaTable.SetColumns(cols)
	m.kanaTable.SetRows(rows)
	m.kanaTable.GotoTop()
	m.renderTabContents()
}

func (m *Model) updateFilter(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.filterMode = false
		m.filterError = ""
		return m, nil
	case tea.KeyEnter:
		cfg, err := m.parseFilter()
		if err != nil {
			m.filterError = err.Error()
			return m, nil
		}
		m.cfg = cfg
		m.filterMode = false
		m.filterError = ""
		m.refreshReport()
		m.updateLayout()
		return m, nil
	case tea.KeyTab, tea.KeyDown:
		return m, m.focusFilter(m.filterIndex + 1)
	case tea.KeyShiftTab, tea.KeyUp:
		return m, m.focusFilter(m.filterIndex - 1)
	}
	var cmd tea.Cmd
	m.filterInputs[m.filterIndex], cmd = m.filterInputs[m.filterIndex].Update(msg)
	return m, cmd
}

func (m *Model) focusFilter(idx int) tea.Cmd {
	n := len(m.filterInputs)
	m.filterIndex = (idx%n + n) % n
	for i := range m.filterInputs {
		m.filterInputs[i].Blur()
	}
	return m.filterInputs[m.filterIndex].Focus()
}

func (m *Model) parseFilter() (model.StatsConfig, error) {
	cfg := m.cfg
	for i, f := range filterFields {
		if err := f.apply(&cfg, strings.TrimSpace(m.filterInputs[i].Value())); err != nil {
			return m.cfg, err
		}
	}
	return cfg, nil
}

func (m *Model) updateUnitInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.unitInputMode = false
		return m, nil
	case tea.KeyEnter:
		m.unitInputMode = false
		m.cfg.Units = normalizeUnitInput(m.unitInput.Value())
		m.refreshReport()
		return m, nil
	}
	var cmd tea.Cmd
	m.unitInput, cmd = m.unitInput.Update(msg)
	return m, cmd
}

// normalizeUnitInput accepts commas, spaces or the ideographic comma between units.
func normalizeUnitInput(input string) string {
	fields := strings.FieldsFunc(input, func(r rune) bool {
		return r == ',' || r == '、' || r == ' ' || r == '　'
	})
	return strings.Join(fields, ",")
}

// Windows step through 1, 5, 10, 15 and so on.
func nextCurveWindow(n int) int {
	return (max(n, 0)/5 + 1) * 5
}

func prevCurveWindow(n int) int {
	if n <= 5 {
		return 1
	}
	return (n - 1) / 5 * 5
}
