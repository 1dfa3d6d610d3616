// Package tui provides the Bubble Tea typing interface.
package tui

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"
	"unicode"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/mojido/internal/adaptive"
	"github.com/verte-zerg/mojido/internal/kana"
	"github.com/verte-zerg/mojido/internal/model"
	"github.com/verte-zerg/mojido/internal/session"
	"github.com/verte-zerg/mojido/internal/store"
)

// Model implements the Bubble Tea typing UI.
type Model struct {
	config   model.Config
	store    *store.Store
	corpus   []model.Sentence
	selector *adaptive.Selector
	sess     *session.Session
	now      func() time.Time

	width  int
	height int

	sentence model.Sentence
	tokens   []kana.Token
	owners   []int
	states   []unitState
	index    int

	buffer     string
	mistake    bool
	typedWrong string
	lastWrong  string
	nasalSlack bool

	hintVisible bool
	hintSeq     int

	target  float64
	last    model.SentenceResult
	hasLast bool
	errMsg  string
	logs    []string
}

type hintMsg struct {
	seq int
}

var (
	correctStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0"))
	incorrectStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	pendingStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	currentTokenStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A"))
	cursorStyle       = currentTokenStyle.Underline(true)
	furiganaStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	hintStyle         = lipgloss.NewStyle().Foreground(lipgloss.Color("#5FA8D3"))
	footerStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
)

// NewModel constructs a typing TUI model and picks the first sentence.
func NewModel(cfg model.Config, st *store.Store, corpus []model.Sentence, sess *session.Session) *Model {
	m := &Model{
		config:   cfg,
		store:    st,
		corpus:   corpus,
		selector: adaptive.NewSelector(cfg.Seed),
		sess:     sess,
		now:      time.Now,
	}
	m.nextSentence()
	return m
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return m.hintTimer()
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	case hintMsg:
		if msg.seq == m.hintSeq {
			m.showHint()
		}
		return m, nil
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			m.sess.Abandon()
			return m, tea.Quit
		case tea.KeyBackspace, tea.KeyDelete:
			m.handleBackspace()
			return m, nil
		case tea.KeyTab:
			m.showHint()
			return m, nil
		case tea.KeyCtrlN:
			m.nextSentence()
			return m, m.hintTimer()
		case tea.KeySpace:
			return m, m.handleRunes([]rune{' '})
		case tea.KeyRunes:
			return m, m.handleRunes(msg.Runes)
		default:
			return m, nil
		}
	default:
		return m, nil
	}
}

// View implements tea.Model.
func (m *Model) View() string {
	if len(m.tokens) == 0 {
		if m.errMsg != "" {
			return incorrectStyle.Render(m.errMsg)
		}
		return ""
	}
	contentWidth := 0
	if m.width > 0 {
		contentWidth = max(1, int(float64(m.width)*0.70))
	}
	cursor := -1
	if m.index < len(m.tokens) {
		cursor = m.index
	}
	blocks := make([]string, 0, 3)
	if m.sentence.HasKanji() {
		blocks = append(blocks, wrapCells(buildTokenCells(m.sentence, m.owners, m.states, cursor), contentWidth))
	}
	blocks = append(blocks,
		wrapCells(buildUnitCells(m.tokens, m.owners, m.states, cursor, m.mistake), contentWidth),
		m.renderInput(),
	)
	content := lipgloss.JoinVertical(lipgloss.Center, strings.Join(blocks, "\n\n"))
	if m.width == 0 || m.height == 0 {
		return content
	}
	footer := m.renderFooter()
	if m.height < 3 {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, content)
	}
	body := lipgloss.Place(m.width, m.height-1, lipgloss.Center, lipgloss.Center, content)
	footerLine := lipgloss.Place(m.width, 1, lipgloss.Center, lipgloss.Center, footer)
	return body + "\n" + footerLine
}

// renderInput shows the romaji typed for the current unit, the rejected key
// and, once revealed, the rest of the hint.
func (m *Model) renderInput() string {
	var b strings.Builder
	b.WriteString(cursorStyle.Render("›"))
	b.WriteString(" ")
	b.WriteString(correctStyle.Render(m.buffer))
	if m.lastWrong != "" {
		b.WriteString(incorrectStyle.Render(m.lastWrong))
	}
	if m.hintVisible {
		hint := kana.Spell(m.tokens, m.index)
		if rest, ok := strings.CutPrefix(hint, m.buffer); ok && m.lastWrong == "" {
			b.WriteString(hintStyle.Render(rest))
		} else {
			b.WriteString(" " + hintStyle.Render("("+hint+")"))
		}
	}
	return b.String()
}

func (m *Model) renderFooter() string {
	progress := 0
	if len(m.tokens) > 0 {
		progress = int(float64(m.index) / float64(len(m.tokens)) * 100)
	}
	segments := []string{
		fmt.Sprintf("Progress %d%%", progress),
		fmt.Sprintf("Streak %d", m.sess.Streak()),
	}
	if m.hasLast {
		segments = append(segments, fmt.Sprintf("Last %.1f%% · %.0f ms", m.last.Accuracy*100, m.last.AvgTimeMs))
	}
	segments = append(segments, fmt.Sprintf("Level %.2f", m.target))
	footer := footerStyle.Render(strings.Join(segments, "  "))
	if m.errMsg != "" {
		footer += "  " + incorrectStyle.Render(m.errMsg)
	}
	return footer
}

func (m *Model) handleBackspace() {
	m.lastWrong = ""
	if m.buffer == "" {
		return
	}
	runes := []rune(m.buffer)
	m.buffer = string(runes[:len(runes)-1])
}

func (m *Model) handleRunes(runes []rune) tea.Cmd {
	var cmd tea.Cmd
	for _, r := range runes {
		if c := m.handleKey(unicode.ToLower(r)); c != nil {
			cmd = c
		}
	}
	return cmd
}

// handleKey feeds one key to the matcher. It returns a command when the key
// moved on to a new unit.
func (m *Model) handleKey(r rune) tea.Cmd {
	if m.index >= len(m.tokens) {
		return nil
	}
	if m.recordable() {
		m.sess.BeginToken()
	}
	input := m.buffer + string(r)
	res := kana.Match(m.tokens, m.index, input)
	switch {
	case res.Matched:
		m.nasalSlack = m.tokens[m.index].Kana == "ん" && input == "n"
		m.lastWrong = ""
		m.completeUnit()
		if rest := input[res.Consumed:]; rest != "" {
			for _, c := range rest {
				m.handleKey(c)
			}
		}
		return m.hintTimer()
	case res.Partial:
		// A lone n may still be the doubled n of the previous ん.
		m.nasalSlack = m.nasalSlack && input == "n"
		m.buffer = input
		m.lastWrong = ""
	default:
		if m.nasalSlack && r == 'n' && (m.buffer == "" || m.buffer == "n") {
			// A second n after a finished ん; the buffer keeps one n.
			m.nasalSlack = false
			return nil
		}
		m.nasalSlack = false
		m.mistake = true
		if m.typedWrong == "" {
			m.typedWrong = input
		}
		m.lastWrong = string(r)
	}
	return nil
}

// recordable reports whether the current unit is tracked for mastery.
// The prolonged sound mark is typed but not scored.
func (m *Model) recordable() bool {
	return m.index < len(m.tokens) && kana.Classify(m.tokens[m.index].Kana) != kana.ClassPunctuation
}

func (m *Model) completeUnit() {
	correct := !m.mistake
	if m.recordable() {
		ctx := context.Background()
		if _, err := m.sess.RecordAttempt(ctx, m.tokens[m.index].Kana, correct, m.typedWrong); err != nil {
			m.setError("failed to record attempt: %v", err)
		}
	} else {
		m.sess.SkipToken()
	}
	if correct {
		m.states[m.index] = stateCorrect
	} else {
		m.states[m.index] = stateIncorrect
	}
	m.index++
	m.buffer = ""
	m.mistake = false
	m.typedWrong = ""
	m.hintVisible = false
	m.hintSeq++
	m.skipPunctuation()
	if m.index >= len(m.tokens) {
		m.finishSentence()
	}
}

func (m *Model) skipPunctuation() {
	for m.index < len(m.tokens) && kana.IsPunctuation(m.tokens[m.index].Kana) {
		m.states[m.index] = stateSkipped
		m.index++
	}
}

func (m *Model) showHint() {
	if m.hintVisible || m.index >= len(m.tokens) {
		return
	}
	m.hintVisible = true
	if m.recordable() {
		m.sess.MarkHintUsed()
	}
}

// hintTimer schedules the automatic hint for the current unit.
func (m *Model) hintTimer() tea.Cmd {
	if !m.config.Hints || m.config.HintDelay <= 0 {
		return nil
	}
	seq := m.hintSeq
	return tea.Tick(m.config.HintDelay, func(time.Time) tea.Msg {
		return hintMsg{seq: seq}
	})
}

func (m *Model) finishSentence() {
	ctx := context.Background()
	result, ok, err := m.sess.CompleteSentence(ctx)
	if err != nil {
		m.setError("failed to save sentence: %v", err)
	} else if ok {
		m.last = result
		m.hasLast = true
	}
	m.nextSentence()
}

// nextSentence asks the selector for the next sentence and resets the
// typing state.
func (m *Model) nextSentence() {
	ctx := context.Background()
	m.sess.Abandon()
	profile, err := m.store.LoadProfile(ctx)
	if err != nil {
		m.setError("failed to load profile: %v", err)
		profile = model.DefaultProfile()
	}
	rows, err := m.store.AllMastery(ctx)
	if err != nil {
		m.setError("failed to load mastery: %v", err)
	}
	recent, err := m.store.RecentSentenceIDs(ctx, adaptive.RecentWindow)
	if err != nil {
		m.setError("failed to load history: %v", err)
	}
	lookup := adaptive.NewMasteryLookup(rows)
	sel := m.selector.Select(profile, m.corpus, lookup, recent, m.now())
	if m.config.Debug {
		m.logs = append(m.logs, sel.Trace()...)
	}
	m.target = profile.CurrentDifficulty
	if len(sel.Sentence.Tokens) == 0 {
		m.setError("no sentence available: %s", sel.Reason)
		m.setSentence(model.Sentence{})
		return
	}
	if err := m.sess.SetSentence(ctx, sel.Sentence.ID, sel.Difficulty(lookup)); err != nil {
		m.setError("%v", err)
	}
	m.setSentence(sel.Sentence)
}

func (m *Model) setSentence(s model.Sentence) {
	m.sentence = s
	m.tokens = m.tokens[:0]
	m.owners = m.owners[:0]
	for j, tok := range s.Tokens {
		for _, unit := range kana.Tokenize(tok.Reading) {
			m.tokens = append(m.tokens, unit)
			m.owners = append(m.owners, j)
		}
	}
	m.states = make([]unitState, len(m.tokens))
	m.index = 0
	m.buffer = ""
	m.mistake = false
	m.typedWrong = ""
	m.lastWrong = ""
	m.nasalSlack = false
	m.hintVisible = false
	m.hintSeq++
	m.skipPunctuation()
}

func (m *Model) setError(format string, args ...any) {
	m.errMsg = fmt.Sprintf(format, args...)
	m.logs = append(m.logs, m.errMsg)
}

// FlushLog writes the errors and selection traces collected while the
// program owned the terminal. Call it after the program exits.
func (m *Model) FlushLog(w io.Writer) {
	for _, line := range m.logs {
		if _, err := fmt.Fprintln(w, line); err != nil {
			// Best-effort logging.
			_ = err
			break
		}
	}
	m.logs = nil
}
