// cmd/play/tui.go
//
// Bubble Tea model for the play client. Wraps a session and renders the
// board, the current riddle, the chain, past attempts and lives. All game
// rules live in internal/session; this file is keys and paint only.

package main

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/riddleyu/go-server/internal/puzzle"
	"github.com/riddleyu/go-server/internal/session"
)

const boardCols = 4

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#C89A3A"))
	dimStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	riddleStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0")).Width(60)
	tileStyle    = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	cursorTile   = tileStyle.Foreground(lipgloss.Color("#C89A3A")).BorderForeground(lipgloss.Color("#C89A3A"))
	lockedTile   = tileStyle.Foreground(lipgloss.Color("#3A3A3A")).BorderForeground(lipgloss.Color("#3A3A3A"))
	exactStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#34C759")).Bold(true)
	presentStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#C8A43A")).Bold(true)
	absentStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	chainStyle   = lipgloss.NewStyle().Bold(true)
	footerStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
)

// model implements the Bubble Tea UI around one session.
type model struct {
	sess     *session.Session
	cursor   int // board position under the cursor
	showHint bool
	width    int
	height   int
}

func newModel(p *puzzle.Puzzle) *model {
	return &model{sess: session.New(p)}
}

func (m *model) Init() tea.Cmd { return nil }

func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m *model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	if key == "ctrl+c" || (key == "q" && m.sess.Phase() != session.PhaseActive) {
		return m, tea.Quit
	}

	switch m.sess.Phase() {
	case session.PhaseIntro:
		if key == "enter" {
			m.sess.Start()
		}
	case session.PhaseActive:
		switch key {
		case "left", "h":
			m.moveCursor(-1)
		case "right", "l":
			m.moveCursor(1)
		case "up", "k":
			m.moveCursor(-boardCols)
		case "down", "j":
			m.moveCursor(boardCols)
		case "enter", " ":
			if m.sess.Complete() {
				m.sess.Submit()
				m.showHint = false
			} else {
				m.sess.Select(m.cursor)
			}
		case "u", "backspace":
			m.undo()
		case "r":
			m.sess.Reset()
		case "?":
			m.showHint = !m.showHint
		case "ctrl+q":
			return m, tea.Quit
		}
	case session.PhaseFinished:
		if key == "enter" {
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m *model) moveCursor(delta int) {
	next := m.cursor + delta
	if next >= 0 && next < puzzle.BoardLen {
		m.cursor = next
	}
}

// undo frees the most recently filled slot.
func (m *model) undo() {
	chain := m.sess.Chain()
	for slot := len(chain) - 1; slot >= 0; slot-- {
		if chain[slot] != "" {
			m.sess.Unselect(slot)
			return
		}
	}
}

// ------------------------------- view --------------------------------------

func (m *model) View() string {
	switch m.sess.Phase() {
	case session.PhaseIntro:
		return m.viewIntro()
	case session.PhaseFinished:
		return m.viewResult()
	default:
		return m.viewGame()
	}
}

func (m *model) viewIntro() string {
	p := m.sess.Puzzle()
	var b strings.Builder
	b.WriteString(titleStyle.Render("RiddleYu") + "\n")
	b.WriteString(dimStyle.Render("Daily puzzle for "+p.Date) + "\n\n")
	b.WriteString(riddleStyle.Render("Four riddles, one 成语. Pick the character each riddle describes and chain all four in order. You have 5 lives.") + "\n\n")
	b.WriteString(footerStyle.Render("enter: start • q: quit"))
	return b.String()
}

func (m *model) viewGame() string {
	p := m.sess.Puzzle()
	var b strings.Builder

	b.WriteString(titleStyle.Render("RiddleYu "+p.Date) + "  " + m.livesView() + "\n\n")

	target := m.sess.TargetSlot()
	b.WriteString(dimStyle.Render(fmt.Sprintf("Riddle %d of %d", target+1, puzzle.AnswerLen)) + "\n")
	b.WriteString(riddleStyle.Render(p.Riddles[target].Text) + "\n")
	if m.showHint {
		b.WriteString(dimStyle.Render("hint: "+p.Riddles[target].Hint) + "\n")
	}
	b.WriteString("\n" + m.boardView() + "\n")
	b.WriteString("Chain: " + m.chainView() + "\n\n")
	b.WriteString(m.attemptsView())

	action := "enter: pick"
	if m.sess.Complete() {
		action = "enter: submit"
	}
	b.WriteString(footerStyle.Render("arrows: move • " + action + " • u: undo • r: reset • ?: hint • ctrl+c: quit"))
	return b.String()
}

func (m *model) viewResult() string {
	p := m.sess.Puzzle()
	var b strings.Builder
	if m.sess.Won() {
		b.WriteString(exactStyle.Render("你赢了! Solved it.") + "\n\n")
	} else {
		b.WriteString(absentStyle.Render("Out of lives.") + "\n\n")
	}
	b.WriteString(chainStyle.Render(strings.Join(p.Answer, "")) + "  " + dimStyle.Render(p.Pinyin) + "\n")
	b.WriteString(riddleStyle.Render(p.Meaning) + "\n\n")
	b.WriteString(dimStyle.Render(p.Origin) + "\n\n")
	b.WriteString(m.attemptsView())
	b.WriteString(footerStyle.Render("enter: exit"))
	return b.String()
}

func (m *model) boardView() string {
	p := m.sess.Puzzle()
	rows := make([]string, 0, puzzle.BoardLen/boardCols)
	for start := 0; start < puzzle.BoardLen; start += boardCols {
		tiles := make([]string, 0, boardCols)
		for i := start; i < start+boardCols; i++ {
			style := tileStyle
			switch {
			case m.sess.Locked(i):
				style = lockedTile
			case i == m.cursor:
				style = cursorTile
			}
			tiles = append(tiles, style.Render(p.Board[i]))
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, tiles...))
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

func (m *model) chainView() string {
	out := make([]string, 0, puzzle.AnswerLen)
	for _, c := range m.sess.Chain() {
		if c == "" {
			c = "＿"
		}
		out = append(out, c)
	}
	return chainStyle.Render(strings.Join(out, " "))
}

func (m *model) attemptsView() string {
	attempts := m.sess.Attempts()
	if len(attempts) == 0 {
		return ""
	}
	var b strings.Builder
	for _, att := range attempts {
		for i, c := range att.Chain {
			switch att.Feedback[i] {
			case session.TagExact:
				b.WriteString(exactStyle.Render(c))
			case session.TagPresent:
				b.WriteString(presentStyle.Render(c))
			default:
				b.WriteString(absentStyle.Render(c))
			}
			b.WriteString(" ")
		}
		b.WriteString("\n")
	}
	b.WriteString("\n")
	return b.String()
}

func (m *model) livesView() string {
	return dimStyle.Render(strings.Repeat("♥ ", m.sess.Lives()) + strings.Repeat("· ", session.MaxLives-m.sess.Lives()))
}
