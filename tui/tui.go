package tui

import (
	"bytes"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/nathoo/twoword/cli"
	"github.com/nathoo/twoword/engine"
)

// rawLine stores an unstyled output line with its classification,
// so we can re-wrap and re-style when the terminal is resized.
type rawLine struct {
	text     string
	kind     lineKind
	isInput  bool // true for echoed player input
	isSystem bool // true for meta-command output
	isError  bool
}

// Model is the Bubble Tea model for a story session.
type Model struct {
	engine *engine.Engine
	out    *bytes.Buffer // the engine's formatter writes here
	title  string

	viewport viewport.Model
	input    textinput.Model
	history  *History

	rawLines []rawLine

	width    int
	height   int
	ready    bool
	ended    bool // the story set its exit flag
	quitting bool
	lastCmd  string
	err      error
}

// outputMsg carries engine output into the Update loop.
type outputMsg struct {
	input  string   // echoed player input (empty at start)
	text   string   // story text, already wrapped by the formatter
	system []string // meta-command output
	err    error
}

// New creates a model for eng, whose formatter must write to out.
func New(eng *engine.Engine, out *bytes.Buffer, title string) Model {
	ti := textinput.New()
	ti.Prompt = eng.Prompt
	ti.Focus()
	ti.CharLimit = 256
	ti.PromptStyle = styleInputPrompt

	return Model{
		engine:  eng,
		out:     out,
		title:   title,
		input:   ti,
		history: NewHistory(100),
	}
}

// Run starts the Bubble Tea program and returns when the player leaves or
// the session breaks.
func Run(eng *engine.Engine, out *bytes.Buffer, title string) error {
	p := tea.NewProgram(New(eng, out, title), tea.WithAltScreen(), tea.WithMouseCellMotion())
	final, err := p.Run()
	if err != nil {
		return err
	}
	if m, ok := final.(Model); ok && m.err != nil {
		return m.err
	}
	return nil
}

// Init starts the session, which runs the story's game.init handlers.
func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.start)
}

func (m Model) start() tea.Msg {
	err := m.engine.Start()
	return outputMsg{text: m.collect(), err: err}
}

// collect returns everything the formatter has written since the last
// call, including a pending partial line.
func (m Model) collect() string {
	m.engine.Out.StartLine()
	s := m.out.String()
	m.out.Reset()
	return s
}

// Update handles messages (key presses, window resize, story output).
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

		vpHeight := m.height - 2 // 1 status bar + 1 input line
		if vpHeight < 1 {
			vpHeight = 1
		}

		if !m.ready {
			m.viewport = viewport.New(m.width, vpHeight)
			m.viewport.KeyMap = viewportKeyMap()
			m.ready = true
		} else {
			m.viewport.Width = m.width
			m.viewport.Height = vpHeight
		}

		m.refreshViewport()

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			m.quitting = true
			return m, tea.Quit

		case "enter":
			return m.handleEnter()

		case "up":
			if prev, ok := m.history.Prev(); ok {
				m.input.SetValue(prev)
				m.input.CursorEnd()
			}
			return m, nil

		case "down":
			if next, ok := m.history.Next(); ok {
				m.input.SetValue(next)
				m.input.CursorEnd()
			} else {
				m.input.SetValue("")
			}
			return m, nil

		case "pgup", "pgdown":
			var vpCmd tea.Cmd
			m.viewport, vpCmd = m.viewport.Update(msg)
			return m, vpCmd
		}

	case outputMsg:
		m = m.appendOutput(msg)
		if m.err != nil {
			m.quitting = true
			return m, tea.Quit
		}
		m.checkEnded()
	}

	var inputCmd tea.Cmd
	m.input, inputCmd = m.input.Update(msg)
	cmds = append(cmds, inputCmd)

	return m, tea.Batch(cmds...)
}

// handleEnter processes the submitted input line.
func (m Model) handleEnter() (tea.Model, tea.Cmd) {
	if m.ended {
		m.quitting = true
		return m, tea.Quit
	}

	input := strings.TrimSpace(m.input.Value())
	m.input.SetValue("")
	if input == "" {
		return m, nil
	}
	m.history.Push(input)

	// Meta-commands.
	if strings.HasPrefix(input, "/") {
		if input == "/again" {
			if m.lastCmd == "" {
				m = m.appendOutput(outputMsg{input: input, system: []string{"Nothing to repeat."}})
				return m, nil
			}
			input = m.lastCmd
		} else {
			lines, quit := m.handleMeta(input)
			m = m.appendOutput(outputMsg{input: input, system: lines})
			if quit {
				m.quitting = true
				return m, tea.Quit
			}
			return m, nil
		}
	}
	m.lastCmd = input

	err := m.engine.Step(input)
	m = m.appendOutput(outputMsg{input: input, text: m.collect(), err: err})
	if m.err != nil {
		m.quitting = true
		return m, tea.Quit
	}
	m.checkEnded()
	return m, nil
}

func (m *Model) checkEnded() {
	if m.engine.Exited() {
		m.ended = true
		m.input.Placeholder = "press enter to leave"
	}
}

// appendOutput adds lines to the transcript and refreshes the viewport.
func (m Model) appendOutput(msg outputMsg) Model {
	if msg.input != "" {
		m.rawLines = append(m.rawLines, rawLine{
			text: m.engine.Prompt + msg.input, isInput: true,
		})
	}

	if msg.text != "" {
		for _, line := range strings.Split(strings.TrimSuffix(msg.text, "\n"), "\n") {
			m.rawLines = append(m.rawLines, rawLine{text: line, kind: classifyLine(line)})
		}
	}
	for _, line := range msg.system {
		m.rawLines = append(m.rawLines, rawLine{text: line, isSystem: true})
	}
	if msg.err != nil {
		m.err = msg.err
		m.rawLines = append(m.rawLines, rawLine{text: "Error: " + msg.err.Error(), isError: true})
	}

	m.refreshViewport()

	return m
}

// refreshViewport re-wraps and re-styles all raw lines at the current width
// and updates the viewport content.
func (m *Model) refreshViewport() {
	if !m.ready {
		return
	}

	width := m.width
	if width < 10 {
		width = 10
	}

	var styled []string
	for _, rl := range m.rawLines {
		if rl.text == "" {
			styled = append(styled, "")
			continue
		}

		wrapped := wordWrap(rl.text, width)

		switch {
		case rl.isInput:
			styled = append(styled, stylePlayerInput.Render(wrapped))
		case rl.isSystem:
			styled = append(styled, styledSystemMsg(wrapped))
		case rl.isError:
			styled = append(styled, styleError.Render(wrapped))
		default:
			styled = append(styled, renderLineKind(wrapped, rl.kind))
		}
	}

	m.viewport.SetContent(strings.Join(styled, "\n"))
	m.viewport.GotoBottom()
}

// wordWrap wraps a line that is wider than the terminal, breaking at word
// boundaries. Lines that fit are returned unchanged.
func wordWrap(text string, width int) string {
	if width <= 0 || utf8.RuneCountInString(text) <= width {
		return text
	}

	var result strings.Builder
	words := strings.Fields(text)
	lineLen := 0

	for i, word := range words {
		wLen := utf8.RuneCountInString(word)

		if i == 0 {
			result.WriteString(word)
			lineLen = wLen
			continue
		}

		if lineLen+1+wLen > width {
			result.WriteString("\n")
			result.WriteString(word)
			lineLen = wLen
		} else {
			result.WriteString(" ")
			result.WriteString(word)
			lineLen += 1 + wLen
		}
	}

	return result.String()
}

// View renders the full TUI layout: viewport + status bar + input.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if !m.ready {
		return "Loading..."
	}

	return m.viewport.View() + "\n" + m.renderStatusBar() + "\n" + m.input.View()
}

// handleMeta dispatches meta-commands. Returns output lines and quit flag.
func (m *Model) handleMeta(input string) ([]string, bool) {
	cmd := strings.Fields(input)[0]

	switch cmd {
	case "/quit", "/exit":
		return []string{"Goodbye."}, true

	case "/help":
		return []string{
			"/again  repeat the last command",
			"/state  show turn, location and inventory",
			"/help   show this help",
			"/quit   leave the story",
			"PgUp/PgDn scroll, Up/Down recall commands",
		}, false

	case "/state":
		return cli.StateLines(m.engine), false

	default:
		return []string{fmt.Sprintf("Unknown command: %s. Type /help for available commands.", cmd)}, false
	}
}

// viewportKeyMap returns a viewport keymap with Up/Down disabled
// (we use those for input history).
func viewportKeyMap() viewport.KeyMap {
	return viewport.KeyMap{
		PageDown:     key.NewBinding(key.WithKeys("pgdown")),
		PageUp:       key.NewBinding(key.WithKeys("pgup")),
		HalfPageDown: key.NewBinding(key.WithKeys("ctrl+d")),
		HalfPageUp:   key.NewBinding(key.WithKeys("ctrl+u")),
		Up:           key.NewBinding(key.WithDisabled()),
		Down:         key.NewBinding(key.WithDisabled()),
	}
}
