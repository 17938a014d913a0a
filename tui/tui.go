package tui

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nathoo/adriftcore/engine"
	"github.com/nathoo/adriftcore/saves"
	"github.com/nathoo/adriftcore/transcript"
	"github.com/nathoo/adriftcore/types"
)

// span is a run of story text in one style.
type span struct {
	text  string
	style textStyle
}

// rawLine stores an unstyled output line with its classification,
// so we can re-wrap and re-style when the terminal is resized.
type rawLine struct {
	spans    []span
	kind     lineKind
	isInput  bool // true for echoed player input
	isSystem bool // true for system messages
}

func (rl rawLine) text() string {
	var b strings.Builder
	for _, s := range rl.spans {
		b.WriteString(s.text)
	}
	return b.String()
}

func plainLine(text string) rawLine { return rawLine{spans: []span{{text: text}}} }

// Options configure a TUI.
type Options struct {
	Saves      *saves.Store
	Transcript *transcript.Writer
	Prompt     string
	History    int

	// HistoryFile keeps command history between sessions when set.
	HistoryFile string
}

// Model is the Bubble Tea model for the game.
type Model struct {
	engine *engine.Engine
	host   *host
	script *transcript.Writer

	viewport viewport.Model
	input    textinput.Model
	history  *History

	rawLines []rawLine // accumulated narrative lines (unstyled, for re-wrapping)
	partial  []span    // text after the last newline of the story so far
	style    textStyle // emphasis carried from one segment to the next

	width    int
	height   int
	ready    bool
	trace    bool
	quitting bool
}

// New creates a TUI model wired to the given engine.
func New(eng *engine.Engine, opts Options) Model {
	ti := textinput.New()
	ti.Prompt = opts.Prompt
	if ti.Prompt == "" {
		ti.Prompt = "> "
	}
	ti.Focus()
	ti.CharLimit = 256
	ti.PromptStyle = styleInputPrompt

	size := opts.History
	if size <= 0 {
		size = 100
	}
	history := NewHistory(size)
	if opts.HistoryFile != "" {
		if h, err := LoadHistory(opts.HistoryFile, size); err == nil {
			history = h
		}
	}
	h := &host{engine: eng, saves: opts.Saves}
	eng.SetHost(h)
	return Model{
		engine:  eng,
		host:    h,
		script:  opts.Transcript,
		input:   ti,
		history: history,
	}
}

// Run starts the Bubble Tea program.
func Run(eng *engine.Engine, opts Options) error {
	m := New(eng, opts)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion())
	final, err := p.Run()
	if err != nil {
		return err
	}
	if opts.HistoryFile != "" {
		return final.(Model).history.Save(opts.HistoryFile)
	}
	return nil
}

// gameOutputMsg carries output from the engine into the Update loop.
type gameOutputMsg struct {
	input  string // echoed player input (empty for intro)
	result types.Result
	system []string // meta-command and host output
}

// Init returns the initial command that produces the introduction.
func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.initialOutput())
}

func (m Model) initialOutput() tea.Cmd {
	return func() tea.Msg {
		return gameOutputMsg{result: m.engine.Start()}
	}
}

// Update handles messages (key presses, window resize, game output).
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
				m.history.ResetCursor()
			}
			return m, nil

		case "pgup", "pgdown":
			var vpCmd tea.Cmd
			m.viewport, vpCmd = m.viewport.Update(msg)
			return m, vpCmd
		}

	case gameOutputMsg:
		m = m.appendOutput(msg)
	}

	var inputCmd tea.Cmd
	m.input, inputCmd = m.input.Update(msg)
	cmds = append(cmds, inputCmd)

	return m, tea.Batch(cmds...)
}

// handleEnter processes the submitted input line.
func (m Model) handleEnter() (tea.Model, tea.Cmd) {
	input := strings.TrimSpace(m.input.Value())
	m.input.SetValue("")

	if input == "" {
		return m, nil
	}

	m.history.Push(input)
	m.history.ResetCursor()

	// Meta-commands.
	if strings.HasPrefix(input, "/") {
		output, quit := m.handleMeta(input)
		m = m.appendOutput(output)
		if quit {
			m.quitting = true
			return m, tea.Quit
		}
		return m, nil
	}

	// Game command.
	result := m.engine.Step(input)
	m.record(input, result)
	m = m.appendOutput(gameOutputMsg{input: input, result: result, system: m.notes(result)})
	if m.engine.Quitting() {
		m.quitting = true
		return m, tea.Quit
	}
	return m, nil
}

// notes gathers what the host queued during a turn, plus resource
// changes when tracing.
func (m Model) notes(result types.Result) []string {
	notes := m.host.take()
	if m.trace && result.SoundChanged {
		r := result.Sound
		notes = append(notes, fmt.Sprintf("[trace] sound %s @%d+%d", r.Path, r.Offset, r.Length))
	}
	if m.trace && result.GraphicChanged {
		r := result.Graphic
		notes = append(notes, fmt.Sprintf("[trace] graphic %s @%d+%d", r.Path, r.Offset, r.Length))
	}
	return notes
}

// record writes a turn to the transcript, if one is open.
func (m Model) record(input string, result types.Result) {
	if m.script == nil {
		return
	}
	a := m.engine.Attributes()
	_ = m.script.Write(transcript.Record{
		Turn:   a.Turns,
		Input:  input,
		Output: engine.Text(result.Segments),
		Score:  a.Score,
		Room:   a.Room,
	})
}

// appendOutput adds a turn's text to the narrative and refreshes the
// viewport.
func (m Model) appendOutput(msg gameOutputMsg) Model {
	if msg.input != "" {
		m.rawLines = append(m.rawLines, rawLine{spans: []span{{text: "> " + msg.input}}, isInput: true})
	}

	for _, seg := range msg.result.Segments {
		m = m.addSegment(seg)
	}
	m = m.endStory()

	for _, line := range msg.system {
		rl := plainLine(line)
		if kind := classifyLine(line); kind == kindTrace {
			rl.kind = kind
		} else {
			rl.isSystem = true
		}
		m.rawLines = append(m.rawLines, rl)
	}

	// Blank line separator between turns.
	m.rawLines = append(m.rawLines, rawLine{})

	m.refreshViewport()

	return m
}

// addSegment folds one piece of engine output into the narrative.
func (m Model) addSegment(seg types.Segment) Model {
	if !seg.IsTag {
		lines := strings.Split(seg.Text, "\n")
		for i, text := range lines {
			if i > 0 {
				m = m.endLine()
			}
			if text != "" {
				m.partial = append(m.partial, span{text: text, style: m.style})
			}
		}
		return m
	}
	switch seg.Tag {
	case types.TagBold:
		m.style.bold = true
	case types.TagEndBold:
		m.style.bold = false
	case types.TagItalics:
		m.style.italic = true
	case types.TagEndItalics:
		m.style.italic = false
	case types.TagUnderline:
		m.style.underline = true
	case types.TagEndUnderline:
		m.style.underline = false
	case types.TagCls:
		m.rawLines = nil
		m.partial = nil
	}
	return m
}

func (m Model) endLine() Model {
	rl := rawLine{spans: m.partial}
	rl.kind = classifyLine(rl.text())
	m.rawLines = append(m.rawLines, rl)
	m.partial = nil
	return m
}

// endStory closes a turn's text, dropping its trailing blank lines.
func (m Model) endStory() Model {
	if len(m.partial) > 0 {
		m = m.endLine()
	}
	for len(m.rawLines) > 0 {
		last := m.rawLines[len(m.rawLines)-1]
		if last.isInput || last.text() != "" {
			break
		}
		m.rawLines = m.rawLines[:len(m.rawLines)-1]
	}
	m.style = textStyle{}
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
		switch {
		case len(rl.spans) == 0:
			styled = append(styled, "")
		case rl.isInput:
			styled = append(styled, stylePlayerInput.Render(wordWrap(rl.text(), width)))
		case rl.isSystem:
			styled = append(styled, styledSystemMsg(wordWrap(rl.text(), width-2)))
		default:
			styled = append(styled, renderSpans(rl, width))
		}
	}

	m.viewport.SetContent(strings.Join(styled, "\n"))
	m.viewport.GotoBottom()
}

// renderSpans wraps a story line at width, styling each word with its
// span's emphasis over the line kind's base style. The names after
// "Also here is" are picked out in bold.
func renderSpans(rl rawLine, width int) string {
	base := baseStyle(rl.kind)
	var out strings.Builder
	col, spaces, pos := 0, 0, 0
	for _, s := range rl.spans {
		text := s.text
		for len(text) > 0 {
			if text[0] == ' ' {
				spaces++
				pos++
				text = text[1:]
				continue
			}
			end := strings.IndexByte(text, ' ')
			if end < 0 {
				end = len(text)
			}
			word := text[:end]
			w := lipgloss.Width(word)
			if col > 0 && col+spaces+w > width {
				out.WriteString("\n")
				col = 0
			} else if spaces > 0 {
				out.WriteString(strings.Repeat(" ", spaces))
				col += spaces
			}
			spaces = 0

			style := s.style
			if rl.kind == kindAlsoHere && pos >= len(alsoHerePrefix) {
				style.bold = true
			}
			out.WriteString(style.apply(base).Render(word))
			col += w
			pos += end
			text = text[end:]
		}
	}
	return out.String()
}

// wordWrap wraps text to fit within the given width, breaking at word
// boundaries.
func wordWrap(text string, width int) string {
	if width <= 0 || len(text) <= width {
		return text
	}

	var result strings.Builder
	words := strings.Fields(text)
	lineLen := 0

	for i, word := range words {
		wLen := len(word)

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

// handleMeta dispatches meta-commands. Returns the output and quit flag.
func (m *Model) handleMeta(input string) (gameOutputMsg, bool) {
	parts := strings.Fields(input)
	cmd := parts[0]
	var arg string
	if len(parts) > 1 {
		arg = parts[1]
	}
	out := gameOutputMsg{input: input}
	say := func(lines ...string) (gameOutputMsg, bool) {
		out.system = append(out.system, lines...)
		return out, false
	}

	switch cmd {
	case "/quit", "/exit":
		m.engine.Quit()
		out.system = []string{"Goodbye."}
		return out, true

	case "/save":
		if arg == "" {
			arg = defaultSlot
		}
		var buf bytes.Buffer
		err := m.engine.Save(&buf)
		if err == nil {
			err = m.host.put(arg, buf.Bytes())
		}
		if err != nil {
			return say(fmt.Sprintf("Save failed: %v", err))
		}
		return say(fmt.Sprintf("Game saved to %s.", arg))

	case "/load":
		if arg == "" {
			arg = defaultSlot
		}
		data, err := m.host.get(arg)
		if err == nil {
			err = m.engine.Restore(bytes.NewReader(data))
		}
		if err != nil {
			return say(fmt.Sprintf("Load failed: %v", err))
		}
		out.system = []string{fmt.Sprintf("Game loaded from %s (turn %d).", arg, m.engine.Attributes().Turns)}
		out.result = m.engine.Describe()
		return out, false

	case "/saves":
		return say(m.host.list()...)

	case "/undo":
		if err := m.engine.Undo(); err != nil {
			return say("Nothing to undo.")
		}
		out.system = []string{"Undone."}
		out.result = m.engine.Describe()
		return out, false

	case "/hints":
		hints := m.engine.Hints()
		if len(hints) == 0 {
			return say("No hints are available right now.")
		}
		var lines []string
		for _, h := range hints {
			lines = append(lines, h.Question, "  "+h.Subtle, "  "+h.Unsubtle)
		}
		return say(lines...)

	case "/help":
		return say(m.cmdHelp()...)

	case "/state":
		a := m.engine.Attributes()
		return say(
			fmt.Sprintf("Turn: %d", a.Turns),
			fmt.Sprintf("Location: %s", a.Room),
			fmt.Sprintf("Score: %d of %d", a.Score, a.MaxScore),
			fmt.Sprintf("Seed: %d", m.engine.Seed()),
			fmt.Sprintf("RNG position: %d", m.engine.RandomCalls()),
		)

	case "/trace":
		m.trace = !m.trace
		if m.trace {
			return say("Trace output enabled.")
		}
		return say("Trace output disabled.")

	default:
		return say(fmt.Sprintf("Unknown command: %s. Type /help for available commands.", cmd))
	}
}

func (m *Model) cmdHelp() []string {
	return []string{
		"System:",
		"  /save [name]  Save game (default: quicksave)",
		"  /load [name]  Load game (default: quicksave)",
		"  /saves        List saved games",
		"  /undo         Take back the last turn",
		"  /hints        Show every hint available now",
		"  /quit         Exit game",
		"  /help         Show this help",
		"  /state        Debug: dump current state",
		"  /trace        Toggle debug trace output",
		"",
		"Type \"help\" for the game's own commands.",
		"",
		"Navigation: PgUp/PgDn to scroll, Up/Down for command history",
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
