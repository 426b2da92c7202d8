package tui

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/nathoo/ruinscript/engine"
	"github.com/nathoo/ruinscript/engine/dialogue"
	"github.com/nathoo/ruinscript/engine/events"
	"github.com/nathoo/ruinscript/engine/save"
	"github.com/nathoo/ruinscript/loader"
	"github.com/nathoo/ruinscript/types"
)

// rawLine stores an unstyled output line with its classification,
// so we can re-wrap and re-style when the terminal is resized.
type rawLine struct {
	text     string
	kind     lineKind
	isInput  bool // true for echoed player input
	isSystem bool // true for system messages
}

// Model is the Bubble Tea model for the dialogue window.
type Model struct {
	ctx    context.Context
	engine *engine.Engine
	lib    *loader.Library

	viewport viewport.Model
	input    textinput.Model
	history  *History

	rawLines []rawLine // accumulated transcript lines (unstyled, for re-wrapping)

	chara   types.CharaID // target of scripts started from the prompt
	scene   string
	speaker types.CharaID // who the open talk window belongs to
	cursor  int           // selected choice of the open talk window

	width    int
	height   int
	ready    bool
	trace    bool
	quitting bool
	saveDir  string
}

// gameOutputMsg carries output lines into the Update loop.
type gameOutputMsg struct {
	input    string   // echoed player input (empty for intro)
	lines    []string // output lines
	isSystem bool     // true for meta-command output
}

// New creates a TUI model wired to the given engine.
func New(eng *engine.Engine, lib *loader.Library, saveDir string) Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Focus()
	ti.CharLimit = 256
	ti.PromptStyle = styleInputPrompt

	return Model{
		ctx:     context.Background(),
		engine:  eng,
		lib:     lib,
		input:   ti,
		history: NewHistory(100),
		saveDir: saveDir,
	}
}

// Run starts the Bubble Tea program. Scripts started from the prompt
// target chara.
func Run(eng *engine.Engine, lib *loader.Library, saveDir string, chara types.CharaID) error {
	m := New(eng, lib, saveDir)
	m.chara = chara
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion())
	_, err := p.Run()
	eng.Abandon(context.Background())
	return err
}

// Init returns the initial command that produces the intro text.
func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.initialOutput())
}

func (m Model) initialOutput() tea.Cmd {
	return func() tea.Msg {
		var lines []string
		if m.lib != nil {
			lines = append(lines, "Scripts: "+strings.Join(m.lib.IDs(), ", "))
		}
		lines = append(lines, "Type a script id to start it, or /help for commands.")
		return gameOutputMsg{lines: lines}
	}
}

// Update handles messages (key presses, window resize, output).
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

		if !m.ready {
			m.viewport = viewport.New(m.width, m.viewportHeight())
			m.viewport.KeyMap = viewportKeyMap()
			m.ready = true
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
			if n := len(m.choices()); n > 0 {
				m.cursor = (m.cursor + n - 1) % n
				return m, nil
			}
			if prev, ok := m.history.Prev(); ok {
				m.input.SetValue(prev)
				m.input.CursorEnd()
			}
			return m, nil

		case "down":
			if n := len(m.choices()); n > 0 {
				m.cursor = (m.cursor + 1) % n
				return m, nil
			}
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

// handleEnter processes the submitted input line. While a talk window with
// choices is open, enter picks the selected choice (or the typed number);
// any other open window is advanced or closed.
func (m Model) handleEnter() (tea.Model, tea.Cmd) {
	input := strings.TrimSpace(m.input.Value())
	m.input.SetValue("")

	if strings.HasPrefix(input, "/") {
		output, quit := m.handleMeta(input)
		m = m.appendOutput(gameOutputMsg{input: input, lines: output, isSystem: true})
		if quit {
			m.quitting = true
			return m, tea.Quit
		}
		return m, nil
	}

	if m.engine.Running() {
		if n := len(m.choices()); n > 0 {
			idx := m.cursor
			if input != "" {
				i, err := strconv.Atoi(input)
				if err != nil {
					m = m.appendOutput(gameOutputMsg{input: input, lines: []string{fmt.Sprintf("Choose 1-%d.", n)}, isSystem: true})
					return m, nil
				}
				idx = i - 1
			}
			label := strconv.Itoa(idx + 1)
			return m.showResult(label, m.engine.Choose(m.ctx, idx)), nil
		}
		return m.showResult(input, m.engine.AdvanceScript(m.ctx, nil)), nil
	}

	if input == "" {
		return m, nil
	}
	m.history.Push(input)
	m.history.ResetCursor()
	return m.showResult(input, m.engine.StartScript(m.ctx, input, m.chara, m.scene)), nil
}

// showResult appends the outcome of one advance to the transcript.
func (m Model) showResult(input string, res dialogue.Result) Model {
	var lines []string
	for _, n := range events.Notices(res.Events) {
		lines = append(lines, "* "+n)
	}
	if m.trace {
		lines = append(lines, m.formatTrace(res)...)
	}
	if res.Err != nil {
		if errors.Is(res.Err, dialogue.ErrChoiceInvalid) {
			lines = append(lines, "[No such choice.]")
		} else {
			lines = append(lines, fmt.Sprintf("[Script error: %v]", res.Err))
		}
	}

	var talk []string
	switch res.Outcome {
	case dialogue.Continue:
		if req := res.Request; req != nil {
			if req.Kind == dialogue.Talk {
				m.speaker = req.Chara
				talk = m.talkLines(req.Talk)
			} else {
				m.speaker = ""
				lines = append(lines, "["+requestLabel(req)+" Press enter to close.]")
			}
			m.cursor = 0
		}
	case dialogue.UpdateTalkText:
		talk = m.talkLines(res.Talk)
		m.cursor = 0
	case dialogue.Quit:
		m.speaker = ""
		m.cursor = 0
		lines = append(lines, "[End of script.]")
	}

	m = m.appendOutput(gameOutputMsg{input: input, lines: lines})
	if len(talk) > 0 {
		for _, t := range talk {
			m.rawLines = append(m.rawLines, rawLine{text: t, kind: kindDialogue})
		}
		m.rawLines = append(m.rawLines, rawLine{})
		m.refreshViewport()
	}
	return m
}

func (m Model) talkLines(talk *types.TalkText) []string {
	if talk == nil {
		return nil
	}
	speaker := m.speaker
	if talk.TargetChara != "" {
		speaker = talk.TargetChara
	}
	text := m.text(talk.TextID)
	if speaker != "" {
		text = string(speaker) + ": " + text
	}
	return []string{text}
}

func requestLabel(req *dialogue.Request) string {
	var label string
	switch req.Kind {
	case dialogue.ShopBuy:
		label = "Shop (buy)"
	case dialogue.ShopSell:
		label = "Shop (sell)"
	case dialogue.QuestOffer:
		label = "Quest board"
	case dialogue.QuestReport:
		label = "Quest report"
	default:
		label = req.Kind.String()
	}
	if req.Chara != "" {
		label += " with " + string(req.Chara)
	}
	return label + "."
}

// choices returns the choices of the open talk window.
func (m Model) choices() []string {
	if !m.engine.Running() {
		return nil
	}
	if talk := m.engine.CurrentTalk(); talk != nil {
		return talk.Choices
	}
	return nil
}

func (m Model) text(id string) string {
	if m.lib == nil {
		return id
	}
	return m.lib.Text(id)
}

// appendOutput adds lines to the transcript and refreshes the viewport.
func (m Model) appendOutput(msg gameOutputMsg) Model {
	if msg.input != "" {
		m.rawLines = append(m.rawLines, rawLine{
			text: "> " + msg.input, isInput: true,
		})
	}

	for _, line := range msg.lines {
		rl := rawLine{text: line, isSystem: msg.isSystem}
		if !msg.isSystem {
			rl.kind = classifyLine(line)
		}
		m.rawLines = append(m.rawLines, rl)
	}

	// Blank line separator between turns.
	m.rawLines = append(m.rawLines, rawLine{})

	m.refreshViewport()

	return m
}

func (m Model) viewportHeight() int {
	h := m.height - 2 // 1 status bar + 1 input line
	if n := len(m.choices()); n > 0 {
		h -= n
	}
	if h < 1 {
		h = 1
	}
	return h
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
	m.viewport.Width = m.width
	m.viewport.Height = m.viewportHeight()

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
		default:
			styled = append(styled, renderLineKind(wrapped, rl.kind))
		}
	}

	m.viewport.SetContent(strings.Join(styled, "\n"))
	m.viewport.GotoBottom()
}

// renderLineKind applies the style for a given lineKind.
func renderLineKind(line string, kind lineKind) string {
	switch kind {
	case kindDialogue:
		return styledDialogue(line)
	case kindNotice:
		return styleNotice.Render(line)
	case kindSystem:
		return styleSystem.Render(line)
	case kindError:
		return styleError.Render(line)
	case kindTrace:
		return styleTrace.Render(line)
	default:
		return styleNarration.Render(line)
	}
}

// wordWrap wraps text to fit within the given width, breaking at word
// boundaries.
func wordWrap(text string, width int) string {
	if width <= 0 || len(text) <= width {
		return text
	}

	var b strings.Builder
	lineLen := 0
	for i, word := range strings.Fields(text) {
		switch {
		case i == 0:
			lineLen = len(word)
		case lineLen+1+len(word) > width:
			b.WriteString("\n")
			lineLen = len(word)
		default:
			b.WriteString(" ")
			lineLen += 1 + len(word)
		}
		b.WriteString(word)
	}
	return b.String()
}

// View renders the full TUI layout: viewport + choices + status bar + input.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if !m.ready {
		return "Loading..."
	}

	parts := []string{m.viewport.View()}
	if c := m.renderChoices(); c != "" {
		parts = append(parts, c)
	}
	parts = append(parts, m.renderStatusBar(), m.input.View())
	return strings.Join(parts, "\n")
}

// handleMeta dispatches meta-commands. Returns output lines and quit flag.
func (m *Model) handleMeta(input string) ([]string, bool) {
	parts := strings.Fields(input)
	cmd := parts[0]
	var arg string
	if len(parts) > 1 {
		arg = parts[1]
	}

	switch cmd {
	case "/quit", "/exit":
		m.engine.Abandon(m.ctx)
		return []string{"Goodbye."}, true

	case "/save":
		return m.cmdSave(arg), false

	case "/load":
		return m.cmdLoad(arg), false

	case "/target":
		m.chara = types.CharaID(arg)
		if arg == "" {
			return []string{"No target."}, false
		}
		return []string{fmt.Sprintf("Talking to %s.", arg)}, false

	case "/scene":
		m.scene = arg
		return []string{fmt.Sprintf("Scene: %s.", arg)}, false

	case "/abandon":
		if !m.engine.Running() {
			return []string{"No script is running."}, false
		}
		m.engine.Abandon(m.ctx)
		m.speaker = ""
		m.cursor = 0
		return []string{"Script abandoned."}, false

	case "/scripts":
		if m.lib == nil {
			return nil, false
		}
		return []string{strings.Join(m.lib.IDs(), ", ")}, false

	case "/help":
		return m.cmdHelp(), false

	case "/state":
		return m.cmdState(), false

	case "/trace":
		m.trace = !m.trace
		if m.trace {
			return []string{"Trace output enabled."}, false
		}
		return []string{"Trace output disabled."}, false

	default:
		return []string{fmt.Sprintf("Unknown command: %s. Type /help for available commands.", cmd)}, false
	}
}

func (m *Model) cmdSave(name string) []string {
	if m.engine.Running() {
		return []string{"Cannot save while a script is running."}
	}
	if name == "" {
		name = "quicksave"
	}
	if err := save.WriteFile(save.Path(m.saveDir, name), m.engine.State); err != nil {
		return []string{fmt.Sprintf("Save failed: %v", err)}
	}
	return []string{fmt.Sprintf("Game saved to %s.", name)}
}

func (m *Model) cmdLoad(name string) []string {
	if name == "" {
		name = "quicksave"
	}
	sd, err := save.ReadFile(save.Path(m.saveDir, name))
	if err != nil {
		return []string{fmt.Sprintf("Load failed: %v", err)}
	}
	m.engine.Restore(m.ctx, &sd.State)
	m.speaker = ""
	m.cursor = 0
	return []string{fmt.Sprintf("Game loaded from %s.", name)}
}

func (m *Model) cmdHelp() []string {
	return []string{
		"System:",
		"  /save [name]     Save game (default: quicksave)",
		"  /load [name]     Load game (default: quicksave)",
		"  /target [chara]  Set the character scripts are started with",
		"  /scene [name]    Set the scene scripts are started in",
		"  /scripts         List scripts",
		"  /abandon         Stop the running script",
		"  /state           Dump money, inventory and variables",
		"  /trace           Toggle event trace output",
		"  /quit            Exit",
		"",
		"Scripts:",
		"  <id> or !<id>(name='x', n=1) starts a script.",
		"  Up/Down select a choice, Enter confirms, a number picks directly.",
		"  Enter continues a talk or closes a shop or quest dialog.",
		"",
		"Navigation: PgUp/PgDn to scroll, Up/Down for input history when idle",
	}
}

func (m *Model) cmdState() []string {
	s := m.engine.State
	output := []string{fmt.Sprintf("Money: %d", s.Player.Money)}

	items := make([]string, 0, len(s.Player.Inventory))
	for id, n := range s.Player.Inventory {
		items = append(items, fmt.Sprintf("%s x %d", id, n))
	}
	sort.Strings(items)
	if len(items) == 0 {
		output = append(output, "Inventory: empty")
	} else {
		output = append(output, "Inventory: "+strings.Join(items, ", "))
	}

	var vars []string
	for name, v := range s.Vars.Global {
		vars = append(vars, fmt.Sprintf("%s = %s", name, v))
	}
	for script, ns := range s.Vars.Local {
		for name, v := range ns {
			vars = append(vars, fmt.Sprintf("%s.%s = %s", script, name, v))
		}
	}
	sort.Strings(vars)
	return append(output, vars...)
}

func (m *Model) formatTrace(res dialogue.Result) []string {
	var lines []string
	if len(res.Events) > 0 {
		lines = append(lines, fmt.Sprintf("[trace] Events: %d", len(res.Events)))
		for _, e := range res.Events {
			lines = append(lines, fmt.Sprintf("[trace]   %s %v", e.Type, e.Data))
		}
	}
	return append(lines, fmt.Sprintf("[trace] Outcome: %s", res.Outcome))
}

// viewportKeyMap returns a viewport keymap with Up/Down disabled
// (we use those for choices and input history).
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
