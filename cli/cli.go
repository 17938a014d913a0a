// Package cli plays a game on a plain terminal: a prompt, the story's
// text, and slash commands for saving, loading and debugging.
package cli

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/nathoo/adriftcore/engine"
	"github.com/nathoo/adriftcore/saves"
	"github.com/nathoo/adriftcore/transcript"
	"github.com/nathoo/adriftcore/types"
)

// DefaultSlot names the slot used when none is given.
const DefaultSlot = "quicksave"

// CLI handles terminal interaction with the player. It is the engine's
// host for confirmations, saved games and hints.
type CLI struct {
	Engine     *engine.Engine
	Saves      *saves.Store
	Transcript *transcript.Writer
	Logger     *log.Logger
	In         io.Reader
	Out        io.Writer
	Prompt     string
	Width      int
	Trace      bool
	EchoInput  bool // echo each input line after the prompt (for script playback)

	scanner *bufio.Scanner
	col     int
	spaces  int // held back while wrapping
}

// New creates a CLI wired to the given engine.
func New(eng *engine.Engine, store *saves.Store) *CLI {
	c := &CLI{
		Engine: eng,
		Saves:  store,
		In:     os.Stdin,
		Out:    os.Stdout,
		Prompt: "> ",
	}
	eng.SetHost(c)
	return c
}

// Run starts the game loop. It prints the introduction, then loops:
// prompt, input, dispatch, output.
func (c *CLI) Run() error {
	c.Engine.SetHost(c)
	c.printResult(c.Engine.Start())

	for !c.Engine.Quitting() {
		input, err := c.ReadLine()
		if errors.Is(err, io.EOF) {
			c.newline()
			return nil
		}
		if err != nil {
			return err
		}
		if input == "" || strings.HasPrefix(input, "#") {
			continue
		}
		if strings.HasPrefix(input, "/") {
			if c.handleMeta(input) {
				return nil
			}
			continue
		}

		result := c.Engine.Step(input)
		c.printResult(result)
		c.record(input, result)
	}
	return nil
}

// ReadLine prompts for and returns the next line of input.
func (c *CLI) ReadLine() (string, error) {
	if c.scanner == nil {
		c.scanner = bufio.NewScanner(c.In)
	}
	c.newline()
	c.write(c.Prompt)
	if !c.scanner.Scan() {
		if err := c.scanner.Err(); err != nil {
			return "", err
		}
		return "", io.EOF
	}
	input := strings.TrimSpace(c.scanner.Text())
	c.endInput(input)
	return input, nil
}

// handleMeta dispatches meta-commands. Returns true if the game should exit.
func (c *CLI) handleMeta(input string) bool {
	parts := strings.Fields(input)
	cmd := parts[0]
	var arg string
	if len(parts) > 1 {
		arg = parts[1]
	}

	switch cmd {
	case "/quit", "/exit":
		c.printSystem("Goodbye.")
		c.Engine.Quit()
		return true

	case "/save":
		c.cmdSave(arg)

	case "/load":
		c.cmdLoad(arg)

	case "/saves":
		c.cmdSaves()

	case "/undo":
		if err := c.Engine.Undo(); err != nil {
			c.printSystem("Nothing to undo.")
			return false
		}
		c.printSystem("Undone.")
		c.printResult(c.Engine.Describe())

	case "/hints":
		if hints := c.Engine.Hints(); len(hints) > 0 {
			c.DisplayHints(hints)
		} else {
			c.printSystem("No hints are available right now.")
		}

	case "/help":
		c.cmdHelp()

	case "/state":
		c.cmdState()

	case "/trace":
		c.Trace = !c.Trace
		if c.Trace {
			c.printSystem("Trace output enabled.")
		} else {
			c.printSystem("Trace output disabled.")
		}

	default:
		c.printSystem(fmt.Sprintf("Unknown command: %s. Type /help for available commands.", cmd))
	}

	return false
}

func (c *CLI) cmdSave(name string) {
	if name == "" {
		name = DefaultSlot
	}
	if err := c.saveSlot(name, c.Engine.Save); err != nil {
		c.printSystem(fmt.Sprintf("Save failed: %v", err))
		return
	}
	c.printSystem(fmt.Sprintf("Game saved to %s.", name))
}

func (c *CLI) saveSlot(name string, write func(io.Writer) error) error {
	if c.Saves == nil {
		return errors.New("no save directory")
	}
	var buf bytes.Buffer
	if err := write(&buf); err != nil {
		return err
	}
	a := c.Engine.Attributes()
	_, err := c.Saves.Put(name, a.Title, a.Turns, a.Score, buf.Bytes())
	return err
}

func (c *CLI) cmdLoad(name string) {
	if name == "" {
		name = DefaultSlot
	}
	if c.Saves == nil {
		c.printSystem("Load failed: no save directory")
		return
	}
	data, err := c.Saves.Get(name)
	if err == nil {
		err = c.Engine.Restore(bytes.NewReader(data))
	}
	if err != nil {
		c.printSystem(fmt.Sprintf("Load failed: %v", err))
		return
	}
	c.printSystem(fmt.Sprintf("Game loaded from %s (turn %d).", name, c.Engine.Attributes().Turns))
	c.printResult(c.Engine.Describe())
}

func (c *CLI) cmdSaves() {
	if c.Saves == nil {
		c.printSystem("No save directory.")
		return
	}
	slots, err := c.Saves.List()
	if err != nil {
		c.printSystem(fmt.Sprintf("Listing saves failed: %v", err))
		return
	}
	if len(slots) == 0 {
		c.printSystem("No saved games.")
		return
	}
	for _, s := range slots {
		c.printLine("  " + s.Describe())
	}
}

func (c *CLI) cmdHelp() {
	help := []string{
		"System:",
		"  /save [name]  Save game (default: quicksave)",
		"  /load [name]  Load game (default: quicksave)",
		"  /saves        List saved games",
		"  /undo         Take back the last turn",
		"  /hints        Show hints",
		"  /quit         Exit game",
		"  /help         Show this help",
		"  /state        Debug: dump current state",
		"  /trace        Toggle debug trace output",
		"",
		"Type \"help\" for the game's own commands.",
	}
	for _, line := range help {
		c.printLine(line)
	}
}

func (c *CLI) cmdState() {
	a := c.Engine.Attributes()
	c.printSystem(fmt.Sprintf("Turn: %d", a.Turns))
	c.printSystem(fmt.Sprintf("Location: %s", a.Room))
	c.printSystem(fmt.Sprintf("Score: %d of %d", a.Score, a.MaxScore))
	c.printSystem(fmt.Sprintf("Seed: %d", c.Engine.Seed()))
	c.printSystem(fmt.Sprintf("RNG position: %d", c.Engine.RandomCalls()))
}

// record writes a turn to the transcript, if one is open.
func (c *CLI) record(input string, result types.Result) {
	if c.Transcript == nil {
		return
	}
	a := c.Engine.Attributes()
	err := c.Transcript.Write(transcript.Record{
		Turn:   a.Turns,
		Input:  input,
		Output: engine.Text(result.Segments),
		Score:  a.Score,
		Room:   a.Room,
	})
	if err != nil {
		c.logf("transcript: %v", err)
	}
}

func (c *CLI) logf(format string, args ...any) {
	if c.Logger != nil {
		c.Logger.Printf(format, args...)
	}
}

// Host

// PrintString writes story text, wrapping it at Width when set.
func (c *CLI) PrintString(s string) {
	if c.Width <= 0 {
		c.write(s)
		return
	}
	for i, line := range strings.Split(s, "\n") {
		if i > 0 {
			c.spaces = 0
			c.write("\n")
		}
		c.wrap(line)
	}
}

// wrap writes words, breaking before any that would pass Width.
func (c *CLI) wrap(line string) {
	for len(line) > 0 {
		if line[0] == ' ' {
			c.spaces++
			line = line[1:]
			continue
		}
		end := strings.IndexByte(line, ' ')
		if end < 0 {
			end = len(line)
		}
		word := line[:end]
		if c.col > 0 && c.col+c.spaces+len(word) > c.Width {
			c.write("\n")
		} else {
			c.write(strings.Repeat(" ", c.spaces))
		}
		c.spaces = 0
		c.write(word)
		line = line[end:]
	}
}

// PrintTag renders the few tags a plain terminal can show.
func (c *CLI) PrintTag(code types.TagCode, arg string) {
	switch code {
	case types.TagCls:
		c.newline()
	case types.TagWaitKey:
		if c.Trace {
			c.printSystem("Press Enter to continue.")
		}
	}
}

var confirmQuestions = map[types.ConfirmKind]string{
	types.ConfirmQuit:      "Do you really want to quit?",
	types.ConfirmRestart:   "Do you really want to restart?",
	types.ConfirmViewHints: "Do you want to view hints?",
}

// Confirm asks a yes/no question. Saving and restoring need no
// confirmation here; they ask for a slot instead.
func (c *CLI) Confirm(kind types.ConfirmKind) bool {
	q, ok := confirmQuestions[kind]
	if !ok {
		return true
	}
	return c.ask(q)
}

func (c *CLI) ask(question string) bool {
	c.newline()
	c.write(question + " (y/n) ")
	if c.scanner == nil {
		c.scanner = bufio.NewScanner(c.In)
	}
	if !c.scanner.Scan() {
		return false
	}
	answer := strings.ToLower(strings.TrimSpace(c.scanner.Text()))
	c.endInput(answer)
	return strings.HasPrefix(answer, "y")
}

// askSlot reads a slot name, DefaultSlot if none is given.
func (c *CLI) askSlot(verb string) (string, bool) {
	c.newline()
	c.write(fmt.Sprintf("%s which slot? [%s] ", verb, DefaultSlot))
	if c.scanner == nil {
		c.scanner = bufio.NewScanner(c.In)
	}
	if !c.scanner.Scan() {
		return "", false
	}
	name := strings.TrimSpace(c.scanner.Text())
	c.endInput(name)
	if name == "" {
		name = DefaultSlot
	}
	return name, true
}

// slotWriter saves its contents into a slot when closed.
type slotWriter struct {
	bytes.Buffer
	c    *CLI
	name string
}

func (w *slotWriter) Close() error {
	return w.c.saveSlot(w.name, func(dst io.Writer) error {
		_, err := dst.Write(w.Bytes())
		return err
	})
}

// CreateSave asks for a slot and returns a writer into it.
func (c *CLI) CreateSave() (io.WriteCloser, error) {
	if c.Saves == nil {
		c.printSystem("Saving is not available.")
		return nil, nil
	}
	name, ok := c.askSlot("Save to")
	if !ok {
		return nil, nil
	}
	return &slotWriter{c: c, name: name}, nil
}

// OpenSave asks for a slot and returns its saved game.
func (c *CLI) OpenSave() (io.ReadCloser, error) {
	if c.Saves == nil {
		c.printSystem("Restoring is not available.")
		return nil, nil
	}
	name, ok := c.askSlot("Restore from")
	if !ok {
		return nil, nil
	}
	data, err := c.Saves.Get(name)
	if errors.Is(err, saves.ErrNotFound) {
		c.printSystem(fmt.Sprintf("No saved game in %s.", name))
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

// DisplayHints walks the player through each hint, subtle first.
func (c *CLI) DisplayHints(hints []types.Hint) {
	for _, h := range hints {
		c.printLine(h.Question)
		if h.Subtle == "" || !c.ask("Show a hint?") {
			continue
		}
		c.printLine(h.Subtle)
		if h.Unsubtle != "" && c.ask("Show a stronger hint?") {
			c.printLine(h.Unsubtle)
		}
	}
}

// UpdateSound notes sound changes; a plain terminal plays nothing.
func (c *CLI) UpdateSound(r types.Resource) {
	if c.Trace {
		c.printSystem(fmt.Sprintf("[trace] sound %s @%d+%d", r.Path, r.Offset, r.Length))
	}
}

// UpdateGraphic notes graphic changes.
func (c *CLI) UpdateGraphic(r types.Resource) {
	if c.Trace {
		c.printSystem(fmt.Sprintf("[trace] graphic %s @%d+%d", r.Path, r.Offset, r.Length))
	}
}

// Output

func (c *CLI) printResult(result types.Result) {
	if result.SoundChanged {
		c.UpdateSound(result.Sound)
	}
	if result.GraphicChanged {
		c.UpdateGraphic(result.Graphic)
	}
	for _, s := range result.Segments {
		if s.IsTag {
			c.PrintTag(s.Tag, s.Arg)
		} else {
			c.PrintString(s.Text)
		}
	}
}

func (c *CLI) write(s string) {
	if s == "" {
		return
	}
	io.WriteString(c.Out, s)
	if i := strings.LastIndexByte(s, '\n'); i >= 0 {
		c.col = len(s) - i - 1
	} else {
		c.col += len(s)
	}
}

// newline ends the current line, if anything is on it.
func (c *CLI) newline() {
	c.spaces = 0
	if c.col > 0 {
		c.write("\n")
	}
}

// endInput leaves the cursor where the terminal's echo of the player's
// Enter left it.
func (c *CLI) endInput(input string) {
	if c.EchoInput {
		c.write(input + "\n")
	}
	c.col = 0
}

func (c *CLI) printLine(text string) {
	c.newline()
	c.write(text + "\n")
}

func (c *CLI) printSystem(text string) {
	c.printLine("[" + text + "]")
}
