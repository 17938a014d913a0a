// Package engine runs a loaded story: it reads player commands, offers
// them to the story's tasks and then to the built-in library, and advances
// events and characters once per turn.
package engine

import (
	"errors"
	"fmt"
	"io"
	"log"
	"strings"
	"time"

	"github.com/nathoo/adriftcore/engine/events"
	"github.com/nathoo/adriftcore/engine/filter"
	"github.com/nathoo/adriftcore/engine/parser"
	"github.com/nathoo/adriftcore/engine/rules"
	"github.com/nathoo/adriftcore/engine/save"
	"github.com/nathoo/adriftcore/engine/state"
	"github.com/nathoo/adriftcore/loader"
	"github.com/nathoo/adriftcore/types"
)

// ErrNoRooms is returned for a story with nowhere to play.
var ErrNoRooms = errors.New("engine: story contains no rooms")

// ErrNoUndo is returned by Undo when no turn can be taken back.
var ErrNoUndo = errors.New("engine: no undo available")

// Options configure a new engine.
type Options struct {
	// Seed starts the random number generator. Zero picks one from the
	// clock.
	Seed   int64
	Trace  types.TraceFlags
	Logger *log.Logger
}

// Engine holds a story and the game being played on it.
type Engine struct {
	g     *state.Game
	story *loader.Story
	rng   *RNG
	log   *log.Logger
	host  types.Host
	rec   recorder

	patterns  map[string]*parser.Pattern
	synonyms  []filter.Synonym
	taskDepth int

	undo          *state.State
	undoAvailable bool
	prior         string
	hasPrior      bool

	started   bool
	quit      bool
	admin     bool
	doAgain   bool
	doRestart bool
	doRestore bool
	stopSound bool
	waitTurns int
}

// New prepares a story for play. The game does not begin until Start or
// the first Step.
func New(story *loader.Story, opts Options) (*Engine, error) {
	if story.Props.Count("Rooms") == 0 {
		return nil, ErrNoRooms
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	seed := opts.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	e := &Engine{
		story:    story,
		rng:      NewRNG(seed),
		log:      logger,
		host:     nullHost{},
		patterns: make(map[string]*parser.Pattern),
	}
	e.g = state.New(story.Props, e.rng)
	e.g.SetTrace(logger, opts.Trace)
	e.g.Resources.Path = story.Path
	e.g.Resources.DataLength = story.DataLength

	for i := 0; i < story.Props.Count("Synonyms"); i++ {
		e.synonyms = append(e.synonyms, filter.Synonym{
			Original:    story.Props.String("Synonyms", i, "Original"),
			Replacement: story.Props.String("Synonyms", i, "Replacement"),
		})
	}
	e.undo = e.g.Snapshot()
	return e, nil
}

// Game returns the running game, for hosts and tests that inspect it.
func (e *Engine) Game() *state.Game { return e.g }

// Seed returns the seed the random number generator started from.
func (e *Engine) Seed() int64 { return e.rng.Seed() }

// RandomCalls returns how many random numbers the game has drawn. With the
// seed it pins down where a replay has reached.
func (e *Engine) RandomCalls() int64 { return e.rng.Position() }

// SetHost routes confirmations, saved games and hints through h. Without
// a host every confirmation is accepted and saving is unavailable.
func (e *Engine) SetHost(h types.Host) {
	if h == nil {
		h = nullHost{}
	}
	e.host = h
}

// Running reports whether the game accepts ordinary commands.
func (e *Engine) Running() bool { return e.g.S.Running && !e.quit }

// Completed reports whether the story has ended.
func (e *Engine) Completed() bool { return e.g.S.Completed }

// Quitting reports whether the player has asked to leave.
func (e *Engine) Quitting() bool { return e.quit }

// Start begins the game, printing the introduction and the first room.
// A game already started returns an empty result.
func (e *Engine) Start() types.Result {
	res := types.Result{}
	if !e.started {
		e.begin()
	}
	e.finish(&res, e.g.S.Score)
	return res
}

// begin runs the opening of a game: the title and introduction for a game
// at turn zero, then the first turn of events and walks.
func (e *Engine) begin() {
	g := e.g
	e.started = true
	g.S.Running = true
	if g.S.Turns != 0 {
		return
	}

	// 1. Title, introduction and the first room.
	g.Filter.PrintTag(types.TagCls)
	g.Print(g.Props.String("Globals", "GameName") + "\n")
	g.Print(g.Props.String("Header", "StartupText") + "\n")
	if g.Props.Bool("Globals", "DispFirstRoom") {
		e.look()
	}
	g.HandleResource("Globals", "IntroRes")

	// 2. A fresh game nudges events and walks before the first command.
	if !g.S.RoomsSeen[g.S.PlayerRoom] {
		e.startInitialWalks()
		events.Tick(g, e)
		e.tickNPCs()
		g.S.RoomsSeen[g.S.PlayerRoom] = true
	}
}

// Step runs one line of player input and returns what the game printed.
func (e *Engine) Step(input string) types.Result {
	res := types.Result{Input: input}
	score := e.g.S.Score

	// 1. First use starts the game.
	if !e.started {
		e.begin()
	}

	// 2. A finished game takes only commands that leave it.
	switch {
	case e.quit:
	case !e.g.S.Running:
		e.gameOver(input)
	default:
		e.interpret(input)
	}

	// 3. Restart and restore resume play from the new state.
	e.resume()

	e.finish(&res, score)
	return res
}

// interpret runs each comma-separated element of a line as one command.
func (e *Engine) interpret(line string) {
	g := e.g
	elements := strings.Split(line, ",")
	if len(elements) > 1 && strings.TrimSpace(elements[len(elements)-1]) == "" {
		elements = elements[:len(elements)-1]
	}

	for i, element := range elements {
		if !g.S.Running {
			return
		}
		if i > 0 {
			g.Print("\n")
		}

		matched, understood := e.command(element, false)
		e.endTurn(matched)
		for e.doAgain && g.S.Running {
			e.doAgain = false
			if !e.hasPrior {
				g.Print("You can hardly repeat that.\n")
				break
			}
			matched, _ = e.command(e.prior, true)
			e.endTurn(matched)
		}

		if !understood || e.doRestart || e.doRestore {
			return
		}
	}
}

// command offers one command to the tasks and the library. It reports
// whether anything handled it, and false for understood when the command
// was rejected outright and the rest of the line should be dropped.
func (e *Engine) command(element string, rerun bool) (matched, understood bool) {
	g := e.g
	e.admin = false
	temp := g.Snapshot()

	// 1. Synonyms, echoed when they changed the command.
	filtered := filter.FilterInput(element, e.synonyms)
	if !strings.EqualFold(filtered, element) {
		g.Filter.PrintTag(types.TagItalics)
		g.Print("[" + filtered + "]")
		g.Filter.PrintTag(types.TagEndItalics)
		g.Print("\n")
	}
	g.Tracef(types.TraceLibrary, "command %q", filtered)

	// 2. Unrestricted tasks, the library's world commands, then tasks
	// whose restrictions fail, and last the stock responses.
	matched = e.runTaskCommands(filtered, true) ||
		e.runTable(e.moveCommands(), filtered) ||
		e.runTable(generalCommands, filtered) ||
		e.runTaskCommands(filtered, false) ||
		e.runTable(standardCommands, filtered)

	if !matched {
		if strings.TrimSpace(filtered) == "" {
			return false, true
		}
		g.Vars.SetRefText(element)
		g.Print(g.Props.String("Globals", "DontUnderstand") + "\n")
		return false, false
	}

	// 3. Anything but an administrative command can be undone.
	if !e.admin {
		e.undo = temp
		e.undoAvailable = true
	}
	if !rerun && !e.doAgain && strings.TrimSpace(element) != "" {
		e.prior, e.hasPrior = element, true
	}
	return true, true
}

// endTurn advances the world after a handled command, and once more for
// every turn a wait command still owes.
func (e *Engine) endTurn(matched bool) {
	if e.waitTurns > 0 {
		e.waitTurns--
	}
	if matched && !e.admin {
		e.turn()
	}
	for e.waitTurns > 0 && e.g.S.Running {
		e.waitTurns--
		e.turn()
	}
}

// turn runs the end of a turn: events, walks, and the score notice.
func (e *Engine) turn() {
	g := e.g
	if !g.S.Running {
		return
	}
	g.S.Turns++
	events.Tick(g, e)
	e.tickNPCs()
	g.TurnUpdate()
	g.S.RoomsSeen[g.S.PlayerRoom] = true
	g.Tracef(types.TraceState, "turn %d, score %d", g.S.Turns, g.S.Score)

	if !e.undoAvailable || !g.S.NotifyScore {
		return
	}
	switch diff := g.S.Score - e.undo.Score; {
	case diff > 0:
		g.Printf("\n(Your score has increased by %d)\n", diff)
	case diff < 0:
		g.Printf("\n(Your score has decreased by %d)\n", -diff)
	}
}

// gameOverCommands are what a finished game still understands.
var gameOverCommands = []command{
	{"restart", func(e *Engine) bool { e.restartGame(); return true }},
	{"[restore/load]", func(e *Engine) bool { return e.cmdRestore() }},
	{"undo", func(e *Engine) bool {
		if !e.undoAvailable {
			e.g.Print("Sorry, no more undo is available.\n")
			return true
		}
		return e.cmdUndo()
	}},
	{"[quit/q]", func(e *Engine) bool { e.quit = true; return true }},
}

func (e *Engine) gameOver(input string) {
	if e.runTable(gameOverCommands, filter.FilterInput(input, e.synonyms)) {
		return
	}
	e.g.Print("The game is over.  Would you like to restart, undo a turn, restore a saved game, or quit?\n")
}

// resume finishes a restart or restore requested during the turn.
func (e *Engine) resume() {
	g := e.g
	if e.doRestart {
		e.doRestart = false
		e.restartGame()
	}
	if e.doRestore {
		e.doRestore = false
		e.undoAvailable = false
		e.stopSound = true
		e.hasPrior = false
		g.S.Running = true
		if g.S.Turns == 0 {
			e.begin()
		}
	}
}

// restartGame returns to a fresh game, keeping the undo buffer.
func (e *Engine) restartGame() {
	g := e.g
	g.Reset()
	e.hasPrior = false
	e.waitTurns = 0
	e.quit = false
	e.begin()
}

// finish flushes the turn's text and resource changes into res.
func (e *Engine) finish(res *types.Result, scoreBefore int) {
	g := e.g
	e.flushText()
	res.Segments = e.rec.take()

	r := g.TakeResourceChanges()
	if e.stopSound {
		e.stopSound = false
		g.Resources.Sound = types.Resource{}
		r.Sound, r.SoundChanged = types.Resource{}, true
	}
	res.SoundChanged, res.Sound = r.SoundChanged, r.Sound
	res.GraphicChanged, res.Graphic = r.GraphicChanged, r.Graphic

	res.ScoreChange = g.S.Score - scoreBefore
	res.Running = e.Running()
	res.Completed = g.S.Completed
}

// flushText moves filtered story text into the recorder.
func (e *Engine) flushText() { e.g.Filter.Flush(&e.rec) }

// printDirect writes text that bypasses the story's filtering, after
// whatever is already buffered.
func (e *Engine) printDirect(s string) {
	e.flushText()
	e.rec.PrintString(s)
}

// Run plays the game against a host until the player quits or input
// ends.
func (e *Engine) Run(host types.Host) error {
	e.SetHost(host)
	deliver(host, e.Start())
	for !e.quit {
		line, err := host.ReadLine()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("engine: reading input: %w", err)
		}
		deliver(host, e.Step(line))
	}
	return nil
}

// deliver passes a turn's output to the host.
func deliver(host types.Host, res types.Result) {
	if res.SoundChanged {
		host.UpdateSound(res.Sound)
	}
	if res.GraphicChanged {
		host.UpdateGraphic(res.Graphic)
	}
	for _, s := range res.Segments {
		if s.IsTag {
			host.PrintTag(s.Tag, s.Arg)
		} else {
			host.PrintString(s.Text)
		}
	}
}

// Save writes the game to w.
func (e *Engine) Save(w io.Writer) error {
	return save.Save(e.g, w)
}

// Restore replaces the game with one read from r. A failed restore leaves
// the game untouched.
func (e *Engine) Restore(r io.Reader) error {
	s, err := save.Restore(e.g, r)
	if err != nil {
		return err
	}
	e.g.Install(s)
	e.doRestore = true
	e.resume()
	return nil
}

// Undo takes back the last turn.
func (e *Engine) Undo() error {
	if !e.undoAvailable {
		return ErrNoUndo
	}
	e.restoreUndo()
	return nil
}

// restoreUndo installs the undo buffer. A game that had ended resumes.
func (e *Engine) restoreUndo() {
	g := e.g
	running := g.S.Running || g.S.Completed
	g.Install(e.undo.Clone())
	g.S.Running = running
	e.undoAvailable = false
}

// Restart begins the game again from its initial state.
func (e *Engine) Restart() types.Result {
	res := types.Result{}
	score := e.g.S.Score
	e.restartGame()
	e.finish(&res, score)
	return res
}

// Describe prints the player's room in full without taking a turn, for
// hosts that have just loaded a game.
func (e *Engine) Describe() types.Result {
	res := types.Result{}
	if !e.started {
		e.begin()
	}
	e.look()
	e.finish(&res, e.g.S.Score)
	return res
}

// Quit stops the game.
func (e *Engine) Quit() {
	e.g.S.Running = false
	e.quit = true
}

// Attributes returns what a status line shows.
func (e *Engine) Attributes() types.Attributes {
	g := e.g
	info := func(s string) string { return filter.StripTags(g.Filter.Interpolate(s)) }
	a := types.Attributes{
		Title:     info(g.Props.String("Globals", "GameName")),
		Author:    info(g.Props.String("Globals", "GameAuthor")),
		Room:      filter.StripTags(g.Filter.Filter(g.RoomName(g.S.PlayerRoom))),
		Score:     g.S.Score,
		MaxScore:  g.Props.Int("Globals", "MaxScore"),
		Turns:     g.S.Turns,
		Running:   e.Running(),
		Completed: g.S.Completed,
	}
	if g.Props.Bool("Globals", "StatusBox") {
		a.Status = filter.StripTags(g.Filter.Filter(g.Props.String("Globals", "StatusBoxText")))
	}
	return a
}

// hasHints reports whether a task carries a hint question.
func (e *Engine) hasHints(task int) bool {
	return e.g.Props.String("Tasks", task, "Question") != ""
}

// Hints returns the hints for the tasks the player could attempt here.
func (e *Engine) Hints() []types.Hint {
	g := e.g
	text := func(task int, key string) string {
		s := g.Props.String("Tasks", task, key)
		if s == "" {
			return ""
		}
		return filter.StripTagsForHints(g.Filter.Filter(s))
	}
	var hints []types.Hint
	for task := 0; task < g.Tasks(); task++ {
		if !e.hasHints(task) || !rules.Visible(g, task) {
			continue
		}
		hints = append(hints, types.Hint{
			Question: text(task, "Question"),
			Subtle:   text(task, "Hint1"),
			Unsubtle: text(task, "Hint2"),
		})
	}
	return hints
}

// recorder collects flushed output as segments, joining adjacent text.
type recorder struct {
	segs []types.Segment
}

func (r *recorder) PrintString(s string) {
	if s == "" {
		return
	}
	if n := len(r.segs); n > 0 && !r.segs[n-1].IsTag {
		r.segs[n-1].Text += s
		return
	}
	r.segs = append(r.segs, types.Segment{Text: s})
}

func (r *recorder) PrintTag(code types.TagCode, arg string) {
	r.segs = append(r.segs, types.Segment{IsTag: true, Tag: code, Arg: arg})
}

func (r *recorder) take() []types.Segment {
	segs := r.segs
	r.segs = nil
	return segs
}

// Text joins the plain text of segments, dropping tags.
func Text(segs []types.Segment) string {
	var b strings.Builder
	for _, s := range segs {
		if !s.IsTag {
			b.WriteString(s.Text)
		}
	}
	return b.String()
}

// nullHost accepts every confirmation and cannot save.
type nullHost struct{}

func (nullHost) PrintString(string) {}
func (nullHost) PrintTag(types.TagCode, string) {}
func (nullHost) ReadLine() (string, error) { return "", io.EOF }
func (nullHost) Confirm(types.ConfirmKind) bool { return true }
func (nullHost) CreateSave() (io.WriteCloser, error) { return nil, nil }
func (nullHost) OpenSave() (io.ReadCloser, error) { return nil, nil }
func (nullHost) DisplayHints([]types.Hint) {}
func (nullHost) UpdateSound(types.Resource) {}
func (nullHost) UpdateGraphic(types.Resource) {}
