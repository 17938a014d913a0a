package engine

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/nathoo/adriftcore/engine/effects"
	"github.com/nathoo/adriftcore/engine/gametest"
	"github.com/nathoo/adriftcore/engine/props"
	"github.com/nathoo/adriftcore/engine/state"
	"github.com/nathoo/adriftcore/loader"
	"github.com/nathoo/adriftcore/types"
)

// world is a small test story: a hall with a lamp, a coin, a locked box
// and its key, a statue and a character; a garden to the north; and a
// cellar below that opens once the player prays.
type world struct {
	b                    *gametest.Builder
	hall, garden, cellar int
	lamp, coin, box, key int
	statue               int
	gus                  int
	pray, die            int
}

func newWorld() *world {
	w := &world{b: gametest.New("Test Game")}
	b := w.b
	b.Set("Welcome, adventurer.", "Header", "StartupText")
	b.Set(true, "Globals", "DispFirstRoom")

	w.hall = b.Room("Hall", "A grand hall with stone walls.")
	w.garden = b.Room("Garden", "A beautiful garden with flowers.")
	w.cellar = b.Room("Cellar", "A damp cellar.")
	b.Link(w.hall, gametest.North, w.garden, gametest.South)
	b.Exit(w.hall, gametest.Down, w.cellar)

	w.lamp = b.Object("a", "lamp", "A brass lamp.", gametest.InRoom(w.hall))
	w.coin = b.Object("a", "coin", "A gold coin.", gametest.InRoom(w.hall))
	w.box = b.Object("a", "box", "", gametest.InRoom(w.hall))
	w.key = b.Object("a", "key", "A small iron key.", gametest.InRoom(w.hall))
	b.Set(true, "Objects", w.box, "Container")
	b.Set(99, "Objects", w.box, "Capacity")
	b.Set(state.Locked, "Objects", w.box, "Openable")
	b.Set(3, "Objects", w.box, "Key")
	w.statue = b.Static("a", "statue", "A weathered statue of a knight.", w.hall)

	w.gus = b.NPC("", "Gus", "A stout fellow.", w.hall)
	b.Set("#", "NPCs", w.gus, "InRoomText")
	b.Topic(w.gus, "weather", "Rain again.")

	w.pray = b.Task("pray")
	b.Set("You feel blessed.", "Tasks", w.pray, "CompleteText")
	b.Action(w.pray, effects.ActScore, 5, 0, 0, 0, 0, "")
	b.Set(w.pray+1, "Rooms", w.hall, "Exits", gametest.Down, "Var1")

	w.die = b.Task("die")
	b.Action(w.die, effects.ActEndGame, effects.EndDeath, 0, 0, 0, 0, "")
	return w
}

func (w *world) engine(t *testing.T) *Engine {
	t.Helper()
	e, err := New(w.b.MustBuild(t), Options{Seed: 1})
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	return e
}

func step(e *Engine, input string) string {
	return Text(e.Step(input).Segments)
}

// testHost confirms as told and keeps one save file in memory.
type testHost struct {
	confirm bool
	lines   []string
	out     strings.Builder
	saved   bytes.Buffer
	hints   []types.Hint
}

type closer struct{ io.Writer }

func (closer) Close() error { return nil }

func (h *testHost) PrintString(s string)                { h.out.WriteString(s) }
func (h *testHost) PrintTag(types.TagCode, string)      {}
func (h *testHost) Confirm(types.ConfirmKind) bool      { return h.confirm }
func (h *testHost) DisplayHints(hints []types.Hint)     { h.hints = hints }
func (h *testHost) UpdateSound(types.Resource)          {}
func (h *testHost) UpdateGraphic(types.Resource)        {}
func (h *testHost) CreateSave() (io.WriteCloser, error) { h.saved.Reset(); return closer{&h.saved}, nil }

func (h *testHost) OpenSave() (io.ReadCloser, error) {
	return io.NopCloser(bytes.NewReader(h.saved.Bytes())), nil
}

func (h *testHost) ReadLine() (string, error) {
	if len(h.lines) == 0 {
		return "", io.EOF
	}
	line := h.lines[0]
	h.lines = h.lines[1:]
	return line, nil
}

func TestNew_NoRooms(t *testing.T) {
	_, err := New(&loader.Story{Props: props.New()}, Options{})
	if !errors.Is(err, ErrNoRooms) {
		t.Errorf("New() error = %v, want %v", err, ErrNoRooms)
	}
}

func TestStart(t *testing.T) {
	e := newWorld().engine(t)
	out := Text(e.Start().Segments)

	for _, want := range []string{
		"Test Game",
		"Welcome, adventurer.",
		"Hall",
		"A grand hall with stone walls.",
		"Also here is a lamp, a coin, a box and a key.",
		"Gus is here.",
		"There is an exit north.",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("Start() output missing %q, got %q", want, out)
		}
	}
	if !e.Running() {
		t.Error("Running() = false after Start")
	}
	if got := Text(e.Start().Segments); got != "" {
		t.Errorf("second Start() = %q, want nothing", got)
	}
}

func TestStep_Move(t *testing.T) {
	tests := []struct {
		input string
		room  int
		want  string
	}{
		{"n", 1, "You move north."},
		{"north", 1, "A beautiful garden with flowers."},
		{"go north", 1, "Garden"},
		{"w", 0, "You can't go in that direction, but you can go north."},
		{"d", 0, "You can't go that way (at present)."},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			e := newWorld().engine(t)
			e.Start()
			out := step(e, tt.input)
			if !strings.Contains(out, tt.want) {
				t.Errorf("Step(%q) = %q, want %q", tt.input, out, tt.want)
			}
			if got := e.Game().S.PlayerRoom; got != tt.room {
				t.Errorf("PlayerRoom = %d, want %d", got, tt.room)
			}
		})
	}
}

func TestStep_RestrictedExitOpens(t *testing.T) {
	w := newWorld()
	e := w.engine(t)
	e.Start()

	out := step(e, "pray")
	if !strings.Contains(out, "You feel blessed.") {
		t.Errorf("Step(pray) = %q, want completion text", out)
	}
	if !strings.Contains(out, "(Your score has increased by 5)") {
		t.Errorf("Step(pray) = %q, want score notice", out)
	}
	step(e, "down")
	if got := e.Game().S.PlayerRoom; got != w.cellar {
		t.Errorf("PlayerRoom = %d, want cellar", got)
	}
}

func TestStep_TakeAndDrop(t *testing.T) {
	w := newWorld()
	e := w.engine(t)
	e.Start()
	g := e.Game()

	steps := []struct {
		input, want string
		pos         int
	}{
		{"take lamp", "You take the lamp.", state.PosHeldPlayer},
		{"take lamp", "You've already got the lamp!", state.PosHeldPlayer},
		{"i", "You are carrying a lamp.", state.PosHeldPlayer},
		{"drop lamp", "You drop the lamp.", w.hall + 1},
		{"drop lamp", "You are not holding the lamp.", w.hall + 1},
	}
	for _, s := range steps {
		out := step(e, s.input)
		if !strings.Contains(out, s.want) {
			t.Errorf("Step(%q) = %q, want %q", s.input, out, s.want)
		}
		if got := g.S.Objects[w.lamp].Position; got != s.pos {
			t.Errorf("after %q lamp position = %d, want %d", s.input, got, s.pos)
		}
	}
}

func TestStep_TakeAll(t *testing.T) {
	w := newWorld()
	e := w.engine(t)
	e.Start()

	out := step(e, "take all")
	if !strings.Contains(out, "You take the lamp, the coin, the box and the key.") {
		t.Errorf("Step(take all) = %q", out)
	}
	for _, o := range []int{w.lamp, w.coin, w.box, w.key} {
		if !e.Game().DirectlyHeldByPlayer(o) {
			t.Errorf("object %d not held", o)
		}
	}
	if out := step(e, "take all"); !strings.Contains(out, "There is nothing to pick up here.") {
		t.Errorf("second take all = %q", out)
	}
}

func TestStep_Responses(t *testing.T) {
	tests := []struct {
		input, want string
	}{
		{"take statue", "You can't take the statue!"},
		{"x lamp", "A brass lamp."},
		{"examine statue", "A weathered statue of a knight."},
		{"x box", "The box is closed."},
		{"x me", "You are as well as can be expected."},
		{"x gus", "A stout fellow."},
		{"ask gus about weather", "Rain again."},
		{"kiss gus", "I'm not sure he would appreciate that!"},
		{"where is lamp", "Hall."},
		{"open box", "The box is locked!"},
		{"jump", "Wheee-boinng."},
		{"dance", "You do a little dance."},
		{"push statue", "You push the statue, but nothing happens."},
		{"x dragon", "You see no such thing."},
		{"exits", "There is an exit north."},
		{"frobnicate", "Sorry, I didn't understand that."},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			w := newWorld()
			w.b.Set(state.Male, "NPCs", w.gus, "Gender")
			e := w.engine(t)
			e.Start()
			if out := step(e, tt.input); !strings.Contains(out, tt.want) {
				t.Errorf("Step(%q) = %q, want %q", tt.input, out, tt.want)
			}
		})
	}
}

func TestStep_Containers(t *testing.T) {
	w := newWorld()
	e := w.engine(t)
	e.Start()
	g := e.Game()

	for _, s := range []struct{ input, want string }{
		{"unlock box with key", "You are not holding the key."},
		{"take key", "You take the key."},
		{"unlock box", "You unlock the box with the key."},
		{"open box", "You open the box."},
		{"take coin", "You take the coin."},
		{"put coin in box", "You put the coin inside the box."},
		{"close box", "You close the box."},
		{"lock box with key", "You lock the box with the key."},
	} {
		if out := step(e, s.input); !strings.Contains(out, s.want) {
			t.Errorf("Step(%q) = %q, want %q", s.input, out, s.want)
		}
	}
	if obj := g.S.Objects[w.coin]; obj.Position != state.PosInObject || obj.Parent != w.box {
		t.Errorf("coin at position %d parent %d, want inside the box", obj.Position, obj.Parent)
	}
	if got := g.S.Objects[w.box].Openness; got != state.Locked {
		t.Errorf("box openness = %d, want locked", got)
	}
}

func TestStep_Commas(t *testing.T) {
	e := newWorld().engine(t)
	e.Start()

	step(e, "n, s")
	if got := e.Game().S.Turns; got != 2 {
		t.Errorf("Turns = %d, want 2", got)
	}
	if got := e.Game().S.PlayerRoom; got != 0 {
		t.Errorf("PlayerRoom = %d, want 0", got)
	}

	// An unknown command drops the rest of the line.
	out := step(e, "frobnicate, n")
	if got := e.Game().S.PlayerRoom; got != 0 {
		t.Errorf("PlayerRoom = %d after rejected line, want 0", got)
	}
	if strings.Contains(out, "You move north.") {
		t.Errorf("Step() = %q, want the rest of the line dropped", out)
	}
}

func TestStep_Again(t *testing.T) {
	e := newWorld().engine(t)
	e.Start()

	if out := step(e, "again"); !strings.Contains(out, "You can hardly repeat that.") {
		t.Errorf("again with nothing to repeat = %q", out)
	}
	step(e, "z")
	out := step(e, "g")
	if !strings.Contains(out, "Time passes...") {
		t.Errorf("again = %q, want the wait repeated", out)
	}
	if got := e.Game().S.Turns; got != 2 {
		t.Errorf("Turns = %d, want 2", got)
	}
}

func TestStep_Undo(t *testing.T) {
	e := newWorld().engine(t)
	e.Start()

	if out := step(e, "undo"); !strings.Contains(out, "You can't undo what hasn't been done.") {
		t.Errorf("undo at start = %q", out)
	}
	step(e, "n")
	step(e, "s")
	step(e, "n")
	if out := step(e, "undo"); !strings.Contains(out, "The previous turn has been undone.") {
		t.Errorf("undo = %q", out)
	}
	if got := e.Game().S.PlayerRoom; got != 0 {
		t.Errorf("PlayerRoom = %d after undo, want 0", got)
	}
	if out := step(e, "undo"); !strings.Contains(out, "Sorry, no more undo is available.") {
		t.Errorf("second undo = %q", out)
	}
	if err := e.Undo(); !errors.Is(err, ErrNoUndo) {
		t.Errorf("Undo() error = %v, want %v", err, ErrNoUndo)
	}
}

func TestStep_ScoreAndTurns(t *testing.T) {
	e := newWorld().engine(t)
	e.Start()

	step(e, "pray")
	step(e, "z")
	if out := step(e, "score"); !strings.Contains(out, "Your score is 5 out of a maximum of") {
		t.Errorf("score = %q", out)
	}
	if out := step(e, "turns"); !strings.Contains(out, "You have taken 2 turns so far.") {
		t.Errorf("turns = %q", out)
	}
	if got := e.Game().S.Turns; got != 2 {
		t.Errorf("Turns = %d, want administrative commands not counted", got)
	}
}

func TestStep_SaveRestore(t *testing.T) {
	w := newWorld()
	e := w.engine(t)
	host := &testHost{confirm: true}
	e.SetHost(host)
	e.Start()

	step(e, "take lamp")
	if out := step(e, "save"); !strings.Contains(out, "Ok.") {
		t.Fatalf("save = %q", out)
	}
	step(e, "drop lamp")
	step(e, "n")

	if out := step(e, "restore"); !strings.Contains(out, "Ok.") {
		t.Fatalf("restore = %q", out)
	}
	g := e.Game()
	if g.S.PlayerRoom != w.hall {
		t.Errorf("PlayerRoom = %d after restore, want hall", g.S.PlayerRoom)
	}
	if !g.DirectlyHeldByPlayer(w.lamp) {
		t.Error("lamp not held after restore")
	}
	if !e.Running() {
		t.Error("Running() = false after restore")
	}
}

func TestStep_SaveDeclined(t *testing.T) {
	e := newWorld().engine(t)
	host := &testHost{}
	e.SetHost(host)
	e.Start()

	if out := step(e, "save"); strings.Contains(out, "Ok.") {
		t.Errorf("save = %q, want nothing when declined", out)
	}
	if host.saved.Len() != 0 {
		t.Errorf("saved %d bytes, want none", host.saved.Len())
	}
}

func TestStep_GameOver(t *testing.T) {
	e := newWorld().engine(t)
	e.Start()

	if out := step(e, "die"); !strings.Contains(out, "I'm afraid you are dead!") {
		t.Errorf("die = %q", out)
	}
	if e.Running() || !e.Completed() {
		t.Errorf("Running() = %v, Completed() = %v, want false, true", e.Running(), e.Completed())
	}
	if out := step(e, "look"); !strings.Contains(out, "The game is over.") {
		t.Errorf("look after death = %q", out)
	}
	step(e, "undo")
	if !e.Running() {
		t.Error("Running() = false after undoing the fatal turn")
	}
}

func TestStep_RestartAndQuit(t *testing.T) {
	e := newWorld().engine(t)
	e.SetHost(&testHost{confirm: true})
	e.Start()

	step(e, "n")
	out := step(e, "restart")
	if !strings.Contains(out, "Welcome, adventurer.") {
		t.Errorf("restart = %q, want the introduction again", out)
	}
	if g := e.Game(); g.S.PlayerRoom != 0 || g.S.Turns != 0 {
		t.Errorf("after restart room %d turns %d, want 0, 0", g.S.PlayerRoom, g.S.Turns)
	}

	step(e, "quit")
	if !e.Quitting() || e.Running() {
		t.Errorf("Quitting() = %v, Running() = %v after quit", e.Quitting(), e.Running())
	}
}

func TestStep_Hints(t *testing.T) {
	t.Run("none", func(t *testing.T) {
		e := newWorld().engine(t)
		e.Start()
		if out := step(e, "hints"); !strings.Contains(out, "There are no hints available for this adventure.") {
			t.Errorf("hints = %q", out)
		}
	})

	t.Run("question", func(t *testing.T) {
		w := newWorld()
		w.b.Set("How do I get down?", "Tasks", w.pray, "Question")
		w.b.Set("Try being pious.", "Tasks", w.pray, "Hint1")
		w.b.Set("Pray.", "Tasks", w.pray, "Hint2")
		e := w.engine(t)
		host := &testHost{confirm: true}
		e.SetHost(host)
		e.Start()

		step(e, "hint")
		want := types.Hint{Question: "How do I get down?", Subtle: "Try being pious.", Unsubtle: "Pray."}
		if len(host.hints) != 1 || host.hints[0] != want {
			t.Errorf("hints = %+v, want [%+v]", host.hints, want)
		}
	})
}

func TestStep_EightPointCompass(t *testing.T) {
	w := newWorld()
	w.b.Set(true, "Globals", "EightPointCompass")
	w.b.Exit(w.garden, gametest.NorthEast, w.cellar)
	e := w.engine(t)
	e.Start()

	step(e, "n")
	out := step(e, "ne")
	if !strings.Contains(out, "You move northeast.") {
		t.Errorf("ne = %q", out)
	}
	if got := e.Game().S.PlayerRoom; got != w.cellar {
		t.Errorf("PlayerRoom = %d, want cellar", got)
	}
}

func TestStep_Synonym(t *testing.T) {
	w := newWorld()
	w.b.Synonym("walk", "go")
	e := w.engine(t)
	e.Start()

	step(e, "walk north")
	if got := e.Game().S.PlayerRoom; got != w.garden {
		t.Errorf("PlayerRoom = %d, want garden", got)
	}
}

func TestAttributes(t *testing.T) {
	e := newWorld().engine(t)
	e.Start()
	step(e, "pray")

	a := e.Attributes()
	if a.Title != "Test Game" || a.Author != "Tester" {
		t.Errorf("Title, Author = %q, %q", a.Title, a.Author)
	}
	if a.Room != "Hall" {
		t.Errorf("Room = %q, want Hall", a.Room)
	}
	if a.Score != 5 || a.Turns != 1 {
		t.Errorf("Score, Turns = %d, %d, want 5, 1", a.Score, a.Turns)
	}
}

func TestRun(t *testing.T) {
	e := newWorld().engine(t)
	host := &testHost{lines: []string{"n", "s", "take lamp"}}
	if err := e.Run(host); err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	out := host.out.String()
	for _, want := range []string{"Welcome, adventurer.", "You move north.", "You move south.", "You take the lamp."} {
		if !strings.Contains(out, want) {
			t.Errorf("Run() output missing %q", want)
		}
	}
	if got := e.Game().S.Turns; got != 3 {
		t.Errorf("Turns = %d, want 3", got)
	}
}
