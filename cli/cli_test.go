package cli

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/nathoo/adriftcore/engine"
	"github.com/nathoo/adriftcore/engine/gametest"
	"github.com/nathoo/adriftcore/saves"
	"github.com/nathoo/adriftcore/transcript"
)

// testGame returns a two-room story for CLI testing.
func testGame(t *testing.T) *engine.Engine {
	t.Helper()
	b := gametest.New("Test Game")
	b.Set("Welcome to the test.", "Header", "StartupText")
	b.Set(true, "Globals", "DispFirstRoom")
	hall := b.Room("Hall", "A grand hall.")
	garden := b.Room("Garden", "A peaceful garden.")
	b.Link(hall, gametest.North, garden, gametest.South)
	b.Object("a", "rusty key", "An old key.", gametest.InRoom(hall))
	pray := b.Task("pray")
	b.Set("Are you lost?", "Tasks", pray, "Question")
	b.Set("Look around.", "Tasks", pray, "Hint1")
	b.Set("Go north.", "Tasks", pray, "Hint2")

	eng, err := engine.New(b.MustBuild(t), engine.Options{Seed: 1})
	if err != nil {
		t.Fatalf("engine.New() error: %v", err)
	}
	return eng
}

func newTestCLI(t *testing.T, input string) (*CLI, *bytes.Buffer) {
	t.Helper()
	store, err := saves.Open(t.TempDir())
	if err != nil {
		t.Fatalf("saves.Open() error: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	var out bytes.Buffer
	c := New(testGame(t), store)
	c.In = strings.NewReader(input)
	c.Out = &out
	return c, &out
}

func run(t *testing.T, c *CLI) {
	t.Helper()
	if err := c.Run(); err != nil {
		t.Fatalf("Run() error: %v", err)
	}
}

func TestCLI_Output(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{"intro", "/quit\n", []string{"Welcome to the test.", "A grand hall."}},
		{"look", "look\n/quit\n", []string{"A grand hall."}},
		{"navigation", "north\n/quit\n", []string{"You move north.", "A peaceful garden."}},
		{"help", "/help\n/quit\n", []string{"/save", "/load", "/saves", "/quit"}},
		{"unknown meta", "/bogus\n/quit\n", []string{"Unknown command: /bogus"}},
		{"trace", "/trace\nlook\n/trace\n/quit\n", []string{"Trace output enabled", "Trace output disabled"}},
		{"state", "n\n/state\n/quit\n", []string{"Turn: 1", "Location: Garden", "Seed: 1", "RNG position: "}},
		{"load missing", "/load nonexistent\n/quit\n", []string{"Load failed"}},
		{"undo", "n\n/undo\n/quit\n", []string{"[Undone.]", "A grand hall."}},
		{"nothing to undo", "/undo\n/quit\n", []string{"Nothing to undo."}},
		{"game quit", "quit\ny\n", []string{"Do you really want to quit? (y/n)"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, out := newTestCLI(t, tt.input)
			run(t, c)
			for _, want := range tt.want {
				if !strings.Contains(out.String(), want) {
					t.Errorf("output missing %q:\n%s", want, out.String())
				}
			}
		})
	}
}

func TestCLI_Again(t *testing.T) {
	c, out := newTestCLI(t, "z\ng\n/quit\n")
	run(t, c)
	if got := strings.Count(out.String(), "Time passes..."); got != 2 {
		t.Errorf("Time passes... printed %d times, want 2", got)
	}
}

func TestCLI_SkipsBlankAndCommentLines(t *testing.T) {
	c, out := newTestCLI(t, "\n# a comment\n\n/quit\n")
	run(t, c)
	if strings.Contains(out.String(), "didn't understand") {
		t.Errorf("blank or comment line reached the game:\n%s", out.String())
	}
	if got := c.Engine.Attributes().Turns; got != 0 {
		t.Errorf("Turns = %d, want 0", got)
	}
}

func TestCLI_EOFEndsGame(t *testing.T) {
	c, _ := newTestCLI(t, "north\n")
	run(t, c)
	if got := c.Engine.Attributes().Room; got != "Garden" {
		t.Errorf("Room = %q, want Garden", got)
	}
}

func TestCLI_SaveAndLoad(t *testing.T) {
	dir := t.TempDir()
	store, err := saves.Open(dir)
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()

	// Play a bit and save.
	var out bytes.Buffer
	c := New(testGame(t), store)
	c.In = strings.NewReader("north\n/save test\n/saves\n/quit\n")
	c.Out = &out
	run(t, c)
	if !strings.Contains(out.String(), "Game saved to test.") {
		t.Errorf("expected save confirmation:\n%s", out.String())
	}
	if !strings.Contains(out.String(), "Test Game, turn 1") {
		t.Errorf("expected the slot in the listing:\n%s", out.String())
	}

	// Start fresh and load.
	var out2 bytes.Buffer
	c2 := New(testGame(t), store)
	c2.In = strings.NewReader("/load test\n/quit\n")
	c2.Out = &out2
	run(t, c2)
	if !strings.Contains(out2.String(), "Game loaded from test (turn 1).") {
		t.Errorf("expected load confirmation:\n%s", out2.String())
	}
	if !strings.Contains(out2.String(), "A peaceful garden.") {
		t.Errorf("expected garden description after loading:\n%s", out2.String())
	}
}

func TestCLI_InGameSaveRestore(t *testing.T) {
	c, out := newTestCLI(t, "north\nsave\nslot1\nsouth\nrestore\nslot1\n/quit\n")
	run(t, c)
	if !strings.Contains(out.String(), "Save to which slot? [quicksave]") {
		t.Errorf("expected a slot prompt:\n%s", out.String())
	}
	if got := c.Engine.Attributes().Room; got != "Garden" {
		t.Errorf("Room = %q after restore, want Garden", got)
	}
	if _, err := c.Saves.Get("slot1"); err != nil {
		t.Errorf("Get(slot1) error: %v", err)
	}
}

func TestCLI_Hints(t *testing.T) {
	c, out := newTestCLI(t, "hints\ny\ny\ny\n/quit\n")
	run(t, c)
	for _, want := range []string{"Are you lost?", "Look around.", "Go north."} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("output missing %q:\n%s", want, out.String())
		}
	}
}

func TestCLI_Transcript(t *testing.T) {
	path := filepath.Join(t.TempDir(), "play.jsonl.zst")
	w, err := transcript.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	c, _ := newTestCLI(t, "north\n/help\nsouth\n")
	c.Transcript = w
	run(t, c)
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}

	records, err := transcript.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() error: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("got %d records, want 2 (meta commands are not recorded)", len(records))
	}
	if records[0].Input != "north" || records[0].Room != "Garden" || records[0].Turn != 1 {
		t.Errorf("records[0] = %+v", records[0])
	}
	if !strings.Contains(records[1].Output, "You move south.") {
		t.Errorf("records[1].Output = %q", records[1].Output)
	}
}

func TestCLI_Wrap(t *testing.T) {
	var out bytes.Buffer
	c := &CLI{Out: &out, Width: 10}
	c.PrintString("the quick brown fox jumps\nover")
	want := "the quick\nbrown fox\njumps\nover"
	if got := out.String(); got != want {
		t.Errorf("wrapped = %q, want %q", got, want)
	}
}
