package save

import (
	"bytes"
	"errors"
	"reflect"
	"testing"

	"github.com/nathoo/adriftcore/engine/gametest"
	"github.com/nathoo/adriftcore/engine/state"
	"github.com/nathoo/adriftcore/engine/taf"
)

type firstRand struct{}

func (firstRand) Between(lo, hi int) int { return lo }

func buildGame(t *testing.T, name string) *state.Game {
	t.Helper()
	b := gametest.New(name)
	hall := b.Room("Hall", "A long hall.")
	yard := b.Room("Yard", "An open yard.")
	b.Link(hall, gametest.North, yard, gametest.South)

	box := b.Object("a", "box", "A wooden box.", gametest.InRoom(hall))
	b.Set(true, "Objects", box, "Container")
	b.Set(6, "Objects", box, "Openable")
	b.Set(-1, "Objects", box, "Key")
	lamp := b.Object("a", "lamp", "A brass lamp.", gametest.PosHeld)
	b.Set(1, "Objects", lamp, "CurrentState")
	b.Set("off|on", "Objects", lamp, "States")

	b.Task("open box")
	b.Task("light lamp")
	ev := b.Event("rain")
	b.Set(3, "Events", ev, "StarterType")
	b.Set(2, "Events", ev, "TaskNum")

	guard := b.NPC("the", "guard", "A bored guard.", yard)
	b.Walk(guard, true, []int{4, 2}, []int{hall + 2, yard + 2})

	b.IntVar("coins", 3)
	b.StringVar("motto", "carpe diem")
	return state.New(b.MustBuild(t).Props, firstRand{})
}

func TestRoundTrip(t *testing.T) {
	g := buildGame(t, "Round Trip")
	g.S.Score = 15
	g.S.Turns = 9
	g.S.PlayerRoom = 1
	g.S.RoomsSeen[0], g.S.RoomsSeen[1] = true, true
	g.S.Objects[0].Openness = state.Open
	g.S.Objects[0].Seen = true
	g.PlayerGet(0)
	g.S.Objects[1].State = 2
	g.S.Tasks[1] = state.Task{Done: true, Scored: true}
	g.S.Events[0] = state.Event{State: state.EventRunning, Time: 4}
	g.S.NPCs[0].Location = 1
	g.S.NPCs[0].Seen = true
	g.S.NPCs[0].WalkSteps[0] = 3
	if err := g.Vars.PutInt("coins", 11); err != nil {
		t.Fatal(err)
	}
	if err := g.Vars.PutString("motto", "per aspera"); err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	if err := Save(g, &buf); err != nil {
		t.Fatalf("Save() error: %v", err)
	}
	want := g.Snapshot()

	got, err := Restore(g, bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatalf("Restore() error: %v", err)
	}

	if got.Score != want.Score || got.Turns != want.Turns {
		t.Errorf("score/turns = %d/%d, want %d/%d", got.Score, got.Turns, want.Score, want.Turns)
	}
	if got.PlayerRoom != want.PlayerRoom || got.PlayerParent != want.PlayerParent {
		t.Errorf("player = room %d parent %d, want room %d parent %d",
			got.PlayerRoom, got.PlayerParent, want.PlayerRoom, want.PlayerParent)
	}
	if !reflect.DeepEqual(got.RoomsSeen, want.RoomsSeen) {
		t.Errorf("RoomsSeen = %v, want %v", got.RoomsSeen, want.RoomsSeen)
	}
	if !reflect.DeepEqual(got.Objects, want.Objects) {
		t.Errorf("Objects = %+v, want %+v", got.Objects, want.Objects)
	}
	if !reflect.DeepEqual(got.Tasks, want.Tasks) {
		t.Errorf("Tasks = %+v, want %+v", got.Tasks, want.Tasks)
	}
	if !reflect.DeepEqual(got.Events, want.Events) {
		t.Errorf("Events = %+v, want %+v", got.Events, want.Events)
	}
	if got.NPCs[0].Location != 1 || !got.NPCs[0].Seen || got.NPCs[0].WalkSteps[0] != 3 {
		t.Errorf("NPC = %+v, want location 1, seen, 3 steps", got.NPCs[0])
	}
	if !reflect.DeepEqual(got.Variables, want.Variables) {
		t.Errorf("Variables = %v, want %v", got.Variables, want.Variables)
	}
}

func TestRestore_Rejects(t *testing.T) {
	g := buildGame(t, "First Story")
	var buf bytes.Buffer
	if err := Save(g, &buf); err != nil {
		t.Fatalf("Save() error: %v", err)
	}

	other := buildGame(t, "Second Story")
	if _, err := Restore(other, bytes.NewReader(buf.Bytes())); !errors.Is(err, ErrGameMismatch) {
		t.Errorf("Restore() into another story error = %v, want ErrGameMismatch", err)
	}

	var short bytes.Buffer
	if err := taf.WriteSave(&short, []string{"First Story", "2", "2"}); err != nil {
		t.Fatal(err)
	}
	if _, err := Restore(g, bytes.NewReader(short.Bytes())); !errors.Is(err, ErrTruncated) {
		t.Errorf("Restore() of a short save error = %v, want ErrTruncated", err)
	}

	if _, err := Restore(g, bytes.NewReader([]byte("not compressed"))); err == nil {
		t.Error("Restore() of garbage succeeded")
	}
}

func saveLines(t *testing.T, g *state.Game) []string {
	t.Helper()
	var buf bytes.Buffer
	if err := Save(g, &buf); err != nil {
		t.Fatalf("Save() error: %v", err)
	}
	doc, err := taf.Read(&buf, taf.SaveFile)
	if err != nil {
		t.Fatalf("taf.Read() error: %v", err)
	}
	return doc.Lines()
}

func encodeLines(t *testing.T, lines []string) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := taf.WriteSave(&buf, lines); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

// clockGame has one room, one event with no starter task and one variable,
// so every line of its save sits at a known index.
func clockGame(t *testing.T) *state.Game {
	t.Helper()
	b := gametest.New("Clock")
	b.Room("Hall", "A long hall.")
	b.Event("tick")
	b.IntVar("coins", 3)
	g := state.New(b.MustBuild(t).Props, firstRand{})
	g.S.Turns = 7
	return g
}

func TestSave_EventWithoutStarterTask(t *testing.T) {
	g := clockGame(t)
	lines := saveLines(t, g)
	if len(lines) != 23 {
		t.Fatalf("save has %d lines, want 23: %q", len(lines), lines)
	}
	// time, starter task, state, task done
	if lines[17] != "0" || lines[19] != "0" {
		t.Errorf("event block = %q, want a starter task of 0 and a done flag of 0", lines[16:20])
	}

	got, err := Restore(g, bytes.NewReader(encodeLines(t, lines)))
	if err != nil {
		t.Fatalf("Restore() error: %v", err)
	}
	if got.Turns != 7 || len(got.Variables) != 1 || got.Variables[0].Int != 3 {
		t.Errorf("Restore() = turns %d vars %v, want turns 7 vars [3]", got.Turns, got.Variables)
	}
}

func TestRestore_Corrupt(t *testing.T) {
	tests := []struct {
		name string
		edit func([]string) []string
		want error
	}{
		{"trailing line", func(l []string) []string { return append(l, "5") }, ErrCorrupt},
		{"player room out of range", func(l []string) []string { l[7] = "9"; return l }, ErrCorrupt},
		{"player room zero", func(l []string) []string { l[7] = "0"; return l }, ErrCorrupt},
		{"missing done flag", func(l []string) []string { return append(l[:19:19], l[20:]...) }, ErrTruncated},
		{"starter task on a timed event", func(l []string) []string { l[17] = "1"; return l }, ErrCorrupt},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := clockGame(t)
			data := encodeLines(t, tt.edit(saveLines(t, g)))
			if _, err := Restore(g, bytes.NewReader(data)); !errors.Is(err, tt.want) {
				t.Errorf("Restore() error = %v, want %v", err, tt.want)
			}
		})
	}
}
