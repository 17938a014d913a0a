package effects

import (
	"strings"
	"testing"

	"github.com/nathoo/adriftcore/engine/gametest"
	"github.com/nathoo/adriftcore/engine/state"
)

type firstRand struct{}

func (firstRand) Between(lo, hi int) int { return lo }

type runner struct {
	ran []int
}

func (r *runner) RunTask(task int) bool {
	r.ran = append(r.ran, task)
	return true
}

type fixture struct {
	g                *state.Game
	hall, garden     int
	lamp, box, chest int
	guard            int
	open             int
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{}
	b := gametest.New("Effects")
	f.hall = b.Room("Hall", "A grand hall with marble columns.")
	f.garden = b.Room("Garden", "")
	f.lamp = b.Object("a", "lamp", "", gametest.InRoom(f.hall))
	f.box = b.Object("a", "box", "", gametest.InRoom(f.hall))
	b.Set(true, "Objects", f.box, "Container")
	b.Set(99, "Objects", f.box, "Capacity")
	f.chest = b.Object("a", "chest", "", gametest.InRoom(f.hall))
	b.Set(state.Closed, "Objects", f.chest, "Openable")
	b.Set(-1, "Objects", f.chest, "Key")
	f.guard = b.NPC("an", "old guard", "", f.hall)
	f.open = b.Task("open chest")
	b.Task("unused")
	b.IntVar("counter", 1)
	b.StringVar("motto", "none")
	b.Set("You have won!", "Header", "WinText")
	f.g = state.New(b.MustBuild(t).Props, firstRand{})
	return f
}

func TestApply_MoveObject(t *testing.T) {
	tests := []struct {
		name   string
		action Action
		check  func(f *fixture) bool
	}{
		{
			name:   "to room",
			action: Action{Type: ActMoveObject, Var1: 3, Var2: 0, Var3: 2},
			check:  func(f *fixture) bool { return f.g.DirectlyInRoom(f.lamp, f.garden) },
		},
		{
			name:   "hidden",
			action: Action{Type: ActMoveObject, Var1: 3, Var2: 0, Var3: 0},
			check:  func(f *fixture) bool { return f.g.S.Objects[f.lamp].Position == state.PosHidden },
		},
		{
			name:   "into container",
			action: Action{Type: ActMoveObject, Var1: 3, Var2: 2, Var3: 0},
			check: func(f *fixture) bool {
				obj := f.g.S.Objects[f.lamp]
				return obj.Position == state.PosInObject && obj.Parent == f.box
			},
		},
		{
			name:   "held by player",
			action: Action{Type: ActMoveObject, Var1: 3, Var2: 4, Var3: 0},
			check:  func(f *fixture) bool { return f.g.S.Objects[f.lamp].Position == state.PosHeldPlayer },
		},
		{
			name:   "worn by npc",
			action: Action{Type: ActMoveObject, Var1: 3, Var2: 5, Var3: 2},
			check: func(f *fixture) bool {
				obj := f.g.S.Objects[f.lamp]
				return obj.Position == state.PosWornNPC && obj.Parent == f.guard
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			Apply(f.g, f.open, []Action{tt.action}, &runner{})
			if !tt.check(f) {
				t.Errorf("Apply(%+v): lamp at position %d parent %d", tt.action,
					f.g.S.Objects[f.lamp].Position, f.g.S.Objects[f.lamp].Parent)
			}
		})
	}
}

func TestApply_MoveHeldObjects(t *testing.T) {
	f := newFixture(t)
	f.g.PlayerGet(f.lamp)
	f.g.PlayerGet(f.box)
	Apply(f.g, f.open, []Action{{Type: ActMoveObject, Var1: 0, Var2: 0, Var3: f.garden + 1}}, &runner{})
	for _, o := range []int{f.lamp, f.box} {
		if !f.g.DirectlyInRoom(o, f.garden) {
			t.Errorf("object %d not moved to the garden", o)
		}
	}
}

func TestApply_MovePlayer(t *testing.T) {
	f := newFixture(t)
	f.g.S.PlayerPosition = state.Sitting
	Apply(f.g, f.open, []Action{{Type: ActMoveCharacter, Var1: 0, Var2: moveToRoom, Var3: f.garden}}, &runner{})
	if f.g.S.PlayerRoom != f.garden {
		t.Errorf("PlayerRoom = %d, want %d", f.g.S.PlayerRoom, f.garden)
	}
	if f.g.S.PlayerPosition != state.Standing {
		t.Errorf("PlayerPosition = %d, want standing", f.g.S.PlayerPosition)
	}
}

func TestApply_MoveNPC(t *testing.T) {
	f := newFixture(t)
	Apply(f.g, f.open, []Action{{Type: ActMoveCharacter, Var1: f.guard + 2, Var2: moveToRoom, Var3: f.garden}}, &runner{})
	if !f.g.NPCInRoom(f.guard, f.garden) {
		t.Errorf("guard location = %d, want garden", f.g.S.NPCs[f.guard].Location)
	}
}

func TestApply_ObjectStatus(t *testing.T) {
	f := newFixture(t)
	status := f.g.StatefulIndex(f.chest)
	if status < 0 {
		t.Fatal("chest is not stateful")
	}
	Apply(f.g, f.open, []Action{{Type: ActObjectStatus, Var1: status, Var2: 0}}, &runner{})
	if got := f.g.S.Objects[f.chest].Openness; got != state.Open {
		t.Errorf("Openness = %d, want %d", got, state.Open)
	}
}

func TestApply_Score(t *testing.T) {
	f := newFixture(t)
	award := []Action{{Type: ActScore, Var1: 5}}
	Apply(f.g, f.open, award, &runner{})
	Apply(f.g, f.open, award, &runner{})
	if f.g.S.Score != 5 {
		t.Errorf("Score = %d after scoring twice, want 5", f.g.S.Score)
	}
	Apply(f.g, f.open, []Action{{Type: ActScore, Var1: -2}}, &runner{})
	if f.g.S.Score != 3 {
		t.Errorf("Score = %d after penalty, want 3", f.g.S.Score)
	}
}

func TestApply_Variable(t *testing.T) {
	tests := []struct {
		name   string
		action Action
		v      string
		want   string
	}{
		{"assign", Action{Type: ActVariable, Var1: 0, Var2: intAssign, Var3: 7}, "counter", "7"},
		{"add", Action{Type: ActVariable, Var1: 0, Var2: intAdd, Var3: 4}, "counter", "5"},
		{"random", Action{Type: ActVariable, Var1: 0, Var2: intRandom, Var3: 3, Var5: 9}, "counter", "3"},
		{"expression", Action{Type: ActVariable, Var1: 0, Var2: intExpression, Expr: "counter * 6"}, "counter", "6"},
		{"string", Action{Type: ActVariable, Var1: 1, Var2: strAssign, Expr: "onward"}, "motto", "onward"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			Apply(f.g, f.open, []Action{tt.action}, &runner{})
			v, ok := f.g.Vars.Get(tt.v)
			if !ok {
				t.Fatalf("variable %s missing", tt.v)
			}
			if got := v.String(); got != tt.want {
				t.Errorf("%s = %q, want %q", tt.v, got, tt.want)
			}
		})
	}
}

func TestApply_SetTask(t *testing.T) {
	f := newFixture(t)
	run := &runner{}
	if !Apply(f.g, f.open, []Action{{Type: ActSetTask, Var1: 0, Var2: 1}}, run) {
		t.Error("Apply() = false, want the redirected task to handle the command")
	}
	if len(run.ran) != 1 || run.ran[0] != 1 {
		t.Errorf("ran = %v, want [1]", run.ran)
	}

	f.g.S.Tasks[1].Done = true
	Apply(f.g, f.open, []Action{{Type: ActSetTask, Var1: 1, Var2: 1}}, run)
	if f.g.S.Tasks[1].Done {
		t.Error("task 1 still done after unset")
	}
}

func TestApply_EndGame(t *testing.T) {
	tests := []struct {
		name    string
		variant int
		want    string
	}{
		{"win", EndWin, "You have won!"},
		{"lose", EndLose, "Better luck next time."},
		{"death", EndDeath, "I'm afraid you are dead!"},
		{"silent", EndSilent, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			f.g.S.Running = true
			actions := []Action{{Type: ActEndGame, Var1: tt.variant}, {Type: ActScore, Var1: 10}}
			Apply(f.g, f.open, actions, &runner{})
			if f.g.S.Running || !f.g.S.Completed {
				t.Errorf("Running = %v, Completed = %v, want false, true", f.g.S.Running, f.g.S.Completed)
			}
			if f.g.S.Score != 0 {
				t.Errorf("Score = %d, want actions after the end skipped", f.g.S.Score)
			}
			out := f.g.Filter.Buffered()
			if tt.want == "" && out != "" {
				t.Errorf("output = %q, want none", out)
			}
			if !strings.Contains(out, tt.want) {
				t.Errorf("output = %q, want %q", out, tt.want)
			}
		})
	}
}
