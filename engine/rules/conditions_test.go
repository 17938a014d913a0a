package rules

import (
	"testing"

	"github.com/nathoo/adriftcore/engine/gametest"
	"github.com/nathoo/adriftcore/engine/state"
)

type lowRand struct{}

func (lowRand) Between(lo, hi int) int { return lo }

type world struct {
	g                *state.Game
	hall, yard       int
	key, chest, ring int
	guard            int
	task             int
}

func testWorld(t *testing.T) *world {
	t.Helper()
	w := &world{}
	b := gametest.New("Rules")
	w.hall = b.Room("Hall", "")
	w.yard = b.Room("Yard", "")
	w.key = b.Object("a", "key", "", gametest.PosHeld)
	w.chest = b.Object("a", "chest", "", gametest.InRoom(w.hall))
	b.Set(true, "Objects", w.chest, "Container")
	b.Set(6, "Objects", w.chest, "Openable")
	b.Set(-1, "Objects", w.chest, "Key")
	w.ring = b.Object("a", "ring", "", gametest.PosContainer)
	w.guard = b.NPC("the", "guard", "", w.yard)
	b.Set(1, "NPCs", w.guard, "Gender")
	w.task = b.Task("open chest")
	b.IntVar("gold", 5)
	b.StringVar("word", "plugh")
	b.IntVar("limit", 7)
	w.g = state.New(b.MustBuild(t).Props, lowRand{})
	return w
}

func TestEvalRestriction(t *testing.T) {
	w := testWorld(t)
	// Dynamic objects in order: key 0, chest 1, ring 2.
	tests := []struct {
		name string
		r    Restriction
		want bool
	}{
		{"key held by player", Restriction{Type: RestrObjectLocation, Var1: 3, Var2: 1}, true},
		{"key not held by player", Restriction{Type: RestrObjectLocation, Var1: 3, Var2: 7}, false},
		{"chest in hall", Restriction{Type: RestrObjectLocation, Var1: 4, Var2: 0, Var3: w.hall + 1}, true},
		{"ring inside chest", Restriction{Type: RestrObjectLocation, Var1: 5, Var2: 4, Var3: 1}, true},
		{"ring not visible in closed chest", Restriction{Type: RestrObjectLocation, Var1: 5, Var2: 3}, false},
		{"any object held", Restriction{Type: RestrObjectLocation, Var1: 1, Var2: 1}, true},
		{"no object worn", Restriction{Type: RestrObjectLocation, Var1: 0, Var2: 2}, true},
		{"chest closed", Restriction{Type: RestrObjectState, Var1: 1, Var2: 1}, true},
		{"chest open", Restriction{Type: RestrObjectState, Var1: 1, Var2: 0}, false},
		{"task not done", Restriction{Type: RestrTaskState, Var1: w.task + 1, Var2: 1}, true},
		{"task done", Restriction{Type: RestrTaskState, Var1: w.task + 1, Var2: 0}, false},
		{"player with guard", Restriction{Type: RestrCharacter, Var1: 0, Var2: charSameRoom, Var3: w.guard + 2}, false},
		{"player not with guard", Restriction{Type: RestrCharacter, Var1: 0, Var2: charNotSameRoom, Var3: w.guard + 2}, true},
		{"player alone", Restriction{Type: RestrCharacter, Var1: 0, Var2: charAlone}, true},
		{"guard is female", Restriction{Type: RestrCharacter, Var1: w.guard + 2, Var2: charGender, Var3: 1}, true},
		{"gold equals 5", Restriction{Type: RestrVariable, Var1: 2, Var2: 2, Var3: 5}, true},
		{"gold above 5", Restriction{Type: RestrVariable, Var1: 2, Var2: 4, Var3: 5}, false},
		{"gold below limit", Restriction{Type: RestrVariable, Var1: 2, Var2: 10, Var3: 2}, true},
		{"word is plugh", Restriction{Type: RestrVariable, Var1: 3, Var2: 0, Var4: "plugh"}, true},
		{"word is not xyzzy", Restriction{Type: RestrVariable, Var1: 3, Var2: 1, Var4: "xyzzy"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := EvalRestriction(w.g, tt.r); got != tt.want {
				t.Errorf("EvalRestriction(%+v) = %v, want %v", tt.r, got, tt.want)
			}
		})
	}
}

func TestEvalRestriction_References(t *testing.T) {
	w := testWorld(t)
	w.g.Vars.SetRefObject(w.key)
	w.g.Vars.SetRefNumber(3)
	w.g.Vars.SetRefText("hello")

	if !EvalRestriction(w.g, Restriction{Type: RestrObjectLocation, Var1: 2, Var2: 1}) {
		t.Error("referenced key should be held")
	}
	if !EvalRestriction(w.g, Restriction{Type: RestrVariable, Var1: 0, Var2: 0, Var3: 4}) {
		t.Error("referenced number 3 should be below 4")
	}
	if !EvalRestriction(w.g, Restriction{Type: RestrVariable, Var1: 1, Var2: 0, Var4: "hello"}) {
		t.Error("referenced text should equal hello")
	}
}
