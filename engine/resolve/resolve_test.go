package resolve

import (
	"errors"
	"testing"

	"github.com/nathoo/adriftcore/engine/gametest"
	"github.com/nathoo/adriftcore/engine/state"
)

type firstRand struct{}

func (firstRand) Between(lo, hi int) int { return lo }

type world struct {
	g                   *state.Game
	red, blue, far      int
	alice, bob, charlie int
}

func newWorld(t *testing.T) *world {
	t.Helper()
	w := &world{}
	b := gametest.New("Resolve")
	hall := b.Room("Hall", "")
	cellar := b.Room("Cellar", "")
	w.red = b.Object("a", "red ball", "", gametest.InRoom(hall))
	w.blue = b.Object("a", "blue ball", "", gametest.InRoom(hall))
	w.far = b.Object("a", "green ball", "", gametest.InRoom(cellar))
	w.alice = b.NPC("", "Alice", "", hall)
	w.bob = b.NPC("", "Bob", "", hall)
	w.charlie = b.NPC("", "Charlie", "", hall)
	w.g = state.New(b.MustBuild(t).Props, firstRand{})
	w.g.TurnUpdate()
	w.g.S.Objects[w.far].Seen = true
	return w
}

func refs(n int, set ...int) []bool {
	r := make([]bool, n)
	for _, i := range set {
		r[i] = true
	}
	return r
}

func TestObject(t *testing.T) {
	w := newWorld(t)
	n := w.g.Objects()

	tests := []struct {
		name    string
		refs    []bool
		want    int
		wantErr string
	}{
		{"single", refs(n, w.red), w.red, ""},
		{"other room dropped", refs(n, w.blue, w.far), w.blue, ""},
		{"none here", refs(n, w.far), -1, "Please be more clear, what do you want to take?"},
		{"two", refs(n, w.red, w.blue), -1, "Please be more clear, what do you want to take?  The red ball or the blue ball?"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w.g.ObjectRefs = tt.refs
			got, err := Object(w.g, "take")
			if got != tt.want {
				t.Errorf("Object() = %d, want %d", got, tt.want)
			}
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("Object() error = %v", err)
				}
				if w.g.Vars.RefObject() != tt.want || w.g.S.Pronouns.ItObject != tt.want {
					t.Errorf("reference not recorded: ref %d, it %d", w.g.Vars.RefObject(), w.g.S.Pronouns.ItObject)
				}
				return
			}
			if err == nil || err.Error() != tt.wantErr {
				t.Errorf("Object() error = %v, want %q", err, tt.wantErr)
			}
		})
	}
}

func TestObject_Unseen(t *testing.T) {
	w := newWorld(t)
	w.g.S.Objects[w.red].Seen = false
	w.g.ObjectRefs = refs(w.g.Objects(), w.red)
	_, err := Object(w.g, "get")
	var nf *NotFoundError
	if !errors.As(err, &nf) {
		t.Errorf("Object() error = %v, want NotFoundError", err)
	}
}

func TestNPC(t *testing.T) {
	w := newWorld(t)
	w.g.NPCRefs = refs(w.g.NPCs(), w.alice, w.bob, w.charlie)
	_, err := NPC(w.g, "ask")
	var amb *AmbiguityError
	if !errors.As(err, &amb) {
		t.Fatalf("NPC() error = %v, want AmbiguityError", err)
	}
	want := "Please be more clear, who do you want to ask?  Alice, Bob, or Charlie?"
	if err.Error() != want {
		t.Errorf("NPC() error = %q, want %q", err.Error(), want)
	}

	w.g.NPCRefs = refs(w.g.NPCs(), w.bob)
	got, err := NPC(w.g, "ask")
	if err != nil || got != w.bob {
		t.Errorf("NPC() = %d, %v, want %d", got, err, w.bob)
	}
	if w.g.S.Pronouns.HimNPC != w.bob {
		t.Errorf("him = %d, want %d", w.g.S.Pronouns.HimNPC, w.bob)
	}
}
