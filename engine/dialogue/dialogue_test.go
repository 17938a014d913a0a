package dialogue

import (
	"testing"

	"github.com/nathoo/adriftcore/engine/gametest"
	"github.com/nathoo/adriftcore/engine/state"
)

type firstRand struct{}

func (firstRand) Between(lo, hi int) int { return lo }

func TestMatches(t *testing.T) {
	tests := []struct {
		subjects, question string
		want               bool
	}{
		{"treasure", "treasure", true},
		{"gold,treasure", "Treasure", true},
		{"the cave, caves", "thecave", true},
		{"dragon", "  Dra gon ", true},
		{"dragon", "dragons", false},
		{"dragon", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.subjects+"/"+tt.question, func(t *testing.T) {
			if got := Matches(tt.subjects, tt.question); got != tt.want {
				t.Errorf("Matches(%q, %q) = %v, want %v", tt.subjects, tt.question, got, tt.want)
			}
		})
	}
}

func TestReply(t *testing.T) {
	b := gametest.New("Dialogue")
	tavern := b.Room("Tavern", "")
	rumour := b.Task("listen")
	keep := b.NPC("the", "barkeep", "", tavern)
	b.Topic(keep, "ale, beer", "Best in town.")
	b.Topic(keep, "caves", "I know nothing.")
	b.Set(rumour+1, "NPCs", keep, "Topics", 1, "Task")
	b.Set("The dragon sleeps there.", "NPCs", keep, "Topics", 1, "AltReply")
	b.Topic(keep, "*", "Hmm?")
	b.Topic(keep, "silence", "")
	g := state.New(b.MustBuild(t).Props, firstRand{})

	tests := []struct {
		name, question, want string
		done, ok             bool
	}{
		{"first subject", "ale", "Best in town.", false, true},
		{"second subject", "BEER", "Best in town.", false, true},
		{"before task", "caves", "I know nothing.", false, true},
		{"after task", "caves", "The dragon sleeps there.", true, true},
		{"catch-all", "weather", "Hmm?", false, true},
		{"empty reply falls back", "silence", "Hmm?", false, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g.S.Tasks[rumour].Done = tt.done
			got, ok := Reply(g, keep, tt.question)
			if got != tt.want || ok != tt.ok {
				t.Errorf("Reply(%q) = %q, %v, want %q, %v", tt.question, got, ok, tt.want, tt.ok)
			}
		})
	}
}

func TestReply_NoTopics(t *testing.T) {
	b := gametest.New("Mute")
	room := b.Room("Room", "")
	mute := b.NPC("a", "statue", "", room)
	g := state.New(b.MustBuild(t).Props, firstRand{})
	if got, ok := Reply(g, mute, "anything"); ok {
		t.Errorf("Reply() = %q, true, want no reply", got)
	}
}
