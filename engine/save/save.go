// Package save writes and reads saved games: the mutable game state as
// lines of text in a fixed order, compressed the way story files are.
package save

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/nathoo/adriftcore/engine/parser"
	"github.com/nathoo/adriftcore/engine/state"
	"github.com/nathoo/adriftcore/engine/taf"
	"github.com/nathoo/adriftcore/engine/vars"
)

// ErrGameMismatch is returned when a saved game belongs to another story.
var ErrGameMismatch = errors.New("save: saved game is for a different story")

// ErrTruncated is returned when a saved game ends early.
var ErrTruncated = errors.New("save: saved game is truncated")

// ErrCorrupt is returned when a saved game holds values no game could
// reach.
var ErrCorrupt = errors.New("save: saved game is corrupt")

// Encumbrance placeholders kept for compatibility with other runners.
var encumbrance = []int{90, 0, 90, 0}

const startedOnTask = 3

type writer struct {
	lines []string
}

func (w *writer) int(n int)        { w.lines = append(w.lines, strconv.Itoa(n)) }
func (w *writer) string(s string)  { w.lines = append(w.lines, s) }
func (w *writer) step(n int)       { w.lines = append(w.lines, fmt.Sprintf(" %d", n)) }
func (w *writer) bool(b bool) {
	if b {
		w.int(1)
		return
	}
	w.int(0)
}

// Save writes the game's current state to w.
func Save(g *state.Game, w io.Writer) error {
	s := g.Snapshot()
	p := g.Props
	out := &writer{}

	// 1. Story name and counts.
	out.string(p.String("Globals", "GameName"))
	for _, n := range []int{g.Rooms(), g.Objects(), g.Tasks(), g.Events(), g.NPCs()} {
		out.int(n)
	}

	// 2. Player.
	out.int(s.Score)
	out.int(s.PlayerRoom + 1)
	out.int(s.PlayerParent)
	out.int(s.PlayerPosition)
	out.int(p.Int("Globals", "PlayerGender"))
	for _, n := range encumbrance {
		out.int(n)
	}

	// 3. World.
	for _, seen := range s.RoomsSeen {
		out.bool(seen)
	}
	for o, obj := range s.Objects {
		out.int(obj.Position)
		out.bool(obj.Seen)
		out.int(obj.Parent)
		if p.Int("Objects", o, "Openable") != 0 {
			out.int(obj.Openness)
		}
		if p.Int("Objects", o, "CurrentState") != 0 {
			out.int(obj.State)
		}
		out.bool(obj.Unmoved)
	}
	for _, t := range s.Tasks {
		out.bool(t.Done)
		out.bool(t.Scored)
	}
	for e, ev := range s.Events {
		task := 0
		if p.Int("Events", e, "StarterType") == startedOnTask {
			task = p.Int("Events", e, "TaskNum")
		}
		out.int(ev.Time)
		out.int(task)
		out.int(ev.State - 1)
		out.bool(task > 0 && task <= len(s.Tasks) && s.Tasks[task-1].Done)
	}
	for _, n := range s.NPCs {
		out.int(n.Location)
		out.bool(n.Seen)
		for _, steps := range n.WalkSteps {
			out.step(steps)
		}
	}

	// 4. Variables, play time and turns.
	for _, v := range s.Variables {
		if v.Type == vars.Integer {
			out.int(v.Int)
		} else {
			out.string(v.Str)
		}
	}
	out.int(s.Elapsed)
	out.int(s.Turns)

	return taf.WriteSave(w, out.lines)
}

type reader struct {
	doc *taf.Document
	err error
}

func (r *reader) string() string {
	if r.err != nil {
		return ""
	}
	l, ok := r.doc.Next()
	if !ok {
		r.err = ErrTruncated
	}
	return l
}

func (r *reader) int() int {
	l := r.string()
	if r.err != nil {
		return 0
	}
	n, err := strconv.Atoi(strings.TrimSpace(l))
	if err != nil {
		r.err = fmt.Errorf("save: bad number %q: %w", l, err)
	}
	return n
}

func (r *reader) bool() bool { return r.int() != 0 }

// Restore reads a saved game for g's story into a new state. The game is
// not changed; the caller installs the state on success.
func Restore(g *state.Game, rd io.Reader) (*state.State, error) {
	doc, err := taf.Read(rd, taf.SaveFile)
	if err != nil {
		return nil, fmt.Errorf("save: %w", err)
	}
	doc.First()
	r := &reader{doc: doc}
	p := g.Props

	if name := r.string(); r.err == nil && name != p.String("Globals", "GameName") {
		return nil, fmt.Errorf("%w: %q", ErrGameMismatch, name)
	}
	for _, want := range []int{g.Rooms(), g.Objects(), g.Tasks(), g.Events(), g.NPCs()} {
		if got := r.int(); r.err == nil && got != want {
			return nil, fmt.Errorf("%w: count %d, want %d", ErrGameMismatch, got, want)
		}
	}
	if r.err != nil {
		return nil, r.err
	}

	s := &state.State{
		RoomsSeen:   make([]bool, g.Rooms()),
		Objects:     make([]state.Object, g.Objects()),
		Tasks:       make([]state.Task, g.Tasks()),
		Events:      make([]state.Event, g.Events()),
		NPCs:        make([]state.NPC, g.NPCs()),
		Pronouns:    parser.Unbound(),
		Running:     true,
		Verbose:     g.S.Verbose,
		NotifyScore: g.S.NotifyScore,
	}

	s.Score = r.int()
	s.PlayerRoom = r.int() - 1
	s.PlayerParent = r.int()
	s.PlayerPosition = r.int()
	r.int()
	for range encumbrance {
		r.int()
	}

	for i := range s.RoomsSeen {
		s.RoomsSeen[i] = r.bool()
	}
	for o := range s.Objects {
		obj := &s.Objects[o]
		obj.Position = r.int()
		obj.Seen = r.bool()
		obj.Parent = r.int()
		if p.Int("Objects", o, "Openable") != 0 {
			obj.Openness = r.int()
		}
		if p.Int("Objects", o, "CurrentState") != 0 {
			obj.State = r.int()
		}
		obj.Unmoved = r.bool()
	}
	for t := range s.Tasks {
		s.Tasks[t].Done = r.bool()
		s.Tasks[t].Scored = r.bool()
	}
	for e := range s.Events {
		s.Events[e].Time = r.int()
		task := r.int()
		s.Events[e].State = r.int() + 1
		done := r.bool()
		if task <= 0 || r.err != nil {
			continue
		}
		if p.Int("Events", e, "StarterType") != startedOnTask || task > len(s.Tasks) {
			return nil, fmt.Errorf("%w: event %d starter task %d", ErrCorrupt, e, task)
		}
		s.Tasks[task-1].Done = done
	}
	for n := range s.NPCs {
		npc := &s.NPCs[n]
		npc.Location = r.int()
		npc.Seen = r.bool()
		npc.Parent = -1
		npc.WalkSteps = make([]int, p.Count("NPCs", n, "Walks"))
		for w := range npc.WalkSteps {
			npc.WalkSteps[w] = r.int()
		}
	}

	for _, name := range g.VarNames() {
		cur, _ := g.Vars.Get(name)
		if cur.Type == vars.Integer {
			s.Variables = append(s.Variables, vars.IntValue(r.int()))
		} else {
			s.Variables = append(s.Variables, vars.StringValue(r.string()))
		}
	}
	s.Elapsed = r.int()
	s.Turns = r.int()

	if r.err != nil {
		return nil, r.err
	}
	if doc.More() {
		return nil, fmt.Errorf("%w: unexpected lines after the turn count", ErrCorrupt)
	}
	if s.PlayerRoom < 0 || s.PlayerRoom >= g.Rooms() {
		return nil, fmt.Errorf("%w: player room %d", ErrCorrupt, s.PlayerRoom+1)
	}
	return s, nil
}
