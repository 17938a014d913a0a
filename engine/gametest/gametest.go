// Package gametest builds small stories for tests. A Builder collects
// properties in the same layout the loader produces, encodes them as a real
// story file and loads that file back, so tests exercise the whole pipeline.
package gametest

import (
	"bytes"
	"fmt"
	"testing"

	"github.com/nathoo/adriftcore/engine/props"
	"github.com/nathoo/adriftcore/engine/taf"
	"github.com/nathoo/adriftcore/loader"
)

// Exit directions.
const (
	North = iota
	East
	South
	West
	Up
	Down
	In
	Out
	NorthEast
	SouthEast
	SouthWest
	NorthWest
)

// Object initial positions for dynamic objects, before the room offset.
const (
	PosHidden    = 0
	PosHeld      = 1
	PosContainer = 2
	PosSurface   = 3
	PosRoomBase  = 4
)

// Builder accumulates a story.
type Builder struct {
	store   *props.Store
	version taf.Version
	err     error

	rooms, objects, tasks, events, npcs, groups, variables, synonyms, alrs int
}

// New returns a builder for a version 4.00 story with the given name.
func New(name string) *Builder {
	b := &Builder{store: props.New(), version: taf.V400}
	b.Set(name, "Globals", "GameName")
	b.Set("Tester", "Globals", "GameAuthor")
	b.Set("", "Header", "StartupText")
	b.Set(0, "Header", "StartRoom")
	b.Set(true, "Globals", "ShowExits")
	b.Set(1, "Globals", "Perspective")
	b.Set(99, "Globals", "MaxSize")
	b.Set(99, "Globals", "MaxWt")
	b.Set("Sorry, I didn't understand that.", "Globals", "DontUnderstand")
	return b
}

// Version selects the story file version to encode.
func (b *Builder) Version(v taf.Version) *Builder {
	b.version = v
	return b
}

// Set stores an int, bool or string property. The first error is kept and
// reported by Build.
func (b *Builder) Set(value any, path ...any) *Builder {
	if b.err != nil {
		return b
	}
	var typ byte
	switch value.(type) {
	case int:
		typ = 'I'
	case bool:
		typ = 'B'
	case string:
		typ = 'S'
	default:
		b.err = fmt.Errorf("gametest: unsupported value %T", value)
		return b
	}
	f := []byte{typ, '-', '>'}
	for _, k := range path {
		if _, ok := k.(int); ok {
			f = append(f, 'i')
		} else {
			f = append(f, 's')
		}
	}
	if err := b.store.Put(string(f), value, path...); err != nil {
		b.err = err
	}
	return b
}

// Room adds a room and returns its index.
func (b *Builder) Room(short, long string) int {
	r := b.rooms
	b.rooms++
	b.Set(short, "Rooms", r, "Short")
	b.Set(long, "Rooms", r, "Long")
	return r
}

// Exit adds a one-way exit.
func (b *Builder) Exit(from, dir, to int) *Builder {
	b.Set(to+1, "Rooms", from, "Exits", dir, "Dest")
	return b
}

// Link adds exits both ways.
func (b *Builder) Link(from, dir, to, back int) *Builder {
	b.Exit(from, dir, to)
	return b.Exit(to, back, from)
}

// Start sets the player's starting room.
func (b *Builder) Start(room int) *Builder {
	return b.Set(room, "Header", "StartRoom")
}

// Object adds a dynamic object at the given initial position and returns
// its index. Rooms are placed with InRoom.
func (b *Builder) Object(prefix, short, desc string, position int) int {
	o := b.objects
	b.objects++
	b.Set(prefix, "Objects", o, "Prefix")
	b.Set(short, "Objects", o, "Short")
	b.Set(desc, "Objects", o, "Description")
	b.Set(false, "Objects", o, "Static")
	b.Set(position, "Objects", o, "InitialPosition")
	return o
}

// InRoom is the dynamic initial position of a room.
func InRoom(room int) int { return PosRoomBase + room }

// Static adds a static object present in a single room.
func (b *Builder) Static(prefix, short, desc string, room int) int {
	o := b.objects
	b.objects++
	b.Set(prefix, "Objects", o, "Prefix")
	b.Set(short, "Objects", o, "Short")
	b.Set(desc, "Objects", o, "Description")
	b.Set(true, "Objects", o, "Static")
	b.Set(1, "Objects", o, "Where", "Type")
	b.Set(room, "Objects", o, "Where", "Room")
	return o
}

// Alias adds alternative names to an object.
func (b *Builder) Alias(obj int, aliases ...string) *Builder {
	base := b.store.Count("Objects", obj, "Alias")
	for i, a := range aliases {
		b.Set(a, "Objects", obj, "Alias", base+i)
	}
	return b
}

// Task adds a task visible in every room and returns its index.
func (b *Builder) Task(commands ...string) int {
	t := b.tasks
	b.tasks++
	for i, c := range commands {
		b.Set(c, "Tasks", t, "Command", i)
	}
	b.Set(3, "Tasks", t, "Where", "Type")
	b.Set("", "Tasks", t, "CompleteText")
	return t
}

// TaskIn restricts a task to a single room.
func (b *Builder) TaskIn(task, room int) *Builder {
	b.Set(1, "Tasks", task, "Where", "Type")
	return b.Set(room, "Tasks", task, "Where", "Room")
}

// Restriction appends a restriction to a task and extends its mask with
// an AND.
func (b *Builder) Restriction(task, typ, var1, var2, var3 int, var4, fail string) *Builder {
	r := b.store.Count("Tasks", task, "Restrictions")
	b.Set(typ, "Tasks", task, "Restrictions", r, "Type")
	b.Set(var1, "Tasks", task, "Restrictions", r, "Var1")
	b.Set(var2, "Tasks", task, "Restrictions", r, "Var2")
	b.Set(var3, "Tasks", task, "Restrictions", r, "Var3")
	b.Set(var4, "Tasks", task, "Restrictions", r, "Var4")
	b.Set(fail, "Tasks", task, "Restrictions", r, "FailMessage")
	mask := b.store.String("Tasks", task, "RestrMask")
	if mask == "" {
		mask = "#"
	} else {
		mask += "A#"
	}
	return b.Set(mask, "Tasks", task, "RestrMask")
}

// Action appends an action to a task.
func (b *Builder) Action(task, typ, var1, var2, var3, var4, var5 int, expr string) *Builder {
	a := b.store.Count("Tasks", task, "Actions")
	b.Set(typ, "Tasks", task, "Actions", a, "Type")
	b.Set(var1, "Tasks", task, "Actions", a, "Var1")
	b.Set(var2, "Tasks", task, "Actions", a, "Var2")
	b.Set(var3, "Tasks", task, "Actions", a, "Var3")
	b.Set(var4, "Tasks", task, "Actions", a, "Var4")
	b.Set(var5, "Tasks", task, "Actions", a, "Var5")
	return b.Set(expr, "Tasks", task, "Actions", a, "Expr")
}

// Event adds an event and returns its index. The caller sets the starter
// and timing fields.
func (b *Builder) Event(short string) int {
	e := b.events
	b.events++
	b.Set(short, "Events", e, "Short")
	b.Set(1, "Events", e, "StarterType")
	b.Set(3, "Events", e, "Where", "Type")
	return e
}

// NPC adds a character starting in room (-1 for hidden) and returns its
// index.
func (b *Builder) NPC(prefix, name, descr string, room int) int {
	n := b.npcs
	b.npcs++
	b.Set(prefix, "NPCs", n, "Prefix")
	b.Set(name, "NPCs", n, "Name")
	b.Set(descr, "NPCs", n, "Descr")
	b.Set(room+1, "NPCs", n, "StartRoom")
	return n
}

// Topic adds a conversation topic to an NPC.
func (b *Builder) Topic(npc int, subject, reply string) *Builder {
	t := b.store.Count("NPCs", npc, "Topics")
	b.Set(subject, "NPCs", npc, "Topics", t, "Subject")
	return b.Set(reply, "NPCs", npc, "Topics", t, "Reply")
}

// Walk adds a walk. times holds falling countdown values: the walk starts
// at times[0]+1 and moves to rooms[i] once the countdown drops to
// times[i]. Room values use the stored encoding (0 hidden, 1 follow
// player, room+2, then room groups).
func (b *Builder) Walk(npc int, loop bool, times, rooms []int) int {
	w := b.store.Count("NPCs", npc, "Walks")
	b.Set(loop, "NPCs", npc, "Walks", w, "Loop")
	for i := range times {
		b.Set(times[i], "NPCs", npc, "Walks", w, "MoveTimes", i)
		b.Set(rooms[i], "NPCs", npc, "Walks", w, "Rooms", i)
	}
	return w
}

// Group adds a room group and returns its index.
func (b *Builder) Group(name string, rooms ...int) int {
	g := b.groups
	b.groups++
	b.Set(name, "RoomGroups", g, "Name")
	for _, r := range rooms {
		b.Set(true, "RoomGroups", g, "List", r)
	}
	return g
}

// IntVar declares an integer variable.
func (b *Builder) IntVar(name string, value int) int {
	return b.variable(name, 0, fmt.Sprint(value))
}

// StringVar declares a string variable.
func (b *Builder) StringVar(name, value string) int {
	return b.variable(name, 1, value)
}

func (b *Builder) variable(name string, typ int, value string) int {
	v := b.variables
	b.variables++
	b.Set(name, "Variables", v, "Name")
	b.Set(typ, "Variables", v, "Type")
	b.Set(value, "Variables", v, "Value")
	return v
}

// Synonym adds an input synonym.
func (b *Builder) Synonym(original, replacement string) *Builder {
	s := b.synonyms
	b.synonyms++
	b.Set(original, "Synonyms", s, "Original")
	return b.Set(replacement, "Synonyms", s, "Replacement")
}

// ALR adds an alternative text rule.
func (b *Builder) ALR(original, replacement string) *Builder {
	a := b.alrs
	b.alrs++
	b.Set(original, "ALRs", a, "Original")
	return b.Set(replacement, "ALRs", a, "Replacement")
}

// Encode writes the story file.
func (b *Builder) Encode() ([]byte, error) {
	if b.err != nil {
		return nil, b.err
	}
	var buf bytes.Buffer
	if err := loader.Encode(b.store, &buf, b.version); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Build encodes the story and loads it back.
func (b *Builder) Build() (*loader.Story, error) {
	data, err := b.Encode()
	if err != nil {
		return nil, err
	}
	return loader.Load(bytes.NewReader(data))
}

// MustBuild is Build for tests.
func (b *Builder) MustBuild(t testing.TB) *loader.Story {
	t.Helper()
	story, err := b.Build()
	if err != nil {
		t.Fatalf("building story: %v", err)
	}
	return story
}
