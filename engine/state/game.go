package state

import (
	"fmt"
	"log"
	"strconv"
	"strings"

	"github.com/nathoo/adriftcore/engine/filter"
	"github.com/nathoo/adriftcore/engine/parser"
	"github.com/nathoo/adriftcore/engine/props"
	"github.com/nathoo/adriftcore/engine/vars"
	"github.com/nathoo/adriftcore/types"
)

// Rand supplies random numbers. Between returns a value in [lo, hi].
type Rand interface {
	Between(lo, hi int) int
}

// Room list types for static objects, tasks and events.
const (
	WhereNone    = 0
	WhereOne     = 1
	WhereSome    = 2
	WhereAll     = 3
	WhereNPCPart = 4
)

// Sit and lie masks for SitLie.
const (
	standableMask = 0x01
	lieableMask   = 0x02
)

// Game binds the mutable state to the story it runs.
type Game struct {
	Props  *props.Store
	Vars   *vars.Set
	Filter *filter.Filter
	RNG    Rand
	S      *State

	Version int

	// NPCRefs and ObjectRefs flag the entities named by the command being
	// handled. The pronoun flags report that a pronoun supplied them.
	NPCRefs         []bool
	ObjectRefs      []bool
	IsNPCPronoun    bool
	IsObjectPronoun bool

	Resources Resources

	rooms, objects, tasks, events, npcs int

	containers, surfaces, stateful, dynamic, standable, lieable []int

	varNames   []string
	world      *parser.World
	trace      *log.Logger
	traceFlags types.TraceFlags
}

// New builds a game over a loaded property store and puts it in its
// initial state.
func New(p *props.Store, rng Rand) *Game {
	g := &Game{
		Props:   p,
		Vars:    vars.New(),
		RNG:     rng,
		Version: p.Int("Version"),
		rooms:   p.Count("Rooms"),
		objects: p.Count("Objects"),
		tasks:   p.Count("Tasks"),
		events:  p.Count("Events"),
		npcs:    p.Count("NPCs"),
	}
	for o := 0; o < g.objects; o++ {
		if p.Bool("Objects", o, "Container") {
			g.containers = append(g.containers, o)
		}
		if p.Bool("Objects", o, "Surface") {
			g.surfaces = append(g.surfaces, o)
		}
		if p.Int("Objects", o, "Openable") != 0 || p.Int("Objects", o, "CurrentState") != 0 {
			g.stateful = append(g.stateful, o)
		}
		if !p.Bool("Objects", o, "Static") {
			g.dynamic = append(g.dynamic, o)
		}
		sitlie := p.Int("Objects", o, "SitLie")
		if sitlie&standableMask != 0 {
			g.standable = append(g.standable, o)
		}
		if sitlie&lieableMask != 0 {
			g.lieable = append(g.lieable, o)
		}
	}

	for v := 0; v < p.Count("Variables"); v++ {
		g.varNames = append(g.varNames, p.String("Variables", v, "Name"))
	}
	g.Vars.Register(g)

	var alrs []filter.ALR
	for i := 0; i < p.Count("ALRs2"); i++ {
		alr := p.Int("ALRs2", i, "ALRIndex")
		alrs = append(alrs, filter.ALR{
			Original:    p.String("ALRs", alr, "Original"),
			Replacement: p.String("ALRs", alr, "Replacement"),
		})
	}
	g.Filter = filter.New(g.Vars, alrs)

	g.world = &parser.World{Pronouns: parser.Unbound()}
	for n := 0; n < g.npcs; n++ {
		g.world.NPCs = append(g.world.NPCs, entity(p, "NPCs", n, "Name"))
	}
	for o := 0; o < g.objects; o++ {
		g.world.Objects = append(g.world.Objects, entity(p, "Objects", o, "Short"))
	}

	g.Reset()
	return g
}

// Reset returns the game to its initial state, variables included.
func (g *Game) Reset() {
	p := g.Props
	for v, name := range g.varNames {
		var err error
		value := p.String("Variables", v, "Value")
		if p.Int("Variables", v, "Type") == 1 {
			err = g.Vars.PutString(name, value)
		} else {
			n, _ := strconv.Atoi(strings.TrimSpace(value))
			err = g.Vars.PutInt(name, n)
		}
		if err != nil {
			g.tracef("variable %s: %v", name, err)
		}
	}
	g.Vars.SetElapsedSeconds(0)
	g.Vars.SetRefCharacter(-1)
	g.Vars.SetRefObject(-1)
	g.S = g.Initial()
}

func entity(p *props.Store, section string, i int, nameKey string) parser.Entity {
	e := parser.Entity{
		Prefix: p.String(section, i, "Prefix"),
		Name:   p.String(section, i, nameKey),
	}
	for a := 0; a < p.Count(section, i, "Alias"); a++ {
		e.Aliases = append(e.Aliases, p.String(section, i, "Alias", a))
	}
	return e
}

// SetTrace sends trace lines for the selected modules to l. A nil logger
// disables tracing.
func (g *Game) SetTrace(l *log.Logger, flags types.TraceFlags) {
	g.trace, g.traceFlags = l, flags
}

// Tracing reports whether a module's trace lines are wanted.
func (g *Game) Tracing(flag types.TraceFlags) bool {
	return g.trace != nil && g.traceFlags&flag != 0
}

// Tracef writes a trace line for a module.
func (g *Game) Tracef(flag types.TraceFlags, format string, args ...any) {
	if g.Tracing(flag) {
		g.trace.Printf(traceNames[flag]+": "+format, args...)
	}
}

var traceNames = map[types.TraceFlags]string{
	types.TraceTasks:   "task",
	types.TraceEvents:  "event",
	types.TraceNPCs:    "npc",
	types.TraceLibrary: "library",
	types.TraceState:   "state",
	types.TraceExpr:    "expr",
	types.TraceMatch:   "match",
}

func (g *Game) tracef(format string, args ...any) { g.Tracef(types.TraceState, format, args...) }

// Rooms returns the number of rooms. The other counts follow.
func (g *Game) Rooms() int   { return g.rooms }
func (g *Game) Objects() int { return g.objects }
func (g *Game) Tasks() int   { return g.tasks }
func (g *Game) Events() int  { return g.events }
func (g *Game) NPCs() int    { return g.npcs }

// Initial returns the state a new game starts in.
func (g *Game) Initial() *State {
	p := g.Props
	s := &State{
		RoomsSeen: make([]bool, g.rooms),
		Objects:   make([]Object, g.objects),
		Tasks:     make([]Task, g.tasks),
		Events:    make([]Event, g.events),
		NPCs:      make([]NPC, g.npcs),
		Pronouns:  parser.Unbound(),

		PlayerRoom:     p.Int("Header", "StartRoom"),
		PlayerParent:   p.Int("Globals", "ParentObject") - 1,
		PlayerPosition: p.Int("Globals", "Position"),
		NotifyScore:    !p.Bool("Globals", "NoScoreNotify"),
	}

	for o := range s.Objects {
		obj := &s.Objects[o]
		obj.Position, obj.Parent = PosHidden, -1
		parent := p.Int("Objects", o, "Parent")
		if p.Bool("Objects", o, "Static") {
			if p.Int("Objects", o, "Where", "Type") == WhereNPCPart {
				obj.Position, obj.Parent = PosPartNPC, parent-1
			}
		} else {
			g.placeInitially(obj, p.Int("Objects", o, "InitialPosition"), parent)
		}
		obj.State = p.Int("Objects", o, "CurrentState")
		obj.Openness = p.Int("Objects", o, "Openable")
		obj.Unmoved = p.String("Objects", o, "InRoomDesc") != "" &&
			p.Int("Objects", o, "OnlyWhenNotMoved") == 1
	}

	for e := range s.Events {
		switch p.Int("Events", e, "StarterType") {
		case 1:
			s.Events[e] = Event{State: EventWaiting}
		case 2:
			s.Events[e] = Event{State: EventWaiting, Time: g.RNG.Between(
				p.Int("Events", e, "StartTime"), p.Int("Events", e, "EndTime"))}
		case 3:
			s.Events[e] = Event{State: EventAwaiting}
		}
	}

	for n := range s.NPCs {
		s.NPCs[n] = NPC{
			Location:  p.Int("NPCs", n, "StartRoom"),
			Parent:    -1,
			WalkSteps: make([]int, p.Count("NPCs", n, "Walks")),
		}
	}

	for _, name := range g.varNames {
		v, _ := g.Vars.Get(name)
		s.Variables = append(s.Variables, v)
	}
	return s
}

func (g *Game) placeInitially(obj *Object, position, parent int) {
	switch {
	case position == 0:
	case position == 1:
		if parent == 0 {
			obj.Position = PosHeldPlayer
		} else {
			obj.Position, obj.Parent = PosHeldNPC, parent-1
		}
	case position == 2:
		obj.Position, obj.Parent = PosInObject, g.ContainerObject(parent)
	case position == 3:
		obj.Position, obj.Parent = PosOnObject, g.SurfaceObject(parent)
	case position >= 4 && position < 4+g.rooms:
		obj.Position = position - 4 + 1
	case position == 4+g.rooms:
		if parent == 0 {
			obj.Position, obj.Parent = PosWornPlayer, 0
		} else {
			obj.Position, obj.Parent = PosWornNPC, parent-1
		}
	default:
		g.tracef("object initial position %d out of range", position)
	}
}

// Snapshot returns a copy of the state with the current variable values
// and play time captured.
func (g *Game) Snapshot() *State {
	g.S.Variables = g.S.Variables[:0]
	for _, name := range g.varNames {
		v, _ := g.Vars.Get(name)
		g.S.Variables = append(g.S.Variables, v)
	}
	g.S.Elapsed = g.Vars.ElapsedSeconds()
	return g.S.Clone()
}

// Install makes s the current state, restoring variables and play time
// from it.
func (g *Game) Install(s *State) {
	g.S = s
	for i, name := range g.varNames {
		if i < len(s.Variables) {
			if err := g.Vars.Put(name, s.Variables[i]); err != nil {
				g.tracef("restoring %s: %v", name, err)
			}
		}
	}
	g.Vars.SetElapsedSeconds(s.Elapsed)
}

// VarNames returns the user variable names in declaration order.
func (g *Game) VarNames() []string { return g.varNames }

// MatchWorld returns the names the command matcher needs, with the
// current pronouns.
func (g *Game) MatchWorld() *parser.World {
	g.world.Pronouns = g.S.Pronouns
	return g.world
}

// Bind records a successful match in the reference slots and the per-entity
// reference flags.
func (g *Game) Bind(r parser.Result) {
	if r.Character >= 0 {
		g.Vars.SetRefCharacter(r.Character)
	}
	if r.Object >= 0 {
		g.Vars.SetRefObject(r.Object)
	}
	if r.HasNumber {
		g.Vars.SetRefNumber(r.Number)
	}
	if r.HasText {
		g.Vars.SetRefText(r.Text)
	}
	g.NPCRefs = r.NPCRefs
	g.ObjectRefs = r.ObjectRefs
	g.IsNPCPronoun = r.NPCPronoun
	g.IsObjectPronoun = r.ObjectPronoun
}

// IsStatic reports whether an object never moves on its own.
func (g *Game) IsStatic(o int) bool    { return g.Props.Bool("Objects", o, "Static") }
func (g *Game) IsContainer(o int) bool { return g.Props.Bool("Objects", o, "Container") }
func (g *Game) IsSurface(o int) bool   { return g.Props.Bool("Objects", o, "Surface") }

func nth(list []int, n int) int {
	if n < 0 || n >= len(list) {
		return -1
	}
	return list[n]
}

func index(list []int, o int) int {
	count := 0
	for _, x := range list {
		if x >= o {
			break
		}
		count++
	}
	return count
}

// ContainerObject returns the object index of the n'th container, or -1.
func (g *Game) ContainerObject(n int) int { return nth(g.containers, n) }

// ContainerIndex is the inverse of ContainerObject.
func (g *Game) ContainerIndex(o int) int { return index(g.containers, o) }

func (g *Game) SurfaceObject(n int) int  { return nth(g.surfaces, n) }
func (g *Game) SurfaceIndex(o int) int   { return index(g.surfaces, o) }
func (g *Game) StatefulObject(n int) int { return nth(g.stateful, n) }
func (g *Game) StatefulIndex(o int) int  { return index(g.stateful, o) }
func (g *Game) DynamicObject(n int) int  { return nth(g.dynamic, n) }
func (g *Game) StandableObject(n int) int {
	return nth(g.standable, n)
}
func (g *Game) LieableObject(n int) int { return nth(g.lieable, n) }

// StateName returns the name of an object's current custom state from its
// bar-separated States list.
func (g *Game) StateName(o int) (string, bool) {
	states := strings.Split(g.Props.String("Objects", o, "States"), "|")
	st := g.S.Objects[o].State
	if st < 1 || st > len(states) {
		return "", false
	}
	return states[st-1], true
}

// Size weights rise by a factor of three per step.
const (
	sizeWeightDivisor = 10
	dimensionMultiple = 3
)

func power3(n int) int {
	v := 1
	for ; n > 0; n-- {
		v *= dimensionMultiple
	}
	return v
}

// Size returns an object's relative size.
func (g *Game) Size(o int) int {
	if g.IsStatic(o) {
		return 0
	}
	return power3(g.Props.Int("Objects", o, "SizeWeight") / sizeWeightDivisor)
}

// Weight returns an object's relative weight, including anything in or on
// it.
func (g *Game) Weight(o int) int {
	if g.IsStatic(o) {
		return 0
	}
	w := power3(g.Props.Int("Objects", o, "SizeWeight") % sizeWeightDivisor)
	if g.IsContainer(o) || g.IsSurface(o) {
		for c, obj := range g.S.Objects {
			if (obj.Position == PosInObject || obj.Position == PosOnObject) && obj.Parent == o {
				w += g.Weight(c)
			}
		}
	}
	return w
}

// ContainerMaxSize is the largest object size a container accepts, and
// ContainerCapacity the number of objects it holds.
func (g *Game) ContainerMaxSize(o int) int {
	return power3(g.Props.Int("Objects", o, "Capacity") % sizeWeightDivisor)
}

func (g *Game) ContainerCapacity(o int) int {
	return g.Props.Int("Objects", o, "Capacity") / sizeWeightDivisor
}

// PlayerInRoom reports whether the player is in room.
func (g *Game) PlayerInRoom(room int) bool { return g.S.PlayerRoom == room }

// NPCInRoom reports whether an NPC is in room.
func (g *Game) NPCInRoom(npc, room int) bool { return g.S.NPCs[npc].Location-1 == room }

// NPCCountInRoom counts the player and NPCs in room.
func (g *Game) NPCCountInRoom(room int) int {
	count := 0
	if g.PlayerInRoom(room) {
		count++
	}
	for n := range g.S.NPCs {
		if g.NPCInRoom(n, room) {
			count++
		}
	}
	return count
}

// InRoomSet reports whether room is in the Where room set stored under
// path.
func (g *Game) InRoomSet(room int, path ...any) bool {
	key := func(k ...any) []any { return append(append([]any(nil), path...), k...) }
	switch g.Props.Int(key("Where", "Type")...) {
	case WhereAll:
		return true
	case WhereOne:
		return g.Props.Int(key("Where", "Room")...) == room
	case WhereSome:
		return g.Props.Bool(key("Where", "Rooms", room)...)
	}
	return false
}

// DirectlyInRoom reports whether an object is on the floor of room.
func (g *Game) DirectlyInRoom(o, room int) bool {
	pos := g.S.Objects[o].Position
	if !g.IsStatic(o) {
		return pos == room+1
	}
	if pos > PosHidden {
		if pos == PosHeldPlayer {
			return false
		}
		return pos-1 == room
	}
	if g.Props.Int("Objects", o, "Where", "Type") == WhereNPCPart {
		return false
	}
	return g.InRoomSet(room, "Objects", o)
}

// IndirectlyInRoom reports whether an object is in room directly, on or in
// something there, or carried by someone there.
func (g *Game) IndirectlyInRoom(o, room int) bool {
	obj := g.S.Objects[o]
	if g.IsStatic(o) {
		if obj.Position > PosHidden {
			if obj.Position == PosHeldPlayer {
				return g.PlayerInRoom(room)
			}
			return obj.Position-1 == room
		}
		if g.Props.Int("Objects", o, "Where", "Type") == WhereNPCPart {
			npc := g.Props.Int("Objects", o, "Parent")
			if npc == 0 {
				return g.PlayerInRoom(room)
			}
			return g.NPCInRoom(npc-1, room)
		}
		return g.InRoomSet(room, "Objects", o)
	}

	switch obj.Position {
	case PosHidden:
		return false
	case PosHeldPlayer, PosWornPlayer:
		return g.PlayerInRoom(room)
	case PosHeldNPC, PosWornNPC:
		return g.NPCInRoom(obj.Parent, room)
	case PosInObject:
		if g.IsOpenOrUnclosable(obj.Parent) {
			return g.IndirectlyInRoom(obj.Parent, room)
		}
		return false
	case PosOnObject:
		return g.IndirectlyInRoom(obj.Parent, room)
	}
	return obj.Position-1 == room
}

// IsOpenOrUnclosable reports whether the inside of an object is reachable.
func (g *Game) IsOpenOrUnclosable(o int) bool {
	switch g.S.Objects[o].Openness {
	case OpenNever, Open:
		return true
	}
	return false
}

// DirectlyHeldByPlayer reports whether the player holds or wears an
// object.
func (g *Game) DirectlyHeldByPlayer(o int) bool {
	if g.IsStatic(o) {
		return false
	}
	pos := g.S.Objects[o].Position
	return pos == PosHeldPlayer || pos == PosWornPlayer
}

// IndirectlyHeldByPlayer reports whether the player carries an object,
// possibly inside or on something else they carry.
func (g *Game) IndirectlyHeldByPlayer(o int) bool {
	if g.IsStatic(o) {
		return false
	}
	obj := g.S.Objects[o]
	switch obj.Position {
	case PosHeldPlayer, PosWornPlayer:
		return true
	case PosInObject:
		return g.IsOpenOrUnclosable(obj.Parent) && g.IndirectlyHeldByPlayer(obj.Parent)
	case PosOnObject:
		return g.IndirectlyHeldByPlayer(obj.Parent)
	}
	return false
}

// InScope reports whether the player can refer to an object: it is in the
// player's room, directly or indirectly, or carried.
func (g *Game) InScope(o int) bool {
	return g.IndirectlyInRoom(o, g.S.PlayerRoom) || g.IndirectlyHeldByPlayer(o)
}

// ShowsInitialDescription reports whether an object's in-room description
// should be listed.
func (g *Game) ShowsInitialDescription(o int) bool {
	switch g.Props.Int("Objects", o, "OnlyWhenNotMoved") {
	case 0:
		return true
	case 1:
		return g.S.Objects[o].Unmoved
	case 2:
		if g.S.Objects[o].Unmoved {
			return true
		}
		return g.S.Objects[o].Position == g.Props.Int("Objects", o, "InitialPosition")-3
	}
	return false
}

// RoomInGroup reports whether room belongs to a room group.
func (g *Game) RoomInGroup(group, room int) bool {
	return g.Props.Bool("RoomGroups", group, "List", room)
}

// RandomRoomgroupMember picks a room from a group. An empty group yields
// the player's room.
func (g *Game) RandomRoomgroupMember(group int) int {
	count := g.Props.Int("RoomGroups", group, "List2", "Count")
	if count == 0 {
		g.tracef("room group %d has no rooms", group)
		return g.S.PlayerRoom
	}
	room := g.Props.Int("RoomGroups", group, "Members", g.RNG.Between(0, count-1))
	g.tracef("random room for group %d is %d", group, room)
	return room
}

// MovePlayerToRoom moves the player, standing, to room. Values past the
// last room select a random member of room group room-Rooms().
func (g *Game) MovePlayerToRoom(room int) {
	if room < g.rooms {
		g.S.PlayerRoom = room
	} else {
		g.S.PlayerRoom = g.RandomRoomgroupMember(room - g.rooms)
	}
	g.S.PlayerParent = -1
	g.S.PlayerPosition = Standing
}

func (g *Game) place(o, position, parent int) {
	g.tracef("object %d to position %d parent %d", o, position, parent)
	g.S.Objects[o].Position = position
	g.S.Objects[o].Parent = parent
}

// Hide removes an object from play. The other movers place an object
// relative to the player, an NPC, a room or another object.
func (g *Game) Hide(o int)                { g.place(o, PosHidden, -1) }
func (g *Game) PlayerGet(o int)           { g.place(o, PosHeldPlayer, -1) }
func (g *Game) NPCGet(o, npc int)         { g.place(o, PosHeldNPC, npc) }
func (g *Game) PlayerWear(o int)          { g.place(o, PosWornPlayer, 0) }
func (g *Game) NPCWear(o, npc int)        { g.place(o, PosWornNPC, npc) }
func (g *Game) ToRoom(o, room int)        { g.place(o, room+1, -1) }
func (g *Game) MoveInto(o, container int) { g.place(o, PosInObject, container) }
func (g *Game) MoveOnto(o, surface int)   { g.place(o, PosOnObject, surface) }

// ObjectStateIs compares an object's openness or custom state with a
// combined status value, as restrictions and exit conditions store it.
func (g *Game) ObjectStateIs(o, status int) bool {
	obj := g.S.Objects[o]
	if g.Props.Int("Objects", o, "Openable") > 0 {
		if g.Props.Int("Objects", o, "Key") >= 0 {
			if status <= 2 {
				return obj.Openness == status+5
			}
			return obj.State == status-2
		}
		if status <= 1 {
			return obj.Openness == status+5
		}
		return obj.State == status-1
	}
	return obj.State == status+1
}

// SetObjectStatus is the setter matching ObjectStateIs.
func (g *Game) SetObjectStatus(o, status int) {
	obj := &g.S.Objects[o]
	if g.Props.Int("Objects", o, "Openable") > 0 {
		if g.Props.Int("Objects", o, "Key") >= 0 {
			if status <= 2 {
				obj.Openness = status + 5
			} else {
				obj.State = status - 2
			}
			return
		}
		if status <= 1 {
			obj.Openness = status + 5
		} else {
			obj.State = status - 1
		}
		return
	}
	obj.State = status + 1
}

// Perspectives.
const (
	FirstPerson  = 0
	SecondPerson = 1
	ThirdPerson  = 2
)

// Select returns the response matching the game's perspective.
func (g *Game) Select(second, first, third string) string {
	switch g.Props.Int("Globals", "Perspective") {
	case FirstPerson:
		return first
	case ThirdPerson:
		return third
	}
	return second
}

// Print buffers story text.
func (g *Game) Print(s string) { g.Filter.Print(s) }

// Printf buffers formatted story text.
func (g *Game) Printf(format string, args ...any) { g.Filter.Print(fmt.Sprintf(format, args...)) }

// TurnUpdate marks what the player can see as seen and clears the unmoved
// flag of anything the player carries.
func (g *Game) TurnUpdate() {
	room := g.S.PlayerRoom
	for o := range g.S.Objects {
		if g.IndirectlyInRoom(o, room) {
			g.S.Objects[o].Seen = true
		}
		if g.IndirectlyHeldByPlayer(o) {
			g.S.Objects[o].Unmoved = false
		}
	}
	for n := range g.S.NPCs {
		if g.NPCInRoom(n, room) {
			g.S.NPCs[n].Seen = true
		}
	}
}
