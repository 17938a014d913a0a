// Package state holds the mutable world of a running game and the
// queries every other engine module asks of it: where an object is, who
// can see it, what it is called.
package state

import (
	"github.com/nathoo/adriftcore/engine/parser"
	"github.com/nathoo/adriftcore/engine/vars"
)

// Object positions. Zero and positive values other than PosHeldPlayer are
// rooms, stored as room+1.
const (
	PosHidden     = -1
	PosHeldPlayer = 0
	PosInObject   = -10
	PosOnObject   = -20
	PosPartNPC    = -30
	PosWornPlayer = -100
	PosHeldNPC    = -200
	PosWornNPC    = -300
)

// Openness of openable objects. Objects that cannot close report
// OpenNever.
const (
	OpenNever = 0
	Open      = 5
	Closed    = 6
	Locked    = 7
)

// Event states.
const (
	EventWaiting  = 1
	EventRunning  = 2
	EventAwaiting = 3
	EventFinished = 4
	EventPaused   = 5
)

// Player and NPC postures.
const (
	Standing = 0
	Sitting  = 1
	Lying    = 2
)

// Object is the mutable part of an object.
type Object struct {
	Position int
	Parent   int
	Openness int
	State    int
	Seen     bool
	Unmoved  bool
}

// Task is the mutable part of a task.
type Task struct {
	Done   bool
	Scored bool
}

// Event is the mutable part of an event.
type Event struct {
	State int
	Time  int
}

// NPC is the mutable part of a character. Location is room+1, or 0 when
// the character is hidden. WalkSteps holds one countdown per walk.
type NPC struct {
	Location  int
	Seen      bool
	Parent    int
	Position  int
	WalkSteps []int
}

// State is everything a save or undo must capture.
type State struct {
	Score int
	Turns int

	PlayerRoom     int
	PlayerParent   int
	PlayerPosition int

	RoomsSeen []bool
	Objects   []Object
	Tasks     []Task
	Events    []Event
	NPCs      []NPC

	// Variables holds user variable values in declaration order, and
	// Elapsed the play time in seconds when the state was captured.
	Variables []vars.Value
	Elapsed   int

	Pronouns parser.Pronouns

	Running   bool
	Completed bool

	Verbose     bool
	NotifyScore bool
}

// Clone returns a deep copy.
func (s *State) Clone() *State {
	c := *s
	c.RoomsSeen = append([]bool(nil), s.RoomsSeen...)
	c.Objects = append([]Object(nil), s.Objects...)
	c.Tasks = append([]Task(nil), s.Tasks...)
	c.Events = append([]Event(nil), s.Events...)
	c.Variables = append([]vars.Value(nil), s.Variables...)
	c.NPCs = make([]NPC, len(s.NPCs))
	for i, n := range s.NPCs {
		n.WalkSteps = append([]int(nil), n.WalkSteps...)
		c.NPCs[i] = n
	}
	return &c
}
