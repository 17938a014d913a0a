// Package rules decides whether a task may run: its room visibility and
// its restrictions, combined by the task's restriction mask.
package rules

import (
	"github.com/nathoo/adriftcore/engine/state"
	"github.com/nathoo/adriftcore/types"
)

// Restriction types.
const (
	RestrObjectLocation = 0
	RestrObjectState    = 1
	RestrTaskState      = 2
	RestrCharacter      = 3
	RestrVariable       = 4
)

// Restriction is one task restriction as stored in the story.
type Restriction struct {
	Type             int
	Var1, Var2, Var3 int
	Var4             string
	FailMessage      string
}

// LoadRestriction reads restriction r of a task.
func LoadRestriction(g *state.Game, task, r int) Restriction {
	key := func(name string) []any { return []any{"Tasks", task, "Restrictions", r, name} }
	return Restriction{
		Type:        g.Props.Int(key("Type")...),
		Var1:        g.Props.Int(key("Var1")...),
		Var2:        g.Props.Int(key("Var2")...),
		Var3:        g.Props.Int(key("Var3")...),
		Var4:        g.Props.String(key("Var4")...),
		FailMessage: g.Props.String(key("FailMessage")...),
	}
}

// EvalRestriction reports whether a restriction currently holds.
func EvalRestriction(g *state.Game, r Restriction) bool {
	var pass bool
	switch r.Type {
	case RestrObjectLocation:
		pass = objectLocation(g, r.Var1, r.Var2, r.Var3)
	case RestrObjectState:
		pass = objectState(g, r.Var1, r.Var2)
	case RestrTaskState:
		pass = taskState(g, r.Var1, r.Var2)
	case RestrCharacter:
		pass = character(g, r.Var1, r.Var2, r.Var3)
	case RestrVariable:
		pass = variable(g, r.Var1, r.Var2, r.Var3, r.Var4)
	default:
		g.Tracef(types.TraceTasks, "unknown restriction type %d", r.Type)
	}
	g.Tracef(types.TraceTasks, "restriction %+v: %v", r, pass)
	return pass
}

// objectInPlace checks one object against a location condition. Var2 0-5
// and 6-11 name the same places, the upper half negated by the caller.
func objectInPlace(g *state.Game, o, var2, var3 int) bool {
	obj := g.S.Objects[o]
	npc := func() int {
		if var3 == 1 {
			return g.Vars.RefCharacter()
		}
		return var3 - 2
	}
	switch var2 % 6 {
	case 0: // in room
		if var3 == 0 {
			return obj.Position == state.PosHidden
		}
		return obj.Position == var3
	case 1: // held by
		if var3 == 0 {
			return obj.Position == state.PosHeldPlayer
		}
		return obj.Position == state.PosHeldNPC && obj.Parent == npc()
	case 2: // worn by
		if var3 == 0 {
			return obj.Position == state.PosWornPlayer
		}
		return obj.Position == state.PosWornNPC && obj.Parent == npc()
	case 3: // visible to
		if var3 == 0 {
			return g.IndirectlyInRoom(o, g.S.PlayerRoom)
		}
		n := npc()
		if n < 0 || n >= g.NPCs() {
			return false
		}
		return g.IndirectlyInRoom(o, g.S.NPCs[n].Location-1)
	case 4: // inside
		if var3 == 0 {
			return obj.Position != state.PosInObject
		}
		return obj.Position == state.PosInObject && obj.Parent == g.ContainerObject(var3-1)
	default: // on top of
		if var3 == 0 {
			return obj.Position != state.PosOnObject
		}
		return obj.Position == state.PosOnObject && obj.Parent == g.SurfaceObject(var3-1)
	}
}

// objectLocation handles Var1 0 (no object), 1 (any object), 2 (the
// referenced object) and 3 onwards (dynamic object Var1-3).
func objectLocation(g *state.Game, var1, var2, var3 int) bool {
	shouldBe := var2 < 6
	object := -1
	switch {
	case var1 == 0:
		shouldBe = !shouldBe
	case var1 == 2:
		object = g.Vars.RefObject()
		if object < 0 || g.IsStatic(object) {
			return false
		}
	case var1 >= 3:
		object = g.DynamicObject(var1 - 3)
		if object < 0 {
			return false
		}
	}
	if object < 0 {
		for o := 0; o < g.Objects(); o++ {
			if objectInPlace(g, o, var2, var3) {
				return shouldBe
			}
		}
		return !shouldBe
	}
	return shouldBe == objectInPlace(g, object, var2, var3)
}

// objectState checks stateful object Var1-1, or the referenced object when
// Var1 is 0.
func objectState(g *state.Game, var1, var2 int) bool {
	object := g.Vars.RefObject()
	if var1 != 0 {
		object = g.StatefulObject(var1 - 1)
	}
	if object < 0 {
		return false
	}
	return g.ObjectStateIs(object, var2)
}

// taskState checks that task Var1-1 is done (Var2 0) or not done (Var2 1).
// Var1 0 checks every task.
func taskState(g *state.Game, var1, var2 int) bool {
	shouldBe := var2 == 0
	if var1 == 0 {
		for _, t := range g.S.Tasks {
			if t.Done == shouldBe {
				return false
			}
		}
		return true
	}
	if var1-1 >= len(g.S.Tasks) {
		return false
	}
	return g.S.Tasks[var1-1].Done == shouldBe
}

// Character conditions in Var2.
const (
	charSameRoom = iota
	charNotSameRoom
	charAlone
	charNotAlone
	charStanding
	charSitting
	charLying
	charGender
)

// character checks the player (Var1 0), the referenced NPC (Var1 1) or NPC
// Var1-2.
func character(g *state.Game, var1, var2, var3 int) bool {
	switch var2 {
	case charNotSameRoom:
		return !character(g, var1, charSameRoom, var3)
	case charAlone:
		return !character(g, var1, charNotAlone, var3)
	}

	other := -1
	if var3 == 1 {
		other = g.Vars.RefCharacter()
	} else if var3 > 1 {
		other = var3 - 2
	}
	validNPC := func(n int) bool { return n >= 0 && n < g.NPCs() }

	if var1 == 0 {
		switch var2 {
		case charSameRoom:
			if var3 == 0 {
				return true
			}
			return validNPC(other) && g.NPCInRoom(other, g.S.PlayerRoom)
		case charNotAlone:
			return g.NPCCountInRoom(g.S.PlayerRoom) > 1
		case charStanding:
			return g.S.PlayerPosition == state.Standing && g.S.PlayerParent == g.StandableObject(var3-1)
		case charSitting:
			return g.S.PlayerPosition == state.Sitting && g.S.PlayerParent == g.StandableObject(var3-1)
		case charLying:
			return g.S.PlayerPosition == state.Lying && g.S.PlayerParent == g.LieableObject(var3-1)
		case charGender:
			return g.Props.Int("Globals", "PlayerGender") == var3
		}
		return false
	}

	npc := var1 - 2
	if var1 == 1 {
		npc = g.Vars.RefCharacter()
	}
	if !validNPC(npc) {
		return false
	}
	switch var2 {
	case charSameRoom:
		if var3 == 0 {
			return g.NPCInRoom(npc, g.S.PlayerRoom)
		}
		return validNPC(other) && g.NPCInRoom(npc, g.S.NPCs[other].Location-1)
	case charNotAlone:
		return g.NPCCountInRoom(g.S.NPCs[npc].Location-1) > 1
	case charStanding:
		return g.S.NPCs[npc].Position == state.Standing && g.S.NPCs[npc].Parent == g.StandableObject(var3)
	case charSitting:
		return g.S.NPCs[npc].Position == state.Sitting && g.S.NPCs[npc].Parent == g.StandableObject(var3)
	case charLying:
		return g.S.NPCs[npc].Position == state.Lying && g.S.NPCs[npc].Parent == g.LieableObject(var3)
	case charGender:
		return g.NPCGender(npc) == var3
	}
	return false
}

// variable compares the referenced number (Var1 0), the referenced text
// (Var1 1) or variable Var1-2.
func variable(g *state.Game, var1, var2, var3 int, var4 string) bool {
	switch var1 {
	case 0:
		return intCompare(g, g.Vars.RefNumber(), var2, var3)
	case 1:
		return stringCompare(g.Vars.RefText(), var2, var4)
	}
	v := var1 - 2
	name := g.Props.String("Variables", v, "Name")
	if g.Props.Int("Variables", v, "Type") == 1 {
		s, _ := g.Vars.GetString(name)
		return stringCompare(s, var2, var4)
	}
	n, _ := g.Vars.GetInt(name)
	return intCompare(g, n, var2, var3)
}

// intCompare applies comparison Var2 against the constant Var3 (Var2 0-5)
// or against integer variable Var3-1 (Var2 10-15; Var3 0 is the referenced
// number).
func intCompare(g *state.Game, value, var2, var3 int) bool {
	other := var3
	if var2 >= 10 {
		if var3 == 0 {
			other = g.Vars.RefNumber()
		} else {
			other, _ = g.Vars.GetInt(g.Props.String("Variables", integerVariable(g, var3-1), "Name"))
		}
	}
	switch var2 % 10 {
	case 0:
		return value < other
	case 1:
		return value <= other
	case 2:
		return value == other
	case 3:
		return value >= other
	case 4:
		return value > other
	case 5:
		return value != other
	}
	g.Tracef(types.TraceTasks, "unknown integer comparison %d", var2)
	return false
}

// integerVariable returns the index of the n'th integer variable.
func integerVariable(g *state.Game, n int) int {
	for v := 0; v < g.Props.Count("Variables"); v++ {
		if g.Props.Int("Variables", v, "Type") != 0 {
			continue
		}
		if n == 0 {
			return v
		}
		n--
	}
	return -1
}

func stringCompare(value string, var2 int, var4 string) bool {
	if var2 == 1 {
		return value != var4
	}
	return value == var4
}
