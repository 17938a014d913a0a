// Package effects applies task actions to the game. Every action type is
// one mutation of the world; deciding whether a task may run is the job of
// the rules package.
package effects

import (
	"github.com/nathoo/adriftcore/engine/expr"
	"github.com/nathoo/adriftcore/engine/state"
	"github.com/nathoo/adriftcore/engine/taf"
	"github.com/nathoo/adriftcore/types"
)

// Action types.
const (
	ActMoveObject    = 0
	ActMoveCharacter = 1
	ActObjectStatus  = 2
	ActVariable      = 3
	ActScore         = 4
	ActSetTask       = 5
	ActEndGame       = 6
	ActBattle        = 7
)

// End game variants.
const (
	EndWin = iota
	EndLose
	EndDeath
	EndSilent
)

// Action is one task action as stored in the story.
type Action struct {
	Type                         int
	Var1, Var2, Var3, Var4, Var5 int
	Expr                         string
}

// Load reads action a of a task.
func Load(g *state.Game, task, a int) Action {
	key := func(name string) []any { return []any{"Tasks", task, "Actions", a, name} }
	return Action{
		Type: g.Props.Int(key("Type")...),
		Var1: g.Props.Int(key("Var1")...),
		Var2: g.Props.Int(key("Var2")...),
		Var3: g.Props.Int(key("Var3")...),
		Var4: g.Props.Int(key("Var4")...),
		Var5: g.Props.Int(key("Var5")...),
		Expr: g.Props.String(key("Expr")...),
	}
}

// LoadAll reads every action of a task in order.
func LoadAll(g *state.Game, task int) []Action {
	actions := make([]Action, g.Props.Count("Tasks", task, "Actions"))
	for a := range actions {
		actions[a] = Load(g, task, a)
	}
	return actions
}

// Runner runs another task, forwards, when its room set allows it. It
// reports whether the task produced output or was otherwise handled.
type Runner interface {
	RunTask(task int) bool
}

// Apply runs a task's actions in order and reports whether any of them
// handled the command. It stops after an action that ends the game.
func Apply(g *state.Game, task int, actions []Action, run Runner) bool {
	handled := false
	for i, a := range actions {
		if applyOne(g, task, a, run) {
			handled = true
		}
		if !g.S.Running {
			g.Tracef(types.TraceTasks, "task %d action %d ended the game", task, i)
			break
		}
	}
	return handled
}

func applyOne(g *state.Game, task int, a Action, run Runner) bool {
	g.Tracef(types.TraceTasks, "task %d action %+v", task, a)
	switch a.Type {
	case ActMoveObject:
		moveObjects(g, a.Var1, a.Var2, a.Var3)
	case ActMoveCharacter:
		if a.Var1 == 0 {
			movePlayer(g, a.Var2, a.Var3)
		} else {
			moveNPC(g, a.Var1, a.Var2, a.Var3)
		}
	case ActObjectStatus:
		if o := g.StatefulObject(a.Var1); o >= 0 {
			g.SetObjectStatus(o, a.Var2)
		}
	case ActVariable:
		changeVariable(g, a)
	case ActScore:
		changeScore(g, task, a.Var1)
	case ActSetTask:
		return setTask(g, a.Var1, a.Var2, run)
	case ActEndGame:
		return endGame(g, a.Var1)
	case ActBattle:
		// Battles are not played.
	default:
		g.Tracef(types.TraceTasks, "unknown action type %d", a.Type)
	}
	return false
}

func validNPC(g *state.Game, n int) bool { return n >= 0 && n < g.NPCs() }

// character resolves the common selector: 0 the player (-1 here), 1 the
// referenced character, anything else NPC n-2.
func character(g *state.Game, n int) int {
	switch n {
	case 0:
		return -1
	case 1:
		return g.Vars.RefCharacter()
	}
	return n - 2
}

// moveObjects selects every held object (Var1 0), every worn object (1),
// the referenced object (2) or dynamic object Var1-3.
func moveObjects(g *state.Game, var1, var2, var3 int) {
	switch var1 {
	case 0, 1:
		want := state.PosHeldPlayer
		if var1 == 1 {
			want = state.PosWornPlayer
		}
		for o := range g.S.Objects {
			if g.S.Objects[o].Position == want {
				moveObject(g, o, var2, var3)
			}
		}
	case 2:
		if o := g.Vars.RefObject(); o >= 0 && o < g.Objects() {
			moveObject(g, o, var2, var3)
		}
	default:
		if o := g.DynamicObject(var1 - 3); o >= 0 {
			moveObject(g, o, var2, var3)
		}
	}
}

func moveObject(g *state.Game, o, var2, var3 int) {
	switch var2 {
	case 0: // to room
		if var3 == 0 {
			g.Hide(o)
		} else {
			g.ToRoom(o, var3-1)
		}
	case 1: // to a room of a group
		g.ToRoom(o, g.RandomRoomgroupMember(var3))
	case 2:
		if c := g.ContainerObject(var3); c >= 0 {
			g.MoveInto(o, c)
		}
	case 3:
		if s := g.SurfaceObject(var3); s >= 0 {
			g.MoveOnto(o, s)
		}
	case 4: // held by
		if var3 == 0 {
			g.PlayerGet(o)
		} else if n := character(g, var3); validNPC(g, n) {
			g.NPCGet(o, n)
		}
	case 5: // worn by
		if var3 == 0 {
			g.PlayerWear(o)
		} else if n := character(g, var3); validNPC(g, n) {
			g.NPCWear(o, n)
		}
	case 6: // same room as
		room := g.S.PlayerRoom
		if var3 != 0 {
			n := character(g, var3)
			if !validNPC(g, n) {
				return
			}
			room = g.S.NPCs[n].Location - 1
		}
		if room < 0 {
			g.Hide(o)
			return
		}
		g.ToRoom(o, room)
	default:
		g.Tracef(types.TraceTasks, "unknown object move %d", var2)
	}
}

// Character moves in Var2.
const (
	moveToRoom = iota
	moveToGroup
	moveWith
	moveStand
	moveSit
	moveLie
)

func movePlayer(g *state.Game, var2, var3 int) {
	switch var2 {
	case moveToRoom:
		g.MovePlayerToRoom(var3)
	case moveToGroup:
		g.MovePlayerToRoom(g.RandomRoomgroupMember(var3))
	case moveWith:
		if var3 == 0 {
			return
		}
		n := character(g, var3)
		if validNPC(g, n) && g.S.NPCs[n].Location > 0 {
			g.MovePlayerToRoom(g.S.NPCs[n].Location - 1)
		}
	case moveStand, moveSit:
		g.S.PlayerPosition = state.Standing
		if var2 == moveSit {
			g.S.PlayerPosition = state.Sitting
		}
		g.S.PlayerParent = g.StandableObject(var3 - 1)
	case moveLie:
		g.S.PlayerPosition = state.Lying
		g.S.PlayerParent = g.LieableObject(var3 - 1)
	default:
		g.Tracef(types.TraceTasks, "unknown player move %d", var2)
	}
}

// moveNPCToRoom places an NPC in room, or in a random member of group
// room-Rooms() when room is past the last room.
func moveNPCToRoom(g *state.Game, n, room int) {
	npc := &g.S.NPCs[n]
	if room < g.Rooms() {
		npc.Location = room + 1
	} else {
		npc.Location = g.RandomRoomgroupMember(room-g.Rooms()) + 1
	}
	npc.Parent = -1
	npc.Position = state.Standing
}

func moveNPC(g *state.Game, var1, var2, var3 int) {
	n := character(g, var1)
	if !validNPC(g, n) {
		g.Tracef(types.TraceTasks, "move of unknown character %d", var1)
		return
	}
	switch var2 {
	case moveToRoom:
		moveNPCToRoom(g, n, var3-1)
	case moveToGroup:
		moveNPCToRoom(g, n, g.RandomRoomgroupMember(var3))
	case moveWith:
		room := g.S.PlayerRoom
		if var3 != 0 {
			other := character(g, var3)
			if !validNPC(g, other) {
				return
			}
			room = g.S.NPCs[other].Location - 1
		}
		moveNPCToRoom(g, n, room)
	case moveStand, moveSit:
		g.S.NPCs[n].Position = state.Standing
		if var2 == moveSit {
			g.S.NPCs[n].Position = state.Sitting
		}
		g.S.NPCs[n].Parent = g.StandableObject(var3)
	case moveLie:
		g.S.NPCs[n].Position = state.Lying
		g.S.NPCs[n].Parent = g.LieableObject(var3)
	default:
		g.Tracef(types.TraceTasks, "unknown character move %d", var2)
	}
}

// Variable changes, integer then string.
const (
	intAssign = iota
	intAdd
	intRandom
	intAddRandom
	intReference
	intExpression
)

const (
	strAssign = iota
	strReference
	strExpression
)

func changeVariable(g *state.Game, a Action) {
	name := g.Props.String("Variables", a.Var1, "Name")
	if g.Props.Int("Variables", a.Var1, "Type") == 1 {
		var value string
		switch a.Var2 {
		case strAssign:
			value = a.Expr
		case strReference:
			value = g.Vars.RefText()
		case strExpression:
			v, err := expr.EvalString(a.Expr, g)
			if err != nil {
				g.Tracef(types.TraceExpr, "variable %s: %v", name, err)
				v = "[expr error]"
			}
			value = v
		default:
			g.Tracef(types.TraceTasks, "unknown string change %d", a.Var2)
			return
		}
		if err := g.Vars.PutString(name, value); err != nil {
			g.Tracef(types.TraceTasks, "variable %s: %v", name, err)
		}
		return
	}

	current, _ := g.Vars.GetInt(name)
	var value int
	switch a.Var2 {
	case intAssign:
		value = a.Var3
	case intAdd:
		value = current + a.Var3
	case intRandom:
		value = g.RNG.Between(a.Var3, a.Var5)
	case intAddRandom:
		value = current + g.RNG.Between(a.Var3, a.Var5)
	case intReference:
		value = g.Vars.RefNumber()
	case intExpression:
		v, err := expr.EvalInt(a.Expr, g)
		if err != nil {
			g.Tracef(types.TraceExpr, "variable %s: %v", name, err)
			v = 0
		}
		value = v
	default:
		g.Tracef(types.TraceTasks, "unknown integer change %d", a.Var2)
		return
	}
	if err := g.Vars.PutInt(name, value); err != nil {
		g.Tracef(types.TraceTasks, "variable %s: %v", name, err)
	}
}

// changeScore adds points once per task. Version 3.80 stories may score a
// task again unless it is marked single-score. Penalties always apply.
func changeScore(g *state.Game, task, points int) {
	switch {
	case points > 0:
		t := &g.S.Tasks[task]
		if t.Scored {
			if g.Version != int(taf.V380) || g.Props.Bool("Tasks", task, "SingleScore") {
				g.Tracef(types.TraceTasks, "task %d already scored", task)
				return
			}
		}
		g.S.Score += points
		t.Scored = true
	case points < 0:
		g.S.Score += points
	}
}

// setTask runs task Var2 forwards (Var1 0) or clears its done flag.
func setTask(g *state.Game, var1, target int, run Runner) bool {
	if target < 0 || target >= g.Tasks() {
		g.Tracef(types.TraceTasks, "redirect to unknown task %d", target)
		return false
	}
	if var1 != 0 {
		g.Tracef(types.TraceTasks, "reversing task %d", target)
		g.S.Tasks[target].Done = false
		return false
	}
	return run.RunTask(target)
}

func endGame(g *state.Game, variant int) bool {
	handled := true
	switch variant {
	case EndWin:
		if text := g.Props.String("Header", "WinText"); text != "" {
			g.Print(text + "\n")
		} else {
			g.Print("Congratulations!\n")
		}
		g.HandleResource("Globals", "WinRes")
	case EndLose:
		g.Print("Better luck next time.\n")
	case EndDeath:
		g.Print("I'm afraid you are dead!\n")
	default:
		handled = false
	}
	g.S.Running = false
	g.S.Completed = true
	return handled
}
