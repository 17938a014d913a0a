// Package events advances the story's timed events once per turn. An event
// waits to start, runs for a while, may pause and resume on tasks, and
// finishes; each transition can print text, move objects and run a task.
package events

import (
	"github.com/nathoo/adriftcore/engine/state"
	"github.com/nathoo/adriftcore/types"
)

// Starter types.
const (
	StartImmediately = 1
	StartRandom      = 2
	StartOnTask      = 3
)

// Restart types.
const (
	RestartNever   = 0
	RestartAlways  = 1
	RestartStarter = 2
)

// Resource slots of an event.
const (
	resStart = iota
	resLook
	resPref1
	resPref2
	resFinish
)

// Object destinations for ObjNDest.
const (
	destHidden = iota
	destPlayer
	destPlayerRoom
	destRoomBase
)

// anyTask in PauseTask or ResumeTask watches every task; larger values
// name task n-2.
const anyTask = 1

// Runner runs a story task forwards or backwards.
type Runner interface {
	RunTask(task int) bool
	ReverseTask(task int) bool
}

// Tick advances the events one turn. Events are visited by state, waiting
// ones first, so an event that starts this turn also runs this turn.
func Tick(g *state.Game, run Runner) {
	for st := state.EventWaiting; st <= state.EventPaused; st++ {
		for e := 0; e < g.Events(); e++ {
			if g.S.Events[e].State == st {
				tick(g, e, run)
			}
		}
	}
}

// Visible reports whether the player is where an event's texts show.
func Visible(g *state.Game, e int) bool {
	return g.InRoomSet(g.S.PlayerRoom, "Events", e)
}

// LookText returns the text a running event adds to a room description.
func LookText(g *state.Game, e int) (string, bool) {
	if g.S.Events[e].State != state.EventRunning || !Visible(g, e) {
		return "", false
	}
	text := g.Props.String("Events", e, "LookText")
	if text != "" {
		g.HandleResource("Events", e, "Res", resLook)
	}
	return text, text != ""
}

func prop(g *state.Game, e int, name string) int { return g.Props.Int("Events", e, name) }

// taskDone reports whether task n-1 is done. n of zero names no task.
func taskDone(g *state.Game, n int) bool {
	return n > 0 && n <= g.Tasks() && g.S.Tasks[n-1].Done
}

func anyTaskIs(g *state.Game, done bool) bool {
	for _, t := range g.S.Tasks {
		if t.Done == done {
			return true
		}
	}
	return false
}

// watched reports whether the task a pause or resume setting names is in
// the wanted state.
func watched(g *state.Game, task int, done bool) bool {
	switch {
	case task == anyTask:
		return anyTaskIs(g, done)
	case task > anyTask && task-2 < g.Tasks():
		return g.S.Tasks[task-2].Done == done
	}
	return false
}

// awaitsStarter moves a task-started event back to awaiting when its
// starter task has been undone.
func awaitsStarter(g *state.Game, e int) bool {
	if prop(g, e, "StarterType") != StartOnTask || taskDone(g, prop(g, e, "TaskNum")) {
		return false
	}
	g.Tracef(types.TraceEvents, "event %d awaits its task again", e)
	g.S.Events[e] = state.Event{State: state.EventAwaiting}
	return true
}

func tick(g *state.Game, e int, run Runner) {
	ev := &g.S.Events[e]
	switch ev.State {
	case state.EventWaiting:
		ev.Time--
		if ev.Time <= 0 {
			start(g, e)
		}

	case state.EventRunning:
		if awaitsStarter(g, e) {
			return
		}
		// The settings store "completed" inverted.
		pause := watched(g, prop(g, e, "PauseTask"), !g.Props.Bool("Events", e, "PauserCompleted"))
		resume := watched(g, prop(g, e, "ResumeTask"), !g.Props.Bool("Events", e, "ResumerCompleted"))
		if pause && !resume {
			g.Tracef(types.TraceEvents, "event %d paused", e)
			ev.State = state.EventPaused
			return
		}
		ev.Time--
		if Visible(g, e) {
			prefix(g, e, ev.Time)
		}
		if ev.Time <= 0 {
			finish(g, e, run)
		}

	case state.EventAwaiting:
		if taskDone(g, prop(g, e, "TaskNum")) {
			start(g, e)
		}

	case state.EventFinished:
		awaitsStarter(g, e)

	case state.EventPaused:
		pauser := prop(g, e, "PauseTask")
		pcompleted := !g.Props.Bool("Events", e, "PauserCompleted")
		resumer := prop(g, e, "ResumeTask")
		rcompleted := !g.Props.Bool("Events", e, "ResumerCompleted")
		switch {
		case pauser >= anyTask && !watched(g, pauser, pcompleted),
			resumer >= anyTask && watched(g, resumer, rcompleted):
			g.Tracef(types.TraceEvents, "event %d resumed", e)
			ev.State = state.EventRunning
		case ev.Time <= 0:
			finish(g, e, run)
		}
	}
}

func start(g *state.Game, e int) {
	g.Tracef(types.TraceEvents, "event %d starts", e)
	if Visible(g, e) {
		say(g, g.Props.String("Events", e, "StartText"))
		g.HandleResource("Events", e, "Res", resStart)
	}

	ev := &g.S.Events[e]
	ev.State = state.EventRunning
	ev.Time = g.RNG.Between(prop(g, e, "Time1"), prop(g, e, "Time2"))
	moveObject(g, prop(g, e, "Obj1"), prop(g, e, "Obj1Dest"))
}

// prefix prints the two intermediate texts as the countdown reaches their
// times.
func prefix(g *state.Game, e, remaining int) {
	if prop(g, e, "PrefTime1") == remaining {
		say(g, g.Props.String("Events", e, "PrefText1"))
		g.HandleResource("Events", e, "Res", resPref1)
	}
	if prop(g, e, "PrefTime2") == remaining {
		say(g, g.Props.String("Events", e, "PrefText2"))
		g.HandleResource("Events", e, "Res", resPref2)
	}
}

func finish(g *state.Game, e int, run Runner) {
	g.Tracef(types.TraceEvents, "event %d finishes", e)
	if Visible(g, e) {
		say(g, g.Props.String("Events", e, "FinishText"))
		g.HandleResource("Events", e, "Res", resFinish)
	}
	moveObject(g, prop(g, e, "Obj2"), prop(g, e, "Obj2Dest"))
	moveObject(g, prop(g, e, "Obj3"), prop(g, e, "Obj3Dest"))

	if task := prop(g, e, "TaskAffected"); task > 0 && task <= g.Tasks() {
		if g.Props.Bool("Events", e, "TaskFinished") {
			g.Tracef(types.TraceEvents, "event %d reverses task %d", e, task-1)
			run.ReverseTask(task - 1)
		} else {
			g.Tracef(types.TraceEvents, "event %d runs task %d", e, task-1)
			run.RunTask(task - 1)
		}
	}

	ev := &g.S.Events[e]
	switch prop(g, e, "RestartType") {
	case RestartAlways:
		*ev = state.Event{State: state.EventWaiting}
	case RestartStarter:
		restart(g, e)
	default:
		ev.State = state.EventFinished
	}
}

// restart returns an event to its starting condition.
func restart(g *state.Game, e int) {
	ev := &g.S.Events[e]
	switch prop(g, e, "StarterType") {
	case StartRandom:
		ev.State = state.EventWaiting
		ev.Time = g.RNG.Between(prop(g, e, "StartTime"), prop(g, e, "EndTime"))
	case StartOnTask:
		*ev = state.Event{State: state.EventAwaiting}
	default:
		*ev = state.Event{State: state.EventWaiting}
	}
}

// moveObject moves dynamic object obj-1, if any, to dest.
func moveObject(g *state.Game, obj, dest int) {
	if obj <= 0 {
		return
	}
	o := g.DynamicObject(obj - 1)
	if o < 0 {
		return
	}
	g.Tracef(types.TraceEvents, "moving object %d to destination %d", o, dest)
	switch {
	case dest == destHidden:
		g.Hide(o)
	case dest == destPlayer:
		g.PlayerGet(o)
	case dest == destPlayerRoom:
		g.ToRoom(o, g.S.PlayerRoom)
	case dest-destRoomBase < g.Rooms():
		g.ToRoom(o, dest-destRoomBase)
	default:
		g.ToRoom(o, g.RandomRoomgroupMember(dest-destRoomBase-g.Rooms()))
	}
}

func say(g *state.Game, text string) {
	if text != "" {
		g.Print(text + "\n")
	}
}
