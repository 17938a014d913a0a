package engine

import (
	"github.com/nathoo/adriftcore/types"
)

// Walk room values: hidden, following the player, then rooms and room
// groups offset by walkRoomBase.
const (
	walkHidden       = 0
	walkFollowPlayer = 1
	walkRoomBase     = 2
)

// NPC resource slots for announcements.
const (
	resNPCEnter = 2
	resNPCExit  = 3
)

// Direction names as seen from a room, for entry and exit announcements.
var fromDirections = []string{
	"the north", "the east", "the south", "the west", "above", "below",
	"inside", "outside",
	"the northeast", "the southeast", "the southwest", "the northwest",
}

func walkKey(npc, walk int, rest ...any) []any {
	return append([]any{"NPCs", npc, "Walks", walk}, rest...)
}

// compassPoints is the number of exits the story uses: eight, or twelve
// with the diagonals.
func (e *Engine) compassPoints() int {
	if e.g.Props.Bool("Globals", "EightPointCompass") {
		return 12
	}
	return 8
}

// startWalk arms a walk. Its countdown starts one past the first move
// time, and each later stop is reached as the countdown falls below that
// stop's move time.
func (e *Engine) startWalk(npc, walk int) {
	g := e.g
	if npc < 0 || npc >= g.NPCs() || walk < 0 || walk >= len(g.S.NPCs[npc].WalkSteps) {
		e.log.Printf("walk alert for npc %d walk %d is out of range", npc, walk)
		return
	}
	steps := g.Props.Int(walkKey(npc, walk, "MoveTimes", 0)...) + 1
	g.Tracef(types.TraceNPCs, "npc %d starts walk %d with %d steps", npc, walk, steps)
	g.S.NPCs[npc].WalkSteps[walk] = steps
}

// startInitialWalks starts the walks that need no task, and marks the
// characters the player starts with as seen.
func (e *Engine) startInitialWalks() {
	g := e.g
	for npc := 0; npc < g.NPCs(); npc++ {
		for walk := range g.S.NPCs[npc].WalkSteps {
			if g.Props.Int(walkKey(npc, walk, "StartTask")...) == 0 {
				e.startWalk(npc, walk)
			}
		}
	}
	g.TurnUpdate()
}

// startWalkAlerts starts the walks a task lists as (npc, walk) pairs.
func (e *Engine) startWalkAlerts(task int) {
	g := e.g
	for i := 0; i+1 < g.Props.Count("Tasks", task, "NPCWalkAlert"); i += 2 {
		e.startWalk(g.Props.Int("Tasks", task, "NPCWalkAlert", i), g.Props.Int("Tasks", task, "NPCWalkAlert", i+1))
	}
}

// tickNPCs moves every walking character one step.
func (e *Engine) tickNPCs() {
	for npc := 0; npc < e.g.NPCs(); npc++ {
		e.tickNPC(npc)
	}
}

// tickNPC counts down a character's walks, last first. Only the first
// live walk moves the character this turn.
func (e *Engine) tickNPC(npc int) {
	g := e.g
	moved := false
	steps := g.S.NPCs[npc].WalkSteps
	for walk := len(steps) - 1; walk >= 0; walk-- {
		if steps[walk] <= 0 {
			continue
		}
		start := g.Props.Int(walkKey(npc, walk, "StartTask")...) - 1
		stop := g.Props.Int(walkKey(npc, walk, "StoppingTask")...) - 1
		if (start >= 0 && !e.taskDone(start)) || (stop >= 0 && e.taskDone(stop)) {
			g.Tracef(types.TraceNPCs, "npc %d walk %d stopped, tasks wrong", npc, walk)
			steps[walk] = -1
			continue
		}

		steps[walk]--
		if steps[walk] == 0 {
			if g.Props.Bool(walkKey(npc, walk, "Loop")...) {
				steps[walk] = g.Props.Int(walkKey(npc, walk, "MoveTimes", 0)...)
			} else {
				steps[walk] = -1
			}
		}

		if !moved {
			e.walkStep(npc, walk)
			moved = true
		}
	}
}

func (e *Engine) taskDone(task int) bool {
	return task < e.g.Tasks() && e.g.S.Tasks[task].Done
}

// walkStep moves a character to the stop its walk countdown has reached,
// then runs the walk's meeting tasks.
func (e *Engine) walkStep(npc, walk int) {
	g := e.g
	times := g.Props.Count(walkKey(npc, walk, "MoveTimes")...)
	step := 0
	for ; step < times-1; step++ {
		if g.S.NPCs[npc].WalkSteps[walk] > g.Props.Int(walkKey(npc, walk, "MoveTimes", step+1)...) {
			break
		}
	}

	from := g.S.NPCs[npc].Location - 1
	dest := from
	switch room := g.Props.Int(walkKey(npc, walk, "Rooms", step)...); {
	case room == walkHidden:
		dest = -1
	case room == walkFollowPlayer:
		dest = g.S.PlayerRoom
	case room < g.Rooms()+walkRoomBase:
		dest = room - walkRoomBase
	case room < g.Rooms()+walkRoomBase+g.Props.Count("RoomGroups"):
		group := room - walkRoomBase - g.Rooms()
		dest = e.adjacentGroupMember(from, group)
		if dest < 0 {
			dest = g.RandomRoomgroupMember(group)
		}
	}
	g.S.NPCs[npc].Location = dest + 1
	g.Tracef(types.TraceNPCs, "npc %d walk %d step %d moved to %d", npc, walk, step, dest)

	if from != dest {
		switch g.S.PlayerRoom {
		case from:
			e.announce(npc, from, dest, true)
		case dest:
			e.announce(npc, dest, from, false)
		}
	}

	if task := g.Props.Int(walkKey(npc, walk, "CharTask")...); task != 0 {
		who := g.Props.Int(walkKey(npc, walk, "MeetChar")...)
		if (who == 0 && dest == g.S.PlayerRoom) || (who > 0 && who <= g.NPCs() && dest == g.S.NPCs[who-1].Location-1) {
			g.Tracef(types.TraceNPCs, "npc %d meets character %d", npc, who)
			e.RunTask(task - 1)
		}
	}
	if task := g.Props.Int(walkKey(npc, walk, "ObjectTask")...); task != 0 {
		o := g.Props.Int(walkKey(npc, walk, "MeetObject")...)
		if dest >= 0 && o >= 0 && o < g.Objects() && g.DirectlyInRoom(o, dest) {
			g.Tracef(types.TraceNPCs, "npc %d meets object %d", npc, o)
			e.RunTask(task - 1)
		}
	}
}

// adjacentGroupMember picks a random room of group that an exit of room
// leads to, or -1 when there is none.
func (e *Engine) adjacentGroupMember(room, group int) int {
	if room < 0 {
		return -1
	}
	g := e.g
	var adjacent []int
	for dir := 0; dir < e.compassPoints(); dir++ {
		if dest := g.Props.Int("Rooms", room, "Exits", dir, "Dest"); dest > 0 && g.RoomInGroup(group, dest-1) {
			adjacent = append(adjacent, dest-1)
		}
	}
	if len(adjacent) == 0 {
		return -1
	}
	return adjacent[g.RNG.Between(0, len(adjacent)-1)]
}

// announce tells the player a character left or entered room, naming the
// direction of other when an exit of room leads there.
func (e *Engine) announce(npc, room, other int, leaving bool) {
	g := e.g
	if !g.Props.Bool("NPCs", npc, "ShowEnterExit") {
		return
	}
	text, res, link := g.Props.String("NPCs", npc, "EnterText"), resNPCEnter, " from "
	if leaving {
		text, res, link = g.Props.String("NPCs", npc, "ExitText"), resNPCExit, " to "
	}

	g.Print("\n")
	g.Filter.NewSentence()
	g.Print(g.NPCName(npc) + " " + text)
	for dir := 0; dir < e.compassPoints(); dir++ {
		if dest := g.Props.Int("Rooms", room, "Exits", dir, "Dest"); dest > 0 && dest-1 == other {
			g.Print(link + fromDirections[dir])
			break
		}
	}
	g.Print(".\n")
	g.HandleResource("NPCs", npc, "Res", res)
}
