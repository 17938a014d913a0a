package rules

import (
	"github.com/nathoo/adriftcore/engine/state"
	"github.com/nathoo/adriftcore/types"
)

// Visible reports whether a task can run in the player's current room.
func Visible(g *state.Game, task int) bool {
	return g.InRoomSet(g.S.PlayerRoom, "Tasks", task)
}

// Evaluate runs a task's restrictions through its mask. On failure it also
// returns the fail message of the first failing restriction, which may be
// empty. A malformed mask is an error and the task is treated as failing.
func Evaluate(g *state.Game, task int) (pass bool, failMessage string, err error) {
	count := g.Props.Count("Tasks", task, "Restrictions")
	if count == 0 {
		return true, "", nil
	}
	mask := g.Props.String("Tasks", task, "RestrMask")
	g.Tracef(types.TraceTasks, "task %d has %d restrictions, %s", task, count, mask)

	restrictions := make([]Restriction, count)
	for r := range restrictions {
		restrictions[r] = LoadRestriction(g, task, r)
	}
	pass, lowest, err := Combine(mask, func(i int) bool {
		if i >= count {
			g.Tracef(types.TraceTasks, "task %d mask names missing restriction %d", task, i)
			return false
		}
		return EvalRestriction(g, restrictions[i])
	})
	if err != nil {
		return false, "", err
	}
	g.Tracef(types.TraceTasks, "task %d restrictions pass: %v", task, pass)
	if pass || lowest < 0 {
		return pass, "", nil
	}
	return false, restrictions[lowest].FailMessage, nil
}
