package engine

import (
	"regexp"
	"strings"

	"github.com/nathoo/adriftcore/engine/effects"
	"github.com/nathoo/adriftcore/engine/parser"
	"github.com/nathoo/adriftcore/engine/rules"
	"github.com/nathoo/adriftcore/types"
)

var dynFromRoom = regexp.MustCompile(`^\s*#\s*%object%\s*=\s*getdynfromroom\s*\(([^)]*)\)`)

// maxTaskDepth bounds tasks that redirect to each other.
const maxTaskDepth = 32

// pattern returns a compiled command pattern, or nil when it is malformed.
func (e *Engine) pattern(src string) *parser.Pattern {
	if p, ok := e.patterns[src]; ok {
		return p
	}
	p, err := parser.Compile(src)
	if err != nil {
		e.g.Tracef(types.TraceMatch, "%v", err)
		p = nil
	}
	e.patterns[src] = p
	return p
}

// match matches input against a pattern, binding the references it names
// on success.
func (e *Engine) match(src, input string) bool {
	p := e.pattern(src)
	if p == nil {
		return false
	}
	r := p.Match(input, e.g.MatchWorld())
	e.g.Tracef(types.TraceMatch, "%q against %q: %v", src, input, r.Matched)
	if r.Matched {
		e.g.Bind(r)
	}
	return r.Matched
}

// runTaskCommands offers a command to the story's tasks in order. Only
// tasks whose restrictions pass (unrestricted) or fail (restricted) are
// tried, so a failing task's message comes after the library has had its
// chance. A done, reversible task is also tried against its reverse
// commands. The first task that handles the command ends the search.
func (e *Engine) runTaskCommands(input string, unrestricted bool) bool {
	g := e.g
	for task := 0; task < g.Tasks(); task++ {
		if !rules.Visible(g, task) {
			continue
		}
		pass, _, err := rules.Evaluate(g, task)
		if err != nil {
			e.log.Printf("task %d: %v", task, err)
			continue
		}
		if pass != unrestricted {
			continue
		}
		if e.runTaskCommand(task, input, "Command", true) {
			return true
		}
		if g.Props.Bool("Tasks", task, "Reversible") && g.S.Tasks[task].Done &&
			e.runTaskCommand(task, input, "ReverseCommand", false) {
			return true
		}
	}
	return false
}

func (e *Engine) runTaskCommand(task int, input, key string, forwards bool) bool {
	g := e.g
	for c := 0; c < g.Props.Count("Tasks", task, key); c++ {
		src := g.Props.String("Tasks", task, key, c)
		var matched bool
		if strings.HasPrefix(strings.TrimSpace(src), "#") {
			matched = e.specialCommand(src)
		} else {
			matched = e.match(src, input)
		}
		if matched && e.runTask(task, forwards) {
			return true
		}
	}
	return false
}

// specialCommand handles the one command function stories use in place
// of a pattern:
//
//	# %object% = getdynfromroom (Room name)
//
// It refers to the first dynamic object lying directly in the named room.
func (e *Engine) specialCommand(src string) bool {
	g := e.g
	m := dynFromRoom.FindStringSubmatch(src)
	if m == nil {
		g.Tracef(types.TraceMatch, "unknown command function %q", src)
		return false
	}
	room := -1
	for r := 0; r < g.Rooms(); r++ {
		if strings.EqualFold(g.Props.String("Rooms", r, "Short"), m[1]) {
			room = r
			break
		}
	}
	if room < 0 {
		return false
	}
	for o := 0; o < g.Objects(); o++ {
		if g.IsStatic(o) || !g.DirectlyInRoom(o, room) {
			continue
		}
		for i := range g.ObjectRefs {
			g.ObjectRefs[i] = i == o
		}
		g.Vars.SetRefObject(o)
		return true
	}
	return false
}

// RunTask runs a task forwards. It is how task actions and events redirect
// to other tasks.
func (e *Engine) RunTask(task int) bool { return e.runTask(task, true) }

// ReverseTask runs a task backwards.
func (e *Engine) ReverseTask(task int) bool { return e.runTask(task, false) }

// runTask runs a task when its room set and restrictions allow. It reports
// whether the command counts as handled: the task printed something, or a
// restriction or repeat message explained why it could not run.
func (e *Engine) runTask(task int, forwards bool) bool {
	g := e.g
	if task < 0 || task >= g.Tasks() || !rules.Visible(g, task) {
		return false
	}
	if e.taskDepth >= maxTaskDepth {
		e.log.Printf("task %d: redirection deeper than %d tasks", task, maxTaskDepth)
		return false
	}
	e.taskDepth++
	defer func() { e.taskDepth-- }()

	g.Tracef(types.TraceTasks, "running task %d forwards=%v", task, forwards)
	pass, fail, err := rules.Evaluate(g, task)
	if err != nil {
		e.log.Printf("task %d: %v", task, err)
		return false
	}
	if !pass {
		if fail == "" {
			return false
		}
		g.Print(fail + "\n")
		return true
	}

	handled := false
	say := func(key string) {
		if text := g.Props.String("Tasks", task, key); text != "" {
			g.Print(text + "\n")
			handled = true
		}
	}

	if !forwards {
		if !g.S.Tasks[task].Done {
			return false
		}
		say("ReverseMessage")
		g.S.Tasks[task].Done = false
		return handled
	}

	if g.S.Tasks[task].Done && !g.Props.Bool("Tasks", task, "Repeatable") {
		g.Tracef(types.TraceTasks, "task %d is done and not repeatable", task)
		say("RepeatText")
		return handled
	}

	// 1. Mark done and start any walks waiting on this task.
	g.S.Tasks[task].Done = true
	e.startWalkAlerts(task)

	// 2. Completion text and resource.
	say("CompleteText")
	g.HandleResource("Tasks", task, "Res")

	// 3. Actions, stopping if one ends the game.
	if effects.Apply(g, task, effects.LoadAll(g, task), e) {
		handled = true
	}
	if !g.S.Running {
		return handled
	}

	// 4. Room description and additional message.
	if room := g.Props.Int("Tasks", task, "ShowRoomDesc"); room > 0 && room <= g.Rooms() {
		e.printRoomName(room - 1)
		e.printRoomDescription(room - 1)
		handled = true
	}
	say("AdditionalMessage")

	g.Tracef(types.TraceTasks, "task %d finished, handled=%v", task, handled)
	return handled
}
