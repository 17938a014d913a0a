package state

import (
	"strings"
	"time"

	"github.com/nathoo/adriftcore/engine/parser"
	"github.com/nathoo/adriftcore/engine/vars"
)

// RunnerVersion is the runner version reported by %version%.
const RunnerVersion = 4046

// SystemVar answers the system variables that depend on the running game.
func (g *Game) SystemVar(name string) (vars.Value, bool) {
	str := vars.StringValue
	p := g.Props
	switch name {
	case "author":
		return str(orDefault(p.String("Globals", "GameAuthor"), "[Author unknown]")), true
	case "title":
		return str(orDefault(p.String("Globals", "GameName"), "[Title unknown]")), true
	case "modified":
		return str(orDefault(p.String("CompileDate"), "[Modified unknown]")), true
	case "player":
		return str(orDefault(p.String("Globals", "PlayerName"), "Player")), true
	case "room":
		return str(g.RoomName(g.S.PlayerRoom)), true
	case "score":
		return vars.IntValue(g.S.Score), true
	case "maxscore":
		return vars.IntValue(p.Int("Globals", "MaxScore")), true
	case "modscore":
		if max := p.Int("Globals", "MaxScore"); max > 0 {
			return vars.IntValue(g.S.Score * 100 / max), true
		}
		return vars.IntValue(0), true
	case "turns":
		return vars.IntValue(g.S.Turns), true
	case "version":
		return vars.IntValue(RunnerVersion), true
	case "date":
		return str(time.Now().Format("2 January 2006")), true
	case "character":
		n := g.Vars.RefCharacter()
		if n < 0 {
			return str("[Character unknown]"), true
		}
		return str(orDefault(g.NPCName(n), "[Character unknown]")), true
	case "heshe", "himher":
		return str(g.genderWord(name)), true
	case "object":
		o := g.Vars.RefObject()
		if o < 0 {
			return str("[Object unknown]"), true
		}
		return str(g.ObjectName(o)), true
	case "theobject":
		o := g.Vars.RefObject()
		if o < 0 {
			return str("[Object unknown]"), true
		}
		return str(g.TheObject(o)), true
	case "obstate":
		return str(g.obstate(g.Vars.RefObject(), "Obstate")), true
	case "obstatus":
		return str(g.obstatus(g.Vars.RefObject(), "Obstatus")), true
	}

	for _, prefix := range []string{"onin_", "in_", "on_", "state_", "status_"} {
		if strings.HasPrefix(name, prefix) {
			return str(g.objectVar(prefix, strings.TrimPrefix(name, prefix))), true
		}
	}
	return vars.Value{}, false
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

func (g *Game) genderWord(name string) string {
	n := g.Vars.RefCharacter()
	if n < 0 {
		return "[Gender unknown]"
	}
	switch g.NPCGender(n) {
	case Male:
		if name == "heshe" {
			return "he"
		}
		return "him"
	case Female:
		if name == "heshe" {
			return "she"
		}
		return "her"
	case Neuter:
		return "it"
	}
	return "[Gender unknown]"
}

func (g *Game) obstate(o int, label string) string {
	if o < 0 || g.Props.Int("Objects", o, "CurrentState") == 0 {
		return "[" + label + " unavailable]"
	}
	name, ok := g.StateName(o)
	if !ok {
		return "[" + label + " unknown]"
	}
	return name
}

func (g *Game) obstatus(o int, label string) string {
	if o < 0 || g.Props.Int("Objects", o, "Openable") == 0 {
		return "[" + label + " unavailable]"
	}
	switch g.S.Objects[o].Openness {
	case Open:
		return "open"
	case Closed:
		return "closed"
	case Locked:
		return "locked"
	}
	return "[" + label + " unknown]"
}

// objectVar handles the in_, on_, onin_, state_ and status_ variables,
// whose suffix names an object.
func (g *Game) objectVar(prefix, words string) string {
	label := strings.ToUpper(prefix[:1]) + strings.TrimSuffix(prefix[1:], "_") + "_"
	res := parser.Match("%object%", words, g.MatchWorld())
	if !res.Matched || res.Object < 0 {
		return "[" + label + " unavailable]"
	}
	o := res.Object
	switch prefix {
	case "in_":
		return g.ListIn(o, "")
	case "on_":
		return g.ListOn(o, "")
	case "onin_":
		return g.ListIn(o, g.ListOn(o, ""))
	case "state_":
		return g.obstate(o, label)
	}
	return g.obstatus(o, label)
}

// ListIn appends to temp a sentence naming what is inside an object.
func (g *Game) ListIn(o int, temp string) string {
	return g.listChildren(o, PosInObject, "Inside ", temp)
}

// ListOn appends to temp a sentence naming what is on an object.
func (g *Game) ListOn(o int, temp string) string {
	return g.listChildren(o, PosOnObject, "On ", temp)
}

func (g *Game) listChildren(o, position int, lead, temp string) string {
	var names []string
	for c, obj := range g.S.Objects {
		if obj.Position == position && obj.Parent == o {
			names = append(names, g.AnObject(c))
		}
	}
	if len(names) == 0 {
		return temp
	}
	if temp != "" {
		temp += "  "
	}
	verb := " is "
	if len(names) > 1 {
		verb = " are "
	}
	return temp + lead + g.TheObject(o) + verb + ListNames(names) + "."
}

// Var and Random let a game evaluate expressions.
func (g *Game) Var(name string) (vars.Value, bool) { return g.Vars.Get(name) }

func (g *Game) Random(lo, hi int) int { return g.RNG.Between(lo, hi) }
