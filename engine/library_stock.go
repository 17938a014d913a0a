package engine

import "github.com/nathoo/adriftcore/engine/state"

// Stock responses: verbs the library recognizes but that change nothing.

var sayings = []string{
	"Gosh, that was very impressive.\n",
	"", // perspective dependent
	"Wow!  That achieved a lot.\n",
	"Uh huh, yes, very interesting.\n",
	"That's the most interesting thing I've ever heard!\n",
}

var evasions = []string{
	"Why do you want to know?\n",
	"Interesting question.\n",
	"Let me think about that one...\n",
	"I haven't a clue!\n",
	"All these questions are hurting my head.\n",
	"I'm not going to tell you.\n",
	"Someday I'll know the answer to that one.\n",
	"I could tell you, but then I'd have to kill you.\n",
	"Ha, as if I'd tell you!\n",
	"Ask me again later.\n",
	"I don't know - could you ask anyone else?\n",
	"Err, yes?!?\n",
	"Let me just check my memory banks...\n",
	"Because that's just the way it is.\n",
	"Do I ask you all sorts of awkward questions?\n",
	"Questions, questions...\n",
	"Who cares.\n",
}

func (e *Engine) cmdSay() bool {
	n := e.g.RNG.Between(0, len(sayings)-1)
	if sayings[n] == "" {
		e.g.Print(e.sel("Not surprisingly, no-one takes any notice of you.\n",
			"Not surprisingly, no-one takes any notice of me.\n",
			"Not surprisingly, no-one takes any notice of %player%.\n"))
		return true
	}
	e.g.Print(sayings[n])
	return true
}

func (e *Engine) cmdInterrogation() bool {
	e.g.Print(evasions[e.g.RNG.Between(0, len(evasions)-1)])
	return true
}

// nothingHappens answers verbs that do nothing to the object named.
func nothingHappens(verb, third string) func(*Engine) bool {
	return func(e *Engine) bool {
		o, handled := e.object(verb, true)
		if o < 0 {
			return handled
		}
		e.g.Print(e.sel("You "+verb, "I "+verb, "%player% "+third) + " " + e.g.TheObject(o) + ", but nothing happens.\n")
		return true
	}
}

func nothingHappensHere(verb, third string) func(*Engine) bool {
	return func(e *Engine) bool {
		e.g.Print(e.sel("You "+verb, "I "+verb, "%player% "+third) + ", but nothing happens.\n")
		return true
	}
}

// cantDo refuses a verb on the object named.
func cantDo(verb string) func(*Engine) bool {
	return func(e *Engine) bool {
		o, handled := e.object(verb, true)
		if o < 0 {
			return handled
		}
		e.g.Print(e.sel("You can't ", "I can't ", "%player% can't ") + verb + " " + e.g.TheObject(o) + ".\n")
		return true
	}
}

func cantDoThat(verb string) func(*Engine) bool {
	return perspective("You can't "+verb+" that.\n", "I can't "+verb+" that.\n", "%player% can't "+verb+" that.\n")
}

const (
	dontThinkSecond = "You don't think you can "
	dontThinkFirst  = "I don't think I can "
	dontThinkThird  = "%player% doesn't think they can "
)

func dontThink(verb string) func(*Engine) bool {
	return func(e *Engine) bool {
		o, handled := e.object(verb, true)
		if o < 0 {
			return handled
		}
		e.g.Print(e.sel(dontThinkSecond, dontThinkFirst, dontThinkThird) + verb + " " + e.g.TheObject(o) + ".\n")
		return true
	}
}

func dontThinkThat(verb string) func(*Engine) bool {
	return perspective(dontThinkSecond+verb+" that.\n", dontThinkFirst+verb+" that.\n", dontThinkThird+verb+" that.\n")
}

func (e *Engine) cmdAskObject() bool {
	o, handled := e.object("ask", true)
	if o < 0 {
		return handled
	}
	e.g.Print(e.sel("You get no reply from ", "I get no reply from ", "%player% gets no reply from ") + e.g.TheObject(o) + ".\n")
	return true
}

func (e *Engine) cmdBreakNPC() bool {
	n, handled := e.npc("break", true)
	if n < 0 {
		return handled
	}
	e.g.Print("I don't think " + e.g.NPCName(n) + " would appreciate that.\n")
	return true
}

func (e *Engine) cmdBreakObject() bool {
	o, handled := e.object("break", true)
	if o < 0 {
		return handled
	}
	e.g.Print(e.sel("You might need ", "I might need ", "%player% might need ") + e.g.TheObject(o) + ".\n")
	return true
}

func (e *Engine) cmdFeedNPC() bool {
	n, handled := e.npc("feed", true)
	if n < 0 {
		return handled
	}
	e.sentence(e.g.NPCName(n) + " is not hungry.\n")
	return true
}

func (e *Engine) cmdFeedObject() bool {
	o, handled := e.object("feed", true)
	if o < 0 {
		return handled
	}
	e.g.Print("It's not hungry.\n")
	return true
}

func (e *Engine) cmdKissNPC() bool {
	n, handled := e.npc("kiss", true)
	if n < 0 {
		return handled
	}
	pronoun := "it"
	switch e.g.NPCGender(n) {
	case state.Male:
		pronoun = "he"
	case state.Female:
		pronoun = "she"
	}
	e.g.Print("I'm not sure " + pronoun + " would appreciate that!\n")
	return true
}

func (e *Engine) cmdKissObject() bool {
	o, handled := e.object("kiss", true)
	if o < 0 {
		return handled
	}
	e.g.Print("I'm not sure " + e.g.TheObject(o) + " would appreciate that.\n")
	return true
}

func (e *Engine) cmdSmellNPC() bool {
	n, handled := e.npc("smell", true)
	if n < 0 {
		return handled
	}
	e.sentence(e.g.NPCName(n) + " smells normal.\n")
	return true
}

func (e *Engine) cmdSmellObject() bool {
	o, handled := e.object("smell", true)
	if o < 0 {
		return handled
	}
	e.sentence(e.g.TheObject(o) + " smells normal.\n")
	return true
}

func (e *Engine) cmdSellObject() bool {
	o, handled := e.object("sell", true)
	if o < 0 {
		return handled
	}
	e.g.Print("No-one is interested in buying " + e.g.TheObject(o) + ".\n")
	return true
}

func (e *Engine) cmdAttack() bool {
	n, handled := e.npc("attack", true)
	if n < 0 {
		return handled
	}
	e.sentence(e.g.NPCName(n) + e.sel(" avoids your feeble attempts.\n", " avoids my feeble attempts.\n", " avoids %player%'s feeble attempts.\n"))
	return true
}

func (e *Engine) cmdAttackWith() bool {
	g := e.g
	n, handled := e.npc("attack", true)
	if n < 0 {
		return handled
	}
	o, handled := e.object("attack with", false)
	if o < 0 {
		return handled
	}
	switch {
	case g.S.Objects[o].Position != state.PosHeldPlayer:
		e.notHolding(o)
	case g.IsStatic(o):
		e.sentence(g.TheObject(o) + " is not a weapon.\n")
	case g.Props.Bool("Objects", o, "Weapon"):
		g.Print(e.sel("You swing at ", "I swing at ", "%player% swings at ") + g.NPCName(n) + " with " + g.TheObject(o) +
			e.sel(" but you miss.\n", " but I miss.\n", " but misses.\n"))
	default:
		g.Print("I don't think " + g.TheObject(o) + " would be a very effective weapon.\n")
	}
	return true
}

// cmdVerbObject answers an unknown verb used on something here.
func (e *Engine) cmdVerbObject() bool {
	g := e.g
	found := -1
	for o, ref := range g.ObjectRefs {
		if !ref || !g.S.Objects[o].Seen || !g.IndirectlyInRoom(o, g.S.PlayerRoom) {
			continue
		}
		if found >= 0 {
			return false
		}
		found = o
	}
	if found < 0 {
		return false
	}
	g.Vars.SetRefObject(found)
	g.SetPronounObject(found)
	g.Print("I don't understand what you want me to do with " + g.TheObject(found) + ".\n")
	return true
}

func (e *Engine) cmdVerbNPC() bool {
	g := e.g
	found := -1
	for n, ref := range g.NPCRefs {
		if !ref || !g.S.NPCs[n].Seen || !g.NPCInRoom(n, g.S.PlayerRoom) {
			continue
		}
		if found >= 0 {
			return false
		}
		found = n
	}
	if found < 0 {
		return false
	}
	g.Vars.SetRefCharacter(found)
	g.SetPronounNPC(found)
	g.Print("I don't understand what you want me to do with " + g.NPCName(found) + ".\n")
	return true
}
