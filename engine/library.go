package engine

import (
	"errors"

	"github.com/nathoo/adriftcore/engine/resolve"
	"github.com/nathoo/adriftcore/engine/state"
	"github.com/nathoo/adriftcore/types"
)

// command pairs a library pattern with its handler. A handler returning
// false passes the command on to later patterns.
type command struct {
	pattern string
	handler func(e *Engine) bool
}

// runTable offers input to each command of a table in order.
func (e *Engine) runTable(table []command, input string) bool {
	for _, c := range table {
		if e.match(c.pattern, input) && c.handler(e) {
			e.g.Tracef(types.TraceLibrary, "%q handled by %q", input, c.pattern)
			return true
		}
	}
	return false
}

// Exit directions, in story file order.
var directions = []string{
	"north", "east", "south", "west", "up", "down", "in", "out",
	"northeast", "southeast", "southwest", "northwest",
}

func goTo(dir int) func(*Engine) bool {
	return func(e *Engine) bool { return e.cmdGo(dir) }
}

var moveCommands4 = []command{
	{"{go} {to} {the} [north/n]", goTo(0)},
	{"{go} {to} {the} [east/e]", goTo(1)},
	{"{go} {to} {the} [south/s]", goTo(2)},
	{"{go} {to} {the} [west/w]", goTo(3)},
	{"{go} {to} {the} [up/u]", goTo(4)},
	{"{go} {to} {the} [down/d]", goTo(5)},
	{"{go} {to} {the} [in]", goTo(6)},
	{"{go} {to} {the} [out/o]", goTo(7)},
}

var moveCommands8 = append(append([]command(nil), moveCommands4...),
	command{"{go} {to} {the} [northeast/north-east/ne]", goTo(8)},
	command{"{go} {to} {the} [southeast/south-east/se]", goTo(9)},
	command{"{go} {to} {the} [northwest/north-west/nw]", goTo(11)},
	command{"{go} {to} {the} [southwest/south-west/sw]", goTo(10)},
)

// moveCommands returns the movement commands for the story's compass.
func (e *Engine) moveCommands() []command {
	if e.g.Props.Bool("Globals", "EightPointCompass") {
		return moveCommands8
	}
	return moveCommands4
}

// generalCommands change the game.
var generalCommands []command

// standardCommands only respond.
var standardCommands []command

func init() {
	generalCommands = []command{
		{"[inventory/inv/i]", (*Engine).cmdInventory},
		{"[x/ex/exam/examine/l/look] {{at} {the} [room/location]}", (*Engine).cmdLook},
		{"[x/ex/exam/examine/look at/look] %object%", (*Engine).cmdExamineObject},
		{"[x/ex/exam/examine/look at/look] %character%", (*Engine).cmdExamineNPC},
		{"[x/ex/exam/examine/look at/look] [me/self/myself]", (*Engine).cmdExamineSelf},

		{"[get/take/pick up] %object%", (*Engine).cmdGet},
		{"pick %object% up", (*Engine).cmdGet},
		{"[get/take/pick up] %character%", (*Engine).cmdGetNPC},
		{"[get/take] all", (*Engine).cmdGetAll},
		{"pick [up all/all up]", (*Engine).cmdGetAll},
		{"[get/take/remove] %object% from %text%", (*Engine).cmdGetFrom},
		{"[[get/take/remove] all from/empty] %object%", (*Engine).cmdGetAllFrom},
		{"[drop/put down] %object%", (*Engine).cmdDrop},
		{"put %object% down", (*Engine).cmdDrop},
		{"drop all", (*Engine).cmdDropAll},
		{"put [down all/all down]", (*Engine).cmdDropAll},

		{"put %object% [on/onto/on top of] %text%", (*Engine).cmdPutOn},
		{"put %object% [in/into/inside] %text%", (*Engine).cmdPutIn},
		{"open %object%", (*Engine).cmdOpen},
		{"close %object%", (*Engine).cmdClose},
		{"unlock %object% with %text%", func(e *Engine) bool { return e.cmdLockWith(false) }},
		{"lock %object% with %text%", func(e *Engine) bool { return e.cmdLockWith(true) }},
		{"unlock %object%", func(e *Engine) bool { return e.cmdLock(false) }},
		{"lock %object%", func(e *Engine) bool { return e.cmdLock(true) }},
		{"read %object%", (*Engine).cmdRead},
		{"give %object% to %character%", (*Engine).cmdGive},
		{"sit [on/in] %object%", func(e *Engine) bool { return e.cmdPostureOn(state.Sitting) }},
		{"stand on %object%", func(e *Engine) bool { return e.cmdPostureOn(state.Standing) }},
		{"[lie/lay] on %object%", func(e *Engine) bool { return e.cmdPostureOn(state.Lying) }},
		{"sit {down/on {the} [ground/floor]}", func(e *Engine) bool { return e.cmdPosture(state.Sitting, -1) }},
		{"stand {up/on {the} [ground/floor]}", func(e *Engine) bool { return e.cmdPosture(state.Standing, -1) }},
		{"[lie/lay] {down/on {the} [ground/floor]}", func(e *Engine) bool { return e.cmdPosture(state.Lying, -1) }},
		{"eat %object%", (*Engine).cmdEat},

		{"[wear/put on/don] %object%", (*Engine).cmdWear},
		{"put %object% on", (*Engine).cmdWear},
		{"[remove/take off/doff] %object%", (*Engine).cmdRemove},
		{"take %object% off", (*Engine).cmdRemove},
		{"[remove/take off/doff] all", (*Engine).cmdRemoveAll},
		{"take all off", (*Engine).cmdRemoveAll},

		{"ask %character% about %text%", (*Engine).cmdAsk},
		{"kiss %character%", (*Engine).cmdKissNPC},
		{"[attack/hit/kill/slap/shoot/stab] %character% with %object%", (*Engine).cmdAttackWith},
		{"[attack/hit/kill/slap/shoot/stab/punch/kick] %character%", (*Engine).cmdAttack},

		{"[exit/exits]", (*Engine).cmdExits},
		{"[goto/go {to}] *", (*Engine).cmdExits},
		{"[wait/z]", (*Engine).cmdWait},
		{"save", (*Engine).cmdSave},
		{"[restore/load]", (*Engine).cmdRestore},
		{"restart", (*Engine).cmdRestart},
		{"[again/g]", (*Engine).cmdAgain},
		{"[quit/q]", (*Engine).cmdQuit},
		{"turns", (*Engine).cmdTurns},
		{"score", (*Engine).cmdScore},
		{"undo", (*Engine).cmdUndoCommand},
		{"[hint/hints]", (*Engine).cmdHints},
		{"verbose", func(e *Engine) bool { return e.cmdVerbose(true) }},
		{"brief", func(e *Engine) bool { return e.cmdVerbose(false) }},
		{"[notify/notification] on", func(e *Engine) bool { return e.cmdNotify(true) }},
		{"[notify/notification] off", func(e *Engine) bool { return e.cmdNotify(false) }},
		{"[notify/notification]", (*Engine).cmdNotifyQuery},
		{"help", (*Engine).cmdHelp},
		{"[gpl/license]", (*Engine).cmdLicense},
		{"[about/info/information/author]", (*Engine).cmdInformation},
		{"[clear/cls/clr]", (*Engine).cmdClear},
		{"version", (*Engine).cmdVersion},

		{"[locate/where [is/are]/where/find] %object%", (*Engine).cmdLocateObject},
		{"[locate/where [is/are]/where/find] %character%", (*Engine).cmdLocateNPC},
	}

	standardCommands = []command{
		{"[get/take/pick up] *", what("Take")},
		{"open *", what("Open")},
		{"close *", what("Close")},
		{"give *", what("Give")},
		{"[remove/take off/doff] *", what("Remove")},
		{"[drop/put down] *", what("Drop")},
		{"[wear/put on/don] *", what("Wear")},
		{"[shit/fuck/bastard/cunt/crap/hell/shag/bollocks/bugger] *",
			say("I really don't think there's any need for language like that!\n")},
		{"[x/examine/look at/look] *", perspective("You see no such thing.\n", "I see no such thing.\n", "%player% sees no such thing.\n")},
		{"[locate/where [is/are]/where/find] *", (*Engine).cmdLocateOther},
		{"[cp/mv/ln/ls] *", say("This isn't Unix you know!\n")},
		{"dir *", say("This isn't Dos you know!\n")},
		{"ask %object% *", (*Engine).cmdAskObject},
		{"block %object%", cantDo("block")},
		{"block *", cantDoThat("block")},
		{"[break/destroy/smash] %character%", (*Engine).cmdBreakNPC},
		{"[break/destroy/smash] %object%", (*Engine).cmdBreakObject},
		{"buy *", say("Nothing is for sale.\n")},
		{"clean %object%", cantDo("clean")},
		{"clean *", cantDoThat("clean")},
		{"climb %object%", cantDo("climb")},
		{"climb *", cantDoThat("climb")},
		{"cry *", say("There's no need for that!\n")},
		{"cut %object%", cantDo("cut")},
		{"cut *", cantDoThat("cut")},
		{"dance *", perspective("You do a little dance.\n", "I do a little dance.\n", "%player% does a little dance.\n")},
		{"feed %character%", (*Engine).cmdFeedNPC},
		{"feed %object%", (*Engine).cmdFeedObject},
		{"feed *", say("There is nothing worth feeding here.\n")},
		{"feel *", perspective("You feel nothing out of the ordinary.\n", "I feel nothing out of the ordinary.\n", "%player% feels nothing out of the ordinary.\n")},
		{"fix %object%", dontThink("fix")},
		{"fix *", dontThinkThat("fix")},
		{"fly *", perspective("You can't fly.\n", "I can't fly.\n", "%player% can't fly.\n")},
		{"hint *", say("You're just going to have to work it out for yourself...\n")},
		{"hit %object%", nothingHappens("hit", "hits")},
		{"hit *", nothingHappensHere("hit", "hits")},
		{"hum *", perspective("You hum a little tune.\n", "I hum a little tune.\n", "%player% hums a little tune.\n")},
		{"jump *", say("Wheee-boinng.\n")},
		{"kick %object%", nothingHappens("kick", "kicks")},
		{"kick *", nothingHappensHere("kick", "kicks")},
		{"kiss %object%", (*Engine).cmdKissObject},
		{"kiss *", say("I'm not sure it would appreciate that.\n")},
		{"light %object%", cantDo("light")},
		{"light *", cantDoThat("light")},
		{"listen *", perspective("You hear nothing out of the ordinary.\n", "I hear nothing out of the ordinary.\n", "%player% hears nothing out of the ordinary.\n")},
		{"mend %object%", dontThink("mend")},
		{"mend *", dontThinkThat("mend")},
		{"move %object%", cantDo("move")},
		{"move *", cantDoThat("move")},
		{"please *", perspective("Your kindness gets you nowhere.\n", "My kindness gets me nowhere.\n", "%player%'s kindness gets nowhere.\n")},
		{"press %object%", nothingHappens("press", "presses")},
		{"press *", nothingHappensHere("press", "presses")},
		{"pull %object%", nothingHappens("pull", "pulls")},
		{"pull *", nothingHappensHere("pull", "pulls")},
		{"punch *", say("Who do you think you are, Mike Tyson?\n")},
		{"push %object%", nothingHappens("push", "pushes")},
		{"push *", nothingHappensHere("push", "pushes")},
		{"repair %object%", dontThink("repair")},
		{"repair *", dontThinkThat("repair")},
		{"run *", perspective("Why would you want to run?\n", "Why would I want to run?\n", "Why would %player% want to run?\n")},
		{"say *", (*Engine).cmdSay},
		{"sell %object%", (*Engine).cmdSellObject},
		{"sell *", say("No-one is interested in buying.\n")},
		{"shake %object%", nothingHappens("shake", "shakes")},
		{"shake *", nothingHappensHere("shake", "shakes")},
		{"shout *", say("Aaarrrrgggghhhhhh!\n")},
		{"sing *", perspective("You sing a little song.\n", "I sing a little song.\n", "%player% sings a little song.\n")},
		{"sleep *", say("Zzzzz.  Bored are you?\n")},
		{"smell %character%", (*Engine).cmdSmellNPC},
		{"smell %object%", (*Engine).cmdSmellObject},
		{"suck %object%", cantDo("suck")},
		{"suck *", cantDoThat("suck")},
		{"talk *", perspective("No-one listens to your rabblings.\n", "No-one listens to my rabblings.\n", "No-one listens to %player%'s rabblings.\n")},
		{"thank *", say("You're welcome.\n")},
		{"turn %object%", cantDo("turn")},
		{"turn *", cantDoThat("turn")},
		{"unblock %object%", cantDo("unblock")},
		{"unblock *", cantDoThat("unblock")},
		{"wash %object%", cantDo("wash")},
		{"wash *", cantDoThat("wash")},
		{"whistle *", perspective("You whistle a little tune.\n", "I whistle a little tune.\n", "%player% whistles a little tune.\n")},
		{"[why/when/what/can/how] *", (*Engine).cmdInterrogation},
		{"xyzzy *", say("I'm sorry, but XYZZY doesn't do anything special in this game!\n")},
		{"yes *", say("That's interesting, but it doesn't mean much.\n")},
		{"* %object%", (*Engine).cmdVerbObject},
		{"* %character%", (*Engine).cmdVerbNPC},
	}
}

// object narrows the command's objects to one for verb. A negative
// object means the command is over; handled then says whether it was
// answered. Quiet lookups stay silent when nothing is here, so later
// commands can try the input.
func (e *Engine) object(verb string, quiet bool) (o int, handled bool) {
	g := e.g
	o, err := resolve.Object(g, verb)
	var nf *resolve.NotFoundError
	switch {
	case err == nil:
		if g.IsObjectPronoun {
			g.Print("(" + g.TheObject(o) + ")\n")
		}
		return o, true
	case quiet && errors.As(err, &nf):
		return -1, false
	}
	g.Print(err.Error() + "\n")
	return -1, true
}

// npc is object for characters.
func (e *Engine) npc(verb string, quiet bool) (n int, handled bool) {
	g := e.g
	n, err := resolve.NPC(g, verb)
	var nf *resolve.NotFoundError
	switch {
	case err == nil:
		if g.IsNPCPronoun {
			g.Print("(" + g.NPCName(n) + ")\n")
		}
		return n, true
	case quiet && errors.As(err, &nf):
		return -1, false
	}
	g.Print(err.Error() + "\n")
	return -1, true
}

// secondObject resolves the object named by the command's free text, as
// in "put the ball in the box". prompt is printed when the text names no
// object at all.
func (e *Engine) secondObject(verb, prompt string) (o int, handled bool) {
	if !e.match("%object%", e.g.Vars.RefText()) {
		e.g.Print(prompt)
		return -1, true
	}
	return e.object(verb, false)
}

// sel picks the response for the story's perspective.
func (e *Engine) sel(second, first, third string) string {
	return e.g.Select(second, first, third)
}

// sentence starts a new sentence with s.
func (e *Engine) sentence(s string) {
	e.g.Filter.NewSentence()
	e.g.Print(s)
}

func (e *Engine) notHolding(o int) {
	e.g.Print(e.sel("You are not holding ", "I am not holding ", "%player% is not holding ") + e.g.TheObject(o) + ".\n")
}

// names lists objects with their articles.
func (e *Engine) names(objects []int) string {
	var list []string
	for _, o := range objects {
		list = append(list, e.g.AnObject(o))
	}
	return state.ListNames(list)
}

// carriedLimit converts a stored limit to the largest total the player
// can carry.
func carriedLimit(stored int) int {
	limit := stored / 10
	for i := stored % 10; i > 0; i-- {
		limit *= 3
	}
	return limit
}

// overLimit reports whether taking o would exceed the player's limit for
// the measure, and whether o could be carried at all.
func (e *Engine) overLimit(o int, key string, measure func(int) int) (over, portable bool) {
	g := e.g
	limit := carriedLimit(g.Props.Int("Globals", key))
	total := 0
	for i, obj := range g.S.Objects {
		if obj.Position == state.PosHeldPlayer || obj.Position == state.PosWornPlayer {
			total += measure(i)
		}
	}
	m := measure(o)
	return total+m > limit, m <= limit
}

func (e *Engine) tooHeavy(o int) (bool, bool) { return e.overLimit(o, "MaxWt", e.g.Weight) }
func (e *Engine) tooLarge(o int) (bool, bool) { return e.overLimit(o, "MaxSize", e.g.Size) }

// tryGameCommand offers "verb object" to the story's tasks, so a story
// can take over a library action.
func (e *Engine) tryGameCommand(o int, verb string) bool {
	g := e.g
	return e.runTaskCommands(verb+" "+g.Props.String("Objects", o, "Prefix")+" "+g.Props.String("Objects", o, "Short"), true)
}

func say(text string) func(*Engine) bool {
	return func(e *Engine) bool {
		e.g.Print(text)
		return true
	}
}

func perspective(second, first, third string) func(*Engine) bool {
	return func(e *Engine) bool {
		e.g.Print(e.sel(second, first, third))
		return true
	}
}

func what(verb string) func(*Engine) bool {
	return say(verb + " what?\n")
}
