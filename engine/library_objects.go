package engine

import (
	"github.com/nathoo/adriftcore/engine/dialogue"
	"github.com/nathoo/adriftcore/engine/state"
)

// Object resource slots.
const (
	resDescription = 0
	resAltDesc     = 1
)

// printContents appends what is in or on o to the current output,
// reporting whether anything was printed.
func (e *Engine) printContents(o int) bool {
	g := e.g
	var text string
	if g.IsContainer(o) {
		if g.IsOpenOrUnclosable(o) {
			text = g.ListIn(o, text)
		} else if g.S.Objects[o].Openness == state.Closed || g.S.Objects[o].Openness == state.Locked {
			text = g.TheObject(o) + " is closed."
		}
	}
	if g.IsSurface(o) {
		text = g.ListOn(o, text)
	}
	if text == "" {
		return false
	}
	g.Filter.NewSentence()
	g.Print(text)
	return true
}

func (e *Engine) cmdExamineObject() bool {
	g := e.g
	o, handled := e.object("examine", true)
	if o < 0 {
		return handled
	}

	described := false
	task := g.Props.Int("Objects", o, "Task")
	alt := task > 0 && task <= g.Tasks() &&
		g.S.Tasks[task-1].Done != g.Props.Bool("Objects", o, "TaskNotDone")
	if alt {
		if s := g.Props.String("Objects", o, "AltDesc"); s != "" {
			g.Print(s)
			described = true
		}
		g.HandleResource("Objects", o, "Res", resAltDesc)
	} else {
		if s := g.Props.String("Objects", o, "Description"); s != "" {
			g.Print(s)
			described = true
		}
		g.HandleResource("Objects", o, "Res", resDescription)
	}

	if name, ok := g.StateName(o); ok && g.Props.Bool("Objects", o, "StateListed") {
		if described {
			g.Print("  ")
		}
		e.sentence(g.TheObject(o) + " is " + name + ".")
		described = true
	}
	if g.IsContainer(o) || g.IsSurface(o) {
		if described {
			g.Print("  ")
		}
		if e.printContents(o) {
			described = true
		}
	}
	if !described {
		g.Print(e.sel("You see nothing special about ", "I see nothing special about ", "%player% sees nothing special about ") + g.TheObject(o) + ".")
	}
	g.Print("\n")
	return true
}

func (e *Engine) cmdExamineNPC() bool {
	g := e.g
	n, handled := e.npc("examine", true)
	if n < 0 {
		return handled
	}
	if s := g.Props.String("NPCs", n, "Descr"); s != "" {
		g.Print(s + "\n")
	} else {
		g.Print(e.sel("You see nothing special about ", "I see nothing special about ", "%player% sees nothing special about ") + g.NPCName(n) + ".\n")
	}
	g.HandleResource("NPCs", n, "Res", 0)
	return true
}

func (e *Engine) cmdExamineSelf() bool {
	g := e.g
	if s := g.Props.String("Globals", "PlayerDesc"); s != "" {
		g.Print(s + "\n")
	} else {
		g.Print(e.sel("You are as well as can be expected.\n", "I am as well as can be expected.\n", "%player% is as well as can be expected.\n"))
	}
	return true
}

// Inventory.

func (e *Engine) cmdInventory() bool {
	g := e.g
	var held, worn []int
	for o, obj := range g.S.Objects {
		switch obj.Position {
		case state.PosHeldPlayer:
			held = append(held, o)
		case state.PosWornPlayer:
			worn = append(worn, o)
		}
	}
	switch {
	case len(held) == 0 && len(worn) == 0:
		g.Print(e.sel("You are carrying nothing.\n", "I am carrying nothing.\n", "%player% is carrying nothing.\n"))
		return true
	case len(held) > 0:
		g.Print(e.sel("You are carrying ", "I am carrying ", "%player% is carrying ") + e.names(held) + ".\n")
	}
	if len(worn) > 0 {
		g.Print(e.sel("You are wearing ", "I am wearing ", "%player% is wearing ") + e.names(worn) + ".\n")
	}
	for _, o := range held {
		if e.printContents(o) {
			g.Print("\n")
		}
	}
	return true
}

// Taking and dropping.

// take moves o to the player, answering why when it can't. It reports
// whether o was taken.
func (e *Engine) take(o int) bool {
	g := e.g
	switch obj := g.S.Objects[o]; {
	case obj.Position == state.PosHeldPlayer:
		g.Print(e.sel("You've already got ", "I've already got ", "%player% has already got ") + g.TheObject(o) + "!\n")
		return false
	case obj.Position == state.PosWornPlayer:
		g.Print(e.sel("You're wearing ", "I'm wearing ", "%player% is wearing ") + g.TheObject(o) + "!\n")
		return false
	case obj.Position == state.PosHeldNPC || obj.Position == state.PosWornNPC:
		e.sentence(g.NPCName(obj.Parent) + " has " + g.TheObject(o) + ".\n")
		return false
	case obj.Position == state.PosPartNPC:
		if obj.Parent == -1 {
			e.sentence(g.TheObject(o) + e.sel(" is part of you!\n", " is part of me!\n", " is part of %player%!\n"))
		} else {
			e.sentence(g.TheObject(o) + " is part of " + g.NPCName(obj.Parent) + ".\n")
		}
		return false
	case g.IsStatic(o):
		g.Print(e.sel("You can't take ", "I can't take ", "%player% can't take ") + g.TheObject(o) + "!\n")
		return false
	}

	if over, portable := e.tooLarge(o); over {
		if !portable {
			e.sentence(g.TheObject(o) + e.sel(" is too large for you to carry.\n", " is too large for me to carry.\n", " is too large for %player% to carry.\n"))
		} else {
			g.Print(e.sel("Your hands are full.\n", "My hands are full.\n", "%player%'s hands are full.\n"))
		}
		return false
	}
	if over, portable := e.tooHeavy(o); over {
		if !portable {
			e.sentence(g.TheObject(o) + e.sel(" is too heavy for you to carry.\n", " is too heavy for me to carry.\n", " is too heavy for %player% to carry.\n"))
		} else {
			g.Print(e.sel("You can't carry that much weight.\n", "I can't carry that much weight.\n", "%player% can't carry that much weight.\n"))
		}
		return false
	}
	g.PlayerGet(o)
	return true
}

func (e *Engine) cmdGet() bool {
	g := e.g
	o, handled := e.object("take", true)
	if o < 0 {
		return handled
	}
	if e.tryGameCommand(o, "get") {
		return true
	}
	if e.take(o) {
		g.Print(e.sel("You take ", "I take ", "%player% takes ") + g.TheObject(o) + ".\n")
	}
	return true
}

func (e *Engine) cmdGetNPC() bool {
	n, handled := e.npc("take", true)
	if n < 0 {
		return handled
	}
	e.sentence(e.g.NPCName(n) + " wouldn't like that.\n")
	return true
}

// takeEach takes every candidate, listing what was taken.
func (e *Engine) takeEach(candidates []int, from string) {
	g := e.g
	var taken []int
	for _, o := range candidates {
		if e.tryGameCommand(o, "get") {
			continue
		}
		if e.take(o) {
			taken = append(taken, o)
		}
	}
	if len(taken) > 0 {
		g.Print(e.sel("You take ", "I take ", "%player% takes ") + e.theNames(taken) + from + ".\n")
	}
}

// theNames lists objects with "the".
func (e *Engine) theNames(objects []int) string {
	var list []string
	for _, o := range objects {
		list = append(list, e.g.TheObject(o))
	}
	return state.ListNames(list)
}

func (e *Engine) cmdGetAll() bool {
	g := e.g
	var candidates []int
	for o := 0; o < g.Objects(); o++ {
		if !g.IsStatic(o) && g.S.Objects[o].Seen && g.DirectlyInRoom(o, g.S.PlayerRoom) {
			candidates = append(candidates, o)
		}
	}
	if len(candidates) == 0 {
		g.Print(e.sel("There is nothing to pick up here.\n", "There is nothing for me to pick up here.\n", "There is nothing for %player% to pick up here.\n"))
		return true
	}
	e.takeEach(candidates, "")
	return true
}

// childrenOf returns the objects directly in or on o.
func (e *Engine) childrenOf(o int) []int {
	var children []int
	for c, obj := range e.g.S.Objects {
		if (obj.Position == state.PosInObject || obj.Position == state.PosOnObject) && obj.Parent == o {
			children = append(children, c)
		}
	}
	return children
}

func (e *Engine) cmdGetFrom() bool {
	g := e.g
	o, handled := e.object("take", true)
	if o < 0 {
		return handled
	}
	obj := g.S.Objects[o]
	if obj.Position != state.PosInObject && obj.Position != state.PosOnObject {
		e.sentence(g.TheObject(o) + " is not in or on anything.\n")
		return true
	}
	if obj.Position == state.PosInObject && !g.IsOpenOrUnclosable(obj.Parent) {
		e.sentence(g.TheObject(obj.Parent) + " is closed.\n")
		return true
	}
	if e.take(o) {
		g.Print(e.sel("You take ", "I take ", "%player% takes ") + g.TheObject(o) + " from " + g.TheObject(obj.Parent) + ".\n")
	}
	return true
}

func (e *Engine) cmdGetAllFrom() bool {
	g := e.g
	o, handled := e.object("empty", true)
	if o < 0 {
		return handled
	}
	if !g.IsContainer(o) && !g.IsSurface(o) {
		g.Print(e.sel("You can't take anything from ", "I can't take anything from ", "%player% can't take anything from ") + g.TheObject(o) + ".\n")
		return true
	}
	if g.IsContainer(o) && !g.IsOpenOrUnclosable(o) {
		e.sentence(g.TheObject(o) + " is closed.\n")
		return true
	}
	children := e.childrenOf(o)
	if len(children) == 0 {
		g.Print("There is nothing in or on " + g.TheObject(o) + ".\n")
		return true
	}
	e.takeEach(children, " from "+g.TheObject(o))
	return true
}

func (e *Engine) cmdDrop() bool {
	g := e.g
	o, handled := e.object("drop", true)
	if o < 0 {
		return handled
	}
	if e.tryGameCommand(o, "drop") {
		return true
	}
	switch g.S.Objects[o].Position {
	case state.PosHeldPlayer:
	case state.PosWornPlayer:
		g.Print(e.sel("You are wearing ", "I am wearing ", "%player% is wearing ") + g.TheObject(o) + ".  Take it off first.\n")
		return true
	default:
		e.notHolding(o)
		return true
	}
	g.ToRoom(o, g.S.PlayerRoom)
	g.Print(e.sel("You drop ", "I drop ", "%player% drops ") + g.TheObject(o) + ".\n")
	return true
}

func (e *Engine) cmdDropAll() bool {
	g := e.g
	var dropped []int
	for o, obj := range g.S.Objects {
		if obj.Position != state.PosHeldPlayer || e.tryGameCommand(o, "drop") {
			continue
		}
		g.ToRoom(o, g.S.PlayerRoom)
		dropped = append(dropped, o)
	}
	if len(dropped) == 0 {
		g.Print(e.sel("You are not carrying anything to drop.\n", "I am not carrying anything to drop.\n", "%player% is not carrying anything to drop.\n"))
		return true
	}
	g.Print(e.sel("You drop ", "I drop ", "%player% drops ") + e.theNames(dropped) + ".\n")
	return true
}

// Putting things in and on others.

func (e *Engine) cmdPutIn() bool {
	g := e.g
	o, handled := e.object("put", true)
	if o < 0 {
		return handled
	}
	c, handled := e.secondObject("put "+g.TheObject(o)+" in", "What do you want to put "+g.TheObject(o)+" in?\n")
	if c < 0 {
		return handled
	}
	switch {
	case g.S.Objects[o].Position != state.PosHeldPlayer:
		e.notHolding(o)
	case o == c:
		g.Print(e.sel("You can't put ", "I can't put ", "%player% can't put ") + g.TheObject(o) + " inside itself!\n")
	case !g.IsContainer(c):
		g.Print(e.sel("You can't put anything in ", "I can't put anything in ", "%player% can't put anything in ") + g.TheObject(c) + ".\n")
	case !g.IsOpenOrUnclosable(c):
		e.sentence(g.TheObject(c) + " is closed.\n")
	case g.Size(o) > g.ContainerMaxSize(c):
		e.sentence(g.TheObject(o) + " is too big to fit inside " + g.TheObject(c) + ".\n")
	case len(e.childrenIn(c)) >= g.ContainerCapacity(c):
		e.sentence(g.TheObject(c) + " is full.\n")
	default:
		g.MoveInto(o, c)
		g.Print(e.sel("You put ", "I put ", "%player% puts ") + g.TheObject(o) + " inside " + g.TheObject(c) + ".\n")
	}
	return true
}

func (e *Engine) childrenIn(c int) []int {
	var in []int
	for _, o := range e.childrenOf(c) {
		if e.g.S.Objects[o].Position == state.PosInObject {
			in = append(in, o)
		}
	}
	return in
}

func (e *Engine) cmdPutOn() bool {
	g := e.g
	o, handled := e.object("put", true)
	if o < 0 {
		return handled
	}
	s, handled := e.secondObject("put "+g.TheObject(o)+" on", "What do you want to put "+g.TheObject(o)+" on?\n")
	if s < 0 {
		return handled
	}
	switch {
	case g.S.Objects[o].Position != state.PosHeldPlayer:
		e.notHolding(o)
	case o == s:
		g.Print(e.sel("You can't put ", "I can't put ", "%player% can't put ") + g.TheObject(o) + " on itself!\n")
	case !g.IsSurface(s):
		g.Print(e.sel("You can't put anything on ", "I can't put anything on ", "%player% can't put anything on ") + g.TheObject(s) + ".\n")
	default:
		g.MoveOnto(o, s)
		g.Print(e.sel("You put ", "I put ", "%player% puts ") + g.TheObject(o) + " on " + g.TheObject(s) + ".\n")
	}
	return true
}

// Opening, closing and locking.

func (e *Engine) cmdOpen() bool {
	g := e.g
	o, handled := e.object("open", true)
	if o < 0 {
		return handled
	}
	if e.tryGameCommand(o, "open") {
		return true
	}
	obj := &g.S.Objects[o]
	switch obj.Openness {
	case state.Closed:
		obj.Openness = state.Open
		g.Print(e.sel("You open ", "I open ", "%player% opens ") + g.TheObject(o) + ".\n")
		if g.IsContainer(o) && e.printContents(o) {
			g.Print("\n")
		}
	case state.Open:
		e.sentence(g.TheObject(o) + " is already open!\n")
	case state.Locked:
		e.sentence(g.TheObject(o) + " is locked!\n")
	default:
		g.Print(e.sel("You can't open ", "I can't open ", "%player% can't open ") + g.TheObject(o) + "!\n")
	}
	return true
}

func (e *Engine) cmdClose() bool {
	g := e.g
	o, handled := e.object("close", true)
	if o < 0 {
		return handled
	}
	if e.tryGameCommand(o, "close") {
		return true
	}
	obj := &g.S.Objects[o]
	switch obj.Openness {
	case state.Open:
		obj.Openness = state.Closed
		g.Print(e.sel("You close ", "I close ", "%player% closes ") + g.TheObject(o) + ".\n")
	case state.Closed, state.Locked:
		e.sentence(g.TheObject(o) + " is already closed!\n")
	default:
		g.Print(e.sel("You can't close ", "I can't close ", "%player% can't close ") + g.TheObject(o) + "!\n")
	}
	return true
}

// keyOf returns the object that locks o, or -1.
func (e *Engine) keyOf(o int) int {
	key := e.g.Props.Int("Objects", o, "Key")
	if key < 0 {
		return -1
	}
	return e.g.DynamicObject(key)
}

// lock locks or unlocks o with key, which the player must hold.
func (e *Engine) lock(o, key int, lock bool) {
	g := e.g
	verb := "unlock"
	if lock {
		verb = "lock"
	}
	obj := &g.S.Objects[o]
	want := e.keyOf(o)
	switch {
	case want < 0:
		g.Print(e.sel("You can't "+verb+" ", "I can't "+verb+" ", "%player% can't "+verb+" ") + g.TheObject(o) + "!\n")
	case lock && obj.Openness == state.Locked:
		e.sentence(g.TheObject(o) + " is already locked!\n")
	case lock && obj.Openness == state.Open:
		g.Print(e.sel("You can't lock ", "I can't lock ", "%player% can't lock ") + g.TheObject(o) + " while it is open.\n")
	case !lock && obj.Openness != state.Locked:
		e.sentence(g.TheObject(o) + " is not locked!\n")
	case !g.IndirectlyHeldByPlayer(key):
		e.notHolding(key)
	case key != want:
		g.Print(e.sel("You can't "+verb+" ", "I can't "+verb+" ", "%player% can't "+verb+" ") + g.TheObject(o) + " with " + g.TheObject(key) + "!\n")
	default:
		if lock {
			obj.Openness = state.Locked
		} else {
			obj.Openness = state.Closed
		}
		g.Print(e.sel("You "+verb+" ", "I "+verb+" ", "%player% "+verb+"s ") + g.TheObject(o) + " with " + g.TheObject(key) + ".\n")
	}
}

func (e *Engine) cmdLockWith(lock bool) bool {
	g := e.g
	verb := "unlock"
	if lock {
		verb = "lock"
	}
	o, handled := e.object(verb, true)
	if o < 0 {
		return handled
	}
	key, handled := e.secondObject(verb+" "+g.TheObject(o)+" with", "What do you want to "+verb+" "+g.TheObject(o)+" with?\n")
	if key < 0 {
		return handled
	}
	e.lock(o, key, lock)
	return true
}

// cmdLock locks or unlocks with whatever key the player carries.
func (e *Engine) cmdLock(lock bool) bool {
	g := e.g
	verb := "unlock"
	if lock {
		verb = "lock"
	}
	o, handled := e.object(verb, true)
	if o < 0 {
		return handled
	}
	if e.tryGameCommand(o, verb) {
		return true
	}
	key := e.keyOf(o)
	if key < 0 || !g.IndirectlyHeldByPlayer(key) {
		g.Print(e.sel("You need something to "+verb+" ", "I need something to "+verb+" ", "%player% needs something to "+verb+" ") + g.TheObject(o) + " with.\n")
		return true
	}
	g.Print("(with " + g.TheObject(key) + ")\n")
	e.lock(o, key, lock)
	return true
}

// Using things.

func (e *Engine) cmdRead() bool {
	g := e.g
	o, handled := e.object("read", true)
	if o < 0 {
		return handled
	}
	if !g.Props.Bool("Objects", o, "Readable") {
		g.Print(e.sel("You can't read ", "I can't read ", "%player% can't read ") + g.TheObject(o) + "!\n")
		return true
	}
	if text := g.Props.String("Objects", o, "ReadText"); text != "" {
		g.Print(text + "\n")
		return true
	}
	g.Print("There is nothing written on " + g.TheObject(o) + ".\n")
	return true
}

func (e *Engine) cmdEat() bool {
	g := e.g
	o, handled := e.object("eat", true)
	if o < 0 {
		return handled
	}
	if e.tryGameCommand(o, "eat") {
		return true
	}
	switch {
	case !g.Props.Bool("Objects", o, "Edible"):
		g.Print(e.sel("You can't eat ", "I can't eat ", "%player% can't eat ") + g.TheObject(o) + ".\n")
	case !g.IndirectlyHeldByPlayer(o):
		e.notHolding(o)
	default:
		g.Hide(o)
		g.Print(e.sel("You eat ", "I eat ", "%player% eats ") + g.TheObject(o) + ".  Not bad.\n")
	}
	return true
}

func (e *Engine) cmdWear() bool {
	g := e.g
	o, handled := e.object("wear", true)
	if o < 0 {
		return handled
	}
	if e.tryGameCommand(o, "wear") {
		return true
	}
	switch {
	case !g.Props.Bool("Objects", o, "Wearable"):
		g.Print(e.sel("You can't wear ", "I can't wear ", "%player% can't wear ") + g.TheObject(o) + ".\n")
	case g.S.Objects[o].Position == state.PosWornPlayer:
		g.Print(e.sel("You are already wearing ", "I am already wearing ", "%player% is already wearing ") + g.TheObject(o) + "!\n")
	case g.S.Objects[o].Position != state.PosHeldPlayer:
		e.notHolding(o)
	default:
		g.PlayerWear(o)
		g.Print(e.sel("You put on ", "I put on ", "%player% puts on ") + g.TheObject(o) + ".\n")
	}
	return true
}

func (e *Engine) cmdRemove() bool {
	g := e.g
	o, handled := e.object("remove", true)
	if o < 0 {
		return handled
	}
	if e.tryGameCommand(o, "remove") {
		return true
	}
	if g.S.Objects[o].Position != state.PosWornPlayer {
		g.Print(e.sel("You are not wearing ", "I am not wearing ", "%player% is not wearing ") + g.TheObject(o) + "!\n")
		return true
	}
	g.PlayerGet(o)
	g.Print(e.sel("You take off ", "I take off ", "%player% takes off ") + g.TheObject(o) + ".\n")
	return true
}

func (e *Engine) cmdRemoveAll() bool {
	g := e.g
	var removed []int
	for o, obj := range g.S.Objects {
		if obj.Position != state.PosWornPlayer || e.tryGameCommand(o, "remove") {
			continue
		}
		g.PlayerGet(o)
		removed = append(removed, o)
	}
	if len(removed) == 0 {
		g.Print(e.sel("You are not wearing anything that can be removed.\n", "I am not wearing anything that can be removed.\n", "%player% is not wearing anything that can be removed.\n"))
		return true
	}
	g.Print(e.sel("You take off ", "I take off ", "%player% takes off ") + e.theNames(removed) + ".\n")
	return true
}

func (e *Engine) cmdGive() bool {
	g := e.g
	o, handled := e.object("give", true)
	if o < 0 {
		return handled
	}
	n, handled := e.npc("give "+g.TheObject(o)+" to", false)
	if n < 0 {
		return handled
	}
	if g.S.Objects[o].Position != state.PosHeldPlayer {
		e.notHolding(o)
		return true
	}
	e.sentence(g.NPCName(n) + " doesn't want " + g.TheObject(o) + ".\n")
	return true
}

// Postures.

// SitLie bits.
const (
	sitStandMask = 0x01
	lieMask      = 0x02
)

func postureWords(posture int) (verb, third string) {
	switch posture {
	case state.Sitting:
		return "sit", "sits"
	case state.Lying:
		return "lie", "lies"
	}
	return "stand", "stands"
}

func (e *Engine) cmdPostureOn(posture int) bool {
	g := e.g
	verb, _ := postureWords(posture)
	o, handled := e.object(verb+" on", true)
	if o < 0 {
		return handled
	}
	mask := sitStandMask
	if posture == state.Lying {
		mask = lieMask
	}
	fits := g.Props.Int("Objects", o, "SitLie")&mask != 0
	if !fits {
		g.Print(e.sel("You can't "+verb+" on ", "I can't "+verb+" on ", "%player% can't "+verb+" on ") + g.TheObject(o) + ".\n")
		return true
	}
	return e.cmdPosture(posture, o)
}

// cmdPosture changes how the player rests, on object parent or, with -1,
// on the floor.
func (e *Engine) cmdPosture(posture, parent int) bool {
	g := e.g
	verb, third := postureWords(posture)
	if g.S.PlayerPosition == posture && g.S.PlayerParent == parent {
		ing := map[int]string{state.Standing: "standing", state.Sitting: "sitting", state.Lying: "lying"}[posture]
		g.Print(e.sel("You are already "+ing, "I am already "+ing, "%player% is already "+ing) + e.where(parent) + "!\n")
		return true
	}
	g.S.PlayerPosition = posture
	g.S.PlayerParent = parent
	if posture == state.Standing && parent == -1 {
		g.Print(e.sel("You stand up.\n", "I stand up.\n", "%player% stands up.\n"))
		return true
	}
	g.Print(e.sel("You "+verb, "I "+verb, "%player% "+third) + e.where(parent) + ".\n")
	return true
}

func (e *Engine) where(parent int) string {
	if parent < 0 {
		return " on the floor"
	}
	return " on " + e.g.TheObject(parent)
}

// Conversation.

func (e *Engine) cmdAsk() bool {
	g := e.g
	n, handled := e.npc("ask", true)
	if n < 0 {
		return handled
	}
	if reply, ok := dialogue.Reply(g, n, g.Vars.RefText()); ok {
		g.Print(reply + "\n")
		return true
	}
	e.sentence(g.NPCName(n) + " shrugs.\n")
	return true
}
