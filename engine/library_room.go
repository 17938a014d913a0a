package engine

import (
	"github.com/nathoo/adriftcore/engine/events"
	"github.com/nathoo/adriftcore/engine/state"
	"github.com/nathoo/adriftcore/types"
)

// Alternate room description display modes.
const (
	altBeforeLong = 0
	altReplace    = 1
	altAfterLong  = 2
)

func (e *Engine) printRoomName(room int) {
	g := e.g
	g.Filter.PrintTag(types.TagBold)
	g.Print(g.RoomName(room))
	g.Filter.PrintTag(types.TagEndBold)
	g.Print("\n")
}

// roomText collects the pieces of a room description, two spaces apart.
type roomText struct {
	g         *state.Game
	described bool
}

func (t *roomText) add(s string) {
	if s == "" {
		return
	}
	if t.described {
		t.g.Print("  ")
	}
	t.g.Print(s)
	t.described = true
}

// printRoomDescription prints a room's long description as its
// alternates change it, any running events' look text, and what is here.
func (e *Engine) printRoomDescription(room int) {
	g := e.g
	text := &roomText{g: g}
	showObjects, printing := true, true
	alts := g.Props.Count("Rooms", room, "Alts")

	// alt applies one alternate of a display mode, reporting whether it
	// ends the description.
	alt := func(a int) bool {
		key := func(name string) []any { return []any{"Rooms", room, "Alts", a, name} }
		mode := g.Props.Int(key("DisplayRoom")...)
		if !g.PassAltRoom(room, a) {
			text.add(g.Props.String(key("M2")...))
			g.HandleResource(key("Res2")...)
			return false
		}
		text.add(g.Props.String(key("M1")...))
		g.HandleResource(key("Res1")...)
		if g.Props.Int(key("HideObjects")...) == 1 {
			showObjects = false
		}
		return mode != altAfterLong
	}

	// 1. Alternates shown before the long description.
	for a := 0; a < alts && printing; a++ {
		if g.Props.Int("Rooms", room, "Alts", a, "DisplayRoom") == altBeforeLong && alt(a) {
			printing = false
		}
	}

	// 2. The long description.
	if printing {
		text.add(g.Props.String("Rooms", room, "Long"))
		g.HandleResource("Rooms", room, "Res")
	}

	// 3. Replacing alternates, then those shown after.
	for mode := altReplace; mode <= altAfterLong && printing; mode++ {
		for a := 0; a < alts && printing; a++ {
			if g.Props.Int("Rooms", room, "Alts", a, "DisplayRoom") == mode && alt(a) {
				printing = false
			}
		}
	}

	// 4. Running events seen from here.
	for ev := 0; ev < g.Events(); ev++ {
		if look, ok := events.LookText(g, ev); ok {
			text.add(look)
		}
	}
	if text.described {
		g.Print("\n")
	}

	if showObjects {
		e.printRoomContents(room)
	}
}

// printRoomContents lists the objects and characters in a room.
func (e *Engine) printRoomContents(room int) {
	g := e.g

	// Objects with their own in-room descriptions.
	text := &roomText{g: g}
	var listed []int
	for o := 0; o < g.Objects(); o++ {
		if !g.DirectlyInRoom(o, room) {
			continue
		}
		desc := g.Props.String("Objects", o, "InRoomDesc")
		if g.ShowsInitialDescription(o) && desc != "" {
			if !text.described {
				g.Print("\n")
			}
			text.add(desc)
			continue
		}
		if g.Props.Bool("Objects", o, "ListFlag") == g.IsStatic(o) {
			listed = append(listed, o)
		}
	}
	if text.described {
		g.Print("\n")
	}

	// Everything else lying about.
	if len(listed) > 0 {
		g.Print("\nAlso here is " + e.names(listed) + ".\n")
	}

	// Characters with their own descriptions, then those that are just
	// "here".
	text = &roomText{g: g}
	var here []string
	for n := 0; n < g.NPCs(); n++ {
		if !g.NPCInRoom(n, room) {
			continue
		}
		switch desc := g.Props.String("NPCs", n, "InRoomText"); desc {
		case "":
		case "#":
			here = append(here, g.NPCName(n))
		default:
			if !text.described {
				g.Print("\n")
			}
			text.add(desc)
		}
	}
	if text.described {
		g.Print("\n")
	}
	if len(here) > 0 {
		g.Print("\n")
		g.Filter.NewSentence()
		verb := " is here"
		if len(here) > 1 {
			verb = " are here"
		}
		g.Print(state.ListNames(here) + verb + ".\n")
	}
}

// canGo reports whether an exit's restriction lets the player through.
func (e *Engine) canGo(room, dir int) bool {
	g := e.g
	key := func(name string) int { return g.Props.Int("Rooms", room, "Exits", dir, name) }
	restriction := key("Var1") - 1
	if restriction < 0 {
		return true
	}
	switch key("Var3") {
	case 0:
		if restriction >= g.Tasks() {
			return true
		}
		return (key("Var2") != 0) != g.S.Tasks[restriction].Done
	case 1:
		o := g.StatefulObject(restriction)
		if o < 0 {
			return true
		}
		return g.ObjectStateIs(o, key("Var2"))
	}
	return true
}

// exits returns the directions the player can leave room by.
func (e *Engine) exits(room int) []string {
	g := e.g
	var dirs []string
	for dir := 0; dir < e.compassPoints(); dir++ {
		if g.Props.Int("Rooms", room, "Exits", dir, "Dest") > 0 && e.canGo(room, dir) {
			dirs = append(dirs, directions[dir])
		}
	}
	return dirs
}

func (e *Engine) cantGoAnywhere() {
	e.g.Print(e.sel("You can't go in any direction!\n", "I can't go in any direction!\n", "%player% can't go in any direction!\n"))
}

func (e *Engine) printExits(room int) {
	g := e.g
	dirs := e.exits(room)
	switch len(dirs) {
	case 0:
		e.cantGoAnywhere()
	case 1:
		g.Print("There is an exit " + dirs[0] + ".\n")
	default:
		g.Print("There are exits " + state.ListNames(dirs) + ".\n")
	}
}

// describePlayerRoom prints the player's room: its name always, the rest
// when forced, in verbose mode, or on a first visit.
func (e *Engine) describePlayerRoom(force bool) {
	g := e.g
	room := g.S.PlayerRoom
	e.printRoomName(room)
	if force || g.S.Verbose || !g.S.RoomsSeen[room] {
		e.printRoomDescription(room)
		if g.Props.Bool("Globals", "ShowExits") {
			g.Print("\n")
			e.printExits(room)
		}
	}
}

func (e *Engine) look() {
	e.g.Print("\n")
	e.describePlayerRoom(true)
}

func (e *Engine) cmdLook() bool {
	e.look()
	return true
}

func (e *Engine) cmdExits() bool {
	e.printExits(e.g.S.PlayerRoom)
	return true
}

func (e *Engine) cmdGo(dir int) bool {
	g := e.g
	room := g.S.PlayerRoom
	dirs := e.exits(room)
	if len(dirs) == 0 {
		e.cantGoAnywhere()
		return true
	}
	dest := g.Props.Int("Rooms", room, "Exits", dir, "Dest")
	if dest <= 0 {
		g.Print(e.sel("You can't go in that direction, but you can go ",
			"I can't go in that direction, but I can go ",
			"%player% can't go in that direction, but can go ") + state.ListNames(dirs) + ".\n")
		return true
	}
	if !e.canGo(room, dir) {
		g.Print(e.sel("You can't go that way (at present).\n", "I can't go that way (at present).\n", "%player% can't go that way (at present).\n"))
		return true
	}

	switch {
	case g.S.PlayerParent != -1:
		g.Print("(Getting off " + g.TheObject(g.S.PlayerParent) + " first)\n")
	case g.S.PlayerPosition != state.Standing:
		g.Print("(Standing up first)\n")
	}
	g.Print(e.sel("You move ", "I move ", "%player% moves ") + directions[dir] + ".\n")
	g.MovePlayerToRoom(dest - 1)
	e.describePlayerRoom(false)
	return true
}

// Locating things the player has seen.

func (e *Engine) dontKnowWhere() {
	e.g.Print("I don't know where that is.\n")
}

func (e *Engine) somewhereUnseen() string {
	return e.sel(" is somewhere that you haven't been yet.\n",
		" is somewhere that I haven't been yet.\n",
		" is somewhere that %player% hasn't been yet.\n")
}

func (e *Engine) cmdLocateObject() bool {
	g := e.g
	e.admin = true
	found := -1
	for o, ref := range g.ObjectRefs {
		if !ref {
			continue
		}
		if !g.S.Objects[o].Seen {
			g.ObjectRefs[o] = false
			continue
		}
		if found >= 0 {
			g.Print("Please be more clear about what you want to locate.\n")
			return true
		}
		found = o
	}
	if found < 0 {
		e.dontKnowWhere()
		return true
	}
	o := found
	g.Vars.SetRefObject(o)
	g.SetPronounObject(o)

	obj := g.S.Objects[o]
	the := g.TheObject(o)
	npcSeen := func(n int) bool { return n >= 0 && n < g.NPCs() && g.S.NPCs[n].Seen }
	switch obj.Position {
	case state.PosHidden:
		if !g.IsStatic(o) {
			e.dontKnowWhere()
			return true
		}
	case state.PosHeldPlayer:
		e.sentence(e.sel("You are carrying ", "I am carrying ", "%player% is carrying ") + the + "!\n")
		return true
	case state.PosWornPlayer:
		e.sentence(e.sel("You are wearing ", "I am wearing ", "%player% is wearing ") + the + "!\n")
		return true
	case state.PosHeldNPC, state.PosWornNPC:
		if !npcSeen(obj.Parent) {
			e.dontKnowWhere()
			return true
		}
		verb := " is holding "
		if obj.Position == state.PosWornNPC {
			verb = " is wearing "
		}
		e.sentence(g.NPCName(obj.Parent) + verb + the + ".\n")
		return true
	case state.PosPartNPC:
		if obj.Parent == -1 {
			e.sentence(the + e.sel(" is a part of you!\n", " is a part of me!\n", " is a part of %player%!\n"))
			return true
		}
		if !npcSeen(obj.Parent) {
			e.dontKnowWhere()
			return true
		}
		e.sentence(the + " is a part of " + g.NPCName(obj.Parent) + ".\n")
		return true
	case state.PosInObject, state.PosOnObject:
		if !g.S.Objects[obj.Parent].Seen {
			e.dontKnowWhere()
			return true
		}
		where := " is inside "
		if obj.Position == state.PosOnObject {
			where = " is on "
		}
		e.sentence(the + where + g.TheObject(obj.Parent) + ".\n")
		return true
	}

	for room := 0; room < g.Rooms(); room++ {
		if !g.IndirectlyInRoom(o, room) {
			continue
		}
		if !g.S.RoomsSeen[room] {
			e.sentence(the + e.somewhereUnseen())
			return true
		}
		e.sentence(g.RoomName(room) + ".\n")
		return true
	}
	e.dontKnowWhere()
	return true
}

func (e *Engine) cmdLocateNPC() bool {
	g := e.g
	e.admin = true
	found := -1
	for n, ref := range g.NPCRefs {
		if !ref {
			continue
		}
		if found >= 0 {
			g.Print("Please be more clear about who you want to locate.\n")
			return true
		}
		found = n
	}
	if found < 0 {
		e.dontKnowWhere()
		return true
	}
	n := found
	g.Vars.SetRefCharacter(n)
	g.SetPronounNPC(n)

	name := g.NPCName(n)
	room := g.S.NPCs[n].Location - 1
	switch {
	case !g.S.NPCs[n].Seen:
		g.Print(e.sel("You haven't seen ", "I haven't seen ", "%player% hasn't seen ") + name + " yet!\n")
	case room < 0:
		g.Print("I don't know where " + name + " is.\n")
	case !g.S.RoomsSeen[room]:
		e.sentence(name + e.somewhereUnseen())
	default:
		e.sentence(g.RoomName(room) + ".\n")
	}
	return true
}

func (e *Engine) cmdLocateOther() bool {
	e.admin = true
	e.g.Print("I don't know where that is!\n")
	return true
}
