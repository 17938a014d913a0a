package state

import (
	"strings"
)

var articles = []string{"a", "an", "the", "some"}

// stripArticle removes a leading article word, reporting whether it found
// one.
func stripArticle(s string) (string, bool) {
	for _, a := range articles {
		if len(s) < len(a) || !strings.EqualFold(s[:len(a)], a) {
			continue
		}
		if len(s) == len(a) || s[len(a)] == ' ' || s[len(a)] == '\t' {
			return s[len(a):], true
		}
	}
	return s, false
}

// TheObject names an object with a definite article: "the lamp" for an
// object prefixed "a", "an", "some" or nothing.
func (g *Game) TheObject(o int) string {
	var b strings.Builder
	prefix := g.Props.String("Objects", o, "Prefix")
	rest, stripped := stripArticle(prefix)
	switch {
	case stripped:
		b.WriteString("the")
	case prefix == "":
		b.WriteString("the ")
	}
	if rest != "" {
		b.WriteString(rest)
		b.WriteByte(' ')
	} else if stripped {
		b.WriteByte(' ')
	}
	name, _ := stripArticle(g.Props.String("Objects", o, "Short"))
	b.WriteString(strings.TrimLeft(name, " \t"))
	return b.String()
}

// AnObject names an object with its own prefix, or "a" when it has none.
func (g *Game) AnObject(o int) string {
	prefix := g.Props.String("Objects", o, "Prefix")
	if prefix == "" {
		prefix = "a"
	}
	return prefix + " " + g.Props.String("Objects", o, "Short")
}

// ObjectName is the prefix and short name as the %object% variable shows
// them.
func (g *Game) ObjectName(o int) string {
	return g.Props.String("Objects", o, "Prefix") + " " + g.Props.String("Objects", o, "Short")
}

// NPCName returns a character's name without its prefix.
func (g *Game) NPCName(n int) string { return g.Props.String("NPCs", n, "Name") }

// Alternate description types.
const (
	AltTask   = 0
	AltObject = 1
	AltPlayer = 2
)

// PassAltRoom reports whether a room's alternate description condition
// holds.
func (g *Game) PassAltRoom(room, alt int) bool {
	key := func(name string) int { return g.Props.Int("Rooms", room, "Alts", alt, name) }
	var2, var3 := key("Var2"), key("Var3")
	switch key("Type") {
	case AltTask:
		if var2 == 0 {
			return true
		}
		return g.S.Tasks[var2-1].Done == (var3 == 0)
	case AltObject:
		if var2 == 0 {
			return true
		}
		return g.ObjectStateIs(var2-1, var3-1)
	case AltPlayer:
		if var3 == 0 {
			return var2 == 0 || var2 == 2 || var2 == 5
		}
		o := g.DynamicObject(var3 - 1)
		if o < 0 {
			return false
		}
		pos := g.S.Objects[o].Position
		switch var2 {
		case 0:
			return pos != PosHeldPlayer
		case 1:
			return pos == PosHeldPlayer
		case 2:
			return pos != PosWornPlayer
		case 3:
			return pos == PosWornPlayer
		case 4:
			return !g.IndirectlyInRoom(o, g.S.PlayerRoom)
		case 5:
			return g.IndirectlyInRoom(o, g.S.PlayerRoom)
		}
	}
	g.tracef("room %d alternate %d has an unknown condition", room, alt)
	return false
}

// RoomName returns a room's name as its alternates currently change it.
// Task and object alternates are tried first; the first of those that does
// not apply settles the name as the room's own.
func (g *Game) RoomName(room int) string {
	alts := g.Props.Count("Rooms", room, "Alts")
	short := g.Props.String("Rooms", room, "Short")
	for typ := AltTask; typ <= AltObject; typ++ {
		for alt := 0; alt < alts; alt++ {
			if g.Props.Int("Rooms", room, "Alts", alt, "Type") != typ || !g.PassAltRoom(room, alt) {
				return short
			}
			if changed := g.Props.String("Rooms", room, "Alts", alt, "Changed"); changed != "" {
				return changed
			}
		}
	}
	for alt := 0; alt < alts; alt++ {
		if g.Props.Int("Rooms", room, "Alts", alt, "Type") == AltPlayer && g.PassAltRoom(room, alt) {
			if changed := g.Props.String("Rooms", room, "Alts", alt, "Changed"); changed != "" {
				return changed
			}
		}
	}
	return short
}

// Gender values for NPCs.
const (
	Male   = 0
	Female = 1
	Neuter = 2
)

// NPCGender returns a character's gender.
func (g *Game) NPCGender(n int) int { return g.Props.Int("NPCs", n, "Gender") }

// SetPronounNPC binds "him", "her" or "it" to a character by gender.
func (g *Game) SetPronounNPC(n int) {
	switch g.NPCGender(n) {
	case Male:
		g.S.Pronouns.HimNPC = n
	case Female:
		g.S.Pronouns.HerNPC = n
	default:
		g.S.Pronouns.ItNPC = n
	}
}

// SetPronounObject binds "it" to an object.
func (g *Game) SetPronounObject(o int) { g.S.Pronouns.ItObject = o }

// ListNames joins names as "a, b and c".
func ListNames(names []string) string {
	switch len(names) {
	case 0:
		return ""
	case 1:
		return names[0]
	}
	return strings.Join(names[:len(names)-1], ", ") + " and " + names[len(names)-1]
}
