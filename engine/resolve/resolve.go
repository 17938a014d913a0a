// Package resolve narrows the objects and characters a command named to
// the single one the player can mean.
package resolve

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/nathoo/adriftcore/engine/state"
)

// AmbiguityError indicates several visible entities matched.
type AmbiguityError struct {
	Verb       string
	Candidates []string
	NPC        bool
}

func (e *AmbiguityError) Error() string {
	sep := " or "
	if e.NPC {
		sep = ", or "
	}
	names := e.Candidates
	list := names[len(names)-1]
	if len(names) > 1 {
		list = strings.Join(names[:len(names)-1], ", ") + sep + list
	}
	return question(e.NPC, e.Verb) + "?  " + capitalize(list) + "?"
}

// NotFoundError indicates nothing visible matched.
type NotFoundError struct {
	Verb string
	NPC  bool
}

func (e *NotFoundError) Error() string {
	return question(e.NPC, e.Verb) + "?"
}

func question(npc bool, verb string) string {
	if npc {
		return "Please be more clear, who do you want to " + verb
	}
	return "Please be more clear, what do you want to " + verb
}

func capitalize(s string) string {
	r, n := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[n:]
}

// Object narrows the command's object references to those the player has
// seen and that are here. A single survivor becomes the referenced object
// and "it".
func Object(g *state.Game, verb string) (int, error) {
	var found []int
	for o := range g.ObjectRefs {
		if !g.ObjectRefs[o] {
			continue
		}
		if !g.S.Objects[o].Seen || !g.IndirectlyInRoom(o, g.S.PlayerRoom) {
			g.ObjectRefs[o] = false
			continue
		}
		found = append(found, o)
	}

	switch len(found) {
	case 0:
		return -1, &NotFoundError{Verb: verb}
	case 1:
		g.Vars.SetRefObject(found[0])
		g.SetPronounObject(found[0])
		return found[0], nil
	}
	err := &AmbiguityError{Verb: verb}
	for _, o := range found {
		err.Candidates = append(err.Candidates, g.TheObject(o))
	}
	return -1, err
}

// NPC narrows the command's character references to those the player has
// seen and that are here.
func NPC(g *state.Game, verb string) (int, error) {
	var found []int
	for n := range g.NPCRefs {
		if !g.NPCRefs[n] {
			continue
		}
		if !g.S.NPCs[n].Seen || !g.NPCInRoom(n, g.S.PlayerRoom) {
			g.NPCRefs[n] = false
			continue
		}
		found = append(found, n)
	}

	switch len(found) {
	case 0:
		return -1, &NotFoundError{Verb: verb, NPC: true}
	case 1:
		g.Vars.SetRefCharacter(found[0])
		g.SetPronounNPC(found[0])
		return found[0], nil
	}
	err := &AmbiguityError{Verb: verb, NPC: true}
	for _, n := range found {
		err.Candidates = append(err.Candidates, g.NPCName(n))
	}
	return -1, err
}
