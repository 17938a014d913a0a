// Package dialogue answers questions put to characters from their topic
// lists.
package dialogue

import (
	"strings"
	"unicode"

	"github.com/nathoo/adriftcore/engine/state"
)

// anyTopic is the subject of a character's catch-all reply.
const anyTopic = "*"

// squash lowercases s and drops its white space.
func squash(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return unicode.ToLower(r)
	}, s)
}

// Matches reports whether question names one of the comma-separated
// subjects. Case and white space are ignored.
func Matches(subjects, question string) bool {
	q := squash(question)
	if q == "" {
		return false
	}
	for _, s := range strings.Split(subjects, ",") {
		if squash(s) == q {
			return true
		}
	}
	return false
}

// reply returns a topic's answer: the alternate reply once the topic's
// task is done.
func reply(g *state.Game, npc, topic int) string {
	key := "Reply"
	if task := g.Props.Int("NPCs", npc, "Topics", topic, "Task"); task > 0 && task <= g.Tasks() && g.S.Tasks[task-1].Done {
		key = "AltReply"
	}
	return g.Props.String("NPCs", npc, "Topics", topic, key)
}

// Reply returns what a character says when asked about question. The
// first matching topic answers; a "*" topic answers anything else. False
// means the character has nothing to say.
func Reply(g *state.Game, npc int, question string) (string, bool) {
	matched, fallback := -1, -1
	for t := 0; t < g.Props.Count("NPCs", npc, "Topics"); t++ {
		subjects := g.Props.String("NPCs", npc, "Topics", t, "Subject")
		if strings.TrimSpace(subjects) == anyTopic {
			fallback = t
			continue
		}
		if matched < 0 && Matches(subjects, question) {
			matched = t
		}
	}

	if matched >= 0 {
		if text := reply(g, npc, matched); text != "" {
			return text, true
		}
	}
	if fallback >= 0 {
		if text := reply(g, npc, fallback); text != "" {
			return text, true
		}
	}
	return "", false
}
