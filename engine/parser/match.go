package parser

import (
	"strconv"
	"strings"
)

// Entity is the naming of an NPC or object as the matcher sees it.
type Entity struct {
	Prefix  string
	Name    string
	Aliases []string
}

// Pronouns are the current "it", "him", "her" bindings. -1 means unbound.
type Pronouns struct {
	ItNPC    int
	HimNPC   int
	HerNPC   int
	ItObject int
}

// Unbound returns pronouns with nothing bound.
func Unbound() Pronouns { return Pronouns{-1, -1, -1, -1} }

// World supplies the names that %character% and %object% match against.
type World struct {
	NPCs     []Entity
	Objects  []Entity
	Pronouns Pronouns
}

// Result is the outcome of a match. References are only meaningful when
// Matched is set.
type Result struct {
	Matched bool

	// Character and Object are the longest matched NPC and object, or -1.
	Character int
	Object    int
	Number    int
	HasNumber bool
	Text      string
	HasText   bool

	// NPCRefs and ObjectRefs flag every candidate a reference matched.
	NPCRefs       []bool
	ObjectRefs    []bool
	NPCPronoun    bool
	ObjectPronoun bool
}

type matcher struct {
	input string
	pos   int
	world *World
	res   *Result
}

// Match reports whether input matches the pattern. Leading and trailing
// whitespace in input is ignored and comparison is case-insensitive.
func (p *Pattern) Match(input string, world *World) Result {
	if world == nil {
		world = &World{Pronouns: Unbound()}
	}
	res := Result{
		Character:  -1,
		Object:     -1,
		NPCRefs:    make([]bool, len(world.NPCs)),
		ObjectRefs: make([]bool, len(world.Objects)),
	}
	m := &matcher{input: strings.Trim(input, spaces), world: world, res: &res}
	res.Matched = m.list(p.nodes)
	return res
}

// Match compiles pattern and matches input against it. A malformed pattern
// never matches.
func Match(pattern, input string, world *World) Result {
	p, err := Compile(pattern)
	if err != nil {
		return Result{Character: -1, Object: -1}
	}
	return p.Match(input, world)
}

func (m *matcher) list(nodes []*node) bool {
	for i, n := range nodes {
		if !m.node(n, nodes[i+1:]) {
			return false
		}
	}
	return true
}

// node matches one element. rest is the remainder of the enclosing list,
// used by the elements that must look ahead.
func (m *matcher) node(n *node, rest []*node) bool {
	switch n.kind {
	case nodeEOS:
		return m.pos == len(m.input)
	case nodeWord:
		return m.word(n.word)
	case nodeWhitespace:
		return m.whitespace()
	case nodeChoice:
		return m.alternatives(n)
	case nodeOptional:
		return m.optional(n, rest)
	case nodeWildcard:
		return m.wildcard(rest)
	case nodeCharacter:
		return m.character(rest)
	case nodeObject:
		return m.object(rest)
	case nodeNumber:
		return m.number()
	case nodeText:
		return m.text(rest)
	}
	panic("parser: invalid node kind")
}

func (m *matcher) word(w string) bool {
	end := m.pos + len(w)
	if end > len(m.input) || !strings.EqualFold(m.input[m.pos:end], w) {
		return false
	}
	m.pos = end
	return true
}

// whitespace matches a run of spaces, or a word boundary: the start of the
// input, just after a space, or the end of the input.
func (m *matcher) whitespace() bool {
	if m.pos < len(m.input) && isSpace(m.input[m.pos]) {
		for m.pos < len(m.input) && isSpace(m.input[m.pos]) {
			m.pos++
		}
		return true
	}
	if m.pos == 0 || isSpace(m.input[m.pos-1]) {
		return true
	}
	return m.pos == len(m.input)
}

// alternatives takes the alternative that advances furthest.
func (m *matcher) alternatives(n *node) bool {
	start, extent, matched := m.pos, m.pos, false
	for _, alt := range n.alts {
		m.pos = start
		if m.list(alt) {
			matched = true
			if m.pos > extent {
				extent = m.pos
			}
		}
	}
	if matched {
		m.pos = extent
	} else {
		m.pos = start
	}
	return matched
}

// optional always succeeds. If the rest of the list matches without the
// group, the group consumes nothing.
func (m *matcher) optional(n *node, rest []*node) bool {
	start := m.pos
	if m.list(rest) {
		m.pos = start
		return true
	}
	m.pos = start
	m.alternatives(n)
	return true
}

// scan finds the shortest non-empty span from the current position after
// which rest matches, and returns its end.
func (m *matcher) scan(rest []*node) (int, bool) {
	start := m.pos
	for i := start + 1; i <= len(m.input); i++ {
		m.pos = i
		if m.list(rest) {
			m.pos = start
			return i, true
		}
	}
	m.pos = start
	return start, false
}

// wildcard always succeeds. In a run of wildcards only the last one scans.
func (m *matcher) wildcard(rest []*node) bool {
	if len(rest) > 0 && rest[0].kind == nodeWildcard {
		return true
	}
	if end, ok := m.scan(rest); ok {
		m.pos = end
	}
	return true
}

func (m *matcher) text(rest []*node) bool {
	start := m.pos
	end, ok := m.scan(rest)
	if !ok {
		return false
	}
	m.res.Text = m.input[start:end]
	m.res.HasText = true
	m.pos = end
	return true
}

func (m *matcher) number() bool {
	j := m.pos
	if j < len(m.input) && (m.input[j] == '-' || m.input[j] == '+') {
		j++
	}
	digits := j
	for j < len(m.input) && m.input[j] >= '0' && m.input[j] <= '9' {
		j++
	}
	if j == digits {
		return false
	}
	n, err := strconv.ParseInt(m.input[m.pos:j], 10, 32)
	if err != nil {
		return false
	}
	m.res.Number = int(n)
	m.res.HasNumber = true
	m.pos = j
	return true
}

// pronoun returns the end of word at the current position, or 0.
func (m *matcher) pronoun(word string) int {
	end := m.pos + len(word)
	if end > len(m.input) || !strings.EqualFold(m.input[m.pos:end], word) {
		return 0
	}
	if end < len(m.input) && !isSpace(m.input[end]) {
		return 0
	}
	return end
}

func (m *matcher) characterPronoun() bool {
	pr := m.world.Pronouns
	npc, end := -1, 0
	for _, b := range []struct {
		word string
		npc  int
	}{{"it", pr.ItNPC}, {"him", pr.HimNPC}, {"her", pr.HerNPC}} {
		if b.npc < 0 || b.npc >= len(m.res.NPCRefs) {
			continue
		}
		if end = m.pronoun(b.word); end > 0 {
			npc = b.npc
			break
		}
	}
	if npc < 0 {
		return false
	}
	m.res.Character = npc
	m.res.NPCRefs[npc] = true
	m.res.NPCPronoun = true
	m.pos = end
	return true
}

func (m *matcher) objectPronoun() bool {
	obj := m.world.Pronouns.ItObject
	if obj < 0 || obj >= len(m.res.ObjectRefs) {
		return false
	}
	end := m.pronoun("it")
	if end == 0 {
		end = m.pronoun("them")
	}
	if end == 0 {
		return false
	}
	m.res.Object = obj
	m.res.ObjectRefs[obj] = true
	m.res.ObjectPronoun = true
	m.pos = end
	return true
}

func (m *matcher) character(rest []*node) bool {
	m.res.NPCPronoun = false
	clear(m.res.NPCRefs)
	if m.characterPronoun() {
		return true
	}
	best, extent := m.reference(m.world.NPCs, m.res.NPCRefs, rest)
	if extent == 0 {
		return false
	}
	m.res.Character = best
	m.pos = extent
	return true
}

func (m *matcher) object(rest []*node) bool {
	m.res.ObjectPronoun = false
	clear(m.res.ObjectRefs)
	if m.objectPronoun() {
		return true
	}
	best, extent := m.reference(m.world.Objects, m.res.ObjectRefs, rest)
	if extent == 0 {
		return false
	}
	m.res.Object = best
	m.pos = extent
	return true
}

// reference tries every entity's names at the current position, flagging in
// refs each one after which rest also matches. It returns the entity with
// the longest match and the end of that match, or 0 for none.
func (m *matcher) reference(entities []Entity, refs []bool, rest []*node) (best, extent int) {
	best = -1
	try := func(i int, name string) {
		if name == "" {
			return
		}
		end := m.compare(entities[i].Prefix + " " + name)
		if end == 0 {
			end = m.compare(name)
		}
		if end == 0 || !m.remainder(rest, end) {
			return
		}
		refs[i] = true
		if end > extent {
			best, extent = i, end
		}
	}
	for i, e := range entities {
		try(i, e.Name)
		for _, alias := range e.Aliases {
			try(i, alias)
		}
	}
	return best, extent
}

func (m *matcher) remainder(rest []*node, at int) bool {
	start := m.pos
	m.pos = at
	ok := m.list(rest)
	m.pos = start
	return ok
}

// compare matches name against the input at the current position, ignoring
// case, leading articles on both, and whitespace inside name. It returns the
// end of the match, which must fall on a word boundary, or 0.
func (m *matcher) compare(name string) int {
	w := skipArticle(name, 0)
	p := skipArticle(m.input, m.pos)
	if w >= len(name) {
		return 0
	}
	for {
		if p >= len(m.input) || lower(name[w]) != lower(m.input[p]) {
			return 0
		}
		w++
		p++
		for w < len(name) && isSpace(name[w]) {
			w++
		}
		if w >= len(name) {
			break
		}
		for p < len(m.input) && isSpace(m.input[p]) {
			p++
		}
	}
	if p == len(m.input) || isSpace(m.input[p]) {
		return p
	}
	return 0
}

var articles = []string{"a", "an", "the", "some"}

func skipArticle(s string, pos int) int {
	for _, a := range articles {
		end := pos + len(a)
		if end <= len(s) && strings.EqualFold(s[pos:end], a) && (end == len(s) || isSpace(s[end])) {
			pos = end
			break
		}
	}
	for pos < len(s) && isSpace(s[pos]) {
		pos++
	}
	return pos
}

func lower(c byte) byte {
	if c >= 'A' && c <= 'Z' {
		return c + 'a' - 'A'
	}
	return c
}
