// Package parser compiles and matches task command patterns.
//
// A pattern is a line of literal words with a few special forms:
//
//	[a/b/c]      choice, one alternative must match
//	{a/b}        optional group
//	*            wildcard
//	%character%  an NPC name or pronoun
//	%object%     an object name or pronoun
//	%number%     a signed integer
//	%text%       free text
//
// Whitespace in a pattern matches any run of whitespace in the input.
package parser

import (
	"fmt"
	"strings"
)

type tokenKind int

const (
	tokEOS tokenKind = iota
	tokWhitespace
	tokChoice
	tokChoiceEnd
	tokOptional
	tokOptionalEnd
	tokAltSeparator
	tokWildcard
	tokCharacterRef
	tokObjectRef
	tokNumberRef
	tokTextRef
	tokWord
)

var specialTokens = []struct {
	text string
	kind tokenKind
}{
	{"[", tokChoice},
	{"]", tokChoiceEnd},
	{"{", tokOptional},
	{"}", tokOptionalEnd},
	{"/", tokAltSeparator},
	{"*", tokWildcard},
	{"%character%", tokCharacterRef},
	{"%object%", tokObjectRef},
	{"%number%", tokNumberRef},
	{"%text%", tokTextRef},
}

// wordBreak lists the bytes that end a literal word.
const wordBreak = "][/{}* \f\n\r\t\v"

const spaces = " \f\n\r\t\v"

func isSpace(c byte) bool { return strings.IndexByte(spaces, c) >= 0 }

type nodeKind int

const (
	nodeEOS nodeKind = iota
	nodeWord
	nodeWhitespace
	nodeChoice
	nodeOptional
	nodeWildcard
	nodeCharacter
	nodeObject
	nodeNumber
	nodeText
)

var nodeNames = [...]string{"EOS", "WORD", "WHITESPACE", "CHOICE", "OPTIONAL",
	"WILDCARD", "CHARACTER", "OBJECT", "NUMBER", "TEXT"}

// node is one pattern element. Choice and optional nodes hold their
// alternatives; every other node is a leaf.
type node struct {
	kind nodeKind
	word string
	alts [][]*node
}

// Pattern is a compiled command pattern.
type Pattern struct {
	source string
	nodes  []*node
}

// PatternError reports a malformed pattern.
type PatternError struct {
	Pattern string
	Pos     int
	Msg     string
}

func (e *PatternError) Error() string {
	return fmt.Sprintf("pattern %q: %s at offset %d", e.Pattern, e.Msg, e.Pos)
}

type compiler struct {
	src  string
	pos  int
	tok  tokenKind
	word string
	at   int
}

func (c *compiler) next() {
	c.at = c.pos
	c.word = ""
	if c.pos >= len(c.src) {
		c.tok = tokEOS
		return
	}
	if isSpace(c.src[c.pos]) {
		for c.pos < len(c.src) && isSpace(c.src[c.pos]) {
			c.pos++
		}
		c.tok = tokWhitespace
		return
	}
	for _, st := range specialTokens {
		if strings.HasPrefix(c.src[c.pos:], st.text) {
			c.pos += len(st.text)
			c.tok = st.kind
			return
		}
	}
	end := strings.IndexAny(c.src[c.pos:], wordBreak)
	if end < 0 {
		end = len(c.src) - c.pos
	}
	c.word = c.src[c.pos : c.pos+end]
	c.pos += end
	c.tok = tokWord
}

func (c *compiler) fail(msg string) error {
	return &PatternError{Pattern: c.src, Pos: c.at, Msg: msg}
}

func (c *compiler) expect(k tokenKind, what string) error {
	if c.tok != k {
		return c.fail("expected " + what)
	}
	c.next()
	return nil
}

// Compile parses a pattern. Leading and trailing whitespace is ignored.
func Compile(pattern string) (*Pattern, error) {
	c := &compiler{src: strings.Trim(pattern, spaces)}
	c.next()
	nodes, err := c.list()
	if err != nil {
		return nil, err
	}
	if c.tok != tokEOS {
		return nil, c.fail("unbalanced group")
	}
	return &Pattern{source: pattern, nodes: append(nodes, &node{kind: nodeEOS})}, nil
}

// MustCompile is like Compile but panics on a malformed pattern.
func MustCompile(pattern string) *Pattern {
	p, err := Compile(pattern)
	if err != nil {
		panic(err)
	}
	return p
}

// list parses elements up to a group terminator or the end of the pattern.
func (c *compiler) list() ([]*node, error) {
	var nodes []*node
	for {
		switch c.tok {
		case tokEOS, tokChoiceEnd, tokOptionalEnd, tokAltSeparator:
			return nodes, nil
		}
		n, err := c.element()
		if err != nil {
			return nil, err
		}
		// Adjacent groups get an implied word break between them.
		if len(nodes) > 0 && n.isGroup() && nodes[len(nodes)-1].isGroup() {
			nodes = append(nodes, &node{kind: nodeWhitespace})
		}
		nodes = append(nodes, n)
	}
}

func (c *compiler) element() (*node, error) {
	switch c.tok {
	case tokWhitespace:
		c.next()
		return &node{kind: nodeWhitespace}, nil
	case tokChoice, tokOptional:
		kind, end, what := nodeChoice, tokChoiceEnd, "]"
		if c.tok == tokOptional {
			kind, end, what = nodeOptional, tokOptionalEnd, "}"
		}
		c.next()
		alts, err := c.alternatives()
		if err != nil {
			return nil, err
		}
		if err := c.expect(end, what); err != nil {
			return nil, err
		}
		return &node{kind: kind, alts: alts}, nil
	case tokWildcard:
		c.next()
		return &node{kind: nodeWildcard}, nil
	case tokCharacterRef:
		c.next()
		return &node{kind: nodeCharacter}, nil
	case tokObjectRef:
		c.next()
		return &node{kind: nodeObject}, nil
	case tokNumberRef:
		c.next()
		return &node{kind: nodeNumber}, nil
	case tokTextRef:
		c.next()
		return &node{kind: nodeText}, nil
	case tokWord:
		w := c.word
		c.next()
		return &node{kind: nodeWord, word: w}, nil
	}
	return nil, c.fail("unexpected token")
}

func (c *compiler) alternatives() ([][]*node, error) {
	first, err := c.list()
	if err != nil {
		return nil, err
	}
	alts := [][]*node{first}
	for c.tok == tokAltSeparator {
		c.next()
		alt, err := c.list()
		if err != nil {
			return nil, err
		}
		alts = append(alts, alt)
	}
	return alts, nil
}

func (n *node) isGroup() bool { return n.kind == nodeChoice || n.kind == nodeOptional }

// Source returns the pattern text as given to Compile.
func (p *Pattern) Source() string { return p.source }

// String renders the compiled tree, for tracing.
func (p *Pattern) String() string {
	var b strings.Builder
	dumpList(&b, p.nodes)
	return b.String()
}

func dumpList(b *strings.Builder, nodes []*node) {
	for i, n := range nodes {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(nodeNames[n.kind])
		switch n.kind {
		case nodeWord:
			fmt.Fprintf(b, "(%q)", n.word)
		case nodeChoice, nodeOptional:
			b.WriteByte('(')
			for j, alt := range n.alts {
				if j > 0 {
					b.WriteString(" | ")
				}
				dumpList(b, alt)
			}
			b.WriteByte(')')
		}
	}
}
