package rules

import (
	"errors"
	"fmt"
	"unicode"
)

// Mask tokens.
const (
	tokRestriction = '#'
	tokAnd         = 'A'
	tokOr          = 'O'
	tokLParen      = '('
	tokRParen      = ')'
	tokEnd         = 0
)

// maxNesting bounds the mask value stack.
const maxNesting = 32

// ErrMaskSyntax reports a malformed restriction mask.
var ErrMaskSyntax = errors.New("rules: malformed restriction mask")

// maskParser evaluates a restriction mask such as "#A(#O#)". Each '#'
// stands for the next restriction in order; 'A' binds tighter than 'O'.
type maskParser struct {
	mask string
	pos  int
	look byte

	eval   func(i int) bool
	next   int
	stack  []bool
	lowest int
}

// Combine evaluates mask, calling eval for each restriction in order. It
// returns the combined result and the index of the first restriction that
// failed, or -1.
func Combine(mask string, eval func(i int) bool) (pass bool, lowestFail int, err error) {
	p := &maskParser{mask: mask, eval: eval, lowest: -1}
	p.advance()
	if err := p.orExpr(); err != nil {
		return false, -1, err
	}
	if err := p.match(tokEnd); err != nil {
		return false, -1, err
	}
	if len(p.stack) != 1 {
		return false, -1, fmt.Errorf("%w: %q", ErrMaskSyntax, mask)
	}
	return p.stack[0], p.lowest, nil
}

func (p *maskParser) advance() {
	for p.pos < len(p.mask) && unicode.IsSpace(rune(p.mask[p.pos])) {
		p.pos++
	}
	if p.pos >= len(p.mask) {
		p.look = tokEnd
		return
	}
	p.look = p.mask[p.pos]
	p.pos++
}

func (p *maskParser) match(c byte) error {
	if p.look != c {
		return fmt.Errorf("%w: %q at %d", ErrMaskSyntax, p.mask, p.pos)
	}
	p.advance()
	return nil
}

func (p *maskParser) push(v bool) error {
	if len(p.stack) >= maxNesting {
		return fmt.Errorf("%w: %q nests too deeply", ErrMaskSyntax, p.mask)
	}
	p.stack = append(p.stack, v)
	return nil
}

func (p *maskParser) combine(op byte) {
	n := len(p.stack)
	a, b := p.stack[n-2], p.stack[n-1]
	p.stack = p.stack[:n-1]
	if op == tokAnd {
		p.stack[n-2] = a && b
	} else {
		p.stack[n-2] = a || b
	}
}

func (p *maskParser) orExpr() error {
	if err := p.andExpr(); err != nil {
		return err
	}
	for p.look == tokOr {
		p.advance()
		if err := p.andExpr(); err != nil {
			return err
		}
		p.combine(tokOr)
	}
	return nil
}

func (p *maskParser) andExpr() error {
	if err := p.operand(); err != nil {
		return err
	}
	for p.look == tokAnd {
		p.advance()
		if err := p.operand(); err != nil {
			return err
		}
		p.combine(tokAnd)
	}
	return nil
}

func (p *maskParser) operand() error {
	switch p.look {
	case tokRestriction:
		p.advance()
		i := p.next
		p.next++
		result := p.eval(i)
		if !result && p.lowest < 0 {
			p.lowest = i
		}
		return p.push(result)
	case tokLParen:
		p.advance()
		if err := p.orExpr(); err != nil {
			return err
		}
		return p.match(tokRParen)
	}
	return fmt.Errorf("%w: %q at %d", ErrMaskSyntax, p.mask, p.pos)
}
