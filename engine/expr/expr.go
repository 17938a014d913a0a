// Package expr evaluates ADRIFT expressions: integer arithmetic, comparisons,
// logic, string concatenation and the built-in functions, with %variable%
// references resolved against the game's variables.
//
// Evaluation is a recursive-descent parse that acts directly on a bounded
// value stack; there is no intermediate tree.
package expr

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/nathoo/adriftcore/engine/vars"
)

// MaxStack is the value stack limit.
const MaxStack = 32

const maxDepth = 256

// ErrorString is the result of a failed string evaluation.
const ErrorString = "[expr error]"

var ErrStackOverflow = errors.New("expression stack overflow")

// Error reports a failed evaluation.
type Error struct {
	Expr string
	Pos  int
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("expr: %q at %d: %s", e.Expr, e.Pos, e.Msg)
}

func (e *Error) Unwrap() error { return e.Err }

// Env supplies variable values and random numbers.
type Env interface {
	Var(name string) (vars.Value, bool)
	Random(lo, hi int) int
}

type evaluator struct {
	env   Env
	lex   lexer
	look  token
	stack []vars.Value
	depth int
}

// Eval evaluates src. Integer and string values mix freely; the caller
// decides which result type it needs.
func Eval(src string, env Env) (vars.Value, error) {
	e := &evaluator{env: env, lex: lexer{src: src}, stack: make([]vars.Value, 0, MaxStack)}
	e.look = e.lex.next()

	if err := e.expression(); err != nil {
		return vars.Value{}, err
	}
	if e.look.kind != tokEOS {
		return vars.Value{}, e.fail("unexpected %s", e.look.kind)
	}
	if len(e.stack) != 1 {
		return vars.Value{}, e.fail("value stack not completed")
	}
	return e.stack[0], nil
}

// EvalInt evaluates src in a numeric context. On failure it returns 0 and
// the error.
func EvalInt(src string, env Env) (int, error) {
	v, err := Eval(src, env)
	if err != nil {
		return 0, err
	}
	if v.Type != vars.Integer {
		return 0, &Error{Expr: src, Msg: "string value in numeric context"}
	}
	return v.Int, nil
}

// EvalString evaluates src in a string context. On failure it returns
// ErrorString and the error.
func EvalString(src string, env Env) (string, error) {
	v, err := Eval(src, env)
	if err != nil {
		return ErrorString, err
	}
	if v.Type != vars.String {
		return ErrorString, &Error{Expr: src, Msg: "numeric value in string context"}
	}
	return v.Str, nil
}

func (e *evaluator) fail(format string, args ...any) error {
	return &Error{Expr: e.lex.src, Pos: e.look.pos, Msg: fmt.Sprintf(format, args...)}
}

func (e *evaluator) match(k tokenKind) error {
	if e.look.kind != k {
		return e.fail("expected %s, got %s", k, e.look.kind)
	}
	e.look = e.lex.next()
	return nil
}

func (e *evaluator) push(v vars.Value) error {
	if len(e.stack) >= MaxStack {
		return &Error{Expr: e.lex.src, Pos: e.look.pos, Msg: "value stack full", Err: ErrStackOverflow}
	}
	e.stack = append(e.stack, v)
	return nil
}

func (e *evaluator) pop() vars.Value {
	v := e.stack[len(e.stack)-1]
	e.stack = e.stack[:len(e.stack)-1]
	return v
}

func (e *evaluator) popInt(what string) (int, error) {
	v := e.pop()
	if v.Type != vars.Integer {
		return 0, e.fail("%s needs an integer, got string %q", what, v.Str)
	}
	return v.Int, nil
}

func (e *evaluator) popString(what string) (string, error) {
	v := e.pop()
	if v.Type != vars.String {
		return "", e.fail("%s needs a string, got integer %d", what, v.Int)
	}
	return v.Str, nil
}

// precedence lists binary operators from loosest to tightest binding.
var precedence = [][]tokenKind{
	{tokOr},
	{tokAnd},
	{tokEqual, tokNotEqual},
	{tokGreater, tokLess, tokGreaterEq, tokLessEq},
	{tokAdd, tokSubtract},
	{tokMultiply, tokDivide, tokMod},
	{tokPower},
}

func (e *evaluator) expression() error {
	e.depth++
	defer func() { e.depth-- }()
	if e.depth > maxDepth {
		return e.fail("expression nested too deeply")
	}
	return e.element(0)
}

func (e *evaluator) element(level int) error {
	if level == len(precedence) {
		return e.factor()
	}
	if err := e.element(level + 1); err != nil {
		return err
	}
	for {
		op := e.look.kind
		found := false
		for _, k := range precedence[level] {
			if op == k {
				found = true
				break
			}
		}
		if !found {
			return nil
		}
		if err := e.match(op); err != nil {
			return err
		}
		if err := e.element(level + 1); err != nil {
			return err
		}
		if err := e.binary(op); err != nil {
			return err
		}
	}
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func (e *evaluator) binary(op tokenKind) error {
	rhs := e.pop()
	lhs := e.pop()

	// Addition and "and" concatenate when either side is a string.
	if (op == tokAdd || op == tokAnd) && (lhs.Type == vars.String || rhs.Type == vars.String) {
		return e.push(vars.StringValue(lhs.String() + rhs.String()))
	}
	if lhs.Type != vars.Integer || rhs.Type != vars.Integer {
		return e.fail("operator %s needs integers", op)
	}

	a, b := lhs.Int, rhs.Int
	var r int
	switch op {
	case tokOr:
		r = boolInt(a != 0 || b != 0)
	case tokAnd:
		r = boolInt(a != 0 && b != 0)
	case tokEqual:
		r = boolInt(a == b)
	case tokNotEqual:
		r = boolInt(a != b)
	case tokGreater:
		r = boolInt(a > b)
	case tokLess:
		r = boolInt(a < b)
	case tokGreaterEq:
		r = boolInt(a >= b)
	case tokLessEq:
		r = boolInt(a <= b)
	case tokAdd:
		r = wrap32(a + b)
	case tokSubtract:
		r = wrap32(a - b)
	case tokMultiply:
		r = wrap32(a * b)
	case tokDivide, tokMod:
		if b == 0 {
			return e.fail("division by zero")
		}
		if op == tokDivide {
			r = a / b
		} else {
			r = a % b
		}
	case tokPower:
		r = wrap32(power(a, b))
	}
	return e.push(vars.IntValue(r))
}

// wrap32 truncates an arithmetic result to a signed 32-bit integer, the
// width story variables have.
func wrap32(n int) int { return int(int32(n)) }

// power raises base to exp. Negative exponents divide repeatedly, which
// truncates toward zero; a zero base with a negative exponent yields the
// minimum 32-bit integer.
func power(base, exp int) int {
	r := 1
	switch {
	case exp > 0:
		for ; exp > 0; exp-- {
			r *= base
		}
	case exp < 0:
		if base == 0 {
			return math.MinInt32
		}
		for ; exp < 0; exp++ {
			r /= base
		}
	}
	return r
}

func (e *evaluator) args(n int) error {
	if err := e.match(tokLParen); err != nil {
		return err
	}
	for i := 0; i < n; i++ {
		if i > 0 {
			if err := e.match(tokComma); err != nil {
				return err
			}
		}
		if err := e.expression(); err != nil {
			return err
		}
	}
	return e.match(tokRParen)
}

func (e *evaluator) factor() error {
	tok := e.look
	switch tok.kind {
	case tokLParen:
		if err := e.match(tokLParen); err != nil {
			return err
		}
		if err := e.expression(); err != nil {
			return err
		}
		return e.match(tokRParen)

	case tokUMinus, tokUPlus:
		if err := e.match(tok.kind); err != nil {
			return err
		}
		if err := e.factor(); err != nil {
			return err
		}
		n, err := e.popInt("unary sign")
		if err != nil {
			return err
		}
		if tok.kind == tokUMinus {
			n = wrap32(-n)
		}
		return e.push(vars.IntValue(n))

	case tokInteger:
		if err := e.push(vars.IntValue(tok.num)); err != nil {
			return err
		}
		return e.match(tokInteger)

	case tokString:
		if err := e.push(vars.StringValue(tok.text)); err != nil {
			return err
		}
		return e.match(tokString)

	case tokVariable:
		v, ok := e.env.Var(tok.text)
		if !ok {
			return e.fail("undefined variable %%%s%%", tok.text)
		}
		if err := e.push(v); err != nil {
			return err
		}
		return e.match(tokVariable)

	case tokIf:
		e.look = e.lex.next()
		if err := e.args(3); err != nil {
			return err
		}
		b, a := e.pop(), e.pop()
		cond, err := e.popInt("if")
		if err != nil {
			return err
		}
		if cond != 0 {
			return e.push(a)
		}
		return e.push(b)

	case tokMax, tokMin, tokEither:
		return e.variadic(tok.kind)

	case tokRandom:
		e.look = e.lex.next()
		if err := e.args(2); err != nil {
			return err
		}
		hi, err := e.popInt("rand")
		if err != nil {
			return err
		}
		lo, err := e.popInt("rand")
		if err != nil {
			return err
		}
		if hi < lo {
			lo, hi = hi, lo
		}
		return e.push(vars.IntValue(e.env.Random(lo, hi)))

	case tokAbs, tokStr:
		e.look = e.lex.next()
		if err := e.args(1); err != nil {
			return err
		}
		n, err := e.popInt(tok.kind.String())
		if err != nil {
			return err
		}
		if tok.kind == tokStr {
			return e.push(vars.StringValue(strconv.Itoa(n)))
		}
		if n < 0 {
			n = -n
		}
		return e.push(vars.IntValue(n))

	case tokLen, tokVal, tokUpper, tokLower, tokProper:
		e.look = e.lex.next()
		if err := e.args(1); err != nil {
			return err
		}
		s, err := e.popString(tok.kind.String())
		if err != nil {
			return err
		}
		switch tok.kind {
		case tokLen:
			return e.push(vars.IntValue(len(s)))
		case tokVal:
			return e.push(vars.IntValue(scanInt(s)))
		case tokUpper:
			return e.push(vars.StringValue(strings.ToUpper(s)))
		case tokLower:
			return e.push(vars.StringValue(strings.ToLower(s)))
		default:
			return e.push(vars.StringValue(properCase(s)))
		}

	case tokInstr:
		e.look = e.lex.next()
		if err := e.args(2); err != nil {
			return err
		}
		needle, err := e.popString("instr")
		if err != nil {
			return err
		}
		hay, err := e.popString("instr")
		if err != nil {
			return err
		}
		return e.push(vars.IntValue(strings.Index(hay, needle) + 1))

	case tokLeft, tokRight:
		e.look = e.lex.next()
		if err := e.args(2); err != nil {
			return err
		}
		n, err := e.popInt(tok.kind.String())
		if err != nil {
			return err
		}
		s, err := e.popString(tok.kind.String())
		if err != nil {
			return err
		}
		if n < 0 || n >= len(s) {
			return e.push(vars.StringValue(s))
		}
		if tok.kind == tokLeft {
			return e.push(vars.StringValue(s[:n]))
		}
		return e.push(vars.StringValue(s[len(s)-n:]))

	case tokMid:
		e.look = e.lex.next()
		if err := e.args(3); err != nil {
			return err
		}
		length, err := e.popInt("mid")
		if err != nil {
			return err
		}
		start, err := e.popInt("mid")
		if err != nil {
			return err
		}
		s, err := e.popString("mid")
		if err != nil {
			return err
		}
		return e.push(vars.StringValue(mid(s, start, length)))

	case tokIdent:
		return e.fail("unknown identifier %q", tok.text)
	case tokEOS:
		return e.fail("unexpected end of expression")
	}
	return e.fail("unexpected %s", tok.kind)
}

// variadic handles max, min and either: the arguments are stacked, then
// their count.
func (e *evaluator) variadic(kind tokenKind) error {
	e.look = e.lex.next()
	if err := e.match(tokLParen); err != nil {
		return err
	}
	if err := e.expression(); err != nil {
		return err
	}
	count := 1
	for e.look.kind == tokComma {
		if err := e.match(tokComma); err != nil {
			return err
		}
		if err := e.expression(); err != nil {
			return err
		}
		count++
	}
	if err := e.match(tokRParen); err != nil {
		return err
	}
	if err := e.push(vars.IntValue(count)); err != nil {
		return err
	}

	count = e.pop().Int
	args := make([]vars.Value, count)
	for i := count - 1; i >= 0; i-- {
		args[i] = e.pop()
	}

	if kind == tokEither {
		return e.push(args[e.env.Random(0, count-1)])
	}
	result := 0
	for i, a := range args {
		if a.Type != vars.Integer {
			return e.fail("%s needs integers", kind)
		}
		if i == 0 || (kind == tokMax && a.Int > result) || (kind == tokMin && a.Int < result) {
			result = a.Int
		}
	}
	return e.push(vars.IntValue(result))
}

// scanInt reads a leading optionally signed decimal integer, or 0.
func scanInt(s string) int {
	s = strings.TrimLeft(s, " \t\n\r\v\f")
	end := 0
	if end < len(s) && (s[end] == '-' || s[end] == '+') {
		end++
	}
	digits := end
	for end < len(s) && isDigit(s[end]) {
		end++
	}
	if end == digits {
		return 0
	}
	n, err := strconv.Atoi(s[:end])
	if err != nil {
		return 0
	}
	return n
}

func properCase(s string) string {
	b := []byte(s)
	for i := range b {
		if i == 0 || isSpace(b[i-1]) {
			b[i] = upper(b[i])
		} else {
			b[i] = lower(b[i])
		}
	}
	return string(b)
}

func upper(c byte) byte {
	if c >= 'a' && c <= 'z' {
		return c - 'a' + 'A'
	}
	return c
}

func lower(c byte) byte {
	if c >= 'A' && c <= 'Z' {
		return c - 'A' + 'a'
	}
	return c
}

// mid returns the 1-based substring of s, clamping start to [1, len] and
// length to [1, len-start+1].
func mid(s string, start, length int) string {
	if s == "" {
		return s
	}
	if start < 1 {
		start = 1
	} else if start > len(s) {
		start = len(s)
	}
	if length < 1 {
		length = 1
	} else if length > len(s)-start+1 {
		length = len(s) - start + 1
	}
	return s[start-1 : start-1+length]
}
