package expr

import (
	"strconv"
	"strings"
)

type tokenKind int

const (
	tokNone tokenKind = iota
	tokEOS
	tokInteger
	tokString
	tokVariable
	tokIdent

	tokAdd
	tokSubtract
	tokMultiply
	tokDivide
	tokMod
	tokPower
	tokAnd
	tokOr
	tokEqual
	tokNotEqual
	tokGreater
	tokLess
	tokGreaterEq
	tokLessEq
	tokLParen
	tokRParen
	tokComma
	tokUMinus
	tokUPlus

	tokIf
	tokMin
	tokMax
	tokEither
	tokRandom
	tokInstr
	tokLen
	tokVal
	tokAbs
	tokUpper
	tokLower
	tokProper
	tokLeft
	tokRight
	tokMid
	tokStr

	tokUnknown
)

var tokenNames = map[tokenKind]string{
	tokEOS: "end of expression", tokInteger: "integer", tokString: "string",
	tokVariable: "variable", tokIdent: "identifier",
	tokAdd: "+", tokSubtract: "-", tokMultiply: "*", tokDivide: "/", tokMod: "mod",
	tokPower: "^", tokAnd: "and", tokOr: "or", tokEqual: "=", tokNotEqual: "<>",
	tokGreater: ">", tokLess: "<", tokGreaterEq: ">=", tokLessEq: "<=",
	tokLParen: "(", tokRParen: ")", tokComma: ",", tokUMinus: "unary -", tokUPlus: "unary +",
	tokIf: "if", tokMin: "min", tokMax: "max", tokEither: "either", tokRandom: "rand",
	tokInstr: "instr", tokLen: "len", tokVal: "val", tokAbs: "abs", tokUpper: "upper",
	tokLower: "lower", tokProper: "proper", tokLeft: "left", tokRight: "right",
	tokMid: "mid", tokStr: "str",
}

func (k tokenKind) String() string {
	if s, ok := tokenNames[k]; ok {
		return s
	}
	return "unknown token"
}

var functionWords = map[string]tokenKind{
	"either": tokEither,
	"proper": tokProper, "pcase": tokProper,
	"instr": tokInstr,
	"upper": tokUpper, "ucase": tokUpper,
	"lower": tokLower, "lcase": tokLower,
	"right": tokRight, "left": tokLeft,
	"rand": tokRandom,
	"max":  tokMax, "min": tokMin,
	"mod": tokMod, "abs": tokAbs,
	"len": tokLen, "val": tokVal,
	"and": tokAnd, "or": tokOr,
	"mid": tokMid, "str": tokStr,
	"if": tokIf,
}

var twoCharOperators = map[string]tokenKind{
	"&&": tokAnd, "||": tokOr,
	"==": tokEqual, "!=": tokNotEqual, "<>": tokNotEqual,
	">=": tokGreaterEq, "<=": tokLessEq,
}

var oneCharOperators = map[byte]tokenKind{
	'+': tokAdd, '-': tokSubtract, '*': tokMultiply, '/': tokDivide,
	'&': tokAnd, '|': tokOr, '^': tokPower, '=': tokEqual,
	'>': tokGreater, '<': tokLess, '(': tokLParen, ')': tokRParen, ',': tokComma,
}

type token struct {
	kind tokenKind
	pos  int
	num  int
	text string
}

type lexer struct {
	src  string
	pos  int
	last tokenKind
}

func isSpace(c byte) bool { return c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\v' || c == '\f' }
func isDigit(c byte) bool { return c >= '0' && c <= '9' }
func isAlpha(c byte) bool { return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' }

func (l *lexer) next() token {
	for l.pos < len(l.src) && isSpace(l.src[l.pos]) {
		l.pos++
	}
	start := l.pos
	tok := token{pos: start}

	switch {
	case l.pos >= len(l.src):
		tok.kind = tokEOS

	case isDigit(l.src[l.pos]):
		for l.pos < len(l.src) && isDigit(l.src[l.pos]) {
			l.pos++
		}
		n, err := strconv.Atoi(l.src[start:l.pos])
		if err != nil {
			tok.kind = tokUnknown
			tok.text = l.src[start:l.pos]
			break
		}
		tok.kind, tok.num = tokInteger, n

	case l.src[l.pos] == '%':
		l.pos++
		end := strings.IndexByte(l.src[l.pos:], '%')
		if end < 0 {
			// Unterminated: the name runs to the end.
			tok.text = l.src[l.pos:]
			l.pos = len(l.src)
		} else {
			tok.text = l.src[l.pos : l.pos+end]
			l.pos += end + 1
		}
		tok.kind = tokVariable

	case l.src[l.pos] == '"' || l.src[l.pos] == '\'':
		quote := l.src[l.pos]
		l.pos++
		end := strings.IndexByte(l.src[l.pos:], quote)
		if end < 0 {
			tok.text = l.src[l.pos:]
			l.pos = len(l.src)
		} else {
			tok.text = l.src[l.pos : l.pos+end]
			l.pos += end + 1
		}
		tok.kind = tokString

	case isAlpha(l.src[l.pos]):
		for l.pos < len(l.src) && (isAlpha(l.src[l.pos]) || isDigit(l.src[l.pos])) {
			l.pos++
		}
		word := l.src[start:l.pos]
		if k, ok := functionWords[strings.ToLower(word)]; ok {
			tok.kind = k
		} else {
			tok.kind, tok.text = tokIdent, word
		}

	default:
		if l.pos+1 < len(l.src) {
			if k, ok := twoCharOperators[l.src[l.pos:l.pos+2]]; ok {
				l.pos += 2
				tok.kind = k
				break
			}
		}
		c := l.src[l.pos]
		l.pos++
		if k, ok := oneCharOperators[c]; ok {
			tok.kind = k
		} else {
			tok.kind, tok.text = tokUnknown, string(c)
		}
	}

	// A sign after an operator, an opening parenthesis, a comma, or at the
	// very start is unary.
	if tok.kind == tokAdd || tok.kind == tokSubtract {
		switch l.last {
		case tokNone, tokMod, tokPower, tokAdd, tokSubtract, tokMultiply, tokDivide,
			tokAnd, tokOr, tokEqual, tokGreater, tokLess, tokNotEqual,
			tokGreaterEq, tokLessEq, tokLParen, tokComma, tokUMinus, tokUPlus:
			if tok.kind == tokSubtract {
				tok.kind = tokUMinus
			} else {
				tok.kind = tokUPlus
			}
		}
	}
	l.last = tok.kind
	return tok
}
