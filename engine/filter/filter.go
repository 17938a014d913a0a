// Package filter buffers story output and turns it into host text: it
// interpolates %variables%, applies alternative text rules, and splits the
// result into plain text and formatting tags.
package filter

import (
	"log"
	"strings"

	"github.com/nathoo/adriftcore/types"
)

// maxInterpolations bounds the interpolation fixpoint, so a variable whose
// value names itself cannot hang the game.
const maxInterpolations = 64

// Vars resolves %name% references.
type Vars interface {
	Lookup(name string) (string, bool)
}

// ALR is an alternative text rule: every occurrence of Original in output
// becomes Replacement.
type ALR struct {
	Original    string
	Replacement string
}

// Synonym rewrites Original to Replacement in player input.
type Synonym struct {
	Original    string
	Replacement string
}

// Output receives filtered text.
type Output interface {
	PrintString(s string)
	PrintTag(code types.TagCode, arg string)
}

// Filter is the output buffer of a running game.
type Filter struct {
	buf         strings.Builder
	newSentence bool

	vars  Vars
	alrs  []ALR
	trace *log.Logger
}

// New returns a filter that looks variables up in vars and applies alrs in
// the order given, which should be longest original first.
func New(vars Vars, alrs []ALR) *Filter {
	return &Filter{vars: vars, alrs: alrs}
}

// SetTrace enables tracing of each filtering stage. Nil disables it.
func (f *Filter) SetTrace(l *log.Logger) { f.trace = l }

// Print appends s to the buffer.
func (f *Filter) Print(s string) {
	if s == "" {
		return
	}
	if f.newSentence {
		if i := strings.IndexFunc(s, func(r rune) bool { return !isSpace(r) }); i >= 0 && s[i] >= 'a' && s[i] <= 'z' {
			s = s[:i] + string(s[i]-'a'+'A') + s[i+1:]
		}
		f.newSentence = false
	}
	f.buf.WriteString(s)
}

// PrintChar appends one byte.
func (f *Filter) PrintChar(c byte) { f.Print(string(c)) }

// PrintTag appends the markup for a tag code.
func (f *Filter) PrintTag(code types.TagCode) {
	if name, ok := tagMarkup[code]; ok {
		f.Print("<" + name + ">")
	}
}

// NewSentence capitalises the next printed text.
func (f *Filter) NewSentence() { f.newSentence = true }

// Buffered returns the text printed since the last flush, unfiltered.
func (f *Filter) Buffered() string { return f.buf.String() }

// Reset discards the buffer.
func (f *Filter) Reset() {
	f.buf.Reset()
	f.newSentence = false
}

// Flush filters the buffer, writes it to out and empties the buffer.
func (f *Filter) Flush(out Output) {
	s := f.buf.String()
	f.Reset()
	if s == "" {
		return
	}
	Emit(f.Filter(s), out)
}

// Filter applies interpolation and alternative text rules to s: a full
// interpolation, every unapplied rule, then both again once more.
func (f *Filter) Filter(s string) string {
	applied := make([]bool, len(f.alrs))
	f.tracef("initial %q", s)
	for pass := 1; pass <= 2; pass++ {
		s = f.Interpolate(s)
		f.tracef("interpolated %d %q", pass, s)
		s = f.replaceALRs(s, applied)
		f.tracef("replaced %d %q", pass, s)
	}
	return s
}

// Interpolate replaces %name% references until none remain that resolve.
// This is the filter used for status lines and other non-story text.
func (f *Filter) Interpolate(s string) string {
	for i := 0; i < maxInterpolations; i++ {
		next, changed := interpolate(s, f.vars)
		if !changed {
			return next
		}
		s = next
	}
	f.tracef("interpolation limit reached %q", s)
	return s
}

func interpolate(s string, vars Vars) (string, bool) {
	if vars == nil || !strings.Contains(s, "%") {
		return s, false
	}
	var b strings.Builder
	changed := false
	for {
		i := strings.IndexByte(s, '%')
		if i < 0 {
			b.WriteString(s)
			return b.String(), changed
		}
		b.WriteString(s[:i])
		rest := s[i+1:]
		j := strings.IndexByte(rest, '%')
		if j <= 0 {
			b.WriteByte('%')
			s = rest
			continue
		}
		v, ok := vars.Lookup(rest[:j])
		if !ok {
			b.WriteByte('%')
			s = rest
			continue
		}
		b.WriteString(v)
		s = rest[j+1:]
		changed = true
	}
}

func (f *Filter) replaceALRs(s string, applied []bool) string {
	for i, alr := range f.alrs {
		if applied[i] || alr.Original == "" || !strings.Contains(s, alr.Original) {
			continue
		}
		s = strings.ReplaceAll(s, alr.Original, alr.Replacement)
		applied[i] = true
	}
	return s
}

func (f *Filter) tracef(format string, args ...any) {
	if f.trace != nil {
		f.trace.Printf("filter: "+format, args...)
	}
}

func isSpace(r rune) bool {
	return r == ' ' || r == '\t' || r == '\n' || r == '\r' || r == '\v' || r == '\f'
}
