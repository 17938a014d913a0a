// Package vars holds the game's variables: the author-declared integer and
// string variables, the reference slots filled in by command matching, and
// the elapsed play time.
package vars

import (
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"
)

// Type is a variable's type.
type Type int

const (
	Integer Type = iota
	String
)

func (t Type) String() string {
	if t == String {
		return "string"
	}
	return "integer"
}

// Value is an integer or string variable value.
type Value struct {
	Type Type
	Int  int
	Str  string
}

// IntValue returns an integer Value.
func IntValue(n int) Value { return Value{Type: Integer, Int: n} }

// StringValue returns a string Value.
func StringValue(s string) Value { return Value{Type: String, Str: s} }

// String renders the value as it appears in story text.
func (v Value) String() string {
	if v.Type == String {
		return v.Str
	}
	return strconv.Itoa(v.Int)
}

var (
	ErrNotFound     = errors.New("vars: no such variable")
	ErrTypeMismatch = errors.New("vars: type mismatch")
)

// World answers requests for system variables such as %room% or %obstate%
// that depend on the running game.
type World interface {
	SystemVar(name string) (Value, bool)
}

var numberNames = []string{
	"zero", "one", "two", "three", "four", "five",
	"six", "seven", "eight", "nine", "ten", "eleven",
	"twelve", "thirteen", "fourteen", "fifteen", "sixteen", "seventeen",
	"eighteen", "nineteen", "twenty",
}

// NumberName spells out n for 0..20 and formats it in digits otherwise.
func NumberName(n int) string {
	if n >= 0 && n < len(numberNames) {
		return numberNames[n]
	}
	return strconv.Itoa(n)
}

// Set is a variable set.
type Set struct {
	values map[string]*Value
	order  []string

	refCharacter int
	refObject    int
	refNumber    int
	numberRefd   bool
	refText      string
	textRefd     bool

	start  time.Time
	offset int
	now    func() time.Time

	world World
	trace *log.Logger
}

// New returns an empty set with no references.
func New() *Set {
	s := &Set{
		values:       make(map[string]*Value),
		refCharacter: -1,
		refObject:    -1,
		now:          time.Now,
	}
	s.start = s.now()
	return s
}

// Register connects the set to the running game for system variables.
func (s *Set) Register(w World) { s.world = w }

// SetTrace enables tracing of variable reads and writes. Nil disables it.
func (s *Set) SetTrace(l *log.Logger) { s.trace = l }

// SetClock replaces the wall clock used for elapsed time.
func (s *Set) SetClock(now func() time.Time) {
	s.now = now
	s.start = now()
}

// Put creates or replaces a variable. Replacing a variable with one of a
// different type is an error.
func (s *Set) Put(name string, v Value) error {
	if cur, ok := s.values[name]; ok {
		if cur.Type != v.Type {
			return fmt.Errorf("%w: %s is %s, not %s", ErrTypeMismatch, name, cur.Type, v.Type)
		}
		*cur = v
	} else {
		nv := v
		s.values[name] = &nv
		s.order = append(s.order, name)
	}
	if s.trace != nil {
		s.trace.Printf("variable %%%s%% = %q", name, v.String())
	}
	return nil
}

// PutInt sets an integer variable.
func (s *Set) PutInt(name string, n int) error { return s.Put(name, IntValue(n)) }

// PutString sets a string variable.
func (s *Set) PutString(name, str string) error { return s.Put(name, StringValue(str)) }

// Get returns a user variable or, failing that, a system variable.
func (s *Set) Get(name string) (Value, bool) {
	if v, ok := s.values[name]; ok {
		return *v, true
	}
	v, ok := s.system(name)
	if s.trace != nil {
		if ok {
			s.trace.Printf("variable %%%s%% [system] = %q", name, v.String())
		} else {
			s.trace.Printf("variable %%%s%%: no such variable", name)
		}
	}
	return v, ok
}

// Lookup returns a variable rendered as text, for print interpolation.
func (s *Set) Lookup(name string) (string, bool) {
	v, ok := s.Get(name)
	if !ok {
		return "", false
	}
	return v.String(), true
}

// GetInt returns an integer variable.
func (s *Set) GetInt(name string) (int, error) {
	v, ok := s.Get(name)
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	if v.Type != Integer {
		return 0, fmt.Errorf("%w: %s is a string", ErrTypeMismatch, name)
	}
	return v.Int, nil
}

// GetString returns a string variable.
func (s *Set) GetString(name string) (string, error) {
	v, ok := s.Get(name)
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	if v.Type != String {
		return "", fmt.Errorf("%w: %s is an integer", ErrTypeMismatch, name)
	}
	return v.Str, nil
}

// IsUser reports whether name is an author-declared variable.
func (s *Set) IsUser(name string) bool {
	_, ok := s.values[name]
	return ok
}

// Names returns the user variable names in declaration order.
func (s *Set) Names() []string {
	return append([]string(nil), s.order...)
}

func (s *Set) system(name string) (Value, bool) {
	switch {
	case name == "number":
		return IntValue(s.refNumber), true
	case name == "text":
		if !s.textRefd {
			return StringValue("[Text unknown]"), true
		}
		return StringValue(s.refText), true
	case name == "time":
		return IntValue(s.ElapsedSeconds()), true
	case name == "t_number":
		if !s.numberRefd {
			return StringValue("[Number unknown]"), true
		}
		return StringValue(NumberName(s.refNumber)), true
	case strings.HasPrefix(name, "t_"):
		v, ok := s.values[strings.TrimPrefix(name, "t_")]
		if !ok {
			return StringValue("[Unknown variable]"), true
		}
		if v.Type == String {
			return StringValue(v.Str), true
		}
		return StringValue(NumberName(v.Int)), true
	}
	if s.world != nil {
		return s.world.SystemVar(name)
	}
	return Value{}, false
}

// SetRefCharacter records the NPC matched by the last command.
func (s *Set) SetRefCharacter(npc int) { s.refCharacter = npc }

// SetRefObject records the object matched by the last command.
func (s *Set) SetRefObject(object int) { s.refObject = object }

// SetRefNumber records the number matched by the last command.
func (s *Set) SetRefNumber(n int) {
	s.refNumber = n
	s.numberRefd = true
}

// SetRefText records the text matched by the last command.
func (s *Set) SetRefText(text string) {
	s.refText = strings.Clone(text)
	s.textRefd = true
}

// RefCharacter returns the referenced NPC, or -1.
func (s *Set) RefCharacter() int { return s.refCharacter }

// RefObject returns the referenced object, or -1.
func (s *Set) RefObject() int { return s.refObject }

// RefNumber returns the referenced number.
func (s *Set) RefNumber() int { return s.refNumber }

// RefText returns the referenced text.
func (s *Set) RefText() string { return s.refText }

// ElapsedSeconds returns play time since the game started or was restored.
func (s *Set) ElapsedSeconds() int {
	return int(s.now().Sub(s.start)/time.Second) + s.offset
}

// SetElapsedSeconds restarts the clock at the given offset.
func (s *Set) SetElapsedSeconds(seconds int) {
	s.start = s.now()
	s.offset = seconds
}
