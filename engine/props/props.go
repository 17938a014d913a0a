// Package props is the property store: a hierarchical keyed container that
// holds every datum read from a story file.
//
// Values are addressed by a format string and a key path. The format names
// the value type (I, B, S), the direction (-> for put, <- for get) and one
// type char per key element (i for integer, s for string):
//
//	store.Put("S->sis", "brass lamp", "Objects", 3, "Short")
//	v, ok := store.Get("S<-sis", "Objects", 3, "Short")
package props

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

const (
	poolSize   = 512
	maxIntKey  = 65535
	typeInt    = 'I'
	typeBool   = 'B'
	typeString = 'S'
)

var (
	ErrFrozen    = errors.New("props: store is frozen")
	ErrBadFormat = errors.New("props: bad format")
	ErrBadKey    = errors.New("props: bad key")
)

type valueKind uint8

const (
	kindNone valueKind = iota
	kindInt
	kindBool
	kindString
	kindInternal
)

type node struct {
	skey     string
	ikey     int
	byString bool

	kind valueKind
	ival int
	sval string

	// Integer-keyed parents index children directly, with nil holes.
	// String-keyed parents keep an unordered list, most recently used first.
	children    []*node
	intChildren bool
}

// Store is a property store. The zero value is not usable; call New.
type Store struct {
	dict    []string
	root    *node
	pools   [][]node
	frozen  bool
	adopted []any
}

// New returns an empty store.
func New() *Store {
	s := &Store{}
	s.root = s.alloc()
	s.root.kind = kindInternal
	return s
}

func (s *Store) alloc() *node {
	if len(s.pools) == 0 || len(s.pools[len(s.pools)-1]) == poolSize {
		s.pools = append(s.pools, make([]node, 0, poolSize))
	}
	p := &s.pools[len(s.pools)-1]
	*p = append(*p, node{})
	return &(*p)[len(*p)-1]
}

func (s *Store) intern(name string) string {
	i := sort.SearchStrings(s.dict, name)
	if i < len(s.dict) && s.dict[i] == name {
		return s.dict[i]
	}
	name = strings.Clone(name)
	s.dict = append(s.dict, "")
	copy(s.dict[i+1:], s.dict[i:])
	s.dict[i] = name
	return name
}

type format struct {
	vtype byte
	keys  string
}

func parseFormat(f string, put bool) (format, error) {
	arrow := "<-"
	if put {
		arrow = "->"
	}
	if len(f) < 4 || f[1:3] != arrow {
		return format{}, fmt.Errorf("%w: %q", ErrBadFormat, f)
	}
	switch f[0] {
	case typeInt, typeBool, typeString:
	default:
		return format{}, fmt.Errorf("%w: %q: value type %q", ErrBadFormat, f, f[0])
	}
	keys := f[3:]
	for i := 0; i < len(keys); i++ {
		if keys[i] != 'i' && keys[i] != 's' {
			return format{}, fmt.Errorf("%w: %q: key type %q", ErrBadFormat, f, keys[i])
		}
	}
	return format{vtype: f[0], keys: keys}, nil
}

func checkKey(fm format, key []any) error {
	if len(key) != len(fm.keys) {
		return fmt.Errorf("%w: format has %d keys, got %d", ErrBadKey, len(fm.keys), len(key))
	}
	for i, k := range key {
		switch fm.keys[i] {
		case 'i':
			if _, ok := k.(int); !ok {
				return fmt.Errorf("%w: element %d: want int, got %T", ErrBadKey, i, k)
			}
		case 's':
			if _, ok := k.(string); !ok {
				return fmt.Errorf("%w: element %d: want string, got %T", ErrBadKey, i, k)
			}
		}
	}
	return nil
}

// Put inserts or replaces the leaf at the key path.
func (s *Store) Put(f string, value any, key ...any) error {
	if s.frozen {
		return ErrFrozen
	}
	fm, err := parseFormat(f, true)
	if err != nil {
		return err
	}
	if err := checkKey(fm, key); err != nil {
		return err
	}

	n := s.root
	for i, k := range key {
		child, err := s.child(n, k, true)
		if err != nil {
			return fmt.Errorf("props: put %s at element %d: %w", pathString(key), i, err)
		}
		if i < len(key)-1 {
			if child.kind != kindInternal && child.kind != kindNone {
				return fmt.Errorf("props: put %s: element %d is a leaf", pathString(key), i)
			}
			child.kind = kindInternal
		}
		n = child
	}

	if n.kind == kindInternal && len(n.children) > 0 {
		return fmt.Errorf("props: put %s: node has children", pathString(key))
	}
	switch fm.vtype {
	case typeInt:
		v, ok := value.(int)
		if !ok {
			return fmt.Errorf("props: put %s: want int value, got %T", pathString(key), value)
		}
		n.kind, n.ival = kindInt, v
	case typeBool:
		v, ok := value.(bool)
		if !ok {
			return fmt.Errorf("props: put %s: want bool value, got %T", pathString(key), value)
		}
		n.kind, n.ival = kindBool, 0
		if v {
			n.ival = 1
		}
	case typeString:
		v, ok := value.(string)
		if !ok {
			return fmt.Errorf("props: put %s: want string value, got %T", pathString(key), value)
		}
		n.kind, n.sval = kindString, v
	}
	return nil
}

// child finds, or with create set adds, the child of n named by k.
func (s *Store) child(n *node, k any, create bool) (*node, error) {
	switch key := k.(type) {
	case int:
		if key < 0 || key > maxIntKey {
			return nil, fmt.Errorf("%w: integer key %d out of range", ErrBadKey, key)
		}
		if len(n.children) > 0 && !n.intChildren {
			return nil, fmt.Errorf("%w: integer key %d under string-keyed node", ErrBadKey, key)
		}
		if key < len(n.children) && n.children[key] != nil {
			return n.children[key], nil
		}
		if !create {
			return nil, nil
		}
		n.intChildren = true
		if key >= len(n.children) {
			grown := make([]*node, key+1)
			copy(grown, n.children)
			n.children = grown
		}
		c := s.alloc()
		c.ikey = key
		n.children[key] = c
		return c, nil

	case string:
		if len(n.children) > 0 && n.intChildren {
			return nil, fmt.Errorf("%w: string key %q under integer-keyed node", ErrBadKey, key)
		}
		for i, c := range n.children {
			if c.skey == key {
				if i > 0 {
					copy(n.children[1:i+1], n.children[:i])
					n.children[0] = c
				}
				return c, nil
			}
		}
		if !create {
			return nil, nil
		}
		c := s.alloc()
		c.skey = s.intern(key)
		c.byString = true
		n.children = append(n.children, c)
		return c, nil
	}
	return nil, fmt.Errorf("%w: %T", ErrBadKey, k)
}

func (s *Store) lookup(key []any) *node {
	n := s.root
	for _, k := range key {
		c, err := s.child(n, k, false)
		if err != nil || c == nil {
			return nil
		}
		n = c
	}
	return n
}

// Get returns the leaf at the key path. A malformed format or a leaf of a
// different type than the format names is a programming error and panics.
func (s *Store) Get(f string, key ...any) (any, bool) {
	fm, err := parseFormat(f, false)
	if err != nil {
		panic(err.Error())
	}
	if err := checkKey(fm, key); err != nil {
		panic(err.Error())
	}
	n := s.lookup(key)
	if n == nil || n.kind == kindNone || n.kind == kindInternal {
		return nil, false
	}
	switch fm.vtype {
	case typeInt:
		if n.kind != kindInt {
			panic(fmt.Sprintf("props: get %s: want integer, leaf is %s", pathString(key), n.kind))
		}
		return n.ival, true
	case typeBool:
		if n.kind != kindBool {
			panic(fmt.Sprintf("props: get %s: want boolean, leaf is %s", pathString(key), n.kind))
		}
		return n.ival != 0, true
	default:
		if n.kind != kindString {
			panic(fmt.Sprintf("props: get %s: want string, leaf is %s", pathString(key), n.kind))
		}
		return n.sval, true
	}
}

// getFormat builds the get format for a value type and a key path.
func getFormat(vtype byte, key []any) string {
	b := []byte{vtype, '<', '-'}
	for _, k := range key {
		if _, ok := k.(int); ok {
			b = append(b, 'i')
		} else {
			b = append(b, 's')
		}
	}
	return string(b)
}

// GetInt returns the integer leaf at the key path. Like Get, it panics
// when the leaf holds another type.
func (s *Store) GetInt(key ...any) (int, bool) {
	v, ok := s.Get(getFormat(typeInt, key), key...)
	if !ok {
		return 0, false
	}
	return v.(int), true
}

// GetBool returns the boolean leaf at the key path.
func (s *Store) GetBool(key ...any) (bool, bool) {
	v, ok := s.Get(getFormat(typeBool, key), key...)
	if !ok {
		return false, false
	}
	return v.(bool), true
}

// GetString returns the string leaf at the key path.
func (s *Store) GetString(key ...any) (string, bool) {
	v, ok := s.Get(getFormat(typeString, key), key...)
	if !ok {
		return "", false
	}
	return v.(string), true
}

// Has reports whether any node, leaf or internal, exists at the key path.
func (s *Store) Has(key ...any) bool {
	return s.lookup(key) != nil
}

// Count returns the number of children of the node at the key path. For an
// integer-keyed node this is one more than the highest key.
func (s *Store) Count(key ...any) int {
	n := s.lookup(key)
	if n == nil {
		return 0
	}
	return len(n.children)
}

// Int returns an integer leaf, reading a boolean leaf as 0 or 1. Missing or
// string leaves yield 0.
func (s *Store) Int(key ...any) int {
	n := s.lookup(key)
	if n == nil {
		return 0
	}
	switch n.kind {
	case kindInt, kindBool:
		return n.ival
	}
	return 0
}

// Bool returns a boolean leaf, reading a nonzero integer as true.
func (s *Store) Bool(key ...any) bool {
	return s.Int(key...) != 0
}

// String returns a string leaf, or "" when missing.
func (s *Store) String(key ...any) string {
	n := s.lookup(key)
	if n == nil || n.kind != kindString {
		return ""
	}
	return n.sval
}

// Solidify trims every child array to its minimum size and freezes the
// store against further puts.
func (s *Store) Solidify() {
	var trim func(n *node)
	trim = func(n *node) {
		if cap(n.children) > len(n.children) {
			n.children = append([]*node(nil), n.children...)
		}
		for _, c := range n.children {
			if c != nil {
				trim(c)
			}
		}
	}
	trim(s.root)
	s.frozen = true
}

// Frozen reports whether Solidify has been called.
func (s *Store) Frozen() bool { return s.frozen }

// Adopt ties the lifetime of v to the store.
func (s *Store) Adopt(v any) {
	s.adopted = append(s.adopted, v)
}

// Adopted returns the values handed to Adopt, in order.
func (s *Store) Adopted() []any { return s.adopted }

// Dictionary returns the interned key names in sorted order.
func (s *Store) Dictionary() []string {
	return append([]string(nil), s.dict...)
}

func (k valueKind) String() string {
	switch k {
	case kindInt:
		return "integer"
	case kindBool:
		return "boolean"
	case kindString:
		return "string"
	case kindInternal:
		return "internal"
	}
	return "none"
}

func pathString(key []any) string {
	parts := make([]string, len(key))
	for i, k := range key {
		parts[i] = fmt.Sprint(k)
	}
	return strings.Join(parts, "/")
}
