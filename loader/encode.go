package loader

import (
	"io"
	"strconv"

	"github.com/nathoo/adriftcore/engine/props"
	"github.com/nathoo/adriftcore/engine/taf"
)

// Encode writes store as a story file of the given version, walking the
// same schema Load reads. Derived properties are not written; Load
// computes them again.
func Encode(store *props.Store, w io.Writer, version taf.Version) error {
	e := &encoder{store: store, version: version, rooms: store.Count("Rooms")}
	e.record(storySchema, nil)
	return taf.Write(w, version, e.lines)
}

// Lines returns the story lines Encode would write, without the file
// encoding.
func Lines(store *props.Store, version taf.Version) []string {
	e := &encoder{store: store, version: version, rooms: store.Count("Rooms")}
	e.record(storySchema, nil)
	return e.lines
}

type encoder struct {
	store   *props.Store
	version taf.Version
	rooms   int
	lines   []string
}

func (e *encoder) emit(s string) { e.lines = append(e.lines, s) }

func (e *encoder) record(fields []field, path []any) {
	for _, f := range fields {
		if f.since > e.version {
			continue
		}
		e.field(f, extend(path, f.name))
	}
}

func (e *encoder) field(f field, path []any) {
	switch f.kind {
	case kindInt, kindBool, kindString:
		e.scalar(f.kind, path)
	case kindGroup:
		e.record(f.elem, path)
	case kindList:
		n := e.store.Count(path...)
		e.emit(strconv.Itoa(n))
		e.elements(f, path, n)
	case kindFixed:
		e.elements(f, path, f.count)
	case kindRooms:
		for i := 0; i < e.rooms; i++ {
			e.scalar(kindBool, extend(path, i))
		}
	}
}

func (e *encoder) elements(f field, path []any, n int) {
	for i := 0; i < n; i++ {
		ep := extend(path, i)
		switch {
		case f.elem == nil:
			e.scalar(f.scalar, ep)
		case f.sparse && !e.store.Has(ep...):
			for range f.elem {
				e.emit("0")
			}
		default:
			e.record(f.elem, ep)
		}
	}
}

func (e *encoder) scalar(k fieldKind, path []any) {
	switch k {
	case kindInt:
		e.emit(strconv.Itoa(e.store.Int(path...)))
	case kindBool:
		if e.store.Bool(path...) {
			e.emit("1")
		} else {
			e.emit("0")
		}
	default:
		e.emit(e.store.String(path...))
	}
}
