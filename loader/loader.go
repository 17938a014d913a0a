// Package loader turns an ADRIFT story file into a frozen property store.
//
// The file's lines are walked against a schema table that names every
// record and field in file order. Finishing passes then add the derived
// properties the runtime expects, and the store is solidified.
package loader

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/nathoo/adriftcore/engine/props"
	"github.com/nathoo/adriftcore/engine/taf"
)

// ErrUnexpectedEnd is returned when the file ends inside a record.
var ErrUnexpectedEnd = errors.New("loader: unexpected end of story data")

// ParseError locates a malformed line.
type ParseError struct {
	Line int
	Path string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("loader: line %d (%s): %v", e.Line, e.Path, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// Story is a loaded story file.
type Story struct {
	Props   *props.Store
	Version taf.Version

	// Path is the file the story was read from, if known. Embedded
	// sounds and graphics are located in it at DataLength plus their
	// stored offset.
	Path       string
	DataLength int64

	// Warnings are problems that do not stop the story from running.
	Warnings []string
}

// Load reads a story file, builds its property store and validates it.
func Load(r io.Reader) (*Story, error) {
	doc, err := taf.Read(r, taf.GameFile)
	if err != nil {
		return nil, err
	}

	store := props.New()
	w := &walker{doc: doc, store: store, version: doc.Version()}
	doc.First()
	if err := w.record(storySchema, nil); err != nil {
		return nil, err
	}

	if err := finish(store, doc.Version()); err != nil {
		return nil, fmt.Errorf("finishing story data: %w", err)
	}
	store.Adopt(doc)

	story := &Story{
		Props:      store,
		Version:    doc.Version(),
		DataLength: doc.GameDataLength(),
	}
	if err := validate(story); err != nil {
		return nil, err
	}
	store.Solidify()
	return story, nil
}

// LoadFile loads the story file at path.
func LoadFile(path string) (*Story, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening story %s: %w", path, err)
	}
	defer f.Close()

	story, err := Load(f)
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", path, err)
	}
	story.Path = path
	return story, nil
}

// walker reads lines against the schema and stores them.
type walker struct {
	doc     *taf.Document
	store   *props.Store
	version taf.Version
	line    int
	rooms   int
}

func (w *walker) fail(path []any, err error) error {
	return &ParseError{Line: w.line, Path: pathString(path), Err: err}
}

func (w *walker) next(path []any) (string, error) {
	l, ok := w.doc.Next()
	if !ok {
		return "", &ParseError{Line: w.line + 1, Path: pathString(path), Err: ErrUnexpectedEnd}
	}
	w.line++
	return l, nil
}

func (w *walker) integer(path []any) (int, error) {
	l, err := w.next(path)
	if err != nil {
		return 0, err
	}
	n, err := parseInt(l)
	if err != nil {
		return 0, w.fail(path, err)
	}
	return n, nil
}

func (w *walker) record(fields []field, path []any) error {
	for _, f := range fields {
		if f.since > w.version {
			continue
		}
		if err := w.field(f, extend(path, f.name)); err != nil {
			return err
		}
	}
	return nil
}

func (w *walker) field(f field, path []any) error {
	switch f.kind {
	case kindInt, kindBool, kindString:
		return w.scalar(f.kind, path)

	case kindGroup:
		return w.record(f.elem, path)

	case kindList:
		n, err := w.integer(path)
		if err != nil {
			return err
		}
		if n < 0 {
			return w.fail(path, fmt.Errorf("negative count %d", n))
		}
		if len(path) == 1 && path[0] == "Rooms" {
			w.rooms = n
		}
		return w.elements(f, path, n)

	case kindFixed:
		return w.elements(f, path, f.count)

	case kindRooms:
		for i := 0; i < w.rooms; i++ {
			if err := w.scalar(kindBool, extend(path, i)); err != nil {
				return err
			}
		}
		return nil
	}
	return w.fail(path, fmt.Errorf("unknown field kind %d", f.kind))
}

func (w *walker) elements(f field, path []any, n int) error {
	for i := 0; i < n; i++ {
		ep := extend(path, i)
		var err error
		switch {
		case f.elem == nil:
			err = w.scalar(f.scalar, ep)
		case f.sparse:
			err = w.sparse(f.elem, ep)
		default:
			err = w.record(f.elem, ep)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// sparse reads a record of integers and stores it only if its first
// value is nonzero.
func (w *walker) sparse(fields []field, path []any) error {
	values := make([]int, len(fields))
	for i, f := range fields {
		n, err := w.integer(extend(path, f.name))
		if err != nil {
			return err
		}
		values[i] = n
	}
	if values[0] == 0 {
		return nil
	}
	for i, f := range fields {
		if err := put(w.store, 'I', values[i], extend(path, f.name)); err != nil {
			return w.fail(path, err)
		}
	}
	return nil
}

func (w *walker) scalar(k fieldKind, path []any) error {
	l, err := w.next(path)
	if err != nil {
		return err
	}
	switch k {
	case kindInt:
		n, err := parseInt(l)
		if err != nil {
			return w.fail(path, err)
		}
		err = put(w.store, 'I', n, path)
	case kindBool:
		n, err := parseInt(l)
		if err != nil {
			return w.fail(path, err)
		}
		err = put(w.store, 'B', n != 0, path)
	default:
		err = put(w.store, 'S', l, path)
	}
	if err != nil {
		return w.fail(path, err)
	}
	return nil
}

func parseInt(l string) (int, error) {
	s := strings.TrimSpace(l)
	switch strings.ToLower(s) {
	case "true":
		return 1, nil
	case "false", "":
		return 0, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid integer %q", l)
	}
	return n, nil
}

// put stores value under path with the format the path implies.
func put(store *props.Store, typ byte, value any, path []any) error {
	return store.Put(format(typ, "->", path), value, path...)
}

func format(typ byte, dir string, path []any) string {
	var b strings.Builder
	b.WriteByte(typ)
	b.WriteString(dir)
	for _, k := range path {
		if _, ok := k.(int); ok {
			b.WriteByte('i')
		} else {
			b.WriteByte('s')
		}
	}
	return b.String()
}

func extend(path []any, k any) []any {
	p := make([]any, len(path)+1)
	copy(p, path)
	p[len(path)] = k
	return p
}

func pathString(path []any) string {
	parts := make([]string, len(path))
	for i, k := range path {
		parts[i] = fmt.Sprint(k)
	}
	return strings.Join(parts, "/")
}
