// Package saves keeps named saved games in a directory, indexed by a
// small SQLite database.
package saves

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// ErrNotFound is returned for a slot name with no saved game.
var ErrNotFound = errors.New("saves: no such slot")

// Slot describes one saved game.
type Slot struct {
	ID      string
	Name    string
	Game    string
	Turns   int
	Score   int
	Size    int64
	Created time.Time
}

// Describe returns a one-line summary for listings.
func (s Slot) Describe() string {
	return fmt.Sprintf("%-12s %s, turn %d, score %d (%s, %s)",
		s.Name, s.Game, s.Turns, s.Score, humanize.Bytes(uint64(s.Size)), humanize.Time(s.Created))
}

// Store is a directory of saved games.
type Store struct {
	dir string
	db  *sql.DB
	now func() time.Time
}

// Open opens the store in dir, creating it if needed.
func Open(dir string) (*Store, error) {
	if dir == "" {
		return nil, fmt.Errorf("saves: empty directory")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", filepath.Join(dir, "saves.db"))
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := initPragmas(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Store{dir: dir, db: db, now: time.Now}, nil
}

func initPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return err
		}
	}
	return nil
}

func initSchema(db *sql.DB) error {
	_, err := db.Exec(`CREATE TABLE IF NOT EXISTS slots (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL UNIQUE,
		game TEXT NOT NULL,
		turns INTEGER NOT NULL,
		score INTEGER NOT NULL,
		size INTEGER NOT NULL,
		created_at INTEGER NOT NULL
	);`)
	return err
}

// Close closes the index.
func (s *Store) Close() error { return s.db.Close() }

// Dir returns the directory the store lives in.
func (s *Store) Dir() string { return s.dir }

func (s *Store) path(id string) string { return filepath.Join(s.dir, id+".tas") }

// Put saves data under name, replacing any game already there.
func (s *Store) Put(name, game string, turns, score int, data []byte) (Slot, error) {
	if name == "" {
		return Slot{}, fmt.Errorf("saves: empty slot name")
	}
	old, err := s.slot(name)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return Slot{}, err
	}

	slot := Slot{
		ID:      uuid.NewString(),
		Name:    name,
		Game:    game,
		Turns:   turns,
		Score:   score,
		Size:    int64(len(data)),
		Created: s.now(),
	}
	if err := os.WriteFile(s.path(slot.ID), data, 0o644); err != nil {
		return Slot{}, fmt.Errorf("writing slot %s: %w", name, err)
	}

	tx, err := s.db.Begin()
	if err != nil {
		_ = os.Remove(s.path(slot.ID))
		return Slot{}, err
	}
	if _, err := tx.Exec(`DELETE FROM slots WHERE name = ?`, name); err != nil {
		_ = tx.Rollback()
		_ = os.Remove(s.path(slot.ID))
		return Slot{}, err
	}
	if _, err := tx.Exec(`INSERT INTO slots(id, name, game, turns, score, size, created_at)
		VALUES(?, ?, ?, ?, ?, ?, ?)`,
		slot.ID, slot.Name, slot.Game, slot.Turns, slot.Score, slot.Size, slot.Created.UnixNano()); err != nil {
		_ = tx.Rollback()
		_ = os.Remove(s.path(slot.ID))
		return Slot{}, err
	}
	if err := tx.Commit(); err != nil {
		_ = os.Remove(s.path(slot.ID))
		return Slot{}, err
	}
	if old.ID != "" {
		_ = os.Remove(s.path(old.ID))
	}
	return slot, nil
}

// Get returns the saved game in a slot.
func (s *Store) Get(name string) ([]byte, error) {
	slot, err := s.slot(name)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(s.path(slot.ID))
	if err != nil {
		return nil, fmt.Errorf("reading slot %s: %w", name, err)
	}
	return data, nil
}

// List returns every slot, newest first.
func (s *Store) List() ([]Slot, error) {
	rows, err := s.db.Query(`SELECT id, name, game, turns, score, size, created_at
		FROM slots ORDER BY created_at DESC, name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var slots []Slot
	for rows.Next() {
		slot, err := scanSlot(rows)
		if err != nil {
			return nil, err
		}
		slots = append(slots, slot)
	}
	return slots, rows.Err()
}

// Delete removes a slot and its file.
func (s *Store) Delete(name string) error {
	slot, err := s.slot(name)
	if err != nil {
		return err
	}
	if _, err := s.db.Exec(`DELETE FROM slots WHERE id = ?`, slot.ID); err != nil {
		return err
	}
	if err := os.Remove(s.path(slot.ID)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

func (s *Store) slot(name string) (Slot, error) {
	row := s.db.QueryRow(`SELECT id, name, game, turns, score, size, created_at
		FROM slots WHERE name = ?`, name)
	slot, err := scanSlot(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Slot{}, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	return slot, err
}

type scanner interface {
	Scan(dest ...any) error
}

func scanSlot(r scanner) (Slot, error) {
	var slot Slot
	var created int64
	if err := r.Scan(&slot.ID, &slot.Name, &slot.Game, &slot.Turns, &slot.Score, &slot.Size, &created); err != nil {
		return Slot{}, err
	}
	slot.Created = time.Unix(0, created)
	return slot, nil
}
