package saves

import (
	"errors"
	"os"
	"strings"
	"testing"
	"time"
)

func openStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("Open() error: %v", err)
	}
	t.Cleanup(func() { s.Close() })

	clock := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time {
		clock = clock.Add(time.Minute)
		return clock
	}
	return s
}

func TestPutGet(t *testing.T) {
	s := openStore(t)
	slot, err := s.Put("cellar", "Castle", 12, 5, []byte("saved game"))
	if err != nil {
		t.Fatalf("Put() error: %v", err)
	}
	if slot.ID == "" || slot.Size != 10 {
		t.Errorf("Put() = %+v, want an id and size 10", slot)
	}

	data, err := s.Get("cellar")
	if err != nil {
		t.Fatalf("Get() error: %v", err)
	}
	if string(data) != "saved game" {
		t.Errorf("Get() = %q, want %q", data, "saved game")
	}
}

func TestPut_Replaces(t *testing.T) {
	s := openStore(t)
	first, err := s.Put("slot", "Castle", 1, 0, []byte("one"))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := s.Put("slot", "Castle", 2, 0, []byte("two")); err != nil {
		t.Fatal(err)
	}

	data, err := s.Get("slot")
	if err != nil || string(data) != "two" {
		t.Errorf("Get() = %q, %v, want the second save", data, err)
	}
	if _, err := os.Stat(s.path(first.ID)); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("old save file still present: %v", err)
	}
	slots, err := s.List()
	if err != nil {
		t.Fatal(err)
	}
	if len(slots) != 1 || slots[0].Turns != 2 {
		t.Errorf("List() = %+v, want the one replaced slot", slots)
	}
}

func TestList(t *testing.T) {
	s := openStore(t)
	for _, name := range []string{"first", "second", "third"} {
		if _, err := s.Put(name, "Castle", 0, 0, []byte(name)); err != nil {
			t.Fatal(err)
		}
	}
	slots, err := s.List()
	if err != nil {
		t.Fatalf("List() error: %v", err)
	}
	var names []string
	for _, slot := range slots {
		names = append(names, slot.Name)
	}
	if got := strings.Join(names, ","); got != "third,second,first" {
		t.Errorf("List() names = %s, want newest first", got)
	}
}

func TestDelete(t *testing.T) {
	s := openStore(t)
	slot, err := s.Put("gone", "Castle", 0, 0, []byte("x"))
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Delete("gone"); err != nil {
		t.Fatalf("Delete() error: %v", err)
	}
	if _, err := s.Get("gone"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get() after Delete error = %v, want %v", err, ErrNotFound)
	}
	if _, err := os.Stat(s.path(slot.ID)); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("save file still present: %v", err)
	}
	if err := s.Delete("gone"); !errors.Is(err, ErrNotFound) {
		t.Errorf("second Delete() error = %v, want %v", err, ErrNotFound)
	}
}

func TestOpen_Reopens(t *testing.T) {
	dir := t.TempDir()
	s, err := Open(dir)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := s.Put("kept", "Castle", 3, 1, []byte("data")); err != nil {
		t.Fatal(err)
	}
	s.Close()

	s, err = Open(dir)
	if err != nil {
		t.Fatalf("reopen error: %v", err)
	}
	defer s.Close()
	if data, err := s.Get("kept"); err != nil || string(data) != "data" {
		t.Errorf("Get() after reopen = %q, %v", data, err)
	}
}

func TestSlot_Describe(t *testing.T) {
	slot := Slot{Name: "cellar", Game: "Castle", Turns: 12, Score: 5, Size: 2048, Created: time.Now()}
	got := slot.Describe()
	for _, want := range []string{"cellar", "Castle", "turn 12", "score 5", "2.0 kB", "now"} {
		if !strings.Contains(got, want) {
			t.Errorf("Describe() = %q, missing %q", got, want)
		}
	}
}
