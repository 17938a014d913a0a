package vars

import (
	"errors"
	"testing"
	"time"
)

type fakeWorld map[string]Value

func (w fakeWorld) SystemVar(name string) (Value, bool) {
	v, ok := w[name]
	return v, ok
}

func TestPutGet(t *testing.T) {
	s := New()
	if err := s.PutInt("gold", 10); err != nil {
		t.Fatal(err)
	}
	if err := s.PutString("motto", "carpe diem"); err != nil {
		t.Fatal(err)
	}

	n, err := s.GetInt("gold")
	if err != nil || n != 10 {
		t.Errorf("GetInt(gold) = %d, %v, want 10, nil", n, err)
	}
	str, err := s.GetString("motto")
	if err != nil || str != "carpe diem" {
		t.Errorf("GetString(motto) = %q, %v, want carpe diem, nil", str, err)
	}
	if got := s.Names(); len(got) != 2 || got[0] != "gold" || got[1] != "motto" {
		t.Errorf("Names() = %v, want [gold motto]", got)
	}
}

func TestTypeMismatch(t *testing.T) {
	s := New()
	_ = s.PutString("motto", "x")
	_ = s.PutInt("gold", 1)

	if _, err := s.GetInt("motto"); !errors.Is(err, ErrTypeMismatch) {
		t.Errorf("GetInt(string var) error = %v, want ErrTypeMismatch", err)
	}
	if _, err := s.GetString("gold"); !errors.Is(err, ErrTypeMismatch) {
		t.Errorf("GetString(int var) error = %v, want ErrTypeMismatch", err)
	}
	if err := s.PutString("gold", "x"); !errors.Is(err, ErrTypeMismatch) {
		t.Errorf("PutString(int var) error = %v, want ErrTypeMismatch", err)
	}
	if _, err := s.GetInt("missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetInt(missing) error = %v, want ErrNotFound", err)
	}
}

func TestReferences(t *testing.T) {
	s := New()
	if s.RefCharacter() != -1 || s.RefObject() != -1 {
		t.Fatalf("new set refs = %d, %d, want -1, -1", s.RefCharacter(), s.RefObject())
	}
	s.SetRefCharacter(2)
	s.SetRefObject(5)
	s.SetRefNumber(42)
	s.SetRefText("hello sailor")

	if s.RefCharacter() != 2 || s.RefObject() != 5 || s.RefNumber() != 42 || s.RefText() != "hello sailor" {
		t.Errorf("refs = %d %d %d %q", s.RefCharacter(), s.RefObject(), s.RefNumber(), s.RefText())
	}
	if v, _ := s.Get("number"); v.Int != 42 {
		t.Errorf("%%number%% = %v, want 42", v)
	}
	if v, _ := s.Get("text"); v.Str != "hello sailor" {
		t.Errorf("%%text%% = %v, want hello sailor", v)
	}
}

func TestNumberNames(t *testing.T) {
	s := New()
	_ = s.PutInt("coins", 3)
	_ = s.PutInt("many", 99)
	_ = s.PutString("word", "plugh")

	tests := []struct {
		name string
		want string
	}{
		{"t_coins", "three"},
		{"t_many", "99"},
		{"t_word", "plugh"},
		{"t_nothing", "[Unknown variable]"},
		{"t_number", "[Number unknown]"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := s.Lookup(tt.name)
			if !ok || got != tt.want {
				t.Errorf("Lookup(%s) = %q, %v, want %q", tt.name, got, ok, tt.want)
			}
		})
	}

	s.SetRefNumber(20)
	if got, _ := s.Lookup("t_number"); got != "twenty" {
		t.Errorf("Lookup(t_number) = %q, want twenty", got)
	}
}

func TestUserShadowsSystem(t *testing.T) {
	s := New()
	s.Register(fakeWorld{"score": IntValue(7)})
	if v, _ := s.Get("score"); v.Int != 7 {
		t.Errorf("system score = %v, want 7", v)
	}
	_ = s.PutInt("score", 99)
	if v, _ := s.Get("score"); v.Int != 99 {
		t.Errorf("user score = %v, want 99", v)
	}
}

func TestWorldFallback(t *testing.T) {
	s := New()
	if _, ok := s.Get("room"); ok {
		t.Error("Get(room) without a world should fail")
	}
	s.Register(fakeWorld{"room": StringValue("Kitchen")})
	if got, ok := s.Lookup("room"); !ok || got != "Kitchen" {
		t.Errorf("Lookup(room) = %q, %v, want Kitchen, true", got, ok)
	}
}

func TestElapsedSeconds(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	s := New()
	s.SetClock(func() time.Time { return now })

	now = now.Add(90 * time.Second)
	if got := s.ElapsedSeconds(); got != 90 {
		t.Errorf("ElapsedSeconds() = %d, want 90", got)
	}

	s.SetElapsedSeconds(1000)
	now = now.Add(5 * time.Second)
	if got := s.ElapsedSeconds(); got != 1005 {
		t.Errorf("ElapsedSeconds() after restore = %d, want 1005", got)
	}
	if v, _ := s.Get("time"); v.Int != 1005 {
		t.Errorf("%%time%% = %v, want 1005", v)
	}
}
