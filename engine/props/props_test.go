package props

import (
	"errors"
	"fmt"
	"sort"
	"testing"
)

func TestPutGet_RoundTrip(t *testing.T) {
	tests := []struct {
		name  string
		put   string
		get   string
		value any
		key   []any
	}{
		{"string leaf", "S->sis", "S<-sis", "brass lamp", []any{"Objects", 3, "Short"}},
		{"int leaf", "I->s", "I<-s", 400, []any{"Version"}},
		{"bool leaf", "B->sisi", "B<-sisi", true, []any{"Objects", 0, "Where", 2}},
		{"deep path", "S->siss", "S<-siss", "the", []any{"Objects", 7, "Alias", "Prefix"}},
		{"negative int", "I->sis", "I<-sis", -1, []any{"Objects", 1, "Key"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := New()
			if err := s.Put(tt.put, tt.value, tt.key...); err != nil {
				t.Fatalf("Put() error = %v", err)
			}
			got, ok := s.Get(tt.get, tt.key...)
			if !ok {
				t.Fatalf("Get() found = false, want true")
			}
			if got != tt.value {
				t.Errorf("Get() = %v, want %v", got, tt.value)
			}
		})
	}
}

func TestPut_Replaces(t *testing.T) {
	s := New()
	_ = s.Put("I->si", 1, "Score", 0)
	_ = s.Put("I->si", 5, "Score", 0)
	if got := s.Int("Score", 0); got != 5 {
		t.Errorf("Int() = %d, want 5", got)
	}
}

func TestGet_Missing(t *testing.T) {
	s := New()
	_ = s.Put("S->sis", "north", "Rooms", 0, "Short")

	keys := [][]any{
		{"Rooms", 1, "Short"},
		{"Rooms", 0, "Long"},
		{"Objects", 0, "Short"},
	}
	for _, k := range keys {
		if _, ok := s.Get("S<-sis", k...); ok {
			t.Errorf("Get(%v) found = true, want false", k)
		}
	}
	if _, ok := s.Get("S<-si", "Rooms", 0); ok {
		t.Error("Get() on an internal node should not be found")
	}
}

func TestPut_Errors(t *testing.T) {
	tests := []struct {
		name   string
		format string
		value  any
		key    []any
		want   error
	}{
		{"bad arrow", "S<-s", "x", []any{"A"}, ErrBadFormat},
		{"bad type", "X->s", "x", []any{"A"}, ErrBadFormat},
		{"bad key type char", "S->q", "x", []any{"A"}, ErrBadFormat},
		{"too short", "S->", "x", nil, ErrBadFormat},
		{"key count", "S->ss", "x", []any{"A"}, ErrBadKey},
		{"key kind", "S->i", "x", []any{"A"}, ErrBadKey},
		{"int key too large", "I->si", 1, []any{"A", 65536}, ErrBadKey},
		{"negative int key", "I->si", 1, []any{"A", -1}, ErrBadKey},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := New()
			err := s.Put(tt.format, tt.value, tt.key...)
			if !errors.Is(err, tt.want) {
				t.Errorf("Put() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestPut_ValueMismatch(t *testing.T) {
	s := New()
	if err := s.Put("I->s", "seven", "A"); err == nil {
		t.Error("Put(I, string) should fail")
	}
}

func TestPut_MixedKeyKinds(t *testing.T) {
	s := New()
	_ = s.Put("I->si", 1, "A", 0)
	if err := s.Put("I->ss", 1, "A", "B"); err == nil {
		t.Error("string key under integer-keyed node should fail")
	}
}

func TestSolidify_Freezes(t *testing.T) {
	s := New()
	_ = s.Put("S->s", "x", "A")
	s.Solidify()

	if !s.Frozen() {
		t.Error("Frozen() = false after Solidify")
	}
	if err := s.Put("S->s", "y", "B"); !errors.Is(err, ErrFrozen) {
		t.Errorf("Put() after Solidify error = %v, want ErrFrozen", err)
	}
	if got := s.String("A"); got != "x" {
		t.Errorf("String() after Solidify = %q, want x", got)
	}
}

func TestGet_TypeMismatchPanics(t *testing.T) {
	s := New()
	_ = s.Put("I->s", 3, "A")

	defer func() {
		if recover() == nil {
			t.Error("Get(S) on integer leaf should panic")
		}
	}()
	s.Get("S<-s", "A")
}

func TestIntegerKeys_DirectIndex(t *testing.T) {
	s := New()
	_ = s.Put("S->sis", "c", "Rooms", 2, "Short")
	_ = s.Put("S->sis", "a", "Rooms", 0, "Short")

	if got := s.Count("Rooms"); got != 3 {
		t.Errorf("Count() = %d, want 3", got)
	}
	if _, ok := s.Get("S<-sis", "Rooms", 1, "Short"); ok {
		t.Error("hole at index 1 should not be found")
	}
	if got := s.String("Rooms", 2, "Short"); got != "c" {
		t.Errorf("String() = %q, want c", got)
	}
}

func TestStringKeys_MRUDoesNotChangeResults(t *testing.T) {
	s := New()
	names := []string{"Short", "Long", "Res", "Alts", "Exits"}
	for i, n := range names {
		_ = s.Put("I->sis", i, "Rooms", 0, n)
	}
	for round := 0; round < 3; round++ {
		for i := len(names) - 1; i >= 0; i-- {
			if got := s.Int("Rooms", 0, names[i]); got != i {
				t.Fatalf("Int(%s) = %d, want %d", names[i], got, i)
			}
		}
	}
	if got := s.Count("Rooms", 0); got != len(names) {
		t.Errorf("Count() = %d, want %d", got, len(names))
	}
}

func TestLenientHelpers(t *testing.T) {
	s := New()
	_ = s.Put("B->s", true, "Flag")
	_ = s.Put("I->s", 2, "Num")
	_ = s.Put("S->s", "text", "Str")

	if got := s.Int("Flag"); got != 1 {
		t.Errorf("Int(bool) = %d, want 1", got)
	}
	if !s.Bool("Num") {
		t.Error("Bool(2) = false, want true")
	}
	if got := s.Int("Str"); got != 0 {
		t.Errorf("Int(string) = %d, want 0", got)
	}
	if got := s.String("Missing"); got != "" {
		t.Errorf("String(missing) = %q, want empty", got)
	}
}

func TestStrictHelpers(t *testing.T) {
	s := New()
	_ = s.Put("B->si", true, "Rooms", 2)
	_ = s.Put("I->s", 7, "Num")
	_ = s.Put("S->ss", "text", "Globals", "Str")

	if got, ok := s.GetBool("Rooms", 2); !ok || !got {
		t.Errorf("GetBool() = %v, %v, want true, true", got, ok)
	}
	if got, ok := s.GetInt("Num"); !ok || got != 7 {
		t.Errorf("GetInt() = %d, %v, want 7, true", got, ok)
	}
	if got, ok := s.GetString("Globals", "Str"); !ok || got != "text" {
		t.Errorf("GetString() = %q, %v, want text, true", got, ok)
	}
	if _, ok := s.GetInt("Missing"); ok {
		t.Error("GetInt(missing) found a value")
	}

	defer func() {
		if recover() == nil {
			t.Error("GetInt(string leaf) did not panic")
		}
	}()
	s.GetInt("Globals", "Str")
}

func TestDictionary_SortedAndInterned(t *testing.T) {
	s := New()
	for _, k := range []string{"Rooms", "Objects", "Tasks", "Rooms", "Alias"} {
		_ = s.Put("I->s", 1, k)
	}
	d := s.Dictionary()
	if !sort.StringsAreSorted(d) {
		t.Errorf("Dictionary() = %v, not sorted", d)
	}
	if len(d) != 4 {
		t.Errorf("Dictionary() has %d entries, want 4", len(d))
	}
}

func TestPools_ManyNodes(t *testing.T) {
	s := New()
	for i := 0; i < 3*poolSize; i++ {
		if err := s.Put("S->sis", fmt.Sprintf("obj%d", i), "Objects", i, "Short"); err != nil {
			t.Fatal(err)
		}
	}
	s.Solidify()
	for _, i := range []int{0, poolSize - 1, poolSize, 3*poolSize - 1} {
		if got, want := s.String("Objects", i, "Short"), fmt.Sprintf("obj%d", i); got != want {
			t.Errorf("String(%d) = %q, want %q", i, got, want)
		}
	}
	if len(s.pools) < 6 {
		t.Errorf("expected several node pools, got %d", len(s.pools))
	}
}

func TestAdopt(t *testing.T) {
	s := New()
	doc := &struct{ name string }{"taf"}
	s.Adopt(doc)
	if got := s.Adopted(); len(got) != 1 || got[0] != doc {
		t.Errorf("Adopted() = %v, want [doc]", got)
	}
}
