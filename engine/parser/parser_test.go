package parser

import (
	"errors"
	"testing"
)

func testWorld() *World {
	return &World{
		NPCs: []Entity{
			{Prefix: "", Name: "Ford", Aliases: []string{"Prefect"}},
			{Prefix: "the", Name: "barman"},
		},
		Objects: []Entity{
			{Prefix: "a", Name: "lamp"},
			{Prefix: "a", Name: "table"},
			{Prefix: "a", Name: "table leg"},
			{Prefix: "a", Name: "red ball", Aliases: []string{"ball"}},
			{Prefix: "a", Name: "blue ball", Aliases: []string{"ball"}},
		},
		Pronouns: Unbound(),
	}
}

func TestMatch_Literal(t *testing.T) {
	tests := []struct {
		name    string
		pattern string
		input   string
		want    bool
	}{
		{"exact", "look", "look", true},
		{"case", "LOOK", "look", true},
		{"trimmed input", "look", "   look  ", true},
		{"trimmed pattern", "  look ", "look", true},
		{"extra words", "look", "look up", false},
		{"prefix only", "get", "getaway", false},
		{"multiple spaces", "look up", "look    up", true},
		{"missing space", "look up", "lookup", false},
		{"empty both", "", "", true},
		{"empty pattern", "", "x", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Match(tt.pattern, tt.input, testWorld())
			if got.Matched != tt.want {
				t.Errorf("Match(%q, %q) = %v, want %v", tt.pattern, tt.input, got.Matched, tt.want)
			}
		})
	}
}

func TestMatch_Groups(t *testing.T) {
	tests := []struct {
		name    string
		pattern string
		input   string
		want    bool
	}{
		{"choice first", "[get/take] lamp", "get lamp", true},
		{"choice second", "[get/take] lamp", "take lamp", true},
		{"choice none", "[get/take] lamp", "grab lamp", false},
		{"choice maximal", "[n/north]", "north", true},
		{"optional absent", "get {the} ball", "get ball", true},
		{"optional present", "get {the} ball", "get the ball", true},
		{"optional wrong", "get {the} ball", "get a ball", false},
		{"optional trailing", "look {around}", "look", true},
		{"optional trailing present", "look {around}", "look around", true},
		{"adjacent groups", "[a/b]{c}", "b c", true},
		{"adjacent groups need a break", "[a/b]{c}", "bc", false},
		{"multiword alternative", "[pick up/get] {the} lamp", "pick up the lamp", true},
		{"optional ending an alternative", "[get {the}] lamp", "get the lamp", false},
		{"empty alternative", "get {/the} lamp", "get lamp", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Match(tt.pattern, tt.input, testWorld())
			if got.Matched != tt.want {
				t.Errorf("Match(%q, %q) = %v, want %v", tt.pattern, tt.input, got.Matched, tt.want)
			}
		})
	}
}

func TestMatch_Wildcards(t *testing.T) {
	tests := []struct {
		name    string
		pattern string
		input   string
		want    bool
	}{
		{"trailing", "look *", "look at the sky", true},
		{"trailing empty", "look *", "look", true},
		{"leading", "* dog", "pet the dog", true},
		{"leading no match", "* dog", "pet the cat", false},
		{"middle", "throw * at window", "throw the heavy rock at window", true},
		{"run of stars", "say ***", "say something", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Match(tt.pattern, tt.input, testWorld())
			if got.Matched != tt.want {
				t.Errorf("Match(%q, %q) = %v, want %v", tt.pattern, tt.input, got.Matched, tt.want)
			}
		})
	}
}

func TestMatch_ObjectWithArticleChoice(t *testing.T) {
	got := Match("get [the/a] %object%", "get the red ball", testWorld())
	if !got.Matched {
		t.Fatal("expected a match")
	}
	if got.Object != 3 {
		t.Errorf("Object = %d, want 3", got.Object)
	}
	if !got.ObjectRefs[3] {
		t.Error("ObjectRefs[3] = false, want true")
	}
	if got.ObjectRefs[4] {
		t.Error("ObjectRefs[4] = true, want false")
	}
}

func TestMatch_LongestObject(t *testing.T) {
	got := Match("examine %object%", "examine table leg", testWorld())
	if !got.Matched || got.Object != 2 {
		t.Fatalf("Match = %v, Object %d, want match on 2", got.Matched, got.Object)
	}
	if got.ObjectRefs[1] {
		t.Error("table flagged although the rest of the pattern fails after it")
	}

	got = Match("put %object% on %object%", "put lamp on table", testWorld())
	if !got.Matched || got.Object != 1 {
		t.Errorf("Match = %v, Object %d, want match on 1", got.Matched, got.Object)
	}
}

func TestMatch_ObjectArticles(t *testing.T) {
	tests := []struct {
		input string
		want  int
	}{
		{"take lamp", 0},
		{"take a lamp", 0},
		{"take the lamp", 0},
		{"take some lamp", 0},
		{"take an lamp", 0},
		{"take LAMP", 0},
		{"take red   ball", 3},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := Match("take %object%", tt.input, testWorld())
			if !got.Matched || got.Object != tt.want {
				t.Errorf("Match(%q) = %v, Object %d, want %d", tt.input, got.Matched, got.Object, tt.want)
			}
		})
	}
}

func TestMatch_AmbiguousAlias(t *testing.T) {
	got := Match("get %object%", "get ball", testWorld())
	if !got.Matched {
		t.Fatal("expected a match")
	}
	if !got.ObjectRefs[3] || !got.ObjectRefs[4] {
		t.Errorf("ObjectRefs = %v, want both balls flagged", got.ObjectRefs)
	}
	if got.Object != 3 {
		t.Errorf("Object = %d, want 3", got.Object)
	}
}

func TestMatch_Character(t *testing.T) {
	tests := []struct {
		input string
		want  int
	}{
		{"talk to ford", 0},
		{"talk to prefect", 0},
		{"talk to barman", 1},
		{"talk to the barman", 1},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := Match("talk to %character%", tt.input, testWorld())
			if !got.Matched || got.Character != tt.want {
				t.Errorf("Match(%q) = %v, Character %d, want %d", tt.input, got.Matched, got.Character, tt.want)
			}
		})
	}
}

func TestMatch_Pronouns(t *testing.T) {
	w := testWorld()
	if got := Match("drop %object%", "drop it", w); got.Matched {
		t.Error("unbound 'it' matched")
	}

	w.Pronouns.ItObject = 2
	got := Match("drop %object%", "drop it", w)
	if !got.Matched || got.Object != 2 || !got.ObjectPronoun {
		t.Errorf("drop it = %+v, want object 2 by pronoun", got)
	}
	got = Match("drop %object%", "drop them", w)
	if !got.Matched || got.Object != 2 {
		t.Errorf("drop them = %v, %d, want object 2", got.Matched, got.Object)
	}

	w.Pronouns.HimNPC = 1
	got = Match("ask %character% about *", "ask him about beer", w)
	if !got.Matched || got.Character != 1 || !got.NPCPronoun || !got.NPCRefs[1] {
		t.Errorf("ask him = %+v, want NPC 1 by pronoun", got)
	}
	if Match("ask %character% about *", "ask her about beer", w).Matched {
		t.Error("unbound 'her' matched")
	}
}

func TestMatch_Number(t *testing.T) {
	tests := []struct {
		input string
		ok    bool
		want  int
	}{
		{"wait 12 turns", true, 12},
		{"wait -3 turns", true, -3},
		{"wait +7 turns", true, 7},
		{"wait many turns", false, 0},
		{"wait - turns", false, 0},
		{"wait 99999999999 turns", false, 0},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := Match("wait %number% turns", tt.input, nil)
			if got.Matched != tt.ok {
				t.Fatalf("Match(%q) = %v, want %v", tt.input, got.Matched, tt.ok)
			}
			if tt.ok && (got.Number != tt.want || !got.HasNumber) {
				t.Errorf("Number = %d, want %d", got.Number, tt.want)
			}
		})
	}
}

func TestMatch_Text(t *testing.T) {
	got := Match("say %text%", "say Hello World", nil)
	if !got.Matched || got.Text != "Hello World" || !got.HasText {
		t.Errorf("Match = %v, Text %q, want Hello World", got.Matched, got.Text)
	}
	got = Match("write %text% on wall", "write kilroy was here on wall", nil)
	if !got.Matched || got.Text != "kilroy was here" {
		t.Errorf("Match = %v, Text %q, want kilroy was here", got.Matched, got.Text)
	}
	if Match("say %text%", "say", nil).Matched {
		t.Errorf("%s matched nothing", "%text%")
	}
}

func TestCompile_Errors(t *testing.T) {
	for _, pattern := range []string{"[a/b", "{a", "get ]", "a } b", "x/y"} {
		t.Run(pattern, func(t *testing.T) {
			_, err := Compile(pattern)
			var pe *PatternError
			if !errors.As(err, &pe) {
				t.Fatalf("Compile(%q) error = %v, want *PatternError", pattern, err)
			}
			if Match(pattern, pattern, nil).Matched {
				t.Errorf("malformed pattern %q matched", pattern)
			}
		})
	}
}

func TestCompile_Tree(t *testing.T) {
	tests := []struct {
		pattern string
		want    string
	}{
		{"look", `WORD("look") EOS`},
		{"[a/b]{c}", `CHOICE(WORD("a") | WORD("b")) WHITESPACE OPTIONAL(WORD("c")) EOS`},
		{"get  *", `WORD("get") WHITESPACE WILDCARD EOS`},
		{"%character% %object% %number% %text%",
			`CHARACTER WHITESPACE OBJECT WHITESPACE NUMBER WHITESPACE TEXT EOS`},
	}
	for _, tt := range tests {
		t.Run(tt.pattern, func(t *testing.T) {
			if got := MustCompile(tt.pattern).String(); got != tt.want {
				t.Errorf("Compile(%q) = %s, want %s", tt.pattern, got, tt.want)
			}
		})
	}
}

func TestMatch_Deterministic(t *testing.T) {
	p := MustCompile("get {the} %object% from *")
	w := testWorld()
	first := p.Match("get the lamp from the table", w)
	for i := 0; i < 5; i++ {
		again := p.Match("get the lamp from the table", w)
		if again.Matched != first.Matched || again.Object != first.Object {
			t.Fatalf("run %d = %v/%d, want %v/%d", i, again.Matched, again.Object, first.Matched, first.Object)
		}
	}
	if !first.Matched || first.Object != 0 {
		t.Errorf("Match = %v, Object %d, want lamp", first.Matched, first.Object)
	}
}
