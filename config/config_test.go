package config

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/nathoo/adriftcore/types"
)

func TestParse(t *testing.T) {
	raw := []byte(`
save_dir: /tmp/saves
transcript: play.jsonl.zst
seed: 42
trace: [tasks, npcs]
plain: true
prompt: "? "
width: 72
history: 20
`)
	cfg := Default()
	if err := Parse(raw, &cfg); err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	want := Config{
		SaveDir:    "/tmp/saves",
		Transcript: "play.jsonl.zst",
		Seed:       42,
		Trace:      []string{"tasks", "npcs"},
		Plain:      true,
		Prompt:     "? ",
		Width:      72,
		History:    20,
	}
	if !reflect.DeepEqual(cfg, want) {
		t.Errorf("Parse() = %+v, want %+v", cfg, want)
	}
}

func TestParse_KeepsDefaults(t *testing.T) {
	cfg := Default()
	if err := Parse([]byte("seed: 7\n"), &cfg); err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	if cfg.Prompt != "> " || cfg.History != 100 {
		t.Errorf("Prompt, History = %q, %d, want defaults", cfg.Prompt, cfg.History)
	}
	if cfg.Seed != 7 {
		t.Errorf("Seed = %d, want 7", cfg.Seed)
	}
}

func TestParse_Invalid(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"unknown key", "colour: red\n"},
		{"wrong type", "seed: lots\n"},
		{"negative width", "width: -1\n"},
		{"unknown trace", "trace: [everything]\n"},
		{"bad yaml", "seed: [1\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			if err := Parse([]byte(tt.raw), &cfg); err == nil {
				t.Errorf("Parse(%q) error = nil, want an error", tt.raw)
			}
		})
	}
}

func TestParse_Empty(t *testing.T) {
	cfg := Default()
	if err := Parse(nil, &cfg); err != nil {
		t.Fatalf("Parse(nil) error: %v", err)
	}
	if !reflect.DeepEqual(cfg, Default()) {
		t.Errorf("Parse(nil) = %+v, want defaults", cfg)
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("plain: true\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if !cfg.Plain {
		t.Error("Plain = false, want true")
	}

	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("Load(missing) error = nil, want an error for a named file")
	}
}

func TestParseTrace(t *testing.T) {
	tests := []struct {
		names   []string
		want    types.TraceFlags
		wantErr bool
	}{
		{nil, 0, false},
		{[]string{"tasks"}, types.TraceTasks, false},
		{[]string{"Tasks", " npcs "}, types.TraceTasks | types.TraceNPCs, false},
		{[]string{"all"}, types.TraceAll, false},
		{[]string{"tasks", "bogus"}, 0, true},
	}
	for _, tt := range tests {
		got, err := ParseTrace(tt.names)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseTrace(%q) error = %v, wantErr %v", tt.names, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseTrace(%q) = %v, want %v", tt.names, got, tt.want)
		}
	}
}
