// Package config reads the player's settings file.
package config

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"

	"github.com/nathoo/adriftcore/types"
)

//go:embed schema.json
var schemaJSON string

const schemaURL = "config.schema.json"

var schema = compileSchema()

func compileSchema() *jsonschema.Schema {
	c := jsonschema.NewCompiler()
	if err := c.AddResource(schemaURL, strings.NewReader(schemaJSON)); err != nil {
		panic("config: " + err.Error())
	}
	return c.MustCompile(schemaURL)
}

// Config holds the settings a host starts with. Command-line flags
// override them.
type Config struct {
	SaveDir    string   `yaml:"save_dir"`
	Transcript string   `yaml:"transcript"`
	Seed       int64    `yaml:"seed"`
	Trace      []string `yaml:"trace"`
	Plain      bool     `yaml:"plain"`
	Prompt     string   `yaml:"prompt"`
	Width      int      `yaml:"width"`
	History    int      `yaml:"history"`
}

// Default returns the settings used when no file is given.
func Default() Config {
	return Config{
		SaveDir: DefaultSaveDir(),
		Prompt:  "> ",
		History: 100,
	}
}

// DefaultPath is where Load looks when no file is named.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "adriftcore", "config.yaml")
}

// DefaultSaveDir is where saved games go unless configured.
func DefaultSaveDir() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "saves"
	}
	return filepath.Join(dir, "adriftcore", "saves")
}

// HistoryPath is where the terminal UI keeps command history, or empty
// when there is no user config directory.
func HistoryPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "adriftcore", "history")
}

// Load reads the file at path over the defaults. An empty path reads
// DefaultPath, and a missing default file is not an error.
func Load(path string) (Config, error) {
	cfg := Default()
	explicit := path != ""
	if !explicit {
		path = DefaultPath()
		if path == "" {
			return cfg, nil
		}
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		if !explicit && errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return cfg, err
	}
	if err := Parse(raw, &cfg); err != nil {
		return cfg, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Parse validates YAML settings and applies them to cfg.
func Parse(raw []byte, cfg *Config) error {
	var doc any
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return err
	}
	if doc == nil {
		return nil
	}
	// The validator wants JSON values, so round trip through JSON.
	b, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	if err := schema.Validate(v); err != nil {
		return err
	}
	return yaml.Unmarshal(raw, cfg)
}

var traceNames = map[string]types.TraceFlags{
	"parse":   types.TraceParse,
	"props":   types.TraceProps,
	"vars":    types.TraceVars,
	"expr":    types.TraceExpr,
	"match":   types.TraceMatch,
	"tasks":   types.TraceTasks,
	"events":  types.TraceEvents,
	"npcs":    types.TraceNPCs,
	"library": types.TraceLibrary,
	"filter":  types.TraceFilter,
	"state":   types.TraceState,
	"all":     types.TraceAll,
}

// ParseTrace turns module names into trace flags.
func ParseTrace(names []string) (types.TraceFlags, error) {
	var flags types.TraceFlags
	for _, n := range names {
		n = strings.ToLower(strings.TrimSpace(n))
		if n == "" {
			continue
		}
		f, ok := traceNames[n]
		if !ok {
			return 0, fmt.Errorf("unknown trace module %q", n)
		}
		flags |= f
	}
	return flags, nil
}

// TraceFlags returns the configured trace modules.
func (c Config) TraceFlags() (types.TraceFlags, error) { return ParseTrace(c.Trace) }
