// Adriftcore plays ADRIFT 4 stories (.taf) in a terminal.
// Usage: adriftcore [--version] [--plain] [--trace=list] [--config <file>] [--script <file>]
//
//	[--walkthrough <file.lua>] [--transcript <file>] <game.taf>
package main

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/nathoo/adriftcore/cli"
	"github.com/nathoo/adriftcore/config"
	"github.com/nathoo/adriftcore/engine"
	"github.com/nathoo/adriftcore/loader"
	"github.com/nathoo/adriftcore/saves"
	"github.com/nathoo/adriftcore/script"
	"github.com/nathoo/adriftcore/transcript"
	"github.com/nathoo/adriftcore/tui"
)

// Set via -ldflags at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

const usage = "Usage: adriftcore [--version] [--plain] [--trace=list] [--config <file>] [--script <file>] [--walkthrough <file.lua>] [--transcript <file>] <game.taf>\n"

type options struct {
	gameFile    string
	configFile  string
	scriptFile  string
	walkthrough string
	transcript  string
	trace       []string
	plain       bool
}

func main() {
	opts, ok := parseArgs(os.Args[1:])
	if !ok {
		os.Exit(1)
	}
	if err := run(opts); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// parseArgs reads the command line. Options taking a value accept both
// "--opt value" and "--opt=value".
func parseArgs(args []string) (options, bool) {
	var opts options
	for i := 0; i < len(args); i++ {
		name, value, hasValue := strings.Cut(args[i], "=")
		needValue := func() (string, bool) {
			if hasValue {
				return value, true
			}
			if i+1 >= len(args) {
				fmt.Fprintf(os.Stderr, "%s requires a value\n", name)
				return "", false
			}
			i++
			return args[i], true
		}

		switch name {
		case "--version":
			fmt.Printf("adriftcore %s (commit %s, built %s)\n", version, commit, date)
			os.Exit(0)
		case "--plain":
			opts.plain = true
		case "--trace":
			// A bare --trace turns everything on.
			if !hasValue {
				opts.trace = []string{"all"}
				continue
			}
			opts.trace = strings.Split(value, ",")
		case "--config", "--script", "--walkthrough", "--transcript":
			v, ok := needValue()
			if !ok {
				return opts, false
			}
			switch name {
			case "--config":
				opts.configFile = v
			case "--script":
				opts.scriptFile = v
			case "--walkthrough":
				opts.walkthrough = v
			case "--transcript":
				opts.transcript = v
			}
		default:
			if strings.HasPrefix(name, "--") {
				fmt.Fprintf(os.Stderr, "unknown option %s\n%s", name, usage)
				return opts, false
			}
			if opts.gameFile == "" {
				opts.gameFile = args[i]
			}
		}
	}

	if opts.gameFile == "" {
		fmt.Fprint(os.Stderr, usage)
		return opts, false
	}
	return opts, true
}

func run(opts options) error {
	cfg, err := config.Load(opts.configFile)
	if err != nil {
		return err
	}
	if opts.trace != nil {
		cfg.Trace = opts.trace
	}
	if opts.plain {
		cfg.Plain = true
	}
	if opts.transcript != "" {
		cfg.Transcript = opts.transcript
	}
	flags, err := cfg.TraceFlags()
	if err != nil {
		return err
	}

	useTUI := opts.scriptFile == "" && opts.walkthrough == "" &&
		!cfg.Plain && term.IsTerminal(int(os.Stdout.Fd()))

	logger := log.New(os.Stderr, "[adriftcore] ", log.LstdFlags|log.Lmicroseconds)
	if useTUI {
		// Anything written to stderr would tear the screen.
		logger.SetOutput(io.Discard)
	}

	story, err := loader.LoadFile(opts.gameFile)
	if err != nil {
		return fmt.Errorf("loading game: %w", err)
	}
	for _, w := range story.Warnings {
		logger.Printf("warning: %s", w)
	}

	eng, err := engine.New(story, engine.Options{Seed: cfg.Seed, Trace: flags, Logger: logger})
	if err != nil {
		return err
	}

	// Walkthrough mode: the Lua script drives the game and checks it.
	if opts.walkthrough != "" {
		r := &script.Runner{Engine: eng, Out: os.Stdout}
		if err := r.RunFile(opts.walkthrough); err != nil {
			return err
		}
		fmt.Printf("\nWalkthrough passed: %d commands.\n", r.Commands)
		return nil
	}

	store, err := saves.Open(cfg.SaveDir)
	if err != nil {
		return err
	}
	defer store.Close()

	var record *transcript.Writer
	if cfg.Transcript != "" {
		if record, err = transcript.Create(cfg.Transcript); err != nil {
			return err
		}
		defer record.Close()
	}

	if useTUI {
		return tui.Run(eng, tui.Options{
			Saves:       store,
			Transcript:  record,
			Prompt:      cfg.Prompt,
			History:     cfg.History,
			HistoryFile: config.HistoryPath(),
		})
	}

	c := cli.New(eng, store)
	c.Transcript = record
	c.Logger = logger
	c.Prompt = cfg.Prompt
	c.Width = cfg.Width
	c.Trace = flags != 0

	// Script mode: feed the file as input, echoing each command.
	if opts.scriptFile != "" {
		f, err := os.Open(opts.scriptFile)
		if err != nil {
			return fmt.Errorf("opening script: %w", err)
		}
		defer f.Close()
		c.In = f
		c.EchoInput = true
	}
	return c.Run()
}
