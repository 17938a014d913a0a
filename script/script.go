// Package script drives a game from a Lua walkthrough. A walkthrough
// issues commands and checks what the game says back:
//
//	expect("take lamp", "You take the lamp.")
//	command("north")
//	if score() < 5 then fail("no points for the lamp") end
package script

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	lua "github.com/yuin/gopher-lua"

	"github.com/nathoo/adriftcore/engine"
	"github.com/nathoo/adriftcore/engine/vars"
)

// Failure is a walkthrough check that did not hold.
type Failure struct {
	Script  string
	Line    int
	Message string
}

func (f *Failure) Error() string {
	return fmt.Sprintf("%s:%d: %s", f.Script, f.Line, f.Message)
}

// Runner runs walkthroughs against an engine.
type Runner struct {
	Engine *engine.Engine

	// Out, if set, receives each command and the game's reply.
	Out io.Writer

	// Commands counts the commands issued so far.
	Commands int

	name    string
	failure *Failure
}

// Run executes the walkthrough at path against eng.
func Run(eng *engine.Engine, path string) error {
	return (&Runner{Engine: eng}).RunFile(path)
}

// RunFile executes the walkthrough at path.
func (r *Runner) RunFile(path string) error {
	src, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return r.RunString(path, string(src))
}

// RunString executes a walkthrough held in src; name labels failures.
func (r *Runner) RunString(name, src string) error {
	L := lua.NewState(lua.Options{SkipOpenLibs: true})
	defer L.Close()
	openSafeLibs(L)
	sandbox(L)
	r.name, r.failure = name, nil

	intro := engine.Text(r.Engine.Start().Segments)
	r.echo("", intro)
	L.SetGlobal("intro", lua.LString(intro))
	r.register(L)

	fn, err := L.Load(strings.NewReader(src), name)
	if err != nil {
		return fmt.Errorf("loading %s: %w", name, err)
	}
	L.Push(fn)
	if err := L.PCall(0, 0, nil); err != nil {
		if r.failure != nil {
			return r.failure
		}
		return fmt.Errorf("running %s: %w", name, err)
	}
	return nil
}

func openSafeLibs(L *lua.LState) {
	lua.OpenBase(L)
	lua.OpenTable(L)
	lua.OpenString(L)
	lua.OpenMath(L)
}

// sandbox removes the globals that reach outside the game.
func sandbox(L *lua.LState) {
	for _, name := range []string{
		"dofile", "loadfile", "load", "loadstring",
		"rawset", "rawget", "rawequal",
		"collectgarbage",
	} {
		L.SetGlobal(name, lua.LNil)
	}
	if tbl, ok := L.GetGlobal("math").(*lua.LTable); ok {
		tbl.RawSetString("randomseed", lua.LNil)
	}
}

func (r *Runner) register(L *lua.LState) {
	e := r.Engine
	fns := map[string]lua.LGFunction{
		"command": func(L *lua.LState) int {
			L.Push(lua.LString(r.command(L.CheckString(1))))
			return 1
		},
		"expect": func(L *lua.LState) int {
			input, want := L.CheckString(1), L.CheckString(2)
			out := r.command(input)
			if !strings.Contains(out, want) {
				r.fail(L, fmt.Sprintf("%q: want %q in %q", input, want, strings.TrimSpace(out)))
			}
			L.Push(lua.LString(out))
			return 1
		},
		"fail": func(L *lua.LState) int {
			r.fail(L, L.OptString(1, "walkthrough failed"))
			return 0
		},
		"score":   func(L *lua.LState) int { L.Push(lua.LNumber(e.Game().S.Score)); return 1 },
		"turns":   func(L *lua.LState) int { L.Push(lua.LNumber(e.Game().S.Turns)); return 1 },
		"room":    func(L *lua.LState) int { L.Push(lua.LString(e.Attributes().Room)); return 1 },
		"running": func(L *lua.LState) int { L.Push(lua.LBool(e.Running())); return 1 },
		"var": func(L *lua.LState) int {
			v, ok := e.Game().Vars.Get(L.CheckString(1))
			switch {
			case !ok:
				L.Push(lua.LNil)
			case v.Type == vars.Integer:
				L.Push(lua.LNumber(v.Int))
			default:
				L.Push(lua.LString(v.Str))
			}
			return 1
		},
	}
	for name, fn := range fns {
		L.SetGlobal(name, L.NewFunction(fn))
	}
}

func (r *Runner) command(input string) string {
	r.Commands++
	out := engine.Text(r.Engine.Step(input).Segments)
	r.echo(input, out)
	return out
}

func (r *Runner) echo(input, out string) {
	if r.Out == nil {
		return
	}
	if input != "" {
		fmt.Fprintf(r.Out, "> %s\n", input)
	}
	io.WriteString(r.Out, out)
}

// fail records a failure at the calling line and stops the script.
func (r *Runner) fail(L *lua.LState, msg string) {
	r.failure = &Failure{Script: r.name, Line: callerLine(L), Message: msg}
	L.RaiseError("%s", msg)
}

// callerLine reads the line number from a "chunk:line:" location.
func callerLine(L *lua.LState) int {
	where := strings.TrimSuffix(L.Where(1), ":")
	if i := strings.LastIndexByte(where, ':'); i >= 0 {
		n, _ := strconv.Atoi(where[i+1:])
		return n
	}
	return 0
}
