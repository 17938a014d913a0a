package engine

import (
	"fmt"
	"io"

	"github.com/nathoo/adriftcore/engine/save"
	"github.com/nathoo/adriftcore/types"
)

// Version is the runtime's release.
const Version = "1.0.0"

func (e *Engine) cmdQuit() bool {
	e.admin = true
	if e.host.Confirm(types.ConfirmQuit) {
		e.g.S.Running = false
		e.quit = true
	}
	return true
}

func (e *Engine) cmdRestart() bool {
	e.admin = true
	if e.host.Confirm(types.ConfirmRestart) {
		e.g.S.Running = false
		e.doRestart = true
	}
	return true
}

func (e *Engine) cmdSave() bool {
	e.admin = true
	if !e.host.Confirm(types.ConfirmSave) {
		return true
	}
	w, err := e.host.CreateSave()
	if err == nil && w == nil {
		return true
	}
	if err == nil {
		err = save.Save(e.g, w)
		if cerr := w.Close(); err == nil {
			err = cerr
		}
	}
	if err != nil {
		e.log.Printf("save: %v", err)
		e.g.Print("Save failed.\n")
		return true
	}
	e.g.Print("Ok.\n")
	return true
}

func (e *Engine) cmdRestore() bool {
	e.admin = true
	if !e.host.Confirm(types.ConfirmRestore) {
		return true
	}
	r, err := e.host.OpenSave()
	if err == nil && r == nil {
		return true
	}
	if err == nil {
		err = e.restoreFrom(r)
		r.Close()
	}
	if err != nil {
		e.log.Printf("restore: %v", err)
		e.g.Print("Restore failed.\n")
		return true
	}
	e.g.Print("Ok.\n")
	e.g.S.Running = false
	e.doRestore = true
	return true
}

func (e *Engine) restoreFrom(r io.Reader) error {
	s, err := save.Restore(e.g, r)
	if err != nil {
		return err
	}
	e.g.Install(s)
	return nil
}

func (e *Engine) cmdUndoCommand() bool {
	e.admin = true
	return e.cmdUndo()
}

// cmdUndo takes back the last turn, or says why it can't.
func (e *Engine) cmdUndo() bool {
	g := e.g
	if e.undoAvailable {
		e.restoreUndo()
		e.printRoomName(g.S.PlayerRoom)
		g.Print("The previous turn has been undone.\n")
		e.stopSound = true
		return true
	}
	if g.S.Turns == 0 {
		g.Print("You can't undo what hasn't been done.\n")
	} else {
		g.Print("Sorry, no more undo is available.\n")
	}
	return true
}

func (e *Engine) cmdAgain() bool {
	e.admin = true
	e.doAgain = true
	return true
}

func (e *Engine) cmdWait() bool {
	e.g.Print("Time passes...\n")
	e.waitTurns = e.g.Props.Int("Globals", "WaitTurns")
	return true
}

func (e *Engine) cmdTurns() bool {
	e.admin = true
	turns := e.g.S.Turns
	plural := "s"
	if turns == 1 {
		plural = ""
	}
	e.g.Printf("You have taken %d turn%s so far.\n", turns, plural)
	return true
}

func (e *Engine) cmdScore() bool {
	g := e.g
	e.admin = true
	maxScore := g.Props.Int("Globals", "MaxScore")
	percent := 0
	if maxScore > 0 {
		percent = g.S.Score * 100 / maxScore
	}
	g.Printf("Your score is %d out of a maximum of %d.  (%d%%)\n", g.S.Score, maxScore, percent)
	return true
}

func (e *Engine) cmdHints() bool {
	g := e.g
	e.admin = true
	if hints := e.Hints(); len(hints) > 0 {
		if e.host.Confirm(types.ConfirmViewHints) {
			e.flushText()
			e.host.DisplayHints(hints)
		}
		return true
	}
	for task := 0; task < g.Tasks(); task++ {
		if e.hasHints(task) {
			g.Print("No hints currently available.\n")
			return true
		}
	}
	g.Print("There are no hints available for this adventure.\nYou're just going to have to work it out for yourself...\n")
	return true
}

func (e *Engine) cmdVerbose(verbose bool) bool {
	e.admin = true
	e.g.S.Verbose = verbose
	if verbose {
		e.g.Print("The game is now in its verbose mode, which always gives long descriptions of locations (even if you've been there before).\n")
	} else {
		e.g.Print("The game is now in its brief mode, which gives long descriptions of places never before visited and short descriptions otherwise.\n")
	}
	return true
}

func (e *Engine) cmdNotify(on bool) bool {
	e.admin = true
	e.g.S.NotifyScore = on
	return e.cmdNotifyQuery()
}

func (e *Engine) cmdNotifyQuery() bool {
	e.admin = true
	if e.g.S.NotifyScore {
		e.g.Print("Score change notification is on.\n")
	} else {
		e.g.Print("Score change notification is off.\n")
	}
	return true
}

const helpText = `These are some of the typical commands used in this adventure:

  [N]orth, [E]ast, [S]outh, [W]est, [U]p, [D]own, [In], [O]ut,
  [L]ook, [X]/Examine, [I]nventory, Take, Drop, Open, Close,
  Put ... in/on ..., Wear, Remove, Give ... to ..., Ask ... about ...,
  Again, Wait, Undo, Save, Restore, Restart, Score, Hints, Quit

Use the "notify on" and "notify off" commands to control score
change notifications, and "verbose" and "brief" to choose how rooms
are described.
`

const licenseText = `adriftcore plays interactive fiction written in the ADRIFT 3.8, 3.9
and 4.0 formats. It is free software, distributed in the hope that it will
be useful, but WITHOUT ANY WARRANTY; without even the implied warranty
of MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.
`

func (e *Engine) cmdHelp() bool {
	e.admin = true
	e.printDirect(helpText)
	return true
}

func (e *Engine) cmdLicense() bool {
	e.admin = true
	e.printDirect(licenseText)
	return true
}

func (e *Engine) cmdVersion() bool {
	e.admin = true
	e.printDirect(fmt.Sprintf("adriftcore version %s, playing a version %s story.\n",
		Version, e.g.Props.String("VersionString")))
	return true
}

func (e *Engine) cmdInformation() bool {
	g := e.g
	e.admin = true
	g.Print("\"" + g.Props.String("Globals", "GameName") + "\"\n")
	if author := g.Props.String("Globals", "GameAuthor"); author != "" {
		g.Print("by " + author + "\n")
	}
	if date := g.Props.String("CompileDate"); date != "" {
		g.Print("Compiled " + date + "\n")
	}
	return true
}

func (e *Engine) cmdClear() bool {
	e.admin = true
	e.g.Filter.PrintTag(types.TagCls)
	e.g.Print("Screen cleared.\n")
	return true
}
