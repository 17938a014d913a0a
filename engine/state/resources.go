package state

import (
	"github.com/nathoo/adriftcore/types"
)

// stopResource is the file name that stops the current sound or clears
// the current graphic.
const stopResource = "##"

// Resources tracks the sound and graphic a game has requested. The runner
// reports changes to the host once per turn and clears the flags.
type Resources struct {
	// Path and DataLength locate embedded resources: they start
	// DataLength bytes into the story file at Path.
	Path       string
	DataLength int64

	Sound          types.Resource
	SoundChanged   bool
	Graphic        types.Resource
	GraphicChanged bool
}

// HandleResource requests the sound and graphic of the resource group at
// path, such as "Rooms", 3, "Res". Disabled media are ignored.
func (g *Game) HandleResource(path ...any) {
	if g.Version < 400 {
		return
	}
	key := func(name string) []any { return append(append([]any(nil), path...), name) }
	r := &g.Resources

	if g.Props.Bool("Globals", "Sound") {
		if file := g.Props.String(key("SoundFile")...); file != "" {
			next := types.Resource{}
			if file != stopResource {
				next = types.Resource{
					Path:   r.Path,
					Offset: r.DataLength + int64(g.Props.Int(key("SoundOffset")...)),
					Length: int64(g.Props.Int(key("SoundLen")...)),
				}
			}
			g.tracef("sound %q requested", file)
			r.Sound, r.SoundChanged = next, true
		}
	}
	if g.Props.Bool("Globals", "Graphics") {
		if file := g.Props.String(key("GraphicFile")...); file != "" {
			next := types.Resource{}
			if file != stopResource {
				next = types.Resource{
					Path:   r.Path,
					Offset: r.DataLength + int64(g.Props.Int(key("GraphicOffset")...)),
					Length: int64(g.Props.Int(key("GraphicLen")...)),
				}
			}
			g.tracef("graphic %q requested", file)
			r.Graphic, r.GraphicChanged = next, true
		}
	}
}

// TakeResourceChanges returns the pending requests and clears the changed
// flags.
func (g *Game) TakeResourceChanges() Resources {
	r := g.Resources
	g.Resources.SoundChanged = false
	g.Resources.GraphicChanged = false
	return r
}
