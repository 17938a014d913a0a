// Package types defines the data shared between the engine and its hosts.
// This package contains only type definitions and constants, no logic.
package types

import "io"

// TagCode identifies a formatting tag found in story text.
type TagCode int

const (
	TagUnknown TagCode = iota
	TagItalics
	TagEndItalics
	TagBold
	TagEndBold
	TagUnderline
	TagEndUnderline
	TagColor
	TagEndColor
	TagFont
	TagEndFont
	TagBgColor
	TagCenter
	TagEndCenter
	TagRight
	TagEndRight
	TagWait
	TagWaitKey
	TagCls
)

// Segment is one piece of filtered output: plain text, or a tag with its
// argument.
type Segment struct {
	Text  string
	IsTag bool
	Tag   TagCode
	Arg   string
}

// Resource locates a sound or graphic embedded in the game file. A zero
// Resource means "stop" or "clear".
type Resource struct {
	Path    string
	Offset  int64
	Length  int64
	Looping bool
}

// Result is the output of a single game turn.
type Result struct {
	Input    string
	Segments []Segment

	ScoreChange int
	Running     bool
	Completed   bool

	SoundChanged   bool
	Sound          Resource
	GraphicChanged bool
	Graphic        Resource
}

// ConfirmKind names the yes/no question the engine is asking.
type ConfirmKind int

const (
	ConfirmQuit ConfirmKind = iota
	ConfirmRestart
	ConfirmSave
	ConfirmRestore
	ConfirmViewHints
)

// Attributes describe the game for a host's status line.
type Attributes struct {
	Title     string
	Author    string
	Room      string
	Status    string
	Score     int
	MaxScore  int
	Turns     int
	Running   bool
	Completed bool
}

// Hint is one hint topic with its two levels of help.
type Hint struct {
	Question string
	Subtle   string
	Unsubtle string
}

// TraceFlags select the engine modules that write trace lines.
type TraceFlags uint

const (
	TraceParse TraceFlags = 1 << iota
	TraceProps
	TraceVars
	TraceExpr
	TraceMatch
	TraceTasks
	TraceEvents
	TraceNPCs
	TraceLibrary
	TraceFilter
	TraceState

	TraceAll = TraceParse | TraceProps | TraceVars | TraceExpr | TraceMatch | TraceTasks |
		TraceEvents | TraceNPCs | TraceLibrary | TraceFilter | TraceState
)

// Host is everything the engine needs from the program running it.
type Host interface {
	PrintString(s string)
	PrintTag(code TagCode, arg string)

	// ReadLine blocks for the next command. io.EOF ends the game.
	ReadLine() (string, error)
	Confirm(kind ConfirmKind) bool

	// CreateSave and OpenSave return the stream for a saved game. A nil
	// stream with a nil error means the player cancelled.
	CreateSave() (io.WriteCloser, error)
	OpenSave() (io.ReadCloser, error)

	DisplayHints(hints []Hint)
	UpdateSound(r Resource)
	UpdateGraphic(r Resource)
}
