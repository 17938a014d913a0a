package tui

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/nathoo/adriftcore/engine"
	"github.com/nathoo/adriftcore/saves"
	"github.com/nathoo/adriftcore/types"
)

const defaultSlot = "quicksave"

// host answers the engine's questions while a turn runs inside Update.
// The screen cannot block for input mid-turn, so confirmations pass and
// in-game save and restore use the quicksave slot. Anything worth
// telling the player is queued as a note for the turn's output.
type host struct {
	engine *engine.Engine
	saves  *saves.Store
	notes  []string
}

var _ types.Host = (*host)(nil)

// take returns and clears the queued notes.
func (h *host) take() []string {
	notes := h.notes
	h.notes = nil
	return notes
}

func (h *host) note(format string, args ...any) {
	h.notes = append(h.notes, fmt.Sprintf(format, args...))
}

func (h *host) put(name string, data []byte) error {
	if h.saves == nil {
		return errors.New("no save directory")
	}
	a := h.engine.Attributes()
	_, err := h.saves.Put(name, a.Title, a.Turns, a.Score, data)
	return err
}

func (h *host) get(name string) ([]byte, error) {
	if h.saves == nil {
		return nil, errors.New("no save directory")
	}
	return h.saves.Get(name)
}

func (h *host) list() []string {
	if h.saves == nil {
		return []string{"No save directory."}
	}
	slots, err := h.saves.List()
	if err != nil {
		return []string{fmt.Sprintf("Listing saves failed: %v", err)}
	}
	if len(slots) == 0 {
		return []string{"No saved games."}
	}
	lines := make([]string, len(slots))
	for i, s := range slots {
		lines[i] = s.Describe()
	}
	return lines
}

// Output arrives through Result segments, so the print calls are unused.
func (h *host) PrintString(string) {}
func (h *host) PrintTag(types.TagCode, string) {}
func (h *host) ReadLine() (string, error) { return "", io.EOF }
func (h *host) Confirm(types.ConfirmKind) bool { return true }
func (h *host) UpdateSound(types.Resource) {}
func (h *host) UpdateGraphic(types.Resource) {}

type slotWriter struct {
	bytes.Buffer
	h *host
}

func (w *slotWriter) Close() error {
	if err := w.h.put(defaultSlot, w.Bytes()); err != nil {
		return err
	}
	w.h.note("Game saved to %s.", defaultSlot)
	return nil
}

func (h *host) CreateSave() (io.WriteCloser, error) {
	if h.saves == nil {
		h.note("Saving is not available.")
		return nil, nil
	}
	return &slotWriter{h: h}, nil
}

func (h *host) OpenSave() (io.ReadCloser, error) {
	data, err := h.get(defaultSlot)
	if errors.Is(err, saves.ErrNotFound) {
		h.note("No saved game in %s.", defaultSlot)
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

// DisplayHints shows each question with its subtle hint; /hints shows
// the stronger ones too.
func (h *host) DisplayHints(hints []types.Hint) {
	for _, hint := range hints {
		h.note("%s", hint.Question)
		if hint.Subtle != "" {
			h.note("  %s", hint.Subtle)
		}
	}
}
