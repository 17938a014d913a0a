package taf

import (
	"bytes"
	"fmt"
	"io"

	"github.com/klauspost/compress/zlib"
)

func joinLines(lines []string) []byte {
	var buf bytes.Buffer
	for _, l := range lines {
		buf.WriteString(l)
		buf.WriteString("\r\n")
	}
	return buf.Bytes()
}

// Write encodes lines as a story file of the given version.
func Write(w io.Writer, v Version, lines []string) error {
	sig := Signature(v)
	if sig == nil {
		return fmt.Errorf("taf: cannot write version %d", int(v))
	}
	if _, err := w.Write(sig); err != nil {
		return fmt.Errorf("taf: writing signature: %w", err)
	}

	payload := joinLines(lines)
	if v != V400 {
		if _, err := w.Write(Obfuscate(payload)); err != nil {
			return fmt.Errorf("taf: writing payload: %w", err)
		}
		return nil
	}

	// The extension is opaque to the reader; the compiler stores a
	// zero-padded text field here.
	if _, err := w.Write(make([]byte, v400HeaderExtra)); err != nil {
		return fmt.Errorf("taf: writing header extension: %w", err)
	}
	return deflate(w, payload)
}

// WriteSave encodes lines as a saved game: a zlib stream with no header.
func WriteSave(w io.Writer, lines []string) error {
	return deflate(w, joinLines(lines))
}

func deflate(w io.Writer, payload []byte) error {
	zw := zlib.NewWriter(w)
	if _, err := zw.Write(payload); err != nil {
		zw.Close()
		return fmt.Errorf("taf: compressing: %w", err)
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("taf: compressing: %w", err)
	}
	return nil
}
