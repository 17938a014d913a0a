// Package taf reads ADRIFT story files (.taf) and saved games (.tas) into
// an ordered sequence of text lines.
//
// Version 4.00 story files and all saved games carry a zlib stream. Older
// 3.90 and 3.80 story files are obfuscated with a Visual Basic PRNG stream.
package taf

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/klauspost/compress/zlib"
)

// Version identifies the story file format.
type Version int

const (
	V380 Version = 380
	V390 Version = 390
	V400 Version = 400
)

func (v Version) String() string {
	return fmt.Sprintf("%d.%02d", int(v)/100, int(v)%100)
}

// Kind tells Read whether to expect a signature header.
type Kind int

const (
	GameFile Kind = iota
	SaveFile
)

const (
	headerSize      = 14
	v400HeaderExtra = 8

	inBufferSize  = 16384
	outBufferSize = 31744
)

var (
	ErrInvalidSignature    = errors.New("taf: invalid signature")
	ErrDecompressionFailed = errors.New("taf: decompression failed")
	ErrTruncatedInput      = errors.New("taf: truncated input")
)

var (
	signatureV400 = []byte{0x3c, 0x42, 0x3f, 0xc9, 0x6a, 0x87, 0xc2, 0xcf, 0x93, 0x45, 0x3e, 0x61, 0x39, 0xfa}
	signatureV390 = []byte{0x3c, 0x42, 0x3f, 0xc9, 0x6a, 0x87, 0xc2, 0xcf, 0x94, 0x45, 0x37, 0x61, 0x39, 0xfa}
	signatureV380 = []byte{0x3c, 0x42, 0x3f, 0xc9, 0x6a, 0x87, 0xc2, 0xcf, 0x94, 0x45, 0x36, 0x61, 0x39, 0xfa}
)

// Signature returns the 14-byte header for a story file version.
func Signature(v Version) []byte {
	switch v {
	case V400:
		return append([]byte(nil), signatureV400...)
	case V390:
		return append([]byte(nil), signatureV390...)
	case V380:
		return append([]byte(nil), signatureV380...)
	}
	return nil
}

// slab is a block of decoded lines with CR and LF replaced by NUL.
type slab []byte

// Document is a decoded story or save file.
type Document struct {
	version      Version
	header       []byte
	slabs        []slab
	unterminated bool
	totalIn      int64

	// line index, built once the last slab is appended
	lines []lineRef

	curSlab   int
	curOffset int
}

type lineRef struct {
	slab   int
	offset int
	end    int
}

// Read decodes a story or save file.
func Read(r io.Reader, kind Kind) (*Document, error) {
	doc := &Document{version: V400}
	br := bufio.NewReaderSize(r, inBufferSize)

	if kind == GameFile {
		header := make([]byte, headerSize)
		if _, err := io.ReadFull(br, header); err != nil {
			return nil, fmt.Errorf("%w: reading %d byte header: %v", ErrTruncatedInput, headerSize, err)
		}
		switch {
		case bytes.Equal(header, signatureV400):
			extra := make([]byte, v400HeaderExtra)
			if _, err := io.ReadFull(br, extra); err != nil {
				return nil, fmt.Errorf("%w: reading extended header: %v", ErrTruncatedInput, err)
			}
			header = append(header, extra...)
			doc.version = V400
		case bytes.Equal(header, signatureV390):
			doc.version = V390
		case bytes.Equal(header, signatureV380):
			doc.version = V380
		default:
			return nil, ErrInvalidSignature
		}
		doc.header = header
	}

	var err error
	switch doc.version {
	case V400:
		err = doc.decompress(br, kind == GameFile)
	default:
		err = doc.unobfuscate(br, kind == GameFile)
	}
	if err != nil {
		return nil, err
	}
	doc.index()
	return doc, nil
}

// countingReader counts bytes pulled by the inflater. It implements
// io.ByteReader so the inflater does not read ahead past the stream end.
type countingReader struct {
	r *bufio.Reader
	n int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)
	return n, err
}

func (c *countingReader) ReadByte() (byte, error) {
	b, err := c.r.ReadByte()
	if err == nil {
		c.n++
	}
	return b, err
}

func (d *Document) decompress(br *bufio.Reader, isGame bool) error {
	cr := &countingReader{r: br}
	zr, err := zlib.NewReader(cr)
	if err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return fmt.Errorf("%w: %v", ErrTruncatedInput, err)
		}
		return fmt.Errorf("%w: %v", ErrDecompressionFailed, err)
	}
	defer zr.Close()

	out := make([]byte, outBufferSize)
	used := 0
	for {
		n, rerr := zr.Read(out[used:])
		used += n
		if used > 0 && (n > 0 || rerr != nil) {
			consumed := d.append(out[:used])
			copy(out, out[consumed:used])
			used -= consumed
		}
		if rerr == io.EOF {
			break
		}
		if rerr != nil {
			if errors.Is(rerr, io.ErrUnexpectedEOF) {
				return fmt.Errorf("%w: %v", ErrTruncatedInput, rerr)
			}
			return fmt.Errorf("%w: %v", ErrDecompressionFailed, rerr)
		}
	}
	// A final line with no terminator is still a line.
	if used > 0 {
		d.append(out[:used])
	}

	d.totalIn = cr.n
	if isGame {
		d.totalIn += headerSize + v400HeaderExtra
	}
	return nil
}

func (d *Document) unobfuscate(br *bufio.Reader, isGame bool) error {
	rng := newPRNG()
	rng.skip(headerSize)

	buf := make([]byte, inBufferSize)
	used := 0
	var total int64
	for {
		n, rerr := br.Read(buf[used:])
		for i := used; i < used+n; i++ {
			buf[i] ^= rng.next()
		}
		used += n
		if used > 0 && n > 0 {
			consumed := d.append(buf[:used])
			copy(buf, buf[consumed:used])
			used -= consumed
			total += int64(consumed)
		}
		if rerr == io.EOF {
			break
		}
		if rerr != nil {
			return fmt.Errorf("taf: reading obfuscated data: %w", rerr)
		}
	}
	if used > 0 {
		total += int64(d.append(buf[:used]))
	}

	d.totalIn = total
	if isGame {
		d.totalIn += headerSize
	}
	return nil
}

// append adds lines from buf and returns the number of bytes consumed.
// Everything up to the last LF becomes a slab; with no LF at all the whole
// buffer is taken and the next slab is coalesced with this one.
func (d *Document) append(buf []byte) int {
	n := bytes.LastIndexByte(buf, '\n') + 1
	unterminated := n == 0
	if unterminated {
		n = len(buf)
	}

	s := make(slab, n)
	copy(s, buf[:n])
	for i, c := range s {
		if c == '\n' || c == '\r' {
			s[i] = 0
		}
	}

	if d.unterminated && len(d.slabs) > 0 {
		last := len(d.slabs) - 1
		d.slabs[last] = append(d.slabs[last], s...)
	} else {
		d.slabs = append(d.slabs, s)
	}
	d.unterminated = unterminated
	return n
}

// index walks the slabs the way the line iterator does: a line runs to the
// first NUL and the next line starts two bytes later.
func (d *Document) index() {
	d.lines = d.lines[:0]
	for si, s := range d.slabs {
		off := 0
		for off < len(s) {
			end := bytes.IndexByte(s[off:], 0)
			if end < 0 {
				end = len(s)
			} else {
				end += off
			}
			d.lines = append(d.lines, lineRef{slab: si, offset: off, end: end})
			off = end + 2
		}
	}
}

// Version returns the story file version. Saved games report V400.
func (d *Document) Version() Version { return d.version }

// Header returns the signature bytes read from a story file, or nil.
func (d *Document) Header() []byte { return d.header }

// GameDataLength returns the number of file bytes occupied by the game
// data, header included. Resources are appended after this point.
func (d *Document) GameDataLength() int64 { return d.totalIn }

// Unterminated reports whether the final line had no line terminator.
func (d *Document) Unterminated() bool { return d.unterminated }

// Len returns the number of lines.
func (d *Document) Len() int { return len(d.lines) }

// Line returns line i.
func (d *Document) Line(i int) string {
	ref := d.lines[i]
	return string(d.slabs[ref.slab][ref.offset:ref.end])
}

// Lines returns a copy of every line in order.
func (d *Document) Lines() []string {
	out := make([]string, len(d.lines))
	for i := range d.lines {
		out[i] = d.Line(i)
	}
	return out
}

// First rewinds the line iterator.
func (d *Document) First() {
	d.curSlab = 0
	d.curOffset = 0
}

// Next returns the next line and advances, or false at the end.
func (d *Document) Next() (string, bool) {
	if d.curSlab >= len(d.slabs) {
		return "", false
	}
	s := d.slabs[d.curSlab]
	end := bytes.IndexByte(s[d.curOffset:], 0)
	if end < 0 {
		end = len(s)
	} else {
		end += d.curOffset
	}
	line := string(s[d.curOffset:end])

	d.curOffset = end + 2
	if d.curOffset >= len(s) {
		d.curSlab++
		d.curOffset = 0
	}
	return line, true
}

// More reports whether Next has lines left.
func (d *Document) More() bool {
	return d.curSlab < len(d.slabs)
}
