package taf

const prngSeed = 0xa09e86

// prng is the Visual Basic Rnd() generator used to obfuscate 3.90 and 3.80
// story files.
type prng struct {
	state uint32
}

func newPRNG() *prng {
	return &prng{state: prngSeed}
}

// next returns the next obfuscation byte, in the range 0..254.
func (p *prng) next() byte {
	p.state = (p.state*0x43fd43fd + 0xc39ec3) & 0xffffff
	return byte((255 * p.state) / 0x1000000)
}

func (p *prng) skip(n int) {
	for i := 0; i < n; i++ {
		p.next()
	}
}

// Obfuscate XORs payload bytes with the PRNG stream, synchronized as if the
// 14 byte header had already been read. Applying it twice restores the
// input.
func Obfuscate(payload []byte) []byte {
	rng := newPRNG()
	rng.skip(headerSize)
	out := make([]byte, len(payload))
	for i, b := range payload {
		out[i] = b ^ rng.next()
	}
	return out
}
