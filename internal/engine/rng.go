package engine

import (
	"crypto/hmac"
	"crypto/sha256"
	"fmt"
	"math"
	"math/rand/v2"
)

// Source is the random source injected into everything that draws symbols
// or rolls the lucky coin.
type Source interface {
	// Intn returns a value in [0, n). n must be > 0.
	Intn(n int) int
	// Float64 returns a value in [0, 1).
	Float64() float64
}

// ByteGenerator streams HMAC-SHA256 bytes for a (serverSeed, clientSeed, nonce)
// triple. The same triple always produces the same stream, which makes a
// session replayable.
type ByteGenerator struct {
	serverSeed   string
	clientSeed   string
	nonce        uint64
	currentRound uint64
	currentPos   int
	buffer       [32]byte
}

// NewByteGenerator creates a byte generator positioned at cursor.
func NewByteGenerator(serverSeed, clientSeed string, nonce uint64, cursor uint64) *ByteGenerator {
	bg := &ByteGenerator{
		serverSeed:   serverSeed,
		clientSeed:   clientSeed,
		nonce:        nonce,
		currentRound: cursor / 32,
		currentPos:   int(cursor % 32),
	}
	bg.generateRound()
	return bg
}

// Next returns the next byte from the generator
func (bg *ByteGenerator) Next() byte {
	if bg.currentPos >= 32 {
		bg.currentRound++
		bg.currentPos = 0
		bg.generateRound()
	}

	b := bg.buffer[bg.currentPos]
	bg.currentPos++
	return b
}

// NextFloat generates the next float using exactly 4 bytes
func (bg *ByteGenerator) NextFloat() float64 {
	return bytesToFloat([4]byte{bg.Next(), bg.Next(), bg.Next(), bg.Next()})
}

func (bg *ByteGenerator) generateRound() {
	h := hmac.New(sha256.New, []byte(bg.serverSeed))
	fmt.Fprintf(h, "%s:%d:%d", bg.clientSeed, bg.nonce, bg.currentRound)
	copy(bg.buffer[:], h.Sum(nil))
}

func bytesToFloat(bytes [4]byte) float64 {
	result := 0.0
	for i, b := range bytes {
		result += float64(b) / math.Pow(256, float64(i+1))
	}
	return result
}

// SeededSource is a Source backed by a ByteGenerator.
type SeededSource struct {
	gen *ByteGenerator
}

// NewSeededSource returns a replayable Source for the given seeds.
func NewSeededSource(serverSeed, clientSeed string, nonce uint64) *SeededSource {
	return &SeededSource{gen: NewByteGenerator(serverSeed, clientSeed, nonce, 0)}
}

// Float64 returns the next float in [0, 1).
func (s *SeededSource) Float64() float64 {
	return s.gen.NextFloat()
}

// Intn maps the next float onto [0, n).
func (s *SeededSource) Intn(n int) int {
	if n <= 0 {
		panic("engine: Intn called with n <= 0")
	}
	v := int(s.gen.NextFloat() * float64(n))
	if v >= n {
		v = n - 1
	}
	return v
}

// MathSource adapts a math/rand/v2 generator to Source.
type MathSource struct {
	r *rand.Rand
}

// NewMathSource returns a PCG-backed Source seeded with seed.
func NewMathSource(seed uint64) *MathSource {
	return &MathSource{r: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

func (s *MathSource) Intn(n int) int    { return s.r.IntN(n) }
func (s *MathSource) Float64() float64 { return s.r.Float64() }
