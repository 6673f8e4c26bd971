package dice

import (
	"crypto/rand"
	"math/big"
	"sync"
)

// cryptoSource implements Source using crypto/rand.
type cryptoSource struct{}

// NewCryptoSource returns a Source backed by crypto/rand.
//
// Postcondition: Every value returned by Intn is in [0, n).
func NewCryptoSource() Source {
	return &cryptoSource{}
}

// Intn returns a cryptographically secure random int in [0, n).
//
// Precondition: n > 0. Panics with "dice: Intn called with n <= 0" if n <= 0.
func (c *cryptoSource) Intn(n int) int {
	if n <= 0 {
		panic("dice: Intn called with n <= 0")
	}
	val, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		panic("dice: crypto/rand failure: " + err.Error())
	}
	return int(val.Int64())
}

// FixedSource replays a scripted sequence of die faces. Each value is the
// face that should come up (1-based); it is clamped into [1, n] for the die
// actually rolled. When the sequence is exhausted it starts over.
//
// Intended for tests and for replaying recorded sessions.
type FixedSource struct {
	mu    sync.Mutex
	faces []int
	next  int
}

// NewFixedSource returns a FixedSource yielding faces in order.
//
// Precondition: len(faces) > 0.
func NewFixedSource(faces ...int) *FixedSource {
	if len(faces) == 0 {
		panic("dice: NewFixedSource requires at least one face")
	}
	return &FixedSource{faces: faces}
}

// Intn returns the next scripted face minus one, clamped to [0, n).
func (f *FixedSource) Intn(n int) int {
	if n <= 0 {
		panic("dice: Intn called with n <= 0")
	}
	f.mu.Lock()
	face := f.faces[f.next%len(f.faces)]
	f.next++
	f.mu.Unlock()

	switch {
	case face < 1:
		return 0
	case face > n:
		return n - 1
	default:
		return face - 1
	}
}

// Calls reports how many values have been drawn so far.
func (f *FixedSource) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.next
}
