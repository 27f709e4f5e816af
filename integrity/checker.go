package integrity

import (
	"hash"
)

// Builder hashes a stream under one or more algorithms at once.
type Builder struct {
	algos  []Algorithm
	hashes []hash.Hash
	size   int64
}

// NewBuilder returns a Builder for algos.  Invalid and repeated
// algorithms are ignored; with none left it uses Default.
func NewBuilder(algos ...Algorithm) *Builder {
	b := &Builder{}
	seen := map[Algorithm]bool{}
	for _, algo := range algos {
		if !algo.Valid() || seen[algo] {
			continue
		}
		seen[algo] = true
		b.algos = append(b.algos, algo)
		b.hashes = append(b.hashes, algo.New())
	}
	if len(b.algos) == 0 {
		b.algos = []Algorithm{Default}
		b.hashes = []hash.Hash{Default.New()}
	}
	return b
}

// Write feeds p to every hasher.  It never fails.
func (b *Builder) Write(p []byte) (int, error) {
	for _, h := range b.hashes {
		h.Write(p)
	}
	b.size += int64(len(p))
	return len(p), nil
}

// Size is the number of bytes written so far.
func (b *Builder) Size() int64 { return b.size }

// Sum returns the Integrity of everything written so far.
func (b *Builder) Sum() Integrity {
	hashes := make([]Hash, len(b.hashes))
	for i, h := range b.hashes {
		hashes[i] = Hash{algo: b.algos[i], digest: h.Sum(nil)}
	}
	return New(hashes...)
}

// Checker is a sink that verifies a stream against an expected
// Integrity, hashing once per algorithm the expected value carries.
type Checker struct {
	expected Integrity
	builder  *Builder
}

func NewChecker(expected Integrity) *Checker {
	return &Checker{
		expected: expected,
		builder:  NewBuilder(expected.Algorithms()...),
	}
}

func (c *Checker) Write(p []byte) (int, error) {
	return c.builder.Write(p)
}

// Size is the number of bytes checked so far.
func (c *Checker) Size() int64 { return c.builder.Size() }

// Result finalizes the check.  On success it returns the algorithm
// that matched; otherwise the error is a *MismatchError.
func (c *Checker) Result() (Algorithm, error) {
	actual := c.builder.Sum()
	if algo, ok := c.expected.Matches(actual); ok {
		return algo, nil
	}
	return 0, &MismatchError{Expected: c.expected, Actual: actual}
}
