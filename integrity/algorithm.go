package integrity

import (
	"crypto/sha1"
	"crypto/sha256"
	"crypto/sha512"
	"hash"
	"sort"

	"github.com/pkg/errors"
	"github.com/zeebo/blake3"
)

// Algorithm identifies a digest algorithm.  The numeric order is the
// strength order: a larger value is a stronger algorithm.
type Algorithm int

const (
	Sha1 Algorithm = iota + 1
	Sha256
	Blake3
	Sha384
	Sha512
)

// Default is the algorithm used for new content when nobody asks
// for anything else.
const Default = Sha512

var algoNames = map[Algorithm]string{
	Sha1:   "sha1",
	Sha256: "sha256",
	Blake3: "blake3",
	Sha384: "sha384",
	Sha512: "sha512",
}

var algoSizes = map[Algorithm]int{
	Sha1:   sha1.Size,
	Sha256: sha256.Size,
	Blake3: 32,
	Sha384: sha512.Size384,
	Sha512: sha512.Size,
}

// Algorithms returns every supported algorithm, weakest first.
func Algorithms() (algos []Algorithm) {
	for algo := range algoNames {
		algos = append(algos, algo)
	}
	sort.Slice(algos, func(i, j int) bool { return algos[i] < algos[j] })
	return
}

// ParseAlgorithm maps an algorithm name such as "sha512" to its
// Algorithm.
func ParseAlgorithm(name string) (Algorithm, error) {
	for algo, n := range algoNames {
		if n == name {
			return algo, nil
		}
	}
	return 0, errors.Wrapf(ErrMalformed, "unknown algorithm %q", name)
}

func (algo Algorithm) String() string {
	name, ok := algoNames[algo]
	if !ok {
		return "unknown"
	}
	return name
}

// Valid reports whether algo is one of the supported algorithms.
func (algo Algorithm) Valid() bool {
	_, ok := algoNames[algo]
	return ok
}

// Size is the digest length in bytes.
func (algo Algorithm) Size() int {
	return algoSizes[algo]
}

// New returns a fresh hasher for algo, or nil if algo is not
// supported.
func (algo Algorithm) New() hash.Hash {
	switch algo {
	case Sha1:
		return sha1.New()
	case Sha256:
		return sha256.New()
	case Blake3:
		return blake3.New()
	case Sha384:
		return sha512.New384()
	case Sha512:
		return sha512.New()
	}
	return nil
}

// PickAlgorithm returns the strongest valid algorithm among
// candidates, or Default if there are none.
func PickAlgorithm(candidates ...Algorithm) (best Algorithm) {
	for _, algo := range candidates {
		if algo.Valid() && algo > best {
			best = algo
		}
	}
	if best == 0 {
		best = Default
	}
	return
}
