// Package integrity models Subresource-Integrity style digests: one or
// more algorithm-tagged hashes of the same bytes, rendered as text like
// "sha512-<base64> sha1-<base64>".
package integrity

import (
	"bytes"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"

	"github.com/pkg/errors"
)

var (
	// ErrMalformed is returned for digest text that cannot be parsed.
	ErrMalformed = errors.New("malformed integrity")
	// ErrMismatch is returned when data does not hash to the expected
	// digest.
	ErrMismatch = errors.New("integrity mismatch")
)

// MismatchError describes a failed verification.
type MismatchError struct {
	Expected Integrity
	Actual   Integrity
}

func (e *MismatchError) Error() string {
	return fmt.Sprintf("%v: expected %s, got %s", ErrMismatch, e.Expected, e.Actual)
}

func (e *MismatchError) Unwrap() error {
	return ErrMismatch
}

// Hash is a single algorithm/digest pair.  The zero Hash is invalid.
type Hash struct {
	algo    Algorithm
	digest  []byte
	options []string
}

// NewHash checks that digest has the right length for algo and
// returns a Hash holding a private copy of it.
func NewHash(algo Algorithm, digest []byte) (h Hash, err error) {
	if !algo.Valid() {
		return h, errors.Wrapf(ErrMalformed, "unknown algorithm %d", int(algo))
	}
	if len(digest) != algo.Size() {
		return h, errors.Wrapf(ErrMalformed, "%s digest is %d bytes, want %d", algo, len(digest), algo.Size())
	}
	h.algo = algo
	h.digest = append([]byte(nil), digest...)
	return
}

func parseHash(token string) (h Hash, err error) {
	parts := strings.Split(token, "?")
	name, b64, ok := strings.Cut(parts[0], "-")
	if !ok {
		return h, errors.Wrapf(ErrMalformed, "missing algorithm separator in %q", token)
	}
	algo, err := ParseAlgorithm(name)
	if err != nil {
		return
	}
	digest, err := base64.StdEncoding.DecodeString(b64)
	if err != nil {
		digest, err = base64.RawStdEncoding.DecodeString(b64)
		if err != nil {
			return h, errors.Wrapf(ErrMalformed, "bad base64 in %q", token)
		}
	}
	h, err = NewHash(algo, digest)
	if err != nil {
		return
	}
	for _, opt := range parts[1:] {
		if opt != "" {
			h.options = append(h.options, opt)
		}
	}
	return
}

func (h Hash) Algorithm() Algorithm { return h.algo }

// Digest returns a copy of the raw digest bytes.
func (h Hash) Digest() []byte { return append([]byte(nil), h.digest...) }

// Hex is the lowercase hexadecimal form of the digest.  Paths are
// built from it.
func (h Hash) Hex() string { return hex.EncodeToString(h.digest) }

func (h Hash) Base64() string { return base64.StdEncoding.EncodeToString(h.digest) }

// Options returns the "?opt" suffixes carried by the hash, if any.
func (h Hash) Options() []string { return append([]string(nil), h.options...) }

func (h Hash) IsZero() bool { return h.algo == 0 }

// Equal compares algorithm and digest.  Options are ignored.
func (h Hash) Equal(other Hash) bool {
	return h.algo == other.algo && bytes.Equal(h.digest, other.digest)
}

func (h Hash) String() string {
	if h.IsZero() {
		return ""
	}
	var sb strings.Builder
	sb.WriteString(h.algo.String())
	sb.WriteByte('-')
	sb.WriteString(h.Base64())
	for _, opt := range h.options {
		sb.WriteByte('?')
		sb.WriteString(opt)
	}
	return sb.String()
}

// Integrity is a set of hashes of the same content, kept strongest
// first.  The zero Integrity holds no hashes.
type Integrity struct {
	hashes []Hash
}

// New builds an Integrity from hashes, dropping invalid ones and exact
// duplicates.
func New(hashes ...Hash) (sri Integrity) {
	for _, h := range hashes {
		if h.IsZero() || sri.contains(h) {
			continue
		}
		sri.hashes = append(sri.hashes, h)
	}
	sort.SliceStable(sri.hashes, func(i, j int) bool {
		return sri.hashes[i].algo > sri.hashes[j].algo
	})
	return
}

// Parse reads whitespace-separated hash tokens.  Any unknown algorithm,
// bad encoding, or wrong digest length fails the whole parse.
func Parse(text string) (sri Integrity, err error) {
	tokens := strings.Fields(text)
	if len(tokens) == 0 {
		return sri, errors.Wrap(ErrMalformed, "empty integrity")
	}
	var hashes []Hash
	for _, token := range tokens {
		h, err := parseHash(token)
		if err != nil {
			return sri, err
		}
		hashes = append(hashes, h)
	}
	return New(hashes...), nil
}

// MustParse is Parse for constants in tests and examples.
func MustParse(text string) Integrity {
	sri, err := Parse(text)
	if err != nil {
		panic(err)
	}
	return sri
}

// Compute hashes data with algo.
func Compute(algo Algorithm, data []byte) Integrity {
	b := NewBuilder(algo)
	b.Write(data)
	return b.Sum()
}

func (sri Integrity) contains(h Hash) bool {
	for _, have := range sri.hashes {
		if have.Equal(h) {
			return true
		}
	}
	return false
}

func (sri Integrity) IsZero() bool { return len(sri.hashes) == 0 }

// Hashes returns the hashes strongest first.
func (sri Integrity) Hashes() []Hash {
	return append([]Hash(nil), sri.hashes...)
}

// Pick returns the strongest hash.
func (sri Integrity) Pick() Hash {
	if sri.IsZero() {
		return Hash{}
	}
	return sri.hashes[0]
}

// Algorithms lists the distinct algorithms present, strongest first.
func (sri Integrity) Algorithms() (algos []Algorithm) {
	for _, h := range sri.hashes {
		if len(algos) == 0 || algos[len(algos)-1] != h.algo {
			algos = append(algos, h.algo)
		}
	}
	return
}

// Concat merges the hashes of two Integrity values for the same content.
func (sri Integrity) Concat(other Integrity) Integrity {
	return New(append(sri.Hashes(), other.hashes...)...)
}

// Matches reports the strongest algorithm under which sri and other
// carry the same digest.
func (sri Integrity) Matches(other Integrity) (Algorithm, bool) {
	for _, h := range sri.hashes {
		if other.contains(h) {
			return h.algo, true
		}
	}
	return 0, false
}

// Equal reports whether both values hold the same set of hashes.
func (sri Integrity) Equal(other Integrity) bool {
	if len(sri.hashes) != len(other.hashes) {
		return false
	}
	for _, h := range sri.hashes {
		if !other.contains(h) {
			return false
		}
	}
	return true
}

// Check verifies data in one call.
func (sri Integrity) Check(data []byte) (Algorithm, error) {
	c := NewChecker(sri)
	c.Write(data)
	return c.Result()
}

func (sri Integrity) String() string {
	parts := make([]string, len(sri.hashes))
	for i, h := range sri.hashes {
		parts[i] = h.String()
	}
	return strings.Join(parts, " ")
}

func (sri Integrity) MarshalText() ([]byte, error) {
	return []byte(sri.String()), nil
}

func (sri *Integrity) UnmarshalText(text []byte) (err error) {
	*sri, err = Parse(string(text))
	return
}
