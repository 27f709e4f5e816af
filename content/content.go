// Package content is the content-addressed blob store.  A blob is
// written once under the path derived from its digest and never
// changed afterwards; identical bytes written by any number of
// writers end up as one file.
package content

import (
	"fmt"
	"os"

	"github.com/pkg/errors"
	"github.com/t7a/cacache/cachepath"
	"github.com/t7a/cacache/integrity"
)

var (
	// ErrNotFound means no blob exists for the requested digest.
	ErrNotFound = errors.New("not found")
	// ErrSizeMismatch means a writer saw a different byte count than
	// the caller declared.
	ErrSizeMismatch = errors.New("size mismatch")
)

type SizeMismatchError struct {
	Expected int64
	Actual   int64
}

func (e *SizeMismatchError) Error() string {
	return fmt.Sprintf("%v: expected %d bytes, got %d", ErrSizeMismatch, e.Expected, e.Actual)
}

func (e *SizeMismatchError) Unwrap() error {
	return ErrSizeMismatch
}

func canstat(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// Has returns the strongest hash in sri whose blob is present.  The
// blob is not read.
func Has(root string, sri integrity.Integrity) (h integrity.Hash, ok bool) {
	for _, h = range sri.Hashes() {
		if canstat(cachepath.Content(root, h)) {
			return h, true
		}
	}
	return integrity.Hash{}, false
}

// Exists reports whether any hash in sri has a blob on disk.
func Exists(root string, sri integrity.Integrity) bool {
	_, ok := Has(root, sri)
	return ok
}
