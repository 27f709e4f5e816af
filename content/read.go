package content

import (
	"io"
	"os"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/t7a/cacache/cachepath"
	"github.com/t7a/cacache/integrity"
)

// Reader streams a blob and re-hashes it on the way out.  The read
// that reaches the end of the blob returns integrity.ErrMismatch
// instead of io.EOF if the bytes were wrong, so a caller that stops
// at the first error never mistakes corrupt data for a full read.
type Reader struct {
	fh      *os.File
	checker *integrity.Checker
	hash    integrity.Hash
	err     error
}

// Open returns a verifying Reader for sri.  It fails with ErrNotFound
// if no hash in sri has a blob on disk.
func Open(root string, sri integrity.Integrity) (r *Reader, err error) {
	h, ok := Has(root, sri)
	if !ok {
		return nil, errors.Wrapf(ErrNotFound, "content %s", sri)
	}
	path := cachepath.Content(root, h)
	fh, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		// removed between Has and Open
		return nil, errors.Wrapf(ErrNotFound, "content %s", sri)
	}
	if err != nil {
		return
	}
	log.Debugf("content open %s", path)
	return &Reader{fh: fh, checker: integrity.NewChecker(sri), hash: h}, nil
}

func (r *Reader) Read(buf []byte) (n int, err error) {
	if r.err != nil {
		return 0, r.err
	}
	n, err = r.fh.Read(buf)
	r.checker.Write(buf[:n])
	if err == io.EOF {
		if _, cerr := r.checker.Result(); cerr != nil {
			log.Debugf("content %s failed verification: %v", r.hash, cerr)
			err = cerr
		}
		r.err = err
	}
	return
}

// Check reads whatever is left and returns the algorithm that
// verified the blob.
func (r *Reader) Check() (integrity.Algorithm, error) {
	_, err := io.Copy(io.Discard, r)
	if err != nil {
		return 0, err
	}
	return r.checker.Result()
}

// Hash is the hash whose blob is being read.
func (r *Reader) Hash() integrity.Hash { return r.hash }

// Size is the size of the blob on disk.
func (r *Reader) Size() (int64, error) {
	info, err := r.fh.Stat()
	if err != nil {
		return 0, err
	}
	return info.Size(), nil
}

func (r *Reader) Close() error {
	return r.fh.Close()
}

// Read returns the whole blob for sri, or an error.  It never returns
// bytes that failed verification.
func Read(root string, sri integrity.Integrity) (buf []byte, err error) {
	r, err := Open(root, sri)
	if err != nil {
		return
	}
	defer r.Close()
	buf, err = io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return
}
