package content

import (
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	. "github.com/stevegt/goadapt"
	"github.com/t7a/cacache/cachepath"
	"github.com/t7a/cacache/integrity"
)

// file modes
const (
	DirMode  = 0755
	FileMode = 0644
)

// Writer streams a new blob into the scratch directory, hashing as it
// goes.  Commit moves it into place; Close without Commit throws it
// away.
type Writer struct {
	root         string
	fh           *os.File
	builder      *integrity.Builder
	expectedSize int64
	expected     integrity.Integrity
	algos        []integrity.Algorithm
	sri          integrity.Integrity
	committed    bool
	closed       bool
}

type WriteOption func(*Writer)

// WithSize makes Commit fail with ErrSizeMismatch unless exactly n
// bytes were written.
func WithSize(n int64) WriteOption {
	return func(w *Writer) { w.expectedSize = n }
}

// WithIntegrity makes Commit fail with integrity.ErrMismatch unless
// the written bytes match sri.
func WithIntegrity(sri integrity.Integrity) WriteOption {
	return func(w *Writer) { w.expected = sri }
}

// WithAlgorithms picks the digest algorithms.  Default is
// integrity.Default.
func WithAlgorithms(algos ...integrity.Algorithm) WriteOption {
	return func(w *Writer) { w.algos = append(w.algos, algos...) }
}

// NewWriter opens a uniquely named temp file under root's scratch
// directory.
func NewWriter(root string, opts ...WriteOption) (w *Writer, err error) {
	defer Return(&err)

	w = &Writer{root: root, expectedSize: -1}
	for _, opt := range opts {
		opt(w)
	}
	algos := w.algos
	if len(algos) == 0 {
		algos = []integrity.Algorithm{integrity.Default}
	}
	// hash with whatever the caller expects too, so the check in
	// Commit has something to compare against
	algos = append(algos, w.expected.Algorithms()...)
	w.builder = integrity.NewBuilder(algos...)

	tmpdir := cachepath.Tmp(root)
	err = os.MkdirAll(tmpdir, DirMode)
	Ck(err)
	w.fh, err = os.OpenFile(filepath.Join(tmpdir, uuid.NewString()), os.O_RDWR|os.O_CREATE|os.O_EXCL, FileMode)
	Ck(err)
	log.Debugf("content writer tmp %s", w.fh.Name())
	return w, nil
}

func (w *Writer) Write(data []byte) (n int, err error) {
	if w.committed || w.closed {
		return 0, errors.New("write to finished content writer")
	}
	n, err = w.fh.Write(data)
	w.builder.Write(data[:n])
	return
}

// Size is the number of bytes written so far.
func (w *Writer) Size() int64 { return w.builder.Size() }

// Commit finalizes the digest and promotes the temp file to its
// content path.  If a blob is already there the temp file is dropped
// instead.  On any failure the temp file is removed and nothing
// becomes visible.
func (w *Writer) Commit() (sri integrity.Integrity, err error) {
	if w.committed {
		return w.sri, nil
	}
	if w.closed {
		return sri, errors.New("commit of discarded content writer")
	}
	w.closed = true
	tmpname := w.fh.Name()
	defer func() {
		if err != nil {
			os.Remove(tmpname)
		}
	}()

	err = w.fh.Sync()
	if err != nil {
		w.fh.Close()
		return
	}
	err = w.fh.Close()
	if err != nil {
		return
	}

	size := w.builder.Size()
	if w.expectedSize >= 0 && size != w.expectedSize {
		return sri, &SizeMismatchError{Expected: w.expectedSize, Actual: size}
	}

	sri = w.builder.Sum()
	if !w.expected.IsZero() {
		if _, ok := w.expected.Matches(sri); !ok {
			return integrity.Integrity{}, &integrity.MismatchError{Expected: w.expected, Actual: sri}
		}
	}

	err = promote(w.root, tmpname, sri)
	if err != nil {
		return integrity.Integrity{}, err
	}
	w.sri = sri
	w.committed = true
	return
}

// Close discards the temp file of an uncommitted writer.  It is a
// no-op after Commit and safe to call more than once.
func (w *Writer) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true
	w.fh.Close()
	log.Debugf("content writer discard %s", w.fh.Name())
	err := os.Remove(w.fh.Name())
	if errors.Is(err, os.ErrNotExist) {
		err = nil
	}
	return err
}

func promote(root, tmpname string, sri integrity.Integrity) (err error) {
	path := cachepath.ContentFor(root, sri)
	if canstat(path) {
		log.Debugf("content %s already present, dropping %s", sri.Pick(), tmpname)
		return os.Remove(tmpname)
	}
	err = os.MkdirAll(filepath.Dir(path), DirMode)
	if err != nil {
		return
	}
	// a racing writer may get there first; rename replaces its file
	// with identical bytes
	err = os.Rename(tmpname, path)
	if err != nil {
		return
	}
	log.Debugf("content %s promoted to %s", sri.Pick(), path)
	return
}

// Write stores data as one blob and returns its digest.
func Write(root string, data []byte, opts ...WriteOption) (sri integrity.Integrity, err error) {
	w, err := NewWriter(root, opts...)
	if err != nil {
		return
	}
	defer w.Close()
	_, err = w.Write(data)
	if err != nil {
		return
	}
	return w.Commit()
}
