package cacache

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	. "github.com/stevegt/goadapt"
	"github.com/t7a/cacache/cachepath"
	"github.com/t7a/cacache/content"
	"github.com/t7a/cacache/index"
	"github.com/t7a/cacache/integrity"
)

var (
	// ErrNotFound: no entry for the key, or no blob for the digest.
	ErrNotFound = content.ErrNotFound
	// ErrIntegrity: bytes do not hash to the expected digest.
	ErrIntegrity = integrity.ErrMismatch
	// ErrSize: a write saw a different byte count than declared.
	ErrSize = content.ErrSizeMismatch
	// ErrMalformedIntegrity: an integrity string could not be parsed.
	ErrMalformedIntegrity = integrity.ErrMalformed
	// ErrInvalidKey: a key that is not valid UTF-8.
	ErrInvalidKey = index.ErrInvalidKey
)

// Cache is a handle on one cache directory.  It holds no open files
// and no state beyond its settings, so any number of handles, in any
// number of processes, may share a directory.
type Cache struct {
	Dir        string                // root of the cache
	Algorithms []integrity.Algorithm // digest algorithms for new content
}

type Option func(*Cache)

// WithAlgorithms sets the default digest algorithms for writes.
func WithAlgorithms(algos ...integrity.Algorithm) Option {
	return func(c *Cache) { c.Algorithms = algos }
}

// Open returns a Cache rooted at dir, creating the directory layout
// if it is not there yet.
func Open(dir string, opts ...Option) (c *Cache, err error) {
	defer Return(&err)

	if dir == "" {
		return nil, errors.New("empty cache directory")
	}
	dir, err = filepath.Abs(dir)
	Ck(err)
	c = &Cache{Dir: dir, Algorithms: []integrity.Algorithm{integrity.Default}}
	for _, opt := range opts {
		opt(c)
	}
	err = c.mkdirs()
	Ck(err)
	log.Debugf("cache open %s", dir)
	return c, nil
}

func (c *Cache) mkdirs() (err error) {
	for _, sub := range []string{cachepath.ContentDir, cachepath.IndexDir, cachepath.TmpDir} {
		err = os.MkdirAll(filepath.Join(c.Dir, sub), content.DirMode)
		if err != nil {
			return
		}
	}
	return
}

// ContentPath is where the blob for sri lives, whether or not it
// exists.
func (c *Cache) ContentPath(sri integrity.Integrity) string {
	return cachepath.ContentFor(c.Dir, sri)
}
