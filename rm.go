package cacache

import (
	"os"
	"path/filepath"

	log "github.com/sirupsen/logrus"
	"github.com/t7a/cacache/cachepath"
	"github.com/t7a/cacache/content"
	"github.com/t7a/cacache/index"
	"github.com/t7a/cacache/integrity"
)

type removeOpts struct {
	fully bool
}

type RemoveOption func(*removeOpts)

// WithRemoveFully makes Remove delete the key's bucket file and its
// content instead of appending a tombstone.  Other keys in the same
// bucket go with it, and so does content they share.
func WithRemoveFully() RemoveOption {
	return func(o *removeOpts) { o.fully = true }
}

// Remove deletes key from the index.  By default the content stays,
// since other keys may still refer to it.
func (c *Cache) Remove(key string, opts ...RemoveOption) (err error) {
	o := &removeOpts{}
	for _, opt := range opts {
		opt(o)
	}
	if !o.fully {
		return index.Delete(c.Dir, key)
	}
	entry, err := index.Find(c.Dir, key)
	if err != nil {
		return
	}
	if entry != nil {
		err = content.Remove(c.Dir, entry.Integrity)
		if err != nil {
			return
		}
	}
	return index.RemoveBucket(c.Dir, key)
}

// RemoveHash deletes the content for sri.  Index entries that point
// at it are not touched and will miss on read.
func (c *Cache) RemoveHash(sri integrity.Integrity) error {
	return content.Remove(c.Dir, sri)
}

// Clear deletes every entry and blob in the cache.  Writes in
// progress at the same time will fail.
func (c *Cache) Clear() (err error) {
	for _, sub := range []string{cachepath.ContentDir, cachepath.IndexDir, cachepath.TmpDir} {
		err = os.RemoveAll(filepath.Join(c.Dir, sub))
		if err != nil {
			return
		}
	}
	log.Debugf("cache clear %s", c.Dir)
	return c.mkdirs()
}
