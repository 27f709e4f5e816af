package cacache

import (
	"github.com/pkg/errors"
	"github.com/t7a/cacache/content"
	"github.com/t7a/cacache/index"
	"github.com/t7a/cacache/integrity"
)

// Info returns the index entry for key without touching content.
func (c *Cache) Info(key string) (*index.Entry, error) {
	entry, err := index.Find(c.Dir, key)
	if err != nil {
		return nil, err
	}
	if entry == nil {
		return nil, errors.Wrapf(ErrNotFound, "key %q", key)
	}
	return entry, nil
}

// Get returns the verified bytes stored under key, and the entry that
// pointed at them.
func (c *Cache) Get(key string) (data []byte, entry *index.Entry, err error) {
	entry, err = c.Info(key)
	if err != nil {
		return
	}
	data, err = content.Read(c.Dir, entry.Integrity)
	if err != nil {
		return nil, nil, errors.Wrapf(err, "key %q", key)
	}
	return
}

// Reader streams the content stored under key.
type Reader struct {
	*content.Reader
	Entry *index.Entry
}

// Reader opens the content stored under key.  The final Read fails
// with ErrIntegrity if the bytes were not what the index recorded.
func (c *Cache) Reader(key string) (r *Reader, err error) {
	entry, err := c.Info(key)
	if err != nil {
		return
	}
	cr, err := content.Open(c.Dir, entry.Integrity)
	if err != nil {
		return nil, errors.Wrapf(err, "key %q", key)
	}
	return &Reader{Reader: cr, Entry: entry}, nil
}

// GetHash returns the verified bytes for sri without consulting the
// index.
func (c *Cache) GetHash(sri integrity.Integrity) ([]byte, error) {
	return content.Read(c.Dir, sri)
}

// HashReader opens the content for sri without consulting the index.
func (c *Cache) HashReader(sri integrity.Integrity) (*content.Reader, error) {
	return content.Open(c.Dir, sri)
}

// CopyTo copies the content stored under key to the file dst.
func (c *Cache) CopyTo(key, dst string) (n int64, err error) {
	entry, err := c.Info(key)
	if err != nil {
		return
	}
	return content.CopyTo(c.Dir, entry.Integrity, dst)
}

// CopyHashTo copies the content for sri to the file dst.
func (c *Cache) CopyHashTo(sri integrity.Integrity, dst string) (int64, error) {
	return content.CopyTo(c.Dir, sri, dst)
}

// HasContent reports whether key is indexed and its content is on
// disk.  Nothing is read or verified.
func (c *Cache) HasContent(key string) (bool, error) {
	entry, err := index.Find(c.Dir, key)
	if err != nil || entry == nil {
		return false, err
	}
	return content.Exists(c.Dir, entry.Integrity), nil
}

// HashExists reports whether content for sri is on disk.
func (c *Cache) HashExists(sri integrity.Integrity) bool {
	return content.Exists(c.Dir, sri)
}
