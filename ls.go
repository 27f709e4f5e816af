package cacache

import (
	"iter"

	"github.com/t7a/cacache/content"
	"github.com/t7a/cacache/index"
	"github.com/t7a/cacache/integrity"
)

// List yields the current entry of every live key.  Ranging over it
// again rescans the index.
func (c *Cache) List() iter.Seq2[*index.Entry, error] {
	return index.Walk(c.Dir)
}

// ListContent yields the integrity of every blob on disk, referenced
// or not.
func (c *Cache) ListContent() iter.Seq2[integrity.Integrity, error] {
	return content.Walk(c.Dir)
}
