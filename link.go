package cacache

import (
	"github.com/t7a/cacache/content"
	"github.com/t7a/cacache/index"
	"github.com/t7a/cacache/integrity"
)

// Link makes the existing file target available under key without
// copying it: the content path becomes a symlink to target.  Size and
// integrity expectations are checked before the entry is written.
func (c *Cache) Link(key, target string, opts ...PutOption) (sri integrity.Integrity, err error) {
	err = index.CheckKey(key)
	if err != nil {
		return
	}
	o, sri, size, err := c.link(target, opts)
	if err != nil {
		return
	}
	_, err = index.Insert(c.Dir, index.Entry{
		Key:         key,
		Integrity:   sri,
		Time:        o.time,
		Size:        size,
		Metadata:    o.metadata,
		RawMetadata: o.raw,
	})
	if err != nil {
		return integrity.Integrity{}, err
	}
	return
}

// LinkHash links target into the cache as content only.
func (c *Cache) LinkHash(target string, opts ...PutOption) (sri integrity.Integrity, err error) {
	_, sri, _, err = c.link(target, opts)
	return
}

func (c *Cache) link(target string, opts []PutOption) (o *putOpts, sri integrity.Integrity, size int64, err error) {
	o = c.putOpts(opts)
	if o.err != nil {
		err = o.err
		return
	}
	algos := append(append([]integrity.Algorithm(nil), o.algos...), o.sri.Algorithms()...)
	sri, size, err = content.Link(c.Dir, target, algos...)
	if err != nil {
		return
	}
	if o.size >= 0 && o.size != size {
		err = &content.SizeMismatchError{Expected: o.size, Actual: size}
		return
	}
	if !o.sri.IsZero() {
		if _, ok := o.sri.Matches(sri); !ok {
			err = &integrity.MismatchError{Expected: o.sri, Actual: sri}
			return
		}
	}
	return
}
