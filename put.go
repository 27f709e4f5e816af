package cacache

import (
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/t7a/cacache/content"
	"github.com/t7a/cacache/index"
	"github.com/t7a/cacache/integrity"
)

type putOpts struct {
	algos    []integrity.Algorithm
	size     int64
	sri      integrity.Integrity
	metadata any
	raw      []byte
	time     time.Time
	err      error
}

type PutOption func(*putOpts)

// WithAlgorithm overrides the cache's digest algorithms for one write.
// Passing several produces a multi-hash integrity.
func WithAlgorithm(algos ...integrity.Algorithm) PutOption {
	return func(o *putOpts) { o.algos = append(o.algos, algos...) }
}

// WithSize fails the write with ErrSize unless exactly n bytes arrive.
func WithSize(n int64) PutOption {
	return func(o *putOpts) { o.size = n }
}

// WithIntegrity fails the write with ErrIntegrity unless the bytes
// match sri.
func WithIntegrity(sri integrity.Integrity) PutOption {
	return func(o *putOpts) { o.sri = sri }
}

// WithMetadata attaches a JSON-encodable value to the index entry.
func WithMetadata(v any) PutOption {
	return func(o *putOpts) { o.metadata = v }
}

// WithRawMetadata attaches opaque bytes to the index entry.
func WithRawMetadata(raw []byte) PutOption {
	return func(o *putOpts) { o.raw = raw }
}

// WithPackedMetadata msgpack-encodes v as the entry's raw metadata.
// Read it back with Entry.UnpackMetadata.
func WithPackedMetadata(v any) PutOption {
	return func(o *putOpts) {
		o.raw, o.err = index.PackMetadata(v)
	}
}

// WithTime sets the entry time instead of the current time.
func WithTime(t time.Time) PutOption {
	return func(o *putOpts) { o.time = t }
}

func (c *Cache) putOpts(opts []PutOption) *putOpts {
	o := &putOpts{size: -1}
	for _, opt := range opts {
		opt(o)
	}
	if len(o.algos) == 0 {
		o.algos = c.Algorithms
	}
	return o
}

func (o *putOpts) writeOpts() (wopts []content.WriteOption) {
	wopts = append(wopts, content.WithAlgorithms(o.algos...))
	if o.size >= 0 {
		wopts = append(wopts, content.WithSize(o.size))
	}
	if !o.sri.IsZero() {
		wopts = append(wopts, content.WithIntegrity(o.sri))
	}
	return
}

// Writer streams data into the cache.  Commit stores it; Close
// without Commit discards it.
type Writer struct {
	cache   *Cache
	key     string
	indexed bool
	done    bool
	opts    *putOpts
	w       *content.Writer
}

// NewWriter starts a streaming write that Commit will index under key.
func (c *Cache) NewWriter(key string, opts ...PutOption) (*Writer, error) {
	return c.newWriter(key, true, opts)
}

// NewHashWriter starts a streaming write of content only; no index
// entry is made.
func (c *Cache) NewHashWriter(opts ...PutOption) (*Writer, error) {
	return c.newWriter("", false, opts)
}

func (c *Cache) newWriter(key string, indexed bool, opts []PutOption) (w *Writer, err error) {
	if indexed {
		err = index.CheckKey(key)
		if err != nil {
			return
		}
	}
	o := c.putOpts(opts)
	if o.err != nil {
		return nil, errors.Wrap(o.err, "encoding metadata")
	}
	cw, err := content.NewWriter(c.Dir, o.writeOpts()...)
	if err != nil {
		return
	}
	return &Writer{cache: c, key: key, indexed: indexed, opts: o, w: cw}, nil
}

func (w *Writer) Write(data []byte) (int, error) {
	return w.w.Write(data)
}

// Commit places the content and then, for a keyed writer, appends the
// index entry.  If the content step fails nothing is indexed.  If the
// index append fails the content stays behind unreferenced.  Calling
// Commit again after success returns the same integrity and appends
// nothing.
func (w *Writer) Commit() (sri integrity.Integrity, err error) {
	sri, err = w.w.Commit()
	if err != nil || !w.indexed || w.done {
		return
	}
	_, err = index.Insert(w.cache.Dir, index.Entry{
		Key:         w.key,
		Integrity:   sri,
		Time:        w.opts.time,
		Size:        w.w.Size(),
		Metadata:    w.opts.metadata,
		RawMetadata: w.opts.raw,
	})
	if err != nil {
		log.Debugf("put %q: content %s stored but not indexed: %v", w.key, sri.Pick(), err)
		return integrity.Integrity{}, err
	}
	w.done = true
	return
}

func (w *Writer) Close() error {
	return w.w.Close()
}

// Put stores data under key and returns its integrity.
func (c *Cache) Put(key string, data []byte, opts ...PutOption) (sri integrity.Integrity, err error) {
	w, err := c.NewWriter(key, opts...)
	if err != nil {
		return
	}
	return w.put(data)
}

// PutHash stores data without indexing it; it can be read back only
// by integrity.
func (c *Cache) PutHash(data []byte, opts ...PutOption) (sri integrity.Integrity, err error) {
	w, err := c.NewHashWriter(opts...)
	if err != nil {
		return
	}
	return w.put(data)
}

func (w *Writer) put(data []byte) (sri integrity.Integrity, err error) {
	defer w.Close()
	_, err = w.Write(data)
	if err != nil {
		return
	}
	return w.Commit()
}
