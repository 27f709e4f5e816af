// Package index is the key index: one append-only log file per
// bucket, where a bucket is chosen by hashing the key.  Updating or
// deleting a key appends a record; nothing is ever rewritten in place.
//
// Each record is appended with a single write on an O_APPEND
// descriptor, so records from concurrent writers land whole and
// interleave at record boundaries.  Every record carries a checksum of
// its own body.  A record that fails the check, such as the torn tail
// of a writer that crashed mid-append, is skipped by readers as if it
// had never been written.
package index

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"time"
	"unicode/utf8"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/t7a/cacache/cachepath"
)

// MaxAtomicRecord is the largest record appended without a lock.
// Appends up to PIPE_BUF bytes are atomic on the platforms we care
// about; larger ones are serialized with flock(2) where it exists.
const MaxAtomicRecord = 4096

// ErrInvalidKey is returned for keys that cannot be stored as written.
// Records are JSON, which has no room for invalid UTF-8.
var ErrInvalidKey = errors.New("invalid key")

// CheckKey returns ErrInvalidKey unless key is valid UTF-8.
func CheckKey(key string) error {
	if !utf8.ValidString(key) {
		return errors.Wrapf(ErrInvalidKey, "%q is not valid UTF-8", key)
	}
	return nil
}

// Insert appends entry to the bucket for entry.Key and returns the
// entry as stored.  A zero Time is replaced with the current time.
// Times are kept at millisecond precision.
func Insert(root string, entry Entry) (out *Entry, err error) {
	err = CheckKey(entry.Key)
	if err != nil {
		return
	}
	if entry.Time.IsZero() {
		entry.Time = time.Now()
	}
	entry.Time = time.UnixMilli(entry.Time.UnixMilli())

	buf, err := entry.marshal()
	if err != nil {
		return nil, errors.Wrapf(err, "encoding entry for %q", entry.Key)
	}

	bucket := cachepath.Bucket(root, entry.Key)
	err = os.MkdirAll(filepath.Dir(bucket), 0755)
	if err != nil {
		return
	}
	fh, err := os.OpenFile(bucket, os.O_WRONLY|os.O_APPEND|os.O_CREATE, 0644)
	if err != nil {
		return
	}
	defer fh.Close()

	err = appendRecord(fh, buf)
	if err != nil {
		return nil, errors.Wrapf(err, "appending to %s", bucket)
	}
	log.Debugf("index insert %q in %s (%d bytes)", entry.Key, bucket, len(buf))
	return &entry, nil
}

func appendRecord(fh *os.File, buf []byte) (err error) {
	if len(buf) > MaxAtomicRecord {
		unlock, err := lockFile(fh)
		if err != nil {
			return err
		}
		defer unlock()
	}
	n, err := fh.Write(buf)
	if err == nil && n != len(buf) {
		err = io.ErrShortWrite
	}
	return
}

// Delete appends a tombstone for key.  Earlier records and the content
// they point at stay where they are.
func Delete(root, key string) error {
	_, err := Insert(root, Entry{Key: key})
	return err
}

// RemoveBucket deletes the whole bucket file for key, taking every key
// that shares the bucket with it.  A missing bucket is not an error.
func RemoveBucket(root, key string) error {
	bucket := cachepath.Bucket(root, key)
	err := os.Remove(bucket)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err == nil {
		log.Debugf("index rm bucket %s", bucket)
	}
	return err
}

// Find returns the newest valid entry for key, or nil if there is none
// or the newest one is a tombstone.  A missing bucket is a miss, not
// an error.
func Find(root, key string) (entry *Entry, err error) {
	bucket := cachepath.Bucket(root, key)
	buf, err := os.ReadFile(bucket)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return
	}

	// newest first
	for end := len(buf); end > 0; {
		start := bytes.LastIndexByte(buf[:end], '\n') + 1
		line := buf[start:end]
		end = start - 1
		if len(line) == 0 {
			continue
		}
		e, ok := parseLine(line)
		if !ok {
			log.Debugf("index %s: skipping bad record %.40q", bucket, line)
			continue
		}
		if e.Key != key {
			continue
		}
		if e.Deleted() {
			return nil, nil
		}
		return e, nil
	}
	return nil, nil
}

// bucketEntries returns the newest entry per key in one bucket file,
// in order of each key's first appearance, tombstones included.
func bucketEntries(path string) (entries []*Entry, err error) {
	buf, err := os.ReadFile(path)
	if err != nil {
		return
	}
	latest := map[string]int{}
	for _, line := range bytes.Split(buf, []byte{'\n'}) {
		if len(line) == 0 {
			continue
		}
		e, ok := parseLine(line)
		if !ok {
			log.Debugf("index %s: skipping bad record %.40q", path, line)
			continue
		}
		if i, seen := latest[e.Key]; seen {
			entries[i] = e
			continue
		}
		latest[e.Key] = len(entries)
		entries = append(entries, e)
	}
	return
}
