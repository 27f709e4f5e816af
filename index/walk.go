package index

import (
	"io/fs"
	"iter"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/t7a/cacache/cachepath"
)

// Walk yields the newest live entry of every key in the index.  Only
// one bucket is held in memory at a time.  Each range over the result
// starts a fresh scan.
func Walk(root string) iter.Seq2[*Entry, error] {
	return func(yield func(*Entry, error) bool) {
		dir := filepath.Join(root, cachepath.IndexDir)
		stopped := false
		err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				if errors.Is(err, os.ErrNotExist) {
					return nil
				}
				if !yield(nil, err) {
					stopped = true
					return filepath.SkipAll
				}
				return nil
			}
			if d.IsDir() {
				return nil
			}
			entries, err := bucketEntries(path)
			if errors.Is(err, os.ErrNotExist) {
				// removed since the directory was read
				return nil
			}
			if err != nil {
				if !yield(nil, err) {
					stopped = true
					return filepath.SkipAll
				}
				return nil
			}
			for _, e := range entries {
				if e.Deleted() {
					continue
				}
				if !yield(e, nil) {
					stopped = true
					return filepath.SkipAll
				}
			}
			return nil
		})
		if err != nil && !stopped {
			yield(nil, err)
		}
	}
}
