package content

import (
	"io/fs"
	"iter"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/t7a/cacache/cachepath"
	"github.com/t7a/cacache/integrity"
)

// Walk yields the digest of every blob under root.  Files whose names
// are not content paths are skipped.  Each range over the result
// walks the tree again.
func Walk(root string) iter.Seq2[integrity.Integrity, error] {
	return func(yield func(integrity.Integrity, error) bool) {
		dir := filepath.Join(root, cachepath.ContentDir)
		err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				if errors.Is(err, os.ErrNotExist) {
					return nil
				}
				if !yield(integrity.Integrity{}, err) {
					return filepath.SkipAll
				}
				return nil
			}
			if d.IsDir() {
				return nil
			}
			h, err := cachepath.ParseContent(root, path)
			if err != nil {
				log.Debugf("content walk skipping %s: %v", path, err)
				return nil
			}
			if !yield(integrity.New(h), nil) {
				return filepath.SkipAll
			}
			return nil
		})
		if err != nil {
			yield(integrity.Integrity{}, err)
		}
	}
}
