package content

import (
	"io"
	"os"
	"path/filepath"

	"github.com/google/renameio"
	log "github.com/sirupsen/logrus"
	"github.com/t7a/cacache/cachepath"
	"github.com/t7a/cacache/integrity"
)

// Link hashes the file at target and places a symlink to it at the
// content path, so the cache serves target's bytes without copying
// them.  If the content is already present nothing is linked.  Reads
// through the link are verified like any other blob, so a target that
// changes later shows up as an integrity mismatch.
func Link(root, target string, algos ...integrity.Algorithm) (sri integrity.Integrity, size int64, err error) {
	abs, err := filepath.Abs(target)
	if err != nil {
		return
	}
	fh, err := os.Open(abs)
	if err != nil {
		return
	}
	defer fh.Close()
	builder := integrity.NewBuilder(algos...)
	size, err = io.Copy(builder, fh)
	if err != nil {
		return
	}
	sri = builder.Sum()

	path := cachepath.ContentFor(root, sri)
	if canstat(path) {
		log.Debugf("content %s already present, not linking %s", sri.Pick(), abs)
		return
	}
	err = os.MkdirAll(filepath.Dir(path), DirMode)
	if err != nil {
		return
	}
	err = renameio.Symlink(abs, path)
	if err != nil {
		return
	}
	log.Debugf("content %s linked to %s", path, abs)
	return
}
