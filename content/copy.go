package content

import (
	"io"
	"os"

	"github.com/pkg/errors"
	"github.com/pkg/fileutils"
	log "github.com/sirupsen/logrus"
	"github.com/t7a/cacache/cachepath"
	"github.com/t7a/cacache/integrity"
)

// CopyTo copies the blob for sri to dst and verifies the copy.  A copy
// that fails verification is removed.
func CopyTo(root string, sri integrity.Integrity, dst string) (n int64, err error) {
	h, ok := Has(root, sri)
	if !ok {
		return 0, errors.Wrapf(ErrNotFound, "content %s", sri)
	}
	err = fileutils.CopyFile(dst, cachepath.Content(root, h))
	if err != nil {
		log.Debugf("content copy %s to %s: %v", sri, dst, err)
		os.Remove(dst)
		return 0, err
	}

	fh, err := os.Open(dst)
	if err != nil {
		return
	}
	defer fh.Close()
	checker := integrity.NewChecker(sri)
	n, err = io.Copy(checker, fh)
	if err == nil {
		_, err = checker.Result()
	}
	if err != nil {
		log.Debugf("content copy %s to %s: %v", sri, dst, err)
		os.Remove(dst)
		return 0, err
	}
	return
}
