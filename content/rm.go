package content

import (
	"os"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/t7a/cacache/cachepath"
	"github.com/t7a/cacache/integrity"
)

// Remove deletes the blob of every hash in sri.  Missing blobs are not
// an error.  Index entries that still point at the content are left
// alone; making sure there are none is up to the caller.
func Remove(root string, sri integrity.Integrity) error {
	for _, h := range sri.Hashes() {
		path := cachepath.Content(root, h)
		err := os.Remove(path)
		if errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err != nil {
			return err
		}
		log.Debugf("content rm %s", path)
	}
	return nil
}
