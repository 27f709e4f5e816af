// Package cachepath maps digests and keys to their places under a cache
// root.  Everything here is a pure function of its arguments.
//
// Layout:
//
//	<root>/content-v2/<algo>/<hex[0:2]>/<hex[2:4]>/<hex[4:]>
//	<root>/index-v5/<sha1(key)[0:2]>/<[2:4]>/<[4:]>
//	<root>/tmp/
//
// Two two-character levels give 65,536 leaf directories per
// namespace, which keeps each directory small well past millions of
// entries.  The full remainder is used as the file name so a path can
// be turned back into its digest.
package cachepath

import (
	"crypto/sha1"
	"encoding/hex"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"github.com/t7a/cacache/integrity"
)

const (
	ContentDir = "content-v2"
	IndexDir   = "index-v5"
	TmpDir     = "tmp"
)

// shard splits a hex string into the two-level layout.
func shard(hexstr string) string {
	return filepath.Join(hexstr[0:2], hexstr[2:4], hexstr[4:])
}

// Content returns the path of the blob addressed by h.
func Content(root string, h integrity.Hash) string {
	return filepath.Join(root, ContentDir, h.Algorithm().String(), shard(h.Hex()))
}

// ContentFor returns the path of the blob addressed by the strongest
// hash in sri.
func ContentFor(root string, sri integrity.Integrity) string {
	return Content(root, sri.Pick())
}

// HashKey is the hex digest naming the bucket for key.
func HashKey(key string) string {
	sum := sha1.Sum([]byte(key))
	return hex.EncodeToString(sum[:])
}

// Bucket returns the index bucket file for key.
func Bucket(root, key string) string {
	return filepath.Join(root, IndexDir, shard(HashKey(key)))
}

// Tmp is the scratch directory for in-progress writes.  It sits under
// root so that promotion is a same-volume rename.
func Tmp(root string) string {
	return filepath.Join(root, TmpDir)
}

// ParseContent recovers the hash from an absolute or root-relative
// content path.
func ParseContent(root, path string) (h integrity.Hash, err error) {
	rel := filepath.Clean(path)
	if filepath.IsAbs(rel) {
		rel, err = filepath.Rel(filepath.Clean(root), rel)
		if err != nil {
			return
		}
	}
	parts := strings.Split(filepath.ToSlash(rel), "/")
	if len(parts) != 5 || parts[0] != ContentDir {
		return h, errors.Errorf("not a content path: %s", path)
	}
	algo, err := integrity.ParseAlgorithm(parts[1])
	if err != nil {
		return
	}
	if len(parts[2]) != 2 || len(parts[3]) != 2 {
		return h, errors.Errorf("malformed content path: %s", path)
	}
	digest, err := hex.DecodeString(parts[2] + parts[3] + parts[4])
	if err != nil {
		return h, errors.Wrapf(integrity.ErrMalformed, "content path %s", path)
	}
	return integrity.NewHash(algo, digest)
}
