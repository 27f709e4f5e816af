/*

Cacache is a disk-resident content-addressable cache.  Data is stored
once per distinct digest and found either by the digest itself or by a
key that an append-only index maps to the digest.  Several processes
may use one cache directory at the same time without locks.

Vocabulary:

- root: the cache directory passed to Open
- sri: integrity string, one or more "<algo>-<base64 digest>" hashes of
  the same bytes, strongest first
- algo: hash algorithm name (sha1, sha256, blake3, sha384, sha512)
- blob: stored content; one file per digest under content-v2/
- content path: root/content-v2/<algo>/<hex[0:2]>/<hex[2:4]>/<hex[4:]>
- key: caller-chosen name for a blob; many keys may share a blob
- bucket: index log file a key hashes into, under index-v5/; one
  bucket may hold records for several keys
- entry: one index record; key, sri, time, size, metadata
- tombstone: entry with no sri; marks its key deleted
- torn record: partial record from an interrupted append; fails its
  checksum and is skipped
- tmp: scratch dir for writes in progress, on the same volume as the
  blobs so promotion is a rename

Every write hashes the bytes, promotes the temp file to the content
path (or drops it if the blob is already there), and only then appends
the index entry.  Every read re-hashes the bytes and fails with
ErrIntegrity if they do not match.

*/

package cacache
