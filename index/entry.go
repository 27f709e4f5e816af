package index

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/t7a/cacache/integrity"
	"github.com/vmihailenco/msgpack"
)

// Entry is one index record.  An Entry whose Integrity is zero is a
// tombstone: it marks Key as deleted.  Numbers in Metadata read back
// as json.Number so that large integers survive unchanged.
type Entry struct {
	Key         string
	Integrity   integrity.Integrity
	Time        time.Time
	Size        int64
	Metadata    any
	RawMetadata []byte
}

// Deleted reports whether e is a tombstone.
func (e *Entry) Deleted() bool {
	return e.Integrity.IsZero()
}

// PackMetadata encodes v with msgpack for use as RawMetadata.
func PackMetadata(v any) ([]byte, error) {
	return msgpack.Marshal(v)
}

// UnpackMetadata decodes RawMetadata written by PackMetadata into v.
func (e *Entry) UnpackMetadata(v any) error {
	return msgpack.Unmarshal(e.RawMetadata, v)
}

// record is the JSON body of a bucket line.
type record struct {
	Key         string  `json:"key"`
	Integrity   *string `json:"integrity"`
	Time        int64   `json:"time"`
	Size        int64   `json:"size"`
	Metadata    any     `json:"metadata"`
	RawMetadata []byte  `json:"raw_metadata,omitempty"`
}

// checksum is the record's self-check: xxHash64 of the JSON body.
func checksum(body []byte) string {
	return fmt.Sprintf("%016x", xxhash.Sum64(body))
}

// marshal renders e as one framed bucket line: a separator, the
// checksum, a tab, the JSON body and a trailing separator.  The
// leading separator ends any torn line a crashed writer left behind.
func (e *Entry) marshal() ([]byte, error) {
	rec := record{
		Key:         e.Key,
		Time:        e.Time.UnixMilli(),
		Size:        e.Size,
		Metadata:    e.Metadata,
		RawMetadata: e.RawMetadata,
	}
	if !e.Integrity.IsZero() {
		s := e.Integrity.String()
		rec.Integrity = &s
	}
	body, err := json.Marshal(rec)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	buf.Grow(len(body) + 19)
	buf.WriteByte('\n')
	buf.WriteString(checksum(body))
	buf.WriteByte('\t')
	buf.Write(body)
	buf.WriteByte('\n')
	return buf.Bytes(), nil
}

// parseLine decodes one bucket line.  ok is false for anything that
// is not a complete, self-consistent record.
func parseLine(line []byte) (e *Entry, ok bool) {
	sum, body, found := bytes.Cut(line, []byte{'\t'})
	if !found || len(sum) != 16 {
		return nil, false
	}
	want, err := strconv.ParseUint(string(sum), 16, 64)
	if err != nil || want != xxhash.Sum64(body) {
		return nil, false
	}
	var rec record
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	err = dec.Decode(&rec)
	if err != nil {
		return nil, false
	}
	e = &Entry{
		Key:         rec.Key,
		Time:        time.UnixMilli(rec.Time),
		Size:        rec.Size,
		Metadata:    rec.Metadata,
		RawMetadata: rec.RawMetadata,
	}
	if rec.Integrity != nil {
		e.Integrity, err = integrity.Parse(*rec.Integrity)
		if err != nil {
			return nil, false
		}
	}
	return e, true
}
