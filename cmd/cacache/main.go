package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"

	"github.com/docopt/docopt-go"
	"github.com/dustin/go-humanize"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/t7a/cacache"
	"github.com/t7a/cacache/integrity"
	"github.com/t7a/cacache/internal/logging"
)

func init() {
	logging.Setup()
}

const usage = `cacache

Usage:
  cacache put [--algo=<algo>]... [--size=<n>] [--integrity=<sri>] [--meta=<json>] <key>
  cacache get <key>
  cacache get-hash <sri>
  cacache info <key>
  cacache has <key>
  cacache rm [--all] <key>
  cacache rm-hash <sri>
  cacache ls
  cacache ls-content
  cacache copy <key> <filename>
  cacache link <key> <filename>
  cacache clear

Options:
  -h --help          Show this screen.
  --version          Show version.
  --algo=<algo>      Digest algorithm: sha1, sha256, blake3, sha384, sha512.
  --size=<n>         Fail unless exactly n bytes arrive.
  --integrity=<sri>  Fail unless the data matches this integrity.
  --meta=<json>      JSON metadata to store with the entry.
  --all              Remove the bucket and content, not just the entry.

The cache lives in $CACHEDIR, or the current directory if unset.
`

type Opts struct {
	Put       bool
	Get       bool
	GetHash   bool
	Info      bool
	Has       bool
	Rm        bool
	RmHash    bool
	Ls        bool
	LsContent bool
	Copy      bool
	Link      bool
	Clear     bool
	Algo      []string
	Size      string
	Integrity string
	Meta      string
	All       bool
	Key       string
	Sri       string
	Filename  string
}

// exit codes
const (
	rcOK = iota
	rcErr
	rcUsage
	rcNotFound
	rcIntegrity
	rcSize
)

func main() {
	// see https://github.com/google/go-cmdtest
	os.Exit(run())
}

func run() (rc int) {
	parser := &docopt.Parser{HelpHandler: docopt.PrintHelpOnly}
	o, err := parser.ParseArgs(usage, os.Args[1:], "0.1")
	if err != nil {
		log.Error(err)
		return rcUsage
	}
	if len(o) == 0 {
		// --help or --version
		return rcOK
	}
	var opts Opts
	err = o.Bind(&opts)
	if err != nil {
		log.Error(err)
		return rcUsage
	}
	log.Debug(opts)

	c, err := opencache()
	if err != nil {
		log.Error(err)
		return rcErr
	}

	switch true {
	case opts.Put:
		err = put(c, opts, os.Stdin)
	case opts.Get:
		var buf []byte
		buf, _, err = c.Get(opts.Key)
		if err == nil {
			_, err = os.Stdout.Write(buf)
		}
	case opts.GetHash:
		err = getHash(c, opts.Sri)
	case opts.Info:
		err = info(c, opts.Key)
	case opts.Has:
		var ok bool
		ok, err = c.HasContent(opts.Key)
		if err == nil {
			fmt.Println(ok)
		}
	case opts.Rm:
		if opts.All {
			err = c.Remove(opts.Key, cacache.WithRemoveFully())
		} else {
			err = c.Remove(opts.Key)
		}
	case opts.RmHash:
		var sri integrity.Integrity
		sri, err = integrity.Parse(opts.Sri)
		if err == nil {
			err = c.RemoveHash(sri)
		}
	case opts.Ls:
		err = ls(c)
	case opts.LsContent:
		err = lsContent(c)
	case opts.Copy:
		var n int64
		n, err = c.CopyTo(opts.Key, opts.Filename)
		if err == nil {
			fmt.Printf("copied %s to %s\n", humanize.Bytes(uint64(n)), opts.Filename)
		}
	case opts.Link:
		var sri integrity.Integrity
		sri, err = c.Link(opts.Key, opts.Filename)
		if err == nil {
			fmt.Println(sri)
		}
	case opts.Clear:
		err = c.Clear()
	}
	if err != nil {
		log.Error(err)
		return exitCode(err)
	}
	return rcOK
}

func exitCode(err error) int {
	switch {
	case errors.Is(err, cacache.ErrNotFound):
		return rcNotFound
	case errors.Is(err, cacache.ErrIntegrity):
		return rcIntegrity
	case errors.Is(err, cacache.ErrSize):
		return rcSize
	case errors.Is(err, cacache.ErrMalformedIntegrity), errors.Is(err, cacache.ErrInvalidKey):
		return rcUsage
	}
	return rcErr
}

func cachedir() (dir string, err error) {
	dir = os.Getenv("CACHEDIR")
	if dir == "" {
		dir, err = os.Getwd()
	}
	return
}

func opencache() (c *cacache.Cache, err error) {
	dir, err := cachedir()
	if err != nil {
		return
	}
	return cacache.Open(dir)
}

func put(c *cacache.Cache, opts Opts, rd io.Reader) (err error) {
	var popts []cacache.PutOption
	for _, name := range opts.Algo {
		algo, err := integrity.ParseAlgorithm(name)
		if err != nil {
			return err
		}
		popts = append(popts, cacache.WithAlgorithm(algo))
	}
	if opts.Size != "" {
		n, err := strconv.ParseInt(opts.Size, 10, 64)
		if err != nil {
			return errors.Wrapf(err, "bad size %q", opts.Size)
		}
		popts = append(popts, cacache.WithSize(n))
	}
	if opts.Integrity != "" {
		sri, err := integrity.Parse(opts.Integrity)
		if err != nil {
			return err
		}
		popts = append(popts, cacache.WithIntegrity(sri))
	}
	if opts.Meta != "" {
		var meta any
		err = json.Unmarshal([]byte(opts.Meta), &meta)
		if err != nil {
			return errors.Wrap(err, "bad metadata")
		}
		popts = append(popts, cacache.WithMetadata(meta))
	}

	w, err := c.NewWriter(opts.Key, popts...)
	if err != nil {
		return
	}
	defer w.Close()
	_, err = io.Copy(w, rd)
	if err != nil {
		return
	}
	sri, err := w.Commit()
	if err != nil {
		return
	}
	fmt.Println(sri)
	return
}

func getHash(c *cacache.Cache, text string) (err error) {
	sri, err := integrity.Parse(text)
	if err != nil {
		return
	}
	r, err := c.HashReader(sri)
	if err != nil {
		return
	}
	defer r.Close()
	_, err = io.Copy(os.Stdout, r)
	return
}

func info(c *cacache.Cache, key string) (err error) {
	entry, err := c.Info(key)
	if err != nil {
		return
	}
	meta, err := json.Marshal(entry.Metadata)
	if err != nil {
		return
	}
	fmt.Printf("key: %s\n", entry.Key)
	fmt.Printf("integrity: %s\n", entry.Integrity)
	fmt.Printf("size: %d\n", entry.Size)
	fmt.Printf("metadata: %s\n", meta)
	return
}

func ls(c *cacache.Cache) (err error) {
	var lines []string
	for entry, err := range c.List() {
		if err != nil {
			return err
		}
		lines = append(lines, fmt.Sprintf("%s\t%s\t%s", entry.Key, entry.Integrity, humanize.Bytes(uint64(entry.Size))))
	}
	sort.Strings(lines)
	for _, line := range lines {
		fmt.Println(line)
	}
	return
}

func lsContent(c *cacache.Cache) (err error) {
	var lines []string
	for sri, err := range c.ListContent() {
		if err != nil {
			return err
		}
		lines = append(lines, sri.String())
	}
	sort.Strings(lines)
	for _, line := range lines {
		fmt.Println(line)
	}
	return
}
