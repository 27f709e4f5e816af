package main

import (
	"flag"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmdtest"
)

var update = flag.Bool("update", false, "update test files with results")

func TestCLI(t *testing.T) {
	t.Setenv("CACHEDIR", "")
	ts, err := cmdtest.Read("testdata")
	if err != nil {
		t.Fatal(err)
	}
	ts.Setup = func(dir string) (err error) {
		err = os.WriteFile(filepath.Join(dir, "hello.txt"), []byte("hello world\n"), 0644)
		if err != nil {
			return
		}
		return os.WriteFile(filepath.Join(dir, "another.txt"), []byte("another file\n"), 0644)
	}
	ts.Commands["cacache"] = cmdtest.InProcessProgram("cacache", run)
	ts.Run(t, *update)
}
