package logging

import (
	"bytes"
	"strings"
	"testing"

	log "github.com/sirupsen/logrus"
)

func TestGetGID(t *testing.T) {
	n := GetGID()
	if n == 0 {
		t.Fatalf("oh no n is 0")
	}
	done := make(chan uint64)
	go func() { done <- GetGID() }()
	if other := <-done; other == n {
		t.Fatalf("goroutines share gid %d", n)
	}
}

func TestSetup(t *testing.T) {
	t.Setenv("DEBUG", "1")
	defer log.SetOutput(log.StandardLogger().Out)
	defer log.SetLevel(log.GetLevel())

	Setup()
	var buf bytes.Buffer
	log.SetOutput(&buf)
	log.Debugf("hello %d", 42)

	out := buf.String()
	if !strings.Contains(out, "hello 42") {
		t.Fatalf("missing message: %q", out)
	}
	if !strings.Contains(out, "logging_test.go:") || !strings.Contains(out, "gid ") {
		t.Fatalf("missing caller: %q", out)
	}
}
