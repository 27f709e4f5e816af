package cachepath

import (
	"path/filepath"
	"testing"

	"github.com/t7a/cacache/integrity"
)

// test boolean condition
func tassert(t *testing.T, cond bool, txt string, args ...interface{}) {
	t.Helper() // cause file:line info to show caller
	if !cond {
		t.Fatalf(txt, args...)
	}
}

func TestContent(t *testing.T) {
	root := t.TempDir()

	sri := integrity.Compute(integrity.Sha256, []byte("somevalue"))
	relpath := "content-v2/sha256/70/a5/24688ced8e45d26776fd4dc56410725b566cd840c044546ab30c4b499342"

	expect := filepath.Join(root, relpath)
	got := ContentFor(root, sri)
	tassert(t, expect == got, "expected %s, got %s", expect, got)

	// same digest, same path
	again := Content(root, integrity.Compute(integrity.Sha256, []byte("somevalue")).Pick())
	tassert(t, again == got, "expected %s, got %s", got, again)

	h, err := ParseContent(root, got)
	tassert(t, err == nil, "%#v", err)
	tassert(t, h.Equal(sri.Pick()), "expected %s, got %s", sri, h)

	h, err = ParseContent(root, relpath)
	tassert(t, err == nil, "%#v", err)
	tassert(t, h.Equal(sri.Pick()), "expected %s, got %s", sri, h)
}

func TestContentMultiHash(t *testing.T) {
	b := integrity.NewBuilder(integrity.Sha1, integrity.Sha512)
	b.Write([]byte("hello"))
	sri := b.Sum()

	// strongest hash picks the path
	expect := filepath.Join("/cache", "content-v2/sha512/9b/71/d224bd62f3785d96d46ad3ea3d73319bfbc2890caadae2dff72519673ca72323c3d99ba5c11d7c7acc6e14b8c5da0c4663475c2e5c3adef46f73bcdec043")
	got := ContentFor("/cache", sri)
	tassert(t, expect == got, "expected %s, got %s", expect, got)

	// same hex under another algorithm lives elsewhere
	sha1path := Content("/cache", sri.Hashes()[1])
	tassert(t, sha1path == "/cache/content-v2/sha1/aa/f4/c61ddcc5e8a2dabede0f3b482cd9aea9434d", "got %s", sha1path)
}

func TestBucket(t *testing.T) {
	got := Bucket("/cache", "pkg@1.0.0")
	expect := "/cache/index-v5/e6/92/00dbcaaf641ffc39247fc148be65ddc69412"
	tassert(t, expect == got, "expected %s, got %s", expect, got)

	other := Bucket("/cache", "pkg@1.0.1")
	tassert(t, other != got, "distinct keys share %s", got)
	tassert(t, Tmp("/cache") == "/cache/tmp", "tmp %s", Tmp("/cache"))
}

func TestParseContentBad(t *testing.T) {
	for _, p := range []string{
		"index-v5/e6/92/00dbcaaf641ffc39247fc148be65ddc69412",
		"content-v2/md5/aa/bb/cc",
		"content-v2/sha1/aa/f4",
		"content-v2/sha1/aaf/4/c61ddcc5e8a2dabede0f3b482cd9aea9434d",
		"content-v2/sha1/aa/f4/zz1ddcc5e8a2dabede0f3b482cd9aea9434d",
		"content-v2/sha1/aa/f4/c61ddcc5",
	} {
		_, err := ParseContent("/cache", p)
		tassert(t, err != nil, "expected error for %s", p)
	}
}
