package fileutil_test

import (
	"os"
	"path/filepath"
	"testing"

	"folio/internal/fileutil"
	"folio/internal/testsupport"
)

func TestHashFileMatchesForIdenticalContent(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.bin")
	b := filepath.Join(dir, "b.bin")
	c := filepath.Join(dir, "c.bin")
	testsupport.WriteContent(t, a, []byte("same bytes"))
	testsupport.WriteContent(t, b, []byte("same bytes"))
	testsupport.WriteContent(t, c, []byte("different"))

	hashA, sizeA, err := fileutil.HashFile(a)
	if err != nil {
		t.Fatalf("hash a: %v", err)
	}
	hashB, _, err := fileutil.HashFile(b)
	if err != nil {
		t.Fatalf("hash b: %v", err)
	}
	hashC, _, err := fileutil.HashFile(c)
	if err != nil {
		t.Fatalf("hash c: %v", err)
	}

	if hashA != hashB {
		t.Fatal("identical content must hash identically")
	}
	if hashA == hashC {
		t.Fatal("different content must not collide")
	}
	if sizeA != int64(len("same bytes")) {
		t.Fatalf("size = %d, want %d", sizeA, len("same bytes"))
	}
}

func TestHashFileMissing(t *testing.T) {
	if _, _, err := fileutil.HashFile(filepath.Join(t.TempDir(), "gone")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestCopyFilePreservesContent(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src.txt")
	dst := filepath.Join(dir, "dst.txt")
	testsupport.WriteContent(t, src, []byte("payload"))

	if err := fileutil.CopyFile(src, dst); err != nil {
		t.Fatalf("copy: %v", err)
	}
	data, err := os.ReadFile(dst)
	if err != nil {
		t.Fatalf("read dst: %v", err)
	}
	if string(data) != "payload" {
		t.Fatalf("dst content = %q", data)
	}
}

func TestMoveFileSameDevice(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src.txt")
	dst := filepath.Join(dir, "dst.txt")
	testsupport.WriteContent(t, src, []byte("move me"))

	if err := fileutil.MoveFile(src, dst); err != nil {
		t.Fatalf("move: %v", err)
	}
	if _, err := os.Stat(src); !os.IsNotExist(err) {
		t.Fatal("source should be gone after move")
	}
	if _, err := os.Stat(dst); err != nil {
		t.Fatalf("destination missing: %v", err)
	}
}
