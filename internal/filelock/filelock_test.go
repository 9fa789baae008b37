package filelock

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestForRootStablePath(t *testing.T) {
	dir := t.TempDir()

	a, err := ForRoot("/data/photos", dir)
	if err != nil {
		t.Fatal(err)
	}
	b, err := ForRoot("/data/photos/", dir)
	if err != nil {
		t.Fatal(err)
	}
	c, err := ForRoot("/data/music", dir)
	if err != nil {
		t.Fatal(err)
	}

	if a.Path() != b.Path() {
		t.Errorf("same root produced different locks: %s vs %s", a.Path(), b.Path())
	}
	if a.Path() == c.Path() {
		t.Error("different roots produced the same lock")
	}
	if filepath.Dir(a.Path()) != dir {
		t.Errorf("lock not placed in %s: %s", dir, a.Path())
	}
}

func TestTryLockExclusive(t *testing.T) {
	dir := t.TempDir()
	first, _ := ForRoot("/data", dir)
	second, _ := ForRoot("/data", dir)

	if err := first.TryLock(); err != nil {
		t.Fatalf("first TryLock: %v", err)
	}

	err := second.TryLock()
	if !errors.Is(err, ErrLocked) {
		t.Fatalf("second TryLock = %v, want ErrLocked", err)
	}

	if err := first.Unlock(); err != nil {
		t.Fatalf("Unlock: %v", err)
	}
	if err := second.TryLock(); err != nil {
		t.Fatalf("TryLock after unlock: %v", err)
	}
	second.Unlock()
}

func TestAtomicWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "deep", "out.txt")

	if err := AtomicWrite(path, []byte("one")); err != nil {
		t.Fatalf("AtomicWrite: %v", err)
	}
	if err := AtomicWrite(path, []byte("two")); err != nil {
		t.Fatalf("AtomicWrite overwrite: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "two" {
		t.Errorf("content = %q, want two", data)
	}

	entries, _ := os.ReadDir(filepath.Dir(path))
	if len(entries) != 1 {
		t.Errorf("temp files left behind: %d entries", len(entries))
	}
}
