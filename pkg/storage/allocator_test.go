package storage

import (
	"os"
	"path/filepath"
	"testing"
)

func touch(t *testing.T, dir, name string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), nil, 0644); err != nil {
		t.Fatal(err)
	}
}

func TestAllocateFreshName(t *testing.T) {
	dir := t.TempDir()
	a := &Allocator{Dir: dir}

	path, err := a.Allocate("a.mp4")
	if err != nil {
		t.Fatal(err)
	}
	if filepath.Base(path) != "a.mp4" {
		t.Errorf("got %q, want a.mp4 unchanged", filepath.Base(path))
	}
	if _, serr := os.Stat(path); serr != nil {
		t.Errorf("allocated name must be claimed on disk: %v", serr)
	}
}

func TestAllocateSecondSuffix(t *testing.T) {
	dir := t.TempDir()
	a := &Allocator{Dir: dir}
	touch(t, dir, "a.mp4")

	path, err := a.Allocate("a.mp4")
	if err != nil {
		t.Fatal(err)
	}
	if filepath.Base(path) != "a_2.mp4" {
		t.Errorf("got %q, want a_2.mp4", filepath.Base(path))
	}
}

func TestAllocateScansForSmallestFreeSuffix(t *testing.T) {
	dir := t.TempDir()
	a := &Allocator{Dir: dir}
	touch(t, dir, "a.mp4")
	touch(t, dir, "a_2.mp4")

	path, err := a.Allocate("a.mp4")
	if err != nil {
		t.Fatal(err)
	}
	if filepath.Base(path) != "a_3.mp4" {
		t.Errorf("got %q, want a_3.mp4", filepath.Base(path))
	}
}

func TestAllocateFillsGaps(t *testing.T) {
	dir := t.TempDir()
	a := &Allocator{Dir: dir}
	for _, n := range []string{"a.mp4", "a_2.mp4", "a_3.mp4", "a_5.mp4"} {
		touch(t, dir, n)
	}

	path, err := a.Allocate("a.mp4")
	if err != nil {
		t.Fatal(err)
	}
	if filepath.Base(path) != "a_4.mp4" {
		t.Errorf("got %q, want a_4.mp4 (smallest unused >= 3)", filepath.Base(path))
	}
}

func TestAllocateIgnoresOtherExtensions(t *testing.T) {
	dir := t.TempDir()
	a := &Allocator{Dir: dir}
	touch(t, dir, "a.mp4")
	touch(t, dir, "a_2.webm")

	path, err := a.Allocate("a.mp4")
	if err != nil {
		t.Fatal(err)
	}
	if filepath.Base(path) != "a_2.mp4" {
		t.Errorf("got %q, want a_2.mp4 (webm sibling must not count)", filepath.Base(path))
	}
}

func TestAllocateSequentialCalls(t *testing.T) {
	dir := t.TempDir()
	a := &Allocator{Dir: dir}

	want := []string{"a.mp4", "a_2.mp4", "a_3.mp4", "a_4.mp4"}
	for _, w := range want {
		path, err := a.Allocate("a.mp4")
		if err != nil {
			t.Fatal(err)
		}
		if filepath.Base(path) != w {
			t.Errorf("got %q, want %q", filepath.Base(path), w)
		}
	}
}
