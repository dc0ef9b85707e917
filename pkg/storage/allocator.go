package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// Allocator hands out collision-free filenames inside one working
// directory. Names are claimed with an exclusive create, so two concurrent
// flows asking for the same base name get distinct paths.
type Allocator struct {
	Dir string
}

// Allocate returns a path for the desired base name ("<stem>.<ext>"). If
// the name is free it is used as-is; otherwise "<stem>_2.<ext>" is probed,
// and failing that the smallest unused suffix >= 3 is chosen. The returned
// path exists as an empty placeholder file owned by the caller.
func (a *Allocator) Allocate(desired string) (string, error) {
	stem, ext := splitName(desired)

	if path, ok, err := a.claim(desired); err != nil {
		return "", err
	} else if ok {
		return path, nil
	}

	second := fmt.Sprintf("%s_2%s", stem, ext)
	if path, ok, err := a.claim(second); err != nil {
		return "", err
	} else if ok {
		return path, nil
	}

	used, err := a.usedSuffixes(stem, ext)
	if err != nil {
		return "", err
	}

	for n := 3; ; n++ {
		if used[n] {
			continue
		}
		name := fmt.Sprintf("%s_%d%s", stem, n, ext)
		path, ok, err := a.claim(name)
		if err != nil {
			return "", err
		}
		if ok {
			return path, nil
		}
		// lost a race for this suffix, keep probing
	}
}

// claim atomically reserves a name via O_EXCL creation.
func (a *Allocator) claim(name string) (string, bool, error) {
	path := filepath.Join(a.Dir, name)
	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0644)
	if err != nil {
		if errors.Is(err, os.ErrExist) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("failed to claim %s: %w", name, err)
	}
	if cerr := f.Close(); cerr != nil {
		return "", false, cerr
	}
	return path, true, nil
}

func (a *Allocator) usedSuffixes(stem, ext string) (map[int]bool, error) {
	entries, err := os.ReadDir(a.Dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read working dir: %w", err)
	}

	used := make(map[int]bool)
	prefix := stem + "_"
	for _, e := range entries {
		name := e.Name()
		if !strings.HasPrefix(name, prefix) || !strings.HasSuffix(name, ext) {
			continue
		}
		mid := strings.TrimSuffix(strings.TrimPrefix(name, prefix), ext)
		if n, perr := strconv.Atoi(mid); perr == nil {
			used[n] = true
		}
	}
	return used, nil
}

// splitName separates "video.mp4" into "video" and ".mp4". A name without
// an extension keeps an empty ext.
func splitName(name string) (stem, ext string) {
	ext = filepath.Ext(name)
	return strings.TrimSuffix(name, ext), ext
}
