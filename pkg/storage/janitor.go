package storage

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"time"
)

// artifactPattern matches allocator-produced names: an id suffix of up to
// 11 characters, an optional collision suffix, an extension. Anything else
// in the working directory (the counter database, config files) is never
// touched.
var artifactPattern = regexp.MustCompile(`^[\w-]{1,11}(_[0-9]+)?\.[A-Za-z0-9]{2,4}$`)

// Janitor sweeps the working directory for artifacts that survived a failed
// pipeline run (assembler inputs are kept on merge/convert failure) and
// removes them once they are older than TTL.
type Janitor struct {
	Dir string
	TTL time.Duration
}

// Run sweeps every interval until the context is cancelled.
func (j *Janitor) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			j.sweep()
		}
	}
}

func (j *Janitor) sweep() {
	entries, err := os.ReadDir(j.Dir)
	if err != nil {
		slog.Error("Janitor cant read working dir", "err", err)
		return
	}

	for _, e := range entries {
		if e.IsDir() || !artifactPattern.MatchString(e.Name()) {
			continue
		}
		info, ierr := e.Info()
		if ierr != nil {
			continue
		}
		if time.Since(info.ModTime()) <= j.TTL {
			continue
		}

		path := filepath.Join(j.Dir, e.Name())
		if rerr := os.Remove(path); rerr != nil {
			slog.Error("Failed to remove stale file", "path", path, "err", rerr)
		} else {
			slog.Debug("Cleaned up stale file", "path", path)
		}
	}
}
