package storage

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestSweepRemovesStaleArtifacts(t *testing.T) {
	dir := t.TempDir()
	j := &Janitor{Dir: dir, TTL: time.Hour}

	old := time.Now().Add(-2 * time.Hour)
	stale := filepath.Join(dir, "dQw4w9WgXcQ.webm")
	touch(t, dir, "dQw4w9WgXcQ.webm")
	if err := os.Chtimes(stale, old, old); err != nil {
		t.Fatal(err)
	}
	touch(t, dir, "fresh123456.mp4")

	j.sweep()

	if _, err := os.Stat(stale); !os.IsNotExist(err) {
		t.Error("stale artifact must be removed")
	}
	if _, err := os.Stat(filepath.Join(dir, "fresh123456.mp4")); err != nil {
		t.Errorf("fresh artifact must survive: %v", err)
	}
}

func TestSweepLeavesNonArtifactsAlone(t *testing.T) {
	dir := t.TempDir()
	j := &Janitor{Dir: dir, TTL: time.Hour}

	old := time.Now().Add(-48 * time.Hour)
	db := filepath.Join(dir, "youtube_bot_database.db")
	touch(t, dir, "youtube_bot_database.db")
	if err := os.Chtimes(db, old, old); err != nil {
		t.Fatal(err)
	}

	j.sweep()

	if _, err := os.Stat(db); err != nil {
		t.Errorf("database file must never be swept: %v", err)
	}
}

func TestArtifactPattern(t *testing.T) {
	match := []string{"dQw4w9WgXcQ.mp4", "dQw4w9WgXcQ_2.webm", "abc.m4a", "dQw4w9WgXcQ_10.mp4"}
	for _, name := range match {
		if !artifactPattern.MatchString(name) {
			t.Errorf("%q must match", name)
		}
	}
	skip := []string{"youtube_bot_database.db", ".env", "notes.backup.txt", "dQw4w9WgXcQ"}
	for _, name := range skip {
		if artifactPattern.MatchString(name) {
			t.Errorf("%q must not match", name)
		}
	}
}
