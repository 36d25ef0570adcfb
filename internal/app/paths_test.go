package app

import (
	"os"
	"path/filepath"
	"testing"
)

func TestPathsIn(t *testing.T) {
	root := filepath.Join(t.TempDir(), Name)
	p := PathsIn(root)

	if p.ConfigFile != filepath.Join(root, ConfigFilename) {
		t.Fatalf("unexpected config file: %q", p.ConfigFile)
	}
	if p.JournalFile != filepath.Join(root, JournalFilename) {
		t.Fatalf("unexpected journal file: %q", p.JournalFile)
	}
	if p.LogFile != filepath.Join(root, LogFilename) {
		t.Fatalf("unexpected log file: %q", p.LogFile)
	}
	if _, err := os.Stat(root); !os.IsNotExist(err) {
		t.Fatalf("expected root not to be created yet, stat err: %v", err)
	}

	if err := p.EnsureRoot(); err != nil {
		t.Fatalf("ensure root: %v", err)
	}
	if info, err := os.Stat(root); err != nil || !info.IsDir() {
		t.Fatalf("expected root dir to exist, err: %v", err)
	}
}
