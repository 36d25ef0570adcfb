package app

import (
	"fmt"
	"os"
	"path/filepath"
)

// Paths stores resolved runtime file locations for config, journal and logs.
type Paths struct {
	RootDir     string
	ConfigFile  string
	JournalFile string
	LogFile     string
}

// ResolvePaths locates the per-user config directory. Nothing is created
// until a file is actually written there.
func ResolvePaths() (Paths, error) {
	cfgRoot, err := os.UserConfigDir()
	if err != nil {
		return Paths{}, fmt.Errorf("resolve config dir: %w", err)
	}

	return PathsIn(filepath.Join(cfgRoot, Name)), nil
}

func PathsIn(root string) Paths {
	return Paths{
		RootDir:     root,
		ConfigFile:  filepath.Join(root, ConfigFilename),
		JournalFile: filepath.Join(root, JournalFilename),
		LogFile:     filepath.Join(root, LogFilename),
	}
}

// EnsureRoot creates the config directory.
func (p Paths) EnsureRoot() error {
	if err := os.MkdirAll(p.RootDir, 0o750); err != nil {
		return fmt.Errorf("create app config dir: %w", err)
	}

	return nil
}
