package config

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
)

// FileSystem abstracts file access so tests can use in-memory files.
type FileSystem interface {
	fs.FS
	ReadFile(path string) ([]byte, error)
}

// OSFS implements FileSystem on the real file system.
type OSFS struct{}

// Open implements fs.FS.
func (OSFS) Open(name string) (fs.File, error) { return os.Open(name) }

// ReadFile reads the entire file at path.
func (OSFS) ReadFile(path string) ([]byte, error) { return os.ReadFile(path) }

// Loader reads settings from a TOML file.
type Loader struct {
	fs   FileSystem
	path string
}

// NewLoader creates a loader for the given path.
func NewLoader(path string) *Loader {
	return &Loader{fs: OSFS{}, path: path}
}

// NewLoaderWithFS creates a loader with a custom file system.
func NewLoaderWithFS(fsys FileSystem, path string) *Loader {
	return &Loader{fs: fsys, path: path}
}

// Path returns the file the loader reads.
func (l *Loader) Path() string { return l.path }

// Load reads settings from the configured path. A missing file yields the
// defaults; present keys override defaults, absent keys keep them.
func (l *Loader) Load() (Settings, error) {
	data, err := l.fs.ReadFile(l.path)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return Settings{}, fmt.Errorf("reading config file %s: %w", l.path, err)
	}
	return parse(l.path, data)
}

// LoadFromReader reads settings from r, over the defaults.
func LoadFromReader(r io.Reader) (Settings, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return Settings{}, fmt.Errorf("reading config: %w", err)
	}
	return parse("<reader>", data)
}

func parse(source string, data []byte) (Settings, error) {
	s := Default()
	if err := toml.Unmarshal(data, &s); err != nil {
		return Settings{}, fmt.Errorf("parsing %s: %w", source, err)
	}
	if err := s.Validate(); err != nil {
		return Settings{}, fmt.Errorf("validating %s: %w", source, err)
	}
	return s, nil
}

// DefaultPath returns the conventional settings location, honoring
// XDG_CONFIG_HOME.
func DefaultPath() string {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, "mathseek", "config.toml")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "mathseek.toml"
	}
	return filepath.Join(home, ".config", "mathseek", "config.toml")
}
