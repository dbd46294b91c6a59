// Package home manages the ~/.lectern directory layout: the SQLite database,
// the config file, and generated audio.
package home

import (
	"fmt"
	"os"
	"path/filepath"
)

const (
	// DefaultDirName is the default name for the lectern home directory.
	DefaultDirName = ".lectern"

	// DatabaseFileName is the SQLite database file name.
	DatabaseFileName = "lectern.db"

	// ConfigFileName is the default config file name.
	ConfigFileName = "config.yaml"
)

// Dir represents the lectern home directory structure.
type Dir struct {
	path string
}

// New creates a new Dir with the given path.
// If path is empty, uses the default (~/.lectern).
func New(path string) (*Dir, error) {
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get user home directory: %w", err)
		}
		path = filepath.Join(home, DefaultDirName)
	}
	return &Dir{path: path}, nil
}

// Path returns the root path of the home directory.
func (d *Dir) Path() string {
	return d.path
}

// DatabasePath returns the path to the SQLite database file.
func (d *Dir) DatabasePath() string {
	return filepath.Join(d.path, DatabaseFileName)
}

// ConfigPath returns the path to the default config file.
func (d *Dir) ConfigPath() string {
	return filepath.Join(d.path, ConfigFileName)
}

// ConfigExists returns true if the config file exists in the home directory.
func (d *Dir) ConfigExists() bool {
	_, err := os.Stat(d.ConfigPath())
	return err == nil
}

// EnsureExists creates the home directory tree if it doesn't exist.
func (d *Dir) EnsureExists() error {
	if err := os.MkdirAll(d.AudioDir(), 0o755); err != nil {
		return fmt.Errorf("failed to create audio directory: %w", err)
	}
	return nil
}

// AudioDir returns the directory for generated audio files.
func (d *Dir) AudioDir() string {
	return filepath.Join(d.path, "audio")
}

// BookAudioDir returns the audio directory for a specific book.
func (d *Dir) BookAudioDir(bookID string) string {
	return filepath.Join(d.AudioDir(), bookID)
}

// ParagraphAudioPath returns the path for a paragraph's audio file.
func (d *Dir) ParagraphAudioPath(bookID, paragraphID, format string) string {
	return filepath.Join(d.BookAudioDir(bookID),
		fmt.Sprintf("paragraph_%s.%s", paragraphID, format))
}

// SegmentAudioPath returns the path for one sentence segment of a paragraph,
// removed again once segments are concatenated.
func (d *Dir) SegmentAudioPath(bookID, paragraphID string, segmentIdx int, format string) string {
	return filepath.Join(d.BookAudioDir(bookID),
		fmt.Sprintf("paragraph_%s_segment_%04d.%s", paragraphID, segmentIdx, format))
}

// PageAudioPath returns the path for a page's combined audio file.
func (d *Dir) PageAudioPath(bookID string, pageNumber int, format string) string {
	return filepath.Join(d.BookAudioDir(bookID),
		fmt.Sprintf("page_%04d.%s", pageNumber, format))
}

// EnsureBookAudioDir creates the audio directory for a book.
func (d *Dir) EnsureBookAudioDir(bookID string) error {
	return os.MkdirAll(d.BookAudioDir(bookID), 0o755)
}
