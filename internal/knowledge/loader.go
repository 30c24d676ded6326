// Package knowledge reads the flat-file knowledge base that grounds every
// answer. The file is re-read on each call; edits take effect immediately.
package knowledge

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"unicode/utf8"

	"github.com/spf13/afero"
)

// DefaultPath is the knowledge base location relative to the working directory.
const DefaultPath = "knowledge_base.txt"

// ErrUnreadable wraps every failure other than the file being absent.
var ErrUnreadable = errors.New("knowledge base unreadable")

// FileLoader loads the knowledge base from a single path on fs.
type FileLoader struct {
	fs   afero.Fs
	path string
}

func NewFileLoader(fsys afero.Fs, path string) (*FileLoader, error) {
	if fsys == nil {
		return nil, errors.New("knowledge: filesystem must not be nil")
	}
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("knowledge: path must not be empty")
	}
	return &FileLoader{fs: fsys, path: path}, nil
}

// Path returns the configured file path.
func (l *FileLoader) Path() string {
	return l.path
}

// Load returns the full file contents, or FallbackText when the file does not
// exist.
func (l *FileLoader) Load(_ context.Context) (string, error) {
	raw, err := afero.ReadFile(l.fs, l.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return FallbackText(l.path), nil
		}
		return "", fmt.Errorf("knowledge: read %q: %w: %w", l.path, ErrUnreadable, err)
	}
	if !utf8.Valid(raw) {
		return "", fmt.Errorf("knowledge: read %q: %w: content is not valid UTF-8", l.path, ErrUnreadable)
	}
	return string(raw), nil
}

// FallbackText is substituted for a missing knowledge base file.
func FallbackText(path string) string {
	return fmt.Sprintf("No knowledge base file found. Please create '%s' with your data.", path)
}
