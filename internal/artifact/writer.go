// Package artifact writes run outputs so readers never observe a partial file.
package artifact

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/renameio/v2"
)

var (
	// ErrOutputUnavailable is returned when the output directory cannot be created or written.
	ErrOutputUnavailable = errors.New("artifact: output directory unavailable")
	// ErrInvalidName is returned for names that would escape the output directory.
	ErrInvalidName = errors.New("artifact: invalid name")
)

const defaultPerm os.FileMode = 0o644

// Writer places artifacts in one output directory. Each file is written to a
// temp file in that directory and renamed over the destination on success.
type Writer struct {
	dir  string
	perm os.FileMode
}

// NewWriter creates dir when missing and checks that it accepts new files.
func NewWriter(dir string) (*Writer, error) {
	if dir == "" {
		return nil, fmt.Errorf("%w: empty path", ErrOutputUnavailable)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrOutputUnavailable, err)
	}
	probe, err := os.CreateTemp(dir, ".probe-*")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrOutputUnavailable, err)
	}
	name := probe.Name()
	_ = probe.Close()
	_ = os.Remove(name)
	return &Writer{dir: dir, perm: defaultPerm}, nil
}

// Path returns the destination path of an artifact.
func (w *Writer) Path(name string) string { return filepath.Join(w.dir, name) }

// Write streams an artifact through fn and publishes it atomically. When fn
// fails the temp file is removed and any previous artifact is left untouched.
func (w *Writer) Write(name string, fn func(io.Writer) error) (string, error) {
	if name == "" || strings.ContainsAny(name, `/\`) {
		return "", fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	path := w.Path(name)
	pending, err := renameio.NewPendingFile(path, renameio.WithTempDir(w.dir), renameio.WithPermissions(w.perm))
	if err != nil {
		return "", err
	}
	defer pending.Cleanup()

	if err := fn(pending); err != nil {
		return "", fmt.Errorf("artifact %s: %w", name, err)
	}
	if err := pending.CloseAtomicallyReplace(); err != nil {
		return "", fmt.Errorf("artifact %s: %w", name, err)
	}
	return path, nil
}

// WriteBytes publishes data as an artifact.
func (w *Writer) WriteBytes(name string, data []byte) (string, error) {
	return w.Write(name, func(out io.Writer) error {
		_, err := out.Write(data)
		return err
	})
}
