package sink

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/Adithya-Monish-Kumar-K/concordance/internal/concordance/report"
)

// Stream writes rows as text lines to an io.Writer such as stdout.
type Stream struct {
	name string
	w    io.Writer
}

func NewStream(name string, w io.Writer) *Stream {
	return &Stream{name: name, w: w}
}

func (s *Stream) Name() string { return s.name }

func (s *Stream) Write(_ context.Context, rows []report.Row) error {
	return report.Write(s.w, rows)
}

// File writes rows to path. The report goes to a temporary file next to path
// which is synced and renamed into place, so readers never see a partial
// listing.
type File struct {
	path string
}

func NewFile(path string) *File {
	return &File{path: path}
}

func (f *File) Name() string { return "file" }

func (f *File) Write(_ context.Context, rows []report.Row) error {
	dir := filepath.Dir(f.path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(f.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp output file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)
	defer tmp.Close()

	if err := report.Write(tmp, rows); err != nil {
		return err
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("syncing output file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing output file: %w", err)
	}
	if err := os.Rename(tmpPath, f.path); err != nil {
		return fmt.Errorf("renaming output file: %w", err)
	}
	return nil
}
