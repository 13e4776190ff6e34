// Package source supplies raw input lines to the concordance engine.
package source

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	apperrors "github.com/Adithya-Monish-Kumar-K/concordance/pkg/errors"
)

// LineSource yields lines until it returns io.EOF. Lines carry no trailing
// newline.
type LineSource interface {
	Next() (string, error)
}

// Reader reads newline-terminated lines of any length from an io.Reader.
// A final line without a newline is still returned.
type Reader struct {
	br  *bufio.Reader
	err error
}

func NewReader(r io.Reader) *Reader {
	return &Reader{br: bufio.NewReaderSize(r, 64*1024)}
}

func (r *Reader) Next() (string, error) {
	if r.err != nil {
		return "", r.err
	}
	line, err := r.br.ReadString('\n')
	if err != nil {
		if !errors.Is(err, io.EOF) {
			r.err = fmt.Errorf("%w: %v", apperrors.ErrSourceRead, err)
			return "", r.err
		}
		r.err = io.EOF
		if line == "" {
			return "", io.EOF
		}
	}
	line = strings.TrimSuffix(line, "\n")
	line = strings.TrimSuffix(line, "\r")
	return line, nil
}

// Files reads the named files one after another as a single stream. The name
// "-" stands for stdin. Files are opened lazily and closed once drained.
type Files struct {
	names   []string
	stdin   io.Reader
	current *Reader
	closer  io.Closer
	logger  *slog.Logger
}

// NewFiles returns a Files source. With no names it reads stdin.
func NewFiles(names []string, stdin io.Reader) *Files {
	if len(names) == 0 {
		names = []string{"-"}
	}
	return &Files{
		names:  names,
		stdin:  stdin,
		logger: slog.Default().With("component", "source"),
	}
}

func (f *Files) Next() (string, error) {
	for {
		if f.current == nil {
			if len(f.names) == 0 {
				return "", io.EOF
			}
			if err := f.open(f.names[0]); err != nil {
				return "", err
			}
			f.names = f.names[1:]
		}
		line, err := f.current.Next()
		if err == nil {
			return line, nil
		}
		closeErr := f.closeCurrent()
		if !errors.Is(err, io.EOF) {
			return "", err
		}
		if closeErr != nil {
			return "", closeErr
		}
	}
}

// Close releases the file currently being read, if any.
func (f *Files) Close() error {
	return f.closeCurrent()
}

func (f *Files) open(name string) error {
	if name == "-" {
		f.current = NewReader(f.stdin)
		f.logger.Debug("reading input", "file", "stdin")
		return nil
	}
	file, err := os.Open(name)
	if err != nil {
		return fmt.Errorf("%w: opening %s: %v", apperrors.ErrSourceRead, name, err)
	}
	f.current = NewReader(file)
	f.closer = file
	f.logger.Debug("reading input", "file", name)
	return nil
}

func (f *Files) closeCurrent() error {
	f.current = nil
	if f.closer == nil {
		return nil
	}
	err := f.closer.Close()
	f.closer = nil
	if err != nil {
		return fmt.Errorf("%w: closing input: %v", apperrors.ErrSourceRead, err)
	}
	return nil
}
