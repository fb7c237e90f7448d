// Package writer persists filter results as plain text files.
package writer

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
)

// ErrWrite is matched by every *IOError.
var ErrWrite = errors.New("result file could not be written")

// IOError reports a failed result file write. It never describes a scan
// failure; the in-memory result it was asked to write is still valid.
type IOError struct {
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("file %q could not be written: %v", e.Path, e.Err)
}

// Unwrap exposes both the sentinel and the underlying error.
func (e *IOError) Unwrap() []error {
	return []error{ErrWrite, e.Err}
}

// LineSeparator returns the platform line separator.
func LineSeparator() string {
	if runtime.GOOS == "windows" {
		return "\r\n"
	}
	return "\n"
}

// WriteLines writes one line per record to path, each followed by the
// platform line separator. Nothing is written when path is empty or lines
// is empty. The file is replaced atomically (same-directory temp + rename).
func WriteLines(ctx context.Context, path string, lines []string) error {
	if path == "" || len(lines) == 0 {
		return nil
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	if err := writeAtomic(path, lines); err != nil {
		return &IOError{Path: path, Err: err}
	}
	return nil
}

func writeAtomic(path string, lines []string) (err error) {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmpName)
		}
	}()

	sep := LineSeparator()
	bw := bufio.NewWriterSize(tmp, 64*1024)
	for _, line := range lines {
		if _, err = bw.WriteString(line); err != nil {
			return err
		}
		if _, err = bw.WriteString(sep); err != nil {
			return err
		}
	}
	if err = bw.Flush(); err != nil {
		return err
	}
	if err = tmp.Sync(); err != nil {
		return err
	}
	if err = tmp.Close(); err != nil {
		return err
	}
	if err = os.Chmod(tmpName, 0o644); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}
