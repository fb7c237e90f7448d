package enum

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/bodgit/sevenzip"
)

// ArchiveMember is one text document found inside a backup bundle.
type ArchiveMember struct {
	Name    string // path within the archive
	Content []byte
}

// IsArchive reports whether path names a supported backup bundle.
func IsArchive(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".zip", ".7z":
		return true
	}
	return false
}

// ExtractArchive returns the text members of a .zip or .7z bundle.
// Directories, binary members and members larger than maxSize (when
// positive) are skipped.
func ExtractArchive(path string, content []byte, maxSize int64) ([]ArchiveMember, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".zip":
		return extractZip(path, content, maxSize)
	case ".7z":
		return extract7z(path, content, maxSize)
	default:
		return nil, fmt.Errorf("unsupported archive type: %s", ext)
	}
}

func extractZip(path string, content []byte, maxSize int64) ([]ArchiveMember, error) {
	zr, err := zip.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return nil, fmt.Errorf("failed to open %s as zip: %w", path, err)
	}

	var members []ArchiveMember
	for _, f := range zr.File {
		if f.FileInfo().IsDir() || tooLarge(int64(f.UncompressedSize64), maxSize) {
			continue
		}
		data, err := readMember(f.Open)
		if err != nil {
			return nil, fmt.Errorf("%s: %s: %w", path, f.Name, err)
		}
		if isBinary(data) {
			continue
		}
		members = append(members, ArchiveMember{Name: f.Name, Content: data})
	}
	return members, nil
}

func extract7z(path string, content []byte, maxSize int64) ([]ArchiveMember, error) {
	sr, err := sevenzip.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return nil, fmt.Errorf("failed to open %s as 7z: %w", path, err)
	}

	var members []ArchiveMember
	for _, f := range sr.File {
		info := f.FileInfo()
		if info.IsDir() || tooLarge(info.Size(), maxSize) {
			continue
		}
		data, err := readMember(f.Open)
		if err != nil {
			return nil, fmt.Errorf("%s: %s: %w", path, f.Name, err)
		}
		if isBinary(data) {
			continue
		}
		members = append(members, ArchiveMember{Name: f.Name, Content: data})
	}
	return members, nil
}

func readMember(open func() (io.ReadCloser, error)) ([]byte, error) {
	rc, err := open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}

func tooLarge(size, maxSize int64) bool {
	return maxSize > 0 && size > maxSize
}
