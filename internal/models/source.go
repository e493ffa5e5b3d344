package models

import (
	"fmt"
	"io"
	"mime"
	"os"
	"path/filepath"
)

// FileSource is an opaque handle to the bytes of a candidate upload file.
// Implementations must support repeated Open calls; each returned reader
// is independent and owned by the caller.
type FileSource interface {
	// Name returns the display file name (no directory components).
	Name() string
	// Size returns the file size in bytes.
	Size() int64
	// ContentType returns the declared MIME type, or
	// "application/octet-stream" when unknown.
	ContentType() string
	// Open returns a fresh reader over the file contents.
	Open() (io.ReadCloser, error)
}

// LocalFile is a FileSource backed by a file on disk.
type LocalFile struct {
	path        string
	name        string
	size        int64
	contentType string
}

// NewLocalFile stats path and returns a FileSource for it.
// Directories are rejected; uploads are per-file only.
func NewLocalFile(path string) (*LocalFile, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to get absolute path for %s: %w", path, err)
	}

	info, err := os.Stat(abs)
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("file not found: %s", path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to stat %s: %w", path, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("'%s' is a directory, not a file", path)
	}

	contentType := mime.TypeByExtension(filepath.Ext(abs))
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	return &LocalFile{
		path:        abs,
		name:        filepath.Base(abs),
		size:        info.Size(),
		contentType: contentType,
	}, nil
}

// Path returns the absolute local path.
func (f *LocalFile) Path() string { return f.path }

func (f *LocalFile) Name() string { return f.name }

func (f *LocalFile) Size() int64 { return f.size }

func (f *LocalFile) ContentType() string { return f.contentType }

func (f *LocalFile) Open() (io.ReadCloser, error) {
	return os.Open(f.path)
}

// SizeMB returns a size in mebibytes for display.
func SizeMB(sizeBytes int64) float64 {
	return float64(sizeBytes) / (1024 * 1024)
}
