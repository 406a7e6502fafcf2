package analysis

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"resumeadvisor/internal/errors"
)

// UploadStore keeps uploaded documents on disk just long enough to extract them.
// Every upload gets its own directory so concurrent uploads with the same
// filename never collide.
type UploadStore struct {
	dir string
}

// NewUploadStore creates a store rooted at dir. An empty dir uses the OS temp directory.
func NewUploadStore(dir string) *UploadStore {
	if dir == "" {
		dir = os.TempDir()
	}
	return &UploadStore{dir: dir}
}

// Dir returns the root directory of the store.
func (u *UploadStore) Dir() string {
	return u.dir
}

// Save writes content to a fresh directory, keeping the base of the client
// filename so the extension still selects the right extractor. The returned
// release func removes the directory and everything in it.
func (u *UploadStore) Save(filename string, content io.Reader) (string, func() error, error) {
	name := filepath.Base(strings.ReplaceAll(filename, `\`, "/"))
	if name == "." || name == "/" || name == "" || name == ".." {
		return "", nil, errors.NewNoFileProvidedError()
	}

	if err := os.MkdirAll(u.dir, 0750); err != nil {
		return "", nil, errors.NewIOError(errors.ErrCodeUploadFailed, "failed to prepare upload directory", err).
			WithContext("dir", u.dir)
	}

	dir, err := os.MkdirTemp(u.dir, "upload-*")
	if err != nil {
		return "", nil, errors.NewIOError(errors.ErrCodeUploadFailed, "failed to create upload directory", err).
			WithContext("dir", u.dir)
	}
	release := func() error { return os.RemoveAll(dir) }

	path := filepath.Join(dir, name)
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_EXCL, 0600)
	if err != nil {
		_ = release()
		return "", nil, errors.NewIOError(errors.ErrCodeUploadFailed, "failed to create upload file", err).
			WithContext("filename", name)
	}

	if _, err := io.Copy(f, content); err != nil {
		_ = f.Close()
		_ = release()
		return "", nil, errors.NewIOError(errors.ErrCodeUploadFailed, "failed to store upload", err).
			WithContext("filename", name)
	}
	if err := f.Close(); err != nil {
		_ = release()
		return "", nil, errors.NewIOError(errors.ErrCodeUploadFailed, "failed to store upload", err).
			WithContext("filename", name)
	}

	return path, release, nil
}
