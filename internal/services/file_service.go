package services

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

var (
	ErrFileType     = errors.New("file type not allowed")
	ErrFileTooLarge = errors.New("file exceeds the maximum allowed size")
)

// allowedExtensions is the attachment allow-list: images and plain documents.
var allowedExtensions = map[string]bool{
	".jpg": true, ".jpeg": true, ".png": true, ".gif": true,
	".pdf": true, ".doc": true, ".docx": true, ".txt": true,
}

// FileStore writes complaint attachments to local disk and hands back the
// /uploads/... reference consumed by the validation engine. Stored names are
// freshly generated; nothing of the client-supplied filename survives except
// its extension.
type FileStore struct {
	dir     string
	maxSize int64
}

func NewFileStore(dir string, maxSize int64) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory: %w", err)
	}
	return &FileStore{dir: dir, maxSize: maxSize}, nil
}

// Save validates and persists one uploaded file, returning its reference.
func (fs *FileStore) Save(fh *multipart.FileHeader) (string, error) {
	ext := strings.ToLower(filepath.Ext(fh.Filename))
	if !allowedExtensions[ext] {
		return "", ErrFileType
	}
	if fh.Size > fs.maxSize {
		return "", ErrFileTooLarge
	}

	src, err := fh.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open upload: %w", err)
	}
	defer src.Close()

	name := uuid.NewString() + ext
	dst, err := os.Create(filepath.Join(fs.dir, name))
	if err != nil {
		return "", fmt.Errorf("failed to create stored file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		os.Remove(dst.Name())
		return "", fmt.Errorf("failed to write stored file: %w", err)
	}

	return "/uploads/" + name, nil
}

// Remove deletes a stored file by its /uploads/... reference. Used to clean
// up attachments when the accompanying submission is rejected.
func (fs *FileStore) Remove(ref string) {
	name := strings.TrimPrefix(ref, "/uploads/")
	if name == ref || strings.Contains(name, "/") {
		return
	}
	os.Remove(filepath.Join(fs.dir, name))
}

// Dir returns the root directory served under /uploads.
func (fs *FileStore) Dir() string {
	return fs.dir
}
