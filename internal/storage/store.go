package storage

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/localnerve/recipedb/internal/types"
)

// MaxFileSize caps uploaded image size at 10 MiB
const MaxFileSize = 10 << 20

// allowedMimeTypes maps accepted image types to the stored extension
var allowedMimeTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// FileInfo describes a stored file
type FileInfo struct {
	Filename string
	Path     string
	Size     int64
}

// Store is a disk-backed image file store. It only writes and removes
// files; serving bytes is a static file layer's job.
type Store struct {
	dir string
}

// NewStore creates the upload directory if needed
func NewStore(dir string) (*Store, error) {
	if dir == "" {
		return nil, fmt.Errorf("upload directory is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory %s: %w", dir, err)
	}
	return &Store{dir: dir}, nil
}

// Dir returns the upload directory root
func (s *Store) Dir() string {
	return s.dir
}

// Save writes the data under a generated uuid filename; the stored
// name never derives from user input.
func (s *Store) Save(mimeType string, data []byte) (FileInfo, error) {
	ext, ok := allowedMimeTypes[mimeType]
	if !ok {
		return FileInfo{}, &types.ValidationError{Field: "image", Msg: fmt.Sprintf("unsupported image type %q", mimeType)}
	}
	if len(data) == 0 {
		return FileInfo{}, &types.ValidationError{Field: "image", Msg: "empty image upload"}
	}
	if len(data) > MaxFileSize {
		return FileInfo{}, &types.ValidationError{Field: "image", Msg: "image exceeds the maximum allowed size"}
	}

	filename := uuid.New().String() + ext
	path := filepath.Join(s.dir, filename)

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return FileInfo{}, fmt.Errorf("failed to write image file %s: %w", path, err)
	}

	return FileInfo{
		Filename: filename,
		Path:     path,
		Size:     int64(len(data)),
	}, nil
}

// Remove deletes a stored file. A missing file is not an error.
func (s *Store) Remove(path string) error {
	if path == "" {
		return nil
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}
