package storage_test

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/localnerve/recipedb/internal/storage"
	"github.com/localnerve/recipedb/internal/types"
)

// TestSave tests writing an accepted image type
func TestSave(t *testing.T) {
	store, err := storage.NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}

	data := []byte{0xFF, 0xD8, 0xFF, 0xE0, 0x00, 0x10}
	info, err := store.Save("image/jpeg", data)
	if err != nil {
		t.Fatalf("Failed to save image: %v", err)
	}

	if !strings.HasSuffix(info.Filename, ".jpg") {
		t.Errorf("Expected .jpg extension, got %q", info.Filename)
	}
	if info.Size != int64(len(data)) {
		t.Errorf("Expected size %d, got %d", len(data), info.Size)
	}

	stat, err := os.Stat(info.Path)
	if err != nil {
		t.Fatalf("Stored file missing: %v", err)
	}
	if stat.Size() != int64(len(data)) {
		t.Errorf("Expected %d bytes on disk, got %d", len(data), stat.Size())
	}

	// Stored names are generated, never derived from input
	second, err := store.Save("image/png", data)
	if err != nil {
		t.Fatalf("Failed to save second image: %v", err)
	}
	if second.Filename == info.Filename {
		t.Error("Expected unique filenames per save")
	}
}

// TestSaveRejections tests the validation gates ahead of any disk write
func TestSaveRejections(t *testing.T) {
	dir := t.TempDir()
	store, err := storage.NewStore(dir)
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}

	var validationErr *types.ValidationError

	_, err = store.Save("application/pdf", []byte("data"))
	if !errors.As(err, &validationErr) {
		t.Errorf("Expected ValidationError for unsupported type, got %v", err)
	}

	_, err = store.Save("image/jpeg", nil)
	if !errors.As(err, &validationErr) {
		t.Errorf("Expected ValidationError for empty data, got %v", err)
	}

	_, err = store.Save("image/jpeg", make([]byte, storage.MaxFileSize+1))
	if !errors.As(err, &validationErr) {
		t.Errorf("Expected ValidationError for oversize data, got %v", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("Failed to read dir: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("Expected no files written on rejection, got %d", len(entries))
	}
}

// TestRemove tests removal, including of files already gone
func TestRemove(t *testing.T) {
	store, err := storage.NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}

	info, err := store.Save("image/gif", []byte("GIF89a"))
	if err != nil {
		t.Fatalf("Failed to save image: %v", err)
	}

	if err := store.Remove(info.Path); err != nil {
		t.Fatalf("Failed to remove file: %v", err)
	}
	if _, err := os.Stat(info.Path); !os.IsNotExist(err) {
		t.Error("Expected file removed from disk")
	}

	// A second remove is a no-op, as is an empty path
	if err := store.Remove(info.Path); err != nil {
		t.Errorf("Expected nil for missing file, got %v", err)
	}
	if err := store.Remove(""); err != nil {
		t.Errorf("Expected nil for empty path, got %v", err)
	}
}

// TestNewStore tests directory creation
func TestNewStore(t *testing.T) {
	if _, err := storage.NewStore(""); err == nil {
		t.Error("Expected error for empty directory")
	}

	nested := filepath.Join(t.TempDir(), "a", "b", "uploads")
	store, err := storage.NewStore(nested)
	if err != nil {
		t.Fatalf("Failed to create nested store: %v", err)
	}
	if store.Dir() != nested {
		t.Errorf("Expected dir %q, got %q", nested, store.Dir())
	}
	if stat, err := os.Stat(nested); err != nil || !stat.IsDir() {
		t.Error("Expected upload directory created")
	}
}
