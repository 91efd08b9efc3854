package storage

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// ErrInvalidPath is returned for paths that escape the storage root.
var ErrInvalidPath = errors.New("invalid storage path")

// LocalStorage handles file storage on the local filesystem
type LocalStorage struct {
	basePath string
}

// NewLocalStorage creates a new local storage instance
func NewLocalStorage(basePath string) (*LocalStorage, error) {
	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}
	return &LocalStorage{basePath: basePath}, nil
}

// SaveBytes writes data under subDir/YYYY/MM with a random name that keeps
// ext, and returns the path relative to the storage root.
func (s *LocalStorage) SaveBytes(data []byte, ext, subDir string) (string, error) {
	dir := filepath.Join(s.basePath, subDir, time.Now().Format("2006/01"))
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create directory: %w", err)
	}

	filePath := filepath.Join(dir, generateID()+ext)
	if err := os.WriteFile(filePath, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write file: %w", err)
	}

	relPath, err := filepath.Rel(s.basePath, filePath)
	if err != nil {
		return "", err
	}
	return filepath.ToSlash(relPath), nil
}

// Open returns a stored file for reading
func (s *LocalStorage) Open(relativePath string) (*os.File, error) {
	full, err := s.resolve(relativePath)
	if err != nil {
		return nil, err
	}
	return os.Open(full)
}

// Delete removes a file. Missing files are not an error.
func (s *LocalStorage) Delete(relativePath string) error {
	full, err := s.resolve(relativePath)
	if err != nil {
		return err
	}
	if err := os.Remove(full); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

// Exists checks if a file exists
func (s *LocalStorage) Exists(relativePath string) bool {
	full, err := s.resolve(relativePath)
	if err != nil {
		return false
	}
	_, err = os.Stat(full)
	return err == nil
}

// FullPath returns the absolute path for serving files
func (s *LocalStorage) FullPath(relativePath string) (string, error) {
	return s.resolve(relativePath)
}

func (s *LocalStorage) resolve(relativePath string) (string, error) {
	clean := filepath.Clean(filepath.FromSlash(relativePath))
	if clean == "." || filepath.IsAbs(clean) || strings.HasPrefix(clean, "..") {
		return "", ErrInvalidPath
	}
	return filepath.Join(s.basePath, clean), nil
}

func generateID() string {
	bytes := make([]byte, 16)
	_, _ = rand.Read(bytes)
	return hex.EncodeToString(bytes)
}

var receiptContentTypes = map[string]bool{
	"image/jpeg": true,
	"image/jpg":  true,
	"image/png":  true,
	"image/gif":  true,
}

// IsReceiptContentType reports whether a receipt upload of this MIME type
// is accepted.
func IsReceiptContentType(contentType string) bool {
	return receiptContentTypes[strings.ToLower(contentType)]
}
