package store

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"ipmon/internal/types"

	"go.uber.org/zap"
)

// FileStore keeps the IP in a single text file, overwritten wholesale
type FileStore struct {
	path   string
	logger *zap.Logger
}

// NewFileStore creates a file store at path
func NewFileStore(path string, logger *zap.Logger) *FileStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FileStore{path: path, logger: logger}
}

// Path returns the backing file path
func (s *FileStore) Path() string {
	return s.path
}

// Load reads the saved IP. A missing or blank file is reported as types.ErrIPNotFound.
func (s *FileStore) Load(_ context.Context) (string, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", types.ErrIPNotFound
		}
		return "", fmt.Errorf("failed to read %s: %w", s.path, err)
	}

	ip := strings.TrimSpace(string(data))
	if ip == "" {
		return "", types.ErrIPNotFound
	}
	return ip, nil
}

// Save overwrites the file with ip
func (s *FileStore) Save(_ context.Context, ip string) error {
	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	if err := os.WriteFile(s.path, []byte(ip), 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", s.path, err)
	}
	s.logger.Debug("Saved public IP", zap.String("file", s.path), zap.String("ip", ip))
	return nil
}

// Close is a no-op for the file store
func (s *FileStore) Close() error {
	return nil
}
