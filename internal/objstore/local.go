package objstore

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
)

// LocalStore implements Store over a local directory tree. Paths are
// bucket-relative, e.g. "bills/<company>/<bill>.jpg".
type LocalStore struct {
	baseDir string
	logger  *zap.Logger
}

// NewLocalStore creates a store rooted at baseDir
func NewLocalStore(baseDir string, logger *zap.Logger) *LocalStore {
	return &LocalStore{
		baseDir: baseDir,
		logger:  logger,
	}
}

// Fetch reads an object from disk
func (s *LocalStore) Fetch(ctx context.Context, path string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	full, err := s.resolve(path)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(full)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		s.logger.Error("Failed to read object",
			zap.String("path", path),
			zap.Error(err))
		return nil, fmt.Errorf("failed to read object %s: %w", path, err)
	}

	s.logger.Debug("Object fetched",
		zap.String("path", path),
		zap.Int("size_bytes", len(data)))
	return data, nil
}

// resolve joins the path under baseDir and rejects traversal outside it
func (s *LocalStore) resolve(path string) (string, error) {
	if strings.Contains(path, "..") {
		return "", fmt.Errorf("path traversal not allowed: %s", path)
	}

	full := filepath.Join(s.baseDir, filepath.FromSlash(path))

	absBase, err := filepath.Abs(s.baseDir)
	if err != nil {
		return "", fmt.Errorf("failed to resolve base directory: %w", err)
	}
	absFull, err := filepath.Abs(full)
	if err != nil {
		return "", fmt.Errorf("failed to resolve path: %w", err)
	}
	if !strings.HasPrefix(absFull, absBase+string(filepath.Separator)) {
		return "", fmt.Errorf("path outside storage root: %s", path)
	}

	return full, nil
}
