package storage

import (
	"context"
	"os"
	"path/filepath"
)

type FileCatalogState struct {
	FilePath string
}

func NewFileCatalogState(filePath string) *FileCatalogState {
	return &FileCatalogState{FilePath: filePath}
}

func (s *FileCatalogState) Load(ctx context.Context) ([]byte, error) {
	return os.ReadFile(s.FilePath)
}

type FileSnapshotState struct {
	FilePath string
}

func NewFileSnapshotState(filePath string) *FileSnapshotState {
	return &FileSnapshotState{FilePath: filePath}
}

func (s *FileSnapshotState) Load(ctx context.Context) ([]byte, error) {
	return os.ReadFile(s.FilePath)
}

func (s *FileSnapshotState) Save(ctx context.Context, data []byte) error {
	if dir := filepath.Dir(s.FilePath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return os.WriteFile(s.FilePath, data, 0o644)
}
