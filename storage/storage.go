package storage

import (
	"context"
	"errors"
	"io/fs"
)

// CatalogState is a read-once source of the raw food catalog bytes.
type CatalogState interface {
	Load(ctx context.Context) ([]byte, error)
}

// SnapshotState persists the embedded catalog index so that embeddings are not
// recomputed on every startup.
type SnapshotState interface {
	Load(ctx context.Context) ([]byte, error)
	Save(ctx context.Context, data []byte) error
}

// ErrSnapshotNotFound reports that no snapshot has been saved yet. Callers
// treat it as a cache miss, not a failure.
var ErrSnapshotNotFound = errors.New("snapshot not found")

// IsNotFound reports whether err means the object does not exist yet.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrSnapshotNotFound) || errors.Is(err, fs.ErrNotExist)
}

// TestCatalogState is a simple in-memory implementation for testing.
type TestCatalogState struct {
	data []byte
	err  error
}

func NewTestCatalogState(data []byte) *TestCatalogState {
	return &TestCatalogState{data: data}
}

func NewTestCatalogStateWithError() *TestCatalogState {
	return &TestCatalogState{err: errors.New("not found")}
}

func (t *TestCatalogState) Load(ctx context.Context) ([]byte, error) {
	if t.err != nil {
		return nil, t.err
	}
	return t.data, nil
}

// TestSnapshotState is a simple in-memory implementation for testing.
type TestSnapshotState struct {
	data  []byte
	saves int
}

func NewTestSnapshotState(data []byte) *TestSnapshotState {
	return &TestSnapshotState{data: data}
}

func (t *TestSnapshotState) Load(ctx context.Context) ([]byte, error) {
	if t.data == nil {
		return nil, ErrSnapshotNotFound
	}
	return t.data, nil
}

func (t *TestSnapshotState) Save(ctx context.Context, data []byte) error {
	t.data = data
	t.saves++
	return nil
}

// Saves returns how many times Save has been called.
func (t *TestSnapshotState) Saves() int { return t.saves }
