package catalog

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/edw-crtn/AgentAI/storage"
)

// snapshot is the persisted form of an embedded catalog. It is only reused
// when its entries match the freshly loaded catalog exactly, so a changed
// catalog invalidates the snapshot implicitly.
type snapshot struct {
	Entries []snapshotEntry `json:"entries"`
}

type snapshotEntry struct {
	Name           string    `json:"name"`
	EmissionFactor float64   `json:"cf_kg_per_kg"`
	Vector         []float64 `json:"vector"`
}

// restoreSnapshot returns the stored vectors when the snapshot matches the
// given entries. Any load or decode problem is a cache miss, never a failure.
func (ix *Index) restoreSnapshot(ctx context.Context, snap storage.SnapshotState, entries []Entry) ([][]float64, bool) {
	if snap == nil {
		return nil, false
	}

	data, err := snap.Load(ctx)
	if err != nil {
		if !storage.IsNotFound(err) {
			slog.Warn("CATALOG: Failed to load snapshot, recomputing embeddings", "error", err)
		}
		return nil, false
	}

	var s snapshot
	if err := json.Unmarshal(data, &s); err != nil {
		slog.Warn("CATALOG: Corrupt snapshot, recomputing embeddings", "error", err)
		return nil, false
	}

	if len(s.Entries) != len(entries) {
		return nil, false
	}
	vectors := make([][]float64, len(entries))
	for i, se := range s.Entries {
		if se.Name != entries[i].Name || se.EmissionFactor != entries[i].EmissionFactor || len(se.Vector) == 0 {
			return nil, false
		}
		vectors[i] = se.Vector
	}

	return vectors, true
}

// saveSnapshot persists the built index. Failures are logged and ignored; the
// index stays usable without a snapshot.
func (ix *Index) saveSnapshot(ctx context.Context, snap storage.SnapshotState) {
	if snap == nil {
		return
	}

	s := snapshot{Entries: make([]snapshotEntry, len(ix.entries))}
	for i, e := range ix.entries {
		s.Entries[i] = snapshotEntry{
			Name:           e.Name,
			EmissionFactor: e.EmissionFactor,
			Vector:         ix.vectors[i],
		}
	}

	data, err := json.Marshal(s)
	if err != nil {
		slog.Warn("CATALOG: Failed to marshal snapshot", "error", err)
		return
	}
	if err := snap.Save(ctx, data); err != nil {
		slog.Warn("CATALOG: Failed to save snapshot", "error", err)
	}
}
