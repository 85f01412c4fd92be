package catalog

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"sync"

	"go.opentelemetry.io/otel"

	agentai "github.com/edw-crtn/AgentAI"
	"github.com/edw-crtn/AgentAI/storage"
)

// embedBatchSize bounds each embedding request, matching the provider's batch
// limits.
const embedBatchSize = 64

// Embedder computes one vector per input text. Vectors are expected to be
// comparable under cosine distance; the index normalizes them, so
// distance = 1 - cos lies in [0, 2] and similarity = 1 - distance/2 holds.
// Switching to a provider with a different metric requires re-deriving the
// matching threshold.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float64, error)
}

// Hit is one nearest-neighbor result: an entry and its cosine distance to the
// query, in [0, 2], smaller is closer.
type Hit struct {
	Entry    Entry
	Distance float64
}

// Index is the nearest-neighbor search structure over catalog name embeddings.
// Build must complete before Query; afterwards the index is immutable.
type Index struct {
	embedder Embedder

	mu      sync.Mutex // guards Build against duplicate concurrent initialization
	ready   bool
	entries []Entry
	vectors [][]float64 // unit-normalized, parallel to entries
}

func NewIndex(embedder Embedder) *Index {
	return &Index{embedder: embedder}
}

// Build loads the catalog, then either restores embedding vectors from the
// snapshot or computes them and saves a new snapshot. Calling Build again on a
// ready index is a no-op, making it idempotent for identical input.
func (ix *Index) Build(ctx context.Context, cat storage.CatalogState, snap storage.SnapshotState) error {
	ctx, span := otel.Tracer(agentai.TracerNameCatalog).Start(ctx, "Index.Build")
	defer span.End()

	ix.mu.Lock()
	defer ix.mu.Unlock()

	if ix.ready {
		return nil
	}

	data, err := cat.Load(ctx)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrCatalogUnavailable, err)
	}

	entries, err := ParseCatalog(data)
	if err != nil {
		return err
	}

	if vectors, ok := ix.restoreSnapshot(ctx, snap, entries); ok {
		slog.Info("CATALOG: Restored index from snapshot", "entries", len(entries))
		ix.entries = entries
		ix.vectors = vectors
		ix.ready = true
		return nil
	}

	vectors, err := ix.embedAll(ctx, entries)
	if err != nil {
		return fmt.Errorf("failed to embed catalog: %w", err)
	}

	ix.entries = entries
	ix.vectors = vectors
	ix.ready = true

	ix.saveSnapshot(ctx, snap)
	slog.Info("CATALOG: Index built", "entries", len(entries))
	return nil
}

// Len returns the number of indexed entries, or 0 before Build.
func (ix *Index) Len() int {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	return len(ix.entries)
}

// Query returns the k nearest entries to text by cosine distance, ascending.
// An empty index returns an empty slice.
func (ix *Index) Query(ctx context.Context, text string, k int) ([]Hit, error) {
	ctx, span := otel.Tracer(agentai.TracerNameCatalog).Start(ctx, "Index.Query")
	defer span.End()

	ix.mu.Lock()
	if !ix.ready {
		ix.mu.Unlock()
		return nil, ErrIndexNotReady
	}
	entries, vectors := ix.entries, ix.vectors
	ix.mu.Unlock()

	if len(entries) == 0 || k <= 0 {
		return []Hit{}, nil
	}

	embedded, err := ix.embedder.Embed(ctx, []string{text})
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}
	if len(embedded) != 1 {
		return nil, fmt.Errorf("embedder returned %d vectors for one query", len(embedded))
	}
	query := normalize(embedded[0])

	hits := make([]Hit, 0, len(entries))
	for i, entry := range entries {
		hits = append(hits, Hit{Entry: entry, Distance: cosineDistance(query, vectors[i])})
	}
	sort.Slice(hits, func(a, b int) bool { return hits[a].Distance < hits[b].Distance })

	if k > len(hits) {
		k = len(hits)
	}
	return hits[:k], nil
}

func (ix *Index) embedAll(ctx context.Context, entries []Entry) ([][]float64, error) {
	vectors := make([][]float64, 0, len(entries))

	for start := 0; start < len(entries); start += embedBatchSize {
		end := start + embedBatchSize
		if end > len(entries) {
			end = len(entries)
		}

		names := make([]string, 0, end-start)
		for _, e := range entries[start:end] {
			names = append(names, e.Name)
		}

		batch, err := ix.embedder.Embed(ctx, names)
		if err != nil {
			return nil, err
		}
		if len(batch) != len(names) {
			return nil, fmt.Errorf("embedder returned %d vectors for %d names", len(batch), len(names))
		}

		for _, v := range batch {
			vectors = append(vectors, normalize(v))
		}
	}

	return vectors, nil
}

func normalize(v []float64) []float64 {
	var sum float64
	for _, x := range v {
		sum += x * x
	}
	norm := math.Sqrt(sum)
	if norm == 0 {
		return v
	}

	out := make([]float64, len(v))
	for i, x := range v {
		out[i] = x / norm
	}
	return out
}

// cosineDistance assumes both vectors are unit-normalized.
func cosineDistance(a, b []float64) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var dot float64
	for i := 0; i < n; i++ {
		dot += a[i] * b[i]
	}
	return 1 - dot
}
