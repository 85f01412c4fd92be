package footprint

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edw-crtn/AgentAI/catalog"
)

// fakeIndex returns canned hits per query text.
type fakeIndex struct {
	hits map[string][]catalog.Hit
	err  error
}

func (f *fakeIndex) Query(ctx context.Context, text string, k int) ([]catalog.Hit, error) {
	if f.err != nil {
		return nil, f.err
	}
	hits := f.hits[text]
	if k < len(hits) {
		hits = hits[:k]
	}
	return hits, nil
}

func hit(name string, factor, distance float64) catalog.Hit {
	return catalog.Hit{
		Entry:    catalog.Entry{Name: name, EmissionFactor: factor},
		Distance: distance,
	}
}

func TestMatcher_Match(t *testing.T) {
	ix := &fakeIndex{hits: map[string][]catalog.Hit{
		// distance 0.2 -> similarity 0.9
		"pork sausage": {hit("pork sausage", 5.0, 0.2)},
		// distance 1.2 -> similarity 0.4, below threshold
		"dragonfruit smoothie": {hit("apple", 0.43, 1.2)},
		// exactly at threshold: similarity 0.60 is trusted
		"lentil soup": {hit("lentils", 0.9, 0.8)},
	}}
	m := NewMatcher(ix, 0.60)
	ctx := context.Background()

	t.Run("confident match computes emissions", func(t *testing.T) {
		res := m.Match(ctx, FoodItem{Name: "pork sausage", MassG: 120})
		assert.Equal(t, SourceDatabase, res.Source)
		require.NotNil(t, res.MatchedItem)
		assert.Equal(t, "pork sausage", *res.MatchedItem)
		require.NotNil(t, res.SimilarityScore)
		assert.InDelta(t, 0.9, *res.SimilarityScore, 1e-9)
		require.NotNil(t, res.EmissionsKgCO2)
		assert.InDelta(t, 0.6, *res.EmissionsKgCO2, 1e-9) // 5.0 * 120/1000
	})

	t.Run("below threshold stays unknown", func(t *testing.T) {
		res := m.Match(ctx, FoodItem{Name: "dragonfruit smoothie", MassG: 200})
		assert.Equal(t, SourceUnknown, res.Source)
		assert.Nil(t, res.MatchedItem)
		assert.Nil(t, res.EmissionFactor)
		assert.Nil(t, res.EmissionsKgCO2)
		require.NotNil(t, res.SimilarityScore)
		assert.InDelta(t, 0.4, *res.SimilarityScore, 1e-9)
		assert.Contains(t, res.Notes, "not similar enough")
	})

	t.Run("threshold boundary is inclusive", func(t *testing.T) {
		res := m.Match(ctx, FoodItem{Name: "lentil soup", MassG: 300})
		assert.Equal(t, SourceDatabase, res.Source)
	})

	t.Run("no neighbor", func(t *testing.T) {
		res := m.Match(ctx, FoodItem{Name: "mystery dish", MassG: 100})
		assert.Equal(t, SourceUnknown, res.Source)
		assert.Contains(t, res.Notes, "No matches found")
	})

	t.Run("invalid items rejected before lookup", func(t *testing.T) {
		for _, item := range []FoodItem{
			{Name: "", MassG: 100},
			{Name: "apple", MassG: 0},
			{Name: "apple", MassG: -5},
		} {
			res := m.Match(ctx, item)
			assert.Equal(t, SourceUnknown, res.Source)
			assert.Contains(t, res.Notes, "non-positive mass")
			assert.Nil(t, res.SimilarityScore)
		}
	})
}

func TestMatcher_LookupErrorContained(t *testing.T) {
	m := NewMatcher(&fakeIndex{err: errors.New("index exploded")}, 0.60)

	res := m.Match(context.Background(), FoodItem{Name: "apple", MassG: 100})
	assert.Equal(t, SourceUnknown, res.Source)
	assert.Contains(t, res.Notes, "index exploded")
	assert.Nil(t, res.EmissionsKgCO2)
}

func TestMatcher_Deterministic(t *testing.T) {
	ix := &fakeIndex{hits: map[string][]catalog.Hit{
		"pork sausage": {hit("pork sausage", 5.0, 0.2)},
	}}
	m := NewMatcher(ix, 0)
	ctx := context.Background()

	first := m.Match(ctx, FoodItem{Name: "pork sausage", MassG: 120})
	second := m.Match(ctx, FoodItem{Name: "pork sausage", MassG: 120})
	assert.Equal(t, first, second)
}

func TestMatcher_LowSimilarityNeverDatabase(t *testing.T) {
	// Sweep distances; any similarity under the threshold must stay unknown.
	for distance := 0.0; distance <= 2.0; distance += 0.05 {
		ix := &fakeIndex{hits: map[string][]catalog.Hit{
			"x": {hit("x", 1.0, distance)},
		}}
		m := NewMatcher(ix, 0.60)
		res := m.Match(context.Background(), FoodItem{Name: "x", MassG: 100})

		similarity := 1 - distance/2
		if similarity < 0.60 {
			assert.Equal(t, SourceUnknown, res.Source, "distance %f", distance)
		} else {
			assert.Equal(t, SourceDatabase, res.Source, "distance %f", distance)
		}
	}
}

func TestMatcher_DefaultThreshold(t *testing.T) {
	m := NewMatcher(&fakeIndex{}, 0)
	assert.InDelta(t, DefaultSimilarityThreshold, m.threshold, 1e-9)
}
