// Package footprint maps free-text food descriptions onto the emission catalog
// and aggregates per-meal carbon footprints.
package footprint

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/edw-crtn/AgentAI/catalog"
)

// Match sources. A result is "database" only when a catalog neighbor cleared
// the similarity threshold; everything else is "unknown" and carries no
// emissions so downstream consumers never silently trust a weak guess.
const (
	SourceDatabase = "database"
	SourceUnknown  = "unknown"
)

// DefaultSimilarityThreshold is the minimum normalized similarity for a
// catalog match to be trusted.
const DefaultSimilarityThreshold = 0.60

// FoodItem is one food to match: a free-text name and a mass in grams.
type FoodItem struct {
	Name  string  `json:"name"`
	MassG float64 `json:"mass_g"`
}

// MatchResult is the outcome of matching one FoodItem against the catalog.
// Pointer fields are nil for unknown results.
type MatchResult struct {
	InputName       string   `json:"input_name"`
	MatchedItem     *string  `json:"matched_item"`
	MassG           float64  `json:"mass_g"`
	Source          string   `json:"source"`
	SimilarityScore *float64 `json:"similarity_score"`
	EmissionFactor  *float64 `json:"cf_kg_per_kg"`
	EmissionsKgCO2  *float64 `json:"emissions_kg_co2"`
	Notes           string   `json:"notes,omitempty"`
}

// index is the slice of the catalog the matcher needs.
type index interface {
	Query(ctx context.Context, text string, k int) ([]catalog.Hit, error)
}

// Matcher resolves food items to catalog entries by nearest-neighbor lookup
// with a confidence threshold.
type Matcher struct {
	index     index
	threshold float64
}

func NewMatcher(ix index, threshold float64) *Matcher {
	if threshold <= 0 {
		threshold = DefaultSimilarityThreshold
	}
	return &Matcher{index: ix, threshold: threshold}
}

// Match resolves a single item. It never returns an error: a failed lookup
// becomes an unknown result carrying the failure text in Notes, so one bad
// item cannot abort a whole meal.
func (m *Matcher) Match(ctx context.Context, item FoodItem) MatchResult {
	result := MatchResult{
		InputName: item.Name,
		MassG:     item.MassG,
		Source:    SourceUnknown,
	}

	if item.Name == "" || item.MassG <= 0 {
		result.Notes = "Empty name or non-positive mass."
		return result
	}

	hits, err := m.index.Query(ctx, item.Name, 1)
	if err != nil {
		slog.Warn("MATCH: Catalog lookup failed", "item", item.Name, "error", err)
		result.Notes = fmt.Sprintf("Error during lookup: %v", err)
		return result
	}
	if len(hits) == 0 {
		result.Notes = "No matches found in database."
		return result
	}

	hit := hits[0]
	similarity := 1 - hit.Distance/2
	result.SimilarityScore = &similarity

	if similarity < m.threshold {
		result.Notes = "Best match is not similar enough in the embedding space; " +
			"marked as unknown so the model may approximate from its own knowledge."
		return result
	}

	factor := hit.Entry.EmissionFactor
	emissions := factor * item.MassG / 1000.0
	matched := hit.Entry.Name

	result.MatchedItem = &matched
	result.EmissionFactor = &factor
	result.EmissionsKgCO2 = &emissions
	result.Source = SourceDatabase
	return result
}
