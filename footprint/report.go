package footprint

import (
	"context"
	"encoding/json"
	"strings"
)

// PayloadItem is one raw item from the meal payload. mass_ml is a legacy
// compatibility key: when mass_g is absent or zero, milliliters are treated as
// grams (density 1 g/ml).
type PayloadItem struct {
	Name   string  `json:"name"`
	MassG  float64 `json:"mass_g"`
	MassML float64 `json:"mass_ml"`
}

// EffectiveMassG applies the documented ml-as-g unit normalization.
func (it PayloadItem) EffectiveMassG() float64 {
	if it.MassG <= 0 && it.MassML > 0 {
		return it.MassML
	}
	return it.MassG
}

// MealPayload is the wire payload of the meal footprint tool.
type MealPayload struct {
	MealLabel string        `json:"meal_label"`
	Items     []PayloadItem `json:"items"`
}

// MealReport is the per-meal footprint summary. TotalTrustedEmissions sums
// emissions over database-sourced items only; unknown items contribute zero
// regardless of their mass.
type MealReport struct {
	MealLabel             string        `json:"meal_label"`
	Items                 []MatchResult `json:"items"`
	TotalTrustedEmissions float64       `json:"total_emissions_kg_co2_database_only"`
	HasUnknownItems       bool          `json:"has_unknown_items"`
	Notes                 string        `json:"notes"`
}

// unknownItemsNote tells the model how to treat unresolved items.
const unknownItemsNote = "Some items could not be confidently matched to the database " +
	"and are marked with source='unknown'. The model may approximate their CO2 " +
	"using its own knowledge but should clearly explain this to the user."

// Aggregator validates meal payloads and computes their footprint reports.
type Aggregator struct {
	matcher *Matcher
}

func NewAggregator(matcher *Matcher) *Aggregator {
	return &Aggregator{matcher: matcher}
}

// Compute matches every valid item of the payload independently and aggregates
// the report. Items with an empty name or non-positive effective mass are
// dropped before any catalog lookup.
func (a *Aggregator) Compute(ctx context.Context, payload MealPayload) MealReport {
	label := payload.MealLabel
	if label == "" {
		label = "meal"
	}

	report := MealReport{
		MealLabel: label,
		Items:     make([]MatchResult, 0, len(payload.Items)),
	}

	for _, item := range payload.Items {
		name := strings.TrimSpace(item.Name)
		massG := item.EffectiveMassG()
		if name == "" || massG <= 0 {
			continue
		}

		result := a.matcher.Match(ctx, FoodItem{Name: name, MassG: massG})
		report.Items = append(report.Items, result)

		if result.Source == SourceDatabase && result.EmissionsKgCO2 != nil {
			report.TotalTrustedEmissions += *result.EmissionsKgCO2
		} else {
			report.HasUnknownItems = true
		}
	}

	if report.HasUnknownItems {
		report.Notes = unknownItemsNote
	}

	return report
}

// ComputeFromJSON parses and validates a raw payload and returns the report as
// a generic map, or a structured error map for malformed input. It never
// returns a Go error: the result always serializes into a well-formed tool
// reply.
func (a *Aggregator) ComputeFromJSON(ctx context.Context, raw []byte) map[string]any {
	var probe map[string]json.RawMessage
	if err := json.Unmarshal(raw, &probe); err != nil {
		return map[string]any{
			"error":       "Invalid JSON payload: " + err.Error(),
			"raw_payload": string(raw),
		}
	}

	if itemsRaw, ok := probe["items"]; ok {
		var items []json.RawMessage
		if err := json.Unmarshal(itemsRaw, &items); err != nil {
			return map[string]any{
				"error":       "Expected 'items' to be a list.",
				"raw_payload": string(raw),
			}
		}
	}

	var payload MealPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return map[string]any{
			"error":       "Invalid meal payload: " + err.Error(),
			"raw_payload": string(raw),
		}
	}

	report := a.Compute(ctx, payload)

	// Round-trip through JSON to keep tool outputs uniformly map-shaped.
	data, err := json.Marshal(report)
	if err != nil {
		return map[string]any{"error": "Failed to encode meal report: " + err.Error()}
	}
	var out map[string]any
	if err := json.Unmarshal(data, &out); err != nil {
		return map[string]any{"error": "Failed to encode meal report: " + err.Error()}
	}
	return out
}
