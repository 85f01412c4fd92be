package tools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/jsonschema"

	"github.com/edw-crtn/AgentAI/footprint"
)

type MealFootprint struct{ aggregator *footprint.Aggregator }

func NewMealFootprint(aggregator *footprint.Aggregator) *MealFootprint {
	return &MealFootprint{aggregator: aggregator}
}

func (t *MealFootprint) Name() string { return "compute_meal_footprint" }

func (t *MealFootprint) Description() string {
	return "Computes the carbon footprint of a meal from its items. Each item needs a name and a mass in grams (mass_g); for liquids a volume in milliliters (mass_ml) is accepted as a rough gram equivalent. Returns per-item emissions where a database match exists and a total over matched items only."
}

func (t *MealFootprint) InputSchema() *jsonschema.Schema {
	minMass := 0.0
	return &jsonschema.Schema{
		Type: "object",
		Properties: map[string]*jsonschema.Schema{
			"meal_label": {
				Type:        "string",
				Description: "Short label for the meal, e.g. \"lunch\".",
			},
			"items": {
				Type: "array",
				Items: &jsonschema.Schema{
					Type: "object",
					Properties: map[string]*jsonschema.Schema{
						"name":    {Type: "string"},
						"mass_g":  {Type: "number", Minimum: &minMass},
						"mass_ml": {Type: "number", Minimum: &minMass},
					},
					Required: []string{"name"},
				},
			},
		},
		Required: []string{"items"},
	}
}

func (t *MealFootprint) Run(ctx context.Context, input map[string]any) (map[string]any, error) {
	payload := payloadArgument(input, "payload")
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode payload: %w", err)
	}
	return t.aggregator.ComputeFromJSON(ctx, raw), nil
}
