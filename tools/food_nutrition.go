package tools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/jsonschema"

	"github.com/edw-crtn/AgentAI/nutrition"
)

type FoodNutrition struct{ client *nutrition.Client }

func NewFoodNutrition(client *nutrition.Client) *FoodNutrition {
	return &FoodNutrition{client: client}
}

func (t *FoodNutrition) Name() string { return "get_food_nutrition" }

func (t *FoodNutrition) Description() string {
	return "Looks up nutrition facts per 100 g for a single food by name in the USDA FoodData Central database. Returns found=false with a note when nothing usable matches."
}

func (t *FoodNutrition) InputSchema() *jsonschema.Schema {
	return &jsonschema.Schema{
		Type: "object",
		Properties: map[string]*jsonschema.Schema{
			"food_name": {
				Type:        "string",
				Description: "Plain food name, e.g. \"cheddar cheese\".",
			},
		},
		Required: []string{"food_name"},
	}
}

func (t *FoodNutrition) Run(ctx context.Context, input map[string]any) (map[string]any, error) {
	name, _ := input["food_name"].(string)
	result := t.client.Lookup(ctx, name)

	b, err := json.Marshal(result)
	if err != nil {
		return nil, fmt.Errorf("encode nutrition result: %w", err)
	}
	var m map[string]any
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, fmt.Errorf("decode nutrition result: %w", err)
	}
	return m, nil
}
