package tools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/jsonschema"

	"github.com/edw-crtn/AgentAI/health"
)

type MealHealth struct{ classifier health.Classifier }

func NewMealHealth(classifier health.Classifier) *MealHealth {
	return &MealHealth{classifier: classifier}
}

func (t *MealHealth) Name() string { return "evaluate_meal_healthiness" }

func (t *MealHealth) Description() string {
	return "Classifies one meal as healthy or unhealthy from its nutrient totals and explains the verdict. Call this once per conversation, after nutrition facts for the meal are known, as the final analysis step."
}

func (t *MealHealth) InputSchema() *jsonschema.Schema {
	min := 0.0
	num := func(desc string) *jsonschema.Schema {
		return &jsonschema.Schema{Type: "number", Minimum: &min, Description: desc}
	}
	return &jsonschema.Schema{
		Type: "object",
		Properties: map[string]*jsonschema.Schema{
			"meal_label": {Type: "string"},
			"calories":   num("Total energy of the meal in kcal."),
			"protein_g":  num("Protein in grams."),
			"carbs_g":    num("Carbohydrates in grams."),
			"fat_g":      num("Fat in grams."),
			"fiber_g":    num("Fiber in grams."),
			"sugar_g":    num("Sugars in grams."),
			"sodium_mg":  num("Sodium in milligrams."),
		},
		Required: []string{"calories", "protein_g", "carbs_g", "fat_g"},
	}
}

func (t *MealHealth) Run(ctx context.Context, input map[string]any) (map[string]any, error) {
	payload := payloadArgument(input, "features")

	b, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode features: %w", err)
	}
	var f health.Features
	if err := json.Unmarshal(b, &f); err != nil {
		return nil, fmt.Errorf("decode features: %w", err)
	}

	label, _ := payload["meal_label"].(string)
	if label == "" {
		label, _ = input["meal_label"].(string)
	}

	eval, err := t.classifier.Classify(ctx, label, f)
	if err != nil {
		return nil, fmt.Errorf("classify meal: %w", err)
	}

	eb, err := json.Marshal(eval)
	if err != nil {
		return nil, fmt.Errorf("encode evaluation: %w", err)
	}
	var m map[string]any
	if err := json.Unmarshal(eb, &m); err != nil {
		return nil, fmt.Errorf("decode evaluation: %w", err)
	}
	return m, nil
}
