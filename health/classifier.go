// Package health classifies single meals as healthy or unhealthy from their
// nutrient totals and explains the verdict in plain language.
package health

import "context"

// Features are the nutrient totals for one meal, not a whole day.
type Features struct {
	Calories float64 `json:"calories"`
	ProteinG float64 `json:"protein_g"`
	CarbsG   float64 `json:"carbs_g"`
	FatG     float64 `json:"fat_g"`
	FiberG   float64 `json:"fiber_g"`
	SugarG   float64 `json:"sugar_g"`
	SodiumMg float64 `json:"sodium_mg"`
}

// Prediction is the classifier verdict.
type Prediction struct {
	IsHealthy          bool    `json:"is_healthy"`
	ProbabilityHealthy float64 `json:"probability_healthy"`
	DecisionThreshold  float64 `json:"decision_threshold"`
}

// Analysis gives intuitive reasons, like "low fiber" or "high sugar", that the
// model can reuse in its answer. Not medical advice.
type Analysis struct {
	Strengths  []string `json:"strengths"`
	Weaknesses []string `json:"weaknesses"`
	Summary    string   `json:"summary"`
}

// Evaluation is the full classification result for one meal.
type Evaluation struct {
	MealLabel  string     `json:"meal_label"`
	Features   Features   `json:"features"`
	Prediction Prediction `json:"prediction"`
	Analysis   Analysis   `json:"analysis"`
}

// Classifier is the health-classification inference call. Implementations may
// wrap a remote model; the default is an in-process scored model.
type Classifier interface {
	Classify(ctx context.Context, mealLabel string, f Features) (Evaluation, error)
}
