package health

import (
	"context"
	"math"
)

// Nutrient thresholds behind both the score and the written analysis.
const (
	caloriesHigh = 900
	caloriesLow  = 250
	proteinGood  = 20
	proteinLow   = 10
	fiberGood    = 5
	sugarHigh    = 30
	sugarOK      = 15
	fatHigh      = 35
	fatOK        = 20
	sodiumHigh   = 800
	sodiumOK     = 600
)

const defaultDecisionThreshold = 0.5

// ScoredClassifier is a deterministic in-process model: each nutrient signal
// contributes a fixed weight to a logistic score.
type ScoredClassifier struct {
	threshold float64
}

func NewScoredClassifier() *ScoredClassifier {
	return &ScoredClassifier{threshold: defaultDecisionThreshold}
}

func (c *ScoredClassifier) Classify(ctx context.Context, mealLabel string, f Features) (Evaluation, error) {
	probability := probabilityHealthy(f)
	isHealthy := probability >= c.threshold

	return Evaluation{
		MealLabel: mealLabel,
		Features:  f,
		Prediction: Prediction{
			IsHealthy:          isHealthy,
			ProbabilityHealthy: probability,
			DecisionThreshold:  c.threshold,
		},
		Analysis: buildAnalysis(f, isHealthy),
	}, nil
}

func probabilityHealthy(f Features) float64 {
	var score float64

	switch {
	case f.Calories > caloriesHigh:
		score -= 0.8
	case f.Calories < caloriesLow:
		score -= 0.4
	default:
		score += 0.3
	}

	switch {
	case f.ProteinG >= proteinGood:
		score += 0.8
	case f.ProteinG < proteinLow:
		score -= 0.6
	}

	if f.FiberG >= fiberGood {
		score += 0.9
	} else {
		score -= 0.7
	}

	switch {
	case f.SugarG > sugarHigh:
		score -= 1.0
	case f.SugarG <= sugarOK:
		score += 0.4
	}

	switch {
	case f.FatG > fatHigh:
		score -= 0.8
	case f.FatG <= fatOK:
		score += 0.3
	}

	switch {
	case f.SodiumMg > sodiumHigh:
		score -= 0.7
	case f.SodiumMg <= sodiumOK:
		score += 0.3
	}

	return 1 / (1 + math.Exp(-score))
}

func buildAnalysis(f Features, isHealthy bool) Analysis {
	var strengths, weaknesses []string

	switch {
	case f.Calories > caloriesHigh:
		weaknesses = append(weaknesses, "High energy (calorie-dense meal).")
	case f.Calories < caloriesLow:
		weaknesses = append(weaknesses, "Very low energy; might not be satiating.")
	default:
		strengths = append(strengths, "Energy content in a reasonable range for a single meal.")
	}

	switch {
	case f.ProteinG >= proteinGood:
		strengths = append(strengths, "Good protein intake.")
	case f.ProteinG < proteinLow:
		weaknesses = append(weaknesses, "Low protein content.")
	}

	if f.FiberG >= fiberGood {
		strengths = append(strengths, "Good fiber intake.")
	} else {
		weaknesses = append(weaknesses, "Low fiber content.")
	}

	switch {
	case f.SugarG > sugarHigh:
		weaknesses = append(weaknesses, "High sugar content.")
	case f.SugarG <= sugarOK:
		strengths = append(strengths, "Moderate sugar level.")
	}

	switch {
	case f.FatG > fatHigh:
		weaknesses = append(weaknesses, "High fat content.")
	case f.FatG <= fatOK:
		strengths = append(strengths, "Moderate fat content.")
	}

	switch {
	case f.SodiumMg > sodiumHigh:
		weaknesses = append(weaknesses, "High sodium (salt) content.")
	case f.SodiumMg <= sodiumOK:
		strengths = append(strengths, "Moderate sodium level.")
	}

	summary := "This meal is classified as rather unhealthy according to the classifier. " +
		"The weaknesses listed above explain why."
	if isHealthy {
		summary = "This meal is classified as rather healthy according to the classifier. " +
			"It has more strengths than weaknesses overall."
	}

	return Analysis{
		Strengths:  strengths,
		Weaknesses: weaknesses,
		Summary:    summary,
	}
}
