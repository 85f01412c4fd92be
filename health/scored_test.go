package health

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScoredClassifier_Classify(t *testing.T) {
	c := NewScoredClassifier()
	ctx := context.Background()

	balanced := Features{
		Calories: 650,
		ProteinG: 30,
		CarbsG:   60,
		FatG:     18,
		FiberG:   8,
		SugarG:   9,
		SodiumMg: 450,
	}

	greasy := Features{
		Calories: 1200,
		ProteinG: 8,
		CarbsG:   110,
		FatG:     55,
		FiberG:   2,
		SugarG:   48,
		SodiumMg: 1600,
	}

	t.Run("balanced meal is healthy", func(t *testing.T) {
		eval, err := c.Classify(ctx, "lunch", balanced)
		require.NoError(t, err)

		assert.Equal(t, "lunch", eval.MealLabel)
		assert.True(t, eval.Prediction.IsHealthy)
		assert.GreaterOrEqual(t, eval.Prediction.ProbabilityHealthy, 0.5)
		assert.Contains(t, eval.Analysis.Strengths, "Good protein intake.")
		assert.Contains(t, eval.Analysis.Strengths, "Good fiber intake.")
		assert.Empty(t, eval.Analysis.Weaknesses)
		assert.Contains(t, eval.Analysis.Summary, "rather healthy")
	})

	t.Run("heavy sugary meal is unhealthy", func(t *testing.T) {
		eval, err := c.Classify(ctx, "dinner", greasy)
		require.NoError(t, err)

		assert.False(t, eval.Prediction.IsHealthy)
		assert.Less(t, eval.Prediction.ProbabilityHealthy, 0.5)
		assert.Contains(t, eval.Analysis.Weaknesses, "High sugar content.")
		assert.Contains(t, eval.Analysis.Weaknesses, "High sodium (salt) content.")
		assert.Contains(t, eval.Analysis.Weaknesses, "Low fiber content.")
		assert.Contains(t, eval.Analysis.Summary, "rather unhealthy")
	})

	t.Run("deterministic", func(t *testing.T) {
		a, _ := c.Classify(ctx, "lunch", balanced)
		b, _ := c.Classify(ctx, "lunch", balanced)
		assert.Equal(t, a, b)
	})

	t.Run("probability stays in range", func(t *testing.T) {
		for _, f := range []Features{{}, balanced, greasy, {Calories: 5000, SugarG: 500, SodiumMg: 9000}} {
			eval, err := c.Classify(ctx, "meal", f)
			require.NoError(t, err)
			assert.Greater(t, eval.Prediction.ProbabilityHealthy, 0.0)
			assert.Less(t, eval.Prediction.ProbabilityHealthy, 1.0)
		}
	})
}
