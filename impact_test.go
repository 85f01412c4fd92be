package agentai

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFromTokens(t *testing.T) {
	cfg := ImpactConfig{TokenCO2GramsPer1K: 0.4, CarCO2GramsPerKM: 120}

	impact := cfg.FromTokens(10000)
	assert.InDelta(t, 4.0, impact.CO2Grams, 1e-9)
	assert.InDelta(t, 0.004, impact.CO2Kilograms, 1e-9)
	assert.InDelta(t, 4.0/120.0, impact.CarKilometers, 1e-9)
}

func TestFromTokensZeroCarFactor(t *testing.T) {
	cfg := ImpactConfig{TokenCO2GramsPer1K: 0.4}

	impact := cfg.FromTokens(1000)
	assert.InDelta(t, 0.4, impact.CO2Grams, 1e-9)
	assert.Zero(t, impact.CarKilometers)
}

func TestRenderUsageReport(t *testing.T) {
	cfg := DefaultImpactConfig()
	report := RenderUsageReport(UsageSnapshot{
		Calls:            4,
		PromptTokens:     800,
		CompletionTokens: 200,
		TotalTokens:      1000,
	}, cfg)

	assert.Contains(t, report, "### Token and CO2 estimate for this conversation")
	assert.Contains(t, report, "Total tokens: **1000** (prompt: 800, completion: 200)")
	assert.Contains(t, report, "0.40 g CO2e")
	assert.NotContains(t, report, "Vision tokens", "no vision line when no vision calls happened")
}

func TestRenderUsageReportWithVision(t *testing.T) {
	report := RenderUsageReport(UsageSnapshot{
		TotalTokens:       2000,
		VisionCalls:       2,
		VisionTotalTokens: 900,
	}, DefaultImpactConfig())

	assert.Contains(t, report, "Vision tokens (included above): 900 across 2 vision call(s)")
}
