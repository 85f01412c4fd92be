package agentai

import (
	"fmt"
	"strings"
)

// Impact is the environmental footprint derived from a token count.
type Impact struct {
	CO2Grams      float64 `json:"co2_g"`
	CO2Kilograms  float64 `json:"co2_kg"`
	CarKilometers float64 `json:"km"`
}

// FromTokens converts a total token count into a CO2 estimate and an
// equivalent car distance using the configured factors.
func (c ImpactConfig) FromTokens(totalTokens int) Impact {
	co2g := float64(totalTokens) / 1000.0 * c.TokenCO2GramsPer1K

	var km float64
	if c.CarCO2GramsPerKM > 0 {
		km = co2g / c.CarCO2GramsPerKM
	}

	return Impact{
		CO2Grams:      co2g,
		CO2Kilograms:  co2g / 1000.0,
		CarKilometers: km,
	}
}

// RenderUsageReport formats the one-time end-of-session token and CO2 summary
// appended after the health analysis has run.
func RenderUsageReport(s UsageSnapshot, cfg ImpactConfig) string {
	impact := cfg.FromTokens(s.TotalTokens)

	var b strings.Builder
	b.WriteString("### Token and CO2 estimate for this conversation\n")
	fmt.Fprintf(&b, "- Total tokens: **%d** (prompt: %d, completion: %d)\n",
		s.TotalTokens, s.PromptTokens, s.CompletionTokens)
	if s.VisionCalls > 0 {
		fmt.Fprintf(&b, "- Vision tokens (included above): %d across %d vision call(s)\n",
			s.VisionTotalTokens, s.VisionCalls)
	}
	fmt.Fprintf(&b, "- Estimated CO2 from tokens: **%.2f g CO2e** (%.6f kg)\n",
		impact.CO2Grams, impact.CO2Kilograms)
	fmt.Fprintf(&b, "- Car-equivalent distance: **%.3f km** (using %.0f g CO2/km)\n",
		impact.CarKilometers, cfg.CarCO2GramsPerKM)
	b.WriteString("\n_Note: this token-to-CO2 conversion uses configurable factors; ")
	b.WriteString("set TOKEN_CO2_G_PER_1K and CAR_CO2_G_PER_KM to match your own assumptions._")
	return b.String()
}
