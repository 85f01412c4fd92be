package main

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "agent",
	Short: "Conversational carbon footprint and nutrition assistant",
	Long: `agent estimates the CO2 footprint of your meals from a local
emission-factor database, fetches nutrition facts from USDA FoodData Central,
and classifies how healthy your day was.`,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
