package main

import (
	"fmt"
	"log"

	"github.com/joeshaw/envdecode"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	agentai "github.com/edw-crtn/AgentAI"
	"github.com/edw-crtn/AgentAI/catalog"
	"github.com/edw-crtn/AgentAI/model/mistral"
	"github.com/edw-crtn/AgentAI/storage"
)

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Build or refresh the food catalog embedding index",
	Long: `Reads the emission-factor CSV, embeds every food name, and writes the
index snapshot so that chat sessions start without re-embedding the catalog.`,
	RunE: runIndex,
}

func init() {
	rootCmd.AddCommand(indexCmd)
}

func runIndex(cmd *cobra.Command, args []string) error {
	_ = godotenv.Load()

	var modelConfig agentai.ModelConfig
	if err := envdecode.Decode(&modelConfig); err != nil {
		log.Fatalf("Failed to decode: %s", err)
	}
	var catalogConfig agentai.CatalogConfig
	if err := envdecode.Decode(&catalogConfig); err != nil {
		log.Fatalf("Failed to decode: %s", err)
	}

	embedder, err := mistral.NewEmbedder(modelConfig)
	if err != nil {
		return fmt.Errorf("embedder: %w", err)
	}

	index := catalog.NewIndex(embedder)
	if err := index.Build(cmd.Context(),
		storage.NewFileCatalogState(catalogConfig.CatalogPath),
		storage.NewFileSnapshotState(catalogConfig.SnapshotPath),
	); err != nil {
		return fmt.Errorf("build catalog index: %w", err)
	}

	fmt.Printf("Indexed %d catalog entries into %s\n", index.Len(), catalogConfig.SnapshotPath)
	return nil
}
