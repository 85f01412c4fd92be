package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"log/slog"
	"os"
	"strings"

	"github.com/joeshaw/envdecode"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	agentai "github.com/edw-crtn/AgentAI"
	"github.com/edw-crtn/AgentAI/agent"
	"github.com/edw-crtn/AgentAI/catalog"
	"github.com/edw-crtn/AgentAI/footprint"
	"github.com/edw-crtn/AgentAI/health"
	"github.com/edw-crtn/AgentAI/model/mistral"
	"github.com/edw-crtn/AgentAI/nutrition"
	"github.com/edw-crtn/AgentAI/storage"
	"github.com/edw-crtn/AgentAI/tools"
	"github.com/edw-crtn/AgentAI/vision"
)

var chatNoLogFile bool

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Start an interactive conversation about today's meals",
	RunE:  runChat,
}

func init() {
	rootCmd.AddCommand(chatCmd)
	chatCmd.Flags().BoolVar(&chatNoLogFile, "no-log-file", false, "Do not write the conversation log to ./logs")
}

func runChat(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	// Optional .env for local development; real deployments set the env.
	_ = godotenv.Load()

	var modelConfig agentai.ModelConfig
	if err := envdecode.Decode(&modelConfig); err != nil {
		log.Fatalf("Failed to decode: %s", err)
	}
	var agentConfig agentai.AgentConfig
	if err := envdecode.Decode(&agentConfig); err != nil {
		log.Fatalf("Failed to decode: %s", err)
	}
	var impactConfig agentai.ImpactConfig
	if err := envdecode.Decode(&impactConfig); err != nil {
		log.Fatalf("Failed to decode: %s", err)
	}

	chatModel, err := mistral.NewClient(modelConfig)
	if err != nil {
		return fmt.Errorf("chat model: %w", err)
	}

	registry, err := buildRegistry(ctx, agentConfig)
	if err != nil {
		return err
	}

	opts := []agent.Option{
		agent.WithMaxToolLoops(agentConfig.MaxToolLoops),
		agent.WithImpactConfig(impactConfig),
	}

	if extractor, err := vision.NewExtractor(modelConfig); err == nil {
		opts = append(opts, agent.WithVision(extractor))
	} else {
		slog.Warn("SETUP: Vision extractor unavailable", "error", err)
	}

	if !chatNoLogFile {
		logPath := agentai.NewConversationLogFilePath(modelConfig.ModelID)
		if err := os.MkdirAll("logs", 0o755); err == nil {
			if f, err := os.Create(logPath); err == nil {
				fileLogger := agentai.NewFileConversationLogger(f)
				defer func() {
					if err := fileLogger.Flush(); err != nil {
						slog.Error("SETUP: Failed to flush conversation log", "error", err)
					}
					f.Close()
				}()
				opts = append(opts, agent.WithLogger(fileLogger))
				slog.Info("SETUP: Conversation log initialized", "path", logPath)
			}
		}
	}

	a := agent.New(chatModel, registry, opts...)
	return repl(ctx, a)
}

// buildRegistry wires the catalog index, the nutrition client, and the health
// classifier into the three conversation tools.
func buildRegistry(ctx context.Context, agentConfig agentai.AgentConfig) (*tools.Registry, error) {
	var modelConfig agentai.ModelConfig
	if err := envdecode.Decode(&modelConfig); err != nil {
		log.Fatalf("Failed to decode: %s", err)
	}
	var catalogConfig agentai.CatalogConfig
	if err := envdecode.Decode(&catalogConfig); err != nil {
		log.Fatalf("Failed to decode: %s", err)
	}
	var nutritionConfig agentai.NutritionConfig
	if err := envdecode.Decode(&nutritionConfig); err != nil {
		log.Fatalf("Failed to decode: %s", err)
	}

	embedder, err := mistral.NewEmbedder(modelConfig)
	if err != nil {
		return nil, fmt.Errorf("embedder: %w", err)
	}

	index := catalog.NewIndex(embedder)
	if err := index.Build(ctx,
		storage.NewFileCatalogState(catalogConfig.CatalogPath),
		storage.NewFileSnapshotState(catalogConfig.SnapshotPath),
	); err != nil {
		return nil, fmt.Errorf("build catalog index: %w", err)
	}
	slog.Info("SETUP: Catalog index ready", "entries", index.Len())

	matcher := footprint.NewMatcher(index, agentConfig.SimilarityThreshold)
	footprintTool := tools.NewMealFootprint(footprint.NewAggregator(matcher))
	healthTool := tools.NewMealHealth(health.NewScoredClassifier())

	toolset := []tools.Tool{footprintTool, healthTool}

	if nutritionClient, err := nutrition.NewClient(nutritionConfig, nil); err == nil {
		toolset = append(toolset, tools.NewFoodNutrition(nutritionClient))
	} else {
		slog.Warn("SETUP: Nutrition lookups disabled", "error", err)
	}

	return tools.NewRegistry(toolset...)
}

func repl(ctx context.Context, a *agent.Agent) error {
	fmt.Println(agent.IntroMessage)
	fmt.Println()

	scanner := bufio.NewScanner(os.Stdin)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			return scanner.Err()
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if line == "exit" || line == "quit" {
			return nil
		}
		if line == "/debug" {
			agentai.Dump(a.Usage(), a.Transcript())
			continue
		}

		if path, ok := strings.CutPrefix(line, "/image "); ok {
			if err := handleImage(ctx, a, strings.TrimSpace(path)); err != nil {
				fmt.Printf("Could not analyze the image: %v\n\n", err)
			}
			continue
		}

		answer, err := a.Chat(ctx, line)
		if err != nil {
			slog.Error("CHAT: Turn failed", "error", err)
			fmt.Printf("Something went wrong: %v\n\n", err)
			continue
		}
		fmt.Println(answer)
		fmt.Println()
	}
}

// handleImage extracts foods from a meal photo, then feeds them back into the
// conversation as if the user had typed them.
func handleImage(ctx context.Context, a *agent.Agent, path string) error {
	image, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	items, err := a.AnalyzeImage(ctx, image)
	if err != nil {
		return err
	}
	if len(items) == 0 {
		fmt.Println("I could not recognize any food on that picture.")
		fmt.Println()
		return nil
	}

	b, err := json.Marshal(items)
	if err != nil {
		return err
	}

	answer, err := a.Chat(ctx, fmt.Sprintf(
		"I uploaded a photo of my meal. Image analysis detected these items (name, mass_g): %s. Please use them for this meal, asking me to confirm or adjust quantities if needed.", b))
	if err != nil {
		return err
	}
	fmt.Println(answer)
	fmt.Println()
	return nil
}
