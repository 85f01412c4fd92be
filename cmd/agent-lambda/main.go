package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/joeshaw/envdecode"
	"go.opentelemetry.io/otel"

	agentai "github.com/edw-crtn/AgentAI"
	"github.com/edw-crtn/AgentAI/agent"
	"github.com/edw-crtn/AgentAI/catalog"
	"github.com/edw-crtn/AgentAI/footprint"
	"github.com/edw-crtn/AgentAI/health"
	"github.com/edw-crtn/AgentAI/model/bedrock"
	"github.com/edw-crtn/AgentAI/model/mistral"
	"github.com/edw-crtn/AgentAI/nutrition"
	"github.com/edw-crtn/AgentAI/storage"
	"github.com/edw-crtn/AgentAI/tools"
)

type Params struct {
	Message string `json:"message"`
}

type Results struct {
	Answer string                    `json:"answer"`
	Usage  agentai.UsageSnapshot     `json:"usage"`
	Log    []agentai.TranscriptEntry `json:"transcript"`
}

func main() {
	fn := func(ctx context.Context, params Params) (Results, error) {
		var bedrockConfig agentai.BedrockConfig
		if err := envdecode.Decode(&bedrockConfig); err != nil {
			log.Fatalf("Failed to decode: %s", err)
		}
		var modelConfig agentai.ModelConfig
		if err := envdecode.Decode(&modelConfig); err != nil {
			log.Fatalf("Failed to decode: %s", err)
		}
		var agentConfig agentai.AgentConfig
		if err := envdecode.Decode(&agentConfig); err != nil {
			log.Fatalf("Failed to decode: %s", err)
		}
		var nutritionConfig agentai.NutritionConfig
		if err := envdecode.Decode(&nutritionConfig); err != nil {
			log.Fatalf("Failed to decode: %s", err)
		}

		// S3 config from env
		s3Bucket := os.Getenv("ARTIFACTS_S3_BUCKET")
		catalogKey := os.Getenv("FOOD_CATALOG_S3_KEY")
		snapshotKey := os.Getenv("FOOD_CATALOG_SNAPSHOT_S3_KEY")
		if s3Bucket == "" || catalogKey == "" || snapshotKey == "" {
			return Results{}, fmt.Errorf("missing S3 config: ARTIFACTS_S3_BUCKET, FOOD_CATALOG_S3_KEY, FOOD_CATALOG_SNAPSHOT_S3_KEY must be set")
		}

		awsCfg, err := config.LoadDefaultConfig(ctx, config.WithRetryMaxAttempts(5))
		if err != nil {
			return Results{}, fmt.Errorf("failed to load AWS config: %w", err)
		}

		// Embeddings still go through the Mistral endpoint; only the chat
		// model runs on Bedrock here.
		embedder, err := mistral.NewEmbedder(modelConfig)
		if err != nil {
			slog.Error("SETUP: Failed to create embedder", "error", err)
			return Results{}, err
		}

		index := catalog.NewIndex(embedder)
		s3Client := s3.NewFromConfig(awsCfg)
		if err := index.Build(ctx,
			storage.NewS3CatalogState(s3Client, s3Bucket, catalogKey),
			storage.NewS3SnapshotState(s3Client, s3Bucket, snapshotKey),
		); err != nil {
			slog.Error("SETUP: Failed to build catalog index from S3", "error", err)
			return Results{}, err
		}
		slog.Info("SETUP: Catalog index built from S3", "entries", index.Len())

		matcher := footprint.NewMatcher(index, agentConfig.SimilarityThreshold)
		toolset := []tools.Tool{
			tools.NewMealFootprint(footprint.NewAggregator(matcher)),
			tools.NewMealHealth(health.NewScoredClassifier()),
		}
		if nutritionClient, err := nutrition.NewClient(nutritionConfig, nil); err == nil {
			toolset = append(toolset, tools.NewFoodNutrition(nutritionClient))
		} else {
			slog.Warn("SETUP: Nutrition lookups disabled", "error", err)
		}

		registry, err := tools.NewRegistry(toolset...)
		if err != nil {
			slog.Error("SETUP: Failed to create tool registry", "error", err)
			return Results{}, err
		}

		chatModel := bedrock.NewClient(bedrockruntime.NewFromConfig(awsCfg), bedrock.Options{
			ModelID:     bedrockConfig.ModelID,
			MaxTokens:   bedrockConfig.MaxTokens,
			Temperature: bedrockConfig.Temperature,
			TopP:        bedrockConfig.TopP,
		})

		tracerProvider, meterProvider, otelShutdown, err := agentai.InitOtel(ctx)
		if err != nil {
			slog.Error("SETUP: Failed to initialize OpenTelemetry", "error", err)
			return Results{}, err
		}
		defer func() {
			if err := otelShutdown(ctx); err != nil {
				slog.Error("SETUP: Failed to shutdown OpenTelemetry", "error", err)
			}
		}()
		_ = tracerProvider

		inner := agent.New(chatModel, registry,
			agent.WithMaxToolLoops(agentConfig.MaxToolLoops),
			agent.WithLogger(agentai.NewStdoutConversationLogger()),
		)
		a := agent.NewInstrumentedAgent(inner,
			otel.Tracer(agentai.TracerNameAgent),
			meterProvider.Meter(agentai.TracerNameAgent),
		)

		answer, err := a.Chat(ctx, params.Message)
		if err != nil {
			slog.Error("RESULT: Error handling message", "error", err)
			return Results{}, err
		}

		return Results{
			Answer: answer,
			Usage:  a.Usage(),
			Log:    a.Transcript(),
		}, nil
	}

	lambda.Start(fn)
}
