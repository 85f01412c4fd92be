package mistral

import (
	"context"
	"fmt"

	openai "github.com/sashabaranov/go-openai"

	agentai "github.com/edw-crtn/AgentAI"
)

// Embedder implements catalog.Embedder against the embeddings endpoint.
type Embedder struct {
	api   *openai.Client
	model string
}

func NewEmbedder(cfg agentai.ModelConfig) (*Embedder, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("MISTRAL_API_KEY is not set")
	}

	clientCfg := openai.DefaultConfig(cfg.APIKey)
	clientCfg.BaseURL = cfg.BaseURL

	return &Embedder{
		api:   openai.NewClientWithConfig(clientCfg),
		model: cfg.EmbeddingModelID,
	}, nil
}

func (e *Embedder) Embed(ctx context.Context, texts []string) ([][]float64, error) {
	resp, err := e.api.CreateEmbeddings(ctx, openai.EmbeddingRequestStrings{
		Input: texts,
		Model: openai.EmbeddingModel(e.model),
	})
	if err != nil {
		return nil, fmt.Errorf("embedding request failed: %w", err)
	}
	if len(resp.Data) != len(texts) {
		return nil, fmt.Errorf("embedding response has %d vectors for %d inputs", len(resp.Data), len(texts))
	}

	out := make([][]float64, len(resp.Data))
	for i, d := range resp.Data {
		vec := make([]float64, len(d.Embedding))
		for j, x := range d.Embedding {
			vec[j] = float64(x)
		}
		out[i] = vec
	}
	return out, nil
}
