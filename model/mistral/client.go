// Package mistral implements the chat and embedding model calls against
// Mistral's OpenAI-compatible API.
package mistral

import (
	"context"
	"fmt"
	"log/slog"

	openai "github.com/sashabaranov/go-openai"
	"go.opentelemetry.io/otel"

	agentai "github.com/edw-crtn/AgentAI"
)

// Client implements agentai.ChatModel.
type Client struct {
	api         *openai.Client
	model       string
	temperature float32
}

// NewClient fails when the API key is missing: a session cannot be constructed
// against an unreachable upstream.
func NewClient(cfg agentai.ModelConfig) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("MISTRAL_API_KEY is not set")
	}

	clientCfg := openai.DefaultConfig(cfg.APIKey)
	clientCfg.BaseURL = cfg.BaseURL

	return &Client{
		api:         openai.NewClientWithConfig(clientCfg),
		model:       cfg.ModelID,
		temperature: cfg.Temperature,
	}, nil
}

// Complete sends the full history and tool specifications to the model.
// Errors propagate unchanged; the conversation loop treats them as fatal for
// the current turn.
func (c *Client) Complete(ctx context.Context, messages []agentai.Message, tools []agentai.ToolSpec) (agentai.ChatResponse, error) {
	ctx, span := otel.Tracer(agentai.TracerNameModel).Start(ctx, "Client.Complete")
	defer span.End()

	slog.Info("LLM_CLIENT: Invoked", "messages_len", len(messages), "tools_len", len(tools))

	req := openai.ChatCompletionRequest{
		Model:       c.model,
		Messages:    toWireMessages(messages),
		Temperature: c.temperature,
	}
	if len(tools) > 0 {
		req.Tools = toWireTools(tools)
		req.ToolChoice = "auto"
	}

	resp, err := c.api.CreateChatCompletion(ctx, req)
	if err != nil {
		return agentai.ChatResponse{}, fmt.Errorf("chat completion failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return agentai.ChatResponse{}, fmt.Errorf("chat completion returned no choices")
	}

	return fromWireResponse(resp), nil
}

func toWireMessages(messages []agentai.Message) []openai.ChatCompletionMessage {
	out := make([]openai.ChatCompletionMessage, 0, len(messages))
	for _, m := range messages {
		wire := openai.ChatCompletionMessage{
			Role:    m.Role,
			Content: m.Content,
		}

		for _, tc := range m.ToolCalls {
			wire.ToolCalls = append(wire.ToolCalls, openai.ToolCall{
				ID:   tc.ID,
				Type: openai.ToolTypeFunction,
				Function: openai.FunctionCall{
					Name:      tc.Name,
					Arguments: tc.RawArguments,
				},
			})
		}

		if m.Role == agentai.RoleTool {
			wire.ToolCallID = m.ToolCallID
			wire.Name = m.Name
		}

		out = append(out, wire)
	}
	return out
}

func toWireTools(tools []agentai.ToolSpec) []openai.Tool {
	out := make([]openai.Tool, 0, len(tools))
	for _, t := range tools {
		out = append(out, openai.Tool{
			Type: openai.ToolTypeFunction,
			Function: &openai.FunctionDefinition{
				Name:        t.Name,
				Description: t.Description,
				Parameters:  t.Parameters,
			},
		})
	}
	return out
}

func fromWireResponse(resp openai.ChatCompletionResponse) agentai.ChatResponse {
	msg := resp.Choices[0].Message

	out := agentai.ChatResponse{Content: msg.Content}
	for _, tc := range msg.ToolCalls {
		out.ToolCalls = append(out.ToolCalls, agentai.ToolCallRequest{
			ID:           tc.ID,
			Name:         tc.Function.Name,
			RawArguments: tc.Function.Arguments,
		})
	}

	if resp.Usage.TotalTokens > 0 || resp.Usage.PromptTokens > 0 {
		out.Usage = &agentai.TokenUsage{
			PromptTokens:     resp.Usage.PromptTokens,
			CompletionTokens: resp.Usage.CompletionTokens,
			TotalTokens:      resp.Usage.TotalTokens,
		}
	}

	return out
}
