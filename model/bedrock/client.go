// Package bedrock implements the chat model call against the AWS Bedrock
// Converse API, with native tool use.
package bedrock

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime/document"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime/types"
	smithydocument "github.com/aws/smithy-go/document"

	agentai "github.com/edw-crtn/AgentAI"
)

const (
	// defaultModelID is an inference profile ID, not a foundation model ID.
	defaultModelID = "us.anthropic.claude-3-7-sonnet-20250219-v1:0"

	defaultMaxTokens   = 1024
	defaultTemperature = 0.2
	defaultTopP        = 0.9
)

type converseClient interface {
	Converse(context.Context, *bedrockruntime.ConverseInput, ...func(*bedrockruntime.Options)) (*bedrockruntime.ConverseOutput, error)
}

type Options struct {
	ModelID     string
	MaxTokens   int32
	Temperature float32
	TopP        float32
}

// Client implements agentai.ChatModel over Converse.
type Client struct {
	brc  converseClient
	opts Options
}

func NewClient(brc converseClient, opts Options) *Client {
	if opts.ModelID == "" {
		opts.ModelID = defaultModelID
	}
	if opts.MaxTokens == 0 {
		opts.MaxTokens = defaultMaxTokens
	}
	if opts.Temperature == 0 {
		opts.Temperature = defaultTemperature
	}
	if opts.TopP == 0 {
		opts.TopP = defaultTopP
	}
	return &Client{brc: brc, opts: opts}
}

func (c *Client) Complete(ctx context.Context, messages []agentai.Message, tools []agentai.ToolSpec) (agentai.ChatResponse, error) {
	slog.Info("LLM_CLIENT: Invoked", "messages_len", len(messages))

	system, wireMessages, err := buildMessages(messages)
	if err != nil {
		return agentai.ChatResponse{}, err
	}

	wireTools, err := buildTools(tools)
	if err != nil {
		return agentai.ChatResponse{}, err
	}

	in := &bedrockruntime.ConverseInput{
		ModelId:  &c.opts.ModelID,
		System:   system,
		Messages: wireMessages,
		InferenceConfig: &types.InferenceConfiguration{
			MaxTokens:   aws.Int32(c.opts.MaxTokens),
			Temperature: aws.Float32(c.opts.Temperature),
			TopP:        aws.Float32(c.opts.TopP),
		},
	}
	if len(wireTools) > 0 {
		in.ToolConfig = &types.ToolConfiguration{
			Tools:      wireTools,
			ToolChoice: &types.ToolChoiceMemberAuto{},
		}
	}

	out, err := c.brc.Converse(ctx, in)
	if err != nil {
		return agentai.ChatResponse{}, fmt.Errorf("bedrock converse failed: %w", err)
	}

	resp := agentai.ChatResponse{}
	if out.Usage != nil {
		resp.Usage = &agentai.TokenUsage{
			PromptTokens:     int(aws.ToInt32(out.Usage.InputTokens)),
			CompletionTokens: int(aws.ToInt32(out.Usage.OutputTokens)),
			TotalTokens:      int(aws.ToInt32(out.Usage.TotalTokens)),
		}
	}

	switch out.StopReason {
	case types.StopReasonToolUse:
		resp.ToolCalls = toolCallsFromOutput(out)
		return resp, nil

	case types.StopReasonEndTurn, types.StopReasonStopSequence:
		resp.Content = textFromOutput(out)
		return resp, nil

	case types.StopReasonMaxTokens:
		return agentai.ChatResponse{}, fmt.Errorf("model hit MaxTokens limit; raise MaxTokens or shorten the conversation")

	default:
		return agentai.ChatResponse{}, fmt.Errorf("unexpected stop reason %q", out.StopReason)
	}
}

// buildMessages converts the provider-agnostic history into Converse blocks.
// Tool results must travel in user-role messages; consecutive tool results are
// merged into one user message so the alternating-role requirement holds.
func buildMessages(messages []agentai.Message) ([]types.SystemContentBlock, []types.Message, error) {
	var system []types.SystemContentBlock
	var out []types.Message

	appendToolResult := func(block types.ContentBlock) {
		if n := len(out); n > 0 && out[n-1].Role == types.ConversationRoleUser {
			if _, ok := out[n-1].Content[0].(*types.ContentBlockMemberToolResult); ok {
				out[n-1].Content = append(out[n-1].Content, block)
				return
			}
		}
		out = append(out, types.Message{
			Role:    types.ConversationRoleUser,
			Content: []types.ContentBlock{block},
		})
	}

	for _, m := range messages {
		switch m.Role {
		case agentai.RoleSystem:
			system = append(system, &types.SystemContentBlockMemberText{Value: m.Content})

		case agentai.RoleUser:
			out = append(out, types.Message{
				Role:    types.ConversationRoleUser,
				Content: []types.ContentBlock{&types.ContentBlockMemberText{Value: m.Content}},
			})

		case agentai.RoleAssistant:
			msg := types.Message{Role: types.ConversationRoleAssistant}
			if m.Content != "" {
				msg.Content = append(msg.Content, &types.ContentBlockMemberText{Value: m.Content})
			}
			for _, tc := range m.ToolCalls {
				var input map[string]any
				if err := json.Unmarshal([]byte(tc.RawArguments), &input); err != nil {
					input = map[string]any{}
				}
				msg.Content = append(msg.Content, &types.ContentBlockMemberToolUse{
					Value: types.ToolUseBlock{
						ToolUseId: aws.String(tc.ID),
						Name:      aws.String(tc.Name),
						Input:     document.NewLazyDocument(input),
					},
				})
			}
			out = append(out, msg)

		case agentai.RoleTool:
			appendToolResult(&types.ContentBlockMemberToolResult{
				Value: types.ToolResultBlock{
					ToolUseId: aws.String(m.ToolCallID),
					Status:    types.ToolResultStatusSuccess,
					Content: []types.ToolResultContentBlock{
						&types.ToolResultContentBlockMemberText{Value: m.Content},
					},
				},
			})

		default:
			return nil, nil, fmt.Errorf("unsupported message role %q", m.Role)
		}
	}

	return system, out, nil
}

func buildTools(tools []agentai.ToolSpec) ([]types.Tool, error) {
	var out []types.Tool
	for _, t := range tools {
		// jsonschema.Schema -> generic map -> smithy document
		raw, err := json.Marshal(t.Parameters)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal schema for tool %q: %w", t.Name, err)
		}
		var schema map[string]any
		if err := json.Unmarshal(raw, &schema); err != nil {
			return nil, fmt.Errorf("failed to decode schema for tool %q: %w", t.Name, err)
		}

		out = append(out, &types.ToolMemberToolSpec{
			Value: types.ToolSpecification{
				Name:        aws.String(t.Name),
				Description: aws.String(t.Description),
				InputSchema: &types.ToolInputSchemaMemberJson{
					Value: document.NewLazyDocument(schema),
				},
			},
		})
	}
	return out, nil
}

func toolCallsFromOutput(out *bedrockruntime.ConverseOutput) []agentai.ToolCallRequest {
	var calls []agentai.ToolCallRequest

	msg, ok := out.Output.(*types.ConverseOutputMemberMessage)
	if !ok || msg.Value.Content == nil {
		return calls
	}

	for _, cb := range msg.Value.Content {
		tu, ok := cb.(*types.ContentBlockMemberToolUse)
		if !ok {
			continue
		}

		// The document decoder can fail partway through and still have
		// filled part of the map; keep whatever it decoded.
		var input map[string]any
		if err := tu.Value.Input.UnmarshalSmithyDocument(&input); err != nil {
			slog.Warn("LLM_CLIENT: Partial tool input decode",
				"tool", aws.ToString(tu.Value.Name), "error", err)
		}
		if input == nil {
			input = map[string]any{}
		}

		raw, err := json.Marshal(normalizeInput(input))
		if err != nil {
			raw = []byte("{}")
		}

		calls = append(calls, agentai.ToolCallRequest{
			ID:           aws.ToString(tu.Value.ToolUseId),
			Name:         aws.ToString(tu.Value.Name),
			RawArguments: string(raw),
		})
	}

	return calls
}

// normalizeInput recursively coerces types for safe downstream use. The
// document decoders yield numbers as string-kinded Number types (smithy's for
// service responses, encoding/json's for lazy documents), and models sometimes
// stringify nested JSON; both would otherwise corrupt the argument blob handed
// to the tools.
func normalizeInput(val any) any {
	switch v := val.(type) {
	case smithydocument.Number:
		if i, err := v.Int64(); err == nil {
			return i
		}
		if f, err := v.Float64(); err == nil {
			return f
		}
		return string(v)

	case json.Number:
		if i, err := v.Int64(); err == nil {
			return i
		}
		if f, err := v.Float64(); err == nil {
			return f
		}
		return string(v)

	case float64:
		// Convert whole numbers like 2.0 -> 2
		if v == float64(int(v)) {
			return int(v)
		}
		return v

	case string:
		// Check if it's a stringified JSON array or object
		var decoded any
		if json.Unmarshal([]byte(v), &decoded) == nil {
			return normalizeInput(decoded)
		}
		return v

	case []any:
		for i := range v {
			v[i] = normalizeInput(v[i])
		}
		return v

	case map[string]any:
		for key, val := range v {
			v[key] = normalizeInput(val)
		}
		return v

	default:
		return v
	}
}

func textFromOutput(out *bedrockruntime.ConverseOutput) string {
	msg, ok := out.Output.(*types.ConverseOutputMemberMessage)
	if !ok {
		return ""
	}

	var text string
	for _, cb := range msg.Value.Content {
		if tb, ok := cb.(*types.ContentBlockMemberText); ok {
			if text != "" {
				text += "\n"
			}
			text += tb.Value
		}
	}
	return text
}
