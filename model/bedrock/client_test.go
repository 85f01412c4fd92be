package bedrock

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime/document"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime/types"
	smithydocument "github.com/aws/smithy-go/document"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	agentai "github.com/edw-crtn/AgentAI"
)

type stubConverse struct {
	lastInput *bedrockruntime.ConverseInput
	output    *bedrockruntime.ConverseOutput
	err       error
}

func (s *stubConverse) Converse(_ context.Context, in *bedrockruntime.ConverseInput, _ ...func(*bedrockruntime.Options)) (*bedrockruntime.ConverseOutput, error) {
	s.lastInput = in
	return s.output, s.err
}

func TestCompleteTextAnswer(t *testing.T) {
	stub := &stubConverse{
		output: &bedrockruntime.ConverseOutput{
			StopReason: types.StopReasonEndTurn,
			Output: &types.ConverseOutputMemberMessage{
				Value: types.Message{
					Role: types.ConversationRoleAssistant,
					Content: []types.ContentBlock{
						&types.ContentBlockMemberText{Value: "Roughly 0.6 kg CO2e."},
					},
				},
			},
			Usage: &types.TokenUsage{
				InputTokens:  aws.Int32(120),
				OutputTokens: aws.Int32(30),
				TotalTokens:  aws.Int32(150),
			},
		},
	}
	client := NewClient(stub, Options{})

	resp, err := client.Complete(context.Background(), []agentai.Message{
		{Role: agentai.RoleSystem, Content: "You estimate meal footprints."},
		{Role: agentai.RoleUser, Content: "How bad is a burger?"},
	}, nil)
	require.NoError(t, err)

	assert.Equal(t, "Roughly 0.6 kg CO2e.", resp.Content)
	assert.Empty(t, resp.ToolCalls)
	require.NotNil(t, resp.Usage)
	assert.Equal(t, 150, resp.Usage.TotalTokens)

	require.NotNil(t, stub.lastInput)
	require.Len(t, stub.lastInput.System, 1)
	require.Len(t, stub.lastInput.Messages, 1)
	assert.Equal(t, types.ConversationRoleUser, stub.lastInput.Messages[0].Role)
}

func TestCompleteToolUse(t *testing.T) {
	stub := &stubConverse{
		output: &bedrockruntime.ConverseOutput{
			StopReason: types.StopReasonToolUse,
			Output: &types.ConverseOutputMemberMessage{
				Value: types.Message{
					Role: types.ConversationRoleAssistant,
					Content: []types.ContentBlock{
						&types.ContentBlockMemberText{Value: "Let me compute that."},
						&types.ContentBlockMemberToolUse{
							Value: types.ToolUseBlock{
								ToolUseId: aws.String("call-1"),
								Name:      aws.String("compute_meal_footprint"),
								Input: document.NewLazyDocument(map[string]any{
									"items": []any{map[string]any{"name": "beef", "mass_g": 120}},
								}),
							},
						},
					},
				},
			},
		},
	}
	client := NewClient(stub, Options{})

	resp, err := client.Complete(context.Background(), []agentai.Message{
		{Role: agentai.RoleUser, Content: "120g of beef"},
	}, nil)
	require.NoError(t, err)

	require.Len(t, resp.ToolCalls, 1)
	assert.Equal(t, "call-1", resp.ToolCalls[0].ID)
	assert.Equal(t, "compute_meal_footprint", resp.ToolCalls[0].Name)
	assert.Contains(t, resp.ToolCalls[0].RawArguments, "beef")

	// Numbers must survive the document round-trip as JSON numbers, not the
	// decoder's string-kinded Number type.
	var args struct {
		Items []struct {
			Name  string  `json:"name"`
			MassG float64 `json:"mass_g"`
		} `json:"items"`
	}
	require.NoError(t, json.Unmarshal([]byte(resp.ToolCalls[0].RawArguments), &args))
	require.Len(t, args.Items, 1)
	assert.Equal(t, "beef", args.Items[0].Name)
	assert.Equal(t, 120.0, args.Items[0].MassG)
}

// The lazy document decoder fills the caller's map and then reports an error
// for the interface target; what it decoded must survive rather than being
// replaced with empty arguments.
func TestToolCallsFromOutputKeepsDecodedInput(t *testing.T) {
	out := &bedrockruntime.ConverseOutput{
		StopReason: types.StopReasonToolUse,
		Output: &types.ConverseOutputMemberMessage{
			Value: types.Message{
				Role: types.ConversationRoleAssistant,
				Content: []types.ContentBlock{
					&types.ContentBlockMemberToolUse{
						Value: types.ToolUseBlock{
							ToolUseId: aws.String("call-1"),
							Name:      aws.String("compute_meal_footprint"),
							Input: document.NewLazyDocument(map[string]any{
								"meal_label": "lunch",
								"items": []any{
									map[string]any{"name": "beef", "mass_g": 150},
									map[string]any{"name": "cow milk", "mass_ml": 200.5},
								},
							}),
						},
					},
				},
			},
		},
	}

	calls := toolCallsFromOutput(out)
	require.Len(t, calls, 1)

	var args struct {
		MealLabel string `json:"meal_label"`
		Items     []struct {
			Name   string  `json:"name"`
			MassG  float64 `json:"mass_g"`
			MassML float64 `json:"mass_ml"`
		} `json:"items"`
	}
	require.NoError(t, json.Unmarshal([]byte(calls[0].RawArguments), &args))
	assert.Equal(t, "lunch", args.MealLabel)
	require.Len(t, args.Items, 2)
	assert.Equal(t, 150.0, args.Items[0].MassG)
	assert.Equal(t, 200.5, args.Items[1].MassML)
}

func TestNormalizeInput(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want any
	}{
		{name: "smithy integer number", in: smithydocument.Number("120"), want: int64(120)},
		{name: "smithy float number", in: smithydocument.Number("0.5"), want: 0.5},
		{name: "json integer number", in: json.Number("120"), want: int64(120)},
		{name: "json float number", in: json.Number("0.5"), want: 0.5},
		{name: "whole float to int", in: 2.0, want: 2},
		{name: "fractional float kept", in: 1.39, want: 1.39},
		{name: "plain string kept", in: "beef steak", want: "beef steak"},
		{
			name: "stringified JSON object decoded",
			in:   `{"items":[{"name":"beef","mass_g":120}]}`,
			want: map[string]any{"items": []any{map[string]any{"name": "beef", "mass_g": 120}}},
		},
		{
			name: "nested map and slice",
			in: map[string]any{
				"items": []any{map[string]any{"name": "beef", "mass_g": smithydocument.Number("150")}},
			},
			want: map[string]any{
				"items": []any{map[string]any{"name": "beef", "mass_g": int64(150)}},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, normalizeInput(tt.in))
		})
	}
}

func TestCompleteMaxTokensIsError(t *testing.T) {
	stub := &stubConverse{
		output: &bedrockruntime.ConverseOutput{StopReason: types.StopReasonMaxTokens},
	}
	client := NewClient(stub, Options{})

	_, err := client.Complete(context.Background(), []agentai.Message{
		{Role: agentai.RoleUser, Content: "hi"},
	}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "MaxTokens")
}

func TestBuildMessagesMergesToolResults(t *testing.T) {
	history := []agentai.Message{
		{Role: agentai.RoleUser, Content: "my meal"},
		{
			Role: agentai.RoleAssistant,
			ToolCalls: []agentai.ToolCallRequest{
				{ID: "a", Name: "compute_meal_footprint", RawArguments: `{"items":[]}`},
				{ID: "b", Name: "get_food_nutrition", RawArguments: `{"food_name":"rice"}`},
			},
		},
		{Role: agentai.RoleTool, ToolCallID: "a", Name: "compute_meal_footprint", Content: `{"items":[]}`},
		{Role: agentai.RoleTool, ToolCallID: "b", Name: "get_food_nutrition", Content: `{"found":false}`},
	}

	system, msgs, err := buildMessages(history)
	require.NoError(t, err)
	assert.Empty(t, system)

	// user, assistant, and one merged user message carrying both tool results
	require.Len(t, msgs, 3)
	assert.Equal(t, types.ConversationRoleAssistant, msgs[1].Role)
	assert.Len(t, msgs[1].Content, 2)
	assert.Equal(t, types.ConversationRoleUser, msgs[2].Role)
	require.Len(t, msgs[2].Content, 2)
	for _, cb := range msgs[2].Content {
		_, ok := cb.(*types.ContentBlockMemberToolResult)
		assert.True(t, ok)
	}
}

func TestBuildToolsMarshalsSchema(t *testing.T) {
	specs := []agentai.ToolSpec{
		{Name: "compute_meal_footprint", Description: "Compute meal emissions."},
	}
	tools, err := buildTools(specs)
	require.NoError(t, err)
	require.Len(t, tools, 1)

	spec, ok := tools[0].(*types.ToolMemberToolSpec)
	require.True(t, ok)
	assert.Equal(t, "compute_meal_footprint", aws.ToString(spec.Value.Name))
}
