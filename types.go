package agentai

import (
	"context"
	"net/http"

	"github.com/modelcontextprotocol/go-sdk/jsonschema"
)

type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Message roles as used on the chat wire.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleTool      = "tool"
)

// ToolCallRequest is a single function call requested by the model. RawArguments
// is the argument blob exactly as the model produced it; parsing is the tool
// dispatch layer's problem.
type ToolCallRequest struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	RawArguments string `json:"arguments"`
}

// Message is the provider-agnostic chat message. An assistant message may carry
// tool-call requests; a tool message must carry the ToolCallID of the request
// it answers, taken from the immediately preceding assistant message.
type Message struct {
	Role       string            `json:"role"`
	Content    string            `json:"content"`
	Name       string            `json:"name,omitempty"`
	ToolCalls  []ToolCallRequest `json:"tool_calls,omitempty"`
	ToolCallID string            `json:"tool_call_id,omitempty"`
}

// ToolSpec describes one callable function advertised to the model.
type ToolSpec struct {
	Name        string             `json:"name"`
	Description string             `json:"description"`
	Parameters  *jsonschema.Schema `json:"parameters"`
}

// TokenUsage carries token consumption from a single model call. A nil
// *TokenUsage means the provider returned no usage data for that call.
type TokenUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// ChatResponse is the result of one model round-trip. Exactly one of Content
// and ToolCalls is expected to be meaningful; both empty is a provider fault.
type ChatResponse struct {
	Content   string            `json:"content,omitempty"`
	ToolCalls []ToolCallRequest `json:"tool_calls,omitempty"`
	Usage     *TokenUsage       `json:"usage,omitempty"`
}

// ChatModel is the external language model behind the conversation loop.
// Implementations must fail loudly (return an error) rather than hand back a
// malformed partial response.
type ChatModel interface {
	Complete(ctx context.Context, messages []Message, tools []ToolSpec) (ChatResponse, error)
}

// FoodObservation is one food item recognized in a meal photo.
type FoodObservation struct {
	Name  string  `json:"name"`
	MassG float64 `json:"mass_g"`
}

// VisionExtractor turns a meal photo into food observations. Unparsable model
// output yields an empty slice, not an error.
type VisionExtractor interface {
	Extract(ctx context.Context, image []byte) ([]FoodObservation, *TokenUsage, error)
}

// TranscriptEntry is one user-facing line of the conversation, as shown in a
// chat UI. The transcript is distinct from the provider-facing message history.
type TranscriptEntry struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Assistant is a conversational session: one message history, one usage
// accumulator, one Chat call processed to completion at a time.
type Assistant interface {
	Chat(ctx context.Context, userText string) (string, error)
}
