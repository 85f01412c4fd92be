package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
)

// Registry maps tool names to implementations
type Registry map[string]Tool

// NewRegistry creates a new tool registry with the given tools.
func NewRegistry(ts ...Tool) (*Registry, error) {
	m := make(map[string]Tool, len(ts))
	for _, t := range ts {
		if _, exists := m[t.Name()]; exists {
			return nil, fmt.Errorf("duplicate tool %q in registry", t.Name())
		}
		m[t.Name()] = t
	}
	registry := Registry(m)
	return &registry, nil
}

// GetTools returns all tools in the registry as a slice
func (r *Registry) GetTools() []Tool {
	tools := make([]Tool, 0, len(*r))
	for _, tool := range *r {
		tools = append(tools, tool)
	}
	return tools
}

// GetTool retrieves a tool by name from the registry
func (r Registry) GetTool(name string) (Tool, error) {
	tool, exists := r[name]
	if !exists {
		return nil, fmt.Errorf("tool %q not found in registry", name)
	}
	return tool, nil
}

// Invoke dispatches a tool call by name with raw JSON arguments and always
// returns a JSON string. Failures of any kind, including panics inside a
// tool, come back as an error payload rather than an error so the caller can
// hand the result straight to the model.
func (r Registry) Invoke(ctx context.Context, name, rawArgs string) (result string) {
	defer func() {
		if rec := recover(); rec != nil {
			slog.Error("TOOLS: Recovered from panic", "tool", name, "panic", rec)
			result = errorPayload(fmt.Sprintf("tool %q panicked: %v", name, rec), rawArgs)
		}
	}()

	tool, err := r.GetTool(name)
	if err != nil {
		return errorPayload(err.Error(), rawArgs)
	}

	input := map[string]any{}
	if rawArgs != "" {
		if err := json.Unmarshal([]byte(rawArgs), &input); err != nil {
			return errorPayload(fmt.Sprintf("invalid JSON arguments for tool %q: %v", name, err), rawArgs)
		}
	}

	out, err := tool.Run(ctx, input)
	if err != nil {
		return errorPayload(fmt.Sprintf("tool %q failed: %v", name, err), rawArgs)
	}

	b, err := json.Marshal(out)
	if err != nil {
		return errorPayload(fmt.Sprintf("tool %q produced unserializable output: %v", name, err), rawArgs)
	}
	return string(b)
}

// errorPayload carries the failing arguments back so the model can see and
// correct its own input on the next round.
func errorPayload(msg, rawArgs string) string {
	b, _ := json.Marshal(map[string]string{
		"error":         msg,
		"raw_arguments": rawArgs,
	})
	return string(b)
}

// payloadArgument digs the effective payload out of tool input. Models wrap
// arguments inconsistently: the payload may sit under the named key as an
// object, as a JSON-encoded string, or the input itself may already be the
// payload.
func payloadArgument(input map[string]any, key string) map[string]any {
	v, ok := input[key]
	if !ok {
		return input
	}
	switch p := v.(type) {
	case map[string]any:
		return p
	case string:
		var m map[string]any
		if err := json.Unmarshal([]byte(p), &m); err == nil {
			return m
		}
		return input
	default:
		return input
	}
}
